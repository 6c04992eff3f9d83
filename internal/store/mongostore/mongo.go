// Package mongostore is the MongoDB store backend.
//
// MongoDB has no multi-document atomicity outside replica-set transactions,
// so the project cap lives in a counter on the owner's user document and the
// cascade delete removes tasks before their project. A delete interrupted
// halfway leaves a project with fewer tasks, never tasks without a project.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/isdelr/tasktrack-be/internal/models"
	"github.com/isdelr/tasktrack-be/internal/store"
)

// Store implements store.Store on MongoDB.
type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	projects *mongo.Collection
	tasks    *mongo.Collection
	events   *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Connect dials uri and returns a store on database name.
func Connect(ctx context.Context, uri, name string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return New(client, client.Database(name)), nil
}

func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:   client,
		users:    db.Collection("users"),
		projects: db.Collection("projects"),
		tasks:    db.Collection("tasks"),
		events:   db.Collection("events"),
	}
}

// Migrate creates the indexes the queries rely on.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := []struct {
		col   *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.projects, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}}},
		{s.tasks, mongo.IndexModel{Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "createdAt", Value: 1}}}},
		{s.events, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
	}
	for _, idx := range indexes {
		if _, err := idx.col.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.col.Name(), err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

// userDoc carries the project counter next to the account fields.
type userDoc struct {
	models.User  `bson:",inline"`
	ProjectCount int `bson:"projectCount"`
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.users.InsertOne(ctx, userDoc{User: *user})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("email %s: %w", user.Email, store.ErrDuplicate)
	}
	return err
}

func (s *Store) getUser(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return models.User{}, notFound(err)
	}
	return doc.User, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.getUser(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getUser(ctx, bson.M{"email": email})
}

// ---- projects ----

func (s *Store) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.projects.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	projects := []models.Project{}
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	var p models.Project
	if err := s.projects.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Project{}, notFound(err)
	}
	return p, nil
}

func (s *Store) CountProjects(ctx context.Context, userID string) (int, error) {
	n, err := s.projects.CountDocuments(ctx, bson.M{"userId": userID})
	return int(n), err
}

func (s *Store) CreateProjectWithinLimit(ctx context.Context, p *models.Project, limit int) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": p.UserID, "projectCount": bson.M{"$lt": limit}},
		bson.M{"$inc": bson.M{"projectCount": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrLimitReached
	}

	if _, err := s.projects.InsertOne(ctx, p); err != nil {
		// Give the slot back; the insert never happened.
		if _, undoErr := s.users.UpdateOne(ctx, bson.M{"_id": p.UserID}, bson.M{"$inc": bson.M{"projectCount": -1}}); undoErr != nil {
			return errors.Join(err, fmt.Errorf("release project slot: %w", undoErr))
		}
		return err
	}
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, p models.Project) error {
	res, err := s.projects.UpdateOne(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": bson.M{"name": p.Name, "description": p.Description}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProjectCascade(ctx context.Context, id string) (int64, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return 0, err
	}

	taskRes, err := s.tasks.DeleteMany(ctx, bson.M{"projectId": id})
	if err != nil {
		return 0, fmt.Errorf("delete tasks of project %s: %w", id, err)
	}

	res, err := s.projects.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return taskRes.DeletedCount, fmt.Errorf("delete project %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return taskRes.DeletedCount, store.ErrNotFound
	}

	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": p.UserID}, bson.M{"$inc": bson.M{"projectCount": -1}}); err != nil {
		return taskRes.DeletedCount, fmt.Errorf("release project slot: %w", err)
	}
	return taskRes.DeletedCount, nil
}

// ---- tasks ----

func (s *Store) ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.tasks.Find(ctx, bson.M{"projectId": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	tasks := []models.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	var t models.Task
	if err := s.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Task{}, notFound(err)
	}
	return t, nil
}

func (s *Store) CountTasksByProject(ctx context.Context, projectID string) (int, error) {
	n, err := s.tasks.CountDocuments(ctx, bson.M{"projectId": projectID})
	return int(n), err
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	_, err := s.tasks.InsertOne(ctx, t)
	return err
}

func (s *Store) UpdateTask(ctx context.Context, t models.Task, expectedStatus models.TaskStatus) error {
	res, err := s.tasks.UpdateOne(ctx,
		bson.M{"_id": t.ID, "status": expectedStatus},
		bson.M{"$set": bson.M{
			"title":       t.Title,
			"description": t.Description,
			"status":      t.Status,
			"completedAt": t.CompletedAt,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if _, err := s.GetTask(ctx, t.ID); err != nil {
		return err
	}
	return store.ErrStale
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteOrphanTasks(ctx context.Context) (int64, error) {
	referenced, err := s.tasks.Distinct(ctx, "projectId", bson.M{})
	if err != nil {
		return 0, err
	}
	if len(referenced) == 0 {
		return 0, nil
	}

	existing, err := s.projects.Distinct(ctx, "_id", bson.M{"_id": bson.M{"$in": referenced}})
	if err != nil {
		return 0, err
	}

	orphans := orphanIDs(referenced, existing)
	if len(orphans) == 0 {
		return 0, nil
	}
	res, err := s.tasks.DeleteMany(ctx, bson.M{"projectId": bson.M{"$in": orphans}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// orphanIDs returns the referenced project ids missing from existing. Only ids
// that were looked up qualify, so a task written into a new project during
// the sweep is never matched.
func orphanIDs(referenced, existing []any) bson.A {
	found := make(map[any]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}
	orphans := bson.A{}
	for _, id := range referenced {
		if _, ok := found[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	return orphans
}

// ---- events ----

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	_, err := s.events.InsertOne(ctx, e)
	return err
}

func (s *Store) ListEvents(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.events.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []models.Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) PruneEvents(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.events.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
