package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/tasktrack-be/internal/models"
	"github.com/isdelr/tasktrack-be/internal/store"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open, migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close(context.Context) error { return s.db.Close() }

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, country, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.PasswordHash, user.Country, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", user.Email, store.ErrDuplicate)
		}
		return err
	}
	return nil
}

const userColumns = "id, name, email, password_hash, country, created_at"

func scanUser(scanner interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	err := scanner.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Country, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, store.ErrNotFound
	}
	return user, err
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// ---- projects ----

const projectColumns = "id, user_id, name, description, created_at"

func scanProject(scanner interface{ Scan(...any) error }) (models.Project, error) {
	var p models.Project
	err := scanner.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, store.ErrNotFound
	}
	return p, err
}

func (s *Store) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE user_id = ? ORDER BY rowid", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	return scanProject(s.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id))
}

func (s *Store) CountProjects(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

func (s *Store) CreateProjectWithinLimit(ctx context.Context, p *models.Project, limit int) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, name, description, created_at)
		SELECT ?, ?, ?, ?, ?
		WHERE (SELECT COUNT(*) FROM projects WHERE user_id = ?) < ?`,
		p.ID, p.UserID, p.Name, p.Description, p.CreatedAt, p.UserID, limit)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrLimitReached
	}
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, p models.Project) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE projects SET name = ?, description = ? WHERE id = ?",
		p.Name, p.Description, p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteProjectCascade(ctx context.Context, id string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE project_id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete tasks of project %s: %w", id, err)
	}
	tasksDeleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	res, err = tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete project %s: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return tasksDeleted, nil
}

// ---- tasks ----

const taskColumns = "id, project_id, user_id, title, description, status, completed_at, created_at"

func scanTask(scanner interface{ Scan(...any) error }) (models.Task, error) {
	var t models.Task
	var completedAt sql.NullTime
	err := scanner.Scan(&t.ID, &t.ProjectID, &t.UserID, &t.Title, &t.Description, &t.Status, &completedAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, store.ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	if completedAt.Valid {
		ts := completedAt.Time
		t.CompletedAt = &ts
	}
	return t, nil
}

func (s *Store) ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE project_id = ? ORDER BY rowid", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	return scanTask(s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
}

func (s *Store) CountTasksByProject(ctx context.Context, projectID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE project_id = ?", projectID).Scan(&n)
	return n, err
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.ProjectID, t.UserID, t.Title, t.Description, string(t.Status), nullTime(t.CompletedAt), t.CreatedAt)
	return err
}

func (s *Store) UpdateTask(ctx context.Context, t models.Task, expectedStatus models.TaskStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, status = ?, completed_at = ?
		WHERE id = ? AND status = ?`,
		t.Title, t.Description, string(t.Status), nullTime(t.CompletedAt), t.ID, string(expectedStatus))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := s.GetTask(ctx, t.ID); err != nil {
		return err
	}
	return store.ErrStale
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteOrphanTasks(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE project_id NOT IN (SELECT id FROM projects)")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---- events ----

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, user_id, type, message, project_id, task_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.UserID, e.Type, e.Message, nullString(e.ProjectID), nullString(e.TaskID), e.CreatedAt)
	return err
}

func (s *Store) ListEvents(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, message, project_id, task_id, created_at
		FROM events WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		var projectID, taskID sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Message, &projectID, &taskID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if projectID.Valid {
			e.ProjectID = &projectID.String
		}
		if taskID.Valid {
			e.TaskID = &taskID.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) PruneEvents(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE created_at < ?", before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
