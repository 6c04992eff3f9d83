package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/tasktrack-be/internal/models"
	"github.com/isdelr/tasktrack-be/internal/store"
)

// newTestStore connects to the server named by TASKTRACK_TEST_MONGO_URI and
// uses a throwaway database dropped on cleanup.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("TASKTRACK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TASKTRACK_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := "tasktrack_test_" + uuid.NewString()[:8]
	s, err := Connect(ctx, uri, name)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		s.client.Database(name).Drop(ctx)
		s.Close(ctx)
	})
	return s
}

func TestMongoProjectLimitAndCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := models.User{ID: uuid.NewString(), Name: "A", Email: "a@example.com", PasswordHash: "x", Country: "NL", CreatedAt: time.Now().UTC()}
	if err := s.CreateUser(ctx, &u); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, &u); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate err = %v", err)
	}

	var first models.Project
	for i := 0; i < 4; i++ {
		p := models.Project{ID: uuid.NewString(), UserID: u.ID, Name: "P", Description: "d", CreatedAt: time.Now().UTC()}
		if err := s.CreateProjectWithinLimit(ctx, &p, 4); err != nil {
			t.Fatalf("project %d: %v", i, err)
		}
		if i == 0 {
			first = p
		}
	}
	extra := models.Project{ID: uuid.NewString(), UserID: u.ID, Name: "P", Description: "d", CreatedAt: time.Now().UTC()}
	if err := s.CreateProjectWithinLimit(ctx, &extra, 4); !errors.Is(err, store.ErrLimitReached) {
		t.Fatalf("fifth project err = %v", err)
	}

	task := models.Task{ID: uuid.NewString(), ProjectID: first.ID, UserID: u.ID, Title: "T", Description: "d", CreatedAt: time.Now().UTC()}
	task.InitStatus(time.Now().UTC())
	if err := s.CreateTask(ctx, &task); err != nil {
		t.Fatal(err)
	}

	n, err := s.DeleteProjectCascade(ctx, first.ID)
	if err != nil || n != 1 {
		t.Fatalf("DeleteProjectCascade = %d, %v", n, err)
	}
	if _, err := s.GetTask(ctx, task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("task survived cascade: %v", err)
	}

	// The freed slot can be reused.
	if err := s.CreateProjectWithinLimit(ctx, &extra, 4); err != nil {
		t.Fatalf("project after delete: %v", err)
	}
}

func TestMongoUpdateTaskGuardsStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := models.Task{ID: uuid.NewString(), ProjectID: "p", UserID: "u", Title: "T", Description: "d", CreatedAt: time.Now().UTC()}
	task.InitStatus(time.Now().UTC())
	if err := s.CreateTask(ctx, &task); err != nil {
		t.Fatal(err)
	}

	next := task
	next.Status = models.StatusInProgress
	if err := s.UpdateTask(ctx, next, models.StatusNotStarted); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if err := s.UpdateTask(ctx, next, models.StatusNotStarted); !errors.Is(err, store.ErrStale) {
		t.Fatalf("stale err = %v", err)
	}

	// Project "p" never existed.
	n, err := s.DeleteOrphanTasks(ctx)
	if err != nil || n != 1 {
		t.Fatalf("DeleteOrphanTasks = %d, %v", n, err)
	}
}

func TestOrphanIDsOnlyMatchesCheckedProjects(t *testing.T) {
	tests := []struct {
		name       string
		referenced []any
		existing   []any
		want       []any
	}{
		{"all present", []any{"p1", "p2"}, []any{"p2", "p1"}, nil},
		{"one missing", []any{"p1", "p2"}, []any{"p1"}, []any{"p2"}},
		{"none present", []any{"p1"}, nil, []any{"p1"}},
		// p2 gained a task after the tasks were scanned; it was never looked
		// up and must not be matched.
		{"unscanned project ignored", []any{"p1"}, []any{"p1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orphanIDs(tt.referenced, tt.existing)
			if len(got) != len(tt.want) {
				t.Fatalf("orphanIDs = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("orphanIDs = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestMongoOrphanSweepKeepsLiveTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := models.User{ID: uuid.NewString(), Name: "A", Email: "a@example.com", PasswordHash: "x", Country: "NL", CreatedAt: time.Now().UTC()}
	if err := s.CreateUser(ctx, &u); err != nil {
		t.Fatal(err)
	}
	p := models.Project{ID: uuid.NewString(), UserID: u.ID, Name: "P", Description: "d", CreatedAt: time.Now().UTC()}
	if err := s.CreateProjectWithinLimit(ctx, &p, 4); err != nil {
		t.Fatal(err)
	}

	live := models.Task{ID: uuid.NewString(), ProjectID: p.ID, UserID: u.ID, Title: "T", Description: "d", CreatedAt: time.Now().UTC()}
	orphan := models.Task{ID: uuid.NewString(), ProjectID: "gone", UserID: u.ID, Title: "T", Description: "d", CreatedAt: time.Now().UTC()}
	for _, task := range []*models.Task{&live, &orphan} {
		task.InitStatus(time.Now().UTC())
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.DeleteOrphanTasks(ctx)
	if err != nil || n != 1 {
		t.Fatalf("DeleteOrphanTasks = %d, %v", n, err)
	}
	if _, err := s.GetTask(ctx, live.ID); err != nil {
		t.Fatalf("live task removed: %v", err)
	}
	if _, err := s.GetTask(ctx, orphan.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("orphan survived: %v", err)
	}
}
