// Package store defines the persistence boundary shared by the sqlite and
// mongo backends.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/isdelr/tasktrack-be/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("store: duplicate")
	// ErrLimitReached is returned when a conditional insert finds the owner
	// already at the limit.
	ErrLimitReached = errors.New("store: limit reached")
	// ErrStale is returned when a conditional update finds the record changed
	// since it was read.
	ErrStale = errors.New("store: stale record")
)

// Users persists accounts.
type Users interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// Projects persists projects. Every write is a single atomic operation.
type Projects interface {
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (models.Project, error)
	CountProjects(ctx context.Context, userID string) (int, error)
	// CreateProjectWithinLimit inserts p only if its owner has fewer than
	// limit projects, checking and inserting in one step.
	CreateProjectWithinLimit(ctx context.Context, p *models.Project, limit int) error
	UpdateProject(ctx context.Context, p models.Project) error
	// DeleteProjectCascade removes the project together with its tasks and
	// returns the number of tasks removed.
	DeleteProjectCascade(ctx context.Context, id string) (int64, error)
}

// Tasks persists tasks.
type Tasks interface {
	ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	CountTasksByProject(ctx context.Context, projectID string) (int, error)
	CreateTask(ctx context.Context, t *models.Task) error
	// UpdateTask writes t only if the stored status still equals
	// expectedStatus, returning ErrStale otherwise.
	UpdateTask(ctx context.Context, t models.Task, expectedStatus models.TaskStatus) error
	DeleteTask(ctx context.Context, id string) error
	// DeleteOrphanTasks removes tasks whose project no longer exists.
	DeleteOrphanTasks(ctx context.Context) (int64, error)
}

// Events persists the activity log.
type Events interface {
	CreateEvent(ctx context.Context, e *models.Event) error
	// ListEvents returns a user's most recent events, newest first.
	ListEvents(ctx context.Context, userID string, limit int) ([]models.Event, error)
	PruneEvents(ctx context.Context, before time.Time) (int64, error)
}

// Store is a complete backend.
type Store interface {
	Users
	Projects
	Tasks
	Events
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
