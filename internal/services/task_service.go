package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/tasktrack-be/internal/apperror"
	"github.com/isdelr/tasktrack-be/internal/models"
	"github.com/isdelr/tasktrack-be/internal/store"
	"github.com/rs/zerolog"
)

// maxUpdateAttempts bounds the re-read loop of a conflicting task update.
const maxUpdateAttempts = 3

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider interface {
	ListForProject(ctx context.Context, callerID, projectID string) ([]models.Task, error)
	Get(ctx context.Context, callerID, id string) (models.Task, error)
	Create(ctx context.Context, callerID, projectID string, req models.TaskRequest) (models.Task, error)
	Update(ctx context.Context, callerID, id string, req models.TaskUpdateRequest) (models.Task, error)
	Delete(ctx context.Context, callerID, id string) error
}

// TaskService provides business logic for tasks. Access to a task follows the
// task's own owner; access to a project's task list follows the project's.
type TaskService struct {
	tasks    store.Tasks
	projects store.Projects
	events   EventServiceProvider
	now      func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks store.Tasks, projects store.Projects, events EventServiceProvider) *TaskService {
	return &TaskService{tasks: tasks, projects: projects, events: events, now: time.Now}
}

func (s *TaskService) project(ctx context.Context, callerID, projectID, msg string) (models.Project, error) {
	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return models.Project{}, storeError(err, "Project not found with id of "+projectID)
	}
	if err := authorize(p.UserID, callerID, msg); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (s *TaskService) task(ctx context.Context, callerID, id, verb string) (models.Task, error) {
	t, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, storeError(err, "Task not found with id of "+id)
	}
	if err := authorize(t.UserID, callerID, "User not authorized to "+verb+" this task"); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// ListForProject returns the tasks of a project the caller owns.
func (s *TaskService) ListForProject(ctx context.Context, callerID, projectID string) ([]models.Task, error) {
	if _, err := s.project(ctx, callerID, projectID, "User not authorized to access this project's tasks"); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListTasksByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return tasks, nil
}

// Get returns a single task with its project's name and description.
func (s *TaskService) Get(ctx context.Context, callerID, id string) (models.Task, error) {
	t, err := s.task(ctx, callerID, id, "access")
	if err != nil {
		return models.Task{}, err
	}

	p, err := s.projects.GetProject(ctx, t.ProjectID)
	switch {
	case err == nil:
		t.Project = &models.ProjectRef{ID: p.ID, Name: p.Name, Description: p.Description}
	case errors.Is(err, store.ErrNotFound):
		// Orphan awaiting the maintenance sweep; serve it without the project.
	default:
		return models.Task{}, apperror.Internal(err)
	}
	return t, nil
}

// Create adds a task to projectID. The status defaults to Not Started and
// completedAt is derived before the single insert.
func (s *TaskService) Create(ctx context.Context, callerID, projectID string, req models.TaskRequest) (models.Task, error) {
	if _, err := s.project(ctx, callerID, projectID, "User not authorized to add a task to this project"); err != nil {
		return models.Task{}, err
	}

	now := s.now().UTC()
	t := models.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   projectID,
		UserID:      callerID,
		CreatedAt:   now,
	}
	if req.Status != nil {
		t.Status = models.TaskStatus(*req.Status)
	}
	t.InitStatus(now)

	if err := s.tasks.CreateTask(ctx, &t); err != nil {
		return models.Task{}, apperror.Internal(err)
	}

	s.events.Record(ctx, models.Event{
		UserID:    callerID,
		Type:      models.EventTaskCreate,
		Message:   fmt.Sprintf("Task '%s' created", t.Title),
		ProjectID: &t.ProjectID,
		TaskID:    &t.ID,
	})
	return t, nil
}

// Update applies req to the stored task. The write only lands if the status
// is still the one the completedAt rules were evaluated against; otherwise
// the task is re-read and the rules re-applied.
func (s *TaskService) Update(ctx context.Context, callerID, id string, req models.TaskUpdateRequest) (models.Task, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		t, err := s.task(ctx, callerID, id, "update")
		if err != nil {
			return models.Task{}, err
		}

		prev := t.Status
		t.ApplyUpdate(req, s.now().UTC())

		err = s.tasks.UpdateTask(ctx, t, prev)
		if errors.Is(err, store.ErrStale) {
			zerolog.Ctx(ctx).Debug().Str("task_id", id).Int("attempt", attempt).Msg("Task changed concurrently, retrying update")
			continue
		}
		if err != nil {
			return models.Task{}, storeError(err, "Task not found with id of "+id)
		}

		s.recordTaskUpdate(ctx, t, prev)
		return t, nil
	}
	return models.Task{}, apperror.Internal(fmt.Errorf("task %s: update conflicted %d times", id, maxUpdateAttempts))
}

func (s *TaskService) recordTaskUpdate(ctx context.Context, t models.Task, prev models.TaskStatus) {
	e := models.Event{
		UserID:    t.UserID,
		Type:      models.EventTaskUpdate,
		Message:   fmt.Sprintf("Task '%s' updated", t.Title),
		ProjectID: &t.ProjectID,
		TaskID:    &t.ID,
	}
	if t.Status == models.StatusCompleted && prev != models.StatusCompleted {
		e.Type = models.EventTaskComplete
		e.Message = fmt.Sprintf("Task '%s' completed", t.Title)
	}
	s.events.Record(ctx, e)
}

func (s *TaskService) Delete(ctx context.Context, callerID, id string) error {
	t, err := s.task(ctx, callerID, id, "delete")
	if err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return storeError(err, "Task not found with id of "+id)
	}

	s.events.Record(ctx, models.Event{
		UserID:    callerID,
		Type:      models.EventTaskDelete,
		Message:   fmt.Sprintf("Task '%s' deleted", t.Title),
		ProjectID: &t.ProjectID,
	})
	return nil
}
