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
	"github.com/isdelr/tasktrack-be/internal/validation"
	"github.com/rs/zerolog"
)

// ProjectServiceProvider defines the interface for project services.
type ProjectServiceProvider interface {
	List(ctx context.Context, callerID string) ([]models.Project, error)
	Get(ctx context.Context, callerID, id string) (models.Project, error)
	Create(ctx context.Context, callerID string, req models.ProjectRequest) (models.Project, error)
	Update(ctx context.Context, callerID, id string, req models.ProjectUpdateRequest) (models.Project, error)
	Delete(ctx context.Context, callerID, id string) error
}

// ProjectService provides business logic for projects.
type ProjectService struct {
	projects store.Projects
	events   EventServiceProvider
	limit    int
	now      func() time.Time
}

// NewProjectService creates a new ProjectService allowing each user at most
// limit projects.
func NewProjectService(projects store.Projects, events EventServiceProvider, limit int) *ProjectService {
	return &ProjectService{projects: projects, events: events, limit: limit, now: time.Now}
}

// List returns the caller's projects in creation order.
func (s *ProjectService) List(ctx context.Context, callerID string) ([]models.Project, error) {
	projects, err := s.projects.ListProjects(ctx, callerID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return projects, nil
}

// load fetches a project and runs the ownership gate with the given verb.
func (s *ProjectService) load(ctx context.Context, callerID, id, verb string) (models.Project, error) {
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, storeError(err, "Project not found with id of "+id)
	}
	if err := authorize(p.UserID, callerID, "User not authorized to "+verb+" this project"); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, callerID, id string) (models.Project, error) {
	return s.load(ctx, callerID, id, "access")
}

// Create stores a new project owned by the caller, refusing once the caller
// holds the maximum number of projects.
func (s *ProjectService) Create(ctx context.Context, callerID string, req models.ProjectRequest) (models.Project, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return models.Project{}, err
	}

	p := models.Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		UserID:      callerID,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.projects.CreateProjectWithinLimit(ctx, &p, s.limit); err != nil {
		if errors.Is(err, store.ErrLimitReached) {
			return models.Project{}, apperror.BadRequest(fmt.Sprintf("User can only have up to %d projects", s.limit))
		}
		return models.Project{}, apperror.Internal(err)
	}

	s.events.Record(ctx, models.Event{
		UserID:    callerID,
		Type:      models.EventProjectCreate,
		Message:   fmt.Sprintf("Project '%s' created", p.Name),
		ProjectID: &p.ID,
	})
	return p, nil
}

// Update merges the fields present in req into the stored project. The
// result must still satisfy the creation rules.
func (s *ProjectService) Update(ctx context.Context, callerID, id string, req models.ProjectUpdateRequest) (models.Project, error) {
	p, err := s.load(ctx, callerID, id, "update")
	if err != nil {
		return models.Project{}, err
	}

	req.Normalize()
	req.Apply(&p)
	if err := validation.Struct(models.ProjectRequest{Name: p.Name, Description: p.Description}); err != nil {
		return models.Project{}, err
	}

	if err := s.projects.UpdateProject(ctx, p); err != nil {
		return models.Project{}, storeError(err, "Project not found with id of "+id)
	}

	s.events.Record(ctx, models.Event{
		UserID:    callerID,
		Type:      models.EventProjectUpdate,
		Message:   fmt.Sprintf("Project '%s' updated", p.Name),
		ProjectID: &p.ID,
	})
	return p, nil
}

// Delete removes the project and every task in it.
func (s *ProjectService) Delete(ctx context.Context, callerID, id string) error {
	p, err := s.load(ctx, callerID, id, "delete")
	if err != nil {
		return err
	}

	removed, err := s.projects.DeleteProjectCascade(ctx, id)
	if err != nil {
		return storeError(err, "Project not found with id of "+id)
	}
	zerolog.Ctx(ctx).Info().Str("project_id", id).Int64("tasks_removed", removed).Msg("Project deleted")

	s.events.Record(ctx, models.Event{
		UserID:  callerID,
		Type:    models.EventProjectDelete,
		Message: fmt.Sprintf("Project '%s' deleted with %d tasks", p.Name, removed),
	})
	return nil
}
