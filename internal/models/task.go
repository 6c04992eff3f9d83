package models

import "time"

// TaskStatus is the progress state of a task. Any state may move to any other.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "Not Started"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a unit of work inside a project. CompletedAt is set exactly when
// Status is Completed.
type Task struct {
	ID          string      `json:"id" bson:"_id"`
	Title       string      `json:"title" bson:"title"`
	Description string      `json:"description" bson:"description"`
	ProjectID   string      `json:"projectId" bson:"projectId"`
	UserID      string      `json:"user" bson:"userId"`
	Status      TaskStatus  `json:"status" bson:"status"`
	CompletedAt *time.Time  `json:"completedAt" bson:"completedAt"`
	CreatedAt   time.Time   `json:"createdAt" bson:"createdAt"`
	Project     *ProjectRef `json:"project,omitempty" bson:"-"`
}

// ProjectRef is the part of a project shown alongside a single task.
type ProjectRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TaskRequest is the JSON body for POST /api/projects/{id}/tasks.
type TaskRequest struct {
	Title       string  `json:"title" validate:"required" message:"Title is required"`
	Description string  `json:"description" validate:"required" message:"Description is required"`
	Project     string  `json:"project" validate:"required" message:"Project ID is required"`
	Status      *string `json:"status" validate:"omitnil,oneof='Not Started' 'In Progress' 'Completed'" message:"Invalid status"`
}

// TaskUpdateRequest is the JSON body for PUT /api/tasks/{id}. Every field is
// optional.
type TaskUpdateRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1" message:"Title is required"`
	Description *string `json:"description" validate:"omitnil,min=1" message:"Description is required"`
	Status      *string `json:"status" validate:"omitnil,oneof='Not Started' 'In Progress' 'Completed'" message:"Invalid status"`
}

// InitStatus defaults the status of a new task and derives CompletedAt from
// it, so the task can be stored in a single write.
func (t *Task) InitStatus(now time.Time) {
	if t.Status == "" {
		t.Status = StatusNotStarted
	}
	if t.Status == StatusCompleted {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
}

// ApplyUpdate merges req into t. The completedAt rules are evaluated against
// the status t held before the update:
//   - entering Completed sets CompletedAt to now;
//   - leaving Completed for an explicit other status clears it;
//   - an update without a status leaves it untouched.
func (t *Task) ApplyUpdate(req TaskUpdateRequest, now time.Time) {
	if req.Status != nil {
		prev := t.Status
		next := TaskStatus(*req.Status)
		if next == StatusCompleted && prev != StatusCompleted {
			t.CompletedAt = &now
		}
		if prev == StatusCompleted && next != StatusCompleted {
			t.CompletedAt = nil
		}
		t.Status = next
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
}
