package models

import "time"

// Event types recorded in the activity log.
const (
	EventUserSignup    = "user.signup"
	EventProjectCreate = "project.create"
	EventProjectUpdate = "project.update"
	EventProjectDelete = "project.delete"
	EventTaskCreate    = "task.create"
	EventTaskUpdate    = "task.update"
	EventTaskComplete  = "task.complete"
	EventTaskDelete    = "task.delete"
)

// Event represents one entry in a user's activity log.
type Event struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"-" bson:"userId"`
	Type      string    `json:"type" bson:"type"` // e.g., "project.create", "task.complete"
	Message   string    `json:"message" bson:"message"`
	ProjectID *string   `json:"projectId,omitempty" bson:"projectId,omitempty"`
	TaskID    *string   `json:"taskId,omitempty" bson:"taskId,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
