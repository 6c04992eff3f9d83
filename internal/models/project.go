package models

import (
	"strings"
	"time"
)

// Project groups tasks and belongs to exactly one user.
type Project struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	UserID      string    `json:"user" bson:"userId"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// ProjectRequest is the JSON body for POST /api/projects. It is also used to
// re-validate a project after a partial update has been merged.
type ProjectRequest struct {
	Name        string `json:"name" validate:"required,max=100" message:"Project name is required" message_max:"Name cannot be more than 100 characters"`
	Description string `json:"description" validate:"required" message:"Description is required"`
}

// Normalize trims the name.
func (req *ProjectRequest) Normalize() {
	req.Name = strings.TrimSpace(req.Name)
}

// ProjectUpdateRequest is the JSON body for PUT /api/projects/{id}. Absent
// fields keep their stored value.
type ProjectUpdateRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=100" message:"Project name is required" message_max:"Name cannot be more than 100 characters"`
	Description *string `json:"description" validate:"omitnil,min=1" message:"Description is required"`
}

// Normalize trims a present name.
func (req *ProjectUpdateRequest) Normalize() {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
}

// Apply merges the present fields of req into p.
func (req ProjectUpdateRequest) Apply(p *Project) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
}
