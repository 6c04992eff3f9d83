package models

import "time"

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"` // Never expose this to the client
	Country      string    `json:"country" bson:"country"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// SignupRequest is the JSON body for POST /api/auth/signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required" message:"Name is required"`
	Email    string `json:"email" validate:"required,email" message:"Please include a valid email"`
	Password string `json:"password" validate:"min=6" message:"Please enter a password with 6 or more characters"`
	Country  string `json:"country" validate:"required" message:"Country is required"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" message:"Please include a valid email"`
	Password string `json:"password" validate:"required" message:"Password is required"`
}
