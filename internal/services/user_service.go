package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/tasktrack-be/internal/apperror"
	"github.com/isdelr/tasktrack-be/internal/models"
	"github.com/isdelr/tasktrack-be/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Signup(ctx context.Context, req models.SignupRequest) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	users    store.Users
	events   EventServiceProvider
	hashCost int
	now      func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(users store.Users, events EventServiceProvider) *UserService {
	return &UserService{users: users, events: events, hashCost: bcrypt.DefaultCost, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new account, hashing its password.
func (s *UserService) Signup(ctx context.Context, req models.SignupRequest) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return models.User{}, apperror.Internal(fmt.Errorf("hash password: %w", err))
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hashedPassword),
		Country:      strings.TrimSpace(req.Country),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.User{}, apperror.BadRequest("User already exists")
		}
		return models.User{}, apperror.Internal(err)
	}

	s.events.Record(ctx, models.Event{UserID: user.ID, Type: models.EventUserSignup, Message: "Welcome, " + user.Name})
	return user, nil
}

// Authenticate verifies a user's credentials. An unknown email and a wrong
// password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, apperror.Unauthorized("Invalid credentials")
		}
		return models.User{}, apperror.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apperror.Unauthorized("Invalid credentials")
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, storeError(err, "User not found with id of "+id)
	}
	return user, nil
}
