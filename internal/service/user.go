package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/taskzero/taskzero/internal/auth"
	"github.com/taskzero/taskzero/internal/metrics"
	"github.com/taskzero/taskzero/internal/model"
	"github.com/taskzero/taskzero/internal/repository"
)

// User service errors.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameExists  = errors.New("username already exists")
	ErrEmailExists     = errors.New("email already exists")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidPassword = errors.New("invalid password")
)

// Password and username limits.
const (
	minPasswordLength = 6
	maxUsernameLength = 64
)

// UserStore is the persistence capability for user records.
// Implemented by *repository.Repository.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// UserService handles user account business logic.
type UserService struct {
	store   UserStore
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		metrics: recorder,
	}
}

// RegisterUserInput defines input for registering a user.
type RegisterUserInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new user account with a hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*model.User, error) {
	if err := validateCredentials(input.Username, input.Email, input.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameExists
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Get retrieves a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// List retrieves users with offset/limit pagination. A non-positive
// limit returns everything.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUserInput defines input for a full user update.
type UpdateUserInput struct {
	ID       int64
	Username string
	Email    string
	Password string
}

// Update replaces a user's account fields. Only the account owner may
// update it; the ownership check runs before any lookup so a mismatched
// id is rejected as permission-denied regardless of whether the target
// exists.
func (s *UserService) Update(ctx context.Context, identity *auth.Identity, input UpdateUserInput) (*model.User, error) {
	if err := auth.Authorize(identity, input.ID); err != nil {
		return nil, err
	}

	if err := validateCredentials(input.Username, input.Email, input.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           input.ID,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameExists
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.metrics.IncUserUpdated()

	return user, nil
}

// Delete removes a user's account. Only the account owner may delete it.
func (s *UserService) Delete(ctx context.Context, identity *auth.Identity, id int64) error {
	if err := auth.Authorize(identity, id); err != nil {
		return err
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.metrics.IncUserDeleted()

	return nil
}

// validateCredentials checks username, email, and password shape.
func validateCredentials(username, email, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLength {
		return ErrInvalidUsername
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}
