// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskzero/taskzero/internal/auth"
	"github.com/taskzero/taskzero/internal/metrics"
	"github.com/taskzero/taskzero/internal/model"
	"github.com/taskzero/taskzero/internal/repository"
)

// ErrInvalidCredentials covers both an unknown email and a wrong
// password. The two causes are collapsed into one error to avoid
// account enumeration at the login endpoint.
var ErrInvalidCredentials = errors.New("incorrect email or password")

// CredentialStore is the lookup capability the login flow needs.
// Implemented by *repository.Repository.
type CredentialStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// dummyHash keeps the login path doing comparable hashing work whether
// or not the email exists, so response timing does not leak which
// field was wrong.
var dummyHash, _ = auth.HashPassword("taskzero-timing-equalizer")

// AuthService handles credential verification and token issuance.
type AuthService struct {
	store   CredentialStore
	codec   *auth.TokenCodec
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(store CredentialStore, codec *auth.TokenCodec, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:   store,
		codec:   codec,
		metrics: recorder,
	}
}

// Login verifies the credentials and mints a bearer token whose subject
// is the user's email.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.VerifyPassword(password, dummyHash)
			s.metrics.IncLoginFailure()
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user for login: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.metrics.IncLoginFailure()
		return "", ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLoginSuccess()

	return token, nil
}
