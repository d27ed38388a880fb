package service

import (
	"context"
	"errors"
	"testing"

	"github.com/taskzero/taskzero/internal/auth"
	"github.com/taskzero/taskzero/internal/testutil"
)

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	svc := NewUserService(testutil.NewMemStore(), nil)

	user, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "usertest",
		Email:    "user@test.com",
		Password: "password",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.ID == 0 {
		t.Error("expected generated id")
	}
	if user.PasswordHash == "password" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if !auth.VerifyPassword("password", user.PasswordHash) {
		t.Error("stored hash should verify against the plaintext")
	}
}

func TestUserService_Register_Duplicates(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	svc := NewUserService(store, nil)

	if _, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "usertest", Email: "user@test.com", Password: "password",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "usertest", Email: "new@test.com", Password: "password",
	})
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterUserInput{
		Username: "newuser", Email: "user@test.com", Password: "password",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := NewUserService(testutil.NewMemStore(), nil)

	tests := []struct {
		name  string
		input RegisterUserInput
		want  error
	}{
		{"empty username", RegisterUserInput{Username: "", Email: "a@b.com", Password: "password"}, ErrInvalidUsername},
		{"bad email", RegisterUserInput{Username: "user", Email: "not-an-email", Password: "password"}, ErrInvalidEmail},
		{"short password", RegisterUserInput{Username: "user", Email: "a@b.com", Password: "abc"}, ErrInvalidPassword},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := svc.Register(context.Background(), tt.input); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUserService_GetAndList(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	svc := NewUserService(store, nil)

	created, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "usertest", Email: "user@test.com", Password: "password",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Username != "usertest" {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := svc.Get(context.Background(), 666); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	users, err := svc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users))
	}
}

func TestUserService_Update(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	svc := NewUserService(store, nil)

	created, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "usertest", Email: "user@test.com", Password: "password",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	identity := &auth.Identity{ID: created.ID, Email: created.Email}

	updated, err := svc.Update(context.Background(), identity, UpdateUserInput{
		ID:       created.ID,
		Username: "bob",
		Email:    "bob@test.com",
		Password: "password",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Username != "bob" || updated.Email != "bob@test.com" {
		t.Errorf("unexpected updated user: %+v", updated)
	}
}

func TestUserService_Update_OtherUserDenied(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	svc := NewUserService(store, nil)

	created, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "usertest", Email: "user@test.com", Password: "password",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	identity := &auth.Identity{ID: created.ID, Email: created.Email}

	// Denied even though the target id does not exist: the ownership
	// check runs before any lookup.
	_, err = svc.Update(context.Background(), identity, UpdateUserInput{
		ID:       created.ID + 1,
		Username: "mallory",
		Email:    "mallory@test.com",
		Password: "password",
	})
	if !errors.Is(err, auth.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	svc := NewUserService(store, nil)

	created, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "usertest", Email: "user@test.com", Password: "password",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	identity := &auth.Identity{ID: created.ID, Email: created.Email}

	if err := svc.Delete(context.Background(), identity, created.ID+1); !errors.Is(err, auth.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	if err := svc.Delete(context.Background(), identity, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after delete, got %v", err)
	}
}
