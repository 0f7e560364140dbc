package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/adanyl0v/project-tracker/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	registered, err := env.auth.Register(ctx, CredentialsParams{Email: "  Alice@X.io ", Password: "secret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if registered.User.Email != "alice@x.io" {
		t.Errorf("Expected normalized email, got %q", registered.User.Email)
	}
	if registered.User.Password != "" {
		t.Error("Expected password hash to be stripped from the result")
	}

	payload, err := env.tokens.Verify(registered.Token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if payload.UserID != registered.User.ID {
		t.Errorf("Expected token for %q, got %q", registered.User.ID, payload.UserID)
	}

	loggedIn, err := env.auth.Login(ctx, CredentialsParams{Email: "alice@x.io", Password: "secret"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Errorf("Expected user %q, got %q", registered.User.ID, loggedIn.User.ID)
	}
}

func TestRegisterErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Register(ctx, CredentialsParams{Email: "alice@x.io", Password: "secret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name    string
		params  CredentialsParams
		wantErr error
	}{
		{name: "duplicate email", params: CredentialsParams{Email: "ALICE@x.io", Password: "other"}, wantErr: ErrUserAlreadyExists},
		{name: "missing email", params: CredentialsParams{Password: "secret"}, wantErr: ErrValidation},
		{name: "blank email", params: CredentialsParams{Email: "   ", Password: "secret"}, wantErr: ErrValidation},
		{name: "missing password", params: CredentialsParams{Email: "bob@x.io"}, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoginErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Register(ctx, CredentialsParams{Email: "alice@x.io", Password: "secret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name    string
		params  CredentialsParams
		wantErr error
	}{
		{name: "wrong password", params: CredentialsParams{Email: "alice@x.io", Password: "wrong"}, wantErr: ErrInvalidCredentials},
		{name: "unknown email", params: CredentialsParams{Email: "nobody@x.io", Password: "secret"}, wantErr: ErrInvalidCredentials},
		{name: "missing password", params: CredentialsParams{Email: "alice@x.io"}, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.auth.Login(ctx, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if result != nil {
				t.Error("Expected no result on failure")
			}
		})
	}
}

func TestLoginWithBcryptHash(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("legacy-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{Email: "legacy@x.io", Password: string(hash)}
	if err := env.store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	result, err := env.auth.Login(ctx, CredentialsParams{Email: "legacy@x.io", Password: "legacy-secret"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.User.ID != user.ID {
		t.Errorf("Expected user %q, got %q", user.ID, result.User.ID)
	}

	_, err = env.auth.Login(ctx, CredentialsParams{Email: "legacy@x.io", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}
