package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{name: "none", want: ""},
		{name: "bearer header", header: "Bearer header-token", want: "header-token"},
		{name: "lowercase scheme", header: "bearer header-token", want: "header-token"},
		{name: "cookie only", cookie: "cookie-token", want: "cookie-token"},
		{name: "header wins over cookie", header: "Bearer header-token", cookie: "cookie-token", want: "header-token"},
		{name: "basic header falls back to cookie", header: "Basic dXNlcjpwYXNz", cookie: "cookie-token", want: "cookie-token"},
		{name: "empty bearer falls back to cookie", header: "Bearer ", cookie: "cookie-token", want: "cookie-token"},
		{name: "scheme without token", header: "Bearer", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(AuthorizationHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}

			got := ExtractToken(req)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	alice, err := env.auth.Register(ctx, CredentialsParams{Email: "alice@x.io", Password: "secret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	bob, err := env.auth.Register(ctx, CredentialsParams{Email: "bob@x.io", Password: "secret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		cookie   string
		wantUser string
	}{
		{name: "no credentials", wantUser: ""},
		{name: "bearer token", header: "Bearer " + alice.Token, wantUser: alice.User.ID},
		{name: "cookie token", cookie: bob.Token, wantUser: bob.User.ID},
		{name: "header takes priority", header: "Bearer " + alice.Token, cookie: bob.Token, wantUser: alice.User.ID},
		{name: "invalid token", header: "Bearer garbage", wantUser: ""},
		{name: "invalid header token does not fall back", header: "Bearer garbage", cookie: bob.Token, wantUser: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(AuthorizationHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}

			user, err := env.resolver.Resolve(ctx, req)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}

			if tt.wantUser == "" {
				if user != nil {
					t.Errorf("Expected no user, got %q", user.ID)
				}
				return
			}
			if user == nil {
				t.Fatalf("Expected user %q, got none", tt.wantUser)
			}
			if user.ID != tt.wantUser {
				t.Errorf("Expected user %q, got %q", tt.wantUser, user.ID)
			}
			if user.Password != "" {
				t.Error("Expected password hash to be stripped")
			}
		})
	}
}

func TestResolveDeletedUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	result, err := env.auth.Register(ctx, CredentialsParams{Email: "gone@x.io", Password: "secret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	env.store.DeleteUser(result.User.ID)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+result.Token)

	user, err := env.resolver.Resolve(ctx, req)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if user != nil {
		t.Errorf("Expected no user for a deleted account, got %q", user.ID)
	}
}
