package common

import (
	"context"
	"testing"
)

func TestUserContext_RoundTrip(t *testing.T) {
	ctx := context.Background()

	// Absent by default
	if uc := UserContextFromContext(ctx); uc != nil {
		t.Error("Expected nil UserContext from empty context")
	}

	uc := &UserContext{
		UserID: "user-123",
		Email:  "maria@example.com",
		Role:   "user",
	}
	ctx = WithUserContext(ctx, uc)

	got := UserContextFromContext(ctx)
	if got == nil {
		t.Fatal("Expected non-nil UserContext")
	}
	if got.UserID != "user-123" {
		t.Errorf("Expected user-123, got %s", got.UserID)
	}
	if got.Email != "maria@example.com" {
		t.Errorf("Expected maria@example.com, got %s", got.Email)
	}
	if got.Role != "user" {
		t.Errorf("Expected user, got %s", got.Role)
	}
}

func TestResolveUserID(t *testing.T) {
	ctx := context.Background()

	if got := ResolveUserID(ctx); got != "" {
		t.Errorf("Expected empty user id, got %q", got)
	}

	ctx = WithUserContext(ctx, &UserContext{UserID: "user-123"})
	if got := ResolveUserID(ctx); got != "user-123" {
		t.Errorf("Expected user-123, got %q", got)
	}
}
