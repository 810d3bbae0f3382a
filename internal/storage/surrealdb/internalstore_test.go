package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granahq/grana/internal/models"
)

func TestInternalStoreUserLifecycle(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())
	ctx := context.Background()

	user := &models.InternalUser{
		UserID:       "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$fakehash",
		Role:         models.RoleUser,
		CreatedAt:    time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.SaveUser(ctx, user))

	got, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.False(t, got.ModifiedAt.IsZero())

	ids, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "alice")

	require.NoError(t, store.DeleteUser(ctx, "alice"))
	_, err = store.GetUser(ctx, "alice")
	assert.Error(t, err)
}

func TestInternalStoreGetUserByEmail(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, &models.InternalUser{
		UserID:       "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$fakehash",
		Role:         models.RoleUser,
		CreatedAt:    time.Now().Truncate(time.Second),
	}))
	require.NoError(t, store.SaveUser(ctx, &models.InternalUser{
		UserID:       "bob",
		Email:        "bob@example.com",
		PasswordHash: "$2a$10$otherhash",
		Role:         models.RoleUser,
		CreatedAt:    time.Now().Truncate(time.Second),
	}))

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "$2a$10$fakehash", got.PasswordHash)

	_, err = store.GetUserByEmail(ctx, "ghost@example.com")
	assert.Error(t, err)
}

func TestInternalStoreGetUserByEmailEmpty(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())
	ctx := context.Background()

	// Seed a user so an empty filter would have something to match.
	require.NoError(t, store.SaveUser(ctx, &models.InternalUser{
		UserID:       "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$fakehash",
		Role:         models.RoleUser,
		CreatedAt:    time.Now().Truncate(time.Second),
	}))

	_, err := store.GetUserByEmail(ctx, "")
	assert.Error(t, err)
}

func TestInternalStoreGetUserNotFound(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())

	_, err := store.GetUser(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestInternalStoreUserKV(t *testing.T) {
	db := testDB(t)
	store := NewInternalStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.SetUserKV(ctx, "alice", "currency", "BRL"))
	require.NoError(t, store.SetUserKV(ctx, "alice", "theme", "dark"))

	kv, err := store.GetUserKV(ctx, "alice", "currency")
	require.NoError(t, err)
	assert.Equal(t, "BRL", kv.Value)

	// Overwrite keeps one row per key.
	require.NoError(t, store.SetUserKV(ctx, "alice", "currency", "USD"))
	kv, err = store.GetUserKV(ctx, "alice", "currency")
	require.NoError(t, err)
	assert.Equal(t, "USD", kv.Value)

	all, err := store.ListUserKV(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.DeleteUserKV(ctx, "alice", "theme"))
	all, err = store.ListUserKV(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
