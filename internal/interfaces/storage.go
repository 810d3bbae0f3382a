package interfaces

import (
	"context"

	"github.com/granahq/grana/internal/models"
)

// StorageManager provides access to all storage areas.
type StorageManager interface {
	InternalStore() InternalStore
	UserDataStore() UserDataStore
	MarketStore() MarketStore
	Close() error
}

// InternalStore persists user accounts and per-user key-value settings.
type InternalStore interface {
	GetUser(ctx context.Context, userID string) (*models.InternalUser, error)
	GetUserByEmail(ctx context.Context, email string) (*models.InternalUser, error)
	SaveUser(ctx context.Context, user *models.InternalUser) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]string, error)

	GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error)
	SetUserKV(ctx context.Context, userID, key, value string) error
	DeleteUserKV(ctx context.Context, userID, key string) error
	ListUserKV(ctx context.Context, userID string) ([]*models.UserKeyValue, error)
}

// QueryOptions controls ordering and limits for user data queries.
type QueryOptions struct {
	OrderBy string // "datetime_asc" or "datetime_desc" (default)
	Limit   int
}

// UserDataStore persists user domain data as subject-scoped records.
type UserDataStore interface {
	Get(ctx context.Context, userID, subject, key string) (*models.UserRecord, error)
	Put(ctx context.Context, record *models.UserRecord) error
	Delete(ctx context.Context, userID, subject, key string) error
	List(ctx context.Context, userID, subject string) ([]*models.UserRecord, error)
	Query(ctx context.Context, userID, subject string, opts QueryOptions) ([]*models.UserRecord, error)
}

// MarketStore persists the latest quote snapshot shared by all users.
type MarketStore interface {
	GetQuoteSnapshot(ctx context.Context) (*models.QuoteSnapshot, error)
	SaveQuoteSnapshot(ctx context.Context, snapshot *models.QuoteSnapshot) error
}
