package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/granahq/grana/internal/common"
	"github.com/granahq/grana/internal/interfaces"
	"github.com/granahq/grana/internal/models"
)

// UserStore persists user domain data (transactions, banks, budgets, goals,
// holdings, notifications, snapshots) as subject-scoped records in the
// user_data table.
type UserStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewUserStore(db *surrealdb.DB, logger *common.Logger) *UserStore {
	return &UserStore{
		db:     db,
		logger: logger,
	}
}

func recordID(userID, subject, key string) string {
	return userID + "_" + subject + "_" + key
}

// Get returns nil without error when the record does not exist.
func (s *UserStore) Get(ctx context.Context, userID, subject, key string) (*models.UserRecord, error) {
	record, err := surrealdb.Select[models.UserRecord](ctx, s.db, surrealmodels.NewRecordID("user_data", recordID(userID, subject, key)))
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select user record: %w", err)
	}
	return record, nil
}

func (s *UserStore) Put(ctx context.Context, record *models.UserRecord) error {
	id := recordID(record.UserID, record.Subject, record.Key)
	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("user_data", id), "record": record}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.UserRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to put user record after retries: %w", lastErr)
}

func (s *UserStore) Delete(ctx context.Context, userID, subject, key string) error {
	_, err := surrealdb.Delete[models.UserRecord](ctx, s.db, surrealmodels.NewRecordID("user_data", recordID(userID, subject, key)))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete user record: %w", err)
	}
	return nil
}

func (s *UserStore) List(ctx context.Context, userID, subject string) ([]*models.UserRecord, error) {
	sql := "SELECT * FROM user_data WHERE user_id = $user_id AND subject = $subject"
	vars := map[string]any{
		"user_id": userID,
		"subject": subject,
	}

	results, err := surrealdb.Query[[]models.UserRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list user records: %w", err)
	}

	return flattenRecords(results), nil
}

func (s *UserStore) Query(ctx context.Context, userID, subject string, opts interfaces.QueryOptions) ([]*models.UserRecord, error) {
	sql := "SELECT * FROM user_data WHERE user_id = $user_id AND subject = $subject"

	if opts.OrderBy == "datetime_asc" {
		sql += " ORDER BY datetime ASC"
	} else {
		sql += " ORDER BY datetime DESC"
	}

	if opts.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	vars := map[string]any{
		"user_id": userID,
		"subject": subject,
	}

	results, err := surrealdb.Query[[]models.UserRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query user records: %w", err)
	}

	return flattenRecords(results), nil
}

func flattenRecords(results *[]surrealdb.QueryResult[[]models.UserRecord]) []*models.UserRecord {
	if results == nil || len(*results) == 0 {
		return nil
	}
	var mapped []*models.UserRecord
	for i := range (*results)[0].Result {
		mapped = append(mapped, &(*results)[0].Result[i])
	}
	return mapped
}

// Ensure UserStore implements UserDataStore
var _ interfaces.UserDataStore = (*UserStore)(nil)
