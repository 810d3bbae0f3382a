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

// quoteSnapshotID is the singleton record holding the latest quote set.
// All users consolidate against the same snapshot, so one row is enough.
const quoteSnapshotID = "quote_snapshot"

type MarketStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewMarketStore(db *surrealdb.DB, logger *common.Logger) *MarketStore {
	return &MarketStore{
		db:     db,
		logger: logger,
	}
}

// GetQuoteSnapshot returns nil without error when no snapshot exists yet.
func (s *MarketStore) GetQuoteSnapshot(ctx context.Context) (*models.QuoteSnapshot, error) {
	snapshot, err := surrealdb.Select[models.QuoteSnapshot](ctx, s.db, surrealmodels.NewRecordID("market_data", quoteSnapshotID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select quote snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *MarketStore) SaveQuoteSnapshot(ctx context.Context, snapshot *models.QuoteSnapshot) error {
	sql := "UPSERT $rid CONTENT $snapshot"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("market_data", quoteSnapshotID), "snapshot": snapshot}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.QuoteSnapshot](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save quote snapshot after retries: %w", lastErr)
}

// Ensure MarketStore implements MarketStore interface
var _ interfaces.MarketStore = (*MarketStore)(nil)
