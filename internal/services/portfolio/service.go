package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/granahq/grana/internal/common"
	"github.com/granahq/grana/internal/interfaces"
	"github.com/granahq/grana/internal/models"
)

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketDataClient
	logger  *common.Logger
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, market interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
	}
}

// AddHolding validates and persists a new purchase record.
func (s *Service) AddHolding(ctx context.Context, holding *models.Holding) (*models.Holding, error) {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return nil, fmt.Errorf("no authenticated user in context")
	}

	if holding.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if holding.BuyPrice <= 0 {
		return nil, fmt.Errorf("buy price must be positive")
	}
	if holding.AssetID == "" {
		return nil, fmt.Errorf("asset id is required")
	}
	if !models.ValidCategory(holding.Category) {
		return nil, fmt.Errorf("unknown category '%s'", holding.Category)
	}

	holding.ID = uuid.New().String()
	holding.CreatedAt = time.Now()
	if holding.PurchaseDate.IsZero() {
		holding.PurchaseDate = holding.CreatedAt
	}

	if err := s.putRecord(ctx, userID, models.SubjectHolding, holding.ID, holding); err != nil {
		return nil, fmt.Errorf("failed to save holding: %w", err)
	}

	s.logger.Info().Str("user", userID).Str("asset", holding.AssetID).Float64("amount", holding.Amount).Msg("Holding added")

	return holding, nil
}

// ListHoldings returns all purchase records for the current user.
func (s *Service) ListHoldings(ctx context.Context) ([]*models.Holding, error) {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return nil, fmt.Errorf("no authenticated user in context")
	}

	records, err := s.storage.UserDataStore().List(ctx, userID, models.SubjectHolding)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	holdings := make([]*models.Holding, 0, len(records))
	for _, r := range records {
		var h models.Holding
		if err := json.Unmarshal([]byte(r.Value), &h); err != nil {
			s.logger.Warn().Err(err).Str("key", r.Key).Msg("Skipping malformed holding record")
			continue
		}
		holdings = append(holdings, &h)
	}

	return holdings, nil
}

// DeleteHolding removes a purchase record.
func (s *Service) DeleteHolding(ctx context.Context, id string) error {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return fmt.Errorf("no authenticated user in context")
	}

	if err := s.storage.UserDataStore().Delete(ctx, userID, models.SubjectHolding, id); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

// ConsolidatedPositions recomputes positions from the current holdings list
// and the latest stored quote snapshot. The derivation is stateless and never
// persisted.
func (s *Service) ConsolidatedPositions(ctx context.Context) ([]models.ConsolidatedPosition, error) {
	holdings, err := s.ListHoldings(ctx)
	if err != nil {
		return nil, err
	}

	prices := map[string]float64{}
	if snapshot, err := s.storage.MarketStore().GetQuoteSnapshot(ctx); err == nil && snapshot != nil {
		prices = snapshot.PricesByID()
	} else if err != nil {
		// Missing quotes degrade to buy-price fallbacks, not a failure.
		s.logger.Debug().Err(err).Msg("No quote snapshot available")
	}

	return Consolidate(holdings, prices), nil
}

// Stats derives portfolio-level statistics for the current user.
func (s *Service) Stats(ctx context.Context) (*models.PortfolioStats, error) {
	positions, err := s.ConsolidatedPositions(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeStats(positions), nil
}

// Heatmap maps the user's positions onto color bands and opacity tiers.
func (s *Service) Heatmap(ctx context.Context) ([]models.HeatmapCell, error) {
	positions, err := s.ConsolidatedPositions(ctx)
	if err != nil {
		return nil, err
	}
	return BuildHeatmap(positions), nil
}

// RefreshQuotes fetches fresh market quotes and stores them as the shared
// snapshot. When a signed-in user is present in ctx, their portfolio totals
// are also recorded as a history snapshot.
func (s *Service) RefreshQuotes(ctx context.Context) (*models.QuoteSnapshot, error) {
	quotes, err := s.market.GetMarkets(ctx, nil)
	if err != nil {
		return nil, err
	}

	snapshot := &models.QuoteSnapshot{
		Quotes:    quotes,
		FetchedAt: time.Now(),
	}
	if err := s.storage.MarketStore().SaveQuoteSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save quote snapshot: %w", err)
	}

	s.logger.Info().Int("quotes", len(quotes)).Msg("Quote snapshot refreshed")

	if userID := common.ResolveUserID(ctx); userID != "" {
		if err := s.recordSnapshot(ctx, userID); err != nil {
			// History recording is best effort; the refreshed quotes stand.
			s.logger.Warn().Err(err).Str("user", userID).Msg("Failed to record portfolio snapshot")
		}
	}

	return snapshot, nil
}

// History returns the user's recorded portfolio snapshots, oldest first.
func (s *Service) History(ctx context.Context) ([]*models.PortfolioSnapshot, error) {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return nil, fmt.Errorf("no authenticated user in context")
	}

	records, err := s.storage.UserDataStore().Query(ctx, userID, models.SubjectSnapshot, interfaces.QueryOptions{OrderBy: "datetime_asc"})
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}

	snapshots := make([]*models.PortfolioSnapshot, 0, len(records))
	for _, r := range records {
		var snap models.PortfolioSnapshot
		if err := json.Unmarshal([]byte(r.Value), &snap); err != nil {
			continue
		}
		snapshots = append(snapshots, &snap)
	}

	return snapshots, nil
}

// RenderAllocationChart renders the category allocation bar chart as PNG.
func (s *Service) RenderAllocationChart(ctx context.Context) ([]byte, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return RenderAllocationChart(stats.Categories)
}

// RenderHistoryChart renders the portfolio value timeline as PNG.
func (s *Service) RenderHistoryChart(ctx context.Context) ([]byte, error) {
	snapshots, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	return RenderHistoryChart(snapshots)
}

func (s *Service) recordSnapshot(ctx context.Context, userID string) error {
	stats, err := s.Stats(ctx)
	if err != nil {
		return err
	}

	snap := &models.PortfolioSnapshot{
		UserID:        userID,
		TotalInvested: stats.TotalInvested,
		TotalValue:    stats.TotalValue,
		TakenAt:       time.Now(),
	}
	return s.putRecord(ctx, userID, models.SubjectSnapshot, uuid.New().String(), snap)
}

func (s *Service) putRecord(ctx context.Context, userID, subject, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", subject, err)
	}

	return s.storage.UserDataStore().Put(ctx, &models.UserRecord{
		UserID:   userID,
		Subject:  subject,
		Key:      key,
		Value:    string(data),
		DateTime: time.Now(),
	})
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
