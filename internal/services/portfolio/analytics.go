package portfolio

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/granahq/grana/internal/models"
)

// Risk heuristic thresholds. All flags are advisory, not hard constraints.
const (
	concentrationThreshold = 50.0 // % of portfolio value in one category
	volatileShareThreshold = 70.0 // % of positions in volatile categories
	minDiversifiedCount    = 5    // distinct positions
)

// volatileCategories are treated as higher-risk for the exposure heuristic.
var volatileCategories = map[models.Category]bool{
	models.CategoryCrypto: true,
	models.CategoryStocks: true,
}

// ComputeStats derives portfolio-level statistics from consolidated
// positions: totals, category breakdown, concentration, best/worst performer
// and advisory risk flags. Ties for best/worst resolve to the position that
// appears first in the input.
func ComputeStats(positions []models.ConsolidatedPosition) *models.PortfolioStats {
	stats := &models.PortfolioStats{
		PositionCount: len(positions),
		Categories:    []models.CategoryBreakdown{},
		RiskFlags:     []models.RiskFlag{},
	}
	if len(positions) == 0 {
		return stats
	}

	stats.TotalInvested = lo.SumBy(positions, func(p models.ConsolidatedPosition) float64 { return p.TotalAmount })
	stats.TotalValue = lo.SumBy(positions, func(p models.ConsolidatedPosition) float64 { return p.CurrentValue })
	stats.TotalProfit = stats.TotalValue - stats.TotalInvested
	if stats.TotalInvested > 0 {
		stats.ProfitPercentage = stats.TotalProfit / stats.TotalInvested * 100
	}

	stats.Categories = categoryBreakdown(positions, stats.TotalValue)

	if len(stats.Categories) > 0 {
		top := lo.MaxBy(stats.Categories, func(a, b models.CategoryBreakdown) bool { return a.Weight > b.Weight })
		stats.Concentration = top.Weight
	}

	best, worst := findPerformers(positions)
	stats.BestPerformer = best
	stats.WorstPerformer = worst

	stats.RiskFlags = riskFlags(positions, stats)

	return stats
}

// categoryBreakdown groups positions by category, preserving first-seen order.
func categoryBreakdown(positions []models.ConsolidatedPosition, totalValue float64) []models.CategoryBreakdown {
	grouped := lo.GroupBy(positions, func(p models.ConsolidatedPosition) models.Category { return p.Category })

	seen := make(map[models.Category]bool)
	breakdown := make([]models.CategoryBreakdown, 0, len(grouped))
	for _, p := range positions {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true

		group := grouped[p.Category]
		invested := lo.SumBy(group, func(g models.ConsolidatedPosition) float64 { return g.TotalAmount })
		value := lo.SumBy(group, func(g models.ConsolidatedPosition) float64 { return g.CurrentValue })

		cb := models.CategoryBreakdown{
			Category:      p.Category,
			TotalInvested: invested,
			TotalValue:    value,
			Profit:        value - invested,
			Positions:     len(group),
		}
		if totalValue > 0 {
			cb.Weight = value / totalValue * 100
		}
		breakdown = append(breakdown, cb)
	}

	return breakdown
}

// findPerformers returns the positions with the highest and lowest profit
// percentage. Strict comparison keeps the first-encountered position on ties.
func findPerformers(positions []models.ConsolidatedPosition) (best, worst *models.PerformerRef) {
	if len(positions) == 0 {
		return nil, nil
	}

	bestPos := positions[0]
	worstPos := positions[0]
	for _, p := range positions[1:] {
		if p.ProfitPercentage > bestPos.ProfitPercentage {
			bestPos = p
		}
		if p.ProfitPercentage < worstPos.ProfitPercentage {
			worstPos = p
		}
	}

	return &models.PerformerRef{AssetID: bestPos.AssetID, Symbol: bestPos.Symbol, ProfitPercentage: bestPos.ProfitPercentage},
		&models.PerformerRef{AssetID: worstPos.AssetID, Symbol: worstPos.Symbol, ProfitPercentage: worstPos.ProfitPercentage}
}

// riskFlags applies the advisory heuristics over positions and totals.
func riskFlags(positions []models.ConsolidatedPosition, stats *models.PortfolioStats) []models.RiskFlag {
	flags := make([]models.RiskFlag, 0)

	if stats.Concentration > concentrationThreshold {
		flags = append(flags, models.RiskFlag{
			Code:    models.RiskHighConcentration,
			Message: fmt.Sprintf("%.1f%% of the portfolio is concentrated in a single category", stats.Concentration),
		})
	}

	volatileCount := lo.CountBy(positions, func(p models.ConsolidatedPosition) bool {
		return volatileCategories[p.Category]
	})
	volatileShare := float64(volatileCount) / float64(len(positions)) * 100
	if volatileShare > volatileShareThreshold {
		flags = append(flags, models.RiskFlag{
			Code:    models.RiskVolatileExposure,
			Message: fmt.Sprintf("%.0f%% of positions are in volatile categories (Crypto, Stocks)", volatileShare),
		})
	}

	if len(positions) < minDiversifiedCount {
		flags = append(flags, models.RiskFlag{
			Code:    models.RiskLowDiversification,
			Message: fmt.Sprintf("only %d distinct positions; consider diversifying", len(positions)),
		})
	}

	return flags
}
