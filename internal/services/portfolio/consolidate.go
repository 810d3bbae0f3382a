// Package portfolio provides investment consolidation and analytics services
package portfolio

import (
	"github.com/granahq/grana/internal/models"
)

// Consolidate groups raw purchase records by asset id and derives one
// position per asset: quantity-weighted average cost, current value and
// profit metrics.
//
// The function is pure and deterministic: identical input always yields
// identical output, group order follows first appearance in the input, and
// no input slice is mutated. It is safe to call on every render pass.
//
// Records with amount <= 0 or buyPrice <= 0 are rejected before grouping so
// no NaN/Inf can reach derived statistics. When no live quote exists for an
// asset, the position falls back to the buy price of its most recently dated
// holding and is flagged StalePrice.
func Consolidate(holdings []*models.Holding, pricesByID map[string]float64) []models.ConsolidatedPosition {
	groups := make(map[string][]*models.Holding)
	order := make([]string, 0)

	for _, h := range holdings {
		if h == nil || !h.Valid() {
			continue
		}
		if _, seen := groups[h.AssetID]; !seen {
			order = append(order, h.AssetID)
		}
		groups[h.AssetID] = append(groups[h.AssetID], h)
	}

	positions := make([]models.ConsolidatedPosition, 0, len(order))
	for _, assetID := range order {
		group := groups[assetID]

		var totalAmount, totalQuantity float64
		for _, h := range group {
			totalAmount += h.Amount
			totalQuantity += h.Quantity()
		}

		// Invariant: valid inputs make both sums strictly positive. Guarded
		// anyway so a zero-quantity group is dropped instead of emitting NaN.
		if totalQuantity <= 0 || totalAmount <= 0 {
			continue
		}

		currentPrice, stale := resolvePrice(assetID, group, pricesByID)

		first := group[0]
		currentValue := totalQuantity * currentPrice
		profit := currentValue - totalAmount

		positions = append(positions, models.ConsolidatedPosition{
			AssetID:          assetID,
			Symbol:           first.Symbol,
			Name:             first.Name,
			Category:         first.Category,
			HoldingCount:     len(group),
			TotalAmount:      totalAmount,
			TotalQuantity:    totalQuantity,
			AverageBuyPrice:  totalAmount / totalQuantity,
			CurrentPrice:     currentPrice,
			CurrentValue:     currentValue,
			Profit:           profit,
			ProfitPercentage: profit / totalAmount * 100,
			StalePrice:       stale,
		})
	}

	return positions
}

// resolvePrice picks the live quote when available, otherwise the buy price
// of the most recently dated holding in the group. The date-based fallback is
// deliberate: resolving by accumulation order would make the result depend on
// input ordering.
func resolvePrice(assetID string, group []*models.Holding, pricesByID map[string]float64) (price float64, stale bool) {
	if p, ok := pricesByID[assetID]; ok && p > 0 {
		return p, false
	}

	latest := group[0]
	for _, h := range group[1:] {
		if h.PurchaseDate.After(latest.PurchaseDate) {
			latest = h
		}
	}
	return latest.BuyPrice, true
}
