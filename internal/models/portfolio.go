// Package models defines the domain types for Grana
package models

import "time"

// Category classifies an investment holding.
type Category string

const (
	CategoryCrypto         Category = "Crypto"
	CategoryFixedIncome    Category = "Fixed Income"
	CategoryInvestmentFund Category = "Investment Fund"
	CategoryStocks         Category = "Stocks"
	CategoryTreasury       Category = "Treasury"
	CategoryETF            Category = "ETF"
	CategoryREIT           Category = "REIT"
	CategoryGoods          Category = "Goods"
	CategoryOther          Category = "Other"
)

// Categories lists all valid holding categories in display order.
var Categories = []Category{
	CategoryCrypto,
	CategoryFixedIncome,
	CategoryInvestmentFund,
	CategoryStocks,
	CategoryTreasury,
	CategoryETF,
	CategoryREIT,
	CategoryGoods,
	CategoryOther,
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Holding is a single recorded purchase of a financial instrument.
// Amount is the money invested in this purchase (base currency), not the
// asset quantity; Amount / BuyPrice yields the implied quantity.
type Holding struct {
	ID           string    `json:"id"`
	AssetID      string    `json:"asset_id"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Amount       float64   `json:"amount"`
	BuyPrice     float64   `json:"buy_price"`
	Category     Category  `json:"category"`
	PurchaseDate time.Time `json:"purchase_date"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Valid reports whether the holding is admissible for aggregation.
// Records failing this must be rejected before consolidation, otherwise
// division by zero propagates NaN into derived statistics.
func (h Holding) Valid() bool {
	return h.Amount > 0 && h.BuyPrice > 0
}

// Quantity returns the implied asset quantity of this purchase.
func (h Holding) Quantity() float64 {
	return h.Amount / h.BuyPrice
}

// ConsolidatedPosition is the aggregate of all holdings sharing an asset id.
// It is a pure derivation recomputed on demand and never persisted.
type ConsolidatedPosition struct {
	AssetID          string   `json:"asset_id"`
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	Category         Category `json:"category"`
	HoldingCount     int      `json:"holding_count"`
	TotalAmount      float64  `json:"total_amount"`
	TotalQuantity    float64  `json:"total_quantity"`
	AverageBuyPrice  float64  `json:"average_buy_price"`
	CurrentPrice     float64  `json:"current_price"`
	CurrentValue     float64  `json:"current_value"`
	Profit           float64  `json:"profit"`
	ProfitPercentage float64  `json:"profit_percentage"`
	// StalePrice is true when no live quote was available and CurrentPrice
	// fell back to the buy price of the most recently dated holding.
	StalePrice bool `json:"stale_price"`
}

// PortfolioStats holds portfolio-level derived statistics.
type PortfolioStats struct {
	TotalInvested    float64             `json:"total_invested"`
	TotalValue       float64             `json:"total_value"`
	TotalProfit      float64             `json:"total_profit"`
	ProfitPercentage float64             `json:"profit_percentage"`
	PositionCount    int                 `json:"position_count"`
	Categories       []CategoryBreakdown `json:"categories"`
	Concentration    float64             `json:"concentration"`
	BestPerformer    *PerformerRef       `json:"best_performer,omitempty"`
	WorstPerformer   *PerformerRef       `json:"worst_performer,omitempty"`
	RiskFlags        []RiskFlag          `json:"risk_flags"`
}

// CategoryBreakdown sums invested/current value per category.
type CategoryBreakdown struct {
	Category      Category `json:"category"`
	TotalInvested float64  `json:"total_invested"`
	TotalValue    float64  `json:"total_value"`
	Profit        float64  `json:"profit"`
	Weight        float64  `json:"weight"` // percentage of portfolio value
	Positions     int      `json:"positions"`
}

// PerformerRef points at a position by asset with its profit percentage.
type PerformerRef struct {
	AssetID          string  `json:"asset_id"`
	Symbol           string  `json:"symbol"`
	ProfitPercentage float64 `json:"profit_percentage"`
}

// RiskFlag is an advisory portfolio risk observation.
type RiskFlag struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Risk flag codes.
const (
	RiskHighConcentration  = "high_concentration"
	RiskVolatileExposure   = "high_volatile_exposure"
	RiskLowDiversification = "low_diversification"
)

// HeatmapCell maps a position's profit percentage onto a color band and
// an opacity tier for heatmap rendering.
type HeatmapCell struct {
	AssetID          string  `json:"asset_id"`
	Symbol           string  `json:"symbol"`
	ProfitPercentage float64 `json:"profit_percentage"`
	Color            string  `json:"color"`
	Opacity          float64 `json:"opacity"`
}

// PortfolioSnapshot records portfolio totals at a point in time, persisted
// by the quote scheduler to build the value timeline.
type PortfolioSnapshot struct {
	UserID        string    `json:"user_id"`
	TotalInvested float64   `json:"total_invested"`
	TotalValue    float64   `json:"total_value"`
	TakenAt       time.Time `json:"taken_at"`
}
