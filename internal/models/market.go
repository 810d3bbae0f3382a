package models

import "time"

// Quote is a market data snapshot for a single asset.
type Quote struct {
	ID                string    `json:"id"`
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name"`
	CurrentPrice      float64   `json:"current_price"`
	PriceChangePct24h float64   `json:"price_change_percentage_24h"`
	MarketCap         float64   `json:"market_cap"`
	Volume24h         float64   `json:"total_volume"`
	Sparkline7d       []float64 `json:"sparkline_7d,omitempty"`
	FetchedAt         time.Time `json:"fetched_at"`
}

// QuoteSnapshot is the latest set of quotes persisted by the poll scheduler.
type QuoteSnapshot struct {
	Quotes    []Quote   `json:"quotes"`
	FetchedAt time.Time `json:"fetched_at"`
}

// PricesByID flattens a snapshot into an asset-id → price lookup.
func (s *QuoteSnapshot) PricesByID() map[string]float64 {
	prices := make(map[string]float64, len(s.Quotes))
	for _, q := range s.Quotes {
		prices[q.ID] = q.CurrentPrice
	}
	return prices
}
