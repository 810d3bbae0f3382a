// Package interfaces defines service contracts for Grana
package interfaces

import (
	"context"

	"github.com/granahq/grana/internal/models"
)

// MarketDataClient provides market quotes for tradable assets.
type MarketDataClient interface {
	// GetMarkets retrieves quotes for the given asset ids. An empty list
	// requests the default set of well-known assets.
	//
	// A rate-limited upstream is reported as ErrRateLimited (use errors.Is);
	// callers surface it distinctly from generic fetch failures and must not
	// retry it automatically.
	GetMarkets(ctx context.Context, ids []string) ([]models.Quote, error)
}

// LLMClient provides access to the conversational model.
type LLMClient interface {
	// GenerateContent generates free-form text from a prompt.
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// GenerateJSON generates a completion constrained to a JSON response.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}
