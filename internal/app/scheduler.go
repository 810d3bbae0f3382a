package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/granahq/grana/internal/clients/coingecko"
	"github.com/granahq/grana/internal/common"
	"github.com/granahq/grana/internal/interfaces"
)

// startQuoteScheduler refreshes the shared quote snapshot on a fixed
// interval. A slow upstream must never stack requests: when a refresh is
// still in flight the tick is skipped, not queued.
func startQuoteScheduler(ctx context.Context, portfolioService interfaces.PortfolioService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var inFlight atomic.Bool

	logger.Info().Dur("interval", interval).Msg("Quote scheduler: started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Quote scheduler: stopped")
			return
		case <-ticker.C:
			if !inFlight.CompareAndSwap(false, true) {
				logger.Debug().Msg("Quote scheduler: previous refresh still running, skipping tick")
				continue
			}
			go func() {
				defer inFlight.Store(false)
				refreshQuotes(ctx, portfolioService, logger)
			}()
		}
	}
}

func refreshQuotes(ctx context.Context, portfolioService interfaces.PortfolioService, logger *common.Logger) {
	start := time.Now()

	if _, err := portfolioService.RefreshQuotes(ctx); err != nil {
		// Rate limiting is expected on the public tier; the stored snapshot
		// stays valid until the next successful tick.
		if errors.Is(err, coingecko.ErrRateLimited) {
			logger.Warn().Msg("Quote refresh: rate limited, keeping previous snapshot")
			return
		}
		logger.Warn().Err(err).Msg("Quote refresh: failed")
		return
	}

	logger.Info().Dur("elapsed", time.Since(start)).Msg("Quote refresh: complete")
}
