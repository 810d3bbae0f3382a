// Package app wires configuration, storage, clients and services together.
// It is the shared core used by cmd/grana-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/granahq/grana/internal/clients/coingecko"
	"github.com/granahq/grana/internal/clients/gemini"
	"github.com/granahq/grana/internal/common"
	"github.com/granahq/grana/internal/interfaces"
	"github.com/granahq/grana/internal/services/assistant"
	"github.com/granahq/grana/internal/services/finance"
	"github.com/granahq/grana/internal/services/portfolio"
	"github.com/granahq/grana/internal/storage/surrealdb"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	MarketClient     interfaces.MarketDataClient
	LLMClient        interfaces.LLMClient
	FinanceService   interfaces.FinanceService
	PortfolioService interfaces.PortfolioService
	AssistantService interfaces.AssistantService
	StartupTime      time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Config resolution: explicit path, GRANA_CONFIG, binary dir, dev fallback.
	if configPath == "" {
		configPath = os.Getenv("GRANA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "grana.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/grana.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	// Market quotes work without a key (public CoinGecko tier); a key raises
	// the rate limit.
	coingeckoKey, err := common.ResolveAPIKey("coingecko_api_key", config.Clients.CoinGecko.APIKey)
	if err != nil {
		logger.Info().Msg("CoinGecko API key not configured - using public rate limits")
	}

	marketClient := coingecko.NewClient(
		coingecko.WithBaseURL(config.Clients.CoinGecko.BaseURL),
		coingecko.WithAPIKey(coingeckoKey),
		coingecko.WithLogger(logger),
		coingecko.WithRateLimit(config.Clients.CoinGecko.RateLimit),
		coingecko.WithTimeout(config.Clients.CoinGecko.GetTimeout()),
	)

	var llmClient interfaces.LLMClient
	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - assistant will be unavailable")
	} else {
		client, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			llmClient = client
		}
	}

	financeService := finance.NewService(storageManager, logger)
	portfolioService := portfolio.NewService(storageManager, marketClient, logger)
	assistantService := assistant.NewService(llmClient, financeService, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		MarketClient:     marketClient,
		LLMClient:        llmClient,
		FinanceService:   financeService,
		PortfolioService: portfolioService,
		AssistantService: assistantService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// StartQuoteScheduler launches the background quote refresh goroutine.
func (a *App) StartQuoteScheduler() {
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startQuoteScheduler(schedulerCtx, a.PortfolioService, a.Logger, a.Config.Clients.CoinGecko.GetPollInterval())
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
