// Package coingecko provides a client for the CoinGecko markets API
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/granahq/grana/internal/common"
	"github.com/granahq/grana/internal/interfaces"
	"github.com/granahq/grana/internal/models"
)

const (
	DefaultBaseURL   = "https://api.coingecko.com/api/v3"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	maxAttempts = 3
	backoffUnit = time.Second // linear: 1s * attempt number
)

// DefaultAssetIDs is the fixed set of well-known instruments requested when
// the caller passes no ids.
var DefaultAssetIDs = []string{
	"bitcoin", "ethereum", "binancecoin", "solana", "ripple",
	"cardano", "dogecoin", "tron", "polkadot", "chainlink",
	"polygon", "litecoin", "avalanche-2", "uniswap", "stellar",
}

// ErrRateLimited is returned when the upstream answers HTTP 429. It is never
// retried by the client; callers surface it as "try again shortly" rather
// than a generic failure.
var ErrRateLimited = errors.New("market data rate limited")

// APIError represents a non-2xx upstream response after retries exhaust.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("CoinGecko API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	sleep      func(ctx context.Context, d time.Duration) error
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAPIKey sets the demo/pro API key
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new CoinGecko client. An API key is optional for the
// public endpoint.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		sleep: func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// marketResponse mirrors the /coins/markets payload fields we consume.
type marketResponse struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	CurrentPrice      float64 `json:"current_price"`
	PriceChangePct24h float64 `json:"price_change_percentage_24h"`
	MarketCap         float64 `json:"market_cap"`
	TotalVolume       float64 `json:"total_volume"`
	Sparkline         *struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

// GetMarkets retrieves quotes for the given asset ids, or the default list
// when ids is empty. Transient failures (network errors, 5xx) are retried up
// to 3 attempts with linearly increasing backoff; HTTP 429 aborts immediately
// with ErrRateLimited.
func (c *Client) GetMarkets(ctx context.Context, ids []string) ([]models.Quote, error) {
	if len(ids) == 0 {
		ids = DefaultAssetIDs
	}
	ids = normalizeIDs(ids)

	params := url.Values{}
	params.Set("vs_currency", "brl")
	params.Set("ids", strings.Join(ids, ","))
	params.Set("sparkline", "true")

	path := "/coins/markets"
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, time.Duration(attempt-1)*backoffUnit); err != nil {
				return nil, err
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		quotes, retryable, err := c.fetchMarkets(ctx, reqURL, path)
		if err == nil {
			return quotes, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.logger.Warn().Err(err).Int("attempt", attempt).Msg("CoinGecko request failed, retrying")
	}

	return nil, lastErr
}

// fetchMarkets performs a single request. The second return value reports
// whether the failure is transient and safe to retry.
func (c *Client) fetchMarkets(ctx context.Context, reqURL, path string) ([]models.Quote, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, true, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.Warn().Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("CoinGecko rate limited")
		return nil, false, ErrRateLimited
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, true, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body)), Endpoint: path}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, false, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body)), Endpoint: path}
	}

	var markets []marketResponse
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}

	now := time.Now()
	quotes := make([]models.Quote, len(markets))
	for i, m := range markets {
		quotes[i] = models.Quote{
			ID:                m.ID,
			Symbol:            strings.ToUpper(m.Symbol),
			Name:              m.Name,
			CurrentPrice:      m.CurrentPrice,
			PriceChangePct24h: m.PriceChangePct24h,
			MarketCap:         m.MarketCap,
			Volume24h:         m.TotalVolume,
			FetchedAt:         now,
		}
		if m.Sparkline != nil {
			quotes[i].Sparkline7d = m.Sparkline.Price
		}
	}

	c.logger.Info().Int("quotes", len(quotes)).Dur("elapsed", elapsed).Msg("CoinGecko markets fetched")

	return quotes, false, nil
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(strings.ToLower(id))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
