package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/granahq/grana/internal/app"
	"github.com/granahq/grana/internal/common"
	"github.com/granahq/grana/internal/interfaces"
	"github.com/granahq/grana/internal/models"
	"github.com/granahq/grana/internal/services/assistant"
	"github.com/granahq/grana/internal/services/finance"
	"github.com/granahq/grana/internal/services/portfolio"
)

// memoryStorage is an in-memory StorageManager for handler tests.
type memoryStorage struct {
	internal *memoryInternalStore
	userData *memoryUserDataStore
	market   *memoryMarketStore
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		internal: &memoryInternalStore{users: map[string]*models.InternalUser{}},
		userData: &memoryUserDataStore{records: map[string]*models.UserRecord{}},
		market:   &memoryMarketStore{},
	}
}

func (m *memoryStorage) InternalStore() interfaces.InternalStore { return m.internal }
func (m *memoryStorage) UserDataStore() interfaces.UserDataStore { return m.userData }
func (m *memoryStorage) MarketStore() interfaces.MarketStore     { return m.market }
func (m *memoryStorage) Close() error                            { return nil }

type memoryInternalStore struct {
	mu    sync.Mutex
	users map[string]*models.InternalUser
}

func (s *memoryInternalStore) GetUser(_ context.Context, userID string) (*models.InternalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s' not found", userID)
	}
	copied := *user
	return &copied, nil
}

func (s *memoryInternalStore) GetUserByEmail(_ context.Context, email string) (*models.InternalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if email == "" {
		return nil, fmt.Errorf("user with email %q not found", email)
	}
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user with email %q not found", email)
}

func (s *memoryInternalStore) SaveUser(_ context.Context, user *models.InternalUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[user.UserID] = &copied
	return nil
}

func (s *memoryInternalStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}

func (s *memoryInternalStore) ListUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memoryInternalStore) GetUserKV(_ context.Context, userID, key string) (*models.UserKeyValue, error) {
	return nil, fmt.Errorf("key '%s' not found", key)
}

func (s *memoryInternalStore) SetUserKV(_ context.Context, userID, key, value string) error {
	return nil
}

func (s *memoryInternalStore) DeleteUserKV(_ context.Context, userID, key string) error { return nil }

func (s *memoryInternalStore) ListUserKV(_ context.Context, userID string) ([]*models.UserKeyValue, error) {
	return nil, nil
}

type memoryUserDataStore struct {
	mu      sync.Mutex
	records map[string]*models.UserRecord
}

func recordKey(userID, subject, key string) string {
	return userID + "|" + subject + "|" + key
}

func (s *memoryUserDataStore) Get(_ context.Context, userID, subject, key string) (*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[recordKey(userID, subject, key)]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (s *memoryUserDataStore) Put(_ context.Context, record *models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records[recordKey(record.UserID, record.Subject, record.Key)] = &copied
	return nil
}

func (s *memoryUserDataStore) Delete(_ context.Context, userID, subject, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, recordKey(userID, subject, key))
	return nil
}

func (s *memoryUserDataStore) List(ctx context.Context, userID, subject string) ([]*models.UserRecord, error) {
	return s.Query(ctx, userID, subject, interfaces.QueryOptions{})
}

func (s *memoryUserDataStore) Query(_ context.Context, userID, subject string, opts interfaces.QueryOptions) ([]*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.UserRecord
	for _, record := range s.records {
		if record.UserID == userID && record.Subject == subject {
			copied := *record
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if opts.OrderBy == "datetime_asc" {
			return out[i].DateTime.Before(out[j].DateTime)
		}
		return out[i].DateTime.After(out[j].DateTime)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

type memoryMarketStore struct {
	mu       sync.Mutex
	snapshot *models.QuoteSnapshot
}

func (s *memoryMarketStore) GetQuoteSnapshot(_ context.Context) (*models.QuoteSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, nil
}

func (s *memoryMarketStore) SaveQuoteSnapshot(_ context.Context, snapshot *models.QuoteSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	return nil
}

// stubMarketClient returns a fixed set of quotes.
type stubMarketClient struct {
	quotes []models.Quote
	err    error
}

func (c *stubMarketClient) GetMarkets(_ context.Context, _ []string) ([]models.Quote, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.quotes, nil
}

// newTestServer wires a server against in-memory storage and real services.
// The assistant runs without an LLM client so it answers with config_error.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := common.NewSilentLogger()
	cfg := common.NewDefaultConfig()
	cfg.Auth.JWTSecret = "test-secret"

	storage := newMemoryStorage()
	market := &stubMarketClient{quotes: []models.Quote{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 150},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: 10},
	}}

	financeService := finance.NewService(storage, logger)
	portfolioService := portfolio.NewService(storage, market, logger)
	assistantService := assistant.NewService(nil, financeService, logger)

	a := &app.App{
		Config:           cfg,
		Logger:           logger,
		Storage:          storage,
		MarketClient:     market,
		FinanceService:   financeService,
		PortfolioService: portfolioService,
		AssistantService: assistantService,
	}
	return NewServer(a)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return bytes.NewBuffer(data)
}

// registerTestUser registers a user through the API and returns a bearer token.
func registerTestUser(t *testing.T, srv *Server, email string) string {
	t.Helper()
	body := jsonBody(t, map[string]string{"email": email, "password": "secretpass"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("register: failed to decode response: %v", err)
	}
	return resp.Token
}

// doRequest runs a request through the full middleware chain.
func doRequest(t *testing.T, srv *Server, method, path, token string, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}
