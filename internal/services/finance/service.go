// Package finance manages transactions, banks, budgets, goals and exports
package finance

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

// Service implements FinanceService on top of the user data store.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new finance service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// AddTransaction validates and persists an income or expense record.
func (s *Service) AddTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if tx.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if tx.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if tx.Type != models.TransactionIncome && tx.Type != models.TransactionExpense {
		return nil, fmt.Errorf("type must be income or expense")
	}
	if tx.Category == "" {
		tx.Category = "Outros"
	}

	tx.ID = uuid.New().String()
	tx.CreatedAt = time.Now()
	if tx.Date.IsZero() {
		tx.Date = tx.CreatedAt
	}

	if err := s.putRecord(ctx, userID, models.SubjectTransaction, tx.ID, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.logger.Info().Str("user", userID).Str("type", string(tx.Type)).Float64("amount", tx.Amount).Msg("Transaction added")

	s.notify(ctx, userID, "Transação registrada",
		fmt.Sprintf("%s de R$ %.2f em %s", transactionLabel(tx.Type), tx.Amount, tx.Category))

	return tx, nil
}

// ListTransactions returns the user's transactions, most recent first.
func (s *Service) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.storage.UserDataStore().Query(ctx, userID, models.SubjectTransaction, interfaces.QueryOptions{OrderBy: "datetime_desc"})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return decodeRecords[models.Transaction](s.logger, records), nil
}

// DeleteTransaction removes a transaction record.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, models.SubjectTransaction, id)
}

// AddBank registers a bank or card account.
func (s *Service) AddBank(ctx context.Context, bank *models.Bank) (*models.Bank, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if bank.Name == "" {
		return nil, fmt.Errorf("bank name is required")
	}

	bank.ID = uuid.New().String()
	bank.CreatedAt = time.Now()

	if err := s.putRecord(ctx, userID, models.SubjectBank, bank.ID, bank); err != nil {
		return nil, fmt.Errorf("failed to save bank: %w", err)
	}

	s.logger.Info().Str("user", userID).Str("bank", bank.Name).Msg("Bank added")
	return bank, nil
}

// ListBanks returns the user's bank accounts.
func (s *Service) ListBanks(ctx context.Context) ([]*models.Bank, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.storage.UserDataStore().List(ctx, userID, models.SubjectBank)
	if err != nil {
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}
	return decodeRecords[models.Bank](s.logger, records), nil
}

// DeleteBank removes a bank account record.
func (s *Service) DeleteBank(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, models.SubjectBank, id)
}

// AddBudget registers a category spending limit.
func (s *Service) AddBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if budget.Category == "" {
		return nil, fmt.Errorf("budget category is required")
	}
	if budget.Limit <= 0 {
		return nil, fmt.Errorf("budget limit must be positive")
	}

	budget.ID = uuid.New().String()
	budget.CreatedAt = time.Now()

	if err := s.putRecord(ctx, userID, models.SubjectBudget, budget.ID, budget); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	s.logger.Info().Str("user", userID).Str("category", budget.Category).Float64("limit", budget.Limit).Msg("Budget added")
	return budget, nil
}

// ListBudgets returns the user's budgets.
func (s *Service) ListBudgets(ctx context.Context) ([]*models.Budget, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.storage.UserDataStore().List(ctx, userID, models.SubjectBudget)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return decodeRecords[models.Budget](s.logger, records), nil
}

// DeleteBudget removes a budget record.
func (s *Service) DeleteBudget(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, models.SubjectBudget, id)
}

// AddGoal registers a savings goal.
func (s *Service) AddGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if goal.Name == "" {
		return nil, fmt.Errorf("goal name is required")
	}
	if goal.TargetAmount <= 0 {
		return nil, fmt.Errorf("goal target amount must be positive")
	}

	goal.ID = uuid.New().String()
	goal.CreatedAt = time.Now()

	if err := s.putRecord(ctx, userID, models.SubjectGoal, goal.ID, goal); err != nil {
		return nil, fmt.Errorf("failed to save goal: %w", err)
	}

	s.logger.Info().Str("user", userID).Str("goal", goal.Name).Float64("target", goal.TargetAmount).Msg("Goal added")
	return goal, nil
}

// ListGoals returns the user's savings goals.
func (s *Service) ListGoals(ctx context.Context) ([]*models.Goal, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.storage.UserDataStore().List(ctx, userID, models.SubjectGoal)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return decodeRecords[models.Goal](s.logger, records), nil
}

// DeleteGoal removes a goal record.
func (s *Service) DeleteGoal(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, models.SubjectGoal, id)
}

// ListNotifications returns the user's notifications, most recent first.
func (s *Service) ListNotifications(ctx context.Context) ([]*models.Notification, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.storage.UserDataStore().Query(ctx, userID, models.SubjectNotification, interfaces.QueryOptions{OrderBy: "datetime_desc"})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return decodeRecords[models.Notification](s.logger, records), nil
}

// MarkNotificationRead flags a notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return err
	}

	record, err := s.storage.UserDataStore().Get(ctx, userID, models.SubjectNotification, id)
	if err != nil {
		return fmt.Errorf("failed to load notification: %w", err)
	}
	if record == nil {
		return fmt.Errorf("notification '%s' not found", id)
	}

	var n models.Notification
	if err := json.Unmarshal([]byte(record.Value), &n); err != nil {
		return fmt.Errorf("failed to decode notification: %w", err)
	}
	n.Read = true

	return s.putRecord(ctx, userID, models.SubjectNotification, id, &n)
}

// Summary aggregates the user's financial position: balance, totals and
// expenses by category.
func (s *Service) Summary(ctx context.Context) (*models.FinanceSummary, error) {
	transactions, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	banks, err := s.ListBanks(ctx)
	if err != nil {
		return nil, err
	}
	budgets, err := s.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	goals, err := s.ListGoals(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.FinanceSummary{
		ExpensesByCategory: make(map[string]float64),
		TransactionCount:   len(transactions),
		BankCount:          len(banks),
		BudgetCount:        len(budgets),
		GoalCount:          len(goals),
	}

	for _, tx := range transactions {
		switch tx.Type {
		case models.TransactionIncome:
			summary.TotalIncome += tx.Amount
		case models.TransactionExpense:
			summary.TotalExpenses += tx.Amount
			summary.ExpensesByCategory[tx.Category] += tx.Amount
		}
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpenses

	return summary, nil
}

func (s *Service) requireUser(ctx context.Context) (string, error) {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return "", fmt.Errorf("no authenticated user in context")
	}
	return userID, nil
}

// notify writes an in-app notification. Best effort: a failed write is
// logged and never surfaces to the caller.
func (s *Service) notify(ctx context.Context, userID, title, message string) {
	n := &models.Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := s.putRecord(ctx, userID, models.SubjectNotification, n.ID, n); err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("Failed to write notification")
	}
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

func (s *Service) deleteRecord(ctx context.Context, subject, id string) error {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return err
	}
	if err := s.storage.UserDataStore().Delete(ctx, userID, subject, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", subject, err)
	}
	return nil
}

// decodeRecords unmarshals UserRecord values, skipping malformed rows.
func decodeRecords[T any](logger *common.Logger, records []*models.UserRecord) []*T {
	out := make([]*T, 0, len(records))
	for _, r := range records {
		var v T
		if err := json.Unmarshal([]byte(r.Value), &v); err != nil {
			logger.Warn().Err(err).Str("subject", r.Subject).Str("key", r.Key).Msg("Skipping malformed record")
			continue
		}
		out = append(out, &v)
	}
	return out
}

func transactionLabel(t models.TransactionType) string {
	if t == models.TransactionIncome {
		return "Receita"
	}
	return "Despesa"
}

// Ensure Service implements FinanceService
var _ interfaces.FinanceService = (*Service)(nil)
