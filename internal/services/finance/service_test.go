package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/granahq/grana/internal/common"
	"github.com/granahq/grana/internal/interfaces"
	"github.com/granahq/grana/internal/models"
)

// fakeStorage is an in-memory StorageManager for service tests.
type fakeStorage struct {
	userData *fakeUserDataStore
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{userData: &fakeUserDataStore{records: map[string]*models.UserRecord{}}}
}

func (f *fakeStorage) InternalStore() interfaces.InternalStore { return nil }
func (f *fakeStorage) UserDataStore() interfaces.UserDataStore { return f.userData }
func (f *fakeStorage) MarketStore() interfaces.MarketStore     { return nil }
func (f *fakeStorage) Close() error                            { return nil }

type fakeUserDataStore struct {
	records map[string]*models.UserRecord
	failPut map[string]bool // subject -> fail writes
}

func recordKey(userID, subject, key string) string {
	return userID + "|" + subject + "|" + key
}

func (f *fakeUserDataStore) Get(ctx context.Context, userID, subject, key string) (*models.UserRecord, error) {
	return f.records[recordKey(userID, subject, key)], nil
}

func (f *fakeUserDataStore) Put(ctx context.Context, record *models.UserRecord) error {
	if f.failPut[record.Subject] {
		return errors.New("write refused")
	}
	f.records[recordKey(record.UserID, record.Subject, record.Key)] = record
	return nil
}

func (f *fakeUserDataStore) Delete(ctx context.Context, userID, subject, key string) error {
	delete(f.records, recordKey(userID, subject, key))
	return nil
}

func (f *fakeUserDataStore) List(ctx context.Context, userID, subject string) ([]*models.UserRecord, error) {
	return f.Query(ctx, userID, subject, interfaces.QueryOptions{})
}

func (f *fakeUserDataStore) Query(ctx context.Context, userID, subject string, opts interfaces.QueryOptions) ([]*models.UserRecord, error) {
	out := make([]*models.UserRecord, 0)
	for _, r := range f.records {
		if r.UserID == userID && r.Subject == subject {
			out = append(out, r)
		}
	}
	return out, nil
}

func userContext(userID string) context.Context {
	return common.WithUserContext(context.Background(), &common.UserContext{UserID: userID, Role: models.RoleUser})
}

func newTestService(storage *fakeStorage) *Service {
	return NewService(storage, common.NewSilentLogger())
}

func TestAddTransactionValidation(t *testing.T) {
	svc := newTestService(newFakeStorage())
	ctx := userContext("user-1")

	tests := []struct {
		name string
		tx   *models.Transaction
	}{
		{"zero amount", &models.Transaction{Type: models.TransactionExpense, Description: "ifood", Amount: 0}},
		{"negative amount", &models.Transaction{Type: models.TransactionExpense, Description: "ifood", Amount: -10}},
		{"missing description", &models.Transaction{Type: models.TransactionExpense, Amount: 10}},
		{"bad type", &models.Transaction{Type: "transfer", Description: "x", Amount: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddTransaction(ctx, tt.tx); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestAddTransactionDefaultsCategory(t *testing.T) {
	svc := newTestService(newFakeStorage())
	ctx := userContext("user-1")

	tx, err := svc.AddTransaction(ctx, &models.Transaction{
		Type:        models.TransactionExpense,
		Description: "compra avulsa",
		Amount:      42,
	})
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if tx.Category != "Outros" {
		t.Errorf("expected default category Outros, got %s", tx.Category)
	}
	if tx.ID == "" {
		t.Error("expected generated id")
	}
	if tx.Date.IsZero() {
		t.Error("expected date defaulted to now")
	}
}

func TestAddTransactionWritesNotification(t *testing.T) {
	storage := newFakeStorage()
	svc := newTestService(storage)
	ctx := userContext("user-1")

	if _, err := svc.AddTransaction(ctx, &models.Transaction{
		Type:        models.TransactionExpense,
		Description: "ifood",
		Amount:      50,
		Category:    "Alimentação",
	}); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	notifications, err := svc.ListNotifications(ctx)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].Read {
		t.Error("new notification must be unread")
	}
}

func TestNotificationFailureDoesNotMaskSuccess(t *testing.T) {
	storage := newFakeStorage()
	storage.userData.failPut = map[string]bool{models.SubjectNotification: true}
	svc := newTestService(storage)
	ctx := userContext("user-1")

	tx, err := svc.AddTransaction(ctx, &models.Transaction{
		Type:        models.TransactionExpense,
		Description: "ifood",
		Amount:      50,
	})
	if err != nil {
		t.Fatalf("transaction must succeed despite notification failure: %v", err)
	}
	if tx.ID == "" {
		t.Error("expected persisted transaction")
	}
}

func TestMarkNotificationRead(t *testing.T) {
	storage := newFakeStorage()
	svc := newTestService(storage)
	ctx := userContext("user-1")

	if _, err := svc.AddTransaction(ctx, &models.Transaction{
		Type:        models.TransactionIncome,
		Description: "salário",
		Amount:      3000,
	}); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	notifications, _ := svc.ListNotifications(ctx)
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}

	if err := svc.MarkNotificationRead(ctx, notifications[0].ID); err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}

	notifications, _ = svc.ListNotifications(ctx)
	if !notifications[0].Read {
		t.Error("expected notification marked read")
	}

	if err := svc.MarkNotificationRead(ctx, "missing"); err == nil {
		t.Error("expected error for unknown notification id")
	}
}

func TestBankBudgetGoalCRUD(t *testing.T) {
	svc := newTestService(newFakeStorage())
	ctx := userContext("user-1")

	bank, err := svc.AddBank(ctx, &models.Bank{Name: "Nubank", AccountType: "checking"})
	if err != nil {
		t.Fatalf("AddBank failed: %v", err)
	}
	if _, err := svc.AddBank(ctx, &models.Bank{}); err == nil {
		t.Error("expected error for unnamed bank")
	}

	budget, err := svc.AddBudget(ctx, &models.Budget{Category: "Alimentação", Limit: 800})
	if err != nil {
		t.Fatalf("AddBudget failed: %v", err)
	}
	if _, err := svc.AddBudget(ctx, &models.Budget{Category: "Lazer", Limit: 0}); err == nil {
		t.Error("expected error for non-positive budget limit")
	}

	goal, err := svc.AddGoal(ctx, &models.Goal{Name: "Viagem", TargetAmount: 5000})
	if err != nil {
		t.Fatalf("AddGoal failed: %v", err)
	}
	if _, err := svc.AddGoal(ctx, &models.Goal{Name: "Sem alvo"}); err == nil {
		t.Error("expected error for non-positive goal target")
	}

	banks, _ := svc.ListBanks(ctx)
	budgets, _ := svc.ListBudgets(ctx)
	goals, _ := svc.ListGoals(ctx)
	if len(banks) != 1 || len(budgets) != 1 || len(goals) != 1 {
		t.Fatalf("expected 1 of each, got %d banks %d budgets %d goals", len(banks), len(budgets), len(goals))
	}

	if err := svc.DeleteBank(ctx, bank.ID); err != nil {
		t.Fatalf("DeleteBank failed: %v", err)
	}
	if err := svc.DeleteBudget(ctx, budget.ID); err != nil {
		t.Fatalf("DeleteBudget failed: %v", err)
	}
	if err := svc.DeleteGoal(ctx, goal.ID); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}

	banks, _ = svc.ListBanks(ctx)
	if len(banks) != 0 {
		t.Errorf("expected no banks after delete, got %d", len(banks))
	}
}

func TestSummary(t *testing.T) {
	svc := newTestService(newFakeStorage())
	ctx := userContext("user-1")

	seed := []*models.Transaction{
		{Type: models.TransactionIncome, Description: "salário", Amount: 3000},
		{Type: models.TransactionExpense, Description: "ifood", Amount: 50, Category: "Alimentação"},
		{Type: models.TransactionExpense, Description: "mercado", Amount: 250, Category: "Alimentação"},
		{Type: models.TransactionExpense, Description: "uber", Amount: 30, Category: "Transporte"},
	}
	for _, tx := range seed {
		if _, err := svc.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("AddTransaction failed: %v", err)
		}
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.TotalIncome != 3000 {
		t.Errorf("expected income 3000, got %f", summary.TotalIncome)
	}
	if summary.TotalExpenses != 330 {
		t.Errorf("expected expenses 330, got %f", summary.TotalExpenses)
	}
	if summary.Balance != 2670 {
		t.Errorf("expected balance 2670, got %f", summary.Balance)
	}
	if summary.ExpensesByCategory["Alimentação"] != 300 {
		t.Errorf("expected Alimentação 300, got %f", summary.ExpensesByCategory["Alimentação"])
	}
	if summary.TransactionCount != 4 {
		t.Errorf("expected 4 transactions, got %d", summary.TransactionCount)
	}
}

func TestRequiresUserContext(t *testing.T) {
	svc := newTestService(newFakeStorage())
	ctx := context.Background()

	if _, err := svc.AddTransaction(ctx, &models.Transaction{Type: models.TransactionExpense, Description: "x", Amount: 1}); err == nil {
		t.Error("expected error without user context")
	}
	if _, err := svc.ListTransactions(ctx); err == nil {
		t.Error("expected error without user context")
	}
	if _, err := svc.Summary(ctx); err == nil {
		t.Error("expected error without user context")
	}
}
