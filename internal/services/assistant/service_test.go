package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/granahq/grana/internal/common"
	"github.com/granahq/grana/internal/models"
)

type fakeLLM struct {
	jsonResponse string
	textResponse string
	err          error
	lastPrompt   string
}

func (f *fakeLLM) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.textResponse, f.err
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.jsonResponse, f.err
}

// fakeFinance records dispatched mutations and serves a canned summary.
type fakeFinance struct {
	transactions []*models.Transaction
	budgets      []*models.Budget
	goals        []*models.Goal
	banks        []*models.Bank
	summary      *models.FinanceSummary
	failAdd      error
}

func (f *fakeFinance) AddTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if f.failAdd != nil {
		return nil, f.failAdd
	}
	f.transactions = append(f.transactions, tx)
	return tx, nil
}

func (f *fakeFinance) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	return f.transactions, nil
}
func (f *fakeFinance) DeleteTransaction(ctx context.Context, id string) error { return nil }

func (f *fakeFinance) AddBank(ctx context.Context, bank *models.Bank) (*models.Bank, error) {
	f.banks = append(f.banks, bank)
	return bank, nil
}
func (f *fakeFinance) ListBanks(ctx context.Context) ([]*models.Bank, error) { return f.banks, nil }
func (f *fakeFinance) DeleteBank(ctx context.Context, id string) error       { return nil }

func (f *fakeFinance) AddBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	f.budgets = append(f.budgets, budget)
	return budget, nil
}
func (f *fakeFinance) ListBudgets(ctx context.Context) ([]*models.Budget, error) {
	return f.budgets, nil
}
func (f *fakeFinance) DeleteBudget(ctx context.Context, id string) error { return nil }

func (f *fakeFinance) AddGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	f.goals = append(f.goals, goal)
	return goal, nil
}
func (f *fakeFinance) ListGoals(ctx context.Context) ([]*models.Goal, error) { return f.goals, nil }
func (f *fakeFinance) DeleteGoal(ctx context.Context, id string) error       { return nil }

func (f *fakeFinance) ListNotifications(ctx context.Context) ([]*models.Notification, error) {
	return nil, nil
}
func (f *fakeFinance) MarkNotificationRead(ctx context.Context, id string) error { return nil }

func (f *fakeFinance) Summary(ctx context.Context) (*models.FinanceSummary, error) {
	if f.summary != nil {
		return f.summary, nil
	}
	return &models.FinanceSummary{ExpensesByCategory: map[string]float64{}}, nil
}

func (f *fakeFinance) ExportTransactionsCSV(ctx context.Context) ([]byte, error)  { return nil, nil }
func (f *fakeFinance) ExportTransactionsXLSX(ctx context.Context) ([]byte, error) { return nil, nil }
func (f *fakeFinance) ImportStatement(ctx context.Context, pdfData []byte) ([]models.StatementEntry, error) {
	return nil, nil
}

func newTestAssistant(llm *fakeLLM, finance *fakeFinance) *Service {
	// A typed nil must not reach the interface field, or the nil check in
	// HandleMessage would pass and dereference it.
	if llm == nil {
		return NewService(nil, finance, common.NewSilentLogger())
	}
	return NewService(llm, finance, common.NewSilentLogger())
}

func TestHandleMessageWithoutAPIKey(t *testing.T) {
	svc := newTestAssistant(nil, &fakeFinance{})

	reply, err := svc.HandleMessage(context.Background(), "gastei 50 no ifood")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if reply.Kind != models.ReplyConfigError {
		t.Errorf("expected config error reply, got %s", reply.Kind)
	}
}

func TestHandleMessageAddTransaction(t *testing.T) {
	llm := &fakeLLM{jsonResponse: `{"type":"action","action":"add_transaction","amount":50,"description":"almoço no ifood"}`}
	finance := &fakeFinance{}
	svc := newTestAssistant(llm, finance)

	reply, err := svc.HandleMessage(context.Background(), "gastei 50 no ifood")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if reply.Kind != models.ReplyConfirmation {
		t.Fatalf("expected confirmation, got %s: %s", reply.Kind, reply.Message)
	}
	if len(finance.transactions) != 1 {
		t.Fatalf("expected 1 transaction dispatched, got %d", len(finance.transactions))
	}

	tx := finance.transactions[0]
	// The classifier left category and direction empty; the keyword
	// categorizer fills both from the description.
	if tx.Category != "Alimentação" {
		t.Errorf("expected category Alimentação, got %s", tx.Category)
	}
	if tx.Type != models.TransactionExpense {
		t.Errorf("expected expense, got %s", tx.Type)
	}
	if tx.Amount != 50 {
		t.Errorf("expected amount 50, got %f", tx.Amount)
	}
}

func TestHandleMessageMissingAmount(t *testing.T) {
	llm := &fakeLLM{jsonResponse: `{"type":"action","action":"add_transaction","description":"ifood"}`}
	finance := &fakeFinance{}
	svc := newTestAssistant(llm, finance)

	reply, err := svc.HandleMessage(context.Background(), "gastei no ifood")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if reply.Kind != models.ReplyValidation {
		t.Errorf("expected validation reply, got %s", reply.Kind)
	}
	if len(finance.transactions) != 0 {
		t.Error("no transaction must be dispatched without an amount")
	}
}

func TestHandleMessageMalformedJSON(t *testing.T) {
	llm := &fakeLLM{jsonResponse: `not json at all`}
	svc := newTestAssistant(llm, &fakeFinance{})

	reply, err := svc.HandleMessage(context.Background(), "oi")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if reply.Kind != models.ReplyClarify {
		t.Errorf("malformed model output must degrade to clarification, got %s", reply.Kind)
	}
}

func TestHandleMessageFencedJSON(t *testing.T) {
	llm := &fakeLLM{jsonResponse: "```json\n{\"type\":\"action\",\"action\":\"add_goal\",\"name\":\"Viagem\",\"targetAmount\":5000}\n```"}
	finance := &fakeFinance{}
	svc := newTestAssistant(llm, finance)

	reply, err := svc.HandleMessage(context.Background(), "quero juntar 5000 para viajar")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if reply.Kind != models.ReplyConfirmation {
		t.Fatalf("expected confirmation, got %s: %s", reply.Kind, reply.Message)
	}
	if len(finance.goals) != 1 || finance.goals[0].Name != "Viagem" {
		t.Errorf("expected goal Viagem dispatched, got %+v", finance.goals)
	}
}

func TestHandleMessageQueryGroundsOnSummary(t *testing.T) {
	llm := &fakeLLM{
		jsonResponse: `{"type":"query","question":"quanto gastei com comida?"}`,
		textResponse: "Você gastou R$320,00 com Alimentação.",
	}
	finance := &fakeFinance{summary: &models.FinanceSummary{
		Balance:            680,
		TotalIncome:        1000,
		TotalExpenses:      320,
		ExpensesByCategory: map[string]float64{"Alimentação": 320},
		TransactionCount:   4,
	}}
	svc := newTestAssistant(llm, finance)

	reply, err := svc.HandleMessage(context.Background(), "quanto gastei com comida?")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if reply.Kind != models.ReplyAnswer {
		t.Fatalf("expected answer, got %s", reply.Kind)
	}
	if !strings.Contains(llm.lastPrompt, "Alimentação") {
		t.Error("query prompt must embed the expenses-by-category block")
	}
	if !strings.Contains(llm.lastPrompt, "quanto gastei com comida?") {
		t.Error("query prompt must embed the user question")
	}
}

func TestHandleMessageLLMFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("upstream unavailable")}
	svc := newTestAssistant(llm, &fakeFinance{})

	reply, err := svc.HandleMessage(context.Background(), "gastei 50 no ifood")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if reply.Kind != models.ReplySystemError {
		t.Errorf("expected system error reply, got %s", reply.Kind)
	}
}

func TestHandleMessageDispatchFailure(t *testing.T) {
	llm := &fakeLLM{jsonResponse: `{"type":"action","action":"add_transaction","amount":50,"description":"ifood"}`}
	finance := &fakeFinance{failAdd: errors.New("storage down")}
	svc := newTestAssistant(llm, finance)

	reply, err := svc.HandleMessage(context.Background(), "gastei 50 no ifood")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if reply.Kind != models.ReplySystemError {
		t.Errorf("expected system error reply, got %s", reply.Kind)
	}
}

func TestHandleMessageEmpty(t *testing.T) {
	svc := newTestAssistant(&fakeLLM{}, &fakeFinance{})

	reply, err := svc.HandleMessage(context.Background(), "   ")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if reply.Kind != models.ReplyValidation {
		t.Errorf("expected validation reply for empty message, got %s", reply.Kind)
	}
}
