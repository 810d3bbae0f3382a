package models

import "time"

// TransactionType distinguishes income from expense.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is a single income or expense record.
type Transaction struct {
	ID            string          `json:"id"`
	Type          TransactionType `json:"type"`
	Description   string          `json:"description"`
	Amount        float64         `json:"amount"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	Date          time.Time       `json:"date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Bank is a bank or card account.
type Bank struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AccountType string    `json:"account_type,omitempty"` // checking, savings, credit_card
	Balance     float64   `json:"balance"`
	CreatedAt   time.Time `json:"created_at"`
}

// Budget is a monthly spending limit for a category.
type Budget struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Limit     float64   `json:"limit"`
	Month     string    `json:"month,omitempty"` // "2026-08"; empty means recurring
	CreatedAt time.Time `json:"created_at"`
}

// Goal is a savings goal.
type Goal struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TargetAmount  float64   `json:"target_amount"`
	CurrentAmount float64   `json:"current_amount"`
	Deadline      time.Time `json:"deadline,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Notification is an in-app notification. Writes are best effort: a failed
// notification write never masks the success of the action that produced it.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// FinanceSummary aggregates a user's financial position. It feeds both the
// dashboard and the assistant's query context block.
type FinanceSummary struct {
	Balance            float64            `json:"balance"`
	TotalIncome        float64            `json:"total_income"`
	TotalExpenses      float64            `json:"total_expenses"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	TransactionCount   int                `json:"transaction_count"`
	BankCount          int                `json:"bank_count"`
	BudgetCount        int                `json:"budget_count"`
	GoalCount          int                `json:"goal_count"`
}

// StatementEntry is a transaction candidate extracted from an imported
// PDF bank statement. Candidates are proposals only; nothing is persisted
// until the user confirms them.
type StatementEntry struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
}
