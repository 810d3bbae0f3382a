package interfaces

import (
	"context"

	"github.com/granahq/grana/internal/models"
)

// FinanceService manages a user's transactions, accounts, budgets and goals.
// All operations are scoped to the user resolved from ctx.
type FinanceService interface {
	AddTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	ListTransactions(ctx context.Context) ([]*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	AddBank(ctx context.Context, bank *models.Bank) (*models.Bank, error)
	ListBanks(ctx context.Context) ([]*models.Bank, error)
	DeleteBank(ctx context.Context, id string) error

	AddBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error)
	ListBudgets(ctx context.Context) ([]*models.Budget, error)
	DeleteBudget(ctx context.Context, id string) error

	AddGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error)
	ListGoals(ctx context.Context) ([]*models.Goal, error)
	DeleteGoal(ctx context.Context, id string) error

	ListNotifications(ctx context.Context) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	Summary(ctx context.Context) (*models.FinanceSummary, error)

	ExportTransactionsCSV(ctx context.Context) ([]byte, error)
	ExportTransactionsXLSX(ctx context.Context) ([]byte, error)
	ImportStatement(ctx context.Context, pdfData []byte) ([]models.StatementEntry, error)
}

// PortfolioService manages investment holdings and derived analytics.
type PortfolioService interface {
	AddHolding(ctx context.Context, holding *models.Holding) (*models.Holding, error)
	ListHoldings(ctx context.Context) ([]*models.Holding, error)
	DeleteHolding(ctx context.Context, id string) error

	ConsolidatedPositions(ctx context.Context) ([]models.ConsolidatedPosition, error)
	Stats(ctx context.Context) (*models.PortfolioStats, error)
	Heatmap(ctx context.Context) ([]models.HeatmapCell, error)

	RefreshQuotes(ctx context.Context) (*models.QuoteSnapshot, error)
	History(ctx context.Context) ([]*models.PortfolioSnapshot, error)

	RenderAllocationChart(ctx context.Context) ([]byte, error)
	RenderHistoryChart(ctx context.Context) ([]byte, error)
}

// AssistantService handles a single free-text user message end to end:
// classify, categorize, dispatch, respond.
type AssistantService interface {
	HandleMessage(ctx context.Context, message string) (*models.Reply, error)
}
