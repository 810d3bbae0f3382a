package server

import "net/http"

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Auth
	mux.HandleFunc("/api/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)

	// Transactions
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/", s.handleTransactionByID)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/export/transactions.csv", s.handleExportCSV)
	mux.HandleFunc("/api/export/transactions.xlsx", s.handleExportXLSX)
	mux.HandleFunc("/api/import/statement", s.handleImportStatement)

	// Banks, budgets and goals
	mux.HandleFunc("/api/banks", s.handleBanks)
	mux.HandleFunc("/api/banks/", s.handleBankByID)
	mux.HandleFunc("/api/budgets", s.handleBudgets)
	mux.HandleFunc("/api/budgets/", s.handleBudgetByID)
	mux.HandleFunc("/api/goals", s.handleGoals)
	mux.HandleFunc("/api/goals/", s.handleGoalByID)

	// Notifications
	mux.HandleFunc("/api/notifications", s.handleNotifications)
	mux.HandleFunc("/api/notifications/", s.handleNotificationRead)

	// Portfolio
	mux.HandleFunc("/api/investments/holdings", s.handleHoldings)
	mux.HandleFunc("/api/investments/holdings/", s.handleHoldingByID)
	mux.HandleFunc("/api/portfolio/consolidated", s.handlePortfolioConsolidated)
	mux.HandleFunc("/api/portfolio/stats", s.handlePortfolioStats)
	mux.HandleFunc("/api/portfolio/heatmap", s.handlePortfolioHeatmap)
	mux.HandleFunc("/api/portfolio/history", s.handlePortfolioHistory)
	mux.HandleFunc("/api/portfolio/refresh", s.handlePortfolioRefresh)
	mux.HandleFunc("/api/portfolio/charts/allocation.png", s.handleChartAllocation)
	mux.HandleFunc("/api/portfolio/charts/history.png", s.handleChartHistory)

	// Market data
	mux.HandleFunc("/api/market/quotes", s.handleMarketQuotes)

	// Assistant
	mux.HandleFunc("/api/assistant/message", s.handleAssistantMessage)
}
