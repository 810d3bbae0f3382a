package server

import (
	"io"
	"net/http"

	"github.com/granahq/grana/internal/models"
)

// handleTransactions handles /api/transactions (GET list, POST create).
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		transactions, err := s.app.FinanceService.ListTransactions(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, transactions)
	case http.MethodPost:
		var tx models.Transaction
		if !DecodeJSON(w, r, &tx) {
			return
		}
		created, err := s.app.FinanceService.AddTransaction(r.Context(), &tx)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, created)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleTransactionByID handles /api/transactions/{id} (DELETE).
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := PathParam(r, "/api/transactions/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Transaction id is required")
		return
	}
	if err := s.app.FinanceService.DeleteTransaction(r.Context(), id); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// handleBanks handles /api/banks (GET list, POST create).
func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		banks, err := s.app.FinanceService.ListBanks(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, banks)
	case http.MethodPost:
		var bank models.Bank
		if !DecodeJSON(w, r, &bank) {
			return
		}
		created, err := s.app.FinanceService.AddBank(r.Context(), &bank)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, created)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleBankByID handles /api/banks/{id} (DELETE).
func (s *Server) handleBankByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := PathParam(r, "/api/banks/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Bank id is required")
		return
	}
	if err := s.app.FinanceService.DeleteBank(r.Context(), id); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// handleBudgets handles /api/budgets (GET list, POST create).
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		budgets, err := s.app.FinanceService.ListBudgets(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, budgets)
	case http.MethodPost:
		var budget models.Budget
		if !DecodeJSON(w, r, &budget) {
			return
		}
		created, err := s.app.FinanceService.AddBudget(r.Context(), &budget)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, created)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleBudgetByID handles /api/budgets/{id} (DELETE).
func (s *Server) handleBudgetByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := PathParam(r, "/api/budgets/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Budget id is required")
		return
	}
	if err := s.app.FinanceService.DeleteBudget(r.Context(), id); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// handleGoals handles /api/goals (GET list, POST create).
func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		goals, err := s.app.FinanceService.ListGoals(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, goals)
	case http.MethodPost:
		var goal models.Goal
		if !DecodeJSON(w, r, &goal) {
			return
		}
		created, err := s.app.FinanceService.AddGoal(r.Context(), &goal)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, created)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleGoalByID handles /api/goals/{id} (DELETE).
func (s *Server) handleGoalByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := PathParam(r, "/api/goals/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Goal id is required")
		return
	}
	if err := s.app.FinanceService.DeleteGoal(r.Context(), id); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// handleNotifications handles GET /api/notifications.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	notifications, err := s.app.FinanceService.ListNotifications(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, notifications)
}

// handleNotificationRead handles POST /api/notifications/{id}/read.
func (s *Server) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	id := PathParam(r, "/api/notifications/", "/read")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Notification id is required")
		return
	}
	if err := s.app.FinanceService.MarkNotificationRead(r.Context(), id); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"read": id})
}

// handleSummary handles GET /api/summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := s.app.FinanceService.Summary(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// handleExportCSV handles GET /api/export/transactions.csv.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	data, err := s.app.FinanceService.ExportTransactionsCSV(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transacoes.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleExportXLSX handles GET /api/export/transactions.xlsx.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	data, err := s.app.FinanceService.ExportTransactionsXLSX(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="transacoes.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleImportStatement handles POST /api/import/statement with a PDF body.
func (s *Server) handleImportStatement(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10MB limit for PDFs
	data, err := io.ReadAll(r.Body)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(data) == 0 {
		WriteError(w, http.StatusBadRequest, "A PDF statement is required")
		return
	}

	entries, err := s.app.FinanceService.ImportStatement(r.Context(), data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}
