package server

import (
	"errors"
	"net/http"

	"github.com/granahq/grana/internal/clients/coingecko"
	"github.com/granahq/grana/internal/models"
)

// handleHoldings handles /api/investments/holdings (GET list, POST create).
func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		holdings, err := s.app.PortfolioService.ListHoldings(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, holdings)
	case http.MethodPost:
		var holding models.Holding
		if !DecodeJSON(w, r, &holding) {
			return
		}
		created, err := s.app.PortfolioService.AddHolding(r.Context(), &holding)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, created)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleHoldingByID handles /api/investments/holdings/{id} (DELETE).
func (s *Server) handleHoldingByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := PathParam(r, "/api/investments/holdings/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Holding id is required")
		return
	}
	if err := s.app.PortfolioService.DeleteHolding(r.Context(), id); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// handlePortfolioConsolidated handles GET /api/portfolio/consolidated.
func (s *Server) handlePortfolioConsolidated(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	positions, err := s.app.PortfolioService.ConsolidatedPositions(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, positions)
}

// handlePortfolioStats handles GET /api/portfolio/stats.
func (s *Server) handlePortfolioStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := s.app.PortfolioService.Stats(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// handlePortfolioHeatmap handles GET /api/portfolio/heatmap.
func (s *Server) handlePortfolioHeatmap(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cells, err := s.app.PortfolioService.Heatmap(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, cells)
}

// handlePortfolioHistory handles GET /api/portfolio/history.
func (s *Server) handlePortfolioHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshots, err := s.app.PortfolioService.History(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, snapshots)
}

// handlePortfolioRefresh handles POST /api/portfolio/refresh. A rate-limited
// upstream maps to 429 so clients can back off instead of hammering retries.
func (s *Server) handlePortfolioRefresh(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	snapshot, err := s.app.PortfolioService.RefreshQuotes(r.Context())
	if err != nil {
		if errors.Is(err, coingecko.ErrRateLimited) {
			WriteError(w, http.StatusTooManyRequests, "Market data provider is rate limiting; try again later")
			return
		}
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}

// handleMarketQuotes handles GET /api/market/quotes (latest stored snapshot).
func (s *Server) handleMarketQuotes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot, err := s.app.Storage.MarketStore().GetQuoteSnapshot(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snapshot == nil {
		WriteError(w, http.StatusNotFound, "No quote snapshot available yet")
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}

// handleChartAllocation handles GET /api/portfolio/charts/allocation.png.
func (s *Server) handleChartAllocation(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.PortfolioService.RenderAllocationChart(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleChartHistory handles GET /api/portfolio/charts/history.png.
func (s *Server) handleChartHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.PortfolioService.RenderHistoryChart(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
