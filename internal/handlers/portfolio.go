package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/cryptofolio/internal/errors"
	"github.com/tropicaldog17/cryptofolio/internal/models"
	"github.com/tropicaldog17/cryptofolio/internal/services"
)

// maxImportSize bounds uploaded import documents.
const maxImportSize = 4 << 20

type PortfolioHandler struct {
	store   *services.PortfolioService
	adapter *services.SchemaAdapter
	sync    *services.PriceSyncService
	log     *zap.Logger
}

func NewPortfolioHandler(store *services.PortfolioService, adapter *services.SchemaAdapter, sync *services.PriceSyncService, log *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{store: store, adapter: adapter, sync: sync, log: log}
}

// HandlePositions returns the detail view: every position with its per-fill
// breakdown, including fully-divested positions that still carry fills.
func (h *PortfolioHandler) HandlePositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.BuildDetails(h.store.Positions()))
}

// HandleDashboard returns the sorted dashboard rows plus aggregate totals.
// Query params: sort (symbol|amount|price|value|pl) and dir (asc|desc);
// defaults to value descending.
func (h *PortfolioHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	state := services.DefaultSort()
	if key := r.URL.Query().Get("sort"); key != "" {
		state.Key = key
	}
	if dir := r.URL.Query().Get("dir"); dir != "" {
		state.Desc = dir != "asc"
	}

	rows := services.BuildRows(h.store.Positions())
	summary := services.Summarize(rows)
	services.SortRows(rows, state)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows":    rows,
		"summary": summary,
	})
}

type addFillRequest struct {
	Coin   models.CoinSelection `json:"coin"`
	Amount decimal.Decimal      `json:"amount"`
	Price  decimal.Decimal      `json:"price"`
	Date   string               `json:"date"`
}

// HandleAddFill records a new acquisition against the position matching the
// selected coin's identifier, creating the position when none exists, and
// kicks off a refresh cycle for the (possibly new) identifier.
func (h *PortfolioHandler) HandleAddFill(w http.ResponseWriter, r *http.Request) {
	var req addFillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	fill := models.Fill{Amount: req.Amount, Price: req.Price, Date: req.Date}
	if err := h.store.AddFill(r.Context(), req.Coin, fill); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The request context ends with the response; the refresh outlives it.
	go func() {
		if err := h.sync.Refresh(context.Background()); err != nil {
			h.log.Warn("refresh after add failed", zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusCreated, services.BuildDetails(h.store.Positions()))
}

// HandleDeleteFill removes one fill; the owning position disappears with its
// last fill. Confirmation happens in the UI, the store deletes unconditionally.
func (h *PortfolioHandler) HandleDeleteFill(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.store.DeleteFill(r.Context(), vars["symbol"], vars["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleImport replaces the whole portfolio with an uploaded document. An
// import that yields no usable positions fails and leaves the store alone.
func (h *PortfolioHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	positions, err := h.adapter.Normalize(body)
	if err != nil {
		uerr := &apperrors.ErrUserVisible{Message: "No valid portfolio data found.", Err: err}
		if !errors.Is(err, services.ErrNoPositions) {
			uerr.Message = "Error parsing import file."
		}
		h.log.Warn("import rejected", zap.Error(uerr.Unwrap()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": uerr.Error()})
		return
	}

	if err := h.store.ReplaceAll(r.Context(), positions); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	go func() {
		if err := h.sync.Refresh(context.Background()); err != nil {
			h.log.Warn("refresh after import failed", zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusOK, map[string]int{"imported": len(positions)})
}

// HandleExport streams the versioned export document as a download.
func (h *PortfolioHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	doc := h.adapter.Serialize(h.store.Positions())
	w.Header().Set("Content-Disposition", `attachment; filename="`+services.ExportFilename(time.Now())+`"`)
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
