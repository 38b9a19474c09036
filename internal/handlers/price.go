package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tropicaldog17/cryptofolio/internal/models"
	"github.com/tropicaldog17/cryptofolio/internal/services"
)

type PriceHandler struct {
	sync   *services.PriceSyncService
	search *services.SearchScheduler
	log    *zap.Logger
}

func NewPriceHandler(sync *services.PriceSyncService, search *services.SearchScheduler, log *zap.Logger) *PriceHandler {
	return &PriceHandler{sync: sync, search: search, log: log}
}

type statusResponse struct {
	Status      services.SyncStatus `json:"status"`
	LastUpdated *time.Time          `json:"lastUpdated,omitempty"`
}

func (h *PriceHandler) statusSnapshot() statusResponse {
	state, updated := h.sync.Status()
	resp := statusResponse{Status: state}
	if !updated.IsZero() {
		resp.LastUpdated = &updated
	}
	return resp
}

// HandleRefresh starts a refresh cycle and reports the resulting status. A
// feed failure is not an HTTP error: prices keep their last known values and
// the status signal carries the outcome.
func (h *PriceHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.Refresh(r.Context()); err != nil {
		h.log.Warn("refresh cycle failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, h.statusSnapshot())
}

// HandleStatus reports the feed state without touching the feed.
func (h *PriceHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.statusSnapshot())
}

// HandleSearch runs a debounced free-text coin lookup. Queries shorter than
// two characters return nothing; a query superseded by a newer one resolves
// empty rather than erroring.
func (h *PriceHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if len(query) < 2 {
		writeJSON(w, http.StatusOK, map[string][]models.CoinSelection{"coins": {}})
		return
	}

	res := <-h.search.Schedule(r.Context(), query)
	if res.Err != nil {
		if errors.Is(res.Err, services.ErrSearchSuperseded) {
			writeJSON(w, http.StatusOK, map[string][]models.CoinSelection{"coins": {}})
			return
		}
		http.Error(w, "search failed", http.StatusBadGateway)
		return
	}

	coins := res.Coins
	if coins == nil {
		coins = []models.CoinSelection{}
	}
	writeJSON(w, http.StatusOK, map[string][]models.CoinSelection{"coins": coins})
}
