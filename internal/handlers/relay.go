package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RelayHandler forwards /api/* requests to the upstream price-feed API so the
// browser never talks to it cross-origin. The local /api prefix is rewritten
// onto the upstream's versioned base path and the query string is forwarded
// untouched.
type RelayHandler struct {
	upstream   string
	httpClient *http.Client
	log        *zap.Logger
}

// NewRelayHandler creates a relay against the given upstream API base, e.g.
// "https://api.coingecko.com/api/v3".
func NewRelayHandler(upstream string, timeout time.Duration, log *zap.Logger) *RelayHandler {
	return &RelayHandler{
		upstream:   strings.TrimRight(upstream, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	target := h.upstream + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, nil)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Proxy Error"})
		return
	}
	req.Header.Set("User-Agent", "CryptoFolio Pro/1.0 (contact@example.com)")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("CG-Pricing-Feature", "true")

	h.log.Debug("proxying API request", zap.String("target", target))

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.log.Warn("API proxy error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Proxy Error"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		writeJSON(w, resp.StatusCode, map[string]string{"error": "API Error"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, resp.Body)
}
