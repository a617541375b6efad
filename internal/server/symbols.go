package server

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/advisor/internal/clients/finnhub"
)

// SymbolHandlers provides symbol lookup endpoints
type SymbolHandlers struct {
	client *finnhub.Client
	log    zerolog.Logger
}

// NewSymbolHandlers creates symbol lookup handlers.
// client may be nil when no Finnhub credentials are configured.
func NewSymbolHandlers(client *finnhub.Client, log zerolog.Logger) *SymbolHandlers {
	return &SymbolHandlers{
		client: client,
		log:    log.With().Str("handler", "symbols").Logger(),
	}
}

// HandleSearch handles GET /api/symbols/search?q=query
func (h *SymbolHandlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		http.Error(w, "Symbol search is not configured", http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	result, err := h.client.Search(r.Context(), query)
	if err != nil {
		h.log.Warn().Err(err).Str("query", query).Msg("Symbol search failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(h.log, w, http.StatusOK, result)
}
