// Package handlers provides HTTP handlers for portfolio construction.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aristath/advisor/internal/clients/robo"
	"github.com/aristath/advisor/internal/events"
	"github.com/aristath/advisor/internal/modules/portfolio"
	"github.com/aristath/advisor/internal/modules/registry"
	"github.com/aristath/advisor/internal/modules/selection"
	"github.com/rs/zerolog"
)

// PortfolioBuilder is the backend surface needed to build a portfolio.
type PortfolioBuilder interface {
	BuildPortfolio(ctx context.Context, request robo.BuildRequest) (*robo.Portfolio, error)
}

// BucketSource resolves a session's recommended risk bucket.
// Implemented by the assessment service.
type BucketSource interface {
	RecommendedBucket(sessionID string) (string, error)
}

// Handler provides HTTP handlers for portfolio endpoints
type Handler struct {
	builder PortfolioBuilder
	buckets BucketSource
	bus     *events.Bus
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler.
// buckets is optional - if nil, build requests must carry an explicit
// riskBucketCategory.
func NewHandler(builder PortfolioBuilder, buckets BucketSource, bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		builder: builder,
		buckets: buckets,
		bus:     bus,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// categoryView is a registry entry plus its preset marking.
type categoryView struct {
	registry.Category
	Preset bool `json:"preset"`
}

// HandleCategories handles GET /api/portfolio/categories
func (h *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	all := registry.All()
	views := make([]categoryView, len(all))
	for i, c := range all {
		views[i] = categoryView{Category: c, Preset: !c.Alternative}
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, map[string]interface{}{
		"categories": views,
		"buckets":    portfolio.Buckets,
	})
}

// HandleValidateSelection handles POST /api/portfolio/selection/validate
func (h *Handler) HandleValidateSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Categories []string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, selection.Validate(body.Categories))
}

// HandleToggleSelection handles POST /api/portfolio/selection/toggle
// Adds the item if absent, removes it if present; a toggle that would
// break the selection rules is rejected with 422.
func (h *Handler) HandleToggleSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Categories []string `json:"categories"`
		Item       string   `json:"item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Item == "" {
		http.Error(w, "item is required", http.StatusBadRequest)
		return
	}

	next, err := selection.AttemptToggle(body.Categories, body.Item)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		h.encode(w, map[string]interface{}{
			"isValid": false,
			"errors":  []string{err.Error()},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, map[string]interface{}{"categories": next})
}

// HandleBuild handles POST /api/portfolio/build
// The risk bucket comes from the request, or from the session's
// assessment result when only a sessionId is given.
func (h *Handler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID          string   `json:"sessionId"`
		RiskBucketCategory string   `json:"riskBucketCategory"`
		Categories         []string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if result := selection.Validate(body.Categories); !result.IsValid {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		h.encode(w, result)
		return
	}

	bucket := body.RiskBucketCategory
	if bucket == "" && body.SessionID != "" && h.buckets != nil {
		recommended, err := h.buckets.RecommendedBucket(body.SessionID)
		if err != nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		bucket = recommended
	}

	request, err := portfolio.BuildRequestFor(body.Categories, bucket)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	built, err := h.builder.BuildPortfolio(r.Context(), request)
	if err != nil {
		h.log.Warn().Err(err).Msg("Portfolio build failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	result := portfolio.TranslateResponse(built)

	h.bus.EmitTyped("portfolio", &events.PortfolioBuiltData{
		Name:           result.Name,
		RiskBucket:     request.RiskBucketCategory,
		Categories:     len(result.Allocations),
		ExpectedReturn: result.ExpectedReturn,
	})

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, result)
}

func (h *Handler) encode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
