// Package handlers provides HTTP handlers for assessment sessions.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aristath/advisor/internal/modules/assessment"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler provides HTTP handlers for assessment endpoints
type Handler struct {
	service *assessment.Service
	log     zerolog.Logger
}

// NewHandler creates a new assessment handler
func NewHandler(service *assessment.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "assessment").Logger(),
	}
}

// sessionView is the API shape of a session snapshot.
type sessionView struct {
	assessment.Session
	Progress          int    `json:"progress"`
	RecommendedBucket string `json:"recommendedBucket,omitempty"`
}

func viewOf(s assessment.Session) sessionView {
	view := sessionView{Session: s, Progress: s.Progress()}
	if s.Phase == assessment.PhaseResults {
		view.RecommendedBucket = s.RecommendedBucket()
	}
	return view
}

// HandleCreate handles POST /api/assessment/sessions
// The optional ?income query overrides the configured income-step
// default for this session.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var session assessment.Session
	if raw := r.URL.Query().Get("income"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "income must be true or false", http.StatusBadRequest)
			return
		}
		session = h.service.Create(enabled)
	} else {
		session = h.service.CreateDefault()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	h.encode(w, viewOf(session))
}

// HandleGet handles GET /api/assessment/sessions/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, viewOf(session))
}

// HandleAnswer handles POST /api/assessment/sessions/{id}/answer
func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AnswerIndex *int `json:"answerIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.AnswerIndex == nil {
		http.Error(w, "answerIndex is required", http.StatusBadRequest)
		return
	}

	session, err := h.service.Answer(chi.URLParam(r, "id"), *body.AnswerIndex)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, viewOf(session))
}

// HandleNext handles POST /api/assessment/sessions/{id}/next
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Next(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, viewOf(session))
}

// HandlePrevious handles POST /api/assessment/sessions/{id}/previous
func (h *Handler) HandlePrevious(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Previous(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, viewOf(session))
}

// HandleRestart handles POST /api/assessment/sessions/{id}/restart
func (h *Handler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Restart(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, viewOf(session))
}

// HandleRetry handles POST /api/assessment/sessions/{id}/retry
func (h *Handler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Retry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, viewOf(session))
}

// HandleSetIncome handles PUT /api/assessment/sessions/{id}/income
func (h *Handler) HandleSetIncome(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AnnualIncome *int64 `json:"annualIncome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.AnnualIncome == nil {
		http.Error(w, "annualIncome is required", http.StatusBadRequest)
		return
	}
	if *body.AnnualIncome < 0 {
		http.Error(w, "annualIncome must not be negative", http.StatusBadRequest)
		return
	}

	session, err := h.service.SetIncome(chi.URLParam(r, "id"), *body.AnnualIncome)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, map[string]interface{}{
		"annualIncome":   session.AnnualIncome,
		"incomeEstimate": session.IncomeEstimate,
	})
}

// writeError maps service errors to HTTP responses.
// Validation failures are 422, collaborator failures 502, navigation
// violations 409; everything else falls through to 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validationErr *assessment.ValidationError
	var collabErr *assessment.CollaboratorError

	switch {
	case errors.Is(err, assessment.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
	case errors.As(err, &validationErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		h.encode(w, map[string]interface{}{
			"isValid": false,
			"errors":  validationErr.Messages,
		})
	case errors.As(err, &collabErr):
		h.log.Warn().Err(err).Msg("Collaborator failure")
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, assessment.ErrUnanswered),
		errors.Is(err, assessment.ErrStillLoading),
		errors.Is(err, assessment.ErrNotInQuestionPhase):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.Error().Err(err).Msg("Unexpected error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) encode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
