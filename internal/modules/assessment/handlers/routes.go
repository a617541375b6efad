package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all assessment routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/assessment/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Post("/answer", h.HandleAnswer)
			r.Post("/next", h.HandleNext)
			r.Post("/previous", h.HandlePrevious)
			r.Post("/restart", h.HandleRestart)
			r.Post("/retry", h.HandleRetry)
			r.Put("/income", h.HandleSetIncome)
		})
	})
}
