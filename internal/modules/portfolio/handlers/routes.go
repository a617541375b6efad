package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers portfolio routes on the given router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/categories", h.HandleCategories)
		r.Post("/selection/validate", h.HandleValidateSelection)
		r.Post("/selection/toggle", h.HandleToggleSelection)
		r.Post("/build", h.HandleBuild)
	})
}
