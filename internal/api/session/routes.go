package session

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/survey-session", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetSession)
		r.Delete("/{id}", h.DeleteSession)
		r.Post("/{id}/start", h.RestartSession)
		r.Post("/{id}/answer", h.SubmitAnswer)
		r.Get("/{id}/history", h.GetHistory)
		r.Get("/{id}/requirements", h.GetRequirements)
		r.Get("/{id}/survey", h.GetSurvey)
		r.Post("/{id}/survey/regenerate", h.RegenerateSurvey)
	})
}
