package handlers

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r chi.Router) {
	// public routes here
	r.Get("/health", h.HealthHandler)

	// Secure routes
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(h.tokenAuth))
		r.Use(jwtauth.Authenticator)
		r.Use(RequireServiceRole)

		r.Post("/notify-game-filled", h.NotifyGameFilled)
	})
}
