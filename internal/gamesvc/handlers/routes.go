package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
)

// SetRoutes mounts every route. limiter, when set, guards the client routes
// only: the payment gateway delivers webhooks from a handful of shared
// addresses and must not be throttled per IP.
func (h *Handler) SetRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.Get("/health", h.HealthHandler)
	r.Post("/webhook", h.StripeWebhook)

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter)
		}

		r.Post("/checkout-session", h.CreateCheckoutSession)

		r.Route("/games", func(r chi.Router) {
			r.Get("/nearby", h.NearbyGames)
			r.Get("/{id}", h.GetGame)
			r.Post("/", h.CreateGame)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", h.CreateProfile)
			r.Get("/{id}", h.GetProfile)
			r.Patch("/{id}", h.UpdateProfile)
			r.Put("/{id}/push-token", h.RegisterPushToken)
			r.Delete("/{id}/push-token", h.UnregisterPushToken)
			r.Get("/{id}/candidates", h.Candidates)
			r.Get("/{id}/chats", h.ListChats)
		})

		r.Post("/likes", h.Like)

		r.Route("/chats/{id}/messages", func(r chi.Router) {
			r.Get("/", h.ListMessages)
			r.Post("/", h.SendMessage)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.ListTeams)
			r.Post("/", h.CreateTeam)
		})
	})
}
