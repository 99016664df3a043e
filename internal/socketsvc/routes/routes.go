package routes

import (
	"github.com/go-chi/chi"
	"github.com/kicklink/kicklink-services/internal/socketsvc/handlers"
	"github.com/kicklink/kicklink-services/internal/socketsvc/ws"
)

func SetRoutes(r chi.Router, ws *ws.Ws, port string) {
	h := handlers.NewHandler(ws, port)
	r.Get("/health", h.HealthHandler)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/ws", h.HandleWebSocket)
	})
}
