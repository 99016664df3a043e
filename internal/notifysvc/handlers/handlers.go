package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/comm"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/kicklink/kicklink-services/internal/notifysvc/service"
	log "github.com/sirupsen/logrus"
)

type FillNotifier interface {
	NotifyGameFilled(ctx context.Context, gameID uuid.UUID) (*service.NotifyResult, error)
}

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	notifier  FillNotifier
	port      string
}

func NewHandler(notifier FillNotifier, jwtSecret []byte, port string) *Handler {
	return &Handler{
		tokenAuth: jwtauth.New("HS256", jwtSecret, nil),
		notifier:  notifier,
		port:      port,
	}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warnf("unable to encode response: %v", err)
	}
}

func (h *Handler) CreateError(w http.ResponseWriter, code int, msg string) {
	h.CreateResponse(w, code, map[string]string{"error": msg})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, http.StatusOK, map[string]string{
		"message": "notify service is running at port " + h.port,
	})
}

func (h *Handler) NotifyGameFilled(w http.ResponseWriter, r *http.Request) {
	var req comm.NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	gameID, err := uuid.Parse(req.GameID)
	if err != nil {
		h.CreateError(w, http.StatusBadRequest, "gameId must be a UUID")
		return
	}

	_, err = h.notifier.NotifyGameFilled(r.Context(), gameID)
	switch {
	case err == nil:
		h.CreateResponse(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, models.ErrNotFound):
		h.CreateError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, models.ErrBelowCapacity):
		log.WithError(err).Warn("fill notification refused")
		h.CreateError(w, http.StatusConflict, "Game has not reached capacity")
	default:
		log.WithError(err).WithField("game_id", gameID).Error("fill notification failed")
		h.CreateError(w, http.StatusInternalServerError, "Failed to notify players")
	}
}

// RequireServiceRole rejects verified tokens that do not carry the service
// role claim.
func RequireServiceRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || claims["role"] != comm.ServiceRole {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
