package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	log "github.com/sirupsen/logrus"
)

type checkoutRequest struct {
	GameID string `json:"gameId"`
	UserID string `json:"userId"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	gameID, err := uuid.Parse(req.GameID)
	if err != nil {
		h.CreateError(w, http.StatusBadRequest, "gameId must be a UUID")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.CreateError(w, http.StatusBadRequest, "userId must be a UUID")
		return
	}

	url, err := h.checkout.CreateCheckoutSession(r.Context(), gameID, userID)
	switch {
	case err == nil:
		h.CreateResponse(w, http.StatusOK, checkoutResponse{URL: url})
	case errors.Is(err, models.ErrNotFound):
		h.CreateError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, models.ErrGameNotOpen):
		h.CreateError(w, http.StatusConflict, "Game is not open")
	default:
		log.WithError(err).WithField("game_id", gameID).Error("checkout session failed")
		h.CreateError(w, http.StatusInternalServerError, "Failed to create checkout session")
	}
}
