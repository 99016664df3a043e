package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) NearbyGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		h.CreateError(w, http.StatusBadRequest, "lat is required")
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		h.CreateError(w, http.StatusBadRequest, "lon is required")
		return
	}
	var radius float64
	if s := q.Get("radius"); s != "" {
		if radius, err = strconv.ParseFloat(s, 64); err != nil {
			h.CreateError(w, http.StatusBadRequest, "radius must be a number")
			return
		}
	}

	games, err := h.games.NearbyGames(r.Context(), lat, lon, radius)
	if err != nil {
		h.serviceError(w, err, "Failed to list games")
		return
	}
	h.CreateResponse(w, http.StatusOK, games)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	game, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "Failed to load game")
		return
	}
	h.CreateResponse(w, http.StatusOK, game)
}

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var game models.Game
	if err := json.NewDecoder(r.Body).Decode(&game); err != nil {
		h.CreateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.games.CreateGame(r.Context(), game)
	if err != nil {
		h.serviceError(w, err, "Failed to create game")
		return
	}
	h.CreateResponse(w, http.StatusCreated, created)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	profile, err := h.games.GetProfile(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "Failed to load profile")
		return
	}
	h.CreateResponse(w, http.StatusOK, profile)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.CreateError(w, http.StatusBadRequest, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) serviceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		h.CreateError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, models.ErrNotMember):
		h.CreateError(w, http.StatusForbidden, "Not a member of this chat")
	case errors.Is(err, models.ErrValidation):
		h.CreateError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Error(msg)
		h.CreateError(w, http.StatusInternalServerError, msg)
	}
}
