package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
)

// profileRequest exposes the push token on input only; Profile never
// serializes it.
type profileRequest struct {
	models.Profile
	PushToken *string `json:"expoPushToken"`
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

type likeRequest struct {
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
}

type messageRequest struct {
	SenderID string `json:"senderId"`
	Body     string `json:"body"`
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p := req.Profile
	p.ExpoPushToken = req.PushToken

	created, err := h.community.CreateProfile(r.Context(), p)
	if err != nil {
		h.serviceError(w, err, "Failed to create profile")
		return
	}
	h.CreateResponse(w, http.StatusCreated, created)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var u models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		h.CreateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.community.UpdateProfile(r.Context(), id, u)
	if err != nil {
		h.serviceError(w, err, "Failed to update profile")
		return
	}
	h.CreateResponse(w, http.StatusOK, updated)
}

func (h *Handler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req pushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.community.RegisterPushToken(r.Context(), id, &req.Token); err != nil {
		h.serviceError(w, err, "Failed to register push token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UnregisterPushToken(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.community.RegisterPushToken(r.Context(), id, nil); err != nil {
		h.serviceError(w, err, "Failed to unregister push token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Candidates(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	profiles, err := h.community.Candidates(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "Failed to list players")
		return
	}
	h.CreateResponse(w, http.StatusOK, profiles)
}

// Like answers 201 for a new like and 200 when it already existed.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	from, err := uuid.Parse(req.FromID)
	if err != nil {
		h.CreateError(w, http.StatusBadRequest, "fromId must be a UUID")
		return
	}
	to, err := uuid.Parse(req.ToID)
	if err != nil {
		h.CreateError(w, http.StatusBadRequest, "toId must be a UUID")
		return
	}

	res, err := h.community.Like(r.Context(), models.Like{FromID: from, ToID: to})
	if err != nil {
		h.serviceError(w, err, "Failed to record like")
		return
	}
	code := http.StatusOK
	if res.Created {
		code = http.StatusCreated
	}
	h.CreateResponse(w, code, res)
}

func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	chats, err := h.community.ListChats(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "Failed to list chats")
		return
	}
	h.CreateResponse(w, http.StatusOK, chats)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	messages, err := h.community.ListMessages(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "Failed to list messages")
		return
	}
	h.CreateResponse(w, http.StatusOK, messages)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sender, err := uuid.Parse(req.SenderID)
	if err != nil {
		h.CreateError(w, http.StatusBadRequest, "senderId must be a UUID")
		return
	}

	msg, err := h.community.SendMessage(r.Context(), models.Message{ChatID: id, SenderID: sender, Body: req.Body})
	if err != nil {
		h.serviceError(w, err, "Failed to send message")
		return
	}
	h.CreateResponse(w, http.StatusCreated, msg)
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var team models.Team
	if err := json.NewDecoder(r.Body).Decode(&team); err != nil {
		h.CreateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.community.CreateTeam(r.Context(), team)
	if err != nil {
		h.serviceError(w, err, "Failed to create team")
		return
	}
	h.CreateResponse(w, http.StatusCreated, created)
}

// ListTeams lists one league tier, BRONZE when none is given.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	tier := models.LeagueTier(r.URL.Query().Get("tier"))
	if tier == "" {
		tier = models.LeagueTierBronze
	}

	teams, err := h.community.ListTeams(r.Context(), tier)
	if err != nil {
		h.serviceError(w, err, "Failed to list teams")
		return
	}
	h.CreateResponse(w, http.StatusOK, teams)
}
