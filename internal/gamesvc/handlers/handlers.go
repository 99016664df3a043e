package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/kicklink/kicklink-services/internal/gamesvc/service"
	log "github.com/sirupsen/logrus"
)

// webhook bodies are small JSON documents
const maxWebhookBody = 64 << 10

type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, gameID, userID uuid.UUID) (string, error)
}

type WebhookProcessor interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) (*service.WebhookResult, error)
}

type GameQuerier interface {
	GetGame(ctx context.Context, gameID uuid.UUID) (*models.GameWithCount, error)
	NearbyGames(ctx context.Context, lat, lon, radiusKm float64) ([]*models.NearbyGame, error)
	CreateGame(ctx context.Context, game models.Game) (*models.Game, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type CommunityManager interface {
	CreateProfile(ctx context.Context, p models.Profile) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, u models.ProfileUpdate) (*models.Profile, error)
	RegisterPushToken(ctx context.Context, id uuid.UUID, token *string) error
	Candidates(ctx context.Context, id uuid.UUID) ([]*models.Profile, error)
	Like(ctx context.Context, like models.Like) (*models.LikeResult, error)
	ListChats(ctx context.Context, profileID uuid.UUID) ([]*models.ChatSummary, error)
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error)
	SendMessage(ctx context.Context, m models.Message) (*models.Message, error)
	CreateTeam(ctx context.Context, t models.Team) (*models.Team, error)
	ListTeams(ctx context.Context, tier models.LeagueTier) ([]*models.Team, error)
}

type Handler struct {
	checkout  CheckoutCreator
	webhook   WebhookProcessor
	games     GameQuerier
	community CommunityManager
	port      string
}

func NewHandler(checkout CheckoutCreator, webhook WebhookProcessor, games GameQuerier, community CommunityManager, port string) *Handler {
	return &Handler{checkout: checkout, webhook: webhook, games: games, community: community, port: port}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warnf("unable to encode response: %v", err)
	}
}

func (h *Handler) CreateError(w http.ResponseWriter, code int, msg string) {
	h.CreateResponse(w, code, errorResponse{Error: msg})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, http.StatusOK, map[string]string{
		"message": "game service is running at port " + h.port,
	})
}
