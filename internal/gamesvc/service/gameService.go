package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
)

const (
	defaultRadiusKm = 10
	maxRadiusKm     = 200
	nearbyLimit     = 50
)

type GameStore interface {
	GetGameWithCount(ctx context.Context, gameID uuid.UUID) (*models.GameWithCount, error)
	ListNearbyGames(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]*models.NearbyGame, error)
	CreateGame(ctx context.Context, game models.Game) (*models.Game, error)
}

type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// GameService serves the read/write glue the mobile client queries.
type GameService struct {
	gameStore    GameStore
	profileStore ProfileStore
}

func NewGameService(gameStore GameStore, profileStore ProfileStore) *GameService {
	return &GameService{gameStore: gameStore, profileStore: profileStore}
}

func (s *GameService) GetGame(ctx context.Context, gameID uuid.UUID) (*models.GameWithCount, error) {
	return s.gameStore.GetGameWithCount(ctx, gameID)
}

// NearbyGames lists OPEN games around (lat, lon). A non-positive radius
// falls back to the default; larger radii are clamped.
func (s *GameService) NearbyGames(ctx context.Context, lat, lon, radiusKm float64) ([]*models.NearbyGame, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: lat/lon out of range", models.ErrValidation)
	}
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}
	if radiusKm > maxRadiusKm {
		radiusKm = maxRadiusKm
	}

	games, err := s.gameStore.ListNearbyGames(ctx, lat, lon, radiusKm, nearbyLimit)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []*models.NearbyGame{}
	}
	return games, nil
}

// CreateGame validates before anything reaches the store.
func (s *GameService) CreateGame(ctx context.Context, game models.Game) (*models.Game, error) {
	game.Status = models.GameStatusOpen
	if err := game.Validate(); err != nil {
		return nil, err
	}
	return s.gameStore.CreateGame(ctx, game)
}

func (s *GameService) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.profileStore.GetByID(ctx, id)
}
