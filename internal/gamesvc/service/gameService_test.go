package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbyGames(t *testing.T) {
	store := newFakeStore()
	svc := NewGameService(store, store)

	games, err := svc.NearbyGames(context.Background(), 51.5, -0.1, 0)
	require.NoError(t, err)
	assert.NotNil(t, games)
	assert.Empty(t, games)

	store.addGame(10, models.GameStatusOpen)
	store.addGame(10, models.GameStatusFull)

	games, err = svc.NearbyGames(context.Background(), 51.5, -0.1, 1000)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, float64(maxRadiusKm)/2, games[0].DistanceKm)

	_, err = svc.NearbyGames(context.Background(), 91, 0, 5)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateGame(t *testing.T) {
	store := newFakeStore()
	svc := NewGameService(store, store)

	game := models.Game{
		OrganiserID: uuid.New(),
		Title:       "Thursday night 7s",
		Venue:       "Hackney Marshes",
		Lat:         51.55,
		Lon:         -0.03,
		GameDate:    time.Now().Add(48 * time.Hour),
		FeeCents:    700,
		Capacity:    14,
		Status:      models.GameStatusFull,
	}
	created, err := svc.CreateGame(context.Background(), game)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, models.GameStatusOpen, created.Status)

	game.Capacity = 1
	_, err = svc.CreateGame(context.Background(), game)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestGetGameAndProfile(t *testing.T) {
	store := newFakeStore()
	svc := NewGameService(store, store)

	_, err := svc.GetGame(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)

	game := store.addGame(10, models.GameStatusOpen)
	got, err := svc.GetGame(context.Background(), game.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Enrolled)

	_, err = svc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
