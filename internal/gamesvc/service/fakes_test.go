package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/kicklink/kicklink-services/internal/gamesvc/payment"
)

// fakeStore models match_games and player_on_game in memory with the same
// atomicity the SQL statements give.
type fakeStore struct {
	mu          sync.Mutex
	games       map[uuid.UUID]*models.Game
	enrollments map[uuid.UUID]map[uuid.UUID]models.Enrollment
	profiles    map[uuid.UUID]*models.Profile
	err         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		games:       map[uuid.UUID]*models.Game{},
		enrollments: map[uuid.UUID]map[uuid.UUID]models.Enrollment{},
		profiles:    map[uuid.UUID]*models.Profile{},
	}
}

func (f *fakeStore) addGame(capacity int, status models.GameStatus) *models.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := &models.Game{
		ID:          uuid.New(),
		OrganiserID: uuid.New(),
		Title:       "Sunday 5-a-side",
		Venue:       "Powerleague Shoreditch",
		FeeCents:    500,
		Capacity:    capacity,
		Status:      status,
	}
	f.games[g.ID] = g
	return g
}

func (f *fakeStore) GetGameByID(_ context.Context, id uuid.UUID) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	g, ok := f.games[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeStore) GetGameWithCount(ctx context.Context, id uuid.UUID) (*models.GameWithCount, error) {
	g, err := f.GetGameByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.GameWithCount{Game: *g, Enrolled: f.count(id)}, nil
}

func (f *fakeStore) ListNearbyGames(_ context.Context, _, _, radiusKm float64, limit int) ([]*models.NearbyGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.NearbyGame
	for _, g := range f.games {
		if g.Status == models.GameStatusOpen && len(out) < limit {
			out = append(out, &models.NearbyGame{Game: *g, DistanceKm: radiusKm / 2})
		}
	}
	return out, nil
}

func (f *fakeStore) CreateGame(_ context.Context, game models.Game) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	game.ID = uuid.New()
	f.games[game.ID] = &game
	return &game, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) Enroll(_ context.Context, e models.Enrollment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.games[e.GameID]; !ok {
		return false, models.ErrNotFound
	}
	rows, ok := f.enrollments[e.GameID]
	if !ok {
		rows = map[uuid.UUID]models.Enrollment{}
		f.enrollments[e.GameID] = rows
	}
	if _, dup := rows[e.UserID]; dup {
		return false, nil
	}
	rows[e.UserID] = e
	return true, nil
}

func (f *fakeStore) MarkFullIfCapacityReached(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	g, ok := f.games[id]
	if !ok || g.Status != models.GameStatusOpen || len(f.enrollments[id]) < g.Capacity {
		return false, nil
	}
	g.Status = models.GameStatusFull
	return true, nil
}

func (f *fakeStore) count(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.enrollments[id])
}

func (f *fakeStore) status(id uuid.UUID) models.GameStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.games[id].Status
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []uuid.UUID
	err   error
}

func (n *fakeNotifier) NotifyGameFilled(_ context.Context, id uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, id)
	return n.err
}

func (n *fakeNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type fakeGateway struct {
	last *payment.CheckoutRequest
	err  error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.last = &req
	return &payment.Session{ID: "cs_test_1", URL: "https://checkout.stripe.test/c/pay/cs_test_1"}, nil
}
