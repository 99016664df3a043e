package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/kicklink/kicklink-services/internal/notifysvc/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGames struct {
	game        *models.Game
	token       *string
	markCalls   int
	markUpdated bool
	err         error
}

func (f *fakeGames) GetGameWithOrganiserToken(_ context.Context, id uuid.UUID) (*models.Game, *string, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	if f.game == nil || f.game.ID != id {
		return nil, nil, fmt.Errorf("game %s: %w", id, models.ErrNotFound)
	}
	cp := *f.game
	return &cp, f.token, nil
}

// MarkFullNotified fails on a done context the way a pgx query does.
func (f *fakeGames) MarkFullNotified(ctx context.Context, _ uuid.UUID) (bool, error) {
	f.markCalls++
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return f.markUpdated, nil
}

type fakeEnrollments struct {
	count  int
	tokens []*string
}

func (f *fakeEnrollments) CountByGameID(context.Context, uuid.UUID) (int, error) {
	return f.count, nil
}

func (f *fakeEnrollments) ListPlayerPushTokens(context.Context, uuid.UUID) ([]*string, error) {
	return f.tokens, nil
}

type fakePusher struct {
	sent    []push.Message
	tickets []push.Ticket
	err     error
	onSend  func()
}

func (f *fakePusher) Send(_ context.Context, messages []push.Message) ([]push.Batch, error) {
	if f.onSend != nil {
		f.onSend()
	}
	f.sent = append(f.sent, messages...)
	tokens := make([]string, 0, len(messages))
	for _, m := range messages {
		tokens = append(tokens, m.To)
	}
	return []push.Batch{{Tokens: tokens, Tickets: f.tickets, Err: f.err}}, f.err
}

type fakeReceipts struct {
	batches []push.Batch
}

func (f *fakeReceipts) Record(ctx context.Context, _ uuid.UUID, batches []push.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.batches = append(f.batches, batches...)
	return nil
}

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) PublishGameStatus(id uuid.UUID, status string) error {
	f.events = append(f.events, id.String()+":"+status)
	return nil
}

func str(s string) *string { return &s }

type fixture struct {
	svc       *NotifierService
	games     *fakeGames
	enrolls   *fakeEnrollments
	pusher    *fakePusher
	receipts  *fakeReceipts
	publisher *fakePublisher
}

func newFixture(capacity, enrolled int) *fixture {
	f := &fixture{
		games: &fakeGames{
			game: &models.Game{
				ID:       uuid.New(),
				Title:    "Sunday 5-a-side",
				Capacity: capacity,
				Status:   models.GameStatusOpen,
			},
			markUpdated: true,
		},
		enrolls:   &fakeEnrollments{count: enrolled},
		pusher:    &fakePusher{},
		receipts:  &fakeReceipts{},
		publisher: &fakePublisher{},
	}
	f.svc = NewNotifierService(f.games, f.enrolls, f.pusher, f.receipts, f.publisher, time.Second)
	return f
}

func TestNotifyGameFilled(t *testing.T) {
	f := newFixture(2, 2)
	f.games.token = str("ExponentPushToken[org]")
	f.enrolls.tokens = []*string{str("ExponentPushToken[p1]"), nil, str(""), str("ExponentPushToken[org]"), str("ExponentPushToken[p2]")}

	res, err := f.svc.NotifyGameFilled(context.Background(), f.games.game.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Tokens)
	assert.True(t, res.Updated)
	assert.Equal(t, models.GameStatusFull, res.Game.Status)

	require.Len(t, f.pusher.sent, 3)
	assert.Equal(t, "ExponentPushToken[org]", f.pusher.sent[0].To)
	assert.Equal(t, "ExponentPushToken[p1]", f.pusher.sent[1].To)
	assert.Equal(t, "ExponentPushToken[p2]", f.pusher.sent[2].To)
	for _, m := range f.pusher.sent {
		assert.Equal(t, "Game is Full!", m.Title)
		assert.Equal(t, `The game "Sunday 5-a-side" has reached capacity`, m.Body)
		assert.Equal(t, "default", m.Sound)
		assert.Equal(t, map[string]string{"gameId": f.games.game.ID.String()}, m.Data)
	}

	assert.Equal(t, 1, f.games.markCalls)
	assert.Len(t, f.receipts.batches, 1)
	assert.Equal(t, []string{f.games.game.ID.String() + ":FULL"}, f.publisher.events)
}

func TestNotifyGameFilled_NoTokensStillUpdates(t *testing.T) {
	f := newFixture(2, 2)
	f.enrolls.tokens = []*string{nil, nil}

	res, err := f.svc.NotifyGameFilled(context.Background(), f.games.game.ID)
	require.NoError(t, err)
	assert.Zero(t, res.Tokens)
	assert.Empty(t, f.pusher.sent)
	assert.Empty(t, f.receipts.batches)
	assert.Equal(t, 1, f.games.markCalls)
}

func TestNotifyGameFilled_PushFailureStillUpdates(t *testing.T) {
	f := newFixture(2, 2)
	f.enrolls.tokens = []*string{str("ExponentPushToken[p1]")}
	f.pusher.err = errors.New("expo error (503)")

	res, err := f.svc.NotifyGameFilled(context.Background(), f.games.game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, res.Updated)
	assert.Equal(t, 1, f.games.markCalls)
	require.Len(t, f.receipts.batches, 1)
	assert.Error(t, f.receipts.batches[0].Err)
}

func TestNotifyGameFilled_CallerGoneDuringPush(t *testing.T) {
	f := newFixture(2, 2)
	f.enrolls.tokens = []*string{str("ExponentPushToken[p1]")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.pusher.onSend = cancel

	res, err := f.svc.NotifyGameFilled(ctx, f.games.game.ID)
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, 1, f.games.markCalls)
	assert.Len(t, f.receipts.batches, 1)
	assert.Equal(t, []string{f.games.game.ID.String() + ":FULL"}, f.publisher.events)
}

func TestNotifyGameFilled_CountsRejectedTickets(t *testing.T) {
	f := newFixture(2, 2)
	f.enrolls.tokens = []*string{str("ExponentPushToken[p1]"), str("ExponentPushToken[p2]")}
	f.pusher.tickets = []push.Ticket{
		{Status: push.TicketOK, ID: "t1"},
		{Status: push.TicketError, Message: "not registered", Details: map[string]any{"error": "DeviceNotRegistered"}},
	}

	res, err := f.svc.NotifyGameFilled(context.Background(), f.games.game.ID)
	require.NoError(t, err)
	assert.Zero(t, res.Failed)
	assert.Equal(t, 1, res.Rejected)
	assert.True(t, res.Updated)
}

func TestNotifyGameFilled_UnknownGame(t *testing.T) {
	f := newFixture(2, 2)

	_, err := f.svc.NotifyGameFilled(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Zero(t, f.games.markCalls)
	assert.Empty(t, f.pusher.sent)
}

func TestNotifyGameFilled_BelowCapacity(t *testing.T) {
	f := newFixture(10, 9)
	f.enrolls.tokens = []*string{str("ExponentPushToken[p1]")}

	_, err := f.svc.NotifyGameFilled(context.Background(), f.games.game.ID)
	assert.ErrorIs(t, err, models.ErrBelowCapacity)
	assert.Zero(t, f.games.markCalls)
	assert.Empty(t, f.pusher.sent)
	assert.Empty(t, f.publisher.events)
}

func TestNotifyGameFilled_CancelledGameNotOverwritten(t *testing.T) {
	f := newFixture(2, 2)
	f.games.game.Status = models.GameStatusCancelled
	f.enrolls.tokens = []*string{str("ExponentPushToken[p1]")}

	res, err := f.svc.NotifyGameFilled(context.Background(), f.games.game.ID)
	require.NoError(t, err)
	assert.False(t, res.Updated)
	assert.Equal(t, models.GameStatusCancelled, res.Game.Status)
	assert.Zero(t, f.games.markCalls)
	assert.Empty(t, f.pusher.sent)
	assert.Empty(t, f.publisher.events)
}

func TestNotifyGameFilled_OptionalCollaborators(t *testing.T) {
	f := newFixture(2, 2)
	f.enrolls.tokens = []*string{str("ExponentPushToken[p1]")}
	svc := NewNotifierService(f.games, f.enrolls, f.pusher, nil, nil, time.Second)

	res, err := svc.NotifyGameFilled(context.Background(), f.games.game.ID)
	require.NoError(t, err)
	assert.True(t, res.Updated)
}

func TestNotifyGameFilled_CancelledConcurrently(t *testing.T) {
	f := newFixture(2, 2)
	f.games.markUpdated = false

	res, err := f.svc.NotifyGameFilled(context.Background(), f.games.game.ID)
	require.NoError(t, err)
	assert.False(t, res.Updated)
	assert.Equal(t, 1, f.games.markCalls)
	assert.Empty(t, f.publisher.events)
}

func TestCollectTokens(t *testing.T) {
	assert.Empty(t, collectTokens(nil, nil))
	assert.Equal(t, []string{"a", "b"}, collectTokens(str("a"), []*string{str("b"), str("a"), str("b")}))
	assert.Equal(t, []string{"b"}, collectTokens(str(""), []*string{nil, str("b")}))
}
