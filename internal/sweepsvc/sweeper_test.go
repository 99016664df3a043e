package sweepsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClaimer struct {
	ids   []uuid.UUID
	err   error
	limit int
	calls int
}

func (f *fakeClaimer) ClaimUnnotifiedFullGames(_ context.Context, limit int, _, _ time.Duration) ([]uuid.UUID, error) {
	f.calls++
	f.limit = limit
	ids := f.ids
	f.ids = nil
	return ids, f.err
}

type fakeNotifier struct {
	fail  map[uuid.UUID]error
	calls []uuid.UUID
}

func (f *fakeNotifier) NotifyGameFilled(_ context.Context, id uuid.UUID) error {
	f.calls = append(f.calls, id)
	return f.fail[id]
}

var opts = Options{Batch: 20, Grace: 30 * time.Second, ReclaimAfter: 2 * time.Minute, StoreTimeout: time.Second}

func TestRunOnce(t *testing.T) {
	ok, missing, failing := uuid.New(), uuid.New(), uuid.New()
	claimer := &fakeClaimer{ids: []uuid.UUID{ok, missing, failing}}
	notifier := &fakeNotifier{fail: map[uuid.UUID]error{
		missing: models.ErrNotFound,
		failing: models.ErrUpstream,
	}}

	done, err := NewSweeper(claimer, notifier, opts).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, done)
	assert.Equal(t, 20, claimer.limit)
	assert.Equal(t, []uuid.UUID{ok, missing, failing}, notifier.calls)
}

func TestRunOnceClaimError(t *testing.T) {
	claimer := &fakeClaimer{err: errors.New("db down")}
	notifier := &fakeNotifier{}

	_, err := NewSweeper(claimer, notifier, opts).RunOnce(context.Background())
	assert.Error(t, err)
	assert.Empty(t, notifier.calls)
}

func TestRunStopsWithContext(t *testing.T) {
	claimer := &fakeClaimer{}
	s := NewSweeper(claimer, &fakeNotifier{}, opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
