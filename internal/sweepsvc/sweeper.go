// Package sweepsvc re-drives fill notifications that never completed: games
// that reached FULL but whose notifier call was lost or failed.
package sweepsvc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	log "github.com/sirupsen/logrus"
)

type Claimer interface {
	ClaimUnnotifiedFullGames(ctx context.Context, limit int, grace, reclaimAfter time.Duration) ([]uuid.UUID, error)
}

type FillNotifier interface {
	NotifyGameFilled(ctx context.Context, gameID uuid.UUID) error
}

type Options struct {
	Batch        int
	Grace        time.Duration // leave the webhook's own notifier call time to finish
	ReclaimAfter time.Duration // a claim older than this is considered abandoned
	StoreTimeout time.Duration
}

type Sweeper struct {
	claimer  Claimer
	notifier FillNotifier
	opts     Options
}

func NewSweeper(claimer Claimer, notifier FillNotifier, opts Options) *Sweeper {
	return &Sweeper{claimer: claimer, notifier: notifier, opts: opts}
}

// RunOnce claims one batch and notifies each game in it, returning how many
// notifications succeeded.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	claimCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	ids, err := s.claimer.ClaimUnnotifiedFullGames(claimCtx, s.opts.Batch, s.opts.Grace, s.opts.ReclaimAfter)
	cancel()
	if err != nil {
		return 0, err
	}

	done := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}

		err := s.notifier.NotifyGameFilled(ctx, id)
		switch {
		case err == nil:
			done++
		case errors.Is(err, models.ErrNotFound):
			log.WithField("game_id", id).Warn("claimed game no longer exists")
		default:
			// left claimed; eligible again after ReclaimAfter
			log.WithError(err).WithField("game_id", id).Error("sweeper notifier call failed")
		}
	}

	if len(ids) > 0 {
		log.Infof("sweep notified %d of %d unnotified games", done, len(ids))
	}
	return done, nil
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("sweep error: %v", err)
			}
		}
	}
}
