package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/kicklink/kicklink-services/internal/notifysvc/push"
	log "github.com/sirupsen/logrus"
)

const (
	pushTitle = "Game is Full!"
	pushSound = "default"
)

type GameStore interface {
	GetGameWithOrganiserToken(ctx context.Context, gameID uuid.UUID) (*models.Game, *string, error)
	MarkFullNotified(ctx context.Context, gameID uuid.UUID) (bool, error)
}

type EnrollmentStore interface {
	CountByGameID(ctx context.Context, gameID uuid.UUID) (int, error)
	ListPlayerPushTokens(ctx context.Context, gameID uuid.UUID) ([]*string, error)
}

type Pusher interface {
	Send(ctx context.Context, messages []push.Message) ([]push.Batch, error)
}

type ReceiptRecorder interface {
	Record(ctx context.Context, gameID uuid.UUID, batches []push.Batch) error
}

type StatusPublisher interface {
	PublishGameStatus(gameID uuid.UUID, status string) error
}

// NotifyResult summarizes one fan-out.
type NotifyResult struct {
	Game     *models.Game
	Tokens   int
	Failed   int // batches Expo did not accept
	Rejected int // error tickets in accepted batches, e.g. DeviceNotRegistered
	Updated  bool
}

type NotifierService struct {
	games       GameStore
	enrollments EnrollmentStore
	pusher      Pusher
	receipts    ReceiptRecorder
	publisher   StatusPublisher
	timeout     time.Duration
}

// NewNotifierService wires the fan-out. receipts and publisher are optional.
func NewNotifierService(games GameStore, enrollments EnrollmentStore, pusher Pusher, receipts ReceiptRecorder, publisher StatusPublisher, timeout time.Duration) *NotifierService {
	return &NotifierService{
		games:       games,
		enrollments: enrollments,
		pusher:      pusher,
		receipts:    receipts,
		publisher:   publisher,
		timeout:     timeout,
	}
}

// NotifyGameFilled pushes "game is full" to the organiser and every enrolled
// player, then marks the game FULL. Push failures are logged and recorded but
// never prevent the status update.
//
// Once the game is loaded the fan-out no longer follows ctx, so a caller
// that hangs up mid-dispatch cannot keep the status from being written.
func (s *NotifierService) NotifyGameFilled(ctx context.Context, gameID uuid.UUID) (*NotifyResult, error) {
	game, organiserToken, playerTokens, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	logger := log.WithField("game_id", gameID)
	res := &NotifyResult{Game: game}
	if game.Status == models.GameStatusCancelled {
		logger.Warn("game was cancelled, skipping fill notification")
		return res, nil
	}

	tokens := collectTokens(organiserToken, playerTokens)
	res.Tokens = len(tokens)
	if len(tokens) > 0 {
		res.Failed, res.Rejected = s.dispatch(ctx, game, tokens)
	} else {
		logger.Info("no push tokens registered, skipping dispatch")
	}

	markCtx, cancel := context.WithTimeout(ctx, s.timeout)
	res.Updated, err = s.games.MarkFullNotified(markCtx, gameID)
	cancel()
	if err != nil {
		return nil, err
	}
	if !res.Updated {
		logger.Warn("game status not updated, cancelled concurrently")
		return res, nil
	}
	game.Status = models.GameStatusFull

	if s.publisher != nil {
		if err := s.publisher.PublishGameStatus(gameID, string(models.GameStatusFull)); err != nil {
			logger.WithError(err).Warn("unable to publish game status")
		}
	}

	logger.WithFields(log.Fields{
		"tokens":          res.Tokens,
		"failed_batches":  res.Failed,
		"rejected_tokens": res.Rejected,
	}).Info("game filled notification completed")
	return res, nil
}

// load reads the game and its tokens, refusing games below capacity.
func (s *NotifierService) load(ctx context.Context, gameID uuid.UUID) (*models.Game, *string, []*string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	game, organiserToken, err := s.games.GetGameWithOrganiserToken(ctx, gameID)
	if err != nil {
		return nil, nil, nil, err
	}

	enrolled, err := s.enrollments.CountByGameID(ctx, gameID)
	if err != nil {
		return nil, nil, nil, err
	}
	if enrolled < game.Capacity {
		return nil, nil, nil, fmt.Errorf("game %s has %d of %d players: %w", gameID, enrolled, game.Capacity, models.ErrBelowCapacity)
	}

	playerTokens, err := s.enrollments.ListPlayerPushTokens(ctx, gameID)
	if err != nil {
		return nil, nil, nil, err
	}
	return game, organiserToken, playerTokens, nil
}

func (s *NotifierService) dispatch(ctx context.Context, game *models.Game, tokens []string) (int, int) {
	messages := make([]push.Message, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, push.Message{
			To:    token,
			Sound: pushSound,
			Title: pushTitle,
			Body:  fmt.Sprintf(`The game "%s" has reached capacity`, game.Title),
			Data:  map[string]string{"gameId": game.ID.String()},
		})
	}

	logger := log.WithField("game_id", game.ID)
	batches, err := s.pusher.Send(ctx, messages)
	if err != nil {
		logger.WithError(err).Error("push dispatch failed")
	}

	failed, rejected := 0, 0
	for _, b := range batches {
		if b.Err != nil {
			failed++
			continue
		}
		for i, ticket := range b.Tickets {
			if ticket.Status != push.TicketError {
				continue
			}
			rejected++
			entry := logger.WithFields(log.Fields{"error": ticket.Message, "details": ticket.Details})
			if i < len(b.Tokens) {
				entry = entry.WithField("token", b.Tokens[i])
			}
			entry.Warn("push ticket rejected")
		}
	}

	if s.receipts != nil {
		recordCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if err := s.receipts.Record(recordCtx, game.ID, batches); err != nil {
			logger.WithError(err).Warn("unable to record push receipts")
		}
	}
	return failed, rejected
}

// collectTokens drops missing and empty tokens and keeps the first occurrence
// of each, organiser first.
func collectTokens(organiser *string, players []*string) []string {
	seen := make(map[string]struct{}, len(players)+1)
	tokens := make([]string, 0, len(players)+1)
	add := func(t *string) {
		if t == nil || *t == "" {
			return
		}
		if _, dup := seen[*t]; dup {
			return
		}
		seen[*t] = struct{}{}
		tokens = append(tokens, *t)
	}

	add(organiser)
	for _, t := range players {
		add(t)
	}
	return tokens
}
