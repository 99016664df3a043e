package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/kicklink/kicklink-services/internal/gamesvc/payment"
	log "github.com/sirupsen/logrus"
)

type EventVerifier interface {
	ConstructEvent(payload []byte, signature string) (*payment.Event, error)
}

type Enroller interface {
	Enroll(ctx context.Context, e models.Enrollment) (bool, error)
}

type CapacityMarker interface {
	MarkFullIfCapacityReached(ctx context.Context, gameID uuid.UUID) (bool, error)
}

type FillNotifier interface {
	NotifyGameFilled(ctx context.Context, gameID uuid.UUID) error
}

// WebhookResult describes what processing a verified event did.
type WebhookResult struct {
	EventID   string
	EventType string
	Ignored   bool // not a checkout completion
	GameID    uuid.UUID
	UserID    uuid.UUID
	Enrolled  bool // false on a duplicate delivery
	Filled    bool // this event's enrollment performed OPEN -> FULL
	Notified  bool
}

type WebhookService struct {
	verifier EventVerifier
	enroller Enroller
	capacity CapacityMarker
	notifier FillNotifier
	timeout  time.Duration
}

func NewWebhookService(verifier EventVerifier, enroller Enroller, capacity CapacityMarker, notifier FillNotifier, timeout time.Duration) *WebhookService {
	return &WebhookService{
		verifier: verifier,
		enroller: enroller,
		capacity: capacity,
		notifier: notifier,
		timeout:  timeout,
	}
}

// HandleEvent verifies and processes one gateway delivery. Returned errors
// wrap models.ErrAuthenticity or models.ErrMalformedEvent for payloads that
// must be rejected, models.ErrNotFound for an authentic event about a game
// or profile that does not exist, and anything else for transient failures
// the gateway should retry.
func (s *WebhookService) HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	ev, err := s.verifier.ConstructEvent(payload, signature)
	if err != nil {
		return nil, err
	}

	res := &WebhookResult{EventID: ev.ID, EventType: ev.Type}
	if ev.Type != payment.EventCheckoutCompleted {
		res.Ignored = true
		return res, nil
	}

	gameID, userID, err := checkoutMetadata(ev)
	if err != nil {
		return res, err
	}
	res.GameID, res.UserID = gameID, userID

	logger := log.WithFields(log.Fields{
		"event_id": ev.ID,
		"game_id":  gameID,
		"user_id":  userID,
	})

	enrollCtx, cancel := context.WithTimeout(ctx, s.timeout)
	res.Enrolled, err = s.enroller.Enroll(enrollCtx, models.Enrollment{
		GameID:     gameID,
		UserID:     userID,
		PaymentRef: ev.Checkout.SessionID,
	})
	cancel()
	if err != nil {
		return res, fmt.Errorf("enroll: %w", err)
	}
	if !res.Enrolled {
		logger.Info("duplicate delivery, enrollment already exists")
	}

	// Runs on duplicates too: a previous delivery may have been cut off
	// between the insert and this update.
	markCtx, cancel := context.WithTimeout(ctx, s.timeout)
	res.Filled, err = s.capacity.MarkFullIfCapacityReached(markCtx, gameID)
	cancel()
	if err != nil {
		return res, fmt.Errorf("capacity check: %w", err)
	}
	if !res.Filled {
		return res, nil
	}

	logger.Info("game reached capacity, invoking notifier")
	// bounded by the notifier client's own timeout
	if err := s.notifier.NotifyGameFilled(ctx, gameID); err != nil {
		// the game is already FULL; the sweeper retries the fan-out
		logger.WithError(err).Error("notifier call failed")
		return res, nil
	}

	res.Notified = true
	return res, nil
}

func checkoutMetadata(ev *payment.Event) (uuid.UUID, uuid.UUID, error) {
	if ev.Checkout == nil || ev.Checkout.Metadata == nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: event %s has no metadata", models.ErrMalformedEvent, ev.ID)
	}

	var errs []error
	gameID, err := parseMetaID(ev.Checkout.Metadata, payment.MetaGameID)
	if err != nil {
		errs = append(errs, err)
	}
	userID, err := parseMetaID(ev.Checkout.Metadata, payment.MetaUserID)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: event %s: %v", models.ErrMalformedEvent, ev.ID, errors.Join(errs...))
	}

	return gameID, userID, nil
}

func parseMetaID(metadata map[string]string, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(metadata[key])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %v", key, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%s: nil uuid", key)
	}
	return id, nil
}
