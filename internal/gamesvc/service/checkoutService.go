package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/kicklink/kicklink-services/internal/gamesvc/payment"
	log "github.com/sirupsen/logrus"
)

type GameReader interface {
	GetGameByID(ctx context.Context, gameID uuid.UUID) (*models.Game, error)
}

type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error)
}

// CheckoutService prices a game and opens a gateway session for it. It never
// writes to the data store: enrollment waits for the confirmed payment.
type CheckoutService struct {
	games     GameReader
	gateway   CheckoutGateway
	clientURL url.URL
	currency  string
	timeout   time.Duration
}

func NewCheckoutService(games GameReader, gateway CheckoutGateway, clientURL url.URL, currency string, timeout time.Duration) *CheckoutService {
	return &CheckoutService{
		games:     games,
		gateway:   gateway,
		clientURL: clientURL,
		currency:  currency,
		timeout:   timeout,
	}
}

// CreateCheckoutSession returns the redirect URL of a new session for userID
// joining gameID.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, gameID, userID uuid.UUID) (string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	game, err := s.games.GetGameByID(lookupCtx, gameID)
	if err != nil {
		return "", err
	}
	if game.Status != models.GameStatusOpen {
		return "", fmt.Errorf("game %s is %s: %w", gameID, game.Status, models.ErrGameNotOpen)
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		GameID:      game.ID,
		UserID:      userID,
		Title:       game.Title,
		AmountCents: game.FeeCents,
		Currency:    s.currency,
		SuccessURL:  s.clientURL.JoinPath("games", game.ID.String(), "success").String(),
		CancelURL:   s.clientURL.JoinPath("games", game.ID.String()).String(),
	})
	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"game_id":    game.ID,
		"user_id":    userID,
		"session_id": sess.ID,
	}).Info("checkout session created")
	return sess.URL, nil
}
