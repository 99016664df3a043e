package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// EventCheckoutCompleted is the only event type that triggers enrollment.
const EventCheckoutCompleted = "checkout.session.completed"

// metadata keys the session is tagged with
const (
	MetaGameID = "gameId"
	MetaUserID = "userId"
)

type CheckoutRequest struct {
	GameID      uuid.UUID
	UserID      uuid.UUID
	Title       string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

type Session struct {
	ID  string
	URL string
}

// Event is a verified gateway event. Checkout is set only for completed
// checkout sessions.
type Event struct {
	ID       string
	Type     string
	Checkout *CompletedCheckout
}

type CompletedCheckout struct {
	SessionID string
	Metadata  map[string]string
}

// Stripe wraps the Stripe SDK client and the webhook signing secret.
type Stripe struct {
	sc            *client.API
	webhookSecret string
}

func NewStripe(secretKey, webhookSecret string, timeout time.Duration) *Stripe {
	backends := stripe.NewBackends(&http.Client{Timeout: timeout})
	return &Stripe{
		sc:            client.New(secretKey, backends),
		webhookSecret: webhookSecret,
	}
}

// CreateCheckoutSession creates a one-line-item payment session tagged with
// the game and user ids.
func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Title),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(MetaGameID, req.GameID.String())
	params.AddMetadata(MetaUserID, req.UserID.String())

	sess, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", models.ErrUpstream, err)
	}

	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

// ConstructEvent verifies the signature header against the webhook secret
// before decoding anything from the payload.
func (s *Stripe) ConstructEvent(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAuthenticity, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}

	if ev.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", models.ErrMalformedEvent, ev.ID)
	}
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("%w: decode checkout session: %v", models.ErrMalformedEvent, err)
	}

	out.Checkout = &CompletedCheckout{SessionID: cs.ID, Metadata: cs.Metadata}
	return out, nil
}
