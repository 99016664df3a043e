package payment

import (
	"testing"
	"time"

	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/kicklink/kicklink-services/internal/gamesvc/payment/paymenttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func TestConstructEventCheckoutCompleted(t *testing.T) {
	s := NewStripe("sk_test_unused", testSecret, time.Second)
	payload := paymenttest.CheckoutCompleted("evt_1", "cs_test_1", map[string]string{
		MetaGameID: "11111111-1111-1111-1111-111111111111",
		MetaUserID: "22222222-2222-2222-2222-222222222222",
	})

	ev, err := s.ConstructEvent(payload, paymenttest.Sign(testSecret, payload, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	require.NotNil(t, ev.Checkout)
	assert.Equal(t, "cs_test_1", ev.Checkout.SessionID)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", ev.Checkout.Metadata[MetaGameID])
}

func TestConstructEventOtherType(t *testing.T) {
	s := NewStripe("sk_test_unused", testSecret, time.Second)
	payload := paymenttest.OtherEvent("evt_2", "payment_intent.created")

	ev, err := s.ConstructEvent(payload, paymenttest.Sign(testSecret, payload, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.created", ev.Type)
	assert.Nil(t, ev.Checkout)
}

func TestConstructEventRejectsBadSignature(t *testing.T) {
	s := NewStripe("sk_test_unused", testSecret, time.Second)
	payload := paymenttest.CheckoutCompleted("evt_3", "cs_test_3", nil)

	_, err := s.ConstructEvent(payload, paymenttest.Sign("whsec_other", payload, time.Now()))
	assert.ErrorIs(t, err, models.ErrAuthenticity)

	_, err = s.ConstructEvent(payload, "")
	assert.ErrorIs(t, err, models.ErrAuthenticity)
}

func TestConstructEventRejectsTamperedPayload(t *testing.T) {
	s := NewStripe("sk_test_unused", testSecret, time.Second)
	payload := paymenttest.CheckoutCompleted("evt_4", "cs_test_4", nil)
	sig := paymenttest.Sign(testSecret, payload, time.Now())

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = ' '
	_, err := s.ConstructEvent(tampered, sig)
	assert.ErrorIs(t, err, models.ErrAuthenticity)
}

func TestConstructEventRejectsStaleTimestamp(t *testing.T) {
	s := NewStripe("sk_test_unused", testSecret, time.Second)
	payload := paymenttest.CheckoutCompleted("evt_5", "cs_test_5", nil)

	_, err := s.ConstructEvent(payload, paymenttest.Sign(testSecret, payload, time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, models.ErrAuthenticity)
}
