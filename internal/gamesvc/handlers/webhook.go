package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	log "github.com/sirupsen/logrus"
)

type webhookResponse struct {
	Received bool `json:"received"`
}

// StripeWebhook returns 400 only for deliveries that can never succeed and
// 500 for failures a redelivery may fix.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		webhookError(w, fmt.Errorf("reading body: %w", err))
		return
	}

	res, err := h.webhook.HandleEvent(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil:
		log.WithFields(log.Fields{
			"event_id":   res.EventID,
			"event_type": res.EventType,
			"ignored":    res.Ignored,
			"enrolled":   res.Enrolled,
			"filled":     res.Filled,
		}).Info("webhook processed")
	case errors.Is(err, models.ErrAuthenticity), errors.Is(err, models.ErrMalformedEvent):
		log.WithError(err).Warn("webhook rejected")
		webhookError(w, err)
		return
	case errors.Is(err, models.ErrNotFound):
		log.WithError(err).Warn("webhook references unknown game or profile, acknowledging")
	default:
		log.WithError(err).Error("webhook processing failed")
		h.CreateError(w, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	h.CreateResponse(w, http.StatusOK, webhookResponse{Received: true})
}

func webhookError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, "Webhook Error: %s", err)
}
