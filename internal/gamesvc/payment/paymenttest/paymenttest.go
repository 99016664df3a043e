// Package paymenttest builds signed Stripe webhook payloads for tests.
package paymenttest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Sign returns a Stripe-Signature header value for payload.
func Sign(secret string, payload []byte, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// CheckoutCompleted builds a checkout.session.completed event carrying metadata.
func CheckoutCompleted(eventID, sessionID string, metadata map[string]string) []byte {
	return event(eventID, "checkout.session.completed", map[string]any{
		"id":       sessionID,
		"object":   "checkout.session",
		"metadata": metadata,
	})
}

// OtherEvent builds an event of an arbitrary type.
func OtherEvent(eventID, eventType string) []byte {
	return event(eventID, eventType, map[string]any{"id": "obj_" + eventID, "object": "payment_intent"})
}

func event(eventID, eventType string, object map[string]any) []byte {
	b, err := json.Marshal(map[string]any{
		"id":          eventID,
		"object":      "event",
		"type":        eventType,
		"api_version": "2023-10-16",
		"created":     time.Now().Unix(),
		"data":        map[string]any{"object": object},
	})
	if err != nil {
		panic(err)
	}
	return b
}
