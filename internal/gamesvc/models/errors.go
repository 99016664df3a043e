package models

import "errors"

// Domain errors shared by the stores, services and HTTP handlers. Callers wrap
// them with fmt.Errorf("...: %w") and match with errors.Is.
var (
	// ErrNotFound means the referenced game or profile does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks input that violates a record's schema.
	ErrValidation = errors.New("validation failed")

	// ErrAuthenticity means a webhook signature did not verify.
	ErrAuthenticity = errors.New("webhook signature invalid")

	// ErrMalformedEvent is an authentic event that lacks the metadata we tag
	// sessions with.
	ErrMalformedEvent = errors.New("malformed event")

	// ErrUpstream wraps failures of the data store, the payment gateway, the
	// notifier or the push provider.
	ErrUpstream = errors.New("upstream failure")

	// ErrNotMember is a message sent to a chat the sender does not belong to.
	ErrNotMember = errors.New("not a chat member")

	ErrGameNotOpen   = errors.New("game is not open")
	ErrBelowCapacity = errors.New("game has not reached capacity")
)
