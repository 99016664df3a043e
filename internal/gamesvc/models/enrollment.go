package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment represents a player_on_game row: a user who paid to join a game.
// (game_id, user_id) is unique.
type Enrollment struct {
	GameID     uuid.UUID `json:"gameId"`
	UserID     uuid.UUID `json:"userId"`
	PaymentRef string    `json:"paymentRef"` // checkout session id
	CreatedAt  time.Time `json:"createdAt"`
}
