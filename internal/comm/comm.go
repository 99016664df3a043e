package comm

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NATS subjects
const (
	SubjectGameStatus  = "game.status"
	SubjectChatMessage = "chat.message"
)

// ServiceRole is the role claim the notifier requires on the bearer token.
const ServiceRole = "service_role"

// WSMessage is the envelope written to websocket clients.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "game-status"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid,omitempty"`
}

// NotifyRequest is the body of the capacity-fill notifier call.
type NotifyRequest struct {
	GameID string `json:"gameId"`
}

// GameStatusEvent is published whenever a game's status changes.
type GameStatusEvent struct {
	GameID    uuid.UUID `json:"gameId"`
	Status    string    `json:"status"`
	Timestamp int64     `json:"timestamp"` // unix millis
}

// ChatMessageEvent is published for every message stored in a chat.
type ChatMessageEvent struct {
	ID       uuid.UUID `json:"id"`
	ChatID   uuid.UUID `json:"chatId"`
	SenderID uuid.UUID `json:"senderId"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sentAt"`
}
