package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MinMessageLength = 1
	MaxMessageLength = 1000
)

// Like is a likes row: from_id swiped right on to_id. (from_id, to_id) is
// unique.
type Like struct {
	FromID    uuid.UUID `json:"fromId"`
	ToID      uuid.UUID `json:"toId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l *Like) Validate() error {
	if l.FromID == uuid.Nil || l.ToID == uuid.Nil {
		return fmt.Errorf("%w: fromId and toId are required", ErrValidation)
	}
	if l.FromID == l.ToID {
		return fmt.Errorf("%w: a profile cannot like itself", ErrValidation)
	}
	return nil
}

// LikeResult reports whether the like was new and, when it completed a
// mutual pair, the direct chat the two profiles share.
type LikeResult struct {
	Created bool  `json:"created"`
	Mutual  bool  `json:"mutual"`
	Chat    *Chat `json:"chat,omitempty"`
}

// Chat represents the chats table. Direct chats are created on a mutual
// like, one per pair of profiles.
type Chat struct {
	ID        uuid.UUID   `json:"id"`
	IsGroup   bool        `json:"isGroup"`
	Members   []uuid.UUID `json:"members,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ChatSummary is a chat listed for one member with its latest message.
type ChatSummary struct {
	Chat
	LastMessage *Message `json:"lastMessage,omitempty"`
}

// Message represents the messages table.
type Message struct {
	ID       uuid.UUID `json:"id"`
	ChatID   uuid.UUID `json:"chatId"`
	SenderID uuid.UUID `json:"senderId"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sentAt"`
}

func (m *Message) Validate() error {
	if m.ChatID == uuid.Nil || m.SenderID == uuid.Nil {
		return fmt.Errorf("%w: chatId and senderId are required", ErrValidation)
	}
	return lengthBetween("body", m.Body, MinMessageLength, MaxMessageLength)
}
