package broker

import (
	"encoding/json"
	"fmt"

	"github.com/kicklink/kicklink-services/internal/comm"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	"github.com/nats-io/nats.go"
)

type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

// PublishChatMessage hands a stored message to socketsvc, which writes it to
// the sockets watching the chat.
func (b *Broker) PublishChatMessage(m *models.Message) error {
	payload, err := json.Marshal(comm.ChatMessageEvent{
		ID:       m.ID,
		ChatID:   m.ChatID,
		SenderID: m.SenderID,
		Body:     m.Body,
		SentAt:   m.SentAt,
	})
	if err != nil {
		return fmt.Errorf("marshal chat message event: %w", err)
	}

	if err := b.Conn.Publish(comm.SubjectChatMessage, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", comm.SubjectChatMessage, err)
	}
	return nil
}
