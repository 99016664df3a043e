package broker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

// PublishGameStatus announces a status change for socketsvc to fan out.
func (b *Broker) PublishGameStatus(gameID uuid.UUID, status string) error {
	payload, err := json.Marshal(comm.GameStatusEvent{
		GameID:    gameID,
		Status:    status,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal game status event: %w", err)
	}

	return b.Publish(comm.SubjectGameStatus, payload)
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
