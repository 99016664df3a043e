package broker

import (
	"encoding/json"
	"fmt"

	"github.com/kicklink/kicklink-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	MessageGameStatus  = "game-status"
	MessageChatMessage = "chat-message"
)

type Broker struct {
	Conn           *nats.Conn
	Send           func(string, interface{}) error
	GetRoomSockets func(string) ([]string, bool)
}

func NewBroker(conn *nats.Conn, fncSend func(string, interface{}) error, fncGetRoomSockets func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:           conn,
		Send:           fncSend,
		GetRoomSockets: fncGetRoomSockets,
	}
}

// Subscribe consumes topic, passing each payload to handle, e.g.
// b.HandleGameStatus for game status events published by the notifier.
func (b *Broker) Subscribe(topic string, handle func([]byte) int) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, func(m *nats.Msg) {
		handle(m.Data)
	})
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// HandleGameStatus forwards one event to every socket watching its game and
// returns how many sockets received it.
func (b *Broker) HandleGameStatus(data []byte) int {
	event := comm.GameStatusEvent{}
	if err := json.Unmarshal(data, &event); err != nil {
		log.Errorf("Error invalid game status event %s", err)
		return 0
	}

	msg, err := statusMessage(event)
	if err != nil {
		log.Errorf("Error %s", err)
		return 0
	}

	sockets, ok := b.GetRoomSockets(event.GameID.String())
	if !ok {
		return 0
	}

	sent := b.sendToAll(sockets, msg)
	log.Debugf("game %s status %s sent to %d sockets", event.GameID, event.Status, sent)
	return sent
}

// HandleChatMessage forwards a stored chat message to every socket watching
// the chat and returns how many sockets received it.
func (b *Broker) HandleChatMessage(data []byte) int {
	event := comm.ChatMessageEvent{}
	if err := json.Unmarshal(data, &event); err != nil {
		log.Errorf("Error invalid chat message event %s", err)
		return 0
	}

	sockets, ok := b.GetRoomSockets(event.ChatID.String())
	if !ok {
		return 0
	}

	sent := b.sendToAll(sockets, &comm.WSMessage{Type: MessageChatMessage, Data: data})
	log.Debugf("chat %s message %s sent to %d sockets", event.ChatID, event.ID, sent)
	return sent
}

func (b *Broker) sendToAll(sockets []string, msg *comm.WSMessage) int {
	sent := 0
	for _, socketId := range sockets {
		if err := b.Send(socketId, msg); err != nil {
			log.Warnf("unable to send %s to socket %s: %v", msg.Type, socketId, err)
			continue
		}
		sent++
	}
	return sent
}

func statusMessage(event comm.GameStatusEvent) (*comm.WSMessage, error) {
	data, err := json.Marshal(map[string]string{
		"gameId": event.GameID.String(),
		"status": event.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal game status: %w", err)
	}
	return &comm.WSMessage{Type: MessageGameStatus, Data: data}, nil
}
