package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kicklink/kicklink-services/internal/comm"
	log "github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

var ErrUnknownSocket = errors.New("unknown socket")

// client serializes writes; gorilla connections allow one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	roomMap sync.Map // to keep track of the watched gameId or chatId with socketId
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "watch":
		s.handleWatch(socketId, message)
	case "ping":
		if err := s.Send(socketId, &comm.WSMessage{Type: "pong"}); err != nil {
			log.Warnf("unable to answer ping on socket %s: %v", socketId, err)
		}
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// handleWatch moves the socket to another game or chat.
func (s *Ws) handleWatch(socketId string, msg *comm.WSMessage) {
	var payload struct {
		GameID string `json:"gameId"`
		ChatID string `json:"chatId"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: invalid_watch_data Malformed watch payload %s", err)
		return
	}

	raw := payload.GameID
	if raw == "" {
		raw = payload.ChatID
	}
	roomID, err := uuid.Parse(raw)
	if err != nil {
		log.Errorf("Invalid watch payload from socket %s: %v", socketId, err)
		return
	}

	s.StoreRoom(socketId, roomID.String())
	log.Infof("socket %s now watching %s", socketId, roomID)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, &client{conn: conn})
}

// Send writes v as JSON to one socket.
func (s *Ws) Send(socketId string, v interface{}) error {
	c, ok := s.connMap.Load(socketId)
	if !ok {
		return ErrUnknownSocket
	}
	return c.(*client).writeJSON(v)
}

func (s *Ws) StoreRoom(socketId string, gameId string) {
	s.roomMap.Store(socketId, gameId)
}

func (s *Ws) GetRoom(socketId string) (string, bool) {
	room, ok := s.roomMap.Load(socketId)
	if !ok {
		return "", false
	}
	return room.(string), true
}

func (s *Ws) GetRoomSockets(gameId string) ([]string, bool) {
	var sockets []string
	found := false

	s.roomMap.Range(func(key, value interface{}) bool {
		if value.(string) == gameId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.roomMap.Delete(socketId)
}
