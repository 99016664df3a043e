package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kicklink/kicklink-services/internal/comm"
	"github.com/kicklink/kicklink-services/internal/socketsvc/ws"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	upgrader websocket.Upgrader
	ws       *ws.Ws
	port     string
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func NewHandler(s *ws.Ws, port string) *Handler {
	h := &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		ws:   s,
		port: port,
	}
	return h
}

// HandleWebSocket registers the connection under the game named by the
// gameId query parameter, or the chat named by chatId.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	param := "gameId"
	if q.Get(param) == "" && q.Get("chatId") != "" {
		param = "chatId"
	}
	roomID, err := uuid.Parse(q.Get(param))
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "gameId or chatId must be a UUID"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		log.Errorf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	socketId := uuid.New().String()
	h.ws.StoreConnection(socketId, conn)
	h.ws.StoreRoom(socketId, roomID.String())

	log.Infof("New WebSocket connection established: %s watching %s %s", socketId, param, roomID)

	// Handle WebSocket connection
	go h.handleConnection(conn, socketId)
}

func (h *Handler) handleConnection(conn *websocket.Conn, socketId string) {
	// Ensure cleanup happens when connection closes
	defer func() {
		log.Infof("Closing WebSocket connection: %s", socketId)
		h.ws.HandleDisconnect(socketId)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			// Check if it's a normal close or unexpected error
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Errorf("WebSocket unexpected close error for socket %s: %v", socketId, err)
			} else {
				log.Infof("WebSocket connection closed normally for socket: %s", socketId)
			}
			break
		}

		// Parse the message
		message := &comm.WSMessage{}
		if err := json.Unmarshal(raw, &message); err != nil {
			log.Errorf("Failed to unmarshal message from socket %s: %v", socketId, err)
			h.sendErrorToClient(socketId, "Invalid message format")
			continue // Don't break, just skip this message
		}

		log.Debugf("Received message from socket %s: type=%s", socketId, message.Type)
		h.ws.SocketMessage(socketId, message)
	}
}

// sendErrorToClient sends an error message back to the WebSocket client
func (h *Handler) sendErrorToClient(socketId string, errorMsg string) {
	errorResponse := map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	}

	if err := h.ws.Send(socketId, errorResponse); err != nil {
		log.Errorf("Failed to send error message to client: %v", err)
	}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "socket service is running at port " + h.port,
		Code:    http.StatusOK,
	})
}
