package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"impostor/internal/app"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection
type Client struct {
	id       string
	conn     *websocket.Conn
	hub      *Hub
	registry *app.Registry
	limiter  *rate.Limiter
	send     chan []byte
	done     chan struct{}
	logger   *zap.SugaredLogger

	mu     sync.Mutex
	closed bool
	room   string
}

// NewClient creates a new WebSocket client
func NewClient(id string, conn *websocket.Conn, hub *Hub, registry *app.Registry, limiter *rate.Limiter, logger *zap.SugaredLogger) *Client {
	return &Client{
		id:       id,
		conn:     conn,
		hub:      hub,
		registry: registry,
		limiter:  limiter,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger.With("connId", id),
	}
}

// ID returns the connection id, which is also the player id in the room
func (c *Client) ID() string {
	return c.id
}

// Room returns the room this connection listens to
func (c *Client) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Client) setRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = roomID
}

// Send encodes and queues a message
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	c.sendBytes(data)
	return nil
}

func (c *Client) sendBytes(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped")
	}
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.leaveRoom()
		c.hub.Unregister(c.id)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debugw("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	if !c.limiter.Allow() {
		c.sendError(ErrCodeRateLimited, "Too many messages")
		return
	}

	switch msg.Type {
	case MsgCreateRoom:
		c.handleCreateRoom(msg)
	case MsgJoinRoom:
		c.handleJoinRoom(msg)
	case MsgStartGame:
		c.withRoom(msg, func(s *app.RoomSession) (interface{}, error) {
			return nil, s.StartGame(c.id)
		})
	case MsgInitiateVote:
		c.withRoom(msg, func(s *app.RoomSession) (interface{}, error) {
			return s.InitiateVote(c.id)
		})
	case MsgCastVote:
		c.handleCastVote(msg)
	case MsgStartNextRound:
		c.withRoom(msg, func(s *app.RoomSession) (interface{}, error) {
			return nil, s.StartNextRound(c.id)
		})
	case MsgGetRoomInfo:
		c.withRoom(msg, func(s *app.RoomSession) (interface{}, error) {
			return s.Summary(), nil
		})
	case MsgGetGameState:
		c.withRoom(msg, func(s *app.RoomSession) (interface{}, error) {
			return s.ViewFor(c.id), nil
		})
	case MsgListRooms:
		c.ack(msg.RequestID, c.registry.ListRooms(), nil)
	case MsgPing:
		c.sendPong(msg.RequestID)
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

func (c *Client) handleCreateRoom(msg ClientMessage) {
	var payload CreateRoomPayload
	if !c.decode(msg, &payload) {
		return
	}

	roomID, err := c.registry.CreateRoom(payload.MaxPlayers)
	if err != nil {
		c.ack(msg.RequestID, nil, err)
		return
	}
	c.ack(msg.RequestID, &CreateRoomData{RoomID: roomID}, nil)
}

func (c *Client) handleJoinRoom(msg ClientMessage) {
	var payload JoinRoomPayload
	if !c.decode(msg, &payload) {
		return
	}
	if payload.RoomID == "" {
		c.sendError(ErrCodeInvalidMessage, "Room ID is required")
		return
	}

	if current := c.Room(); current != "" && current != app.NormalizeRoomID(payload.RoomID) {
		c.leaveRoom()
	}

	result, err := c.registry.JoinRoom(payload.RoomID, c.id, payload.Username)
	if err != nil {
		c.ack(msg.RequestID, nil, err)
		return
	}
	if result.PreviousID != "" {
		c.hub.Unsubscribe(result.PreviousID)
	}
	c.hub.Subscribe(c.id, result.Room.ID)
	c.ack(msg.RequestID, result, nil)

	// the join broadcast went out before this connection listened to the room
	if s, err := c.registry.RoomOf(c.id); err == nil {
		c.Send(NewServerMessage(MsgRoomUpdated, s.Summary()))
	}
}

func (c *Client) handleCastVote(msg ClientMessage) {
	var payload CastVotePayload
	if !c.decode(msg, &payload) {
		return
	}
	if payload.TargetID == "" {
		c.sendError(ErrCodeInvalidMessage, "Target ID is required")
		return
	}

	c.withRoom(msg, func(s *app.RoomSession) (interface{}, error) {
		return s.CastVote(c.id, payload.TargetID)
	})
}

// withRoom runs fn against the room this connection plays in and acks the result
func (c *Client) withRoom(msg ClientMessage, fn func(*app.RoomSession) (interface{}, error)) {
	s, err := c.registry.RoomOf(c.id)
	if err != nil {
		c.ack(msg.RequestID, nil, err)
		return
	}
	data, err := fn(s)
	c.ack(msg.RequestID, data, err)
}

// leaveRoom removes the player from its room, keeping it reconnectable
func (c *Client) leaveRoom() {
	if info := c.registry.HandleDisconnect(c.id); info != nil {
		c.logger.Infow("player disconnected", "roomId", info.RoomID, "username", info.Username, "roomEmpty", info.RoomEmpty)
	}
	c.hub.Unsubscribe(c.id)
}

func (c *Client) decode(msg ClientMessage, v interface{}) bool {
	if len(msg.Payload) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return false
	}
	return true
}

// ack answers a request. Failures carry a stable code and a safe message.
func (c *Client) ack(requestID string, data interface{}, err error) {
	payload := &AckPayload{Success: err == nil, Data: data}
	if err != nil {
		payload.Data = nil
		payload.Code, payload.Message = ErrorCode(err)
		if payload.Code == ErrCodeInternalError {
			c.logger.Errorw("request failed", "error", err)
		} else {
			c.logger.Debugw("request rejected", "code", payload.Code, "error", err)
		}
	}

	msg := NewServerMessage(MsgAck, payload)
	msg.RequestID = requestID
	_ = c.Send(msg)
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	msg := NewServerMessage(MsgError, payload)
	_ = c.Send(msg)
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong(requestID string) {
	msg := NewServerMessage(MsgPong, nil)
	msg.RequestID = requestID
	_ = c.Send(msg)
}

func (c *Client) sendConnected() {
	_ = c.Send(NewServerMessage(MsgConnected, &ConnectedPayload{ConnectionID: c.id}))
}
