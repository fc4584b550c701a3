package ws

import (
	"encoding/json"
	"errors"
	"time"

	"impostor/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgCreateRoom     MessageType = "create-room"
	MsgJoinRoom       MessageType = "join-room"
	MsgStartGame      MessageType = "start-game"
	MsgInitiateVote   MessageType = "initiate-vote"
	MsgCastVote       MessageType = "cast-vote"
	MsgStartNextRound MessageType = "start-next-round"
	MsgGetRoomInfo    MessageType = "get-room-info"
	MsgGetGameState   MessageType = "get-game-state"
	MsgListRooms      MessageType = "list-rooms"
	MsgPing           MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected          MessageType = "connected"
	MsgAck                MessageType = "ack"
	MsgError              MessageType = "error"
	MsgPong               MessageType = "pong"
	MsgRoomUpdated        MessageType = "room-updated"
	MsgGameStarted        MessageType = "game-started"
	MsgWordAssigned       MessageType = "word-assigned"
	MsgVoteStarted        MessageType = "vote-started"
	MsgVoteRegistered     MessageType = "vote-registered"
	MsgVoteEnded          MessageType = "vote-ended"
	MsgRoundAborted       MessageType = "round-aborted"
	MsgNewRoundStarted    MessageType = "new-round-started"
	MsgPlayerDisconnected MessageType = "player-disconnected"
)

// Error codes
const (
	ErrCodeInvalidMessage   = "INVALID_MESSAGE"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeRoomNotFound     = "ROOM_NOT_FOUND"
	ErrCodeRoomFull         = "ROOM_FULL"
	ErrCodeGameStarted      = "GAME_ALREADY_STARTED"
	ErrCodeGameEnded        = "GAME_ENDED"
	ErrCodeNotEnoughPlayers = "NOT_ENOUGH_PLAYERS"
	ErrCodeTooManyPlayers   = "TOO_MANY_PLAYERS"
	ErrCodeInvalidPhase     = "INVALID_PHASE"
	ErrCodeNotInRoom        = "NOT_IN_ROOM"
	ErrCodeInvalidTarget    = "INVALID_TARGET"
	ErrCodeAlreadyVoted     = "ALREADY_VOTED"
	ErrCodeAlreadyResolved  = "ALREADY_RESOLVED"
	ErrCodeNotHost          = "NOT_HOST"
	ErrCodeUsernameTaken    = "USERNAME_TAKEN"
	ErrCodeInvalidUsername  = "INVALID_USERNAME"
	ErrCodeAlreadyJoined    = "ALREADY_JOINED"
	ErrCodeRoundAborted     = "ROUND_ABORTED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

var errorCodes = []struct {
	err     error
	code    string
	message string
}{
	{domain.ErrRoomNotFound, ErrCodeRoomNotFound, "Room not found"},
	{domain.ErrRoomFull, ErrCodeRoomFull, "Room is full"},
	{domain.ErrGameAlreadyStarted, ErrCodeGameStarted, "The game has already started"},
	{domain.ErrGameEnded, ErrCodeGameEnded, "The game is over"},
	{domain.ErrNotEnoughPlayers, ErrCodeNotEnoughPlayers, "At least 3 players are needed"},
	{domain.ErrTooManyPlayers, ErrCodeTooManyPlayers, "Too many players"},
	{domain.ErrInvalidPhase, ErrCodeInvalidPhase, "Not possible right now"},
	{domain.ErrPlayerNotFound, ErrCodeNotInRoom, "You are not in this room"},
	{domain.ErrInvalidTarget, ErrCodeInvalidTarget, "Unknown vote target"},
	{domain.ErrAlreadyVoted, ErrCodeAlreadyVoted, "You have already voted"},
	{domain.ErrAlreadyResolved, ErrCodeAlreadyResolved, "The vote is already over"},
	{domain.ErrNotHost, ErrCodeNotHost, "Only the host can do this"},
	{domain.ErrUsernameTaken, ErrCodeUsernameTaken, "Username already taken"},
	{domain.ErrEmptyUsername, ErrCodeInvalidUsername, "Username is required"},
	{domain.ErrAlreadyJoined, ErrCodeAlreadyJoined, "Already in this room"},
	{domain.ErrNoImpostor, ErrCodeRoundAborted, "The round was cancelled"},
}

// ErrorCode maps err to a stable code and a message safe to show to players.
// Unknown errors never leak their text.
func ErrorCode(err error) (code, message string) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code, e.message
		}
	}
	return ErrCodeInternalError, "Internal server error"
}

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type      MessageType     `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"requestId,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// CreateRoomPayload is the payload for create-room
type CreateRoomPayload struct {
	MaxPlayers int `json:"maxPlayers"`
}

// JoinRoomPayload is the payload for join-room
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// CastVotePayload is the payload for cast-vote
type CastVotePayload struct {
	TargetID string `json:"targetId"`
}

// Server message payloads

// AckPayload answers every request that carried a type the server knows
type AckPayload struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorPayload is the payload for error messages
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateRoomData is returned on create-room
type CreateRoomData struct {
	RoomID string `json:"roomId"`
}

// ConnectedPayload greets a new connection with its id
type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
}
