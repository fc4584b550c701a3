package app

import (
	"time"

	"impostor/internal/domain"
)

// EventType identifies a room broadcast
type EventType string

const (
	EventRoomUpdated        EventType = "room-updated"
	EventGameStarted        EventType = "game-started"
	EventWordAssigned       EventType = "word-assigned"
	EventVoteStarted        EventType = "vote-started"
	EventVoteRegistered     EventType = "vote-registered"
	EventVoteEnded          EventType = "vote-ended"
	EventRoundAborted       EventType = "round-aborted"
	EventNewRoundStarted    EventType = "new-round-started"
	EventPlayerDisconnected EventType = "player-disconnected"
)

// Event is a message for the players of a room.
// When Recipient is set only that connection may receive it.
type Event struct {
	Type      EventType
	RoomID    string
	Recipient string
	Payload   interface{}
}

// Notifier delivers room events. A session calls it outside its lock, one
// batch at a time, in the order its operations took the lock. Events of
// different rooms are not ordered with respect to each other.
type Notifier interface {
	Notify(events ...Event)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(events ...Event)

// Notify calls f
func (f NotifierFunc) Notify(events ...Event) { f(events...) }

var nopNotifier = NotifierFunc(func(...Event) {})

// RoundStartedPayload announces a freshly dealt round. Words travel
// separately in WordAssignedPayload.
type RoundStartedPayload struct {
	Phase        domain.Phase `json:"phase"`
	CurrentRound int          `json:"currentRound"`
	FirstSpeaker string       `json:"firstSpeaker"`
}

// WordAssignedPayload carries one player's word, to that player only
type WordAssignedPayload struct {
	Word string `json:"word"`
}

// VoteStartedPayload announces an open vote
type VoteStartedPayload struct {
	Initiator   domain.PlayerRef `json:"initiator"`
	Duration    int              `json:"duration"` // seconds
	VoteEndTime time.Time        `json:"voteEndTime"`
}

// RoundAbortedPayload tells players a round ended without scoring
type RoundAbortedPayload struct {
	Round  int    `json:"round"`
	Reason string `json:"reason"`
}

// PlayerDisconnectedPayload announces a departure
type PlayerDisconnectedPayload struct {
	Username string            `json:"username"`
	WasHost  bool              `json:"wasHost"`
	NewHost  *domain.PlayerRef `json:"newHost,omitempty"`
}
