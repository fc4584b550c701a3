package domain

import "errors"

// Domain errors
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameEnded          = errors.New("game has ended")
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
	ErrTooManyPlayers     = errors.New("too many players to start")
	ErrInvalidPhase       = errors.New("invalid action for current phase")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInvalidTarget      = errors.New("invalid vote target")
	ErrAlreadyVoted       = errors.New("already voted this round")
	ErrAlreadyResolved    = errors.New("vote already resolved")
	ErrNotHost            = errors.New("only host can perform this action")
	ErrUsernameTaken      = errors.New("username already taken in this room")
	ErrEmptyUsername      = errors.New("username cannot be empty")
	ErrNoImpostor         = errors.New("no impostor in the current round")
	ErrNoWordPairs        = errors.New("no word pairs available")
	ErrAlreadyJoined      = errors.New("connection already joined this room")
)
