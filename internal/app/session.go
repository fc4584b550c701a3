package app

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"impostor/internal/domain"
)

// JoinResult is returned to a player entering a room
type JoinResult struct {
	Player      domain.PlayerView  `json:"player"`
	Room        domain.RoomSummary `json:"room"`
	Reconnected bool               `json:"reconnected"`

	// PreviousID is the connection the player was bound to before a rebind
	PreviousID string `json:"-"`

	restored bool
}

// LeaveResult describes a departure
type LeaveResult struct {
	RoomID    string `json:"roomId"`
	Username  string `json:"username"`
	WasHost   bool   `json:"wasHost"`
	RoomEmpty bool   `json:"roomEmpty"`

	player domain.Player
	round  int
}

// RoomSession wraps a room with concurrency control and the vote deadline.
// Every operation on the room goes through the session lock.
type RoomSession struct {
	room      *domain.Room
	mu        sync.Mutex
	closed    bool
	clock     Clock
	scheduler Scheduler
	notifier  Notifier
	logger    *zap.SugaredLogger

	voteTimer Timer
	voteSeq   uint64 // bumped whenever a pending deadline must become a no-op

	outbox   []Event // queued under mu, in the order operations ran
	flushing bool
}

func newRoomSession(room *domain.Room, clock Clock, scheduler Scheduler, notifier Notifier, logger *zap.SugaredLogger) *RoomSession {
	return &RoomSession{
		room:      room,
		clock:     clock,
		scheduler: scheduler,
		notifier:  notifier,
		logger:    logger.With("roomId", room.ID),
	}
}

// ID returns the room code
func (s *RoomSession) ID() string {
	return s.room.ID
}

// PlayerCount returns the number of players
func (s *RoomSession) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.PlayerCount()
}

// Phase returns the current phase
func (s *RoomSession) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Phase()
}

// IsHost checks if the connection belongs to the host
func (s *RoomSession) IsHost(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.IsHost(connID)
}

// Summary returns the lobby view of the room
func (s *RoomSession) Summary() domain.RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Summary()
}

// ViewFor returns the game state as seen by connID
func (s *RoomSession) ViewFor(connID string) domain.GameView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.ViewFor(connID)
}

// History returns the finished rounds
func (s *RoomSession) History() []domain.RoundRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.History()
}

// Join adds a player, rebinds a player already in the roster under the same
// username, or restores a cached player.
func (s *RoomSession) Join(connID, username string, cached *DisconnectedPlayer) (*JoinResult, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrRoomNotFound
	}

	if _, ok := s.room.FindPlayer(connID); ok {
		s.mu.Unlock()
		return nil, domain.ErrAlreadyJoined
	}

	var (
		player *domain.Player
		result JoinResult
		err    error
	)
	switch {
	case s.room.HasUsername(username):
		for _, p := range s.room.Players() {
			if p.Username == username {
				result.PreviousID = p.ID
				break
			}
		}
		player, err = s.room.Rebind(username, connID)
		result.Reconnected = true
	case cached != nil:
		player, err = s.room.RestorePlayer(connID, cached.Player, cached.Round)
		result.Reconnected = true
		result.restored = true
	default:
		player, err = s.room.AddPlayer(connID, username)
	}
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	result.Player = player.SelfView()
	result.Room = s.room.Summary()
	events := []Event{s.roomUpdated()}
	s.enqueue(events...)
	s.mu.Unlock()

	if result.Reconnected {
		s.logger.Infow("player reconnected", "username", username, "restored", result.restored)
	} else {
		s.logger.Infow("player joined", "username", username)
	}
	s.flush()

	return &result, nil
}

// Leave removes the connection's player. The room closes when it empties.
// A departure that completes the ballot box resolves the vote.
func (s *RoomSession) Leave(connID string) (*LeaveResult, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrRoomNotFound
	}

	wasVoting := s.room.Phase() == domain.PhaseVoting
	player, err := s.room.RemovePlayer(connID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	result := &LeaveResult{
		RoomID:    s.room.ID,
		Username:  player.Username,
		WasHost:   player.IsHost,
		RoomEmpty: s.room.IsEmpty(),
		player:    player.Snapshot(),
		round:     s.room.Round(),
	}

	var events []Event
	if result.RoomEmpty {
		s.closeLocked()
	} else {
		payload := PlayerDisconnectedPayload{Username: player.Username, WasHost: player.IsHost}
		if host, ok := s.room.Host(); ok && player.IsHost {
			payload.NewHost = &domain.PlayerRef{ID: host.ID, Username: host.Username}
		}
		events = append(events, Event{Type: EventPlayerDisconnected, RoomID: s.room.ID, Payload: payload}, s.roomUpdated())
		if wasVoting && s.room.AllVoted() {
			events = append(events, s.resolveLocked("departure")...)
		}
	}
	s.enqueue(events...)
	s.mu.Unlock()

	s.logger.Infow("player left", "username", result.Username, "wasHost", result.WasHost, "roomEmpty", result.RoomEmpty)
	s.flush()

	return result, nil
}

// StartGame deals the first round (host only)
func (s *RoomSession) StartGame(connID string) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return domain.ErrRoomNotFound
	}
	if !s.room.IsHost(connID) {
		s.mu.Unlock()
		return domain.ErrNotHost
	}
	if err := s.room.Start(); err != nil {
		s.mu.Unlock()
		return err
	}

	players := s.room.PlayerCount()
	events := s.roundDealt(EventGameStarted)
	s.enqueue(events...)
	s.mu.Unlock()

	s.logger.Infow("game started", "players", players)
	s.flush()
	return nil
}

// StartNextRound deals a new round after the results (host only)
func (s *RoomSession) StartNextRound(connID string) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return domain.ErrRoomNotFound
	}
	if !s.room.IsHost(connID) {
		s.mu.Unlock()
		return domain.ErrNotHost
	}
	if err := s.room.StartNextRound(); err != nil {
		s.mu.Unlock()
		return err
	}

	round := s.room.Round()
	events := s.roundDealt(EventNewRoundStarted)
	s.enqueue(events...)
	s.mu.Unlock()

	s.logger.Infow("new round started", "round", round)
	s.flush()
	return nil
}

// roundDealt builds the round announcement and one private word per player.
// Caller must hold the lock.
func (s *RoomSession) roundDealt(typ EventType) []Event {
	view := s.room.ViewFor("")
	events := []Event{{
		Type:   typ,
		RoomID: s.room.ID,
		Payload: RoundStartedPayload{
			Phase:        view.Phase,
			CurrentRound: view.CurrentRound,
			FirstSpeaker: view.FirstSpeaker,
		},
	}}

	for _, p := range s.room.Players() {
		if p.IsImpostor {
			s.logger.Debugw("impostor assigned", "round", view.CurrentRound, "username", p.Username, "word", p.CurrentWord)
		}
		events = append(events, Event{
			Type:      EventWordAssigned,
			RoomID:    s.room.ID,
			Recipient: p.ID,
			Payload:   WordAssignedPayload{Word: p.CurrentWord},
		})
	}

	return append(events, s.roomUpdated())
}

// InitiateVote opens the vote and schedules its deadline
func (s *RoomSession) InitiateVote(connID string) (VoteStartedPayload, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return VoteStartedPayload{}, domain.ErrRoomNotFound
	}

	started, err := s.room.InitiateVote(connID, s.clock.Now())
	if err != nil {
		s.mu.Unlock()
		return VoteStartedPayload{}, err
	}

	s.stopVoteTimer()
	s.voteSeq++
	seq := s.voteSeq
	s.voteTimer = s.scheduler.AfterFunc(started.Duration, func() {
		s.expireVote(seq)
	})

	payload := VoteStartedPayload{
		Initiator:   started.Initiator,
		Duration:    int(started.Duration / time.Second),
		VoteEndTime: started.VoteEndTime,
	}
	events := []Event{{Type: EventVoteStarted, RoomID: s.room.ID, Payload: payload}}
	s.enqueue(events...)
	s.mu.Unlock()

	s.logger.Infow("vote initiated", "initiator", started.Initiator.Username, "endsAt", started.VoteEndTime)
	s.flush()
	return payload, nil
}

// CastVote records a ballot. The last missing ballot resolves the vote
// immediately and cancels the deadline.
func (s *RoomSession) CastVote(connID, targetID string) (domain.VoteProgress, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return domain.VoteProgress{}, domain.ErrRoomNotFound
	}

	progress, err := s.room.CastVote(connID, targetID)
	if err != nil {
		s.mu.Unlock()
		return domain.VoteProgress{}, err
	}

	events := []Event{{Type: EventVoteRegistered, RoomID: s.room.ID, Payload: progress}}
	if progress.AllVoted {
		events = append(events, s.resolveLocked("all voted")...)
	}
	s.enqueue(events...)
	s.mu.Unlock()

	s.logger.Debugw("vote registered", "votes", progress.VotesCount, "players", progress.TotalPlayers)
	s.flush()
	return progress, nil
}

// ResolveVote closes the vote now. Calling it after the vote was already
// resolved, by any trigger, returns domain.ErrAlreadyResolved.
func (s *RoomSession) ResolveVote() (*domain.RoundResult, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrRoomNotFound
	}

	result, err := s.resolve("manual")
	var events []Event
	if err == nil || errors.Is(err, domain.ErrNoImpostor) {
		events = s.resolutionEvents(result, err)
	}
	s.enqueue(events...)
	s.mu.Unlock()

	s.flush()
	return result, err
}

// expireVote is the deadline callback. It is a no-op once the vote it was
// scheduled for has been resolved or the room closed.
func (s *RoomSession) expireVote(seq uint64) {
	s.mu.Lock()

	if s.closed || seq != s.voteSeq {
		s.mu.Unlock()
		return
	}
	s.voteTimer = nil

	events := s.resolveLocked("deadline")
	s.enqueue(events...)
	s.mu.Unlock()

	s.flush()
}

// resolveLocked resolves and returns the events to broadcast.
// Caller must hold the lock.
func (s *RoomSession) resolveLocked(trigger string) []Event {
	result, err := s.resolve(trigger)
	if err != nil && !errors.Is(err, domain.ErrNoImpostor) {
		return nil
	}
	return s.resolutionEvents(result, err)
}

// resolve is the single path every trigger goes through. It cancels the
// pending deadline before touching the room. Caller must hold the lock.
func (s *RoomSession) resolve(trigger string) (*domain.RoundResult, error) {
	s.stopVoteTimer()
	s.voteSeq++

	result, err := s.room.ResolveVote(s.clock.Now())
	switch {
	case errors.Is(err, domain.ErrAlreadyResolved):
		s.logger.Debugw("vote already resolved", "trigger", trigger)
	case errors.Is(err, domain.ErrNoImpostor):
		s.logger.Errorw("round aborted", "trigger", trigger, "error", err)
	case err != nil:
		s.logger.Debugw("vote not resolved", "trigger", trigger, "error", err)
	default:
		s.logger.Infow("vote resolved",
			"trigger", trigger,
			"round", result.Round,
			"voteCorrect", result.VoteCorrect,
		)
		if result.Winner != nil {
			s.logger.Infow("game won", "winner", result.Winner.Username, "score", result.Winner.Score)
		}
	}
	return result, err
}

func (s *RoomSession) resolutionEvents(result *domain.RoundResult, err error) []Event {
	if err != nil {
		return []Event{
			{
				Type:    EventRoundAborted,
				RoomID:  s.room.ID,
				Payload: RoundAbortedPayload{Round: s.room.Round(), Reason: "the impostor left the room"},
			},
			s.roomUpdated(),
		}
	}
	return []Event{
		{Type: EventVoteEnded, RoomID: s.room.ID, Payload: result},
		s.roomUpdated(),
	}
}

// enqueue queues events for delivery. Caller must hold the lock.
func (s *RoomSession) enqueue(events ...Event) {
	s.outbox = append(s.outbox, events...)
}

// flush delivers queued events outside the lock. Only one goroutine drains
// the outbox at a time, so events reach the notifier in the order the
// operations that produced them took the lock.
func (s *RoomSession) flush() {
	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		return
	}
	s.flushing = true
	for len(s.outbox) > 0 {
		batch := s.outbox
		s.outbox = nil
		s.mu.Unlock()
		s.notifier.Notify(batch...)
		s.mu.Lock()
	}
	s.flushing = false
	s.mu.Unlock()
}

func (s *RoomSession) roomUpdated() Event {
	return Event{Type: EventRoomUpdated, RoomID: s.room.ID, Payload: s.room.Summary()}
}

// Close cancels the pending deadline. Later operations fail with
// domain.ErrRoomNotFound.
func (s *RoomSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *RoomSession) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.stopVoteTimer()
	s.voteSeq++
}

// Closed reports whether the session was closed
func (s *RoomSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *RoomSession) stopVoteTimer() {
	if s.voteTimer != nil {
		s.voteTimer.Stop()
		s.voteTimer = nil
	}
}
