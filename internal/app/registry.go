package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"impostor/internal/domain"
)

const (
	// DefaultReconnectGrace is how long a disconnected player can come back
	DefaultReconnectGrace = 2 * time.Minute

	// DefaultCleanupInterval is how often expired disconnects are swept
	DefaultCleanupInterval = 30 * time.Second

	// DefaultDisconnectCacheSize bounds the reconnection cache
	DefaultDisconnectCacheSize = 4096
)

// Options configures a Registry
type Options struct {
	Settings            domain.RoomSettings
	WordPairs           []domain.WordPair
	ReconnectGrace      time.Duration
	CleanupInterval     time.Duration
	DisconnectCacheSize int
	RoomCodeLength      int
}

// DefaultOptions returns the default registry options
func DefaultOptions() Options {
	return Options{
		Settings:            domain.DefaultRoomSettings(),
		WordPairs:           DefaultWordPairs,
		ReconnectGrace:      DefaultReconnectGrace,
		CleanupInterval:     DefaultCleanupInterval,
		DisconnectCacheSize: DefaultDisconnectCacheSize,
		RoomCodeLength:      DefaultRoomCodeLength,
	}
}

// Option overrides a registry collaborator
type Option func(*Registry)

// WithClock sets the clock used for vote deadlines and the grace window
func WithClock(c Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithScheduler sets the scheduler used for vote deadlines
func WithScheduler(s Scheduler) Option {
	return func(r *Registry) { r.scheduler = s }
}

// WithRandomizer sets the source of pair, impostor and speaker picks
func WithRandomizer(rnd domain.Randomizer) Option {
	return func(r *Registry) { r.rnd = rnd }
}

// WithCodeGenerator sets the room code generator
func WithCodeGenerator(g CodeGenerator) Option {
	return func(r *Registry) { r.codes = g }
}

// WithNotifier sets the receiver of room events
func WithNotifier(n Notifier) Option {
	return func(r *Registry) { r.notifier = n }
}

// Stats is a point-in-time count of the registry
type Stats struct {
	Rooms         int `json:"rooms"`
	Players       int `json:"players"`
	Disconnected  int `json:"disconnected"`
	RoomsInGame   int `json:"roomsInGame"`
	RoomsFinished int `json:"roomsFinished"`
}

// Registry owns the room directory and the reconnection cache
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*RoomSession
	conns map[string]string // connection id -> room id

	cache *DisconnectCache
	opts  Options

	clock     Clock
	scheduler Scheduler
	rnd       domain.Randomizer
	codes     CodeGenerator
	notifier  Notifier
	logger    *zap.SugaredLogger
}

// NewRegistry creates an empty registry
func NewRegistry(opts Options, logger *zap.SugaredLogger, options ...Option) (*Registry, error) {
	if len(opts.WordPairs) == 0 {
		return nil, domain.ErrNoWordPairs
	}
	if opts.ReconnectGrace <= 0 {
		opts.ReconnectGrace = DefaultReconnectGrace
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}
	if opts.DisconnectCacheSize <= 0 {
		opts.DisconnectCacheSize = DefaultDisconnectCacheSize
	}

	cache, err := NewDisconnectCache(opts.DisconnectCacheSize)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		rooms:     make(map[string]*RoomSession),
		conns:     make(map[string]string),
		cache:     cache,
		opts:      opts,
		clock:     SystemClock,
		scheduler: TimeScheduler,
		rnd:       FastRandomizer{},
		codes:     NewRoomCodeGenerator(opts.RoomCodeLength),
		notifier:  nopNotifier,
		logger:    logger.Named("registry"),
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

// CreateRoom registers a new room and returns its code. maxPlayers <= 0
// uses the configured capacity; larger values are capped to it.
func (r *Registry) CreateRoom(maxPlayers int) (string, error) {
	settings := r.opts.Settings
	if maxPlayers > 0 && maxPlayers < settings.MaxPlayers {
		settings.MaxPlayers = maxPlayers
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var roomID string
	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		code, err := r.codes()
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		if _, exists := r.rooms[code]; !exists {
			roomID = code
			break
		}
	}
	if roomID == "" {
		return "", fmt.Errorf("failed to generate unique room code")
	}

	room := domain.NewRoom(roomID, settings, r.opts.WordPairs, r.rnd, r.clock.Now())
	r.rooms[roomID] = newRoomSession(room, r.clock, r.scheduler, r.notifier, r.logger.Named("room"))

	r.logger.Infow("room created", "roomId", roomID, "maxPlayers", room.Settings().MaxPlayers)
	return roomID, nil
}

// Room returns the session for roomID
func (r *Registry) Room(roomID string) (*RoomSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.rooms[NormalizeRoomID(roomID)]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return s, nil
}

// RoomOf returns the session the connection belongs to
func (r *Registry) RoomOf(connID string) (*RoomSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.conns[connID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	s, ok := r.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return s, nil
}

// JoinRoom routes a player into a room. A username already in the roster
// rebinds that player to connID; a username cached within the grace window
// is restored with its score; anything else is a new player.
func (r *Registry) JoinRoom(roomID, connID, username string) (*JoinResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrEmptyUsername
	}
	roomID = NormalizeRoomID(roomID)

	s, err := r.Room(roomID)
	if err != nil {
		return nil, err
	}

	var cached *DisconnectedPlayer
	if entry, ok := r.cache.Get(roomID, username); ok {
		if r.clock.Now().Sub(entry.DisconnectedAt) <= r.opts.ReconnectGrace {
			cached = &entry
		}
	}

	result, err := s.Join(connID, username, cached)
	if err != nil {
		return nil, err
	}
	if result.Reconnected {
		r.cache.Remove(roomID, username)
	}

	r.mu.Lock()
	if result.PreviousID != "" {
		delete(r.conns, result.PreviousID)
	}
	r.conns[connID] = roomID
	r.mu.Unlock()

	return result, nil
}

// HandleDisconnect removes the connection's player from its room, caches it
// for reconnection and deletes the room if it is now empty. It returns nil
// when the connection was not in a room.
func (r *Registry) HandleDisconnect(connID string) *LeaveResult {
	r.mu.Lock()
	roomID, ok := r.conns[connID]
	delete(r.conns, connID)
	s := r.rooms[roomID]
	r.mu.Unlock()

	if !ok || s == nil {
		return nil
	}

	result, err := s.Leave(connID)
	if err != nil {
		r.logger.Debugw("disconnect ignored", "connId", connID, "roomId", roomID, "error", err)
		return nil
	}

	r.cache.Put(DisconnectedPlayer{
		RoomID:         roomID,
		Player:         result.player,
		Round:          result.round,
		DisconnectedAt: r.clock.Now(),
	})

	if result.RoomEmpty {
		r.mu.Lock()
		if current, ok := r.rooms[roomID]; ok && current == s {
			delete(r.rooms, roomID)
		}
		r.mu.Unlock()
		r.logger.Infow("room deleted", "roomId", roomID, "reason", "empty")
	}

	return result
}

// CleanupDisconnected evicts cached players whose grace window has passed
func (r *Registry) CleanupDisconnected() int {
	cutoff := r.clock.Now().Add(-r.opts.ReconnectGrace)
	expired := r.cache.Expire(cutoff)
	for _, e := range expired {
		r.logger.Infow("reconnection window expired", "roomId", e.RoomID, "username", e.Player.Username)
	}
	return len(expired)
}

// ListRooms returns the lobby view of every room, ordered by code
func (r *Registry) ListRooms() []domain.RoomSummary {
	r.mu.RLock()
	sessions := make([]*RoomSession, 0, len(r.rooms))
	for _, s := range r.rooms {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	summaries := make([]domain.RoomSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, s.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries
}

// Stats counts rooms and players
func (r *Registry) Stats() Stats {
	stats := Stats{Disconnected: r.cache.Len()}
	for _, summary := range r.ListRooms() {
		stats.Rooms++
		stats.Players += summary.PlayerCount
		switch summary.Phase {
		case domain.PhaseWaiting:
		case domain.PhaseEnded:
			stats.RoomsFinished++
		default:
			stats.RoomsInGame++
		}
	}
	return stats
}

// Run sweeps the reconnection cache until ctx is done
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.CleanupDisconnected()
		}
	}
}

// Close shuts down every room and cancels pending vote deadlines
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.rooms {
		s.Close()
	}
	r.rooms = make(map[string]*RoomSession)
	r.conns = make(map[string]string)
	r.logger.Info("registry closed")
}

// NormalizeRoomID uppercases and trims a user-typed room code
func NormalizeRoomID(roomID string) string {
	return strings.ToUpper(strings.TrimSpace(roomID))
}
