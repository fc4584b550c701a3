package app

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"impostor/internal/domain"
)

// DisconnectedPlayer is what is kept of a player after their connection drops
type DisconnectedPlayer struct {
	RoomID         string
	Player         domain.Player
	Round          int // round in progress when the player left
	DisconnectedAt time.Time
}

type cacheKey struct {
	roomID   string
	username string
}

// DisconnectCache holds recently disconnected players keyed by room and
// username. It is bounded: under pressure the ARC policy evicts entries
// before their grace window ends.
type DisconnectCache struct {
	cache *lru.ARCCache
}

// NewDisconnectCache creates a cache holding at most size players
func NewDisconnectCache(size int) (*DisconnectCache, error) {
	c, err := lru.NewARC(size)
	if err != nil {
		return nil, fmt.Errorf("lru new instance of lru arc cache: %w", err)
	}
	return &DisconnectCache{cache: c}, nil
}

// Put stores or overwrites the entry for the player's room and username
func (c *DisconnectCache) Put(entry DisconnectedPlayer) {
	c.cache.Add(cacheKey{entry.RoomID, entry.Player.Username}, entry)
}

// Get returns the entry for username in roomID
func (c *DisconnectCache) Get(roomID, username string) (DisconnectedPlayer, bool) {
	v, ok := c.cache.Get(cacheKey{roomID, username})
	if !ok {
		return DisconnectedPlayer{}, false
	}
	return v.(DisconnectedPlayer), true
}

// Remove drops the entry for username in roomID
func (c *DisconnectCache) Remove(roomID, username string) {
	c.cache.Remove(cacheKey{roomID, username})
}

// Len returns the number of cached players
func (c *DisconnectCache) Len() int {
	return c.cache.Len()
}

// Expire removes and returns every entry that disconnected before cutoff
func (c *DisconnectCache) Expire(cutoff time.Time) []DisconnectedPlayer {
	var expired []DisconnectedPlayer
	for _, key := range c.cache.Keys() {
		v, ok := c.cache.Peek(key)
		if !ok {
			continue
		}
		entry := v.(DisconnectedPlayer)
		if entry.DisconnectedAt.Before(cutoff) {
			c.cache.Remove(key)
			expired = append(expired, entry)
		}
	}
	return expired
}
