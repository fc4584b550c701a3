package domain

// DefaultWinningScore is the score a player needs to win the game
const DefaultWinningScore = 10

// Player represents a participant in a room.
//
// ID is the connection identifier and changes when the player reconnects;
// Username is the stable identity within a room.
type Player struct {
	ID          string
	Username    string
	IsHost      bool
	Score       int
	CurrentWord string
	IsImpostor  bool

	joinSeq int // position in the room's join order, kept across reconnections
}

// NewPlayer creates a new player with the given connection ID and username
func NewPlayer(id, username string) *Player {
	return &Player{
		ID:       id,
		Username: username,
	}
}

// ResetForNewRound clears the round-scoped secrets
func (p *Player) ResetForNewRound() {
	p.CurrentWord = ""
	p.IsImpostor = false
}

// AddPoints applies a signed delta to the score. Scores are not clamped.
func (p *Player) AddPoints(delta int) {
	p.Score += delta
}

// HasWon reports whether the score reached the threshold
func (p *Player) HasWon(threshold int) bool {
	return p.Score >= threshold
}

// PlayerView is the serializable form of a player.
// CurrentWord is only set when the view is built for the owning player.
type PlayerView struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	IsHost      bool    `json:"isHost"`
	Score       int     `json:"score"`
	CurrentWord *string `json:"currentWord"`
}

// PeerView is what every other recipient sees: the word is always null
func (p *Player) PeerView() PlayerView {
	return PlayerView{
		ID:       p.ID,
		Username: p.Username,
		IsHost:   p.IsHost,
		Score:    p.Score,
	}
}

// SelfView is what the owning player sees
func (p *Player) SelfView() PlayerView {
	v := p.PeerView()
	if p.CurrentWord != "" {
		word := p.CurrentWord
		v.CurrentWord = &word
	}
	return v
}

// ViewFor returns the self view when recipientID owns this player and
// the peer view otherwise.
func (p *Player) ViewFor(recipientID string) PlayerView {
	if recipientID != "" && recipientID == p.ID {
		return p.SelfView()
	}
	return p.PeerView()
}

// Snapshot returns a detached copy of the player
func (p *Player) Snapshot() Player {
	return *p
}
