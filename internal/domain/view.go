package domain

import "time"

// RoomSummary is the lobby-level view of a room. It never carries words.
type RoomSummary struct {
	ID          string       `json:"id"`
	PlayerCount int          `json:"playerCount"`
	MaxPlayers  int          `json:"maxPlayers"`
	Started     bool         `json:"started"`
	Phase       Phase        `json:"phase"`
	Players     []PlayerView `json:"players"`
	CanStart    bool         `json:"canStart"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// GameView is the state of a room as seen by one recipient
type GameView struct {
	ID           string       `json:"id"`
	Started      bool         `json:"started"`
	Phase        Phase        `json:"phase"`
	CurrentRound int          `json:"currentRound"`
	FirstSpeaker string       `json:"firstSpeaker,omitempty"`
	VoteEndTime  *time.Time   `json:"voteEndTime,omitempty"`
	Initiator    string       `json:"initiator,omitempty"`
	VotesCount   int          `json:"votesCount"`
	TotalPlayers int          `json:"totalPlayers"`
	HasVoted     bool         `json:"hasVoted"`
	Word         *string      `json:"word"`
	Players      []PlayerView `json:"players"`
	Winner       *ScoreEntry  `json:"winner,omitempty"`
}

// Summary returns the lobby-level view of the room
func (r *Room) Summary() RoomSummary {
	players := make([]PlayerView, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p.PeerView())
	}

	return RoomSummary{
		ID:          r.ID,
		PlayerCount: len(r.players),
		MaxPlayers:  r.settings.MaxPlayers,
		Started:     r.started,
		Phase:       r.phase,
		Players:     players,
		CanStart:    r.CanStart(),
		CreatedAt:   r.CreatedAt,
	}
}

// ViewFor builds the game state for recipientID. Only the recipient's own
// word is included; nobody's impostor flag is.
func (r *Room) ViewFor(recipientID string) GameView {
	view := GameView{
		ID:           r.ID,
		Started:      r.started,
		Phase:        r.phase,
		CurrentRound: r.round,
		TotalPlayers: len(r.players),
		Players:      make([]PlayerView, 0, len(r.players)),
	}

	for _, p := range r.players {
		view.Players = append(view.Players, p.ViewFor(recipientID))
	}

	if speaker, ok := r.findByUsername(r.firstSpeaker); ok && r.started {
		view.FirstSpeaker = speaker.ID
	}

	recipient, isPlayer := r.FindPlayer(recipientID)
	if isPlayer {
		view.Word = recipient.SelfView().CurrentWord
	}

	if r.phase == PhaseVoting && r.vote != nil {
		end := r.vote.EndTime
		view.VoteEndTime = &end
		view.VotesCount = r.vote.Count()
		if initiator, ok := r.findByUsername(r.vote.Initiator); ok {
			view.Initiator = initiator.ID
		}
		if isPlayer {
			view.HasVoted = r.vote.HasVoted(recipient.Username)
		}
	}

	if winner, ok := r.Winner(); ok {
		view.Winner = &ScoreEntry{ID: winner.ID, Username: winner.Username, Score: winner.Score}
	}

	return view
}
