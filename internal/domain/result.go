package domain

import "time"

// PlayerRef identifies a player in revealed results
type PlayerRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// RevealedImpostor is the impostor as shown once the vote is over
type RevealedImpostor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Word     string `json:"word"`
}

// ScoreEntry is a scoreboard line
type ScoreEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// RoundResult is broadcast to every player when a vote resolves
type RoundResult struct {
	Round              int              `json:"round"`
	VoteCorrect        bool             `json:"voteCorrect"`
	RealImpostor       RevealedImpostor `json:"realImpostor"`
	DesignatedImpostor *PlayerRef       `json:"designatedImpostor"`
	TeamWord           string           `json:"teamWord"`
	IntruderWord       string           `json:"intruderWord"`
	VoteDetails        []VoteDetail     `json:"voteDetails"`
	PointsChanges      []PointsChange   `json:"pointsChanges"`
	Players            []ScoreEntry     `json:"players"`
	Winner             *ScoreEntry      `json:"winner"`
	Phase              Phase            `json:"phase"`
}

// RoundRecord is the immutable history entry of a finished round
type RoundRecord struct {
	Round              int
	Pair               WordPair
	Impostor           string // username, empty when the round was aborted
	VoteCorrect        bool
	DesignatedImpostor string // username, empty when nobody was designated
	Changes            []PointsChange
	Aborted            bool
	ResolvedAt         time.Time
}

func (r RoundRecord) clone() RoundRecord {
	c := r
	c.Changes = append([]PointsChange(nil), r.Changes...)
	return c
}
