package domain

// Points awarded when a vote resolves
const (
	PointsCorrectVote      = 1
	PointsWrongVote        = -1
	PointsInitiatorCorrect = 2
	PointsInitiatorWrong   = -2
	PointsNoVote           = -1
	PointsInitiatorNoVote  = -2
)

// Reasons attached to each score change
const (
	ReasonInitiatorNoVote  = "initiator who doesn't vote"
	ReasonNoVote           = "didn't vote"
	ReasonInitiatorCorrect = "initiator, impostor caught"
	ReasonInitiatorWrong   = "initiator, impostor missed"
	ReasonCorrectVote      = "voted for the impostor"
	ReasonWrongVote        = "voted for an innocent"
)

// PointsChange is one changelog entry of a resolved vote
type PointsChange struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Points   int    `json:"points"`
	NewScore int    `json:"newScore"`
	Reason   string `json:"reason"`
}

// ballotOutcome describes one player's participation in a vote
type ballotOutcome struct {
	voted         bool
	initiator     bool
	voteCorrect   bool // the designated suspect is the impostor
	votedImpostor bool // this player's own ballot targets the impostor
}

// score applies the scoring rules in order. The initiator's reward depends
// on the collective outcome, everyone else is judged on their own ballot.
func (o ballotOutcome) score() (int, string) {
	switch {
	case !o.voted && o.initiator:
		return PointsInitiatorNoVote, ReasonInitiatorNoVote
	case !o.voted:
		return PointsNoVote, ReasonNoVote
	case o.initiator && o.voteCorrect:
		return PointsInitiatorCorrect, ReasonInitiatorCorrect
	case o.initiator:
		return PointsInitiatorWrong, ReasonInitiatorWrong
	case o.votedImpostor:
		return PointsCorrectVote, ReasonCorrectVote
	default:
		return PointsWrongVote, ReasonWrongVote
	}
}
