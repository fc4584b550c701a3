package domain

import "time"

// DefaultVoteDuration is how long a vote stays open before it resolves on its own
const DefaultVoteDuration = 30 * time.Second

// VoteState holds the ballots of the vote in progress.
// Ballots are keyed by username so a reconnecting player keeps their vote.
type VoteState struct {
	Initiator string
	EndTime   time.Time
	ballots   map[string]string // voter -> target
}

func newVoteState(initiator string, endTime time.Time) *VoteState {
	return &VoteState{
		Initiator: initiator,
		EndTime:   endTime,
		ballots:   make(map[string]string),
	}
}

// HasVoted checks if a player has already voted
func (v *VoteState) HasVoted(username string) bool {
	_, ok := v.ballots[username]
	return ok
}

// BallotOf returns the target chosen by voter
func (v *VoteState) BallotOf(username string) (string, bool) {
	target, ok := v.ballots[username]
	return target, ok
}

// Count returns the number of players who have voted
func (v *VoteState) Count() int {
	return len(v.ballots)
}

func (v *VoteState) cast(voter, target string) error {
	if v.HasVoted(voter) {
		return ErrAlreadyVoted
	}
	v.ballots[voter] = target
	return nil
}

// withdraw drops the ballot cast by username and every ballot cast for
// username. Voters whose target left may vote again.
func (v *VoteState) withdraw(username string) {
	delete(v.ballots, username)
	for voter, target := range v.ballots {
		if target == username {
			delete(v.ballots, voter)
		}
	}
}

// VoteDetail is the per-target breakdown revealed after resolution
type VoteDetail struct {
	PlayerID  string   `json:"playerId"`
	Username  string   `json:"username"`
	VoteCount int      `json:"voteCount"`
	Voters    []string `json:"voters"`
}

// tally counts ballots per target in roster order and returns the details
// of every target that received at least one vote, plus the designated
// suspect: the target with the strictly highest count. Among tied targets
// the one that comes first in roster (join) order wins. With no ballots
// there is no suspect.
func (v *VoteState) tally(players []*Player) ([]VoteDetail, *Player) {
	details := make([]VoteDetail, 0, len(players))
	var suspect *Player
	best := 0

	for _, target := range players {
		voters := make([]string, 0)
		for _, voter := range players {
			if t, ok := v.ballots[voter.Username]; ok && t == target.Username {
				voters = append(voters, voter.Username)
			}
		}
		if len(voters) == 0 {
			continue
		}

		details = append(details, VoteDetail{
			PlayerID:  target.ID,
			Username:  target.Username,
			VoteCount: len(voters),
			Voters:    voters,
		})

		if len(voters) > best {
			best = len(voters)
			suspect = target
		}
	}

	return details, suspect
}
