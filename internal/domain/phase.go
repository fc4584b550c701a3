package domain

// Phase represents the current phase of a room
type Phase string

const (
	PhaseWaiting Phase = "waiting" // Lobby, players may join
	PhasePlaying Phase = "playing" // Words handed out, discussion
	PhaseVoting  Phase = "voting"  // 30s countdown, everyone votes
	PhaseResults Phase = "results" // Show votes & score changes
	PhaseEnded   Phase = "ended"   // Someone reached the winning score
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// IsRoundActive reports whether a round with assigned words is in progress
func (p Phase) IsRoundActive() bool {
	return p == PhasePlaying || p == PhaseVoting
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseWaiting: {PhasePlaying},
		PhasePlaying: {PhaseVoting},
		PhaseVoting:  {PhaseResults, PhaseEnded},
		PhaseResults: {PhasePlaying},
		PhaseEnded:   {},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}
