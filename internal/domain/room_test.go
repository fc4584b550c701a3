package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqRand returns its values in order, wrapping around, reduced modulo n.
type seqRand struct {
	values []int
	next   int
}

func (s *seqRand) Intn(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

var testPairs = []WordPair{
	{Team: "cat", Intruder: "dog"},
	{Team: "coffee", Intruder: "tea"},
}

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestRoom(t *testing.T, rnd Randomizer, usernames ...string) *Room {
	t.Helper()
	r := NewRoom("ROOM1", DefaultRoomSettings(), testPairs, rnd, t0)
	for _, name := range usernames {
		_, err := r.AddPlayer("conn-"+name, name)
		require.NoError(t, err)
	}
	return r
}

// startedRoom deals pair 0 with bob as impostor and alice as first speaker.
func startedRoom(t *testing.T) *Room {
	t.Helper()
	r := newTestRoom(t, &seqRand{values: []int{0, 1, 0}}, "alice", "bob", "carol")
	require.NoError(t, r.Start())
	return r
}

func impostors(r *Room) []*Player {
	var out []*Player
	for _, p := range r.players {
		if p.IsImpostor {
			out = append(out, p)
		}
	}
	return out
}

func TestRoom_AddPlayer(t *testing.T) {
	r := newTestRoom(t, &seqRand{}, "alice")

	p, err := r.AddPlayer("conn-bob", "bob")
	require.NoError(t, err)
	assert.False(t, p.IsHost)
	assert.True(t, r.IsHost("conn-alice"))

	_, err = r.AddPlayer("conn-x", "bob")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = r.AddPlayer("conn-y", "")
	assert.ErrorIs(t, err, ErrEmptyUsername)
	assert.Equal(t, 2, r.PlayerCount())
}

func TestRoom_AddPlayerFull(t *testing.T) {
	settings := DefaultRoomSettings()
	settings.MaxPlayers = 3
	r := NewRoom("ROOM1", settings, testPairs, &seqRand{}, t0)
	for _, name := range []string{"a", "b", "c"} {
		_, err := r.AddPlayer(name, name)
		require.NoError(t, err)
	}

	_, err := r.AddPlayer("d", "d")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestRoom_AddPlayerAfterStart(t *testing.T) {
	r := startedRoom(t)
	_, err := r.AddPlayer("conn-dave", "dave")
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestRoom_NewRoomClampsCapacity(t *testing.T) {
	r := NewRoom("ROOM1", RoomSettings{MaxPlayers: 1}, testPairs, &seqRand{}, t0)
	s := r.Settings()
	assert.Equal(t, 3, s.MinPlayers)
	assert.Equal(t, 3, s.MaxPlayers)
	assert.Equal(t, DefaultVoteDuration, s.VoteDuration)
	assert.Equal(t, DefaultWinningScore, s.WinningScore)
}

func TestRoom_StartRequiresThreePlayers(t *testing.T) {
	r := newTestRoom(t, &seqRand{}, "alice", "bob")
	assert.False(t, r.CanStart())
	assert.ErrorIs(t, r.Start(), ErrNotEnoughPlayers)
	assert.Equal(t, PhaseWaiting, r.Phase())
	assert.Equal(t, 0, r.Round())
}

func TestRoom_StartDealsWords(t *testing.T) {
	for impostorIdx := 0; impostorIdx < 4; impostorIdx++ {
		r := newTestRoom(t, &seqRand{values: []int{1, impostorIdx, 2}}, "alice", "bob", "carol", "dave")
		require.NoError(t, r.Start())

		assert.Equal(t, PhasePlaying, r.Phase())
		assert.Equal(t, 1, r.Round())
		assert.True(t, r.Started())

		imps := impostors(r)
		require.Len(t, imps, 1)
		assert.Equal(t, r.players[impostorIdx], imps[0])
		assert.Equal(t, "tea", imps[0].CurrentWord)

		for _, p := range r.players {
			if !p.IsImpostor {
				assert.Equal(t, "coffee", p.CurrentWord)
			}
		}
	}
}

func TestRoom_StartTwice(t *testing.T) {
	r := startedRoom(t)
	assert.ErrorIs(t, r.Start(), ErrGameAlreadyStarted)
	assert.Equal(t, 1, r.Round())
}

func TestRoom_StartWithoutPairs(t *testing.T) {
	r := NewRoom("ROOM1", DefaultRoomSettings(), nil, &seqRand{}, t0)
	for _, name := range []string{"a", "b", "c"} {
		_, err := r.AddPlayer(name, name)
		require.NoError(t, err)
	}
	assert.ErrorIs(t, r.Start(), ErrNoWordPairs)
	assert.Equal(t, PhaseWaiting, r.Phase())
}

func TestRoom_RemovePlayerReassignsHost(t *testing.T) {
	r := newTestRoom(t, &seqRand{}, "alice", "bob", "carol")

	removed, err := r.RemovePlayer("conn-alice")
	require.NoError(t, err)
	assert.True(t, removed.IsHost)
	assert.True(t, r.IsHost("conn-bob"))
	assert.False(t, r.IsHost("conn-carol"))

	_, err = r.RemovePlayer("conn-carol")
	require.NoError(t, err)
	assert.True(t, r.IsHost("conn-bob"))

	_, err = r.RemovePlayer("conn-bob")
	require.NoError(t, err)
	assert.True(t, r.IsEmpty())

	_, err = r.RemovePlayer("conn-bob")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestRoom_ExactlyOneHostAfterChurn(t *testing.T) {
	r := newTestRoom(t, &seqRand{}, "a", "b", "c", "d")
	steps := []func(){
		func() { _, _ = r.RemovePlayer("conn-b") },
		func() { _, _ = r.AddPlayer("conn-e", "e") },
		func() { _, _ = r.RemovePlayer("conn-a") },
		func() { _, _ = r.AddPlayer("conn-a", "a") },
		func() { _, _ = r.RemovePlayer("conn-c") },
		func() { _, _ = r.RemovePlayer("conn-d") },
	}
	for _, step := range steps {
		step()
		hosts := 0
		for _, p := range r.players {
			if p.IsHost {
				hosts++
			}
		}
		assert.Equal(t, 1, hosts)
	}
	assert.True(t, r.IsHost("conn-e"))
}

func TestRoom_Rebind(t *testing.T) {
	r := startedRoom(t)
	r.players[0].Score = 5

	p, err := r.Rebind("alice", "conn-new")
	require.NoError(t, err)
	assert.Equal(t, "conn-new", p.ID)
	assert.Equal(t, 5, p.Score)
	assert.True(t, p.IsHost)
	assert.Equal(t, "cat", p.CurrentWord)

	_, err = r.Rebind("nobody", "x")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestRoom_InitiateVote(t *testing.T) {
	r := newTestRoom(t, &seqRand{}, "alice", "bob", "carol")
	_, err := r.InitiateVote("conn-bob", t0)
	assert.ErrorIs(t, err, ErrInvalidPhase)

	require.NoError(t, r.Start())

	_, err = r.InitiateVote("conn-zed", t0)
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	started, err := r.InitiateVote("conn-bob", t0)
	require.NoError(t, err)
	assert.Equal(t, "bob", started.Initiator.Username)
	assert.Equal(t, t0.Add(30*time.Second), started.VoteEndTime)
	assert.Equal(t, PhaseVoting, r.Phase())

	_, err = r.InitiateVote("conn-alice", t0)
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestRoom_CastVoteValidation(t *testing.T) {
	r := startedRoom(t)
	_, err := r.CastVote("conn-alice", "conn-bob")
	assert.ErrorIs(t, err, ErrInvalidPhase)

	_, err = r.InitiateVote("conn-alice", t0)
	require.NoError(t, err)

	_, err = r.CastVote("conn-zed", "conn-bob")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = r.CastVote("conn-alice", "conn-zed")
	assert.ErrorIs(t, err, ErrInvalidTarget)

	progress, err := r.CastVote("conn-alice", "conn-bob")
	require.NoError(t, err)
	assert.Equal(t, VoteProgress{VotesCount: 1, TotalPlayers: 3}, progress)

	_, err = r.CastVote("conn-alice", "conn-carol")
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	target, _ := r.Vote().BallotOf("alice")
	assert.Equal(t, "bob", target)
	assert.Equal(t, 1, r.Vote().Count())
}

func TestRoom_ResolveMajorityCatchesImpostor(t *testing.T) {
	r := startedRoom(t) // bob is the impostor
	_, err := r.InitiateVote("conn-alice", t0)
	require.NoError(t, err)

	_, err = r.CastVote("conn-alice", "conn-bob")
	require.NoError(t, err)
	_, err = r.CastVote("conn-bob", "conn-carol")
	require.NoError(t, err)
	progress, err := r.CastVote("conn-carol", "conn-bob")
	require.NoError(t, err)
	assert.True(t, progress.AllVoted)

	result, err := r.ResolveVote(t0.Add(5 * time.Second))
	require.NoError(t, err)

	assert.True(t, result.VoteCorrect)
	require.NotNil(t, result.DesignatedImpostor)
	assert.Equal(t, "bob", result.DesignatedImpostor.Username)
	assert.Equal(t, "bob", result.RealImpostor.Username)
	assert.Equal(t, "dog", result.RealImpostor.Word)
	assert.Equal(t, "cat", result.TeamWord)
	assert.Equal(t, "dog", result.IntruderWord)
	assert.Equal(t, PhaseResults, result.Phase)
	assert.Nil(t, result.Winner)

	assert.Equal(t, []PointsChange{
		{PlayerID: "conn-alice", Username: "alice", Points: 2, NewScore: 2, Reason: ReasonInitiatorCorrect},
		{PlayerID: "conn-bob", Username: "bob", Points: -1, NewScore: -1, Reason: ReasonWrongVote},
		{PlayerID: "conn-carol", Username: "carol", Points: 1, NewScore: 1, Reason: ReasonCorrectVote},
	}, result.PointsChanges)

	assert.Equal(t, []VoteDetail{
		{PlayerID: "conn-bob", Username: "bob", VoteCount: 2, Voters: []string{"alice", "carol"}},
		{PlayerID: "conn-carol", Username: "carol", VoteCount: 1, Voters: []string{"bob"}},
	}, result.VoteDetails)

	history := r.History()
	require.Len(t, history, 1)
	assert.Equal(t, "bob", history[0].Impostor)
	assert.Equal(t, "bob", history[0].DesignatedImpostor)
	assert.True(t, history[0].VoteCorrect)
	assert.Equal(t, 1, history[0].Round)
}

func TestRoom_ResolveInitiatorScoredOnOutcome(t *testing.T) {
	r := startedRoom(t) // bob is the impostor
	_, err := r.InitiateVote("conn-alice", t0)
	require.NoError(t, err)

	// alice personally votes right but the room designates carol
	_, err = r.CastVote("conn-alice", "conn-bob")
	require.NoError(t, err)
	_, err = r.CastVote("conn-bob", "conn-carol")
	require.NoError(t, err)
	_, err = r.CastVote("conn-carol", "conn-carol")
	require.NoError(t, err)

	result, err := r.ResolveVote(t0)
	require.NoError(t, err)
	assert.False(t, result.VoteCorrect)
	assert.Equal(t, "carol", result.DesignatedImpostor.Username)
	assert.Equal(t, -2, result.PointsChanges[0].Points)
	assert.Equal(t, ReasonInitiatorWrong, result.PointsChanges[0].Reason)
}

func TestRoom_ResolveTieGoesToEarliestJoined(t *testing.T) {
	r := startedRoom(t) // bob is the impostor
	_, err := r.InitiateVote("conn-carol", t0)
	require.NoError(t, err)

	_, err = r.CastVote("conn-carol", "conn-alice")
	require.NoError(t, err)
	_, err = r.CastVote("conn-alice", "conn-bob")
	require.NoError(t, err)

	result, err := r.ResolveVote(t0)
	require.NoError(t, err)
	require.NotNil(t, result.DesignatedImpostor)
	assert.Equal(t, "alice", result.DesignatedImpostor.Username)
	assert.False(t, result.VoteCorrect)
}

func TestRoom_ResolveInitiatorWhoDoesNotVote(t *testing.T) {
	r := startedRoom(t)
	_, err := r.InitiateVote("conn-alice", t0)
	require.NoError(t, err)

	_, err = r.CastVote("conn-bob", "conn-carol")
	require.NoError(t, err)
	_, err = r.CastVote("conn-carol", "conn-bob")
	require.NoError(t, err)

	result, err := r.ResolveVote(t0.Add(30 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, PointsChange{
		PlayerID: "conn-alice", Username: "alice", Points: -2, NewScore: -2, Reason: "initiator who doesn't vote",
	}, result.PointsChanges[0])
}

func TestRoom_ResolveNobodyVoted(t *testing.T) {
	r := startedRoom(t)
	_, err := r.InitiateVote("conn-bob", t0)
	require.NoError(t, err)

	result, err := r.ResolveVote(t0)
	require.NoError(t, err)
	assert.Nil(t, result.DesignatedImpostor)
	assert.False(t, result.VoteCorrect)
	assert.Empty(t, result.VoteDetails)

	total := 0
	for _, c := range result.PointsChanges {
		total += c.Points
		if c.Username == "bob" {
			assert.Equal(t, PointsInitiatorNoVote, c.Points)
		} else {
			assert.Equal(t, PointsNoVote, c.Points)
			assert.Equal(t, ReasonNoVote, c.Reason)
		}
	}
	assert.Equal(t, -4, total)
}

func TestRoom_ResolveTwice(t *testing.T) {
	r := startedRoom(t)
	_, err := r.InitiateVote("conn-alice", t0)
	require.NoError(t, err)

	_, err = r.ResolveVote(t0)
	require.NoError(t, err)

	result, err := r.ResolveVote(t0)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Len(t, r.History(), 1)
	assert.Equal(t, PhaseResults, r.Phase())
}

func TestRoom_ResolveOutsideVoting(t *testing.T) {
	r := startedRoom(t)
	_, err := r.ResolveVote(t0)
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestRoom_WinnerEndsGame(t *testing.T) {
	r := startedRoom(t)
	r.players[2].Score = 9 // carol

	_, err := r.InitiateVote("conn-alice", t0)
	require.NoError(t, err)
	_, err = r.CastVote("conn-carol", "conn-bob")
	require.NoError(t, err)

	result, err := r.ResolveVote(t0)
	require.NoError(t, err)
	require.NotNil(t, result.Winner)
	assert.Equal(t, "carol", result.Winner.Username)
	assert.Equal(t, 10, result.Winner.Score)
	assert.Equal(t, PhaseEnded, r.Phase())

	assert.ErrorIs(t, r.StartNextRound(), ErrGameEnded)
	_, err = r.InitiateVote("conn-alice", t0)
	assert.ErrorIs(t, err, ErrInvalidPhase)

	winner, ok := r.Winner()
	require.True(t, ok)
	assert.Equal(t, "carol", winner.Username)
	assert.Equal(t, "carol", r.ViewFor("conn-alice").Winner.Username)
	assert.Equal(t, 3, r.Summary().PlayerCount)
}

func TestRoom_StartNextRound(t *testing.T) {
	r := newTestRoom(t, &seqRand{values: []int{0, 1, 0, 1, 2, 1}}, "alice", "bob", "carol")
	require.NoError(t, r.Start())
	assert.ErrorIs(t, r.StartNextRound(), ErrInvalidPhase)

	_, err := r.InitiateVote("conn-alice", t0)
	require.NoError(t, err)
	_, err = r.CastVote("conn-alice", "conn-bob")
	require.NoError(t, err)
	_, err = r.ResolveVote(t0)
	require.NoError(t, err)

	scores := map[string]int{}
	for _, p := range r.Players() {
		scores[p.Username] = p.Score
	}

	require.NoError(t, r.StartNextRound())
	assert.Equal(t, 2, r.Round())
	assert.Equal(t, PhasePlaying, r.Phase())

	imps := impostors(r)
	require.Len(t, imps, 1)
	assert.Equal(t, "carol", imps[0].Username)
	assert.Equal(t, "tea", imps[0].CurrentWord)
	for _, p := range r.Players() {
		assert.Equal(t, scores[p.Username], p.Score)
		if !p.IsImpostor {
			assert.Equal(t, "coffee", p.CurrentWord)
		}
	}
	assert.Len(t, r.History(), 1)
}

func TestRoom_StartNextRoundTooFewPlayers(t *testing.T) {
	r := startedRoom(t)
	_, err := r.InitiateVote("conn-alice", t0)
	require.NoError(t, err)
	_, err = r.ResolveVote(t0)
	require.NoError(t, err)

	_, err = r.RemovePlayer("conn-carol")
	require.NoError(t, err)
	assert.ErrorIs(t, r.StartNextRound(), ErrNotEnoughPlayers)
	assert.Equal(t, PhaseResults, r.Phase())
}

func TestRoom_DepartureWithdrawsBallots(t *testing.T) {
	r := newTestRoom(t, &seqRand{values: []int{0, 1, 0}}, "alice", "bob", "carol", "dave")
	require.NoError(t, r.Start())
	_, err := r.InitiateVote("conn-alice", t0)
	require.NoError(t, err)

	_, err = r.CastVote("conn-alice", "conn-dave")
	require.NoError(t, err)
	_, err = r.CastVote("conn-dave", "conn-bob")
	require.NoError(t, err)
	_, err = r.CastVote("conn-carol", "conn-bob")
	require.NoError(t, err)

	_, err = r.RemovePlayer("conn-dave")
	require.NoError(t, err)

	assert.False(t, r.Vote().HasVoted("alice"))
	assert.False(t, r.Vote().HasVoted("dave"))
	assert.True(t, r.Vote().HasVoted("carol"))
	assert.False(t, r.AllVoted())

	_, err = r.CastVote("conn-alice", "conn-bob")
	require.NoError(t, err)
	_, err = r.CastVote("conn-bob", "conn-alice")
	require.NoError(t, err)
	assert.True(t, r.AllVoted())
}

func TestRoom_ImpostorLeftAbortsRound(t *testing.T) {
	r := newTestRoom(t, &seqRand{values: []int{0, 1, 0}}, "alice", "bob", "carol", "dave")
	require.NoError(t, r.Start())
	_, err := r.InitiateVote("conn-alice", t0)
	require.NoError(t, err)

	_, err = r.RemovePlayer("conn-bob")
	require.NoError(t, err)

	result, err := r.ResolveVote(t0)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrNoImpostor))
	assert.Equal(t, PhaseResults, r.Phase())

	history := r.History()
	require.Len(t, history, 1)
	assert.True(t, history[0].Aborted)
	for _, p := range r.Players() {
		assert.Zero(t, p.Score)
	}

	require.NoError(t, r.StartNextRound())
	assert.Len(t, impostors(r), 1)
}

func TestRoom_RestorePlayer(t *testing.T) {
	r := startedRoom(t) // bob is the impostor
	r.players[1].Score = 3

	left, err := r.RemovePlayer("conn-bob")
	require.NoError(t, err)
	snapshot := left.Snapshot()

	p, err := r.RestorePlayer("conn-bob-2", snapshot, r.Round())
	require.NoError(t, err)
	assert.Equal(t, 3, p.Score)
	assert.True(t, p.IsImpostor)
	assert.Equal(t, "dog", p.CurrentWord)
	assert.False(t, p.IsHost)
	assert.Len(t, impostors(r), 1)

	_, err = r.RestorePlayer("conn-x", snapshot, r.Round())
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func rosterNames(r *Room) []string {
	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		names = append(names, p.Username)
	}
	return names
}

func TestRoom_RestorePlayerKeepsJoinOrder(t *testing.T) {
	r := startedRoom(t)
	left, err := r.RemovePlayer("conn-bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, rosterNames(r))

	_, err = r.RestorePlayer("conn-bob-2", left.Snapshot(), r.Round())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, rosterNames(r))
}

func TestRoom_RestoredHostReclaimsHost(t *testing.T) {
	r := startedRoom(t)
	left, err := r.RemovePlayer("conn-alice")
	require.NoError(t, err)
	require.True(t, r.IsHost("conn-bob"))

	p, err := r.RestorePlayer("conn-alice-2", left.Snapshot(), r.Round())
	require.NoError(t, err)
	assert.True(t, p.IsHost)
	assert.False(t, r.IsHost("conn-bob"))
	assert.Equal(t, []string{"alice", "bob", "carol"}, rosterNames(r))

	hosts := 0
	for _, p := range r.players {
		if p.IsHost {
			hosts++
		}
	}
	assert.Equal(t, 1, hosts)
}

func TestRoom_StandInHostDoesNotReclaimFromEarlierHost(t *testing.T) {
	r := newTestRoom(t, &seqRand{}, "alice", "bob", "carol", "dave")

	alice, err := r.RemovePlayer("conn-alice")
	require.NoError(t, err)
	bob, err := r.RemovePlayer("conn-bob") // stand-in host leaves too
	require.NoError(t, err)
	require.True(t, bob.IsHost)
	require.True(t, r.IsHost("conn-carol"))

	_, err = r.RestorePlayer("conn-alice-2", alice.Snapshot(), r.Round())
	require.NoError(t, err)
	assert.True(t, r.IsHost("conn-alice-2"))

	p, err := r.RestorePlayer("conn-bob-2", bob.Snapshot(), r.Round())
	require.NoError(t, err)
	assert.False(t, p.IsHost)
	assert.True(t, r.IsHost("conn-alice-2"))
	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, rosterNames(r))
}

func TestRoom_PhaseChangesFollowGraph(t *testing.T) {
	r := newTestRoom(t, &seqRand{}, "alice", "bob", "carol")
	assert.ErrorIs(t, r.setPhase(PhaseVoting), ErrInvalidPhase)
	assert.Equal(t, PhaseWaiting, r.Phase())

	require.NoError(t, r.Start())
	assert.ErrorIs(t, r.setPhase(PhaseResults), ErrInvalidPhase)
	assert.Equal(t, PhasePlaying, r.Phase())
}

func TestRoom_SummaryCarriesCreationTime(t *testing.T) {
	r := newTestRoom(t, &seqRand{}, "alice")
	assert.Equal(t, t0, r.Summary().CreatedAt)
}

func TestRoom_RestorePlayerFromEarlierRound(t *testing.T) {
	r := startedRoom(t)
	left, err := r.RemovePlayer("conn-carol")
	require.NoError(t, err)

	p, err := r.RestorePlayer("conn-carol-2", left.Snapshot(), r.Round()-1)
	require.NoError(t, err)
	assert.Empty(t, p.CurrentWord)
	assert.False(t, p.IsImpostor)
}

func TestRoom_ViewForNeverLeaksOtherSecrets(t *testing.T) {
	r := startedRoom(t)
	_, err := r.InitiateVote("conn-alice", t0)
	require.NoError(t, err)
	_, err = r.CastVote("conn-carol", "conn-bob")
	require.NoError(t, err)

	for _, recipient := range []string{"conn-alice", "conn-bob", "conn-carol", "stranger"} {
		view := r.ViewFor(recipient)
		for _, pv := range view.Players {
			if pv.ID == recipient {
				require.NotNil(t, pv.CurrentWord)
			} else {
				assert.Nil(t, pv.CurrentWord, "recipient %s sees word of %s", recipient, pv.Username)
			}
		}

		raw, err := json.Marshal(view)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "isImpostor")
		assert.NotContains(t, string(raw), "Impostor")
		if recipient != "conn-bob" {
			assert.NotContains(t, string(raw), "dog")
		}
	}

	bob := r.ViewFor("conn-bob")
	require.NotNil(t, bob.Word)
	assert.Equal(t, "dog", *bob.Word)
	assert.Equal(t, "conn-alice", bob.Initiator)
	assert.Equal(t, 1, bob.VotesCount)
	assert.False(t, bob.HasVoted)
	assert.True(t, r.ViewFor("conn-carol").HasVoted)
	assert.Nil(t, r.ViewFor("stranger").Word)
	assert.Equal(t, "conn-alice", bob.FirstSpeaker)

	summary, err := json.Marshal(r.Summary())
	require.NoError(t, err)
	assert.NotContains(t, string(summary), "dog")
	assert.NotContains(t, string(summary), "cat")
}

func TestPhase_CanTransitionTo(t *testing.T) {
	assert.True(t, PhaseWaiting.CanTransitionTo(PhasePlaying))
	assert.True(t, PhaseVoting.CanTransitionTo(PhaseEnded))
	assert.True(t, PhaseResults.CanTransitionTo(PhasePlaying))
	assert.False(t, PhaseEnded.CanTransitionTo(PhasePlaying))
	assert.False(t, PhasePlaying.CanTransitionTo(PhaseResults))
	assert.False(t, Phase("bogus").CanTransitionTo(PhasePlaying))
}
