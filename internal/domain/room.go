package domain

import (
	"fmt"
	"time"
)

// RoomSettings holds configurable room parameters
type RoomSettings struct {
	MinPlayers   int           `json:"minPlayers"`
	MaxPlayers   int           `json:"maxPlayers"`
	VoteDuration time.Duration `json:"voteDuration"`
	WinningScore int           `json:"winningScore"`
}

// DefaultRoomSettings returns the default room settings
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		MinPlayers:   3,
		MaxPlayers:   10,
		VoteDuration: DefaultVoteDuration,
		WinningScore: DefaultWinningScore,
	}
}

// Room is one game session: the roster, the round state machine, the vote
// in progress and the score history.
//
// Room is not safe for concurrent use; callers serialize access per room.
type Room struct {
	ID        string
	CreatedAt time.Time

	settings     RoomSettings
	pairs        []WordPair
	rnd          Randomizer
	players      []*Player // join order, drives host succession
	phase        Phase
	started      bool
	round        int
	pair         WordPair
	firstSpeaker string // username
	vote         *VoteState
	history      []RoundRecord
	winner       string // username
	joins        int    // last join sequence handed out
}

// NewRoom creates a room in the waiting phase. pairs is the read-only word
// pair list rounds draw from.
func NewRoom(id string, settings RoomSettings, pairs []WordPair, rnd Randomizer, createdAt time.Time) *Room {
	if settings.MinPlayers < 3 {
		settings.MinPlayers = 3
	}
	if settings.MaxPlayers < settings.MinPlayers {
		settings.MaxPlayers = settings.MinPlayers
	}
	if settings.VoteDuration <= 0 {
		settings.VoteDuration = DefaultVoteDuration
	}
	if settings.WinningScore <= 0 {
		settings.WinningScore = DefaultWinningScore
	}

	return &Room{
		ID:        id,
		CreatedAt: createdAt,
		settings:  settings,
		pairs:     pairs,
		rnd:       rnd,
		players:   make([]*Player, 0, settings.MaxPlayers),
		phase:     PhaseWaiting,
		history:   make([]RoundRecord, 0),
	}
}

// Settings returns the room settings
func (r *Room) Settings() RoomSettings {
	return r.settings
}

// Phase returns the current phase
func (r *Room) Phase() Phase {
	return r.phase
}

// Started reports whether the first round has been dealt
func (r *Room) Started() bool {
	return r.started
}

// Round returns the current round number, 0 before the game starts
func (r *Room) Round() int {
	return r.round
}

// PlayerCount returns the number of players in the roster
func (r *Room) PlayerCount() int {
	return len(r.players)
}

// IsEmpty reports whether the roster is empty
func (r *Room) IsEmpty() bool {
	return len(r.players) == 0
}

// Players returns detached copies of the roster in join order
func (r *Room) Players() []Player {
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.Snapshot())
	}
	return out
}

// Vote returns the vote in progress, nil outside the voting phase
func (r *Room) Vote() *VoteState {
	if r.phase != PhaseVoting {
		return nil
	}
	return r.vote
}

// History returns a copy of the finished rounds
func (r *Room) History() []RoundRecord {
	out := make([]RoundRecord, 0, len(r.history))
	for _, rec := range r.history {
		out = append(out, rec.clone())
	}
	return out
}

// Winner returns the winning player once the game has ended
func (r *Room) Winner() (Player, bool) {
	if r.winner == "" {
		return Player{}, false
	}
	p, ok := r.findByUsername(r.winner)
	if !ok {
		return Player{}, false
	}
	return p.Snapshot(), true
}

// FindPlayer returns the player bound to the connection ID
func (r *Room) FindPlayer(id string) (*Player, bool) {
	for _, p := range r.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (r *Room) findByUsername(username string) (*Player, bool) {
	for _, p := range r.players {
		if p.Username == username {
			return p, true
		}
	}
	return nil, false
}

// HasUsername checks if the username is taken in this room
func (r *Room) HasUsername(username string) bool {
	_, ok := r.findByUsername(username)
	return ok
}

// IsHost checks if the given connection belongs to the host
func (r *Room) IsHost(id string) bool {
	p, ok := r.FindPlayer(id)
	return ok && p.IsHost
}

// Host returns the current host
func (r *Room) Host() (*Player, bool) {
	for _, p := range r.players {
		if p.IsHost {
			return p, true
		}
	}
	return nil, false
}

// CanStart checks if the game can be started
func (r *Room) CanStart() bool {
	n := len(r.players)
	return !r.started && r.phase == PhaseWaiting && n >= r.settings.MinPlayers && n <= r.settings.MaxPlayers
}

// AddPlayer adds a new player to the waiting room. The first player becomes the host.
func (r *Room) AddPlayer(id, username string) (*Player, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if r.started {
		return nil, ErrGameAlreadyStarted
	}
	if len(r.players) >= r.settings.MaxPlayers {
		return nil, ErrRoomFull
	}
	if r.HasUsername(username) {
		return nil, ErrUsernameTaken
	}

	player := NewPlayer(id, username)
	player.IsHost = len(r.players) == 0
	r.joins++
	player.joinSeq = r.joins
	r.players = append(r.players, player)

	return player, nil
}

// RestorePlayer re-admits a player who left earlier, keeping their score and
// their place in the join order. The word and impostor flag come back only
// when the player returns during the round they left.
//
// A returning host takes the host flag back from a stand-in who joined after
// them, so a room whose host drops and reconnects keeps the same host.
func (r *Room) RestorePlayer(id string, snapshot Player, leftInRound int) (*Player, error) {
	if len(r.players) >= r.settings.MaxPlayers {
		return nil, ErrRoomFull
	}
	if r.HasUsername(snapshot.Username) {
		return nil, ErrUsernameTaken
	}

	player := NewPlayer(id, snapshot.Username)
	player.Score = snapshot.Score
	if r.phase.IsRoundActive() && leftInRound == r.round {
		player.CurrentWord = snapshot.CurrentWord
		player.IsImpostor = snapshot.IsImpostor
	}
	player.joinSeq = snapshot.joinSeq
	if player.joinSeq == 0 {
		r.joins++
		player.joinSeq = r.joins
	}

	host, hasHost := r.Host()
	switch {
	case !hasHost:
		player.IsHost = true
	case snapshot.IsHost && player.joinSeq < host.joinSeq:
		host.IsHost = false
		player.IsHost = true
	}

	r.insertByJoinOrder(player)
	return player, nil
}

func (r *Room) insertByJoinOrder(player *Player) {
	idx := len(r.players)
	for i, p := range r.players {
		if p.joinSeq > player.joinSeq {
			idx = i
			break
		}
	}
	r.players = append(r.players, nil)
	copy(r.players[idx+1:], r.players[idx:])
	r.players[idx] = player
}

// Rebind moves a player to a new connection ID. Score, host flag and round
// secrets are untouched.
func (r *Room) Rebind(username, newID string) (*Player, error) {
	p, ok := r.findByUsername(username)
	if !ok {
		return nil, ErrPlayerNotFound
	}
	p.ID = newID
	return p, nil
}

// RemovePlayer removes a player from the roster. If the host left, the
// earliest-joined remaining player becomes host. A departing player's
// ballot, and ballots cast for them, are withdrawn.
func (r *Room) RemovePlayer(id string) (*Player, error) {
	idx := -1
	for i, p := range r.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrPlayerNotFound
	}

	removed := r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)

	if removed.IsHost && len(r.players) > 0 {
		r.players[0].IsHost = true
	}

	if r.phase == PhaseVoting && r.vote != nil {
		r.vote.withdraw(removed.Username)
	}

	return removed, nil
}

// Start deals the first round
func (r *Room) Start() error {
	if r.started || r.phase != PhaseWaiting {
		return ErrGameAlreadyStarted
	}
	if err := r.checkPlayerCount(); err != nil {
		return err
	}
	if err := r.dealRound(); err != nil {
		return err
	}
	r.started = true
	return nil
}

// StartNextRound deals a new round after the results screen. Scores and
// history are kept.
func (r *Room) StartNextRound() error {
	switch r.phase {
	case PhaseResults:
	case PhaseEnded:
		return ErrGameEnded
	default:
		return ErrInvalidPhase
	}
	if err := r.checkPlayerCount(); err != nil {
		return err
	}
	return r.dealRound()
}

func (r *Room) checkPlayerCount() error {
	n := len(r.players)
	if n < r.settings.MinPlayers {
		return ErrNotEnoughPlayers
	}
	if n > r.settings.MaxPlayers {
		return ErrTooManyPlayers
	}
	return nil
}

// dealRound picks a pair, an impostor and a first speaker
func (r *Room) dealRound() error {
	pair, err := pickPair(r.pairs, r.rnd)
	if err != nil {
		return err
	}
	if err := r.setPhase(PhasePlaying); err != nil {
		return err
	}

	for _, p := range r.players {
		p.ResetForNewRound()
	}

	impostor := r.rnd.Intn(len(r.players))
	for i, p := range r.players {
		if i == impostor {
			p.CurrentWord = pair.Intruder
			p.IsImpostor = true
		} else {
			p.CurrentWord = pair.Team
		}
	}

	r.pair = pair
	r.firstSpeaker = r.players[r.rnd.Intn(len(r.players))].Username
	r.vote = nil
	r.round++

	return nil
}

// setPhase moves the room along the legal phase graph
func (r *Room) setPhase(next Phase) error {
	if !r.phase.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidPhase, r.phase, next)
	}
	r.phase = next
	return nil
}

// VoteStarted describes a freshly opened vote
type VoteStarted struct {
	Initiator   PlayerRef     `json:"initiator"`
	Duration    time.Duration `json:"-"`
	VoteEndTime time.Time     `json:"voteEndTime"`
}

// InitiateVote opens the vote. Any player may initiate it.
func (r *Room) InitiateVote(initiatorID string, now time.Time) (VoteStarted, error) {
	if r.phase != PhasePlaying {
		return VoteStarted{}, ErrInvalidPhase
	}
	initiator, ok := r.FindPlayer(initiatorID)
	if !ok {
		return VoteStarted{}, ErrPlayerNotFound
	}

	if err := r.setPhase(PhaseVoting); err != nil {
		return VoteStarted{}, err
	}
	end := now.Add(r.settings.VoteDuration)
	r.vote = newVoteState(initiator.Username, end)

	return VoteStarted{
		Initiator:   PlayerRef{ID: initiator.ID, Username: initiator.Username},
		Duration:    r.settings.VoteDuration,
		VoteEndTime: end,
	}, nil
}

// VoteProgress is broadcast after each ballot, without revealing targets
type VoteProgress struct {
	VotesCount   int  `json:"votesCount"`
	TotalPlayers int  `json:"totalPlayers"`
	AllVoted     bool `json:"allVoted"`
}

// CastVote records voterID's ballot against targetID. The state is left
// untouched on failure.
func (r *Room) CastVote(voterID, targetID string) (VoteProgress, error) {
	if r.phase != PhaseVoting || r.vote == nil {
		return VoteProgress{}, ErrInvalidPhase
	}
	voter, ok := r.FindPlayer(voterID)
	if !ok {
		return VoteProgress{}, ErrPlayerNotFound
	}
	target, ok := r.FindPlayer(targetID)
	if !ok {
		return VoteProgress{}, ErrInvalidTarget
	}
	if err := r.vote.cast(voter.Username, target.Username); err != nil {
		return VoteProgress{}, err
	}
	return r.VoteProgress(), nil
}

// VoteProgress returns the ballot count of the vote in progress
func (r *Room) VoteProgress() VoteProgress {
	progress := VoteProgress{TotalPlayers: len(r.players)}
	if r.phase == PhaseVoting && r.vote != nil {
		progress.VotesCount = r.vote.Count()
		progress.AllVoted = r.AllVoted()
	}
	return progress
}

// AllVoted reports whether every current player has a ballot
func (r *Room) AllVoted() bool {
	if r.phase != PhaseVoting || r.vote == nil || len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !r.vote.HasVoted(p.Username) {
			return false
		}
	}
	return true
}

// ResolveVote closes the vote, scores every player and decides whether
// somebody won. It runs at most once per vote: once the phase has left
// voting, further calls return ErrAlreadyResolved.
//
// If no impostor can be found the round is aborted without score changes
// and ErrNoImpostor is returned.
func (r *Room) ResolveVote(now time.Time) (*RoundResult, error) {
	switch r.phase {
	case PhaseVoting:
	case PhaseResults, PhaseEnded:
		return nil, ErrAlreadyResolved
	default:
		return nil, ErrInvalidPhase
	}

	var impostor *Player
	for _, p := range r.players {
		if p.IsImpostor {
			impostor = p
			break
		}
	}
	if impostor == nil {
		r.abortRound(now)
		return nil, fmt.Errorf("round %d: %w", r.round, ErrNoImpostor)
	}

	details, suspect := r.vote.tally(r.players)
	voteCorrect := suspect != nil && suspect == impostor

	changes := make([]PointsChange, 0, len(r.players))
	for _, p := range r.players {
		target, voted := r.vote.BallotOf(p.Username)
		outcome := ballotOutcome{
			voted:         voted,
			initiator:     p.Username == r.vote.Initiator,
			voteCorrect:   voteCorrect,
			votedImpostor: voted && target == impostor.Username,
		}
		points, reason := outcome.score()
		changes = append(changes, PointsChange{
			PlayerID: p.ID,
			Username: p.Username,
			Points:   points,
			Reason:   reason,
		})
	}
	for i, p := range r.players {
		p.AddPoints(changes[i].Points)
		changes[i].NewScore = p.Score
	}

	result := &RoundResult{
		Round:       r.round,
		VoteCorrect: voteCorrect,
		RealImpostor: RevealedImpostor{
			ID:       impostor.ID,
			Username: impostor.Username,
			Word:     impostor.CurrentWord,
		},
		TeamWord:      r.pair.Team,
		IntruderWord:  r.pair.Intruder,
		VoteDetails:   details,
		PointsChanges: changes,
		Players:       r.scoreboard(),
	}
	if suspect != nil {
		result.DesignatedImpostor = &PlayerRef{ID: suspect.ID, Username: suspect.Username}
	}

	next := PhaseResults
	if winner := r.findWinner(); winner != nil {
		r.winner = winner.Username
		result.Winner = &ScoreEntry{ID: winner.ID, Username: winner.Username, Score: winner.Score}
		next = PhaseEnded
	}
	if err := r.setPhase(next); err != nil {
		return nil, err
	}
	result.Phase = r.phase

	record := RoundRecord{
		Round:       r.round,
		Pair:        r.pair,
		Impostor:    impostor.Username,
		VoteCorrect: voteCorrect,
		Changes:     append([]PointsChange(nil), changes...),
		ResolvedAt:  now,
	}
	if suspect != nil {
		record.DesignatedImpostor = suspect.Username
	}
	r.history = append(r.history, record)

	return result, nil
}

func (r *Room) abortRound(now time.Time) {
	r.history = append(r.history, RoundRecord{
		Round:      r.round,
		Pair:       r.pair,
		Aborted:    true,
		ResolvedAt: now,
	})
	// voting -> results is always legal here
	_ = r.setPhase(PhaseResults)
}

// findWinner returns the highest-scoring player at or above the winning
// score. Ties go to the earliest-joined player.
func (r *Room) findWinner() *Player {
	var winner *Player
	for _, p := range r.players {
		if !p.HasWon(r.settings.WinningScore) {
			continue
		}
		if winner == nil || p.Score > winner.Score {
			winner = p
		}
	}
	return winner
}

func (r *Room) scoreboard() []ScoreEntry {
	board := make([]ScoreEntry, 0, len(r.players))
	for _, p := range r.players {
		board = append(board, ScoreEntry{ID: p.ID, Username: p.Username, Score: p.Score})
	}
	return board
}
