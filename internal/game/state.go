package game

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GameState owns the roster and the current round and enforces the
// cross-round rules.
type GameState struct {
	ID              string
	Players         []*Player // fixed membership, roster order matters for ties
	CurrentRound    *Round    // nil between rounds
	RoundNumber     int       // rounds started so far
	RoundHistory    []RoundResult
	CreatedAt       time.Time
	IsFinished      bool
	VideoModeActive bool
	VideoDeviceID   string
	WritingEnabled  bool

	startingBalance int
}

// GameOption configures a GameState during creation.
type GameOption func(*GameState)

// WithStartingBalance overrides the balance players start with and are reset to.
func WithStartingBalance(balance int) GameOption {
	return func(g *GameState) { g.startingBalance = balance }
}

// WithGameID sets a fixed game id.
func WithGameID(id string) GameOption {
	return func(g *GameState) { g.ID = id }
}

// NewGameState creates a game with one player per name. Player ids are
// player_0, player_1, ... in roster order. No round is started.
func NewGameState(names []string, opts ...GameOption) *GameState {
	g := &GameState{
		ID:              "game_" + uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		WritingEnabled:  true,
		RoundHistory:    []RoundResult{},
		startingBalance: StartingBalance,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.Players = make([]*Player, len(names))
	for i, name := range names {
		g.Players[i] = NewPlayerWithBalance(PlayerID(i), name, g.startingBalance)
	}
	return g
}

// PlayerID returns the id assigned to the player at a roster index.
func PlayerID(index int) string {
	return fmt.Sprintf("player_%d", index)
}

// StartingBalance returns the balance players start with in this game.
func (g *GameState) StartingBalance() int {
	return g.startingBalance
}

// Player looks a player up by id.
func (g *GameState) Player(id string) (*Player, error) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
}

// Round returns the current round or ErrNoActiveRound.
func (g *GameState) Round() (*Round, error) {
	if g.CurrentRound == nil {
		return nil, ErrNoActiveRound
	}
	return g.CurrentRound, nil
}

// StartNewRound installs round as the current round. Players out of money are
// marked inactive, then every player is reset for the round.
func (g *GameState) StartNewRound(round *Round) []Elimination {
	g.RoundNumber++

	var eliminated []Elimination
	for _, p := range g.Players {
		if p.Balance <= 0 && p.IsActive {
			p.IsActive = false
			eliminated = append(eliminated, Elimination{
				PlayerID: p.ID, Name: p.Name, Balance: p.Balance, Reason: ReasonBankrupt,
			})
		}
		p.ResetForRound()
	}

	g.CurrentRound = round
	return eliminated
}

// StartNextRound starts the round after the last one. It fails once the game
// is finished or every round has been played.
func (g *GameState) StartNextRound() ([]Elimination, error) {
	if g.IsFinished {
		return nil, ErrGameFinished
	}
	next := g.RoundNumber + 1
	if next > MaxRounds {
		return nil, fmt.Errorf("%w: round %d of %d", ErrRoundLimitReached, next, MaxRounds)
	}
	return g.StartNewRound(NewRound(next)), nil
}

// SetRoundNumber jumps to round n through the normal start path. A finished
// game stays finished until it is reset.
func (g *GameState) SetRoundNumber(n int) ([]Elimination, error) {
	if g.IsFinished {
		return nil, ErrGameFinished
	}
	if n < 1 || n > MaxRounds {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidRoundNumber, n, MaxRounds)
	}
	g.RoundNumber = n - 1
	return g.StartNewRound(NewRound(n)), nil
}

// CompleteRound pays the pot to the winner, records the result and applies
// elimination and game-end rules.
//
// A result naming a player that is not in the roster is a contract violation;
// it is returned as ErrPlayerNotFound and nothing is changed.
func (g *GameState) CompleteRound(result RoundResult) ([]Elimination, error) {
	winner, err := g.Player(result.WinnerID)
	if err != nil {
		return nil, fmt.Errorf("complete round: winner %w", err)
	}

	winner.WinPot(result.PotAmount)
	g.RoundHistory = append(g.RoundHistory, result)
	g.CurrentRound = nil

	var eliminated []Elimination
	for _, p := range g.Players {
		if p.Balance <= 0 && p.IsActive {
			p.IsActive = false
			eliminated = append(eliminated, Elimination{
				PlayerID: p.ID, Name: p.Name, Balance: p.Balance, Reason: ReasonBankrupt,
			})
		}
	}

	if g.RoundNumber == EliminationRound {
		if e, ok := g.narrowField(); ok {
			eliminated = append(eliminated, e)
		}
	}

	if g.RoundNumber >= MaxRounds || g.solventPlayers() <= 1 {
		g.IsFinished = true
	}

	return eliminated, nil
}

// narrowField deactivates the active player with the lowest balance when more
// than two active, solvent players remain. The earliest in roster order loses
// a tie.
func (g *GameState) narrowField() (Elimination, bool) {
	var candidates []*Player
	for _, p := range g.Players {
		if p.IsActive && p.Balance > 0 {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) <= 2 {
		return Elimination{}, false
	}

	loser := candidates[0]
	for _, p := range candidates[1:] {
		if p.Balance < loser.Balance {
			loser = p
		}
	}

	loser.IsActive = false
	return Elimination{
		PlayerID: loser.ID, Name: loser.Name, Balance: loser.Balance, Reason: ReasonLowestBalance,
	}, true
}

func (g *GameState) solventPlayers() int {
	count := 0
	for _, p := range g.Players {
		if !p.IsEliminated() {
			count++
		}
	}
	return count
}

// CollectInitialBets takes the current round's minimum bet from every eligible
// player.
func (g *GameState) CollectInitialBets() error {
	round, err := g.Round()
	if err != nil {
		return err
	}
	return round.CollectInitialBets(g.Players)
}

// SweepBetsToPot moves every player's current bet into the pot and returns the
// amount moved.
func (g *GameState) SweepBetsToPot() (int, error) {
	round, err := g.Round()
	if err != nil {
		return 0, err
	}
	return round.CollectBets(g.Players), nil
}

// PlaceBet processes a betting-phase bet for a player.
func (g *GameState) PlaceBet(playerID string, amount int) error {
	player, err := g.Player(playerID)
	if err != nil {
		return err
	}
	round, err := g.Round()
	if err != nil {
		return err
	}
	return round.ProcessBet(player, amount)
}

// Fold takes a player out of the current round. With deactivate the player is
// also marked inactive for later rounds.
func (g *GameState) Fold(playerID string, deactivate bool) error {
	player, err := g.Player(playerID)
	if err != nil {
		return err
	}
	if deactivate {
		player.Fold()
	} else {
		player.FoldRound()
	}
	return nil
}

// AdvancePhase moves the current round one phase forward.
func (g *GameState) AdvancePhase() (Phase, error) {
	round, err := g.Round()
	if err != nil {
		return Initial, err
	}
	return round.AdvancePhase(), nil
}

// CompleteCurrentRound determines the outcome of the current round and applies
// it. An empty winnerID picks the winner by correct answers; otherwise the
// named player wins.
func (g *GameState) CompleteCurrentRound(winnerID string) (RoundResult, []Elimination, error) {
	round, err := g.Round()
	if err != nil {
		return RoundResult{}, nil, err
	}

	var result RoundResult
	if winnerID != "" {
		winner, err := g.Player(winnerID)
		if err != nil {
			return RoundResult{}, nil, err
		}
		result = round.ResultFor(winner, g.Players)
	} else {
		result, err = round.DetermineWinner(g.Players)
		if err != nil {
			return RoundResult{}, nil, err
		}
	}

	eliminated, err := g.CompleteRound(result)
	if err != nil {
		return RoundResult{}, nil, err
	}
	return result, eliminated, nil
}

// Reset restores every player to the starting balance, clears their per-round
// state and starts round 1 without collecting bets.
func (g *GameState) Reset() {
	for _, p := range g.Players {
		p.Balance = g.startingBalance
		p.CurrentBet = 0
		p.HasFolded = false
		p.IsActive = true
		p.ClearAnswers()
	}

	g.RoundNumber = 0
	g.IsFinished = false
	g.StartNewRound(NewRound(1))
}

// SetPlayerActive lets the operator eliminate or reinstate a player.
func (g *GameState) SetPlayerActive(playerID string, active bool) error {
	player, err := g.Player(playerID)
	if err != nil {
		return err
	}
	player.IsActive = active
	return nil
}

// RenamePlayer changes a player's display name.
func (g *GameState) RenamePlayer(playerID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	player, err := g.Player(playerID)
	if err != nil {
		return err
	}
	player.Name = name
	return nil
}

// RevealQuestion toggles whether a question is shown to the audience.
func (g *GameState) RevealQuestion(questionNumber int) (bool, error) {
	round, err := g.Round()
	if err != nil {
		return false, err
	}
	return round.ToggleQuestion(questionNumber)
}

// ToggleVideoMode flips video mode. Turning it on disables writing; turning it
// off enables writing again. It returns the new video mode.
func (g *GameState) ToggleVideoMode() bool {
	g.VideoModeActive = !g.VideoModeActive
	g.WritingEnabled = !g.VideoModeActive
	return g.VideoModeActive
}

// SetWritingEnabled turns answer submission on or off. Writing cannot be
// turned on while video mode is active.
func (g *GameState) SetWritingEnabled(enabled bool) error {
	if enabled && g.VideoModeActive {
		return fmt.Errorf("%w: writing cannot be enabled while video mode is active", ErrOperationNotPermitted)
	}
	g.WritingEnabled = enabled
	return nil
}

// SubmitAnswer stores a player's answer. Submissions are refused while writing
// is disabled.
func (g *GameState) SubmitAnswer(playerID string, questionNumber int, imageData string) error {
	if !g.WritingEnabled {
		return fmt.Errorf("%w: writing is disabled", ErrOperationNotPermitted)
	}
	if questionNumber < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuestion, questionNumber)
	}
	player, err := g.Player(playerID)
	if err != nil {
		return err
	}
	player.AddAnswer(questionNumber, imageData)
	return nil
}

// ClearAnswers drops all answers of a player.
func (g *GameState) ClearAnswers(playerID string) error {
	player, err := g.Player(playerID)
	if err != nil {
		return err
	}
	player.ClearAnswers()
	return nil
}

// ApproveAnswer judges a player's answer. Judging a question without an answer
// is a no-op.
func (g *GameState) ApproveAnswer(playerID string, questionNumber int, correct bool) error {
	player, err := g.Player(playerID)
	if err != nil {
		return err
	}
	player.ApproveAnswer(questionNumber, correct)
	return nil
}

// Leaderboard returns the players by balance, highest first. Equal balances
// keep roster order.
func (g *GameState) Leaderboard() []*Player {
	board := make([]*Player, len(g.Players))
	copy(board, g.Players)
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Balance > board[j].Balance
	})
	return board
}

// Clone returns a deep copy of the game.
func (g *GameState) Clone() *GameState {
	c := *g
	c.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		c.Players[i] = p.Clone()
	}
	if g.CurrentRound != nil {
		c.CurrentRound = g.CurrentRound.Clone()
	}
	c.RoundHistory = cloneHistory(g.RoundHistory)
	return &c
}

func cloneHistory(history []RoundResult) []RoundResult {
	c := make([]RoundResult, len(history))
	for i, r := range history {
		r.PlayerScores = append([]PlayerScore(nil), r.PlayerScores...)
		c[i] = r
	}
	return c
}
