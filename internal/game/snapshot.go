package game

import (
	"sort"
	"time"
)

// Snapshot is a serializable copy of a game, detached from the live state.
type Snapshot struct {
	GameID          string           `json:"game_id"`
	Players         []PlayerSnapshot `json:"players"`
	CurrentRound    *RoundSnapshot   `json:"current_round"`
	RoundNumber     int              `json:"round_number"`
	RoundHistory    []RoundResult    `json:"round_history"`
	CreatedAt       time.Time        `json:"created_at"`
	IsFinished      bool             `json:"is_finished"`
	VideoModeActive bool             `json:"video_mode_active"`
	VideoDeviceID   *string          `json:"video_device_id"`
	WritingEnabled  bool             `json:"writing_enabled"`
}

// PlayerSnapshot is a serializable copy of a player.
type PlayerSnapshot struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Balance    int      `json:"balance"`
	CurrentBet int      `json:"current_bet"`
	Answers    []Answer `json:"answers"`
	IsActive   bool     `json:"is_active"`
	HasFolded  bool     `json:"has_folded"`
}

// RoundSnapshot is a serializable copy of a round.
type RoundSnapshot struct {
	RoundNumber       int   `json:"round_number"`
	QuestionsCount    int   `json:"questions_count"`
	Pot               int   `json:"pot"`
	MinBet            int   `json:"min_bet"`
	Phase             Phase `json:"phase"`
	RevealedQuestions []int `json:"revealed_questions"`
}

// Snapshot copies the game into its serializable form.
func (g *GameState) Snapshot() *Snapshot {
	s := &Snapshot{
		GameID:          g.ID,
		Players:         make([]PlayerSnapshot, len(g.Players)),
		RoundNumber:     g.RoundNumber,
		RoundHistory:    cloneHistory(g.RoundHistory),
		CreatedAt:       g.CreatedAt,
		IsFinished:      g.IsFinished,
		VideoModeActive: g.VideoModeActive,
		WritingEnabled:  g.WritingEnabled,
	}
	if g.VideoDeviceID != "" {
		id := g.VideoDeviceID
		s.VideoDeviceID = &id
	}

	for i, p := range g.Players {
		s.Players[i] = p.Snapshot()
	}

	if r := g.CurrentRound; r != nil {
		s.CurrentRound = &RoundSnapshot{
			RoundNumber:       r.Number,
			QuestionsCount:    r.QuestionsCount,
			Pot:               r.Pot,
			MinBet:            r.MinBet,
			Phase:             r.Phase,
			RevealedQuestions: append([]int{}, r.RevealedQuestions...),
		}
	}
	return s
}

// Snapshot copies the player into its serializable form.
func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:         p.ID,
		Name:       p.Name,
		Balance:    p.Balance,
		CurrentBet: p.CurrentBet,
		Answers:    p.SortedAnswers(),
		IsActive:   p.IsActive,
		HasFolded:  p.HasFolded,
	}
}

// Pot returns the current round's pot, or 0 between rounds.
func (s *Snapshot) Pot() int {
	if s.CurrentRound == nil {
		return 0
	}
	return s.CurrentRound.Pot
}

// Player looks a player up by id.
func (s *Snapshot) Player(id string) (PlayerSnapshot, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}

// Balances returns the first n balances in roster order, padding missing
// players with zero.
func (s *Snapshot) Balances(n int) []int {
	balances := make([]int, n)
	for i := 0; i < n && i < len(s.Players); i++ {
		balances[i] = s.Players[i].Balance
	}
	return balances
}

// Leaderboard returns the players by balance, highest first, ties in roster
// order.
func (s *Snapshot) Leaderboard() []PlayerSnapshot {
	board := append([]PlayerSnapshot(nil), s.Players...)
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Balance > board[j].Balance
	})
	return board
}
