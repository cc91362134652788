package game

import (
	"fmt"
	"slices"
)

// Round is one betting cycle with its own pot
type Round struct {
	Number            int
	QuestionsCount    int
	Pot               int
	MinBet            int
	Phase             Phase
	RevealedQuestions []int // in reveal order
}

// NewRound creates a round in the Initial phase with the scheduled minimum bet
func NewRound(number int) *Round {
	return &Round{
		Number:            number,
		QuestionsCount:    QuestionsPerRound,
		MinBet:            MinimumBet(number),
		Phase:             Initial,
		RevealedQuestions: []int{},
	}
}

// eligibleForForcedBet reports whether a player pays the round's minimum bet
func eligibleForForcedBet(p *Player) bool {
	return p.IsActive && !p.IsEliminated()
}

// CollectInitialBets moves the minimum bet of every active, solvent player into
// their current bet. The pot is not touched; sweeping is a separate step.
//
// Affordability is checked for every eligible player before anyone is debited,
// so a failure leaves all players and the phase unchanged.
func (r *Round) CollectInitialBets(players []*Player) error {
	for _, p := range players {
		if eligibleForForcedBet(p) && p.Balance < r.MinBet {
			return fmt.Errorf("%w: %s cannot cover minimum bet %d with balance %d",
				ErrInsufficientFunds, p.Name, r.MinBet, p.Balance)
		}
	}

	for _, p := range players {
		if !eligibleForForcedBet(p) {
			continue
		}
		if err := p.PlaceBet(r.MinBet); err != nil {
			return err
		}
	}

	r.Phase = CollectingBets
	return nil
}

// AdvancePhase moves exactly one step forward and returns the new phase
func (r *Round) AdvancePhase() Phase {
	r.Phase = r.Phase.Next()
	return r.Phase
}

// ToggleQuestion reveals a hidden question or hides a revealed one. It returns
// whether the question is revealed afterwards.
func (r *Round) ToggleQuestion(questionNumber int) (bool, error) {
	if questionNumber < 1 || questionNumber > r.QuestionsCount {
		return false, fmt.Errorf("%w: %d (round has %d questions)", ErrInvalidQuestion, questionNumber, r.QuestionsCount)
	}

	if i := slices.Index(r.RevealedQuestions, questionNumber); i >= 0 {
		r.RevealedQuestions = slices.Delete(r.RevealedQuestions, i, i+1)
		return false, nil
	}

	r.RevealedQuestions = append(r.RevealedQuestions, questionNumber)
	return true, nil
}

// eligibleForWin reports whether a player takes part in winner determination
func eligibleForWin(p *Player) bool {
	return p.IsActive && !p.HasFolded
}

// DetermineWinner picks the eligible player with the most correct answers.
// Ties go to the player earliest in roster order.
func (r *Round) DetermineWinner(players []*Player) (RoundResult, error) {
	var winner *Player
	best := -1
	scores := make([]PlayerScore, 0, len(players))

	for _, p := range players {
		if !eligibleForWin(p) {
			continue
		}
		correct := p.CountCorrectAnswers()
		scores = append(scores, PlayerScore{PlayerID: p.ID, Correct: correct})
		if correct > best {
			best = correct
			winner = p
		}
	}

	if winner == nil {
		return RoundResult{}, fmt.Errorf("%w: no active players left in round %d", ErrWinnerNotDeterminable, r.Number)
	}

	// highest score first, roster order within equal scores
	slices.SortStableFunc(scores, func(a, b PlayerScore) int {
		return b.Correct - a.Correct
	})

	return RoundResult{
		RoundNumber:    r.Number,
		WinnerID:       winner.ID,
		WinnerName:     winner.Name,
		PotAmount:      r.Pot,
		CorrectAnswers: best,
		PlayerScores:   scores,
	}, nil
}

// ResultFor builds the outcome for an operator-chosen winner. Scores cover the
// eligible players in roster order.
func (r *Round) ResultFor(winner *Player, players []*Player) RoundResult {
	scores := make([]PlayerScore, 0, len(players))
	for _, p := range players {
		if eligibleForWin(p) {
			scores = append(scores, PlayerScore{PlayerID: p.ID, Correct: p.CountCorrectAnswers()})
		}
	}

	return RoundResult{
		RoundNumber:    r.Number,
		WinnerID:       winner.ID,
		WinnerName:     winner.Name,
		PotAmount:      r.Pot,
		CorrectAnswers: winner.CountCorrectAnswers(),
		PlayerScores:   scores,
	}
}

// Clone returns a deep copy of the round
func (r *Round) Clone() *Round {
	c := *r
	c.RevealedQuestions = slices.Clone(r.RevealedQuestions)
	if c.RevealedQuestions == nil {
		c.RevealedQuestions = []int{}
	}
	return &c
}
