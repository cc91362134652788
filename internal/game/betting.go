package game

import (
	"bytes"
	"fmt"
	"strconv"
)

// Phase is a step in a round's betting flow
type Phase int

const (
	Initial          Phase = iota // players write their answers
	CollectingBets                // forced minimum bets are taken
	FirstBetting                  // first betting round
	RevealingAnswers              // answers are shown one by one
	SecondBetting                 // second betting round
	DetermineWinner               // winner is picked
	Completed                     // terminal
)

var phaseNames = [...]string{
	"Initial",
	"CollectingBets",
	"FirstBetting",
	"RevealingAnswers",
	"SecondBetting",
	"DetermineWinner",
	"Completed",
}

func (p Phase) String() string {
	if p < Initial || p > Completed {
		return "Phase(" + strconv.Itoa(int(p)) + ")"
	}
	return phaseNames[p]
}

// Next returns the phase that follows p. Completed is its own successor.
func (p Phase) Next() Phase {
	switch p {
	case Initial:
		return CollectingBets
	case CollectingBets:
		return FirstBetting
	case FirstBetting:
		return RevealingAnswers
	case RevealingAnswers:
		return SecondBetting
	case SecondBetting:
		return DetermineWinner
	default:
		return Completed
	}
}

// IsBetting reports whether the phase is one of the two betting rounds
func (p Phase) IsBetting() bool {
	return p == FirstBetting || p == SecondBetting
}

// MarshalJSON encodes the phase by name
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// UnmarshalJSON decodes a phase name
func (p *Phase) UnmarshalJSON(data []byte) error {
	name, err := strconv.Unquote(string(bytes.TrimSpace(data)))
	if err != nil {
		return fmt.Errorf("invalid phase %s: %w", data, err)
	}
	parsed, err := ParsePhase(name)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase looks a phase up by name
func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return Initial, fmt.Errorf("unknown phase %q", name)
}

// Betting limits
const (
	MinBetAmount = 10 // smallest bet a player can place during a betting phase
	MaxBetAmount = 50 // largest bet a player can place during a betting phase
)

// Round structure
const (
	QuestionsPerRound = 4
	MaxRounds         = 7
	EliminationRound  = 4 // after this round the field is narrowed
)

// MinimumBet returns the forced bet for a round number: 10, 20, 40, then 80
// from round 4 onwards.
func MinimumBet(roundNumber int) int {
	switch roundNumber {
	case 1:
		return 10
	case 2:
		return 20
	case 3:
		return 40
	default:
		return 80
	}
}

// ValidateBetAmount checks a betting-phase bet against the fixed bounds
func ValidateBetAmount(amount int) error {
	if amount < MinBetAmount || amount > MaxBetAmount {
		return fmt.Errorf("%w: %d is outside %d-%d", ErrInvalidBetAmount, amount, MinBetAmount, MaxBetAmount)
	}
	return nil
}
