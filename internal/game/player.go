package game

import (
	"bytes"
	"fmt"
	"sort"
	"time"
)

// StartingBalance is what every player holds when a game starts or is reset.
const StartingBalance = 750

// Judgement is the quizmaster's verdict on a submitted answer.
type Judgement int

const (
	Unjudged Judgement = iota
	Correct
	Incorrect
)

func (j Judgement) String() string {
	return [...]string{"unjudged", "correct", "incorrect"}[j]
}

// MarshalJSON encodes the judgement the way the player views expect it:
// null while unjudged, otherwise a boolean.
func (j Judgement) MarshalJSON() ([]byte, error) {
	switch j {
	case Correct:
		return []byte("true"), nil
	case Incorrect:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (j *Judgement) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*j = Correct
	case "false":
		*j = Incorrect
	case "null":
		*j = Unjudged
	default:
		return fmt.Errorf("invalid judgement %q", data)
	}
	return nil
}

// Answer is a drawn answer for one question.
type Answer struct {
	QuestionNumber int       `json:"question_number"`
	ImageData      string    `json:"image_data"`
	Judgement      Judgement `json:"is_correct"`
	Timestamp      time.Time `json:"timestamp"`
}

// Player is one contestant.
type Player struct {
	ID         string
	Name       string
	Balance    int
	CurrentBet int // wagered but not yet swept into the pot
	Answers    map[int]*Answer
	IsActive   bool // still in the game
	HasFolded  bool // out of this round's winner determination
}

// NewPlayer creates an active player with the starting balance.
func NewPlayer(id, name string) *Player {
	return NewPlayerWithBalance(id, name, StartingBalance)
}

// NewPlayerWithBalance creates an active player with a custom balance.
func NewPlayerWithBalance(id, name string, balance int) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Balance:  balance,
		Answers:  make(map[int]*Answer),
		IsActive: true,
	}
}

// PlaceBet moves amount from the balance into the current bet. The two fields
// change together or not at all.
func (p *Player) PlaceBet(amount int) error {
	if err := p.Debit(amount); err != nil {
		return err
	}
	p.CurrentBet += amount
	return nil
}

// Debit takes amount from the balance. A bet can never push the balance below
// zero.
func (p *Player) Debit(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBetAmount, amount)
	}
	if amount > p.Balance {
		return fmt.Errorf("%w: %s bets %d with balance %d", ErrInsufficientFunds, p.Name, amount, p.Balance)
	}
	p.Balance -= amount
	return nil
}

// Fold takes the player out of the current round and also marks them
// inactive, so they stay out of later rounds until the operator reactivates
// them.
func (p *Player) Fold() {
	p.HasFolded = true
	p.IsActive = false
}

// FoldRound takes the player out of the current round only.
func (p *Player) FoldRound() {
	p.HasFolded = true
}

// WinPot credits the player with the pot.
func (p *Player) WinPot(amount int) {
	p.Balance += amount
}

// AddAnswer stores or replaces the answer for a question. A replaced answer
// keeps its earlier judgement.
func (p *Player) AddAnswer(questionNumber int, imageData string) {
	now := time.Now().UTC()

	if existing, ok := p.Answers[questionNumber]; ok {
		existing.ImageData = imageData
		existing.Timestamp = now
		return
	}

	p.Answers[questionNumber] = &Answer{
		QuestionNumber: questionNumber,
		ImageData:      imageData,
		Judgement:      Unjudged,
		Timestamp:      now,
	}
}

// ApproveAnswer records the verdict for an existing answer. It reports whether
// an answer for the question existed.
func (p *Player) ApproveAnswer(questionNumber int, correct bool) bool {
	answer, ok := p.Answers[questionNumber]
	if !ok {
		return false
	}

	if correct {
		answer.Judgement = Correct
	} else {
		answer.Judgement = Incorrect
	}
	return true
}

// ClearAnswers drops every submitted answer.
func (p *Player) ClearAnswers() {
	p.Answers = make(map[int]*Answer)
}

// CountCorrectAnswers returns how many answers were judged correct.
func (p *Player) CountCorrectAnswers() int {
	count := 0
	for _, a := range p.Answers {
		if a.Judgement == Correct {
			count++
		}
	}
	return count
}

// ResetForRound clears per-round state. IsActive is deliberately untouched:
// only elimination and the operator change it.
func (p *Player) ResetForRound() {
	p.CurrentBet = 0
	p.ClearAnswers()
	p.HasFolded = false
}

// IsEliminated reports whether the player is out of money.
func (p *Player) IsEliminated() bool {
	return p.Balance <= 0
}

// SortedAnswers returns copies of the answers ordered by question number.
func (p *Player) SortedAnswers() []Answer {
	answers := make([]Answer, 0, len(p.Answers))
	for _, a := range p.Answers {
		answers = append(answers, *a)
	}
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].QuestionNumber < answers[j].QuestionNumber
	})
	return answers
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() *Player {
	c := *p
	c.Answers = make(map[int]*Answer, len(p.Answers))
	for q, a := range p.Answers {
		copied := *a
		c.Answers[q] = &copied
	}
	return &c
}
