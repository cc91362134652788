package game

import (
	"encoding/json"
	"fmt"
)

// RoundResult is the outcome of a completed round. It is never modified after
// being appended to the game's history.
type RoundResult struct {
	RoundNumber    int           `json:"round_number"`
	WinnerID       string        `json:"winner_id"`
	WinnerName     string        `json:"winner_name"`
	PotAmount      int           `json:"pot_amount"`
	CorrectAnswers int           `json:"correct_answers"`
	PlayerScores   []PlayerScore `json:"player_scores"`
}

// PlayerScore is one eligible player's correct-answer count
type PlayerScore struct {
	PlayerID string
	Correct  int
}

// MarshalJSON encodes the score as a [player_id, correct] pair
func (s PlayerScore) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{s.PlayerID, s.Correct})
}

// UnmarshalJSON decodes a [player_id, correct] pair
func (s *PlayerScore) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("player score: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &s.PlayerID); err != nil {
		return fmt.Errorf("player score id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &s.Correct); err != nil {
		return fmt.Errorf("player score count: %w", err)
	}
	return nil
}

// Elimination records a player dropping out of the game
type Elimination struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Balance  int    `json:"balance"`
	Reason   string `json:"reason"`
}

// Elimination reasons
const (
	ReasonBankrupt      = "bankrupt"
	ReasonLowestBalance = "lowest_balance"
)
