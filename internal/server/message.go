package server

import (
	"encoding/json"
	"time"

	"github.com/mduijf/mhmot/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// ErrorData is the body of every error response
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GameEventData carries a formatted game event to the views
type GameEventData struct {
	Event   game.EventType `json:"event"`
	Summary string         `json:"summary"`
	Data    any            `json:"data,omitempty"`
}

// Request bodies of the command API

type StartGameData struct {
	PlayerNames []string `json:"player_names"`
}

type PlayerData struct {
	PlayerID string `json:"player_id"`
}

type BetData struct {
	PlayerID string `json:"player_id"`
	Amount   int    `json:"amount"`
}

type CompleteRoundData struct {
	WinnerID string `json:"winner_id,omitempty"` // empty picks the winner by correct answers
}

type PlayerActiveData struct {
	PlayerID string `json:"player_id"`
	IsActive bool   `json:"is_active"`
}

type PlayerNameData struct {
	PlayerID string `json:"player_id"`
	NewName  string `json:"new_name"`
}

type QuestionData struct {
	QuestionNumber int `json:"question_number"`
}

type RoundNumberData struct {
	RoundNumber int `json:"round_number"`
}

type WritingData struct {
	Enabled bool `json:"enabled"`
}

type VideoDeviceData struct {
	DeviceID string `json:"device_id"`
}

type AnswerData struct {
	PlayerID       string `json:"player_id"`
	QuestionNumber int    `json:"question_number"`
	ImageData      string `json:"image_data"`
}

type ApproveAnswerData struct {
	PlayerID       string `json:"player_id"`
	QuestionNumber int    `json:"question_number"`
	IsCorrect      bool   `json:"is_correct"`
}

type TimerData struct {
	Seconds int `json:"seconds"`
}

type DisplayValuesData struct {
	Values *[4]int `json:"values,omitempty"` // three balances and the pot; empty uses the game
}
