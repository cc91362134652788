package server

import (
	"errors"
	"net/http"

	"github.com/mduijf/mhmot/internal/display"
	"github.com/mduijf/mhmot/internal/game"
	"github.com/mduijf/mhmot/internal/timer"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidRequest = errors.New("invalid request body")
)

type errorCode struct {
	err    error
	code   string
	status int
}

// errorCodes maps sentinel errors to the stable codes clients switch on
var errorCodes = []errorCode{
	{game.ErrNoActiveGame, "no_active_game", http.StatusNotFound},
	{game.ErrNoActiveRound, "no_active_round", http.StatusConflict},
	{game.ErrPlayerNotFound, "player_not_found", http.StatusNotFound},
	{game.ErrInsufficientFunds, "insufficient_funds", http.StatusConflict},
	{game.ErrInvalidBetAmount, "invalid_bet_amount", http.StatusBadRequest},
	{game.ErrOperationNotPermitted, "operation_not_permitted", http.StatusConflict},
	{game.ErrGameFinished, "game_finished", http.StatusConflict},
	{game.ErrRoundLimitReached, "round_limit_reached", http.StatusConflict},
	{game.ErrWinnerNotDeterminable, "winner_not_determinable", http.StatusConflict},
	{game.ErrInvalidQuestion, "invalid_question", http.StatusBadRequest},
	{game.ErrInvalidRoundNumber, "invalid_round_number", http.StatusBadRequest},
	{game.ErrInvalidName, "invalid_name", http.StatusBadRequest},
	{game.ErrNothingToUndo, "nothing_to_undo", http.StatusConflict},
	{timer.ErrInvalidDuration, "invalid_duration", http.StatusBadRequest},
	{display.ErrNotConnected, "display_not_connected", http.StatusConflict},
	{ErrUnknownCommand, "unknown_command", http.StatusNotFound},
	{ErrInvalidRequest, "invalid_request", http.StatusBadRequest},
	{ErrUnavailable, "unavailable", http.StatusServiceUnavailable},
}

// classify returns the HTTP status and error body for err. Unknown errors
// are internal.
func classify(err error) (int, ErrorData) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.status, ErrorData{Code: ec.code, Message: err.Error()}
		}
	}
	return http.StatusInternalServerError, ErrorData{Code: "internal_error", Message: err.Error()}
}
