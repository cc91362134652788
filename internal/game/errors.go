package game

import "errors"

// Errors returned by game operations. Callers match them with errors.Is; most
// are returned wrapped with additional context.
var (
	ErrNoActiveGame          = errors.New("no active game")
	ErrNoActiveRound         = errors.New("no active round")
	ErrPlayerNotFound        = errors.New("player not found")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInvalidBetAmount      = errors.New("invalid bet amount")
	ErrOperationNotPermitted = errors.New("operation not permitted")
	ErrGameFinished          = errors.New("game is finished")
	ErrRoundLimitReached     = errors.New("round limit reached")
	ErrWinnerNotDeterminable = errors.New("winner cannot be determined")
	ErrInvalidQuestion       = errors.New("invalid question number")
	ErrInvalidRoundNumber    = errors.New("invalid round number")
	ErrInvalidName           = errors.New("invalid player name")
	ErrNothingToUndo         = errors.New("nothing to undo")
)
