package server

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mduijf/mhmot/internal/game"
)

// GameService owns the single game of the process. Every operation holds the
// lock for its whole duration. Events are published after it is released, in
// the order the operations took the lock; subscribers must not call back into
// the service.
type GameService struct {
	mu        sync.Mutex
	publishMu sync.Mutex
	game      *game.GameState // nil until the first game starts
	previous  *game.GameState // state before the last operator command
	sinceUndo []submission    // answers submitted after the undo point

	settings GameSettings
	eventBus game.EventBus
	logger   *log.Logger
}

// NewGameService creates a service without a game
func NewGameService(settings GameSettings, eventBus game.EventBus, logger *log.Logger) *GameService {
	if settings.StartingBalance == 0 {
		settings.StartingBalance = game.StartingBalance
	}
	return &GameService{
		settings: settings,
		eventBus: eventBus,
		logger:   logger.WithPrefix("game"),
	}
}

type submission struct {
	playerID       string
	questionNumber int
	imageData      string
}

func (s *GameService) foldDeactivates() bool {
	return s.settings.FoldDeactivates == nil || *s.settings.FoldDeactivates
}

// change runs fn against the current game under the lock. With undoable set,
// the pre-command state becomes the undo point once fn succeeds. The
// snapshot taken under the lock is returned and published.
func (s *GameService) change(command string, undoable bool, fn func(g *game.GameState) ([]game.GameEvent, error)) (*game.Snapshot, error) {
	s.mu.Lock()
	if s.game == nil {
		s.mu.Unlock()
		return nil, game.ErrNoActiveGame
	}

	var before *game.GameState
	if undoable {
		before = s.game.Clone()
	}
	wasFinished := s.game.IsFinished

	events, err := fn(s.game)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("Command failed", "command", command, "error", err)
		return nil, err
	}

	if undoable {
		s.previous = before
		s.sinceUndo = nil
	}
	snap := s.game.Snapshot()
	if !wasFinished && s.game.IsFinished {
		events = append(events, game.NewGameFinishedEvent(s.game))
	}
	s.unlockAndPublish(command, snap, events)
	return snap, nil
}

// unlockAndPublish releases the game lock and publishes. Taking publishMu
// before releasing mu keeps publication in lock order, so subscribers always
// end on the latest state.
func (s *GameService) unlockAndPublish(command string, snap *game.Snapshot, events []game.GameEvent) {
	s.publishMu.Lock()
	s.mu.Unlock()
	defer s.publishMu.Unlock()
	s.publish(command, snap, events)
}

func (s *GameService) publish(command string, snap *game.Snapshot, events []game.GameEvent) {
	if s.eventBus == nil {
		return
	}
	for _, event := range events {
		s.logger.Info(game.FormatEvent(event))
		s.eventBus.Publish(event)
	}
	s.eventBus.Publish(game.NewStateChangedEvent(command, snap))
}

func eliminationEvents(roundNumber int, eliminated []game.Elimination) []game.GameEvent {
	events := make([]game.GameEvent, 0, len(eliminated))
	for _, e := range eliminated {
		events = append(events, game.NewPlayerEliminatedEvent(roundNumber, e))
	}
	return events
}

// StartGame replaces any current game with a new one and starts round 1
// without collecting bets. An empty name list uses the configured players.
func (s *GameService) StartGame(names []string) (*game.Snapshot, error) {
	if len(names) == 0 {
		names = s.settings.Players
	}
	cleaned := make([]string, len(names))
	for i, name := range names {
		cleaned[i] = strings.TrimSpace(name)
		if cleaned[i] == "" {
			return nil, fmt.Errorf("%w: player %d has no name", game.ErrInvalidName, i+1)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: no players", game.ErrInvalidName)
	}

	g := game.NewGameState(cleaned, game.WithStartingBalance(s.settings.StartingBalance))
	g.StartNewRound(game.NewRound(1))

	s.mu.Lock()
	s.previous = s.game
	s.sinceUndo = nil
	s.game = g
	snap := g.Snapshot()
	s.logger.Info("Game started", "game", g.ID, "players", len(cleaned), "balance", s.settings.StartingBalance)
	s.unlockAndPublish("start_game", snap, nil)
	return snap, nil
}

// Snapshot returns the current game, or nil when there is none
func (s *GameService) Snapshot() *game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil
	}
	return s.game.Snapshot()
}

// GameState returns the current game or ErrNoActiveGame
func (s *GameService) GameState() (*game.Snapshot, error) {
	if snap := s.Snapshot(); snap != nil {
		return snap, nil
	}
	return nil, game.ErrNoActiveGame
}

// Leaderboard returns the players by balance, highest first
func (s *GameService) Leaderboard() ([]game.PlayerSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil, game.ErrNoActiveGame
	}

	board := s.game.Leaderboard()
	out := make([]game.PlayerSnapshot, len(board))
	for i, p := range board {
		out[i] = p.Snapshot()
	}
	return out, nil
}

// StartNextRound starts the following round without collecting bets
func (s *GameService) StartNextRound() (*game.Snapshot, error) {
	return s.change("start_next_round", true, func(g *game.GameState) ([]game.GameEvent, error) {
		eliminated, err := g.StartNextRound()
		if err != nil {
			return nil, err
		}
		s.logger.Info("Round started", "round", g.RoundNumber, "min_bet", g.CurrentRound.MinBet)
		return eliminationEvents(g.RoundNumber-1, eliminated), nil
	})
}

// SetRoundNumber jumps to round n
func (s *GameService) SetRoundNumber(n int) (*game.Snapshot, error) {
	return s.change("set_round_number", true, func(g *game.GameState) ([]game.GameEvent, error) {
		eliminated, err := g.SetRoundNumber(n)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Round number set", "round", n)
		return eliminationEvents(n-1, eliminated), nil
	})
}

// CollectInitialBets takes the minimum bet from every eligible player
func (s *GameService) CollectInitialBets() (*game.Snapshot, error) {
	return s.change("collect_initial_bets", true, func(g *game.GameState) ([]game.GameEvent, error) {
		if err := g.CollectInitialBets(); err != nil {
			return nil, err
		}
		s.logger.Info("Initial bets collected", "round", g.RoundNumber, "amount", g.CurrentRound.MinBet)
		return nil, nil
	})
}

// SweepBetsToPot moves all current bets into the pot
func (s *GameService) SweepBetsToPot() (*game.Snapshot, error) {
	return s.change("sweep_bets_to_pot", true, func(g *game.GameState) ([]game.GameEvent, error) {
		moved, err := g.SweepBetsToPot()
		if err != nil {
			return nil, err
		}
		s.logger.Info("Bets added to pot", "moved", moved, "pot", g.CurrentRound.Pot)
		return nil, nil
	})
}

// PlaceBet processes a betting-phase bet
func (s *GameService) PlaceBet(playerID string, amount int) (*game.Snapshot, error) {
	return s.change("place_bet", true, func(g *game.GameState) ([]game.GameEvent, error) {
		if err := g.PlaceBet(playerID, amount); err != nil {
			return nil, err
		}
		s.logger.Info("Bet placed", "player", playerID, "amount", amount, "pot", g.CurrentRound.Pot)
		return nil, nil
	})
}

// Fold takes a player out of the round, and out of the game when configured
func (s *GameService) Fold(playerID string) (*game.Snapshot, error) {
	deactivate := s.foldDeactivates()
	return s.change("fold", true, func(g *game.GameState) ([]game.GameEvent, error) {
		if err := g.Fold(playerID, deactivate); err != nil {
			return nil, err
		}
		s.logger.Info("Player folded", "player", playerID, "deactivated", deactivate)
		return nil, nil
	})
}

// AdvancePhase moves the round one phase forward
func (s *GameService) AdvancePhase() (*game.Snapshot, error) {
	return s.change("advance_phase", true, func(g *game.GameState) ([]game.GameEvent, error) {
		phase, err := g.AdvancePhase()
		if err != nil {
			return nil, err
		}
		s.logger.Info("Phase advanced", "round", g.RoundNumber, "phase", phase)
		return nil, nil
	})
}

// CompleteRound pays out the pot. An empty winnerID picks the winner by
// correct answers.
func (s *GameService) CompleteRound(winnerID string) (*game.Snapshot, error) {
	return s.change("complete_round", true, func(g *game.GameState) ([]game.GameEvent, error) {
		result, eliminated, err := g.CompleteCurrentRound(winnerID)
		if err != nil {
			return nil, err
		}

		events := []game.GameEvent{game.NewRoundCompletedEvent(g.ID, result)}
		return append(events, eliminationEvents(result.RoundNumber, eliminated)...), nil
	})
}

// ResetGame restores starting balances and restarts at round 1
func (s *GameService) ResetGame() (*game.Snapshot, error) {
	return s.change("reset_game", true, func(g *game.GameState) ([]game.GameEvent, error) {
		g.Reset()
		s.logger.Info("Game reset", "game", g.ID)
		return nil, nil
	})
}

// TogglePlayerActive eliminates or reinstates a player
func (s *GameService) TogglePlayerActive(playerID string, active bool) (*game.Snapshot, error) {
	return s.change("toggle_player_active", true, func(g *game.GameState) ([]game.GameEvent, error) {
		if err := g.SetPlayerActive(playerID, active); err != nil {
			return nil, err
		}
		s.logger.Info("Player activity changed", "player", playerID, "active", active)
		return nil, nil
	})
}

// UpdatePlayerName renames a player
func (s *GameService) UpdatePlayerName(playerID, name string) (*game.Snapshot, error) {
	return s.change("update_player_name", true, func(g *game.GameState) ([]game.GameEvent, error) {
		return nil, g.RenamePlayer(playerID, name)
	})
}

// RevealQuestion toggles a question's visibility
func (s *GameService) RevealQuestion(questionNumber int) (*game.Snapshot, error) {
	return s.change("reveal_question", true, func(g *game.GameState) ([]game.GameEvent, error) {
		shown, err := g.RevealQuestion(questionNumber)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Question visibility changed", "question", questionNumber, "revealed", shown)
		return nil, nil
	})
}

// ToggleVideoMode flips video mode, which also switches writing
func (s *GameService) ToggleVideoMode() (*game.Snapshot, error) {
	return s.change("toggle_video_mode", true, func(g *game.GameState) ([]game.GameEvent, error) {
		on := g.ToggleVideoMode()
		s.logger.Info("Video mode toggled", "active", on, "writing", g.WritingEnabled)
		return nil, nil
	})
}

// SetVideoDevice records which capture device the views should show. An empty
// id clears it.
func (s *GameService) SetVideoDevice(deviceID string) (*game.Snapshot, error) {
	return s.change("set_video_device", true, func(g *game.GameState) ([]game.GameEvent, error) {
		g.VideoDeviceID = strings.TrimSpace(deviceID)
		return nil, nil
	})
}

// SetWritingEnabled opens or closes answer submission
func (s *GameService) SetWritingEnabled(enabled bool) (*game.Snapshot, error) {
	return s.change("set_writing_enabled", true, func(g *game.GameState) ([]game.GameEvent, error) {
		if err := g.SetWritingEnabled(enabled); err != nil {
			return nil, err
		}
		s.logger.Info("Writing toggled", "enabled", enabled)
		return nil, nil
	})
}

// SubmitAnswer stores a player's drawing. Submissions come from the player
// views and do not replace the operator's undo point.
func (s *GameService) SubmitAnswer(playerID string, questionNumber int, imageData string) (*game.Snapshot, error) {
	return s.change("submit_answer", false, func(g *game.GameState) ([]game.GameEvent, error) {
		if err := g.SubmitAnswer(playerID, questionNumber, imageData); err != nil {
			return nil, err
		}
		if s.previous != nil {
			s.sinceUndo = append(s.sinceUndo, submission{playerID, questionNumber, imageData})
		}
		s.logger.Debug("Answer submitted", "player", playerID, "question", questionNumber, "bytes", len(imageData))
		return nil, nil
	})
}

// ClearAnswers drops a player's answers
func (s *GameService) ClearAnswers(playerID string) (*game.Snapshot, error) {
	return s.change("clear_answers", true, func(g *game.GameState) ([]game.GameEvent, error) {
		return nil, g.ClearAnswers(playerID)
	})
}

// ApproveAnswer judges a player's answer
func (s *GameService) ApproveAnswer(playerID string, questionNumber int, correct bool) (*game.Snapshot, error) {
	return s.change("approve_answer", true, func(g *game.GameState) ([]game.GameEvent, error) {
		if err := g.ApproveAnswer(playerID, questionNumber, correct); err != nil {
			return nil, err
		}
		s.logger.Info("Answer judged", "player", playerID, "question", questionNumber, "correct", correct)
		return nil, nil
	})
}

// Undo restores the state before the last operator command. There is a
// single undo level. Answers the players submitted after that command are
// applied again to the restored game.
func (s *GameService) Undo() (*game.Snapshot, error) {
	s.mu.Lock()
	if s.previous == nil {
		s.mu.Unlock()
		return nil, game.ErrNothingToUndo
	}
	restored := s.previous
	replayed := 0
	if s.game != nil && restored.ID == s.game.ID {
		for _, sub := range s.sinceUndo {
			if p, err := restored.Player(sub.playerID); err == nil {
				p.AddAnswer(sub.questionNumber, sub.imageData)
				replayed++
			}
		}
	}
	s.game = restored
	s.previous = nil
	s.sinceUndo = nil
	snap := s.game.Snapshot()
	s.logger.Info("Last action undone", "round", snap.RoundNumber, "answers_kept", replayed)
	s.unlockAndPublish("undo_last_action", snap, nil)
	return snap, nil
}
