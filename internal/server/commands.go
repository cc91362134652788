package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/mduijf/mhmot/internal/display"
	"github.com/mduijf/mhmot/internal/game"
	"github.com/mduijf/mhmot/internal/timer"
)

// ErrUnavailable is returned by commands whose component is not configured
var ErrUnavailable = errors.New("feature not available")

// commandFunc runs one operator command with its raw JSON arguments
type commandFunc func(ctx context.Context, args json.RawMessage) (any, error)

// noArgs adapts a command without arguments
func noArgs(fn func() (any, error)) commandFunc {
	return func(_ context.Context, _ json.RawMessage) (any, error) {
		return fn()
	}
}

// withArgs decodes the arguments into T before running fn. A missing body
// decodes as the zero value.
func withArgs[T any](fn func(ctx context.Context, args T) (any, error)) commandFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args T
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
			}
		}
		return fn(ctx, args)
	}
}

// snapshot drops the typed nil so a missing game encodes as null
func snapshot(snap *game.Snapshot, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// buildCommands returns the operator command table
func (a *API) buildCommands() map[string]commandFunc {
	svc := a.service
	commands := map[string]commandFunc{
		// game
		"start_new_game": withArgs(func(_ context.Context, args StartGameData) (any, error) {
			return snapshot(svc.StartGame(args.PlayerNames))
		}),
		"get_game_state": noArgs(func() (any, error) {
			return snapshot(svc.GameState())
		}),
		"get_leaderboard": noArgs(func() (any, error) {
			return svc.Leaderboard()
		}),
		"collect_initial_bets": noArgs(func() (any, error) {
			return snapshot(svc.CollectInitialBets())
		}),
		"add_bets_to_pot": noArgs(func() (any, error) {
			return snapshot(svc.SweepBetsToPot())
		}),
		"place_bet": withArgs(func(_ context.Context, args BetData) (any, error) {
			return snapshot(svc.PlaceBet(args.PlayerID, args.Amount))
		}),
		"player_fold": withArgs(func(_ context.Context, args PlayerData) (any, error) {
			return snapshot(svc.Fold(args.PlayerID))
		}),
		"advance_phase": noArgs(func() (any, error) {
			return snapshot(svc.AdvancePhase())
		}),
		"complete_round": withArgs(func(_ context.Context, args CompleteRoundData) (any, error) {
			return snapshot(svc.CompleteRound(args.WinnerID))
		}),
		"start_next_round": noArgs(func() (any, error) {
			return snapshot(svc.StartNextRound())
		}),
		"set_round_number": withArgs(func(_ context.Context, args RoundNumberData) (any, error) {
			return snapshot(svc.SetRoundNumber(args.RoundNumber))
		}),
		"reset_game": noArgs(func() (any, error) {
			return snapshot(svc.ResetGame())
		}),
		"toggle_player_active": withArgs(func(_ context.Context, args PlayerActiveData) (any, error) {
			return snapshot(svc.TogglePlayerActive(args.PlayerID, args.IsActive))
		}),
		"update_player_name": withArgs(func(_ context.Context, args PlayerNameData) (any, error) {
			return snapshot(svc.UpdatePlayerName(args.PlayerID, args.NewName))
		}),
		"reveal_question": withArgs(func(_ context.Context, args QuestionData) (any, error) {
			return snapshot(svc.RevealQuestion(args.QuestionNumber))
		}),
		"toggle_video_mode": noArgs(func() (any, error) {
			return snapshot(svc.ToggleVideoMode())
		}),
		"set_video_device": withArgs(func(_ context.Context, args VideoDeviceData) (any, error) {
			return snapshot(svc.SetVideoDevice(args.DeviceID))
		}),
		"toggle_writing": withArgs(func(_ context.Context, args WritingData) (any, error) {
			return snapshot(svc.SetWritingEnabled(args.Enabled))
		}),
		"update_answer": withArgs(func(_ context.Context, args AnswerData) (any, error) {
			return snapshot(svc.SubmitAnswer(args.PlayerID, args.QuestionNumber, args.ImageData))
		}),
		"clear_player_answers": withArgs(func(_ context.Context, args PlayerData) (any, error) {
			return snapshot(svc.ClearAnswers(args.PlayerID))
		}),
		"approve_answer": withArgs(func(_ context.Context, args ApproveAnswerData) (any, error) {
			return snapshot(svc.ApproveAnswer(args.PlayerID, args.QuestionNumber, args.IsCorrect))
		}),
		"undo_last_action": noArgs(func() (any, error) {
			return snapshot(svc.Undo())
		}),

		// timer
		"get_timer": noArgs(func() (any, error) {
			if a.timer == nil {
				return nil, ErrUnavailable
			}
			return a.timer.State(), nil
		}),
		"set_timer": withArgs(func(_ context.Context, args TimerData) (any, error) {
			if a.timer == nil {
				return nil, ErrUnavailable
			}
			state, err := a.timer.Set(args.Seconds)
			if err != nil {
				return nil, err
			}
			a.pushTimer(state)
			return state, nil
		}),
		"start_timer": a.timerCommand(func() timer.State { return a.timer.Start() }),
		"stop_timer":  a.timerCommand(func() timer.State { return a.timer.Stop() }),
		"reset_timer": a.timerCommand(func() timer.State { return a.timer.Reset() }),
		"tick_timer":  a.timerCommand(func() timer.State { return a.timer.Tick() }),

		// display
		"list_serial_ports": noArgs(func() (any, error) {
			if a.display == nil {
				return nil, ErrUnavailable
			}
			return a.display.ListPorts()
		}),
		"configure_display": withArgs(func(_ context.Context, cfg display.Config) (any, error) {
			if a.display == nil {
				return nil, ErrUnavailable
			}
			if err := a.display.Configure(cfg); err != nil {
				return nil, err
			}
			return a.display.Config(), nil
		}),
		"get_display_config": noArgs(func() (any, error) {
			if a.display == nil {
				return nil, ErrUnavailable
			}
			return a.display.Config(), nil
		}),
		"update_display_values": withArgs(func(_ context.Context, args DisplayValuesData) (any, error) {
			if a.display == nil {
				return nil, ErrUnavailable
			}
			if v := args.Values; v != nil {
				if err := a.display.Update(v[0], v[1], v[2], v[3]); err != nil {
					return nil, err
				}
				return true, nil
			}
			snap, err := svc.GameState()
			if err != nil {
				return nil, err
			}
			if err := a.display.UpdateFromSnapshot(snap); err != nil {
				return nil, err
			}
			return true, nil
		}),
		"test_displays":  a.displayCommand(func() error { return a.display.Test() }),
		"clear_displays": a.displayCommand(func() error { return a.display.Clear() }),

		// updates
		"check_for_updates": func(ctx context.Context, _ json.RawMessage) (any, error) {
			if a.checker == nil {
				return nil, ErrUnavailable
			}
			info, err := a.checker.Check(ctx)
			if err != nil {
				return nil, err
			}
			if a.hub != nil {
				a.hub.BroadcastUpdate(info)
			}
			return info, nil
		},
		"get_update_status": noArgs(func() (any, error) {
			if a.status == nil {
				return nil, ErrUnavailable
			}
			info, ok := a.status.Last()
			if !ok {
				return nil, nil
			}
			return info, nil
		}),
	}
	return commands
}

// timerCommand runs a countdown operation and pushes the result to the views
func (a *API) timerCommand(fn func() timer.State) commandFunc {
	return noArgs(func() (any, error) {
		if a.timer == nil {
			return nil, ErrUnavailable
		}
		state := fn()
		a.pushTimer(state)
		return state, nil
	})
}

func (a *API) pushTimer(state timer.State) {
	if a.hub != nil {
		a.hub.BroadcastTimer(state)
	}
}

func (a *API) displayCommand(fn func() error) commandFunc {
	return noArgs(func() (any, error) {
		if a.display == nil {
			return nil, ErrUnavailable
		}
		if err := fn(); err != nil {
			return nil, err
		}
		return true, nil
	})
}

// CommandNames lists the available operator commands in sorted order
func (a *API) CommandNames() []string {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs an operator command by name
func (a *API) Execute(ctx context.Context, name string, args json.RawMessage) (any, error) {
	cmd, ok := a.commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd(ctx, args)
}
