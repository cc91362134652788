package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mduijf/mhmot/internal/game"
	"github.com/mduijf/mhmot/internal/server"
)

// Command is a parsed console line ready to send to the server
type Command struct {
	Name string // server command name
	Args any    // request body, nil for none
}

var (
	ErrEmptyLine   = errors.New("empty command")
	ErrQuit        = errors.New("quit")
	ErrHelp        = errors.New("help")
	errUnknownVerb = errors.New("unknown command")
)

// Help lists the console syntax. Players are given by seat number (1, 2, 3)
// or by id (player_0).
const Help = `start [name...]        start a new game (configured names when empty)
collect                collect the minimum bets
pot                    add all bets to the pot
next                   advance to the next phase
bet <player> <amount>  place a bet (10-50)
fold <player>          fold a player
win [player]           complete the round (by answers when no player)
round [n]              start the next round, or jump to round n
reveal <question>      show or hide a question
approve <player> <question> yes|no
clear <player>         clear a player's answers
active <player> on|off eliminate or reinstate a player
rename <player> <name> rename a player
video                  toggle video mode
writing on|off         allow or block writing
timer <seconds>|start|stop|reset|tick
display test|clear|update
reset                  reset balances and restart at round 1
undo                   undo the last operator command
state                  refresh the game state
version                check for updates
updates                last scheduled update check
help, quit`

// ParseCommand turns a console line into a server command
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyLine
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "quit", "exit", "q":
		return Command{}, ErrQuit
	case "help", "?":
		return Command{}, ErrHelp

	case "start":
		return Command{Name: "start_new_game", Args: server.StartGameData{PlayerNames: args}}, nil
	case "collect":
		return noArgs("collect_initial_bets", args)
	case "pot", "sweep":
		return noArgs("add_bets_to_pot", args)
	case "next", "advance":
		return noArgs("advance_phase", args)
	case "reset":
		return noArgs("reset_game", args)
	case "undo":
		return noArgs("undo_last_action", args)
	case "video":
		return noArgs("toggle_video_mode", args)
	case "state", "refresh":
		return noArgs("get_game_state", args)
	case "leaderboard", "standings":
		return noArgs("get_leaderboard", args)
	case "version", "update":
		return noArgs("check_for_updates", args)
	case "updates":
		return noArgs("get_update_status", args)

	case "bet":
		if len(args) != 2 {
			return usage("bet <player> <amount>")
		}
		player, err := ParsePlayer(args[0])
		if err != nil {
			return Command{}, err
		}
		amount, err := parseInt("amount", args[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Name: "place_bet", Args: server.BetData{PlayerID: player, Amount: amount}}, nil

	case "fold":
		return playerCommand("player_fold", "fold <player>", args)
	case "clear":
		return playerCommand("clear_player_answers", "clear <player>", args)

	case "win":
		switch len(args) {
		case 0:
			return Command{Name: "complete_round", Args: server.CompleteRoundData{}}, nil
		case 1:
			player, err := ParsePlayer(args[0])
			if err != nil {
				return Command{}, err
			}
			return Command{Name: "complete_round", Args: server.CompleteRoundData{WinnerID: player}}, nil
		default:
			return usage("win [player]")
		}

	case "round":
		switch len(args) {
		case 0:
			return Command{Name: "start_next_round"}, nil
		case 1:
			n, err := parseInt("round", args[0])
			if err != nil {
				return Command{}, err
			}
			return Command{Name: "set_round_number", Args: server.RoundNumberData{RoundNumber: n}}, nil
		default:
			return usage("round [n]")
		}

	case "reveal":
		if len(args) != 1 {
			return usage("reveal <question>")
		}
		q, err := parseInt("question", args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Name: "reveal_question", Args: server.QuestionData{QuestionNumber: q}}, nil

	case "approve":
		if len(args) != 3 {
			return usage("approve <player> <question> yes|no")
		}
		player, err := ParsePlayer(args[0])
		if err != nil {
			return Command{}, err
		}
		q, err := parseInt("question", args[1])
		if err != nil {
			return Command{}, err
		}
		correct, err := parseSwitch(args[2])
		if err != nil {
			return Command{}, err
		}
		return Command{Name: "approve_answer", Args: server.ApproveAnswerData{
			PlayerID: player, QuestionNumber: q, IsCorrect: correct,
		}}, nil

	case "active":
		if len(args) != 2 {
			return usage("active <player> on|off")
		}
		player, err := ParsePlayer(args[0])
		if err != nil {
			return Command{}, err
		}
		on, err := parseSwitch(args[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Name: "toggle_player_active", Args: server.PlayerActiveData{PlayerID: player, IsActive: on}}, nil

	case "rename":
		if len(args) < 2 {
			return usage("rename <player> <name>")
		}
		player, err := ParsePlayer(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Name: "update_player_name", Args: server.PlayerNameData{
			PlayerID: player, NewName: strings.Join(args[1:], " "),
		}}, nil

	case "writing":
		if len(args) != 1 {
			return usage("writing on|off")
		}
		on, err := parseSwitch(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Name: "toggle_writing", Args: server.WritingData{Enabled: on}}, nil

	case "timer":
		if len(args) != 1 {
			return usage("timer <seconds>|start|stop|reset|tick")
		}
		switch strings.ToLower(args[0]) {
		case "start", "stop", "reset", "tick":
			return Command{Name: strings.ToLower(args[0]) + "_timer"}, nil
		}
		seconds, err := parseInt("seconds", args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Name: "set_timer", Args: server.TimerData{Seconds: seconds}}, nil

	case "display":
		if len(args) != 1 {
			return usage("display test|clear|update")
		}
		switch strings.ToLower(args[0]) {
		case "test":
			return Command{Name: "test_displays"}, nil
		case "clear":
			return Command{Name: "clear_displays"}, nil
		case "update":
			return Command{Name: "update_display_values"}, nil
		}
		return usage("display test|clear|update")
	}

	return Command{}, fmt.Errorf("%w: %s (type help)", errUnknownVerb, verb)
}

// ParsePlayer accepts a 1-based seat number or a player id
func ParsePlayer(ref string) (string, error) {
	if strings.HasPrefix(ref, "player_") {
		return ref, nil
	}
	seat, err := strconv.Atoi(ref)
	if err != nil || seat < 1 {
		return "", fmt.Errorf("invalid player %q: use a seat number or a player id", ref)
	}
	return game.PlayerID(seat - 1), nil
}

func noArgs(name string, args []string) (Command, error) {
	if len(args) > 0 {
		return usage(strings.ReplaceAll(name, "_", " ") + " takes no arguments")
	}
	return Command{Name: name}, nil
}

func playerCommand(name, syntax string, args []string) (Command, error) {
	if len(args) != 1 {
		return usage(syntax)
	}
	player, err := ParsePlayer(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Name: name, Args: server.PlayerData{PlayerID: player}}, nil
}

func parseInt(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return n, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes", "y", "true", "1":
		return true, nil
	case "off", "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on/off or yes/no, got %q", s)
}

func usage(syntax string) (Command, error) {
	return Command{}, fmt.Errorf("usage: %s", syntax)
}
