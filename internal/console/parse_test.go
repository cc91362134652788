package console

import (
	"testing"

	"github.com/mduijf/mhmot/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want Command
	}{
		{"collect", Command{Name: "collect_initial_bets"}},
		{"  POT ", Command{Name: "add_bets_to_pot"}},
		{"next", Command{Name: "advance_phase"}},
		{"bet 2 20", Command{Name: "place_bet", Args: server.BetData{PlayerID: "player_1", Amount: 20}}},
		{"bet player_0 50", Command{Name: "place_bet", Args: server.BetData{PlayerID: "player_0", Amount: 50}}},
		{"fold 3", Command{Name: "player_fold", Args: server.PlayerData{PlayerID: "player_2"}}},
		{"win", Command{Name: "complete_round", Args: server.CompleteRoundData{}}},
		{"win 1", Command{Name: "complete_round", Args: server.CompleteRoundData{WinnerID: "player_0"}}},
		{"round", Command{Name: "start_next_round"}},
		{"round 4", Command{Name: "set_round_number", Args: server.RoundNumberData{RoundNumber: 4}}},
		{"reveal 2", Command{Name: "reveal_question", Args: server.QuestionData{QuestionNumber: 2}}},
		{"approve 1 3 no", Command{Name: "approve_answer", Args: server.ApproveAnswerData{
			PlayerID: "player_0", QuestionNumber: 3, IsCorrect: false,
		}}},
		{"active 2 off", Command{Name: "toggle_player_active", Args: server.PlayerActiveData{PlayerID: "player_1"}}},
		{"rename 1 Anna Maria", Command{Name: "update_player_name", Args: server.PlayerNameData{
			PlayerID: "player_0", NewName: "Anna Maria",
		}}},
		{"writing on", Command{Name: "toggle_writing", Args: server.WritingData{Enabled: true}}},
		{"timer 30", Command{Name: "set_timer", Args: server.TimerData{Seconds: 30}}},
		{"timer start", Command{Name: "start_timer"}},
		{"display test", Command{Name: "test_displays"}},
		{"start Ann Bob", Command{Name: "start_new_game", Args: server.StartGameData{PlayerNames: []string{"Ann", "Bob"}}}},
		{"undo", Command{Name: "undo_last_action"}},
		{"updates", Command{Name: "get_update_status"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseCommand("   ")
	assert.ErrorIs(t, err, ErrEmptyLine)

	_, err = ParseCommand("exit")
	assert.ErrorIs(t, err, ErrQuit)

	_, err = ParseCommand("?")
	assert.ErrorIs(t, err, ErrHelp)

	_, err = ParseCommand("shuffle")
	assert.ErrorIs(t, err, errUnknownVerb)

	for _, line := range []string{
		"bet 1",
		"bet one 20",
		"bet 1 twenty",
		"fold 0",
		"collect now",
		"approve 1 2 maybe",
		"display dance",
		"timer",
	} {
		_, err := ParseCommand(line)
		assert.Error(t, err, line)
	}
}
