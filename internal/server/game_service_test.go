package server

import (
	"sync"
	"testing"

	"github.com/mduijf/mhmot/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameServiceWithoutGame(t *testing.T) {
	t.Parallel()

	svc := NewGameService(DefaultConfig().Game, nil, testLogger())

	assert.Nil(t, svc.Snapshot())
	_, err := svc.GameState()
	assert.ErrorIs(t, err, game.ErrNoActiveGame)
	_, err = svc.CollectInitialBets()
	assert.ErrorIs(t, err, game.ErrNoActiveGame)
	_, err = svc.Leaderboard()
	assert.ErrorIs(t, err, game.ErrNoActiveGame)
	_, err = svc.Undo()
	assert.ErrorIs(t, err, game.ErrNothingToUndo)
}

func TestStartGame(t *testing.T) {
	t.Parallel()

	bus := newRecordingBus()
	svc := NewGameService(DefaultConfig().Game, bus, testLogger())

	snap, err := svc.StartGame([]string{" Ann ", "Ben", "Cas"})
	require.NoError(t, err)

	assert.Equal(t, 1, snap.RoundNumber)
	require.NotNil(t, snap.CurrentRound)
	assert.Equal(t, game.Initial, snap.CurrentRound.Phase)
	assert.Equal(t, 0, snap.CurrentRound.Pot)
	require.Len(t, snap.Players, 3)
	assert.Equal(t, "Ann", snap.Players[0].Name)
	assert.Equal(t, 750, snap.Players[0].Balance)
	assert.Equal(t, []game.EventType{game.EventTypeStateChanged}, bus.types())

	_, err = svc.StartGame([]string{"Ann", "  "})
	assert.ErrorIs(t, err, game.ErrInvalidName)
}

func TestStartGameUsesConfiguredPlayers(t *testing.T) {
	t.Parallel()

	settings := DefaultConfig().Game
	settings.Players = []string{"Host A", "Host B"}
	settings.StartingBalance = 500
	svc := NewGameService(settings, nil, testLogger())

	snap, err := svc.StartGame(nil)
	require.NoError(t, err)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, "Host B", snap.Players[1].Name)
	assert.Equal(t, 500, snap.Players[1].Balance)
}

func TestRoundFlow(t *testing.T) {
	t.Parallel()

	bus := newRecordingBus()
	svc := newTestService(bus)

	snap, err := svc.CollectInitialBets()
	require.NoError(t, err)
	assert.Equal(t, game.CollectingBets, snap.CurrentRound.Phase)
	assert.Equal(t, 740, snap.Players[0].Balance)
	assert.Equal(t, 10, snap.Players[0].CurrentBet)

	snap, err = svc.SweepBetsToPot()
	require.NoError(t, err)
	assert.Equal(t, 30, snap.CurrentRound.Pot)
	assert.Equal(t, 0, snap.Players[2].CurrentBet)

	snap, err = svc.AdvancePhase()
	require.NoError(t, err)
	assert.Equal(t, game.FirstBetting, snap.CurrentRound.Phase)

	_, err = svc.PlaceBet("player_1", 20)
	require.NoError(t, err)

	_, err = svc.SubmitAnswer("player_1", 1, "img")
	require.NoError(t, err)
	_, err = svc.ApproveAnswer("player_1", 1, true)
	require.NoError(t, err)

	bus.reset()
	snap, err = svc.CompleteRound("")
	require.NoError(t, err)

	assert.Nil(t, snap.CurrentRound)
	bob, ok := snap.Player("player_1")
	require.True(t, ok)
	assert.Equal(t, 740-20+50, bob.Balance)
	require.Len(t, snap.RoundHistory, 1)
	assert.Equal(t, "player_1", snap.RoundHistory[0].WinnerID)
	assert.Equal(t, []game.EventType{game.EventTypeRoundCompleted, game.EventTypeStateChanged}, bus.types())

	snap, err = svc.StartNextRound()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.RoundNumber)
	assert.Equal(t, 20, snap.CurrentRound.MinBet)
}

func TestFailedCommandLeavesStateAndUndoPoint(t *testing.T) {
	t.Parallel()

	bus := newRecordingBus()
	svc := newTestService(bus)

	_, err := svc.PlaceBet("player_0", 20)
	require.NoError(t, err)
	bus.reset()

	_, err = svc.PlaceBet("player_0", 60)
	assert.ErrorIs(t, err, game.ErrInvalidBetAmount)
	_, err = svc.Fold("player_9")
	assert.ErrorIs(t, err, game.ErrPlayerNotFound)
	assert.Empty(t, bus.events)

	// undo still reverts the last successful command
	snap, err := svc.Undo()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentRound.Pot)
	assert.Equal(t, 750, snap.Players[0].Balance)
}

func TestCompleteRoundUnknownWinner(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	_, err := svc.PlaceBet("player_0", 50)
	require.NoError(t, err)

	_, err = svc.CompleteRound("player_7")
	assert.ErrorIs(t, err, game.ErrPlayerNotFound)

	snap := svc.Snapshot()
	require.NotNil(t, snap.CurrentRound)
	assert.Equal(t, 50, snap.CurrentRound.Pot)
	assert.Empty(t, snap.RoundHistory)
}

func TestCompleteRoundExplicitWinner(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	_, err := svc.PlaceBet("player_0", 40)
	require.NoError(t, err)

	snap, err := svc.CompleteRound("player_2")
	require.NoError(t, err)
	assert.Equal(t, 790, snap.Players[2].Balance)
}

func TestFoldDeactivation(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	snap, err := svc.Fold("player_0")
	require.NoError(t, err)
	assert.True(t, snap.Players[0].HasFolded)
	assert.False(t, snap.Players[0].IsActive)

	keep := false
	settings := DefaultConfig().Game
	settings.FoldDeactivates = &keep
	svc = NewGameService(settings, nil, testLogger())
	_, err = svc.StartGame(nil)
	require.NoError(t, err)

	snap, err = svc.Fold("player_0")
	require.NoError(t, err)
	assert.True(t, snap.Players[0].HasFolded)
	assert.True(t, snap.Players[0].IsActive)
}

func TestUndo(t *testing.T) {
	t.Parallel()

	bus := newRecordingBus()
	svc := newTestService(bus)

	_, err := svc.CollectInitialBets()
	require.NoError(t, err)

	// answer submissions do not move the undo point
	_, err = svc.SubmitAnswer("player_0", 1, "img")
	require.NoError(t, err)

	bus.reset()
	snap, err := svc.Undo()
	require.NoError(t, err)
	assert.Equal(t, game.Initial, snap.CurrentRound.Phase)
	assert.Equal(t, 750, snap.Players[0].Balance)
	require.Len(t, snap.Players[0].Answers, 1)
	assert.Equal(t, "img", snap.Players[0].Answers[0].ImageData)
	assert.Equal(t, []game.EventType{game.EventTypeStateChanged}, bus.types())

	_, err = svc.Undo()
	assert.ErrorIs(t, err, game.ErrNothingToUndo)
}

func TestUndoKeepsLaterSubmissions(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)

	_, err := svc.SubmitAnswer("player_0", 1, "p0-q1")
	require.NoError(t, err)
	_, err = svc.ApproveAnswer("player_0", 1, true)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer("player_1", 2, "p1-q2")
	require.NoError(t, err)

	snap, err := svc.Undo()
	require.NoError(t, err)

	// the judgement is undone, the later drawing is not
	require.Len(t, snap.Players[0].Answers, 1)
	assert.Equal(t, game.Unjudged, snap.Players[0].Answers[0].Judgement)
	require.Len(t, snap.Players[1].Answers, 1)
	assert.Equal(t, "p1-q2", snap.Players[1].Answers[0].ImageData)
	assert.Equal(t, 2, snap.Players[1].Answers[0].QuestionNumber)
}

func TestUndoStartGameDropsSubmissionsToReplacedGame(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	first := svc.Snapshot().GameID

	_, err := svc.StartGame([]string{"X", "Y"})
	require.NoError(t, err)
	_, err = svc.SubmitAnswer("player_1", 1, "new-game")
	require.NoError(t, err)

	snap, err := svc.Undo()
	require.NoError(t, err)
	assert.Equal(t, first, snap.GameID)
	assert.Empty(t, snap.Players[1].Answers)
}

func TestConcurrentCommandsPublishLatestState(t *testing.T) {
	t.Parallel()

	bus := newRecordingBus()
	svc := newTestService(bus)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.PlaceBet(game.PlayerID(i%3), game.MinBetAmount)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	var last *game.Snapshot
	for _, e := range bus.events {
		if changed, ok := e.(game.StateChangedEvent); ok {
			last = changed.Snapshot
		}
	}
	require.NotNil(t, last)
	current := svc.Snapshot()
	assert.Equal(t, current.Pot(), last.Pot())
	assert.Equal(t, 300, last.Pot())
	assert.Equal(t, current.Balances(3), last.Balances(3))
}

func TestUndoStartGameRestoresPreviousGame(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	first := svc.Snapshot().GameID

	_, err := svc.StartGame([]string{"X", "Y"})
	require.NoError(t, err)
	assert.NotEqual(t, first, svc.Snapshot().GameID)

	snap, err := svc.Undo()
	require.NoError(t, err)
	assert.Equal(t, first, snap.GameID)
	assert.Len(t, snap.Players, 3)
}

func TestGameFinishedEventPublishedOnce(t *testing.T) {
	t.Parallel()

	bus := newRecordingBus()
	svc := newTestService(bus)

	_, err := svc.SetRoundNumber(7)
	require.NoError(t, err)
	bus.reset()

	snap, err := svc.CompleteRound("player_0")
	require.NoError(t, err)
	assert.True(t, snap.IsFinished)
	assert.Contains(t, bus.types(), game.EventTypeGameFinished)

	_, err = svc.StartNextRound()
	assert.ErrorIs(t, err, game.ErrGameFinished)
}

func TestRoundFourEliminationEvent(t *testing.T) {
	t.Parallel()

	bus := newRecordingBus()
	svc := newTestService(bus)

	_, err := svc.SetRoundNumber(4)
	require.NoError(t, err)
	_, err = svc.PlaceBet("player_1", 50)
	require.NoError(t, err)
	bus.reset()

	snap, err := svc.CompleteRound("player_0")
	require.NoError(t, err)

	// Bob paid 50 and has the lowest balance
	assert.False(t, snap.Players[1].IsActive)
	assert.Equal(t, []game.EventType{
		game.EventTypeRoundCompleted,
		game.EventTypePlayerEliminated,
		game.EventTypeStateChanged,
	}, bus.types())
}

func TestVideoModeCouplesWriting(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)

	snap, err := svc.ToggleVideoMode()
	require.NoError(t, err)
	assert.True(t, snap.VideoModeActive)
	assert.False(t, snap.WritingEnabled)

	_, err = svc.SubmitAnswer("player_0", 1, "img")
	assert.ErrorIs(t, err, game.ErrOperationNotPermitted)
	_, err = svc.SetWritingEnabled(true)
	assert.ErrorIs(t, err, game.ErrOperationNotPermitted)

	snap, err = svc.SetVideoDevice(" cam-2 ")
	require.NoError(t, err)
	require.NotNil(t, snap.VideoDeviceID)
	assert.Equal(t, "cam-2", *snap.VideoDeviceID)

	snap, err = svc.ToggleVideoMode()
	require.NoError(t, err)
	assert.True(t, snap.WritingEnabled)
}

func TestOperatorCorrections(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)

	snap, err := svc.UpdatePlayerName("player_2", "Charlotte")
	require.NoError(t, err)
	assert.Equal(t, "Charlotte", snap.Players[2].Name)

	_, err = svc.UpdatePlayerName("player_2", " ")
	assert.ErrorIs(t, err, game.ErrInvalidName)

	snap, err = svc.TogglePlayerActive("player_1", false)
	require.NoError(t, err)
	assert.False(t, snap.Players[1].IsActive)

	snap, err = svc.RevealQuestion(3)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, snap.CurrentRound.RevealedQuestions)

	_, err = svc.RevealQuestion(5)
	assert.ErrorIs(t, err, game.ErrInvalidQuestion)

	_, err = svc.SubmitAnswer("player_0", 1, "img")
	require.NoError(t, err)
	snap, err = svc.ClearAnswers("player_0")
	require.NoError(t, err)
	assert.Empty(t, snap.Players[0].Answers)

	_, err = svc.SetRoundNumber(8)
	assert.ErrorIs(t, err, game.ErrInvalidRoundNumber)
}

func TestResetGameKeepsRoster(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	_, err := svc.PlaceBet("player_0", 50)
	require.NoError(t, err)
	_, err = svc.CompleteRound("player_1")
	require.NoError(t, err)

	snap, err := svc.ResetGame()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.RoundNumber)
	for _, p := range snap.Players {
		assert.Equal(t, 750, p.Balance)
		assert.True(t, p.IsActive)
	}
}

func TestLeaderboard(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	_, err := svc.PlaceBet("player_0", 50)
	require.NoError(t, err)
	_, err = svc.CompleteRound("player_2")
	require.NoError(t, err)

	board, err := svc.Leaderboard()
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "player_2", board[0].ID)
	assert.Equal(t, "player_1", board[1].ID)
	assert.Equal(t, "player_0", board[2].ID)
}
