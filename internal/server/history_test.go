package server

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mduijf/mhmot/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryExportAfterCompletedRound(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exports", "history.json")
	exporter := NewHistoryExporter(path, testLogger())
	exporter.now = func() time.Time { return time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC) }

	bus := game.NewEventBus()
	bus.Subscribe(exporter)
	svc := newTestService(bus)

	// ordinary commands do not export
	_, err := svc.PlaceBet("player_0", 50)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	_, err = svc.CompleteRound("player_2")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var export HistoryExport
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, svc.Snapshot().GameID, export.GameID)
	assert.Equal(t, 1, export.RoundNumber)
	assert.False(t, export.IsFinished)
	require.Len(t, export.Rounds, 1)
	assert.Equal(t, 50, export.Rounds[0].PotAmount)
	require.Len(t, export.Leaderboard, 3)
	assert.Equal(t, "player_2", export.Leaderboard[0].ID)
	assert.Equal(t, 800, export.Leaderboard[0].Balance)
	assert.True(t, export.ExportedAt.Equal(exporter.now()))
}

func TestHistoryExportWriteFailureIsLogged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// a regular file where a directory is expected
	exporter := NewHistoryExporter(filepath.Join(blocker, "history.json"), testLogger())
	bus := game.NewEventBus()
	bus.Subscribe(exporter)
	svc := newTestService(bus)

	_, err := svc.CompleteRound("player_0")
	require.NoError(t, err)
	assert.False(t, exporter.pending)
}
