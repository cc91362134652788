package console

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/mduijf/mhmot/internal/game"
	"github.com/mduijf/mhmot/internal/server"
	"github.com/mduijf/mhmot/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

type serverFixture struct {
	service *server.GameService
	client  *Client
}

func newServerFixture(t *testing.T, withGame bool) *serverFixture {
	t.Helper()

	bus := game.NewEventBus()
	svc := server.NewGameService(server.DefaultConfig().Game, bus, quietLogger())
	if withGame {
		_, err := svc.StartGame(nil)
		require.NoError(t, err)
	}

	countdown := timer.New(quartz.NewMock(t), quietLogger())
	hub := server.NewHub(svc, countdown, quietLogger())
	bus.Subscribe(hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()

	settings := server.DefaultConfig().Server
	settings.AssetsDir = t.TempDir()
	api := server.NewAPI(svc, settings, quietLogger(), server.WithHub(hub), server.WithTimer(countdown))
	srv := httptest.NewServer(api.Router())
	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
	})

	return &serverFixture{
		service: svc,
		client:  NewClient(srv.URL+"/", quietLogger()),
	}
}

func TestClientExecute(t *testing.T) {
	t.Parallel()
	f := newServerFixture(t, true)
	ctx := context.Background()

	data, err := f.client.Execute(ctx, "collect_initial_bets", nil)
	require.NoError(t, err)

	snap, ok := decodeSnapshot(data)
	require.True(t, ok)
	assert.Equal(t, game.CollectingBets, snap.CurrentRound.Phase)

	data, err = f.client.Execute(ctx, "set_timer", server.TimerData{Seconds: 45})
	require.NoError(t, err)
	var state timer.State
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, 45, state.Remaining)
}

func TestClientErrors(t *testing.T) {
	t.Parallel()
	f := newServerFixture(t, false)
	ctx := context.Background()

	snap, err := f.client.GameState(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	_, err = f.client.Execute(ctx, "collect_initial_bets", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "no_active_game", apiErr.Code)

	_, err = f.client.Execute(ctx, "shuffle_deck", nil)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "unknown_command", apiErr.Code)
}

func TestClientGameState(t *testing.T) {
	t.Parallel()
	f := newServerFixture(t, true)

	snap, err := f.client.GameState(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.RoundNumber)
	assert.Len(t, snap.Players, 3)
}

func TestClientWatch(t *testing.T) {
	t.Parallel()
	f := newServerFixture(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := f.client.Watch(ctx)
	require.NoError(t, err)

	// the server greets with the current state
	next := func(want server.MessageType) *server.Message {
		t.Helper()
		timeout := time.After(2 * time.Second)
		for {
			select {
			case msg, ok := <-updates:
				require.True(t, ok, "channel closed")
				if msg.Type == want {
					return msg
				}
			case <-timeout:
				t.Fatalf("no %s message", want)
				return nil
			}
		}
	}
	next(server.MessageTypeGameState)

	_, err = f.service.CollectInitialBets()
	require.NoError(t, err)

	msg := next(server.MessageTypeGameState)
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	assert.Equal(t, 10, snap.Players[0].CurrentBet)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
