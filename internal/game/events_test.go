package game

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	mu     sync.Mutex
	events []GameEvent
}

func (r *recordingSubscriber) OnEvent(event GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestEventBus(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	first := &recordingSubscriber{}
	second := &recordingSubscriber{}
	var funcCalls int

	bus.Subscribe(first)
	bus.Subscribe(second)
	bus.Subscribe(EventSubscriberFunc(func(GameEvent) { funcCalls++ }))

	bus.Publish(NewStateChangedEvent("start_game", nil))
	bus.Unsubscribe(first)
	bus.Publish(NewStateChangedEvent("next_round", nil))

	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 2)
	assert.Equal(t, 2, funcCalls)

	changed, ok := second.events[1].(StateChangedEvent)
	require.True(t, ok)
	assert.Equal(t, "next_round", changed.Command)
	assert.Equal(t, EventTypeStateChanged, changed.EventType())
	assert.False(t, changed.Timestamp().IsZero())
}

func TestEventBusConcurrentPublish(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	sub := &recordingSubscriber{}
	bus.Subscribe(sub)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(NewStateChangedEvent("place_bet", nil))
		}()
	}
	wg.Wait()

	assert.Len(t, sub.events, 20)
}

func TestFormatEvent(t *testing.T) {
	t.Parallel()

	result := RoundResult{RoundNumber: 2, WinnerName: "Bob", CorrectAnswers: 3, PotAmount: 120}
	assert.Equal(t, "Round 2 won by Bob (3 correct, pot 120)",
		FormatEvent(NewRoundCompletedEvent("game_test", result)))

	elim := Elimination{PlayerID: "player_1", Name: "Bob", Balance: 50, Reason: ReasonLowestBalance}
	assert.Equal(t, "Bob eliminated after round 4: lowest balance (50)",
		FormatEvent(NewPlayerEliminatedEvent(4, elim)))

	g := NewTestGame(WithBalance(0, 100), WithBalance(1, 900))
	finished := FormatEvent(NewGameFinishedEvent(g))
	lines := strings.Split(finished, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Game over", lines[0])
	assert.Equal(t, "  1. Bob 900", lines[1])
	assert.Equal(t, "  3. Alice 100", lines[3])

	assert.Equal(t, "toggle_video_mode", FormatEvent(NewStateChangedEvent("toggle_video_mode", nil)))
}
