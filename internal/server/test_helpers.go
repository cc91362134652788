package server

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/mduijf/mhmot/internal/game"
)

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// recordingBus collects published events for assertions
type recordingBus struct {
	*game.SimpleEventBus
	events []game.GameEvent
}

func newRecordingBus() *recordingBus {
	bus := &recordingBus{SimpleEventBus: game.NewEventBus().(*game.SimpleEventBus)}
	bus.Subscribe(game.EventSubscriberFunc(func(e game.GameEvent) {
		bus.events = append(bus.events, e)
	}))
	return bus
}

func (b *recordingBus) types() []game.EventType {
	out := make([]game.EventType, len(b.events))
	for i, e := range b.events {
		out[i] = e.EventType()
	}
	return out
}

func (b *recordingBus) reset() {
	b.events = nil
}

// newTestService creates a service for the default three players with a
// running game
func newTestService(bus game.EventBus) *GameService {
	svc := NewGameService(DefaultConfig().Game, bus, testLogger())
	if _, err := svc.StartGame(nil); err != nil {
		panic(err)
	}
	return svc
}
