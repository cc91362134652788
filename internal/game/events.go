package game

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeStateChanged     EventType = "state_changed"
	EventTypeRoundCompleted   EventType = "round_completed"
	EventTypePlayerEliminated EventType = "player_eliminated"
	EventTypeGameFinished     EventType = "game_finished"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything that happens to a game
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// StateChangedEvent is published after every successful command. Snapshot is
// nil when the command discarded the game.
type StateChangedEvent struct {
	Command   string
	Snapshot  *Snapshot
	timestamp time.Time
}

func (e StateChangedEvent) EventType() EventType { return EventTypeStateChanged }
func (e StateChangedEvent) Timestamp() time.Time { return e.timestamp }

// NewStateChangedEvent creates a new state changed event
func NewStateChangedEvent(command string, snapshot *Snapshot) StateChangedEvent {
	return StateChangedEvent{
		Command:   command,
		Snapshot:  snapshot,
		timestamp: time.Now(),
	}
}

// RoundCompletedEvent is published when a round's pot has been paid out
type RoundCompletedEvent struct {
	GameID    string
	Result    RoundResult
	timestamp time.Time
}

func (e RoundCompletedEvent) EventType() EventType { return EventTypeRoundCompleted }
func (e RoundCompletedEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundCompletedEvent creates a new round completed event
func NewRoundCompletedEvent(gameID string, result RoundResult) RoundCompletedEvent {
	return RoundCompletedEvent{
		GameID:    gameID,
		Result:    result,
		timestamp: time.Now(),
	}
}

// PlayerEliminatedEvent is published for every player that drops out
type PlayerEliminatedEvent struct {
	RoundNumber int
	Elimination Elimination
	timestamp   time.Time
}

func (e PlayerEliminatedEvent) EventType() EventType { return EventTypePlayerEliminated }
func (e PlayerEliminatedEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayerEliminatedEvent creates a new player eliminated event
func NewPlayerEliminatedEvent(roundNumber int, elimination Elimination) PlayerEliminatedEvent {
	return PlayerEliminatedEvent{
		RoundNumber: roundNumber,
		Elimination: elimination,
		timestamp:   time.Now(),
	}
}

// GameFinishedEvent is published once when a game reaches its end
type GameFinishedEvent struct {
	Snapshot  *Snapshot
	Standings []PlayerSnapshot // by balance, highest first
	timestamp time.Time
}

func (e GameFinishedEvent) EventType() EventType { return EventTypeGameFinished }
func (e GameFinishedEvent) Timestamp() time.Time { return e.timestamp }

// NewGameFinishedEvent creates a new game finished event
func NewGameFinishedEvent(g *GameState) GameFinishedEvent {
	board := g.Leaderboard()
	standings := make([]PlayerSnapshot, len(board))
	for i, p := range board {
		standings[i] = p.Snapshot()
	}
	return GameFinishedEvent{
		Snapshot:  g.Snapshot(),
		Standings: standings,
		timestamp: time.Now(),
	}
}

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventSubscriberFunc adapts a function to the EventSubscriber interface
type EventSubscriberFunc func(event GameEvent)

func (f EventSubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is an in-memory event bus. Subscribers run synchronously on
// the publishing goroutine.
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events. Function
// subscribers cannot be compared and are never removed.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	if _, ok := subscriber.(EventSubscriberFunc); ok {
		return
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if _, ok := sub.(EventSubscriberFunc); ok {
			continue
		}
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subscribers := make([]EventSubscriber, len(bus.subscribers))
	copy(subscribers, bus.subscribers)
	bus.mu.RUnlock()

	for _, subscriber := range subscribers {
		subscriber.OnEvent(event)
	}
}

// FormatEvent renders an event as a one-line summary for logs and the
// operator console. State changes render as the command name.
func FormatEvent(event GameEvent) string {
	switch e := event.(type) {
	case StateChangedEvent:
		return e.Command
	case RoundCompletedEvent:
		r := e.Result
		return fmt.Sprintf("Round %d won by %s (%d correct, pot %d)",
			r.RoundNumber, r.WinnerName, r.CorrectAnswers, r.PotAmount)
	case PlayerEliminatedEvent:
		el := e.Elimination
		reason := "out of money"
		if el.Reason == ReasonLowestBalance {
			reason = "lowest balance"
		}
		return fmt.Sprintf("%s eliminated after round %d: %s (%d)", el.Name, e.RoundNumber, reason, el.Balance)
	case GameFinishedEvent:
		var b strings.Builder
		b.WriteString("Game over")
		for i, p := range e.Standings {
			fmt.Fprintf(&b, "\n  %d. %s %d", i+1, p.Name, p.Balance)
		}
		return b.String()
	default:
		return event.EventType().String()
	}
}
