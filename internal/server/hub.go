package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/mduijf/mhmot/internal/game"
	"github.com/mduijf/mhmot/internal/timer"
	"github.com/mduijf/mhmot/internal/updater"
)

// StateSource supplies the current state to newly connected views
type StateSource interface {
	Snapshot() *game.Snapshot
}

// TimerSource supplies the current countdown state
type TimerSource interface {
	State() timer.State
}

// Hub keeps the websocket connections of the browser views and pushes every
// state change to all of them.
type Hub struct {
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	done        chan struct{}
	logger      *log.Logger
	mu          sync.RWMutex

	state StateSource
	timer TimerSource
}

// NewHub creates a hub. The timer source may be nil.
func NewHub(state StateSource, countdown TimerSource, logger *log.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// Views are served from the same origin or from the phones of the
			// players on the local network.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		done:        make(chan struct{}),
		logger:      logger.WithPrefix("hub"),
		state:       state,
		timer:       countdown,
	}
}

// Run handles the connection lifecycle until ctx is done, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn] = true
			total := len(h.connections)
			h.mu.Unlock()
			h.logger.Info("View connected", "total", total)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				_ = conn.Close()
			}
			total := len(h.connections)
			h.mu.Unlock()
			h.logger.Info("View disconnected", "total", total)

		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.connections {
				_ = conn.Close()
				delete(h.connections, conn)
			}
			h.mu.Unlock()
			return nil
		}
	}
}

// Count returns the number of connected views
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// HandleWebSocket upgrades the request and registers the connection. The new
// view receives the current state straight away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := NewConnection(ws, h, h.logger)
	select {
	case h.register <- conn:
	case <-h.done:
		_ = conn.Close()
		return
	}
	conn.Start()
	conn.sendState()
	conn.sendTimer()

	go func() {
		<-conn.ctx.Done()
		select {
		case h.unregister <- conn:
		case <-h.done:
		}
	}()
}

// Broadcast sends a message to every connected view. Connections are
// collected under the lock and written to without holding it.
func (h *Hub) Broadcast(msg *Message) {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.connections))
	for conn := range h.connections {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	sent := 0
	for _, conn := range targets {
		if err := conn.SendMessage(msg); err != nil {
			h.logger.Debug("Failed to send message to view", "error", err)
			continue
		}
		sent++
	}
	h.logger.Debug("Broadcasted message", "type", msg.Type, "recipients", sent)
}

func (h *Hub) broadcast(messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		h.logger.Error("Failed to encode message", "type", messageType, "error", err)
		return
	}
	h.Broadcast(msg)
}

// OnEvent pushes state changes as game_state messages and every other event
// as a formatted game_event.
func (h *Hub) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.StateChangedEvent:
		h.broadcast(MessageTypeGameState, e.Snapshot)
	case game.RoundCompletedEvent:
		h.broadcast(MessageTypeGameEvent, GameEventData{Event: e.EventType(), Summary: game.FormatEvent(e), Data: e.Result})
	case game.PlayerEliminatedEvent:
		h.broadcast(MessageTypeGameEvent, GameEventData{Event: e.EventType(), Summary: game.FormatEvent(e), Data: e.Elimination})
	case game.GameFinishedEvent:
		h.broadcast(MessageTypeGameEvent, GameEventData{Event: e.EventType(), Summary: game.FormatEvent(e), Data: e.Standings})
	}
}

// BroadcastTimer pushes a countdown change
func (h *Hub) BroadcastTimer(state timer.State) {
	h.broadcast(MessageTypeTimer, state)
}

// BroadcastUpdate announces that a newer release is available
func (h *Hub) BroadcastUpdate(info updater.UpdateInfo) {
	if !info.Available {
		return
	}
	h.broadcast(MessageTypeUpdateAvailable, info)
}
