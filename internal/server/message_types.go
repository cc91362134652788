package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// Client to server messages. Commands go through the HTTP API; the socket
// only lets a view ask for a fresh copy of the state.
const (
	MessageTypeGetState MessageType = "get_state"
	MessageTypeGetTimer MessageType = "get_timer"
)

// Server to client messages
const (
	MessageTypeGameState       MessageType = "game_state"
	MessageTypeGameEvent       MessageType = "game_event"
	MessageTypeTimer           MessageType = "timer"
	MessageTypeUpdateAvailable MessageType = "update_available"
	MessageTypeError           MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
