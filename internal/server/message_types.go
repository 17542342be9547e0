package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeStart   MessageType = "start"
	MessageTypeReveal  MessageType = "reveal"
	MessageTypeRestart MessageType = "restart"
	MessageTypeNext    MessageType = "next"
	MessageTypeHint    MessageType = "hint"
	MessageTypeAddTime MessageType = "add_time"

	// Server to client messages
	MessageTypeBoard    MessageType = "board"
	MessageTypeMove     MessageType = "move"
	MessageTypeMatch    MessageType = "match"
	MessageTypeTick     MessageType = "tick"
	MessageTypeFinished MessageType = "finished"
	MessageTypeError    MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
