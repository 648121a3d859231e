package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypeStartHand MessageType = "start_hand"
	MessageTypeAction    MessageType = "action"

	// Server to client messages
	MessageTypeWelcome MessageType = "welcome"
	MessageTypeError   MessageType = "error"
	MessageTypeState   MessageType = "state"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes carried in ErrorData.Code.
const (
	ErrCodeBadJSON        = "bad_json"
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeUnknownType    = "unknown_message_type"
	ErrCodeNotHost        = "not_host"
	ErrCodeHandInProgress = "hand_in_progress"
	ErrCodeActionRejected = "action_rejected"
	ErrCodeJoinFailed     = "join_failed"
	ErrCodeRoomNotFound   = "room_not_found"
	ErrCodeInternal       = "internal"
)
