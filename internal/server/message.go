package server

import (
	"encoding/json"
	"time"

	"github.com/lox/chipholdem/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message stamped with now.
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	msg := &Message{Type: messageType, Timestamp: now}
	if data == nil {
		return msg, nil
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	msg.Data = dataBytes
	return msg, nil
}

// Client → Server Messages

// ActionData carries a betting decision. RaiseTo is the player's total bet
// for the street after a raise.
type ActionData struct {
	Action  string `json:"action"`
	RaiseTo int    `json:"raiseTo,omitempty"`
}

// Decision converts the wire form into a game decision.
func (a ActionData) Decision() (game.Decision, error) {
	action, err := game.ParseAction(a.Action)
	if err != nil {
		return game.Decision{}, err
	}
	return game.Decision{Action: action, RaiseTo: a.RaiseTo}, nil
}

// Server → Client Messages

// WelcomeData is sent once after a successful join. PlayerKey lets the
// client reclaim the same seat on reconnect.
type WelcomeData struct {
	RoomCode      string `json:"roomCode"`
	PlayerID      string `json:"playerId"`
	PlayerKey     string `json:"playerKey"`
	Nick          string `json:"nick"`
	Seat          int    `json:"seat"`
	IsHost        bool   `json:"isHost"`
	StartingChips int    `json:"startingChips"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StateData struct {
	State game.View `json:"state"`
}

// HTTP API bodies

type CreateRoomRequest struct {
	MaxPlayers *int `json:"maxPlayers,omitempty"`
	SmallBlind *int `json:"sb,omitempty"`
	BigBlind   *int `json:"bb,omitempty"`
}

type CreateRoomResponse struct {
	OK            bool   `json:"ok"`
	Code          string `json:"code"`
	HostKey       string `json:"hostKey"`
	MaxPlayers    int    `json:"maxPlayers"`
	StartingChips int    `json:"startingChips"`
	SmallBlind    int    `json:"sb"`
	BigBlind      int    `json:"bb"`
}

type RoomStateResponse struct {
	OK    bool      `json:"ok"`
	State game.View `json:"state"`
}

type HealthResponse struct {
	OK    bool `json:"ok"`
	Rooms int  `json:"rooms"`
}

type APIError struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
