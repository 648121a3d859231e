package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/chipholdem/internal/game"
	"github.com/lox/chipholdem/internal/room"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBufferSize = 256
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection is one websocket client seated in (or watching) a room. It is
// the room.Subscriber for that client.
type Connection struct {
	conn     *websocket.Conn
	send     chan *Message
	session  *room.Session
	playerID string
	isHost   bool
	logger   *log.Logger
	clock    quartz.Clock

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps an upgraded socket for a joined player.
func NewConnection(conn *websocket.Conn, session *room.Session, joined room.JoinResult, logger *log.Logger, clock quartz.Clock) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, sendBufferSize),
		session:  session,
		playerID: joined.Player.ID,
		isHost:   joined.IsHost,
		logger:   logger.WithPrefix("conn").With("room", session.Code(), "player", joined.Player.Nick),
		clock:    clock,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins handling the connection. Messages queued before Start are
// written first, in order.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close shuts the connection down. The write pump closes the socket.
func (c *Connection) Close() {
	c.closeOnce.Do(c.cancel)
}

// Deliver implements room.Subscriber. It never blocks.
func (c *Connection) Deliver(view game.View) {
	msg, err := NewMessage(MessageTypeState, StateData{State: view}, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to encode state", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// SendMessage queues a message for the client. A client that cannot keep up
// is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) sendData(messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to encode message", "type", messageType, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(ErrCodeBadJSON, "Bad JSON")
			continue
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeStartHand:
		if err := c.session.StartHand(c.ctx, c.isHost); err != nil {
			c.sendErr(err)
		}

	case MessageTypeAction:
		var data ActionData
		if len(msg.Data) == 0 || json.Unmarshal(msg.Data, &data) != nil {
			c.sendError(ErrCodeInvalidMessage, "Failed to parse action data")
			return
		}
		decision, err := data.Decision()
		if err != nil {
			c.sendError(ErrCodeActionRejected, err.Error())
			return
		}
		if err := c.session.Act(c.ctx, c.playerID, decision); err != nil {
			c.sendErr(err)
		}

	default:
		c.sendError(ErrCodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) sendErr(err error) {
	code, message := errorCode(err)
	if code == ErrCodeInternal {
		c.logger.Error("Command failed", "error", err)
	}
	c.sendError(code, message)
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.sendData(MessageTypeError, ErrorData{Code: code, Message: message})
}

// errorCode maps engine and room errors onto wire codes. Anything
// unexpected is reported generically.
func errorCode(err error) (code, message string) {
	var actionErr *game.ActionError
	switch {
	case errors.As(err, &actionErr):
		return ErrCodeActionRejected, actionErr.Reason
	case errors.Is(err, game.ErrNotHost):
		return ErrCodeNotHost, "Only the host can start a hand"
	case errors.Is(err, game.ErrHandInProgress):
		return ErrCodeHandInProgress, "Hand already running"
	case errors.Is(err, game.ErrUnknownPlayer):
		return ErrCodeActionRejected, "Unknown player"
	case errors.Is(err, game.ErrInvalidNick),
		errors.Is(err, game.ErrNickTaken),
		errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrNotInitialized):
		return ErrCodeJoinFailed, err.Error()
	case errors.Is(err, room.ErrClosed), errors.Is(err, room.ErrRoomNotFound):
		return ErrCodeRoomNotFound, "Room not found"
	default:
		return ErrCodeInternal, "Internal error"
	}
}
