// Package server exposes rooms over HTTP and websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/chipholdem/internal/game"
	"github.com/lox/chipholdem/internal/room"
)

const (
	shutdownTimeout = 5 * time.Second
	leaveTimeout    = 5 * time.Second
	maxCreateBody   = 4096
)

// Server routes HTTP and websocket requests to rooms.
type Server struct {
	manager  *room.Manager
	defaults room.Settings
	logger   *log.Logger
	clock    quartz.Clock
	upgrader websocket.Upgrader

	mu          sync.Mutex
	connections map[*Connection]struct{}
	wg          sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used for message timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithDefaults sets the settings applied to fields a create request omits.
func WithDefaults(settings room.Settings) Option {
	return func(s *Server) {
		s.defaults = settings
	}
}

// NewServer creates a server backed by manager.
func NewServer(manager *room.Manager, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		manager: manager,
		defaults: room.Settings{
			MaxPlayers:    game.DefaultMaxPlayers,
			StartingChips: game.DefaultStartingChips,
			SmallBlind:    game.DefaultSmallBlind,
			BigBlind:      game.DefaultBigBlind,
		},
		logger: logger.WithPrefix("server"),
		clock:  quartz.NewReal(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Rooms are joined from any origin that knows the code
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/create", s.handleCreate)
	mux.HandleFunc("GET /api/room/{code}", s.handleRoomState)
	mux.HandleFunc("GET /api/room/{code}/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully and closes every websocket.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	s.Stop()
	if err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes all websocket connections and waits for their rooms to be
// told they left.
func (s *Server) Stop() {
	s.mu.Lock()
	for conn := range s.connections {
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// ConnectionCount returns the number of open websocket connections.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true, Rooms: s.manager.Len()})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxCreateBody)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	settings := s.defaults
	if req.MaxPlayers != nil {
		settings.MaxPlayers = *req.MaxPlayers
	}
	if req.SmallBlind != nil {
		settings.SmallBlind = *req.SmallBlind
	}
	if req.BigBlind != nil {
		settings.BigBlind = *req.BigBlind
	}

	created, err := s.manager.Create(r.Context(), settings)
	switch {
	case errors.Is(err, room.ErrInvalidSettings):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("Failed to create room", "error", err)
		writeError(w, http.StatusInternalServerError, "Room init failed")
		return
	}

	writeJSON(w, http.StatusOK, CreateRoomResponse{
		OK:            true,
		Code:          created.Code,
		HostKey:       created.HostKey,
		MaxPlayers:    settings.MaxPlayers,
		StartingChips: settings.StartingChips,
		SmallBlind:    settings.SmallBlind,
		BigBlind:      settings.BigBlind,
	})
}

func (s *Server) handleRoomState(w http.ResponseWriter, r *http.Request) {
	session, err := s.manager.Get(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeRoomError(w, err)
		return
	}
	view, err := session.View(r.Context(), "", false)
	if err != nil {
		s.writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RoomStateResponse{OK: true, State: view})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	nick := game.NormalizeNick(query.Get("nick"))
	if nick == "" {
		http.Error(w, "Missing nick", http.StatusBadRequest)
		return
	}

	code := r.PathValue("code")
	session, err := s.manager.Get(r.Context(), code)
	if err != nil {
		s.writeRoomError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	playerKey, hostKey := query.Get("playerKey"), query.Get("hostKey")
	joined, err := session.Join(r.Context(), nick, playerKey, hostKey)
	if errors.Is(err, room.ErrClosed) {
		// Evicted between lookup and join; load it again.
		if session, err = s.manager.Get(r.Context(), code); err == nil {
			joined, err = session.Join(r.Context(), nick, playerKey, hostKey)
		}
	}
	if err != nil {
		s.rejectJoin(conn, err)
		return
	}

	view, err := session.View(r.Context(), joined.Player.ID, joined.IsHost)
	if err != nil {
		s.rejectJoin(conn, err)
		return
	}

	client := NewConnection(conn, session, joined, s.logger, s.clock)
	client.sendData(MessageTypeWelcome, WelcomeData{
		RoomCode:      session.Code(),
		PlayerID:      joined.Player.ID,
		PlayerKey:     joined.Player.Key,
		Nick:          joined.Player.Nick,
		Seat:          joined.Player.Seat,
		IsHost:        joined.IsHost,
		StartingChips: view.Room.StartingChips,
	})
	if err := session.Subscribe(r.Context(), client, joined.Player.ID, joined.IsHost); err != nil {
		s.rejectJoin(conn, err)
		return
	}

	s.track(client)
	client.Start()
	s.logger.Info("Client connected", "room", session.Code(), "nick", joined.Player.Nick)

	go func() {
		<-client.Done()
		ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
		defer cancel()
		if err := session.Leave(ctx, client); err != nil && !errors.Is(err, room.ErrClosed) {
			s.logger.Error("Failed to leave room", "room", session.Code(), "error", err)
		}
		s.untrack(client)
		s.logger.Info("Client disconnected", "room", session.Code(), "nick", joined.Player.Nick)
	}()
}

// rejectJoin reports a failed join to the client, then closes the socket
// with a policy violation.
func (s *Server) rejectJoin(conn *websocket.Conn, err error) {
	code, message := errorCode(err)
	if code == ErrCodeInternal {
		s.logger.Error("Join failed", "error", err)
	}

	deadline := time.Now().Add(writeWait)
	if msg, encErr := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message}, s.clock.Now()); encErr == nil {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.WriteJSON(msg)
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message), deadline)
	_ = conn.Close()
}

func (s *Server) track(c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[c] = struct{}{}
	s.wg.Add(1)
}

func (s *Server) untrack(c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.connections[c]; ok {
		delete(s.connections, c)
		s.wg.Done()
	}
}

func (s *Server) writeRoomError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "Room not found")
	case errors.Is(err, room.ErrManagerClosed), errors.Is(err, room.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "Server shutting down")
	default:
		s.logger.Error("Room lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APIError{OK: false, Error: message})
}
