package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/lox/chipholdem/internal/game"
	"github.com/lox/chipholdem/internal/roomcode"
	"github.com/lox/chipholdem/internal/store"
)

// Manager errors.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidSettings = errors.New("invalid room settings")
	ErrNoFreeCode      = errors.New("could not allocate a room code")
	ErrManagerClosed   = errors.New("room manager closed")
)

const codeAttempts = 5

// Settings are the host-chosen parameters of a new room.
type Settings struct {
	MaxPlayers    int `json:"maxPlayers"`
	StartingChips int `json:"startingChips"`
	SmallBlind    int `json:"sb"`
	BigBlind      int `json:"bb"`
}

// Validate enforces the limits for rooms created over the API: 2 to 8
// players, 1 <= sb < bb and a starting stack of at least ten big blinds.
func (s Settings) Validate() error {
	if s.MaxPlayers < game.MinPlayers || s.MaxPlayers > game.MaxPlayers {
		return fmt.Errorf("%w: maxPlayers must be %d-%d", ErrInvalidSettings, game.MinPlayers, game.MaxPlayers)
	}
	if s.SmallBlind < 1 || s.BigBlind <= s.SmallBlind {
		return fmt.Errorf("%w: blinds must satisfy 1 <= sb < bb", ErrInvalidSettings)
	}
	if s.StartingChips < s.BigBlind*10 {
		return fmt.Errorf("%w: startingChips must be at least 10x bb", ErrInvalidSettings)
	}
	return nil
}

// Created is returned to the host of a new room.
type Created struct {
	Code    string `json:"code"`
	HostKey string `json:"hostKey"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for idle tracking.
func WithClock(clock quartz.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithCodeGenerator replaces the crypto/rand room code generator.
func WithCodeGenerator(gen *roomcode.Generator) Option {
	return func(m *Manager) {
		m.codes = gen
	}
}

// WithTableOptions passes options to every table the manager creates or
// loads.
func WithTableOptions(opts ...game.Option) Option {
	return func(m *Manager) {
		m.tableOpts = append(m.tableOpts, opts...)
	}
}

// WithIdleTimeout sets how long a room with no subscribers stays in memory.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

// Manager owns the live sessions, keyed by room code. Rooms not in memory
// are loaded from the store on first use.
type Manager struct {
	store       store.Store
	logger      *log.Logger
	clock       quartz.Clock
	codes       *roomcode.Generator
	tableOpts   []game.Option
	idleTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
	loads    singleflight.Group
}

// NewManager creates a manager persisting rooms to st.
func NewManager(st store.Store, logger *log.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:       st,
		logger:      logger.WithPrefix("rooms"),
		clock:       quartz.NewReal(),
		codes:       roomcode.NewGenerator(nil),
		idleTimeout: 30 * time.Minute,
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create initializes and persists a new room and starts its session.
func (m *Manager) Create(ctx context.Context, settings Settings) (Created, error) {
	if err := settings.Validate(); err != nil {
		return Created{}, err
	}

	code, err := m.freeCode(ctx)
	if err != nil {
		return Created{}, err
	}

	hostKey := uuid.NewString()
	table := game.NewTable(m.tableOpts...)
	if err := table.Init(game.Config{
		Code:          code,
		MaxPlayers:    settings.MaxPlayers,
		StartingChips: settings.StartingChips,
		SmallBlind:    settings.SmallBlind,
		BigBlind:      settings.BigBlind,
		HostKey:       hostKey,
	}); err != nil {
		return Created{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if err := m.store.Save(ctx, code, table.Snapshot()); err != nil {
		return Created{}, fmt.Errorf("failed to persist new room: %w", err)
	}

	if _, err := m.register(code, table); err != nil {
		return Created{}, err
	}
	m.logger.Info("Room created", "code", code, "maxPlayers", settings.MaxPlayers,
		"sb", settings.SmallBlind, "bb", settings.BigBlind)
	return Created{Code: code, HostKey: hostKey}, nil
}

// freeCode draws codes until one is neither live nor persisted.
func (m *Manager) freeCode(ctx context.Context) (string, error) {
	for range codeAttempts {
		code, err := m.codes.Generate()
		if err != nil {
			return "", err
		}
		m.mu.Lock()
		_, live := m.sessions[code]
		m.mu.Unlock()
		if live {
			continue
		}
		_, err = m.store.Load(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check room code: %w", err)
		}
	}
	return "", ErrNoFreeCode
}

// Get returns the session for code, loading it from the store if needed.
func (m *Manager) Get(ctx context.Context, code string) (*Session, error) {
	code = roomcode.Normalize(code)
	if err := roomcode.Validate(code); err != nil {
		return nil, ErrRoomNotFound
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	if s, ok := m.sessions[code]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	v, err, _ := m.loads.Do(code, func() (any, error) {
		return m.load(ctx, code)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) load(ctx context.Context, code string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[code]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	snap, err := m.store.Load(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", code, err)
	}

	table := game.NewTable(m.tableOpts...)
	if err := table.Restore(snap); err != nil {
		return nil, fmt.Errorf("failed to restore room %s: %w", code, err)
	}
	if !table.Initialized() {
		return nil, ErrRoomNotFound
	}
	// Sockets did not survive the restart.
	table.DisconnectAll()

	s, err := m.register(code, table)
	if err != nil {
		return nil, err
	}
	m.logger.Info("Room loaded", "code", code, "phase", table.Phase())
	return s, nil
}

func (m *Manager) register(code string, table *game.Table) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrManagerClosed
	}
	if s, ok := m.sessions[code]; ok {
		return s, nil
	}
	s := newSession(code, table, m.store, m.logger, m.clock)
	m.sessions[code] = s
	return s, nil
}

// Len returns the number of rooms in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap stops rooms that have had no subscribers and no changes for the idle
// timeout. Their state stays in the store and is reloaded on demand.
func (m *Manager) Reap(ctx context.Context) int {
	m.mu.Lock()
	sessions := make(map[string]*Session, len(m.sessions))
	for code, s := range m.sessions {
		sessions[code] = s
	}
	m.mu.Unlock()

	reaped := 0
	for code, s := range sessions {
		viewers, since, err := s.idle(ctx)
		if err != nil || viewers > 0 || m.clock.Since(since) < m.idleTimeout {
			continue
		}
		m.mu.Lock()
		if m.sessions[code] == s {
			delete(m.sessions, code)
		}
		m.mu.Unlock()
		s.Close()
		reaped++
		m.logger.Debug("Room evicted", "code", code, "idle", m.clock.Since(since))
	}
	return reaped
}

// Run reaps idle rooms every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	w := m.clock.TickerFunc(ctx, interval, func() error {
		if n := m.Reap(ctx); n > 0 {
			m.logger.Info("Evicted idle rooms", "count", n)
		}
		return nil
	}, "reaper")
	err := w.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close stops every session in parallel. Later Get calls fail.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var g errgroup.Group
	for _, s := range sessions {
		g.Go(func() error {
			s.Close()
			return nil
		})
	}
	return g.Wait()
}
