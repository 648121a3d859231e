// Package room hosts live poker rooms. Each room is a Session: a single
// goroutine that owns a game.Table and applies commands one at a time, in
// arrival order, persisting and broadcasting after every change.
package room

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/chipholdem/internal/game"
	"github.com/lox/chipholdem/internal/store"
)

// ErrClosed is returned for commands sent to a stopped session.
var ErrClosed = errors.New("room session closed")

// Subscriber receives the viewer's projection after every state change.
// Deliver must not block; slow subscribers should drop updates.
type Subscriber interface {
	Deliver(view game.View)
}

// viewer is a subscriber attached to a seat (or to none, for spectators).
type viewer struct {
	playerID string
	isHost   bool
}

// JoinResult describes the seat a subscriber was attached to.
type JoinResult struct {
	Player game.Player
	IsHost bool
}

type command struct {
	fn    func() error
	reply chan error
}

// Session serializes all access to one room's table.
type Session struct {
	code   string
	store  store.Store
	logger *log.Logger
	clock  quartz.Clock

	cmds      chan command
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the run goroutine.
	table      *game.Table
	viewers    map[Subscriber]viewer
	lastActive time.Time
}

func newSession(code string, table *game.Table, st store.Store, logger *log.Logger, clock quartz.Clock) *Session {
	s := &Session{
		code:       code,
		store:      st,
		logger:     logger.With("room", code),
		clock:      clock,
		cmds:       make(chan command),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		table:      table,
		viewers:    make(map[Subscriber]viewer),
		lastActive: clock.Now(),
	}
	go s.run()
	return s
}

// Code returns the room code.
func (s *Session) Code() string {
	return s.code
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case cmd := <-s.cmds:
			cmd.reply <- cmd.fn()
		case <-s.quit:
			return
		}
	}
}

// exec runs fn on the session goroutine. Once accepted a command always runs
// to completion, even if ctx expires while the caller waits for it.
func (s *Session) exec(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	select {
	case s.cmds <- command{fn: fn, reply: reply}:
	case <-s.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mutate applies fn and, if it reports a change, writes the snapshot through
// to the store before broadcasting. A failed write rolls the room back to how
// it was before fn ran.
func (s *Session) mutate(ctx context.Context, fn func() (bool, error)) error {
	return s.exec(ctx, func() error {
		before := s.table.Snapshot()
		viewers := maps.Clone(s.viewers)

		changed, err := fn()
		if err != nil || !changed {
			return err
		}

		if err := s.store.Save(ctx, s.code, s.table.Snapshot()); err != nil {
			if rerr := s.table.Restore(before); rerr != nil {
				s.logger.Error("Failed to roll back room", "error", rerr)
			}
			s.viewers = viewers
			s.logger.Error("Failed to persist room", "error", err)
			return fmt.Errorf("failed to persist room: %w", err)
		}

		s.lastActive = s.clock.Now()
		s.broadcast()
		return nil
	})
}

func (s *Session) broadcast() {
	for sub, v := range s.viewers {
		sub.Deliver(s.table.View(v.playerID, v.isHost))
	}
}

// Join seats (or reconnects) a player. hostKey grants host rights when it
// matches the room's key. The caller attaches a subscriber with Subscribe.
func (s *Session) Join(ctx context.Context, nick, playerKey, hostKey string) (JoinResult, error) {
	var res JoinResult
	err := s.mutate(ctx, func() (bool, error) {
		p, err := s.table.Join(nick, playerKey)
		if err != nil {
			return false, err
		}
		res.Player, _ = s.table.Player(p.ID)
		res.IsHost = s.table.IsHost(hostKey)
		return true, nil
	})
	if err != nil {
		return JoinResult{}, err
	}
	s.logger.Info("Player joined", "nick", res.Player.Nick, "seat", res.Player.Seat, "host", res.IsHost)
	return res, nil
}

// Subscribe attaches sub to playerID's seat ("" to spectate) and delivers
// the current view to it. sub must be comparable, typically a pointer.
func (s *Session) Subscribe(ctx context.Context, sub Subscriber, playerID string, isHost bool) error {
	return s.exec(ctx, func() error {
		if playerID != "" {
			if _, ok := s.table.Player(playerID); !ok {
				return game.ErrUnknownPlayer
			}
		}
		s.viewers[sub] = viewer{playerID: playerID, isHost: isHost}
		sub.Deliver(s.table.View(playerID, isHost))
		return nil
	})
}

// Leave unsubscribes sub. Its player is marked disconnected once no other
// subscriber is attached to the same seat.
func (s *Session) Leave(ctx context.Context, sub Subscriber) error {
	return s.mutate(ctx, func() (bool, error) {
		v, ok := s.viewers[sub]
		if !ok {
			return false, nil
		}
		delete(s.viewers, sub)
		if v.playerID == "" {
			return false, nil
		}
		for _, other := range s.viewers {
			if other.playerID == v.playerID {
				return false, nil
			}
		}
		return s.table.Disconnect(v.playerID), nil
	})
}

// StartHand deals the next hand. Only the host may start hands.
func (s *Session) StartHand(ctx context.Context, isHost bool) error {
	if !isHost {
		return game.ErrNotHost
	}
	return s.mutate(ctx, func() (bool, error) {
		if err := s.table.StartHand(); err != nil {
			return false, err
		}
		s.logger.Debug("Hand started", "event", s.table.View("", false).Game.LastEvent)
		return true, nil
	})
}

// Act submits a player decision.
func (s *Session) Act(ctx context.Context, playerID string, d game.Decision) error {
	return s.mutate(ctx, func() (bool, error) {
		if err := s.table.Act(playerID, d); err != nil {
			return false, err
		}
		return true, nil
	})
}

// View returns the projection for playerID ("" for a spectator).
func (s *Session) View(ctx context.Context, playerID string, isHost bool) (game.View, error) {
	var v game.View
	err := s.exec(ctx, func() error {
		v = s.table.View(playerID, isHost)
		return nil
	})
	return v, err
}

// Snapshot returns a copy of the full room state.
func (s *Session) Snapshot(ctx context.Context) (*game.Snapshot, error) {
	var snap *game.Snapshot
	err := s.exec(ctx, func() error {
		snap = s.table.Snapshot()
		return nil
	})
	return snap, err
}

// idle reports the number of subscribers and when the room last changed.
func (s *Session) idle(ctx context.Context) (int, time.Time, error) {
	var (
		n     int
		since time.Time
	)
	err := s.exec(ctx, func() error {
		n, since = len(s.viewers), s.lastActive
		return nil
	})
	return n, since, err
}

// Close stops the session goroutine. Commands sent afterwards fail with
// ErrClosed.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	<-s.done
}
