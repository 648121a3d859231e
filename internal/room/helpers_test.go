package room

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/chipholdem/internal/game"
	"github.com/lox/chipholdem/internal/randutil"
	"github.com/lox/chipholdem/internal/store"
	"github.com/lox/chipholdem/poker"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// recorder is a Subscriber that keeps every view it is sent.
type recorder struct {
	mu    sync.Mutex
	views []game.View
}

func (r *recorder) Deliver(v game.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *recorder) last() game.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[len(r.views)-1]
}

// flakyStore fails saves while failing is set.
type flakyStore struct {
	*store.Memory
	mu      sync.Mutex
	failing bool
}

var errDiskFull = errors.New("disk full")

func (f *flakyStore) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

func (f *flakyStore) Save(ctx context.Context, code string, snap *game.Snapshot) error {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return errDiskFull
	}
	return f.Memory.Save(ctx, code, snap)
}

func seededDecks(seed int64) game.Option {
	r := randutil.NewReader(seed)
	var mu sync.Mutex
	return game.WithDeckSource(func() (*poker.Deck, error) {
		mu.Lock()
		defer mu.Unlock()
		d := poker.NewDeck()
		return d, d.Shuffle(r)
	})
}

type testRoom struct {
	manager *Manager
	store   store.Store
	clock   *quartz.Mock
	session *Session
	hostKey string
}

func newTestRoom(t *testing.T, st store.Store) *testRoom {
	t.Helper()
	clock := quartz.NewMock(t)
	m := NewManager(st, testLogger(),
		WithClock(clock),
		WithTableOptions(seededDecks(7)),
		WithIdleTimeout(10*time.Minute),
	)
	t.Cleanup(func() { _ = m.Close() })

	created, err := m.Create(context.Background(), Settings{MaxPlayers: 6, StartingChips: 10000, SmallBlind: 50, BigBlind: 100})
	require.NoError(t, err)
	s, err := m.Get(context.Background(), created.Code)
	require.NoError(t, err)
	return &testRoom{manager: m, store: st, clock: clock, session: s, hostKey: created.HostKey}
}

func (r *testRoom) join(t *testing.T, nick string, sub Subscriber) JoinResult {
	t.Helper()
	res, err := r.session.Join(context.Background(), nick, "", "")
	require.NoError(t, err, "join %s", nick)
	require.NoError(t, r.session.Subscribe(context.Background(), sub, res.Player.ID, res.IsHost))
	return res
}
