package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/chipholdem/internal/randutil"
	"github.com/lox/chipholdem/poker"
)

// sequentialIDs returns an id source yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// seededDecks shuffles every deck from a deterministic stream.
func seededDecks(seed int64) func() (*poker.Deck, error) {
	r := randutil.NewReader(seed)
	return func() (*poker.Deck, error) {
		d := poker.NewDeck()
		return d, d.Shuffle(r)
	}
}

// stackedDeck builds a deck that deals the given cards first and the rest of
// the canonical deck after them. Hole cards go out one per player per pass
// in seat order, then the board, with no burn cards.
func stackedDeck(t *testing.T, cards string) func() (*poker.Deck, error) {
	t.Helper()
	front := poker.MustParseCards(cards)
	used := make(map[poker.Card]bool, len(front))
	for _, c := range front {
		require.False(t, used[c], "duplicate card %s", c)
		used[c] = true
	}
	order := append([]poker.Card(nil), front...)
	for _, c := range poker.NewDeck().Cards() {
		if !used[c] {
			order = append(order, c)
		}
	}
	return func() (*poker.Deck, error) {
		return poker.NewDeckFromCards(order...), nil
	}
}

// newTestTable creates an initialized table with n players named p1..pn in
// seats 1..n.
func newTestTable(t *testing.T, n int, opts ...Option) (*Table, []*Player) {
	t.Helper()
	opts = append([]Option{WithIDSource(sequentialIDs()), WithDeckSource(seededDecks(1))}, opts...)
	tbl := NewTable(opts...)
	require.NoError(t, tbl.Init(Config{
		Code:          "TEST1",
		MaxPlayers:    8,
		StartingChips: 10000,
		SmallBlind:    50,
		BigBlind:      100,
		HostKey:       "host",
	}))
	players := make([]*Player, n)
	for i := range n {
		p, err := tbl.Join(fmt.Sprintf("p%d", i+1), "")
		require.NoError(t, err)
		players[i] = p
	}
	return tbl, players
}

// act applies a decision for whoever holds the seat and fails the test on
// rejection.
func act(t *testing.T, tbl *Table, seat int, d Decision) {
	t.Helper()
	p := tbl.playerBySeat(seat)
	require.NotNil(t, p, "no player in seat %d", seat)
	require.NoError(t, tbl.Act(p.ID, d), "seat %d %s", seat, d)
}

func fold() Decision { return Decision{Action: Fold} }
func check() Decision { return Decision{Action: Check} }
func call() Decision { return Decision{Action: Call} }
func allIn() Decision { return Decision{Action: AllIn} }
func raiseTo(n int) Decision { return Decision{Action: Raise, RaiseTo: n} }
