package game

import (
	"fmt"
	"maps"
	"slices"
)

// Snapshot is everything needed to rebuild a table: config, players and hand
// state, including the undealt deck. It is the unit of persistence.
type Snapshot struct {
	Config  *Config   `json:"config"`
	Players []*Player `json:"players"`
	Hand    Hand      `json:"game"`
}

// Snapshot returns a deep copy of the table state.
func (t *Table) Snapshot() *Snapshot {
	s := &Snapshot{
		Players: make([]*Player, len(t.players)),
		Hand:    cloneHand(t.hand),
	}
	if t.cfg != nil {
		cfg := *t.cfg
		s.Config = &cfg
	}
	for i, p := range t.players {
		s.Players[i] = p.clone()
	}
	return s
}

// Restore replaces the table state with a deep copy of s.
func (t *Table) Restore(s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("nil snapshot")
	}
	if s.Config != nil {
		if err := s.Config.Validate(); err != nil {
			return fmt.Errorf("invalid snapshot: %w", err)
		}
	}
	if s.Hand.Phase.Betting() && s.Hand.Deck == nil {
		return fmt.Errorf("invalid snapshot: %s hand without a deck", s.Hand.Phase)
	}

	players := make([]*Player, len(s.Players))
	seen := make(map[int]bool, len(s.Players))
	for i, p := range s.Players {
		if seen[p.Seat] {
			return fmt.Errorf("invalid snapshot: seat %d taken twice", p.Seat)
		}
		seen[p.Seat] = true
		players[i] = p.clone()
	}
	slices.SortFunc(players, func(a, b *Player) int { return a.Seat - b.Seat })

	t.cfg = nil
	if s.Config != nil {
		cfg := *s.Config
		t.cfg = &cfg
	}
	t.players = players
	t.hand = cloneHand(s.Hand)
	return nil
}

// DisconnectAll clears every connected flag, used after reloading a room
// whose sockets are gone.
func (t *Table) DisconnectAll() {
	for _, p := range t.players {
		p.Connected = false
	}
}

func cloneHand(h Hand) Hand {
	out := h
	out.Deck = h.Deck.Clone()
	out.Board = slices.Clone(h.Board)
	out.Acted = maps.Clone(h.Acted)
	if out.Acted == nil {
		out.Acted = make(map[string]bool)
	}
	if h.LastShowdown != nil {
		out.LastShowdown = cloneShowdown(h.LastShowdown)
	}
	return out
}
