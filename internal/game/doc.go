// Package game implements the authoritative Texas Hold'em engine for a single
// poker room.
//
// The main type is Table, which owns the room configuration, the seated
// players and the live hand. Every operation is synchronous and runs to
// completion; a Table is not safe for concurrent use and is expected to be
// driven by exactly one goroutine (see internal/room).
//
// # Basic Usage
//
//	t := game.NewTable()
//	_ = t.Init(game.Config{Code: "ABCDE", MaxPlayers: 6, StartingChips: 10000,
//	    SmallBlind: 50, BigBlind: 100, HostKey: hostKey})
//	alice, _ := t.Join("alice", "")
//	bob, _ := t.Join("bob", "")
//	_ = t.StartHand()
//	err := t.Act(alice.ID, game.Decision{Action: game.Call})
//
// Rejected actions return an *ActionError and leave the table untouched.
//
// # Deterministic Testing
//
// Decks are shuffled with crypto/rand. Tests can inject a deck source:
//
//	t := game.NewTable(game.WithDeckSource(func() (*poker.Deck, error) {
//	    d := poker.NewDeck()
//	    return d, d.Shuffle(randutil.NewReader(42))
//	}))
//
// # Architecture
//
// Table delegates to a few focused pieces:
//   - seats.go: dealer/blind rotation and next-to-act routing
//   - betting.go: action validation and the betting round state machine
//   - pot.go: layered side pots and showdown settlement
//   - poker.Best5of7: hand ranking
package game
