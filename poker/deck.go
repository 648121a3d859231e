package poker

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Deck is an ordered sequence of undealt cards. Cards are dealt from the front.
type Deck struct {
	cards []Card
}

// NewDeck returns all 52 cards in canonical order: ranks ascending, and
// spades, hearts, diamonds, clubs within each rank.
func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for rank := Two; rank <= Ace; rank++ {
		for suit := Spades; suit <= Clubs; suit++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return &Deck{cards: cards}
}

// NewShuffledDeck returns a fresh deck shuffled with crypto/rand.
func NewShuffledDeck() (*Deck, error) {
	d := NewDeck()
	if err := d.Shuffle(rand.Reader); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDeckFromCards creates a deck that deals the given cards in order.
func NewDeckFromCards(cards ...Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// Shuffle permutes the remaining cards in place using Fisher-Yates. Each swap
// index is drawn as a 32-bit value from r reduced modulo (i+1).
func (d *Deck) Shuffle(r io.Reader) error {
	var buf [4]byte
	for i := len(d.cards) - 1; i > 0; i-- {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return fmt.Errorf("failed to read random bytes: %w", err)
		}
		j := int(binary.LittleEndian.Uint32(buf[:]) % uint32(i+1))
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	return nil
}

// Deal removes and returns the next n cards. It returns nil if fewer than n
// cards remain.
func (d *Deck) Deal(n int) []Card {
	if n > len(d.cards) {
		return nil
	}
	dealt := append([]Card(nil), d.cards[:n]...)
	d.cards = d.cards[n:]
	return dealt
}

// DealOne deals a single card. ok is false when the deck is exhausted.
func (d *Deck) DealOne() (card Card, ok bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card = d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the undealt cards in deal order.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// Clone returns an independent copy of the deck.
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	return NewDeckFromCards(d.cards...)
}

// MarshalJSON encodes the undealt cards in deal order.
func (d *Deck) MarshalJSON() ([]byte, error) {
	cards := d.cards
	if cards == nil {
		cards = []Card{}
	}
	return json.Marshal(cards)
}

// UnmarshalJSON restores the undealt cards.
func (d *Deck) UnmarshalJSON(data []byte) error {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return err
	}
	d.cards = cards
	return nil
}
