package poker

import (
	"fmt"
	"strings"
)

// Suit is one of the four card suits.
type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

const suitChars = "shdc"

func (s Suit) String() string {
	if int(s) >= len(suitChars) {
		return "?"
	}
	return string(suitChars[s])
}

// Rank values run from 2 to 14, aces high.
const (
	Two   = 2
	Three = 3
	Four  = 4
	Five  = 5
	Six   = 6
	Seven = 7
	Eight = 8
	Nine  = 9
	Ten   = 10
	Jack  = 11
	Queen = 12
	King  = 13
	Ace   = 14
)

const rankChars = "23456789TJQKA"

// Card is an immutable playing card value.
type Card struct {
	Rank int
	Suit Suit
}

// NewCard creates a card from a rank (2-14) and suit.
func NewCard(rank int, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// Valid reports whether the card is one of the 52 standard cards.
func (c Card) Valid() bool {
	return c.Rank >= Two && c.Rank <= Ace && c.Suit <= Clubs
}

// String returns the two character form, e.g. "As", "Td", "2c".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankChars[c.Rank-Two]) + c.Suit.String()
}

// ParseCard parses a string like "As" or "TD" into a Card. "10" is accepted
// for tens.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card string: %q", s)
	}

	rank := strings.IndexByte(rankChars, upper(s[0]))
	if rank < 0 {
		return Card{}, fmt.Errorf("invalid rank: %c", s[0])
	}

	suit := strings.IndexByte(suitChars, lower(s[1]))
	if suit < 0 {
		return Card{}, fmt.Errorf("invalid suit: %c", s[1])
	}

	return Card{Rank: rank + Two, Suit: Suit(suit)}, nil
}

// MustParseCards parses a space separated list of cards and panics on error.
// Intended for tests and fixtures.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// ParseCards parses a space or comma separated list of cards.
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MarshalText encodes the card in its two character form.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid card %+v", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card from its two character form.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FormatCards joins cards with spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
