package game

import (
	"strings"
	"unicode/utf8"

	"github.com/lox/chipholdem/poker"
)

const maxNickLength = 20

// Player is a seated participant. A player is created on first join and lives
// as long as the room; the per-hand fields are reset at every hand start.
type Player struct {
	ID        string `json:"id"`
	Key       string `json:"key"` // reconnect secret
	Nick      string `json:"nick"`
	Seat      int    `json:"seat"`
	Chips     int    `json:"chips"`
	Connected bool   `json:"connected"`

	InHand       bool         `json:"inHand"`
	Folded       bool         `json:"folded"`
	AllIn        bool         `json:"allIn"`
	Hole         []poker.Card `json:"hole"`
	BetThisRound int          `json:"betThisRound"`
	Committed    int          `json:"committed"`
}

// Contending reports whether the player can still win chips this hand.
func (p *Player) Contending() bool {
	return p.InHand && !p.Folded
}

// CanAct reports whether the player still has decisions to make this hand.
func (p *Player) CanAct() bool {
	return p.InHand && !p.Folded && !p.AllIn
}

func (p *Player) resetForHand() {
	p.InHand = p.Chips > 0
	p.Folded = false
	p.AllIn = false
	p.Hole = nil
	p.BetThisRound = 0
	p.Committed = 0
}

func (p *Player) clone() *Player {
	c := *p
	c.Hole = append([]poker.Card(nil), p.Hole...)
	return &c
}

// NormalizeNick trims whitespace and caps the nick at 20 characters.
func NormalizeNick(nick string) string {
	nick = strings.TrimSpace(nick)
	if utf8.RuneCountInString(nick) <= maxNickLength {
		return nick
	}
	runes := []rune(nick)
	return strings.TrimSpace(string(runes[:maxNickLength]))
}
