package game

import (
	"fmt"

	"github.com/lox/chipholdem/poker"
)

// Hand is the live state of the current (or most recent) hand.
type Hand struct {
	Number     int          `json:"handNumber"`
	Phase      Phase        `json:"phase"`
	DealerSeat int          `json:"dealerSeat"`
	SBSeat     int          `json:"sbSeat"`
	BBSeat     int          `json:"bbSeat"`
	TurnSeat   int          `json:"turnSeat"` // 0 when nobody is to act
	Deck       *poker.Deck  `json:"deck,omitempty"`
	Board      []poker.Card `json:"board"`
	Pot        int          `json:"pot"`
	CurrentBet int          `json:"currentBet"`
	MinRaiseTo int          `json:"minRaiseTo"`

	// Acted holds the ids of players who have acted since the last bet or
	// raise on this street.
	Acted map[string]bool `json:"acted"`

	LastEvent    string    `json:"lastEvent"`
	LastShowdown *Showdown `json:"lastShowdown,omitempty"`
}

// StartHand deals a new hand: it rotates the button, deals two hole cards to
// every funded player, posts the blinds and sets the first player to act.
//
// With fewer than two funded players nothing happens except LastEvent
// explaining why.
func (t *Table) StartHand() error {
	if t.cfg == nil {
		return ErrNotInitialized
	}
	h := &t.hand
	if h.Phase != Waiting {
		return ErrHandInProgress
	}

	funded := 0
	for _, p := range t.players {
		if p.Chips > 0 {
			funded++
		}
	}
	if funded < 2 {
		h.LastEvent = "Need at least 2 players with chips."
		return nil
	}

	deck, err := t.newDeck()
	if err != nil {
		return fmt.Errorf("failed to shuffle deck: %w", err)
	}

	for _, p := range t.players {
		p.resetForHand()
	}
	h.Deck = deck
	h.Board = nil
	h.Pot = 0
	h.CurrentBet = 0
	h.Acted = make(map[string]bool)
	h.LastShowdown = nil
	t.rotateButton()

	dealt := t.dealtIn()
	for range 2 {
		for _, p := range dealt {
			card, _ := h.Deck.DealOne()
			p.Hole = append(p.Hole, card)
		}
	}

	sb := t.playerBySeat(h.SBSeat)
	bb := t.playerBySeat(h.BBSeat)
	t.commit(sb, t.cfg.SmallBlind)
	t.commit(bb, t.cfg.BigBlind)
	h.CurrentBet = max(sb.BetThisRound, bb.BetThisRound)
	h.MinRaiseTo = h.CurrentBet + t.cfg.BigBlind

	h.Phase = Preflop
	h.Number++
	h.LastEvent = fmt.Sprintf("Hand #%d started. Blinds posted.", h.Number)

	h.TurnSeat = t.firstToActPreflop()
	t.continueStreet()
	return nil
}

// advanceStreet deals the next street, or settles the hand after the river.
func (t *Table) advanceStreet() {
	h := &t.hand
	switch h.Phase {
	case Preflop:
		t.dealBoard(3)
		h.Phase = Flop
		h.LastEvent = "Flop dealt."
	case Flop:
		t.dealBoard(1)
		h.Phase = Turn
		h.LastEvent = "Turn dealt."
	case Turn:
		t.dealBoard(1)
		h.Phase = River
		h.LastEvent = "River dealt."
	case River:
		t.settle()
		return
	default:
		return
	}

	for _, p := range t.players {
		p.BetThisRound = 0
	}
	h.CurrentBet = 0
	h.MinRaiseTo = t.cfg.BigBlind
	clear(h.Acted)
	h.TurnSeat = t.firstToActPostflop()
}

// runOut deals the rest of the board and goes straight to showdown.
func (t *Table) runOut() {
	h := &t.hand
	h.TurnSeat = 0
	t.dealBoard(5 - len(h.Board))
	h.Phase = River
	t.settle()
}

func (t *Table) dealBoard(n int) {
	if n <= 0 {
		return
	}
	t.hand.Board = append(t.hand.Board, t.hand.Deck.Deal(n)...)
}

// finish returns the table to waiting and records the result for the next
// broadcast. Board and hole cards stay visible until the next hand.
func (t *Table) finish(sd *Showdown) {
	h := &t.hand
	h.Phase = Waiting
	h.TurnSeat = 0
	h.Deck = nil
	h.CurrentBet = 0
	h.MinRaiseTo = 0
	clear(h.Acted)
	h.LastShowdown = sd
	for _, p := range t.players {
		p.BetThisRound = 0
	}
}
