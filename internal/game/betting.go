package game

import (
	"fmt"
	"strings"
)

// Phase is the stage of the current hand.
type Phase int

const (
	Waiting Phase = iota
	Preflop
	Flop
	Turn
	River
	PhaseShowdown
)

var phaseNames = [...]string{"waiting", "preflop", "flop", "turn", "river", "showdown"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Betting reports whether the phase is a betting street.
func (p Phase) Betting() bool {
	return p >= Preflop && p <= River
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
	AllIn
)

var actionNames = [...]string{"fold", "check", "call", "raise", "allin"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction converts a wire name ("fold", "check", "call", "raise",
// "allin") into an Action.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Decision is a player's chosen action. RaiseTo is the total street bet the
// player wants to reach and is only read for Raise.
type Decision struct {
	Action  Action `json:"action"`
	RaiseTo int    `json:"raiseTo,omitempty"`
}

func (d Decision) String() string {
	if d.Action == Raise {
		return fmt.Sprintf("raise to %d", d.RaiseTo)
	}
	return d.Action.String()
}

// Act validates and applies a decision for the player whose turn it is. On
// rejection an *ActionError is returned and nothing is mutated.
func (t *Table) Act(playerID string, d Decision) error {
	if t.cfg == nil {
		return ErrNotInitialized
	}
	h := &t.hand
	if !h.Phase.Betting() {
		return reject("no active hand")
	}
	p := t.playerByID(playerID)
	if p == nil {
		return reject("unknown player")
	}
	if h.TurnSeat == 0 || p.Seat != h.TurnSeat {
		return reject("not your turn")
	}
	if !p.InHand || p.Folded || p.AllIn {
		return reject("you cannot act")
	}

	toCall := h.CurrentBet - p.BetThisRound

	// Validate everything first so a rejection never leaves a partial change.
	switch d.Action {
	case Fold, Call:
	case Check:
		if toCall != 0 {
			return reject("cannot check facing a bet of %d", h.CurrentBet)
		}
	case Raise:
		if d.RaiseTo <= h.CurrentBet {
			return reject("raise must be above the current bet of %d", h.CurrentBet)
		}
		if d.RaiseTo < h.MinRaiseTo {
			return reject("raise must be at least %d", h.MinRaiseTo)
		}
		if d.RaiseTo-p.BetThisRound > p.Chips {
			return reject("not enough chips, use allin")
		}
	case AllIn:
		if p.Chips <= 0 {
			return reject("no chips left")
		}
	default:
		return reject("unknown action %q", d.Action)
	}

	switch d.Action {
	case Fold:
		p.Folded = true
		h.LastEvent = fmt.Sprintf("%s folds", p.Nick)
	case Check:
		h.LastEvent = fmt.Sprintf("%s checks", p.Nick)
	case Call:
		paid := t.commit(p, min(p.Chips, toCall))
		if paid == 0 {
			h.LastEvent = fmt.Sprintf("%s checks", p.Nick)
		} else {
			h.LastEvent = fmt.Sprintf("%s calls %d", p.Nick, paid)
		}
	case Raise:
		t.commit(p, d.RaiseTo-p.BetThisRound)
		t.reopen(p)
		h.LastEvent = fmt.Sprintf("%s raises to %d", p.Nick, d.RaiseTo)
	case AllIn:
		t.commit(p, p.Chips)
		if p.BetThisRound > h.CurrentBet {
			t.reopen(p)
		}
		h.LastEvent = fmt.Sprintf("%s is all-in for %d", p.Nick, p.BetThisRound)
	}
	h.Acted[p.ID] = true

	t.afterAction(p)
	return nil
}

// commit moves up to amount chips from the player into the pot and returns
// what was actually paid.
func (t *Table) commit(p *Player, amount int) int {
	amount = max(0, min(amount, p.Chips))
	p.Chips -= amount
	p.BetThisRound += amount
	p.Committed += amount
	t.hand.Pot += amount
	if p.Chips == 0 && p.InHand {
		p.AllIn = true
	}
	return amount
}

// reopen makes the raiser's street bet the new price and clears the acted set
// so everyone else must respond again.
func (t *Table) reopen(raiser *Player) {
	h := &t.hand
	h.CurrentBet = raiser.BetThisRound
	h.MinRaiseTo = h.CurrentBet + t.cfg.BigBlind
	clear(h.Acted)
}

func (t *Table) afterAction(actor *Player) {
	if t.contenderCount() == 1 {
		t.awardUncontested()
		return
	}
	t.hand.TurnSeat = t.nextToActFrom(actor.Seat)
	t.continueStreet()
}

// continueStreet runs the board out when no more betting is possible,
// advances the street when the round is complete and otherwise leaves the
// turn where it is.
func (t *Table) continueStreet() {
	for t.hand.Phase.Betting() {
		if t.hand.TurnSeat == 0 || t.bettingClosed() {
			t.runOut()
			return
		}
		if !t.roundComplete() {
			return
		}
		t.advanceStreet()
	}
}

// roundComplete reports whether every player who can act has acted in the
// current cycle and matched the current bet.
func (t *Table) roundComplete() bool {
	for _, p := range t.players {
		if !p.CanAct() {
			continue
		}
		if !t.hand.Acted[p.ID] || p.BetThisRound != t.hand.CurrentBet {
			return false
		}
	}
	return true
}

// bettingClosed reports whether nobody left in the hand can act.
func (t *Table) bettingClosed() bool {
	for _, p := range t.players {
		if p.CanAct() {
			return false
		}
	}
	return true
}

// ValidActions lists the actions the player could legally take right now.
func (t *Table) ValidActions(playerID string) []Action {
	h := &t.hand
	p := t.playerByID(playerID)
	if p == nil || !h.Phase.Betting() || p.Seat != h.TurnSeat || !p.CanAct() {
		return nil
	}
	toCall := h.CurrentBet - p.BetThisRound
	actions := []Action{Fold}
	if toCall == 0 {
		actions = append(actions, Check)
	} else {
		actions = append(actions, Call)
	}
	if h.MinRaiseTo-p.BetThisRound <= p.Chips {
		actions = append(actions, Raise)
	}
	return append(actions, AllIn)
}
