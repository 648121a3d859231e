package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/chipholdem/poker"
)

// Pot is one layer of the pot. Every contributor put Tier-prev chips into it;
// only the Eligible players (contributors who did not fold) can win it.
type Pot struct {
	Amount       int      `json:"amount"`
	Tier         int      `json:"tier"`
	Contributors []string `json:"contributors"`
	Eligible     []string `json:"eligible"`
}

// BuildPots layers the committed amounts of dealt-in players into a main pot
// and side pots, smallest commitment first.
func BuildPots(players []*Player) []Pot {
	var contributors []*Player
	for _, p := range players {
		if p.InHand && p.Committed > 0 {
			contributors = append(contributors, p)
		}
	}
	slices.SortFunc(contributors, func(a, b *Player) int { return a.Seat - b.Seat })

	var tiers []int
	for _, p := range contributors {
		if !slices.Contains(tiers, p.Committed) {
			tiers = append(tiers, p.Committed)
		}
	}
	slices.Sort(tiers)

	pots := make([]Pot, 0, len(tiers))
	prev := 0
	for _, tier := range tiers {
		pot := Pot{Tier: tier}
		for _, p := range contributors {
			if p.Committed < tier {
				continue
			}
			pot.Contributors = append(pot.Contributors, p.ID)
			if !p.Folded {
				pot.Eligible = append(pot.Eligible, p.ID)
			}
		}
		pot.Amount = (tier - prev) * len(pot.Contributors)
		prev = tier
		pots = append(pots, pot)
	}
	return pots
}

// Showdown records how the last hand was settled.
type Showdown struct {
	Board    []poker.Card            `json:"board"`
	Winners  []Winner                `json:"winners"`
	Pots     []PotResult             `json:"pots,omitempty"`
	Revealed map[string][]poker.Card `json:"revealed"`
}

// Winner is a player's total payout for the hand.
type Winner struct {
	PlayerID string `json:"playerId"`
	Nick     string `json:"nick"`
	Amount   int    `json:"amount"`
	HandName string `json:"handName,omitempty"`
}

// PotResult is how a single pot layer was paid. Refunded is set when every
// contributor to the layer folded and it went back to them.
type PotResult struct {
	Amount   int      `json:"amount"`
	Winners  []string `json:"winners"`
	Refunded bool     `json:"refunded,omitempty"`
}

// splitPot divides amount between winners (sorted by seat). Odd chips go one
// at a time to the lowest seats.
func splitPot(amount int, winners []*Player) map[string]int {
	out := make(map[string]int, len(winners))
	if len(winners) == 0 {
		return out
	}
	share := amount / len(winners)
	remainder := amount % len(winners)
	for _, w := range winners {
		amt := share
		if remainder > 0 {
			amt++
			remainder--
		}
		out[w.ID] += amt
	}
	return out
}

// settle evaluates every contender, pays out every pot layer and finishes
// the hand.
func (t *Table) settle() {
	h := &t.hand
	h.Phase = PhaseShowdown
	h.TurnSeat = 0

	sd := &Showdown{
		Board:    slices.Clone(h.Board),
		Revealed: make(map[string][]poker.Card),
	}
	ranks := make(map[string]poker.HandRank)
	for _, p := range t.contenders() {
		sd.Revealed[p.ID] = slices.Clone(p.Hole)
		rank, err := poker.Best5of7(append(slices.Clone(p.Hole), h.Board...))
		if err != nil {
			// Unreachable with a full board; treat as the weakest hand.
			continue
		}
		ranks[p.ID] = rank
	}

	won := make(map[string]int)
	paid := 0
	for _, pot := range BuildPots(t.players) {
		result := PotResult{Amount: pot.Amount}
		if len(pot.Eligible) == 0 {
			result.Refunded = true
			result.Winners = pot.Contributors
			for _, id := range pot.Contributors {
				t.playerByID(id).Chips += pot.Amount / len(pot.Contributors)
			}
			paid += pot.Amount
			sd.Pots = append(sd.Pots, result)
			continue
		}

		winners := t.bestHands(pot.Eligible, ranks)
		for id, amt := range splitPot(pot.Amount, winners) {
			won[id] += amt
		}
		for _, w := range winners {
			result.Winners = append(result.Winners, w.ID)
		}
		paid += pot.Amount
		sd.Pots = append(sd.Pots, result)
	}

	var parts []string
	for _, p := range t.players {
		amt, ok := won[p.ID]
		if !ok {
			continue
		}
		p.Chips += amt
		rank := ranks[p.ID]
		sd.Winners = append(sd.Winners, Winner{
			PlayerID: p.ID,
			Nick:     p.Nick,
			Amount:   amt,
			HandName: rank.Type.String(),
		})
		parts = append(parts, fmt.Sprintf("%s wins %d with %s", p.Nick, amt, strings.ToLower(rank.Type.String())))
	}
	h.Pot -= paid
	h.LastEvent = strings.Join(parts, ", ") + "."
	t.finish(sd)
}

// bestHands returns the eligible players holding the strongest hand, in seat
// order.
func (t *Table) bestHands(eligible []string, ranks map[string]poker.HandRank) []*Player {
	var (
		best    poker.HandRank
		winners []*Player
	)
	for _, id := range eligible {
		p := t.playerByID(id)
		rank := ranks[id]
		if len(winners) == 0 {
			best, winners = rank, []*Player{p}
			continue
		}
		switch rank.Compare(best) {
		case 1:
			best, winners = rank, []*Player{p}
		case 0:
			winners = append(winners, p)
		}
	}
	slices.SortFunc(winners, func(a, b *Player) int { return a.Seat - b.Seat })
	return winners
}

// awardUncontested gives the whole pot to the last player standing without
// revealing any cards.
func (t *Table) awardUncontested() {
	h := &t.hand
	winner := t.contenders()[0]
	amount := h.Pot
	winner.Chips += amount
	h.Pot = 0
	h.LastEvent = fmt.Sprintf("%s wins %d (everyone else folded).", winner.Nick, amount)
	t.finish(&Showdown{
		Board:    slices.Clone(h.Board),
		Winners:  []Winner{{PlayerID: winner.ID, Nick: winner.Nick, Amount: amount}},
		Pots:     []PotResult{{Amount: amount, Winners: []string{winner.ID}}},
		Revealed: map[string][]poker.Card{},
	})
}
