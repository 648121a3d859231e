package game

// Seat routing. All walks are by seat number so they keep working when the
// reference seat itself is no longer eligible (a player who just folded, or a
// dealer who busted).

// contenders returns inHand && !folded players in ascending seat order.
func (t *Table) contenders() []*Player {
	var out []*Player
	for _, p := range t.players {
		if p.Contending() {
			out = append(out, p)
		}
	}
	return out
}

func (t *Table) contenderCount() int {
	n := 0
	for _, p := range t.players {
		if p.Contending() {
			n++
		}
	}
	return n
}

// dealtIn returns players dealt into the current hand in ascending seat order.
func (t *Table) dealtIn() []*Player {
	var out []*Player
	for _, p := range t.players {
		if p.InHand {
			out = append(out, p)
		}
	}
	return out
}

// nextAfter returns the first player in ps (sorted by seat) whose seat is
// strictly after seat, wrapping around. ok is false if ps is empty.
func nextAfter(ps []*Player, seat int) (*Player, bool) {
	if len(ps) == 0 {
		return nil, false
	}
	for _, p := range ps {
		if p.Seat > seat {
			return p, true
		}
	}
	return ps[0], true
}

// nextToActFrom walks contenders cyclically starting after seat and returns
// the first one who is not all-in, or 0 if nobody can act.
func (t *Table) nextToActFrom(seat int) int {
	ps := t.contenders()
	if len(ps) == 0 {
		return 0
	}
	start := 0
	for start < len(ps) && ps[start].Seat <= seat {
		start++
	}
	for i := range ps {
		p := ps[(start+i)%len(ps)]
		if !p.AllIn {
			return p.Seat
		}
	}
	return 0
}

// actsFrom returns seat itself if that player can act, otherwise the next
// player who can.
func (t *Table) actsFrom(seat int) int {
	if p := t.playerBySeat(seat); p != nil && p.CanAct() {
		return seat
	}
	return t.nextToActFrom(seat)
}

// headsUp reports whether exactly two players were dealt into the hand.
func (t *Table) headsUp() bool {
	return len(t.dealtIn()) == 2
}

func (t *Table) firstToActPreflop() int {
	if t.headsUp() {
		return t.actsFrom(t.hand.DealerSeat)
	}
	return t.nextToActFrom(t.hand.BBSeat)
}

func (t *Table) firstToActPostflop() int {
	if t.headsUp() {
		return t.actsFrom(t.hand.BBSeat)
	}
	return t.nextToActFrom(t.hand.DealerSeat)
}

// rotateButton picks the dealer and blind seats for a new hand. Players must
// already be marked InHand.
func (t *Table) rotateButton() {
	h := &t.hand
	ps := t.dealtIn()
	if h.DealerSeat == 0 {
		h.DealerSeat = ps[0].Seat
	} else {
		dealer, _ := nextAfter(ps, h.DealerSeat)
		h.DealerSeat = dealer.Seat
	}

	if len(ps) == 2 {
		h.SBSeat = h.DealerSeat
		bb, _ := nextAfter(ps, h.DealerSeat)
		h.BBSeat = bb.Seat
		return
	}
	sb, _ := nextAfter(ps, h.DealerSeat)
	bb, _ := nextAfter(ps, sb.Seat)
	h.SBSeat, h.BBSeat = sb.Seat, bb.Seat
}
