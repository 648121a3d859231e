package game

import (
	"maps"
	"slices"

	"github.com/lox/chipholdem/poker"
)

// View is a player-scoped projection of the room. Hole cards of other players
// never appear in it unless they were revealed at the last showdown.
type View struct {
	Room    RoomView   `json:"room"`
	You     *SelfView  `json:"you"`
	IsHost  bool       `json:"isHost"`
	Players []SeatView `json:"players"`
	Game    HandView   `json:"game"`
}

// RoomView is the public part of Config. The host key is never included.
type RoomView struct {
	Code          string `json:"code"`
	MaxPlayers    int    `json:"maxPlayers"`
	StartingChips int    `json:"startingChips"`
	SmallBlind    int    `json:"sb"`
	BigBlind      int    `json:"bb"`
}

// SeatView is what every viewer sees about a seat.
type SeatView struct {
	ID           string `json:"id"`
	Nick         string `json:"nick"`
	Seat         int    `json:"seat"`
	Chips        int    `json:"chips"`
	Connected    bool   `json:"connected"`
	InHand       bool   `json:"inHand"`
	Folded       bool   `json:"folded"`
	AllIn        bool   `json:"allIn"`
	BetThisRound int    `json:"betThisRound"`
	Committed    int    `json:"committed"`
	IsDealer     bool   `json:"isDealer"`
	IsSB         bool   `json:"isSB"`
	IsBB         bool   `json:"isBB"`
	IsTurn       bool   `json:"isTurn"`
}

// SelfView adds the viewer's private state.
type SelfView struct {
	SeatView
	Hole         []poker.Card `json:"hole"`
	ToCall       int          `json:"toCall"`
	ValidActions []Action     `json:"validActions"`
}

// HandView is the public hand state.
type HandView struct {
	HandNumber   int                     `json:"handNumber"`
	Phase        Phase                   `json:"phase"`
	DealerSeat   int                     `json:"dealerSeat"`
	SBSeat       int                     `json:"sbSeat"`
	BBSeat       int                     `json:"bbSeat"`
	TurnSeat     int                     `json:"turnSeat"`
	Board        []poker.Card            `json:"board"`
	Pot          int                     `json:"pot"`
	CurrentBet   int                     `json:"currentBet"`
	MinRaiseTo   int                     `json:"minRaiseTo"`
	LastEvent    string                  `json:"lastEvent"`
	LastShowdown *Showdown               `json:"lastShowdown"`
	Revealed     map[string][]poker.Card `json:"revealed"`
}

// View projects the table for playerID. An empty playerID gives the
// spectator view.
func (t *Table) View(playerID string, isHost bool) View {
	h := &t.hand
	v := View{
		IsHost:  isHost,
		Players: make([]SeatView, 0, len(t.players)),
		Game: HandView{
			HandNumber: h.Number,
			Phase:      h.Phase,
			DealerSeat: h.DealerSeat,
			SBSeat:     h.SBSeat,
			BBSeat:     h.BBSeat,
			TurnSeat:   h.TurnSeat,
			Board:      slices.Clone(h.Board),
			Pot:        h.Pot,
			CurrentBet: h.CurrentBet,
			MinRaiseTo: h.MinRaiseTo,
			LastEvent:  h.LastEvent,
			Revealed:   map[string][]poker.Card{},
		},
	}
	if v.Game.Board == nil {
		v.Game.Board = []poker.Card{}
	}
	if t.cfg != nil {
		v.Room = RoomView{
			Code:          t.cfg.Code,
			MaxPlayers:    t.cfg.MaxPlayers,
			StartingChips: t.cfg.StartingChips,
			SmallBlind:    t.cfg.SmallBlind,
			BigBlind:      t.cfg.BigBlind,
		}
	}
	if sd := h.LastShowdown; sd != nil {
		v.Game.LastShowdown = cloneShowdown(sd)
		maps.Copy(v.Game.Revealed, v.Game.LastShowdown.Revealed)
	}

	for _, p := range t.players {
		seat := t.seatView(p)
		v.Players = append(v.Players, seat)
		if p.ID != playerID {
			continue
		}
		v.You = &SelfView{
			SeatView:     seat,
			Hole:         slices.Clone(p.Hole),
			ValidActions: t.ValidActions(p.ID),
		}
		if v.You.Hole == nil {
			v.You.Hole = []poker.Card{}
		}
		if p.InHand && h.Phase.Betting() {
			v.You.ToCall = min(p.Chips, max(0, h.CurrentBet-p.BetThisRound))
		}
	}
	return v
}

func (t *Table) seatView(p *Player) SeatView {
	h := &t.hand
	return SeatView{
		ID:           p.ID,
		Nick:         p.Nick,
		Seat:         p.Seat,
		Chips:        p.Chips,
		Connected:    p.Connected,
		InHand:       p.InHand,
		Folded:       p.Folded,
		AllIn:        p.AllIn,
		BetThisRound: p.BetThisRound,
		Committed:    p.Committed,
		IsDealer:     h.DealerSeat != 0 && h.DealerSeat == p.Seat,
		IsSB:         h.SBSeat != 0 && h.SBSeat == p.Seat,
		IsBB:         h.BBSeat != 0 && h.BBSeat == p.Seat,
		IsTurn:       h.TurnSeat != 0 && h.TurnSeat == p.Seat,
	}
}

func cloneShowdown(sd *Showdown) *Showdown {
	out := &Showdown{
		Board:    slices.Clone(sd.Board),
		Winners:  slices.Clone(sd.Winners),
		Revealed: make(map[string][]poker.Card, len(sd.Revealed)),
	}
	for _, p := range sd.Pots {
		p.Winners = slices.Clone(p.Winners)
		out.Pots = append(out.Pots, p)
	}
	for id, cards := range sd.Revealed {
		out.Revealed[id] = slices.Clone(cards)
	}
	return out
}
