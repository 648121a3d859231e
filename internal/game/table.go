package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/lox/chipholdem/poker"
)

// Default room settings applied to zero config fields.
const (
	DefaultMaxPlayers    = 8
	DefaultStartingChips = 10_000
	DefaultSmallBlind    = 50
	DefaultBigBlind      = 100

	MinPlayers = 2
	MaxPlayers = 8
)

// Config is the immutable room setup.
type Config struct {
	Code          string `json:"code"`
	MaxPlayers    int    `json:"maxPlayers"`
	StartingChips int    `json:"startingChips"`
	SmallBlind    int    `json:"sb"`
	BigBlind      int    `json:"bb"`
	HostKey       string `json:"hostKey"`
}

// WithDefaults fills zero numeric fields and normalizes the room code.
func (c Config) WithDefaults() Config {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.MaxPlayers == 0 {
		c.MaxPlayers = DefaultMaxPlayers
	}
	if c.StartingChips == 0 {
		c.StartingChips = DefaultStartingChips
	}
	if c.SmallBlind == 0 {
		c.SmallBlind = DefaultSmallBlind
	}
	if c.BigBlind == 0 {
		c.BigBlind = DefaultBigBlind
	}
	return c
}

// Validate checks the config for consistency.
func (c Config) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("%w: code", ErrMissingField)
	}
	if c.HostKey == "" {
		return fmt.Errorf("%w: hostKey", ErrMissingField)
	}
	if c.MaxPlayers < MinPlayers || c.MaxPlayers > MaxPlayers {
		return fmt.Errorf("%w: maxPlayers must be between %d and %d", ErrInvalidConfig, MinPlayers, MaxPlayers)
	}
	if c.SmallBlind < 1 || c.SmallBlind >= c.BigBlind {
		return fmt.Errorf("%w: blinds must satisfy 1 <= sb < bb", ErrInvalidConfig)
	}
	if c.StartingChips < c.BigBlind {
		return fmt.Errorf("%w: startingChips must cover the big blind", ErrInvalidConfig)
	}
	return nil
}

// Option configures a Table.
type Option func(*Table)

// WithDeckSource replaces the crypto-shuffled deck used for each new hand.
func WithDeckSource(fn func() (*poker.Deck, error)) Option {
	return func(t *Table) {
		t.newDeck = fn
	}
}

// WithIDSource replaces the uuid generator used for player ids and keys.
func WithIDSource(fn func() string) Option {
	return func(t *Table) {
		t.newID = fn
	}
}

// Table is one room's complete game state. It is not safe for concurrent
// use.
type Table struct {
	cfg     *Config
	players []*Player // sorted by seat
	hand    Hand

	newDeck func() (*poker.Deck, error)
	newID   func() string
}

// NewTable returns an uninitialized table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		newDeck: poker.NewShuffledDeck,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.hand.Acted = make(map[string]bool)
	return t
}

// Init performs the one-time room setup.
func (t *Table) Init(cfg Config) error {
	if t.cfg != nil {
		return ErrAlreadyInitialized
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	t.cfg = &cfg
	return nil
}

// Initialized reports whether Init has succeeded.
func (t *Table) Initialized() bool {
	return t.cfg != nil
}

// Config returns the room config. It panics if the table is uninitialized.
func (t *Table) Config() Config {
	return *t.cfg
}

// Join seats a new player, or reconnects the player holding key. Reconnect
// keys take priority over nicks, so a returning player keeps their seat even
// if they typed a different nick.
func (t *Table) Join(nick, key string) (*Player, error) {
	if t.cfg == nil {
		return nil, ErrNotInitialized
	}
	if key != "" {
		if p := t.playerByKey(key); p != nil {
			p.Connected = true
			return p, nil
		}
	}

	nick = NormalizeNick(nick)
	if nick == "" {
		return nil, ErrInvalidNick
	}
	for _, p := range t.players {
		if strings.EqualFold(p.Nick, nick) {
			return nil, ErrNickTaken
		}
	}
	seat := t.freeSeat()
	if seat == 0 {
		return nil, ErrRoomFull
	}

	p := &Player{
		ID:        t.newID(),
		Key:       t.newID(),
		Nick:      nick,
		Seat:      seat,
		Chips:     t.cfg.StartingChips,
		Connected: true,
	}
	t.players = append(t.players, p)
	slices.SortFunc(t.players, func(a, b *Player) int { return a.Seat - b.Seat })
	t.hand.LastEvent = fmt.Sprintf("%s joined seat %d.", p.Nick, p.Seat)
	return p, nil
}

// Disconnect marks the player as not connected. Hand state is unaffected.
func (t *Table) Disconnect(playerID string) bool {
	p := t.playerByID(playerID)
	if p == nil || !p.Connected {
		return false
	}
	p.Connected = false
	return true
}

// freeSeat returns the lowest unused seat, or 0 when the room is full.
func (t *Table) freeSeat() int {
	for seat := 1; seat <= t.cfg.MaxPlayers; seat++ {
		if t.playerBySeat(seat) == nil {
			return seat
		}
	}
	return 0
}

// Player returns a copy of the player with the given id.
func (t *Table) Player(id string) (Player, bool) {
	p := t.playerByID(id)
	if p == nil {
		return Player{}, false
	}
	return *p.clone(), true
}

// Players returns copies of all seated players in seat order.
func (t *Table) Players() []Player {
	out := make([]Player, len(t.players))
	for i, p := range t.players {
		out[i] = *p.clone()
	}
	return out
}

// Phase returns the current phase.
func (t *Table) Phase() Phase {
	return t.hand.Phase
}

// TurnSeat returns the seat to act, or 0.
func (t *Table) TurnSeat() int {
	return t.hand.TurnSeat
}

// TurnPlayerID returns the id of the player to act, or "".
func (t *Table) TurnPlayerID() string {
	if p := t.playerBySeat(t.hand.TurnSeat); p != nil {
		return p.ID
	}
	return ""
}

// Pot returns the chips currently in the pot.
func (t *Table) Pot() int {
	return t.hand.Pot
}

// TotalChips returns the sum of all stacks plus the pot. It only changes
// when a new player joins.
func (t *Table) TotalChips() int {
	total := t.hand.Pot
	for _, p := range t.players {
		total += p.Chips
	}
	return total
}

// IsHost reports whether key is the room's host key.
func (t *Table) IsHost(key string) bool {
	return t.cfg != nil && key != "" && key == t.cfg.HostKey
}

func (t *Table) playerByID(id string) *Player {
	for _, p := range t.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (t *Table) playerByKey(key string) *Player {
	for _, p := range t.players {
		if p.Key == key {
			return p
		}
	}
	return nil
}

func (t *Table) playerBySeat(seat int) *Player {
	if seat == 0 {
		return nil
	}
	for _, p := range t.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}
