package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/chipholdem/poker"
)

func TestParseCompactCards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "AsKd", want: "As Kd"},
		{input: "As Kd", want: "As Kd"},
		{input: "td7s8h", want: "Td 7s 8h"},
		{input: "As,Kd,Qh", want: "As Kd Qh"},
		{input: "", want: ""},
		{input: "AsK", wantErr: true},
		{input: "AxKd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			cards, err := parseCompactCards(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, poker.FormatCards(cards))
		})
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	board := poker.MustParseCards("Ah Kh Qh 7c 2d")
	holes := [][]poker.Card{
		poker.MustParseCards("Jh Th"),
		poker.MustParseCards("As Ad"),
		poker.MustParseCards("7s 7d"),
	}

	results, err := evaluate(holes, board)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, poker.StraightFlush, results[0].Rank.Type)
	assert.Equal(t, poker.ThreeOfAKind, results[1].Rank.Type)
	assert.Equal(t, poker.ThreeOfAKind, results[2].Rank.Type)
	assert.True(t, results[0].Winner)
	assert.False(t, results[1].Winner)
	assert.False(t, results[2].Winner)
}

func TestEvaluateSplit(t *testing.T) {
	t.Parallel()

	// Both play the board's straight.
	board := poker.MustParseCards("9c Th Jd Qs Kc")
	results, err := evaluate([][]poker.Card{
		poker.MustParseCards("2h 3h"),
		poker.MustParseCards("4d 5d"),
	}, board)
	require.NoError(t, err)
	assert.True(t, results[0].Winner)
	assert.True(t, results[1].Winner)
}

func TestEvaluateErrors(t *testing.T) {
	t.Parallel()

	board := poker.MustParseCards("Ah Kh Qh")
	tests := []struct {
		name  string
		holes [][]poker.Card
		board []poker.Card
	}{
		{name: "no hands", board: board},
		{name: "short board", holes: [][]poker.Card{poker.MustParseCards("As Ad")}, board: poker.MustParseCards("Ah Kh")},
		{name: "one hole card", holes: [][]poker.Card{poker.MustParseCards("As")}, board: board},
		{name: "duplicate card", holes: [][]poker.Card{poker.MustParseCards("Ah Ad")}, board: board},
		{name: "shared hole card", holes: [][]poker.Card{poker.MustParseCards("As Ad"), poker.MustParseCards("As 2c")}, board: board},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := evaluate(tt.holes, tt.board)
			assert.Error(t, err)
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	results, err := evaluate([][]poker.Card{poker.MustParseCards("As Ad")}, poker.MustParseCards("Ac 7d 2s"))
	require.NoError(t, err)

	var buf bytes.Buffer
	render(&buf, poker.MustParseCards("Ac 7d 2s"), results)
	out := buf.String()
	assert.Contains(t, out, "Board:")
	assert.Contains(t, out, "Three of a Kind")
	assert.Contains(t, out, "wins")
}

func TestServeConfigOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "chipholdem.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  port = 9000
}
`), 0o644))

	cmd := &ServeCmd{Config: path, Addr: "127.0.0.1:9100", LogLevel: "debug", Store: "sqlite"}
	cfg, err := cmd.config()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.Address())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "sqlite", cfg.Storage.Kind)
	assert.Equal(t, "rooms.db", cfg.Storage.Path)

	cmd = &ServeCmd{Config: path, Store: "memory", StorePath: ""}
	cfg, err = cmd.config()
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", cfg.Address())
	assert.Equal(t, "memory", cfg.Storage.Kind)

	_, err = (&ServeCmd{Config: path, Addr: "nope"}).config()
	assert.Error(t, err)

	_, err = (&ServeCmd{Config: path, Store: "redis"}).config()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	_, err := newLogger("debug")
	require.NoError(t, err)
	_, err = newLogger("loud")
	assert.Error(t, err)
}
