package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/chipholdem/poker"
)

type EvalCmd struct {
	Hands []string `arg:"" help:"Hole cards per player, e.g. 'AsKd' 'QhQc'"`
	Board string   `short:"b" help:"Community cards, e.g. 'Td7s8h2c'"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	redCardStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	blackCardStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))
)

// evalResult is one ranked hand.
type evalResult struct {
	Hole   []poker.Card
	Rank   poker.HandRank
	Winner bool
}

func (c *EvalCmd) Run() error {
	board, err := parseCompactCards(c.Board)
	if err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}
	holes := make([][]poker.Card, len(c.Hands))
	for i, h := range c.Hands {
		if holes[i], err = parseCompactCards(h); err != nil {
			return fmt.Errorf("invalid hand %q: %w", h, err)
		}
	}

	results, err := evaluate(holes, board)
	if err != nil {
		return err
	}
	render(os.Stdout, board, results)
	return nil
}

// evaluate ranks every hand against the shared board and marks the best
// hand (or tied hands) as winners.
func evaluate(holes [][]poker.Card, board []poker.Card) ([]evalResult, error) {
	if len(holes) == 0 {
		return nil, fmt.Errorf("at least one hand is required")
	}
	if len(board) < 3 || len(board) > 5 {
		return nil, fmt.Errorf("board needs 3 to 5 cards, got %d", len(board))
	}

	seen := make(map[poker.Card]bool)
	for _, c := range board {
		if seen[c] {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen[c] = true
	}

	results := make([]evalResult, len(holes))
	var best poker.HandRank
	for i, hole := range holes {
		if len(hole) != 2 {
			return nil, fmt.Errorf("hand %d: need 2 hole cards, got %d", i+1, len(hole))
		}
		for _, c := range hole {
			if seen[c] {
				return nil, fmt.Errorf("duplicate card %s", c)
			}
			seen[c] = true
		}

		rank, err := poker.Best5of7(append(append([]poker.Card(nil), hole...), board...))
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		results[i] = evalResult{Hole: hole, Rank: rank}
		if i == 0 || rank.Compare(best) > 0 {
			best = rank
		}
	}

	for i := range results {
		results[i].Winner = results[i].Rank.Compare(best) == 0
	}
	return results, nil
}

func render(w io.Writer, board []poker.Card, results []evalResult) {
	if len(board) > 0 {
		fmt.Fprintf(w, "%s %s\n\n", headerStyle.Render("Board:"), renderCards(board))
	}
	for i, r := range results {
		line := fmt.Sprintf("%s %s  %s",
			headerStyle.Render(fmt.Sprintf("Hand %d:", i+1)),
			renderCards(r.Hole),
			categoryStyle.Render(r.Rank.Type.String()))
		if r.Winner {
			line += "  " + winStyle.Render("wins")
		}
		fmt.Fprintln(w, line)
	}
}

func renderCards(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		style := blackCardStyle
		if c.Suit == poker.Hearts || c.Suit == poker.Diamonds {
			style = redCardStyle
		}
		parts[i] = style.Render(c.String())
	}
	return strings.Join(parts, " ")
}

// parseCompactCards accepts both "As Kd" and "AsKd".
func parseCompactCards(s string) ([]poker.Card, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.ContainsAny(s, " ,") {
		return poker.ParseCards(s)
	}
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd number of characters in %q", s)
	}
	cards := make([]poker.Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := poker.ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}
