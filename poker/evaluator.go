package poker

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable category name.
func (t HandType) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandRank is a comparable hand strength: category first, then the tiebreak
// ranks lexicographically, most significant first.
type HandRank struct {
	Type     HandType `json:"type"`
	Tiebreak []int    `json:"tiebreak"`
}

// Compare returns 1 if hr beats other, -1 if it loses and 0 on a tie.
func (hr HandRank) Compare(other HandRank) int {
	if hr.Type != other.Type {
		if hr.Type > other.Type {
			return 1
		}
		return -1
	}
	n := max(len(hr.Tiebreak), len(other.Tiebreak))
	for i := range n {
		a, b := rankAt(hr.Tiebreak, i), rankAt(other.Tiebreak, i)
		if a != b {
			if a > b {
				return 1
			}
			return -1
		}
	}
	return 0
}

// String describes the hand, e.g. "Full House [13 4]".
func (hr HandRank) String() string {
	parts := make([]string, len(hr.Tiebreak))
	for i, r := range hr.Tiebreak {
		parts[i] = strconv.Itoa(r)
	}
	return fmt.Sprintf("%s [%s]", hr.Type, strings.Join(parts, " "))
}

func rankAt(v []int, i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

type rankGroup struct {
	rank  int
	count int
}

// Rank5 ranks exactly five cards.
func Rank5(cards []Card) (HandRank, error) {
	if len(cards) != 5 {
		return HandRank{}, fmt.Errorf("rank5 needs 5 cards, got %d", len(cards))
	}
	return rank5(cards), nil
}

func rank5(cards []Card) HandRank {
	ranks := make([]int, len(cards))
	flush := true
	for i, c := range cards {
		ranks[i] = c.Rank
		if c.Suit != cards[0].Suit {
			flush = false
		}
	}
	slices.SortFunc(ranks, func(a, b int) int { return b - a })

	straight, straightHigh := detectStraight(ranks)

	var groups []rankGroup
	for _, r := range ranks {
		if n := len(groups); n > 0 && groups[n-1].rank == r {
			groups[n-1].count++
			continue
		}
		groups = append(groups, rankGroup{rank: r, count: 1})
	}
	slices.SortStableFunc(groups, func(a, b rankGroup) int {
		if a.count != b.count {
			return b.count - a.count
		}
		return b.rank - a.rank
	})

	counts := make([]string, len(groups))
	for i, g := range groups {
		counts[i] = strconv.Itoa(g.count)
	}
	pattern := strings.Join(counts, ",")

	switch {
	case straight && flush:
		return HandRank{Type: StraightFlush, Tiebreak: []int{straightHigh}}
	case pattern == "4,1":
		return HandRank{Type: FourOfAKind, Tiebreak: []int{groups[0].rank, groups[1].rank}}
	case pattern == "3,2":
		return HandRank{Type: FullHouse, Tiebreak: []int{groups[0].rank, groups[1].rank}}
	case flush:
		return HandRank{Type: Flush, Tiebreak: ranks}
	case straight:
		return HandRank{Type: Straight, Tiebreak: []int{straightHigh}}
	case pattern == "3,1,1":
		return HandRank{Type: ThreeOfAKind, Tiebreak: groupRanks(groups)}
	case pattern == "2,2,1":
		return HandRank{Type: TwoPair, Tiebreak: groupRanks(groups)}
	case pattern == "2,1,1,1":
		return HandRank{Type: Pair, Tiebreak: groupRanks(groups)}
	default:
		return HandRank{Type: HighCard, Tiebreak: ranks}
	}
}

// detectStraight expects ranks sorted descending. The wheel (A-5-4-3-2)
// counts as a five-high straight.
func detectStraight(ranks []int) (bool, int) {
	for i := 1; i < len(ranks); i++ {
		if ranks[i] == ranks[i-1] {
			return false, 0
		}
	}
	if ranks[0]-ranks[4] == 4 {
		return true, ranks[0]
	}
	if ranks[0] == Ace && ranks[1] == Five && ranks[2] == Four && ranks[3] == Three && ranks[4] == Two {
		return true, Five
	}
	return false, 0
}

// groupRanks lists group ranks in (count desc, rank desc) order, which puts
// the made part first and the kickers after it in descending order.
func groupRanks(groups []rankGroup) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = g.rank
	}
	return out
}

// Best5of7 returns the strongest five-card hand among all 5-card subsets of
// cards. It accepts 5 to 7 cards; with 7 cards all 21 subsets are ranked.
func Best5of7(cards []Card) (HandRank, error) {
	n := len(cards)
	if n < 5 || n > 7 {
		return HandRank{}, fmt.Errorf("best5of7 needs 5 to 7 cards, got %d", n)
	}

	var best HandRank
	found := false
	five := make([]Card, 5)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					for e := d + 1; e < n; e++ {
						five[0], five[1], five[2], five[3], five[4] = cards[a], cards[b], cards[c], cards[d], cards[e]
						r := rank5(five)
						if !found || r.Compare(best) > 0 {
							best = r
							found = true
						}
					}
				}
			}
		}
	}
	return best, nil
}
