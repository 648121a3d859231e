package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRank5(t *testing.T, s string) HandRank {
	t.Helper()
	hr, err := Rank5(MustParseCards(s))
	require.NoError(t, err)
	return hr
}

func TestRank5Categories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cards    string
		wantType HandType
		wantTB   []int
	}{
		{"royal flush", "As Ks Qs Js Ts", StraightFlush, []int{14}},
		{"steel wheel", "5d 4d 3d 2d Ad", StraightFlush, []int{5}},
		{"quads", "5h 5d 5s 5c 2h", FourOfAKind, []int{5, 2}},
		{"full house", "Kh Kd Ks 4c 4h", FullHouse, []int{13, 4}},
		{"full house low trips", "3h 3d 3s Ac Ah", FullHouse, []int{3, 14}},
		{"flush", "Ah 9h 7h 4h 2h", Flush, []int{14, 9, 7, 4, 2}},
		{"straight", "9c 8d 7h 6s 5c", Straight, []int{9}},
		{"broadway", "Ac Kd Qh Js Tc", Straight, []int{14}},
		{"wheel", "As 2h 3d 4c 5s", Straight, []int{5}},
		{"trips", "7c 7d 7h Ks 2c", ThreeOfAKind, []int{7, 13, 2}},
		{"two pair", "4c 4d Jh Js 9c", TwoPair, []int{11, 4, 9}},
		{"pair", "Qc Qd 2h 9s 5c", Pair, []int{12, 9, 5, 2}},
		{"high card", "Kc 9d 7h 4s 2c", HighCard, []int{13, 9, 7, 4, 2}},
		{"no wraparound straight", "Qc Kd Ah 2s 3c", HighCard, []int{14, 13, 12, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustRank5(t, tt.cards)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantTB, got.Tiebreak)
		})
	}
}

func TestRank5RejectsWrongCount(t *testing.T) {
	t.Parallel()

	_, err := Rank5(MustParseCards("As Ks Qs Js"))
	assert.Error(t, err)
}

func TestWheelLosesToSixHighStraight(t *testing.T) {
	t.Parallel()

	wheel := mustRank5(t, "As 2h 3d 4c 5s")
	sixHigh := mustRank5(t, "6s 5s 4s 3s 2s")

	// 6-high here is a straight flush; compare against a plain 6-high straight too.
	plainSix := mustRank5(t, "6h 5s 4s 3s 2s")
	assert.Equal(t, Straight, plainSix.Type)
	assert.Equal(t, []int{6}, plainSix.Tiebreak)

	assert.Equal(t, -1, wheel.Compare(plainSix))
	assert.Equal(t, -1, wheel.Compare(sixHigh))
	assert.Equal(t, 1, plainSix.Compare(wheel))
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"flush beats straight", "Ah 9h 7h 4h 2h", "9c 8d 7h 6s 5c", 1},
		{"higher kicker wins", "Qc Qd Ah 9s 5c", "Qh Qs Kh 9d 5d", 1},
		{"identical ranks tie", "Kc 9d 7h 4s 2c", "Kd 9c 7s 4h 2d", 0},
		{"two pair lower pair decides", "Jc Jd 5h 5s 9c", "Jh Js 4c 4d Ac", 1},
		{"full house trips decide", "2c 2d 2h As Ac", "Kc Kd Qh Qs Qc", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := mustRank5(t, tt.a), mustRank5(t, tt.b)
			assert.Equal(t, tt.want, a.Compare(b))
			assert.Equal(t, -tt.want, b.Compare(a))
		})
	}
}

func TestBest5of7(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cards    string
		wantType HandType
		wantTB   []int
	}{
		{"flush over straight", "Ah Kh 9h 5h 2h Qd Jc", Flush, []int{14, 13, 9, 5, 2}},
		{"best two pair of three", "Ac Ad Kc Kd 2c 2d 7s", TwoPair, []int{14, 13, 7}},
		{"full house from two trips", "9c 9d 9h 4c 4d 4h Ks", FullHouse, []int{9, 4}},
		{"wheel on board", "As 2d 3c 4h 5s Kd Kc", Straight, []int{5}},
		{"six high beats wheel", "As 2d 3c 4h 5s 6d Kc", Straight, []int{6}},
		{"straight flush hidden", "8h 9h Th Jh Qh Kd Ac", StraightFlush, []int{12}},
		{"quads with best kicker", "7c 7d 7h 7s 2c 3d Ah", FourOfAKind, []int{7, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Best5of7(MustParseCards(tt.cards))
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantTB, got.Tiebreak)
		})
	}
}

func TestBest5of7CardCounts(t *testing.T) {
	t.Parallel()

	_, err := Best5of7(MustParseCards("As Ks"))
	assert.Error(t, err)

	five, err := Best5of7(MustParseCards("As Ks Qs Js Ts"))
	require.NoError(t, err)
	assert.Equal(t, StraightFlush, five.Type)

	six, err := Best5of7(MustParseCards("2c 2d 2h 9s 9c 3d"))
	require.NoError(t, err)
	assert.Equal(t, FullHouse, six.Type)
}

func TestHandTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Full House", FullHouse.String())
	assert.Equal(t, "Straight Flush", StraightFlush.String())
	assert.Equal(t, "Full House [13 4]", mustRank5(t, "Kh Kd Ks 4c 4h").String())
}

func BenchmarkBest5of7(b *testing.B) {
	cards := MustParseCards("Ah Kh 9h 5h 2h Qd Jc")
	for b.Loop() {
		_, _ = Best5of7(cards)
	}
}
