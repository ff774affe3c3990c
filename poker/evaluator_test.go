package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate5Categories(t *testing.T) {
	tests := []struct {
		name     string
		cards    string
		category HandRank
	}{
		{"high card", "As Kd 9c 5h 2s", HighCard},
		{"pair", "As Ad 9c 5h 2s", Pair},
		{"two pair", "As Ad 9c 9h 2s", TwoPair},
		{"trips", "As Ad Ac 5h 2s", ThreeOfAKind},
		{"straight", "9s 8d 7c 6h 5s", Straight},
		{"wheel", "As 2d 3c 4h 5s", Straight},
		{"flush", "As Ks 9s 5s 2s", Flush},
		{"full house", "As Ad Ac 5h 5s", FullHouse},
		{"quads", "As Ad Ac Ah 2s", FourOfAKind},
		{"straight flush", "9s 8s 7s 6s 5s", StraightFlush},
		{"royal flush", "As Ks Qs Js Ts", StraightFlush},
		{"steel wheel", "As 2s 3s 4s 5s", StraightFlush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank := Evaluate5(MustParseCards(tt.cards))
			assert.Equal(t, tt.category, rank.Category(), "cards %s ranked %s", tt.cards, rank)
		})
	}
}

func TestWheelIsLowestStraight(t *testing.T) {
	wheel := Evaluate5(MustParseCards("As 2d 3c 4h 5s"))
	sixHigh := Evaluate5(MustParseCards("2d 3c 4h 5s 6d"))
	require.Equal(t, Straight, wheel.Category())
	assert.Equal(t, -1, Compare(wheel, sixHigh))
}

func TestFlushTiebreakUsesCardValues(t *testing.T) {
	// A-high flush beats K-high flush regardless of lower cards.
	high := Evaluate5(MustParseCards("As 9s 5s 4s 2s"))
	low := Evaluate5(MustParseCards("Ks Qs Js 9s 8s"))
	assert.Equal(t, 1, Compare(high, low))

	// Identical values in different suits tie exactly.
	hearts := Evaluate5(MustParseCards("Ah 9h 5h 4h 2h"))
	assert.Equal(t, 0, Compare(high, hearts))
}

func TestKickersOrdering(t *testing.T) {
	a := Evaluate5(MustParseCards("As Ad Kc 9h 2s"))
	b := Evaluate5(MustParseCards("Ah Ac Qc 9d 2d"))
	assert.Equal(t, 1, Compare(a, b), "ace pair with king kicker beats queen kicker")

	tie := Evaluate5(MustParseCards("Ah Ac Kd 9d 2d"))
	assert.Equal(t, 0, Compare(a, tie))
}

func TestBestFiveFromSeven(t *testing.T) {
	// Five of the seven cards make a spade flush, the best hand available.
	cards := MustParseCards("As Ks 9s 5s 2s 8d 7d")
	rank := BestFive(cards)
	assert.Equal(t, Flush, rank.Category())
}

func TestEvaluateOmahaExactlyTwoHoleCards(t *testing.T) {
	// Two board spades only: no flush can play under the two-hole-card
	// rule even with four spades in hand, so the queen-high straight is
	// the ceiling.
	hole := MustParseCards("As Ks Qs Js")
	board := MustParseCards("Ts 9s 8d 7c 2h")
	rank := EvaluateOmaha(hole, board)
	require.Equal(t, Straight, rank.Category())

	// With a third spade on board the flush plays: exactly two from the
	// hole, three from the board.
	board = MustParseCards("Ts 9s 2s 7c 2h")
	rank = EvaluateOmaha(hole, board)
	require.Equal(t, Flush, rank.Category())

	// Pair of aces with no playable draw loses to it.
	weakHole := MustParseCards("Ah Ad 3c 4c")
	weakRank := EvaluateOmaha(weakHole, board)
	assert.Equal(t, 1, Compare(rank, weakRank))
}

func TestOmahaCannotPlayBoardAlone(t *testing.T) {
	// Board shows quads but only three board cards may play, so the best
	// holding is trips with two hole kickers, never the board quads.
	hole := MustParseCards("Ah 2c 3d 4s")
	board := MustParseCards("Ks Kd Kh Kc 9s")
	rank := EvaluateOmaha(hole, board)
	require.Equal(t, ThreeOfAKind, rank.Category())
	// Top kicker must come from the hole: the ace.
	assert.Equal(t, uint8(Ace-Two), uint8(rank>>20&0xF))
}

func TestCompareTransitivity(t *testing.T) {
	hands := []string{
		"As Kd 9c 5h 2s",
		"As Ad 9c 5h 2s",
		"9s 8d 7c 6h 5s",
		"As Ks 9s 5s 2s",
		"As Ad Ac 5h 5s",
	}
	ranks := make([]HandRank, len(hands))
	for i, h := range hands {
		ranks[i] = Evaluate5(MustParseCards(h))
	}
	for i := range ranks {
		for j := range ranks {
			for k := range ranks {
				if Compare(ranks[i], ranks[j]) > 0 && Compare(ranks[j], ranks[k]) > 0 {
					assert.Equal(t, 1, Compare(ranks[i], ranks[k]),
						"transitivity violated for %d > %d > %d", i, j, k)
				}
			}
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		cards string
		want  string
	}{
		{"As Ad 9c 9h 2s", "Two Pair, Aces and Nines"},
		{"As Ks Qs Js Ts", "Royal Flush"},
		{"9s 8d 7c 6h 5s", "Straight, Nine high"},
		{"As Ad Ac 5h 5s", "Full House, Aces over Fives"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(Evaluate5(MustParseCards(tt.cards))))
	}
}
