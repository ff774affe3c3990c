package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateA5LowWheelBest(t *testing.T) {
	wheel := EvaluateA5Low(MustParseCards("5s 4d 3c 2h As"))
	sixLow := EvaluateA5Low(MustParseCards("6s 4d 3c 2h As"))
	paired := EvaluateA5Low(MustParseCards("5s 5d 3c 2h As"))

	assert.Equal(t, 1, CompareLow(wheel, sixLow))
	assert.Equal(t, 1, CompareLow(sixLow, paired), "any clean low beats a paired low")
}

func TestA5LowIgnoresStraightsAndFlushes(t *testing.T) {
	// The wheel is a straight and here also a flush; neither counts
	// against an A-5 low.
	flushWheel := EvaluateA5Low(MustParseCards("5s 4s 3s 2s As"))
	eightLow := EvaluateA5Low(MustParseCards("8s 4d 3c 2h As"))
	assert.Equal(t, 1, CompareLow(flushWheel, eightLow))
}

func TestBestA5LowFromSeven(t *testing.T) {
	// Razz-style selection: seven cards containing a 6-4 low.
	r := BestA5Low(MustParseCards("As 2d 4c 6h Ks Kd Qh"))
	want := EvaluateA5Low(MustParseCards("As 2d 4c 6h Qh"))
	assert.Equal(t, want, r)
}

func TestBestLow8Qualifier(t *testing.T) {
	_, ok := BestLow8(MustParseCards("As 2d 4c 6h 8s Kd Qh"))
	assert.True(t, ok)

	_, ok = BestLow8(MustParseCards("9s Td Jc Qh Ks Kd 9h"))
	assert.False(t, ok, "no five cards eight-or-below")

	_, ok = BestLow8(MustParseCards("As Ad 2c 2h 8s 8d Kh"))
	assert.False(t, ok, "cannot make five distinct low ranks")
}

func TestEvaluateOmahaLow8(t *testing.T) {
	hole := MustParseCards("As 2d Kc Kh")
	board := MustParseCards("3s 4d 8c Qh Js")
	r, ok := EvaluateOmahaLow8(hole, board)
	require.True(t, ok)
	want := EvaluateA5Low(MustParseCards("As 2d 3s 4d 8c"))
	assert.Equal(t, want, r)

	// Only one low card in the hole: two must play, so no low.
	_, ok = EvaluateOmahaLow8(MustParseCards("As Kd Kc Qs"), board)
	assert.False(t, ok)
}

func TestEvaluate27Low(t *testing.T) {
	// The best 2-7 hand: 7-5-4-3-2 offsuit.
	best := Evaluate27Low(MustParseCards("7s 5d 4c 3h 2s"))
	// The ace plays high only: 5-4-3-2-A is no straight, just ace high.
	aceHigh := Evaluate27Low(MustParseCards("5s 4d 3c 2h As"))
	straight := Evaluate27Low(MustParseCards("6s 5d 4c 3h 2s"))
	eightLow := Evaluate27Low(MustParseCards("8s 5d 4c 3h 2s"))

	assert.Equal(t, 1, CompareLow(best, eightLow))
	assert.Equal(t, 1, CompareLow(eightLow, aceHigh))
	assert.Equal(t, 1, CompareLow(aceHigh, straight), "straights count against a 2-7 hand")

	// A flush is worse than an unsuited rough hand.
	flush := Evaluate27Low(MustParseCards("8s 5s 4s 3s 2s"))
	rough := Evaluate27Low(MustParseCards("Ks Qd Jc Th 8s"))
	assert.Equal(t, 1, CompareLow(rough, flush))
}

func TestEvaluateBadugi(t *testing.T) {
	four := EvaluateBadugi(MustParseCards("As 2d 3c 4h"))
	require.Equal(t, 4, BadugiCardCount(four))

	// Two hearts: only a three-card badugi.
	three := EvaluateBadugi(MustParseCards("As 2d 3h 4h"))
	require.Equal(t, 3, BadugiCardCount(three))
	assert.Equal(t, 1, CompareLow(four, three), "four-card badugi beats three-card")

	// Paired ranks also break the badugi.
	threePaired := EvaluateBadugi(MustParseCards("As Ad 3c 4h"))
	require.Equal(t, 3, BadugiCardCount(threePaired))

	// Among equal-size badugis the lower cards win.
	high := EvaluateBadugi(MustParseCards("Ks Qd Jc Th"))
	assert.Equal(t, 1, CompareLow(four, high))
}

func TestDescribeLowForms(t *testing.T) {
	assert.Equal(t, "5-4-3-2-A low", DescribeLow(EvaluateA5Low(MustParseCards("5s 4d 3c 2h As"))))
	assert.Equal(t, "4-card badugi, 4-3-2-A", DescribeBadugi(EvaluateBadugi(MustParseCards("As 2d 3c 4h"))))
}
