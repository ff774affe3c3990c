package ofc

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixpot/mixpot/internal/randutil"
	"github.com/mixpot/mixpot/poker"
)

func newTestGame(t *testing.T, seats int) *Game {
	t.Helper()
	players := make([]*Player, seats)
	for i := range players {
		players[i] = &Player{ID: string(rune('A' + i)), Name: string(rune('A' + i))}
	}
	g, err := NewGame(players, 2, randutil.New(1), log.New(io.Discard))
	require.NoError(t, err)
	return g
}

// placeAll distributes a player's dealt cards greedily: bottom first, then
// middle, then top. Rounds 2-5 discard the last dealt card.
func placeAll(t *testing.T, g *Game, idx int) {
	t.Helper()
	p := g.Players[idx]
	cards := append([]poker.Card(nil), p.CurrentCards...)

	var discard *poker.Card
	if g.Phase == PhasePineapplePlacing {
		discard = &cards[len(cards)-1]
		cards = cards[:len(cards)-1]
	}

	placements := make([]Placement, 0, len(cards))
	bottom, middle, top := len(p.Board.Bottom), len(p.Board.Middle), len(p.Board.Top)
	for _, c := range cards {
		switch {
		case bottom < bottomCap:
			placements = append(placements, Placement{Card: c, Row: RowBottom})
			bottom++
		case middle < middleCap:
			placements = append(placements, Placement{Card: c, Row: RowMiddle})
			middle++
		default:
			placements = append(placements, Placement{Card: c, Row: RowTop})
			top++
		}
	}
	require.NoError(t, g.PlaceCards(idx, placements, discard))
}

func TestGameFlowToScoring(t *testing.T) {
	g := newTestGame(t, 3)
	require.Equal(t, PhaseInitialPlacing, g.Phase)
	for _, p := range g.Players {
		require.Len(t, p.CurrentCards, 5)
	}

	// Round 1: everyone places independently.
	placeAll(t, g, 0)
	placeAll(t, g, 1)
	placeAll(t, g, 2)

	require.Equal(t, PhasePineapplePlacing, g.Phase)
	require.Equal(t, 2, g.Round)

	for g.Phase == PhasePineapplePlacing {
		idx := g.CurrentTurn()
		require.Len(t, g.Players[idx].CurrentCards, 3, "pineapple rounds deal three cards")
		placeAll(t, g, idx)
	}

	require.Equal(t, PhaseScoring, g.Phase)
	for _, p := range g.Players {
		assert.True(t, p.Board.Full())
		assert.Len(t, p.Discards, 4, "one discard per pineapple round")
	}

	result := g.Score()
	require.Len(t, result.Scores, 3)
	total := 0
	for _, s := range result.Scores {
		total += s.ChipChange
	}
	assert.Equal(t, 0, total, "pairwise settlement is zero-sum")
}

func TestPlacementTurnOrderEnforced(t *testing.T) {
	g := newTestGame(t, 2)
	placeAll(t, g, 0)
	placeAll(t, g, 1)
	require.Equal(t, PhasePineapplePlacing, g.Phase)

	idx := g.CurrentTurn()
	other := (idx + 1) % 2
	err := g.PlaceCards(other, nil, nil)
	require.Error(t, err, "off-turn placement must be rejected")
}

func TestPlacementValidation(t *testing.T) {
	g := newTestGame(t, 2)
	p := g.Players[0]
	cards := p.CurrentCards

	// Wrong count.
	err := g.PlaceCards(0, []Placement{{Card: cards[0], Row: RowTop}}, nil)
	require.Error(t, err)

	// A card that was never dealt.
	foreign := poker.MustParseCards("As Ks Qs Js Ts")
	bad := make([]Placement, 5)
	for i, c := range foreign {
		bad[i] = Placement{Card: c, Row: RowBottom}
	}
	err = g.PlaceCards(0, bad, nil)
	require.Error(t, err)

	// Over capacity: four cards on top.
	over := []Placement{
		{Card: cards[0], Row: RowTop},
		{Card: cards[1], Row: RowTop},
		{Card: cards[2], Row: RowTop},
		{Card: cards[3], Row: RowTop},
		{Card: cards[4], Row: RowBottom},
	}
	err = g.PlaceCards(0, over, nil)
	require.Error(t, err)
	assert.Empty(t, p.Board.Top, "failed placement must not mutate the board")
}

func boardFrom(top, middle, bottom string) Board {
	return Board{
		Top:    poker.MustParseCards(top),
		Middle: poker.MustParseCards(middle),
		Bottom: poker.MustParseCards(bottom),
	}
}

func TestFouledBoardDetection(t *testing.T) {
	// Bottom two pair under a middle full house: fouled.
	rr := resolveBoard(&Board{
		Top:    poker.MustParseCards("Qs Qd Kc"),
		Middle: poker.MustParseCards("7s 7d 7c 8h 8s"),
		Bottom: poker.MustParseCards("2s 2d 3c 3h 4d"),
	})
	assert.True(t, rr.fouled)

	clean := resolveBoard(&Board{
		Top:    poker.MustParseCards("2c 3d 5h"),
		Middle: poker.MustParseCards("2h 4d 6c 8h Td"),
		Bottom: poker.MustParseCards("Ks Qd Jc 9h 2d"),
	})
	assert.False(t, clean.fouled)
}

func TestFouledBoardPaysCleanOpponent(t *testing.T) {
	g := &Game{
		BigBlind: 2,
		Players: []*Player{
			{Board: boardFrom("Qs Qd Kc", "7s 7d 7c 8h 8s", "2s 2d 3c 3h 4d")},
			{Board: boardFrom("2c 3d 5h", "2h 4d 6c 8h Td", "Ks Qd Jc 9h 2d")},
		},
	}
	result := g.Score()

	require.True(t, result.Scores[0].Fouled)
	require.False(t, result.Scores[1].Fouled)
	assert.Equal(t, 0, result.Scores[0].Royalties, "a fouled board forfeits royalties")
	// Clean side wins all three rows plus the scoop against a foul.
	assert.Equal(t, 6, result.Scores[1].Points)
	assert.Equal(t, 12, result.Scores[1].ChipChange)
	assert.Equal(t, -12, result.Scores[0].ChipChange)
}

func TestBothFouledNoExchange(t *testing.T) {
	fouled := boardFrom("Qs Qd Kc", "7s 7d 7c 8h 8s", "2s 2d 3c 3h 4d")
	fouled2 := boardFrom("Qh Qc Kd", "6s 6d 6c 9h 9s", "2h 2c 4c 4h 5d")
	g := &Game{BigBlind: 2, Players: []*Player{{Board: fouled}, {Board: fouled2}}}
	result := g.Score()
	assert.Equal(t, 0, result.Scores[0].ChipChange)
	assert.Equal(t, 0, result.Scores[1].ChipChange)
}

func TestRoyaltyTables(t *testing.T) {
	assert.Equal(t, 1, topRoyalty(poker.EvaluateRow(poker.MustParseCards("6s 6d 2c"))))
	assert.Equal(t, 9, topRoyalty(poker.EvaluateRow(poker.MustParseCards("As Ad 2c"))))
	assert.Equal(t, 10, topRoyalty(poker.EvaluateRow(poker.MustParseCards("2s 2d 2c"))))
	assert.Equal(t, 22, topRoyalty(poker.EvaluateRow(poker.MustParseCards("As Ad Ac"))))
	assert.Equal(t, 0, topRoyalty(poker.EvaluateRow(poker.MustParseCards("5s 5d 2c"))), "pairs below sixes score nothing")

	assert.Equal(t, 2, middleRoyalty(poker.EvaluateRow(poker.MustParseCards("5s 5d 5c 2h 3d"))))
	assert.Equal(t, 8, middleRoyalty(poker.EvaluateRow(poker.MustParseCards("As Ks 9s 5s 2s"))))
	assert.Equal(t, 30, middleRoyalty(poker.EvaluateRow(poker.MustParseCards("9s 8s 7s 6s 5s"))))
	assert.Equal(t, 50, middleRoyalty(poker.EvaluateRow(poker.MustParseCards("As Ks Qs Js Ts"))))

	assert.Equal(t, 2, bottomRoyalty(poker.EvaluateRow(poker.MustParseCards("9s 8d 7c 6h 5s"))))
	assert.Equal(t, 0, bottomRoyalty(poker.EvaluateRow(poker.MustParseCards("5s 5d 5c 2h 3d"))), "bottom trips score nothing")
	assert.Equal(t, 25, bottomRoyalty(poker.EvaluateRow(poker.MustParseCards("Ah Kh Qh Jh Th"))))
}

func TestRoyaltiesNettedBetweenCleanBoards(t *testing.T) {
	g := &Game{
		BigBlind: 1,
		Players: []*Player{
			// Flush middle (8 royalties), wins middle and bottom.
			{Board: boardFrom("2c 3d 4h", "As Ks 9s 5s 2s", "Ah Ad Ac Kd Kc")},
			// Pair of sixes up top (1 royalty), wins top.
			{Board: boardFrom("6s 6d 7c", "9c 9d 2d 3h 4c", "Qs Qd Jc 9h 2h")},
		},
	}
	result := g.Score()

	// Rows: P1 loses top, wins middle and bottom: +1. Royalties: 8+6 vs 1.
	// P1 bottom full house adds 6.
	assert.Equal(t, 1+14-1, result.Scores[0].Points)
	assert.Equal(t, -(1 + 14 - 1), result.Scores[1].Points)
}

func TestFantasylandEntryAndContinuation(t *testing.T) {
	// QQ on top, clean: entry.
	rr := resolveBoard(&Board{
		Top:    poker.MustParseCards("Qs Qd 2c"),
		Middle: poker.MustParseCards("Ks Kd 3c 4h 5d"),
		Bottom: poker.MustParseCards("As Ad 6c 7h 8d"),
	})
	assert.True(t, earnsFantasyland(rr))

	// JJ on top: no entry.
	rr = resolveBoard(&Board{
		Top:    poker.MustParseCards("Js Jd 2c"),
		Middle: poker.MustParseCards("Ks Kd 3c 4h 5d"),
		Bottom: poker.MustParseCards("As Ad 6c 7h 8d"),
	})
	assert.False(t, earnsFantasyland(rr))

	// QQ top but fouled: no entry.
	rr = resolveBoard(&Board{
		Top:    poker.MustParseCards("Qs Qd 2c"),
		Middle: poker.MustParseCards("As Ad 3c 4h 5d"),
		Bottom: poker.MustParseCards("Ks Kd 6c 7h 8d"),
	})
	assert.False(t, earnsFantasyland(rr))

	// Continuation needs top trips, middle full house+, or bottom quads+.
	stay := resolveBoard(&Board{
		Top:    poker.MustParseCards("2s 2d 2c"),
		Middle: poker.MustParseCards("3s 3d 3c 6h 7d"),
		Bottom: poker.MustParseCards("8s 8d 8c 9h Td"),
	})
	assert.True(t, staysInFantasyland(stay))

	noStay := resolveBoard(&Board{
		Top:    poker.MustParseCards("Qs Qd 2c"),
		Middle: poker.MustParseCards("Ks Kd 3c 4h 5d"),
		Bottom: poker.MustParseCards("As Ad 6c 7h 8d"),
	})
	assert.False(t, staysInFantasyland(noStay), "a mere entry board does not continue fantasyland")
}

func TestFantasylandDealAndOneShotPlacement(t *testing.T) {
	players := []*Player{
		{ID: "A", Name: "A", IsFantasyland: true},
		{ID: "B", Name: "B"},
	}
	g, err := NewGame(players, 2, randutil.New(3), log.New(io.Discard))
	require.NoError(t, err)

	require.Len(t, players[0].CurrentCards, 14, "fantasyland deals fourteen up front")
	require.Len(t, players[1].CurrentCards, 5)

	// Fantasyland places thirteen and discards one.
	cards := append([]poker.Card(nil), players[0].CurrentCards...)
	discard := cards[13]
	placements := make([]Placement, 0, 13)
	for i, c := range cards[:13] {
		switch {
		case i < 5:
			placements = append(placements, Placement{Card: c, Row: RowBottom})
		case i < 10:
			placements = append(placements, Placement{Card: c, Row: RowMiddle})
		default:
			placements = append(placements, Placement{Card: c, Row: RowTop})
		}
	}
	require.NoError(t, g.PlaceCards(0, placements, &discard))
	require.True(t, players[0].Board.Full())

	// Regular player continues through pineapple rounds alone.
	placeAll(t, g, 1)
	for g.Phase == PhasePineapplePlacing {
		require.Equal(t, 1, g.CurrentTurn(), "fantasyland seat never acts in pineapple rounds")
		placeAll(t, g, g.CurrentTurn())
	}
	require.Equal(t, PhaseScoring, g.Phase)
}

func TestJokerResolvesInRowEvaluation(t *testing.T) {
	row := poker.MustParseCards("As Ad")
	row = append(row, poker.Joker1)
	rank := poker.ResolveJokers(row, nil)
	assert.Equal(t, 22, topRoyalty(rank), "a joker completes trip aces up top")
}
