package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func potPlayer(total int, status SeatStatus) *Player {
	return &Player{TotalBet: total, Status: status}
}

func TestBuildPotsSingleTier(t *testing.T) {
	seats := []*Player{
		potPlayer(100, StatusActive),
		potPlayer(100, StatusActive),
		potPlayer(100, StatusFolded),
	}
	pots := BuildPots(seats)
	require.Len(t, pots, 1)
	assert.Equal(t, 300, pots[0].Amount)
	assert.Equal(t, []int{0, 1}, pots[0].Eligible, "folded seat pays but is not eligible")
}

func TestBuildPotsSidePotTiers(t *testing.T) {
	// Spec scenario: A all-in 50, B and C for 100.
	seats := []*Player{
		potPlayer(50, StatusAllIn),
		potPlayer(100, StatusAllIn),
		potPlayer(100, StatusAllIn),
	}
	pots := BuildPots(seats)
	require.Len(t, pots, 2)

	assert.Equal(t, 150, pots[0].Amount, "main pot is 50 from each of three")
	assert.Equal(t, []int{0, 1, 2}, pots[0].Eligible)

	assert.Equal(t, 100, pots[1].Amount, "side pot is the 50 overage from B and C")
	assert.Equal(t, []int{1, 2}, pots[1].Eligible)
}

func TestBuildPotsThreeTiersWithFold(t *testing.T) {
	seats := []*Player{
		potPlayer(25, StatusAllIn),
		potPlayer(75, StatusAllIn),
		potPlayer(200, StatusActive),
		potPlayer(60, StatusFolded),
	}
	pots := BuildPots(seats)
	require.Len(t, pots, 4)

	// Tier 25: everyone pays 25.
	assert.Equal(t, 100, pots[0].Amount)
	assert.Equal(t, []int{0, 1, 2}, pots[0].Eligible)
	// Tier 60: three pay 35 each (folded seat committed 60).
	assert.Equal(t, 105, pots[1].Amount)
	assert.Equal(t, []int{1, 2}, pots[1].Eligible)
	// Tier 75: two pay 15 each.
	assert.Equal(t, 30, pots[2].Amount)
	assert.Equal(t, []int{1, 2}, pots[2].Eligible)
	// Tier 200: the big stack's unmatched overage comes back via
	// a single-eligible pot.
	assert.Equal(t, 125, pots[3].Amount)
	assert.Equal(t, []int{2}, pots[3].Eligible)
}

func TestBuildPotsReconstructionExact(t *testing.T) {
	cases := [][]int{
		{100, 100, 100},
		{50, 100, 100},
		{25, 75, 200, 60},
		{1, 2, 3, 4, 5},
		{10},
	}
	for _, totals := range cases {
		seats := make([]*Player, len(totals))
		for i, tb := range totals {
			seats[i] = potPlayer(tb, StatusActive)
		}
		sum := 0
		for _, pot := range BuildPots(seats) {
			sum += pot.Amount
		}
		want := 0
		for _, tb := range totals {
			want += tb
		}
		assert.Equal(t, want, sum, "totals %v", totals)
	}
}

func TestBuildPotsEmptySeatsAndZeroBets(t *testing.T) {
	seats := []*Player{nil, potPlayer(0, StatusActive), nil}
	assert.Empty(t, BuildPots(seats))
}
