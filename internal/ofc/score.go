package ofc

import (
	"github.com/mixpot/mixpot/poker"
)

// JOPT royalty tables and pairwise scoring.

const scoopBonus = 3

// PlayerScore is one seat's settlement line.
type PlayerScore struct {
	Seat        int  `json:"seat"`
	Fouled      bool `json:"fouled"`
	Royalties   int  `json:"royalties"`
	Points      int  `json:"points"`
	ChipChange  int  `json:"chipChange"`
	Fantasyland bool `json:"fantasyland"` // plays next hand in fantasyland
}

// Result is the hand settlement: pairwise JOPT points converted to chips
// at one big blind per point.
type Result struct {
	Scores []PlayerScore `json:"scores"`
}

// rowRanks carries a board's resolved evaluations.
type rowRanks struct {
	top, middle, bottom poker.HandRank
	fouled              bool
}

// resolveBoard evaluates the three rows, expanding jokers against the
// regular cards already visible on the same board.
func resolveBoard(b *Board) rowRanks {
	inUse := b.Cards()
	rr := rowRanks{
		top:    poker.ResolveJokers(b.Top, inUse),
		middle: poker.ResolveJokers(b.Middle, inUse),
		bottom: poker.ResolveJokers(b.Bottom, inUse),
	}
	// A board fouls when a lower row is outranked by the row above it.
	rr.fouled = rr.bottom < rr.middle || rr.middle < rr.top
	return rr
}

// topRoyalty scores the top row: pairs from sixes up, any trips.
func topRoyalty(rank poker.HandRank) int {
	primary := int(rank >> 24 & 0xF) // rank index, 0 = deuce
	switch rank.Category() {
	case poker.ThreeOfAKind:
		return primary + 10 // 222 = 10 up to AAA = 22
	case poker.Pair:
		pairRank := primary + 2
		if pairRank >= 6 {
			return pairRank - 5 // 66 = 1 up to AA = 9
		}
	}
	return 0
}

// middleRoyalty scores the middle row.
func middleRoyalty(rank poker.HandRank) int {
	switch rank.Category() {
	case poker.ThreeOfAKind:
		return 2
	case poker.Straight:
		return 4
	case poker.Flush:
		return 8
	case poker.FullHouse:
		return 12
	case poker.FourOfAKind:
		return 20
	case poker.StraightFlush:
		if isRoyal(rank) {
			return 50
		}
		return 30
	}
	return 0
}

// bottomRoyalty scores the bottom row.
func bottomRoyalty(rank poker.HandRank) int {
	switch rank.Category() {
	case poker.Straight:
		return 2
	case poker.Flush:
		return 4
	case poker.FullHouse:
		return 6
	case poker.FourOfAKind:
		return 10
	case poker.StraightFlush:
		if isRoyal(rank) {
			return 25
		}
		return 15
	}
	return 0
}

func isRoyal(rank poker.HandRank) bool {
	return rank.Category() == poker.StraightFlush && int(rank>>24&0xF) == 12
}

func boardRoyalties(rr rowRanks) int {
	if rr.fouled {
		return 0
	}
	return topRoyalty(rr.top) + middleRoyalty(rr.middle) + bottomRoyalty(rr.bottom)
}

// earnsFantasyland reports whether a clean final board enters fantasyland:
// queens or better on top, or any top trips.
func earnsFantasyland(rr rowRanks) bool {
	if rr.fouled {
		return false
	}
	switch rr.top.Category() {
	case poker.ThreeOfAKind:
		return true
	case poker.Pair:
		return int(rr.top>>24&0xF)+2 >= int(poker.Queen)
	}
	return false
}

// staysInFantasyland reports whether a fantasyland board re-qualifies:
// top trips, middle full house or better, or bottom quads or better.
func staysInFantasyland(rr rowRanks) bool {
	if rr.fouled {
		return false
	}
	if rr.top.Category() == poker.ThreeOfAKind {
		return true
	}
	if rr.middle.Category() >= poker.FullHouse {
		return true
	}
	return rr.bottom.Category() >= poker.FourOfAKind
}

// Score settles the hand pairwise: each ordered pair exchanges row points,
// a scoop bonus, and netted royalties; points convert to chips at one big
// blind per point.
func (g *Game) Score() Result {
	n := len(g.Players)
	ranks := make([]rowRanks, n)
	royalties := make([]int, n)
	points := make([]int, n)
	for i, p := range g.Players {
		ranks[i] = resolveBoard(&p.Board)
		royalties[i] = boardRoyalties(ranks[i])
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pi, pj := pairPoints(ranks[i], ranks[j], royalties[i], royalties[j])
			points[i] += pi
			points[j] += pj
		}
	}

	result := Result{Scores: make([]PlayerScore, n)}
	for i, p := range g.Players {
		if p.IsFantasyland {
			p.NextFantasyland = staysInFantasyland(ranks[i])
		} else {
			p.NextFantasyland = earnsFantasyland(ranks[i])
		}
		result.Scores[i] = PlayerScore{
			Seat:        i,
			Fouled:      ranks[i].fouled,
			Royalties:   royalties[i],
			Points:      points[i],
			ChipChange:  points[i] * g.BigBlind,
			Fantasyland: p.NextFantasyland,
		}
	}
	return result
}

// pairPoints scores one matchup and returns the two point deltas (equal
// and opposite).
func pairPoints(a, b rowRanks, royA, royB int) (int, int) {
	switch {
	case a.fouled && b.fouled:
		return 0, 0
	case a.fouled:
		// Clean board sweeps all rows plus the scoop and keeps its
		// royalties; the fouled side pays with nothing to net.
		p := 3 + scoopBonus + royB
		return -p, p
	case b.fouled:
		p := 3 + scoopBonus + royA
		return p, -p
	}

	rows := 0
	rows += compareRow(a.top, b.top)
	rows += compareRow(a.middle, b.middle)
	rows += compareRow(a.bottom, b.bottom)

	p := rows
	if rows == 3 || rows == -3 {
		if rows > 0 {
			p += scoopBonus
		} else {
			p -= scoopBonus
		}
	}
	p += royA - royB
	return p, -p
}

func compareRow(a, b poker.HandRank) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}
