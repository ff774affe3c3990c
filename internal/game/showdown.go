package game

import (
	"github.com/mixpot/mixpot/internal/variant"
	"github.com/mixpot/mixpot/poker"
)

// Winner is one seat's share of the settled pots.
type Winner struct {
	Seat       int      `json:"seat"`
	PlayerID   string   `json:"playerId"`
	PlayerName string   `json:"playerName"`
	Hand       []string `json:"hand,omitempty"`
	HandRank   string   `json:"handRank"`
	Amount     int      `json:"amount"`
}

// ShownHand is a hand revealed at showdown.
type ShownHand struct {
	Seat       int      `json:"seat"`
	PlayerID   string   `json:"playerId"`
	PlayerName string   `json:"playerName"`
	Cards      []string `json:"cards"`
	HandRank   string   `json:"handRank"`
}

// ShowdownResult is the winner report broadcast at hand end.
type ShowdownResult struct {
	Winners       []Winner    `json:"winners"`
	AllHands      []ShownHand `json:"allHands,omitempty"`
	IsUncontested bool        `json:"isUncontested"`
}

// seatScore carries a seat's evaluations for the variant in play.
type seatScore struct {
	hi    poker.HandRank
	lo    poker.LowRank
	hasLo bool
	desc  string
}

// Settle evaluates the contesting hands and pays out every pot. The table
// must be in SHOWDOWN. After settlement the winners' stacks are increased
// and the hand's commitments are consumed.
func (t *Table) Settle() ShowdownResult {
	inHand := t.InHandSeats()
	pots := t.Pots()

	if len(inHand) == 1 {
		// Uncontested: the last seat standing takes everything unseen.
		seat := inHand[0]
		total := 0
		for _, pot := range pots {
			total += pot.Amount
		}
		p := t.Seats[seat]
		p.Stack += total
		t.FinishHand()
		return ShowdownResult{
			IsUncontested: true,
			Winners: []Winner{{
				Seat: seat, PlayerID: p.ID, PlayerName: p.Name,
				HandRank: "Uncontested", Amount: total,
			}},
		}
	}

	scores := make(map[int]seatScore, len(inHand))
	var shown []ShownHand
	for _, seat := range inHand {
		score := t.scoreSeat(seat)
		scores[seat] = score
		p := t.Seats[seat]
		shown = append(shown, ShownHand{
			Seat: seat, PlayerID: p.ID, PlayerName: p.Name,
			Cards:    poker.CardStrings(t.showdownCards(seat)),
			HandRank: score.desc,
		})
	}

	amounts := make(map[int]int)
	for _, pot := range pots {
		t.awardPot(pot, scores, amounts)
	}

	var winners []Winner
	for _, seat := range t.seatOrderFromButton() {
		amount, ok := amounts[seat]
		if !ok {
			continue
		}
		p := t.Seats[seat]
		p.Stack += amount
		winners = append(winners, Winner{
			Seat: seat, PlayerID: p.ID, PlayerName: p.Name,
			Hand:     poker.CardStrings(t.showdownCards(seat)),
			HandRank: scores[seat].desc,
			Amount:   amount,
		})
	}

	t.FinishHand()
	return ShowdownResult{Winners: winners, AllHands: shown}
}

// awardPot splits one pot tier among its winners and accumulates the
// shares. Hi-lo variants halve the pot between the high winners and the
// qualifying low winners; with no qualifying low, high scoops.
func (t *Table) awardPot(pot Pot, scores map[int]seatScore, amounts map[int]int) {
	if len(pot.Eligible) == 0 {
		return
	}
	if t.Variant.Showdown == variant.ShowdownHighSplit8 {
		hiWinners := bestHigh(pot.Eligible, scores)
		loWinners := bestLow(pot.Eligible, scores, true)
		if len(loWinners) == 0 {
			t.splitShare(pot.Amount, hiWinners, amounts)
			return
		}
		hiHalf := pot.Amount - pot.Amount/2 // odd chip to the high side
		t.splitShare(hiHalf, hiWinners, amounts)
		t.splitShare(pot.Amount/2, loWinners, amounts)
		return
	}

	var potWinners []int
	if t.lowOnlyVariant() {
		potWinners = bestLow(pot.Eligible, scores, false)
	} else {
		potWinners = bestHigh(pot.Eligible, scores)
	}
	t.splitShare(pot.Amount, potWinners, amounts)
}

func (t *Table) lowOnlyVariant() bool {
	switch t.Variant.Showdown {
	case variant.ShowdownA5Low, variant.Showdown27Low, variant.ShowdownBadugi:
		return true
	}
	return false
}

func bestHigh(eligible []int, scores map[int]seatScore) []int {
	var winners []int
	var best poker.HandRank
	for _, seat := range eligible {
		s, ok := scores[seat]
		if !ok {
			continue
		}
		switch {
		case len(winners) == 0 || s.hi > best:
			winners = []int{seat}
			best = s.hi
		case s.hi == best:
			winners = append(winners, seat)
		}
	}
	return winners
}

func bestLow(eligible []int, scores map[int]seatScore, requireQualify bool) []int {
	var winners []int
	var best poker.LowRank
	for _, seat := range eligible {
		s, ok := scores[seat]
		if !ok || (requireQualify && !s.hasLo) {
			continue
		}
		switch {
		case len(winners) == 0 || s.lo < best:
			winners = []int{seat}
			best = s.lo
		case s.lo == best:
			winners = append(winners, seat)
		}
	}
	return winners
}

// splitShare divides an amount among winners; odd chips go to the winners
// seated first from the button.
func (t *Table) splitShare(amount int, winners []int, amounts map[int]int) {
	if len(winners) == 0 || amount <= 0 {
		return
	}
	share := amount / len(winners)
	odd := amount % len(winners)
	ordered := orderSeats(winners, t.seatOrderFromButton())
	for _, seat := range ordered {
		give := share
		if odd > 0 {
			give++
			odd--
		}
		amounts[seat] += give
	}
}

// seatOrderFromButton lists every seat index starting left of the button.
func (t *Table) seatOrderFromButton() []int {
	n := len(t.Seats)
	order := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		order = append(order, ((t.Button+i)%n+n)%n)
	}
	return order
}

func orderSeats(seats []int, order []int) []int {
	out := make([]int, 0, len(seats))
	in := make(map[int]bool, len(seats))
	for _, s := range seats {
		in[s] = true
	}
	for _, s := range order {
		if in[s] {
			out = append(out, s)
		}
	}
	return out
}

// showdownCards returns the cards a seat's evaluation draws from.
func (t *Table) showdownCards(seat int) []poker.Card {
	p := t.Seats[seat]
	cards := append([]poker.Card(nil), p.Hand...)
	cards = append(cards, p.UpCards...)
	return cards
}

// scoreSeat evaluates a seat under the variant's showdown policy.
func (t *Table) scoreSeat(seat int) seatScore {
	p := t.Seats[seat]
	var s seatScore

	switch t.Variant.Showdown {
	case variant.ShowdownHigh:
		if t.Variant.OmahaRule {
			s.hi = poker.EvaluateOmaha(p.Hand, t.Board)
		} else if t.Variant.Family == variant.FamilyBoard {
			s.hi = poker.BestFive(append(append([]poker.Card(nil), p.Hand...), t.Board...))
		} else {
			s.hi = poker.BestFive(t.showdownCards(seat))
		}
		s.desc = poker.Describe(s.hi)

	case variant.ShowdownHighSplit8:
		if t.Variant.OmahaRule {
			s.hi = poker.EvaluateOmaha(p.Hand, t.Board)
			s.lo, s.hasLo = poker.EvaluateOmahaLow8(p.Hand, t.Board)
		} else {
			cards := t.showdownCards(seat)
			s.hi = poker.BestFive(cards)
			s.lo, s.hasLo = poker.BestLow8(cards)
		}
		s.desc = poker.Describe(s.hi)
		if s.hasLo {
			s.desc += " / " + poker.DescribeLow(s.lo)
		}

	case variant.ShowdownA5Low:
		s.lo = poker.BestA5Low(t.showdownCards(seat))
		s.desc = poker.DescribeLow(s.lo)

	case variant.Showdown27Low:
		s.lo = poker.Evaluate27Low(p.Hand)
		s.desc = poker.Describe(poker.HandRank(s.lo)) + " (low)"

	case variant.ShowdownBadugi:
		s.lo = poker.EvaluateBadugi(p.Hand)
		s.desc = poker.DescribeBadugi(s.lo)
	}
	return s
}
