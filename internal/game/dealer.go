package game

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mixpot/mixpot/internal/variant"
	"github.com/mixpot/mixpot/poker"
)

// Dealing and forced-bet mechanics. These mutate the table directly; the
// engine sequences them.

var ErrNotEnoughPlayers = errors.New("not enough players to start a hand")

// moveButton advances the dealer button to the next startable seat.
func (t *Table) moveButton() {
	next := t.nextSeat(t.Button, Startable)
	if next >= 0 {
		t.Button = next
	}
}

// dealHoleCards deals count down cards to each in-hand seat, round-robin
// starting left of the button, the way a live dealer pitches.
func (t *Table) dealHoleCards(count int) error {
	order := t.dealOrder()
	for round := 0; round < count; round++ {
		for _, idx := range order {
			c, err := t.Deck.DealOne()
			if err != nil {
				return err
			}
			t.Seats[idx].Hand = append(t.Seats[idx].Hand, c)
		}
	}
	return nil
}

// dealOrder returns in-hand seat indexes starting left of the button.
func (t *Table) dealOrder() []int {
	var order []int
	n := len(t.Seats)
	for i := 1; i <= n; i++ {
		idx := (t.Button + i) % n
		if t.Seats[idx].InHand() {
			order = append(order, idx)
		}
	}
	return order
}

// dealBoard burns one card and deals n to the community board.
func (t *Table) dealBoard(n int) error {
	if n == 0 {
		return nil
	}
	if err := t.Deck.Burn(); err != nil {
		return err
	}
	cards, err := t.Deck.Deal(n)
	if err != nil {
		return err
	}
	t.Board = append(t.Board, cards...)
	return nil
}

// collectBlinds posts the small and big blinds. Heads-up the button posts
// the small blind; otherwise the two seats left of the button post in
// order. Short stacks post what remains and go all-in.
func (t *Table) collectBlinds() (sbSeat, bbSeat int) {
	order := t.dealOrder()
	if len(order) < 2 {
		return -1, -1
	}
	if len(order) == 2 {
		// order[1] is the button's own seat (last in deal order).
		sbSeat, bbSeat = order[1], order[0]
	} else {
		sbSeat, bbSeat = order[0], order[1]
	}

	t.Seats[sbSeat].Commit(t.Stakes.SmallBlind)
	t.Seats[bbSeat].Commit(t.Stakes.BigBlind)

	t.CurrentBet = t.Stakes.BigBlind
	t.MinRaise = t.Stakes.BigBlind
	return sbSeat, bbSeat
}

// collectAntes posts the stud ante from every in-hand seat. Antes are dead
// money: they raise TotalBet without opening a bet to match.
func (t *Table) collectAntes() {
	ante := t.Stakes.Ante()
	for _, p := range t.Seats {
		if p.InHand() {
			p.Commit(ante)
			p.Bet = 0 // antes do not count toward the round's bet
		}
	}
}

// dealStudInitial deals two down cards and one up card to each seat.
func (t *Table) dealStudInitial() error {
	if err := t.dealHoleCards(2); err != nil {
		return err
	}
	for _, idx := range t.dealOrder() {
		c, err := t.Deck.DealOne()
		if err != nil {
			return err
		}
		t.Seats[idx].UpCards = append(t.Seats[idx].UpCards, c)
	}
	return nil
}

// dealStudStreet deals one card to each live seat: face up, except seventh
// street which is dealt down.
func (t *Table) dealStudStreet(down bool) error {
	for _, idx := range t.dealOrder() {
		c, err := t.Deck.DealOne()
		if err != nil {
			return err
		}
		p := t.Seats[idx]
		if down {
			p.Hand = append(p.Hand, c)
		} else {
			p.UpCards = append(p.UpCards, c)
		}
	}
	return nil
}

// bringInSeat returns the seat forced to open third street: the lowest up
// card, ties broken by suit (clubs lowest). Razz inverts to the highest.
func (t *Table) bringInSeat() int {
	best := -1
	var bestCard poker.Card
	for idx, p := range t.Seats {
		if !p.InHand() || len(p.UpCards) == 0 {
			continue
		}
		c := p.UpCards[0]
		if best < 0 {
			best, bestCard = idx, c
			continue
		}
		if t.Variant.Showdown == variant.ShowdownA5Low {
			if cardKey(c) > cardKey(bestCard) {
				best, bestCard = idx, c
			}
		} else if cardKey(c) < cardKey(bestCard) {
			best, bestCard = idx, c
		}
	}
	return best
}

func cardKey(c poker.Card) int {
	return int(c.Rank)<<2 | int(c.Suit)
}

// postBringIn forces the bring-in bet (half the small bet, at least one
// chip) from the given seat and opens the round at that price.
func (t *Table) postBringIn(seat int) {
	amount := t.Stakes.SmallBet() / 2
	if amount < 1 {
		amount = 1
	}
	p := t.Seats[seat]
	p.Commit(amount)
	p.LastAction = ActionBet
	t.CurrentBet = p.Bet
	// Completing to a full small bet is the first "raise" over the
	// bring-in and does not change the increment thereafter.
	t.MinRaise = t.Stakes.SmallBet() - amount
	if t.MinRaise < 1 {
		t.MinRaise = 1
	}
	t.LastAggressor = seat
	t.StreetStarter = seat
}

// studFirstToAct returns the seat opening a later stud street: the best
// showing up-cards, Razz inverted to the worst high showing.
func (t *Table) studFirstToAct() int {
	best := -1
	var bestRank uint32
	for idx, p := range t.Seats {
		if !p.CanAct() {
			continue
		}
		r := showingRank(p.UpCards)
		if best < 0 {
			best, bestRank = idx, r
			continue
		}
		if t.Variant.Showdown == variant.ShowdownA5Low {
			if r < bestRank {
				best, bestRank = idx, r
			}
		} else if r > bestRank {
			best, bestRank = idx, r
		}
	}
	return best
}

// showingRank orders partial up-card holdings: quads over trips over pairs
// over high cards, ranks compared high to low.
func showingRank(cards []poker.Card) uint32 {
	var counts [15]uint8
	for _, c := range cards {
		counts[c.Rank]++
	}
	var groupRank, groupSize uint32
	for r := 2; r <= 14; r++ {
		if uint32(counts[r]) >= groupSize && counts[r] > 0 {
			groupSize = uint32(counts[r])
			groupRank = uint32(r)
		}
	}
	ranks := make([]int, 0, len(cards))
	for _, c := range cards {
		ranks = append(ranks, int(c.Rank))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
	var kickers uint32
	shift := 12
	for _, r := range ranks {
		if shift < 0 {
			break
		}
		kickers |= uint32(r) << uint(shift)
		shift -= 4
	}
	return groupSize<<28 | groupRank<<24 | kickers&0xFFFFFF
}

// ExchangeDrawCards replaces the cards at the given hand indexes with fresh
// deck cards, preserving hand length and order. Indexes must be unique and
// in range. The replaced cards go to the discard pile, which reshuffles
// back in if the stub runs dry.
func (t *Table) ExchangeDrawCards(seat int, indexes []int) ([]poker.Card, error) {
	p := t.Seat(seat)
	if p == nil || !p.InHand() {
		return nil, fmt.Errorf("seat %d not in hand", seat)
	}
	if len(indexes) > t.Variant.MaxDrawCount {
		return nil, fmt.Errorf("cannot draw more than %d cards", t.Variant.MaxDrawCount)
	}
	seen := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= len(p.Hand) {
			return nil, fmt.Errorf("discard index %d out of range", idx)
		}
		if seen[idx] {
			return nil, fmt.Errorf("duplicate discard index %d", idx)
		}
		seen[idx] = true
	}

	fresh, err := t.Deck.DealWithReshuffle(len(indexes))
	if err != nil {
		return nil, err
	}
	for i, idx := range indexes {
		t.Deck.Discard(p.Hand[idx])
		p.Hand[idx] = fresh[i]
	}
	return fresh, nil
}
