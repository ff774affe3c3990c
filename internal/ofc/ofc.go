// Package ofc implements Open-Face Chinese Pineapple: the five-round
// placement state machine, board validation, JOPT royalty scoring, and
// fantasyland tracking. OFC rooms run this engine in place of the betting
// engine; there are no betting rounds, only placements and a settlement.
package ofc

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/mixpot/mixpot/poker"
)

// Phase is the OFC hand phase.
type Phase string

const (
	PhaseInitialPlacing   Phase = "INITIAL_PLACING"
	PhasePineapplePlacing Phase = "PINEAPPLE_PLACING"
	PhaseScoring          Phase = "SCORING"
)

// Row identifies a board row.
type Row string

const (
	RowTop    Row = "top"
	RowMiddle Row = "middle"
	RowBottom Row = "bottom"
)

// Row capacities are hard limits.
const (
	topCap    = 3
	middleCap = 5
	bottomCap = 5
)

const (
	finalRound         = 5
	initialDeal        = 5
	pineappleDeal      = 3
	fantasylandDeal    = 14
	fantasylandPlaced  = 13
	pineapplePlaced    = 2
	pineappleDiscarded = 1
)

// Board is one player's three rows. Cards never move between rows once
// placed.
type Board struct {
	Top    []poker.Card `json:"top"`
	Middle []poker.Card `json:"middle"`
	Bottom []poker.Card `json:"bottom"`
}

// Cards returns every card on the board.
func (b *Board) Cards() []poker.Card {
	out := make([]poker.Card, 0, topCap+middleCap+bottomCap)
	out = append(out, b.Top...)
	out = append(out, b.Middle...)
	out = append(out, b.Bottom...)
	return out
}

// Full reports whether all thirteen placements are made.
func (b *Board) Full() bool {
	return len(b.Top) == topCap && len(b.Middle) == middleCap && len(b.Bottom) == bottomCap
}

func (b *Board) row(r Row) *[]poker.Card {
	switch r {
	case RowTop:
		return &b.Top
	case RowMiddle:
		return &b.Middle
	case RowBottom:
		return &b.Bottom
	}
	return nil
}

func rowCap(r Row) int {
	switch r {
	case RowTop:
		return topCap
	default:
		return middleCap
	}
}

// Player is one seat's OFC hand state.
type Player struct {
	ID   string
	Name string

	Board        Board
	CurrentCards []poker.Card
	Discards     []poker.Card
	HasPlaced    bool

	// IsFantasyland marks a seat playing this hand in fantasyland: dealt
	// fourteen cards up front, placing thirteen in one shot.
	IsFantasyland bool

	// NextFantasyland is set at scoring when the final board earns entry
	// or continuation.
	NextFantasyland bool
}

// Placement assigns one card to a row.
type Placement struct {
	Card poker.Card `json:"card"`
	Row  Row        `json:"row"`
}

// Game is one OFC hand for up to three players.
type Game struct {
	Phase     Phase
	Round     int // 1..5
	TurnIndex int // round-robin in rounds 2..5; unused in round 1
	Players   []*Player
	Deck      *poker.Deck
	BigBlind  int

	logger *log.Logger
}

// NewGame creates and deals a new OFC hand. The deck carries both jokers.
// Players flagged fantasyland receive their full fourteen cards up front.
func NewGame(players []*Player, bigBlind int, rng *rand.Rand, logger *log.Logger) (*Game, error) {
	if len(players) < 2 || len(players) > 3 {
		return nil, fmt.Errorf("OFC seats 2 or 3 players, got %d", len(players))
	}
	g := &Game{
		Phase:    PhaseInitialPlacing,
		Round:    1,
		Players:  players,
		Deck:     poker.NewDeck(rng, poker.WithJokers()),
		BigBlind: bigBlind,
		logger:   logger,
	}
	for _, p := range g.Players {
		deal := initialDeal
		if p.IsFantasyland {
			deal = fantasylandDeal
		}
		cards, err := g.Deck.Deal(deal)
		if err != nil {
			return nil, err
		}
		p.CurrentCards = cards
	}
	return g, nil
}

// CurrentTurn returns the index of the player due to place, or -1 when the
// round accepts placements from anyone still pending (round 1).
func (g *Game) CurrentTurn() int {
	if g.Phase != PhasePineapplePlacing {
		return -1
	}
	return g.TurnIndex
}

// PlaceCards applies one player's placement for the current round.
//
// Round 1 places all five cards (thirteen plus one discard in
// fantasyland). Rounds 2-5 place exactly two of the three dealt cards and
// discard the third, in turn order. Row capacities are enforced; cards
// must come from the player's dealt cards.
func (g *Game) PlaceCards(playerIdx int, placements []Placement, discard *poker.Card) error {
	if g.Phase == PhaseScoring {
		return fmt.Errorf("hand is already scoring")
	}
	if playerIdx < 0 || playerIdx >= len(g.Players) {
		return fmt.Errorf("no such seat %d", playerIdx)
	}
	p := g.Players[playerIdx]
	if p.HasPlaced {
		return fmt.Errorf("already placed this round")
	}
	if g.Phase == PhasePineapplePlacing && playerIdx != g.TurnIndex {
		return fmt.Errorf("not your turn")
	}

	var wantPlaced, wantDiscards int
	switch {
	case g.Phase == PhaseInitialPlacing && p.IsFantasyland:
		wantPlaced, wantDiscards = fantasylandPlaced, 1
	case g.Phase == PhaseInitialPlacing:
		wantPlaced, wantDiscards = initialDeal, 0
	default:
		wantPlaced, wantDiscards = pineapplePlaced, pineappleDiscarded
	}
	if len(placements) != wantPlaced {
		return fmt.Errorf("round %d requires exactly %d placements", g.Round, wantPlaced)
	}
	if wantDiscards == 1 && discard == nil {
		return fmt.Errorf("round %d requires a discard", g.Round)
	}
	if wantDiscards == 0 && discard != nil {
		return fmt.Errorf("round %d has no discard", g.Round)
	}

	// Every placed or discarded card must be one of the dealt cards, used
	// exactly once.
	pool := make(map[poker.Card]int)
	for _, c := range p.CurrentCards {
		pool[c]++
	}
	use := func(c poker.Card) error {
		if pool[c] == 0 {
			return fmt.Errorf("card %s was not dealt to you", c)
		}
		pool[c]--
		return nil
	}
	for _, pl := range placements {
		if err := use(pl.Card); err != nil {
			return err
		}
	}
	if discard != nil {
		if err := use(*discard); err != nil {
			return err
		}
	}

	// Capacity check before mutating anything.
	add := map[Row]int{}
	for _, pl := range placements {
		if p.Board.row(pl.Row) == nil {
			return fmt.Errorf("unknown row %q", pl.Row)
		}
		add[pl.Row]++
	}
	for row, n := range add {
		if len(*p.Board.row(row))+n > rowCap(row) {
			return fmt.Errorf("row %s over capacity", row)
		}
	}

	for _, pl := range placements {
		slot := p.Board.row(pl.Row)
		*slot = append(*slot, pl.Card)
	}
	if discard != nil {
		p.Discards = append(p.Discards, *discard)
	}
	p.CurrentCards = nil
	p.HasPlaced = true

	return g.advance()
}

// advance moves the state machine after a placement: deals the next
// pineapple turn, opens the next round, or enters scoring.
func (g *Game) advance() error {
	switch g.Phase {
	case PhaseInitialPlacing:
		for _, p := range g.Players {
			if !p.HasPlaced {
				return nil
			}
		}
		return g.nextRound()
	case PhasePineapplePlacing:
		next := g.nextPending()
		if next < 0 {
			return g.nextRound()
		}
		g.TurnIndex = next
		return g.dealTurn(next)
	}
	return nil
}

// nextPending finds the next seat after TurnIndex that has not placed this
// round, skipping fantasyland seats (their board is already complete).
func (g *Game) nextPending() int {
	n := len(g.Players)
	for i := 1; i <= n; i++ {
		idx := (g.TurnIndex + i) % n
		p := g.Players[idx]
		if !p.HasPlaced && !p.Board.Full() {
			return idx
		}
	}
	return -1
}

// nextRound opens the next pineapple round or enters scoring after round
// five.
func (g *Game) nextRound() error {
	if g.Round >= finalRound {
		g.Phase = PhaseScoring
		return nil
	}
	g.Round++
	g.Phase = PhasePineapplePlacing
	for _, p := range g.Players {
		p.HasPlaced = p.Board.Full() // fantasyland boards sit out
	}
	first := -1
	for i, p := range g.Players {
		if !p.HasPlaced {
			first = i
			break
		}
	}
	if first < 0 {
		return g.nextRound()
	}
	g.TurnIndex = first
	return g.dealTurn(first)
}

// dealTurn deals the three pineapple cards to the seat due to act.
func (g *Game) dealTurn(idx int) error {
	cards, err := g.Deck.Deal(pineappleDeal)
	if err != nil {
		return err
	}
	g.Players[idx].CurrentCards = cards
	return nil
}
