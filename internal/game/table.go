package game

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/mixpot/mixpot/internal/variant"
	"github.com/mixpot/mixpot/poker"
)

// HandPhase is the coarse state of a table: between hands, mid-hand, or
// resolving a showdown.
type HandPhase string

const (
	PhaseWaiting  HandPhase = "WAITING"
	PhasePlaying  HandPhase = "PLAYING"
	PhaseShowdown HandPhase = "SHOWDOWN"
)

// Stakes carries the forced-bet sizing for a table. Fixed-limit bet sizes
// scale off the big blind: small bet = BB, big bet = 2xBB. The stud ante
// defaults to BB/5 when unset.
type Stakes struct {
	SmallBlind int
	BigBlind   int
	StudAnte   int
}

// Ante returns the stud ante, applying the default.
func (s Stakes) Ante() int {
	if s.StudAnte > 0 {
		return s.StudAnte
	}
	a := s.BigBlind / 5
	if a < 1 {
		a = 1
	}
	return a
}

// SmallBet returns the fixed-limit small bet.
func (s Stakes) SmallBet() int { return s.BigBlind }

// BigBet returns the fixed-limit big bet.
func (s Stakes) BigBet() int { return s.BigBlind * 2 }

// Table is the authoritative per-room game state the engine operates on.
// All position fields are seat indexes into Seats (nil = empty seat);
// iteration around the table is modulo len(Seats).
type Table struct {
	Seats  []*Player
	Stakes Stakes

	Variant variant.Definition
	Phase   HandPhase

	// Position indexes. -1 means unset.
	Button        int
	Active        int // seat due to act; -1 outside betting
	StreetStarter int // last seat whose aggression reopened the round
	LastAggressor int // last full bet or raise this street

	StreetIdx int // index into Variant.Streets
	Board     []poker.Card
	Deck      *poker.Deck

	CurrentBet      int // highest bet-to among live seats this round
	MinRaise        int // minimum legal raise increment
	RaisesThisRound int // fixed-limit cap counter

	HandNumber int

	// Draw-phase bookkeeping.
	IsDrawPhase   bool
	CompletedDraw map[int]bool

	// Runout bookkeeping: set when betting can no longer change anything
	// and the remaining board is dealt out.
	IsRunout    bool
	RunoutPhase int // street index the runout reveal starts from

	// acted tracks which seats have acted since the last full raise. It is
	// cleared by bets and full raises but not by short all-ins, which is
	// exactly the reopening rule.
	acted []bool

	rng    *rand.Rand
	logger *log.Logger
}

// NewTable creates an empty table with the given number of seats.
func NewTable(seatCount int, stakes Stakes, v variant.Definition, rng *rand.Rand, logger *log.Logger) *Table {
	return &Table{
		Seats:         make([]*Player, seatCount),
		Stakes:        stakes,
		Variant:       v,
		Phase:         PhaseWaiting,
		Button:        -1,
		Active:        -1,
		StreetStarter: -1,
		LastAggressor: -1,
		rng:           rng,
		logger:        logger,
	}
}

// Street returns the current betting street label.
func (t *Table) Street() variant.Street {
	if t.StreetIdx < len(t.Variant.Streets) {
		return t.Variant.Streets[t.StreetIdx]
	}
	return 0
}

// SeatCount returns the table's fixed seat count.
func (t *Table) SeatCount() int {
	return len(t.Seats)
}

// Seat returns the player at an index, nil for empty or out-of-range.
func (t *Table) Seat(idx int) *Player {
	if idx < 0 || idx >= len(t.Seats) {
		return nil
	}
	return t.Seats[idx]
}

// SeatByID finds a seat index by player id, -1 when absent.
func (t *Table) SeatByID(playerID string) int {
	for i, p := range t.Seats {
		if p != nil && p.ID == playerID {
			return i
		}
	}
	return -1
}

// nextSeat returns the next occupied seat index after from (exclusive) that
// satisfies the predicate, or -1 after a full lap.
func (t *Table) nextSeat(from int, ok func(*Player) bool) int {
	n := len(t.Seats)
	for i := 1; i <= n; i++ {
		idx := ((from+i)%n + n) % n
		if p := t.Seats[idx]; p != nil && ok(p) {
			return idx
		}
	}
	return -1
}

// nextActor returns the next seat that can still take a betting action.
func (t *Table) nextActor(from int) int {
	return t.nextSeat(from, func(p *Player) bool { return p.CanAct() })
}

// InHandSeats returns indexes of seats holding live cards.
func (t *Table) InHandSeats() []int {
	var out []int
	for i, p := range t.Seats {
		if p.InHand() {
			out = append(out, i)
		}
	}
	return out
}

// countInHand counts non-folded seats still holding cards.
func (t *Table) countInHand() int {
	n := 0
	for _, p := range t.Seats {
		if p.InHand() {
			n++
		}
	}
	return n
}

// countCanAct counts seats that can still take betting actions.
func (t *Table) countCanAct() int {
	n := 0
	for _, p := range t.Seats {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// Startable reports whether a seat is eligible to be dealt into the next
// hand.
func Startable(p *Player) bool {
	if p == nil || p.Stack <= 0 || p.PendingSitOut || p.PendingLeave {
		return false
	}
	if p.Status == StatusActive {
		return true
	}
	return p.Status == StatusSitOut && p.PendingJoin && !p.WaitingForBB
}

// StartableCount counts seats eligible for the next hand.
func (t *Table) StartableCount() int {
	n := 0
	for _, p := range t.Seats {
		if Startable(p) {
			n++
		}
	}
	return n
}

// PotTotal sums all chips committed this hand.
func (t *Table) PotTotal() int {
	return PotTotal(t.Seats)
}

// Pots derives the current main and side pots.
func (t *Table) Pots() []Pot {
	return BuildPots(t.Seats)
}
