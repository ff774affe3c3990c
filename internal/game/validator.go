package game

import (
	"github.com/mixpot/mixpot/internal/variant"
)

// fixedLimitCap is the total bets allowed per round (a bet plus three
// raises) at three-handed tables and larger. Heads-up pots are uncapped.
const fixedLimitCap = 4

// ActionOptions describes what a seat may legally do right now, with the
// numeric bounds the client needs to build its controls. Bet and raise
// amounts are expressed as additional chips on top of the seat's current
// round bet, matching the wire protocol.
type ActionOptions struct {
	ValidActions    []Action
	CallAmount      int
	MinBet          int // minimum additional chips for BET/RAISE
	MaxBet          int // maximum additional chips for BET/RAISE
	FixedBetSize    int // fixed-limit only
	IsCapped        bool
	RaisesRemaining int
	BetStructure    variant.BettingStructure
}

// fixedBetForStreet returns the fixed-limit bet size in force: the small
// bet on early streets, the big bet from BigBetFromStreet on.
func (t *Table) fixedBetForStreet(streetIdx int) int {
	if streetIdx >= t.Variant.BigBetFromStreet {
		return t.Stakes.BigBet()
	}
	return t.Stakes.SmallBet()
}

// raiseCapped reports whether fixed-limit raising is closed this round.
// The cap never applies heads-up.
func (t *Table) raiseCapped() bool {
	if t.Variant.Structure != variant.FixedLimit {
		return false
	}
	if t.countInHand() <= 2 {
		return false
	}
	return t.RaisesThisRound >= fixedLimitCap
}

// ActionOptions computes the legal actions and bounds for a seat. Returns
// a zero value when the seat cannot act at all.
func (t *Table) ActionOptions(seat int) ActionOptions {
	p := t.Seat(seat)
	if p == nil || !p.CanAct() || t.Phase != PhasePlaying || t.IsDrawPhase {
		return ActionOptions{BetStructure: t.Variant.Structure}
	}

	opts := ActionOptions{
		BetStructure: t.Variant.Structure,
		ValidActions: []Action{ActionFold},
	}

	toCall := t.CurrentBet - p.Bet
	if toCall < 0 {
		toCall = 0
	}
	opts.CallAmount = min(toCall, p.Stack)

	if toCall == 0 {
		opts.ValidActions = append(opts.ValidActions, ActionCheck)
	} else {
		opts.ValidActions = append(opts.ValidActions, ActionCall)
	}

	capped := t.raiseCapped()
	opts.IsCapped = capped
	if t.Variant.Structure == variant.FixedLimit {
		opts.FixedBetSize = t.fixedBetForStreet(t.StreetIdx)
		opts.RaisesRemaining = fixedLimitCap - t.RaisesThisRound
		if opts.RaisesRemaining < 0 {
			opts.RaisesRemaining = 0
		}
		if t.countInHand() <= 2 {
			opts.RaisesRemaining = -1 // uncapped
		}
	}

	// A seat that has already acted since the last full raise cannot raise
	// again: a short all-in in between does not reopen the action.
	reopenClosed := seat < len(t.acted) && t.acted[seat]

	canPutMore := p.Stack > toCall
	if canPutMore && !capped && !reopenClosed {
		if t.CurrentBet == 0 {
			opts.ValidActions = append(opts.ValidActions, ActionBet)
		} else {
			opts.ValidActions = append(opts.ValidActions, ActionRaise)
		}
		opts.MinBet, opts.MaxBet = t.betBounds(p, toCall)
	}
	opts.ValidActions = append(opts.ValidActions, ActionAllIn)
	return opts
}

// betBounds returns [min, max] additional chips for a bet or raise under
// the variant's betting structure.
func (t *Table) betBounds(p *Player, toCall int) (minAdd, maxAdd int) {
	switch t.Variant.Structure {
	case variant.NoLimit:
		minTo := t.CurrentBet + t.MinRaise
		minAdd = minTo - p.Bet
		maxAdd = p.Stack
	case variant.PotLimit:
		minTo := t.CurrentBet + t.MinRaise
		minAdd = minTo - p.Bet
		// Pot-limit ceiling: raise to the pot plus twice the call, where
		// the pot includes all current-round commitments.
		maxTo := t.PotTotal() + 2*toCall
		if maxTo < minTo {
			maxTo = minTo
		}
		maxAdd = min(maxTo-p.Bet, p.Stack)
	case variant.FixedLimit:
		fixed := t.fixedBetForStreet(t.StreetIdx)
		var minTo int
		switch {
		case t.CurrentBet == 0:
			minTo = fixed
		case t.CurrentBet < fixed:
			// Completing the bring-in to a full small bet.
			minTo = fixed
		default:
			minTo = t.CurrentBet + fixed
		}
		minAdd = minTo - p.Bet
		maxAdd = minAdd
		if maxAdd > p.Stack {
			maxAdd = p.Stack
			minAdd = p.Stack // short all-in is the only remaining size
		}
	}
	if minAdd > maxAdd {
		minAdd = maxAdd
	}
	if minAdd > p.Stack {
		minAdd = p.Stack
	}
	if maxAdd > p.Stack {
		maxAdd = p.Stack
	}
	return minAdd, maxAdd
}

func hasAction(opts ActionOptions, action Action) bool {
	for _, a := range opts.ValidActions {
		if a == action {
			return true
		}
	}
	return false
}
