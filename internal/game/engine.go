package game

import (
	"fmt"

	"github.com/mixpot/mixpot/internal/variant"
	"github.com/mixpot/mixpot/poker"
)

// The betting state machine. All entry points assume the caller holds the
// room's serialization; nothing here is safe for concurrent use.

// ActionResult reports what applying an action did to the table.
type ActionResult struct {
	Seat    int
	Applied Action
	Paid    int // chips moved into the pot by this action

	RoundComplete  bool
	StreetAdvanced bool
	EnteredDraw    bool
	Runout         bool
	HandComplete   bool
}

// StartHand begins a new hand: button movement, seat promotion, forced
// bets, and the variant's opening deal. Rejected unless at least two seats
// are startable.
func (t *Table) StartHand() error {
	if t.StartableCount() < 2 {
		return ErrNotEnoughPlayers
	}

	var entryPosts []int
	for idx, p := range t.Seats {
		if p == nil {
			continue
		}
		if p.Stack <= 0 && p.Status != StatusSitOut {
			p.Status = StatusSitOut
		}
		switch {
		case Startable(p):
			if p.PendingJoin {
				p.Status = StatusActive
				p.PendingJoin = false
				p.WaitingForBB = false
			}
			p.ResetForHand()
		case p.PendingJoin && p.WaitingForBB && p.Stack > 0 && !p.PendingSitOut && !p.PendingLeave:
			// Button-game entrants buy in by posting the big blind with
			// the hand that seats them.
			p.Status = StatusActive
			p.PendingJoin = false
			p.WaitingForBB = false
			p.ResetForHand()
			entryPosts = append(entryPosts, idx)
		default:
			p.Hand = nil
			p.UpCards = nil
			p.Bet = 0
			p.TotalBet = 0
		}
	}

	t.moveButton()
	t.HandNumber++
	t.Phase = PhasePlaying
	t.StreetIdx = 0
	t.Board = nil
	t.CurrentBet = 0
	t.MinRaise = t.Stakes.BigBlind
	t.RaisesThisRound = 0
	t.IsRunout = false
	t.RunoutPhase = 0
	t.IsDrawPhase = false
	t.CompletedDraw = nil
	t.LastAggressor = -1
	t.StreetStarter = -1
	t.acted = make([]bool, len(t.Seats))
	t.Deck = poker.NewDeck(t.rng)

	var err error
	switch t.Variant.Family {
	case variant.FamilyBoard:
		err = t.startBoardHand()
	case variant.FamilyStud:
		err = t.startStudHand()
	case variant.FamilyDraw:
		err = t.startDrawHand()
	default:
		err = fmt.Errorf("variant %s cannot start a betting hand", t.Variant.Code)
	}
	if err != nil {
		t.abortHand()
		return err
	}

	// Entry posts land after the blinds so a seat that is also a blind
	// never pays twice.
	for _, idx := range entryPosts {
		if p := t.Seats[idx]; p.Bet == 0 && p.InHand() {
			p.Commit(t.Stakes.BigBlind)
		}
	}

	// Forced bets can leave nobody with a decision (every startable seat
	// blinded all-in); run the hand out immediately. Callers observe the
	// phase after StartHand.
	if t.Active < 0 {
		if _, err := t.endRound(ActionResult{RoundComplete: true}); err != nil {
			return err
		}
	}

	t.logger.Debug("hand started",
		"variant", t.Variant.Code,
		"hand", t.HandNumber,
		"button", t.Button,
		"firstToAct", t.Active)
	return nil
}

func (t *Table) startBoardHand() error {
	_, bbSeat := t.collectBlinds()
	if err := t.dealHoleCards(t.Variant.HoleCards); err != nil {
		return err
	}
	t.Active = t.nextActor(bbSeat)
	return nil
}

func (t *Table) startStudHand() error {
	t.collectAntes()
	if err := t.dealStudInitial(); err != nil {
		return err
	}
	t.MinRaise = t.Stakes.SmallBet()
	bring := t.bringInSeat()
	if bring < 0 {
		return fmt.Errorf("no bring-in seat found")
	}
	t.postBringIn(bring)
	t.acted[bring] = true
	t.RaisesThisRound = 0
	t.Active = t.nextActor(bring)
	return nil
}

func (t *Table) startDrawHand() error {
	_, bbSeat := t.collectBlinds()
	t.MinRaise = t.Stakes.SmallBet()
	if err := t.dealHoleCards(t.Variant.HandSize); err != nil {
		return err
	}
	t.Active = t.nextActor(bbSeat)
	return nil
}

// abortHand refunds every commitment to its contributor and returns the
// table to WAITING. Used when an integrity violation (deck underflow)
// interrupts a hand.
func (t *Table) abortHand() {
	for _, p := range t.Seats {
		if p == nil {
			continue
		}
		p.Stack += p.TotalBet
		p.Bet = 0
		p.TotalBet = 0
		p.Hand = nil
		p.UpCards = nil
	}
	t.Phase = PhaseWaiting
	t.Active = -1
	t.Board = nil
	t.logger.Error("hand aborted, pot refunded", "hand", t.HandNumber)
}

// ProcessAction validates and applies a betting action for a seat. The
// amount is additional chips for BET and RAISE; other actions ignore it.
// Rejections leave the table untouched.
func (t *Table) ProcessAction(seat int, action Action, amount int) (ActionResult, error) {
	res := ActionResult{Seat: seat, Applied: action}

	if t.Phase != PhasePlaying {
		return res, fmt.Errorf("no hand in progress")
	}
	if t.IsDrawPhase {
		return res, fmt.Errorf("waiting for draws, betting is closed")
	}
	if seat != t.Active {
		return res, fmt.Errorf("not your turn")
	}
	p := t.Seat(seat)
	if p == nil || !p.CanAct() {
		return res, fmt.Errorf("seat cannot act")
	}

	opts := t.ActionOptions(seat)
	if !hasAction(opts, action) {
		if action == ActionRaise && opts.IsCapped {
			return res, fmt.Errorf("betting is capped")
		}
		return res, fmt.Errorf("action %s not available", action)
	}

	switch action {
	case ActionFold:
		p.Status = StatusFolded
		p.LastAction = ActionFold

	case ActionCheck:
		p.LastAction = ActionCheck

	case ActionCall:
		res.Paid = p.Commit(opts.CallAmount)
		p.LastAction = ActionCall

	case ActionBet, ActionRaise:
		if amount < opts.MinBet || amount > opts.MaxBet {
			return res, fmt.Errorf("amount %d out of bounds [%d, %d]", amount, opts.MinBet, opts.MaxBet)
		}
		res.Paid = t.applyAggression(seat, amount)
		p.LastAction = action

	case ActionAllIn:
		res.Paid, res.Applied = t.applyAllIn(seat)
		p.LastAction = ActionAllIn
	}

	t.acted[seat] = true

	return t.afterAction(seat, res)
}

// applyAggression commits a bet or raise. A full-size bet or raise reopens
// the action; an all-in for less than the minimum raise only moves the
// price to call.
func (t *Table) applyAggression(seat int, amount int) int {
	p := t.Seats[seat]
	paid := p.Commit(amount)
	raiseBy := p.Bet - t.CurrentBet
	t.CurrentBet = p.Bet
	if raiseBy >= t.MinRaise {
		t.MinRaise = raiseBy
		t.reopen(seat)
	}
	return paid
}

// reopen resets acted flags after a full bet or raise: everyone still in
// gets to act again, and the fixed-limit cap counter advances.
func (t *Table) reopen(seat int) {
	for i := range t.acted {
		t.acted[i] = false
	}
	t.acted[seat] = true
	t.LastAggressor = seat
	t.StreetStarter = seat
	if t.Variant.Structure == variant.FixedLimit {
		t.RaisesThisRound++
	}
}

// applyAllIn pushes the seat's entire stack and classifies the effect:
// call, full raise, or short raise. A short all-in raise updates the price
// to call but neither the minimum raise nor the reopening state, so seats
// that already acted since the last full raise may only call or fold.
func (t *Table) applyAllIn(seat int) (paid int, effect Action) {
	p := t.Seats[seat]
	stake := p.Stack
	newTo := p.Bet + stake
	prevCurrent := t.CurrentBet
	paid = p.Commit(stake)

	switch {
	case newTo <= prevCurrent:
		return paid, ActionCall
	case newTo-prevCurrent >= t.MinRaise:
		t.MinRaise = newTo - prevCurrent
		t.CurrentBet = newTo
		t.reopen(seat)
		if prevCurrent == 0 {
			return paid, ActionBet
		}
		return paid, ActionRaise
	default:
		// Short all-in: new high, no reopening.
		t.CurrentBet = newTo
		return paid, ActionRaise
	}
}

// afterAction advances the turn or the street once an action applied.
func (t *Table) afterAction(seat int, res ActionResult) (ActionResult, error) {
	if t.countInHand() <= 1 {
		res.RoundComplete = true
		return t.endRound(res)
	}
	if !t.roundComplete() {
		t.Active = t.nextActor(seat)
		if t.Active >= 0 {
			return res, nil
		}
		// Nobody left to act even though bets are unsettled: everyone
		// remaining is all-in, fall through to end the round.
	}
	res.RoundComplete = true
	return t.endRound(res)
}

// roundComplete reports whether the betting round is settled: every seat
// that can still act has matched the current bet and acted at least once
// since the last full raise.
func (t *Table) roundComplete() bool {
	for i, p := range t.Seats {
		if p == nil || !p.CanAct() {
			continue
		}
		if !t.acted[i] || p.Bet != t.CurrentBet {
			return false
		}
	}
	return true
}

// endRound resolves a finished betting round: uncontested win, all-in
// runout, draw phase, next street, or showdown.
func (t *Table) endRound(res ActionResult) (ActionResult, error) {
	t.Active = -1

	if t.countInHand() <= 1 {
		res.HandComplete = true
		t.Phase = PhaseShowdown
		return res, nil
	}

	if t.StreetIdx+1 >= len(t.Variant.Streets) {
		res.HandComplete = true
		t.Phase = PhaseShowdown
		return res, nil
	}

	if t.countCanAct() <= 1 {
		// No further action possible: deal the rest and show down.
		res.Runout = true
		res.HandComplete = true
		t.IsRunout = true
		t.RunoutPhase = t.StreetIdx + 1
		if err := t.dealRunout(); err != nil {
			t.abortHand()
			return res, err
		}
		t.Phase = PhaseShowdown
		return res, nil
	}

	if err := t.advanceStreet(); err != nil {
		t.abortHand()
		return res, err
	}
	res.StreetAdvanced = true
	res.EnteredDraw = t.IsDrawPhase
	return res, nil
}

// advanceStreet deals the next street and restarts betting, or enters the
// draw phase for draw games.
func (t *Table) advanceStreet() error {
	t.StreetIdx++
	for _, p := range t.Seats {
		if p != nil {
			p.Bet = 0
		}
	}
	t.CurrentBet = 0
	t.RaisesThisRound = 0
	t.LastAggressor = -1
	t.StreetStarter = -1
	for i := range t.acted {
		t.acted[i] = false
	}

	switch t.Variant.Structure {
	case variant.FixedLimit:
		t.MinRaise = t.fixedBetForStreet(t.StreetIdx)
	default:
		t.MinRaise = t.Stakes.BigBlind
	}

	switch t.Variant.Family {
	case variant.FamilyBoard:
		if err := t.dealBoard(t.Variant.BoardCards[t.StreetIdx]); err != nil {
			return err
		}
		t.Active = t.nextActor(t.Button)
	case variant.FamilyStud:
		down := t.Street() == variant.SeventhStreet
		if err := t.dealStudStreet(down); err != nil {
			return err
		}
		t.Active = t.studFirstToAct()
	case variant.FamilyDraw:
		t.IsDrawPhase = true
		t.CompletedDraw = make(map[int]bool)
		t.Active = -1
	}
	return nil
}

// dealRunout deals every remaining street without betting. Draw games have
// nothing to deal: all-in players stand pat.
func (t *Table) dealRunout() error {
	if t.Variant.Family == variant.FamilyDraw {
		t.StreetIdx = len(t.Variant.Streets) - 1
		return nil
	}
	for t.StreetIdx+1 < len(t.Variant.Streets) {
		t.StreetIdx++
		switch t.Variant.Family {
		case variant.FamilyBoard:
			if err := t.dealBoard(t.Variant.BoardCards[t.StreetIdx]); err != nil {
				return err
			}
		case variant.FamilyStud:
			if err := t.dealStudStreet(t.Street() == variant.SeventhStreet); err != nil {
				return err
			}
		}
	}
	return nil
}

// ForceFold folds a seat immediately regardless of turn order. Used for
// disconnects and protocol violations. Returns the follow-on result when
// the fold settles the round.
func (t *Table) ForceFold(seat int) (ActionResult, error) {
	res := ActionResult{Seat: seat, Applied: ActionFold}
	p := t.Seat(seat)
	if p == nil || t.Phase != PhasePlaying || p.Status == StatusFolded {
		return res, nil
	}
	p.Status = StatusFolded
	p.LastAction = ActionFold
	if seat < len(t.acted) {
		t.acted[seat] = true
	}
	if t.LastAggressor == seat {
		t.LastAggressor = -1
	}

	if t.IsDrawPhase {
		delete(t.CompletedDraw, seat)
		return t.maybeFinishDraws(res)
	}

	if seat == t.Active {
		return t.afterAction(seat, res)
	}
	if t.roundComplete() {
		res.RoundComplete = true
		return t.endRound(res)
	}
	// Hand may already be over if the fold left one player.
	if t.countInHand() <= 1 {
		res.RoundComplete = true
		return t.endRound(res)
	}
	return res, nil
}

// SubmitDraw exchanges a live seat's chosen cards during a draw phase. An
// empty index set stands pat. When every live seat has drawn, the next
// betting round opens.
func (t *Table) SubmitDraw(seat int, indexes []int) (ActionResult, []poker.Card, error) {
	res := ActionResult{Seat: seat}
	if t.Phase != PhasePlaying || !t.IsDrawPhase {
		return res, nil, fmt.Errorf("no draw in progress")
	}
	p := t.Seat(seat)
	if p == nil || !p.InHand() {
		return res, nil, fmt.Errorf("seat not in hand")
	}
	if t.CompletedDraw[seat] {
		return res, nil, fmt.Errorf("already drew this round")
	}

	fresh, err := t.ExchangeDrawCards(seat, indexes)
	if err != nil {
		return res, nil, err
	}
	t.CompletedDraw[seat] = true

	res, err = t.maybeFinishDraws(res)
	return res, fresh, err
}

// maybeFinishDraws closes the draw phase once every live seat has drawn.
func (t *Table) maybeFinishDraws(res ActionResult) (ActionResult, error) {
	if t.countInHand() <= 1 {
		t.IsDrawPhase = false
		t.CompletedDraw = nil
		res.RoundComplete = true
		return t.endRound(res)
	}
	for i, p := range t.Seats {
		if p.InHand() && !t.CompletedDraw[i] {
			return res, nil
		}
	}
	t.IsDrawPhase = false
	t.CompletedDraw = nil

	if t.countCanAct() <= 1 {
		res.RoundComplete = true
		return t.endRound(res)
	}
	t.Active = t.nextActor(t.Button)
	res.StreetAdvanced = true
	return res, nil
}

// FinishHand returns the table to WAITING after showdown settlement.
func (t *Table) FinishHand() {
	t.Phase = PhaseWaiting
	t.Active = -1
	t.IsRunout = false
	t.IsDrawPhase = false
	for _, p := range t.Seats {
		if p == nil {
			continue
		}
		p.Bet = 0
		p.TotalBet = 0
	}
}
