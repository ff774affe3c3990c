package server

import (
	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/variant"
	"github.com/mixpot/mixpot/poker"
)

// Hand-flow orchestration. Everything here runs on the session queue.

// maybeScheduleStart arms the auto-start scheduler when the room is
// between hands with enough startable seats. The grace window lets late
// joiners land in the same hand. An armed timer is left running; when it
// fires, startHand re-checks the phase and the startable count, so a state
// change in between turns the firing into a no-op.
func (s *Session) maybeScheduleStart() {
	if s.room.Phase != game.PhaseWaiting {
		return
	}
	if s.autoStartTimer != nil {
		return
	}
	if s.room.StartableCount() < 2 {
		return
	}
	s.autoStartTimer = s.after(autoStartGrace, func() {
		s.autoStartTimer = nil
		s.startHand()
	})
}

// startHand runs the hand-boundary pipeline and deals the next hand.
func (s *Session) startHand() {
	if s.room.Phase != game.PhaseWaiting {
		return
	}

	if removed := s.room.CleanupPendingLeavers(); len(removed) > 0 {
		s.logger.Debug("removed pending leavers", "count", len(removed))
	}
	s.room.ApplyPendingSitOuts()
	if s.room.ApplyPendingConfig() {
		s.broadcast(EvtConfigApplied, nil)
	}
	if next, rotated := s.room.MaybeRotate(); rotated {
		s.broadcast(EvtNextGame, NextGameData{NextGame: next, GamesList: s.room.Rotation.Games})
	}

	if s.room.StartableCount() < 2 {
		s.broadcastState()
		return
	}

	if s.room.IsOFC() {
		s.startOFCHand()
		return
	}

	if err := s.room.StartHand(); err != nil {
		s.logger.Error("failed to start hand", "error", err)
		s.broadcastState()
		return
	}
	s.room.Rotation.OnHandStart(s.room.Button)

	s.broadcastView(EvtGameStarted, func(viewerID string) any {
		data := GameStartedData{Room: BuildRoomView(s.room, viewerID)}
		if idx := s.room.SeatByID(viewerID); idx >= 0 && s.room.Seats[idx] != nil {
			data.YourHand = poker.CardStrings(s.room.Seats[idx].Hand)
		}
		return data
	})

	// Forced bets can have run the hand out before anyone acts.
	if s.room.Phase == game.PhaseShowdown {
		s.afterEngineResult(game.ActionResult{HandComplete: true, Runout: s.room.IsRunout})
		return
	}
	s.beginTurn()
}

// beginTurn issues the action token for the seat due to act and starts its
// countdown.
func (s *Session) beginTurn() {
	if s.room.IsDrawPhase {
		s.beginDrawPhase()
		return
	}
	seat := s.room.Active
	if seat < 0 {
		return
	}
	p := s.room.Seat(seat)
	if p == nil {
		return
	}

	opts := s.room.ActionOptions(seat)
	timeout := int(s.turnTimeout().Seconds())
	token := s.issueToken(p.ID)

	s.sendTo(p.ID, EvtYourTurn, YourTurnData{
		ValidActions:    opts.ValidActions,
		CurrentBet:      s.room.CurrentBet,
		MinRaise:        s.room.MinRaise,
		MinBet:          opts.MinBet,
		MaxBet:          opts.MaxBet,
		CallAmount:      opts.CallAmount,
		BetStructure:    opts.BetStructure.String(),
		IsCapped:        opts.IsCapped,
		RaisesRemaining: opts.RaisesRemaining,
		FixedBetSize:    opts.FixedBetSize,
		Timeout:         timeout,
		ActionToken:     token,
	})
	s.startTurnTimer(p.ID, timeout)
}

// startTurnTimer begins the per-second countdown for a player's turn.
func (s *Session) startTurnTimer(playerID string, seconds int) {
	s.cancelTurnTimer()
	s.turnPlayerID = playerID
	s.turnRemaining = seconds
	epoch := s.turnEpoch
	s.turnTimer = s.after(timerTick, func() { s.tickTurn(epoch) })
}

// tickTurn fires once a second while a turn timer runs. A stale epoch
// means the turn already resolved; the firing is irrelevant.
func (s *Session) tickTurn(epoch uint64) {
	if epoch != s.turnEpoch || s.turnPlayerID == "" {
		return
	}
	s.turnRemaining--
	if s.turnRemaining <= 0 {
		playerID := s.turnPlayerID
		s.cancelTurnTimer()
		s.handleTurnExpired(playerID)
		return
	}
	s.sendTo(s.turnPlayerID, EvtTimerUpdate, TimerUpdateData{Seconds: s.turnRemaining})
	s.turnTimer = s.after(timerTick, func() { s.tickTurn(epoch) })
}

// handleTurnExpired auto-acts for a seat whose clock ran out: check when
// legal, otherwise fold. Three consecutive timeouts sit the player out.
func (s *Session) handleTurnExpired(playerID string) {
	s.clearToken(playerID)
	seat := s.room.SeatByID(playerID)
	if seat < 0 || seat != s.room.Active {
		return
	}
	p := s.room.Seats[seat]
	p.ConsecutiveTimeouts++
	if p.ConsecutiveTimeouts >= timeoutsBeforeSitOut {
		p.PendingSitOut = true
	}

	opts := s.room.ActionOptions(seat)
	auto := game.ActionFold
	if hasCheck(opts.ValidActions) {
		auto = game.ActionCheck
	}
	s.logger.Debug("turn expired", "player", p.Name, "auto", auto)

	res, err := s.room.ProcessAction(seat, auto, 0)
	if err != nil {
		// Fold must always apply; fall back to a forced fold.
		res, _ = s.room.ForceFold(seat)
	}
	s.broadcastState()
	s.afterEngineResult(res)
}

func hasCheck(actions []game.Action) bool {
	for _, a := range actions {
		if a == game.ActionCheck {
			return true
		}
	}
	return false
}

// handlePlayerAction processes a betting action submission.
func (s *Session) handlePlayerAction(c *Client, data PlayerActionData) {
	if !s.allowAction(c.id) {
		s.sendInvalid(c.id, "Too many actions")
		return
	}
	if !s.consumeToken(c.id, data.ActionToken) {
		s.sendInvalid(c.id, "Invalid or expired action token")
		return
	}
	seat := s.room.SeatByID(c.id)
	if seat < 0 {
		s.sendInvalid(c.id, "Not seated")
		return
	}

	res, err := s.room.ProcessAction(seat, game.Action(data.Type), data.Amount)
	if err != nil {
		// A rejection leaves state untouched: re-issue the token and
		// restart the seat's countdown.
		s.sendInvalid(c.id, err.Error())
		s.beginTurn()
		return
	}

	p := s.room.Seats[seat]
	p.ConsecutiveTimeouts = 0
	s.cancelTurnTimer()
	s.broadcastState()
	s.afterEngineResult(res)
}

// afterEngineResult routes the engine's outcome: next turn, draw phase,
// runout reveal, or hand end.
func (s *Session) afterEngineResult(res game.ActionResult) {
	switch {
	case res.Runout:
		s.beginRunout()
	case res.HandComplete:
		s.scheduleHandEnd()
	case res.EnteredDraw:
		s.beginDrawPhase()
	default:
		s.beginTurn()
	}
}

// --- draw phase ---

// beginDrawPhase opens a draw round: every live seat gets a token and the
// round shares one countdown; seats that have not drawn by expiry stand
// pat.
func (s *Session) beginDrawPhase() {
	for _, idx := range s.room.InHandSeats() {
		p := s.room.Seats[idx]
		token := s.issueToken(p.ID)
		s.sendTo(p.ID, EvtYourTurn, YourTurnData{
			ValidActions: nil,
			Timeout:      int(s.turnTimeout().Seconds()),
			ActionToken:  token,
		})
	}
	s.broadcastState()
	s.startDrawTimer()
}

func (s *Session) startDrawTimer() {
	s.cancelTurnTimer()
	s.turnPlayerID = drawPhaseTimer
	s.turnRemaining = int(s.turnTimeout().Seconds())
	epoch := s.turnEpoch
	s.turnTimer = s.after(timerTick, func() { s.tickDraw(epoch) })
}

const drawPhaseTimer = "\x00draw"

func (s *Session) tickDraw(epoch uint64) {
	if epoch != s.turnEpoch || !s.room.IsDrawPhase {
		return
	}
	s.turnRemaining--
	if s.turnRemaining > 0 {
		s.broadcast(EvtTimerUpdate, TimerUpdateData{Seconds: s.turnRemaining})
		s.turnTimer = s.after(timerTick, func() { s.tickDraw(epoch) })
		return
	}
	s.cancelTurnTimer()
	// Stand pat for everyone who never drew.
	var last game.ActionResult
	for _, idx := range s.room.InHandSeats() {
		if !s.room.IsDrawPhase {
			break
		}
		if s.room.CompletedDraw[idx] {
			continue
		}
		p := s.room.Seats[idx]
		s.clearToken(p.ID)
		res, _, err := s.room.SubmitDraw(idx, nil)
		if err == nil {
			last = res
		}
	}
	s.broadcastState()
	s.afterEngineResult(last)
}

// handleDrawExchange processes a draw-exchange submission.
func (s *Session) handleDrawExchange(c *Client, data DrawExchangeData) {
	if !s.allowAction(c.id) {
		s.sendInvalid(c.id, "Too many actions")
		return
	}
	if !s.room.IsDrawPhase {
		s.sendInvalid(c.id, "No draw in progress")
		return
	}
	seat := s.room.SeatByID(c.id)
	if seat < 0 {
		s.sendInvalid(c.id, "Not seated")
		return
	}

	res, fresh, err := s.room.SubmitDraw(seat, data.DiscardIndexes)
	if err != nil {
		s.sendInvalid(c.id, err.Error())
		return
	}
	s.clearToken(c.id)

	p := s.room.Seats[seat]
	s.sendTo(c.id, EvtDrawComplete, DrawCompleteData{
		NewCards: poker.CardStrings(fresh),
		Hand:     poker.CardStrings(p.Hand),
	})
	s.broadcast(EvtPlayerDrew, PlayerDrewData{Seat: seat, Count: len(data.DiscardIndexes)})

	if res.StreetAdvanced || res.HandComplete || res.Runout {
		s.cancelTurnTimer()
		s.broadcastState()
		s.afterEngineResult(res)
	}
}

// --- runout ---

// beginRunout announces the all-in runout and reveals the remaining board
// stepwise on the room clock. Hands are revealed immediately; the board
// slices arrive one street at a time.
func (s *Session) beginRunout() {
	s.cancelTurnTimer()

	var revealed []game.ShownHand
	for _, idx := range s.room.InHandSeats() {
		p := s.room.Seats[idx]
		revealed = append(revealed, game.ShownHand{
			Seat: idx, PlayerID: p.ID, PlayerName: p.Name,
			Cards: poker.CardStrings(p.Hand),
		})
	}
	s.broadcast(EvtRunoutStarted, RunoutStartedData{
		RunoutPhase:   s.runoutPhaseLabel(s.room.RunoutPhase),
		FullBoard:     poker.CardStrings(s.room.Board),
		RevealedHands: revealed,
	})
	s.stepRunout(s.room.RunoutPhase)
}

// stepRunout reveals the board as of one street, then schedules the next
// step, ending in the showdown settlement.
func (s *Session) stepRunout(streetIdx int) {
	if streetIdx > s.room.StreetIdx || s.room.Variant.Family != variant.FamilyBoard {
		s.scheduleHandEnd()
		return
	}
	visible := 0
	for i := 0; i <= streetIdx && i < len(s.room.Variant.BoardCards); i++ {
		visible += s.room.Variant.BoardCards[i]
	}
	if visible > len(s.room.Board) {
		visible = len(s.room.Board)
	}
	s.broadcast(EvtRunoutBoard, RunoutBoardData{
		Board: poker.CardStrings(s.room.Board[:visible]),
		Phase: s.runoutPhaseLabel(streetIdx),
	})
	s.stepTimer = s.after(runoutStepDelay, func() {
		s.stepTimer = nil
		s.stepRunout(streetIdx + 1)
	})
}

func (s *Session) runoutPhaseLabel(streetIdx int) string {
	if streetIdx < len(s.room.Variant.Streets) {
		return s.room.Variant.Streets[streetIdx].String()
	}
	return "SHOWDOWN"
}

// --- hand end ---

// scheduleHandEnd settles after the configured delay so clients can render
// the final action first.
func (s *Session) scheduleHandEnd() {
	s.cancelTurnTimer()
	s.stepTimer = s.after(settleDelay, func() {
		s.stepTimer = nil
		s.settleHand()
	})
}

// settleHand awards the pots, reports winners, runs the meta-games, and
// schedules the next hand.
func (s *Session) settleHand() {
	if s.room.Phase != game.PhaseShowdown {
		return
	}
	result := s.room.Settle()
	s.server.handsCompleted.Add(1)
	s.broadcast(EvtShowdownResult, result)

	if award := s.room.CheckSevenDeuce(result); award != nil {
		s.broadcast(EvtSevenDeuce, award)
	}
	if standup := s.room.CheckStandUp(result); standup != nil {
		s.broadcast(EvtError, ErrorData{Message: standup.LoserName + " pays the stand-up penalty"})
	}

	s.finishHandBoundary()
}

// finishHandBoundary runs the common post-hand cleanup and re-arms the
// scheduler.
func (s *Session) finishHandBoundary() {
	if removed := s.room.CleanupPendingLeavers(); len(removed) > 0 {
		for _, id := range removed {
			if c, ok := s.clients[id]; ok && c.RoomID() == s.room.ID {
				c.setRoomID("")
				delete(s.clients, id)
			}
		}
	}
	s.broadcastState()
	s.server.removeRoomIfEmpty(s.room.ID)

	s.autoStartTimer = s.after(nextHandDelay, func() {
		s.autoStartTimer = nil
		s.startHand()
	})
}
