package server

import (
	"github.com/mixpot/mixpot/internal/ofc"
	"github.com/mixpot/mixpot/poker"
)

// OFC orchestration: the session substitutes these flows for the betting
// engine when the room deals OFC.

// startOFCHand deals a new OFC hand and opens the initial placing round.
func (s *Session) startOFCHand() {
	if err := s.room.StartOFCHand(); err != nil {
		s.logger.Error("failed to start OFC hand", "error", err)
		s.broadcastState()
		return
	}

	s.broadcastView(EvtOFCDeal, func(viewerID string) any {
		return BuildRoomView(s.room, viewerID)
	})

	// Round 1: everyone places independently under one shared countdown.
	for _, p := range s.room.OFCGame.Players {
		s.sendTo(p.ID, EvtYourTurn, YourTurnData{
			Timeout:     int(s.turnTimeout().Seconds()),
			ActionToken: s.issueToken(p.ID),
		})
	}
	s.startOFCRoundTimer()
}

func (s *Session) startOFCRoundTimer() {
	s.cancelTurnTimer()
	s.turnPlayerID = ofcPhaseTimer
	s.turnRemaining = int(s.turnTimeout().Seconds())
	epoch := s.turnEpoch
	s.turnTimer = s.after(timerTick, func() { s.tickOFC(epoch) })
}

const ofcPhaseTimer = "\x00ofc"

func (s *Session) tickOFC(epoch uint64) {
	g := s.room.OFCGame
	if epoch != s.turnEpoch || g == nil || g.Phase == ofc.PhaseScoring {
		return
	}
	s.turnRemaining--
	if s.turnRemaining > 0 {
		s.broadcast(EvtTimerUpdate, TimerUpdateData{Seconds: s.turnRemaining})
		s.turnTimer = s.after(timerTick, func() { s.tickOFC(epoch) })
		return
	}
	s.cancelTurnTimer()
	s.autoPlaceLaggards()
}

// autoPlaceLaggards places greedily for everyone who ran out the clock.
func (s *Session) autoPlaceLaggards() {
	g := s.room.OFCGame
	for g != nil && g.Phase != ofc.PhaseScoring {
		idx := s.pendingOFCPlayer()
		if idx < 0 {
			break
		}
		p := g.Players[idx]
		s.clearToken(p.ID)
		if err := s.autoPlace(idx); err != nil {
			s.logger.Error("auto-place failed", "player", p.Name, "error", err)
			break
		}
		g = s.room.OFCGame
	}
	s.afterOFCAdvance()
}

// pendingOFCPlayer finds a player still owing a placement this round.
func (s *Session) pendingOFCPlayer() int {
	g := s.room.OFCGame
	if g == nil {
		return -1
	}
	if g.Phase == ofc.PhasePineapplePlacing {
		idx := g.CurrentTurn()
		if idx >= 0 && !g.Players[idx].HasPlaced {
			return idx
		}
		return -1
	}
	for i, p := range g.Players {
		if !p.HasPlaced {
			return i
		}
	}
	return -1
}

// autoPlace fills rows greedily: bottom, middle, top; pineapple rounds
// discard the last dealt card.
func (s *Session) autoPlace(idx int) error {
	g := s.room.OFCGame
	p := g.Players[idx]
	cards := append([]poker.Card(nil), p.CurrentCards...)

	var discard *poker.Card
	if g.Phase == ofc.PhasePineapplePlacing || p.IsFantasyland {
		discard = &cards[len(cards)-1]
		cards = cards[:len(cards)-1]
	}

	bottom, middle := len(p.Board.Bottom), len(p.Board.Middle)
	placements := make([]ofc.Placement, 0, len(cards))
	for _, c := range cards {
		switch {
		case bottom < 5:
			placements = append(placements, ofc.Placement{Card: c, Row: ofc.RowBottom})
			bottom++
		case middle < 5:
			placements = append(placements, ofc.Placement{Card: c, Row: ofc.RowMiddle})
			middle++
		default:
			placements = append(placements, ofc.Placement{Card: c, Row: ofc.RowTop})
		}
	}
	return g.PlaceCards(idx, placements, discard)
}

// handleOFCPlace processes an ofc-place-cards submission.
func (s *Session) handleOFCPlace(c *Client, data OFCPlaceCardsData) {
	if !s.allowAction(c.id) {
		s.sendInvalid(c.id, "Too many actions")
		return
	}
	g := s.room.OFCGame
	if g == nil {
		s.sendTo(c.id, EvtOFCError, ErrorData{Message: "no OFC hand in progress"})
		return
	}
	idx := s.room.OFCSeatIndex(c.id)
	if idx < 0 {
		s.sendTo(c.id, EvtOFCError, ErrorData{Message: "not dealt into this hand"})
		return
	}

	var discard *poker.Card
	if data.DiscardCard != "" {
		card, err := poker.ParseCard(data.DiscardCard)
		if err != nil {
			s.sendTo(c.id, EvtOFCError, ErrorData{Message: err.Error()})
			return
		}
		discard = &card
	}

	prevRound := g.Round
	if err := g.PlaceCards(idx, data.Placements, discard); err != nil {
		s.sendTo(c.id, EvtOFCError, ErrorData{Message: err.Error()})
		return
	}
	s.clearToken(c.id)

	if g.Round != prevRound && g.Phase != ofc.PhaseScoring {
		s.broadcast(EvtOFCRoundDone, TimerUpdateData{Seconds: g.Round})
	}
	s.afterOFCAdvance()
}

// afterOFCAdvance pushes state and either scores the hand or arms the next
// placement turn.
func (s *Session) afterOFCAdvance() {
	g := s.room.OFCGame
	if g == nil {
		return
	}
	s.broadcastState()

	if g.Phase == ofc.PhaseScoring {
		s.cancelTurnTimer()
		s.stepTimer = s.after(settleDelay, func() {
			s.stepTimer = nil
			s.settleOFCHand()
		})
		return
	}

	if g.Phase == ofc.PhasePineapplePlacing {
		idx := g.CurrentTurn()
		if idx >= 0 && !g.Players[idx].HasPlaced && len(g.Players[idx].CurrentCards) > 0 {
			p := g.Players[idx]
			if _, ok := s.tokens[p.ID]; !ok {
				s.sendTo(p.ID, EvtYourTurn, YourTurnData{
					Timeout:     int(s.turnTimeout().Seconds()),
					ActionToken: s.issueToken(p.ID),
				})
				s.startOFCRoundTimer()
			}
		}
	}
}

// settleOFCHand scores, pays, and re-arms the scheduler.
func (s *Session) settleOFCHand() {
	result, err := s.room.SettleOFC()
	if err != nil {
		s.logger.Error("OFC settle failed", "error", err)
		return
	}
	s.server.handsCompleted.Add(1)
	s.broadcast(EvtOFCScoring, result)
	s.finishHandBoundary()
}
