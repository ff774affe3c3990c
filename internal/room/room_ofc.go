package room

import (
	"fmt"

	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/ofc"
)

// OFC glue: the room substitutes the OFC engine for the betting engine
// when the variant is OFC. OFCSeats maps OFC player index -> seat index.

// StartOFCHand deals a new OFC hand to the startable seats.
func (r *Room) StartOFCHand() error {
	if !r.IsOFC() {
		return fmt.Errorf("room is not dealing OFC")
	}
	if r.Phase != game.PhaseWaiting {
		return fmt.Errorf("hand already in progress")
	}

	var players []*ofc.Player
	var seats []int
	for idx, p := range r.Seats {
		if !game.Startable(p) {
			continue
		}
		if p.PendingJoin {
			p.Status = game.StatusActive
			p.PendingJoin = false
			p.WaitingForBB = false
		}
		p.ResetForHand()
		players = append(players, &ofc.Player{
			ID:            p.ID,
			Name:          p.Name,
			IsFantasyland: r.Fantasyland[p.ID],
		})
		seats = append(seats, idx)
	}
	if len(players) < 2 {
		return game.ErrNotEnoughPlayers
	}

	g, err := ofc.NewGame(players, r.Config.BigBlind, r.rng, r.logger)
	if err != nil {
		return err
	}
	r.OFCGame = g
	r.OFCSeats = seats
	r.Phase = game.PhasePlaying
	r.HandNumber++
	r.logger.Debug("OFC hand started", "hand", r.HandNumber, "players", len(players))
	return nil
}

// OFCSeatIndex maps a player id to their OFC player index, -1 when not
// dealt in.
func (r *Room) OFCSeatIndex(playerID string) int {
	if r.OFCGame == nil {
		return -1
	}
	for i, p := range r.OFCGame.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// SettleOFC scores the finished OFC hand, applies chip movements to the
// seats, records fantasyland qualification for the next hand, and returns
// the result.
func (r *Room) SettleOFC() (*ofc.Result, error) {
	if r.OFCGame == nil || r.OFCGame.Phase != ofc.PhaseScoring {
		return nil, fmt.Errorf("no OFC hand ready to score")
	}

	result := r.OFCGame.Score()
	if r.Fantasyland == nil {
		r.Fantasyland = make(map[string]bool)
	}
	for i, score := range result.Scores {
		seatIdx := r.OFCSeats[i]
		p := r.Seat(seatIdx)
		if p == nil {
			continue
		}
		p.Stack += score.ChipChange
		if p.Stack < 0 {
			// Chips can't go negative: cap the loss at the stack. The
			// shortfall is forgiven rather than redistributed.
			p.Stack = 0
		}
		r.Fantasyland[p.ID] = score.Fantasyland
	}

	r.OFCGame = nil
	r.OFCSeats = nil
	r.Phase = game.PhaseWaiting
	return &result, nil
}
