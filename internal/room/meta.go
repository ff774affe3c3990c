package room

import (
	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/variant"
	"github.com/mixpot/mixpot/poker"
)

// MetaState tracks the optional side-games layered over the main game.
type MetaState struct {
	// Standing holds player ids still "standing" in the Stand-Up game.
	// The game arms on enable and rearms after each loser pays.
	Standing map[string]bool
}

// SevenDeuceAward reports a 7-2 bonus: the winner collects one big blind
// from every other seat dealt into the hand.
type SevenDeuceAward struct {
	WinnerSeat int    `json:"winnerSeat"`
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
	Amount     int    `json:"amount"`
}

// StandUpResult reports the Stand-Up side game resolving: the last player
// left standing pays one big blind to each other participant.
type StandUpResult struct {
	LoserID   string `json:"loserId"`
	LoserName string `json:"loserName"`
	Paid      int    `json:"paid"`
}

// CheckSevenDeuce applies the 7-2 bonus after a contested hold'em-family
// showdown: a winner who held exactly seven-deuce collects a big blind
// from every other seat that was dealt in.
func (r *Room) CheckSevenDeuce(result game.ShowdownResult) *SevenDeuceAward {
	if !r.Config.SevenDeuceBonus || result.IsUncontested {
		return nil
	}
	if r.Variant.Family != variant.FamilyBoard || r.Variant.HoleCards != 2 {
		return nil
	}

	for _, w := range result.Winners {
		p := r.Seat(w.Seat)
		if p == nil || !isSevenDeuce(p.Hand) {
			continue
		}
		amount := 0
		for idx, other := range r.Seats {
			if other == nil || idx == w.Seat || other.Hand == nil {
				continue
			}
			pay := min(r.Config.BigBlind, other.Stack)
			other.Stack -= pay
			amount += pay
		}
		p.Stack += amount
		r.logger.Info("seven-deuce bonus", "winner", p.Name, "amount", amount)
		return &SevenDeuceAward{
			WinnerSeat: w.Seat, WinnerID: p.ID, WinnerName: p.Name, Amount: amount,
		}
	}
	return nil
}

func isSevenDeuce(hand []poker.Card) bool {
	if len(hand) != 2 {
		return false
	}
	a, b := hand[0].Rank, hand[1].Rank
	return (a == poker.Seven && b == poker.Two) || (a == poker.Two && b == poker.Seven)
}

// ArmStandUp starts (or restarts) the Stand-Up game with every currently
// seated player standing.
func (r *Room) ArmStandUp() {
	r.Meta.Standing = make(map[string]bool)
	for _, p := range r.Seats {
		if p != nil {
			r.Meta.Standing[p.ID] = true
		}
	}
}

// CheckStandUp sits hand winners down and, when exactly one player remains
// standing, makes them pay one big blind to each other participant and
// rearms the game.
func (r *Room) CheckStandUp(result game.ShowdownResult) *StandUpResult {
	if !r.Config.StandUpGame || len(r.Meta.Standing) == 0 {
		return nil
	}

	for _, w := range result.Winners {
		delete(r.Meta.Standing, w.PlayerID)
	}
	if len(r.Meta.Standing) != 1 {
		return nil
	}

	var loserID string
	for id := range r.Meta.Standing {
		loserID = id
	}
	idx := r.SeatByID(loserID)
	if idx < 0 {
		r.Meta.Standing = nil
		return nil
	}
	loser := r.Seats[idx]

	paid := 0
	for _, p := range r.Seats {
		if p == nil || p.ID == loserID {
			continue
		}
		pay := min(r.Config.BigBlind, loser.Stack)
		loser.Stack -= pay
		p.Stack += pay
		paid += pay
	}
	r.logger.Info("stand-up game resolved", "loser", loser.Name, "paid", paid)

	res := &StandUpResult{LoserID: loserID, LoserName: loser.Name, Paid: paid}
	r.ArmStandUp()
	return res
}
