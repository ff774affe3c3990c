package server

import (
	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/ofc"
	"github.com/mixpot/mixpot/internal/room"
	"github.com/mixpot/mixpot/internal/variant"
	"github.com/mixpot/mixpot/poker"
)

// Per-viewer sanitization. Every broadcast goes through BuildRoomView so a
// client only ever sees its own hole cards, the filtered stud up-cards of
// opponents, and the password only when it is the host.

type SeatView struct {
	Index        int             `json:"index"`
	PlayerID     string          `json:"playerId"`
	Name         string          `json:"name"`
	Stack        int             `json:"stack"`
	Bet          int             `json:"bet"`
	TotalBet     int             `json:"totalBet"`
	Status       game.SeatStatus `json:"status"`
	Hand         []string        `json:"hand,omitempty"`
	UpCards      []string        `json:"upCards,omitempty"`
	LastAction   game.Action     `json:"lastAction,omitempty"`
	Disconnected bool            `json:"disconnected,omitempty"`
	SittingOut   bool            `json:"sittingOut,omitempty"`
}

type PotView struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligiblePlayers"`
}

type OFCPlayerView struct {
	Seat         int       `json:"seat"`
	Board        ofc.Board `json:"board"`
	CurrentCards []string  `json:"currentCards,omitempty"`
	HasPlaced    bool      `json:"hasPlaced"`
	Fantasyland  bool      `json:"fantasyland"`
	DiscardCount int       `json:"discardCount"`
}

type OFCView struct {
	Phase     ofc.Phase       `json:"phase"`
	Round     int             `json:"round"`
	TurnIndex int             `json:"currentTurnIndex"`
	Players   []OFCPlayerView `json:"players"`
}

type RoomView struct {
	ID          string         `json:"id"`
	Variant     variant.Code   `json:"gameVariant"`
	Phase       string         `json:"status"`
	Street      string         `json:"street,omitempty"`
	Board       []string       `json:"board"`
	Pot         int            `json:"pot"`
	Pots        []PotView      `json:"pots,omitempty"`
	CurrentBet  int            `json:"currentBet"`
	MinRaise    int            `json:"minRaise"`
	Button      int            `json:"dealerButtonIndex"`
	Active      int            `json:"activePlayerIndex"`
	HandNumber  int            `json:"handNumber"`
	IsRunout    bool           `json:"isRunout,omitempty"`
	IsDrawPhase bool           `json:"isDrawPhase,omitempty"`
	Seats       []*SeatView    `json:"seats"`
	HostID      string         `json:"hostId,omitempty"`
	Config      room.Config    `json:"config"`
	OFC         *OFCView       `json:"ofc,omitempty"`
	Rotation    []variant.Code `json:"rotation,omitempty"`
}

// BuildRoomView renders a room for one viewer.
func BuildRoomView(r *room.Room, viewerID string) *RoomView {
	view := &RoomView{
		ID:          r.ID,
		Variant:     r.Config.Variant,
		Phase:       phaseLabel(r),
		Board:       poker.CardStrings(r.Board),
		Pot:         r.PotTotal(),
		CurrentBet:  r.CurrentBet,
		MinRaise:    r.MinRaise,
		Button:      r.Button,
		Active:      r.Active,
		HandNumber:  r.HandNumber,
		IsRunout:    r.IsRunout,
		IsDrawPhase: r.IsDrawPhase,
		HostID:      r.HostID,
		Config:      r.Config,
		Rotation:    r.Rotation.Games,
		Seats:       make([]*SeatView, len(r.Seats)),
	}
	if r.Phase == game.PhasePlaying && !r.IsOFC() {
		view.Street = r.Street().String()
	}
	for _, pot := range r.Pots() {
		view.Pots = append(view.Pots, PotView{Amount: pot.Amount, Eligible: pot.Eligible})
	}

	// The password never leaves the server except toward the host.
	if viewerID != r.HostID {
		view.Config.Password = ""
	}

	for i, p := range r.Seats {
		if p == nil {
			continue
		}
		sv := &SeatView{
			Index:        i,
			PlayerID:     p.ID,
			Name:         p.Name,
			Stack:        p.Stack,
			Bet:          p.Bet,
			TotalBet:     p.TotalBet,
			Status:       p.Status,
			LastAction:   p.LastAction,
			Disconnected: p.Disconnected,
			SittingOut:   p.Status == game.StatusSitOut || p.PendingSitOut,
		}
		if p.ID == viewerID {
			sv.Hand = poker.CardStrings(p.Hand)
			sv.UpCards = poker.CardStrings(p.UpCards)
		} else {
			sv.UpCards = filterUpCards(p.UpCards)
		}
		view.Seats[i] = sv
	}

	if r.OFCGame != nil {
		view.OFC = buildOFCView(r, viewerID)
	}
	return view
}

// filterUpCards hides the second up-card position from other seats,
// matching the platform's documented stud visibility policy.
func filterUpCards(cards []poker.Card) []string {
	if len(cards) == 0 {
		return nil
	}
	out := make([]string, 0, len(cards))
	for i, c := range cards {
		if i == 1 {
			out = append(out, "XX")
			continue
		}
		out = append(out, c.String())
	}
	return out
}

func buildOFCView(r *room.Room, viewerID string) *OFCView {
	g := r.OFCGame
	view := &OFCView{
		Phase:     g.Phase,
		Round:     g.Round,
		TurnIndex: g.TurnIndex,
		Players:   make([]OFCPlayerView, len(g.Players)),
	}
	for i, p := range g.Players {
		pv := OFCPlayerView{
			Seat:         r.OFCSeats[i],
			Board:        p.Board,
			HasPlaced:    p.HasPlaced,
			Fantasyland:  p.IsFantasyland,
			DiscardCount: len(p.Discards),
		}
		if p.ID == viewerID {
			pv.CurrentCards = poker.CardStrings(p.CurrentCards)
		}
		view.Players[i] = pv
	}
	return view
}

func phaseLabel(r *room.Room) string {
	switch r.Phase {
	case game.PhasePlaying:
		if r.IsOFC() && r.OFCGame != nil {
			return string(r.OFCGame.Phase)
		}
		return r.Street().String()
	case game.PhaseShowdown:
		return "SHOWDOWN"
	default:
		return "WAITING"
	}
}
