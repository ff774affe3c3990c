package room

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/ofc"
	"github.com/mixpot/mixpot/internal/variant"
)

// Room is a long-lived table identified by a 6-character id. The embedded
// Table carries the authoritative game state; the room adds lifecycle,
// configuration, rotation, and meta-game state. All mutation must go
// through the room's serialized queue (owned by the session controller).
type Room struct {
	ID string
	*game.Table

	Config Config

	// PendingConfig holds host edits made mid-hand; they apply at the next
	// hand start.
	PendingConfig *Config

	// HostID is the seat id of the private-room host; empty for public
	// rooms and after the room empties.
	HostID string

	// Preset rooms are seeded at startup, public, and never deleted.
	Preset bool

	Rotation RotationState
	Meta     MetaState

	// OFCGame is the in-flight OFC hand; nil between hands and for betting
	// variants. OFCSeats maps OFC player index to seat index for the
	// current hand; Fantasyland carries qualification across hands.
	OFCGame     *ofc.Game
	OFCSeats    []int
	Fantasyland map[string]bool

	rng    *rand.Rand
	logger *log.Logger
}

// IsOFC reports whether the room currently deals OFC.
func (r *Room) IsOFC() bool {
	return r.Config.Variant == variant.OFC
}

// OccupiedSeats counts seated players.
func (r *Room) OccupiedSeats() int {
	n := 0
	for _, p := range r.Seats {
		if p != nil {
			n++
		}
	}
	return n
}

// SitDown seats a player. Mid-hand joiners sit out until the next hand;
// button games additionally wait for the big blind to reach them.
func (r *Room) SitDown(seatIdx int, playerID, name string, buyIn int) error {
	if seatIdx < 0 || seatIdx >= len(r.Seats) {
		return fmt.Errorf("seat %d out of range", seatIdx)
	}
	if r.Seats[seatIdx] != nil {
		return fmt.Errorf("seat %d is taken", seatIdx)
	}
	if r.SeatByID(playerID) >= 0 {
		return fmt.Errorf("already seated at this table")
	}
	if buyIn < r.Config.BuyInMin || buyIn > r.Config.BuyInMax {
		return fmt.Errorf("buy-in must be between %d and %d", r.Config.BuyInMin, r.Config.BuyInMax)
	}

	p := &game.Player{
		ID:     playerID,
		Name:   name,
		Stack:  buyIn,
		Status: game.StatusActive,
	}
	if r.Phase != game.PhaseWaiting {
		p.Status = game.StatusSitOut
		p.PendingJoin = true
		// OFC has a button but no blinds, so entrants owe nothing.
		p.WaitingForBB = r.Variant.HasButton && !r.IsOFC()
	}
	r.Seats[seatIdx] = p
	r.logger.Info("player seated", "player", name, "seat", seatIdx, "buyIn", buyIn)
	return nil
}

// RandomEmptySeat picks an empty seat for quick-join, -1 when full.
func (r *Room) RandomEmptySeat() int {
	var empty []int
	for i, p := range r.Seats {
		if p == nil {
			empty = append(empty, i)
		}
	}
	if len(empty) == 0 {
		return -1
	}
	return empty[r.rng.IntN(len(empty))]
}

// StandUp removes a player from their seat immediately. Callers decide
// in-hand policy (fold first, or defer via PendingLeave).
func (r *Room) StandUp(playerID string) error {
	idx := r.SeatByID(playerID)
	if idx < 0 {
		return fmt.Errorf("not seated")
	}
	r.Seats[idx] = nil
	r.transferHostFrom(playerID)
	return nil
}

// transferHostFrom passes host duties to the next seated player when the
// host leaves; an empty room clears the host.
func (r *Room) transferHostFrom(playerID string) {
	if r.HostID != playerID {
		return
	}
	r.HostID = ""
	for _, p := range r.Seats {
		if p != nil {
			r.HostID = p.ID
			return
		}
	}
}

// Rebuy adds chips to a seated player between hands, keeping the stack
// inside the configured buy-in band.
func (r *Room) Rebuy(playerID string, amount int) error {
	if r.Phase != game.PhaseWaiting {
		return fmt.Errorf("cannot rebuy during a hand")
	}
	idx := r.SeatByID(playerID)
	if idx < 0 {
		return fmt.Errorf("not seated")
	}
	if amount <= 0 {
		return fmt.Errorf("rebuy amount must be positive")
	}
	p := r.Seats[idx]
	if p.Stack+amount > r.Config.BuyInMax {
		return fmt.Errorf("stack cannot exceed %d", r.Config.BuyInMax)
	}
	p.Stack += amount
	if p.Stack >= r.Config.BuyInMin && p.Status == game.StatusSitOut && !p.PendingSitOut {
		p.Status = game.StatusActive
	}
	return nil
}

// UpdateConfig applies a host configuration change, deferring it when a
// hand is running.
func (r *Room) UpdateConfig(cfg Config) (deferred bool, err error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return false, err
	}
	if r.Phase != game.PhaseWaiting {
		r.PendingConfig = &cfg
		return true, nil
	}
	r.applyConfig(cfg)
	return false, nil
}

// ApplyPendingConfig installs a deferred config at a hand boundary.
func (r *Room) ApplyPendingConfig() bool {
	if r.PendingConfig == nil {
		return false
	}
	r.applyConfig(*r.PendingConfig)
	r.PendingConfig = nil
	return true
}

func (r *Room) applyConfig(cfg Config) {
	r.Config = cfg
	r.Stakes = cfg.Stakes()
	r.SetVariant(cfg.Variant)
	r.Rotation.SetGames(cfg.AllowedGames)
	r.logger.Info("config applied", "variant", cfg.Variant, "blinds",
		fmt.Sprintf("%d/%d", cfg.SmallBlind, cfg.BigBlind))
}

// SetVariant switches the dealt variant between hands.
func (r *Room) SetVariant(code variant.Code) {
	def, err := variant.Get(code)
	if err != nil {
		return
	}
	r.Config.Variant = code
	r.Variant = def
}

// CleanupPendingLeavers removes seats whose players deferred their exit to
// the hand boundary, and returns their ids.
func (r *Room) CleanupPendingLeavers() []string {
	var removed []string
	for i, p := range r.Seats {
		if p != nil && p.PendingLeave {
			removed = append(removed, p.ID)
			r.Seats[i] = nil
			r.transferHostFrom(p.ID)
		}
	}
	return removed
}

// ApplyPendingSitOuts flips seats that timed out or asked to sit out.
func (r *Room) ApplyPendingSitOuts() {
	for _, p := range r.Seats {
		if p != nil && p.PendingSitOut {
			p.Status = game.StatusSitOut
			p.PendingSitOut = false
			p.PendingJoin = false
		}
	}
}
