package room

import (
	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/variant"
)

// RotationState walks the room through its allowed-games list. With
// HandsPerGame configured the rotation advances every N hands; otherwise it
// advances when the button completes an orbit back to the seat it occupied
// when the current game began.
type RotationState struct {
	Games       []variant.Code
	Index       int
	HandsPlayed int

	// orbitStart is the button seat when the current game began; -1 until
	// the first hand of the game is dealt.
	orbitStart int
}

// SetGames installs a rotation list, resetting progress. A list of one or
// zero games disables rotation.
func (rs *RotationState) SetGames(games []variant.Code) {
	rs.Games = append([]variant.Code(nil), games...)
	rs.Index = 0
	rs.HandsPlayed = 0
	rs.orbitStart = -1
}

// Enabled reports whether a rotation is configured.
func (rs *RotationState) Enabled() bool {
	return len(rs.Games) > 1
}

// Current returns the rotation's current game, or "" when disabled.
func (rs *RotationState) Current() variant.Code {
	if len(rs.Games) == 0 {
		return ""
	}
	return rs.Games[rs.Index%len(rs.Games)]
}

// OnHandStart records a dealt hand, pinning the orbit anchor to the first
// button seat of the current game.
func (rs *RotationState) OnHandStart(buttonSeat int) {
	if !rs.Enabled() {
		return
	}
	rs.HandsPlayed++
	if rs.orbitStart < 0 {
		rs.orbitStart = buttonSeat
	}
}

// DueForAdvance reports whether the next hand should deal the next game.
func (rs *RotationState) DueForAdvance(nextButtonSeat, handsPerGame int) bool {
	if !rs.Enabled() || rs.HandsPlayed == 0 {
		return false
	}
	if handsPerGame > 0 {
		return rs.HandsPlayed >= handsPerGame
	}
	// Orbit rule: the button has come back around to where this game
	// started.
	return rs.orbitStart >= 0 && nextButtonSeat == rs.orbitStart
}

// Advance moves to the next game and resets progress. Returns the new
// current game.
func (rs *RotationState) Advance() variant.Code {
	if len(rs.Games) == 0 {
		return ""
	}
	rs.Index = (rs.Index + 1) % len(rs.Games)
	rs.HandsPlayed = 0
	rs.orbitStart = -1
	return rs.Current()
}

// MaybeRotate advances the room's variant when the rotation is due. Called
// at the hand boundary before the next hand starts; returns the new game
// when a rotation happened.
func (r *Room) MaybeRotate() (variant.Code, bool) {
	if !r.Rotation.Enabled() {
		return "", false
	}
	next := r.nextButtonSeat()
	if !r.Rotation.DueForAdvance(next, r.Config.HandsPerGame) {
		return "", false
	}
	code := r.Rotation.Advance()
	r.SetVariant(code)
	r.logger.Info("rotation advanced", "game", code)
	return code, true
}

// nextButtonSeat predicts where the button lands next hand.
func (r *Room) nextButtonSeat() int {
	for i := 1; i <= len(r.Seats); i++ {
		idx := ((r.Button+i)%len(r.Seats) + len(r.Seats)) % len(r.Seats)
		if game.Startable(r.Seats[idx]) {
			return idx
		}
	}
	return r.Button
}
