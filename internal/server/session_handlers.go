package server

import (
	"github.com/google/uuid"

	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/room"
	"github.com/mixpot/mixpot/internal/variant"
	"github.com/mixpot/mixpot/poker"
)

// Lifecycle and seat handlers. All run on the session queue.

// handleJoin attaches a connection to the room, resuming a previous seat
// when a valid resume token is presented.
func (s *Session) handleJoin(c *Client, data JoinRoomData) {
	if data.PlayerName != "" {
		c.name = data.PlayerName
	}

	var yourHand []string
	if data.ResumeToken != "" {
		if seat := s.resumeSeat(c, data.ResumeToken); seat >= 0 {
			yourHand = poker.CardStrings(s.room.Seats[seat].Hand)
		}
	}

	s.attach(c)
	c.setRoomID(s.room.ID)
	c.SendEvent(EvtRoomJoined, RoomJoinedData{
		Room:         BuildRoomView(s.room, c.id),
		YourSocketID: c.id,
		YourHand:     yourHand,
	})
	s.broadcastState()
}

// resumeSeat rebinds a previously issued seat to a new connection id: the
// hand is preserved, the stale connection is kicked, and mid-hand state
// carries over. Returns the seat index, -1 when the token matches nothing.
func (s *Session) resumeSeat(c *Client, resumeToken string) int {
	for idx, p := range s.room.Seats {
		if p == nil || p.ResumeToken != resumeToken {
			continue
		}
		oldID := p.ID
		if old, ok := s.clients[oldID]; ok && old != c {
			old.SendError("session resumed elsewhere")
			old.Close()
			delete(s.clients, oldID)
		}
		s.rebindPlayerID(oldID, c.id)
		p.ID = c.id
		p.Disconnected = false
		p.PendingLeave = false
		s.logger.Info("seat resumed", "player", p.Name, "seat", idx)
		return idx
	}
	return -1
}

// rebindPlayerID moves per-player controller state to a new connection id.
func (s *Session) rebindPlayerID(oldID, newID string) {
	if tok, ok := s.tokens[oldID]; ok {
		delete(s.tokens, oldID)
		s.tokens[newID] = tok
	}
	if tb, ok := s.timebanks[oldID]; ok {
		delete(s.timebanks, oldID)
		s.timebanks[newID] = tb
	}
	if w, ok := s.rate[oldID]; ok {
		delete(s.rate, oldID)
		s.rate[newID] = w
	}
	if s.turnPlayerID == oldID {
		s.turnPlayerID = newID
	}
}

// handleSitDown seats an attached client.
func (s *Session) handleSitDown(c *Client, data SitDownData) {
	if err := s.room.SitDown(data.SeatIndex, c.id, c.name, data.BuyIn); err != nil {
		c.SendError(err.Error())
		return
	}
	p := s.room.Seats[data.SeatIndex]
	p.ResumeToken = uuid.NewString()
	s.timebankOf(c.id)

	c.SendEvent(EvtSitDownSuccess, SitDownSuccessData{
		SeatIndex:   data.SeatIndex,
		ResumeToken: p.ResumeToken,
	})
	s.broadcastState()
	s.maybeScheduleStart()
}

// handleQuickJoin seats the client at a random empty seat.
func (s *Session) handleQuickJoin(c *Client, buyIn int) {
	seat := s.room.RandomEmptySeat()
	if seat < 0 {
		c.SendError("room is full")
		return
	}
	s.handleSitDown(c, SitDownData{SeatIndex: seat, BuyIn: buyIn})
}

// handleLeaveSeat stands the player up, deferring to the hand boundary
// when they hold live cards.
func (s *Session) handleLeaveSeat(c *Client) {
	seat := s.room.SeatByID(c.id)
	if seat < 0 {
		c.SendError("not seated")
		return
	}
	p := s.room.Seats[seat]

	if s.room.Phase != game.PhaseWaiting && p.InHand() {
		p.PendingLeave = true
		res, err := s.room.ForceFold(seat)
		if err == nil {
			s.broadcastState()
			s.afterEngineResult(res)
		}
		return
	}

	_ = s.room.StandUp(c.id)
	s.broadcastState()
	s.server.removeRoomIfEmpty(s.room.ID)
}

// handleLeaveRoom detaches the connection entirely.
func (s *Session) handleLeaveRoom(c *Client) {
	if s.room.SeatByID(c.id) >= 0 {
		s.handleLeaveSeat(c)
	}
	s.detach(c)
	c.setRoomID("")
	s.server.removeRoomIfEmpty(s.room.ID)
}

// handleDisconnect applies the disconnect policy: active actor folds at
// once, other live seats fold and leave at the boundary, idle seats stand
// up immediately.
func (s *Session) handleDisconnect(c *Client) {
	s.detach(c)

	seat := s.room.SeatByID(c.id)
	if seat < 0 {
		s.server.removeRoomIfEmpty(s.room.ID)
		return
	}
	p := s.room.Seats[seat]
	p.Disconnected = true

	if s.room.Phase == game.PhaseWaiting || !p.InHand() {
		_ = s.room.StandUp(c.id)
		s.broadcastState()
		s.server.removeRoomIfEmpty(s.room.ID)
		return
	}

	p.PendingLeave = true
	if seat == s.room.Active {
		s.cancelTurnTimer()
		s.clearToken(c.id)
	}
	res, err := s.room.ForceFold(seat)
	if err == nil {
		s.broadcastState()
		if seat == s.room.Active || res.RoundComplete || res.HandComplete {
			s.afterEngineResult(res)
		}
	}
}

// handleRebuy tops up a stack between hands.
func (s *Session) handleRebuy(c *Client, amount int) {
	if err := s.room.Rebuy(c.id, amount); err != nil {
		c.SendError(err.Error())
		return
	}
	s.broadcastState()
	s.maybeScheduleStart()
}

// handleImBack cancels a pending sit-out.
func (s *Session) handleImBack(c *Client) {
	seat := s.room.SeatByID(c.id)
	if seat < 0 {
		c.SendError("not seated")
		return
	}
	p := s.room.Seats[seat]
	p.PendingSitOut = false
	p.ConsecutiveTimeouts = 0
	if p.Status == game.StatusSitOut && s.room.Phase == game.PhaseWaiting && p.Stack > 0 {
		p.Status = game.StatusActive
	} else if p.Status == game.StatusSitOut {
		p.PendingJoin = true
	}
	s.broadcastState()
	s.maybeScheduleStart()
}

// handleUseTimebank spends a chip to extend the running countdown.
func (s *Session) handleUseTimebank(c *Client) {
	if s.turnPlayerID != c.id && !(s.room.IsDrawPhase && s.room.SeatByID(c.id) >= 0) {
		s.sendInvalid(c.id, "No timer running for you")
		return
	}
	chips := s.timebankOf(c.id)
	if chips <= 0 {
		s.sendInvalid(c.id, "No time-bank chips left")
		return
	}
	s.timebanks[c.id] = chips - 1
	s.turnRemaining += int(timebankExtension.Seconds())
	s.sendTo(c.id, EvtTimebankUpdate, TimebankUpdateData{Chips: s.timebanks[c.id]})
	s.broadcast(EvtTimerUpdate, TimerUpdateData{Seconds: s.turnRemaining})
}

// handleRequestState forces a resync for one client.
func (s *Session) handleRequestState(c *Client) {
	c.SendEvent(EvtRoomState, BuildRoomView(s.room, c.id))
}

// handleUpdateConfig applies a host config edit, deferring mid-hand.
func (s *Session) handleUpdateConfig(c *Client, cfg room.Config) {
	if s.room.HostID != c.id {
		c.SendError("only the host can change the configuration")
		return
	}
	deferred, err := s.room.UpdateConfig(cfg)
	if err != nil {
		c.SendError(err.Error())
		return
	}
	if deferred {
		s.broadcast(EvtConfigPending, nil)
	} else {
		s.broadcast(EvtConfigUpdated, nil)
		s.broadcastState()
	}
}

// handleSetVariant switches the dealt game between hands.
func (s *Session) handleSetVariant(c *Client, code variant.Code) {
	if s.room.HostID != "" && s.room.HostID != c.id {
		c.SendError("only the host can change the game")
		return
	}
	if s.room.Phase != game.PhaseWaiting {
		c.SendError("cannot change the game during a hand")
		return
	}
	if !variant.Valid(code) {
		c.SendError("unknown game variant")
		return
	}
	s.room.SetVariant(code)
	s.broadcastState()
}

// handleSetRotation installs the rotation list.
func (s *Session) handleSetRotation(c *Client, data SetRotationData) {
	if s.room.HostID != "" && s.room.HostID != c.id {
		c.SendError("only the host can change the rotation")
		return
	}
	for _, code := range data.Games {
		if !variant.Valid(code) {
			c.SendError("unknown game variant in rotation")
			return
		}
	}
	s.room.Config.AllowedGames = data.Games
	s.room.Config.HandsPerGame = data.HandsPerGame
	s.room.Rotation.SetGames(data.Games)
	if len(data.Games) > 0 {
		s.handleSetVariant(c, data.Games[0])
		return
	}
	s.broadcastState()
}

// handleToggleMetaGame flips a side-game on or off.
func (s *Session) handleToggleMetaGame(c *Client, data ToggleMetaGameData) {
	if s.room.HostID != "" && s.room.HostID != c.id {
		c.SendError("only the host can toggle side games")
		return
	}
	switch data.Game {
	case "seven-deuce":
		s.room.Config.SevenDeuceBonus = data.Enabled
	case "stand-up":
		s.room.Config.StandUpGame = data.Enabled
		if data.Enabled {
			s.room.ArmStandUp()
		} else {
			s.room.Meta.Standing = nil
		}
	default:
		c.SendError("unknown side game")
		return
	}
	s.broadcastState()
}
