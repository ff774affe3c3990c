package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/mixpot/mixpot/internal/room"
)

// Timing constants for the per-room concurrency envelope. Every delay is
// driven by the session's quartz clock so tests can step it.
const (
	defaultTurnTimeout   = 30 * time.Second
	tokenTTL             = 35 * time.Second
	rateWindow           = 2 * time.Second
	rateLimit            = 6
	timebankChips        = 5
	timebankExtension    = 30 * time.Second
	autoStartGrace       = 2 * time.Second
	settleDelay          = 2 * time.Second
	nextHandDelay        = 2 * time.Second
	runoutStepDelay      = 1500 * time.Millisecond
	timeoutsBeforeSitOut = 3
	timerTick            = time.Second
)

// actionToken authorizes exactly one action from one seat. Tokens are
// minted with each your-turn, consumed on use, and expire after tokenTTL.
type actionToken struct {
	value    string
	issuedAt time.Time
}

// Session is a room's concurrency envelope: a single goroutine consumes a
// queue of closures (client events, timer firings, scheduler ticks), so
// every room state transition is serialized. Multiple rooms progress in
// parallel; within a room everything is linearizable.
type Session struct {
	room   *room.Room
	server *Server
	clock  quartz.Clock
	logger *log.Logger

	queue chan func()
	done  chan struct{}

	// clients maps player id -> connection for everyone attached to the
	// room (seated or watching).
	clients map[string]*Client

	// Per-player shared structures; all access happens on the queue.
	tokens    map[string]*actionToken
	rate      map[string][]time.Time
	timebanks map[string]int

	// Timer handles. A fired timer delivers a closure to the queue; the
	// closure re-checks relevance before acting.
	turnTimer     *quartz.Timer
	turnRemaining int
	turnPlayerID  string
	turnEpoch     uint64 // invalidates stale timer firings

	autoStartTimer *quartz.Timer
	stepTimer      *quartz.Timer

	stopOnce sync.Once
}

func newSession(r *room.Room, server *Server, clock quartz.Clock, logger *log.Logger) *Session {
	s := &Session{
		room:      r,
		server:    server,
		clock:     clock,
		logger:    logger.WithPrefix("session").With("room", r.ID),
		queue:     make(chan func(), 512),
		done:      make(chan struct{}),
		clients:   make(map[string]*Client),
		tokens:    make(map[string]*actionToken),
		rate:      make(map[string][]time.Time),
		timebanks: make(map[string]int),
	}
	go s.run()
	return s
}

func (s *Session) run() {
	for {
		select {
		case fn := <-s.queue:
			s.invoke(fn)
		case <-s.done:
			return
		}
	}
}

// invoke runs one queued item; a panic is contained so it cannot poison
// the room.
func (s *Session) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("recovered panic in room queue", "panic", r)
		}
	}()
	fn()
}

// Do enqueues work onto the room's serialized queue.
func (s *Session) Do(fn func()) {
	select {
	case s.queue <- fn:
	case <-s.done:
	}
}

// stop shuts the session down and cancels every pending timer.
func (s *Session) stop() {
	s.stopOnce.Do(func() {
		s.Do(func() {
			s.cancelTurnTimer()
			s.cancelAutoStart()
			s.cancelStepTimer()
			close(s.done)
		})
	})
}

// after schedules fn on the queue after d, returning a cancellable handle.
func (s *Session) after(d time.Duration, fn func()) *quartz.Timer {
	return s.clock.AfterFunc(d, func() {
		s.Do(fn)
	})
}

// broadcastView sends a per-viewer sanitized event to every attached client.
// buildData receives the viewer id, so each client gets its own view.
func (s *Session) broadcastView(event string, buildData func(viewerID string) any) {
	for id, c := range s.clients {
		c.SendEvent(event, buildData(id))
	}
}

// broadcastState pushes the sanitized room state to everyone.
func (s *Session) broadcastState() {
	s.broadcastView(EvtRoomState, func(viewerID string) any {
		return BuildRoomView(s.room, viewerID)
	})
}

// broadcast sends the same payload to every attached client.
func (s *Session) broadcast(event string, data any) {
	for _, c := range s.clients {
		c.SendEvent(event, data)
	}
}

// sendTo targets one attached player.
func (s *Session) sendTo(playerID, event string, data any) {
	if c, ok := s.clients[playerID]; ok {
		c.SendEvent(event, data)
	}
}

// sendInvalid emits the gameplay rejection event.
func (s *Session) sendInvalid(playerID, reason string) {
	s.sendTo(playerID, EvtActionInvalid, ActionInvalidData{Reason: reason})
}

// --- tokens ---

// issueToken mints a fresh single-use token for a player.
func (s *Session) issueToken(playerID string) string {
	tok := &actionToken{value: uuid.NewString(), issuedAt: s.clock.Now()}
	s.tokens[playerID] = tok
	return tok.value
}

// consumeToken validates and burns a submitted token.
func (s *Session) consumeToken(playerID, value string) bool {
	tok, ok := s.tokens[playerID]
	if !ok || tok.value != value {
		return false
	}
	if s.clock.Now().Sub(tok.issuedAt) > tokenTTL {
		delete(s.tokens, playerID)
		return false
	}
	delete(s.tokens, playerID)
	return true
}

// clearToken drops an outstanding token without use (timeouts).
func (s *Session) clearToken(playerID string) {
	delete(s.tokens, playerID)
}

// --- rate limiting ---

// allowAction applies the sliding-window rate limit: at most rateLimit
// actions per rateWindow per player.
func (s *Session) allowAction(playerID string) bool {
	now := s.clock.Now()
	window := s.rate[playerID]
	keep := window[:0]
	for _, ts := range window {
		if now.Sub(ts) < rateWindow {
			keep = append(keep, ts)
		}
	}
	if len(keep) >= rateLimit {
		s.rate[playerID] = keep
		return false
	}
	s.rate[playerID] = append(keep, now)
	return true
}

// --- timebank ---

// timebankOf lazily initializes a seat's time-bank chips.
func (s *Session) timebankOf(playerID string) int {
	if _, ok := s.timebanks[playerID]; !ok {
		s.timebanks[playerID] = timebankChips
	}
	return s.timebanks[playerID]
}

// --- attach/detach ---

func (s *Session) attach(c *Client) {
	s.clients[c.id] = c
}

func (s *Session) detach(c *Client) {
	if s.clients[c.id] == c {
		delete(s.clients, c.id)
	}
}

// turnTimeout returns the per-turn countdown for this room.
func (s *Session) turnTimeout() time.Duration {
	if s.room.Config.TimeLimit > 0 {
		return time.Duration(s.room.Config.TimeLimit) * time.Second
	}
	return defaultTurnTimeout
}

func (s *Session) cancelTurnTimer() {
	if s.turnTimer != nil {
		s.turnTimer.Stop()
		s.turnTimer = nil
	}
	s.turnEpoch++
	s.turnPlayerID = ""
}

func (s *Session) cancelAutoStart() {
	if s.autoStartTimer != nil {
		s.autoStartTimer.Stop()
		s.autoStartTimer = nil
	}
}

func (s *Session) cancelStepTimer() {
	if s.stepTimer != nil {
		s.stepTimer.Stop()
		s.stepTimer = nil
	}
}
