package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/room"
)

// Server hosts the rooms: it upgrades WebSocket connections, routes client
// events to per-room sessions, and serves the HTTP health and stats
// surface.
type Server struct {
	rooms  *room.Manager
	clock  quartz.Clock
	logger *log.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server
	routesOnce sync.Once

	clientCount    atomic.Int64
	handsCompleted atomic.Uint64
}

// Option configures a Server.
type Option func(*Server)

// WithClock injects a quartz clock; tests pass a mock to drive every
// timer deterministically.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithRoomManager injects a pre-seeded room manager.
func WithRoomManager(m *room.Manager) Option {
	return func(s *Server) {
		s.rooms = m
	}
}

// New creates a server.
func New(logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		clock:    quartz.NewReal(),
		logger:   logger,
		sessions: make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		mux: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rooms == nil {
		s.rooms = room.NewManager(logger)
	}
	return s
}

// Rooms exposes the room manager (preset seeding, tests).
func (s *Server) Rooms() *room.Manager {
	return s.rooms
}

// Start listens and serves until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve runs the HTTP server on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.ensureRoutes()
	s.httpServer = &http.Server{Handler: s.mux}

	s.logger.Info("server starting", "addr", listener.Addr().String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) ensureRoutes() {
	s.routesOnce.Do(func() {
		s.mux.HandleFunc("/ws", s.handleWebSocket)
		s.mux.HandleFunc("/health", s.handleHealth)
		s.mux.HandleFunc("/stats", s.handleStats)
	})
}

// session returns (or creates) the serialized session for a room.
func (s *Server) session(r *room.Room) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[r.ID]; ok {
		return sess
	}
	sess := newSession(r, s, s.clock, s.logger)
	s.sessions[r.ID] = sess
	return sess
}

func (s *Server) sessionByID(roomID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[roomID]
	return sess, ok
}

// removeRoomIfEmpty deletes an emptied non-preset room and stops its
// session.
func (s *Server) removeRoomIfEmpty(roomID string) {
	if !s.rooms.RemoveIfEmpty(roomID) {
		return
	}
	s.mu.Lock()
	sess, ok := s.sessions[roomID]
	delete(s.sessions, roomID)
	s.mu.Unlock()
	if ok {
		sess.stop()
	}
}

// handleWebSocket upgrades a connection and starts its pumps. Each
// connection gets a fresh opaque id that doubles as its player id.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(uuid.NewString(), conn, s, s.logger)
	s.clientCount.Add(1)

	go client.writePump()
	go client.readPump()

	s.logger.Debug("client connected", "id", client.id, "total", s.clientCount.Load())
}

// handleDisconnect routes a dropped connection into its room's queue.
func (s *Server) handleDisconnect(c *Client) {
	s.clientCount.Add(-1)
	roomID := c.RoomID()
	if roomID == "" {
		return
	}
	if sess, ok := s.sessionByID(roomID); ok {
		sess.Do(func() { sess.handleDisconnect(c) })
	}
}

// route dispatches one inbound envelope. Lobby-scoped events run here;
// room-scoped events are enqueued onto the room's serialized queue.
func (s *Server) route(c *Client, env *Envelope) {
	switch env.Event {
	case EvtGetRoomList:
		s.sendRoomList(c)
		return
	case EvtJoinRoom:
		var data JoinRoomData
		if !decode(c, env.Data, &data) {
			return
		}
		s.joinRoom(c, data, "")
		return
	case EvtQuickJoin:
		var data QuickJoinData
		if !decode(c, env.Data, &data) {
			return
		}
		s.quickJoin(c, data)
		return
	case EvtCreatePrivate:
		var data CreatePrivateRoomData
		if !decode(c, env.Data, &data) {
			return
		}
		s.createPrivateRoom(c, data)
		return
	case EvtJoinPrivate:
		var data JoinPrivateRoomData
		if !decode(c, env.Data, &data) {
			return
		}
		s.joinPrivateRoom(c, data)
		return
	}

	roomID := c.RoomID()
	if roomID == "" {
		c.SendError("join a room first")
		return
	}
	sess, ok := s.sessionByID(roomID)
	if !ok {
		c.SendError("room no longer exists")
		return
	}
	s.routeRoomEvent(sess, c, env)
}

// routeRoomEvent enqueues a room-scoped event onto the room's queue.
func (s *Server) routeRoomEvent(sess *Session, c *Client, env *Envelope) {
	switch env.Event {
	case EvtLeaveRoom:
		sess.Do(func() { sess.handleLeaveRoom(c) })
	case EvtSitDown:
		var data SitDownData
		if decode(c, env.Data, &data) {
			sess.Do(func() { sess.handleSitDown(c, data) })
		}
	case EvtLeaveSeat:
		sess.Do(func() { sess.handleLeaveSeat(c) })
	case EvtRebuy:
		var data RebuyData
		if decode(c, env.Data, &data) {
			sess.Do(func() { sess.handleRebuy(c, data.Amount) })
		}
	case EvtImBack:
		sess.Do(func() { sess.handleImBack(c) })
	case EvtPlayerAction:
		var data PlayerActionData
		if decode(c, env.Data, &data) {
			sess.Do(func() { sess.handlePlayerAction(c, data) })
		}
	case EvtDrawExchange:
		var data DrawExchangeData
		if decode(c, env.Data, &data) {
			sess.Do(func() { sess.handleDrawExchange(c, data) })
		}
	case EvtUseTimebank:
		sess.Do(func() { sess.handleUseTimebank(c) })
	case EvtRequestRoomState:
		sess.Do(func() { sess.handleRequestState(c) })
	case EvtOFCPlaceCards:
		var data OFCPlaceCardsData
		if decode(c, env.Data, &data) {
			sess.Do(func() { sess.handleOFCPlace(c, data) })
		}
	case EvtUpdateConfig, "update-private-room-config":
		var data UpdateConfigData
		if decode(c, env.Data, &data) {
			sess.Do(func() { sess.handleUpdateConfig(c, data.Config) })
		}
	case EvtSetVariant, EvtChangeVariant:
		var data SetVariantData
		if decode(c, env.Data, &data) {
			sess.Do(func() { sess.handleSetVariant(c, data.Variant) })
		}
	case EvtSetRotation:
		var data SetRotationData
		if decode(c, env.Data, &data) {
			sess.Do(func() { sess.handleSetRotation(c, data) })
		}
	case EvtToggleMetaGame:
		var data ToggleMetaGameData
		if decode(c, env.Data, &data) {
			sess.Do(func() { sess.handleToggleMetaGame(c, data) })
		}
	default:
		c.SendError(fmt.Sprintf("unknown event %q", env.Event))
	}
}

func decode[T any](c *Client, raw json.RawMessage, out *T) bool {
	if len(raw) == 0 {
		c.SendError("missing event data")
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.SendError("malformed event data")
		return false
	}
	return true
}

// joinRoom attaches a client to a room, optionally checking a password.
func (s *Server) joinRoom(c *Client, data JoinRoomData, password string) {
	r, ok := s.rooms.Get(data.RoomID)
	if !ok {
		c.SendError("room not found")
		return
	}
	if r.Config.Password != "" && r.Config.Password != password {
		c.SendError("wrong room password")
		return
	}
	sess := s.session(r)
	sess.Do(func() { sess.handleJoin(c, data) })
}

func (s *Server) quickJoin(c *Client, data QuickJoinData) {
	r, ok := s.rooms.Get(data.RoomID)
	if !ok {
		c.SendError("room not found")
		return
	}
	if r.Config.Password != "" {
		c.SendError("room requires a password")
		return
	}
	sess := s.session(r)
	sess.Do(func() {
		sess.handleJoin(c, JoinRoomData{RoomID: data.RoomID})
		sess.handleQuickJoin(c, data.BuyIn)
	})
}

func (s *Server) createPrivateRoom(c *Client, data CreatePrivateRoomData) {
	cfg := data.Config
	cfg.Password = data.Password
	r, err := s.rooms.CreateRoom(c.id, cfg, data.CustomRoomID)
	if err != nil {
		c.SendError(err.Error())
		return
	}
	sess := s.session(r)
	sess.Do(func() { sess.handleJoin(c, JoinRoomData{RoomID: r.ID}) })
}

func (s *Server) joinPrivateRoom(c *Client, data JoinPrivateRoomData) {
	s.joinRoom(c, JoinRoomData{RoomID: data.RoomID}, data.Password)
}

// sendRoomList pushes the lobby listing.
func (s *Server) sendRoomList(c *Client) {
	var entries []RoomListEntry
	for _, r := range s.rooms.List() {
		entries = append(entries, RoomListEntry{
			ID:          r.ID,
			Variant:     r.Config.Variant,
			Players:     r.OccupiedSeats(),
			MaxPlayers:  r.Config.MaxPlayers,
			SmallBlind:  r.Config.SmallBlind,
			BigBlind:    r.Config.BigBlind,
			HandRunning: r.Phase != game.PhaseWaiting,
			Private:     r.Config.Password != "",
		})
	}
	c.SendEvent(EvtRoomList, RoomListData{Rooms: entries})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK\n")
}

// handleStats reports the plain-text operational counters.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	seated := 0
	for _, rm := range s.rooms.List() {
		seated += rm.OccupiedSeats()
	}
	fmt.Fprintf(w, "Connected clients: %d\n", s.clientCount.Load())
	fmt.Fprintf(w, "Rooms: %d\n", s.rooms.Count())
	fmt.Fprintf(w, "Seated players: %d\n", seated)
	fmt.Fprintf(w, "Hands completed: %d\n", s.handsCompleted.Load())
}

// WaitForHealthy polls the /health endpoint until it returns 200 OK or the
// context is cancelled.
func WaitForHealthy(ctx context.Context, baseURL string) error {
	healthURL := baseURL + "/health"
	client := &http.Client{Timeout: 1 * time.Second}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			resp, err := client.Get(healthURL)
			if err == nil && resp.StatusCode == http.StatusOK {
				resp.Body.Close()
				return nil
			}
			if resp != nil {
				resp.Body.Close()
			}
		}
	}
}
