package room

import (
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/randutil"
	"github.com/mixpot/mixpot/internal/roomid"
	"github.com/mixpot/mixpot/internal/variant"
)

// Manager owns the process-wide room map. Lookup is concurrent-safe;
// mutation of a room's game state belongs to that room's serialized queue,
// not the manager.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	idGen  *roomid.Generator
	newRNG func() *rand.Rand
	logger *log.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRNGFactory injects deterministic randomness for tests. Each room
// gets its own source.
func WithRNGFactory(f func() *rand.Rand) ManagerOption {
	return func(m *Manager) {
		m.newRNG = f
	}
}

// WithIDGenerator injects a deterministic id generator for tests.
func WithIDGenerator(g *roomid.Generator) ManagerOption {
	return func(m *Manager) {
		m.idGen = g
	}
}

// NewManager creates a room manager.
func NewManager(logger *log.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		rooms:  make(map[string]*Room),
		idGen:  roomid.NewGenerator(nil),
		newRNG: randutil.NewCrypto,
		logger: logger.WithPrefix("rooms"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateRoom creates a room. A non-empty customID must be six letters or
// digits (case-insensitive) and unused; otherwise a fresh id is generated
// from the roomid alphabet. hostID marks a private room's
// host (empty for public rooms).
func (m *Manager) CreateRoom(hostID string, cfg Config, customID string) (*Room, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := customID
	if id != "" {
		id = roomid.Normalize(id)
		if len(id) != roomid.Length {
			return nil, fmt.Errorf("room id must be exactly %d characters, got %d", roomid.Length, len(id))
		}
		for _, ch := range id {
			if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
				return nil, fmt.Errorf("invalid character %c in room id %q", ch, customID)
			}
		}
		if _, exists := m.rooms[id]; exists {
			return nil, fmt.Errorf("room id %s already in use", id)
		}
	} else {
		for {
			id = m.idGen.Generate()
			if _, exists := m.rooms[id]; !exists {
				break
			}
		}
	}

	rng := m.newRNG()
	logger := m.logger.WithPrefix("room").With("id", id)
	r := &Room{
		ID:     id,
		Table:  game.NewTable(cfg.MaxPlayers, cfg.Stakes(), variant.MustGet(cfg.Variant), rng, logger),
		Config: cfg,
		HostID: hostID,
		rng:    rng,
		logger: logger,
	}
	r.Rotation.SetGames(cfg.AllowedGames)

	m.rooms[id] = r
	m.logger.Info("room created", "id", id, "variant", cfg.Variant, "host", hostID)
	return r, nil
}

// SeedPresets creates the startup rooms: public and permanent.
func (m *Manager) SeedPresets(configs map[string]Config) error {
	for id, cfg := range configs {
		r, err := m.CreateRoom("", cfg, id)
		if err != nil {
			return fmt.Errorf("preset %s: %w", id, err)
		}
		r.Preset = true
	}
	return nil
}

// Get looks up a room by id (case-insensitive).
func (m *Manager) Get(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomid.Normalize(id)]
	return r, ok
}

// List returns every room. Order is unspecified.
func (m *Manager) List() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

// RemoveIfEmpty deletes a room whose last seat emptied, unless preset.
// Returns true when the room was removed.
func (m *Manager) RemoveIfEmpty(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok || r.Preset || r.OccupiedSeats() > 0 {
		return false
	}
	delete(m.rooms, id)
	m.logger.Info("room deleted", "id", id)
	return true
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
