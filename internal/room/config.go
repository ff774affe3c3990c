package room

import (
	"fmt"

	"github.com/mixpot/mixpot/internal/game"
	"github.com/mixpot/mixpot/internal/variant"
)

const (
	defaultMaxPlayers = 9
	maxSeats          = 9
	ofcMaxSeats       = 3

	// Buy-in defaults scale off the big blind.
	defaultBuyInMinBB = 20
	defaultBuyInMaxBB = 200
)

// Config is a room's full configuration. Zero fields take defaults at
// creation; host edits mid-hand are deferred via Room.PendingConfig.
type Config struct {
	MaxPlayers int `json:"maxPlayers"`

	SmallBlind int `json:"smallBlind"`
	BigBlind   int `json:"bigBlind"`
	StudAnte   int `json:"studAnte,omitempty"`

	BuyInMin int `json:"buyInMin"`
	BuyInMax int `json:"buyInMax"`

	// Variant selects the game dealt; AllowedGames is the rotation list.
	Variant      variant.Code   `json:"variant"`
	AllowedGames []variant.Code `json:"allowedGames,omitempty"`

	// TimeLimit overrides the per-turn seconds when positive.
	TimeLimit int `json:"timeLimit,omitempty"`

	// HandsPerGame rotates the variant every N hands. Zero rotates per
	// button orbit when a rotation list is set.
	HandsPerGame int `json:"handsPerGame,omitempty"`

	// Meta-game switches.
	SevenDeuceBonus bool `json:"sevenDeuceBonus,omitempty"`
	StandUpGame     bool `json:"standUpGame,omitempty"`

	Password string `json:"password,omitempty"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Variant == "" {
		c.Variant = variant.NLH
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = defaultMaxPlayers
	}
	if c.MaxPlayers > maxSeats {
		c.MaxPlayers = maxSeats
	}
	if c.Variant == variant.OFC && c.MaxPlayers > ofcMaxSeats {
		c.MaxPlayers = ofcMaxSeats
	}
	if c.SmallBlind <= 0 {
		c.SmallBlind = 1
	}
	if c.BigBlind <= 0 {
		c.BigBlind = c.SmallBlind * 2
	}
	if c.BuyInMin <= 0 {
		c.BuyInMin = c.BigBlind * defaultBuyInMinBB
	}
	if c.BuyInMax <= 0 {
		c.BuyInMax = c.BigBlind * defaultBuyInMaxBB
	}
}

// Validate rejects configurations the room cannot run.
func (c *Config) Validate() error {
	if !variant.Valid(c.Variant) {
		return fmt.Errorf("unknown game variant %q", c.Variant)
	}
	for _, code := range c.AllowedGames {
		if !variant.Valid(code) {
			return fmt.Errorf("unknown game variant %q in rotation", code)
		}
	}
	if c.BigBlind <= c.SmallBlind {
		return fmt.Errorf("big blind must exceed small blind")
	}
	if c.MaxPlayers < 2 {
		return fmt.Errorf("rooms need at least two seats")
	}
	if c.BuyInMin >= c.BuyInMax {
		return fmt.Errorf("buy-in minimum must be below maximum")
	}
	return nil
}

// Stakes converts the config to table stakes.
func (c *Config) Stakes() game.Stakes {
	return game.Stakes{SmallBlind: c.SmallBlind, BigBlind: c.BigBlind, StudAnte: c.StudAnte}
}
