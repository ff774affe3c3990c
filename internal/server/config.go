package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/mixpot/mixpot/internal/room"
	"github.com/mixpot/mixpot/internal/variant"
)

// ServerConfig is the complete server configuration, loaded from HCL.
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Rooms  []RoomBlock    `hcl:"room,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// RoomBlock defines a preset room seeded at startup.
type RoomBlock struct {
	ID           string   `hcl:"id,label"`
	Variant      string   `hcl:"variant,optional"`
	MaxPlayers   int      `hcl:"max_players,optional"`
	SmallBlind   int      `hcl:"small_blind"`
	BigBlind     int      `hcl:"big_blind"`
	BuyInMin     int      `hcl:"buy_in_min,optional"`
	BuyInMax     int      `hcl:"buy_in_max,optional"`
	TimeLimit    int      `hcl:"time_limit,optional"`
	StudAnte     int      `hcl:"stud_ante,optional"`
	AllowedGames []string `hcl:"allowed_games,optional"`
	HandsPerGame int      `hcl:"hands_per_game,optional"`
}

// DefaultServerConfig returns the configuration used when no file exists.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Rooms: []RoomBlock{
			{
				ID:         "LOBBY1",
				Variant:    string(variant.NLH),
				MaxPlayers: 9,
				SmallBlind: 1,
				BigBlind:   2,
			},
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file, falling
// back to defaults when the file does not exist.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	return &config, nil
}

// Validate rejects configurations the server cannot run.
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	for _, rb := range c.Rooms {
		if _, err := rb.RoomConfig(); err != nil {
			return fmt.Errorf("room %s: %w", rb.ID, err)
		}
	}
	return nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RoomConfig converts a preset block to a room configuration.
func (rb *RoomBlock) RoomConfig() (room.Config, error) {
	cfg := room.Config{
		MaxPlayers:   rb.MaxPlayers,
		SmallBlind:   rb.SmallBlind,
		BigBlind:     rb.BigBlind,
		BuyInMin:     rb.BuyInMin,
		BuyInMax:     rb.BuyInMax,
		TimeLimit:    rb.TimeLimit,
		StudAnte:     rb.StudAnte,
		HandsPerGame: rb.HandsPerGame,
	}
	if rb.Variant != "" {
		cfg.Variant = variant.Code(rb.Variant)
	}
	for _, g := range rb.AllowedGames {
		cfg.AllowedGames = append(cfg.AllowedGames, variant.Code(g))
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return room.Config{}, err
	}
	return cfg, nil
}

// PresetConfigs returns the preset room map for seeding.
func (c *ServerConfig) PresetConfigs() (map[string]room.Config, error) {
	out := make(map[string]room.Config, len(c.Rooms))
	for _, rb := range c.Rooms {
		cfg, err := rb.RoomConfig()
		if err != nil {
			return nil, fmt.Errorf("room %s: %w", rb.ID, err)
		}
		out[rb.ID] = cfg
	}
	return out, nil
}
