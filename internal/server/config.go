package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/chipholdem/internal/game"
	"github.com/lox/chipholdem/internal/room"
	"github.com/lox/chipholdem/internal/store"
)

// Config represents the complete server configuration
type Config struct {
	Server  ServerSettings
	Storage StorageSettings
	Rooms   RoomDefaults
}

// ServerSettings contains listener and logging configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// StorageSettings selects the snapshot store. Path is a directory for the
// file store and a database file for sqlite.
type StorageSettings struct {
	Kind string `hcl:"kind,optional"`
	Path string `hcl:"path,optional"`
}

// RoomDefaults holds the settings used for rooms created without explicit
// values, plus idle eviction timing. Durations use time.ParseDuration syntax.
type RoomDefaults struct {
	MaxPlayers    int    `hcl:"max_players,optional"`
	StartingChips int    `hcl:"starting_chips,optional"`
	SmallBlind    int    `hcl:"small_blind,optional"`
	BigBlind      int    `hcl:"big_blind,optional"`
	IdleTimeout   string `hcl:"idle_timeout,optional"`
	ReapInterval  string `hcl:"reap_interval,optional"`
}

// fileConfig mirrors Config with optional blocks.
type fileConfig struct {
	Server  *ServerSettings  `hcl:"server,block"`
	Storage *StorageSettings `hcl:"storage,block"`
	Rooms   *RoomDefaults    `hcl:"rooms,block"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8787,
			LogLevel: "info",
		},
		Storage: StorageSettings{
			Kind: store.KindFile,
			Path: DefaultStoragePath(store.KindFile),
		},
		Rooms: RoomDefaults{
			MaxPlayers:    game.DefaultMaxPlayers,
			StartingChips: game.DefaultStartingChips,
			SmallBlind:    game.DefaultSmallBlind,
			BigBlind:      game.DefaultBigBlind,
			IdleTimeout:   "30m",
			ReapInterval:  "1m",
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	var config Config
	if fc.Server != nil {
		config.Server = *fc.Server
	}
	if fc.Storage != nil {
		config.Storage = *fc.Storage
	}
	if fc.Rooms != nil {
		config.Rooms = *fc.Rooms
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = d.Server.LogLevel
	}
	if c.Storage.Kind == "" {
		c.Storage.Kind = d.Storage.Kind
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath(c.Storage.Kind)
	}
	if c.Rooms.MaxPlayers == 0 {
		c.Rooms.MaxPlayers = d.Rooms.MaxPlayers
	}
	if c.Rooms.StartingChips == 0 {
		c.Rooms.StartingChips = d.Rooms.StartingChips
	}
	if c.Rooms.SmallBlind == 0 {
		c.Rooms.SmallBlind = d.Rooms.SmallBlind
	}
	if c.Rooms.BigBlind == 0 {
		c.Rooms.BigBlind = d.Rooms.BigBlind
	}
	if c.Rooms.IdleTimeout == "" {
		c.Rooms.IdleTimeout = d.Rooms.IdleTimeout
	}
	if c.Rooms.ReapInterval == "" {
		c.Rooms.ReapInterval = d.Rooms.ReapInterval
	}
}

// DefaultStoragePath returns the path used for a store kind configured
// without one.
func DefaultStoragePath(kind string) string {
	switch kind {
	case store.KindFile:
		return "rooms"
	case store.KindSQLite:
		return "rooms.db"
	default:
		return ""
	}
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Storage.Kind {
	case store.KindMemory:
	case store.KindFile, store.KindSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage %s: path is required", c.Storage.Kind)
		}
	default:
		return fmt.Errorf("unknown storage kind %q", c.Storage.Kind)
	}

	if err := c.Rooms.Settings().Validate(); err != nil {
		return fmt.Errorf("rooms: %w", err)
	}
	if d, err := time.ParseDuration(c.Rooms.IdleTimeout); err != nil || d <= 0 {
		return fmt.Errorf("rooms: invalid idle_timeout %q", c.Rooms.IdleTimeout)
	}
	if d, err := time.ParseDuration(c.Rooms.ReapInterval); err != nil || d <= 0 {
		return fmt.Errorf("rooms: invalid reap_interval %q", c.Rooms.ReapInterval)
	}
	return nil
}

// Address returns the full listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Settings returns the default settings for new rooms.
func (r RoomDefaults) Settings() room.Settings {
	return room.Settings{
		MaxPlayers:    r.MaxPlayers,
		StartingChips: r.StartingChips,
		SmallBlind:    r.SmallBlind,
		BigBlind:      r.BigBlind,
	}
}

// IdleTimeoutDuration parses IdleTimeout. Call after Validate.
func (r RoomDefaults) IdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(r.IdleTimeout)
	return d
}

// ReapIntervalDuration parses ReapInterval. Call after Validate.
func (r RoomDefaults) ReapIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(r.ReapInterval)
	return d
}
