package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/chipholdem/internal/room"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chipholdem.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8787", cfg.Address())
	assert.Equal(t, 30*time.Minute, cfg.Rooms.IdleTimeoutDuration())
	assert.Equal(t, time.Minute, cfg.Rooms.ReapIntervalDuration())
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

storage {
  kind = "sqlite"
}

rooms {
  max_players  = 6
  small_blind  = 25
  big_blind    = 50
  idle_timeout = "5m"
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "sqlite", cfg.Storage.Kind)
	assert.Equal(t, "rooms.db", cfg.Storage.Path)
	assert.Equal(t, room.Settings{MaxPlayers: 6, StartingChips: 10000, SmallBlind: 25, BigBlind: 50}, cfg.Rooms.Settings())
	assert.Equal(t, 5*time.Minute, cfg.Rooms.IdleTimeoutDuration())
	assert.Equal(t, time.Minute, cfg.Rooms.ReapIntervalDuration())
}

func TestLoadConfigPartialBlocks(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(writeConfig(t, `storage { kind = "memory" }`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "memory", cfg.Storage.Kind)
	assert.Empty(t, cfg.Storage.Path)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
	assert.Equal(t, DefaultConfig().Rooms, cfg.Rooms)
}

func TestLoadConfigParseErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(writeConfig(t, `server { port = `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")

	_, err = LoadConfig(writeConfig(t, `server { colour = "blue" }`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL")
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "invalid port"},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Kind = "redis" }, wantErr: "unknown storage kind"},
		{name: "file store without path", mutate: func(c *Config) { c.Storage.Path = "" }, wantErr: "path is required"},
		{name: "too many players", mutate: func(c *Config) { c.Rooms.MaxPlayers = 10 }, wantErr: "maxPlayers"},
		{name: "inverted blinds", mutate: func(c *Config) { c.Rooms.SmallBlind = 200 }, wantErr: "blinds"},
		{name: "short stack", mutate: func(c *Config) { c.Rooms.StartingChips = 500 }, wantErr: "startingChips"},
		{name: "bad idle timeout", mutate: func(c *Config) { c.Rooms.IdleTimeout = "soon" }, wantErr: "idle_timeout"},
		{name: "zero reap interval", mutate: func(c *Config) { c.Rooms.ReapInterval = "0s" }, wantErr: "reap_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
