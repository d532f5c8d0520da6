package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "intraop-board", cfg.Service.Name)
	assert.Equal(t, "8080", cfg.Service.HTTPPort)
	assert.Equal(t, "intraop.db", cfg.Database.Path)
	assert.Equal(t, 30, cfg.Board.DefaultSLAMinutes)
	assert.Equal(t, "America/Lima", cfg.Board.Timezone)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/board.db")
	t.Setenv("SLA_DEFAULT_MIN", "45")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("READ_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Service.HTTPPort)
	assert.Equal(t, "/tmp/board.db", cfg.Database.Path)
	assert.Equal(t, 45, cfg.Board.DefaultSLAMinutes)
	assert.Equal(t, "UTC", cfg.Board.Timezone)
	assert.Equal(t, 5*time.Second, cfg.Service.ReadTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("SLA_DEFAULT_MIN", "half an hour")
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Board.DefaultSLAMinutes)
	assert.Equal(t, 15*time.Second, cfg.Service.ReadTimeout)
	assert.True(t, cfg.CORS.AllowCredentials)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Service:  ServiceConfig{HTTPPort: "8080"},
			Database: DatabaseConfig{Path: "intraop.db"},
			Board:    BoardConfig{DefaultSLAMinutes: 30, Timezone: "America/Lima"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"sla at lower bound", func(c *Config) { c.Board.DefaultSLAMinutes = SLAMinMinutes }, ""},
		{"sla at upper bound", func(c *Config) { c.Board.DefaultSLAMinutes = SLAMaxMinutes }, ""},
		{"missing port", func(c *Config) { c.Service.HTTPPort = "" }, "HTTP port"},
		{"missing db path", func(c *Config) { c.Database.Path = "" }, "database path"},
		{"sla below bound", func(c *Config) { c.Board.DefaultSLAMinutes = SLAMinMinutes - 1 }, "SLA threshold"},
		{"sla above bound", func(c *Config) { c.Board.DefaultSLAMinutes = SLAMaxMinutes + 1 }, "SLA threshold"},
		{"unknown timezone", func(c *Config) { c.Board.Timezone = "Mars/Olympus" }, "invalid timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Board: BoardConfig{Timezone: "America/Lima"}}
	loc := cfg.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "America/Lima", loc.String())
}
