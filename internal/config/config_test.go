package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "raidtracker.db", cfg.DatabaseDSN)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 3*time.Second, cfg.SettleDelay)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseEnv_OverridesOnlySetVariables(t *testing.T) {
	t.Setenv("RAIDTRACKER_DATABASE_DSN", "env.db")
	t.Setenv("RAIDTRACKER_TICK_INTERVAL", "250ms")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "env.db", cfg.DatabaseDSN)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	// untouched by env
	assert.Equal(t, 3*time.Second, cfg.SettleDelay)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestJsonConfig_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"database_dsn": "json.db",
		"tick_interval": "200ms",
		"settle_delay": "5s",
		"log_level": "debug"
	}`), 0o600))

	oldArgs := os.Args
	os.Args = []string{"raidtracker", "-c", path}
	t.Cleanup(func() { os.Args = oldArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "json.db", cfg.DatabaseDSN)
	assert.Equal(t, 200*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 5*time.Second, cfg.SettleDelay)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseFlags_Overrides(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"raidtracker", "-d", "flag.db", "-l", "warn"}
	t.Cleanup(func() { os.Args = oldArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "flag.db", cfg.DatabaseDSN)
	assert.Equal(t, "warn", cfg.LogLevel)
}
