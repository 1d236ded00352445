package config

import "time"

// Config holds runtime settings for the raidtracker CLI.
//
// Fields:
//   - DatabaseDSN: path/DSN of the local SQLite database file.
//   - TickInterval: how often elapsed time is recomputed while a run is
//     in progress.
//   - SettleDelay: how long a finished run stays on screen before the
//     tracker state clears.
//   - LogLevel: minimum level for log output (debug, info, warn, error).
type Config struct {
	DatabaseDSN  string        `env:"RAIDTRACKER_DATABASE_DSN"`
	TickInterval time.Duration `env:"RAIDTRACKER_TICK_INTERVAL"`
	SettleDelay  time.Duration `env:"RAIDTRACKER_SETTLE_DELAY"`
	LogLevel     string        `env:"RAIDTRACKER_LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "raidtracker.db"
	c.TickInterval = 100 * time.Millisecond
	c.SettleDelay = 3 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
