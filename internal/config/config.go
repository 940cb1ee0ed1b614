package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "BLOCKBOTS_CONFIG"

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Scene      SceneConfig      `toml:"scene"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Logging    LoggingConfig    `toml:"logging"`
	Ledger     LedgerConfig     `toml:"ledger"`
	Trace      TraceConfig      `toml:"trace"`
}

type SimulationConfig struct {
	TickRate      time.Duration `toml:"tick_rate"`
	Seed          int64         `toml:"seed"`      // 0 = seed from the clock
	MaxTicks      uint64        `toml:"max_ticks"` // 0 = run until signalled
	StatsInterval time.Duration `toml:"stats_interval"`
	StartTime     int64         // set at boot, not from config
}

type SceneConfig struct {
	File string `toml:"file"`
	Name string `toml:"name"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type LedgerConfig struct {
	Enabled         bool          `toml:"enabled"`
	Driver          string        `toml:"driver"` // "postgres" or "sqlite"
	DSN             string        `toml:"dsn"`
	FlushInterval   int           `toml:"flush_interval"` // ticks between batch writes
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type TraceConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Path returns the config path to load: the environment override when set,
// otherwise def.
func Path(def string) string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return def
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Simulation.StartTime = time.Now().Unix()
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

func (c *Config) validate() error {
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive")
	}
	if c.Scene.File == "" {
		return fmt.Errorf("scene.file is required")
	}
	if c.Ledger.Enabled {
		switch c.Ledger.Driver {
		case "postgres", "sqlite":
		default:
			return fmt.Errorf("ledger.driver %q: want postgres or sqlite", c.Ledger.Driver)
		}
		if c.Ledger.FlushInterval < 1 {
			return fmt.Errorf("ledger.flush_interval must be at least 1")
		}
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:      20 * time.Millisecond,
			StatsInterval: 10 * time.Second,
		},
		Scene: SceneConfig{
			File: "data/yaml/scenes.yaml",
			Name: "default",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Ledger: LedgerConfig{
			Enabled:         false,
			Driver:          "sqlite",
			DSN:             "blockbots.db",
			FlushInterval:   50,
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Trace: TraceConfig{
			Enabled: false,
			Dir:     "trace",
		},
	}
}
