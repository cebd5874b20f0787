// Package config loads server settings from an optional YAML file with
// environment variable overrides. Every field has a production default so a
// bare binary starts with no configuration at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"tankarena/server/internal/game"
	"tankarena/server/internal/journal"
)

// EnvPrefix namespaces the override variables.
const EnvPrefix = "TANKARENA_"

// Config is the full server configuration.
type Config struct {
	Addr        string `yaml:"addr"`
	MaxSessions int    `yaml:"max_sessions"`

	Rooms   Rooms   `yaml:"rooms"`
	Match   Match   `yaml:"match"`
	Network Network `yaml:"network"`
	Logging Logging `yaml:"logging"`
}

// Rooms controls the lobby table.
type Rooms struct {
	MaxRooms         int           `yaml:"max_rooms"`
	CountdownSeconds int           `yaml:"countdown_seconds"`
	ReapGrace        time.Duration `yaml:"reap_grace"`
	SweepInterval    time.Duration `yaml:"sweep_interval"`
}

// Match controls simulation and state fan-out.
type Match struct {
	TickRate         int           `yaml:"tick_rate"`
	BestOf           int           `yaml:"best_of"`
	RoundDuration    time.Duration `yaml:"round_duration"`
	FillWithBots     bool          `yaml:"fill_with_bots"`
	JournalCapacity  int           `yaml:"journal_capacity"`
	JournalMaxAge    time.Duration `yaml:"journal_max_age"`
	KeyframeInterval int           `yaml:"keyframe_interval"`
}

// Network controls the websocket layer.
type Network struct {
	MessagesPerSecond float64       `yaml:"messages_per_second"`
	MessageBurst      int           `yaml:"message_burst"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
}

// Logging controls the event router.
type Logging struct {
	Sinks    []string `yaml:"sinks"`
	Level    string   `yaml:"level"`
	JSONPath string   `yaml:"json_path"`
}

// Default returns the production settings.
func Default() Config {
	return Config{
		Addr:        ":8080",
		MaxSessions: 1024,
		Rooms: Rooms{
			MaxRooms:         256,
			CountdownSeconds: 3,
			ReapGrace:        5 * time.Minute,
			SweepInterval:    30 * time.Second,
		},
		Match: Match{
			TickRate:         game.TickRate,
			BestOf:           game.DefaultBestOf,
			RoundDuration:    time.Duration(game.RoundDurationSeconds) * time.Second,
			FillWithBots:     true,
			JournalCapacity:  journal.DefaultCapacity,
			JournalMaxAge:    journal.DefaultMaxAge,
			KeyframeInterval: 60,
		},
		Network: Network{
			MessagesPerSecond: 120,
			MessageBurst:      240,
			HeartbeatInterval: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
		},
		Logging: Logging{
			Sinks: []string{"console"},
			Level: "info",
		},
	}
}

// Load reads the file at path when it is non-empty, then applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error
	setString(&c.Addr, "ADDR")
	err = firstErr(err, setInt(&c.MaxSessions, "MAX_SESSIONS"))
	err = firstErr(err, setInt(&c.Rooms.MaxRooms, "MAX_ROOMS"))
	err = firstErr(err, setInt(&c.Rooms.CountdownSeconds, "COUNTDOWN_SECONDS"))
	err = firstErr(err, setDuration(&c.Rooms.ReapGrace, "REAP_GRACE"))
	err = firstErr(err, setInt(&c.Match.TickRate, "TICK_RATE"))
	err = firstErr(err, setInt(&c.Match.BestOf, "BEST_OF"))
	err = firstErr(err, setDuration(&c.Match.RoundDuration, "ROUND_DURATION"))
	err = firstErr(err, setBool(&c.Match.FillWithBots, "FILL_WITH_BOTS"))
	err = firstErr(err, setInt(&c.Match.JournalCapacity, "JOURNAL_CAPACITY"))
	err = firstErr(err, setInt(&c.Match.KeyframeInterval, "KEYFRAME_INTERVAL"))
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.JSONPath, "LOG_JSON_PATH")
	return err
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be positive, got %d", c.MaxSessions)
	}
	if c.Rooms.MaxRooms <= 0 {
		return fmt.Errorf("rooms.max_rooms must be positive, got %d", c.Rooms.MaxRooms)
	}
	if c.Match.TickRate <= 0 || c.Match.TickRate > 240 {
		return fmt.Errorf("match.tick_rate must be in (0,240], got %d", c.Match.TickRate)
	}
	if c.Match.BestOf < 1 || c.Match.BestOf > 7 || c.Match.BestOf%2 == 0 {
		return fmt.Errorf("match.best_of must be an odd value in [1,7], got %d", c.Match.BestOf)
	}
	if c.Match.RoundDuration <= 0 {
		return fmt.Errorf("match.round_duration must be positive, got %s", c.Match.RoundDuration)
	}
	if c.Match.JournalCapacity <= 0 {
		return fmt.Errorf("match.journal_capacity must be positive, got %d", c.Match.JournalCapacity)
	}
	if c.Match.KeyframeInterval <= 0 {
		return fmt.Errorf("match.keyframe_interval must be positive, got %d", c.Match.KeyframeInterval)
	}
	if c.Network.MessagesPerSecond <= 0 {
		return fmt.Errorf("network.messages_per_second must be positive, got %f", c.Network.MessagesPerSecond)
	}
	if _, err := game.MapByName(game.DefaultMapName); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = parsed
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = parsed
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = parsed
	return nil
}

func firstErr(a, b error) error {
	if a != nil {
		return a
	}
	return b
}
