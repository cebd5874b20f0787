package room

import (
	"time"

	"tankarena/server/internal/game"
	"tankarena/server/internal/journal"
)

// Config carries the tunables shared by the registry and every room it
// opens.
type Config struct {
	MaxRooms         int
	CountdownSeconds int
	TickRate         int
	BestOf           int
	RoundDuration    float64
	FillWithBots     bool
	JournalCapacity  int
	JournalMaxAge    time.Duration
	KeyframeInterval int
	ReapGrace        time.Duration
	SweepInterval    time.Duration
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		MaxRooms:         256,
		CountdownSeconds: 3,
		TickRate:         game.TickRate,
		BestOf:           game.DefaultBestOf,
		RoundDuration:    game.RoundDurationSeconds,
		FillWithBots:     true,
		JournalCapacity:  journal.DefaultCapacity,
		JournalMaxAge:    journal.DefaultMaxAge,
		KeyframeInterval: 60,
		ReapGrace:        5 * time.Minute,
		SweepInterval:    30 * time.Second,
	}
}

func (c Config) normalized() Config {
	if c.MaxRooms <= 0 {
		c.MaxRooms = 256
	}
	if c.CountdownSeconds < MinCountdownSeconds || c.CountdownSeconds > MaxCountdownSeconds {
		c.CountdownSeconds = 3
	}
	if c.TickRate <= 0 {
		c.TickRate = game.TickRate
	}
	if c.BestOf <= 0 || c.BestOf%2 == 0 {
		c.BestOf = game.DefaultBestOf
	}
	if c.RoundDuration <= 0 {
		c.RoundDuration = game.RoundDurationSeconds
	}
	if c.JournalCapacity <= 0 {
		c.JournalCapacity = journal.DefaultCapacity
	}
	if c.JournalMaxAge <= 0 {
		c.JournalMaxAge = journal.DefaultMaxAge
	}
	if c.KeyframeInterval <= 0 {
		c.KeyframeInterval = 60
	}
	if c.ReapGrace <= 0 {
		c.ReapGrace = 5 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 30 * time.Second
	}
	return c
}
