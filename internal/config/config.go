// Package config centralizes tunable parameters for the server.
// Values come from environment variables (loaded from .env by main)
// with defaults matching the original game balance.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the runtime parameters for one server instance.
type Config struct {
	Addr     string // HTTP/WebSocket listen address
	SavePath string // JSON save file location
	DBPath   string // SQLite database location

	FramePeriod   time.Duration // outer loop cadence
	ClickCooldown time.Duration // minimum gap between accepted clicks
	TickPeriod    time.Duration // passive income cadence

	StartingMoney float64
}

// FromEnv builds a Config from the environment, falling back to defaults.
func FromEnv() Config {
	return Config{
		Addr:          getString("CLICKER_ADDR", ":8080"),
		SavePath:      getString("CLICKER_SAVE_PATH", "savegame.json"),
		DBPath:        getString("CLICKER_DB_PATH", "clicker.db"),
		FramePeriod:   getDuration("CLICKER_FRAME_PERIOD", 50*time.Millisecond),
		ClickCooldown: getDuration("CLICKER_CLICK_COOLDOWN", 200*time.Millisecond),
		TickPeriod:    getDuration("CLICKER_TICK_PERIOD", time.Second),
		StartingMoney: getFloat("CLICKER_STARTING_MONEY", 0),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
