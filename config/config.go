// Package config loads process-level settings from the environment,
// optionally seeded by a .env file (grounded on rgonzalez12-dbd-analytics's
// cmd/app/main.go env-loading sequence).
package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every setting the host process needs at startup.
type Config struct {
	SocketPath   string
	StreamAddr   string
	DebugAddr    string
	Seed         uint64
	LogLevel     slog.Level
	MapWidth     float64
	MapHeight    float64
}

// Load reads .env (if present) then the environment, applying defaults for
// anything unset.
func Load() Config {
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envFile); err == nil {
			slog.Info("loaded environment file", "file", envFile)
			break
		}
	}

	cfg := Config{
		SocketPath: getString("DOMINION_SOCKET_PATH", "/tmp/dominion-core.sock"),
		StreamAddr: getString("DOMINION_STREAM_ADDR", ":7777"),
		DebugAddr:  getString("DOMINION_DEBUG_ADDR", ":7778"),
		Seed:       getUint64("DOMINION_SEED", 1),
		LogLevel:   slog.LevelInfo,
		MapWidth:   getFloat("DOMINION_MAP_WIDTH", 2000),
		MapHeight:  getFloat("DOMINION_MAP_HEIGHT", 2000),
	}
	if os.Getenv("DOMINION_LOG_LEVEL") == "debug" {
		cfg.LogLevel = slog.LevelDebug
	}
	return cfg
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getUint64(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		slog.Warn("invalid uint env var, using default", "key", key, "value", v)
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid float env var, using default", "key", key, "value", v)
		return def
	}
	return f
}
