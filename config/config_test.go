package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadAppliesDefaultsWhenUnset(t *testing.T) {
	clearDominionEnv(t)
	cfg := Load()

	assert.Equal(t, "/tmp/dominion-core.sock", cfg.SocketPath)
	assert.Equal(t, ":7777", cfg.StreamAddr)
	assert.Equal(t, uint64(1), cfg.Seed)
}

func TestLoadReadsOverridesFromEnv(t *testing.T) {
	clearDominionEnv(t)
	t.Setenv("DOMINION_SOCKET_PATH", "/tmp/custom.sock")
	t.Setenv("DOMINION_SEED", "42")
	t.Setenv("DOMINION_LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "/tmp/custom.sock", cfg.SocketPath)
	assert.Equal(t, uint64(42), cfg.Seed)
}

func TestLoadFallsBackOnInvalidNumericEnv(t *testing.T) {
	clearDominionEnv(t)
	t.Setenv("DOMINION_SEED", "not-a-number")

	cfg := Load()
	assert.Equal(t, uint64(1), cfg.Seed)
}

func clearDominionEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DOMINION_SOCKET_PATH", "DOMINION_STREAM_ADDR", "DOMINION_DEBUG_ADDR",
		"DOMINION_SEED", "DOMINION_LOG_LEVEL", "DOMINION_MAP_WIDTH", "DOMINION_MAP_HEIGHT",
	} {
		os.Unsetenv(key)
	}
}
