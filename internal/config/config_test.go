package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClockOr(t *testing.T) {
	t.Setenv("TEST_CLOCK", "07:30")
	require.Equal(t, 7*time.Hour+30*time.Minute, clockOr("TEST_CLOCK", 0))

	require.Equal(t, 6*time.Hour, clockOr("TEST_CLOCK_UNSET", 6*time.Hour))
}

func TestIntOrAndDurOr(t *testing.T) {
	t.Setenv("TEST_INT", "3")
	require.Equal(t, 3, intOr("TEST_INT", 0))
	require.Equal(t, 7, intOr("TEST_INT_UNSET", 7))

	t.Setenv("TEST_DUR", "90s")
	require.Equal(t, 90*time.Second, durOr("TEST_DUR", time.Minute))
	require.Equal(t, time.Minute, durOr("TEST_DUR_UNSET", time.Minute))
}

func TestLoadRateLimitConfigClampsValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-2")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	require.Equal(t, 1, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	require.Equal(t, 2*time.Second, cfg.RefillInterval)
	require.Equal(t, 10*time.Second, cfg.TTL)
}
