package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("ETH_API_URL", "")
	t.Setenv("BALANCE_CACHE_TTL", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("ADMIN_TOKEN", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://ethereum-api.xyz", cfg.EthAPIURL)
	assert.Equal(t, 30*time.Second, cfg.EthAPITimeout)
	assert.Equal(t, time.Minute, cfg.BalanceCacheTTL)
	assert.Equal(t, "orders", cfg.OrdersTopic)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.AdminToken)
}

func TestLoad_AdminToken(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "s3cret")
	t.Setenv("SESSION_TTL", "15m")

	cfg := Load()

	assert.Equal(t, "s3cret", cfg.AdminToken)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "go duration", value: "90s", want: 90 * time.Second},
		{name: "plain seconds", value: "5", want: 5 * time.Second},
		{name: "garbage falls back", value: "soon", want: time.Minute},
		{name: "empty falls back", value: "", want: time.Minute},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", testCase.value)
			assert.Equal(t, testCase.want, getDuration("TEST_DURATION", time.Minute))
		})
	}
}
