package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldcall-sim/backend/internal/retry"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gpt-4", cfg.ChatModel)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, retry.DefaultPolicy(), cfg.Retry.Policy())
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*AppConfig){
		"empty chat model":   func(c *AppConfig) { c.ChatModel = "" },
		"no attempts":        func(c *AppConfig) { c.Retry.MaxAttempts = 0 },
		"inverted waits":     func(c *AppConfig) { c.Retry.MinWaitSeconds, c.Retry.MaxWaitSeconds = 5, 1 },
		"unknown log level":  func(c *AppConfig) { c.LogLevel = "loud" },
		"temperature too hi": func(c *AppConfig) { c.Temperature = 3 },
		"empty address":      func(c *AppConfig) { c.Server.Address = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestRetryConfigPolicy_FractionalSeconds(t *testing.T) {
	policy := RetryConfig{MaxAttempts: 3, MinWaitSeconds: 0.5, MaxWaitSeconds: 2}.Policy()

	assert.Equal(t, retry.Policy{MaxAttempts: 3, MinWait: 500 * time.Millisecond, MaxWait: 2 * time.Second}, policy)
}
