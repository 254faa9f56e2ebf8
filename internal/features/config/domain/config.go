package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"coldcall-sim/backend/internal/retry"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid app config")

// AppConfig represents the application configuration.
type AppConfig struct {
	ChatModel     string       `mapstructure:"chat_model" json:"chat_model" validate:"required"`
	AnalysisModel string       `mapstructure:"analysis_model" json:"analysis_model" validate:"required"`
	Temperature   float32      `mapstructure:"temperature" json:"temperature" validate:"gte=0,lte=2"`
	Retry         RetryConfig  `mapstructure:"retry" json:"retry"`
	Server        ServerConfig `mapstructure:"server" json:"server"`
	LogLevel      string       `mapstructure:"log_level" json:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
}

// RetryConfig bounds the attempts made against the language model.
type RetryConfig struct {
	MaxAttempts    uint    `mapstructure:"max_attempts" json:"max_attempts" validate:"gte=1"`
	MinWaitSeconds float64 `mapstructure:"min_wait_seconds" json:"min_wait_seconds" validate:"gte=0"`
	MaxWaitSeconds float64 `mapstructure:"max_wait_seconds" json:"max_wait_seconds" validate:"gtefield=MinWaitSeconds"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" json:"address" validate:"required"`
}

var validate = validator.New()

// Default returns the configuration used when nothing else is set.
func Default() *AppConfig {
	policy := retry.DefaultPolicy()
	return &AppConfig{
		ChatModel:     "gpt-4",
		AnalysisModel: "gpt-4",
		Temperature:   0,
		Retry: RetryConfig{
			MaxAttempts:    policy.MaxAttempts,
			MinWaitSeconds: policy.MinWait.Seconds(),
			MaxWaitSeconds: policy.MaxWait.Seconds(),
		},
		Server:   ServerConfig{Address: ":8080"},
		LogLevel: "info",
	}
}

// Validate reports every invalid field, wrapped in ErrInvalidConfig.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Policy converts the configured bounds into a retry policy.
func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxAttempts: r.MaxAttempts,
		MinWait:     time.Duration(r.MinWaitSeconds * float64(time.Second)),
		MaxWait:     time.Duration(r.MaxWaitSeconds * float64(time.Second)),
	}
}
