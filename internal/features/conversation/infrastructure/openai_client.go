package infrastructure

import (
	"errors"
	"math"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrMissingCredential is returned before any remote call when no API key is known.
var ErrMissingCredential = errors.New("please add your OpenAI API key to continue; obtain one at https://platform.openai.com/account/api-keys")

// ClientConfig configures the OpenAI client.
type ClientConfig struct {
	APIKey  string
	BaseURL string // optional, for proxies and tests
}

// DefaultAPIKey reads OPENAI_API_KEY from the environment.
func DefaultAPIKey() string {
	return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
}

// NewOpenAIClient creates a new OpenAI client; the API key is required.
func NewOpenAIClient(cfg ClientConfig) (*openai.Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	config := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return openai.NewClientWithConfig(config), nil
}

// Temperature maps t onto the request field. The field is omitempty, so an
// exact 0 would be dropped and the API default (1) used instead.
func Temperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
