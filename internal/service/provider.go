// Package service holds the model client implementations behind the agent's
// ModelClient boundary.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vooagent/voo/internal/agent"
	"github.com/vooagent/voo/internal/security"
)

// Provider names a completion backend
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
)

var providerAliases = map[string]Provider{
	"gemini":    ProviderGemini,
	"google":    ProviderGemini,
	"anthropic": ProviderAnthropic,
	"claude":    ProviderAnthropic,
}

// ParseProvider resolves a configured provider name. Empty means Gemini.
func ParseProvider(name string) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return ProviderGemini, nil
	}
	if p, ok := providerAliases[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown provider %q (want gemini or anthropic)", name)
}

// DefaultModel returns the model used when none is configured.
func (p Provider) DefaultModel() string {
	if p == ProviderAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultGeminiModel
}

// ClientConfig selects and configures a model client
type ClientConfig struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
}

// NewModelClient builds the client for cfg.Provider.
func NewModelClient(ctx context.Context, cfg ClientConfig) (agent.ModelClient, error) {
	provider, err := ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = provider.DefaultModel()
	}

	log.Info().
		Str("provider", string(provider)).
		Str("model", model).
		Str("api_key", security.MaskSecret(cfg.APIKey)).
		Str("base_url", cfg.BaseURL).
		Msg("model client configured")

	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, model, cfg.BaseURL, cfg.MaxTokens), nil
	default:
		client, err := NewGeminiClient(ctx, cfg.APIKey, model, cfg.BaseURL, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
