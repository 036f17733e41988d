// Package config loads voo settings from defaults, an optional TOML file and
// environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Model provider
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"` // override for proxies and tests
	MaxTokens int    `toml:"max_tokens"`

	// Logging
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"` // console or json
	AuditLogging bool   `toml:"audit_logging"`

	// Agent loop
	MaxRounds        int    `toml:"max_rounds"`
	ModelTimeout     int    `toml:"model_timeout"` // seconds
	ToolTimeout      int    `toml:"tool_timeout"`  // seconds
	ToolConcurrency  int    `toml:"tool_concurrency"`
	MaxRetries       int    `toml:"max_retries"`
	RetryBaseDelayMS int    `toml:"retry_base_delay_ms"`
	SystemPrompt     string `toml:"system_prompt"`

	// Tools
	WorkspaceRoot  string `toml:"workspace_root"` // empty = unrestricted
	MaxFileBytes   int64  `toml:"max_file_bytes"`
	MaxInputLength int    `toml:"max_input_length"`

	// Inspector HTTP server, disabled when the address is empty
	InspectorAddr  string `toml:"inspector_addr"`
	InspectorToken string `toml:"inspector_token"`
}

// Defaults returns a config with every default applied.
func Defaults() *Config {
	return &Config{
		Provider:         DefaultProvider,
		MaxTokens:        DefaultMaxTokens,
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
		MaxRounds:        DefaultMaxRounds,
		ModelTimeout:     DefaultModelTimeout,
		ToolTimeout:      DefaultToolTimeout,
		ToolConcurrency:  DefaultToolConcurrency,
		MaxRetries:       DefaultMaxRetries,
		RetryBaseDelayMS: DefaultRetryBaseDelayMS,
		SystemPrompt:     DefaultSystemPrompt,
		MaxFileBytes:     DefaultMaxFileBytes,
		MaxInputLength:   DefaultMaxInputLength,
	}
}

// Load builds the config: defaults, then the TOML file named by VOO_CONFIG,
// then environment overrides. A .env file (VOO_ENV_FILE, default ".env") is
// loaded first; it never replaces variables already set in the environment.
func Load() (*Config, error) {
	if err := loadDotEnv(getEnv("VOO_ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := Defaults()

	if path := getEnv("VOO_CONFIG", ""); path != "" {
		if err := loadTOML(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		log.Debug().Str("file", path).Msg("loaded environment file")
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("read env file %s: %w", path, err)
}

func loadTOML(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		log.Warn().Str("key", key.String()).Str("file", path).Msg("unknown config key ignored")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("VOO_PROVIDER", ""); v != "" {
		cfg.Provider = v
	}
	if v := getEnv("VOO_MODEL", ""); v != "" {
		cfg.Model = v
	}
	if v := getEnv("VOO_BASE_URL", ""); v != "" {
		cfg.BaseURL = v
	}
	if v := getEnv("VOO_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("VOO_LOG_FORMAT", ""); v != "" {
		cfg.LogFormat = v
	}
	if v := getEnv("VOO_AUDIT_LOGGING", ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AuditLogging = b
		} else {
			warnBadEnv("VOO_AUDIT_LOGGING", v)
		}
	}
	envInt("VOO_MAX_ROUNDS", &cfg.MaxRounds)
	envInt("VOO_MODEL_TIMEOUT", &cfg.ModelTimeout)
	envInt("VOO_TOOL_TIMEOUT", &cfg.ToolTimeout)
	envInt("VOO_TOOL_CONCURRENCY", &cfg.ToolConcurrency)
	envInt("VOO_MAX_RETRIES", &cfg.MaxRetries)
	envInt("VOO_RETRY_BASE_DELAY_MS", &cfg.RetryBaseDelayMS)
	envInt("VOO_MAX_TOKENS", &cfg.MaxTokens)
	envInt("VOO_MAX_INPUT_LENGTH", &cfg.MaxInputLength)
	if v := getEnv("VOO_MAX_FILE_BYTES", ""); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxFileBytes = n
		} else {
			warnBadEnv("VOO_MAX_FILE_BYTES", v)
		}
	}
	if v := getEnv("VOO_WORKSPACE_ROOT", ""); v != "" {
		cfg.WorkspaceRoot = v
	}
	if v := getEnv("VOO_INSPECTOR_ADDR", ""); v != "" {
		cfg.InspectorAddr = v
	}
	if v := getEnv("VOO_INSPECTOR", ""); (v == "true" || v == "1") && cfg.InspectorAddr == "" {
		cfg.InspectorAddr = DefaultInspectorAddr
	}
	if v := getEnv("VOO_INSPECTOR_TOKEN", ""); v != "" {
		cfg.InspectorToken = v
	}

	// the dedicated key wins, then the provider's conventional variable
	if v := getEnv("VOO_API_KEY", ""); v != "" {
		cfg.APIKey = v
	} else if cfg.APIKey == "" {
		cfg.APIKey = getEnv(providerKeyEnv(cfg.Provider), "")
	}
}

func providerKeyEnv(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// Validate rejects configs the agent cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case "", "gemini", "google", "anthropic", "claude":
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}
	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("api key is missing: set VOO_API_KEY or %s", providerKeyEnv(c.Provider)))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format must be console or json, got %q", c.LogFormat))
	}

	positive := []struct {
		name  string
		value int64
	}{
		{"max_rounds", int64(c.MaxRounds)},
		{"model_timeout", int64(c.ModelTimeout)},
		{"tool_timeout", int64(c.ToolTimeout)},
		{"tool_concurrency", int64(c.ToolConcurrency)},
		{"max_tokens", int64(c.MaxTokens)},
		{"max_file_bytes", c.MaxFileBytes},
		{"max_input_length", int64(c.MaxInputLength)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", p.name, p.value))
		}
	}
	if c.MaxRetries < 0 || c.RetryBaseDelayMS < 0 {
		errs = append(errs, errors.New("max_retries and retry_base_delay_ms must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) ModelTimeoutDuration() time.Duration {
	return time.Duration(c.ModelTimeout) * time.Second
}

func (c *Config) ToolTimeoutDuration() time.Duration {
	return time.Duration(c.ToolTimeout) * time.Second
}

func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMS) * time.Millisecond
}

// envInt overrides *dst when key holds an integer. Anything else is reported
// and the current value kept.
func envInt(key string, dst *int) {
	v := getEnv(key, "")
	if v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		warnBadEnv(key, v)
		return
	}
	*dst = n
}

func warnBadEnv(key, value string) {
	log.Warn().Str("key", key).Str("value", value).Msg("ignoring malformed environment value")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
