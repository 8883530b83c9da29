package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

const (
	TransportREST = "rest"
	TransportSDK  = "sdk"
)

type Config struct {
	// Server
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Gemini AI
	GeminiAPIKey          string  `env:"GEMINI_API_KEY"`
	GeminiModel           string  `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiBaseURL         string  `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiTransport       string  `env:"GEMINI_TRANSPORT" envDefault:"rest"`
	GeminiTemperature     float32 `env:"GEMINI_TEMPERATURE" envDefault:"0.7"`
	GeminiMaxOutputTokens int32   `env:"GEMINI_MAX_OUTPUT_TOKENS" envDefault:"1024"`

	// Concierge
	PersonaFile  string `env:"PERSONA_FILE"`
	ReplyField   string `env:"REPLY_FIELD" envDefault:"reply"`
	HistoryLimit int    `env:"HISTORY_LIMIT" envDefault:"20"`

	// HTTP edge
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	// Honour X-Forwarded-For / X-Real-IP. Only enable behind a proxy that sets them.
	TrustProxyHeaders  bool     `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// Redis (optional, shares rate limit counters between instances)
	RedisURL string `env:"REDIS_URL"`

	// Landing page
	StaticDir string `env:"STATIC_DIR"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// Missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, err := strconv.Atoi(c.Port); err != nil {
		result = multierror.Append(result, fmt.Errorf("PORT must be numeric, got %q", c.Port))
	}
	if strings.TrimSpace(c.GeminiModel) == "" {
		result = multierror.Append(result, errors.New("GEMINI_MODEL must not be empty"))
	}
	switch c.GeminiTransport {
	case TransportREST, TransportSDK:
	default:
		result = multierror.Append(result, fmt.Errorf("GEMINI_TRANSPORT must be %q or %q, got %q", TransportREST, TransportSDK, c.GeminiTransport))
	}
	if c.GeminiTemperature < 0 || c.GeminiTemperature > 2 {
		result = multierror.Append(result, fmt.Errorf("GEMINI_TEMPERATURE must be between 0 and 2, got %v", c.GeminiTemperature))
	}
	if c.GeminiMaxOutputTokens <= 0 {
		result = multierror.Append(result, fmt.Errorf("GEMINI_MAX_OUTPUT_TOKENS must be positive, got %d", c.GeminiMaxOutputTokens))
	}
	if strings.TrimSpace(c.ReplyField) == "" || c.ReplyField == "error" {
		result = multierror.Append(result, fmt.Errorf("REPLY_FIELD must be a non-empty name other than \"error\", got %q", c.ReplyField))
	}
	if c.HistoryLimit < 0 {
		result = multierror.Append(result, fmt.Errorf("HISTORY_LIMIT must not be negative, got %d", c.HistoryLimit))
	}
	if c.RateLimitPerMinute < 0 {
		result = multierror.Append(result, fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute))
	}

	return result.ErrorOrNil()
}

// HasCredential reports whether the upstream API key is configured.
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// Persona returns the persona prompt from PERSONA_FILE, or defaultPersona when unset.
func (c *Config) Persona(defaultPersona string) (string, error) {
	if c.PersonaFile == "" {
		return defaultPersona, nil
	}
	contents, err := os.ReadFile(c.PersonaFile)
	if err != nil {
		return "", fmt.Errorf("failed to read persona file %s: %w", c.PersonaFile, err)
	}
	persona := strings.TrimSpace(string(contents))
	if persona == "" {
		return "", fmt.Errorf("persona file %s is empty", c.PersonaFile)
	}
	return persona, nil
}
