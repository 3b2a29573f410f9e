package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configuration errors raised before any outbound request is made.
var (
	ErrMissingSerperKey = errors.New("SERPER_API_KEY is not configured")
	ErrMissingLLMKey    = errors.New("LLM API key is not configured")
)

// LLM provider names.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string

	// Server
	ServerAddr string
	BaseURL    string

	// Storage
	DatabaseURL string // empty = in-memory record log
	RedisURL    string // empty = in-memory rate limiter and sessions
	RecordsMax  int

	// Search provider
	SerperAPIKey   string
	SerperEndpoint string
	SearchTimeout  time.Duration

	// LLM
	LLMProvider     string
	LLMModel        string
	LLMBaseURL      string
	GeminiAPIKey    string
	AnthropicAPIKey string
	LLMTimeout      time.Duration
	LLMRetryDelay   time.Duration // first backoff step; grows linearly per attempt

	// Scraper
	ScrapeTimeout time.Duration

	// Pipeline
	DefaultTargetAudience string

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Rate limiting (requests per minute per IP)
	RateLimitMax int

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "Outreach"
	SiteTagline string // env: SITE_TAGLINE
	SiteFooter  string // env: SITE_FOOTER
	SiteLogoURL string // env: SITE_LOGO_URL, default: "" (no logo, text only)
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ServerAddr: getEnv("SERVER_ADDR", ":3000"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:3000"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		RecordsMax:  getEnvInt("RECORDS_MAX", 1000),

		SerperAPIKey:   getEnv("SERPER_API_KEY", ""),
		SerperEndpoint: getEnv("SERPER_ENDPOINT", "https://google.serper.dev/search"),
		SearchTimeout:  getEnvDuration("SEARCH_TIMEOUT", 15*time.Second),

		LLMProvider:     getEnv("LLM_PROVIDER", ProviderGemini),
		LLMModel:        getEnv("LLM_MODEL", ""),
		LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
		GeminiAPIKey:    getEnv("GOOGLE_GEMINI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		LLMRetryDelay:   getEnvDuration("LLM_RETRY_DELAY", 10*time.Second),

		ScrapeTimeout: getEnvDuration("SCRAPE_TIMEOUT", 10*time.Second),

		DefaultTargetAudience: getEnv("DEFAULT_TARGET_AUDIENCE", "구조/토목 엔지니어"),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),
		RateLimitMax:     getEnvInt("RATE_LIMIT_MAX", 60),

		SiteTitle:   getEnv("SITE_TITLE", "Outreach"),
		SiteTagline: getEnv("SITE_TAGLINE", "Find community discussions for your content"),
		SiteFooter:  getEnv("SITE_FOOTER", "Outreach - community link tracking"),
		SiteLogoURL: getEnv("SITE_LOGO_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsOIDCEnabled returns true if operator login is configured.
func (c *Config) IsOIDCEnabled() bool {
	return c.OIDCIssuer != ""
}

// HasDatabase returns true if the record log should be stored in Postgres.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasRedis returns true if rate-limit and session state should live in Redis.
func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

// LLMAPIKey returns the API key for the configured LLM provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.GeminiAPIKey
}

// ValidateProcessing checks the credentials the batch pipeline needs.
func (c *Config) ValidateProcessing() error {
	if c.LLMAPIKey() == "" {
		return fmt.Errorf("%w (provider %s)", ErrMissingLLMKey, c.LLMProvider)
	}
	if c.SerperAPIKey == "" {
		return ErrMissingSerperKey
	}
	return nil
}
