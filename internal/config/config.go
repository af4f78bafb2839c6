package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes configuration values to the rest of the application.
// Handlers and services depend on this interface so tests can supply their own values.
type Provider interface {
	GetAppAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string
	GetCodeStore() string
	GetRedisURL() string
	GetCodeTTL() time.Duration
	GetResendInterval() time.Duration
	GetCodeMaxAttempts() int
	GetEmailProvider() string
	GetEmailAPIKey() string
	GetEmailSender() string
	GetFormOverridesFile() string
	GetDefaultLanguage() string
	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetZipkinURL() string
}

// Config holds all configuration for the application.
type Config struct {
	AppAddr           string
	AppBaseURL        string
	SessionSecret     string
	CodeStore         string
	RedisURL          string
	CodeTTL           time.Duration
	ResendInterval    time.Duration
	CodeMaxAttempts   int
	EmailProvider     string
	EmailAPIKey       string
	EmailSender       string
	FormOverridesFile string
	DefaultLanguage   string
	TracingEnabled    bool
	TracingService    string
	ZipkinURL         string
}

// New loads configuration from a .env file, if present, and the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv reads configuration from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("required environment variable SESSION_SECRET is not set")
	}
	return cfg, nil
}

// NewForTools loads configuration for command-line tools that never serve
// HTTP, so SESSION_SECRET is optional.
func NewForTools() (*Config, error) {
	_ = godotenv.Load()
	return read()
}

func read() (*Config, error) {
	cfg := &Config{
		AppAddr:           getEnv("APP_ADDR", ":8080"),
		AppBaseURL:        getEnv("APP_BASE_URL", "http://localhost:8080"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		CodeStore:         getEnv("CODE_STORE", "memory"),
		RedisURL:          os.Getenv("REDIS_URL"),
		EmailProvider:     getEnv("EMAIL_PROVIDER", "log"),
		EmailAPIKey:       os.Getenv("EMAIL_API_KEY"),
		EmailSender:       os.Getenv("EMAIL_SENDER"),
		FormOverridesFile: os.Getenv("FORM_OVERRIDES_FILE"),
		DefaultLanguage:   getEnv("DEFAULT_LANGUAGE", "en"),
		TracingService:    getEnv("TRACING_SERVICE_NAME", "confirmflow"),
		ZipkinURL:         getEnv("ZIPKIN_URL", "http://localhost:9411/api/v2/spans"),
	}

	var err error
	if cfg.CodeTTL, err = getDuration("CODE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ResendInterval, err = getDuration("RESEND_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CodeMaxAttempts, err = getInt("CODE_MAX_ATTEMPTS", 5); err != nil {
		return nil, err
	}
	if cfg.TracingEnabled, err = getBool("TRACING_ENABLED", false); err != nil {
		return nil, err
	}

	switch cfg.CodeStore {
	case "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("CODE_STORE is 'redis' but REDIS_URL is not set")
		}
	default:
		return nil, fmt.Errorf("unknown code store: %s", cfg.CodeStore)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func (c *Config) GetAppAddr() string               { return c.AppAddr }
func (c *Config) GetAppBaseURL() string            { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string         { return c.SessionSecret }
func (c *Config) GetCodeStore() string             { return c.CodeStore }
func (c *Config) GetRedisURL() string              { return c.RedisURL }
func (c *Config) GetCodeTTL() time.Duration        { return c.CodeTTL }
func (c *Config) GetResendInterval() time.Duration { return c.ResendInterval }
func (c *Config) GetCodeMaxAttempts() int          { return c.CodeMaxAttempts }
func (c *Config) GetEmailProvider() string         { return c.EmailProvider }
func (c *Config) GetEmailAPIKey() string           { return c.EmailAPIKey }
func (c *Config) GetEmailSender() string           { return c.EmailSender }
func (c *Config) GetFormOverridesFile() string     { return c.FormOverridesFile }
func (c *Config) GetDefaultLanguage() string       { return c.DefaultLanguage }
func (c *Config) GetTracingEnabled() bool          { return c.TracingEnabled }
func (c *Config) GetTracingServiceName() string    { return c.TracingService }
func (c *Config) GetZipkinURL() string             { return c.ZipkinURL }
