// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store driver names accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Generator modes accepted by GENERATOR_MODE.
const (
	GeneratorMock   = "mock"
	GeneratorOpenAI = "openai"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	AllowedOrigins []string
	Store          StoreConfig
	Generator      GeneratorConfig
	Extract        ExtractConfig
	RateLimit      RateLimitConfig
	AuditLog       AuditLogConfig
}

// StoreConfig selects and parameterizes the named-value store backend.
type StoreConfig struct {
	Driver      string // memory, sqlite or postgres
	DBPath      string // sqlite file path
	DatabaseURL string // postgres connection string
}

// GeneratorConfig selects the post generator backend. The mode is an explicit
// switch; it is never inferred from which credentials happen to be set.
type GeneratorConfig struct {
	Mode      string // mock or openai
	MaxTokens int
	OpenAI    OpenAIConfig
}

// OpenAIConfig points at an Azure OpenAI chat-completions deployment.
type OpenAIConfig struct {
	Endpoint   string
	Deployment string
	APIVersion string
	APIKey     string

	// Client-credentials token endpoint, used instead of APIKey when set.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
}

// ExtractConfig controls URL content extraction.
type ExtractConfig struct {
	Timeout  time.Duration
	MaxChars int
}

// RateLimitConfig controls per-client request limiting on the chat endpoint.
type RateLimitConfig struct {
	Enabled   bool
	PerMinute int
}

// AuditLogConfig controls NDJSON generation audit logging.
type AuditLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("AUDIT_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		Store: StoreConfig{
			Driver:      getEnv("STORE_DRIVER", DriverSQLite),
			DBPath:      getEnv("DB_PATH", "./data/postgen.db"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Generator: GeneratorConfig{
			Mode:      getEnv("GENERATOR_MODE", GeneratorMock),
			MaxTokens: getEnvInt("GENERATOR_MAX_TOKENS", 800),
			OpenAI: OpenAIConfig{
				Endpoint:     getEnv("OPENAI_ENDPOINT", ""),
				Deployment:   getEnv("OPENAI_DEPLOYMENT", ""),
				APIVersion:   getEnv("OPENAI_API_VERSION", "2024-02-15-preview"),
				APIKey:       getEnv("OPENAI_API_KEY", ""),
				TokenURL:     getEnv("TOKEN_URL", ""),
				ClientID:     getEnv("TOKEN_CLIENT_ID", ""),
				ClientSecret: getEnv("TOKEN_CLIENT_SECRET", ""),
				Scope:        getEnv("TOKEN_SCOPE", ""),
			},
		},
		Extract: ExtractConfig{
			Timeout:  getEnvDuration("EXTRACT_TIMEOUT", 10*time.Second),
			MaxChars: getEnvInt("EXTRACT_MAX_CHARS", 1500),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getEnvBool("RATE_LIMIT_ENABLED", true),
			PerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
		},
		AuditLog: AuditLogConfig{
			Enabled:   getEnvBool("AUDIT_LOG_ENABLED", false),
			Dir:       getEnv("AUDIT_LOG_DIR", "./data/logs/generations"),
			QueueSize: queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS cannot be empty")
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty when STORE_DRIVER=sqlite")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL cannot be empty when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Generator.Mode {
	case GeneratorMock:
	case GeneratorOpenAI:
		if c.Generator.OpenAI.Endpoint == "" {
			return fmt.Errorf("OPENAI_ENDPOINT cannot be empty when GENERATOR_MODE=openai")
		}
		if c.Generator.OpenAI.Deployment == "" {
			return fmt.Errorf("OPENAI_DEPLOYMENT cannot be empty when GENERATOR_MODE=openai")
		}
		if c.Generator.OpenAI.APIKey == "" && c.Generator.OpenAI.TokenURL == "" {
			return fmt.Errorf("GENERATOR_MODE=openai requires OPENAI_API_KEY or TOKEN_URL")
		}
	default:
		return fmt.Errorf("unknown GENERATOR_MODE %q", c.Generator.Mode)
	}
	if c.Generator.MaxTokens <= 0 {
		return fmt.Errorf("GENERATOR_MAX_TOKENS must be > 0")
	}

	if c.Extract.Timeout <= 0 {
		return fmt.Errorf("EXTRACT_TIMEOUT must be > 0")
	}
	if c.Extract.MaxChars <= 0 {
		return fmt.Errorf("EXTRACT_MAX_CHARS must be > 0")
	}

	if c.RateLimit.Enabled && c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be > 0")
	}

	if c.AuditLog.Enabled {
		if c.AuditLog.Dir == "" {
			return fmt.Errorf("AUDIT_LOG_DIR cannot be empty")
		}
		if c.AuditLog.QueueSize <= 0 {
			return fmt.Errorf("AUDIT_LOG_QUEUE_SIZE must be > 0")
		}
	}

	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
