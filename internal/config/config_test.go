package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "ALLOWED_ORIGINS", "STORE_DRIVER", "DB_PATH", "DATABASE_URL",
		"GENERATOR_MODE", "GENERATOR_MAX_TOKENS",
		"OPENAI_ENDPOINT", "OPENAI_DEPLOYMENT", "OPENAI_API_VERSION", "OPENAI_API_KEY",
		"TOKEN_URL", "TOKEN_CLIENT_ID", "TOKEN_CLIENT_SECRET", "TOKEN_SCOPE",
		"EXTRACT_TIMEOUT", "EXTRACT_MAX_CHARS",
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_PER_MINUTE",
		"AUDIT_LOG_ENABLED", "AUDIT_LOG_DIR", "AUDIT_LOG_QUEUE_SIZE",
	}
	for _, k := range keys {
		// t.Setenv registers restoration of the original value; the variable
		// then has to be unset so LookupEnv misses and defaults apply.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("Store.Driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Generator.Mode != GeneratorMock {
		t.Errorf("Generator.Mode = %q, want mock", cfg.Generator.Mode)
	}
	if cfg.Extract.Timeout != 10*time.Second {
		t.Errorf("Extract.Timeout = %v, want 10s", cfg.Extract.Timeout)
	}
	if cfg.Extract.MaxChars != 1500 {
		t.Errorf("Extract.MaxChars = %d, want 1500", cfg.Extract.MaxChars)
	}
	if cfg.AuditLog.Enabled {
		t.Error("AuditLog.Enabled = true, want disabled by default")
	}
}

func TestLoadAuditLogOptIn(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUDIT_LOG_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.AuditLog.Enabled {
		t.Error("AuditLog.Enabled = false after opt-in")
	}
	if cfg.AuditLog.Dir == "" || cfg.AuditLog.QueueSize <= 0 {
		t.Errorf("AuditLog defaults incomplete: %+v", cfg.AuditLog)
	}
}

func TestLoadOriginList(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, http://localhost:3000 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := []string{"https://app.example.com", "http://localhost:3000"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "redis")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "STORE_DRIVER") {
		t.Fatalf("Load() error = %v, want unknown STORE_DRIVER", err)
	}
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("Load() error = %v, want DATABASE_URL requirement", err)
	}
}

func TestLoadOpenAIRequiresEndpoint(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENERATOR_MODE", "openai")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "OPENAI_ENDPOINT") {
		t.Fatalf("Load() error = %v, want OPENAI_ENDPOINT requirement", err)
	}
}

func TestLoadOpenAIRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENERATOR_MODE", "openai")
	t.Setenv("OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("OPENAI_DEPLOYMENT", "gpt-4o")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY or TOKEN_URL") {
		t.Fatalf("Load() error = %v, want credential requirement", err)
	}

	t.Setenv("TOKEN_URL", "https://login.example.com/oauth2/token")
	if _, err := Load(); err != nil {
		t.Fatalf("Load() with token URL error: %v", err)
	}
}

func TestLoadModeIsExplicit(t *testing.T) {
	clearEnv(t)
	// Credentials alone must not flip the generator mode.
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Generator.Mode != GeneratorMock {
		t.Errorf("Generator.Mode = %q, want mock despite API key being set", cfg.Generator.Mode)
	}
}
