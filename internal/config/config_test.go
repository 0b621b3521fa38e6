package config

import (
	"flag"
	"os"
	"testing"
	"time"
)

// resetFlagSet создаёт новый FlagSet перед каждым вызовом NewConfig,
// чтобы избежать повторной регистрации одних и тех же флагов между тестами.
func resetFlagSet(t *testing.T) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	// подавляем вывод парсера флагов в тестах
	flag.CommandLine.SetOutput(os.Stderr)
}

func TestNewConfig_DefaultsWhenEnvEmpty(t *testing.T) {
	t.Setenv("DATABASE_URI", "")
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("BASE_URL", "")
	t.Setenv("EVENT_BUFFER", "")
	t.Setenv("OPERATION_TIMEOUT", "")
	t.Setenv("TELEMETRY_ENABLED", "")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.AuthSecret != "dev-secret-key" {
		t.Fatalf("AuthSecret default expected 'dev-secret-key', got %q", cfg.AuthSecret)
	}
	if cfg.DatabaseDSN != "secretkeeper.db" {
		t.Fatalf("DatabaseDSN default expected 'secretkeeper.db', got %q", cfg.DatabaseDSN)
	}
	if cfg.BaseURL != "localhost:8081" {
		t.Fatalf("BaseURL default expected 'localhost:8081', got %q", cfg.BaseURL)
	}
	if cfg.EventBuffer != 256 {
		t.Fatalf("EventBuffer default expected 256, got %d", cfg.EventBuffer)
	}
	if cfg.OperationTimeout != 10*time.Second {
		t.Fatalf("OperationTimeout default expected 10s, got %s", cfg.OperationTimeout)
	}
	if cfg.TelemetryEnabled {
		t.Fatalf("telemetry must be off by default")
	}
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("BASE_URL", "example.com:443")
	t.Setenv("AUTH_SECRET", "top")
	t.Setenv("ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("KEYS_FILE", "/etc/secretkeeper/keys.env")
	t.Setenv("TELEMETRY_ENABLED", "true")
	t.Setenv("EVENT_BUFFER", "16")
	t.Setenv("OPERATION_TIMEOUT", "3s")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.BaseURL != "example.com:443" {
		t.Fatalf("BaseURL expected 'example.com:443', got %q", cfg.BaseURL)
	}
	if cfg.AuthSecret != "top" {
		t.Fatalf("AuthSecret expected from env 'top', got %q", cfg.AuthSecret)
	}
	if cfg.EncryptionKey != "0123456789abcdef0123456789abcdef" {
		t.Fatalf("EncryptionKey not read from env")
	}
	if cfg.KeysFile != "/etc/secretkeeper/keys.env" {
		t.Fatalf("KeysFile expected from env, got %q", cfg.KeysFile)
	}
	if !cfg.TelemetryEnabled {
		t.Fatalf("TelemetryEnabled expected true")
	}
	if cfg.EventBuffer != 16 {
		t.Fatalf("EventBuffer expected 16, got %d", cfg.EventBuffer)
	}
	if cfg.OperationTimeout != 3*time.Second {
		t.Fatalf("OperationTimeout expected 3s, got %s", cfg.OperationTimeout)
	}
}

func TestNewConfig_InvalidBaseURLFallback(t *testing.T) {
	// Невалидный BASE_URL (со схемой) должен откатиться на localhost:8081
	t.Setenv("BASE_URL", "http://bad:8080")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.BaseURL != "localhost:8081" {
		t.Fatalf("invalid BASE_URL must fallback to 'localhost:8081', got %q", cfg.BaseURL)
	}
}
