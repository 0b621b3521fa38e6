package config

import (
	"flag"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	defaultBaseURL     = "localhost:8081"
	defaultDatabaseDSN = "secretkeeper.db"
	defaultEventBuffer = 256
	defaultOpTimeout   = 10 * time.Second
)

type Config struct {
	// Хранилище и HTTP
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	// Ключи шифрования соли
	EncryptionKey     string `env:"ENCRYPTION_KEY"`
	RootEncryptionKey string `env:"ROOT_ENCRYPTION_KEY"`
	KeysFile          string `env:"KEYS_FILE"`

	// Побочные эффекты
	TelemetryEnabled bool          `env:"TELEMETRY_ENABLED"`
	EventBuffer      int           `env:"EVENT_BUFFER"`
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres DSN или путь к файлу SQLite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "адрес сервера host:port")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "включить HTTPS")
	flag.StringVar(&cfg.KeysFile, "keys-file", cfg.KeysFile, "dotenv-файл с ENCRYPTION_KEY / ROOT_ENCRYPTION_KEY, перечитывается при изменении")
	flag.BoolVar(&cfg.TelemetryEnabled, "telemetry", cfg.TelemetryEnabled, "включить телеметрию")
	flag.IntVar(&cfg.EventBuffer, "event-buffer", cfg.EventBuffer, "размер очереди побочных эффектов")
	flag.DurationVar(&cfg.OperationTimeout, "op-timeout", cfg.OperationTimeout, "таймаут операции")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = defaultDatabaseDSN
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = defaultOpTimeout
	}

	return cfg
}
