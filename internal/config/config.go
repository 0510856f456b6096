package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores service settings.
type Config struct {
	Port      int
	BaseURL   string
	DB        DB
	Auth      Auth
	Storage   Storage
	Mail      Mail
	Kafka     Kafka
	RateLimit RateLimit
	Pprof     Pprof
	Log       Log
}

// DB holds PostgreSQL connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		d.User, d.Pass, net.JoinHostPort(d.Host, d.Port), d.Name)
}

// Auth configures token issuing.
type Auth struct {
	JWTSecret        string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	PasswordResetTTL time.Duration
}

// Storage drivers.
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

// Storage configures where uploaded images live.
type Storage struct {
	Driver        string
	LocalDir      string
	PublicURL     string
	GCSBucket     string
	UploadMaxSize int64
}

// Mail configures outgoing email.
type Mail struct {
	SendgridAPIKey string
	From           string
}

// Kafka configures the order event producer. No brokers disables publishing.
type Kafka struct {
	Brokers     []string
	OrdersTopic string
}

// RateLimit configures the per-client token bucket limiters.
type RateLimit struct {
	Enabled    bool
	RPS        float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
	AuthRPS    float64
	AuthBurst  int
}

// Pprof configures the debug listener.
type Pprof struct {
	Enabled bool
	Addr    string
	User    string
	Pass    string
}

// Log configures the logger backend.
type Log struct {
	Level   string
	Backend string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:      DefaultPort(),
		BaseURL:   envStr("HTTP_BASE_URL", defaultBaseURL),
		DB:        DefaultDB(),
		Auth:      DefaultAuth(),
		Storage:   DefaultStorage(),
		Kafka:     DefaultKafka(),
		RateLimit: DefaultRateLimit(),
		Pprof:     DefaultPprof(),
		Log:       DefaultLog(),
	}

	var err error
	if cfg.Port, err = envInt("PORT", cfg.Port); err != nil {
		return nil, err
	}

	cfg.DB.Host = envStr("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envStr("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = envStr("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = envStr("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = envStr("POSTGRES_DB", cfg.DB.Name)
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT %q: %w", cfg.DB.Port, err)
	}

	cfg.Auth.JWTSecret = envStr("JWT_SECRET", cfg.Auth.JWTSecret)
	if cfg.Auth.AccessTTL, err = envDuration("JWT_ACCESS_TTL", cfg.Auth.AccessTTL); err != nil {
		return nil, err
	}
	if cfg.Auth.RefreshTTL, err = envDuration("JWT_REFRESH_TTL", cfg.Auth.RefreshTTL); err != nil {
		return nil, err
	}
	if cfg.Auth.PasswordResetTTL, err = envDuration("PASSWORD_RESET_TTL", cfg.Auth.PasswordResetTTL); err != nil {
		return nil, err
	}

	cfg.Storage.Driver = envStr("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.LocalDir = envStr("STORAGE_LOCAL_DIR", cfg.Storage.LocalDir)
	cfg.Storage.PublicURL = envStr("STORAGE_PUBLIC_URL", cfg.BaseURL+"/uploads")
	cfg.Storage.GCSBucket = envStr("STORAGE_GCS_BUCKET", cfg.Storage.GCSBucket)
	maxSize, err := envInt("UPLOAD_MAX_SIZE", int(cfg.Storage.UploadMaxSize))
	if err != nil {
		return nil, err
	}
	cfg.Storage.UploadMaxSize = int64(maxSize)

	cfg.Mail.SendgridAPIKey = envStr("SENDGRID_API_KEY", "")
	cfg.Mail.From = envStr("MAIL_FROM", defaultMailFrom)

	if brokers := envStr("KAFKA_BROKERS", ""); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
	cfg.Kafka.OrdersTopic = envStr("KAFKA_ORDERS_TOPIC", cfg.Kafka.OrdersTopic)

	if cfg.RateLimit.Enabled, err = envBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled); err != nil {
		return nil, err
	}
	if cfg.RateLimit.RPS, err = envFloat("RATE_LIMIT_RPS", cfg.RateLimit.RPS); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = envInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst); err != nil {
		return nil, err
	}
	if cfg.RateLimit.TTL, err = envDuration("RATE_LIMIT_TTL", cfg.RateLimit.TTL); err != nil {
		return nil, err
	}
	if cfg.RateLimit.MaxBuckets, err = envInt("RATE_LIMIT_MAX_BUCKETS", cfg.RateLimit.MaxBuckets); err != nil {
		return nil, err
	}
	if cfg.RateLimit.AuthRPS, err = envFloat("AUTH_RATE_LIMIT_RPS", cfg.RateLimit.AuthRPS); err != nil {
		return nil, err
	}
	if cfg.RateLimit.AuthBurst, err = envInt("AUTH_RATE_LIMIT_BURST", cfg.RateLimit.AuthBurst); err != nil {
		return nil, err
	}

	if cfg.Pprof.Enabled, err = envBool("PPROF_ENABLED", cfg.Pprof.Enabled); err != nil {
		return nil, err
	}
	cfg.Pprof.Addr = envStr("PPROF_ADDR", cfg.Pprof.Addr)
	cfg.Pprof.User = envStr("PPROF_USER", cfg.Pprof.User)
	cfg.Pprof.Pass = envStr("PPROF_PASS", cfg.Pprof.Pass)

	cfg.Log.Level = envStr("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Backend = envStr("LOG_BACKEND", cfg.Log.Backend)

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.Storage.Driver {
	case StorageLocal:
	case StorageGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("STORAGE_GCS_BUCKET is required for gcs driver")
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}
	if c.Storage.UploadMaxSize <= 0 {
		return fmt.Errorf("invalid UPLOAD_MAX_SIZE: %d", c.Storage.UploadMaxSize)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	switch c.Log.Backend {
	case LogBackendSlog, LogBackendLogrus:
	default:
		return fmt.Errorf("unknown log backend: %q", c.Log.Backend)
	}
	return nil
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
