package config

import "time"

const defaultPort = 8080

const (
	defaultBaseURL  = "http://localhost:8080"
	defaultMailFrom = "no-reply@shop.local"
)

// Log backends.
const (
	LogBackendSlog   = "slog"
	LogBackendLogrus = "logrus"
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultAuth = Auth{
	JWTSecret:        "change-me",
	AccessTTL:        15 * time.Minute,
	RefreshTTL:       720 * time.Hour,
	PasswordResetTTL: time.Hour,
}

var defaultStorage = Storage{
	Driver:        StorageLocal,
	LocalDir:      "public/uploads",
	UploadMaxSize: 2 << 20,
}

var defaultKafka = Kafka{
	OrdersTopic: "shop.orders",
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	RPS:        20,
	Burst:      40,
	TTL:        10 * time.Minute,
	MaxBuckets: 100_000,
	AuthRPS:    1,
	AuthBurst:  5,
}

var defaultPprof = Pprof{
	Addr: "127.0.0.1:6060",
}

var defaultLog = Log{
	Level:   "info",
	Backend: LogBackendSlog,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultAuth returns the default token settings.
func DefaultAuth() Auth {
	return defaultAuth
}

// DefaultStorage returns the default upload storage settings.
func DefaultStorage() Storage {
	return defaultStorage
}

// DefaultKafka returns the default producer settings.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultRateLimit returns the default limiter settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

// DefaultPprof returns the default debug listener settings.
func DefaultPprof() Pprof {
	return defaultPprof
}

// DefaultLog returns the default logger settings.
func DefaultLog() Log {
	return defaultLog
}
