package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fastygo/restaurant/domain"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName         string
	Environment     string
	APIVersion      string
	DefaultCurrency domain.Currency
	HTTP            HTTPConfig
	Database        DatabaseConfig
	Redis           RedisConfig
	Mongo           MongoConfig
	JWT             JWTConfig
	Reset           ResetConfig
	Mail            MailConfig
	Outbox          OutboxConfig
	RateLimit       RateLimitConfig
	Monitor         MonitorConfig
	Connect         ConnectConfig
	Context         ContextConfig
	Logger          LoggerConfig
	Migrations      MigrationsConfig
}

type HTTPConfig struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	MaxConn       int
	EnablePprof   bool
	EnableMetrics bool
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type MongoConfig struct {
	URI      string
	Database string
}

type JWTConfig struct {
	Secret string
	// ExpiresIn is the raw JWT_EXPIRES_IN value ("90d", "12h", or seconds).
	ExpiresIn       string
	CookieExpiresIn time.Duration
}

type ResetConfig struct {
	TokenTTL time.Duration
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type OutboxConfig struct {
	Path         string
	SyncInterval time.Duration
	MaxRetry     int
	BatchSize    int
}

// RateLimitConfig throttles the credential routes per client IP.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

type MonitorConfig struct {
	Interval time.Duration
}

// ConnectConfig bounds how long startup waits for each datastore.
type ConnectConfig struct {
	Attempts int
	Backoff  time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults. It fails when the result does not validate.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:         getString("APP_NAME", "restaurant-api"),
		Environment:     getString("NODE_ENV", getString("APP_ENV", "development")),
		APIVersion:      getString("API_VERSION", "v1"),
		DefaultCurrency: domain.Currency(strings.ToUpper(getString("DEFAULT_CURRENCY", "PLN"))),
		HTTP: HTTPConfig{
			Host:          getString("SERVER_HOST", "0.0.0.0"),
			Port:          getString("SERVER_PORT", "8080"),
			ReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:   getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:       getInt("SERVER_MAX_CONN", 0),
			EnablePprof:   getBool("SERVER_ENABLE_PPROF", false),
			EnableMetrics: getBool("SERVER_ENABLE_METRICS", true),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "restaurant"),
			User:            getString("DB_USER", "restaurant"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Mongo: MongoConfig{
			URI:      getString("MONGO_URI", "mongodb://localhost:27017"),
			Database: getString("MONGO_DATABASE", "restaurant"),
		},
		JWT: JWTConfig{
			Secret:          os.Getenv("JWT_SECRET"),
			ExpiresIn:       getString("JWT_EXPIRES_IN", "90d"),
			CookieExpiresIn: time.Duration(getInt("JWT_COOKIE_EXPIRES_IN", 90)) * 24 * time.Hour,
		},
		Reset: ResetConfig{
			TokenTTL: getDuration("RESET_TOKEN_TTL", 10*time.Minute),
		},
		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getString("MAIL_FROM", "Restaurant <no-reply@restaurant.local>"),
		},
		Outbox: OutboxConfig{
			Path:         getString("OUTBOX_PATH", "./data/outbox.db"),
			SyncInterval: getDuration("OUTBOX_SYNC_INTERVAL", 30*time.Second),
			MaxRetry:     getInt("OUTBOX_MAX_RETRY", 5),
			BatchSize:    getInt("OUTBOX_BATCH_SIZE", 50),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getInt("RATE_LIMIT_PER_MINUTE", 20),
			Burst:     getInt("RATE_LIMIT_BURST", 5),
		},
		Monitor: MonitorConfig{
			Interval: getDuration("MONITOR_INTERVAL", 10*time.Second),
		},
		Connect: ConnectConfig{
			Attempts: getInt("CONNECT_ATTEMPTS", 5),
			Backoff:  getDuration("CONNECT_BACKOFF", time.Second),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if _, err := ParseExpiry(c.JWT.ExpiresIn); err != nil {
		errs = append(errs, fmt.Errorf("JWT_EXPIRES_IN: %w", err))
	}
	if c.JWT.CookieExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_COOKIE_EXPIRES_IN must be a positive number of days"))
	}
	if !c.DefaultCurrency.Valid() {
		errs = append(errs, fmt.Errorf("DEFAULT_CURRENCY %q is not supported", c.DefaultCurrency))
	}
	if c.APIVersion == "" {
		errs = append(errs, errors.New("API_VERSION must not be empty"))
	}
	return errors.Join(errs...)
}

// TokenTTL returns the parsed JWT lifetime.
func (c *Config) TokenTTL() time.Duration {
	ttl, _ := ParseExpiry(c.JWT.ExpiresIn)
	return ttl
}

// IsProduction reports whether the service runs with production semantics (secure cookies).
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// ParseExpiry accepts "90d" style day counts, Go durations ("12h") and bare seconds.
func ParseExpiry(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty duration")
	}
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("non-positive duration %q", value)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", value)
	}
	return d, nil
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
