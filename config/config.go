package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage backends selectable with storage.backend.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Lock     LockConfig     `mapstructure:"lock"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// StorageConfig selects and tunes the blob store behind the ledger.
type StorageConfig struct {
	Backend string        `mapstructure:"backend"` // memory, file, redis, postgres
	Dir     string        `mapstructure:"dir"`     // file backend only
	Prefix  string        `mapstructure:"prefix"`  // key prefix for every blob
	Timeout time.Duration `mapstructure:"timeout"` // bound on each storage call
	// EncryptionKey enables AES-256-GCM at rest when set (64 hex chars).
	EncryptionKey string `mapstructure:"encryption_key"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"` // interest event stream, empty = disabled
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LedgerConfig tunes interest accrual and notifications.
type LedgerConfig struct {
	SavingsRatePercent string        `mapstructure:"savings_rate_percent"` // annual, decimal string
	InterestInterval   time.Duration `mapstructure:"interest_interval"`
	EventBuffer        int           `mapstructure:"event_buffer"`
}

// SavingsRate parses the configured annual savings rate.
func (l LedgerConfig) SavingsRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(l.SavingsRatePercent))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing ledger.savings_rate_percent: %w", err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("ledger.savings_rate_percent must not be negative")
	}
	return rate, nil
}

type LockConfig struct {
	Passcode string `mapstructure:"passcode"`
	// MaxAttempts bounds passcode attempts per client within AttemptWindow.
	MaxAttempts   int64         `mapstructure:"max_attempts"`
	AttemptWindow time.Duration `mapstructure:"attempt_window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Validate rejects configurations the application cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	case BackendFile:
		if strings.TrimSpace(c.Storage.Dir) == "" {
			return fmt.Errorf("storage.dir is required for the file backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	if k := c.Storage.EncryptionKey; k != "" {
		if b, err := hex.DecodeString(k); err != nil || len(b) != 32 {
			return fmt.Errorf("storage.encryption_key must be 64 hex characters")
		}
	}
	if _, err := c.Ledger.SavingsRate(); err != nil {
		return err
	}
	if c.Ledger.InterestInterval <= 0 {
		return fmt.Errorf("ledger.interest_interval must be positive")
	}
	if strings.TrimSpace(c.Lock.Passcode) == "" {
		return fmt.Errorf("lock.passcode must not be blank")
	}
	if c.Lock.MaxAttempts <= 0 || c.Lock.AttemptWindow <= 0 {
		return fmt.Errorf("lock.max_attempts and lock.attempt_window must be positive")
	}
	return nil
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: LEDGER_.
// Nested keys use underscore: LEDGER_STORAGE_BACKEND, LEDGER_REDIS_HOST, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("storage.prefix", "ledger:")
	v.SetDefault("storage.timeout", "5s")
	v.SetDefault("storage.encryption_key", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "personal_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "ledger.events")
	v.SetDefault("ledger.savings_rate_percent", "2.5")
	v.SetDefault("ledger.interest_interval", "60s")
	v.SetDefault("ledger.event_buffer", 100)
	v.SetDefault("lock.passcode", "7788")
	v.SetDefault("lock.max_attempts", 5)
	v.SetDefault("lock.attempt_window", "1m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: LEDGER_STORAGE_BACKEND -> storage.backend
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
