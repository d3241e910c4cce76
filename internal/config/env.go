// Package config loads process configuration from the environment.
package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Store backends accepted by Serve.Store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Serve configures the HTTP host. Flags override these values.
type Serve struct {
	Addr            string        `env:"SHRUB_ADDR" envDefault:":8080"`
	Store           string        `env:"SHRUB_STORE" envDefault:"memory"`
	Dir             string        `env:"SHRUB_DIR" envDefault:".shrub/sessions"`
	RedisAddr       string        `env:"SHRUB_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"SHRUB_REDIS_PASSWORD"`
	RedisDB         int           `env:"SHRUB_REDIS_DB" envDefault:"0"`
	RedisPrefix     string        `env:"SHRUB_REDIS_PREFIX" envDefault:"shrub:session:"`
	RedisTTL        time.Duration `env:"SHRUB_REDIS_TTL" envDefault:"0s"`
	DistributedLock bool          `env:"SHRUB_DISTRIBUTED_LOCK" envDefault:"false"`
	LockTTL         time.Duration `env:"SHRUB_LOCK_TTL" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHRUB_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	LogLevel        string        `env:"SHRUB_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"SHRUB_LOG_FORMAT" envDefault:"text"`

	// EncryptionKey is a base64 AES-256 key. When set, snapshots are encrypted at rest.
	EncryptionKey          string   `env:"SHRUB_ENCRYPTION_KEY"`
	EncryptionFallbackKeys []string `env:"SHRUB_ENCRYPTION_FALLBACK_KEYS" envSeparator:","`
	// MaskKeys are patterns of slot names whose string values are masked in snapshots.
	MaskKeys []string `env:"SHRUB_MASK_KEYS" envSeparator:","`
}

// LoadServe reads Serve from the environment and validates it.
func LoadServe() (Serve, error) {
	var cfg Serve
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks combinations the environment parser cannot.
func (c Serve) Validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis:
	case StoreFile:
		if c.Dir == "" {
			return fmt.Errorf("store %q needs a directory", c.Store)
		}
	default:
		return fmt.Errorf("unknown store %q (want memory, file or redis)", c.Store)
	}
	if c.DistributedLock && c.Store != StoreRedis {
		return fmt.Errorf("distributed locking requires the redis store")
	}
	if _, _, err := c.EncryptionKeys(); err != nil {
		return err
	}
	return nil
}

// EncryptionKeys decodes the configured keys. Both are nil when encryption is off.
func (c Serve) EncryptionKeys() ([]byte, [][]byte, error) {
	if c.EncryptionKey == "" {
		if len(c.EncryptionFallbackKeys) > 0 {
			return nil, nil, fmt.Errorf("fallback encryption keys require SHRUB_ENCRYPTION_KEY")
		}
		return nil, nil, nil
	}
	active, err := decodeKey(c.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encryption key: %w", err)
	}
	fallback := make([][]byte, 0, len(c.EncryptionFallbackKeys))
	for i, k := range c.EncryptionFallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback encryption key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("not base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}
