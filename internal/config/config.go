// Package config loads bookshelf settings from the environment.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	APIURL      string        `env:"BOOKSHELF_API_URL,      default=http://localhost:8000/api/v1"`
	Home        string        `env:"BOOKSHELF_HOME"`
	LogLevel    string        `env:"BOOKSHELF_LOG_LEVEL,    default=info"`
	LogPretty   bool          `env:"BOOKSHELF_LOG_PRETTY,   default=false"`
	HTTPTimeout time.Duration `env:"BOOKSHELF_HTTP_TIMEOUT, default=30s"`
	MetricsAddr string        `env:"BOOKSHELF_METRICS_ADDR"`

	Session SessionConfig
}

type SessionConfig struct {
	Backend string `env:"BOOKSHELF_SESSION_BACKEND, default=file"`
	Redis   RedisConfig
}

type RedisConfig struct {
	Addr string `env:"BOOKSHELF_REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"BOOKSHELF_REDIS_DB,   default=0"`
	Key  string `env:"BOOKSHELF_REDIS_KEY,  default=bookshelf:session"`
}

// LoadWith reads configuration through l; the binary passes
// envconfig.OsLookuper().
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	switch cfg.Session.Backend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return nil, fmt.Errorf("config.Load: unknown session backend %q", cfg.Session.Backend)
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("config.Load: BOOKSHELF_HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}
	if cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config.Load: get home dir: %w", err)
		}
		cfg.Home = filepath.Join(home, ".bookshelf")
	}
	return &cfg, nil
}

// SessionFile returns the path of the file-backed session record.
func (c *Config) SessionFile() string { return filepath.Join(c.Home, "session.json") }

// LogFile returns the path of the log file.
func (c *Config) LogFile() string { return filepath.Join(c.Home, "bookshelf.log") }
