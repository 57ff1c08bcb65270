package config

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"BOOKSHELF_HOME": "/tmp/bookshelf-test",
	}))
	if err != nil {
		t.Fatalf("LoadWith() error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000/api/v1" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.Session.Backend != BackendFile {
		t.Errorf("Backend = %q, want file", cfg.Session.Backend)
	}
	if cfg.Session.Redis.Key != "bookshelf:session" {
		t.Errorf("Redis.Key = %q", cfg.Session.Redis.Key)
	}
	if got, want := cfg.SessionFile(), filepath.Join("/tmp/bookshelf-test", "session.json"); got != want {
		t.Errorf("SessionFile() = %q, want %q", got, want)
	}
	if got, want := cfg.LogFile(), filepath.Join("/tmp/bookshelf-test", "bookshelf.log"); got != want {
		t.Errorf("LogFile() = %q, want %q", got, want)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"BOOKSHELF_API_URL":         "https://books.example/api/v1",
		"BOOKSHELF_HOME":            "/tmp/x",
		"BOOKSHELF_LOG_LEVEL":       "debug",
		"BOOKSHELF_LOG_PRETTY":      "true",
		"BOOKSHELF_HTTP_TIMEOUT":    "5s",
		"BOOKSHELF_SESSION_BACKEND": "redis",
		"BOOKSHELF_REDIS_ADDR":      "cache:6380",
		"BOOKSHELF_REDIS_DB":        "2",
		"BOOKSHELF_METRICS_ADDR":    "127.0.0.1:9464",
	}))
	if err != nil {
		t.Fatalf("LoadWith() error: %v", err)
	}
	if cfg.APIURL != "https://books.example/api/v1" || cfg.LogLevel != "debug" || !cfg.LogPretty {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.Session.Backend != BackendRedis || cfg.Session.Redis.Addr != "cache:6380" || cfg.Session.Redis.DB != 2 {
		t.Errorf("Session = %+v", cfg.Session)
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown backend", map[string]string{"BOOKSHELF_HOME": "/tmp", "BOOKSHELF_SESSION_BACKEND": "sqlite"}, "unknown session backend"},
		{"bad timeout", map[string]string{"BOOKSHELF_HOME": "/tmp", "BOOKSHELF_HTTP_TIMEOUT": "soon"}, "config.Load"},
		{"zero timeout", map[string]string{"BOOKSHELF_HOME": "/tmp", "BOOKSHELF_HTTP_TIMEOUT": "0s"}, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(tt.env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}
