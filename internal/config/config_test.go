package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mining-intel/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validSources = `
[[sources]]
id = "reuters-mining"
kind = "rss"
endpoint = "https://example.com/feed.xml"
weight = 0.9
`

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, validSources+`
top_k = 5

[fetch]
max_concurrency = 4
global_timeout = "30s"

[correlation]
priority_threshold = 70.0
before_window = "1h"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Sources) != 1 || cfg.Sources[0].ID != "reuters-mining" {
		t.Fatalf("unexpected sources %+v", cfg.Sources)
	}
	if cfg.Sources[0].Kind != domain.SourceKindRSS || cfg.Sources[0].Weight != 0.9 {
		t.Errorf("unexpected source %+v", cfg.Sources[0])
	}
	if cfg.TopK != 5 {
		t.Errorf("expected top_k 5, got %d", cfg.TopK)
	}
	if cfg.Fetch.MaxConcurrency != 4 {
		t.Errorf("expected max_concurrency 4, got %d", cfg.Fetch.MaxConcurrency)
	}
	if cfg.Fetch.GlobalTimeout != 30*time.Second {
		t.Errorf("expected global timeout 30s, got %v", cfg.Fetch.GlobalTimeout)
	}
	if cfg.Correlation.PriorityThreshold != 70 {
		t.Errorf("expected priority threshold 70, got %f", cfg.Correlation.PriorityThreshold)
	}
	if cfg.Correlation.BeforeWindow != time.Hour {
		t.Errorf("expected before window 1h, got %v", cfg.Correlation.BeforeWindow)
	}

	// Untouched sections keep their defaults.
	if cfg.Fetch.MaxRetries != 3 {
		t.Errorf("expected default max_retries 3, got %d", cfg.Fetch.MaxRetries)
	}
	if cfg.Correlation.AfterWindow != 24*time.Hour {
		t.Errorf("expected default after window 24h, got %v", cfg.Correlation.AfterWindow)
	}
	if cfg.Metrics.Addr != ":9091" {
		t.Errorf("expected default metrics addr, got %s", cfg.Metrics.Addr)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, validSources+`
[price_api]
base_url = "https://file.example.com"

[postgres]
dsn = "postgres://file"
`)

	t.Setenv("MINTEL_PRICE_API_URL", "https://env.example.com")
	t.Setenv("MINTEL_POSTGRES_DSN", "postgres://env")
	t.Setenv("MINTEL_CORRELATION_THRESHOLD", "75")
	t.Setenv("MINTEL_TOP_K", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PriceAPI.BaseURL != "https://env.example.com" {
		t.Errorf("expected env override, got %s", cfg.PriceAPI.BaseURL)
	}
	if cfg.Postgres.DSN != "postgres://env" {
		t.Errorf("expected env override, got %s", cfg.Postgres.DSN)
	}
	if cfg.Correlation.PriorityThreshold != 75 {
		t.Errorf("expected threshold 75, got %f", cfg.Correlation.PriorityThreshold)
	}
	if cfg.TopK != 3 {
		t.Errorf("expected top_k 3, got %d", cfg.TopK)
	}
}

func TestLoad_InvalidEnvValuesIgnored(t *testing.T) {
	path := writeConfig(t, validSources)

	t.Setenv("MINTEL_FETCH_CONCURRENCY", "not-a-number")
	t.Setenv("MINTEL_CORRELATION_THRESHOLD", "-5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Fetch.MaxConcurrency != 10 {
		t.Errorf("expected default concurrency kept, got %d", cfg.Fetch.MaxConcurrency)
	}
	if cfg.Correlation.PriorityThreshold != 60 {
		t.Errorf("expected default threshold kept, got %f", cfg.Correlation.PriorityThreshold)
	}
}

func TestLoad_NoSources(t *testing.T) {
	_, err := Load("")
	if !errors.Is(err, ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	src := func(id string, kind domain.SourceKind, endpoint string) domain.SourceDescriptor {
		return domain.SourceDescriptor{ID: id, Kind: kind, Endpoint: endpoint}
	}

	cases := []struct {
		name    string
		sources []domain.SourceDescriptor
		wantErr bool
	}{
		{"valid", []domain.SourceDescriptor{src("a", domain.SourceKindRSS, "https://x")}, false},
		{"stub without endpoint", []domain.SourceDescriptor{src("a", domain.SourceKindStub, "")}, false},
		{"empty id", []domain.SourceDescriptor{src("", domain.SourceKindRSS, "https://x")}, true},
		{"duplicate id", []domain.SourceDescriptor{
			src("a", domain.SourceKindRSS, "https://x"),
			src("a", domain.SourceKindWire, "wss://y"),
		}, true},
		{"unknown kind", []domain.SourceDescriptor{src("a", "carrier-pigeon", "https://x")}, true},
		{"rss without endpoint", []domain.SourceDescriptor{src("a", domain.SourceKindRSS, "")}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Sources = tc.sources
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
