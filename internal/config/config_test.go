package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsForDevProfile(t *testing.T) {
	cfg, err := Load("dockquery-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Auth.Required {
		t.Fatal("Auth.Required should default to false in dev")
	}
	if cfg.AI.Provider != ProviderOpenAI {
		t.Fatalf("AI.Provider = %q", cfg.AI.Provider)
	}
	if cfg.Pipeline.DefaultLimit != 10 {
		t.Fatalf("Pipeline.DefaultLimit = %d", cfg.Pipeline.DefaultLimit)
	}
	if cfg.Pipeline.UnlimitedRowCap != 1000 {
		t.Fatalf("Pipeline.UnlimitedRowCap = %d", cfg.Pipeline.UnlimitedRowCap)
	}
	if cfg.Pipeline.SummarySampleRows != 5 {
		t.Fatalf("Pipeline.SummarySampleRows = %d", cfg.Pipeline.SummarySampleRows)
	}
	if cfg.Schema.CacheTTL != 0 {
		t.Fatalf("Schema.CacheTTL = %v, want 0 (no caching in dev)", cfg.Schema.CacheTTL)
	}
}

func TestLoadProdProfileHardensDefaults(t *testing.T) {
	cfg, err := Load("dockquery-api", mapLookup(map[string]string{
		"DOCKQUERY_PROFILE": "prod",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Auth.Required {
		t.Fatal("Auth.Required should default to true in prod")
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Schema.CacheTTL != time.Minute {
		t.Fatalf("Schema.CacheTTL = %v", cfg.Schema.CacheTTL)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	cfg, err := Load("dockquery-api", mapLookup(map[string]string{
		"DOCKQUERY_HTTP_ADDR":                    ":9090",
		"DOCKQUERY_AI_PROVIDER":                  "Ollama",
		"DOCKQUERY_AI_MODEL":                     "qwen3:4b",
		"DOCKQUERY_AI_TIMEOUT":                   "90s",
		"DOCKQUERY_PIPELINE_DEFAULT_LIMIT":       "25",
		"DOCKQUERY_PIPELINE_UNLIMITED_ROW_CAP":   "5000",
		"DOCKQUERY_PIPELINE_SUMMARY_SAMPLE_ROWS": "3",
		"DOCKQUERY_SCHEMA_CACHE_TTL":             "30s",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Address != ":9090" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.AI.Provider != ProviderOllama {
		t.Fatalf("AI.Provider = %q", cfg.AI.Provider)
	}
	if cfg.AI.Model != "qwen3:4b" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Timeout != 90*time.Second {
		t.Fatalf("AI.Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.Pipeline.DefaultLimit != 25 {
		t.Fatalf("Pipeline.DefaultLimit = %d", cfg.Pipeline.DefaultLimit)
	}
	if cfg.Pipeline.UnlimitedRowCap != 5000 {
		t.Fatalf("Pipeline.UnlimitedRowCap = %d", cfg.Pipeline.UnlimitedRowCap)
	}
	if cfg.Pipeline.SummarySampleRows != 3 {
		t.Fatalf("Pipeline.SummarySampleRows = %d", cfg.Pipeline.SummarySampleRows)
	}
	if cfg.Schema.CacheTTL != 30*time.Second {
		t.Fatalf("Schema.CacheTTL = %v", cfg.Schema.CacheTTL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad profile":     {"DOCKQUERY_PROFILE": "staging"},
		"bad provider":    {"DOCKQUERY_AI_PROVIDER": "bedrock"},
		"bad duration":    {"DOCKQUERY_AI_TIMEOUT": "soon"},
		"bad int":         {"DOCKQUERY_PIPELINE_DEFAULT_LIMIT": "ten"},
		"bad log level":   {"DOCKQUERY_LOG_LEVEL": "verbose"},
		"zero limit":      {"DOCKQUERY_PIPELINE_DEFAULT_LIMIT": "0"},
		"zero row cap":    {"DOCKQUERY_PIPELINE_UNLIMITED_ROW_CAP": "0"},
		"zero sample":     {"DOCKQUERY_PIPELINE_SUMMARY_SAMPLE_ROWS": "0"},
		"negative sample": {"DOCKQUERY_PIPELINE_SUMMARY_SAMPLE_ROWS": "-1"},
	}
	for name, env := range cases {
		t.Run(strings.ReplaceAll(name, " ", "_"), func(t *testing.T) {
			if _, err := Load("dockquery-api", mapLookup(env)); err == nil {
				t.Fatalf("Load() with %v expected error", env)
			}
		})
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
