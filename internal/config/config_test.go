package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/KaramelBytes/leadloom-cli/internal/scoring"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Provider != "openrouter" || c.Model == "" {
		t.Fatalf("provider/model defaults: %+v", c)
	}
	if c.BatchSize != 10 || c.CandidateLimit != 100 || c.ResultLimit != 20 || c.MinScore != 6 || c.StrategyAttempts != 2 {
		t.Fatalf("pipeline defaults: %+v", c)
	}
	if c.HeaderScanLines != 25 || c.MaxUploadMB != 20 || c.ServerAddr != ":8000" {
		t.Fatalf("misc defaults: %+v", c)
	}
	if !slices.Contains(c.AllowedOrigins, "http://localhost:3000") {
		t.Fatalf("allowed origins: %v", c.AllowedOrigins)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "model: llama3\nprovider: ollama\nbatch_size: 5\nallowed_origins:\n  - https://a.example\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEADLOOM_BATCH_SIZE", "7")
	t.Setenv("LEADLOOM_API_KEY", "sk-env")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Model != "llama3" || c.Provider != "ollama" {
		t.Fatalf("file values not applied: %+v", c)
	}
	if c.BatchSize != 7 || c.APIKey != "sk-env" {
		t.Fatalf("env should override file: batch=%d key=%q", c.BatchSize, c.APIKey)
	}
	if !slices.Equal(c.AllowedOrigins, []string{"https://a.example"}) {
		t.Fatalf("origins = %v", c.AllowedOrigins)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSetSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for key, val := range map[string]string{
		"provider":        "OpenAI",
		"min_score":       "7.5",
		"batch_size":      "4",
		"allowed_origins": "https://a.example, https://b.example",
		"log_level":       "DEBUG",
	} {
		if err := c.Set(key, val); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}
	if err := Save(c, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Provider != "openai" || got.MinScore != 7.5 || got.BatchSize != 4 || got.LogLevel != "debug" {
		t.Fatalf("round trip lost values: %+v", got)
	}
	if v, _ := got.Value("allowed_origins"); v != "https://a.example,https://b.example" {
		t.Fatalf("origins = %q", v)
	}
}

func TestSetValidation(t *testing.T) {
	c := &Global{BatchSize: 10}
	bad := map[string]string{
		"provider":   "bedrock",
		"batch_size": "zero",
		"min_score":  "11",
		"log_level":  "loud",
		"nope":       "1",
	}
	for key, val := range bad {
		if err := c.Set(key, val); err == nil {
			t.Fatalf("Set(%s, %s) should fail", key, val)
		}
	}
	if c.BatchSize != 10 {
		t.Fatalf("failed Set must not modify the value, got %d", c.BatchSize)
	}
	for _, k := range Keys {
		if _, ok := c.Value(k); !ok {
			t.Fatalf("Value(%s) unknown", k)
		}
	}
}

func TestDerivedOptions(t *testing.T) {
	c := &Global{
		Provider: "ollama", Model: "llama3", OllamaHost: "http://127.0.0.1:1",
		HTTPTimeoutSec: 3, RetryMaxAttempts: 2, RetryBaseDelayMs: 10,
		OracleTimeoutSec: 30, BatchSize: 5, BatchConcurrency: 4, HeaderScanLines: 10,
	}
	rc := c.RuntimeConfig()
	if rc.HTTPTimeout != 3*time.Second || rc.BaseDelay != 10*time.Millisecond || rc.Host != "http://127.0.0.1:1" {
		t.Fatalf("runtime config: %+v", rc)
	}
	so := c.ScoringOptions()
	if so.BatchSize != 5 || so.MaxConcurrency != 4 || so.OracleTimeout != 30*time.Second {
		t.Fatalf("scoring options: %+v", so)
	}
	if c.LeadOptions().HeaderScanLines != 10 {
		t.Fatal("header scan lines not applied")
	}
	if c.MaxUploadBytes() != 20<<20 {
		t.Fatalf("default upload cap: %d", c.MaxUploadBytes())
	}
	o, err := c.NewOracle()
	if err != nil || o.Model() != "llama3" {
		t.Fatalf("NewOracle: %v", err)
	}
	c.Provider = "bedrock"
	if _, err := c.NewOracle(); err == nil {
		t.Fatal("expected unknown provider error")
	}
}

func TestMinScoreZeroDisablesThreshold(t *testing.T) {
	c := &Global{MinScore: 6}
	if err := c.Set("min_score", "0"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := c.ScoringOptions().MinScore; got != scoring.NoMinScore {
		t.Fatalf("min_score 0 mapped to %v", got)
	}
	if got := scoring.NewAnalyzer(nil, c.ScoringOptions()).Options().MinScore; got != scoring.NoMinScore {
		t.Fatalf("analyzer replaced explicit 0 with %v", got)
	}
	if err := c.Set("min_score", "7.5"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := c.ScoringOptions().MinScore; got != 7.5 {
		t.Fatalf("min_score = %v", got)
	}
}
