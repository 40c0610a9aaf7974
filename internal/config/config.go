package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/leadloom-cli/internal/ai"
	"github.com/KaramelBytes/leadloom-cli/internal/leads"
	"github.com/KaramelBytes/leadloom-cli/internal/scoring"
)

// Global configuration structure.
type Global struct {
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	Provider string `mapstructure:"provider" yaml:"provider"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Model    string `mapstructure:"model" yaml:"model"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Local runtimes (Ollama)
	OllamaHost string `mapstructure:"ollama_host" yaml:"ollama_host"`

	// Scoring pipeline
	OracleTimeoutSec int     `mapstructure:"oracle_timeout_sec" yaml:"oracle_timeout_sec"`
	BatchSize        int     `mapstructure:"batch_size" yaml:"batch_size"`
	BatchConcurrency int     `mapstructure:"batch_concurrency" yaml:"batch_concurrency"`
	CandidateLimit   int     `mapstructure:"candidate_limit" yaml:"candidate_limit"`
	ResultLimit      int     `mapstructure:"result_limit" yaml:"result_limit"`
	MinScore         float64 `mapstructure:"min_score" yaml:"min_score"`
	StrategyAttempts int     `mapstructure:"strategy_attempts" yaml:"strategy_attempts"`
	HeaderScanLines  int     `mapstructure:"header_scan_lines" yaml:"header_scan_lines"`

	// Server and storage
	ServerAddr     string   `mapstructure:"server_addr" yaml:"server_addr"`
	MaxUploadMB    int      `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	DatabaseURL    string   `mapstructure:"database_url" yaml:"database_url,omitempty"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Keys lists every settable key in display order.
var Keys = []string{
	"api_key", "provider", "base_url", "model",
	"http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms",
	"ollama_host",
	"oracle_timeout_sec", "batch_size", "batch_concurrency", "candidate_limit", "result_limit",
	"min_score", "strategy_attempts", "header_scan_lines",
	"server_addr", "max_upload_mb", "allowed_origins", "database_url",
	"log_level",
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".leadloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.leadloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	// The file may carry an API key.
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Env vars use the LEADLOOM_ prefix.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("LEADLOOM")
	v.AutomaticEnv()

	v.SetDefault("api_key", "")
	v.SetDefault("provider", ai.ProviderOpenRouter)
	v.SetDefault("base_url", "")
	v.SetDefault("model", "deepseek/deepseek-chat")
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("ollama_host", ai.DefaultOllamaHost)
	// Pipeline defaults
	d := scoring.DefaultOptions()
	v.SetDefault("oracle_timeout_sec", int(d.OracleTimeout/time.Second))
	v.SetDefault("batch_size", d.BatchSize)
	v.SetDefault("batch_concurrency", d.MaxConcurrency)
	v.SetDefault("candidate_limit", d.CandidateLimit)
	v.SetDefault("result_limit", d.ResultLimit)
	v.SetDefault("min_score", d.MinScore)
	v.SetDefault("strategy_attempts", d.StrategyAttempts)
	v.SetDefault("header_scan_lines", leads.DefaultOptions().HeaderScanLines)
	// Server defaults
	v.SetDefault("server_addr", ":8000")
	v.SetDefault("max_upload_mb", 20)
	v.SetDefault("allowed_origins", []string{"http://localhost:3000", "https://pipelineom.com", "https://www.pipelineom.com"})
	v.SetDefault("database_url", "")
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Env vars hold lists as comma-separated strings.
	if len(c.AllowedOrigins) == 1 && strings.Contains(c.AllowedOrigins[0], ",") {
		c.AllowedOrigins = splitList(c.AllowedOrigins[0])
	}
	return &c, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Set assigns key from its string form, validating the value.
func (c *Global) Set(key, val string) error {
	setInt := func(dst *int, floor int) error {
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || i < floor {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	switch key {
	case "api_key":
		c.APIKey = val
	case "provider":
		p := strings.ToLower(strings.TrimSpace(val))
		if _, ok := ai.GetRuntime(p, ai.RuntimeConfig{}); !ok {
			return fmt.Errorf("invalid provider: %s (use openrouter, openai or ollama)", val)
		}
		c.Provider = p
	case "base_url":
		c.BaseURL = strings.TrimSpace(val)
	case "model":
		c.Model = strings.TrimSpace(val)
	case "http_timeout_sec":
		return setInt(&c.HTTPTimeoutSec, 1)
	case "retry_max_attempts":
		return setInt(&c.RetryMaxAttempts, 1)
	case "retry_base_delay_ms":
		return setInt(&c.RetryBaseDelayMs, 0)
	case "retry_max_delay_ms":
		return setInt(&c.RetryMaxDelayMs, 0)
	case "ollama_host":
		c.OllamaHost = strings.TrimSpace(val)
	case "oracle_timeout_sec":
		return setInt(&c.OracleTimeoutSec, 1)
	case "batch_size":
		return setInt(&c.BatchSize, 1)
	case "batch_concurrency":
		return setInt(&c.BatchConcurrency, 0)
	case "candidate_limit":
		return setInt(&c.CandidateLimit, 1)
	case "result_limit":
		return setInt(&c.ResultLimit, 1)
	case "min_score":
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || f < 0 || f > 10 {
			return fmt.Errorf("invalid float for min_score: %v", val)
		}
		c.MinScore = f
	case "strategy_attempts":
		return setInt(&c.StrategyAttempts, 1)
	case "header_scan_lines":
		return setInt(&c.HeaderScanLines, 1)
	case "server_addr":
		c.ServerAddr = strings.TrimSpace(val)
	case "max_upload_mb":
		return setInt(&c.MaxUploadMB, 1)
	case "allowed_origins":
		c.AllowedOrigins = splitList(val)
	case "database_url":
		c.DatabaseURL = strings.TrimSpace(val)
	case "log_level":
		switch l := strings.ToLower(strings.TrimSpace(val)); l {
		case "debug", "info", "warn", "error":
			c.LogLevel = l
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Value returns the display form of key, or false for an unknown key.
func (c *Global) Value(key string) (string, bool) {
	switch key {
	case "api_key":
		return c.APIKey, true
	case "provider":
		return c.Provider, true
	case "base_url":
		return c.BaseURL, true
	case "model":
		return c.Model, true
	case "http_timeout_sec":
		return strconv.Itoa(c.HTTPTimeoutSec), true
	case "retry_max_attempts":
		return strconv.Itoa(c.RetryMaxAttempts), true
	case "retry_base_delay_ms":
		return strconv.Itoa(c.RetryBaseDelayMs), true
	case "retry_max_delay_ms":
		return strconv.Itoa(c.RetryMaxDelayMs), true
	case "ollama_host":
		return c.OllamaHost, true
	case "oracle_timeout_sec":
		return strconv.Itoa(c.OracleTimeoutSec), true
	case "batch_size":
		return strconv.Itoa(c.BatchSize), true
	case "batch_concurrency":
		return strconv.Itoa(c.BatchConcurrency), true
	case "candidate_limit":
		return strconv.Itoa(c.CandidateLimit), true
	case "result_limit":
		return strconv.Itoa(c.ResultLimit), true
	case "min_score":
		return strconv.FormatFloat(c.MinScore, 'f', -1, 64), true
	case "strategy_attempts":
		return strconv.Itoa(c.StrategyAttempts), true
	case "header_scan_lines":
		return strconv.Itoa(c.HeaderScanLines), true
	case "server_addr":
		return c.ServerAddr, true
	case "max_upload_mb":
		return strconv.Itoa(c.MaxUploadMB), true
	case "allowed_origins":
		return strings.Join(c.AllowedOrigins, ","), true
	case "database_url":
		return c.DatabaseURL, true
	case "log_level":
		return c.LogLevel, true
	}
	return "", false
}

// RuntimeConfig maps the HTTP and provider settings onto an ai.RuntimeConfig.
func (c *Global) RuntimeConfig() ai.RuntimeConfig {
	return ai.RuntimeConfig{
		HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
		RetryMax:    c.RetryMaxAttempts,
		BaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Host:        c.OllamaHost,
	}
}

// NewOracle builds the configured runtime bound to the configured model.
func (c *Global) NewOracle() (*ai.Oracle, error) {
	rt, err := ai.NewRuntime(c.Provider, c.RuntimeConfig())
	if err != nil {
		return nil, err
	}
	return ai.NewOracle(rt, c.Model)
}

// ScoringOptions maps the pipeline settings onto scoring.Options.
func (c *Global) ScoringOptions() scoring.Options {
	opt := scoring.DefaultOptions()
	opt.BatchSize = c.BatchSize
	opt.MaxConcurrency = c.BatchConcurrency
	opt.CandidateLimit = c.CandidateLimit
	opt.ResultLimit = c.ResultLimit
	opt.MinScore = c.MinScore
	if c.MinScore == 0 {
		opt.MinScore = scoring.NoMinScore
	}
	opt.StrategyAttempts = c.StrategyAttempts
	opt.OracleTimeout = time.Duration(c.OracleTimeoutSec) * time.Second
	return opt
}

// LeadOptions maps the normalization settings onto leads.Options.
func (c *Global) LeadOptions() leads.Options {
	opt := leads.DefaultOptions()
	if c.HeaderScanLines > 0 {
		opt.HeaderScanLines = c.HeaderScanLines
	}
	return opt
}

// MaxUploadBytes is the request body cap for uploads.
func (c *Global) MaxUploadBytes() int64 {
	mb := c.MaxUploadMB
	if mb <= 0 {
		mb = 20
	}
	return int64(mb) << 20
}
