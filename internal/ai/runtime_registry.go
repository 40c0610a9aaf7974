package ai

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RuntimeFactory builds a Runtime from the generic config below.
type RuntimeFactory func(RuntimeConfig) Runtime

// RuntimeConfig carries common knobs used by runtimes.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// OpenAI-compatible endpoints
	APIKey  string
	BaseURL string
	// Ollama
	Host string
}

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[strings.ToLower(name)] = f }

// GetRuntime creates a Runtime for the given provider if registered.
func GetRuntime(name string, cfg RuntimeConfig) (Runtime, bool) {
	if f, ok := registry[strings.ToLower(name)]; ok {
		return f(cfg), true
	}
	return nil, false
}

// NewRuntime is GetRuntime with an error naming the known providers.
func NewRuntime(name string, cfg RuntimeConfig) (Runtime, error) {
	if rt, ok := GetRuntime(name, cfg); ok {
		return rt, nil
	}
	known := make([]string, 0, len(registry))
	for k := range registry {
		known = append(known, k)
	}
	sort.Strings(known)
	return nil, fmt.Errorf("unknown provider %q (known: %s)", name, strings.Join(known, ", "))
}

func init() {
	openAICompatible := func(defaultURL string) RuntimeFactory {
		return func(c RuntimeConfig) Runtime {
			if c.BaseURL == "" {
				c.BaseURL = defaultURL
			}
			return newCompatibleClient(c)
		}
	}
	RegisterRuntime(ProviderOpenRouter, openAICompatible(DefaultBaseURL))
	RegisterRuntime(ProviderOpenAI, openAICompatible("https://api.openai.com/v1"))

	ollama := func(c RuntimeConfig) Runtime {
		if c.HTTPTimeout <= 0 {
			c.HTTPTimeout = 60 * time.Second
		}
		if c.RetryMax <= 0 {
			c.RetryMax = 2
		}
		if c.BaseDelay <= 0 {
			c.BaseDelay = 200 * time.Millisecond
		}
		return NewOllamaClient(c.Host, c.HTTPTimeout, c.RetryMax, c.BaseDelay)
	}
	RegisterRuntime(ProviderOllama, ollama)
	RegisterRuntime(ProviderLocal, ollama)
}

func newCompatibleClient(c RuntimeConfig) *Client {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 60 * time.Second
	}
	if c.RetryMax <= 0 {
		c.RetryMax = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 4 * time.Second
	}
	return NewClientWithBaseURL(c.APIKey, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay, c.BaseURL)
}
