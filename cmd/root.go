package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/leadloom-cli/internal/config"
)

var (
	cfgFile string
	debug   bool
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int
	flagProvider         string
	flagModel            string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "leadloom",
	Short: "LeadLoom CLI: find the contacts that matter for a goal",
	Long: `LeadLoom normalizes contact exports (LinkedIn, CRM, spreadsheets) into one
canonical table and ranks the contacts most relevant to a stated goal using an LLM.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	err := rootCmd.Execute()
	_ = zap.L().Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.leadloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "LLM provider: openrouter|openai|ollama (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model id (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		setupLogger("info")
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("provider") && flagProvider != "" {
		if err := cfg.Set("provider", flagProvider); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		}
	}
	if f.Changed("model") && flagModel != "" {
		cfg.Model = flagModel
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	setupLogger(cfg.LogLevel)
}

// setupLogger installs the global zap logger. --debug switches to the
// development console encoder.
func setupLogger(level string) {
	var zc zap.Config
	if debug || level == "debug" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		if lvl, err := zap.ParseAtomicLevel(level); err == nil {
			zc.Level = lvl
		}
	}
	logger, err := zc.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: logger setup failed: %v\n", err)
		return
	}
	zap.ReplaceGlobals(logger)
}
