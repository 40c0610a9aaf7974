package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/KaramelBytes/leadloom-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/leadloom-cli/internal/config"
	"github.com/KaramelBytes/leadloom-cli/internal/leads"
	"github.com/KaramelBytes/leadloom-cli/internal/scoring"
	"github.com/KaramelBytes/leadloom-cli/internal/store"
)

// activeConfig returns the loaded configuration, loading it on demand.
func activeConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// loadLeadFiles normalizes every file and merges the results into one
// deduplicated table.
func loadLeadFiles(paths []string, opt leads.Options) (*leads.Table, error) {
	tables := make([]*leads.Table, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		t, err := leads.NormalizeFile(filepath.Base(p), data, opt)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return leads.Merge(tables...)
}

// parseDelimiter maps a --delimiter flag value to a rune. Empty means detect.
func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s (use comma|tab|semicolon|pipe)", s)
}

// newAnalyzer builds an analyzer for the configured provider. Without usable
// credentials the analyzer runs without an oracle and every batch is reported
// as failed.
func newAnalyzer(c *cfgpkg.Global) *scoring.Analyzer {
	opt := c.ScoringOptions()
	local := c.Provider == ai.ProviderOllama || c.Provider == ai.ProviderLocal
	if !local && c.APIKey == "" {
		fmt.Fprintf(os.Stderr, "⚠ Warning: no api_key configured for %s; using keyword strategy without scoring\n", c.Provider)
		return scoring.NewAnalyzer(nil, opt)
	}
	o, err := c.NewOracle()
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; using keyword strategy without scoring\n", err)
		return scoring.NewAnalyzer(nil, opt)
	}
	zap.L().Debug("oracle ready", zap.String("provider", c.Provider), zap.String("model", o.Model()))
	return scoring.NewAnalyzer(o, opt)
}

// openStore opens the configured database. A missing database_url yields a
// nil store and no error.
func openStore(ctx context.Context, c *cfgpkg.Global) (store.Store, error) {
	st, err := store.Open(ctx, c.DatabaseURL)
	if errors.Is(err, store.ErrNoDatabase) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}
