package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
	"github.com/KaramelBytes/leadloom-cli/internal/report"
	"github.com/KaramelBytes/leadloom-cli/internal/scoring"
	"github.com/KaramelBytes/leadloom-cli/internal/utils"
)

var (
	anaGoal       string
	anaOutputPath string
	anaJSON       bool
	anaSave       bool
	anaMinScore   float64
	anaLimit      int
	anaDelimiter  string
	anaSheet      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <files...>",
	Short: "Rank the contacts in one or more exports against a goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal := strings.TrimSpace(anaGoal)
		if goal == "" {
			return fmt.Errorf("--goal is required")
		}
		c, err := activeConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("min-score") {
			if err := c.Set("min_score", fmt.Sprint(anaMinScore)); err != nil {
				return err
			}
		}
		if anaLimit > 0 {
			c.ResultLimit = anaLimit
		}
		opt := c.LeadOptions()
		if opt.Delimiter, err = parseDelimiter(anaDelimiter); err != nil {
			return err
		}
		opt.Sheet = anaSheet

		t, err := loadLeadFiles(args, opt)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		sessionID := uuid.NewString()
		if anaSave {
			if err := saveSession(ctx, sessionID, t.Rows); err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: leads not saved: %v\n", err)
			}
		}

		res, err := newAnalyzer(c).Analyze(ctx, goal, t)
		if err != nil {
			return err
		}
		if res.FailedBatches > 0 {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %d of %d batches failed to score\n", res.FailedBatches, res.Batches)
		}

		if anaJSON {
			b, err := utils.PrettyJSON(analyzeOutput{SessionID: sessionID, Result: res})
			if err != nil {
				return err
			}
			fmt.Println(string(b))
		} else {
			fmt.Print(report.Markdown(res))
		}

		if anaOutputPath != "" {
			if err := report.SaveCSV(anaOutputPath, res.Leads); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(os.Stderr, "✓ Wrote %d leads to %s\n", len(res.Leads), anaOutputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaGoal, "goal", "g", "", "what you want from your network (required)")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write ranked leads as CSV")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the result as JSON")
	analyzeCmd.Flags().BoolVar(&anaSave, "save", false, "store normalized leads in database_url")
	analyzeCmd.Flags().Float64Var(&anaMinScore, "min-score", 0, "minimum score to keep, 0 keeps every lead (overrides config)")
	analyzeCmd.Flags().IntVar(&anaLimit, "limit", 0, "max leads to return (overrides config)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "force a delimiter: comma|tab|semicolon|pipe")
	analyzeCmd.Flags().StringVar(&anaSheet, "sheet", "", "XLSX worksheet name (default first sheet)")
	_ = analyzeCmd.MarkFlagRequired("goal")
}

type analyzeOutput struct {
	SessionID string `json:"session_id"`
	*scoring.Result
}

func saveSession(ctx context.Context, sessionID string, rows []leads.Lead) error {
	c, err := activeConfig()
	if err != nil {
		return err
	}
	st, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("database_url is not configured")
	}
	defer st.Close()
	n, err := st.SaveLeads(ctx, sessionID, rows)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Saved %d leads (session %s)\n", n, sessionID)
	return nil
}
