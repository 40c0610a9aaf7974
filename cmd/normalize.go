package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/leadloom-cli/internal/report"
	"github.com/KaramelBytes/leadloom-cli/internal/utils"
)

var (
	normOutputPath string
	normDelimiter  string
	normSheet      string
	normMaxRows    int
	normSummary    bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <files...>",
	Short: "Normalize contact exports into one canonical CSV",
	Long: `Detects the header row and delimiter of each export, maps its columns onto the
canonical lead fields, merges all files and drops duplicate contacts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := activeConfig()
		if err != nil {
			return err
		}
		opt := c.LeadOptions()
		if opt.Delimiter, err = parseDelimiter(normDelimiter); err != nil {
			return err
		}
		opt.Sheet = normSheet
		if normMaxRows > 0 {
			opt.MaxRows = normMaxRows
		}

		t, err := loadLeadFiles(args, opt)
		if err != nil {
			return err
		}

		if normOutputPath == "" {
			if err := t.WriteCSV(os.Stdout); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		} else {
			var buf bytes.Buffer
			if err := t.WriteCSV(&buf); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			if err := utils.SafeWriteFile(normOutputPath, buf.Bytes()); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %d leads to %s\n", t.Len(), normOutputPath)
		}
		if normSummary {
			fmt.Fprint(os.Stderr, report.Dataset(t))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().StringVarP(&normOutputPath, "output", "o", "", "write normalized CSV to file instead of stdout")
	normalizeCmd.Flags().StringVar(&normDelimiter, "delimiter", "", "force a delimiter: comma|tab|semicolon|pipe")
	normalizeCmd.Flags().StringVar(&normSheet, "sheet", "", "XLSX worksheet name (default first sheet)")
	normalizeCmd.Flags().IntVar(&normMaxRows, "max-rows", 0, "limit rows read per file")
	normalizeCmd.Flags().BoolVar(&normSummary, "summary", false, "print a dataset summary to stderr")
}
