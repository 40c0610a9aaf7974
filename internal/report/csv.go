// Package report renders analysis results as CSV attachments and text summaries.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/KaramelBytes/leadloom-cli/internal/scoring"
	"github.com/KaramelBytes/leadloom-cli/internal/utils"
)

// CSVHeader is the column order of a lead report.
var CSVHeader = []string{"Name", "Company", "Role", "Score", "Reasoning", "Symmetric Value", "Industry", "Location", "URL", "Email"}

// WriteCSV writes ranked leads with a header row.
func WriteCSV(w io.Writer, rows []scoring.ScoredLead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, l := range rows {
		rec := []string{
			l.Name, l.Company, l.Role,
			strconv.FormatFloat(l.Score, 'f', -1, 64),
			l.Reasoning, l.SymmetricValue,
			l.Industry, l.Location, l.URL, l.Email,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVBytes is WriteCSV into memory.
func CSVBytes(rows []scoring.ScoredLead) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveCSV writes the report to path atomically.
func SaveCSV(path string, rows []scoring.ScoredLead) error {
	b, err := CSVBytes(rows)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

// Filename is the attachment name for a report generated at t.
func Filename(t time.Time) string {
	return "leadloom-report-" + t.UTC().Format("2006-01-02") + ".csv"
}
