package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Options controls how raw exports are turned into a normalized table.
type Options struct {
	// HeaderScanLines bounds how many leading lines are considered as header candidates.
	HeaderScanLines int
	// Delimiters are tried in order when Delimiter is 0.
	Delimiters []rune
	// Delimiter forces a single delimiter and skips detection.
	Delimiter rune
	// MaxRows limits rows kept per file; 0 means unlimited.
	MaxRows int
	// Sheet selects an XLSX worksheet by name; empty means the first sheet.
	Sheet string
}

// DefaultOptions returns the detection settings used for uploads.
func DefaultOptions() Options {
	return Options{
		HeaderScanLines: 25,
		Delimiters:      []rune{',', '\t', ';', '|'},
	}
}

// earlyAcceptMatches stops delimiter detection once a candidate maps this many fields.
const earlyAcceptMatches = 3

// Lead is one normalized row. Values holds every canonical field plus the
// unmapped source columns under their original names.
type Lead struct {
	Values     map[string]string
	QuickScore float64

	cols []string
}

// NewLead builds a lead whose columns are ordered as in columns. Canonical
// fields missing from values are added as "".
func NewLead(columns []string, values map[string]string) Lead {
	v := make(map[string]string, len(values)+len(CanonicalFields))
	for k, s := range values {
		v[k] = cleanCell(s)
	}
	cols := append([]string(nil), columns...)
	for _, f := range CanonicalFields {
		if _, ok := v[string(f)]; !ok {
			v[string(f)] = ""
		}
		if !slices.Contains(cols, string(f)) {
			cols = append(cols, string(f))
		}
	}
	return Lead{Values: v, cols: cols}
}

// Get returns the value of col, or "" when absent.
func (l Lead) Get(col string) string { return l.Values[col] }

// Columns returns the column order of the table the lead came from.
func (l Lead) Columns() []string {
	if l.cols != nil {
		return l.cols
	}
	cols := make([]string, 0, len(l.Values))
	for k := range l.Values {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Field returns the value of a canonical field.
func (l Lead) Field(f Field) string { return l.Values[string(f)] }

// Table is a normalized contact list.
type Table struct {
	Source       string
	Columns      []string
	Rows         []Lead
	Delimiter    rune
	HeaderOffset int
	Mapping      map[string]Field
}

// Len reports the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Normalize parses raw export bytes into a table exposing every canonical field.
func Normalize(data []byte, opt Options) (*Table, error) {
	return normalizeText("", data, opt)
}

// NormalizeFile is Normalize with format routing by file name. XLSX workbooks
// are flattened to delimited text first.
func NormalizeFile(name string, data []byte, opt Options) (*Table, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		text, err := xlsxToCSV(data, opt.Sheet)
		if err != nil {
			return nil, inputError(name, fmt.Errorf("read xlsx: %w", err))
		}
		opt.Delimiter = ','
		data = text
	}
	return normalizeText(name, data, opt)
}

type parsedCandidate struct {
	delim   rune
	header  []string
	records [][]string
	mapping map[string]Field
}

func normalizeText(source string, data []byte, opt Options) (*Table, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, inputError(source, err)
	}
	if opt.HeaderScanLines <= 0 {
		opt.HeaderScanLines = DefaultOptions().HeaderScanLines
	}
	delims := opt.Delimiters
	if opt.Delimiter != 0 {
		delims = []rune{opt.Delimiter}
	} else if len(delims) == 0 {
		delims = DefaultOptions().Delimiters
	}

	lines := strings.Split(text, "\n")
	offset, matches := LocateHeader(lines, opt.HeaderScanLines)
	zap.L().Debug("csv header detected",
		zap.String("source", source),
		zap.Int("line", offset),
		zap.Int("matches", matches),
	)
	body := strings.Join(lines[offset:], "\n")

	var best *parsedCandidate
	for _, d := range delims {
		header, records, err := readDelimited(body, d, opt.MaxRows)
		if err != nil || len(records) == 0 {
			continue
		}
		mapping := Canonicalize(header)
		if best == nil || len(mapping) > len(best.mapping) {
			best = &parsedCandidate{delim: d, header: header, records: records, mapping: mapping}
		}
		if len(mapping) >= earlyAcceptMatches {
			break
		}
	}
	if best == nil {
		return nil, inputError(source, ErrEmptyDataset)
	}

	t := buildTable(best.header, best.records, best.mapping)
	t.Source = source
	t.Delimiter = best.delim
	t.HeaderOffset = offset
	zap.L().Info("csv normalized",
		zap.String("source", source),
		zap.String("delimiter", fmt.Sprintf("%q", best.delim)),
		zap.Int("skipped_lines", offset),
		zap.Strings("columns", best.header),
		zap.Any("mapping", best.mapping),
		zap.Int("rows", t.Len()),
	)
	return t, nil
}

// readDelimited parses body with delim and returns the cleaned header and the
// non-blank data records.
func readDelimited(body string, delim rune, maxRows int) ([]string, [][]string, error) {
	r := csv.NewReader(strings.NewReader(body))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	header := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		header[i] = cleanHeader(c)
	}
	header = uniqueNames(header)

	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRecord(row) {
			continue
		}
		records = append(records, row)
		if maxRows > 0 && len(records) >= maxRows {
			break
		}
	}
	return header, records, nil
}

func cleanHeader(c string) string {
	c = strings.TrimSpace(c)
	c = strings.Trim(c, `"`)
	c = strings.Trim(c, `'`)
	return strings.TrimSpace(c)
}

// uniqueNames fills blank headers and disambiguates duplicates with a numeric suffix.
func uniqueNames(cols []string) []string {
	out := make([]string, len(cols))
	taken := make(map[string]bool, len(cols))
	for i, c := range cols {
		if c == "" {
			c = fmt.Sprintf("Unnamed: %d", i)
		}
		name := c
		for n := 1; taken[name]; n++ {
			name = fmt.Sprintf("%s.%d", c, n)
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

func blankRecord(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteCSV writes the table as comma-separated text with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			rec[i] = row.Get(c)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
