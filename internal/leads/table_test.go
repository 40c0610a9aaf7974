package leads

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func mustNormalize(t *testing.T, content string) *Table {
	t.Helper()
	tbl, err := Normalize([]byte(content), DefaultOptions())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return tbl
}

func assertCanonicalPresent(t *testing.T, tbl *Table) {
	t.Helper()
	for i, row := range tbl.Rows {
		for _, f := range CanonicalFields {
			if _, ok := row.Values[string(f)]; !ok {
				t.Fatalf("row %d missing canonical field %q", i, f)
			}
		}
	}
}

func TestNormalizeSplitsFullName(t *testing.T) {
	tbl := mustNormalize(t, "Full Name, Org, Role\n"+
		"Ada Lovelace, Analytical Engines, Mathematician\n"+
		"Grace Brewster Hopper, US Navy, Rear Admiral\n")
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	assertCanonicalPresent(t, tbl)
	r0, r1 := tbl.Rows[0], tbl.Rows[1]
	if r0.Field(FieldFirstName) != "Ada" || r0.Field(FieldLastName) != "Lovelace" {
		t.Fatalf("name split failed: %v", r0.Values)
	}
	if r1.Field(FieldFirstName) != "Grace" || r1.Field(FieldLastName) != "Brewster Hopper" {
		t.Fatalf("name split should keep the remainder as last name: %v", r1.Values)
	}
	if r0.Field(FieldCompany) != "Analytical Engines" || r0.Field(FieldPosition) != "Mathematician" {
		t.Fatalf("rename failed: %v", r0.Values)
	}
	if r0.Get("Full Name") != "Ada Lovelace" {
		t.Fatalf("original column should be preserved: %v", r0.Values)
	}
}

func TestNormalizeNameSplitDoesNotOverwrite(t *testing.T) {
	tbl := mustNormalize(t, "Name,First Name,Company\n"+
		"Ada Lovelace,,Analytical Engines\n"+
		"Grace Hopper,,US Navy\n")
	if got := tbl.Rows[0].Field(FieldFirstName); got != "Ada" {
		t.Fatalf("empty first name column should be filled, got %q", got)
	}

	tbl = mustNormalize(t, "Name,First Name,Company\n"+
		"Ada Lovelace,Augusta,Analytical Engines\n")
	r := tbl.Rows[0]
	if r.Field(FieldFirstName) != "Augusta" {
		t.Fatalf("real first name must not be overwritten: %v", r.Values)
	}
	if r.Field(FieldLastName) != "Lovelace" {
		t.Fatalf("absent last name should come from the split: %v", r.Values)
	}
}

func TestNormalizeDetectsDelimiters(t *testing.T) {
	cases := []struct {
		name    string
		content string
		delim   rune
	}{
		{"comma", "First Name,Last Name,Company\nAda,Lovelace,Engines\n", ','},
		{"tab", "First Name\tLast Name\tCompany\nAda\tLovelace\tEngines\n", '\t'},
		{"semicolon", "First Name;Last Name;Company\nAda;Lovelace;Engines\n", ';'},
		{"pipe", "First Name|Last Name|Company\nAda|Lovelace|Engines\n", '|'},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl := mustNormalize(t, tc.content)
			if tbl.Delimiter != tc.delim {
				t.Fatalf("delimiter = %q, want %q", tbl.Delimiter, tc.delim)
			}
			r := tbl.Rows[0]
			if r.Field(FieldFirstName) != "Ada" || r.Field(FieldLastName) != "Lovelace" || r.Field(FieldCompany) != "Engines" {
				t.Fatalf("unexpected row: %v", r.Values)
			}
		})
	}
}

func TestNormalizeSkipsBannerRows(t *testing.T) {
	content := "Notes:\n" +
		"Data exported 2024-01-01\n" +
		"\n" +
		"First Name,Last Name,URL,Email Address,Company,Position,Connected On\n" +
		"Ada,Lovelace,https://example.com/in/ada,,Analytical Engines,Founder,01 Jan 2024\n"
	tbl := mustNormalize(t, content)
	if tbl.HeaderOffset != 3 {
		t.Fatalf("header offset = %d, want 3", tbl.HeaderOffset)
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", tbl.Len())
	}
	r := tbl.Rows[0]
	if r.Field(FieldURL) != "https://example.com/in/ada" || r.Field(FieldPosition) != "Founder" {
		t.Fatalf("unexpected row: %v", r.Values)
	}
	if r.Field(FieldConnectedOn) != "01 Jan 2024" {
		t.Fatalf("connected on: %v", r.Values)
	}
}

func TestNormalizeMissingTokensBecomeEmpty(t *testing.T) {
	tbl := mustNormalize(t, "First Name,Last Name,Company,Industry\n"+
		"Ada,NaN,N/A,null\n")
	r := tbl.Rows[0]
	for _, f := range []Field{FieldLastName, FieldCompany, FieldIndustry, FieldLocation} {
		if r.Field(f) != "" {
			t.Fatalf("%s should be empty, got %q", f, r.Field(f))
		}
	}
}

func TestNormalizeRaggedRowsAndCollisions(t *testing.T) {
	tbl := mustNormalize(t, "Organization,Company,First Name\n"+
		"Engines Ltd,ignored\n"+
		"Navy,x,Grace,extra\n")
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	if tbl.Rows[0].Field(FieldFirstName) != "" {
		t.Fatalf("short row should be padded: %v", tbl.Rows[0].Values)
	}
	if tbl.Rows[0].Field(FieldCompany) != "Engines Ltd" || tbl.Rows[0].Get("Company.1") != "ignored" {
		t.Fatalf("colliding column should be suffixed: %v", tbl.Rows[0].Values)
	}
	if tbl.Rows[1].Field(FieldFirstName) != "Grace" {
		t.Fatalf("long row should be truncated: %v", tbl.Rows[1].Values)
	}
}

func TestNormalizeDecoding(t *testing.T) {
	latin1 := []byte("First Name,Last Name,Company\r\nJos\xe9,Garc\xeda,Acme\r\n")
	tbl, err := Normalize(latin1, DefaultOptions())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got := tbl.Rows[0].Field(FieldFirstName); got != "José" {
		t.Fatalf("latin-1 fallback: got %q", got)
	}
	if got := tbl.Rows[0].Field(FieldCompany); got != "Acme" {
		t.Fatalf("CRLF handling: got %q", got)
	}

	bom := "\ufeffFirst Name,Company\nAda,Engines\n"
	tbl = mustNormalize(t, bom)
	if tbl.Columns[0] != "First Name" {
		t.Fatalf("BOM should be stripped, first column = %q", tbl.Columns[0])
	}
}

func TestNormalizeInputErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{"empty", "", ErrEmptyFile},
		{"whitespace", "  \n\t \n", ErrNoContent},
		{"header only", "First Name,Last Name,Company\n", ErrEmptyDataset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeFile("contacts.csv", []byte(tc.content), DefaultOptions())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var ie *InputError
			if !errors.As(err, &ie) || ie.Source != "contacts.csv" {
				t.Fatalf("expected InputError for contacts.csv, got %#v", err)
			}
		})
	}
}

func TestNormalizeUnrecognizedHeadersStillLoad(t *testing.T) {
	tbl := mustNormalize(t, "alpha,beta\n1,2\n")
	if tbl.Len() != 1 || len(tbl.Mapping) != 0 {
		t.Fatalf("expected baseline table, got rows=%d mapping=%v", tbl.Len(), tbl.Mapping)
	}
	assertCanonicalPresent(t, tbl)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	first := mustNormalize(t, "Full Name, Org, Role, LinkedIn URL\n"+
		"Ada Lovelace, Analytical Engines, Mathematician, https://example.com/ada\n"+
		"Grace Hopper, US Navy, Rear Admiral,\n")

	canonicalOnly := &Table{}
	for _, f := range CanonicalFields {
		canonicalOnly.Columns = append(canonicalOnly.Columns, string(f))
	}
	canonicalOnly.Rows = first.Rows

	var buf bytes.Buffer
	if err := canonicalOnly.WriteCSV(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	second := mustNormalize(t, buf.String())
	if !reflect.DeepEqual(second.Columns, canonicalOnly.Columns) {
		t.Fatalf("columns changed: %v", second.Columns)
	}
	for col, f := range second.Mapping {
		if col != string(f) {
			t.Fatalf("column %q renamed to %q", col, f)
		}
	}

	buf.Reset()
	if err := second.WriteCSV(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	third := mustNormalize(t, buf.String())
	for i := range second.Rows {
		if !reflect.DeepEqual(second.Rows[i].Values, third.Rows[i].Values) {
			t.Fatalf("row %d changed: %v vs %v", i, second.Rows[i].Values, third.Rows[i].Values)
		}
	}
}

func TestUniqueNames(t *testing.T) {
	got := uniqueNames([]string{"Email", "", "Email", "Email.1", "Email"})
	want := []string{"Email", "Unnamed: 1", "Email.1", "Email.1.1", "Email.2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("uniqueNames = %v, want %v", got, want)
	}
}

func TestSplitName(t *testing.T) {
	cases := []struct{ in, first, last string }{
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"  Cher  ", "Cher", ""},
		{"Grace \t Brewster Hopper", "Grace", "Brewster Hopper"},
		{"", "", ""},
	}
	for _, tc := range cases {
		f, l := SplitName(tc.in)
		if f != tc.first || l != tc.last {
			t.Fatalf("SplitName(%q) = %q,%q want %q,%q", tc.in, f, l, tc.first, tc.last)
		}
	}
}
