package leads

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func buildWorkbook(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

const (
	testWorkbookXML = `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Summary" sheetId="1" r:id="rId1"/><sheet name="Contacts" sheetId="2" r:id="rId2"/></sheets>
</workbook>`
	testRelsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="/xl/worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="worksheets/sheet2.xml"/>
</Relationships>`
	testSharedXML = `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>Full Name</t></si><si><t>Company</t></si><si><r><t>Ada </t></r><r><t>Lovelace</t></r></si><si><t>Engines, Ltd</t></si>
</sst>`
	testSheet1XML = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>Total</t></is></c><c r="B1"><v>42</v></c></row>
</sheetData></worksheet>`
	testSheet2XML = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="C1" t="s"><v>1</v></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="C2" t="s"><v>3</v></c></row>
</sheetData></worksheet>`
)

func testWorkbook(t *testing.T) []byte {
	return buildWorkbook(t, map[string]string{
		"xl/workbook.xml":            testWorkbookXML,
		"xl/_rels/workbook.xml.rels": testRelsXML,
		"xl/sharedStrings.xml":       testSharedXML,
		"xl/worksheets/sheet1.xml":   testSheet1XML,
		"xl/worksheets/sheet2.xml":   testSheet2XML,
	})
}

func TestXLSXToCSVSelectsSheet(t *testing.T) {
	data := testWorkbook(t)

	out, err := xlsxToCSV(data, "")
	if err != nil {
		t.Fatalf("first sheet: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "Total,42" {
		t.Fatalf("first sheet csv = %q", got)
	}

	out, err = xlsxToCSV(data, "contacts")
	if err != nil {
		t.Fatalf("named sheet: %v", err)
	}
	want := "Full Name,,Company\nAda Lovelace,,\"Engines, Ltd\"\n"
	if string(out) != want {
		t.Fatalf("named sheet csv = %q, want %q", out, want)
	}

	if _, err := xlsxToCSV(data, "Missing"); err == nil || !strings.Contains(err.Error(), "Summary, Contacts") {
		t.Fatalf("expected missing sheet error listing sheets, got %v", err)
	}
}

func TestNormalizeFileXLSX(t *testing.T) {
	opt := DefaultOptions()
	opt.Sheet = "Contacts"
	tbl, err := NormalizeFile("export.XLSX", testWorkbook(t), opt)
	if err != nil {
		t.Fatalf("normalize xlsx: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", tbl.Len())
	}
	r := tbl.Rows[0]
	if r.Field(FieldFirstName) != "Ada" || r.Field(FieldLastName) != "Lovelace" || r.Field(FieldCompany) != "Engines, Ltd" {
		t.Fatalf("unexpected row: %v", r.Values)
	}
}

func TestNormalizeFileRejectsBrokenXLSX(t *testing.T) {
	if _, err := NormalizeFile("broken.xlsx", []byte("not a zip"), DefaultOptions()); err == nil {
		t.Fatal("expected error for invalid workbook")
	}
}

func TestColIndexFromRef(t *testing.T) {
	cases := map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA7": 26, "ab2": 27, "": -1, "12": -1}
	for ref, want := range cases {
		if got := colIndexFromRef(ref); got != want {
			t.Fatalf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}

func TestNormalizeRelPath(t *testing.T) {
	cases := map[string]string{
		"/xl/worksheets/sheet1.xml": "xl/worksheets/sheet1.xml",
		"worksheets/sheet1.xml":     "xl/worksheets/sheet1.xml",
		"/worksheets/sheet2.xml":    "xl/worksheets/sheet2.xml",
	}
	for in, want := range cases {
		if got := normalizeRelPath(in); got != want {
			t.Fatalf("normalizeRelPath(%q) = %q, want %q", in, got, want)
		}
	}
}
