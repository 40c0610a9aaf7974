package leads

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// xlsxToCSV flattens one worksheet of an XLSX workbook to comma-separated
// text. An empty sheet name selects the first sheet in workbook order.
func xlsxToCSV(data []byte, sheet string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	sheets := parseWorkbook(readZipFile(zr, "xl/workbook.xml"))
	rels := parseRelationships(readZipFile(zr, "xl/_rels/workbook.xml.rels"))

	target := ""
	for _, s := range sheets {
		if sheet != "" && !strings.EqualFold(s.name, sheet) {
			continue
		}
		if rel, ok := rels[s.rid]; ok {
			target = normalizeRelPath(rel)
		}
		break
	}
	if target == "" {
		if sheet != "" {
			names := make([]string, len(sheets))
			for i, s := range sheets {
				names[i] = s.name
			}
			return nil, fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(names, ", "))
		}
		target = "xl/worksheets/sheet1.xml"
	}
	sheetXML := readZipFile(zr, target)
	if sheetXML == nil {
		return nil, errors.New("worksheet missing from workbook")
	}

	shared := parseSharedStrings(readZipFile(zr, "xl/sharedStrings.xml"))
	rr := newSheetRowReader(sheetXML, shared)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type workbookSheet struct {
	name string
	rid  string
}

func parseWorkbook(data []byte) []workbookSheet {
	var sheets []workbookSheet
	eachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "sheet" {
			return
		}
		var s workbookSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.name = a.Value
			case "id":
				s.rid = a.Value
			}
		}
		sheets = append(sheets, s)
	})
	return sheets
}

// parseRelationships maps relationship ids to their targets.
func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	eachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "Relationship" {
			return
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	})
	return out
}

func eachStart(data []byte, fn func(xml.StartElement)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		if se, ok := tok.(xml.StartElement); ok {
			fn(se)
		}
	}
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inT := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Next returns the cells of the next row, placed by their column reference.
func (r *sheetRowReader) Next() ([]string, bool) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow = true
				row = row[:0]
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				idx := colIndexFromRef(ref)
				if idx < 0 {
					idx = len(row)
				}
				for len(row) <= idx {
					row = append(row, "")
				}
				row[idx] = r.cellValue(typ)
			}
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				return row, true
			}
		}
	}
}

// cellValue reads up to the end of the current <c> element.
func (r *sheetRowReader) cellValue(typ string) string {
	var val strings.Builder
	inText := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val.String()
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				inText = true
			}
		case xml.CharData:
			if inText {
				val.Write(se)
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "v", "t":
				inText = false
			case "c":
				if typ == "s" {
					idx := atoiSafe(val.String())
					if idx >= 0 && idx < len(r.shared) {
						return r.shared[idx]
					}
					return ""
				}
				return val.String()
			}
		}
	}
}

// colIndexFromRef converts a cell reference such as "C12" to a 0-based
// column index. It returns -1 when ref has no column letters.
func colIndexFromRef(ref string) int {
	idx := 0
	n := 0
	for _, c := range strings.ToUpper(ref) {
		if c < 'A' || c > 'Z' {
			break
		}
		idx = idx*26 + int(c-'A'+1)
		n++
	}
	if n == 0 {
		return -1
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath turns a relationship target into a zip entry name.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
