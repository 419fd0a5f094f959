package core

// format.go serializes datasets to text.
//
// Column order always comes from the first record. Records with a different
// key set produce misaligned output; missing keys become empty cells.
//
// Known limitations, kept for output compatibility:
//   - CSV quotes values containing a comma but does not escape embedded
//     quotes or newlines.
//   - XML interpolates values without entity escaping.
//   - SQL single-quotes strings without escaping embedded quotes.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned when a format name is not recognized.
var ErrUnknownFormat = errors.New("unknown format")

// SQLTableName is the table used in generated INSERT statements.
const SQLTableName = "generated_data"

const xmlProlog = `<?xml version="1.0" encoding="UTF-8"?>`

// Format identifies an output serialization.
type Format int

const (
	FormatJSON Format = iota
	FormatCSV
	FormatXML
	FormatSQL

	formatCount
)

// SerializerFunc converts a dataset to text.
type SerializerFunc func(Dataset) string

// FormatInfo contains display and download information about a format.
type FormatInfo struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Extension   string `json:"extension"`
	ContentType string `json:"content_type"`
}

type formatDefinition struct {
	Info      FormatInfo
	Serialize SerializerFunc
}

// formats is indexed by Format.
var formats = [formatCount]formatDefinition{
	FormatJSON: {
		Info:      FormatInfo{Key: "json", Label: "JSON", Extension: "json", ContentType: "application/json"},
		Serialize: SerializeJSON,
	},
	FormatCSV: {
		Info:      FormatInfo{Key: "csv", Label: "CSV", Extension: "csv", ContentType: "text/csv"},
		Serialize: SerializeCSV,
	},
	FormatXML: {
		Info:      FormatInfo{Key: "xml", Label: "XML", Extension: "xml", ContentType: "application/xml"},
		Serialize: SerializeXML,
	},
	FormatSQL: {
		Info:      FormatInfo{Key: "sql", Label: "SQL", Extension: "sql", ContentType: "application/sql"},
		Serialize: SerializeSQL,
	},
}

// ParseFormat resolves a format name (case-insensitive).
func ParseFormat(name string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, def := range formats {
		if def.Info.Key == key {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// String returns the format key.
func (f Format) String() string {
	if f < 0 || f >= formatCount {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formats[f].Info.Key
}

// Info returns display and download information for f.
func (f Format) Info() FormatInfo {
	return formats[f].Info
}

// Formats returns every output format in declaration order.
func Formats() []FormatInfo {
	out := make([]FormatInfo, len(formats))
	for i, def := range formats {
		out[i] = def.Info
	}
	return out
}

// Serialize converts ds using format f.
func Serialize(ds Dataset, f Format) (string, error) {
	if f < 0 || f >= formatCount {
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	return formats[f].Serialize(ds), nil
}

// SerializeJSON pretty-prints ds with 2-space indentation.
// An empty dataset serializes to "[]".
func SerializeJSON(ds Dataset) string {
	if len(ds) == 0 {
		return "[]"
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		// Values are only ints and strings, which always encode.
		panic(fmt.Sprintf("encode dataset: %v", err))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// SerializeCSV writes a header row followed by one row per record, joined by "\n".
// An empty dataset serializes to "".
func SerializeCSV(ds Dataset) string {
	cols := ds.columns()
	if cols == nil {
		return ""
	}

	rows := make([]string, 0, len(ds)+1)
	rows = append(rows, strings.Join(cols, ","))

	cells := make([]string, len(cols))
	for _, rec := range ds {
		for i, col := range cols {
			v, _ := rec.Get(col)
			cell := formatValue(v)
			if s, ok := v.(string); ok && strings.Contains(s, ",") {
				cell = `"` + s + `"`
			}
			cells[i] = cell
		}
		rows = append(rows, strings.Join(cells, ","))
	}

	return strings.Join(rows, "\n")
}

// SerializeXML wraps records in <data> with one <record> element per record.
// An empty dataset still emits the prolog and an empty <data></data>.
func SerializeXML(ds Dataset) string {
	cols := ds.columns()
	if cols == nil {
		return xmlProlog + "\n<data></data>"
	}

	var b strings.Builder
	b.WriteString(xmlProlog)
	b.WriteString("\n<data>\n")
	for _, rec := range ds {
		b.WriteString("  <record>\n")
		for _, col := range cols {
			v, _ := rec.Get(col)
			fmt.Fprintf(&b, "    <%s>%s</%s>\n", col, formatValue(v), col)
		}
		b.WriteString("  </record>\n")
	}
	b.WriteString("</data>")
	return b.String()
}

// SerializeSQL emits a single multi-row INSERT INTO generated_data statement.
// An empty dataset serializes to "".
func SerializeSQL(ds Dataset) string {
	cols := ds.columns()
	if cols == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES\n", SQLTableName, strings.Join(cols, ", "))

	tuples := make([]string, len(ds))
	vals := make([]string, len(cols))
	for i, rec := range ds {
		for j, col := range cols {
			v, _ := rec.Get(col)
			if s, ok := v.(string); ok {
				vals[j] = "'" + s + "'"
			} else {
				vals[j] = formatValue(v)
			}
		}
		tuples[i] = "  (" + strings.Join(vals, ", ") + ")"
	}

	b.WriteString(strings.Join(tuples, ",\n"))
	b.WriteString(";")
	return b.String()
}

// formatValue renders a scalar for text formats. Missing values render empty.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	default:
		return fmt.Sprintf("%v", v)
	}
}
