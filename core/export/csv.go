package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Field is one flattened cell of a record.
type Field struct {
	Name  string
	Value string
}

// scalarColumn names the single column of a record that is not an object.
const scalarColumn = "value"

// Flatten turns one record into cells in document order. Keys of nested
// objects are prefixed with their parents' keys, joined by a space, so
// {"Individual": {"Number": 3}} yields the column "Individual Number".
// A record that is not an object becomes a single "value" cell.
func Flatten(recordJSON string) []Field {
	root := gjson.Parse(recordJSON)
	if !root.IsObject() {
		return []Field{{Name: scalarColumn, Value: cell(root)}}
	}
	var fields []Field
	flattenInto(&fields, "", root)
	return fields
}

func flattenInto(fields *[]Field, prefix string, obj gjson.Result) {
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if prefix != "" {
			name = prefix + " " + name
		}
		if value.IsObject() {
			flattenInto(fields, name, value)
		} else {
			*fields = append(*fields, Field{Name: name, Value: cell(value)})
		}
		return true
	})
}

// cell renders a scalar for a spreadsheet. Numbers keep the model's spelling
// unless it uses an exponent, which becomes a plain decimal.
func cell(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, "eE") {
			return v.Raw
		}
		d, err := decimal.NewFromString(v.Raw)
		if err != nil {
			return v.Raw
		}
		return d.String()
	case gjson.String:
		return v.String()
	default:
		return gjson.Get(v.Raw, "@ugly").Raw
	}
}

// WriteCSV writes recordsJSON, an array of records or a single record, as
// CSV with a header row. Columns appear in the order they are first seen
// across records; cells a record lacks are left empty.
func WriteCSV(w io.Writer, recordsJSON string) error {
	if !gjson.Valid(recordsJSON) {
		return ErrInvalidJSON
	}

	root := gjson.Parse(recordsJSON)
	records := []gjson.Result{root}
	if root.IsArray() {
		records = root.Array()
	}

	var (
		columns []string
		index   = make(map[string]int)
		rows    = make([]map[string]string, 0, len(records))
	)
	for _, rec := range records {
		row := make(map[string]string)
		for _, f := range Flatten(rec.Raw) {
			if _, ok := index[f.Name]; !ok {
				index[f.Name] = len(columns)
				columns = append(columns, f.Name)
			}
			row[f.Name] = f.Value
		}
		rows = append(rows, row)
	}

	cw := csv.NewWriter(w)
	if len(columns) > 0 {
		if err := cw.Write(columns); err != nil {
			return fmt.Errorf("export: write header: %w", err)
		}
	}
	line := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			line[i] = row[col]
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
