package extract

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

var errTrailingData = errors.New("unexpected data after top-level value")

// strictParse decodes s as exactly one JSON value. Numbers are kept as
// json.Number so record values survive untouched until presentation.
func strictParse(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errTrailingData
		}
		return nil, err
	}
	return v, nil
}

// parseContainer is strictParse restricted to array and object roots.
func parseContainer(s string) (any, error) {
	v, err := strictParse(s)
	if err != nil {
		return nil, err
	}
	if !isContainer(v) {
		return nil, errors.New("top-level value is not an array or object")
	}
	return v, nil
}

func isContainer(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return true
	default:
		return false
	}
}

// syntaxErrorOffset returns the byte offset of a JSON syntax error, or -1.
func syntaxErrorOffset(err error) int64 {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset
	}
	return -1
}
