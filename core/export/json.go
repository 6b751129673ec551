package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ErrInvalidJSON is returned when raw record text does not parse.
var ErrInvalidJSON = errors.New("export: invalid JSON")

// WriteJSON writes v as JSON followed by a newline. A string or []byte is
// taken as raw JSON and reformatted without reordering keys; anything else
// is marshaled first. indent selects pretty output over compact output.
func WriteJSON(w io.Writer, v any, indent bool) error {
	var raw []byte
	switch t := v.(type) {
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("export: marshal: %w", err)
		}
		raw = b
	}

	if !gjson.ValidBytes(raw) {
		return ErrInvalidJSON
	}

	var out []byte
	if indent {
		out = pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  "})
	} else {
		out = append(pretty.Ugly(raw), '\n')
	}
	_, err := w.Write(out)
	return err
}
