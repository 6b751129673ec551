package extract

import (
	"encoding/json"
	"strings"
	"testing"
)

// decode parses s the way the engine does, keeping numbers as json.Number,
// so expected values compare equal with cmp.Diff.
func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return v
}
