package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/leofalp/docextract/core/extract"
)

// Extractors for composite targets. Library repair is enabled because
// callers of ParseStringAs want a value more than a diagnosis.
var (
	listExtractor   = extract.New(extract.WithLibraryRepair())
	recordExtractor = extract.New(extract.WithLibraryRepair(), extract.WithObjectRoot())
)

var errNotWrapped = errors.New("not a schema-wrapped value")

// ParseStringAs parses content into a value of type T.
//
// Example usage:
//
//	type Person struct {
//	    Name string `json:"name"`
//	    Age  int    `json:"age"`
//	}
//
//	person, err := parse.ParseStringAs[Person]("```json\n{name: 'John', age: 30,}\n```")
//	count, err := parse.ParseStringAs[int]("42")
//
// Truncated composite input yields the complete part only: a cut-off record
// is dropped, never guessed.
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	switch kind := target.Kind(); {
	case kind == reflect.String:
		if strings.HasPrefix(content, "{") {
			if unwrapped, err := tryUnwrapPrimitive(content); err == nil {
				target.SetString(unwrapped)
				return result, nil
			}
		}
		target.SetString(content)
		return result, nil

	case isScalar(kind):
		err := setScalar(target, strings.TrimSpace(content))
		if err == nil {
			return result, nil
		}
		if unwrapped, unwrapErr := tryUnwrapPrimitive(content); unwrapErr == nil {
			if setScalar(target, unwrapped) == nil {
				return result, nil
			}
		}
		return result, fmt.Errorf("failed to parse content as %s: %w", kind, err)
	}

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	extractor := listExtractor
	if kind := target.Kind(); kind == reflect.Struct || kind == reflect.Map {
		extractor = recordExtractor
	}
	res := extractor.Extract(context.Background(), extract.RawCompletion{
		Text:         content,
		FinishReason: extract.FinishStop,
	})
	return ResultAs[T](res)
}

// ResultAs decodes the JSON carried by res into T. A failed result returns
// its diagnostic wrapped, so errors.Is against the extract sentinels works.
func ResultAs[T any](res extract.Result) (T, error) {
	var result T
	if err := res.Err(); err != nil {
		return result, fmt.Errorf("failed to extract JSON: %w", err)
	}

	err := json.Unmarshal([]byte(res.JSON), &result)
	if err == nil {
		return result, nil
	}

	if unwrapped, unwrapErr := unwrapSchemaValues(res.JSON); unwrapErr == nil {
		var retry T
		if json.Unmarshal([]byte(unwrapped), &retry) == nil {
			return retry, nil
		}
	}
	return result, fmt.Errorf("failed to unmarshal %s JSON as %T: %w", res.Status, result, err)
}

func isScalar(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// setScalar parses s into target, honoring the target's bit size. target is
// left untouched on error.
func setScalar(target reflect.Value, s string) error {
	switch target.Kind() {
	case reflect.Bool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		target.SetBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(s, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(s, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(s, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetFloat(v)
	default:
		return fmt.Errorf("unsupported kind %s", target.Kind())
	}
	return nil
}

// decodeAny decodes s keeping numbers as json.Number.
func decodeAny(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// tryUnwrapPrimitive returns the textual value of a {"type": ..., "value": ...}
// envelope.
func tryUnwrapPrimitive(content string) (string, error) {
	data, err := decodeAny(content)
	if err != nil {
		return "", err
	}
	value, ok := schemaValue(data)
	if !ok {
		return "", errNotWrapped
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		encoded, err := marshalNoEscape(v)
		if err != nil {
			return "", err
		}
		return encoded, nil
	}
}

// unwrapSchemaValues replaces every envelope in the document with its value.
//
//	{"name": {"type": "string", "value": "John"}} → {"name":"John"}
func unwrapSchemaValues(jsonStr string) (string, error) {
	data, err := decodeAny(jsonStr)
	if err != nil {
		return "", err
	}
	return marshalNoEscape(unwrap(data))
}

func unwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if value, ok := schemaValue(v); ok {
			return unwrap(value)
		}
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = unwrap(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = unwrap(val)
		}
		return out
	default:
		return data
	}
}

// schemaValue reports whether data is exactly {"type": ..., "value": ...}.
func schemaValue(data any) (any, bool) {
	m, ok := data.(map[string]any)
	if !ok || len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}

func marshalNoEscape(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
