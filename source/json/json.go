// Package json reads JSON documents into the untyped mapping the core
// consumes, normalizing numbers to the same value shapes the YAML loader
// produces (int64 for whole numbers, float64 otherwise).
package json

import (
	"bytes"
	"errors"
	"os"

	gojson "github.com/goccy/go-json"
)

// Decode parses a JSON object into a JSON-like mapping with normalized
// scalar shapes. A non-object root is an error.
func Decode(data []byte) (map[string]any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	m, ok := normalize(v).(map[string]any)
	if !ok {
		return nil, errors.New("json: document root must be an object")
	}
	return m, nil
}

// DecodeFile reads and decodes one JSON file.
func DecodeFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalize(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalize(t[i])
		}
		return out
	case gojson.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

// Encode renders a mapping as JSON, for archive persistence.
func Encode(m map[string]any) ([]byte, error) {
	return gojson.Marshal(m)
}
