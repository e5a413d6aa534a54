// Package yaml reads YAML documents into the untyped mapping the core
// consumes. Decoding is strict: duplicate mapping keys are reported as errors
// with positions instead of silently overwriting, which is how a repeated
// template field name surfaces before schema loading ever sees a merged map.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	yamlv3 "gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// Decode parses a single YAML document into a JSON-like mapping
// (map[string]any, []any, string/int64/float64/bool/nil scalars). A non-map
// root is an error: both templates and documents are mappings at the top.
func Decode(data []byte) (map[string]any, error) {
	dec := yamlv3.NewDecoder(bytes.NewReader(data))
	var root yamlv3.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("yaml: empty document")
		}
		return nil, err
	}
	v, err := nodeToValue(&root)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("yaml: document root must be a mapping")
	}
	return m, nil
}

// DecodeFile reads and decodes one YAML file.
func DecodeFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func nodeToValue(n *yamlv3.Node) (any, error) {
	switch n.Kind {
	case yamlv3.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeToValue(n.Content[0])
	case yamlv3.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			// YAML spec keys should be scalars in our expected inputs.
			key := k.Value
			if pos, dup := first[key]; dup {
				return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[key] = [2]int{k.Line, k.Column}
			val, err := nodeToValue(v)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	case yamlv3.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeToValue(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yamlv3.ScalarNode:
		switch n.Tag {
		case "!!str", "!", "":
			return n.Value, nil
		case "!!null":
			return nil, nil
		case "!!bool":
			if n.Value == "true" {
				return true, nil
			}
			if n.Value == "false" {
				return false, nil
			}
			return n.Value, nil
		case "!!int":
			// Use int64 to avoid overflow surprises; callers can coerce later
			if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
				return i, nil
			}
			return n.Value, nil
		case "!!float":
			if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
				return f, nil
			}
			return n.Value, nil
		default:
			// Fallback to raw string
			return n.Value, nil
		}
	default:
		return nil, nil
	}
}

// Encode renders a mapping back to YAML, for archive persistence.
func Encode(m map[string]any) ([]byte, error) {
	return yamlv3.Marshal(m)
}
