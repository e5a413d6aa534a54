package templateguard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind enumerates the field kinds the template vocabulary supports. The
// vocabulary is fixed and small; this is not a general-purpose schema
// language.
type Kind string

const (
	KindString  Kind = "string"  // textual value
	KindInteger Kind = "integer" // whole number
	KindColumns Kind = "columns" // list of column names, indices, or ranges
	KindText    Kind = "text"    // free text; any scalar accepted
)

// kindAliases maps accepted raw spellings to kinds. The angle-bracket forms
// are the placeholder notation used by early templates and remain readable.
var kindAliases = map[string]Kind{
	"string":                 KindString,
	"<string>":               KindString,
	"integer":                KindInteger,
	"int":                    KindInteger,
	"<int>":                  KindInteger,
	"columns":                KindColumns,
	"<column_name_or_index>": KindColumns,
	"text":                   KindText,
	"free_text":              KindText,
}

// ParseKind resolves a raw kind spelling, reporting ok=false for unknown ones.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindAliases[strings.TrimSpace(s)]
	return k, ok
}

// Field describes a single template field.
type Field struct {
	Name     string
	Required bool
	Kind     Kind
}

// Schema is one immutable version of the template: a named, versioned set of
// field descriptors. Field names are unique within a Schema.
type Schema struct {
	Version Version

	fields []Field          // declaration order (sorted by name at load)
	index  map[string]Field // name -> descriptor
}

// Load parses a raw structured representation into a Schema. The expected
// shape is:
//
//	version: "1.0"
//	fields:
//	  cohort:   {kind: string, required: true}
//	  features: columns        # shorthand: bare kind, optional field
//
// It returns Issues with code malformed_schema when the version is missing or
// unparsable or fields is not a mapping, and duplicate_field when two field
// names collide after whitespace normalization.
func Load(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, Issues{IssueAt("/", CodeMalformedSchema, "schema must be a mapping", nil)}
	}

	ver, iss := loadVersion(raw)
	if iss != nil {
		return nil, iss
	}

	rawFields, ok := raw["fields"]
	if !ok {
		return nil, Issues{IssueAt("/fields", CodeMalformedSchema, "schema is missing a 'fields' mapping", nil)}
	}
	fieldMap, ok := rawFields.(map[string]any)
	if !ok {
		return nil, Issues{IssueAt("/fields", CodeMalformedSchema,
			fmt.Sprintf("'fields' must be a mapping, got %s", typeName(rawFields)), nil)}
	}

	names := make([]string, 0, len(fieldMap))
	for name := range fieldMap {
		names = append(names, name)
	}
	sort.Strings(names)

	s := &Schema{
		Version: ver,
		fields:  make([]Field, 0, len(names)),
		index:   make(map[string]Field, len(names)),
	}
	var issues Issues
	for _, rawName := range names {
		name := strings.TrimSpace(rawName)
		if name == "" {
			issues = AppendIssues(issues, IssueAt("/fields", CodeMalformedSchema, "field name must not be empty", nil))
			continue
		}
		if _, dup := s.index[name]; dup {
			issues = AppendIssues(issues, IssueAt("/fields/"+name, CodeDuplicateField,
				fmt.Sprintf("field %q declared more than once", name), nil))
			continue
		}
		f, ferr := loadField(name, fieldMap[rawName])
		if ferr != nil {
			issues = AppendIssues(issues, ferr...)
			continue
		}
		s.fields = append(s.fields, f)
		s.index[name] = f
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return s, nil
}

func loadVersion(raw map[string]any) (Version, Issues) {
	rv, ok := raw["version"]
	if !ok {
		return Version{}, Issues{IssueAt("/version", CodeMalformedSchema, "schema is missing a 'version' field", nil)}
	}
	var text string
	switch t := rv.(type) {
	case string:
		text = t
	case float64:
		// YAML renders an unquoted 1.0 as a float; recover the two-component
		// form. Quoting the version in the template avoids the round trip.
		text = strconv.FormatFloat(t, 'f', -1, 64)
		if !strings.Contains(text, ".") {
			text += ".0"
		}
	default:
		return Version{}, Issues{IssueAt("/version", CodeMalformedSchema,
			fmt.Sprintf("version must be a \"<major>.<minor>\" string, got %s", typeName(rv)), nil)}
	}
	ver, err := ParseVersion(text)
	if err != nil {
		return Version{}, Issues{IssueAt("/version", CodeMalformedSchema, err.Error(), nil)}
	}
	return ver, nil
}

// loadField parses one descriptor. Accepted shapes: a bare kind string
// (optional field of that kind) or a mapping with "kind" and an optional
// "required" bool.
func loadField(name string, raw any) (Field, Issues) {
	path := "/fields/" + name
	switch t := raw.(type) {
	case string:
		kind, ok := ParseKind(t)
		if !ok {
			return Field{}, Issues{IssueAt(path, CodeMalformedSchema,
				fmt.Sprintf("unknown kind %q for field %q", t, name), nil)}
		}
		return Field{Name: name, Kind: kind}, nil
	case map[string]any:
		rawKind, ok := t["kind"].(string)
		if !ok {
			return Field{}, Issues{IssueAt(path, CodeMalformedSchema,
				fmt.Sprintf("field %q descriptor needs a 'kind' string", name), nil)}
		}
		kind, ok := ParseKind(rawKind)
		if !ok {
			return Field{}, Issues{IssueAt(path, CodeMalformedSchema,
				fmt.Sprintf("unknown kind %q for field %q", rawKind, name), nil)}
		}
		f := Field{Name: name, Kind: kind}
		if rr, present := t["required"]; present {
			b, ok := rr.(bool)
			if !ok {
				return Field{}, Issues{IssueAt(path, CodeMalformedSchema,
					fmt.Sprintf("field %q 'required' must be a bool, got %s", name, typeName(rr)), nil)}
			}
			f.Required = b
		}
		return f, nil
	default:
		return Field{}, Issues{IssueAt(path, CodeMalformedSchema,
			fmt.Sprintf("field %q descriptor must be a kind string or a mapping, got %s", name, typeName(raw)), nil)}
	}
}

// Field returns the descriptor for name, with ok=false when absent.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.index[name]
	return f, ok
}

// Fields returns the descriptors in stable declaration order. The returned
// slice must not be mutated.
func (s *Schema) Fields() []Field { return s.fields }

// Raw re-emits the canonical raw structured form of the schema, suitable for
// persistence and for feeding back into Load.
func (s *Schema) Raw() map[string]any {
	fields := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		fields[f.Name] = map[string]any{
			"kind":     string(f.Kind),
			"required": f.Required,
		}
	}
	return map[string]any{
		"version": s.Version.String(),
		"fields":  fields,
	}
}

// typeName renders the loader-level shape of an untyped value for messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64:
		return "integer"
	case float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
