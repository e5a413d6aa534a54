package templateguard

import (
	"fmt"
	"sort"
	"strconv"
)

// Result collects every problem found in one validation pass. A document may
// accumulate multiple independent errors and warnings; nothing short-circuits.
type Result struct {
	Errors   Issues
	Warnings Issues
}

// Passed reports the overall verdict: true iff no errors were recorded.
// Warnings never affect the verdict unless strict mode promoted them.
func (r Result) Passed() bool { return len(r.Errors) == 0 }

// Validate checks a concrete document against a schema. It is a pure function
// of its inputs: identical calls yield identical results, and issue order is
// deterministic (schema declaration order, then unknown fields sorted).
//
// With strict=true all warnings are promoted to errors before the result is
// returned.
func Validate(doc map[string]any, s *Schema, strict bool) Result {
	var res Result

	for _, f := range s.Fields() {
		v, present := doc[f.Name]
		if !present {
			if f.Required {
				res.Errors = AppendIssues(res.Errors, IssueAt("/"+f.Name, CodeMissingRequiredField,
					fmt.Sprintf("missing required field %q", f.Name), nil))
			} else {
				res.Warnings = AppendIssues(res.Warnings, IssueAt("/"+f.Name, CodeMissingOptionalField,
					fmt.Sprintf("optional field %q not provided", f.Name), nil))
			}
			continue
		}
		res.Errors = AppendIssues(res.Errors, checkKind(f, v)...)
	}

	unknown := make([]string, 0)
	for name := range doc {
		if _, ok := s.Field(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		res.Warnings = AppendIssues(res.Warnings, IssueAt("/"+name, CodeUnknownField,
			fmt.Sprintf("field %q is not declared by schema version %s", name, s.Version), nil))
	}

	if strict {
		res.Errors = AppendIssues(res.Errors, res.Warnings...)
		res.Warnings = nil
	}
	return res
}

// checkKind verifies a present value against the declared kind.
func checkKind(f Field, v any) Issues {
	path := "/" + f.Name
	switch f.Kind {
	case KindString:
		if _, ok := v.(string); !ok {
			return Issues{mismatch(path, f, v)}
		}
	case KindInteger:
		if !isWholeNumber(v) {
			return Issues{mismatch(path, f, v)}
		}
	case KindText:
		switch v.(type) {
		case string, bool, int, int64, uint64, float64:
		default:
			return Issues{mismatch(path, f, v)}
		}
	case KindColumns:
		list, ok := v.([]any)
		if !ok {
			return Issues{mismatch(path, f, v)}
		}
		var iss Issues
		for i, el := range list {
			iss = AppendIssues(iss, checkColumnSpec(path+"/"+strconv.Itoa(i), el)...)
		}
		return iss
	}
	return nil
}

// checkColumnSpec validates one element of a columns list: a plain column
// name, a plain integer index, or {range: {start: ..., end: ...}} where the
// bounds are themselves names or indices and start differs from end.
func checkColumnSpec(path string, el any) Issues {
	switch t := el.(type) {
	case string:
		return nil
	case int, int64, uint64:
		return nil
	case map[string]any:
		rng, ok := t["range"]
		if !ok || len(t) != 1 {
			return Issues{IssueAt(path, CodeInvalidColumnSpec,
				"column element mapping must hold exactly a 'range' key", nil)}
		}
		bounds, ok := rng.(map[string]any)
		if !ok {
			return Issues{IssueAt(path, CodeInvalidColumnSpec,
				fmt.Sprintf("range must be a mapping, got %s", typeName(rng)), nil)}
		}
		start, hasStart := bounds["start"]
		end, hasEnd := bounds["end"]
		if !hasStart || !hasEnd {
			return Issues{IssueAt(path, CodeInvalidColumnSpec,
				"range must have 'start' and 'end'", nil)}
		}
		if !isColumnRef(start) || !isColumnRef(end) {
			return Issues{IssueAt(path, CodeInvalidColumnSpec,
				"range bounds must be column names or indices", nil)}
		}
		if start == end {
			return Issues{IssueAt(path, CodeInvalidColumnSpec,
				"range start must differ from end", map[string]any{"start": start, "end": end})}
		}
		return nil
	default:
		return Issues{IssueAt(path, CodeInvalidColumnSpec,
			fmt.Sprintf("column element must be a name, index, or range, got %s", typeName(el)), nil)}
	}
}

func isColumnRef(v any) bool {
	switch v.(type) {
	case string:
		return true
	default:
		return isWholeNumber(v)
	}
}

// isWholeNumber reports whether v is an integer value. Loaders normalize
// whole YAML/JSON numbers to int64; floats stay float64 and are rejected.
func isWholeNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

func mismatch(path string, f Field, v any) Issue {
	return IssueAt(path, CodeTypeMismatch,
		fmt.Sprintf("field %q: expected %s, got %s", f.Name, f.Kind, typeName(v)),
		map[string]any{"expected": string(f.Kind), "actual": typeName(v)})
}
