package templateguard

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Schema loading failures (fatal to the current operation).
	CodeMalformedSchema = "malformed_schema"
	CodeDuplicateField  = "duplicate_field"

	// Document validation issues (accumulated, surfaced as a complete list).
	CodeMissingRequiredField = "missing_required_field"
	CodeTypeMismatch         = "type_mismatch"
	CodeInvalidColumnSpec    = "invalid_column_spec"
	CodeUnknownField         = "unknown_field"
	CodeMissingOptionalField = "missing_optional_field"

	// Compatibility violations (accumulated, block the evolution gate).
	CodeVersionNotIncremented = "version_not_incremented"
	CodeFieldRemoved          = "field_removed"
	CodeKindChanged           = "kind_changed"
	CodeFieldBecameRequired   = "field_became_required"
	CodeNewFieldIsRequired    = "new_field_is_required"
)

// Archive errors. Lookup and write failures are synchronous and leave no
// partial state behind; callers match them with errors.Is.
var (
	ErrEmptyArchive     = errors.New("templateguard: archive holds no versions")
	ErrUnknownVersion   = errors.New("templateguard: unknown schema version")
	ErrDuplicateVersion = errors.New("templateguard: schema version already archived")
)

// Issue represents a single validation or compatibility entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /features/2).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	// Params carries structured parameters (e.g., {"expected":"string",
	// "actual":"integer"}) for rendering and observability.
	Params map[string]any
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. missing_required_field at /cohort
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssueAt creates an Issue at the given path with provided code, message and
// params map. This is a convenience helper to improve readability at call
// sites with many parameters.
func IssueAt(path, code, msg string, params map[string]any) Issue {
	return Issue{Path: path, Code: code, Message: msg, Params: params}
}
