package typedjson

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeNotArray           = "not_array"
	CodeNotObject          = "not_object"
	CodeNotString          = "not_string"
	CodeInvalidValue       = "invalid_value"
	CodeMissingFields      = "missing_fields"
	CodeUndeclaredFields   = "undeclared_fields"
	CodeUnionNull          = "union_null"
	CodeUnionKeyCount      = "union_key_count"
	CodeUnionUnknownBranch = "union_unknown_branch"
	CodeUnionNoBranch      = "union_no_branch"
	CodeUnionDefaultNull   = "union_default_null"
	CodeLogicalEncode      = "logical_encode"
	CodeLogicalDecode      = "logical_decode"
	// Wire-level codes produced while reading JSON bytes.
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeTruncated    = "truncated"
)

var (
	// ErrIncompatibleValue matches every *IncompatibleValueError via errors.Is.
	ErrIncompatibleValue = errors.New("typedjson: incompatible value")
	// ErrInvalidOptions reports an option combination the requested mode rejects.
	ErrInvalidOptions = errors.New("typedjson: invalid options")
	// ErrInvalidType reports a malformed type graph (nil node, unknown category,
	// or a node missing the capability its category requires).
	ErrInvalidType = errors.New("typedjson: invalid type")
)

// Issue represents a single incompatibility found while transcoding.
type Issue struct {
	Path     string // JSON Pointer (for example: /items/2/price).
	Location Path   // Structured form of Path.
	Code     string // One of the codes listed above.
	Message  string
	// Value is the offending input value.
	Value any
	// Type is the expected type at Location; nil for wire-level issues.
	Type  Type
	Cause error
	// Params carries structured parameters (count, names, cause) for i18n.
	Params map[string]string
}

func (it Issue) String() string {
	return it.Path + ": " + it.Message
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
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Codes returns the issue codes in order.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
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

// AsIssues extracts Issues from an error using errors.As internally. It also
// sees through *IncompatibleValueError.
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

// IncompatibleValueError is returned by the entry points when a value does not
// conform to its type. It carries every issue found, in traversal order.
type IncompatibleValueError struct {
	Issues Issues
	Type   Type
}

func (e *IncompatibleValueError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "incompatible value: %d issue(s)", len(e.Issues))
	for _, it := range e.Issues {
		b.WriteString("\n  ")
		b.WriteString(it.String())
	}
	return b.String()
}

func (e *IncompatibleValueError) Unwrap() error { return e.Issues }

func (e *IncompatibleValueError) Is(target error) bool { return target == ErrIncompatibleValue }
