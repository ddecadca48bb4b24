package typedjson

// Mode selects the transcoding direction. It is fixed for a transcoder's
// lifetime.
type Mode int

const (
	ModeToJSON          Mode = iota // in-memory value -> JSON value
	ModeFromJSON                    // JSON value -> in-memory value
	ModeFromDefaultJSON             // schema default literal -> in-memory value
)

func (m Mode) String() string {
	switch m {
	case ModeToJSON:
		return "to-json"
	case ModeFromJSON:
		return "from-json"
	case ModeFromDefaultJSON:
		return "from-default-json"
	default:
		return "unknown"
	}
}

// Options bundles transcoding options.
type Options struct {
	// AllowUndeclaredFields skips the undeclared-field check on records.
	AllowUndeclaredFields bool
	// OmitDefaultValues drops record fields equal to their default. Only valid
	// with ModeToJSON.
	OmitDefaultValues bool
	// Parse applies to the byte-level entry points only.
	Parse ParseOpt
}

// NumberMode dictates how JSON numbers are materialized when reading bytes.
type NumberMode int

const (
	NumberJSONNumber NumberMode = iota // Preserve json.Number.
	NumberFloat64                      // Fast mode (with potential precision loss).
)

// Severity expresses the severity level for wire-level issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// ParseOpt bundles options for reading JSON bytes.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	Number     NumberMode
	// OnWarning receives issues raised at Warn severity.
	OnWarning func(Issue)
}

func lastOptions(opts []Options) Options {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}
