package typedjson

import (
	"io"

	gojson "github.com/goccy/go-json"

	eng "github.com/reoring/typedjson/internal/engine"
)

// DecodeJSONBytes parses data with the current JSONDriver and decodes the
// result under t. Objects are read in input order, so undeclared fields are
// reported in the order they appear.
func DecodeJSONBytes(data []byte, t Type, opts ...Options) (any, error) {
	return DecodeFromSource(JSONBytes(data), t, opts...)
}

// DecodeJSONReader is DecodeJSONBytes over an io.Reader. When
// Options.Parse.MaxBytes is set the size cap is enforced up front.
func DecodeJSONReader(r io.Reader, t Type, opts ...Options) (any, error) {
	opt := lastOptions(opts)
	if opt.Parse.MaxBytes > 0 {
		lr := io.LimitReader(r, opt.Parse.MaxBytes+1)
		data, err := io.ReadAll(lr)
		if err != nil {
			return nil, singleIssue(CodeParseError, err)
		}
		if int64(len(data)) > opt.Parse.MaxBytes {
			return nil, wireIssue(Path{}, CodeTruncated, nil)
		}
		return DecodeJSONBytes(data, t, opts...)
	}
	return DecodeFromSource(JSONReader(r), t, opts...)
}

// DecodeFromSource reads one JSON value from src and decodes it under t.
func DecodeFromSource(src Source, t Type, opts ...Options) (any, error) {
	opt := lastOptions(opts)
	if _, err := newTranscoder(ModeFromJSON, opt); err != nil {
		return nil, err
	}
	v, err := ReadJSON(src, opt.Parse)
	if err != nil {
		return nil, err
	}
	return DecodeFromJSON(v, t, opts...)
}

// ReadJSON builds a JSON value (nil, bool, json.Number, string, []any,
// *Object) from src, applying duplicate-key, depth and size enforcement.
// Wire-level failures are returned as Issues.
func ReadJSON(src Source, opt ParseOpt) (any, error) {
	src = withLimits(src, opt)
	dec := eng.Decoder{NewObject: func() eng.ObjectSink { return NewObject() }}
	if opt.Number == NumberFloat64 {
		dec.Number = eng.Float64
	}
	v, err := dec.Decode(src)
	if err != nil {
		return nil, toIssues(err)
	}
	return v, nil
}

// EncodeJSONBytes encodes v under t and marshals the JSON value.
func EncodeJSONBytes(v any, t Type, opts ...Options) ([]byte, error) {
	out, err := EncodeToJSON(v, t, opts...)
	if err != nil {
		return nil, err
	}
	return gojson.Marshal(out)
}

func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	return singleIssue(CodeParseError, err)
}

func singleIssue(code string, err error) Issues {
	it := Issue{Path: "/", Code: code, Message: err.Error(), Cause: err}
	return AppendIssues(nil, it)
}
