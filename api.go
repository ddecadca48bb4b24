package typedjson

// DecodeFromJSON converts a JSON value (as produced by DecodeJSONBytes or
// encoding/json) into its in-memory form under t. It is the inverse of
// EncodeToJSON and recognizes Options.AllowUndeclaredFields.
//
// When v does not conform, the returned error is an *IncompatibleValueError
// listing every issue found. Invalid options or a malformed type graph are
// reported immediately (ErrInvalidOptions, ErrInvalidType).
func DecodeFromJSON(v any, t Type, opts ...Options) (any, error) {
	return transcode(ModeFromJSON, v, t, opts)
}

// DecodeFromDefaultJSON converts a schema-declared default literal into its
// in-memory form. Defaults select union branches positionally: a union default
// always belongs to the first branch.
func DecodeFromDefaultJSON(v any, t Type, opts ...Options) (any, error) {
	return transcode(ModeFromDefaultJSON, v, t, opts)
}

// EncodeToJSON converts an in-memory value into a JSON value made of nil, bool,
// numbers, string, []any and *Object. Records keep schema field order and maps
// are emitted with sorted keys. It recognizes Options.OmitDefaultValues.
func EncodeToJSON(v any, t Type, opts ...Options) (any, error) {
	return transcode(ModeToJSON, v, t, opts)
}

// IsValidJSON reports whether v decodes under t without issues.
func IsValidJSON(v any, t Type, opts ...Options) bool {
	_, err := DecodeFromJSON(v, t, opts...)
	return err == nil
}

func transcode(mode Mode, v any, t Type, opts []Options) (any, error) {
	c, err := newTranscoder(mode, lastOptions(opts))
	if err != nil {
		return nil, err
	}
	return c.run(v, t)
}
