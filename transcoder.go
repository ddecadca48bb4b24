package typedjson

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// transcoder walks a value alongside its type, one case per category. It holds
// no per-call state, so a single instance may be reused and shared.
type transcoder struct {
	mode Mode
	opts Options
}

func newTranscoder(mode Mode, opts Options) (*transcoder, error) {
	switch mode {
	case ModeToJSON, ModeFromJSON, ModeFromDefaultJSON:
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidOptions, int(mode))
	}
	if opts.OmitDefaultValues && mode != ModeToJSON {
		return nil, fmt.Errorf("%w: OmitDefaultValues requires %s mode, got %s", ErrInvalidOptions, ModeToJSON, mode)
	}
	return &transcoder{mode: mode, opts: opts}, nil
}

// run transcodes v at the root and finalizes the result.
func (c *transcoder) run(v any, t Type) (any, error) {
	b := c.clone(v, t, Path{})
	if b.fatal != nil {
		return nil, b.fatal
	}
	if len(b.issues) > 0 {
		return nil, &IncompatibleValueError{Issues: b.issues, Type: t}
	}
	return b.value, nil
}

func (c *transcoder) clone(v any, t Type, path Path) *builder {
	if t == nil {
		return (&builder{}).fail(path, "nil type")
	}
	switch cat := t.Category(); cat {
	case CategoryArray:
		at, ok := t.(ArrayType)
		if !ok {
			return mismatch(t, path, "ArrayType")
		}
		return c.cloneArray(v, at, path)
	case CategoryMap:
		mt, ok := t.(MapType)
		if !ok {
			return mismatch(t, path, "MapType")
		}
		return c.cloneMap(v, mt, path)
	case CategoryRecord, CategoryErrorRecord:
		rt, ok := t.(RecordType)
		if !ok {
			return mismatch(t, path, "RecordType")
		}
		return c.cloneRecord(v, rt, path)
	case CategoryWrappedUnion, CategoryUnwrappedUnion:
		ut, ok := t.(UnionType)
		if !ok {
			return mismatch(t, path, "UnionType")
		}
		return c.cloneUnion(v, ut, path)
	case CategoryLogical:
		lt, ok := t.(LogicalType)
		if !ok {
			return mismatch(t, path, "LogicalType")
		}
		return c.cloneLogical(v, lt, path)
	case CategoryPrimitive, CategoryBuffer:
		return c.clonePrimitive(v, t, path)
	default:
		return (&builder{}).fail(path, "unknown category %d for %q", int(cat), t.Name())
	}
}

func mismatch(t Type, path Path, want string) *builder {
	return (&builder{}).fail(path, "%s node %q does not implement %s", t.Category(), t.Name(), want)
}

func (c *transcoder) cloneArray(v any, t ArrayType, path Path) *builder {
	b := &builder{}
	items, ok := asSlice(v)
	if !ok {
		b.add(path, CodeNotArray, v, t, nil)
		return b
	}
	out := make([]any, 0, len(items))
	for i, item := range items {
		cb := c.clone(item, t.Items(), path.Index(i))
		if !b.merge(cb) {
			if b.fatal != nil {
				return b
			}
			continue
		}
		out = append(out, cb.value)
	}
	if b.ok() {
		b.set(out)
	}
	return b
}

func (c *transcoder) cloneMap(v any, t MapType, path Path) *builder {
	b := &builder{}
	obj, ok := plainObject(v)
	if !ok {
		b.add(path, CodeNotObject, v, t, nil)
		return b
	}
	keys := sortedKeys(obj)
	var out *Object
	var decoded map[string]any
	if c.mode == ModeToJSON {
		out = NewObject()
	} else {
		decoded = make(map[string]any, len(keys))
	}
	for _, k := range keys {
		val, _ := obj.Get(k)
		cb := c.clone(val, t.Values(), path.Field(k))
		if !b.merge(cb) {
			if b.fatal != nil {
				return b
			}
			continue
		}
		if out != nil {
			out.Set(k, cb.value)
		} else {
			decoded[k] = cb.value
		}
	}
	if !b.ok() {
		return b
	}
	if out != nil {
		b.set(out)
	} else {
		b.set(decoded)
	}
	return b
}

func (c *transcoder) cloneRecord(v any, t RecordType, path Path) *builder {
	b := &builder{}
	obj, ok := AsObject(v)
	if !ok {
		b.add(path, CodeNotObject, v, t, nil)
		return b
	}
	if !c.opts.AllowUndeclaredFields {
		var undeclared []string
		for _, k := range obj.Keys() {
			if _, ok := t.Field(k); !ok {
				undeclared = append(undeclared, k)
			}
		}
		if len(undeclared) > 0 {
			b.add(path, CodeUndeclaredFields, v, t, nameList(undeclared))
		}
	}

	fields := t.Fields()
	values := make([]any, len(fields))
	var missing []string
	for i, f := range fields {
		values[i] = Undefined
		name := f.Name()
		fv, present := obj.Get(name)
		if present && IsUndefined(fv) {
			present = false
		}
		def, hasDefault := f.Default()
		switch {
		case !present && !hasDefault:
			missing = append(missing, name)
		case !present:
			if c.mode != ModeToJSON || c.opts.OmitDefaultValues {
				continue
			}
			cb := c.clone(def, f.Type(), path.Field(name))
			if !b.merge(cb) {
				if b.fatal != nil {
					return b
				}
				continue
			}
			values[i] = cb.value
		default:
			cb := c.clone(fv, f.Type(), path.Field(name))
			if !b.merge(cb) {
				if b.fatal != nil {
					return b
				}
				continue
			}
			if c.opts.OmitDefaultValues && hasDefault && f.Type().Equal(fv, def, EqualOpt{IgnoreMapOrder: true}) {
				continue
			}
			values[i] = cb.value
		}
	}
	if len(missing) > 0 {
		b.add(path, CodeMissingFields, v, t, nameList(missing))
	}
	if !b.ok() {
		return b
	}

	if c.mode == ModeToJSON {
		out := NewObject()
		for i, f := range fields {
			if !IsUndefined(values[i]) {
				out.Set(f.Name(), values[i])
			}
		}
		b.set(out)
		return b
	}
	rec, err := t.BuildRecord(values)
	if err != nil {
		b.addCause(path, CodeInvalidValue, v, t, err)
		return b
	}
	b.set(rec)
	return b
}

func (c *transcoder) cloneUnion(v any, t UnionType, path Path) *builder {
	b := &builder{}
	if v == nil {
		if hasNullBranch(t) {
			b.set(nil)
		} else {
			b.add(path, CodeUnionNull, v, t, nil)
		}
		return b
	}

	wrapped := t.Category() == CategoryWrappedUnion
	switch {
	case c.mode == ModeFromDefaultJSON:
		branches := t.Branches()
		if len(branches) == 0 {
			return b.fail(path, "union %q has no branches", t.Name())
		}
		first := branches[0]
		if IsNullType(first) {
			b.add(path, CodeUnionDefaultNull, v, t, nil)
			return b
		}
		v = map[string]any{first.Name(): v}
	case c.mode == ModeToJSON && !wrapped:
		bt, ok := t.BranchType(v)
		if !ok {
			b.add(path, CodeUnionNoBranch, v, t, nil)
			return b
		}
		v = map[string]any{bt.Name(): v}
	}

	obj, ok := plainObject(v)
	if !ok {
		b.add(path, CodeNotObject, v, t, nil)
		return b
	}
	keys := obj.Keys()
	if len(keys) != 1 {
		b.add(path, CodeUnionKeyCount, v, t, nameList(keys))
		return b
	}
	name := keys[0]
	bt, ok := t.Branch(name)
	if !ok {
		b.add(path, CodeUnionUnknownBranch, v, t, map[string]string{"name": name})
		return b
	}
	child, _ := obj.Get(name)
	cb := c.clone(child, bt, path.Field(name))
	if !b.merge(cb) {
		return b
	}
	switch {
	case c.mode == ModeToJSON:
		out := NewObject()
		out.Set(name, cb.value)
		b.set(out)
	case wrapped:
		b.set(t.Wrap(bt, cb.value))
	default:
		b.set(cb.value)
	}
	return b
}

func hasNullBranch(t UnionType) bool {
	for _, bt := range t.Branches() {
		if IsNullType(bt) {
			return true
		}
	}
	return false
}

func (c *transcoder) cloneLogical(v any, t LogicalType, path Path) *builder {
	b := &builder{}
	if c.mode == ModeToJSON {
		uv, err := t.ToValue(v)
		if err != nil || IsUndefined(uv) {
			b.addCause(path, CodeLogicalEncode, v, t, err)
			return b
		}
		cb := c.clone(uv, t.Underlying(), path)
		if b.merge(cb) {
			b.set(cb.value)
		}
		return b
	}
	cb := c.clone(v, t.Underlying(), path)
	if !b.merge(cb) {
		return b
	}
	out, err := t.FromValue(cb.value)
	if err != nil {
		b.addCause(path, CodeLogicalDecode, v, t, err)
		return b
	}
	b.set(out)
	return b
}

func (c *transcoder) clonePrimitive(v any, t Type, path Path) *builder {
	b := &builder{}
	buffer := t.Category() == CategoryBuffer
	val := v
	if buffer && c.mode != ModeToJSON {
		s, ok := v.(string)
		if !ok {
			b.add(path, CodeNotString, v, t, nil)
			return b
		}
		buf, ok := binaryBytes(s)
		if !ok {
			b.add(path, CodeInvalidValue, v, t, nil)
			return b
		}
		val = buf
	}
	if !t.IsValid(val) {
		b.add(path, CodeInvalidValue, v, t, nil)
		return b
	}
	switch {
	case buffer && c.mode == ModeToJSON:
		buf, ok := val.([]byte)
		if !ok {
			b.add(path, CodeInvalidValue, v, t, nil)
			return b
		}
		b.set(binaryString(buf))
	case buffer:
		// binaryBytes already returned a fresh slice.
		b.set(val)
	default:
		if n, ok := t.(Normalizer); ok && c.mode != ModeToJSON {
			val = n.Normalize(val)
		}
		b.set(val)
	}
	return b
}

// binaryBytes maps each code point of s to one byte (ISO-8859-1). Code points
// above U+00FF cannot be represented.
func binaryBytes(s string) ([]byte, bool) {
	buf, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, false
	}
	return buf, true
}

// binaryString is the inverse of binaryBytes.
func binaryString(buf []byte) string {
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(buf)
	return string(s)
}
