package avroschema

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/reoring/typedjson"
)

type recordType struct {
	name    string
	isError bool
	fields  []*field
	index   map[string]int
}

func (t *recordType) Category() typedjson.Category {
	if t.isError {
		return typedjson.CategoryErrorRecord
	}
	return typedjson.CategoryRecord
}

func (t *recordType) Name() string { return t.name }

func (t *recordType) Fields() []typedjson.Field {
	return lo.Map(t.fields, func(f *field, _ int) typedjson.Field { return f })
}

func (t *recordType) Field(name string) (typedjson.Field, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.fields[i], true
}

// BuildRecord fills Undefined slots from field defaults. A slot left Undefined
// without a default is an error.
func (t *recordType) BuildRecord(values []any) (any, error) {
	if len(values) != len(t.fields) {
		return nil, fmt.Errorf("record %s: got %d values for %d fields", t.name, len(values), len(t.fields))
	}
	r := &Record{schema: t, values: slices.Clone(values)}
	for i, f := range t.fields {
		if !typedjson.IsUndefined(r.values[i]) {
			continue
		}
		def, ok := f.Default()
		if !ok {
			return nil, fmt.Errorf("record %s: field %q has no value", t.name, f.name)
		}
		r.values[i] = copyValue(def)
	}
	return r, nil
}

// IsValid accepts Records of this schema and objects whose declared fields are
// valid or defaulted.
func (t *recordType) IsValid(v any) bool {
	if r, ok := v.(*Record); ok {
		return r != nil && r.schema == t
	}
	obj, ok := typedjson.AsObject(v)
	if !ok {
		return false
	}
	for _, k := range obj.Keys() {
		if _, ok := t.index[k]; !ok {
			return false
		}
	}
	for _, f := range t.fields {
		fv, ok := obj.Get(f.name)
		if !ok || typedjson.IsUndefined(fv) {
			if !f.hasDefault {
				return false
			}
			continue
		}
		if !f.typ.IsValid(fv) {
			return false
		}
	}
	return true
}

// Equal compares field by field; an absent field compares as its default.
func (t *recordType) Equal(a, b any, opt typedjson.EqualOpt) bool {
	x, ok1 := typedjson.AsObject(a)
	y, ok2 := typedjson.AsObject(b)
	if !ok1 || !ok2 {
		return false
	}
	for _, f := range t.fields {
		xv, xok := f.value(x)
		yv, yok := f.value(y)
		if xok != yok {
			return false
		}
		if xok && !f.typ.Equal(xv, yv, opt) {
			return false
		}
	}
	return true
}

type field struct {
	record     string
	name       string
	typ        typedjson.Type
	hasDefault bool
	raw        any

	mu        sync.Mutex
	resolving bool
	resolved  bool
	def       any
	err       error
}

func (f *field) Name() string         { return f.name }
func (f *field) Type() typedjson.Type { return f.typ }

func (f *field) Default() (any, bool) {
	if !f.hasDefault {
		return nil, false
	}
	def, err := f.resolve()
	if err != nil {
		return nil, false
	}
	return def, true
}

// resolve decodes the default literal once. A default that needs itself to be
// decoded is reported instead of recursing.
func (f *field) resolve() (any, error) {
	if !f.hasDefault {
		return nil, nil
	}
	f.mu.Lock()
	if f.resolved {
		defer f.mu.Unlock()
		return f.def, f.err
	}
	if f.resolving {
		f.mu.Unlock()
		return nil, fmt.Errorf("default of %q depends on itself", f.name)
	}
	f.resolving = true
	f.mu.Unlock()

	def, err := typedjson.DecodeFromDefaultJSON(f.raw, f.typ)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.def, f.err = def, err
	f.resolved, f.resolving = true, false
	return def, err
}

// value reads the field from obj, falling back to the default.
func (f *field) value(obj typedjson.ObjectView) (any, bool) {
	if v, ok := obj.Get(f.name); ok && !typedjson.IsUndefined(v) {
		return v, true
	}
	return f.Default()
}

// Record is the in-memory value of a record or error schema. Fields keep
// schema order.
type Record struct {
	schema *recordType
	values []any
}

// NewRecord builds a record of t from field values. Fields missing from
// values take their default, or stay unset when there is none.
func NewRecord(t typedjson.Type, values map[string]any) (*Record, error) {
	rt, ok := t.(*recordType)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an avro record", typedjson.ErrInvalidType, t.Name())
	}
	if extra := lo.Filter(slices.Sorted(maps.Keys(values)), func(k string, _ int) bool {
		_, ok := rt.index[k]
		return !ok
	}); len(extra) > 0 {
		return nil, fmt.Errorf("record %s: undeclared fields %v", rt.name, extra)
	}
	r := &Record{schema: rt, values: make([]any, len(rt.fields))}
	for i, f := range rt.fields {
		if v, ok := values[f.name]; ok {
			r.values[i] = v
		} else if def, ok := f.Default(); ok {
			r.values[i] = copyValue(def)
		} else {
			r.values[i] = typedjson.Undefined
		}
	}
	return r, nil
}

// RecordType returns the schema the record was built for.
func (r *Record) RecordType() typedjson.RecordType { return r.schema }

// Name returns the record's full schema name.
func (r *Record) Name() string { return r.schema.name }

// Keys lists the set fields in schema order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for i, f := range r.schema.fields {
		if !typedjson.IsUndefined(r.values[i]) {
			keys = append(keys, f.name)
		}
	}
	return keys
}

func (r *Record) Get(name string) (any, bool) {
	i, ok := r.schema.index[name]
	if !ok || typedjson.IsUndefined(r.values[i]) {
		return nil, false
	}
	return r.values[i], true
}

// Set assigns a declared field. Passing typedjson.Undefined unsets it.
func (r *Record) Set(name string, v any) error {
	i, ok := r.schema.index[name]
	if !ok {
		return fmt.Errorf("record %s has no field %q", r.schema.name, name)
	}
	r.values[i] = v
	return nil
}

// Map returns the set fields as a plain map.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for _, k := range r.Keys() {
		out[k], _ = r.Get(k)
	}
	return out
}

func (r *Record) String() string {
	return fmt.Sprintf("%s%v", r.schema.name, r.Map())
}

// copyValue duplicates containers so defaults are never shared between records.
func copyValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return slices.Clone(x)
	case []any:
		return lo.Map(x, func(e any, _ int) any { return copyValue(e) })
	case map[string]any:
		return lo.MapValues(x, func(e any, _ string) any { return copyValue(e) })
	case *Record:
		return &Record{schema: x.schema, values: lo.Map(x.values, func(e any, _ int) any { return copyValue(e) })}
	default:
		return v
	}
}
