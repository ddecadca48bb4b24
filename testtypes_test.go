package typedjson_test

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/reoring/typedjson"
)

// A minimal type model used to exercise the transcoder without any schema
// language behind it.

type prim struct {
	name  string
	valid func(any) bool
}

var (
	tNull = prim{name: "null", valid: func(v any) bool { return v == nil }}
	tBool = prim{name: "boolean", valid: func(v any) bool { _, ok := v.(bool); return ok }}
	tStr  = prim{name: "string", valid: func(v any) bool { _, ok := v.(string); return ok }}
	// tInt accepts int64 in memory and json.Number on the wire.
	tInt = prim{name: "int", valid: func(v any) bool {
		switch n := v.(type) {
		case int64:
			return true
		case json.Number:
			_, err := n.Int64()
			return err == nil
		}
		return false
	}}
)

func (p prim) Category() typedjson.Category { return typedjson.CategoryPrimitive }
func (p prim) Name() string                 { return p.name }
func (p prim) IsValid(v any) bool           { return p.valid(v) }
func (p prim) Equal(a, b any, _ typedjson.EqualOpt) bool {
	return reflect.DeepEqual(p.Normalize(a), p.Normalize(b))
}

func (p prim) Normalize(v any) any {
	if n, ok := v.(json.Number); ok && p.name == "int" {
		i, _ := n.Int64()
		return i
	}
	return v
}

type buf struct{ size int }

func (b buf) Category() typedjson.Category { return typedjson.CategoryBuffer }
func (b buf) Name() string {
	if b.size > 0 {
		return "fixed" + strconv.Itoa(b.size)
	}
	return "bytes"
}
func (b buf) IsValid(v any) bool {
	x, ok := v.([]byte)
	return ok && (b.size == 0 || len(x) == b.size)
}
func (b buf) Equal(x, y any, _ typedjson.EqualOpt) bool {
	bx, _ := x.([]byte)
	by, _ := y.([]byte)
	return bytes.Equal(bx, by)
}

type arr struct{ items typedjson.Type }

func (a arr) Category() typedjson.Category { return typedjson.CategoryArray }
func (a arr) Name() string                 { return "array" }
func (a arr) Items() typedjson.Type        { return a.items }
func (a arr) IsValid(v any) bool           { _, ok := v.([]any); return ok }
func (a arr) Equal(x, y any, _ typedjson.EqualOpt) bool {
	return reflect.DeepEqual(x, y)
}

type mapT struct{ values typedjson.Type }

func (m mapT) Category() typedjson.Category { return typedjson.CategoryMap }
func (m mapT) Name() string                 { return "map" }
func (m mapT) Values() typedjson.Type       { return m.values }
func (m mapT) IsValid(v any) bool           { _, ok := typedjson.AsObject(v); return ok }
func (m mapT) Equal(x, y any, _ typedjson.EqualOpt) bool {
	return reflect.DeepEqual(x, y)
}

type fld struct {
	name string
	typ  typedjson.Type
	def  any
	has  bool
}

func field(name string, t typedjson.Type) *fld { return &fld{name: name, typ: t} }
func fieldDefault(name string, t typedjson.Type, def any) *fld {
	return &fld{name: name, typ: t, def: def, has: true}
}

func (f *fld) Name() string         { return f.name }
func (f *fld) Type() typedjson.Type { return f.typ }
func (f *fld) Default() (any, bool) { return f.def, f.has }

// rec builds records as map[string]any holding only the set fields.
type rec struct {
	name   string
	fields []*fld
	build  func([]any) (any, error)
}

func record(name string, fields ...*fld) *rec { return &rec{name: name, fields: fields} }

func (r *rec) Category() typedjson.Category { return typedjson.CategoryRecord }
func (r *rec) Name() string                 { return r.name }
func (r *rec) Fields() []typedjson.Field {
	out := make([]typedjson.Field, len(r.fields))
	for i, f := range r.fields {
		out[i] = f
	}
	return out
}
func (r *rec) Field(name string) (typedjson.Field, bool) {
	for _, f := range r.fields {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}
func (r *rec) BuildRecord(values []any) (any, error) {
	if r.build != nil {
		return r.build(values)
	}
	out := map[string]any{}
	for i, f := range r.fields {
		if !typedjson.IsUndefined(values[i]) {
			out[f.name] = values[i]
		}
	}
	return out, nil
}
func (r *rec) IsValid(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}
func (r *rec) Equal(x, y any, opt typedjson.EqualOpt) bool {
	ox, ok1 := typedjson.AsObject(x)
	oy, ok2 := typedjson.AsObject(y)
	if !ok1 || !ok2 {
		return false
	}
	for _, f := range r.fields {
		vx, okx := ox.Get(f.name)
		vy, oky := oy.Get(f.name)
		if okx != oky || (okx && !f.typ.Equal(vx, vy, opt)) {
			return false
		}
	}
	return true
}

type union struct {
	wrapped  bool
	branches []typedjson.Type
}

func (u union) Category() typedjson.Category {
	if u.wrapped {
		return typedjson.CategoryWrappedUnion
	}
	return typedjson.CategoryUnwrappedUnion
}
func (u union) Name() string               { return "union" }
func (u union) Branches() []typedjson.Type { return u.branches }
func (u union) Branch(name string) (typedjson.Type, bool) {
	for _, b := range u.branches {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}
func (u union) BranchType(v any) (typedjson.Type, bool) {
	for _, b := range u.branches {
		if b.IsValid(v) {
			return b, true
		}
	}
	return nil, false
}
func (u union) Wrap(b typedjson.Type, v any) any { return map[string]any{b.Name(): v} }
func (u union) IsValid(v any) bool {
	_, ok := u.BranchType(v)
	return ok
}
func (u union) Equal(x, y any, opt typedjson.EqualOpt) bool {
	b, ok := u.BranchType(x)
	return ok && b.IsValid(y) && b.Equal(x, y, opt)
}

type logical struct {
	under typedjson.Type
	to    func(any) (any, error)
	from  func(any) (any, error)
}

func (l logical) Category() typedjson.Category { return typedjson.CategoryLogical }
func (l logical) Name() string                 { return l.under.Name() }
func (l logical) Underlying() typedjson.Type   { return l.under }
func (l logical) ToValue(v any) (any, error)   { return l.to(v) }
func (l logical) FromValue(v any) (any, error) { return l.from(v) }
func (l logical) IsValid(v any) bool {
	u, err := l.to(v)
	return err == nil && l.under.IsValid(u)
}
func (l logical) Equal(x, y any, opt typedjson.EqualOpt) bool {
	ux, err1 := l.to(x)
	uy, err2 := l.to(y)
	return err1 == nil && err2 == nil && l.under.Equal(ux, uy, opt)
}

// broken claims the array category without implementing ArrayType.
type broken struct{}

func (broken) Category() typedjson.Category            { return typedjson.CategoryArray }
func (broken) Name() string                            { return "broken" }
func (broken) IsValid(any) bool                        { return false }
func (broken) Equal(any, any, typedjson.EqualOpt) bool { return false }
