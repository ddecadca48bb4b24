package avroschema

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"slices"

	"github.com/samber/lo"

	"github.com/reoring/typedjson"
	"github.com/reoring/typedjson/codec"
)

// primitiveType covers null, boolean, int, long, float, double and string.
// Numbers are accepted in any Go numeric form or as json.Number and are
// normalized to int32, int64, float32 and float64 on decode.
type primitiveType struct{ name string }

func (t primitiveType) Category() typedjson.Category { return typedjson.CategoryPrimitive }
func (t primitiveType) Name() string                 { return t.name }

func (t primitiveType) IsValid(v any) bool {
	switch t.name {
	case "null":
		return v == nil
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "int":
		n, ok := toInt64(v)
		return ok && n >= math.MinInt32 && n <= math.MaxInt32
	case "long":
		_, ok := toInt64(v)
		return ok
	case "float":
		f, ok := toFloat64(v)
		return ok && (math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) <= math.MaxFloat32)
	case "double":
		_, ok := toFloat64(v)
		return ok
	case "string":
		_, ok := v.(string)
		return ok
	}
	return false
}

func (t primitiveType) Normalize(v any) any {
	switch t.name {
	case "int":
		if n, ok := toInt64(v); ok {
			return int32(n)
		}
	case "long":
		if n, ok := toInt64(v); ok {
			return n
		}
	case "float":
		if f, ok := toFloat64(v); ok {
			return float32(f)
		}
	case "double":
		if f, ok := toFloat64(v); ok {
			return f
		}
	}
	return v
}

func (t primitiveType) Equal(a, b any, _ typedjson.EqualOpt) bool {
	switch t.name {
	case "int", "long":
		x, ok1 := toInt64(a)
		y, ok2 := toInt64(b)
		return ok1 && ok2 && x == y
	case "float", "double":
		x, ok1 := toFloat64(a)
		y, ok2 := toFloat64(b)
		if t.name == "float" {
			return ok1 && ok2 && float32(x) == float32(y)
		}
		return ok1 && ok2 && x == y
	case "boolean":
		x, ok1 := a.(bool)
		y, ok2 := b.(bool)
		return ok1 && ok2 && x == y
	case "string":
		return sameString(a, b)
	default:
		return a == nil && b == nil
	}
}

func sameString(a, b any) bool {
	x, ok1 := a.(string)
	y, ok2 := b.(string)
	return ok1 && ok2 && x == y
}

// enumType is a string primitive restricted to its symbols.
type enumType struct {
	name    string
	symbols []string
	set     map[string]struct{}
}

func newEnumType(name string, symbols []string) *enumType {
	return &enumType{
		name:    name,
		symbols: slices.Clone(symbols),
		set:     lo.SliceToMap(symbols, func(s string) (string, struct{}) { return s, struct{}{} }),
	}
}

func (t *enumType) Category() typedjson.Category { return typedjson.CategoryPrimitive }
func (t *enumType) Name() string                 { return t.name }
func (t *enumType) Symbols() []string            { return slices.Clone(t.symbols) }

func (t *enumType) IsValid(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = t.set[s]
	return ok
}

func (t *enumType) Equal(a, b any, _ typedjson.EqualOpt) bool { return sameString(a, b) }

// bufferType is bytes (size 0) or a fixed of the given size.
type bufferType struct {
	name string
	size int
}

func (t bufferType) Category() typedjson.Category { return typedjson.CategoryBuffer }
func (t bufferType) Name() string                 { return t.name }
func (t bufferType) Size() int                    { return t.size }

func (t bufferType) IsValid(v any) bool {
	b, ok := v.([]byte)
	return ok && (t.size == 0 || len(b) == t.size)
}

func (t bufferType) Equal(a, b any, _ typedjson.EqualOpt) bool {
	x, ok1 := a.([]byte)
	y, ok2 := b.([]byte)
	return ok1 && ok2 && bytes.Equal(x, y)
}

type arrayType struct{ items typedjson.Type }

func (t *arrayType) Category() typedjson.Category { return typedjson.CategoryArray }
func (t *arrayType) Name() string                 { return "array" }
func (t *arrayType) Items() typedjson.Type        { return t.items }

func (t *arrayType) IsValid(v any) bool {
	items, ok := elems(v)
	return ok && lo.EveryBy(items, t.items.IsValid)
}

func (t *arrayType) Equal(a, b any, opt typedjson.EqualOpt) bool {
	x, ok1 := elems(a)
	y, ok2 := elems(b)
	if !ok1 || !ok2 || len(x) != len(y) {
		return false
	}
	for i := range x {
		if !t.items.Equal(x[i], y[i], opt) {
			return false
		}
	}
	return true
}

type mapType struct{ values typedjson.Type }

func (t *mapType) Category() typedjson.Category { return typedjson.CategoryMap }
func (t *mapType) Name() string                 { return "map" }
func (t *mapType) Values() typedjson.Type       { return t.values }

func (t *mapType) IsValid(v any) bool {
	if _, ok := v.(typedjson.RecordValue); ok {
		return false
	}
	obj, ok := typedjson.AsObject(v)
	if !ok {
		return false
	}
	return lo.EveryBy(obj.Keys(), func(k string) bool {
		e, _ := obj.Get(k)
		return t.values.IsValid(e)
	})
}

func (t *mapType) Equal(a, b any, opt typedjson.EqualOpt) bool {
	x, ok1 := typedjson.AsObject(a)
	y, ok2 := typedjson.AsObject(b)
	if !ok1 || !ok2 {
		return false
	}
	xk, yk := x.Keys(), y.Keys()
	if len(xk) != len(yk) {
		return false
	}
	if !opt.IgnoreMapOrder && !slices.Equal(xk, yk) {
		return false
	}
	for _, k := range xk {
		xv, _ := x.Get(k)
		yv, ok := y.Get(k)
		if !ok || !t.values.Equal(xv, yv, opt) {
			return false
		}
	}
	return true
}

// unionType branches are tried in declaration order when a bare value has to
// be matched to a branch.
type unionType struct {
	wrapped  bool
	branches []typedjson.Type
}

func (t *unionType) Category() typedjson.Category {
	if t.wrapped {
		return typedjson.CategoryWrappedUnion
	}
	return typedjson.CategoryUnwrappedUnion
}

func (t *unionType) Name() string { return "union" }

func (t *unionType) Branches() []typedjson.Type { return slices.Clone(t.branches) }

func (t *unionType) Branch(name string) (typedjson.Type, bool) {
	return lo.Find(t.branches, func(bt typedjson.Type) bool { return bt.Name() == name })
}

func (t *unionType) BranchType(v any) (typedjson.Type, bool) {
	if v == nil {
		return lo.Find(t.branches, typedjson.IsNullType)
	}
	return lo.Find(t.branches, func(bt typedjson.Type) bool {
		return !typedjson.IsNullType(bt) && bt.IsValid(v)
	})
}

func (t *unionType) Wrap(branch typedjson.Type, v any) any {
	if typedjson.IsNullType(branch) {
		return nil
	}
	return map[string]any{branch.Name(): v}
}

// unwrap returns the branch and bare value of an in-memory union value.
func (t *unionType) unwrap(v any) (typedjson.Type, any, bool) {
	if v == nil || !t.wrapped {
		bt, ok := t.BranchType(v)
		return bt, v, ok
	}
	obj, ok := typedjson.AsObject(v)
	if !ok {
		return nil, nil, false
	}
	keys := obj.Keys()
	if len(keys) != 1 {
		return nil, nil, false
	}
	bt, ok := t.Branch(keys[0])
	if !ok {
		return nil, nil, false
	}
	inner, _ := obj.Get(keys[0])
	return bt, inner, true
}

func (t *unionType) IsValid(v any) bool {
	bt, inner, ok := t.unwrap(v)
	return ok && bt.IsValid(inner)
}

func (t *unionType) Equal(a, b any, opt typedjson.EqualOpt) bool {
	at, av, ok1 := t.unwrap(a)
	bt, bv, ok2 := t.unwrap(b)
	if !ok1 || !ok2 {
		return false
	}
	if t.wrapped && at.Name() != bt.Name() {
		return false
	}
	return at.IsValid(bv) && at.Equal(av, bv, opt)
}

// logicalType converts through a codec. Inside unions it is named after its
// underlying type, as in the Avro JSON encoding.
type logicalType struct {
	name       string
	underlying typedjson.Type
	codec      codec.Codec
}

func (t *logicalType) Category() typedjson.Category { return typedjson.CategoryLogical }
func (t *logicalType) Name() string                 { return t.underlying.Name() }
func (t *logicalType) LogicalName() string          { return t.name }
func (t *logicalType) Underlying() typedjson.Type   { return t.underlying }
func (t *logicalType) ToValue(v any) (any, error)   { return t.codec.ToValue(v) }
func (t *logicalType) FromValue(v any) (any, error) { return t.codec.FromValue(v) }

func (t *logicalType) IsValid(v any) bool {
	u, err := t.codec.ToValue(v)
	return err == nil && !typedjson.IsUndefined(u) && t.underlying.IsValid(u)
}

func (t *logicalType) Equal(a, b any, opt typedjson.EqualOpt) bool {
	x, err1 := t.codec.ToValue(a)
	y, err2 := t.codec.ToValue(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return t.underlying.Equal(x, y, opt)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt64(f)
		}
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// elems lists the items of any slice or array value except strings.
func elems(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
