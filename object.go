package typedjson

import (
	"bytes"
	"reflect"
	"slices"

	gojson "github.com/goccy/go-json"
	"github.com/samber/lo"
)

// ObjectView is the read-only view the transcoder takes of object-like values
// (JSON objects, maps, record instances).
type ObjectView interface {
	// Keys returns the present keys in iteration order.
	Keys() []string
	Get(key string) (any, bool)
}

// Object is an insertion-ordered JSON object. DecodeJSONBytes produces it for
// every JSON object so undeclared fields can be reported in input order, and
// EncodeToJSON produces it so records marshal in schema field order.
type Object struct {
	keys []string
	vals map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object { return &Object{vals: map[string]any{}} }

// ObjectOf builds an Object from alternating key/value pairs.
func ObjectOf(kv ...any) *Object {
	o := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		o.Set(k, kv[i+1])
	}
	return o
}

// Set stores v under k. Overwriting keeps the original position.
func (o *Object) Set(k string, v any) {
	if o.vals == nil {
		o.vals = map[string]any{}
	}
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

func (o *Object) Get(k string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[k]
	return v, ok
}

// Delete removes k, preserving the order of the remaining keys.
func (o *Object) Delete(k string) {
	if o == nil {
		return
	}
	if _, ok := o.vals[k]; !ok {
		return
	}
	delete(o.vals, k)
	o.keys = slices.DeleteFunc(o.keys, func(s string) bool { return s == k })
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Map returns a shallow, unordered copy.
func (o *Object) Map() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(o.vals))
	for k, v := range o.vals {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the entries in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := gojson.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := gojson.Marshal(o.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AsObject returns an ObjectView over v when v is object-like: *Object, any
// ObjectView implementation, or a map with string keys. Go maps have no order,
// so their keys are viewed in ascending order.
func AsObject(v any) (ObjectView, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case *Object:
		if t == nil {
			return nil, false
		}
		return t, true
	case ObjectView:
		if rv := reflect.ValueOf(t); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, false
		}
		return t, true
	case map[string]any:
		return mapView(t), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		return reflectMapView{rv}, true
	}
	return nil, false
}

type mapView map[string]any

func (m mapView) Keys() []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

func (m mapView) Get(k string) (any, bool) {
	v, ok := m[k]
	return v, ok
}

type reflectMapView struct{ rv reflect.Value }

func (m reflectMapView) Keys() []string {
	keys := lo.Map(m.rv.MapKeys(), func(k reflect.Value, _ int) string { return k.String() })
	slices.Sort(keys)
	return keys
}

func (m reflectMapView) Get(k string) (any, bool) {
	kv := reflect.ValueOf(k).Convert(m.rv.Type().Key())
	v := m.rv.MapIndex(kv)
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

// plainObject is AsObject for maps and union objects, which never accept a
// record instance.
func plainObject(v any) (ObjectView, bool) {
	if _, ok := v.(RecordValue); ok {
		return nil, false
	}
	return AsObject(v)
}

// asSlice views v as an ordered sequence.
func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case string:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	default:
		return nil, false
	}
}

func sortedKeys(o ObjectView) []string {
	keys := slices.Clone(o.Keys())
	slices.Sort(keys)
	return keys
}
