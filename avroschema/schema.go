// Package avroschema exposes Avro schemas parsed by github.com/hamba/avro/v2 as
// typedjson Type graphs, so values can be converted to and from the Avro JSON
// encoding.
package avroschema

import (
	"errors"
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/hamba/avro/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/reoring/typedjson"
	"github.com/reoring/typedjson/codec"
)

// Config controls how a schema is mapped.
type Config struct {
	// WrapUnions keeps union values wrapped in memory as a single-entry
	// map[string]any{branch: value}. By default union values are bare and the
	// branch is resolved from the value on encode.
	WrapUnions bool
	// Codecs resolves logical types. nil uses codec.DefaultRegistry.
	Codecs *codec.Registry
}

var defaultCodecs = codec.DefaultRegistry()

// Parse parses an Avro schema document and maps it.
func Parse(schema string, cfg ...Config) (typedjson.Type, error) {
	s, err := avro.Parse(schema)
	if err != nil {
		return nil, fmt.Errorf("avroschema: %w", err)
	}
	return FromSchema(s, cfg...)
}

// MustParse is like Parse but panics on error.
func MustParse(schema string, cfg ...Config) typedjson.Type {
	t, err := Parse(schema, cfg...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromSchema maps an already parsed schema. Field defaults are materialized
// before it returns; an invalid default fails the whole mapping.
func FromSchema(s avro.Schema, cfg ...Config) (typedjson.Type, error) {
	var c Config
	if len(cfg) > 0 {
		c = cfg[len(cfg)-1]
	}
	if c.Codecs == nil {
		c.Codecs = defaultCodecs
	}
	m := &mapper{cfg: c, named: map[string]typedjson.Type{}}
	t, err := m.node(s)
	if err != nil {
		return nil, err
	}
	var errs []error
	for _, f := range m.fields {
		if _, err := f.resolve(); err != nil {
			errs = append(errs, fmt.Errorf("avroschema: default of %s.%s: %w", f.record, f.name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return t, nil
}

type mapper struct {
	cfg    Config
	named  map[string]typedjson.Type
	fields []*field
}

func (m *mapper) node(s avro.Schema) (typedjson.Type, error) {
	switch s := s.(type) {
	case *avro.RefSchema:
		return m.node(s.Schema())
	case *avro.NullSchema:
		return primitiveType{name: string(avro.Null)}, nil
	case *avro.PrimitiveSchema:
		var base typedjson.Type
		if s.Type() == avro.Bytes {
			base = bufferType{name: string(avro.Bytes)}
		} else {
			base = primitiveType{name: string(s.Type())}
		}
		return m.logical(base, s.Logical(), s.Prop("logicalType"), codec.Props{Underlying: string(s.Type())}), nil
	case *avro.FixedSchema:
		if t, ok := m.named[s.FullName()]; ok {
			return t, nil
		}
		base := bufferType{name: s.FullName(), size: s.Size()}
		t := m.logical(base, s.Logical(), s.Prop("logicalType"), codec.Props{Underlying: string(avro.Fixed), Size: s.Size()})
		m.named[s.FullName()] = t
		return t, nil
	case *avro.EnumSchema:
		if t, ok := m.named[s.FullName()]; ok {
			return t, nil
		}
		t := newEnumType(s.FullName(), s.Symbols())
		m.named[s.FullName()] = t
		return t, nil
	case *avro.ArraySchema:
		items, err := m.node(s.Items())
		if err != nil {
			return nil, err
		}
		return &arrayType{items: items}, nil
	case *avro.MapSchema:
		values, err := m.node(s.Values())
		if err != nil {
			return nil, err
		}
		return &mapType{values: values}, nil
	case *avro.UnionSchema:
		u := &unionType{wrapped: m.cfg.WrapUnions}
		for _, bs := range s.Types() {
			bt, err := m.node(bs)
			if err != nil {
				return nil, err
			}
			u.branches = append(u.branches, bt)
		}
		return u, nil
	case *avro.RecordSchema:
		return m.record(s)
	default:
		return nil, fmt.Errorf("%w: unsupported avro schema %T", typedjson.ErrInvalidType, s)
	}
}

func (m *mapper) record(s *avro.RecordSchema) (typedjson.Type, error) {
	if t, ok := m.named[s.FullName()]; ok {
		return t, nil
	}
	rt := &recordType{name: s.FullName(), isError: s.IsError(), index: map[string]int{}}
	// Registered before the fields so self references resolve to rt.
	m.named[s.FullName()] = rt
	for i, sf := range s.Fields() {
		ft, err := m.node(sf.Type())
		if err != nil {
			return nil, fmt.Errorf("avroschema: field %s.%s: %w", s.FullName(), sf.Name(), err)
		}
		f := &field{record: s.FullName(), name: sf.Name(), typ: ft, hasDefault: sf.HasDefault()}
		if f.hasDefault {
			f.raw = defaultLiteral(sf.Default())
		}
		rt.fields = append(rt.fields, f)
		rt.index[f.name] = i
		m.fields = append(m.fields, f)
	}
	return rt, nil
}

// logical wraps base when the schema names a logical type the registry knows.
// Unknown or inapplicable logical types fall back to the underlying type.
func (m *mapper) logical(base typedjson.Type, ls avro.LogicalSchema, prop any, props codec.Props) typedjson.Type {
	var name string
	if ls != nil {
		name = string(ls.Type())
		if ds, ok := ls.(*avro.DecimalLogicalSchema); ok {
			props.Precision = ds.Precision()
			props.Scale = ds.Scale()
		}
	} else if s, ok := prop.(string); ok {
		name = s
	}
	if name == "" {
		return base
	}
	c, ok, err := m.cfg.Codecs.Lookup(name, props)
	if !ok || err != nil {
		return base
	}
	return &logicalType{name: name, underlying: base, codec: c}
}

// defaultLiteral turns a default as held by hamba/avro back into its JSON
// literal form. hamba stores bytes and fixed defaults as the raw bytes of the
// JSON string, so those are turned back into strings.
func defaultLiteral(v any) any {
	switch x := v.(type) {
	case []byte:
		return bytesLiteral(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = defaultLiteral(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = defaultLiteral(e)
		}
		return out
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return bytesLiteral(b)
	}
	return v
}

func bytesLiteral(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(s)
}
