package jsonschema

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/reoring/typedjson"
)

// latin1Pattern matches strings whose code points all fit in one byte, the
// JSON form of bytes and fixed values.
const latin1Pattern = "^[\\u0000-\\u00ff]*$"

// logicalFormats maps logical type names to JSON Schema formats.
var logicalFormats = map[string]string{
	"uuid":    "uuid",
	"rfc3339": "date-time",
}

// FromType describes the JSON encoding of values of t, as produced by
// typedjson.EncodeToJSON. Records are emitted once under $defs and referenced
// by name so recursive types terminate.
func FromType(t typedjson.Type) (*Schema, error) {
	p := &projector{defs: map[string]*Schema{}}
	s, err := p.schema(t)
	if err != nil {
		return nil, err
	}
	if len(p.defs) > 0 {
		if s.Ref != "" {
			// Keep the root self-contained: copy the referenced definition
			// alongside $defs.
			root := *p.defs[t.Name()]
			s = &root
		}
		s.Defs = p.defs
	}
	s.Dialect = Draft
	return s, nil
}

type projector struct {
	defs map[string]*Schema
}

func (p *projector) schema(t typedjson.Type) (*Schema, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", typedjson.ErrInvalidType)
	}
	switch t.Category() {
	case typedjson.CategoryPrimitive:
		return primitive(t), nil
	case typedjson.CategoryBuffer:
		s := &Schema{Type: "string", Pattern: latin1Pattern}
		if sz, ok := t.(interface{ Size() int }); ok && sz.Size() > 0 {
			s.Title = t.Name()
			s.MinLength, s.MaxLength = lo.ToPtr(sz.Size()), lo.ToPtr(sz.Size())
		}
		return s, nil
	case typedjson.CategoryArray:
		at, ok := t.(typedjson.ArrayType)
		if !ok {
			return nil, mismatch(t, "ArrayType")
		}
		items, err := p.schema(at.Items())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case typedjson.CategoryMap:
		mt, ok := t.(typedjson.MapType)
		if !ok {
			return nil, mismatch(t, "MapType")
		}
		values, err := p.schema(mt.Values())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil
	case typedjson.CategoryRecord, typedjson.CategoryErrorRecord:
		rt, ok := t.(typedjson.RecordType)
		if !ok {
			return nil, mismatch(t, "RecordType")
		}
		return p.record(rt)
	case typedjson.CategoryWrappedUnion, typedjson.CategoryUnwrappedUnion:
		ut, ok := t.(typedjson.UnionType)
		if !ok {
			return nil, mismatch(t, "UnionType")
		}
		return p.union(ut)
	case typedjson.CategoryLogical:
		lt, ok := t.(typedjson.LogicalType)
		if !ok {
			return nil, mismatch(t, "LogicalType")
		}
		s, err := p.schema(lt.Underlying())
		if err != nil {
			return nil, err
		}
		if ln, ok := t.(interface{ LogicalName() string }); ok {
			s.Format = logicalFormats[ln.LogicalName()]
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown category %d for %q", typedjson.ErrInvalidType, int(t.Category()), t.Name())
	}
}

func primitive(t typedjson.Type) *Schema {
	if et, ok := t.(typedjson.Enumerator); ok {
		return &Schema{
			Title: t.Name(),
			Type:  "string",
			Enum:  lo.Map(et.Symbols(), func(s string, _ int) any { return s }),
		}
	}
	switch t.Name() {
	case "null":
		return &Schema{Type: "null"}
	case "boolean":
		return &Schema{Type: "boolean"}
	case "int":
		return &Schema{Type: "integer", Minimum: lo.ToPtr(float64(math.MinInt32)), Maximum: lo.ToPtr(float64(math.MaxInt32))}
	case "long":
		return &Schema{Type: "integer"}
	case "float", "double":
		return &Schema{Type: "number"}
	case "string":
		return &Schema{Type: "string"}
	default:
		return &Schema{}
	}
}

func (p *projector) record(t typedjson.RecordType) (*Schema, error) {
	ref := &Schema{Ref: "#/$defs/" + t.Name()}
	if _, ok := p.defs[t.Name()]; ok {
		return ref, nil
	}
	s := &Schema{
		Title:                t.Name(),
		Type:                 "object",
		Properties:           map[string]*Schema{},
		AdditionalProperties: false,
	}
	// Registered before the fields so self references resolve.
	p.defs[t.Name()] = s
	for _, f := range t.Fields() {
		fs, err := p.schema(f.Type())
		if err != nil {
			return nil, err
		}
		def, ok := f.Default()
		if !ok {
			s.Required = append(s.Required, f.Name())
		} else if def != nil {
			enc, err := typedjson.EncodeToJSON(def, f.Type())
			if err != nil {
				return nil, fmt.Errorf("default of %s.%s: %w", t.Name(), f.Name(), err)
			}
			fs = withDefault(fs, enc)
		}
		s.Properties[f.Name()] = fs
	}
	return ref, nil
}

// withDefault copies s before annotating it, since record references and
// primitive schemas may be shared.
func withDefault(s *Schema, def any) *Schema {
	c := *s
	c.Default = def
	return &c
}

func (p *projector) union(t typedjson.UnionType) (*Schema, error) {
	s := &Schema{}
	for _, bt := range t.Branches() {
		if typedjson.IsNullType(bt) {
			s.OneOf = append(s.OneOf, &Schema{Type: "null"})
			continue
		}
		inner, err := p.schema(bt)
		if err != nil {
			return nil, err
		}
		s.OneOf = append(s.OneOf, &Schema{
			Type:                 "object",
			Properties:           map[string]*Schema{bt.Name(): inner},
			Required:             []string{bt.Name()},
			AdditionalProperties: false,
		})
	}
	return s, nil
}

func mismatch(t typedjson.Type, want string) error {
	return fmt.Errorf("%w: %s node %q does not implement %s", typedjson.ErrInvalidType, t.Category(), t.Name(), want)
}
