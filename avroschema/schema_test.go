package avroschema

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/typedjson"
)

const userSchema = `{
  "type": "record",
  "name": "User",
  "namespace": "example",
  "fields": [
    {"name": "id", "type": "long"},
    {"name": "name", "type": "string"},
    {"name": "age", "type": "int", "default": 18},
    {"name": "nick", "type": ["null", "string"], "default": null},
    {"name": "tags", "type": {"type": "array", "items": "string"}, "default": []},
    {"name": "role", "type": {"type": "enum", "name": "Role", "symbols": ["ADMIN", "USER"]}, "default": "USER"}
  ]
}`

func issuesOf(t *testing.T, err error) typedjson.Issues {
	t.Helper()
	require.Error(t, err)
	var ive *typedjson.IncompatibleValueError
	require.True(t, errors.As(err, &ive), "want *IncompatibleValueError, got %v", err)
	return ive.Issues
}

func TestParse_Record(t *testing.T) {
	typ, err := Parse(userSchema)
	require.NoError(t, err)
	assert.Equal(t, typedjson.CategoryRecord, typ.Category())
	assert.Equal(t, "example.User", typ.Name())

	rt := typ.(typedjson.RecordType)
	names := make([]string, 0)
	for _, f := range rt.Fields() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"id", "name", "age", "nick", "tags", "role"}, names)

	age, _ := rt.Field("age")
	def, ok := age.Default()
	require.True(t, ok)
	assert.Equal(t, int32(18), def)

	role, _ := rt.Field("role")
	assert.Equal(t, []string{"ADMIN", "USER"}, role.Type().(typedjson.Enumerator).Symbols())
}

func TestDecode_FillsDefaults(t *testing.T) {
	typ := MustParse(userSchema)
	v, err := typedjson.DecodeFromJSON(map[string]any{"id": json.Number("7"), "name": "ann"}, typ)
	require.NoError(t, err)

	rec, ok := v.(*Record)
	require.True(t, ok)
	assert.Equal(t, "example.User", rec.Name())
	assert.Equal(t, map[string]any{
		"id":   int64(7),
		"name": "ann",
		"age":  int32(18),
		"nick": nil,
		"tags": []any{},
		"role": "USER",
	}, rec.Map())
}

func TestDecode_AccumulatesIssues(t *testing.T) {
	typ := MustParse(userSchema)
	in := typedjson.ObjectOf("zz", 1, "id", "x", "aa", 2, "age", json.Number("1.5"), "role", "ROOT")
	_, err := typedjson.DecodeFromJSON(in, typ)
	iss := issuesOf(t, err)

	assert.Equal(t, []string{
		typedjson.CodeUndeclaredFields,
		typedjson.CodeInvalidValue,
		typedjson.CodeInvalidValue,
		typedjson.CodeInvalidValue,
		typedjson.CodeMissingFields,
	}, iss.Codes())
	assert.Equal(t, "2", iss[0].Params["count"])
	assert.Equal(t, "zz, aa", iss[0].Params["names"])
	assert.Equal(t, "/id", iss[1].Path)
	assert.Equal(t, "/age", iss[2].Path)
	assert.Equal(t, "/role", iss[3].Path)
	assert.Equal(t, "/", iss[4].Path)
	assert.Equal(t, "name", iss[4].Params["names"])

	_, err = typedjson.DecodeFromJSON(in, typ, typedjson.Options{AllowUndeclaredFields: true})
	assert.NotContains(t, issuesOf(t, err).Codes(), typedjson.CodeUndeclaredFields)
}

func TestEncode_RecordOrderAndDefaults(t *testing.T) {
	typ := MustParse(userSchema)
	rec, err := NewRecord(typ, map[string]any{"name": "bob", "id": int64(1), "nick": "b"})
	require.NoError(t, err)

	out, err := typedjson.EncodeJSONBytes(rec, typ)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"bob","age":18,"nick":{"string":"b"},"tags":[],"role":"USER"}`, string(out))

	out, err = typedjson.EncodeJSONBytes(rec, typ, typedjson.Options{OmitDefaultValues: true})
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"bob","nick":{"string":"b"}}`, string(out))

	back, err := typedjson.DecodeJSONBytes(out, typ)
	require.NoError(t, err)
	assert.True(t, typ.Equal(rec, back, typedjson.EqualOpt{}))
}

func TestEncode_OmitDefaultMapIgnoresKeyOrder(t *testing.T) {
	typ := MustParse(`{"type": "record", "name": "Weights", "fields": [
		{"name": "m", "type": {"type": "map", "values": "int"}, "default": {"b": 1, "a": 2}}
	]}`)
	omit := typedjson.Options{OmitDefaultValues: true}

	out, err := typedjson.EncodeJSONBytes(typedjson.ObjectOf("m", typedjson.ObjectOf("b", 1, "a", 2)), typ, omit)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))

	out, err = typedjson.EncodeJSONBytes(typedjson.ObjectOf("m", typedjson.ObjectOf("b", 1, "a", 3)), typ, omit)
	require.NoError(t, err)
	assert.Equal(t, `{"m":{"a":3,"b":1}}`, string(out))

	m := typ.(typedjson.RecordType).Fields()[0].Type()
	assert.False(t, m.Equal(typedjson.ObjectOf("b", 1, "a", 2), map[string]any{"a": 2, "b": 1}, typedjson.EqualOpt{}))
}

func TestRecord_OnlyWhereRecordExpected(t *testing.T) {
	typ := MustParse(`{"type": "record", "name": "Box", "fields": [
		{"name": "r", "type": {"type": "record", "name": "Inner", "fields": [{"name": "s", "type": "string"}]}},
		{"name": "m", "type": {"type": "map", "values": "string"}}
	]}`)
	inner := typ.(typedjson.RecordType).Fields()[0].Type()
	in, err := NewRecord(inner, map[string]any{"s": "x"})
	require.NoError(t, err)

	_, err = typedjson.EncodeToJSON(typedjson.ObjectOf("r", in, "m", in), typ)
	iss, ok := typedjson.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/m", iss[0].Path)
	assert.Equal(t, typedjson.CodeNotObject, iss[0].Code)

	var nilRec *Record
	_, ok = typedjson.AsObject(nilRec)
	assert.False(t, ok)
	assert.False(t, inner.IsValid(nilRec))
	_, err = typedjson.EncodeToJSON(typedjson.ObjectOf("r", nilRec, "m", map[string]any{}), typ)
	iss, ok = typedjson.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{typedjson.CodeNotObject}, iss.Codes())
}

func TestNewRecord_RejectsUndeclared(t *testing.T) {
	typ := MustParse(userSchema)
	_, err := NewRecord(typ, map[string]any{"id": int64(1), "name": "x", "email": "x@example.com"})
	assert.Error(t, err)

	_, err = NewRecord(MustParse(`"string"`), nil)
	assert.ErrorIs(t, err, typedjson.ErrInvalidType)
}

func TestUnion_WrappedAndUnwrapped(t *testing.T) {
	const schema = `["null", "string", {"type": "record", "name": "P", "fields": [{"name": "x", "type": "int"}]}]`

	unwrapped := MustParse(schema)
	assert.Equal(t, typedjson.CategoryUnwrappedUnion, unwrapped.Category())
	v, err := typedjson.DecodeFromJSON(map[string]any{"string": "hi"}, unwrapped)
	require.NoError(t, err)
	assert.Equal(t, "hi", v)

	v, err = typedjson.DecodeFromJSON(map[string]any{"P": map[string]any{"x": json.Number("3")}}, unwrapped)
	require.NoError(t, err)
	out, err := typedjson.EncodeJSONBytes(v, unwrapped)
	require.NoError(t, err)
	assert.Equal(t, `{"P":{"x":3}}`, string(out))

	wrapped := MustParse(schema, Config{WrapUnions: true})
	assert.Equal(t, typedjson.CategoryWrappedUnion, wrapped.Category())
	v, err = typedjson.DecodeFromJSON(map[string]any{"string": "hi"}, wrapped)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"string": "hi"}, v)

	v, err = typedjson.DecodeFromJSON(nil, wrapped)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = typedjson.DecodeFromJSON(map[string]any{"int": json.Number("1")}, wrapped)
	assert.Equal(t, []string{typedjson.CodeUnionUnknownBranch}, issuesOf(t, err).Codes())

	_, err = typedjson.EncodeToJSON(42, unwrapped)
	assert.Equal(t, []string{typedjson.CodeUnionNoBranch}, issuesOf(t, err).Codes())
}

func TestUnion_FieldDefaultUsesFirstBranch(t *testing.T) {
	typ := MustParse(`{"type": "record", "name": "R", "fields": [
		{"name": "s", "type": ["string", "null"], "default": "none"}
	]}`, Config{WrapUnions: true})
	v, err := typedjson.DecodeFromJSON(map[string]any{}, typ)
	require.NoError(t, err)
	got, _ := v.(*Record).Get("s")
	assert.Equal(t, map[string]any{"string": "none"}, got)
}

func TestRecursiveSchema(t *testing.T) {
	typ := MustParse(`{"type": "record", "name": "Node", "fields": [
		{"name": "value", "type": "int"},
		{"name": "next", "type": ["null", "Node"], "default": null}
	]}`)
	in := `{"value": 1, "next": {"Node": {"value": 2, "next": {"Node": {"value": 3}}}}}`
	v, err := typedjson.DecodeJSONBytes([]byte(in), typ)
	require.NoError(t, err)

	next, _ := v.(*Record).Get("next")
	require.IsType(t, &Record{}, next)
	value, _ := next.(*Record).Get("value")
	assert.Equal(t, int32(2), value)

	out, err := typedjson.EncodeJSONBytes(v, typ)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":1,"next":{"Node":{"value":2,"next":{"Node":{"value":3,"next":null}}}}}`, string(out))

	_, err = typedjson.DecodeJSONBytes([]byte(`{"value": 1, "next": {"Node": {"value": "two"}}}`), typ)
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, "/next/Node/value", iss[0].Path)
}

func TestBuffers(t *testing.T) {
	typ := MustParse(`{"type": "record", "name": "B", "fields": [
		{"name": "raw", "type": "bytes", "default": "ÿ"},
		{"name": "id", "type": {"type": "fixed", "name": "Id", "size": 2}}
	]}`)

	v, err := typedjson.DecodeFromJSON(map[string]any{"id": "\u0001\u0002"}, typ)
	require.NoError(t, err)
	raw, _ := v.(*Record).Get("raw")
	id, _ := v.(*Record).Get("id")
	assert.Equal(t, []byte{0xff}, raw)
	assert.Equal(t, []byte{1, 2}, id)

	_, err = typedjson.DecodeFromJSON(map[string]any{"id": "\u0001"}, typ)
	assert.Equal(t, []string{typedjson.CodeInvalidValue}, issuesOf(t, err).Codes())

	_, err = typedjson.DecodeFromJSON(map[string]any{"id": "Ā\u0001"}, typ)
	assert.Equal(t, []string{typedjson.CodeInvalidValue}, issuesOf(t, err).Codes())

	_, err = typedjson.DecodeFromJSON(map[string]any{"id": []any{1, 2}}, typ)
	assert.Equal(t, []string{typedjson.CodeNotString}, issuesOf(t, err).Codes())

	out, err := typedjson.EncodeToJSON(v, typ)
	require.NoError(t, err)
	got, _ := out.(*typedjson.Object).Get("raw")
	assert.Equal(t, "ÿ", got)
}

func TestLogicalTypes(t *testing.T) {
	typ := MustParse(`{"type": "record", "name": "Event", "fields": [
		{"name": "id", "type": {"type": "string", "logicalType": "uuid"}},
		{"name": "at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "day", "type": {"type": "int", "logicalType": "date"}},
		{"name": "amount", "type": {"type": "bytes", "logicalType": "decimal", "precision": 6, "scale": 2}},
		{"name": "when", "type": ["null", {"type": "long", "logicalType": "timestamp-micros"}], "default": null}
	]}`)

	in := map[string]any{
		"id":     "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"at":     json.Number("1700000000000"),
		"day":    json.Number("19675"),
		"amount": "\u0004Ò",
		"when":   map[string]any{"long": json.Number("1")},
	}
	v, err := typedjson.DecodeFromJSON(in, typ)
	require.NoError(t, err)
	rec := v.(*Record)

	id, _ := rec.Get("id")
	assert.Equal(t, uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), id)
	at, _ := rec.Get("at")
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), at)
	day, _ := rec.Get("day")
	assert.Equal(t, time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC), day)
	amount, _ := rec.Get("amount")
	assert.True(t, decimal.RequireFromString("12.34").Equal(amount.(decimal.Decimal)))
	when, _ := rec.Get("when")
	assert.Equal(t, time.UnixMicro(1).UTC(), when)

	out, err := typedjson.EncodeJSONBytes(rec, typ)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"at": 1700000000000,
		"day": 19675,
		"amount": "\u0004Ò",
		"when": {"long": 1}
	}`, string(out))

	require.NoError(t, rec.Set("at", "yesterday"))
	_, err = typedjson.EncodeToJSON(rec, typ)
	iss := issuesOf(t, err)
	assert.Equal(t, []string{typedjson.CodeLogicalEncode}, iss.Codes())
	assert.Equal(t, "/at", iss[0].Path)

	in["id"] = "not-a-uuid"
	_, err = typedjson.DecodeFromJSON(in, typ)
	iss = issuesOf(t, err)
	assert.Equal(t, []string{typedjson.CodeLogicalDecode}, iss.Codes())
	assert.Equal(t, "/id", iss[0].Path)
}

func TestUnknownLogicalTypeFallsBack(t *testing.T) {
	typ := MustParse(`{"type": "fixed", "name": "D", "size": 12, "logicalType": "duration"}`)
	assert.Equal(t, typedjson.CategoryBuffer, typ.Category())
}

func TestErrorRecord(t *testing.T) {
	typ := MustParse(`{"type": "error", "name": "Oops", "fields": [{"name": "msg", "type": "string"}]}`)
	assert.Equal(t, typedjson.CategoryErrorRecord, typ.Category())
	v, err := typedjson.DecodeFromJSON(map[string]any{"msg": "boom"}, typ)
	require.NoError(t, err)
	assert.Equal(t, "Oops", v.(*Record).Name())
}

func TestEqual(t *testing.T) {
	typ := MustParse(`{"type": "map", "values": {"type": "array", "items": "double"}}`)
	a := typedjson.ObjectOf("x", []any{1.0}, "y", []any{})
	b := typedjson.ObjectOf("y", []any{}, "x", []any{json.Number("1")})
	assert.False(t, typ.Equal(a, b, typedjson.EqualOpt{}))
	assert.True(t, typ.Equal(a, b, typedjson.EqualOpt{IgnoreMapOrder: true}))
	assert.False(t, typ.Equal(a, typedjson.ObjectOf("x", []any{2.0}, "y", []any{}), typedjson.EqualOpt{IgnoreMapOrder: true}))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(`{"type": "record"}`)
	assert.Error(t, err)
}
