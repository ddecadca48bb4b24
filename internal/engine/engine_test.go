package engine

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"testing"
)

type sliceSource struct {
	toks []Token
	i    int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.i >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.i) }

type orderedSink struct {
	keys []string
	vals map[string]any
}

func (o *orderedSink) Set(k string, v any) {
	if o.vals == nil {
		o.vals = map[string]any{}
	}
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

func objectTokens() []Token {
	return []Token{
		{Kind: KindBeginObject},
		{Kind: KindKey, String: "z"},
		{Kind: KindNumber, Number: "1"},
		{Kind: KindKey, String: "a"},
		{Kind: KindBeginArray},
		{Kind: KindString, String: "x"},
		{Kind: KindBool, Bool: true},
		{Kind: KindNull},
		{Kind: KindEndArray},
		{Kind: KindEndObject},
	}
}

func TestDecoder_KeepsKeyOrder(t *testing.T) {
	d := Decoder{NewObject: func() ObjectSink { return &orderedSink{} }}
	v, err := d.Decode(&sliceSource{toks: objectTokens()})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	o, ok := v.(*orderedSink)
	if !ok {
		t.Fatalf("want *orderedSink, got %T", v)
	}
	if len(o.keys) != 2 || o.keys[0] != "z" || o.keys[1] != "a" {
		t.Fatalf("unexpected key order: %v", o.keys)
	}
	if n, ok := o.vals["z"].(json.Number); !ok || n != "1" {
		t.Fatalf("want json.Number 1, got %#v", o.vals["z"])
	}
	arr, ok := o.vals["a"].([]any)
	if !ok || len(arr) != 3 || arr[0] != "x" || arr[1] != true || arr[2] != nil {
		t.Fatalf("unexpected array: %#v", o.vals["a"])
	}
}

func TestDecoder_DefaultsToMaps(t *testing.T) {
	v, err := Decoder{Number: Float64}.Decode(&sliceSource{toks: objectTokens()})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("want map, got %T", v)
	}
	if m["z"] != 1.0 {
		t.Fatalf("want float64 1, got %#v", m["z"])
	}
}

func TestDecoder_TrailingData(t *testing.T) {
	toks := []Token{{Kind: KindString, String: "a"}, {Kind: KindString, String: "b"}}
	_, err := Decoder{}.Decode(&sliceSource{toks: toks})
	if !errors.Is(err, ErrTrailingData) {
		t.Fatalf("want ErrTrailingData, got %v", err)
	}
}

func TestDecoder_Empty(t *testing.T) {
	_, err := Decoder{}.Decode(&sliceSource{})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("want ErrUnexpectedEOF, got %v", err)
	}
}

func TestFrames_PositionAndDuplicates(t *testing.T) {
	// [{"a": 1, "a": [true, {"b": ...
	f := Frames{TrackKeys: true}
	f.Open(false)
	f.Open(true)
	if f.Member("a") {
		t.Fatal("first a is not a duplicate")
	}
	f.Value()
	if !f.Member("a") {
		t.Fatal("second a must be a duplicate")
	}
	if got := f.Position(); !reflect.DeepEqual(got, []Step{{Index: 0}, {Key: "a", Object: true}}) {
		t.Fatalf("position at key: %#v", got)
	}
	f.Open(false)
	f.Value()
	f.Open(true)
	f.Member("b")
	want := []Step{{Index: 0}, {Key: "a", Object: true}, {Index: 1}, {Key: "b", Object: true}}
	if got := f.Position(); !reflect.DeepEqual(got, want) {
		t.Fatalf("nested position: %#v", got)
	}
	if f.Depth() != 4 {
		t.Fatalf("depth = %d", f.Depth())
	}
	f.Value()
	f.Close()
	f.Close()
	f.Close()
	if got := f.Position(); !reflect.DeepEqual(got, []Step{{Index: 1}}) {
		t.Fatalf("after closing: %#v", got)
	}
}

func TestFrames_KeysUntracked(t *testing.T) {
	var f Frames
	f.Open(true)
	f.Member("a")
	f.Value()
	if f.Member("a") {
		t.Fatal("duplicates are only reported with TrackKeys")
	}
	// Member consumed the key position, so a string here is a value.
	if f.Key() {
		t.Fatal("Key after Member must report a value")
	}
}
