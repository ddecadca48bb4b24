package engine

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// ObjectSink receives object entries in input order.
type ObjectSink interface {
	Set(key string, v any)
}

// NumberConv materializes a number token.
type NumberConv func(string) (any, error)

// JSONNumber keeps numbers as json.Number.
func JSONNumber(s string) (any, error) { return json.Number(s), nil }

// Float64 decodes numbers as float64.
func Float64(s string) (any, error) { return strconv.ParseFloat(s, 64) }

// ErrTrailingData reports input continuing after the first complete value.
var ErrTrailingData = errors.New("engine: unexpected data after top-level value")

// Decoder builds an "any" tree from a token source. Objects are created with
// NewObject so callers decide whether key order is kept.
type Decoder struct {
	NewObject func() ObjectSink
	Number    NumberConv
}

// Decode reads exactly one value and requires the source to be exhausted.
func (d Decoder) Decode(src TokenSource) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	v, err := d.decodeValue(src, tok)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

func (d Decoder) decodeValue(src TokenSource, tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return d.decodeObject(src)
	case KindBeginArray:
		return d.decodeArray(src)
	case KindString:
		return tok.String, nil
	case KindNumber:
		conv := d.Number
		if conv == nil {
			conv = JSONNumber
		}
		return conv(tok.Number)
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func (d Decoder) decodeObject(src TokenSource) (any, error) {
	var m ObjectSink
	if d.NewObject != nil {
		m = d.NewObject()
	} else {
		m = mapSink{}
	}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			if ms, ok := m.(mapSink); ok {
				return map[string]any(ms), nil
			}
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := d.decodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		m.Set(tok.String, v)
	}
}

func (d Decoder) decodeArray(src TokenSource) (any, error) {
	arr := []any{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := d.decodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

type mapSink map[string]any

func (m mapSink) Set(k string, v any) { m[k] = v }
