package gojson

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/reoring/typedjson"
	eng "github.com/reoring/typedjson/internal/engine"
)

// Driver returns a typedjson.JSONDriver backed by goccy/go-json.
func Driver() typedjson.JSONDriver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) typedjson.Source { return NewReader(r) }
func (driverGoJSON) NewBytes(b []byte) typedjson.Source     { return NewBytes(b) }
func (driverGoJSON) Name() string                           { return "go-json" }

type source struct {
	dec    *j.Decoder
	frames eng.Frames
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.frames.Open(true)
			return eng.Token{Kind: eng.KindBeginObject, Offset: -1}, nil
		case '}':
			s.frames.Close()
			return eng.Token{Kind: eng.KindEndObject, Offset: -1}, nil
		case '[':
			s.frames.Open(false)
			return eng.Token{Kind: eng.KindBeginArray, Offset: -1}, nil
		case ']':
			s.frames.Close()
			return eng.Token{Kind: eng.KindEndArray, Offset: -1}, nil
		}
	case string:
		if s.frames.Key() {
			return eng.Token{Kind: eng.KindKey, String: v, Offset: -1}, nil
		}
		s.frames.Value()
		return eng.Token{Kind: eng.KindString, String: v, Offset: -1}, nil
	case bool:
		s.frames.Value()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: -1}, nil
	case j.Number:
		s.frames.Value()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: -1}, nil
	case float64:
		s.frames.Value()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: -1}, nil
	}
	s.frames.Value()
	return eng.Token{Kind: eng.KindNull, Offset: -1}, nil
}

func (s *source) Location() int64 { return -1 }
