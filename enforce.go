package typedjson

import (
	"github.com/reoring/typedjson/i18n"
	eng "github.com/reoring/typedjson/internal/engine"
)

// limitedSource applies ParseOpt's wire-level rules to a token stream:
// duplicate object keys, nesting depth and consumed bytes.
type limitedSource struct {
	inner  Source
	opt    ParseOpt
	frames eng.Frames
}

func withLimits(src Source, opt ParseOpt) Source {
	if opt.Strictness.OnDuplicateKey == Ignore && opt.MaxDepth <= 0 && opt.MaxBytes <= 0 {
		return src
	}
	s := &limitedSource{inner: src, opt: opt}
	s.frames.TrackKeys = opt.Strictness.OnDuplicateKey != Ignore
	return s
}

func (s *limitedSource) NextToken() (Token, error) {
	tok, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	switch tok.Kind {
	case TokenBeginObject, TokenBeginArray:
		at := s.position()
		s.frames.Open(tok.Kind == TokenBeginObject)
		if s.opt.MaxDepth > 0 && s.frames.Depth() > s.opt.MaxDepth {
			return Token{}, wireIssue(at, CodeParseError, map[string]string{"cause": "max depth exceeded"})
		}
	case TokenEndObject, TokenEndArray:
		s.frames.Close()
	case TokenKey:
		if s.frames.Member(tok.String) {
			it := wireIssue(s.position(), CodeDuplicateKey, nil)
			if s.opt.Strictness.OnDuplicateKey == Error {
				return Token{}, it
			}
			if s.opt.OnWarning != nil {
				s.opt.OnWarning(it[0])
			}
		}
	default:
		s.frames.Value()
	}
	if s.opt.MaxBytes > 0 && s.Location() > s.opt.MaxBytes {
		return Token{}, wireIssue(s.position(), CodeTruncated, nil)
	}
	return tok, nil
}

func (s *limitedSource) Location() int64 { return s.inner.Location() }

func (s *limitedSource) position() Path {
	var p Path
	for _, st := range s.frames.Position() {
		if st.Object {
			p = p.Field(st.Key)
		} else {
			p = p.Index(st.Index)
		}
	}
	return p
}

func wireIssue(at Path, code string, data map[string]string) Issues {
	return Issues{{Path: at.Pointer(), Code: code, Message: i18n.T(code, data)}}
}
