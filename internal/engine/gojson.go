package engine

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

// jsonSource tokenizes JSON with goccy/go-json.
type jsonSource struct {
	dec   *j.Decoder
	stack []frame
}

// NewJSONReader wraps an io.Reader into a TokenSource.
func NewJSONReader(r io.Reader) TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec}
}

// NewJSONBytes wraps a byte slice into a TokenSource.
func NewJSONBytes(b []byte) TokenSource { return NewJSONReader(bytes.NewReader(b)) }

// valueDone marks the value slot of the enclosing object as consumed.
func (s *jsonSource) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (s *jsonSource) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return Token{Kind: KindBeginObject}, nil
		case '}':
			s.stack = s.stack[:len(s.stack)-1]
			s.valueDone()
			return Token{Kind: KindEndObject}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return Token{Kind: KindBeginArray}, nil
		case ']':
			s.stack = s.stack[:len(s.stack)-1]
			s.valueDone()
			return Token{Kind: KindEndArray}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return Token{Kind: KindKey, String: v}, nil
			}
		}
		s.valueDone()
		return Token{Kind: KindString, String: v}, nil
	case bool:
		s.valueDone()
		return Token{Kind: KindBool, Bool: v}, nil
	case j.Number:
		s.valueDone()
		return Token{Kind: KindNumber, Number: string(v)}, nil
	case float64:
		s.valueDone()
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	}
	s.valueDone()
	return Token{Kind: KindNull}, nil
}

// DecodeJSON decodes data with duplicate-key, depth and size enforcement.
// Findings below the error threshold are returned alongside the value.
func DecodeJSON(data []byte, opt Options) (any, []Finding, error) {
	if err := checkSize(len(data), opt); err != nil {
		return nil, nil, err
	}
	src := WrapWithEnforcement(NewJSONBytes(data), opt)
	v, err := Decode(src, opt)
	return v, src.Findings(), err
}
