// Package engine turns JSON and YAML documents into the plain value trees the
// validator consumes: map[string]any, []any, string, bool, nil and numbers.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
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

// Token represents one streaming token.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
}

// NumberMode dictates how numbers are interpreted.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // Fast mode (with potential precision loss).
	NumberJSONNumber                   // Preserve json.Number.
)

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// Options controls decoding and enforcement.
type Options struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	Numbers     NumberMode
}

// Finding is a lightweight issue raised while decoding. Path holds string keys
// and int indices.
type Finding struct {
	Code    string
	Path    []any
	Message string
}

// FindingError is a fatal Finding.
type FindingError struct{ Finding }

func (e FindingError) Error() string { return e.Message }

// ErrTrailingData reports input after the first complete value.
var ErrTrailingData = errors.New("engine: trailing data after top-level value")

func (o Options) number(s string) (any, error) {
	if o.Numbers == NumberJSONNumber {
		return json.Number(s), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("engine: invalid number %q: %w", s, err)
	}
	return f, nil
}

func checkSize(n int, opt Options) error {
	if opt.MaxBytes > 0 && int64(n) > opt.MaxBytes {
		return FindingError{Finding{Code: "truncated", Message: "max bytes exceeded"}}
	}
	return nil
}

// Decode builds a value tree from src.
func Decode(src TokenSource, opt Options) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	v, err := decodeValue(src, tok, opt)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

func decodeValue(src TokenSource, tok Token, opt Options) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src, opt)
	case KindBeginArray:
		return decodeArray(src, opt)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return opt.number(tok.Number)
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource, opt Options) (any, error) {
	m := make(map[string]any)
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(src, vt, opt)
		if err != nil {
			return nil, err
		}
		m[tok.String] = v
	}
}

func decodeArray(src TokenSource, opt Options) (any, error) {
	arr := []any{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok, opt)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
