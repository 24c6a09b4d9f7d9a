package engine

import "slices"

// Enforcement wrapper for TokenSource to apply duplicate key handling and
// max depth checks in a streaming fashion.

type dupFrame struct {
	kind       containerKind
	keys       map[string]struct{}
	path       []any
	nextIndex  int
	pendingKey string
	hasKey     bool
}

// EnforcingSource is a TokenSource that records non-fatal findings.
type EnforcingSource struct {
	inner    TokenSource
	opt      Options
	stack    []dupFrame
	findings []Finding
}

// WrapWithEnforcement returns a TokenSource that enforces the duplicate key
// policy and the maximum nesting depth of opt.
func WrapWithEnforcement(inner TokenSource, opt Options) *EnforcingSource {
	return &EnforcingSource{inner: inner, opt: opt}
}

// Findings returns the warnings recorded so far.
func (e *EnforcingSource) Findings() []Finding { return e.findings }

func (e *EnforcingSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	path := e.pathForToken(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := dupFrame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f.kind = kindObject
			f.keys = make(map[string]struct{})
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, FindingError{Finding{Code: "parse_error", Path: path, Message: "max depth exceeded"}}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
				f := Finding{Code: "duplicate_key", Path: path, Message: "key '" + tok.String + "' duplicated"}
				if e.opt.OnDuplicate == DupError {
					return Token{}, FindingError{f}
				}
				e.findings = append(e.findings, f)
			}
			top.keys[tok.String] = struct{}{}
		}
	default:
		e.valueDone()
	}
	return tok, nil
}

func (e *EnforcingSource) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject {
			top.hasKey = false
			top.pendingKey = ""
		}
	}
}

// pathForToken computes the location of tok and advances array indices.
func (e *EnforcingSource) pathForToken(tok Token) []any {
	if len(e.stack) == 0 {
		return nil
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		top.pendingKey, top.hasKey = tok.String, true
		return append(slices.Clip(top.path), tok.String)
	case KindEndObject, KindEndArray:
		return top.path
	}
	if top.kind == kindArray {
		i := top.nextIndex
		top.nextIndex++
		return append(slices.Clip(top.path), i)
	}
	if top.hasKey {
		return append(slices.Clip(top.path), top.pendingKey)
	}
	return top.path
}
