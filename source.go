package skema

import (
	"context"
	"errors"

	eng "github.com/reoring/skema/internal/engine"
)

// NumberMode dictates how ParseJSON and ParseYAML represent numbers.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // Fast mode (with potential precision loss).
	NumberJSONNumber                   // Preserve json.Number.
)

// ParseJSON decodes data and validates the result against n. Decoding
// failures (syntax, duplicate keys under SeverityError, depth and size limits)
// are reported as a single parse_error or duplicate_key issue.
func ParseJSON(ctx context.Context, n *Node, data []byte, opts ...ParseOpt) (any, error) {
	v, err := decodeInput(eng.DecodeJSON, data, opts)
	if err != nil {
		return nil, err
	}
	return Parse(ctx, n, v, opts...)
}

// ParseYAML is ParseJSON for YAML documents.
func ParseYAML(ctx context.Context, n *Node, data []byte, opts ...ParseOpt) (any, error) {
	v, err := decodeInput(eng.DecodeYAML, data, opts)
	if err != nil {
		return nil, err
	}
	return Parse(ctx, n, v, opts...)
}

type decodeFunc func([]byte, eng.Options) (any, []eng.Finding, error)

func decodeInput(decode decodeFunc, data []byte, opts []ParseOpt) (any, error) {
	opt := lastOpt(opts)
	v, findings, err := decode(data, eng.Options{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		Numbers:     eng.NumberMode(opt.NumberMode),
	})
	if log := opt.Config.Logger; log != nil {
		for _, f := range findings {
			log.Warn("skema: input finding", "code", f.Code, "path", Path(f.Path).Pointer(), "message", f.Message)
		}
	}
	if err != nil {
		return nil, &Error{Issues: Issues{toIssue(err, opt)}}
	}
	return v, nil
}

func toIssue(err error, opt ParseOpt) Issue {
	var fe eng.FindingError
	if errors.As(err, &fe) {
		code := fe.Code
		if code != CodeDuplicateKey {
			code = CodeParseError
		}
		return Issue{Code: code, Path: opt.Path.Append(fe.Path...), Message: fe.Message}
	}
	return Issue{Code: CodeParseError, Path: opt.Path, Message: err.Error()}
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case SeverityWarn:
		return eng.DupWarn
	case SeverityError:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}
