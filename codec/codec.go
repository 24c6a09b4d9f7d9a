// Package codec pairs a wire schema with a domain schema and converts values
// between them. Decoding validates on the wire side, converts, then validates
// on the domain side; encoding runs the same steps in reverse.
package codec

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/reoring/skema"
)

// Codec converts between values accepted by In and values accepted by Out.
type Codec struct {
	in, out *skema.Node
	decode  func(v any, rc *skema.RefineCtx) any
	encode  func(v any) (any, error)
	node    *skema.Node
}

// New returns a codec decoding with decode and encoding with encode. decode
// reports conversion failures through rc.
func New(in, out *skema.Node, decode func(v any, rc *skema.RefineCtx) any, encode func(v any) (any, error)) *Codec {
	return &Codec{
		in:     in,
		out:    out,
		decode: decode,
		encode: encode,
		node:   skema.Pipeline(in.Transform(decode), out),
	}
}

// Identity returns a codec that validates on n in both directions.
func Identity(n *skema.Node) *Codec {
	return New(n, n,
		func(v any, _ *skema.RefineCtx) any { return v },
		func(v any) (any, error) { return v, nil })
}

func (c *Codec) In() *skema.Node  { return c.in }
func (c *Codec) Out() *skema.Node { return c.out }

// Node returns the decoding pipeline, usable as a property of a larger schema.
func (c *Codec) Node() *skema.Node { return c.node }

// Decode converts a wire value into a domain value.
func (c *Codec) Decode(ctx context.Context, v any, opts ...skema.ParseOpt) (any, error) {
	return c.node.Parse(ctx, v, opts...)
}

// Encode validates v on the domain side, converts it and validates the result
// on the wire side.
func (c *Codec) Encode(ctx context.Context, v any, opts ...skema.ParseOpt) (any, error) {
	dv, err := c.out.Parse(ctx, v, opts...)
	if err != nil {
		return nil, err
	}
	wire, err := c.encode(dv)
	if err != nil {
		return nil, err
	}
	return c.in.Parse(ctx, wire, opts...)
}

// TimeRFC3339 converts between RFC 3339 strings and time.Time. Encoded times
// are normalized to UTC; fractional seconds keep only significant digits.
func TimeRFC3339() *Codec {
	in := skema.String().Datetime(skema.DatetimeOpts{Offset: true})
	return New(in, skema.Date(),
		func(v any, rc *skema.RefineCtx) any {
			t, err := time.Parse(time.RFC3339Nano, v.(string))
			if err != nil {
				rc.AddIssue(skema.Issue{Code: skema.CodeInvalidDate, Fatal: true})
				return nil
			}
			return t
		},
		func(v any) (any, error) {
			return v.(time.Time).UTC().Format(time.RFC3339Nano), nil
		})
}

// NumberFromString converts between decimal strings and float64. Surrounding
// whitespace is ignored; infinities and NaN are rejected.
func NumberFromString() *Codec {
	return New(skema.String().Trim().Min(1), skema.Number(),
		func(v any, rc *skema.RefineCtx) any {
			f, err := strconv.ParseFloat(v.(string), 64)
			if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
				rc.AddIssue(skema.Issue{Code: skema.CodeInvalidType, Expected: skema.TypeNumber, Received: skema.TypeString, Fatal: true})
				return nil
			}
			return f
		},
		func(v any) (any, error) {
			if f, ok := v.(float64); ok {
				return strconv.FormatFloat(f, 'f', -1, 64), nil
			}
			return fmt.Sprint(v), nil
		})
}
