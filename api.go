package skema

import (
	"context"
	"log/slog"
	"time"
)

// Result is the outcome of SafeParse/SafeParseAsync.
type Result struct {
	Success bool
	Data    any
	// Error carries every issue of a failed parse. It is nil on success.
	Error *Error
}

// Parse validates input against n and returns the parsed value, or an *Error
// carrying every issue found. Children are validated sequentially in declared
// order. Parse panics with *FatalError when n reaches an asynchronous effect
// or an unresolved reference.
func Parse(ctx context.Context, n *Node, input any, opts ...ParseOpt) (any, error) {
	r := run(ctx, n, input, false, opts)
	if !r.Success {
		return nil, r.Error
	}
	return r.Data, nil
}

// SafeParse is Parse returning a Result instead of an error.
func SafeParse(ctx context.Context, n *Node, input any, opts ...ParseOpt) Result {
	return run(ctx, n, input, false, opts)
}

// ParseAsync is Parse with asynchronous effects allowed. The children of
// containers, unions and intersections are validated concurrently; their
// issues are still reported in declared order.
func ParseAsync(ctx context.Context, n *Node, input any, opts ...ParseOpt) (any, error) {
	r := run(ctx, n, input, true, opts)
	if !r.Success {
		return nil, r.Error
	}
	return r.Data, nil
}

// SafeParseAsync is ParseAsync returning a Result instead of an error.
func SafeParseAsync(ctx context.Context, n *Node, input any, opts ...ParseOpt) Result {
	return run(ctx, n, input, true, opts)
}

// Is reports whether v passes n.
func Is(ctx context.Context, n *Node, v any) bool {
	return SafeParse(ctx, n, v).Success
}

func (n *Node) Parse(ctx context.Context, input any, opts ...ParseOpt) (any, error) {
	return Parse(ctx, n, input, opts...)
}

func (n *Node) SafeParse(ctx context.Context, input any, opts ...ParseOpt) Result {
	return SafeParse(ctx, n, input, opts...)
}

func (n *Node) ParseAsync(ctx context.Context, input any, opts ...ParseOpt) (any, error) {
	return ParseAsync(ctx, n, input, opts...)
}

func (n *Node) SafeParseAsync(ctx context.Context, input any, opts ...ParseOpt) Result {
	return SafeParseAsync(ctx, n, input, opts...)
}

// Implement validates fn against the function node n and returns the
// validating wrapper.
func (n *Node) Implement(fn Func) Func {
	if n.kind != KindFunction {
		panic("skema: Implement on " + n.kind.String() + " node")
	}
	v, err := Parse(context.Background(), n, fn)
	if err != nil {
		panic(err)
	}
	return v.(Func)
}

func run(ctx context.Context, n *Node, input any, async bool, opts []ParseOpt) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	opt := lastOpt(opts)
	log := opt.Config.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	rt := &runtime{
		ctx:      ctx,
		async:    async,
		cfg:      opt.Config,
		log:      log,
		errorMap: opt.ErrorMap,
		maxConc:  opt.MaxConcurrency,
		failFast: opt.FailFast || IsFailFast(ctx),
	}
	start := time.Now()
	p := newPass(rt, opt.Path)
	r := p.parse(n, input)

	res := Result{Success: r.status == statusValid}
	if res.Success {
		res.Data = r.value
	} else {
		res.Error = &Error{Issues: AppendIssues(nil, *p.issues...)}
	}
	log.Debug("skema: parse",
		"kind", n.kind.String(),
		"async", async,
		"status", r.status.String(),
		"issues", len(*p.issues),
		"elapsed", time.Since(start))
	return res
}

type contextKey int

const _ctxKeyFailFast contextKey = iota

// WithFailFast returns a child context that marks fail-fast parsing behavior.
// Synchronous parses stop iterating containers after the first issue.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current parse should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}
