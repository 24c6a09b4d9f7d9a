package skema

import (
	"context"
)

// EffectType selects what an effects node does with its inner node.
type EffectType int

const (
	// EffectRefinement validates the inner output further without changing it.
	EffectRefinement EffectType = iota
	// EffectTransform maps the inner output to a new value.
	EffectTransform
	// EffectPreprocess rewrites the raw input before the inner node sees it.
	EffectPreprocess
)

func (t EffectType) String() string {
	switch t {
	case EffectTransform:
		return "transform"
	case EffectPreprocess:
		return "preprocess"
	default:
		return "refinement"
	}
}

// RefineParams customizes the issue raised by a failed Refine predicate.
type RefineParams struct {
	Message string
	// Path is appended to the path of the refined value.
	Path   Path
	Params map[string]any
	// Fatal aborts instead of marking the result dirty.
	Fatal bool
}

// Effect is the user code of an effects node. Exactly one of Predicate,
// PredicateCtx, Refinement (refinements) or Transform (transforms and
// preprocessors) is set. Async effects may block on I/O and are only run by
// ParseAsync/SafeParseAsync.
type Effect struct {
	Type  EffectType
	Async bool

	Predicate    func(v any) bool
	PredicateCtx func(ctx context.Context, v any) bool
	Params       RefineParams

	Refinement func(v any, rc *RefineCtx)
	Transform  func(v any, rc *RefineCtx) any
}

// RefineCtx is handed to refinements and transforms.
type RefineCtx struct {
	p      *pass
	node   *Node
	data   any
	status *tracker
}

// Context returns the context of the parse call.
func (rc *RefineCtx) Context() context.Context { return rc.p.rt.ctx }

// Path returns the path of the value being refined.
func (rc *RefineCtx) Path() Path { return rc.p.path }

// FailFast reports whether the parse stops at the first issue.
func (rc *RefineCtx) FailFast() bool { return rc.p.rt.failFast }

// AddIssue records iss. iss.Code defaults to custom and iss.Path is relative
// to Path(). A fatal issue aborts the value; any other issue marks it dirty.
func (rc *RefineCtx) AddIssue(iss Issue) {
	if iss.Code == "" {
		iss.Code = CodeCustom
	}
	rc.p.add(rc.node, rc.data, iss)
	if iss.Fatal {
		rc.status.abort()
	} else {
		rc.status.dirty()
	}
}

func (e Effect) refine(v any, rc *RefineCtx) {
	switch {
	case e.Refinement != nil:
		e.Refinement(v, rc)
	case e.Predicate != nil || e.PredicateCtx != nil:
		var ok bool
		if e.PredicateCtx != nil {
			ok = e.PredicateCtx(rc.Context(), v)
		} else {
			ok = e.Predicate(v)
		}
		if !ok {
			rc.AddIssue(Issue{Code: CodeCustom, Message: e.Params.Message, Path: e.Params.Path, Params: e.Params.Params, Fatal: e.Params.Fatal})
		}
	}
}

func (p *pass) parseEffects(n *Node, d *EffectsDef, input any) result {
	e := d.Effect
	if e.Async && !p.rt.async {
		p.fatal(ErrAsyncInSync, "")
	}
	var t tracker
	rc := &RefineCtx{p: p, node: n, data: input, status: &t}

	switch e.Type {
	case EffectPreprocess:
		processed := e.Transform(input, rc)
		if t.s == statusAborted {
			return abortedResult
		}
		inner := p.parse(d.Inner, processed)
		if inner.status == statusAborted {
			return abortedResult
		}
		t.absorb(inner.status)
		return t.result(inner.value)

	case EffectRefinement:
		inner := p.parse(d.Inner, input)
		if inner.status == statusAborted {
			return abortedResult
		}
		t.absorb(inner.status)
		rc.data = inner.value
		e.refine(inner.value, rc)
		return t.result(inner.value)

	case EffectTransform:
		inner := p.parse(d.Inner, input)
		if inner.status != statusValid {
			return inner
		}
		rc.data = inner.value
		out := e.Transform(inner.value, rc)
		return t.result(out)
	}
	panic("skema: unknown effect type " + e.Type.String())
}

func (n *Node) effect(e Effect) *Node {
	return n.wrap(KindEffects, &EffectsDef{Inner: n, Effect: e})
}

// Refine adds a predicate. A false result records a custom issue.
func (n *Node) Refine(check func(v any) bool, params ...RefineParams) *Node {
	var rp RefineParams
	if len(params) > 0 {
		rp = params[len(params)-1]
	}
	return n.effect(Effect{Type: EffectRefinement, Predicate: check, Params: rp})
}

// RefineAsync adds a predicate that may block; the node then requires
// ParseAsync.
func (n *Node) RefineAsync(check func(ctx context.Context, v any) bool, params ...RefineParams) *Node {
	var rp RefineParams
	if len(params) > 0 {
		rp = params[len(params)-1]
	}
	return n.effect(Effect{Type: EffectRefinement, Async: true, PredicateCtx: check, Params: rp})
}

// SuperRefine adds a refinement that reports its own issues through rc.
func (n *Node) SuperRefine(fn func(v any, rc *RefineCtx)) *Node {
	return n.effect(Effect{Type: EffectRefinement, Refinement: fn})
}

// SuperRefineAsync is SuperRefine for refinements that may block.
func (n *Node) SuperRefineAsync(fn func(v any, rc *RefineCtx)) *Node {
	return n.effect(Effect{Type: EffectRefinement, Async: true, Refinement: fn})
}

// Transform maps the validated value to fn's result.
func (n *Node) Transform(fn func(v any, rc *RefineCtx) any) *Node {
	return n.effect(Effect{Type: EffectTransform, Transform: fn})
}

// TransformAsync is Transform for functions that may block.
func (n *Node) TransformAsync(fn func(v any, rc *RefineCtx) any) *Node {
	return n.effect(Effect{Type: EffectTransform, Async: true, Transform: fn})
}

// Preprocess rewrites raw input with fn before n validates it.
func Preprocess(fn func(v any, rc *RefineCtx) any, n *Node) *Node {
	return n.effect(Effect{Type: EffectPreprocess, Transform: fn})
}

// Custom accepts any value check approves. A nil check accepts everything.
func Custom(check func(v any) bool, params ...RefineParams) *Node {
	if check == nil {
		return Any()
	}
	return Any().Refine(check, params...)
}
