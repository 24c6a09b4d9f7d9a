package skema

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// runtime is the per-call state shared by every step of one parse.
type runtime struct {
	ctx      context.Context
	async    bool
	cfg      *Config
	log      *slog.Logger
	errorMap ErrorMap
	maxConc  int
	failFast bool
}

// pass is the position of one validation step: the path it validates and the
// issue list it appends to.
type pass struct {
	rt     *runtime
	path   Path
	issues *[]Issue
}

func newPass(rt *runtime, path Path) *pass {
	var list []Issue
	return &pass{rt: rt, path: path, issues: &list}
}

// at descends into seg, sharing the issue list.
func (p *pass) at(seg any) *pass {
	return &pass{rt: p.rt, path: p.path.Append(seg), issues: p.issues}
}

// isolated returns a pass at the same path with its own issue list.
func (p *pass) isolated() *pass { return newPass(p.rt, p.path) }

// add records iss raised by n while validating data.
func (p *pass) add(n *Node, data any, iss Issue) {
	iss.Path = p.path.Append(iss.Path...)
	iss.Message = renderMessage(iss, data, n, p.rt.cfg, p.rt.errorMap)
	*p.issues = append(*p.issues, iss)
}

func (p *pass) invalidType(n *Node, expected any, data any) result {
	p.add(n, data, Issue{Code: CodeInvalidType, Expected: expected, Received: TypeOf(data)})
	return abortedResult
}

// stopped reports whether a fail-fast sync parse already has an issue.
func (p *pass) stopped() bool {
	return p.rt.failFast && !p.rt.async && len(*p.issues) > 0
}

// each runs fn for every index in [0, n). Synchronous parses run the children
// in order on p's own issue list. Asynchronous parses run each child on its
// own goroutine with an isolated issue list; the lists are appended to p's in
// index order once all children finished, so output does not depend on
// completion order. A panic in a child is re-raised on the caller.
func (p *pass) each(n int, fn func(i int, c *pass) result) []result {
	results := make([]result, n)
	if !p.rt.async || n < 2 {
		for i := 0; i < n; i++ {
			if p.stopped() {
				for j := i; j < n; j++ {
					results[j] = abortedResult
				}
				break
			}
			results[i] = fn(i, p)
		}
		return results
	}

	children := make([]*pass, n)
	panics := make([]any, n)
	var g errgroup.Group
	if p.rt.maxConc > 0 {
		g.SetLimit(p.rt.maxConc)
	}
	for i := range n {
		c := p.isolated()
		children[i] = c
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panics[i] = r
				}
			}()
			results[i] = fn(i, c)
			return nil
		})
	}
	_ = g.Wait()
	for i, c := range children {
		if panics[i] != nil {
			panic(panics[i])
		}
		*p.issues = append(*p.issues, *c.issues...)
	}
	return results
}

// fatal logs and raises a programmer error.
func (p *pass) fatal(err error, ref string) {
	fe := &FatalError{Err: err, Path: p.path, Ref: ref}
	p.rt.log.Error("skema: fatal parse error", "error", fe, "path", p.path.Pointer())
	panic(fe)
}
