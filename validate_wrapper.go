package skema

import "context"

// parseCatch validates on an isolated issue list and replaces any failure with
// the catch value.
func (p *pass) parseCatch(d *CatchDef, input any) result {
	iso := p.isolated()
	r := iso.parse(d.Inner, input)
	if r.status == statusValid {
		return r
	}
	return okResult(d.Resolved(CatchContext{Error: &Error{Issues: Issues(*iso.issues)}, Input: input}))
}

// parsePipeline feeds the output of In to Out. A dirty In result is returned
// as is; Out only sees clean values.
func (p *pass) parsePipeline(d *PipelineDef, input any) result {
	in := p.parse(d.In, input)
	switch in.status {
	case statusAborted:
		return abortedResult
	case statusDirty:
		return dirtyResult(in.value)
	}
	return p.parse(d.Out, in.value)
}

// nested returns the options a deferred validation (promise, function call)
// runs with once it is eventually invoked.
func (p *pass) nested(path Path) ParseOpt {
	return ParseOpt{
		ErrorMap:       p.rt.errorMap,
		Path:           path,
		Config:         p.rt.cfg,
		MaxConcurrency: p.rt.maxConc,
	}
}

// parsePromise wraps the input promise so that awaiting it validates the
// settled value. Synchronous parses only accept actual promises.
func (p *pass) parsePromise(n *Node, d *PromiseDef, input any) result {
	pr, ok := input.(Promise)
	if !ok {
		if !p.rt.async {
			return p.invalidType(n, TypePromise, input)
		}
		pr = Resolved(input)
	}
	inner, opt := d.Inner, p.nested(p.path)
	return okResult(Promise(func(ctx context.Context) (any, error) {
		v, err := pr(ctx)
		if err != nil {
			return nil, err
		}
		return ParseAsync(ctx, inner, v, opt)
	}))
}

// parseFunction wraps the input function so that every call validates its
// arguments against Args and its result against Returns. When Returns is a
// promise node the wrapper returns a Promise and validates asynchronously.
func (p *pass) parseFunction(n *Node, d *FunctionDef, input any) result {
	fn, ok := input.(Func)
	if !ok {
		return p.invalidType(n, TypeFunction, input)
	}
	opt := p.nested(nil)
	cfg, path, callSite := p.rt.cfg, p.path, p.rt.errorMap
	fail := func(code string, args []any, inner error) error {
		e, _ := AsError(inner)
		if e == nil {
			return inner
		}
		iss := Issue{Code: code, Path: path}
		if code == CodeInvalidArguments {
			iss.ArgumentsError = e
		} else {
			iss.ReturnTypeError = e
		}
		iss.Message = renderMessage(iss, args, n, cfg, callSite)
		return &Error{Issues: Issues{iss}}
	}
	argsOf := func(v any) []any {
		out, _ := asSlice(v)
		return out
	}

	if pd, ok := d.Returns.def.(*PromiseDef); ok {
		return okResult(Func(func(_ context.Context, args ...any) (any, error) {
			return Promise(func(ctx context.Context) (any, error) {
				parsed, err := ParseAsync(ctx, d.Args, args, opt)
				if err != nil {
					return nil, fail(CodeInvalidArguments, args, err)
				}
				out, err := fn(ctx, argsOf(parsed)...)
				if err != nil {
					return nil, err
				}
				if pr, ok := out.(Promise); ok {
					if out, err = pr(ctx); err != nil {
						return nil, err
					}
				}
				v, err := ParseAsync(ctx, pd.Inner, out, opt)
				if err != nil {
					return nil, fail(CodeInvalidReturnType, args, err)
				}
				return v, nil
			}), nil
		}))
	}

	return okResult(Func(func(ctx context.Context, args ...any) (any, error) {
		parsed, err := Parse(ctx, d.Args, args, opt)
		if err != nil {
			return nil, fail(CodeInvalidArguments, args, err)
		}
		out, err := fn(ctx, argsOf(parsed)...)
		if err != nil {
			return nil, err
		}
		v, err := Parse(ctx, d.Returns, out, opt)
		if err != nil {
			return nil, fail(CodeInvalidReturnType, args, err)
		}
		return v, nil
	}))
}
