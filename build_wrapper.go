package skema

import "fmt"

// Optional also accepts Undefined.
func (n *Node) Optional() *Node { return n.wrap(KindOptional, &OptionalDef{Inner: n}) }

// Nullable also accepts nil.
func (n *Node) Nullable() *Node { return n.wrap(KindNullable, &NullableDef{Inner: n}) }

// Nullish accepts nil and Undefined.
func (n *Node) Nullish() *Node { return n.Nullable().Optional() }

// Default substitutes v for an undefined input.
func (n *Node) Default(v any) *Node {
	return n.wrap(KindDefault, &DefaultDef{Inner: n, Value: v})
}

// DefaultFunc substitutes fn() for an undefined input.
func (n *Node) DefaultFunc(fn func() any) *Node {
	return n.wrap(KindDefault, &DefaultDef{Inner: n, Func: fn})
}

// Catch returns v whenever n fails.
func (n *Node) Catch(v any) *Node {
	return n.wrap(KindCatch, &CatchDef{Inner: n, Value: v})
}

// CatchFunc returns fn(ctx) whenever n fails.
func (n *Node) CatchFunc(fn func(CatchContext) any) *Node {
	return n.wrap(KindCatch, &CatchDef{Inner: n, Func: fn})
}

// Brand tags n with a nominal name. Validation is unchanged.
func (n *Node) Brand(name string) *Node {
	return n.wrap(KindBranded, &BrandedDef{Inner: n, Brand: name})
}

// Readonly marks the output as read-only. Validation is unchanged.
func (n *Node) Readonly() *Node { return n.wrap(KindReadonly, &ReadonlyDef{Inner: n}) }

// PromiseOf accepts a Promise whose settled value passes inner. The parsed
// value is a Promise that validates on await.
func PromiseOf(inner *Node) *Node { return newNode(KindPromise, &PromiseDef{Inner: inner}) }

// Lazy defers building a node until first use, for recursive shapes. getter
// runs at most once.
func Lazy(getter func() *Node) *Node {
	return newNode(KindLazy, &LazyDef{Getter: getter, cell: &lazyCell{getter: getter}})
}

// Pipeline validates with in and feeds the result to out.
func Pipeline(in, out *Node) *Node { return newNode(KindPipeline, &PipelineDef{In: in, Out: out}) }

// Pipe is Pipeline(n, out).
func (n *Node) Pipe(out *Node) *Node { return Pipeline(n, out) }

// Function accepts a Func. By default it takes any arguments and returns
// unknown.
func Function() *Node {
	return newNode(KindFunction, &FunctionDef{Args: Tuple().Rest(Unknown()), Returns: Unknown()})
}

// Args sets the argument list of a function node.
func (n *Node) Args(items ...*Node) *Node {
	d := *mustDef[*FunctionDef](n, "Args")
	d.Args = Tuple(items...).Rest(Unknown())
	return n.derive(n.kind, &d)
}

// Returns sets the return type of a function node.
func (n *Node) Returns(ret *Node) *Node {
	d := *mustDef[*FunctionDef](n, "Returns")
	d.Returns = ret
	return n.derive(n.kind, &d)
}

// Ref is a named placeholder resolved by Dereference. Parsing through an
// unresolved reference panics.
func Ref(name string) *Node { return newNode(KindRef, &RefDef{Name: name}) }

// Name returns the name of a reference node.
func (n *Node) Name() string {
	d, ok := n.def.(*RefDef)
	if !ok {
		panic(fmt.Sprintf("skema: Name on %s node", n.kind))
	}
	return d.Name
}
