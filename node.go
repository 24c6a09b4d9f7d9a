package skema

import (
	"fmt"
	"sync"
)

// Node is one schema node. Nodes are immutable: every builder and modifier
// returns a new Node and never changes the receiver, so a Node may be shared
// freely between goroutines.
type Node struct {
	kind        Kind
	def         Def
	description string
	meta        Metadata
	errorMap    ErrorMap
	messages    Messages
}

// Def is the kind-specific configuration of a Node. The set of implementations
// is closed; switch over the concrete types to dispatch on a node's kind.
// Defs returned by Node.Def must be treated as read-only.
type Def interface{ isDef() }

type defMarker struct{}

func (defMarker) isDef() {}

type (
	StringDef struct {
		defMarker
		Checks []Check
		Coerce bool
	}
	NumberDef struct {
		defMarker
		Checks []Check
		Coerce bool
	}
	BigIntDef struct {
		defMarker
		Checks []Check
		Coerce bool
	}
	BooleanDef struct {
		defMarker
		Coerce bool
	}
	DateDef struct {
		defMarker
		Checks []Check
		Coerce bool
	}
	SymbolDef    struct{ defMarker }
	NaNDef       struct{ defMarker }
	UndefinedDef struct{ defMarker }
	NullDef      struct{ defMarker }
	NeverDef     struct{ defMarker }
	UnknownDef   struct{ defMarker }
	AnyDef       struct{ defMarker }
	VoidDef      struct{ defMarker }
)

type (
	ArrayDef struct {
		defMarker
		Element *Node
		Checks  []Check
	}
	TupleDef struct {
		defMarker
		Items []*Node
		Rest  *Node
	}
	SetDef struct {
		defMarker
		Element *Node
		Checks  []Check
	}
	RecordDef struct {
		defMarker
		Key   *Node
		Value *Node
	}
	MapDef struct {
		defMarker
		Key   *Node
		Value *Node
	}
	ObjectDef struct {
		defMarker
		Props       []Property
		UnknownKeys UnknownKeys
		Catchall    *Node
	}
)

// Property is one declared key of an object node.
type Property struct {
	Key  string
	Node *Node
}

// Prop declares an object property.
func Prop(key string, n *Node) Property { return Property{Key: key, Node: n} }

// UnknownKeys is the object policy for input keys that are not declared.
type UnknownKeys int

const (
	UnknownStrip       UnknownKeys = iota // Drop unknown keys.
	UnknownPassthrough                    // Copy unknown keys to the output untouched.
	UnknownStrict                         // Reject unknown keys with unrecognized_keys.
)

func (u UnknownKeys) String() string {
	switch u {
	case UnknownPassthrough:
		return "passthrough"
	case UnknownStrict:
		return "strict"
	default:
		return "strip"
	}
}

type (
	UnionDef struct {
		defMarker
		Options []*Node
	}
	DiscriminatedUnionDef struct {
		defMarker
		Discriminator string
		Options       []*Node
		// Values lists every discriminator value in option order.
		Values []any
		lookup map[any]*Node
	}
	IntersectionDef struct {
		defMarker
		Left  *Node
		Right *Node
	}
	LiteralDef struct {
		defMarker
		Value any
	}
	EnumDef struct {
		defMarker
		Values []string
	}
	NativeEnumDef struct {
		defMarker
		Members []EnumMember
	}
)

// EnumMember is one named value of a native enum.
type EnumMember struct {
	Name  string
	Value any
}

type (
	OptionalDef struct {
		defMarker
		Inner *Node
	}
	NullableDef struct {
		defMarker
		Inner *Node
	}
	// DefaultDef substitutes Value (or the result of Func when set) for an
	// undefined input.
	DefaultDef struct {
		defMarker
		Inner *Node
		Value any
		Func  func() any
	}
	// CatchDef replaces any failure of Inner with Value (or the result of Func
	// when set).
	CatchDef struct {
		defMarker
		Inner *Node
		Value any
		Func  func(CatchContext) any
	}
	BrandedDef struct {
		defMarker
		Inner *Node
		Brand string
	}
	ReadonlyDef struct {
		defMarker
		Inner *Node
	}
	EffectsDef struct {
		defMarker
		Inner  *Node
		Effect Effect
	}
	PromiseDef struct {
		defMarker
		Inner *Node
	}
	LazyDef struct {
		defMarker
		Getter func() *Node
		cell   *lazyCell
	}
	PipelineDef struct {
		defMarker
		In  *Node
		Out *Node
	}
	FunctionDef struct {
		defMarker
		Args    *Node
		Returns *Node
	}
	RefDef struct {
		defMarker
		Name string
	}
)

// CatchContext is passed to catch value producers.
type CatchContext struct {
	Error *Error
	Input any
}

type lazyCell struct {
	once   sync.Once
	getter func() *Node
	node   *Node
}

func (c *lazyCell) resolve() *Node {
	c.once.Do(func() { c.node = c.getter() })
	return c.node
}

// Resolve returns the node produced by the getter. The getter runs at most once.
func (d *LazyDef) Resolve() *Node { return d.cell.resolve() }

// Resolved returns the fallback value for ctx.
func (d *CatchDef) Resolved(ctx CatchContext) any {
	if d.Func != nil {
		return d.Func(ctx)
	}
	return d.Value
}

// Resolved returns the default value.
func (d *DefaultDef) Resolved() any {
	if d.Func != nil {
		return d.Func()
	}
	return d.Value
}

// Option returns the option selected by discriminator value v.
func (d *DiscriminatedUnionDef) Option(v any) (*Node, bool) {
	n, ok := d.lookup[literalKey(v)]
	return n, ok
}

func newNode(kind Kind, def Def) *Node { return &Node{kind: kind, def: def} }

// derive copies the common fields of n onto a node of another kind.
func (n *Node) derive(kind Kind, def Def) *Node {
	out := *n
	out.kind = kind
	out.def = def
	return &out
}

// wrap builds a wrapper node around n that inherits its description and
// metadata, but not its error map.
func (n *Node) wrap(kind Kind, def Def) *Node {
	return &Node{kind: kind, def: def, description: n.description, meta: n.meta}
}

// Kind reports the variant of n.
func (n *Node) Kind() Kind { return n.kind }

// Def returns the kind-specific configuration of n. Callers must not modify it.
func (n *Node) Def() Def { return n.def }

// ErrorMap returns the error map attached with WithErrorMap, if any.
func (n *Node) ErrorMap() ErrorMap { return n.errorMap }

// Messages returns the messages attached with WithMessages.
func (n *Node) Messages() Messages { return n.messages }

func (n *Node) String() string {
	if n.description != "" {
		return fmt.Sprintf("%s(%q)", n.kind, n.description)
	}
	return n.kind.String()
}

// Unwrap returns the node wrapped by an optional, nullable, default, catch,
// branded, readonly, effects, promise or resolved lazy node, or nil.
func (n *Node) Unwrap() *Node {
	switch d := n.def.(type) {
	case *OptionalDef:
		return d.Inner
	case *NullableDef:
		return d.Inner
	case *DefaultDef:
		return d.Inner
	case *CatchDef:
		return d.Inner
	case *BrandedDef:
		return d.Inner
	case *ReadonlyDef:
		return d.Inner
	case *EffectsDef:
		return d.Inner
	case *PromiseDef:
		return d.Inner
	case *LazyDef:
		return d.Resolve()
	}
	return nil
}

// IsOptional reports whether n accepts an undefined input, i.e. whether an
// object key holding n may be omitted.
func (n *Node) IsOptional() bool { return isOptional(n, map[*lazyCell]bool{}) }

func isOptional(n *Node, seen map[*lazyCell]bool) bool {
	switch d := n.def.(type) {
	case *OptionalDef, *DefaultDef, *CatchDef, *UndefinedDef, *VoidDef, *AnyDef, *UnknownDef:
		return true
	case *NullableDef:
		return isOptional(d.Inner, seen)
	case *BrandedDef:
		return isOptional(d.Inner, seen)
	case *ReadonlyDef:
		return isOptional(d.Inner, seen)
	case *EffectsDef:
		return isOptional(d.Inner, seen)
	case *PipelineDef:
		return isOptional(d.In, seen)
	case *LazyDef:
		if seen[d.cell] {
			return false
		}
		seen[d.cell] = true
		return isOptional(d.Resolve(), seen)
	case *UnionDef:
		for _, o := range d.Options {
			if isOptional(o, seen) {
				return true
			}
		}
		return false
	case *LiteralDef:
		return IsUndefined(d.Value)
	case *IntersectionDef:
		return isOptional(d.Left, seen) && isOptional(d.Right, seen)
	}
	return false
}
