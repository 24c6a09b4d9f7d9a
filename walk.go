package skema

import (
	"fmt"
	"slices"
)

// rebuild returns a copy of n whose direct children are replaced by fn(child).
// Lazy nodes get a fresh cell over the same getter; their resolved node is not
// a child.
func rebuild(n *Node, fn func(*Node) *Node) *Node {
	mapAll := func(nodes []*Node) []*Node {
		out := make([]*Node, len(nodes))
		for i, c := range nodes {
			out[i] = fn(c)
		}
		return out
	}
	opt := func(c *Node) *Node {
		if c == nil {
			return nil
		}
		return fn(c)
	}

	var def Def
	switch d := n.def.(type) {
	case *StringDef:
		nd := *d
		nd.Checks = slices.Clone(d.Checks)
		def = &nd
	case *NumberDef:
		nd := *d
		nd.Checks = slices.Clone(d.Checks)
		def = &nd
	case *BigIntDef:
		nd := *d
		nd.Checks = slices.Clone(d.Checks)
		def = &nd
	case *DateDef:
		nd := *d
		nd.Checks = slices.Clone(d.Checks)
		def = &nd
	case *BooleanDef:
		nd := *d
		def = &nd
	case *SymbolDef, *NaNDef, *UndefinedDef, *NullDef, *NeverDef, *UnknownDef, *AnyDef, *VoidDef, *RefDef:
		def = d
	case *ArrayDef:
		def = &ArrayDef{Element: fn(d.Element), Checks: slices.Clone(d.Checks)}
	case *TupleDef:
		def = &TupleDef{Items: mapAll(d.Items), Rest: opt(d.Rest)}
	case *SetDef:
		def = &SetDef{Element: fn(d.Element), Checks: slices.Clone(d.Checks)}
	case *RecordDef:
		def = &RecordDef{Key: fn(d.Key), Value: fn(d.Value)}
	case *MapDef:
		def = &MapDef{Key: fn(d.Key), Value: fn(d.Value)}
	case *ObjectDef:
		props := make([]Property, len(d.Props))
		for i, p := range d.Props {
			props[i] = Property{Key: p.Key, Node: fn(p.Node)}
		}
		def = &ObjectDef{Props: props, UnknownKeys: d.UnknownKeys, Catchall: opt(d.Catchall)}
	case *UnionDef:
		def = &UnionDef{Options: mapAll(d.Options)}
	case *DiscriminatedUnionDef:
		nd := &DiscriminatedUnionDef{
			Discriminator: d.Discriminator,
			Options:       mapAll(d.Options),
			Values:        slices.Clone(d.Values),
			lookup:        make(map[any]*Node, len(d.lookup)),
		}
		for k, o := range d.lookup {
			nd.lookup[k] = nd.Options[slices.Index(d.Options, o)]
		}
		def = nd
	case *IntersectionDef:
		def = &IntersectionDef{Left: fn(d.Left), Right: fn(d.Right)}
	case *LiteralDef:
		def = &LiteralDef{Value: d.Value}
	case *EnumDef:
		def = &EnumDef{Values: slices.Clone(d.Values)}
	case *NativeEnumDef:
		def = &NativeEnumDef{Members: slices.Clone(d.Members)}
	case *OptionalDef:
		def = &OptionalDef{Inner: fn(d.Inner)}
	case *NullableDef:
		def = &NullableDef{Inner: fn(d.Inner)}
	case *DefaultDef:
		def = &DefaultDef{Inner: fn(d.Inner), Value: d.Value, Func: d.Func}
	case *CatchDef:
		def = &CatchDef{Inner: fn(d.Inner), Value: d.Value, Func: d.Func}
	case *BrandedDef:
		def = &BrandedDef{Inner: fn(d.Inner), Brand: d.Brand}
	case *ReadonlyDef:
		def = &ReadonlyDef{Inner: fn(d.Inner)}
	case *EffectsDef:
		def = &EffectsDef{Inner: fn(d.Inner), Effect: d.Effect}
	case *PromiseDef:
		def = &PromiseDef{Inner: fn(d.Inner)}
	case *LazyDef:
		def = &LazyDef{Getter: d.Getter, cell: &lazyCell{getter: d.cell.getter}}
	case *PipelineDef:
		def = &PipelineDef{In: fn(d.In), Out: fn(d.Out)}
	case *FunctionDef:
		def = &FunctionDef{Args: fn(d.Args), Returns: fn(d.Returns)}
	default:
		panic(fmt.Sprintf("skema: rebuild: unhandled node kind %s", n.kind))
	}
	out := *n
	out.def = def
	out.meta = n.meta.Clone()
	return &out
}

// children lists the direct child nodes of n in declaration order. The node a
// lazy getter produces is not included.
func children(n *Node) []*Node {
	switch d := n.def.(type) {
	case *ArrayDef:
		return []*Node{d.Element}
	case *TupleDef:
		out := slices.Clone(d.Items)
		if d.Rest != nil {
			out = append(out, d.Rest)
		}
		return out
	case *SetDef:
		return []*Node{d.Element}
	case *RecordDef:
		return []*Node{d.Key, d.Value}
	case *MapDef:
		return []*Node{d.Key, d.Value}
	case *ObjectDef:
		out := make([]*Node, 0, len(d.Props)+1)
		for _, p := range d.Props {
			out = append(out, p.Node)
		}
		if d.Catchall != nil {
			out = append(out, d.Catchall)
		}
		return out
	case *UnionDef:
		return slices.Clone(d.Options)
	case *DiscriminatedUnionDef:
		return slices.Clone(d.Options)
	case *IntersectionDef:
		return []*Node{d.Left, d.Right}
	case *PipelineDef:
		return []*Node{d.In, d.Out}
	case *FunctionDef:
		return []*Node{d.Args, d.Returns}
	}
	if inner := n.Unwrap(); inner != nil && n.kind != KindLazy {
		return []*Node{inner}
	}
	return nil
}
