package skema

import (
	"fmt"
	"slices"
)

// Union accepts input passing any option. It panics without options; see
// BuildUnion.
func Union(options ...*Node) *Node {
	n, err := BuildUnion(options...)
	if err != nil {
		panic(err)
	}
	return n
}

// BuildUnion is Union returning an error instead of panicking.
func BuildUnion(options ...*Node) (*Node, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("union: %w", ErrEmptyOptions)
	}
	return newNode(KindUnion, &UnionDef{Options: slices.Clone(options)}), nil
}

// Or is Union(n, other).
func (n *Node) Or(other *Node) *Node { return Union(n, other) }

// Options returns the options of a union or discriminated union.
func (n *Node) Options() []*Node {
	switch d := n.def.(type) {
	case *UnionDef:
		return slices.Clone(d.Options)
	case *DiscriminatedUnionDef:
		return slices.Clone(d.Options)
	}
	panic(misapplied("Options", n))
}

// DiscriminatedUnion selects the option whose discriminator property matches
// the input's. It panics when the options are invalid; see
// BuildDiscriminatedUnion.
func DiscriminatedUnion(discriminator string, options ...*Node) *Node {
	n, err := BuildDiscriminatedUnion(discriminator, options...)
	if err != nil {
		panic(err)
	}
	return n
}

// BuildDiscriminatedUnion checks that every option is an object whose
// discriminator property yields at least one literal value, and that no value
// is claimed by two options.
func BuildDiscriminatedUnion(discriminator string, options ...*Node) (*Node, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("discriminated union: %w", ErrEmptyOptions)
	}
	d := &DiscriminatedUnionDef{
		Discriminator: discriminator,
		Options:       slices.Clone(options),
		lookup:        map[any]*Node{},
	}
	for i, opt := range options {
		od, ok := opt.def.(*ObjectDef)
		if !ok {
			return nil, fmt.Errorf("%w: option %d is a %s, not an object", ErrInvalidDiscriminatedUnion, i, opt.kind)
		}
		var values []any
		for _, p := range od.Props {
			if p.Key == discriminator {
				values = discriminatorValues(p.Node, map[*lazyCell]bool{})
			}
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: a discriminator value for key %q could not be extracted from option %d",
				ErrInvalidDiscriminatedUnion, discriminator, i)
		}
		for _, v := range values {
			k := literalKey(v)
			if _, dup := d.lookup[k]; dup {
				return nil, fmt.Errorf("%w: discriminator property %q has duplicate value %s",
					ErrInvalidDiscriminatedUnion, discriminator, stringify(v))
			}
			d.lookup[k] = opt
			d.Values = append(d.Values, v)
		}
	}
	return newNode(KindDiscriminatedUnion, d), nil
}

// discriminatorValues lists the literal values n can take, looking through
// wrappers that do not change the accepted value set.
func discriminatorValues(n *Node, seen map[*lazyCell]bool) []any {
	switch d := n.def.(type) {
	case *LazyDef:
		if seen[d.cell] {
			return nil
		}
		seen[d.cell] = true
		return discriminatorValues(d.Resolve(), seen)
	case *EffectsDef:
		return discriminatorValues(d.Inner, seen)
	case *LiteralDef:
		return []any{d.Value}
	case *EnumDef:
		out := make([]any, len(d.Values))
		for i, v := range d.Values {
			out[i] = v
		}
		return out
	case *NativeEnumDef:
		out := make([]any, len(d.Members))
		for i, m := range d.Members {
			out[i] = m.Value
		}
		return out
	case *DefaultDef:
		return discriminatorValues(d.Inner, seen)
	case *UndefinedDef:
		return []any{Undefined}
	case *NullDef:
		return []any{nil}
	case *OptionalDef:
		return append([]any{Undefined}, discriminatorValues(d.Inner, seen)...)
	case *NullableDef:
		return append([]any{nil}, discriminatorValues(d.Inner, seen)...)
	case *BrandedDef:
		return discriminatorValues(d.Inner, seen)
	case *ReadonlyDef:
		return discriminatorValues(d.Inner, seen)
	case *CatchDef:
		return discriminatorValues(d.Inner, seen)
	}
	return nil
}

// Intersection accepts input passing both left and right and merges their
// outputs.
func Intersection(left, right *Node) *Node {
	return newNode(KindIntersection, &IntersectionDef{Left: left, Right: right})
}

// And is Intersection(n, other).
func (n *Node) And(other *Node) *Node { return Intersection(n, other) }
