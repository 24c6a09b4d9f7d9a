package skema

import (
	"slices"
)

// Array accepts a list whose elements pass element.
func Array(element *Node) *Node { return newNode(KindArray, &ArrayDef{Element: element}) }

// Array is a shorthand for Array(n).
func (n *Node) Array() *Node { return Array(n) }

// Element returns the element node of an array or set.
func (n *Node) Element() *Node {
	switch d := n.def.(type) {
	case *ArrayDef:
		return d.Element
	case *SetDef:
		return d.Element
	}
	panic(misapplied("Element", n))
}

// Tuple accepts a fixed-length list.
func Tuple(items ...*Node) *Node {
	return newNode(KindTuple, &TupleDef{Items: slices.Clone(items)})
}

// Rest lets a tuple accept any number of trailing elements passing rest.
func (n *Node) Rest(rest *Node) *Node {
	d := mustDef[*TupleDef](n, "Rest")
	nd := *d
	nd.Rest = rest
	return n.derive(n.kind, &nd)
}

// SetOf accepts a Set whose elements pass element.
func SetOf(element *Node) *Node { return newNode(KindSet, &SetDef{Element: element}) }

// Record accepts an object whose keys pass key and values pass value.
func Record(key, value *Node) *Node {
	return newNode(KindRecord, &RecordDef{Key: key, Value: value})
}

// RecordOf is Record with unconstrained string keys.
func RecordOf(value *Node) *Node { return Record(String(), value) }

// MapOf accepts a Map (or a native Go map) whose keys and values pass key and
// value.
func MapOf(key, value *Node) *Node {
	return newNode(KindMap, &MapDef{Key: key, Value: value})
}

// Object accepts an object with the given properties. A key declared twice
// keeps its first position and its last node.
func Object(props ...Property) *Node {
	return newNode(KindObject, &ObjectDef{Props: setProps(nil, props)})
}

func setProps(base []Property, more []Property) []Property {
	out := slices.Clone(base)
	for _, p := range more {
		if i := slices.IndexFunc(out, func(q Property) bool { return q.Key == p.Key }); i >= 0 {
			out[i] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func (n *Node) objectDef(op string) *ObjectDef { return mustDef[*ObjectDef](n, op) }

func (n *Node) withObject(d ObjectDef) *Node { return n.derive(KindObject, &d) }

// Shape returns a copy of the declared properties of an object node.
func (n *Node) Shape() []Property { return slices.Clone(n.objectDef("Shape").Props) }

// Property returns the node declared for key.
func (n *Node) Property(key string) (*Node, bool) {
	for _, p := range n.objectDef("Property").Props {
		if p.Key == key {
			return p.Node, true
		}
	}
	return nil, false
}

// Extend adds or replaces properties.
func (n *Node) Extend(props ...Property) *Node {
	d := *n.objectDef("Extend")
	d.Props = setProps(d.Props, props)
	return n.withObject(d)
}

// Merge adds the properties of other, whose unknown-key policy and catch-all
// win.
func (n *Node) Merge(other *Node) *Node {
	d := *n.objectDef("Merge")
	od := other.objectDef("Merge")
	d.Props = setProps(d.Props, od.Props)
	d.UnknownKeys = od.UnknownKeys
	d.Catchall = od.Catchall
	return n.withObject(d)
}

// Pick keeps only keys.
func (n *Node) Pick(keys ...string) *Node {
	d := *n.objectDef("Pick")
	d.Props = slices.DeleteFunc(slices.Clone(d.Props), func(p Property) bool { return !slices.Contains(keys, p.Key) })
	return n.withObject(d)
}

// Omit drops keys.
func (n *Node) Omit(keys ...string) *Node {
	d := *n.objectDef("Omit")
	d.Props = slices.DeleteFunc(slices.Clone(d.Props), func(p Property) bool { return slices.Contains(keys, p.Key) })
	return n.withObject(d)
}

// Partial makes keys optional, or every property when keys is empty.
func (n *Node) Partial(keys ...string) *Node {
	d := *n.objectDef("Partial")
	d.Props = slices.Clone(d.Props)
	for i, p := range d.Props {
		if len(keys) == 0 || slices.Contains(keys, p.Key) {
			d.Props[i].Node = p.Node.Optional()
		}
	}
	return n.withObject(d)
}

// Required strips optional wrappers from keys, or from every property when
// keys is empty.
func (n *Node) Required(keys ...string) *Node {
	d := *n.objectDef("Required")
	d.Props = slices.Clone(d.Props)
	for i, p := range d.Props {
		if len(keys) > 0 && !slices.Contains(keys, p.Key) {
			continue
		}
		inner := p.Node
		for inner.kind == KindOptional {
			inner = inner.def.(*OptionalDef).Inner
		}
		d.Props[i].Node = inner
	}
	return n.withObject(d)
}

// KeyOf returns an enum of the declared keys.
func (n *Node) KeyOf() *Node {
	props := n.objectDef("KeyOf").Props
	keys := make([]string, len(props))
	for i, p := range props {
		keys[i] = p.Key
	}
	return Enum(keys...)
}

func (n *Node) unknownKeys(op string, u UnknownKeys) *Node {
	d := *n.objectDef(op)
	d.UnknownKeys = u
	d.Catchall = nil
	return n.withObject(d)
}

// Strict rejects undeclared keys.
func (n *Node) Strict() *Node { return n.unknownKeys("Strict", UnknownStrict) }

// Strip drops undeclared keys. This is the default.
func (n *Node) Strip() *Node { return n.unknownKeys("Strip", UnknownStrip) }

// Passthrough keeps undeclared keys unvalidated.
func (n *Node) Passthrough() *Node { return n.unknownKeys("Passthrough", UnknownPassthrough) }

// Catchall validates every undeclared key's value against c.
func (n *Node) Catchall(c *Node) *Node {
	d := *n.objectDef("Catchall")
	d.Catchall = c
	return n.withObject(d)
}
