package skema

import (
	"fmt"
	"slices"
	"sort"
)

func String() *Node  { return newNode(KindString, &StringDef{}) }
func Number() *Node  { return newNode(KindNumber, &NumberDef{}) }
func BigInt() *Node  { return newNode(KindBigInt, &BigIntDef{}) }
func Boolean() *Node { return newNode(KindBoolean, &BooleanDef{}) }
func Date() *Node    { return newNode(KindDate, &DateDef{}) }
func Symbol() *Node  { return newNode(KindSymbol, &SymbolDef{}) }
func NaN() *Node     { return newNode(KindNaN, &NaNDef{}) }

// Undef accepts only Undefined.
func Undef() *Node   { return newNode(KindUndefined, &UndefinedDef{}) }
func Null() *Node    { return newNode(KindNull, &NullDef{}) }
func Never() *Node   { return newNode(KindNever, &NeverDef{}) }
func Unknown() *Node { return newNode(KindUnknown, &UnknownDef{}) }
func Any() *Node     { return newNode(KindAny, &AnyDef{}) }
func Void() *Node    { return newNode(KindVoid, &VoidDef{}) }

// Literal accepts exactly v. Numbers of different Go types compare by value.
func Literal(v any) *Node { return newNode(KindLiteral, &LiteralDef{Value: v}) }

// Enum accepts one of values. It panics when values is empty; see BuildEnum.
func Enum(values ...string) *Node {
	n, err := BuildEnum(values...)
	if err != nil {
		panic(err)
	}
	return n
}

// BuildEnum is Enum returning an error instead of panicking.
func BuildEnum(values ...string) (*Node, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("enum: %w", ErrEmptyOptions)
	}
	return newNode(KindEnum, &EnumDef{Values: slices.Clone(values)}), nil
}

// Extract returns an enum restricted to values.
func (n *Node) Extract(values ...string) *Node {
	d := mustDef[*EnumDef](n, "Extract")
	keep := make([]string, 0, len(values))
	for _, v := range d.Values {
		if slices.Contains(values, v) {
			keep = append(keep, v)
		}
	}
	return Enum(keep...)
}

// Exclude returns an enum without values.
func (n *Node) Exclude(values ...string) *Node {
	d := mustDef[*EnumDef](n, "Exclude")
	keep := make([]string, 0, len(d.Values))
	for _, v := range d.Values {
		if !slices.Contains(values, v) {
			keep = append(keep, v)
		}
	}
	return Enum(keep...)
}

// NativeEnum accepts the value of any member.
func NativeEnum(members ...EnumMember) *Node {
	return newNode(KindNativeEnum, &NativeEnumDef{Members: slices.Clone(members)})
}

// NativeEnumFrom builds a native enum from a name/value table, ordered by name.
func NativeEnumFrom(table map[string]any) *Node {
	members := make([]EnumMember, 0, len(table))
	for name, v := range table {
		members = append(members, EnumMember{Name: name, Value: v})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return NativeEnum(members...)
}

// Coerce converts the input before validating: String(x), Number(x),
// BigInt(x), Boolean(x) or Date(x) semantics depending on the kind.
func (n *Node) Coerce() *Node {
	switch d := n.def.(type) {
	case *StringDef:
		nd := *d
		nd.Coerce = true
		return n.derive(n.kind, &nd)
	case *NumberDef:
		nd := *d
		nd.Coerce = true
		return n.derive(n.kind, &nd)
	case *BigIntDef:
		nd := *d
		nd.Coerce = true
		return n.derive(n.kind, &nd)
	case *BooleanDef:
		nd := *d
		nd.Coerce = true
		return n.derive(n.kind, &nd)
	case *DateDef:
		nd := *d
		nd.Coerce = true
		return n.derive(n.kind, &nd)
	}
	panic(misapplied("Coerce", n))
}

func misapplied(op string, n *Node) string {
	return fmt.Sprintf("skema: %s does not apply to %s nodes", op, n.kind)
}

// mustDef returns n's def as D or panics naming op.
func mustDef[D Def](n *Node, op string) D {
	d, ok := n.def.(D)
	if !ok {
		panic(misapplied(op, n))
	}
	return d
}
