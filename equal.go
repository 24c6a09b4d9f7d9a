package skema

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"
)

// Equal reports whether a and b describe the same shape. Check messages and
// Messages are presentation and ignored; user functions (refinements,
// transforms, default and catch producers, lazy getters, error maps) must be
// the same function.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	if a.description != b.description || !sameMeta(a.meta, b.meta) || !sameFunc(a.errorMap, b.errorMap) {
		return false
	}

	switch da := a.def.(type) {
	case *StringDef:
		db := b.def.(*StringDef)
		return da.Coerce == db.Coerce && sameChecks(da.Checks, db.Checks)
	case *NumberDef:
		db := b.def.(*NumberDef)
		return da.Coerce == db.Coerce && sameChecks(da.Checks, db.Checks)
	case *BigIntDef:
		db := b.def.(*BigIntDef)
		return da.Coerce == db.Coerce && sameChecks(da.Checks, db.Checks)
	case *DateDef:
		db := b.def.(*DateDef)
		return da.Coerce == db.Coerce && sameChecks(da.Checks, db.Checks)
	case *BooleanDef:
		return da.Coerce == b.def.(*BooleanDef).Coerce
	case *SymbolDef, *NaNDef, *UndefinedDef, *NullDef, *NeverDef, *UnknownDef, *AnyDef, *VoidDef:
		return true
	case *ArrayDef:
		db := b.def.(*ArrayDef)
		return Equal(da.Element, db.Element) && sameChecks(da.Checks, db.Checks)
	case *TupleDef:
		db := b.def.(*TupleDef)
		return sameNodes(da.Items, db.Items) && Equal(da.Rest, db.Rest)
	case *SetDef:
		db := b.def.(*SetDef)
		return Equal(da.Element, db.Element) && sameChecks(da.Checks, db.Checks)
	case *RecordDef:
		db := b.def.(*RecordDef)
		return Equal(da.Key, db.Key) && Equal(da.Value, db.Value)
	case *MapDef:
		db := b.def.(*MapDef)
		return Equal(da.Key, db.Key) && Equal(da.Value, db.Value)
	case *ObjectDef:
		db := b.def.(*ObjectDef)
		if len(da.Props) != len(db.Props) || da.UnknownKeys != db.UnknownKeys || !Equal(da.Catchall, db.Catchall) {
			return false
		}
		for i := range da.Props {
			if da.Props[i].Key != db.Props[i].Key || !Equal(da.Props[i].Node, db.Props[i].Node) {
				return false
			}
		}
		return true
	case *UnionDef:
		return sameNodes(da.Options, b.def.(*UnionDef).Options)
	case *DiscriminatedUnionDef:
		db := b.def.(*DiscriminatedUnionDef)
		return da.Discriminator == db.Discriminator && sameNodes(da.Options, db.Options)
	case *IntersectionDef:
		db := b.def.(*IntersectionDef)
		return Equal(da.Left, db.Left) && Equal(da.Right, db.Right)
	case *LiteralDef:
		return sameValue(da.Value, b.def.(*LiteralDef).Value)
	case *EnumDef:
		return reflect.DeepEqual(da.Values, b.def.(*EnumDef).Values)
	case *NativeEnumDef:
		db := b.def.(*NativeEnumDef)
		if len(da.Members) != len(db.Members) {
			return false
		}
		for i := range da.Members {
			if da.Members[i].Name != db.Members[i].Name || !sameValue(da.Members[i].Value, db.Members[i].Value) {
				return false
			}
		}
		return true
	case *OptionalDef:
		return Equal(da.Inner, b.def.(*OptionalDef).Inner)
	case *NullableDef:
		return Equal(da.Inner, b.def.(*NullableDef).Inner)
	case *DefaultDef:
		db := b.def.(*DefaultDef)
		return Equal(da.Inner, db.Inner) && sameValue(da.Value, db.Value) && sameFunc(da.Func, db.Func)
	case *CatchDef:
		db := b.def.(*CatchDef)
		return Equal(da.Inner, db.Inner) && sameValue(da.Value, db.Value) && sameFunc(da.Func, db.Func)
	case *BrandedDef:
		db := b.def.(*BrandedDef)
		return da.Brand == db.Brand && Equal(da.Inner, db.Inner)
	case *ReadonlyDef:
		return Equal(da.Inner, b.def.(*ReadonlyDef).Inner)
	case *EffectsDef:
		db := b.def.(*EffectsDef)
		return sameEffect(da.Effect, db.Effect) && Equal(da.Inner, db.Inner)
	case *PromiseDef:
		return Equal(da.Inner, b.def.(*PromiseDef).Inner)
	case *LazyDef:
		db := b.def.(*LazyDef)
		return sameFunc(da.Getter, db.Getter) && sameFunc(da.cell.getter, db.cell.getter)
	case *PipelineDef:
		db := b.def.(*PipelineDef)
		return Equal(da.In, db.In) && Equal(da.Out, db.Out)
	case *FunctionDef:
		db := b.def.(*FunctionDef)
		return Equal(da.Args, db.Args) && Equal(da.Returns, db.Returns)
	case *RefDef:
		return da.Name == b.def.(*RefDef).Name
	}
	panic(fmt.Sprintf("skema: Equal: unhandled node kind %s", a.kind))
}

func sameNodes(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameChecks(a, b []Check) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameCheck(a[i], b[i]) {
			return false
		}
	}
	return true
}

// sameCheck compares everything but Message.
func sameCheck(a, b Check) bool {
	if a.Kind != b.Kind || a.Inclusive != b.Inclusive || a.Offset != b.Offset || a.Local != b.Local || a.Version != b.Version {
		return false
	}
	if !sameValue(a.Value, b.Value) || !sameIntPtr(a.Position, b.Position) || !sameIntPtr(a.Precision, b.Precision) {
		return false
	}
	switch {
	case a.Regex == nil || b.Regex == nil:
		return a.Regex == b.Regex
	default:
		return a.Regex.String() == b.Regex.String()
	}
}

func sameIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// sameValue compares literal, default and catch values.
func sameValue(a, b any) bool {
	switch ta := a.(type) {
	case *big.Int:
		tb, ok := b.(*big.Int)
		return ok && (ta == tb || (ta != nil && tb != nil && ta.Cmp(tb) == 0))
	case time.Time:
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if isNaN(a) && isNaN(b) {
		return true
	}
	return reflect.DeepEqual(a, b) || sameLiteral(a, b)
}

// isNaN reports whether v is a floating-point NaN. Validation never matches
// NaN against itself, but a node holding NaN is still equal to its clone.
func isNaN(v any) bool {
	f, ok := asFloat(v)
	return ok && math.IsNaN(f)
}

func sameMeta(a, b Metadata) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func sameEffect(a, b Effect) bool {
	return a.Type == b.Type && a.Async == b.Async &&
		sameFunc(a.Predicate, b.Predicate) &&
		sameFunc(a.PredicateCtx, b.PredicateCtx) &&
		sameFunc(a.Refinement, b.Refinement) &&
		sameFunc(a.Transform, b.Transform) &&
		a.Params.Fatal == b.Params.Fatal &&
		reflect.DeepEqual(a.Params.Path, b.Params.Path) &&
		reflect.DeepEqual(a.Params.Params, b.Params.Params)
}
