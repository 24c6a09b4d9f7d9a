package skema

import "fmt"

// parse validates input against n at p. It is the single dispatcher over
// every node kind.
func (p *pass) parse(n *Node, input any) result {
	switch d := n.def.(type) {
	case *StringDef:
		return p.parseString(n, d, input)
	case *NumberDef:
		return p.parseNumber(n, d, input)
	case *BigIntDef:
		return p.parseBigInt(n, d, input)
	case *BooleanDef:
		return p.parseBoolean(n, d, input)
	case *DateDef:
		return p.parseDate(n, d, input)
	case *SymbolDef:
		if _, ok := input.(*SymbolValue); !ok {
			return p.invalidType(n, TypeSymbol, input)
		}
		return okResult(input)
	case *NaNDef:
		if TypeOf(input) != TypeNaN {
			return p.invalidType(n, TypeNaN, input)
		}
		return okResult(input)
	case *UndefinedDef:
		if !IsUndefined(input) {
			return p.invalidType(n, TypeUndefined, input)
		}
		return okResult(input)
	case *NullDef:
		if input != nil {
			return p.invalidType(n, TypeNull, input)
		}
		return okResult(nil)
	case *NeverDef:
		return p.invalidType(n, TypeNever, input)
	case *UnknownDef, *AnyDef:
		return okResult(input)
	case *VoidDef:
		if !IsUndefined(input) {
			return p.invalidType(n, TypeVoid, input)
		}
		return okResult(input)
	case *ArrayDef:
		return p.parseArray(n, d, input)
	case *TupleDef:
		return p.parseTuple(n, d, input)
	case *SetDef:
		return p.parseSet(n, d, input)
	case *RecordDef:
		return p.parseRecord(n, d, input)
	case *MapDef:
		return p.parseMap(n, d, input)
	case *ObjectDef:
		return p.parseObject(n, d, input)
	case *UnionDef:
		return p.parseUnion(n, d, input)
	case *DiscriminatedUnionDef:
		return p.parseDiscriminatedUnion(n, d, input)
	case *IntersectionDef:
		return p.parseIntersection(n, d, input)
	case *LiteralDef:
		if !sameLiteral(input, d.Value) {
			p.add(n, input, Issue{Code: CodeInvalidLiteral, Expected: d.Value, Received: input})
			return abortedResult
		}
		return okResult(input)
	case *EnumDef:
		return p.parseEnum(n, d, input)
	case *NativeEnumDef:
		return p.parseNativeEnum(n, d, input)
	case *OptionalDef:
		if IsUndefined(input) {
			return okResult(Undefined)
		}
		return p.parse(d.Inner, input)
	case *NullableDef:
		if input == nil {
			return okResult(nil)
		}
		return p.parse(d.Inner, input)
	case *DefaultDef:
		if IsUndefined(input) {
			input = d.Resolved()
		}
		return p.parse(d.Inner, input)
	case *CatchDef:
		return p.parseCatch(d, input)
	case *BrandedDef:
		return p.parse(d.Inner, input)
	case *ReadonlyDef:
		return p.parse(d.Inner, input)
	case *EffectsDef:
		return p.parseEffects(n, d, input)
	case *PromiseDef:
		return p.parsePromise(n, d, input)
	case *LazyDef:
		return p.parse(d.Resolve(), input)
	case *PipelineDef:
		return p.parsePipeline(d, input)
	case *FunctionDef:
		return p.parseFunction(n, d, input)
	case *RefDef:
		p.fatal(ErrUnresolvedReference, d.Name)
		return abortedResult
	}
	panic(fmt.Sprintf("skema: parse: unhandled node kind %s", n.kind))
}
