package skema

// Kind tags the variant of a Node.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBigInt
	KindBoolean
	KindDate
	KindSymbol
	KindNaN
	KindUndefined
	KindNull
	KindNever
	KindUnknown
	KindAny
	KindVoid
	KindArray
	KindTuple
	KindSet
	KindRecord
	KindMap
	KindObject
	KindUnion
	KindDiscriminatedUnion
	KindIntersection
	KindLiteral
	KindEnum
	KindNativeEnum
	KindOptional
	KindNullable
	KindDefault
	KindCatch
	KindBranded
	KindReadonly
	KindEffects
	KindPromise
	KindLazy
	KindPipeline
	KindFunction
	KindRef
)

var kindNames = [...]string{
	KindString:             "string",
	KindNumber:             "number",
	KindBigInt:             "bigint",
	KindBoolean:            "boolean",
	KindDate:               "date",
	KindSymbol:             "symbol",
	KindNaN:                "nan",
	KindUndefined:          "undefined",
	KindNull:               "null",
	KindNever:              "never",
	KindUnknown:            "unknown",
	KindAny:                "any",
	KindVoid:               "void",
	KindArray:              "array",
	KindTuple:              "tuple",
	KindSet:                "set",
	KindRecord:             "record",
	KindMap:                "map",
	KindObject:             "object",
	KindUnion:              "union",
	KindDiscriminatedUnion: "discriminatedUnion",
	KindIntersection:       "intersection",
	KindLiteral:            "literal",
	KindEnum:               "enum",
	KindNativeEnum:         "nativeEnum",
	KindOptional:           "optional",
	KindNullable:           "nullable",
	KindDefault:            "default",
	KindCatch:              "catch",
	KindBranded:            "branded",
	KindReadonly:           "readonly",
	KindEffects:            "effects",
	KindPromise:            "promise",
	KindLazy:               "lazy",
	KindPipeline:           "pipeline",
	KindFunction:           "function",
	KindRef:                "ref",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(?)"
}
