package skema

import (
	"context"
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"time"
)

// UndefinedType is the type of Undefined.
type UndefinedType struct{}

// Undefined marks an absent value (a missing object key, an omitted argument).
// It is distinct from nil, which stands for null.
var Undefined = UndefinedType{}

func (UndefinedType) String() string { return "undefined" }

// MarshalJSON renders Undefined as null so validated values stay encodable.
func (UndefinedType) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(UndefinedType)
	return ok
}

// SymbolValue is a unique token compared by identity.
type SymbolValue struct{ desc string }

// NewSymbol returns a fresh symbol; two symbols are never equal.
func NewSymbol(desc string) *SymbolValue { return &SymbolValue{desc: desc} }

func (s *SymbolValue) Description() string { return s.desc }
func (s *SymbolValue) String() string      { return "Symbol(" + s.desc + ")" }

// Set is an insertion-ordered collection validated by set nodes.
type Set []any

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   any
	Value any
}

// Map is an insertion-ordered key/value collection validated by map nodes.
// Keys may be of any type.
type Map []MapEntry

// Func is the callable shape accepted and produced by function nodes.
type Func func(ctx context.Context, args ...any) (any, error)

// Promise is a deferred value. Calling it blocks until the value is available.
type Promise func(ctx context.Context) (any, error)

// Resolved returns a Promise that yields v immediately.
func Resolved(v any) Promise {
	return func(context.Context) (any, error) { return v, nil }
}

// ParsedType classifies a runtime value for invalid_type issues.
type ParsedType string

const (
	TypeString    ParsedType = "string"
	TypeNaN       ParsedType = "nan"
	TypeNumber    ParsedType = "number"
	TypeInteger   ParsedType = "integer"
	TypeFloat     ParsedType = "float"
	TypeBoolean   ParsedType = "boolean"
	TypeDate      ParsedType = "date"
	TypeBigInt    ParsedType = "bigint"
	TypeSymbol    ParsedType = "symbol"
	TypeFunction  ParsedType = "function"
	TypeUndefined ParsedType = "undefined"
	TypeNull      ParsedType = "null"
	TypeArray     ParsedType = "array"
	TypeObject    ParsedType = "object"
	TypeUnknown   ParsedType = "unknown"
	TypePromise   ParsedType = "promise"
	TypeVoid      ParsedType = "void"
	TypeNever     ParsedType = "never"
	TypeMap       ParsedType = "map"
	TypeSet       ParsedType = "set"
)

// TypeOf classifies v.
func TypeOf(v any) ParsedType {
	switch t := v.(type) {
	case UndefinedType:
		return TypeUndefined
	case nil:
		return TypeNull
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case float64:
		if math.IsNaN(t) {
			return TypeNaN
		}
		return TypeNumber
	case float32:
		if math.IsNaN(float64(t)) {
			return TypeNaN
		}
		return TypeNumber
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeNumber
	case json.Number:
		return TypeNumber
	case *big.Int:
		return TypeBigInt
	case time.Time:
		return TypeDate
	case *SymbolValue:
		return TypeSymbol
	case Promise:
		return TypePromise
	case Func:
		return TypeFunction
	case Set:
		return TypeSet
	case Map:
		return TypeMap
	case []any:
		return TypeArray
	case map[string]any:
		return TypeObject
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return TypeObject
		}
		return TypeMap
	case reflect.Struct:
		return TypeObject
	case reflect.Pointer:
		if !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
			return TypeObject
		}
	case reflect.Func:
		return TypeFunction
	}
	return TypeUnknown
}
