package skema

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strings"
	"unsafe"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// external key when a struct is validated as an object.
// Priority: skema:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("skema"); gt != "" {
		parts := strings.Split(gt, ",")
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// asObject views v as a string-keyed object. Typed maps with string keys and
// structs (via ResolveStructKey) are converted.
func asObject(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			out[it.Key().String()] = it.Value().Interface()
		}
		return out, true
	case reflect.Struct:
		t := rv.Type()
		out := make(map[string]any, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			key := ResolveStructKey(sf)
			if key == "-" {
				continue
			}
			out[key] = rv.Field(i).Interface()
		}
		return out, true
	}
	return nil, false
}

// asSlice views v as an ordered list. Set is not accepted: sets are validated by
// set nodes only.
func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case Set, Map, string, json.RawMessage:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asMap views v as an ordered Map. Native Go maps are ordered by the formatted
// key so issue order stays deterministic.
func asMap(v any) (Map, bool) {
	if m, ok := v.(Map); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(Map, 0, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		out = append(out, MapEntry{Key: it.Key().Interface(), Value: it.Value().Interface()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return fmt.Sprint(out[i].Key) < fmt.Sprint(out[j].Key)
	})
	return out, true
}

// asFloat converts numeric inputs to float64.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// asBigInt converts integral inputs to *big.Int without losing precision.
func asBigInt(v any) (*big.Int, bool) {
	switch t := v.(type) {
	case *big.Int:
		if t == nil {
			return nil, false
		}
		return t, true
	case int:
		return big.NewInt(int64(t)), true
	case int8:
		return big.NewInt(int64(t)), true
	case int16:
		return big.NewInt(int64(t)), true
	case int32:
		return big.NewInt(int64(t)), true
	case int64:
		return big.NewInt(t), true
	case uint:
		return new(big.Int).SetUint64(uint64(t)), true
	case uint8:
		return big.NewInt(int64(t)), true
	case uint16:
		return big.NewInt(int64(t)), true
	case uint32:
		return big.NewInt(int64(t)), true
	case uint64:
		return new(big.Int).SetUint64(t), true
	case json.Number:
		b, ok := new(big.Int).SetString(string(t), 10)
		return b, ok
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) {
			return nil, false
		}
		b, _ := big.NewFloat(t).Int(nil)
		return b, true
	}
	return nil, false
}

type bigKey struct{ s string }

type opaqueKey struct{ s string }

// literalKey canonicalizes a literal so that equal values compare equal as map
// keys: every numeric type collapses to float64, big integers to their decimal
// text, and non-comparable values to their Go-syntax rendering.
func literalKey(v any) any {
	if f, ok := asFloat(v); ok {
		return f
	}
	switch t := v.(type) {
	case nil:
		return nil
	case *big.Int:
		if t == nil {
			return nil
		}
		return bigKey{t.String()}
	}
	if !reflect.TypeOf(v).Comparable() {
		return opaqueKey{fmt.Sprintf("%#v", v)}
	}
	return v
}

// sameLiteral reports whether a and b are the same literal value.
func sameLiteral(a, b any) bool { return literalKey(a) == literalKey(b) }

// funcID identifies a function value by its closure object, so two closures
// of one literal that capture different values differ. nil functions have a
// nil ID.
func funcID(fn any) unsafe.Pointer {
	if fn == nil {
		return nil
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil
	}
	// Func values are stored directly in the interface data word.
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&fn))[1]
}

func sameFunc(a, b any) bool { return funcID(a) == funcID(b) }
