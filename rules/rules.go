// Package rules provides reusable cross-field rules for object schemas. Rules
// run on the parsed output of a node and are attached with Apply:
//
//	order := skema.Object(...).SuperRefine(rules.Apply(
//		rules.If("/status", rules.Eq, "CONFIRMED").Then(rules.AtLeastOne("/items")),
//		rules.UniqueBy("/items", "sku"),
//	))
//
// Paths are JSON Pointers into the value. Struct fields are addressed by the
// key skema.ResolveStructKey gives them.
package rules

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/skema"
)

// Rule inspects v and returns its issues. Issue paths are relative to v.
type Rule func(v any, rc *skema.RefineCtx) []skema.Issue

// Apply runs rules in order and records their issues on rc. It stops after
// the first failing rule when the parse is fail-fast.
func Apply(rules ...Rule) func(v any, rc *skema.RefineCtx) {
	all := And(rules...)
	return func(v any, rc *skema.RefineCtx) {
		for _, iss := range all(v, rc) {
			rc.AddIssue(iss)
		}
	}
}

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of rules.
type Conditional struct {
	path Path
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that compares the value at path with want.
// A missing path never satisfies the condition.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: ParsePointer(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds reports whether the condition is satisfied by v.
func (c Conditional) Holds(v any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(v) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(v) {
				return true
			}
		}
		return false
	}
	cur, ok := Lookup(v, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Then attaches rules to run when the condition is satisfied.
func (c Conditional) Then(rules ...Rule) Rule {
	all := And(rules...)
	return func(v any, rc *skema.RefineCtx) []skema.Issue {
		if !c.Holds(v) {
			return nil
		}
		return all(v, rc)
	}
}

// AtLeastOne requires the collection at collectionPath to be non-empty.
// Values that are missing or not collections are left to the schema.
func AtLeastOne(collectionPath string) Rule {
	p := ParsePointer(collectionPath)
	return func(v any, _ *skema.RefineCtx) []skema.Issue {
		val, ok := Lookup(v, p)
		if !ok {
			return nil
		}
		rv := reflect.ValueOf(val)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			if rv.Len() == 0 {
				return []skema.Issue{{
					Code:      skema.CodeTooSmall,
					Path:      p,
					Minimum:   1,
					Inclusive: true,
					Type:      "array",
					Message:   "at least 1 item is required",
				}}
			}
		}
		return nil
	}
}

// UniqueBy requires the elements of the collection at collectionPath to have
// distinct values at keyPath, a pointer relative to each element. Keys are
// compared by their fmt.Sprint form, so keep the key a single type.
func UniqueBy(collectionPath, keyPath string) Rule {
	cp := ParsePointer(collectionPath)
	kp := ParsePointer(keyPath)
	return func(v any, rc *skema.RefineCtx) []skema.Issue {
		val, ok := Lookup(v, cp)
		if !ok {
			return nil
		}
		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil
		}
		seen := map[string]int{}
		var out []skema.Issue
		for i := 0; i < rv.Len(); i++ {
			kv, ok := Lookup(rv.Index(i).Interface(), kp)
			if !ok {
				continue
			}
			key := fmt.Sprint(kv)
			j, dup := seen[key]
			if !dup {
				seen[key] = i
				continue
			}
			out = append(out, skema.Issue{
				Code:    skema.CodeCustom,
				Path:    cp.Append(i).Append(kp...),
				Message: "duplicate value",
				Params:  map[string]any{"reason": "duplicate", "first": j, "dup": i, "key": key},
			})
			if rc != nil && rc.FailFast() {
				break
			}
		}
		return out
	}
}

// And executes all rules and concatenates their issues, stopping at the
// first failing rule when the parse is fail-fast.
func And(rules ...Rule) Rule {
	return func(v any, rc *skema.RefineCtx) []skema.Issue {
		var out []skema.Issue
		for _, r := range rules {
			if r == nil {
				continue
			}
			if iss := r(v, rc); len(iss) > 0 {
				out = append(out, iss...)
				if rc != nil && rc.FailFast() {
					return out
				}
			}
		}
		return out
	}
}

// Or succeeds if any rule returns no issues. When every rule fails, the
// issues of the rule with the fewest are returned.
func Or(rules ...Rule) Rule {
	return func(v any, rc *skema.RefineCtx) []skema.Issue {
		var best []skema.Issue
		bestSet := false
		for _, r := range rules {
			if r == nil {
				continue
			}
			iss := r(v, rc)
			if len(iss) == 0 {
				return nil
			}
			if !bestSet || len(iss) < len(best) {
				best = iss
				bestSet = true
			}
		}
		return best
	}
}

// Path is a parsed JSON Pointer. Segments that look like array indices are
// kept as strings and interpreted against the value during Lookup.
type Path = skema.Path

// ParsePointer splits a JSON Pointer into path segments. The leading slash
// is optional and "" or "/" address the value itself.
func ParsePointer(p string) Path {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	out := make(Path, len(parts))
	for i, s := range parts {
		s = strings.ReplaceAll(s, "~1", "/")
		out[i] = strings.ReplaceAll(s, "~0", "~")
	}
	return out
}

// Lookup navigates v along path through maps, structs, slices and pointers.
func Lookup(v any, path Path) (any, bool) {
	cur := reflect.ValueOf(v)
	for _, seg := range path {
		cur = deref(cur)
		if !cur.IsValid() {
			return nil, false
		}
		name := fmt.Sprint(seg)
		switch cur.Kind() {
		case reflect.Struct:
			f, ok := structField(cur, name)
			if !ok {
				return nil, false
			}
			cur = f
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := cur.MapIndex(reflect.ValueOf(name).Convert(cur.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(name)
			if err != nil || idx < 0 || idx >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(idx)
		default:
			return nil, false
		}
	}
	cur = deref(cur)
	if !cur.IsValid() {
		return nil, len(path) == 0 && v == nil
	}
	return cur.Interface(), true
}

func deref(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.IsExported() && skema.ResolveStructKey(sf) == name {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func compare(cur any, op Op, want any) bool {
	a, aok := number(cur)
	b, bok := number(want)
	if aok && bok {
		switch op {
		case Eq:
			return a == b
		case Ne:
			return a != b
		case Lt:
			return a < b
		case Le:
			return a <= b
		case Gt:
			return a > b
		case Ge:
			return a >= b
		}
		return false
	}
	switch op {
	case Eq:
		return reflect.DeepEqual(cur, want)
	case Ne:
		return !reflect.DeepEqual(cur, want)
	case Lt, Le, Gt, Ge:
		if x, ok := cur.(string); ok {
			if y, ok := want.(string); ok {
				c := strings.Compare(x, y)
				return (op == Lt && c < 0) || (op == Le && c <= 0) || (op == Gt && c > 0) || (op == Ge && c >= 0)
			}
		}
	}
	return false
}

// number widens integer and float kinds to float64.
func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
