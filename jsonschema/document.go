package jsonschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// object is a decoded JSON/YAML mapping that remembers key order, so that
// imported objects keep the declared order of their properties.
type object struct {
	keys []string
	vals map[string]any
}

func newObject() *object { return &object{vals: map[string]any{}} }

func (o *object) set(k string, v any) {
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

func (o *object) get(k string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[k]
	return v, ok
}

func (o *object) has(k string) bool {
	_, ok := o.get(k)
	return ok
}

func (o *object) str(k string) string {
	v, _ := o.get(k)
	s, _ := v.(string)
	return s
}

func (o *object) obj(k string) *object {
	v, _ := o.get(k)
	m, _ := v.(*object)
	return m
}

func (o *object) list(k string) []any {
	v, _ := o.get(k)
	l, _ := v.([]any)
	return l
}

func (o *object) flag(k string) bool {
	v, _ := o.get(k)
	b, _ := v.(bool)
	return b
}

// without returns a shallow copy of o minus keys.
func (o *object) without(keys ...string) *object {
	out := newObject()
	for _, k := range o.keys {
		if !slices.Contains(keys, k) {
			out.set(k, o.vals[k])
		}
	}
	return out
}

func (o *object) with(k string, v any) *object {
	out := o.without()
	out.set(k, v)
	return out
}

// plain converts decoded documents back into map[string]any / []any values.
func plain(v any) any {
	switch t := v.(type) {
	case *object:
		out := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			out[k] = plain(t.vals[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

// fromGeneric converts a map-based document. Map keys are sorted since their
// order is not known.
func fromGeneric(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := newObject()
		for _, k := range slices.Sorted(maps.Keys(t)) {
			out.set(k, fromGeneric(t[k]))
		}
		return out
	case map[any]any:
		out := newObject()
		keys := make([]string, 0, len(t))
		vals := make(map[string]any, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			keys = append(keys, ks)
			vals[ks] = e
		}
		slices.Sort(keys)
		for _, k := range keys {
			out.set(k, fromGeneric(vals[k]))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromGeneric(e)
		}
		return out
	}
	return v
}

func fromYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		out := newObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			val, err := fromYAMLNode(v)
			if err != nil {
				return nil, err
			}
			out.set(k.Value, val)
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unexpected YAML node kind %d", n.Line, n.Kind)
}

// decodeDocument accepts JSON or YAML bytes, a string, a *Schema or a decoded
// map and returns the ordered document.
func decodeDocument(doc any) (any, error) {
	switch t := doc.(type) {
	case nil:
		return nil, errors.New("jsonschema: nil document")
	case []byte:
		var n yaml.Node
		if err := yaml.Unmarshal(t, &n); err != nil {
			return nil, fmt.Errorf("jsonschema: invalid document: %w", err)
		}
		return fromYAMLNode(&n)
	case string:
		return decodeDocument([]byte(t))
	case *Schema:
		b, err := t.YAML()
		if err != nil {
			return nil, fmt.Errorf("jsonschema: cannot marshal schema: %w", err)
		}
		return decodeDocument(b)
	case map[string]any, map[any]any:
		return fromGeneric(t), nil
	}
	return nil, fmt.Errorf("jsonschema: unsupported document type %T", doc)
}

// unwrapCRD returns the openAPIV3Schema held by a CustomResourceDefinition
// (spec.versions[].schema, served versions first, then the legacy
// spec.validation), or nil.
func unwrapCRD(root *object) *object {
	spec := root.obj("spec")
	if spec == nil {
		return nil
	}
	var first *object
	for _, v := range spec.list("versions") {
		vm, _ := v.(*object)
		if vm == nil {
			continue
		}
		served := true
		if sv, ok := vm.get("served"); ok {
			served, _ = sv.(bool)
		}
		if oas := vm.obj("schema").obj("openAPIV3Schema"); oas != nil {
			if served {
				return oas
			}
			if first == nil {
				first = oas
			}
		}
	}
	if first != nil {
		return first
	}
	return spec.obj("validation").obj("openAPIV3Schema")
}

// findCRD scans a multi-document YAML stream for the CustomResourceDefinition
// whose spec.names.kind equals kind.
func findCRD(data []byte, kind string) (*object, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var n yaml.Node
		if err := dec.Decode(&n); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("jsonschema: invalid YAML stream: %w", err)
		}
		v, err := fromYAMLNode(&n)
		if err != nil {
			return nil, err
		}
		m, _ := v.(*object)
		if m == nil || m.str("kind") != "CustomResourceDefinition" {
			continue
		}
		if m.obj("spec").obj("names").str("kind") == kind {
			return m, nil
		}
	}
	return nil, fmt.Errorf("jsonschema: CRD kind %q not found in YAML stream", kind)
}
