package jsonschema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ExtensionKey is the reserved extension holding node metadata and the def tag.
const ExtensionKey = "x-skema"

// Schema is a JSON-Schema-like document produced from a node.
// Bool-or-schema keywords (additionalProperties, items, not) hold either a
// bool or a *Schema.
type Schema struct {
	Ref         string `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// String
	Format          string `json:"format,omitempty" yaml:"format,omitempty"`
	Pattern         string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MinLength       *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength       *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	ContentEncoding string `json:"contentEncoding,omitempty" yaml:"contentEncoding,omitempty"`

	// Number
	Minimum          any `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum          any `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	ExclusiveMinimum any `json:"exclusiveMinimum,omitempty" yaml:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum any `json:"exclusiveMaximum,omitempty" yaml:"exclusiveMaximum,omitempty"`
	MultipleOf       any `json:"multipleOf,omitempty" yaml:"multipleOf,omitempty"`

	// Object
	Properties           Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required             []string   `json:"required,omitempty" yaml:"required,omitempty"`
	AdditionalProperties any        `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	PropertyNames        *Schema    `json:"propertyNames,omitempty" yaml:"propertyNames,omitempty"`

	// Array
	Items       any       `json:"items,omitempty" yaml:"items,omitempty"`
	PrefixItems []*Schema `json:"prefixItems,omitempty" yaml:"prefixItems,omitempty"`
	MinItems    *int      `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems    *int      `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	UniqueItems bool      `json:"uniqueItems,omitempty" yaml:"uniqueItems,omitempty"`

	// Composition
	AnyOf []*Schema `json:"anyOf,omitempty" yaml:"anyOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty" yaml:"allOf,omitempty"`
	Not   any       `json:"not,omitempty" yaml:"not,omitempty"`

	// Values
	Const    any   `json:"const,omitempty" yaml:"const,omitempty"`
	Enum     []any `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default  any   `json:"default,omitempty" yaml:"default,omitempty"`
	ReadOnly bool  `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`

	Defs      map[string]*Schema `json:"$defs,omitempty" yaml:"$defs,omitempty"`
	Extension Extension          `json:"x-skema,omitempty" yaml:"x-skema,omitempty"`
}

// Extension carries the metadata bag of a node plus the "def" tag that tells
// apart node kinds whose documents would otherwise be identical.
type Extension map[string]any

// Def returns the def tag, or "".
func (e Extension) Def() string {
	s, _ := e["def"].(string)
	return s
}

func (s *Schema) ext() Extension {
	if s.Extension == nil {
		s.Extension = Extension{}
	}
	return s.Extension
}

// Tag sets the def tag.
func (s *Schema) Tag(def string) *Schema {
	s.ext()["def"] = def
	return s
}

// Property is one entry of an ordered properties map.
type Property struct {
	Name   string
	Schema *Schema
}

// Properties keeps declaration order when marshaled to JSON and YAML.
type Properties []Property

// Get returns the schema of the named property.
func (ps Properties) Get(name string) (*Schema, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

func (ps Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Schema)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (ps Properties) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range ps {
		var v yaml.Node
		if err := v.Encode(p.Schema); err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, err)
		}
		out.Content = append(out.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Name}, &v)
	}
	return out, nil
}

// JSON renders s as indented JSON.
func (s *Schema) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// YAML renders s as YAML.
func (s *Schema) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Map returns s as a generic JSON document.
func (s *Schema) Map() (map[string]any, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func intPtr(v int) *int { return &v }
