package jsonschema

import (
	"fmt"
	"maps"
	"math/big"
	"reflect"
	"regexp"
	"slices"
	"time"

	"github.com/reoring/skema"
)

// Option configures FromNode.
type Option func(*converter)

// WithDefinitions emits defs under $defs so that reference nodes named after
// them resolve inside the document.
func WithDefinitions(defs map[string]*skema.Node) Option {
	return func(c *converter) { c.defs = defs }
}

// WithLazyPrefix names the $defs entries created for recursive lazy nodes.
// The default is "lazy".
func WithLazyPrefix(prefix string) Option {
	return func(c *converter) { c.lazyPrefix = prefix }
}

type lazyEntry struct {
	name      string
	recursive bool
}

type converter struct {
	defs       map[string]*skema.Node
	lazyPrefix string
	lazy       map[*skema.Node]*lazyEntry
	lazyCount  int
	out        map[string]*Schema
}

// FromNode converts n into a document. Every node kind has a mapping; kinds
// without a JSON representation are marked with a def tag in the extension.
// A lazy node that refers back to itself is emitted once under $defs and
// referenced with $ref.
func FromNode(n *skema.Node, opts ...Option) *Schema {
	c := &converter{
		lazyPrefix: "lazy",
		lazy:       map[*skema.Node]*lazyEntry{},
		out:        map[string]*Schema{},
	}
	for _, o := range opts {
		o(c)
	}
	s := c.convert(n)
	for _, name := range slices.Sorted(maps.Keys(c.defs)) {
		c.out[name] = c.convert(c.defs[name])
	}
	if len(c.out) > 0 {
		if s.Ref != "" {
			s = &Schema{AllOf: []*Schema{s}}
		}
		s.Defs = c.out
	}
	return s
}

func defsRef(name string) string { return "#/$defs/" + name }

func (c *converter) convert(n *skema.Node) *Schema {
	s := c.build(n)
	annotate(s, n)
	return s
}

// annotate copies the description and metadata of n that differ from those of
// the node it wraps.
func annotate(s *Schema, n *skema.Node) {
	inner := n.Unwrap()
	if desc := n.Description(); desc != "" && (inner == nil || inner.Description() != desc) {
		s.Description = desc
	}
	for k, v := range n.Meta() {
		if inner != nil {
			if iv, ok := inner.Meta()[k]; ok && reflect.DeepEqual(iv, v) {
				continue
			}
		}
		s.ext()[k] = v
	}
}

// overlay returns a copy of inner's document for wrappers that only add
// keywords.
func (c *converter) overlay(inner *skema.Node) *Schema {
	s := *c.convert(inner)
	s.Extension = maps.Clone(s.Extension)
	return &s
}

func (c *converter) build(n *skema.Node) *Schema {
	switch d := n.Def().(type) {
	case *skema.StringDef:
		s := &Schema{Type: "string"}
		stringChecks(s, d.Checks)
		return s
	case *skema.NumberDef:
		s := &Schema{Type: "number"}
		numberChecks(s, d.Checks)
		return s
	case *skema.BigIntDef:
		s := &Schema{Type: "integer", Format: "int64"}
		numberChecks(s, d.Checks)
		return s.Tag("bigint")
	case *skema.BooleanDef:
		return &Schema{Type: "boolean"}
	case *skema.DateDef:
		s := (&Schema{Type: "string", Format: "date-time"}).Tag("date")
		for _, ck := range d.Checks {
			t, _ := ck.Value.(time.Time)
			switch ck.Kind {
			case skema.CheckMin:
				s.ext()["minDate"] = t.Format(time.RFC3339Nano)
			case skema.CheckMax:
				s.ext()["maxDate"] = t.Format(time.RFC3339Nano)
			}
		}
		return s
	case *skema.SymbolDef:
		return (&Schema{}).Tag("symbol")
	case *skema.NaNDef:
		return (&Schema{Type: "number"}).Tag("nan")
	case *skema.UndefinedDef:
		return (&Schema{Not: true}).Tag("undefined")
	case *skema.NullDef:
		return &Schema{Type: "null"}
	case *skema.NeverDef:
		return (&Schema{Not: true}).Tag("never")
	case *skema.UnknownDef:
		return (&Schema{}).Tag("unknown")
	case *skema.AnyDef:
		return (&Schema{}).Tag("any")
	case *skema.VoidDef:
		return (&Schema{Not: true}).Tag("void")
	case *skema.ArrayDef:
		s := &Schema{Type: "array", Items: c.convert(d.Element)}
		sizeChecks(s, d.Checks)
		return s
	case *skema.TupleDef:
		s := &Schema{Type: "array", MinItems: intPtr(len(d.Items))}
		for _, it := range d.Items {
			s.PrefixItems = append(s.PrefixItems, c.convert(it))
		}
		if d.Rest != nil {
			s.Items = c.convert(d.Rest)
		} else {
			s.Items = false
			s.MaxItems = intPtr(len(d.Items))
		}
		return s
	case *skema.SetDef:
		s := &Schema{Type: "array", UniqueItems: true, Items: c.convert(d.Element)}
		sizeChecks(s, d.Checks)
		return s.Tag("set")
	case *skema.RecordDef:
		s := &Schema{Type: "object", AdditionalProperties: c.convert(d.Value)}
		if !skema.Equal(d.Key, skema.String()) {
			k := c.convert(d.Key)
			k.Type = ""
			s.PropertyNames = k
		}
		return s
	case *skema.MapDef:
		entry := &Schema{
			Type:        "array",
			PrefixItems: []*Schema{c.convert(d.Key), c.convert(d.Value)},
			Items:       false,
			MinItems:    intPtr(2),
			MaxItems:    intPtr(2),
		}
		return (&Schema{Type: "array", Items: entry}).Tag("map")
	case *skema.ObjectDef:
		return c.object(d)
	case *skema.UnionDef:
		return (&Schema{AnyOf: c.all(d.Options)}).Tag("union")
	case *skema.DiscriminatedUnionDef:
		s := (&Schema{AnyOf: c.all(d.Options)}).Tag("discriminatedUnion")
		s.ext()["discriminator"] = d.Discriminator
		return s
	case *skema.IntersectionDef:
		return &Schema{AllOf: []*Schema{
			withoutAdditional(c.convert(d.Left)),
			withoutAdditional(c.convert(d.Right)),
		}}
	case *skema.LiteralDef:
		return literal(d.Value)
	case *skema.EnumDef:
		s := &Schema{Type: "string"}
		for _, v := range d.Values {
			s.Enum = append(s.Enum, v)
		}
		return s
	case *skema.NativeEnumDef:
		return nativeEnum(d.Members)
	case *skema.OptionalDef:
		return (&Schema{AnyOf: []*Schema{c.convert(d.Inner), {Not: true}}}).Tag("optional")
	case *skema.NullableDef:
		return (&Schema{AnyOf: []*Schema{c.convert(d.Inner), {Type: "null"}}}).Tag("nullable")
	case *skema.DefaultDef:
		s := c.overlay(d.Inner)
		s.Default = d.Resolved()
		return s
	case *skema.CatchDef:
		return c.overlay(d.Inner)
	case *skema.BrandedDef:
		s := c.overlay(d.Inner)
		s.ext()["brand"] = d.Brand
		return s
	case *skema.ReadonlyDef:
		s := c.overlay(d.Inner)
		s.ReadOnly = true
		return s
	case *skema.EffectsDef:
		return c.overlay(d.Inner)
	case *skema.PromiseDef:
		return (&Schema{AllOf: []*Schema{c.convert(d.Inner)}}).Tag("promise")
	case *skema.LazyDef:
		return c.lazyRef(d)
	case *skema.PipelineDef:
		return c.overlay(d.In)
	case *skema.FunctionDef:
		s := (&Schema{}).Tag("function")
		s.ext()["args"] = c.convert(d.Args)
		s.ext()["returns"] = c.convert(d.Returns)
		return s
	case *skema.RefDef:
		return &Schema{Ref: defsRef(d.Name)}
	default:
		panic(fmt.Sprintf("jsonschema: unhandled node kind %s", n.Kind()))
	}
}

func (c *converter) all(nodes []*skema.Node) []*Schema {
	out := make([]*Schema, len(nodes))
	for i, o := range nodes {
		out[i] = c.convert(o)
	}
	return out
}

func (c *converter) object(d *skema.ObjectDef) *Schema {
	s := &Schema{Type: "object"}
	for _, p := range d.Props {
		s.Properties = append(s.Properties, Property{Name: p.Key, Schema: c.convert(p.Node)})
		if !p.Node.IsOptional() {
			s.Required = append(s.Required, p.Key)
		}
	}
	switch {
	case d.Catchall != nil:
		s.AdditionalProperties = c.convert(d.Catchall)
	case d.UnknownKeys == skema.UnknownStrict:
		s.AdditionalProperties = false
	default:
		s.AdditionalProperties = true
	}
	return s
}

func (c *converter) lazyRef(d *skema.LazyDef) *Schema {
	target := d.Resolve()
	if e, ok := c.lazy[target]; ok {
		e.recursive = true
		return &Schema{Ref: defsRef(e.name)}
	}
	c.lazyCount++
	e := &lazyEntry{name: fmt.Sprintf("%s%d", c.lazyPrefix, c.lazyCount)}
	c.lazy[target] = e
	s := c.convert(target)
	if !e.recursive {
		delete(c.lazy, target)
		return s
	}
	c.out[e.name] = s
	return &Schema{Ref: defsRef(e.name)}
}

// withoutAdditional drops additionalProperties so that both sides of an
// intersection can hold keys of the other.
func withoutAdditional(s *Schema) *Schema {
	if s.AdditionalProperties == nil {
		return s
	}
	out := *s
	out.AdditionalProperties = nil
	return &out
}

func literal(v any) *Schema {
	switch t := v.(type) {
	case nil:
		return &Schema{Type: "null"}
	case skema.UndefinedType:
		return (&Schema{Not: true}).Tag("undefined")
	case string:
		return &Schema{Type: "string", Const: t}
	case bool:
		return &Schema{Type: "boolean", Const: t}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return &Schema{Type: "integer", Const: t}
	case float32, float64:
		return &Schema{Type: "number", Const: t}
	case *big.Int:
		return (&Schema{Type: "integer", Const: t}).Tag("bigint")
	case *skema.SymbolValue:
		s := (&Schema{}).Tag("symbol")
		s.ext()["symbol"] = t.Description()
		return s
	}
	return &Schema{Const: v}
}

func nativeEnum(members []skema.EnumMember) *Schema {
	s := &Schema{}
	names := make([]any, len(members))
	kinds := map[string]bool{}
	for i, m := range members {
		names[i] = m.Name
		s.Enum = append(s.Enum, m.Value)
		switch m.Value.(type) {
		case string:
			kinds["string"] = true
		default:
			kinds["number"] = true
		}
	}
	if len(kinds) == 1 {
		for k := range kinds {
			s.Type = k
		}
	}
	s.Tag("nativeEnum")
	s.ext()["names"] = names
	return s
}

func addFormat(s *Schema, format string) {
	if s.Format == "" {
		s.Format = format
		return
	}
	s.AllOf = append(s.AllOf, &Schema{Format: format})
}

func addPattern(s *Schema, pattern string) {
	if s.Pattern == "" {
		s.Pattern = pattern
		return
	}
	s.AllOf = append(s.AllOf, &Schema{Pattern: pattern})
}

func tighterMin(dst **int, v int) {
	if *dst == nil || **dst < v {
		*dst = intPtr(v)
	}
}

func tighterMax(dst **int, v int) {
	if *dst == nil || **dst > v {
		*dst = intPtr(v)
	}
}

var ipFormats = map[string]string{"v4": "ipv4", "v6": "ipv6"}

func stringChecks(s *Schema, checks []skema.Check) {
	for _, ck := range checks {
		switch ck.Kind {
		case skema.CheckMin:
			tighterMin(&s.MinLength, ck.Value.(int))
		case skema.CheckMax:
			tighterMax(&s.MaxLength, ck.Value.(int))
		case skema.CheckLength:
			tighterMin(&s.MinLength, ck.Value.(int))
			tighterMax(&s.MaxLength, ck.Value.(int))
		case skema.CheckEmail:
			addFormat(s, "email")
		case skema.CheckURL:
			addFormat(s, "uri")
		case skema.CheckUUID:
			addFormat(s, "uuid")
		case skema.CheckDatetime:
			addFormat(s, "date-time")
		case skema.CheckDate:
			addFormat(s, "date")
		case skema.CheckTime:
			addFormat(s, "time")
		case skema.CheckDuration:
			addFormat(s, "duration")
		case skema.CheckSemver:
			addFormat(s, "semver")
		case skema.CheckIP:
			if f, ok := ipFormats[ck.Version]; ok {
				addFormat(s, f)
			} else {
				s.AllOf = append(s.AllOf, &Schema{AnyOf: []*Schema{{Format: "ipv4"}, {Format: "ipv6"}}})
			}
		case skema.CheckCIDR:
			if f, ok := ipFormats[ck.Version]; ok {
				addFormat(s, f+"-cidr")
			} else {
				addFormat(s, "cidr")
			}
		case skema.CheckBase64:
			s.ContentEncoding = "base64"
		case skema.CheckIncludes:
			addPattern(s, regexp.QuoteMeta(ck.Value.(string)))
		case skema.CheckStartsWith:
			addPattern(s, "^"+regexp.QuoteMeta(ck.Value.(string)))
		case skema.CheckEndsWith:
			addPattern(s, regexp.QuoteMeta(ck.Value.(string))+"$")
		default:
			if p, ok := skema.FormatPattern(ck); ok {
				addPattern(s, p)
			}
		}
	}
}

func numberChecks(s *Schema, checks []skema.Check) {
	for _, ck := range checks {
		switch ck.Kind {
		case skema.CheckInt:
			s.Type = "integer"
		case skema.CheckMin:
			if ck.Inclusive {
				s.Minimum = ck.Value
			} else {
				s.ExclusiveMinimum = ck.Value
			}
		case skema.CheckMax:
			if ck.Inclusive {
				s.Maximum = ck.Value
			} else {
				s.ExclusiveMaximum = ck.Value
			}
		case skema.CheckMultipleOf:
			s.MultipleOf = ck.Value
		}
	}
}

func sizeChecks(s *Schema, checks []skema.Check) {
	for _, ck := range checks {
		v, _ := ck.Value.(int)
		switch ck.Kind {
		case skema.CheckMin:
			s.MinItems = intPtr(v)
		case skema.CheckMax:
			s.MaxItems = intPtr(v)
		case skema.CheckLength:
			s.MinItems, s.MaxItems = intPtr(v), intPtr(v)
		}
	}
}
