package skema

import "maps"

// Reserved metadata keys.
const (
	MetaTitle       = "title"
	MetaDisplayAs   = "displayAs"
	MetaDisabled    = "disabled"
	MetaHidden      = "hidden"
	MetaPlaceholder = "placeholder"
	MetaSecret      = "secret"
	MetaCoerce      = "coerce"
)

// Metadata is the open annotation bag of a node. Values are scalars, []any or
// map[string]any. Keys other than the reserved ones are passed through to the
// JSON-Schema extension untouched.
type Metadata map[string]any

func (m Metadata) str(key string) string {
	s, _ := m[key].(string)
	return s
}

func (m Metadata) flag(key string) bool {
	b, _ := m[key].(bool)
	return b
}

func (m Metadata) Title() string       { return m.str(MetaTitle) }
func (m Metadata) DisplayAs() string   { return m.str(MetaDisplayAs) }
func (m Metadata) Placeholder() string { return m.str(MetaPlaceholder) }
func (m Metadata) Coerce() string      { return m.str(MetaCoerce) }
func (m Metadata) Disabled() bool      { return m.flag(MetaDisabled) }
func (m Metadata) Hidden() bool        { return m.flag(MetaHidden) }
func (m Metadata) Secret() bool        { return m.flag(MetaSecret) }

// Clone deep-copies the bag.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneMetaValue(v)
	}
	return out
}

func cloneMetaValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneMetaValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneMetaValue(e)
		}
		return out
	case Metadata:
		return t.Clone()
	}
	return v
}

// metadataRoot returns the node in n's wrapper chain that owns description and
// metadata. Default and readonly wrappers do not own data of their own.
func (n *Node) metadataRoot() *Node {
	for {
		switch d := n.def.(type) {
		case *DefaultDef:
			n = d.Inner
		case *ReadonlyDef:
			n = d.Inner
		default:
			return n
		}
	}
}

// Meta returns the metadata bag of n's metadata root. The result must not be
// modified; use WithMetadata.
func (n *Node) Meta() Metadata { return n.metadataRoot().meta }

// Description returns the description of n's metadata root.
func (n *Node) Description() string { return n.metadataRoot().description }

// updateRoot clones the chain down to the metadata root and applies fn to the
// cloned root.
func (n *Node) updateRoot(fn func(root *Node)) *Node {
	out := *n
	switch d := n.def.(type) {
	case *DefaultDef:
		nd := *d
		nd.Inner = d.Inner.updateRoot(fn)
		out.def = &nd
	case *ReadonlyDef:
		nd := *d
		nd.Inner = d.Inner.updateRoot(fn)
		out.def = &nd
	default:
		fn(&out)
	}
	return &out
}

func (n *Node) setMeta(key string, v any) *Node {
	return n.updateRoot(func(root *Node) {
		m := maps.Clone(root.meta)
		if m == nil {
			m = Metadata{}
		}
		m[key] = v
		root.meta = m
	})
}

// Describe sets the human readable description.
func (n *Node) Describe(desc string) *Node {
	return n.updateRoot(func(root *Node) { root.description = desc })
}

func (n *Node) Title(s string) *Node       { return n.setMeta(MetaTitle, s) }
func (n *Node) DisplayAs(s string) *Node   { return n.setMeta(MetaDisplayAs, s) }
func (n *Node) Placeholder(s string) *Node { return n.setMeta(MetaPlaceholder, s) }
func (n *Node) Disabled(b bool) *Node      { return n.setMeta(MetaDisabled, b) }
func (n *Node) Hidden(b bool) *Node        { return n.setMeta(MetaHidden, b) }
func (n *Node) Secret(b bool) *Node        { return n.setMeta(MetaSecret, b) }

// CoerceAs records a presentation hint for how a form should coerce the raw
// input (e.g. "number"). It does not change validation; see Coerce for that.
func (n *Node) CoerceAs(s string) *Node { return n.setMeta(MetaCoerce, s) }

// WithMetadata merges m into the bag of n's metadata root.
func (n *Node) WithMetadata(m Metadata) *Node {
	return n.updateRoot(func(root *Node) {
		out := root.meta.Clone()
		if out == nil {
			out = make(Metadata, len(m))
		}
		for k, v := range m {
			out[k] = cloneMetaValue(v)
		}
		root.meta = out
	})
}
