package jsonschema

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/reoring/skema"
)

// Imported is the result of Import.
type Imported struct {
	// Node is the root node. References to $defs entries stay reference nodes.
	Node *skema.Node
	// Defs holds the imported $defs (or definitions) entries.
	Defs map[string]*skema.Node
	// Warnings lists keywords that were ignored or only partly honored.
	Warnings []string
}

// HasWarnings reports whether the import dropped anything.
func (im *Imported) HasWarnings() bool { return len(im.Warnings) > 0 }

// Resolve returns Node with every reference into Defs replaced.
func (im *Imported) Resolve() *skema.Node {
	return skema.Dereference(im.Node, im.Defs)
}

// Import converts a document back into a node. doc may be JSON or YAML bytes,
// a string, a *Schema or a decoded map[string]any. The def tag written by
// FromNode selects the node kind where the document alone is ambiguous.
// A Kubernetes CustomResourceDefinition or a wrapper holding openAPIV3Schema
// is unwrapped first.
func Import(doc any) (*Imported, error) {
	v, err := decodeDocument(doc)
	if err != nil {
		return nil, err
	}
	root, ok := v.(*object)
	if !ok {
		return nil, fmt.Errorf("%w: root is %T, want an object", ErrNotImportable, plain(v))
	}
	return importRoot(root)
}

// ImportCRD imports the openAPIV3Schema of the CustomResourceDefinition for
// kind found in a multi-document YAML stream.
func ImportCRD(data []byte, kind string) (*Imported, error) {
	crd, err := findCRD(data, kind)
	if err != nil {
		return nil, err
	}
	return importRoot(crd)
}

func importRoot(root *object) (*Imported, error) {
	if oas := root.obj("openAPIV3Schema"); oas != nil {
		root = oas
	} else if oas := unwrapCRD(root); oas != nil {
		root = oas
	}
	im := &importer{}
	out := &Imported{Defs: map[string]*skema.Node{}}
	for _, key := range []string{"$defs", "definitions"} {
		defs := root.obj(key)
		if defs == nil {
			continue
		}
		for _, name := range defs.keys {
			n, err := im.node(defs.vals[name], "/"+key+"/"+name)
			if err != nil {
				return nil, err
			}
			out.Defs[name] = n
		}
	}
	n, err := im.node(root.without("$defs", "definitions"), "")
	if err != nil {
		return nil, err
	}
	out.Node = n
	out.Warnings = im.warnings
	return out, nil
}

type importer struct {
	warnings []string
}

func (im *importer) warnf(ptr, format string, args ...any) {
	if ptr == "" {
		ptr = "/"
	}
	im.warnings = append(im.warnings, ptr+": "+fmt.Sprintf(format, args...))
}

// Extension keys that describe the node itself rather than metadata.
var structuralExt = []string{"def", "brand", "discriminator", "names", "args", "returns", "minDate", "maxDate", "symbol"}

var knownKeywords = map[string]bool{
	"$ref": true, "$schema": true, "$id": true, "$comment": true, "$defs": true, "definitions": true,
	"type": true, "title": true, "description": true, "examples": true,
	"format": true, "pattern": true, "minLength": true, "maxLength": true, "contentEncoding": true,
	"minimum": true, "maximum": true, "exclusiveMinimum": true, "exclusiveMaximum": true, "multipleOf": true,
	"properties": true, "required": true, "additionalProperties": true, "propertyNames": true,
	"items": true, "prefixItems": true, "minItems": true, "maxItems": true, "uniqueItems": true,
	"anyOf": true, "oneOf": true, "allOf": true, "not": true,
	"const": true, "enum": true, "default": true, "readOnly": true, "nullable": true,
}

func (im *importer) node(v any, ptr string) (*skema.Node, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return skema.Unknown(), nil
		}
		return skema.Never(), nil
	case *object:
		return im.schema(t, ptr)
	case nil:
		return skema.Unknown(), nil
	}
	return nil, fmt.Errorf("jsonschema: %s: schema is %T", ptr, v)
}

// schema peels the keywords that FromNode writes for wrapper nodes, then
// builds the base node and applies its annotations.
func (im *importer) schema(o *object, ptr string) (*skema.Node, error) {
	if v, ok := o.get("default"); ok {
		n, err := im.schema(o.without("default"), ptr)
		if err != nil {
			return nil, err
		}
		return n.Default(plain(v)), nil
	}
	if o.flag("readOnly") {
		n, err := im.schema(o.without("readOnly"), ptr)
		if err != nil {
			return nil, err
		}
		return n.Readonly(), nil
	}
	if ext := o.obj(ExtensionKey); ext != nil && ext.str("brand") != "" {
		n, err := im.schema(o.with(ExtensionKey, ext.without("brand")), ptr)
		if err != nil {
			return nil, err
		}
		return n.Brand(ext.str("brand")), nil
	}
	if o.flag("nullable") {
		n, err := im.schema(o.without("nullable"), ptr)
		if err != nil {
			return nil, err
		}
		return n.Nullable(), nil
	}
	for _, k := range o.keys {
		if !knownKeywords[k] && !strings.HasPrefix(k, "x-") {
			im.warnf(ptr, "keyword %q ignored", k)
		}
	}
	n, err := im.base(o, ptr)
	if err != nil {
		return nil, err
	}
	return annotateNode(n, o), nil
}

func annotateNode(n *skema.Node, o *object) *skema.Node {
	if d := o.str("description"); d != "" {
		n = n.Describe(d)
	}
	if t := o.str("title"); t != "" {
		n = n.Title(t)
	}
	ext := o.obj(ExtensionKey)
	if ext == nil {
		return n
	}
	meta := skema.Metadata{}
	for _, k := range ext.keys {
		if !slices.Contains(structuralExt, k) {
			meta[k] = plain(ext.vals[k])
		}
	}
	if len(meta) > 0 {
		n = n.WithMetadata(meta)
	}
	return n
}

func (im *importer) base(o *object, ptr string) (*skema.Node, error) {
	if ref := o.str("$ref"); ref != "" {
		for _, prefix := range []string{"#/$defs/", "#/definitions/"} {
			if name, ok := strings.CutPrefix(ref, prefix); ok {
				return skema.Ref(name), nil
			}
		}
		im.warnf(ptr, "$ref %q not supported (local $defs only)", ref)
		return skema.Unknown(), nil
	}
	ext := o.obj(ExtensionKey)
	if def := ext.str("def"); def != "" {
		if n, ok, err := im.tagged(def, o, ext, ptr); ok || err != nil {
			return n, err
		}
	}
	if v, ok := o.get("const"); ok {
		return skema.Literal(plain(v)), nil
	}
	if values := o.list("enum"); values != nil {
		return im.enum(values, ptr)
	}
	if opts := o.list("anyOf"); opts != nil {
		return im.union(opts, ptr+"/anyOf")
	}
	if opts := o.list("oneOf"); opts != nil {
		im.warnf(ptr, "oneOf imported as a union; exclusivity is not enforced")
		return im.union(opts, ptr+"/oneOf")
	}
	if o.has("not") {
		if o.flag("not") {
			return skema.Never(), nil
		}
		im.warnf(ptr, "not with a schema is not supported")
		return skema.Unknown(), nil
	}
	switch t := o.vals["type"].(type) {
	case string:
		return im.typed(o, t, ptr)
	case []any:
		return im.typeList(o, t, ptr)
	}
	if parts := o.list("allOf"); parts != nil {
		return im.intersection(parts, ptr+"/allOf")
	}
	switch {
	case o.has("properties"), o.has("additionalProperties"):
		return im.typed(o, "object", ptr)
	case o.has("items"), o.has("prefixItems"):
		return im.typed(o, "array", ptr)
	}
	return skema.Unknown(), nil
}

// tagged handles documents carrying a def tag. ok is false when the tag does
// not decide the kind on its own.
func (im *importer) tagged(def string, o, ext *object, ptr string) (*skema.Node, bool, error) {
	switch def {
	case "undefined":
		return skema.Undef(), true, nil
	case "never":
		return skema.Never(), true, nil
	case "void":
		return skema.Void(), true, nil
	case "any":
		return skema.Any(), true, nil
	case "unknown":
		return skema.Unknown(), true, nil
	case "nan":
		return skema.NaN(), true, nil
	case "symbol":
		if ext.has("symbol") {
			return skema.Literal(skema.NewSymbol(ext.str("symbol"))), true, nil
		}
		return skema.Symbol(), true, nil
	case "bigint":
		n, err := im.bigint(o, ptr)
		return n, true, err
	case "date":
		return im.date(ext, ptr), true, nil
	case "set":
		el, err := im.node(o.vals["items"], ptr+"/items")
		if err != nil {
			return nil, true, err
		}
		n := skema.SetOf(el)
		n = im.itemBounds(n, o, ptr)
		return n, true, nil
	case "map":
		entry, _ := o.vals["items"].(*object)
		kv := entry.list("prefixItems")
		if len(kv) != 2 {
			return nil, true, fmt.Errorf("jsonschema: %s: map entries need two prefixItems", ptr)
		}
		k, err := im.node(kv[0], ptr+"/items/prefixItems/0")
		if err != nil {
			return nil, true, err
		}
		v, err := im.node(kv[1], ptr+"/items/prefixItems/1")
		if err != nil {
			return nil, true, err
		}
		return skema.MapOf(k, v), true, nil
	case "union":
		n, err := im.union(o.list("anyOf"), ptr+"/anyOf")
		return n, true, err
	case "discriminatedUnion":
		opts, err := im.nodes(o.list("anyOf"), ptr+"/anyOf")
		if err != nil {
			return nil, true, err
		}
		n, err := skema.BuildDiscriminatedUnion(ext.str("discriminator"), opts...)
		if err != nil {
			return nil, true, fmt.Errorf("jsonschema: %s: %w", ptr, err)
		}
		return n, true, nil
	case "optional", "nullable":
		opts := o.list("anyOf")
		if len(opts) == 0 {
			return nil, true, fmt.Errorf("jsonschema: %s: %s needs anyOf", ptr, def)
		}
		inner, err := im.node(opts[0], ptr+"/anyOf/0")
		if err != nil {
			return nil, true, err
		}
		if def == "optional" {
			return inner.Optional(), true, nil
		}
		return inner.Nullable(), true, nil
	case "promise":
		parts := o.list("allOf")
		if len(parts) == 0 {
			return skema.PromiseOf(skema.Unknown()), true, nil
		}
		inner, err := im.node(parts[0], ptr+"/allOf/0")
		if err != nil {
			return nil, true, err
		}
		return skema.PromiseOf(inner), true, nil
	case "function":
		n, err := im.function(ext, ptr)
		return n, true, err
	case "nativeEnum":
		return nativeEnumNode(o.list("enum"), ext.list("names")), true, nil
	}
	return nil, false, nil
}

func (im *importer) nodes(list []any, ptr string) ([]*skema.Node, error) {
	out := make([]*skema.Node, 0, len(list))
	for i, v := range list {
		n, err := im.node(v, ptr+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (im *importer) union(list []any, ptr string) (*skema.Node, error) {
	opts, err := im.nodes(list, ptr)
	if err != nil {
		return nil, err
	}
	n, err := skema.BuildUnion(opts...)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %s: %w", ptr, err)
	}
	return n, nil
}

func (im *importer) intersection(list []any, ptr string) (*skema.Node, error) {
	parts, err := im.nodes(list, ptr)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("jsonschema: %s: %w", ptr, skema.ErrEmptyOptions)
	}
	n := parts[0]
	for _, p := range parts[1:] {
		n = skema.Intersection(n, p)
	}
	return n, nil
}

func (im *importer) enum(values []any, ptr string) (*skema.Node, error) {
	strs := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			break
		}
		strs = append(strs, s)
	}
	if len(strs) == len(values) {
		n, err := skema.BuildEnum(strs...)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: %s: %w", ptr, err)
		}
		return n, nil
	}
	lits := make([]*skema.Node, len(values))
	for i, v := range values {
		lits[i] = skema.Literal(plain(v))
	}
	if len(lits) == 1 {
		return lits[0], nil
	}
	n, err := skema.BuildUnion(lits...)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %s: %w", ptr, err)
	}
	return n, nil
}

func nativeEnumNode(values, names []any) *skema.Node {
	members := make([]skema.EnumMember, len(values))
	for i, v := range values {
		name := fmt.Sprint(v)
		if i < len(names) {
			if s, ok := names[i].(string); ok {
				name = s
			}
		}
		members[i] = skema.EnumMember{Name: name, Value: plain(v)}
	}
	return skema.NativeEnum(members...)
}

func (im *importer) typeList(o *object, types []any, ptr string) (*skema.Node, error) {
	var (
		opts     []*skema.Node
		nullable bool
	)
	for _, t := range types {
		name, _ := t.(string)
		if name == "null" {
			nullable = true
			continue
		}
		n, err := im.typed(o, name, ptr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, n)
	}
	var n *skema.Node
	switch len(opts) {
	case 0:
		return skema.Null(), nil
	case 1:
		n = opts[0]
	default:
		n = skema.Union(opts...)
	}
	if nullable {
		n = n.Nullable()
	}
	return n, nil
}

func (im *importer) typed(o *object, typ, ptr string) (*skema.Node, error) {
	switch typ {
	case "string":
		return im.str(o, ptr), nil
	case "number", "integer":
		return im.number(o, typ == "integer", ptr), nil
	case "boolean":
		return skema.Boolean(), nil
	case "null":
		return skema.Null(), nil
	case "array":
		return im.array(o, ptr)
	case "object":
		return im.object(o, ptr)
	}
	im.warnf(ptr, "unknown type %q", typ)
	return skema.Unknown(), nil
}

func intOf(v any) (int, bool) {
	f, ok := floatOf(v)
	if !ok || f != math.Trunc(f) || f < 0 {
		return 0, false
	}
	return int(f), true
}

func floatOf(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

func bigOf(v any) (*big.Int, bool) {
	switch t := v.(type) {
	case int:
		return big.NewInt(int64(t)), true
	case int64:
		return big.NewInt(t), true
	case uint64:
		return new(big.Int).SetUint64(t), true
	case float64:
		if t != math.Trunc(t) {
			return nil, false
		}
		b, _ := big.NewFloat(t).Int(nil)
		return b, true
	case string:
		return new(big.Int).SetString(t, 10)
	}
	return nil, false
}

func (im *importer) str(o *object, ptr string) *skema.Node {
	n := skema.String()
	if v, ok := o.get("minLength"); ok {
		if l, ok := intOf(v); ok {
			n = n.Min(l)
		} else {
			im.warnf(ptr, "minLength %v is not a length", v)
		}
	}
	if v, ok := o.get("maxLength"); ok {
		if l, ok := intOf(v); ok {
			n = n.Max(l)
		} else {
			im.warnf(ptr, "maxLength %v is not a length", v)
		}
	}
	n = im.stringConstraints(n, o, ptr)
	if o.str("contentEncoding") == "base64" {
		n = n.Base64()
	}
	for i, part := range o.list("allOf") {
		po, _ := part.(*object)
		if po == nil {
			continue
		}
		p := ptr + "/allOf/" + strconv.Itoa(i)
		if opts := po.list("anyOf"); len(opts) == 2 {
			n = n.IP()
			continue
		}
		n = im.stringConstraints(n, po, p)
	}
	return n
}

func (im *importer) stringConstraints(n *skema.Node, o *object, ptr string) *skema.Node {
	if p := o.str("pattern"); p != "" {
		re, err := regexp.Compile(p)
		if err != nil {
			im.warnf(ptr, "pattern %q: %v", p, err)
		} else {
			n = n.Regex(re)
		}
	}
	if f := o.str("format"); f != "" {
		n = im.format(n, f, ptr)
	}
	return n
}

func (im *importer) format(n *skema.Node, format, ptr string) *skema.Node {
	switch format {
	case "email":
		return n.Email()
	case "uri", "url":
		return n.URL()
	case "uuid":
		return n.UUID()
	case "date-time":
		return n.Datetime()
	case "date":
		return n.DateString()
	case "time":
		return n.TimeString()
	case "duration":
		return n.Duration()
	case "semver":
		return n.Semver()
	case "ipv4":
		return n.IP(skema.IPOpts{Version: "v4"})
	case "ipv6":
		return n.IP(skema.IPOpts{Version: "v6"})
	case "ipv4-cidr":
		return n.CIDR(skema.IPOpts{Version: "v4"})
	case "ipv6-cidr":
		return n.CIDR(skema.IPOpts{Version: "v6"})
	case "cidr":
		return n.CIDR()
	}
	im.warnf(ptr, "format %q not enforced", format)
	return n
}

func (im *importer) number(o *object, integer bool, ptr string) *skema.Node {
	n := skema.Number()
	if integer {
		n = n.Int()
	}
	exclMin, _ := o.vals["exclusiveMinimum"].(bool)
	exclMax, _ := o.vals["exclusiveMaximum"].(bool)
	bound := func(key string, apply func(float64) *skema.Node) {
		v, ok := o.get(key)
		if !ok {
			return
		}
		if _, isBool := v.(bool); isBool {
			return
		}
		f, ok := floatOf(v)
		if !ok {
			im.warnf(ptr, "%s %v is not a number", key, v)
			return
		}
		n = apply(f)
	}
	bound("minimum", func(f float64) *skema.Node {
		if exclMin {
			return n.Gt(f)
		}
		return n.Gte(f)
	})
	bound("maximum", func(f float64) *skema.Node {
		if exclMax {
			return n.Lt(f)
		}
		return n.Lte(f)
	})
	bound("exclusiveMinimum", func(f float64) *skema.Node { return n.Gt(f) })
	bound("exclusiveMaximum", func(f float64) *skema.Node { return n.Lt(f) })
	bound("multipleOf", func(f float64) *skema.Node { return n.MultipleOf(f) })
	return n
}

func (im *importer) bigint(o *object, ptr string) (*skema.Node, error) {
	if v, ok := o.get("const"); ok {
		b, ok := bigOf(v)
		if !ok {
			return nil, fmt.Errorf("jsonschema: %s: bigint const %v", ptr, v)
		}
		return skema.Literal(b), nil
	}
	n := skema.BigInt()
	for _, key := range []string{"minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum", "multipleOf"} {
		v, ok := o.get(key)
		if !ok {
			continue
		}
		b, ok := bigOf(v)
		if !ok {
			im.warnf(ptr, "%s %v is not an integer", key, v)
			continue
		}
		switch key {
		case "minimum":
			n = n.Gte(b)
		case "maximum":
			n = n.Lte(b)
		case "exclusiveMinimum":
			n = n.Gt(b)
		case "exclusiveMaximum":
			n = n.Lt(b)
		case "multipleOf":
			n = n.MultipleOf(b)
		}
	}
	return n, nil
}

func (im *importer) date(ext *object, ptr string) *skema.Node {
	n := skema.Date()
	for _, key := range []string{"minDate", "maxDate"} {
		s := ext.str(key)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			im.warnf(ptr, "%s: %v", key, err)
			continue
		}
		if key == "minDate" {
			n = n.Min(t)
		} else {
			n = n.Max(t)
		}
	}
	return n
}

func (im *importer) itemBounds(n *skema.Node, o *object, ptr string) *skema.Node {
	if v, ok := o.get("minItems"); ok {
		if l, ok := intOf(v); ok {
			n = n.Min(l)
		} else {
			im.warnf(ptr, "minItems %v is not a length", v)
		}
	}
	if v, ok := o.get("maxItems"); ok {
		if l, ok := intOf(v); ok {
			n = n.Max(l)
		} else {
			im.warnf(ptr, "maxItems %v is not a length", v)
		}
	}
	return n
}

func (im *importer) array(o *object, ptr string) (*skema.Node, error) {
	if prefix := o.list("prefixItems"); prefix != nil {
		items, err := im.nodes(prefix, ptr+"/prefixItems")
		if err != nil {
			return nil, err
		}
		n := skema.Tuple(items...)
		switch rest := o.vals["items"].(type) {
		case bool:
			if rest {
				n = n.Rest(skema.Unknown())
			}
		case *object:
			r, err := im.node(rest, ptr+"/items")
			if err != nil {
				return nil, err
			}
			n = n.Rest(r)
		case nil:
			if !o.has("items") {
				n = n.Rest(skema.Unknown())
			}
		}
		return n, nil
	}
	el := skema.Unknown()
	if items, ok := o.get("items"); ok {
		var err error
		if el, err = im.node(items, ptr+"/items"); err != nil {
			return nil, err
		}
	}
	if o.flag("uniqueItems") {
		im.warnf(ptr, "uniqueItems not enforced on arrays")
	}
	return im.itemBounds(skema.Array(el), o, ptr), nil
}

func (im *importer) object(o *object, ptr string) (*skema.Node, error) {
	props := o.obj("properties")
	ap, hasAP := o.get("additionalProperties")
	if apo, ok := ap.(*object); ok && props == nil {
		return im.record(o, apo, ptr)
	}
	required := map[string]bool{}
	for _, r := range o.list("required") {
		if s, ok := r.(string); ok {
			required[s] = true
		}
	}
	var fields []skema.Property
	if props != nil {
		for _, k := range props.keys {
			n, err := im.node(props.vals[k], ptr+"/properties/"+k)
			if err != nil {
				return nil, err
			}
			if !required[k] && !n.IsOptional() {
				n = n.Optional()
			}
			fields = append(fields, skema.Prop(k, n))
		}
	}
	n := skema.Object(fields...)
	switch t := ap.(type) {
	case bool:
		if !t {
			n = n.Strict()
		}
	case *object:
		c, err := im.node(t, ptr+"/additionalProperties")
		if err != nil {
			return nil, err
		}
		n = n.Catchall(c)
	default:
		if hasAP {
			im.warnf(ptr, "additionalProperties %v ignored", ap)
		}
	}
	if o.flag("x-kubernetes-preserve-unknown-fields") {
		n = n.Passthrough()
	}
	return n, nil
}

func (im *importer) record(o, value *object, ptr string) (*skema.Node, error) {
	v, err := im.node(value, ptr+"/additionalProperties")
	if err != nil {
		return nil, err
	}
	key := skema.String()
	if pn := o.obj("propertyNames"); pn != nil {
		if !pn.has("type") && !pn.has("enum") && !pn.has("const") {
			pn = pn.with("type", "string")
		}
		if key, err = im.node(pn, ptr+"/propertyNames"); err != nil {
			return nil, err
		}
	}
	return skema.Record(key, v), nil
}

func (im *importer) function(ext *object, ptr string) (*skema.Node, error) {
	n := skema.Function()
	if args := ext.obj("args"); args != nil {
		items, err := im.nodes(args.list("prefixItems"), ptr+"/"+ExtensionKey+"/args/prefixItems")
		if err != nil {
			return nil, err
		}
		n = n.Args(items...)
	}
	if ret, ok := ext.get("returns"); ok {
		r, err := im.node(ret, ptr+"/"+ExtensionKey+"/returns")
		if err != nil {
			return nil, err
		}
		n = n.Returns(r)
	}
	return n, nil
}

// ErrNotImportable is returned for documents whose root is not a schema.
var ErrNotImportable = errors.New("jsonschema: document is not importable")
