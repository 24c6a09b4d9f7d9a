// Package codegen renders schema nodes as Go source built from skema
// builder calls. Running the generated expression rebuilds a node that is
// Equal to the input, except for parts that hold user functions; those are
// emitted as their inner node followed by a comment marker. Generate cannot
// name a recursive lazy node and marks it; GenerateFile declares it as a
// package variable instead.
package codegen

import (
	"fmt"
	"go/format"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/reoring/skema"
	"github.com/reoring/skema/internal/literal"
)

const importPath = "github.com/reoring/skema"

// Option configures Generate and GenerateFile.
type Option func(*printer)

// WithQualifier sets the package name put in front of builder calls. The
// default is "skema"; an empty qualifier emits unqualified calls.
func WithQualifier(q string) Option { return func(p *printer) { p.qual = q } }

// WithIndent sets the indentation unit. The default is a tab.
func WithIndent(indent string) Option { return func(p *printer) { p.indent = indent } }

type printer struct {
	qual    string
	indent  string
	enc     *literal.Encoder
	lazy    map[*skema.Node]bool
	imports map[string]bool

	// recursive holds lazy targets reached again while being expanded.
	recursive map[*skema.Node]bool
	// hoist makes recursive targets package variables named in names.
	hoist   bool
	names   map[*skema.Node]string
	taken   map[string]bool
	pending []*skema.Node
	refs    int
}

func newPrinter(opts []Option) *printer {
	p := &printer{
		qual:      "skema",
		indent:    "\t",
		lazy:      map[*skema.Node]bool{},
		imports:   map[string]bool{},
		recursive: map[*skema.Node]bool{},
		names:     map[*skema.Node]string{},
		taken:     map[string]bool{},
	}
	for _, o := range opts {
		o(p)
	}
	p.enc = literal.NewEncoder(p.qual)
	p.enc.Imports = p.imports
	return p
}

// Generate returns a Go expression that rebuilds n. The output depends only
// on n: calling Generate twice on the same node yields identical text.
func Generate(n *skema.Node, opts ...Option) string {
	return newPrinter(opts).node(n, 0)
}

// GenerateFile renders a gofmt-ed Go file declaring one package-level
// variable per entry of decls, in name order. Recursive lazy nodes refer to
// a variable: the declaration itself when the lazy node returns it, or an
// extra unexported one. Variables taking part in recursion are assigned in
// init.
func GenerateFile(pkg string, decls map[string]*skema.Node, opts ...Option) ([]byte, error) {
	order := slices.Sorted(maps.Keys(decls))

	scan := newPrinter(opts)
	for _, name := range order {
		scan.node(decls[name], 0)
	}

	p := newPrinter(opts)
	p.hoist = true
	p.recursive = scan.recursive
	for _, name := range order {
		p.taken[name] = true
		if _, ok := p.names[decls[name]]; !ok {
			p.names[decls[name]] = name
		}
	}

	var body strings.Builder
	type assign struct{ name, expr string }
	var deferred []assign
	for _, name := range order {
		n := decls[name]
		p.refs = 0
		expr := p.node(n, 0)
		if p.refs > 0 || p.recursive[n] {
			deferred = append(deferred, assign{name, expr})
			continue
		}
		fmt.Fprintf(&body, "var %s = %s\n\n", name, expr)
	}
	for i := 0; i < len(p.pending); i++ {
		n := p.pending[i]
		deferred = append(deferred, assign{p.names[n], p.node(n, 1)})
	}
	if len(deferred) > 0 {
		body.WriteString("var (\n")
		for _, a := range deferred {
			fmt.Fprintf(&body, "\t%s *%s\n", a.name, p.q("Node"))
		}
		body.WriteString(")\n\nfunc init() {\n")
		for _, a := range deferred {
			fmt.Fprintf(&body, "\t%s = %s\n", a.name, a.expr)
		}
		body.WriteString("}\n")
	}

	var b strings.Builder
	b.WriteString("// Code generated by skema. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	imports := slices.Sorted(maps.Keys(p.imports))
	b.WriteString("import (\n")
	for _, path := range imports {
		fmt.Fprintf(&b, "\t%q\n", path)
	}
	switch p.qual {
	case "":
	case "skema":
		fmt.Fprintf(&b, "\n\t%q\n", importPath)
	default:
		fmt.Fprintf(&b, "\n\t%s %q\n", p.qual, importPath)
	}
	b.WriteString(")\n\n")
	b.WriteString(body.String())

	out, err := format.Source([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("codegen: format: %w", err)
	}
	return out, nil
}

// nameOf returns the variable holding n, allocating an unexported one the
// first time a recursive target without a declaration is seen.
func (p *printer) nameOf(n *skema.Node) string {
	if name, ok := p.names[n]; ok {
		return name
	}
	name := ""
	for i := 1; ; i++ {
		name = "lazy" + strconv.Itoa(i)
		if !p.taken[name] {
			break
		}
	}
	p.taken[name] = true
	p.names[n] = name
	p.pending = append(p.pending, n)
	return name
}

func (p *printer) q(name string) string {
	if p.qual == "" {
		return name
	}
	return p.qual + "." + name
}

func (p *printer) lit(v any) string {
	s, err := p.enc.Encode(v)
	if err != nil {
		return fmt.Sprintf("nil /* skema: %v */", err)
	}
	return s
}

func marker(what string) string { return " /* skema: " + what + " omitted */" }

// list renders calls with one argument per line.
func (p *printer) list(call string, lead []string, items []string, depth int) string {
	if len(items) == 0 {
		return call + "(" + strings.Join(lead, ", ") + ")"
	}
	in := strings.Repeat(p.indent, depth+1)
	var b strings.Builder
	b.WriteString(call + "(")
	if len(lead) > 0 {
		b.WriteString(strings.Join(lead, ", ") + ",")
	}
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString(in + it + ",\n")
	}
	b.WriteString(strings.Repeat(p.indent, depth) + ")")
	return b.String()
}

func (p *printer) nodes(nodes []*skema.Node, depth int) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = p.node(n, depth+1)
	}
	return out
}

func (p *printer) node(n *skema.Node, depth int) string {
	return p.base(n, depth) + p.annotations(n)
}

func (p *printer) base(n *skema.Node, depth int) string {
	switch d := n.Def().(type) {
	case *skema.StringDef:
		return p.q("String()") + coerce(d.Coerce) + p.checks(d.Checks)
	case *skema.NumberDef:
		return p.q("Number()") + coerce(d.Coerce) + p.checks(d.Checks)
	case *skema.BigIntDef:
		return p.q("BigInt()") + coerce(d.Coerce) + p.checks(d.Checks)
	case *skema.DateDef:
		return p.q("Date()") + coerce(d.Coerce) + p.checks(d.Checks)
	case *skema.BooleanDef:
		return p.q("Boolean()") + coerce(d.Coerce)
	case *skema.SymbolDef:
		return p.q("Symbol()")
	case *skema.NaNDef:
		return p.q("NaN()")
	case *skema.UndefinedDef:
		return p.q("Undef()")
	case *skema.NullDef:
		return p.q("Null()")
	case *skema.NeverDef:
		return p.q("Never()")
	case *skema.UnknownDef:
		return p.q("Unknown()")
	case *skema.AnyDef:
		return p.q("Any()")
	case *skema.VoidDef:
		return p.q("Void()")
	case *skema.ArrayDef:
		return p.q("Array(") + p.node(d.Element, depth) + ")" + p.checks(d.Checks)
	case *skema.TupleDef:
		s := p.q("Tuple(") + strings.Join(p.nodes(d.Items, depth-1), ", ") + ")"
		if d.Rest != nil {
			s += ".Rest(" + p.node(d.Rest, depth) + ")"
		}
		return s
	case *skema.SetDef:
		return p.q("SetOf(") + p.node(d.Element, depth) + ")" + p.checks(d.Checks)
	case *skema.RecordDef:
		if skema.Equal(d.Key, skema.String()) {
			return p.q("RecordOf(") + p.node(d.Value, depth) + ")"
		}
		return p.q("Record(") + p.node(d.Key, depth) + ", " + p.node(d.Value, depth) + ")"
	case *skema.MapDef:
		return p.q("MapOf(") + p.node(d.Key, depth) + ", " + p.node(d.Value, depth) + ")"
	case *skema.ObjectDef:
		return p.object(d, depth)
	case *skema.UnionDef:
		return p.list(p.q("Union"), nil, p.nodes(d.Options, depth), depth)
	case *skema.DiscriminatedUnionDef:
		return p.list(p.q("DiscriminatedUnion"), []string{strconv.Quote(d.Discriminator)}, p.nodes(d.Options, depth), depth)
	case *skema.IntersectionDef:
		return p.list(p.q("Intersection"), nil, p.nodes([]*skema.Node{d.Left, d.Right}, depth), depth)
	case *skema.LiteralDef:
		return p.q("Literal(") + p.lit(d.Value) + ")"
	case *skema.EnumDef:
		vals := make([]string, len(d.Values))
		for i, v := range d.Values {
			vals[i] = strconv.Quote(v)
		}
		return p.q("Enum(") + strings.Join(vals, ", ") + ")"
	case *skema.NativeEnumDef:
		items := make([]string, len(d.Members))
		for i, m := range d.Members {
			items[i] = fmt.Sprintf("%s{Name: %q, Value: %s}", p.q("EnumMember"), m.Name, p.lit(m.Value))
		}
		return p.list(p.q("NativeEnum"), nil, items, depth)
	case *skema.OptionalDef:
		return p.node(d.Inner, depth) + ".Optional()"
	case *skema.NullableDef:
		return p.node(d.Inner, depth) + ".Nullable()"
	case *skema.DefaultDef:
		if d.Func != nil {
			return p.node(d.Inner, depth) + marker("default function")
		}
		return p.node(d.Inner, depth) + ".Default(" + p.lit(d.Value) + ")"
	case *skema.CatchDef:
		if d.Func != nil {
			return p.node(d.Inner, depth) + marker("catch function")
		}
		return p.node(d.Inner, depth) + ".Catch(" + p.lit(d.Value) + ")"
	case *skema.BrandedDef:
		return p.node(d.Inner, depth) + ".Brand(" + strconv.Quote(d.Brand) + ")"
	case *skema.ReadonlyDef:
		return p.node(d.Inner, depth) + ".Readonly()"
	case *skema.EffectsDef:
		return p.node(d.Inner, depth) + marker(d.Effect.Type.String())
	case *skema.PromiseDef:
		return p.q("PromiseOf(") + p.node(d.Inner, depth) + ")"
	case *skema.LazyDef:
		return p.lazyNode(d, depth)
	case *skema.PipelineDef:
		return p.list(p.q("Pipeline"), nil, p.nodes([]*skema.Node{d.In, d.Out}, depth), depth)
	case *skema.FunctionDef:
		return p.function(d, depth)
	case *skema.RefDef:
		return p.q("Ref(") + strconv.Quote(d.Name) + ")"
	}
	panic(fmt.Sprintf("codegen: unhandled node kind %s", n.Kind()))
}

func coerce(on bool) string {
	if on {
		return ".Coerce()"
	}
	return ""
}

func (p *printer) object(d *skema.ObjectDef, depth int) string {
	items := make([]string, len(d.Props))
	for i, prop := range d.Props {
		items[i] = p.q("Prop(") + strconv.Quote(prop.Key) + ", " + p.node(prop.Node, depth+1) + ")"
	}
	s := p.list(p.q("Object"), nil, items, depth)
	switch {
	case d.Catchall != nil:
		s += ".Catchall(" + p.node(d.Catchall, depth) + ")"
	case d.UnknownKeys == skema.UnknownStrict:
		s += ".Strict()"
	case d.UnknownKeys == skema.UnknownPassthrough:
		s += ".Passthrough()"
	}
	return s
}

func (p *printer) lazyNode(d *skema.LazyDef, depth int) string {
	target := d.Resolve()
	if p.hoist && p.recursive[target] {
		p.refs++
		return p.q("Lazy(func() *") + p.q("Node") + " { return " + p.nameOf(target) + " })"
	}
	if p.lazy[target] {
		p.recursive[target] = true
		return p.q("Any()") + marker("recursive lazy")
	}
	p.lazy[target] = true
	defer delete(p.lazy, target)
	in := strings.Repeat(p.indent, depth+1)
	return p.q("Lazy(func() *") + p.q("Node") + " {\n" +
		in + "return " + p.node(target, depth+1) + "\n" +
		strings.Repeat(p.indent, depth) + "})"
}

func (p *printer) function(d *skema.FunctionDef, depth int) string {
	s := p.q("Function()")
	if args, ok := d.Args.Def().(*skema.TupleDef); ok && len(args.Items) > 0 {
		s += ".Args(" + strings.Join(p.nodes(args.Items, depth-1), ", ") + ")"
	}
	if !skema.Equal(d.Returns, skema.Unknown()) {
		s += ".Returns(" + p.node(d.Returns, depth) + ")"
	}
	return s
}

func msgArg(msg string) string {
	if msg == "" {
		return ""
	}
	return ", " + strconv.Quote(msg)
}

func onlyMsg(msg string) string {
	if msg == "" {
		return ""
	}
	return strconv.Quote(msg)
}

// checks renders checks in declaration order.
func (p *printer) checks(checks []skema.Check) string {
	var b strings.Builder
	for _, c := range checks {
		b.WriteString(p.check(c))
	}
	return b.String()
}

var formatMethods = map[skema.CheckKind]string{
	skema.CheckEmail:    "Email",
	skema.CheckURL:      "URL",
	skema.CheckEmoji:    "Emoji",
	skema.CheckUUID:     "UUID",
	skema.CheckNanoID:   "NanoID",
	skema.CheckCUID:     "CUID",
	skema.CheckCUID2:    "CUID2",
	skema.CheckULID:     "ULID",
	skema.CheckBase64:   "Base64",
	skema.CheckSemver:   "Semver",
	skema.CheckDate:     "DateString",
	skema.CheckDuration: "Duration",
	skema.CheckInt:      "Int",
	skema.CheckFinite:   "Finite",
}

func (p *printer) check(c skema.Check) string {
	if m, ok := formatMethods[c.Kind]; ok {
		return "." + m + "(" + onlyMsg(c.Message) + ")"
	}
	switch c.Kind {
	case skema.CheckMin:
		if !c.Inclusive {
			return ".Gt(" + p.bound(c.Value) + msgArg(c.Message) + ")"
		}
		return ".Min(" + p.bound(c.Value) + msgArg(c.Message) + ")"
	case skema.CheckMax:
		if !c.Inclusive {
			return ".Lt(" + p.bound(c.Value) + msgArg(c.Message) + ")"
		}
		return ".Max(" + p.bound(c.Value) + msgArg(c.Message) + ")"
	case skema.CheckLength:
		return ".Length(" + p.bound(c.Value) + msgArg(c.Message) + ")"
	case skema.CheckMultipleOf:
		return ".MultipleOf(" + p.bound(c.Value) + msgArg(c.Message) + ")"
	case skema.CheckRegex:
		p.imports["regexp"] = true
		return ".Regex(regexp.MustCompile(" + strconv.Quote(c.Regex.String()) + ")" + msgArg(c.Message) + ")"
	case skema.CheckIncludes:
		if c.Position != nil {
			return ".IncludesAt(" + p.lit(c.Value) + ", " + strconv.Itoa(*c.Position) + msgArg(c.Message) + ")"
		}
		return ".Includes(" + p.lit(c.Value) + msgArg(c.Message) + ")"
	case skema.CheckStartsWith:
		return ".StartsWith(" + p.lit(c.Value) + msgArg(c.Message) + ")"
	case skema.CheckEndsWith:
		return ".EndsWith(" + p.lit(c.Value) + msgArg(c.Message) + ")"
	case skema.CheckDatetime, skema.CheckTime:
		method := "Datetime"
		if c.Kind == skema.CheckTime {
			method = "TimeString"
		}
		var fields []string
		if c.Precision != nil {
			fields = append(fields, "Precision: "+p.q("Digits(")+strconv.Itoa(*c.Precision)+")")
		}
		if c.Offset {
			fields = append(fields, "Offset: true")
		}
		if c.Local {
			fields = append(fields, "Local: true")
		}
		if c.Message != "" {
			fields = append(fields, "Message: "+strconv.Quote(c.Message))
		}
		if len(fields) == 0 {
			return "." + method + "()"
		}
		return "." + method + "(" + p.q("DatetimeOpts{") + strings.Join(fields, ", ") + "})"
	case skema.CheckIP, skema.CheckCIDR:
		method := "IP"
		if c.Kind == skema.CheckCIDR {
			method = "CIDR"
		}
		var fields []string
		if c.Version != "" {
			fields = append(fields, "Version: "+strconv.Quote(c.Version))
		}
		if c.Message != "" {
			fields = append(fields, "Message: "+strconv.Quote(c.Message))
		}
		if len(fields) == 0 {
			return "." + method + "()"
		}
		return "." + method + "(" + p.q("IPOpts{") + strings.Join(fields, ", ") + "})"
	case skema.CheckTrim:
		return ".Trim()"
	case skema.CheckToLower:
		return ".ToLowerCase()"
	case skema.CheckToUpper:
		return ".ToUpperCase()"
	}
	return marker("check " + string(c.Kind))
}

// bound renders check values. Integral bigint bounds are written as plain
// integers, which the bound builders accept.
func (p *printer) bound(v any) string {
	if b, ok := v.(interface{ IsInt64() bool }); ok && b.IsInt64() {
		return fmt.Sprint(v)
	}
	return p.lit(v)
}

var metaSetters = map[string]string{
	skema.MetaTitle:       "Title",
	skema.MetaDisplayAs:   "DisplayAs",
	skema.MetaPlaceholder: "Placeholder",
	skema.MetaCoerce:      "CoerceAs",
	skema.MetaDisabled:    "Disabled",
	skema.MetaHidden:      "Hidden",
	skema.MetaSecret:      "Secret",
}

// annotations renders the description, metadata and messages of n that the
// node it wraps does not already carry.
func (p *printer) annotations(n *skema.Node) string {
	var b strings.Builder
	inner := n.Unwrap()
	if desc := n.Description(); desc != "" && (inner == nil || inner.Description() != desc) {
		b.WriteString(".Describe(" + strconv.Quote(desc) + ")")
	}
	meta := n.Meta()
	rest := skema.Metadata{}
	for _, k := range slices.Sorted(maps.Keys(meta)) {
		v := meta[k]
		if inner != nil {
			if iv, ok := inner.Meta()[k]; ok && reflect.DeepEqual(iv, v) {
				continue
			}
		}
		setter, ok := metaSetters[k]
		switch t := v.(type) {
		case string:
			if ok && setter != "Disabled" && setter != "Hidden" && setter != "Secret" {
				b.WriteString("." + setter + "(" + strconv.Quote(t) + ")")
				continue
			}
		case bool:
			if ok && (setter == "Disabled" || setter == "Hidden" || setter == "Secret") {
				b.WriteString("." + setter + "(" + strconv.FormatBool(t) + ")")
				continue
			}
		}
		rest[k] = v
	}
	if len(rest) > 0 {
		b.WriteString(".WithMetadata(" + p.lit(rest) + ")")
	}
	if m := n.Messages(); m != (skema.Messages{}) {
		if inner == nil || inner.Messages() != m {
			var fields []string
			if m.Required != "" {
				fields = append(fields, "Required: "+strconv.Quote(m.Required))
			}
			if m.InvalidType != "" {
				fields = append(fields, "InvalidType: "+strconv.Quote(m.InvalidType))
			}
			b.WriteString(".WithMessages(" + p.q("Messages{") + strings.Join(fields, ", ") + "})")
		}
	}
	if n.ErrorMap() != nil && (inner == nil || inner.ErrorMap() == nil) {
		b.WriteString(marker("error map"))
	}
	return b.String()
}
