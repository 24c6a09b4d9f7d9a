package skema

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// ErrorMapContext is passed to an ErrorMap.
type ErrorMapContext struct {
	// DefaultError is the message produced by the lower-priority maps.
	DefaultError string
	// Data is the input value at the issue's path.
	Data any
}

// ErrorMap renders the message for an issue. Returning "" keeps
// ctx.DefaultError.
type ErrorMap func(iss Issue, ctx ErrorMapContext) string

// Messages overrides the two most common messages of a node.
type Messages struct {
	// Required replaces invalid_type when the input is undefined.
	Required string
	// InvalidType replaces every other invalid_type.
	InvalidType string
}

// WithErrorMap attaches m to n. It applies to issues raised by n itself, not
// by its children.
func (n *Node) WithErrorMap(m ErrorMap) *Node {
	out := *n
	out.errorMap = m
	return &out
}

// WithMessages attaches required/invalid-type message overrides to n.
func (n *Node) WithMessages(m Messages) *Node {
	out := *n
	out.messages = m
	return &out
}

// nodeMessage applies n's own overrides to msg.
func (n *Node) nodeMessage(iss Issue, ctx ErrorMapContext) string {
	if iss.Code == CodeInvalidType {
		if IsUndefined(ctx.Data) && n.messages.Required != "" {
			return n.messages.Required
		}
		if !IsUndefined(ctx.Data) && n.messages.InvalidType != "" {
			return n.messages.InvalidType
		}
	}
	if n.errorMap != nil {
		if s := n.errorMap(iss, ctx); s != "" {
			return s
		}
	}
	return ctx.DefaultError
}

// renderMessage selects the message for iss: an explicit message wins;
// otherwise the built-in message is passed through the config map, the node
// map and the call-site map in that order, each seeing the previous result.
func renderMessage(iss Issue, data any, n *Node, cfg *Config, callSite ErrorMap) string {
	if iss.Message != "" {
		return iss.Message
	}
	msg := cfg.translator().Message(iss.Code, issueData(iss))
	apply := func(m ErrorMap) {
		if m == nil {
			return
		}
		if s := m(iss, ErrorMapContext{DefaultError: msg, Data: data}); s != "" {
			msg = s
		}
	}
	apply(cfg.ErrorMap)
	if n != nil {
		msg = n.nodeMessage(iss, ErrorMapContext{DefaultError: msg, Data: data})
	}
	apply(callSite)
	return msg
}

// issueData flattens the detail fields of iss for a Translator.
func issueData(iss Issue) map[string]string {
	d := map[string]string{}
	switch iss.Code {
	case CodeInvalidLiteral:
		d["expected"] = stringify(iss.Expected)
		d["received"] = stringify(iss.Received)
	default:
		if iss.Expected != nil {
			d["expected"] = fmt.Sprint(iss.Expected)
		}
		if iss.Received != nil {
			d["received"] = fmt.Sprint(iss.Received)
		}
	}
	if len(iss.Keys) > 0 {
		keys := make([]any, len(iss.Keys))
		for i, k := range iss.Keys {
			keys[i] = k
		}
		d["keys"] = joinValues(keys, ", ")
	}
	if len(iss.Options) > 0 {
		d["options"] = joinValues(iss.Options, " | ")
	}
	if iss.Validation != "" {
		d["validation"] = string(iss.Validation)
	}
	if iss.Substring != "" {
		d["substring"] = iss.Substring
	}
	if iss.Position != nil {
		d["position"] = strconv.Itoa(*iss.Position)
	}
	if iss.Minimum != nil {
		d["minimum"] = formatBound(iss.Minimum)
	}
	if iss.Maximum != nil {
		d["maximum"] = formatBound(iss.Maximum)
	}
	if iss.MultipleOf != nil {
		d["multipleOf"] = formatBound(iss.MultipleOf)
	}
	d["inclusive"] = strconv.FormatBool(iss.Inclusive)
	d["exact"] = strconv.FormatBool(iss.Exact)
	if iss.Type != "" {
		d["type"] = iss.Type
	}
	if ref, ok := iss.Params["reference"].(string); ok {
		d["reference"] = ref
	}
	return d
}

// joinValues renders values the way messages list them: strings quoted with
// single quotes, everything else verbatim.
func joinValues(values []any, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			parts[i] = "'" + s + "'"
			continue
		}
		parts[i] = formatValue(v)
	}
	return strings.Join(parts, sep)
}

func formatBound(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *big.Int:
		return t.String()
	}
	return formatValue(v)
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

// stringify renders a literal as JSON text; big integers and values JSON cannot
// encode fall back to their Go formatting.
func stringify(v any) string {
	switch t := v.(type) {
	case UndefinedType:
		return "undefined"
	case *big.Int:
		return `"` + t.String() + `"`
	case *SymbolValue:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return formatValue(v)
	}
	return string(b)
}
