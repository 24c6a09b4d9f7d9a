// Package literal renders Go values as Go source expressions.
package literal

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/reoring/skema"
)

// ErrUnsupported is returned for values with no source form.
var ErrUnsupported = errors.New("literal: unsupported value")

// Encoder renders values. Imports collects the import paths the rendered
// expressions need besides the skema package itself.
type Encoder struct {
	// Qualifier prefixes skema identifiers such as Undefined. Empty means
	// unqualified.
	Qualifier string
	Imports   map[string]bool
}

// NewEncoder returns an Encoder using qualifier for skema identifiers.
func NewEncoder(qualifier string) *Encoder {
	return &Encoder{Qualifier: qualifier, Imports: map[string]bool{}}
}

// Encode renders v with the "skema" qualifier.
func Encode(v any) (string, error) { return NewEncoder("skema").Encode(v) }

func (e *Encoder) q(name string) string {
	if e.Qualifier == "" {
		return name
	}
	return e.Qualifier + "." + name
}

func (e *Encoder) use(path string) {
	if e.Imports != nil {
		e.Imports[path] = true
	}
}

// Encode renders v. Strings are quoted; integers and booleans are written
// verbatim; floats always carry a decimal point or exponent so that they
// stay float64.
func (e *Encoder) Encode(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "nil", nil
	case skema.UndefinedType:
		return e.q("Undefined"), nil
	case string:
		return strconv.Quote(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%T(%d)", t, t), nil
	case float64:
		return e.float(t, "")
	case float32:
		return e.float(float64(t), "float32")
	case *big.Int:
		e.use("math/big")
		if t.IsInt64() {
			return fmt.Sprintf("big.NewInt(%d)", t.Int64()), nil
		}
		return fmt.Sprintf("func() *big.Int { b, _ := new(big.Int).SetString(%q, 10); return b }()", t.String()), nil
	case time.Time:
		e.use("time")
		u := t.UTC()
		return fmt.Sprintf("time.Date(%d, %d, %d, %d, %d, %d, %d, time.UTC)",
			u.Year(), int(u.Month()), u.Day(), u.Hour(), u.Minute(), u.Second(), u.Nanosecond()), nil
	case *skema.SymbolValue:
		return e.q("NewSymbol") + "(" + strconv.Quote(t.Description()) + ")", nil
	case []any:
		return e.list("[]any", t)
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return e.list("[]string", items)
	case map[string]any:
		return e.dict("map[string]any", t)
	case skema.Metadata:
		return e.dict(e.q("Metadata"), t)
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupported, v)
}

func (e *Encoder) float(f float64, conv string) (string, error) {
	var s string
	switch {
	case math.IsNaN(f):
		e.use("math")
		s = "math.NaN()"
	case math.IsInf(f, 1):
		e.use("math")
		s = "math.Inf(1)"
	case math.IsInf(f, -1):
		e.use("math")
		s = "math.Inf(-1)"
	default:
		s = strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
	}
	if conv != "" {
		return conv + "(" + s + ")", nil
	}
	return s, nil
}

func (e *Encoder) list(typ string, items []any) (string, error) {
	parts := make([]string, len(items))
	for i, it := range items {
		s, err := e.Encode(it)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return typ + "{" + strings.Join(parts, ", ") + "}", nil
}

func (e *Encoder) dict(typ string, m map[string]any) (string, error) {
	keys := slices.Sorted(maps.Keys(m))
	parts := make([]string, len(keys))
	for i, k := range keys {
		s, err := e.Encode(m[k])
		if err != nil {
			return "", err
		}
		parts[i] = strconv.Quote(k) + ": " + s
	}
	return typ + "{" + strings.Join(parts, ", ") + "}", nil
}
