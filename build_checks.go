package skema

import (
	"math"
	"math/big"
	"regexp"
	"slices"
	"time"
)

// withCheck appends c to the checks of a string, number, bigint or date node.
// Array and set bounds replace the previous check of the same kind.
func (n *Node) withCheck(op string, c Check) *Node {
	switch d := n.def.(type) {
	case *StringDef:
		nd := *d
		nd.Checks = appendCheck(d.Checks, c)
		return n.derive(n.kind, &nd)
	case *NumberDef:
		nd := *d
		nd.Checks = appendCheck(d.Checks, c)
		return n.derive(n.kind, &nd)
	case *BigIntDef:
		nd := *d
		nd.Checks = appendCheck(d.Checks, c)
		return n.derive(n.kind, &nd)
	case *DateDef:
		nd := *d
		nd.Checks = appendCheck(d.Checks, c)
		return n.derive(n.kind, &nd)
	case *ArrayDef:
		nd := *d
		nd.Checks = replaceCheck(d.Checks, c)
		return n.derive(n.kind, &nd)
	case *SetDef:
		nd := *d
		nd.Checks = replaceCheck(d.Checks, c)
		return n.derive(n.kind, &nd)
	}
	panic(misapplied(op, n))
}

func toInt(op string, v any) int {
	f, ok := asFloat(v)
	if !ok || f != math.Trunc(f) {
		panic("skema: " + op + " needs an integer bound")
	}
	return int(f)
}

func toFloat(op string, v any) float64 {
	f, ok := asFloat(v)
	if !ok {
		panic("skema: " + op + " needs a numeric bound")
	}
	return f
}

func toBig(op string, v any) *big.Int {
	b, ok := asBigInt(v)
	if !ok {
		panic("skema: " + op + " needs an integral bound")
	}
	return new(big.Int).Set(b)
}

func toTime(op string, v any) time.Time {
	t, ok := v.(time.Time)
	if !ok {
		panic("skema: " + op + " needs a time.Time bound")
	}
	return t
}

// bound builds the min/max check for n's kind.
func (n *Node) bound(op string, kind CheckKind, v any, inclusive bool, msg []string) *Node {
	c := Check{Kind: kind, Inclusive: inclusive, Message: firstMessage(msg)}
	switch n.def.(type) {
	case *StringDef, *ArrayDef, *SetDef:
		c.Value, c.Inclusive = toInt(op, v), true
	case *NumberDef:
		c.Value = toFloat(op, v)
	case *BigIntDef:
		c.Value = toBig(op, v)
	case *DateDef:
		c.Value, c.Inclusive = toTime(op, v), true
	default:
		panic(misapplied(op, n))
	}
	return n.withCheck(op, c)
}

// Min sets the inclusive lower bound: a length for strings, arrays and sets,
// a value for numbers, bigints and dates.
func (n *Node) Min(v any, msg ...string) *Node { return n.bound("Min", CheckMin, v, true, msg) }

// Max sets the inclusive upper bound; see Min.
func (n *Node) Max(v any, msg ...string) *Node { return n.bound("Max", CheckMax, v, true, msg) }

func (n *Node) Gte(v any, msg ...string) *Node { return n.Min(v, msg...) }
func (n *Node) Lte(v any, msg ...string) *Node { return n.Max(v, msg...) }

// Gt sets an exclusive lower bound on a number or bigint.
func (n *Node) Gt(v any, msg ...string) *Node {
	return n.numeric("Gt").bound("Gt", CheckMin, v, false, msg)
}

// Lt sets an exclusive upper bound on a number or bigint.
func (n *Node) Lt(v any, msg ...string) *Node {
	return n.numeric("Lt").bound("Lt", CheckMax, v, false, msg)
}

func (n *Node) Positive(msg ...string) *Node    { return n.Gt(0, msg...) }
func (n *Node) Nonnegative(msg ...string) *Node { return n.Gte(0, msg...) }
func (n *Node) Negative(msg ...string) *Node    { return n.Lt(0, msg...) }
func (n *Node) Nonpositive(msg ...string) *Node { return n.Lte(0, msg...) }

func (n *Node) numeric(op string) *Node {
	switch n.def.(type) {
	case *NumberDef, *BigIntDef:
		return n
	}
	panic(misapplied(op, n))
}

// Length requires an exact length (strings, arrays).
func (n *Node) Length(size int, msg ...string) *Node {
	switch n.def.(type) {
	case *StringDef, *ArrayDef:
		return n.withCheck("Length", Check{Kind: CheckLength, Value: size, Message: firstMessage(msg)})
	}
	panic(misapplied("Length", n))
}

// Size requires an exact number of set elements.
func (n *Node) Size(size int, msg ...string) *Node {
	mustDef[*SetDef](n, "Size")
	return n.Min(size, msg...).Max(size, msg...)
}

// Nonempty requires at least one element or character.
func (n *Node) Nonempty(msg ...string) *Node { return n.Min(1, msg...) }

func (n *Node) Int(msg ...string) *Node {
	mustDef[*NumberDef](n, "Int")
	return n.withCheck("Int", Check{Kind: CheckInt, Message: firstMessage(msg)})
}

func (n *Node) Finite(msg ...string) *Node {
	mustDef[*NumberDef](n, "Finite")
	return n.withCheck("Finite", Check{Kind: CheckFinite, Message: firstMessage(msg)})
}

// Safe bounds a number to the range exactly representable as a float64
// integer.
func (n *Node) Safe(msg ...string) *Node {
	const maxSafe = 1<<53 - 1
	return n.Gte(-maxSafe, msg...).Lte(maxSafe, msg...)
}

func (n *Node) MultipleOf(v any, msg ...string) *Node {
	c := Check{Kind: CheckMultipleOf, Message: firstMessage(msg)}
	switch n.def.(type) {
	case *NumberDef:
		c.Value = toFloat("MultipleOf", v)
	case *BigIntDef:
		c.Value = toBig("MultipleOf", v)
	default:
		panic(misapplied("MultipleOf", n))
	}
	return n.withCheck("MultipleOf", c)
}

func (n *Node) stringCheck(op string, c Check) *Node {
	mustDef[*StringDef](n, op)
	return n.withCheck(op, c)
}

func (n *Node) format(op string, kind CheckKind, msg []string) *Node {
	return n.stringCheck(op, Check{Kind: kind, Message: firstMessage(msg)})
}

func (n *Node) Email(msg ...string) *Node  { return n.format("Email", CheckEmail, msg) }
func (n *Node) URL(msg ...string) *Node    { return n.format("URL", CheckURL, msg) }
func (n *Node) Emoji(msg ...string) *Node  { return n.format("Emoji", CheckEmoji, msg) }
func (n *Node) UUID(msg ...string) *Node   { return n.format("UUID", CheckUUID, msg) }
func (n *Node) NanoID(msg ...string) *Node { return n.format("NanoID", CheckNanoID, msg) }
func (n *Node) CUID(msg ...string) *Node   { return n.format("CUID", CheckCUID, msg) }
func (n *Node) CUID2(msg ...string) *Node  { return n.format("CUID2", CheckCUID2, msg) }
func (n *Node) ULID(msg ...string) *Node   { return n.format("ULID", CheckULID, msg) }
func (n *Node) Base64(msg ...string) *Node { return n.format("Base64", CheckBase64, msg) }
func (n *Node) Semver(msg ...string) *Node { return n.format("Semver", CheckSemver, msg) }

// DateString requires an ISO 8601 calendar date (YYYY-MM-DD).
func (n *Node) DateString(msg ...string) *Node { return n.format("DateString", CheckDate, msg) }

// Duration requires an ISO 8601 duration.
func (n *Node) Duration(msg ...string) *Node { return n.format("Duration", CheckDuration, msg) }

func (n *Node) Regex(re *regexp.Regexp, msg ...string) *Node {
	return n.stringCheck("Regex", Check{Kind: CheckRegex, Regex: re, Message: firstMessage(msg)})
}

func (n *Node) Includes(sub string, msg ...string) *Node {
	return n.stringCheck("Includes", Check{Kind: CheckIncludes, Value: sub, Message: firstMessage(msg)})
}

// IncludesAt requires sub at or after rune position pos.
func (n *Node) IncludesAt(sub string, pos int, msg ...string) *Node {
	return n.stringCheck("Includes", Check{Kind: CheckIncludes, Value: sub, Position: &pos, Message: firstMessage(msg)})
}

func (n *Node) StartsWith(prefix string, msg ...string) *Node {
	return n.stringCheck("StartsWith", Check{Kind: CheckStartsWith, Value: prefix, Message: firstMessage(msg)})
}

func (n *Node) EndsWith(suffix string, msg ...string) *Node {
	return n.stringCheck("EndsWith", Check{Kind: CheckEndsWith, Value: suffix, Message: firstMessage(msg)})
}

// DatetimeOpts configures Datetime and TimeString.
type DatetimeOpts struct {
	// Precision fixes the number of fractional second digits; nil allows any.
	Precision *int
	// Offset allows +hh:mm offsets besides Z.
	Offset bool
	// Local allows a missing zone designator.
	Local   bool
	Message string
}

// Digits returns a DatetimeOpts.Precision of n fractional digits.
func Digits(n int) *int { return &n }

// Datetime requires an ISO 8601 date-time.
func (n *Node) Datetime(opts ...DatetimeOpts) *Node {
	var o DatetimeOpts
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	return n.stringCheck("Datetime", Check{Kind: CheckDatetime, Precision: o.Precision, Offset: o.Offset, Local: o.Local, Message: o.Message})
}

// TimeString requires an ISO 8601 time of day (HH:MM:SS[.fff]).
func (n *Node) TimeString(opts ...DatetimeOpts) *Node {
	var o DatetimeOpts
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	return n.stringCheck("TimeString", Check{Kind: CheckTime, Precision: o.Precision, Message: o.Message})
}

// IPOpts restricts IP and CIDR checks to one version ("v4" or "v6").
type IPOpts struct {
	Version string
	Message string
}

func (n *Node) IP(opts ...IPOpts) *Node {
	var o IPOpts
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	return n.stringCheck("IP", Check{Kind: CheckIP, Version: o.Version, Message: o.Message})
}

func (n *Node) CIDR(opts ...IPOpts) *Node {
	var o IPOpts
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	return n.stringCheck("CIDR", Check{Kind: CheckCIDR, Version: o.Version, Message: o.Message})
}

func (n *Node) Trim() *Node        { return n.stringCheck("Trim", Check{Kind: CheckTrim}) }
func (n *Node) ToLowerCase() *Node { return n.stringCheck("ToLowerCase", Check{Kind: CheckToLower}) }
func (n *Node) ToUpperCase() *Node { return n.stringCheck("ToUpperCase", Check{Kind: CheckToUpper}) }

// Checks returns a copy of the checks of a string, number, bigint, date,
// array or set node.
func (n *Node) Checks() []Check {
	switch d := n.def.(type) {
	case *StringDef:
		return slices.Clone(d.Checks)
	case *NumberDef:
		return slices.Clone(d.Checks)
	case *BigIntDef:
		return slices.Clone(d.Checks)
	case *DateDef:
		return slices.Clone(d.Checks)
	case *ArrayDef:
		return slices.Clone(d.Checks)
	case *SetDef:
		return slices.Clone(d.Checks)
	}
	return nil
}
