package skema

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

func (p *pass) parseString(n *Node, d *StringDef, input any) result {
	if d.Coerce {
		input = coerceString(input)
	}
	s, ok := input.(string)
	if !ok {
		return p.invalidType(n, TypeString, input)
	}
	var t tracker
	for _, c := range d.Checks {
		if iss, failed := checkString(c, &s); failed {
			p.add(n, s, iss)
			t.dirty()
		}
	}
	return t.result(s)
}

// checkString applies c to *s. Transform checks rewrite *s in place.
func checkString(c Check, s *string) (Issue, bool) {
	size := func() int { return utf8.RuneCountInString(*s) }
	switch c.Kind {
	case CheckMin:
		if size() < c.Value.(int) {
			return Issue{Code: CodeTooSmall, Minimum: c.Value, Type: "string", Inclusive: true, Message: c.Message}, true
		}
	case CheckMax:
		if size() > c.Value.(int) {
			return Issue{Code: CodeTooBig, Maximum: c.Value, Type: "string", Inclusive: true, Message: c.Message}, true
		}
	case CheckLength:
		want := c.Value.(int)
		switch got := size(); {
		case got > want:
			return Issue{Code: CodeTooBig, Maximum: c.Value, Type: "string", Inclusive: true, Exact: true, Message: c.Message}, true
		case got < want:
			return Issue{Code: CodeTooSmall, Minimum: c.Value, Type: "string", Inclusive: true, Exact: true, Message: c.Message}, true
		}
	case CheckIncludes:
		sub := c.Value.(string)
		hay := *s
		if c.Position != nil {
			runes := []rune(hay)
			if *c.Position < len(runes) {
				hay = string(runes[max(*c.Position, 0):])
			} else {
				hay = ""
			}
		}
		if !strings.Contains(hay, sub) {
			return Issue{Code: CodeInvalidString, Validation: CheckIncludes, Substring: sub, Position: c.Position, Message: c.Message}, true
		}
	case CheckStartsWith:
		if sub := c.Value.(string); !strings.HasPrefix(*s, sub) {
			return Issue{Code: CodeInvalidString, Validation: CheckStartsWith, Substring: sub, Message: c.Message}, true
		}
	case CheckEndsWith:
		if sub := c.Value.(string); !strings.HasSuffix(*s, sub) {
			return Issue{Code: CodeInvalidString, Validation: CheckEndsWith, Substring: sub, Message: c.Message}, true
		}
	case CheckTrim:
		*s = strings.TrimSpace(*s)
	case CheckToLower:
		*s = strings.ToLower(*s)
	case CheckToUpper:
		*s = strings.ToUpper(*s)
	default:
		if match, ok := matchFormat(c, *s); ok && !match {
			return Issue{Code: CodeInvalidString, Validation: c.Kind, Message: c.Message}, true
		}
	}
	return Issue{}, false
}

func (p *pass) parseNumber(n *Node, d *NumberDef, input any) result {
	if d.Coerce {
		input = coerceNumber(input)
	}
	if TypeOf(input) != TypeNumber {
		return p.invalidType(n, TypeNumber, input)
	}
	f, _ := asFloat(input)
	var t tracker
	for _, c := range d.Checks {
		if iss, failed := checkNumber(c, f); failed {
			p.add(n, input, iss)
			t.dirty()
		}
	}
	return t.result(input)
}

func checkNumber(c Check, f float64) (Issue, bool) {
	switch c.Kind {
	case CheckInt:
		if math.IsInf(f, 0) || f != math.Trunc(f) {
			return Issue{Code: CodeInvalidType, Expected: TypeInteger, Received: TypeFloat, Message: c.Message}, true
		}
	case CheckMin:
		bound := c.Value.(float64)
		if (c.Inclusive && f < bound) || (!c.Inclusive && f <= bound) {
			return Issue{Code: CodeTooSmall, Minimum: bound, Type: "number", Inclusive: c.Inclusive, Message: c.Message}, true
		}
	case CheckMax:
		bound := c.Value.(float64)
		if (c.Inclusive && f > bound) || (!c.Inclusive && f >= bound) {
			return Issue{Code: CodeTooBig, Maximum: bound, Type: "number", Inclusive: c.Inclusive, Message: c.Message}, true
		}
	case CheckMultipleOf:
		step := c.Value.(float64)
		if floatSafeRemainder(f, step) != 0 {
			return Issue{Code: CodeNotMultipleOf, MultipleOf: step, Message: c.Message}, true
		}
	case CheckFinite:
		if math.IsInf(f, 0) {
			return Issue{Code: CodeNotFinite, Message: c.Message}, true
		}
	}
	return Issue{}, false
}

func decimals(f float64) int {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// floatSafeRemainder computes val % step on scaled integers so that e.g.
// 0.3 % 0.1 is 0.
func floatSafeRemainder(val, step float64) float64 {
	if step == 0 {
		return math.NaN()
	}
	dec := max(decimals(val), decimals(step))
	if dec > 15 {
		return math.Mod(val, step)
	}
	scale := math.Pow10(dec)
	vi := math.Round(val * scale)
	si := math.Round(step * scale)
	if math.Abs(vi) > 1<<53 || si == 0 {
		return math.Mod(val, step)
	}
	return math.Mod(vi, si) / scale
}

func (p *pass) parseBigInt(n *Node, d *BigIntDef, input any) result {
	var b *big.Int
	if d.Coerce {
		v, ok := coerceBigInt(input)
		if !ok {
			return p.invalidType(n, TypeBigInt, input)
		}
		b = v
	} else {
		v, ok := input.(*big.Int)
		if !ok || v == nil {
			return p.invalidType(n, TypeBigInt, input)
		}
		b = v
	}
	var t tracker
	for _, c := range d.Checks {
		bound := c.Value.(*big.Int)
		var iss Issue
		failed := false
		switch c.Kind {
		case CheckMin:
			cmp := b.Cmp(bound)
			if (c.Inclusive && cmp < 0) || (!c.Inclusive && cmp <= 0) {
				iss, failed = Issue{Code: CodeTooSmall, Minimum: bound, Type: "bigint", Inclusive: c.Inclusive, Message: c.Message}, true
			}
		case CheckMax:
			cmp := b.Cmp(bound)
			if (c.Inclusive && cmp > 0) || (!c.Inclusive && cmp >= 0) {
				iss, failed = Issue{Code: CodeTooBig, Maximum: bound, Type: "bigint", Inclusive: c.Inclusive, Message: c.Message}, true
			}
		case CheckMultipleOf:
			if bound.Sign() != 0 && new(big.Int).Rem(b, bound).Sign() != 0 {
				iss, failed = Issue{Code: CodeNotMultipleOf, MultipleOf: bound, Message: c.Message}, true
			}
		}
		if failed {
			p.add(n, b, iss)
			t.dirty()
		}
	}
	return t.result(b)
}

func (p *pass) parseBoolean(n *Node, d *BooleanDef, input any) result {
	if d.Coerce {
		input = coerceBoolean(input)
	}
	if _, ok := input.(bool); !ok {
		return p.invalidType(n, TypeBoolean, input)
	}
	return okResult(input)
}

func (p *pass) parseDate(n *Node, d *DateDef, input any) result {
	var tm time.Time
	if d.Coerce {
		v, ok := coerceDate(input)
		if !ok {
			p.add(n, input, Issue{Code: CodeInvalidDate})
			return abortedResult
		}
		tm = v
	} else {
		v, ok := input.(time.Time)
		if !ok {
			return p.invalidType(n, TypeDate, input)
		}
		tm = v
	}
	var t tracker
	for _, c := range d.Checks {
		bound := c.Value.(time.Time)
		switch c.Kind {
		case CheckMin:
			if tm.Before(bound) {
				p.add(n, tm, Issue{Code: CodeTooSmall, Minimum: bound, Type: "date", Inclusive: true, Message: c.Message})
				t.dirty()
			}
		case CheckMax:
			if tm.After(bound) {
				p.add(n, tm, Issue{Code: CodeTooBig, Maximum: bound, Type: "date", Inclusive: true, Message: c.Message})
				t.dirty()
			}
		}
	}
	return t.result(tm)
}

func (p *pass) parseEnum(n *Node, d *EnumDef, input any) result {
	options := make([]any, len(d.Values))
	for i, v := range d.Values {
		options[i] = v
	}
	s, ok := input.(string)
	if !ok {
		p.add(n, input, Issue{Code: CodeInvalidType, Expected: joinValues(options, " | "), Received: TypeOf(input)})
		return abortedResult
	}
	for _, v := range d.Values {
		if v == s {
			return okResult(s)
		}
	}
	p.add(n, input, Issue{Code: CodeInvalidEnumValue, Received: s, Options: options})
	return abortedResult
}

func (p *pass) parseNativeEnum(n *Node, d *NativeEnumDef, input any) result {
	options := make([]any, len(d.Members))
	for i, m := range d.Members {
		options[i] = m.Value
	}
	if pt := TypeOf(input); pt != TypeString && pt != TypeNumber {
		p.add(n, input, Issue{Code: CodeInvalidType, Expected: joinValues(options, " | "), Received: pt})
		return abortedResult
	}
	for _, m := range d.Members {
		if sameLiteral(m.Value, input) {
			return okResult(input)
		}
	}
	p.add(n, input, Issue{Code: CodeInvalidEnumValue, Received: input, Options: options})
	return abortedResult
}
