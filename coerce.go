package skema

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// The coerce* helpers follow the conversions a loosely typed form layer
// applies: String(x), Number(x), BigInt(x), Boolean(x) and new Date(x).

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	case UndefinedType:
		return "undefined"
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *big.Int:
		return t.String()
	}
	if f, ok := asFloat(v); ok {
		switch {
		case math.IsNaN(f):
			return "NaN"
		case math.IsInf(f, 1):
			return "Infinity"
		case math.IsInf(f, -1):
			return "-Infinity"
		}
	}
	return formatValue(v)
}

func coerceNumber(v any) any {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return float64(0)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case bool:
		if t {
			return float64(1)
		}
		return float64(0)
	case nil:
		return float64(0)
	case UndefinedType:
		return math.NaN()
	case time.Time:
		return float64(t.UnixMilli())
	case *big.Int:
		f, _ := new(big.Float).SetInt(t).Float64()
		return f
	}
	if _, ok := asFloat(v); ok {
		return v
	}
	return math.NaN()
}

func coerceBigInt(v any) (*big.Int, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return new(big.Int), true
		}
		return new(big.Int).SetString(s, 0)
	case bool:
		if t {
			return big.NewInt(1), true
		}
		return new(big.Int), true
	}
	return asBigInt(v)
}

func coerceBoolean(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil, UndefinedType:
		return false
	case string:
		return t != ""
	}
	if f, ok := asFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func coerceDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if tm, err := time.Parse(layout, s); err == nil {
				return tm, true
			}
		}
		return time.Time{}, false
	case nil:
		return time.UnixMilli(0).UTC(), true
	}
	if f, ok := asFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Time{}, false
}
