package skema

import "regexp"

// CheckKind names a per-kind constraint.
type CheckKind string

const (
	CheckMin        CheckKind = "min"
	CheckMax        CheckKind = "max"
	CheckLength     CheckKind = "length"
	CheckEmail      CheckKind = "email"
	CheckURL        CheckKind = "url"
	CheckEmoji      CheckKind = "emoji"
	CheckUUID       CheckKind = "uuid"
	CheckNanoID     CheckKind = "nanoid"
	CheckCUID       CheckKind = "cuid"
	CheckCUID2      CheckKind = "cuid2"
	CheckULID       CheckKind = "ulid"
	CheckRegex      CheckKind = "regex"
	CheckIncludes   CheckKind = "includes"
	CheckStartsWith CheckKind = "startsWith"
	CheckEndsWith   CheckKind = "endsWith"
	CheckDatetime   CheckKind = "datetime"
	CheckDate       CheckKind = "date"
	CheckTime       CheckKind = "time"
	CheckDuration   CheckKind = "duration"
	CheckIP         CheckKind = "ip"
	CheckCIDR       CheckKind = "cidr"
	CheckBase64     CheckKind = "base64"
	CheckSemver     CheckKind = "semver"
	CheckTrim       CheckKind = "trim"
	CheckToLower    CheckKind = "toLowerCase"
	CheckToUpper    CheckKind = "toUpperCase"
	CheckInt        CheckKind = "int"
	CheckMultipleOf CheckKind = "multipleOf"
	CheckFinite     CheckKind = "finite"
)

// Check is one constraint of a string, number, bigint, date, array or set
// node. Which fields are meaningful depends on Kind:
//
//   - min/max: Value (int for lengths and sizes, float64 for numbers,
//     *big.Int for bigints, time.Time for dates) and Inclusive
//   - length: Value (int)
//   - regex: Regex
//   - includes: Value (string) and optional Position
//   - startsWith/endsWith: Value (string)
//   - datetime/time: Precision, Offset, Local
//   - ip/cidr: Version ("v4", "v6" or empty for both)
//   - multipleOf: Value
//
// Message is presentation only and is ignored by Equal.
type Check struct {
	Kind      CheckKind
	Value     any
	Inclusive bool
	Regex     *regexp.Regexp
	Position  *int
	Precision *int
	Offset    bool
	Local     bool
	Version   string
	Message   string
}

func appendCheck(checks []Check, c Check) []Check {
	out := make([]Check, 0, len(checks)+1)
	out = append(out, checks...)
	return append(out, c)
}

// replaceCheck drops every check of c.Kind and appends c. Array and set bounds
// hold one value per kind.
func replaceCheck(checks []Check, c Check) []Check {
	out := make([]Check, 0, len(checks)+1)
	for _, it := range checks {
		if it.Kind != c.Kind {
			out = append(out, it)
		}
	}
	return append(out, c)
}

func findCheck(checks []Check, kind CheckKind) (Check, bool) {
	for _, c := range checks {
		if c.Kind == kind {
			return c, true
		}
	}
	return Check{}, false
}

func firstMessage(msg []string) string {
	if len(msg) > 0 {
		return msg[0]
	}
	return ""
}
