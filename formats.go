package skema

import (
	"fmt"
	"net/netip"
	"net/url"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	cuidRegex   = regexp.MustCompile(`(?i)^c[^\s-]{8,}$`)
	cuid2Regex  = regexp.MustCompile(`^[0-9a-z]+$`)
	ulidRegex   = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)
	uuidRegex   = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	nanoidRegex = regexp.MustCompile(`(?i)^[a-z0-9_-]{21}$`)
	emailRegex  = regexp.MustCompile(`(?i)^[A-Z0-9_'+\-.]*[A-Z0-9_+-]@(?:[A-Z0-9][A-Z0-9\-]*\.)+[A-Z]{2,}$`)
	emojiRegex  = regexp.MustCompile(`^(?:[\p{So}\p{Sk}#*0-9\x{200D}\x{FE0F}\x{20E3}\x{1F3FB}-\x{1F3FF}\x{1F1E6}-\x{1F1FF}\x{E0020}-\x{E007F}])+$`)
	base64Regex = regexp.MustCompile(`^(?:[0-9a-zA-Z+/]{4})*(?:[0-9a-zA-Z+/]{2}==|[0-9a-zA-Z+/]{3}=)?$`)

	durationUnit  = `(?:[-+]?\d+(?:[.,]\d+)?%s)?`
	durationRegex = regexp.MustCompile(`^[-+]?P` +
		fmt.Sprintf(durationUnit, "Y") + fmt.Sprintf(durationUnit, "M") +
		fmt.Sprintf(durationUnit, "W") + fmt.Sprintf(durationUnit, "D") +
		`(?:T` + fmt.Sprintf(durationUnit, "H") + fmt.Sprintf(durationUnit, "M") +
		fmt.Sprintf(durationUnit, "S") + `)?$`)
)

const dateRegexSource = `(?:(?:\d\d[2468][048]|\d\d[13579][26]|\d\d0[48]|[02468][048]00|[13579][26]00)-02-29|\d{4}-(?:(?:0[13578]|1[02])-(?:0[1-9]|[12]\d|3[01])|(?:0[469]|11)-(?:0[1-9]|[12]\d|30)|02-(?:0[1-9]|1\d|2[0-8])))`

var dateRegex = regexp.MustCompile(`^` + dateRegexSource + `$`)

func timeRegexSource(precision *int) string {
	src := `(?:[01]\d|2[0-3]):[0-5]\d:[0-5]\d`
	switch {
	case precision == nil:
		src += `(?:\.\d+)?`
	case *precision > 0:
		src += fmt.Sprintf(`\.\d{%d}`, *precision)
	}
	return src
}

func timeRegex(c Check) *regexp.Regexp {
	return regexp.MustCompile(`^` + timeRegexSource(c.Precision) + `$`)
}

func datetimeRegex(c Check) *regexp.Regexp {
	src := dateRegexSource + `T` + timeRegexSource(c.Precision)
	opts := []string{"Z"}
	if c.Local {
		opts[0] = "Z?"
	}
	if c.Offset {
		opts = append(opts, `[+-]\d{2}:?\d{2}`)
	}
	return regexp.MustCompile(`^` + src + `(?:` + strings.Join(opts, "|") + `)$`)
}

func isEmail(s string) bool {
	return !strings.HasPrefix(s, ".") && !strings.Contains(s, "..") && emailRegex.MatchString(s)
}

// isDuration accepts ISO 8601 durations. "P" and a trailing "T" carry no
// component and are rejected.
func isDuration(s string) bool {
	if !durationRegex.MatchString(s) {
		return false
	}
	body := strings.TrimLeft(s, "+-")
	return body != "P" && !strings.HasSuffix(s, "T")
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}

func isIP(s, version string) bool {
	addr, err := netip.ParseAddr(s)
	if err != nil || addr.Zone() != "" {
		return false
	}
	switch version {
	case "v4":
		return addr.Is4()
	case "v6":
		return addr.Is6()
	}
	return true
}

func isCIDR(s, version string) bool {
	pfx, err := netip.ParsePrefix(s)
	if err != nil {
		return false
	}
	switch version {
	case "v4":
		return pfx.Addr().Is4()
	case "v6":
		return pfx.Addr().Is6()
	}
	return true
}

func isSemver(s string) bool {
	_, err := semver.StrictNewVersion(s)
	return err == nil
}

// matchFormat reports whether s satisfies the format check c. ok is false for
// kinds that are not formats.
func matchFormat(c Check, s string) (match, ok bool) {
	switch c.Kind {
	case CheckEmail:
		return isEmail(s), true
	case CheckURL:
		return isURL(s), true
	case CheckEmoji:
		return emojiRegex.MatchString(s), true
	case CheckUUID:
		return uuidRegex.MatchString(s), true
	case CheckNanoID:
		return nanoidRegex.MatchString(s), true
	case CheckCUID:
		return cuidRegex.MatchString(s), true
	case CheckCUID2:
		return cuid2Regex.MatchString(s), true
	case CheckULID:
		return ulidRegex.MatchString(s), true
	case CheckRegex:
		return c.Regex.MatchString(s), true
	case CheckDatetime:
		return datetimeRegex(c).MatchString(s), true
	case CheckDate:
		return dateRegex.MatchString(s), true
	case CheckTime:
		return timeRegex(c).MatchString(s), true
	case CheckDuration:
		return isDuration(s), true
	case CheckIP:
		return isIP(s, c.Version), true
	case CheckCIDR:
		return isCIDR(s, c.Version), true
	case CheckBase64:
		return base64Regex.MatchString(s), true
	case CheckSemver:
		return isSemver(s), true
	}
	return false, false
}

// FormatPattern returns the regular expression behind a format check that
// has no JSON-Schema "format" of its own.
func FormatPattern(c Check) (string, bool) {
	switch c.Kind {
	case CheckEmoji:
		return emojiRegex.String(), true
	case CheckNanoID:
		return nanoidRegex.String(), true
	case CheckCUID:
		return cuidRegex.String(), true
	case CheckCUID2:
		return cuid2Regex.String(), true
	case CheckULID:
		return ulidRegex.String(), true
	case CheckRegex:
		return c.Regex.String(), true
	}
	return "", false
}
