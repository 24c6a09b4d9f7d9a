package i18n

import (
	"os"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Supported lists the languages with built-in messages. The first entry is
// the fallback.
var Supported = []string{"en", "ja"}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Japanese})

// localeEnv is consulted in order; the first variable naming a supported
// language wins.
var localeEnv = []string{"SKEMA_LOCALE", "LC_ALL", "LC_MESSAGES", "LANG"}

var defaultLocale = sync.OnceValue(func() string { return ResolveLocale(os.Getenv) })

// DefaultLocale returns the locale resolved from the environment. It is
// computed once per process.
func DefaultLocale() string { return defaultLocale() }

// ResolveLocale walks SKEMA_LOCALE, LC_ALL, LC_MESSAGES and LANG through getenv
// and returns the first supported language, or "en".
func ResolveLocale(getenv func(string) string) string {
	for _, key := range localeEnv {
		if lang, ok := Match(getenv(key)); ok {
			return lang
		}
	}
	return Supported[0]
}

// Match maps a POSIX or BCP 47 locale string (e.g. "ja_JP.UTF-8", "en-US") to
// a supported language.
func Match(s string) (string, bool) {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	if s == "" || s == "C" || s == "POSIX" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", false
	}
	return Supported[idx], true
}
