package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	en := For("en")
	if msg := en.Message("invalid_type", map[string]string{"expected": "string", "received": "number"}); msg != "Expected string, received number" {
		t.Fatalf("unexpected en message %q", msg)
	}
	ja := For("ja")
	if msg := ja.Message("invalid_type", map[string]string{"received": "undefined"}); msg != "必須です" {
		t.Fatalf("expected japanese message, got %q", msg)
	}
	// unsupported falls back to en
	assert.Equal(t, "Required", T("fr", "invalid_type", map[string]string{"received": "undefined"}))
	assert.Equal(t, "unknown_code", T("en", "unknown_code", nil))
}

func TestTranslator_Bounds(t *testing.T) {
	cases := []struct {
		code string
		data map[string]string
		want string
	}{
		{"too_small", map[string]string{"type": "array", "minimum": "2", "inclusive": "true"}, "Array must contain at least 2 element(s)"},
		{"too_small", map[string]string{"type": "string", "minimum": "3", "exact": "true"}, "String must contain exactly 3 character(s)"},
		{"too_big", map[string]string{"type": "string", "maximum": "3"}, "String must contain under 3 character(s)"},
		{"too_big", map[string]string{"type": "number", "maximum": "10", "inclusive": "true"}, "Number must be less than or equal to 10"},
		{"too_small", map[string]string{"type": "number", "minimum": "0"}, "Number must be greater than 0"},
		{"too_big", map[string]string{"type": "date", "maximum": "2020-01-01", "inclusive": "true"}, "Date must be smaller than or equal to 2020-01-01"},
		{"invalid_string", map[string]string{"validation": "email"}, "Invalid email"},
		{"invalid_string", map[string]string{"validation": "regex"}, "Invalid"},
		{"invalid_string", map[string]string{"validation": "includes", "substring": "x", "position": "2"}, `Invalid input: must include "x" at one or more positions greater than or equal to 2`},
		{"not_multiple_of", map[string]string{"multipleOf": "5"}, "Number must be a multiple of 5"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, For("en").Message(tc.code, tc.data), tc.code)
	}
}

func TestMatch(t *testing.T) {
	cases := map[string]string{
		"ja_JP.UTF-8": "ja",
		"en_US":       "en",
		"ja":          "ja",
		"en-GB":       "en",
	}
	for in, want := range cases {
		got, ok := Match(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "C", "POSIX", "not a locale!"} {
		_, ok := Match(in)
		assert.False(t, ok, in)
	}
}

func TestResolveLocale(t *testing.T) {
	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}
	assert.Equal(t, "en", ResolveLocale(env(nil)))
	assert.Equal(t, "ja", ResolveLocale(env(map[string]string{"LANG": "ja_JP.UTF-8"})))
	assert.Equal(t, "en", ResolveLocale(env(map[string]string{"SKEMA_LOCALE": "en", "LANG": "ja_JP.UTF-8"})))
	// C locale is skipped, not treated as a match
	assert.Equal(t, "ja", ResolveLocale(env(map[string]string{"LC_ALL": "C", "LC_MESSAGES": "ja_JP"})))
}
