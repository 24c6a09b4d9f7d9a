package skema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
)

func suffix(s string) skema.ErrorMap {
	return func(iss skema.Issue, ctx skema.ErrorMapContext) string {
		return ctx.DefaultError + s
	}
}

func TestErrorMap_Chain(t *testing.T) {
	cfg := skema.NewConfig(skema.WithLocale("en"), skema.WithErrorMap(suffix("|config")))
	n := skema.String().WithErrorMap(suffix("|node"))

	_, err := n.Parse(context.Background(), 1, skema.ParseOpt{Config: cfg, ErrorMap: suffix("|call")})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "Expected string, received number|config|node|call", iss[0].Message)

	// An explicit check message wins over every map.
	_, err = skema.String().Min(3, "too short").WithErrorMap(suffix("|node")).
		Parse(context.Background(), "ab", skema.ParseOpt{Config: cfg, ErrorMap: suffix("|call")})
	iss, _ = skema.AsIssues(err)
	assert.Equal(t, "too short", iss[0].Message)
}

func TestErrorMap_EmptyKeepsDefault(t *testing.T) {
	n := skema.Number().WithErrorMap(func(skema.Issue, skema.ErrorMapContext) string { return "" })
	iss := parseIssues(t, n, "x")
	assert.Equal(t, "Expected number, received string", iss[0].Message)
}

func TestErrorMap_SeesInputData(t *testing.T) {
	var seen any
	n := skema.Number().WithErrorMap(func(_ skema.Issue, ctx skema.ErrorMapContext) string {
		seen = ctx.Data
		return ""
	})
	parseIssues(t, n, "raw")
	assert.Equal(t, "raw", seen)
}

func TestMessages(t *testing.T) {
	n := skema.Object(skema.Prop("name", skema.String().WithMessages(skema.Messages{
		Required:    "name is required",
		InvalidType: "name must be text",
	})))
	iss := parseIssues(t, n, map[string]any{})
	assert.Equal(t, "name is required", iss[0].Message)
	iss = parseIssues(t, n, map[string]any{"name": 1})
	assert.Equal(t, "name must be text", iss[0].Message)
}

func TestLocale(t *testing.T) {
	ja := skema.ParseOpt{Config: skema.NewConfig(skema.WithLocale("ja-JP"))}
	_, err := skema.Object(skema.Prop("a", skema.String())).Parse(context.Background(), map[string]any{}, ja)
	iss, _ := skema.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, "必須です", iss[0].Message)

	// Unsupported locales leave the configured language untouched.
	cfg := skema.NewConfig(skema.WithLocale("en"), skema.WithLocale("xx"))
	assert.Equal(t, "en", cfg.Locale)
}
