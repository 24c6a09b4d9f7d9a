package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	"github.com/reoring/skema/rules"
)

func orderSchema() *skema.Node {
	item := skema.Object(
		skema.Prop("sku", skema.String()),
		skema.Prop("qty", skema.Number().Int()),
	)
	return skema.Object(
		skema.Prop("status", skema.Enum("QUOTE", "CONFIRMED")),
		skema.Prop("items", skema.Array(item)),
	).SuperRefine(rules.Apply(
		rules.If("/status", rules.Eq, "CONFIRMED").Then(rules.AtLeastOne("/items")),
		rules.UniqueBy("/items", "sku"),
	))
}

func order(status string, skus ...string) map[string]any {
	items := make([]any, len(skus))
	for i, s := range skus {
		items[i] = map[string]any{"sku": s, "qty": 1}
	}
	return map[string]any{"status": status, "items": items}
}

func issuesOf(t *testing.T, err error) skema.Issues {
	t.Helper()
	iss, ok := skema.AsIssues(err)
	require.True(t, ok, "expected issues, got %v", err)
	return iss
}

func TestApply_ConditionalAtLeastOne(t *testing.T) {
	ctx := context.Background()
	_, err := orderSchema().Parse(ctx, order("QUOTE"))
	require.NoError(t, err)

	_, err = orderSchema().Parse(ctx, order("CONFIRMED"))
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeTooSmall, iss[0].Code)
	assert.Equal(t, skema.Path{"items"}, iss[0].Path)
	assert.Equal(t, "at least 1 item is required", iss[0].Message)
}

func TestUniqueBy(t *testing.T) {
	_, err := orderSchema().Parse(context.Background(), order("QUOTE", "a", "b", "a", "a"))
	iss := issuesOf(t, err)
	require.Len(t, iss, 2)
	assert.Equal(t, skema.Path{"items", 2, "sku"}, iss[0].Path)
	assert.Equal(t, skema.Path{"items", 3, "sku"}, iss[1].Path)
	assert.Equal(t, 0, iss[0].Params["first"])
	assert.Equal(t, "a", iss[0].Params["key"])
}

func TestApply_FailFast(t *testing.T) {
	ctx := skema.WithFailFast(context.Background(), true)
	_, err := orderSchema().Parse(ctx, order("QUOTE", "a", "a", "a"))
	assert.Len(t, issuesOf(t, err), 1)
}

func TestConditional_Composites(t *testing.T) {
	v := map[string]any{"kind": "pro", "seats": 12.0, "region": "eu"}
	cases := []struct {
		name string
		cond rules.Conditional
		want bool
	}{
		{"eq", rules.If("kind", rules.Eq, "pro"), true},
		{"ne", rules.If("kind", rules.Ne, "pro"), false},
		{"numeric across kinds", rules.If("/seats", rules.Eq, 12), true},
		{"gt", rules.If("/seats", rules.Gt, 10), true},
		{"le", rules.If("/seats", rules.Le, 11.5), false},
		{"string order", rules.If("/region", rules.Lt, "us"), true},
		{"missing path", rules.If("/plan", rules.Eq, nil), false},
		{"and", rules.If("/kind", rules.Eq, "pro").And(rules.If("/seats", rules.Ge, 12)), true},
		{"and fails", rules.IfAll(rules.If("/kind", rules.Eq, "pro"), rules.If("/seats", rules.Lt, 5)), false},
		{"or", rules.If("/kind", rules.Eq, "free").Or(rules.If("/region", rules.Eq, "eu")), true},
		{"any fails", rules.IfAny(rules.If("/kind", rules.Eq, "free")), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cond.Holds(v))
		})
	}
}

func TestOr_ReturnsSmallestFailure(t *testing.T) {
	one := func(v any, _ *skema.RefineCtx) []skema.Issue { return []skema.Issue{{Message: "one"}} }
	two := func(v any, _ *skema.RefineCtx) []skema.Issue { return []skema.Issue{{Message: "a"}, {Message: "b"}} }
	ok := func(v any, _ *skema.RefineCtx) []skema.Issue { return nil }

	assert.Nil(t, rules.Or(two, ok)(nil, nil))
	got := rules.Or(two, one)(nil, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "one", got[0].Message)
	assert.Len(t, rules.And(one, nil, two)(nil, nil), 3)
}

func TestLookup(t *testing.T) {
	type line struct {
		SKU string `json:"sku"`
		Qty *int   `skema:"name=quantity"`
	}
	type doc struct {
		Lines []line `json:"lines"`
		Tags  map[string]string
	}
	qty := 3
	v := &doc{Lines: []line{{SKU: "x", Qty: &qty}}, Tags: map[string]string{"a/b": "c"}}

	got, ok := rules.Lookup(v, rules.ParsePointer("/lines/0/quantity"))
	require.True(t, ok)
	assert.Equal(t, 3, got)

	got, ok = rules.Lookup(v, rules.ParsePointer("/Tags/a~1b"))
	require.True(t, ok)
	assert.Equal(t, "c", got)

	_, ok = rules.Lookup(v, rules.ParsePointer("/lines/1/sku"))
	assert.False(t, ok)
	_, ok = rules.Lookup(v, rules.ParsePointer("/lines/x"))
	assert.False(t, ok)
}
