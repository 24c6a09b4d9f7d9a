package skema_test

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
)

func sampleNodes() map[string]*skema.Node {
	refine := func(v any) bool { return v != nil }
	return map[string]*skema.Node{
		"string":       skema.String().Min(1).Regex(regexp.MustCompile(`^a`)).Email().Trim(),
		"number":       skema.Number().Int().Positive().MultipleOf(2),
		"bigint":       skema.BigInt().Min(1),
		"date":         skema.Date().Min(time.Unix(0, 0)),
		"object":       skema.Object(skema.Prop("a", skema.String().Optional()), skema.Prop("b", skema.Boolean())).Strict(),
		"catchall":     skema.Object().Catchall(skema.Number()),
		"union":        skema.Union(skema.String(), skema.Null()),
		"du":           skema.DiscriminatedUnion("t", skema.Object(skema.Prop("t", skema.Literal(1))), skema.Object(skema.Prop("t", skema.Literal(2)))),
		"intersection": skema.Intersection(skema.Object(), skema.Object(skema.Prop("x", skema.Any()))),
		"tuple":        skema.Tuple(skema.String()).Rest(skema.Number()),
		"collections":  skema.Tuple(skema.SetOf(skema.String()).Max(3), skema.MapOf(skema.Number(), skema.Date()), skema.Record(skema.Enum("a"), skema.Void())),
		"wrappers":     skema.String().Nullish().Default("d").Catch("c").Brand("B").Readonly(),
		"effects":      skema.String().Refine(refine).Describe("refined"),
		"pipeline":     skema.Pipeline(skema.String(), skema.String().Min(2)),
		"function":     skema.Function().Args(skema.String()).Returns(skema.PromiseOf(skema.Number())),
		"enums":        skema.Union(skema.NativeEnum(skema.EnumMember{Name: "A", Value: 1}), skema.Literal(skema.Undefined)),
		"meta":         skema.Number().Title("n").WithMetadata(skema.Metadata{"l": []any{1}}),
	}
}

func TestEqual_Clone(t *testing.T) {
	for name, n := range sampleNodes() {
		t.Run(name, func(t *testing.T) {
			c := skema.Clone(n)
			assert.True(t, skema.Equal(n, c))
			assert.NotSame(t, n, c)
		})
	}
}

func TestEqual_Differences(t *testing.T) {
	cases := []struct {
		name string
		a, b *skema.Node
	}{
		{"kind", skema.String(), skema.Number()},
		{"check", skema.String().Min(1), skema.String().Min(2)},
		{"check order", skema.String().Min(1).Max(3), skema.String().Max(3).Min(1)},
		{"description", skema.String().Describe("a"), skema.String()},
		{"meta", skema.String().Title("a"), skema.String().Title("b")},
		{"unknown keys", skema.Object().Strict(), skema.Object()},
		{"prop order", skema.Object(skema.Prop("a", skema.Any()), skema.Prop("b", skema.Any())), skema.Object(skema.Prop("b", skema.Any()), skema.Prop("a", skema.Any()))},
		{"literal", skema.Literal(1), skema.Literal("1")},
		{"refinement", skema.String().Refine(func(any) bool { return true }), skema.String().Refine(func(any) bool { return false })},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, skema.Equal(tc.a, tc.b))
		})
	}
	assert.True(t, skema.Equal(skema.String().Min(1, "msg"), skema.String().Min(1)))
}

func TestEqual_Lazy(t *testing.T) {
	var tree *skema.Node
	get := func() *skema.Node { return tree }
	tree = skema.Object(skema.Prop("children", skema.Array(skema.Lazy(get))))
	assert.True(t, skema.Equal(tree, skema.Clone(tree)))
}

func TestDereference(t *testing.T) {
	defs := map[string]*skema.Node{
		"User": skema.Object(skema.Prop("id", skema.String())),
		"Tree": skema.Object(skema.Prop("kids", skema.Array(skema.Ref("Tree")))),
	}
	root := skema.Object(
		skema.Prop("owner", skema.Ref("User")),
		skema.Prop("tree", skema.Ref("Tree").Optional()),
		skema.Prop("other", skema.Ref("Missing")),
	)
	assert.Equal(t, []string{"User", "Tree", "Missing"}, skema.References(root))

	resolved := skema.Dereference(root, defs)
	assert.Equal(t, []string{"Missing"}, skema.References(resolved))
	assert.Len(t, skema.References(root), 3, "input is untouched")

	owner, ok := resolved.Property("owner")
	require.True(t, ok)
	assert.True(t, skema.Equal(defs["User"], owner))

	ctx := context.Background()
	tree := skema.Dereference(skema.Ref("Tree"), defs)
	_, err := tree.Parse(ctx, map[string]any{"kids": []any{map[string]any{"kids": []any{}}}})
	require.NoError(t, err)
	_, err = tree.Parse(ctx, map[string]any{"kids": []any{map[string]any{"kids": 1}}})
	iss, _ := skema.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.Path{"kids", 0, "kids"}, iss[0].Path)
}

//go:noinline
func minLen(n int) func(any) bool {
	return func(v any) bool {
		s, _ := v.(string)
		return len(s) >= n
	}
}

func TestEqual_ClosuresCompareByIdentity(t *testing.T) {
	short, long := minLen(3), minLen(100)
	a := skema.String().Refine(short)
	b := skema.String().Refine(long)
	assert.False(t, skema.Equal(a, b))
	assert.True(t, skema.Equal(a, skema.String().Refine(short)))
	assert.True(t, skema.Equal(a, skema.Clone(a)))

	ctx := context.Background()
	_, err := a.Parse(ctx, "hello")
	require.NoError(t, err)
	_, err = b.Parse(ctx, "hello")
	require.Error(t, err)
}

func TestEqual_NaNValues(t *testing.T) {
	nodes := map[string]*skema.Node{
		"literal": skema.Literal(math.NaN()),
		"default": skema.Number().Default(math.NaN()),
		"catch":   skema.Number().Catch(math.NaN()),
		"enum":    skema.NativeEnum(skema.EnumMember{Name: "N", Value: math.NaN()}),
	}
	for name, n := range nodes {
		t.Run(name, func(t *testing.T) {
			assert.True(t, skema.Equal(n, skema.Clone(n)))
		})
	}
	assert.False(t, skema.Equal(skema.Literal(math.NaN()), skema.Literal(1.0)))

	// Validation still never matches NaN.
	_, err := skema.Literal(math.NaN()).Parse(context.Background(), math.NaN())
	assert.Error(t, err)
}

func TestEqual_DereferencedLazy(t *testing.T) {
	defs := map[string]*skema.Node{"User": skema.Object(skema.Prop("id", skema.String()))}
	n := skema.Array(skema.Lazy(func() *skema.Node { return skema.Ref("User") }))
	resolved := skema.Dereference(n, defs)
	assert.False(t, skema.Equal(n, resolved))
	assert.True(t, skema.Equal(resolved, skema.Clone(resolved)))
	assert.Equal(t, []string{"User"}, skema.References(n))
	assert.Empty(t, skema.References(resolved))
}

// Run with -race: lazy cells of a dereferenced node resolve on the async
// workers.
func TestDereference_ConcurrentLazyResolution(t *testing.T) {
	const size = 50
	defs := map[string]*skema.Node{}
	props := make([]skema.Property, size)
	input := map[string]any{}
	for i := range size {
		name := fmt.Sprintf("D%d", i)
		defs[name] = skema.Object(
			skema.Prop("name", skema.String()),
			skema.Prop("next", skema.Ref(name).Optional()),
		)
		props[i] = skema.Prop(fmt.Sprintf("p%d", i), skema.Lazy(func() *skema.Node { return skema.Ref(name) }))
		input[fmt.Sprintf("p%d", i)] = map[string]any{"name": "a", "next": map[string]any{"name": "b"}}
	}
	root := skema.Dereference(skema.Object(props...), defs)

	ctx := context.Background()
	res := root.SafeParseAsync(ctx, input, skema.ParseOpt{MaxConcurrency: 8})
	require.True(t, res.Success, "%v", res.Error)

	input["p7"] = map[string]any{"name": "a", "next": map[string]any{"name": 1}}
	res = root.SafeParseAsync(ctx, input)
	require.False(t, res.Success)
	require.Len(t, res.Error.Issues, 1)
	assert.Equal(t, skema.Path{"p7", "next", "name"}, res.Error.Issues[0].Path)
}
