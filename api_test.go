package skema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
)

var en = skema.ParseOpt{Config: skema.NewConfig(skema.WithLocale("en"))}

func parseIssues(t *testing.T, n *skema.Node, input any, opts ...skema.ParseOpt) skema.Issues {
	t.Helper()
	res := n.SafeParse(context.Background(), input, append([]skema.ParseOpt{en}, opts...)...)
	require.False(t, res.Success, "expected failure, got %#v", res.Data)
	require.NotNil(t, res.Error)
	return res.Error.Issues
}

func TestParse_ObjectRequired(t *testing.T) {
	user := skema.Object(
		skema.Prop("name", skema.String()),
		skema.Prop("nick", skema.String().Optional()),
	)
	iss := parseIssues(t, user, map[string]any{})
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeInvalidType, iss[0].Code)
	assert.Equal(t, skema.Path{"name"}, iss[0].Path)
	assert.Equal(t, skema.TypeString, iss[0].Expected)
	assert.Equal(t, skema.TypeUndefined, iss[0].Received)
	assert.Equal(t, "Required", iss[0].Message)

	out, err := user.Parse(context.Background(), map[string]any{"name": "ann", "extra": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "ann"}, out)
}

func TestParse_UnknownKeys(t *testing.T) {
	base := skema.Object(skema.Prop("a", skema.Number()))
	input := map[string]any{"a": 1, "z": true, "b": "x"}

	iss := parseIssues(t, base.Strict(), input)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeUnrecognizedKeys, iss[0].Code)
	assert.Equal(t, []string{"b", "z"}, iss[0].Keys)

	out, err := base.Passthrough().Parse(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, input, out)

	iss = parseIssues(t, base.Catchall(skema.Boolean()), input)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.Path{"b"}, iss[0].Path)
}

func TestParse_ArrayMin(t *testing.T) {
	iss := parseIssues(t, skema.Array(skema.String()).Min(2), []any{"x"})
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeTooSmall, iss[0].Code)
	assert.Equal(t, "array", iss[0].Type)
	assert.Empty(t, iss[0].Path)

	iss = parseIssues(t, skema.Array(skema.Number()), []any{1, "two", 3, false})
	require.Len(t, iss, 2)
	assert.Equal(t, skema.Path{1}, iss[0].Path)
	assert.Equal(t, skema.Path{3}, iss[1].Path)
}

func TestParse_DiscriminatedUnion(t *testing.T) {
	du := skema.DiscriminatedUnion("kind",
		skema.Object(skema.Prop("kind", skema.Literal("a")), skema.Prop("x", skema.String())),
		skema.Object(skema.Prop("kind", skema.Literal("b")), skema.Prop("y", skema.Number())),
	)
	iss := parseIssues(t, du, map[string]any{"kind": "c"})
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeInvalidUnionDiscriminator, iss[0].Code)
	assert.Equal(t, []any{"a", "b"}, iss[0].Options)
	assert.Equal(t, skema.Path{"kind"}, iss[0].Path)

	iss = parseIssues(t, du, map[string]any{"kind": "b", "y": "no"})
	require.Len(t, iss, 1)
	assert.Equal(t, skema.Path{"y"}, iss[0].Path)

	_, err := skema.BuildDiscriminatedUnion("kind",
		skema.Object(skema.Prop("kind", skema.Literal("a"))),
		skema.Object(skema.Prop("kind", skema.Literal("a"))),
	)
	require.ErrorIs(t, err, skema.ErrInvalidDiscriminatedUnion)
}

func TestParse_Union(t *testing.T) {
	u := skema.Union(skema.String(), skema.Number())
	out, err := u.Parse(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, out)

	iss := parseIssues(t, u, true)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeInvalidUnion, iss[0].Code)
	require.Len(t, iss[0].UnionErrors, 2)
	assert.Equal(t, skema.TypeString, iss[0].UnionErrors[0].Issues[0].Expected)
	assert.Equal(t, skema.TypeNumber, iss[0].UnionErrors[1].Issues[0].Expected)

	_, err = skema.BuildUnion()
	require.ErrorIs(t, err, skema.ErrEmptyOptions)
}

func TestParse_Intersection(t *testing.T) {
	both := skema.Intersection(
		skema.Object(skema.Prop("a", skema.String())),
		skema.Object(skema.Prop("b", skema.Number())),
	)
	out, err := both.Parse(context.Background(), map[string]any{"a": "x", "b": 1, "c": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "x", "b": 1}, out)

	conflict := skema.Intersection(
		skema.Object(skema.Prop("v", skema.String().Trim())),
		skema.Object(skema.Prop("v", skema.String())),
	)
	iss := parseIssues(t, conflict, map[string]any{"v": " x "})
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeInvalidIntersectionTypes, iss[0].Code)
}

func TestParse_WrappersAndDefaults(t *testing.T) {
	ctx := context.Background()
	n := skema.Object(
		skema.Prop("role", skema.Enum("admin", "user").Default("user")),
		skema.Prop("age", skema.Number().Catch(-1)),
		skema.Prop("note", skema.String().Nullish()),
	)
	out, err := n.Parse(ctx, map[string]any{"age": "old", "note": nil})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"role": "user", "age": -1, "note": nil}, out)

	iss := parseIssues(t, n, map[string]any{"role": "root"})
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeInvalidEnumValue, iss[0].Code)
	assert.Equal(t, []any{"admin", "user"}, iss[0].Options)
}

func TestParse_DirtyKeepsCollecting(t *testing.T) {
	n := skema.Object(
		skema.Prop("name", skema.String().Min(3).Email()),
		skema.Prop("tags", skema.Array(skema.String().Max(2)).Max(1)),
	)
	iss := parseIssues(t, n, map[string]any{"name": "ab", "tags": []any{"abc", "de"}})
	codes := make([]string, len(iss))
	for i, it := range iss {
		codes[i] = it.Code
	}
	assert.Equal(t, []string{skema.CodeTooSmall, skema.CodeInvalidString, skema.CodeTooBig, skema.CodeTooBig}, codes)
	assert.Equal(t, skema.Path{"tags"}, iss[2].Path)
	assert.Equal(t, skema.Path{"tags", 0}, iss[3].Path)
}

func TestParse_FailFast(t *testing.T) {
	n := skema.Array(skema.Number())
	input := []any{"a", "b", "c"}
	assert.Len(t, parseIssues(t, n, input), 3)
	assert.Len(t, parseIssues(t, n, input, skema.ParseOpt{Config: en.Config, FailFast: true}), 1)

	ctx := skema.WithFailFast(context.Background(), true)
	res := n.SafeParse(ctx, input)
	require.False(t, res.Success)
	assert.Len(t, res.Error.Issues, 1)
}

func TestParse_PathPrefixAndFlatten(t *testing.T) {
	n := skema.Object(skema.Prop("a", skema.String()), skema.Prop("b", skema.String()))
	_, err := n.Parse(context.Background(), map[string]any{"a": 1}, skema.ParseOpt{Path: skema.Path{"body"}, Config: en.Config})
	e, ok := skema.AsError(err)
	require.True(t, ok)
	assert.Equal(t, skema.Path{"body", "a"}, e.Issues[0].Path)
	assert.Equal(t, "/body/a", e.Issues[0].Path.Pointer())

	flat := e.Flatten()
	assert.Empty(t, flat.FormErrors)
	assert.Len(t, flat.FieldErrors["body"], 2)
	assert.Contains(t, err.Error(), "invalid_type at /body/a")
}

func TestParse_StructInput(t *testing.T) {
	type user struct {
		Name  string `json:"name"`
		Age   int    `skema:"name=years"`
		Skip  string `json:"-"`
		inner string
	}
	n := skema.Object(skema.Prop("name", skema.String()), skema.Prop("years", skema.Number().Gte(18))).Strict()
	_, err := n.Parse(context.Background(), user{Name: "a", Age: 20, Skip: "x", inner: "y"})
	require.NoError(t, err)

	iss := parseIssues(t, n, &user{Name: "a", Age: 3})
	require.Len(t, iss, 1)
	assert.Equal(t, skema.Path{"years"}, iss[0].Path)
}

func TestIs(t *testing.T) {
	ctx := context.Background()
	assert.True(t, skema.Is(ctx, skema.String().UUID(), "123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, skema.Is(ctx, skema.String().UUID(), "nope"))
}
