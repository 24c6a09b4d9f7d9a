package jsonschema_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	"github.com/reoring/skema/jsonschema"
)

func TestFromNode_ObjectRequired(t *testing.T) {
	n := skema.Object(
		skema.Prop("name", skema.String()),
		skema.Prop("age", skema.Number().Optional()),
		skema.Prop("role", skema.Enum("admin", "user").Default("user")),
	)
	s := jsonschema.FromNode(n)

	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"name"}, s.Required)
	age, ok := s.Properties.Get("age")
	require.True(t, ok)
	assert.Equal(t, "optional", age.Extension.Def())
	role, ok := s.Properties.Get("role")
	require.True(t, ok)
	assert.Equal(t, "user", role.Default)
	assert.Equal(t, true, s.AdditionalProperties)
}

func TestFromNode_RequiredMatchesNonOptionalKeys(t *testing.T) {
	props := []skema.Property{
		skema.Prop("a", skema.String()),
		skema.Prop("b", skema.String().Nullish()),
		skema.Prop("c", skema.Undef()),
		skema.Prop("d", skema.Number().Default(1)),
		skema.Prop("e", skema.Lazy(func() *skema.Node { return skema.Boolean() })),
		skema.Prop("f", skema.Any()),
	}
	s := jsonschema.FromNode(skema.Object(props...))
	var want []string
	for _, p := range props {
		if !p.Node.IsOptional() {
			want = append(want, p.Key)
		}
	}
	assert.Equal(t, want, s.Required)
}

func TestFromNode_UnknownKeysPolicy(t *testing.T) {
	base := skema.Object(skema.Prop("a", skema.String()))
	assert.Equal(t, false, jsonschema.FromNode(base.Strict()).AdditionalProperties)
	assert.Equal(t, true, jsonschema.FromNode(base.Passthrough()).AdditionalProperties)
	catch := jsonschema.FromNode(base.Catchall(skema.Number())).AdditionalProperties
	require.IsType(t, &jsonschema.Schema{}, catch)
	assert.Equal(t, "number", catch.(*jsonschema.Schema).Type)
}

func TestFromNode_DefTags(t *testing.T) {
	cases := []struct {
		name string
		node *skema.Node
		def  string
	}{
		{"undefined", skema.Undef(), "undefined"},
		{"never", skema.Never(), "never"},
		{"any", skema.Any(), "any"},
		{"unknown", skema.Unknown(), "unknown"},
		{"union", skema.Union(skema.String(), skema.Number()), "union"},
		{"discriminated", skema.DiscriminatedUnion("kind",
			skema.Object(skema.Prop("kind", skema.Literal("a"))),
			skema.Object(skema.Prop("kind", skema.Literal("b"))),
		), "discriminatedUnion"},
		{"nullable", skema.String().Nullable(), "nullable"},
		{"set", skema.SetOf(skema.String()), "set"},
		{"map", skema.MapOf(skema.String(), skema.Number()), "map"},
		{"bigint", skema.BigInt(), "bigint"},
		{"date", skema.Date(), "date"},
		{"symbol", skema.Symbol(), "symbol"},
		{"nan", skema.NaN(), "nan"},
		{"promise", skema.PromiseOf(skema.String()), "promise"},
		{"function", skema.Function(), "function"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.def, jsonschema.FromNode(tc.node).Extension.Def())
		})
	}

	// Same document shape, different tag.
	u, nv := jsonschema.FromNode(skema.Undef()), jsonschema.FromNode(skema.Never())
	assert.Equal(t, u.Not, nv.Not)
}

func TestFromNode_IntersectionDropsAdditionalProperties(t *testing.T) {
	n := skema.Intersection(
		skema.Object(skema.Prop("a", skema.String())).Strict(),
		skema.Object(skema.Prop("b", skema.Number())),
	)
	s := jsonschema.FromNode(n)
	require.Len(t, s.AllOf, 2)
	for _, side := range s.AllOf {
		assert.Nil(t, side.AdditionalProperties)
		assert.Equal(t, "object", side.Type)
	}
}

func TestFromNode_StringAndNumberChecks(t *testing.T) {
	s := jsonschema.FromNode(skema.String().Min(2).Max(5).Email().StartsWith("a.").UUID())
	assert.Equal(t, 2, *s.MinLength)
	assert.Equal(t, 5, *s.MaxLength)
	assert.Equal(t, "email", s.Format)
	assert.Equal(t, `^a\.`, s.Pattern)
	require.Len(t, s.AllOf, 1)
	assert.Equal(t, "uuid", s.AllOf[0].Format)

	num := jsonschema.FromNode(skema.Number().Int().Gt(0).Lte(10).MultipleOf(2))
	assert.Equal(t, "integer", num.Type)
	assert.Equal(t, 0.0, num.ExclusiveMinimum)
	assert.Equal(t, 10.0, num.Maximum)
	assert.Equal(t, 2.0, num.MultipleOf)
}

func TestFromNode_RecordPropertyNames(t *testing.T) {
	plainRec := jsonschema.FromNode(skema.RecordOf(skema.Number()))
	assert.Nil(t, plainRec.PropertyNames)

	rec := jsonschema.FromNode(skema.Record(skema.Enum("x", "y"), skema.Number()))
	require.NotNil(t, rec.PropertyNames)
	assert.Equal(t, []any{"x", "y"}, rec.PropertyNames.Enum)
	assert.Empty(t, rec.PropertyNames.Type)
}

func TestFromNode_TupleAndArray(t *testing.T) {
	tup := jsonschema.FromNode(skema.Tuple(skema.String(), skema.Number()))
	assert.Len(t, tup.PrefixItems, 2)
	assert.Equal(t, false, tup.Items)
	assert.Equal(t, 2, *tup.MaxItems)

	arr := jsonschema.FromNode(skema.Array(skema.String()).Min(1).Max(3))
	assert.Equal(t, 1, *arr.MinItems)
	assert.Equal(t, 3, *arr.MaxItems)
}

func TestFromNode_Metadata(t *testing.T) {
	inner := skema.String().Describe("user name").Title("Name").Secret(true)
	s := jsonschema.FromNode(skema.Object(skema.Prop("name", inner.Optional())))

	prop, _ := s.Properties.Get("name")
	// The optional wrapper repeats nothing its inner node carries.
	assert.Empty(t, prop.Description)
	assert.NotContains(t, prop.Extension, "title")
	require.Len(t, prop.AnyOf, 2)
	assert.Equal(t, "user name", prop.AnyOf[0].Description)
	assert.Equal(t, "Name", prop.AnyOf[0].Extension["title"])
	assert.Equal(t, true, prop.AnyOf[0].Extension["secret"])

	outer := jsonschema.FromNode(inner.Optional().Describe("optional name"))
	assert.Equal(t, "optional name", outer.Description)
}

func TestFromNode_RecursiveLazy(t *testing.T) {
	var category *skema.Node
	category = skema.Object(
		skema.Prop("name", skema.String()),
		skema.Prop("children", skema.Array(skema.Lazy(func() *skema.Node { return category }))),
	)
	s := jsonschema.FromNode(category)
	require.Contains(t, s.Defs, "lazy1")
	children, _ := s.Properties.Get("children")
	assert.Equal(t, "#/$defs/lazy1", children.Items.(*jsonschema.Schema).Ref)
}

func TestFromNode_DefinitionsAndRefs(t *testing.T) {
	n := skema.Object(skema.Prop("owner", skema.Ref("User")))
	s := jsonschema.FromNode(n, jsonschema.WithDefinitions(map[string]*skema.Node{
		"User": skema.Object(skema.Prop("id", skema.String())),
	}))
	owner, _ := s.Properties.Get("owner")
	assert.Equal(t, "#/$defs/User", owner.Ref)
	require.Contains(t, s.Defs, "User")
	assert.Equal(t, "object", s.Defs["User"].Type)
}

func TestSchema_MarshalKeepsPropertyOrder(t *testing.T) {
	n := skema.Object(
		skema.Prop("zeta", skema.String()),
		skema.Prop("alpha", skema.Number()),
		skema.Prop("mid", skema.Boolean()),
	)
	s := jsonschema.FromNode(n)

	js, err := s.JSON()
	require.NoError(t, err)
	text := string(js)
	assert.Less(t, strings.Index(text, `"zeta"`), strings.Index(text, `"alpha"`))
	assert.Less(t, strings.Index(text, `"alpha"`), strings.Index(text, `"mid"`))

	y, err := s.YAML()
	require.NoError(t, err)
	text = string(y)
	assert.Less(t, strings.Index(text, "zeta:"), strings.Index(text, "alpha:"))
	assert.Less(t, strings.Index(text, "alpha:"), strings.Index(text, "mid:"))

	m, err := s.Map()
	require.NoError(t, err)
	assert.Equal(t, "object", m["type"])
	assert.Equal(t, []any{"zeta", "alpha", "mid"}, m["required"])
}

func TestFromNode_Deterministic(t *testing.T) {
	n := skema.Object(
		skema.Prop("a", skema.String().Title("A").Placeholder("a...").Hidden(true)),
		skema.Prop("b", skema.Union(skema.Literal(1), skema.Literal("x"), skema.Null())),
	)
	first, err := jsonschema.FromNode(n).JSON()
	require.NoError(t, err)
	second, err := jsonschema.FromNode(n).JSON()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestFromNode_ValidatesWhatItDescribes(t *testing.T) {
	ctx := context.Background()
	n := skema.Object(
		skema.Prop("name", skema.String()),
		skema.Prop("age", skema.Number().Optional()),
	)
	s := jsonschema.FromNode(n)
	assert.Equal(t, []string{"name"}, s.Required)

	_, err := n.Parse(ctx, map[string]any{"name": "x"})
	require.NoError(t, err)
	_, err = n.Parse(ctx, map[string]any{})
	require.Error(t, err)
}
