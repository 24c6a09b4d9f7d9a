package jsonschema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	"github.com/reoring/skema/jsonschema"
)

func TestImport_RoundTrip(t *testing.T) {
	nodes := map[string]*skema.Node{
		"object": skema.Object(
			skema.Prop("name", skema.String().Min(1).Describe("display name")),
			skema.Prop("age", skema.Number().Int().Gte(0).Optional()),
			skema.Prop("tags", skema.Array(skema.String()).Max(3)),
		).Strict(),
		"union":    skema.Union(skema.String(), skema.Number()),
		"nullable": skema.Boolean().Nullable(),
		"enum":     skema.Enum("a", "b", "c"),
		"tuple":    skema.Tuple(skema.String(), skema.Number()),
		"record":   skema.Record(skema.Enum("x", "y"), skema.Boolean()),
		"set":      skema.SetOf(skema.Number()).Min(1),
		"map":      skema.MapOf(skema.String(), skema.Number()),
		"literal":  skema.Literal("fixed"),
		"meta":     skema.String().Title("Title").Placeholder("type here"),
		"tags": skema.Object(
			skema.Prop("u", skema.Undef()),
			skema.Prop("n", skema.Never()),
			skema.Prop("a", skema.Any()),
			skema.Prop("k", skema.Unknown()),
		),
		"discriminated": skema.DiscriminatedUnion("kind",
			skema.Object(skema.Prop("kind", skema.Literal("a")), skema.Prop("x", skema.String())),
			skema.Object(skema.Prop("kind", skema.Literal("b")), skema.Prop("y", skema.Number())),
		),
	}
	for name, n := range nodes {
		t.Run(name, func(t *testing.T) {
			doc, err := jsonschema.FromNode(n).JSON()
			require.NoError(t, err)
			im, err := jsonschema.Import(doc)
			require.NoError(t, err)
			assert.Empty(t, im.Warnings)
			assert.True(t, skema.Equal(n, im.Node), "round trip changed %s:\n%s", name, doc)
		})
	}
}

func TestImport_Refs(t *testing.T) {
	doc := `{
  "type": "object",
  "properties": {
    "owner": {"$ref": "#/$defs/User"},
    "next": {"$ref": "#/$defs/Node"}
  },
  "required": ["owner"],
  "$defs": {
    "User": {"type": "object", "properties": {"id": {"type": "string"}}, "required": ["id"]},
    "Node": {"type": "object", "properties": {"next": {"$ref": "#/$defs/Node"}}}
  }
}`
	im, err := jsonschema.Import([]byte(doc))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"User", "Node"}, skema.References(im.Node))

	resolved := im.Resolve()
	assert.Empty(t, skema.References(resolved))

	ctx := context.Background()
	_, err = resolved.Parse(ctx, map[string]any{
		"owner": map[string]any{"id": "u1"},
		"next":  map[string]any{"next": map[string]any{}},
	})
	require.NoError(t, err)
	_, err = resolved.Parse(ctx, map[string]any{"owner": map[string]any{}})
	require.Error(t, err)
}

func TestImport_YAMLKeepsOrderAndWarns(t *testing.T) {
	doc := `
type: object
properties:
  zeta: {type: string, format: hostname}
  alpha: {type: ["integer", "null"], minimum: 1}
required: [zeta]
`
	im, err := jsonschema.Import(doc)
	require.NoError(t, err)
	props := im.Node.Shape()
	require.Len(t, props, 2)
	assert.Equal(t, "zeta", props[0].Key)
	assert.Equal(t, "alpha", props[1].Key)
	require.Len(t, im.Warnings, 1)
	assert.Contains(t, im.Warnings[0], `format "hostname"`)

	ctx := context.Background()
	_, err = im.Node.Parse(ctx, map[string]any{"zeta": "z", "alpha": nil})
	require.NoError(t, err)
	_, err = im.Node.Parse(ctx, map[string]any{"zeta": "z", "alpha": 0})
	require.Error(t, err)
}

const widgetCRD = `
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
metadata:
  name: gadgets.demo.example.com
spec:
  names:
    kind: Gadget
  versions:
    - name: v1
      served: true
      schema:
        openAPIV3Schema:
          type: object
---
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
metadata:
  name: widgets.demo.example.com
spec:
  names:
    kind: Widget
  versions:
    - name: v1alpha1
      served: false
      schema:
        openAPIV3Schema:
          type: object
    - name: v1
      served: true
      schema:
        openAPIV3Schema:
          type: object
          properties:
            spec:
              type: object
              required: [name]
              properties:
                name: {type: string}
                note: {type: string, nullable: true}
                labels:
                  type: object
                  additionalProperties: {type: string}
            status:
              type: object
              x-kubernetes-preserve-unknown-fields: true
          required: [spec]
`

func TestImportCRD(t *testing.T) {
	im, err := jsonschema.ImportCRD([]byte(widgetCRD), "Widget")
	require.NoError(t, err)

	ctx := context.Background()
	out, err := im.Node.Parse(ctx, map[string]any{
		"spec":   map[string]any{"name": "n", "note": nil, "labels": map[string]any{"a": "b"}},
		"status": map[string]any{"phase": "Ready"},
		"extra":  true,
	})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.NotContains(t, m, "extra")
	assert.Equal(t, map[string]any{"phase": "Ready"}, m["status"])

	_, err = im.Node.Parse(ctx, map[string]any{"spec": map[string]any{"labels": map[string]any{"a": 1}}})
	var verr *skema.Error
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Issues, 2)

	_, err = jsonschema.ImportCRD([]byte(widgetCRD), "Missing")
	require.Error(t, err)
}

func TestImport_Errors(t *testing.T) {
	_, err := jsonschema.Import([]byte(`[1, 2]`))
	require.ErrorIs(t, err, jsonschema.ErrNotImportable)

	_, err = jsonschema.Import(42)
	require.Error(t, err)

	dup := `{"anyOf": [
	  {"type": "object", "properties": {"k": {"const": "a"}}, "required": ["k"]},
	  {"type": "object", "properties": {"k": {"const": "a"}}, "required": ["k"]}
	], "x-skema": {"def": "discriminatedUnion", "discriminator": "k"}}`
	_, err = jsonschema.Import([]byte(dup))
	require.ErrorIs(t, err, skema.ErrInvalidDiscriminatedUnion)
}
