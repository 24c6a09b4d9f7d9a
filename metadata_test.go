package skema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/skema"
)

func TestMetadata_ReservedKeys(t *testing.T) {
	n := skema.String().Title("Name").Placeholder("Jane").Hidden(true).Secret(false).CoerceAs("string")
	m := n.Meta()
	assert.Equal(t, "Name", m.Title())
	assert.Equal(t, "Jane", m.Placeholder())
	assert.True(t, m.Hidden())
	assert.False(t, m.Secret())
	assert.False(t, m.Disabled())
	assert.Equal(t, "string", m.Coerce())
}

func TestMetadata_DefaultAndReadonlyShareInnerRoot(t *testing.T) {
	inner := skema.String().Describe("inner")
	d := inner.Default("x")
	assert.Equal(t, "inner", d.Description())

	// Annotating a default writes through to the node it wraps.
	d2 := d.Title("T").Describe("outer")
	assert.Equal(t, "outer", d2.Unwrap().Description())
	assert.Equal(t, "T", d2.Unwrap().Meta().Title())
	assert.Equal(t, "inner", inner.Description(), "builders never mutate their receiver")
	assert.Empty(t, inner.Meta().Title())

	r := skema.Number().Readonly().WithMetadata(skema.Metadata{"unit": "kg"})
	assert.Equal(t, "kg", r.Unwrap().Meta()["unit"])
}

func TestMetadata_WrappersCopyButOwn(t *testing.T) {
	inner := skema.String().Describe("inner").Title("T")
	opt := inner.Optional()
	assert.Equal(t, "inner", opt.Description())
	assert.Equal(t, "T", opt.Meta().Title())

	opt2 := opt.Describe("optional")
	assert.Equal(t, "optional", opt2.Description())
	assert.Equal(t, "inner", opt2.Unwrap().Description())
}

func TestMetadata_WithMetadataDeepCopies(t *testing.T) {
	tags := []any{"a"}
	n := skema.String().WithMetadata(skema.Metadata{"tags": tags, "nested": map[string]any{"k": 1}})
	tags[0] = "changed"
	assert.Equal(t, []any{"a"}, n.Meta()["tags"])

	n2 := n.WithMetadata(skema.Metadata{"extra": true})
	assert.Len(t, n2.Meta(), 3)
	assert.Len(t, n.Meta(), 2)
}
