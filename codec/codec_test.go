package codec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
)

func TestTimeRFC3339_RoundTrip(t *testing.T) {
	c := TimeRFC3339()
	ctx := context.Background()

	got, err := c.Decode(ctx, "2025-01-01T09:00:00.500+09:00")
	require.NoError(t, err)
	tm, ok := got.(time.Time)
	require.True(t, ok)
	assert.True(t, tm.Equal(time.Date(2025, 1, 1, 0, 0, 0, 500_000_000, time.UTC)))

	out, err := c.Encode(ctx, tm)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T00:00:00.5Z", out)
}

func TestTimeRFC3339_Errors(t *testing.T) {
	c := TimeRFC3339()
	ctx := context.Background()

	_, err := c.Decode(ctx, "yesterday")
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.CodeInvalidString, iss[0].Code)

	_, err = c.Decode(ctx, 42)
	iss, ok = skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.CodeInvalidType, iss[0].Code)

	_, err = c.Encode(ctx, "2025-01-01T00:00:00Z")
	require.Error(t, err)
}

func TestNumberFromString(t *testing.T) {
	c := NumberFromString()
	ctx := context.Background()

	cases := []struct {
		in   any
		want any
		ok   bool
	}{
		{" 12.5 ", 12.5, true},
		{"-3", -3.0, true},
		{"1e3", 1000.0, true},
		{"abc", nil, false},
		{"NaN", nil, false},
		{"", nil, false},
		{12.5, nil, false},
	}
	for _, tc := range cases {
		got, err := c.Decode(ctx, tc.in)
		if !tc.ok {
			assert.Error(t, err, "input %v", tc.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	s, err := c.Encode(ctx, 2.0)
	require.NoError(t, err)
	assert.Equal(t, "2", s)
}

func TestCodec_NodeComposes(t *testing.T) {
	event := skema.Object(
		skema.Prop("at", TimeRFC3339().Node()),
		skema.Prop("amount", NumberFromString().Node().Optional()),
	)
	out, err := event.Parse(context.Background(), map[string]any{"at": "2025-03-04T05:06:07Z", "amount": "7"})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.IsType(t, time.Time{}, m["at"])
	assert.Equal(t, 7.0, m["amount"])
}

func TestIdentity(t *testing.T) {
	c := Identity(skema.String().Min(2))
	ctx := context.Background()
	v, err := c.Decode(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	_, err = c.Encode(ctx, "x")
	require.Error(t, err)
	assert.Same(t, c.In(), c.Out())
}
