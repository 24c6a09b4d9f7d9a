package literal

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
)

func TestEncode(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	cases := []struct {
		in   any
		want string
	}{
		{nil, "nil"},
		{skema.Undefined, "skema.Undefined"},
		{"a\"b", `"a\"b"`},
		{true, "true"},
		{42, "42"},
		{int64(7), "int64(7)"},
		{2.0, "2.0"},
		{1.5, "1.5"},
		{1e21, "1e+21"},
		{math.Inf(-1), "math.Inf(-1)"},
		{big.NewInt(9), "big.NewInt(9)"},
		{huge, `func() *big.Int { b, _ := new(big.Int).SetString("123456789012345678901234567890", 10); return b }()`},
		{time.Date(2024, 2, 3, 4, 5, 6, 7, time.UTC), "time.Date(2024, 2, 3, 4, 5, 6, 7, time.UTC)"},
		{[]any{"x", 1, nil}, `[]any{"x", 1, nil}`},
		{map[string]any{"b": 1, "a": []string{"z"}}, `map[string]any{"a": []string{"z"}, "b": 1}`},
		{skema.NewSymbol("id"), `skema.NewSymbol("id")`},
	}
	for _, tc := range cases {
		got, err := Encode(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestEncoder_QualifierAndImports(t *testing.T) {
	e := NewEncoder("")
	s, err := e.Encode(skema.Undefined)
	require.NoError(t, err)
	assert.Equal(t, "Undefined", s)

	_, err = e.Encode([]any{big.NewInt(1), time.Unix(0, 0)})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"math/big": true, "time": true}, e.Imports)
}

func TestEncode_Unsupported(t *testing.T) {
	_, err := Encode(struct{}{})
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = Encode([]any{make(chan int)})
	require.ErrorIs(t, err, ErrUnsupported)
}
