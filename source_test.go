package skema_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
)

var account = skema.Object(
	skema.Prop("id", skema.String()),
	skema.Prop("balance", skema.Number().Nonnegative()),
)

func TestParseJSON(t *testing.T) {
	ctx := context.Background()
	out, err := skema.ParseJSON(ctx, account, []byte(`{"id": "a1", "balance": 10.5}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "a1", "balance": 10.5}, out)

	_, err = skema.ParseJSON(ctx, account, []byte(`{"id": "a1", "balance": -1}`), en)
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.CodeTooSmall, iss[0].Code)

	_, err = skema.ParseJSON(ctx, account, []byte(`{"id": `), en)
	iss, _ = skema.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeParseError, iss[0].Code)
}

func TestParseJSON_DuplicateKeys(t *testing.T) {
	ctx := context.Background()
	doc := []byte(`{"id": "a", "balance": 1, "id": "b"}`)

	out, err := skema.ParseJSON(ctx, account, doc)
	require.NoError(t, err)
	assert.Equal(t, "b", out.(map[string]any)["id"])

	var logs bytes.Buffer
	cfg := skema.NewConfig(skema.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	_, err = skema.ParseJSON(ctx, account, doc, skema.ParseOpt{Config: cfg, Strictness: skema.Strictness{OnDuplicateKey: skema.SeverityWarn}})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "duplicate_key")

	_, err = skema.ParseJSON(ctx, account, doc, skema.ParseOpt{Strictness: skema.Strictness{OnDuplicateKey: skema.SeverityError}})
	iss, _ := skema.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, skema.Path{"id"}, iss[0].Path)
}

func TestParseJSON_LimitsAndNumbers(t *testing.T) {
	ctx := context.Background()
	_, err := skema.ParseJSON(ctx, skema.Any(), []byte(`[[[1]]]`), skema.ParseOpt{MaxDepth: 2})
	iss, _ := skema.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeParseError, iss[0].Code)

	out, err := skema.ParseJSON(ctx, skema.Any(), []byte(`12345678901234567890`), skema.ParseOpt{NumberMode: skema.NumberJSONNumber})
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567890"), out)
}

func TestParseYAML(t *testing.T) {
	ctx := context.Background()
	out, err := skema.ParseYAML(ctx, account, []byte("id: a1\nbalance: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "a1", "balance": 3.0}, out)

	_, err = skema.ParseYAML(ctx, account, []byte("id: 7\nbalance: 3\n"), en)
	iss, _ := skema.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.Path{"id"}, iss[0].Path)
	assert.Equal(t, "Expected string, received number", iss[0].Message)
}
