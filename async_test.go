package skema_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
)

func fatalOf(t *testing.T, fn func()) *skema.FatalError {
	t.Helper()
	var fe *skema.FatalError
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a panic")
			err, ok := r.(error)
			require.True(t, ok, "panic value %v is not an error", r)
			require.True(t, errors.As(err, &fe), "panic value %v is not a FatalError", r)
		}()
		fn()
	}()
	return fe
}

func TestParseAsync_IssueOrderFollowsInput(t *testing.T) {
	slow := skema.String().RefineAsync(func(ctx context.Context, v any) bool {
		// Earlier elements finish last.
		d := map[any]time.Duration{"a": 30, "b": 20, "c": 10}[v]
		select {
		case <-time.After(d * time.Millisecond):
		case <-ctx.Done():
		}
		return false
	}, skema.RefineParams{Message: "rejected"})

	_, err := skema.ParseAsync(context.Background(), skema.Array(slow), []any{"a", "b", "c"})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 3)
	for i, it := range iss {
		assert.Equal(t, skema.Path{i}, it.Path)
		assert.Equal(t, "rejected", it.Message)
	}
}

func TestParseAsync_SyncAndAsyncAgree(t *testing.T) {
	n := skema.Object(
		skema.Prop("id", skema.String().UUID()),
		skema.Prop("tags", skema.Array(skema.String().Min(2))),
		skema.Prop("kind", skema.Union(skema.Literal("a"), skema.Literal("b"))),
	)
	input := map[string]any{"id": "x", "tags": []any{"ok", "n", "m"}, "kind": "c"}
	ctx := context.Background()

	syncErr := n.SafeParse(ctx, input, en).Error
	asyncErr := n.SafeParseAsync(ctx, input, skema.ParseOpt{Config: en.Config, MaxConcurrency: 2}).Error
	require.NotNil(t, syncErr)
	require.NotNil(t, asyncErr)
	assert.Equal(t, syncErr.Error(), asyncErr.Error())
	assert.Equal(t, len(syncErr.Issues), len(asyncErr.Issues))
}

func TestParse_AsyncEffectInSyncParsePanics(t *testing.T) {
	n := skema.Object(skema.Prop("email", skema.String().RefineAsync(func(context.Context, any) bool { return true })))
	fe := fatalOf(t, func() {
		_, _ = n.Parse(context.Background(), map[string]any{"email": "a@b.c"})
	})
	assert.ErrorIs(t, fe, skema.ErrAsyncInSync)
	assert.Equal(t, skema.Path{"email"}, fe.Path)

	_, err := n.ParseAsync(context.Background(), map[string]any{"email": "a@b.c"})
	require.NoError(t, err)
}

func TestParse_UnresolvedRefPanics(t *testing.T) {
	fe := fatalOf(t, func() {
		_, _ = skema.Array(skema.Ref("Item")).Parse(context.Background(), []any{1})
	})
	assert.ErrorIs(t, fe, skema.ErrUnresolvedReference)
	assert.Equal(t, "Item", fe.Ref)
	assert.Contains(t, fe.Error(), `"Item" at "/0"`)
}

func TestServiceInjection(t *testing.T) {
	type fixed map[string]bool

	n := skema.String().SuperRefineAsync(func(v any, rc *skema.RefineCtx) {
		dir, ok := skema.RequireService[fixed](rc)
		if !ok {
			return
		}
		if dir[v.(string)] {
			rc.AddIssue(skema.Issue{Message: "name taken"})
		}
	})

	ctx := skema.WithService(context.Background(), fixed{"root": true})
	_, err := n.ParseAsync(ctx, "alice")
	require.NoError(t, err)

	_, err = n.ParseAsync(ctx, "root")
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.CodeCustom, iss[0].Code)
	assert.Equal(t, "name taken", iss[0].Message)

	_, err = n.ParseAsync(context.Background(), "alice")
	iss, _ = skema.AsIssues(err)
	require.Len(t, iss, 1)
	assert.True(t, iss[0].Fatal)
	assert.Equal(t, "dependency_unavailable", iss[0].Params["reason"])
}

func TestPromise(t *testing.T) {
	ctx := context.Background()
	out, err := skema.PromiseOf(skema.Number()).Parse(ctx, skema.Resolved("nope"))
	require.NoError(t, err)
	_, err = out.(skema.Promise)(ctx)
	require.Error(t, err)

	_, err = skema.PromiseOf(skema.Number()).Parse(ctx, 1)
	require.Error(t, err)

	out, err = skema.PromiseOf(skema.Number()).ParseAsync(ctx, 1)
	require.NoError(t, err)
	v, err := out.(skema.Promise)(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFunction_Implement(t *testing.T) {
	ctx := context.Background()
	greet := skema.Function().Args(skema.String()).Returns(skema.Number()).Implement(
		func(_ context.Context, args ...any) (any, error) {
			if args[0] == "bad" {
				return "not a number", nil
			}
			return len(args[0].(string)), nil
		})

	v, err := greet(ctx, "four")
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	_, err = greet(ctx, 4)
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.CodeInvalidArguments, iss[0].Code)
	require.NotNil(t, iss[0].ArgumentsError)

	_, err = greet(ctx, "bad")
	iss, _ = skema.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeInvalidReturnType, iss[0].Code)
}
