package skema

import "context"

// serviceKey is a unique key per type parameter T for context storage.
type serviceKey[T any] struct{}

// WithService stores a typed service instance in the context, for refinements
// that need a dependency (a repository, a lookup client) during ParseAsync.
func WithService[T any](ctx context.Context, svc T) context.Context {
	return context.WithValue(ctx, serviceKey[T]{}, any(svc))
}

// Service retrieves a typed service instance from context.
func Service[T any](ctx context.Context) (T, bool) {
	var zero T
	v := ctx.Value(serviceKey[T]{})
	if v == nil {
		return zero, false
	}
	if tv, ok := v.(T); ok {
		return tv, true
	}
	return zero, false
}

// RequireService returns the service registered for T. When it is missing, a
// fatal custom issue is recorded on rc and ok is false.
func RequireService[T any](rc *RefineCtx) (svc T, ok bool) {
	if svc, ok = Service[T](rc.Context()); ok {
		return svc, true
	}
	rc.AddIssue(Issue{Code: CodeCustom, Message: "service not provided", Params: map[string]any{"reason": "dependency_unavailable"}, Fatal: true})
	return svc, false
}
