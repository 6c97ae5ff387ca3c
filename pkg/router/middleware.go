package router

import "context"

// Middleware guards a route. It receives the captured params and a copy of
// the global state taken when navigation started, and returns false to
// cancel the navigation. A cancelled navigation changes nothing.
type Middleware func(ctx context.Context, params map[string]string, global map[string]any) (bool, error)

// Chain runs middleware in order and stops at the first one that refuses
// or fails.
func Chain(mw ...Middleware) Middleware {
	return func(ctx context.Context, params map[string]string, global map[string]any) (bool, error) {
		for _, m := range mw {
			ok, err := m(ctx, params, global)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Skip bypasses mw when condition holds.
func Skip(condition func(params map[string]string) bool, mw Middleware) Middleware {
	return func(ctx context.Context, params map[string]string, global map[string]any) (bool, error) {
		if condition(params) {
			return true, nil
		}
		return mw(ctx, params, global)
	}
}

// RequireGlobal allows navigation only when the global state holds a
// truthy value under key. It is the usual shape of an auth guard.
func RequireGlobal(key string) Middleware {
	return func(_ context.Context, _ map[string]string, global map[string]any) (bool, error) {
		switch v := global[key].(type) {
		case nil:
			return false, nil
		case bool:
			return v, nil
		case string:
			return v != "", nil
		case float64:
			return v != 0, nil
		}
		return true, nil
	}
}
