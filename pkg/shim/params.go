package shim

import "context"

type paramsKey struct{}

// WithRouteParams stores the bindings the host router extracted for the
// matched route. Host adapters call it before invoking a shim handler.
func WithRouteParams(ctx context.Context, params map[string]string) context.Context {
	return context.WithValue(ctx, paramsKey{}, params)
}

// RouteParams returns the bindings stored by WithRouteParams, or nil.
func RouteParams(ctx context.Context) map[string]string {
	params, _ := ctx.Value(paramsKey{}).(map[string]string)
	return params
}

// RouteContext is the second argument every handler receives.
type RouteContext struct {
	// Params resolves to the dynamic segment bindings, keyed by name.
	Params *Future[map[string]string]

	// Method is the HTTP method the handler was mounted for.
	Method string

	// Pattern is the mount path the handler was registered under.
	Pattern string
}

// Param awaits the params future and returns one binding.
func (rc *RouteContext) Param(ctx context.Context, name string) (string, error) {
	params, err := rc.Params.Await(ctx)
	if err != nil {
		return "", err
	}
	return params[name], nil
}
