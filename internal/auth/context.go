package auth

import "context"

type principalContextKey struct{}

// ContextWithPrincipal attaches the authenticated principal's public
// projection to the context.
func ContextWithPrincipal(ctx context.Context, principal Public) context.Context {
	return context.WithValue(ctx, principalContextKey{}, &principal)
}

// PrincipalFromContext extracts the authenticated principal from the context.
func PrincipalFromContext(ctx context.Context) (Public, bool) {
	if ctx == nil {
		return Public{}, false
	}
	v, ok := ctx.Value(principalContextKey{}).(*Public)
	if !ok || v == nil {
		return Public{}, false
	}
	return *v, true
}
