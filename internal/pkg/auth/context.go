// internal/pkg/auth/context.go
package auth

import "context"

type tokenKey struct{}

// WithToken returns a context carrying the caller's bearer token. Outgoing
// commerce API calls read it from the context at call time, so a refreshed
// token takes effect on the next call.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token stored by WithToken
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
