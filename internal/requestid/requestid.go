// Package requestid carries the per-request correlation id through a context.
package requestid

import "context"

// Header is the HTTP header the id travels in, both inbound and outbound.
const Header = "X-Request-ID"

type contextKey struct{}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}
