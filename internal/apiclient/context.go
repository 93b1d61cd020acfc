package apiclient

import (
	"context"
)

type contextKey int

const (
	pageKey contextKey = iota
	requestIDKey
)

// WithPage records the storefront page (path plus query) the call is made from.
func WithPage(ctx context.Context, page string) context.Context {
	return context.WithValue(ctx, pageKey, page)
}

// PageFrom returns the page recorded by WithPage, or "".
func PageFrom(ctx context.Context) string {
	page, _ := ctx.Value(pageKey).(string)
	return page
}

// WithRequestID makes outgoing calls reuse the caller's request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
