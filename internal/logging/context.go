package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Ctx returns base with a request_id field when ctx carries one.
func Ctx(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	id := RequestIDFrom(ctx)
	if id == "" {
		return base
	}
	return base.With().Str("request_id", id).Logger()
}
