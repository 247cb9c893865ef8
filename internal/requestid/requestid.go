// Package requestid carries a per-request correlation id across HTTP and gRPC.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

const (
	// Header is the HTTP header used for propagation.
	Header = "X-Request-Id"
	// MetadataKey is the gRPC metadata key. gRPC keys are lowercase.
	MetadataKey = "x-request-id"

	maxLen = 128
)

func FromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}

func WithContext(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

func New() string {
	return uuid.NewString()
}

// Accept returns the caller's id when it is usable, otherwise a fresh one.
func Accept(id string) string {
	if id == "" || len(id) > maxLen {
		return New()
	}
	return id
}
