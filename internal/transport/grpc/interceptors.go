package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"salonbook/backend/internal/requestid"
)

const defaultRequestTimeout = 10 * time.Second

// RequestTimeoutInterceptor bounds calls that arrive without a client deadline.
func RequestTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}

// RequestIDInterceptor reads x-request-id from incoming metadata, or mints one,
// stores it in the context and echoes it in the response header.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(requestid.MetadataKey); len(vals) > 0 {
				id = vals[0]
			}
		}
		id = requestid.Accept(id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestid.MetadataKey, id))
		return handler(requestid.WithContext(ctx, id), req)
	}
}

// ClientRequestIDInterceptor forwards the context's request id on outgoing calls.
func ClientRequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if id := requestid.FromContext(ctx); id != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, requestid.MetadataKey, id)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
