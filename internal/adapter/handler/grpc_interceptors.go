package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/shop/internal/core/domain"
)

const requestIDHeader = "x-request-id"

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// LoggingInterceptor logs every unary call with its request id, taken from
// the x-request-id metadata or generated when absent.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		reqID := firstMetadata(ctx, requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		start := time.Now()
		resp, err := handler(ctx, req)
		zap.L().Info("grpc request",
			zap.String("request_id", reqID),
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)))
		return resp, err
	}
}

// AuthInterceptor verifies the bearer token in the authorization metadata
// and stores the caller identity in the context.
func AuthInterceptor(auth Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		token, ok := bearerToken(firstMetadata(ctx, "authorization"))
		if !ok {
			return nil, grpcError(fmt.Errorf("%w: missing token", domain.ErrUnauthorized))
		}
		id, err := auth.Authenticate(token)
		if err != nil {
			return nil, grpcError(err)
		}
		return handler(WithIdentity(ctx, id), req)
	}
}
