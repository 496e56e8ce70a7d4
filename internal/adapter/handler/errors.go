package handler

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/shop/internal/core/domain"
)

type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	Path       string `json:"path"`
	Timestamp  string `json:"timestamp"`
}

type errorKind struct {
	status int
	code   codes.Code
	name   string
}

var errorKinds = []struct {
	target error
	kind   errorKind
}{
	{domain.ErrInvalidRequest, errorKind{http.StatusBadRequest, codes.InvalidArgument, "invalid_request"}},
	{domain.ErrNotFound, errorKind{http.StatusNotFound, codes.NotFound, "not_found"}},
	{domain.ErrInsufficientStock, errorKind{http.StatusConflict, codes.FailedPrecondition, "insufficient_stock"}},
	{domain.ErrInvalidTransition, errorKind{http.StatusConflict, codes.FailedPrecondition, "invalid_transition"}},
	{domain.ErrUnauthorized, errorKind{http.StatusUnauthorized, codes.Unauthenticated, "unauthorized"}},
	{domain.ErrForbidden, errorKind{http.StatusForbidden, codes.PermissionDenied, "forbidden"}},
	{domain.ErrAlreadyExists, errorKind{http.StatusConflict, codes.AlreadyExists, "already_exists"}},
	{domain.ErrDuplicateRequest, errorKind{http.StatusConflict, codes.AlreadyExists, "duplicate_request"}},
	{domain.ErrConflict, errorKind{http.StatusServiceUnavailable, codes.Aborted, "conflict"}},
}

var internalKind = errorKind{http.StatusInternalServerError, codes.Internal, "internal_error"}

func classifyError(err error) errorKind {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}
	return internalKind
}

// publicMessage hides the details of unexpected failures from clients.
func publicMessage(err error, kind errorKind) string {
	if kind == internalKind {
		return "an unexpected error occurred"
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := classifyError(err)
	if kind == internalKind {
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, kind.status, ErrorResponse{
		StatusCode: kind.status,
		Error:      kind.name,
		Message:    publicMessage(err, kind),
		Path:       r.URL.Path,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// grpcError converts a domain error into a gRPC status error.
func grpcError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	kind := classifyError(err)
	if kind == internalKind {
		zap.L().Error("rpc failed", zap.Error(err))
	}
	return status.Error(kind.code, publicMessage(err, kind))
}
