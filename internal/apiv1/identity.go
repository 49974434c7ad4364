package apiv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// WorkerHeader carries the identity of the worker or reviewer making a call.
const WorkerHeader = "X-Labelguild-Worker"

// WorkerID returns the caller identity from request headers.
func WorkerID(h http.Header) string {
	return strings.TrimSpace(h.Get(WorkerHeader))
}

// CredentialsInterceptor adds the API key and the worker identity to
// outgoing requests.
type CredentialsInterceptor struct {
	apiKey   string
	workerID string
}

func NewCredentialsInterceptor(apiKey, workerID string) *CredentialsInterceptor {
	return &CredentialsInterceptor{apiKey: apiKey, workerID: workerID}
}

func (i *CredentialsInterceptor) set(h http.Header) {
	if i.apiKey != "" {
		h.Set("Authorization", "Bearer "+i.apiKey)
	}
	if i.workerID != "" {
		h.Set(WorkerHeader, i.workerID)
	}
}

func (i *CredentialsInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		i.set(req.Header())
		return next(ctx, req)
	}
}

func (i *CredentialsInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return func(ctx context.Context, spec connect.Spec) connect.StreamingClientConn {
		conn := next(ctx, spec)
		i.set(conn.RequestHeader())
		return conn
	}
}

func (i *CredentialsInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
