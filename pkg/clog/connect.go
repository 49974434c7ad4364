package clog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/proto"
)

type connectConfig struct {
	Filter  func(spec connect.Spec) bool
	Headers map[string]string
}

type ConnectOption interface {
	apply(*connectConfig)
}

type connectOptionFunc func(*connectConfig)

func (o connectOptionFunc) apply(c *connectConfig) {
	o(c)
}

func WithConnectFilter(filter func(connect.Spec) bool) ConnectOption {
	return connectOptionFunc(func(cfg *connectConfig) {
		cfg.Filter = filter
	})
}

// WithHeaderAttribute logs the value of a request header under key, e.g. the
// worker identity a call is made as.
func WithHeaderAttribute(header, key string) ConnectOption {
	return connectOptionFunc(func(cfg *connectConfig) {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		cfg.Headers[header] = key
	})
}

func DefaultConnectHealthCheckUnaryFilter(spec connect.Spec) bool {
	return spec.Procedure != "/grpc.health.v1.Health/Check"
}

type slogConnectInterceptor struct {
	cfg connectConfig
}

func NewSlogConnectInterceptor(opts ...ConnectOption) connect.Interceptor {
	cfg := connectConfig{}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return &slogConnectInterceptor{cfg: cfg}
}

// begin opens the request-scoped attribute set for one call.
func (s *slogConnectInterceptor) begin(ctx context.Context, spec connect.Spec, method string, header http.Header) context.Context {
	ctx = ContextWithSlog(ctx)
	attrs := map[string]any{
		"procedure":   spec.Procedure,
		"stream_type": spec.StreamType.String(),
	}
	if method != "" {
		attrs["method"] = method
	}
	for h, key := range s.cfg.Headers {
		if v := header.Get(h); v != "" {
			attrs[key] = v
		}
	}
	AddAttributes(ctx, attrs)
	return ctx
}

func (s *slogConnectInterceptor) finish(ctx context.Context, spec connect.Spec, start time.Time, err error) {
	if s.cfg.Filter != nil && !s.cfg.Filter(spec) {
		return
	}
	code := "ok"
	var connectErr *connect.Error
	if err != nil {
		if !errors.As(err, &connectErr) {
			connectErr = connect.NewError(connect.CodeUnknown, err)
		}
		code = connectErr.Code().String()
	}
	AddAttributes(ctx, map[string]any{
		"code":     code,
		"duration": time.Since(start),
	})
	if connectErr == nil {
		slog.InfoContext(ctx, "Finished")
		return
	}
	logConnectError(ctx, connectErr)
}

func (s *slogConnectInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		start := time.Now()
		ctx = s.begin(ctx, req.Spec(), req.HTTPMethod(), req.Header())
		resp, err := next(ctx, req)
		s.finish(ctx, req.Spec(), start, err)
		return resp, err
	}
}

func (s *slogConnectInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (s *slogConnectInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := time.Now()
		ctx = s.begin(ctx, conn.Spec(), "", conn.RequestHeader())
		slog.InfoContext(ctx, "Connected")
		err := next(ctx, conn)
		s.finish(ctx, conn.Spec(), start, err)
		return err
	}
}

func logConnectError(ctx context.Context, connectErr *connect.Error) {
	if errDetails := connectErr.Details(); len(errDetails) > 0 {
		details := make([]proto.Message, 0, len(errDetails))
		for _, detail := range errDetails {
			val, err := detail.Value()
			if err != nil {
				slog.ErrorContext(ctx, "failed to convert detail value", ErrorAttributeKey, err)
				continue
			}
			details = append(details, val)
		}
		AddAttribute(ctx, "err_details", details)
	}
	slog.Log(ctx, ConnectCodeLevel(connectErr.Code()), connectErr.Message())
}
