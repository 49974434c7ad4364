package cerr

import (
	"context"
	"errors"
	"net"

	"buf.build/gen/go/bufbuild/protovalidate/protocolbuffers/go/buf/validate"
	"connectrpc.com/connect"

	"github.com/kazz187/labelguild/pkg/clog"
)

// convertInterceptor turns errors leaving a handler into connect errors
// carrying the code and details of a *Error. Calls made as a client pass
// through so the caller sees the details the server sent.
type convertInterceptor struct{}

func NewConvertConnectErrorInterceptor() connect.Interceptor {
	return convertInterceptor{}
}

func (convertInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		resp, err := next(ctx, req)
		if req.Spec().IsClient {
			return resp, err
		}
		return resp, ExtractConnectError(ctx, err)
	}
}

func (convertInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler treats a subscriber hanging up as the normal end of
// an event stream.
func (convertInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		err := next(ctx, conn)
		if err != nil && ctx.Err() != nil && closedByPeer(err) {
			return nil
		}
		return ExtractConnectError(ctx, err)
	}
}

func closedByPeer(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.Err == "operation was canceled"
}

func ExtractConnectError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if closedByPeer(err) {
		return NewError(Canceled, "connection closed", err).ConnectError()
	}

	clog.AddError(ctx, err)
	var cerr *Error
	if errors.As(err, &cerr) {
		if cerr.Stack != "" {
			clog.AddStack(ctx, cerr.Stack)
		}
		return cerr.ConnectError()
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	return NewError(Unknown, "unknown error", err).ConnectError()
}

// CodeOf returns the code carried by err, Unknown for foreign errors and OK
// for nil.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return NewCodeFromConnectError(connectErr)
	}
	return Unknown
}

// Violations returns the validation violations attached to err, either as
// details of a *Error or of a *connect.Error received by a client.
func Violations(err error) []*validate.Violation {
	var out []*validate.Violation
	var cerr *Error
	if errors.As(err, &cerr) {
		for _, d := range cerr.Details {
			if v, ok := d.(*validate.Violation); ok {
				out = append(out, v)
			}
		}
		return out
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return nil
	}
	for _, detail := range connectErr.Details() {
		msg, err := detail.Value()
		if err != nil {
			continue
		}
		if v, ok := msg.(*validate.Violation); ok {
			out = append(out, v)
		}
	}
	return out
}

// FieldName returns the leading field name of a violation's path, or ""
// when the violation is not tied to a field.
func FieldName(v *validate.Violation) string {
	elems := v.GetField().GetElements()
	if len(elems) == 0 {
		return ""
	}
	return elems[0].GetFieldName()
}

// IsCode reports whether err carries code, either as a *Error on the server
// side or as a *connect.Error received by a client.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
