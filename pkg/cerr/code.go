package cerr

import (
	"net/http"

	"connectrpc.com/connect"
)

// Code mirrors the connect error codes so errors keep their meaning across
// the RPC and the JSON surfaces. OK is the zero value.
type Code connect.Code

const (
	OK                 = Code(0)
	Canceled           = Code(connect.CodeCanceled)
	Unknown            = Code(connect.CodeUnknown)
	InvalidArgument    = Code(connect.CodeInvalidArgument)
	DeadlineExceeded   = Code(connect.CodeDeadlineExceeded)
	NotFound           = Code(connect.CodeNotFound)
	AlreadyExists      = Code(connect.CodeAlreadyExists)
	PermissionDenied   = Code(connect.CodePermissionDenied)
	ResourceExhausted  = Code(connect.CodeResourceExhausted)
	FailedPrecondition = Code(connect.CodeFailedPrecondition)
	Aborted            = Code(connect.CodeAborted)
	OutOfRange         = Code(connect.CodeOutOfRange)
	Unimplemented      = Code(connect.CodeUnimplemented)
	Internal           = Code(connect.CodeInternal)
	Unavailable        = Code(connect.CodeUnavailable)
	DataLoss           = Code(connect.CodeDataLoss)
	Unauthenticated    = Code(connect.CodeUnauthenticated)
)

// httpStatus follows the mapping used by grpc-gateway. Canceled uses the
// nginx "client closed request" status.
var httpStatus = map[Code]int{
	OK:                 http.StatusOK,
	Canceled:           499,
	InvalidArgument:    http.StatusBadRequest,
	DeadlineExceeded:   http.StatusGatewayTimeout,
	NotFound:           http.StatusNotFound,
	AlreadyExists:      http.StatusConflict,
	PermissionDenied:   http.StatusForbidden,
	ResourceExhausted:  http.StatusTooManyRequests,
	FailedPrecondition: http.StatusPreconditionFailed,
	Aborted:            http.StatusConflict,
	OutOfRange:         http.StatusBadRequest,
	Unimplemented:      http.StatusNotImplemented,
	Unavailable:        http.StatusServiceUnavailable,
	Unauthenticated:    http.StatusUnauthorized,
}

// String is the snake case code name, e.g. "not_found".
func (c Code) String() string {
	if c == OK {
		return "ok"
	}
	return connect.Code(c).String()
}

// NewCodeFromConnectError returns Unknown for errors without a connect code.
func NewCodeFromConnectError(err error) Code {
	return Code(connect.CodeOf(err))
}

func (c Code) ConnectCode() connect.Code {
	if c > Unauthenticated {
		return connect.CodeUnknown
	}
	return connect.Code(c)
}

// HTTPCode is 500 for every code without a closer HTTP status.
func (c Code) HTTPCode() int {
	if s, ok := httpStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
