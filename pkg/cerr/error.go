package cerr

import (
	"errors"
	"log/slog"
	"runtime"
	"strings"

	"buf.build/gen/go/bufbuild/protovalidate/protocolbuffers/go/buf/validate"
	"connectrpc.com/connect"
	"google.golang.org/protobuf/proto"

	"github.com/kazz187/labelguild/pkg/clog"
)

// Error is a coded error. Msg and Details reach the caller, Err and Stack
// only the logs.
type Error struct {
	Code    Code
	Msg     string
	Err     error
	Stack   string
	Details []proto.Message
}

// NewError captures the stack when the code is logged at error level.
func NewError(code Code, msg string, underlying error) *Error {
	e := &Error{Code: code, Msg: msg, Err: underlying}
	if clog.ConnectCodeLevel(code.ConnectCode()) >= slog.LevelError {
		buf := make([]byte, 4096)
		e.Stack = string(buf[:runtime.Stack(buf, false)])
	}
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[" + e.Code.String() + "] " + e.Msg)
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AddViolation attaches a violation that is not tied to a request field,
// such as the reason a deadline passed.
func (e *Error) AddViolation(rule, msg string) *Error {
	e.Details = append(e.Details, &validate.Violation{
		RuleId:  proto.String(rule),
		Message: proto.String(msg),
	})
	return e
}

// AddFieldViolation attaches a violation naming the offending field.
func (e *Error) AddFieldViolation(field, rule, msg string) *Error {
	e.Details = append(e.Details, &validate.Violation{
		Field: &validate.FieldPath{
			Elements: []*validate.FieldPathElement{{FieldName: proto.String(field)}},
		},
		RuleId:  proto.String(rule),
		Message: proto.String(msg),
	})
	return e
}

// ConnectError drops details that cannot be encoded; Msg is kept.
func (e *Error) ConnectError() *connect.Error {
	ce := connect.NewError(e.Code.ConnectCode(), errors.New(e.Msg))
	for _, d := range e.Details {
		detail, err := connect.NewErrorDetail(d)
		if err != nil {
			slog.Warn("dropping undecodable error detail", "error", err)
			continue
		}
		ce.AddDetail(detail)
	}
	return ce
}
