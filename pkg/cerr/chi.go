package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kazz187/labelguild/pkg/clog"
)

type responseReceiverKey struct{}

// responseReceiver collects what a plain HTTP handler wants to answer; the
// middleware writes it once the handler returns.
type responseReceiver struct {
	response any
	err      error
}

func responseReceiverFromContext(ctx context.Context) *responseReceiver {
	rr, _ := ctx.Value(responseReceiverKey{}).(*responseReceiver)
	return rr
}

func SetJSONResponse(ctx context.Context, response any) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.response = response
	}
}

func SetJSONError(ctx context.Context, err error) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.err = err
	}
}

func SetNewJSONError(ctx context.Context, code Code, msg string, err error) {
	SetJSONError(ctx, NewError(code, msg, err))
}

func NewConvertConnectErrorChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rr := &responseReceiver{}
			ctx := context.WithValue(r.Context(), responseReceiverKey{}, rr)
			next.ServeHTTP(rw, r.WithContext(ctx))
			writeResponse(ctx, rw, rr)
		})
	}
}

type httpViolation struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message,omitempty"`
}

type httpError struct {
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Violations []httpViolation `json:"violations,omitempty"`
}

func writeResponse(ctx context.Context, rw http.ResponseWriter, rr *responseReceiver) {
	if rr.err == nil {
		writeJSON(ctx, rw, http.StatusOK, rr.response)
		return
	}
	if closedByPeer(rr.err) {
		writeJSONError(ctx, rw, NewError(Canceled, "connection closed", rr.err))
		return
	}

	clog.AddError(ctx, rr.err)
	var cErr *Error
	if !errors.As(rr.err, &cErr) {
		cErr = NewError(Unknown, "unknown error", rr.err)
	}
	if cErr.Stack != "" {
		clog.AddStack(ctx, cErr.Stack)
	}
	writeJSONError(ctx, rw, cErr)
}

func writeJSONError(ctx context.Context, rw http.ResponseWriter, e *Error) {
	body := httpError{Code: e.Code.String(), Message: e.Msg}
	for _, v := range Violations(e) {
		body.Violations = append(body.Violations, httpViolation{
			Field:   FieldName(v),
			Rule:    v.GetRuleId(),
			Message: v.GetMessage(),
		})
	}
	writeJSON(ctx, rw, e.Code.HTTPCode(), body)
}

// writeJSON sets the content type before the status line; headers written
// after WriteHeader are dropped.
func writeJSON(ctx context.Context, rw http.ResponseWriter, status int, body any) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(body); err != nil {
		clog.AddError(ctx, NewError(Internal, "server error", err))
		status = http.StatusInternalServerError
		buf = bytes.NewBufferString(`{"code":"internal","message":"server error"}` + "\n")
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	if _, err := rw.Write(buf.Bytes()); err != nil {
		clog.AddError(ctx, NewError(Internal, "server error", err))
	}
}
