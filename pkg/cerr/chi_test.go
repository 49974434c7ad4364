package cerr_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"buf.build/gen/go/bufbuild/protovalidate/protocolbuffers/go/buf/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/kazz187/labelguild/pkg/cerr"
)

func TestChiMiddlewareWritesJSON(t *testing.T) {
	incomplete := cerr.NewError(cerr.InvalidArgument, "submission is incomplete", nil).
		AddFieldViolation("transcript", "required", "transcript is required")

	tests := []struct {
		name       string
		handler    func(r *http.Request)
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "response",
			handler:    func(r *http.Request) { cerr.SetJSONResponse(r.Context(), map[string]any{"id": "speech"}) },
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"id": "speech"},
		},
		{
			name:       "not found",
			handler:    func(r *http.Request) { cerr.SetNewJSONError(r.Context(), cerr.NotFound, "project not found", nil) },
			wantStatus: http.StatusNotFound,
			wantBody:   map[string]any{"code": "not_found", "message": "project not found"},
		},
		{
			name:       "violations",
			handler:    func(r *http.Request) { cerr.SetJSONError(r.Context(), incomplete) },
			wantStatus: http.StatusBadRequest,
			wantBody: map[string]any{
				"code":    "invalid_argument",
				"message": "submission is incomplete",
				"violations": []any{map[string]any{
					"field": "transcript", "rule": "required", "message": "transcript is required",
				}},
			},
		},
		{
			name:       "foreign error",
			handler:    func(r *http.Request) { cerr.SetJSONError(r.Context(), errors.New("disk on fire")) },
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"code": "unknown", "message": "unknown error"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := cerr.NewConvertConnectErrorChiMiddleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				tt.handler(r)
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/speech", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestViolationsFromBothSides(t *testing.T) {
	err := cerr.NewError(cerr.InvalidArgument, "submission is incomplete", nil).
		AddFieldViolation("clarity", "required", "clarity is required")

	server := cerr.Violations(err)
	require.Len(t, server, 1)
	assert.Equal(t, "clarity", cerr.FieldName(server[0]))

	client := cerr.Violations(err.ConnectError())
	require.Len(t, client, 1)
	assert.Equal(t, "clarity", cerr.FieldName(client[0]))
	assert.True(t, cerr.IsCode(err.ConnectError(), cerr.InvalidArgument))

	assert.Empty(t, cerr.FieldName(&validate.Violation{Message: proto.String("expired")}))
	assert.Nil(t, cerr.Violations(errors.New("plain")))
}
