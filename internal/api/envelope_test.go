package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/chroniclesapp/chronicles-server/internal/errors"
	"github.com/chroniclesapp/chronicles-server/internal/http/response"
)

func marshalToMap(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]int{"id": 3})
	require.NoError(t, err)

	out := marshalToMap(t, result)
	assert.Equal(t, map[string]any{
		"v":       float64(1),
		"success": true,
		"data":    map[string]any{"id": float64(3)},
	}, out)
}

func TestEnvelopeTransformer_NilData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", nil)
	require.NoError(t, err)

	out := marshalToMap(t, result)
	assert.Equal(t, true, out["success"])
	assert.Contains(t, out, "data")
}

func TestEnvelopeTransformer_Error(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "409", &APIError{
		status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "already exists",
		Details: map[string]string{"id": "7"},
	})
	require.NoError(t, err)

	out := marshalToMap(t, result)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "already exists", out["error"])
	assert.Equal(t, "CONFLICT", out["code"])
	assert.Equal(t, "already exists", out["message"])
	assert.Equal(t, map[string]any{"id": "7"}, out["details"])
	assert.NotContains(t, out, "data")
}

func TestEnvelopeTransformer_DoesNotDoubleWrap(t *testing.T) {
	wrapped := response.Wrap("x")
	result, err := EnvelopeTransformer(nil, "200", wrapped)
	require.NoError(t, err)
	assert.Equal(t, wrapped, result)
}

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		errs       []error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "domain error wins over the huma status",
			status:     http.StatusInternalServerError,
			errs:       []error{domainerrors.InvalidImport("bad", nil)},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_IMPORT",
		},
		{
			name:       "plain status maps to a code",
			status:     http.StatusUnprocessableEntity,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "unmapped status is internal",
			status:     http.StatusTeapot,
			wantStatus: http.StatusTeapot,
			wantCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newAPIError(tt.status, "msg", tt.errs...)
			apiErr, ok := err.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, apiErr.GetStatus())
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestNewAPIError_KeepsValidationDetails(t *testing.T) {
	err := newAPIError(http.StatusUnprocessableEntity, "validation failed",
		&huma.ErrorDetail{Message: "expected required property title to be present", Location: "body"})

	apiErr := err.(*APIError)
	details, ok := apiErr.Details.([]*huma.ErrorDetail)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "body", details[0].Location)
}
