package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorHelpers(t *testing.T) {
	err := InvalidRequestWithError(errors.New("unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
	assert.Equal(t, "unexpected EOF", err.Details)
	assert.Equal(t, "Invalid request format", err.Error())
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{{Field: "sector", Message: "max"}})

	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 1)
	assert.Equal(t, "sector", details.Errors[0].Field)
}

func TestAPIError_Render(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/dashboard/update", nil)

	require.NoError(t, render.Render(w, r, InvalidRequestWithError(errors.New("eof"))))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_REQUEST", body.ErrorCode)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeSectorNotFound, "Sector Not Found", "unknown", "/api/sectors/x").
		WithExtension("error_code", "SECTOR_NOT_FOUND")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeSectorNotFound, got["type"])
	assert.Equal(t, float64(404), got["status"])
	assert.Equal(t, "SECTOR_NOT_FOUND", got["error_code"])
	assert.Equal(t, "/api/sectors/x", got["instance"])
}

func TestProblemDetails_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(NewProblemDetails(500, TypeInternal, "Internal", "", ""))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "detail")
	assert.NotContains(t, string(data), "instance")
}
