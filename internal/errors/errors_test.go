package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		want     string
	}{
		{
			name: "simple message",
			apiError: &APIError{
				StatusCode: http.StatusBadRequest,
				ErrorCode:  "INVALID_REQUEST",
				Message:    "Invalid request format",
			},
			want: "Invalid request format",
		},
		{
			name: "empty message",
			apiError: &APIError{
				StatusCode: http.StatusInternalServerError,
				ErrorCode:  "INTERNAL_SERVER_ERROR",
				Message:    "",
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.apiError.Error())
		})
	}
}

func TestNew(t *testing.T) {
	got := New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	assert.Equal(t, http.StatusBadRequest, got.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", got.ErrorCode)
	assert.Equal(t, "Invalid request format", got.Message)
	assert.Nil(t, got.Details)
}

func TestNewWithDetails(t *testing.T) {
	details := map[string]string{"field": "threshold"}
	got := NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", details)
	assert.Equal(t, http.StatusBadRequest, got.StatusCode)
	assert.Equal(t, details, got.Details)
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{"validation failed", ErrValidationFailed, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"not found", ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"workbook not found", ErrWorkbookNotFound, http.StatusNotFound, "WORKBOOK_NOT_FOUND"},
		{"payload too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"workbook unreadable", ErrWorkbookUnreadable, http.StatusUnprocessableEntity, "WORKBOOK_UNREADABLE"},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{"internal", ErrInternalServer, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"filesystem", ErrFileSystem, http.StatusInternalServerError, "FILESYSTEM_ERROR"},
		{"service unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("similarity_threshold", "must be between 0 and 1")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)

	ve, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "similarity_threshold", ve.Field)
	assert.Equal(t, "must be between 0 and 1", ve.Message)
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("Workbook")
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "Workbook not found", err.Message)
	assert.Equal(t, "Workbook", err.Details)
}

func TestWorkbookUnreadableError(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := WorkbookUnreadableError(cause)
	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.Equal(t, "WORKBOOK_UNREADABLE", err.ErrorCode)
	assert.Equal(t, cause.Error(), err.Details)
}

func TestParseConfigError(t *testing.T) {
	err := ParseConfigError(errors.New("branches: at least one required"))
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "PARSE_CONFIG_INVALID", err.ErrorCode)
}

func TestFileSystemError(t *testing.T) {
	err := FileSystemError("write", errors.New("disk full"))
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Contains(t, err.Message, "write")
	assert.Equal(t, "disk full", err.Details)
}

func TestNewValidationErrors(t *testing.T) {
	errs := []ValidationError{
		{Field: "header_row", Message: "must be non-negative"},
		{Field: "branches", Message: "required"},
	}
	err := NewValidationErrors(errs)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)

	ve, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, ve.Errors, 2)
}

func TestErrPanic(t *testing.T) {
	err := ErrPanic("index out of range")
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)

	rec, ok := err.Details.(PanicRecovery)
	require.True(t, ok)
	assert.Equal(t, "index out of range", rec.Message)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, ErrWorkbookNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "WORKBOOK_NOT_FOUND", resp.Error.ErrorCode)
}

func TestAPIError_Render(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/test", nil)
	assert.NoError(t, ErrNotFound.Render(w, r))
}
