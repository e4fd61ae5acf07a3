package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with cause",
			err:  NewParsingError("read sheet", errors.New("sheet not found")),
			want: "[PARSING] read sheet: sheet not found",
		},
		{
			name: "without cause",
			err:  NewAppValidationError("threshold out of range"),
			want: "[VALIDATION] threshold out of range",
		},
		{
			name: "not found",
			err:  NewNotFoundError("workbook"),
			want: "[NOT_FOUND] workbook not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("write csv", cause)

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("header not found", nil).
		WithContext("section", "revenue").
		WithContext("search_rows", 20)

	assert.Equal(t, "revenue", err.Context["section"])
	assert.Equal(t, 20, err.Context["search_rows"])
}

func TestAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
	}{
		{"parsing", NewParsingError("m", nil), ErrTypeParsing},
		{"storage", NewStorageError("m", nil), ErrTypeStorage},
		{"validation", NewAppValidationError("m"), ErrTypeValidation},
		{"not found", NewNotFoundError("m"), ErrTypeNotFound},
		{"permission", NewPermissionError("m"), ErrTypePermission},
		{"config", NewConfigError("m", nil), ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
		})
	}
}
