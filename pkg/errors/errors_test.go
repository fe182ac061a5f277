package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	// Test without cause
	err := New(CodeInvalidRange, "Test error")
	assert.Equal(t, "[1100] Test error", err.Error())

	// Test with cause
	cause := errors.New("underlying error")
	errWithCause := Wrap(CodeInvalidRange, "Test error", cause)
	assert.Contains(t, errWithCause.Error(), "underlying error")
	assert.Contains(t, errWithCause.Error(), "1100")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(CodeExportJobFailed, "Export failed", cause)

	// Test Unwrap
	assert.Equal(t, cause, err.Unwrap())

	// Test errors.Is
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	err := New(CodeCaptionFailed, "Caption failed")

	assert.True(t, Is(err, CodeCaptionFailed))
	assert.False(t, Is(err, CodeInvalidRange))

	// Test with regular error
	regularErr := errors.New("regular error")
	assert.False(t, Is(regularErr, CodeCaptionFailed))
}

func TestGetCode(t *testing.T) {
	// AppError
	appErr := New(CodeBackendUnavailable, "Backend down")
	assert.Equal(t, CodeBackendUnavailable, GetCode(appErr))

	// Regular error returns CodeUnknown
	regularErr := errors.New("regular error")
	assert.Equal(t, CodeUnknown, GetCode(regularErr))
}

func TestGetMessage(t *testing.T) {
	// AppError
	appErr := New(CodeFileNotFound, "File not found")
	assert.Equal(t, "File not found", GetMessage(appErr))

	// Regular error returns error message
	regularErr := errors.New("regular error message")
	assert.Equal(t, "regular error message", GetMessage(regularErr))
}

func TestWrapWithDetail(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapWithDetail(CodeEmptyOutput, "Export produced empty output", "/out/clip.mp4", cause)

	assert.Equal(t, "/out/clip.mp4", err.Detail)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodeEmptyOutput, GetCode(err))
}
