package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/ingestion"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation error: text - required", (&ErrValidation{Field: "text", Message: "required"}).Error())
	assert.Equal(t, "analysis not found: 42", (&ErrNotFound{Resource: "analysis", ID: "42"}).Error())
	assert.Equal(t, "result storage is not configured", (&ErrUnavailable{Feature: "result storage"}).Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation", &ErrValidation{Field: "text", Message: "required"}, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("decode: %w", &ErrValidation{Field: "text"}), http.StatusBadRequest},
		{"not found", &ErrNotFound{Resource: "issue code", ID: "FOO"}, http.StatusNotFound},
		{"unavailable", &ErrUnavailable{Feature: "result storage"}, http.StatusServiceUnavailable},
		{"too large", ingestion.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{"unknown error", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestValidationError_FromValidator(t *testing.T) {
	type req struct {
		Text string `validate:"required"`
	}
	err := validationError(validator.New().Struct(req{}))
	var ve *ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "text", ve.Field)
	assert.Equal(t, "required", ve.Message)

	assert.Same(t, assert.AnError, validationError(assert.AnError))
}
