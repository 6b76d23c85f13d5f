package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"},
		"person": {
			"type": "object",
			"required": ["name"],
			"properties": {"name": {"type": "string"}}
		}
	}
}`

func TestValidateJSONString_Valid(t *testing.T) {
	assert.NoError(t, ValidateJSONString(personSchema, `{"name": "test"}`))
}

func TestValidateJSONString_Invalid(t *testing.T) {
	err := ValidateJSONString(personSchema, `{"age": 30}`)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSONString_NestedField(t *testing.T) {
	err := ValidateJSONString(personSchema, `{"name": "a", "person": {}}`)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Len(t, validationErr.Errors, 1)
	assert.Contains(t, validationErr.Errors[0].Field, "person")
}

func TestValidateJSONString_MalformedSchema(t *testing.T) {
	err := ValidateJSONString(`{ invalid`, `{}`)
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.NotNil(t, loadErr.Unwrap())
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Contains(t, errorMsg, "age")
}

func TestValidateDetectionConfig(t *testing.T) {
	tests := []struct {
		name    string
		handler string
		cfg     map[string]any
		wantErr bool
	}{
		{"regex ok", "regex", map[string]any{"pattern": `\bsynergy\b`, "min_matches": 2}, false},
		{"regex missing pattern", "regex", map[string]any{"section": "all"}, true},
		{"regex unknown key", "regex", map[string]any{"pattern": "x", "flags": "i"}, true},
		{"count needs a bound", "count", map[string]any{"item": "bullets"}, true},
		{"count ok", "count", map[string]any{"item": "bullets", "min_count": 3}, false},
		{"count bad item", "count", map[string]any{"item": "pages", "max_count": 2}, true},
		{"consistency needs two variants", "consistency", map[string]any{
			"variants": []any{map[string]any{"name": "a", "pattern": "a"}},
		}, true},
		{"section_required ok", "section_required", map[string]any{"section": "skills"}, false},
		{"composite ok", "composite", map[string]any{
			"operator": "any_match",
			"rules": []any{map[string]any{
				"handler_type":     "regex",
				"detection_config": map[string]any{"pattern": "x"},
			}},
		}, false},
		{"nil config", "presence", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDetectionConfig(tt.handler, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDetectionConfig_UnknownHandler(t *testing.T) {
	err := ValidateDetectionConfig("fuzzy", map[string]any{})
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
}

func TestValidateFeatures(t *testing.T) {
	assert.NoError(t, ValidateFeatures(map[string]any{"bullet_count": 10, "has_summary": true}))
	assert.Error(t, ValidateFeatures(map[string]any{"bullet_count": -1}))
	assert.Error(t, ValidateFeatures(map[string]any{"has_summary": "yes"}))
}

func TestValidateAnalysisResult(t *testing.T) {
	valid := `{
		"issues": [],
		"structure_summary": {"sections": [], "job_count": 0, "bullet_count": 0, "word_count": 0},
		"score": {"total": 10, "breakdown": {}, "grade": "poor"},
		"rules_version": 0
	}`
	assert.NoError(t, ValidateAnalysisResult([]byte(valid)))

	outOfRange := `{
		"issues": [],
		"structure_summary": {"sections": [], "job_count": 0, "bullet_count": 0, "word_count": 0},
		"score": {"total": 100, "breakdown": {}, "grade": "excellent"},
		"rules_version": 0
	}`
	assert.Error(t, ValidateAnalysisResult([]byte(outOfRange)))
}
