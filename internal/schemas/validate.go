// Package schemas provides JSON Schema validation for rule configurations, scoring features
// and the analysis output contract.
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	embedded "github.com/jonathan/resume-analyzer/schemas"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validate("(string schema)", gojsonschema.NewStringLoader(schemaContent), gojsonschema.NewStringLoader(jsonContent))
}

// ValidateValue validates a Go value, as it would marshal to JSON, against schema content.
func ValidateValue(schemaContent string, v any) error {
	return validate("(string schema)", gojsonschema.NewStringLoader(schemaContent), gojsonschema.NewGoLoader(v))
}

// ValidateDetectionConfig validates a rule's detection_config against its handler's schema.
func ValidateDetectionConfig(handlerType string, cfg map[string]any) error {
	schema, err := embedded.Handler(handlerType)
	if err != nil {
		return &SchemaLoadError{Name: handlerType, Message: "no schema for handler type", Cause: err}
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return validate(handlerType, gojsonschema.NewStringLoader(schema), gojsonschema.NewGoLoader(cfg))
}

// ValidateAnalysisResult validates a serialized analysis result against the output contract.
func ValidateAnalysisResult(jsonContent []byte) error {
	return validateEmbedded(embedded.AnalysisResult, gojsonschema.NewBytesLoader(jsonContent))
}

// ValidateFeatures validates a raw scoring feature map.
func ValidateFeatures(features map[string]any) error {
	return validateEmbedded(embedded.Features, gojsonschema.NewGoLoader(features))
}

func validateEmbedded(name string, doc gojsonschema.JSONLoader) error {
	schema, err := embedded.Load(name)
	if err != nil {
		return &SchemaLoadError{Name: name, Message: "embedded schema missing", Cause: err}
	}
	return validate(name, gojsonschema.NewStringLoader(schema), doc)
}

func validate(name string, schemaLoader, documentLoader gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Name:    name,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
