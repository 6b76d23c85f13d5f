// Package schemas embeds the JSON Schemas shipped with the analyzer: one per rule handler
// type, the analysis output contract and the scoring feature map.
package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json handlers/*.schema.json
var files embed.FS

// Names of the top-level schemas.
const (
	AnalysisResult = "analysis_result.schema.json"
	Features       = "features.schema.json"
)

// Load returns the named top-level schema.
func Load(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	return string(data), nil
}

// Handler returns the detection_config schema for a rule handler type.
func Handler(handlerType string) (string, error) {
	return Load("handlers/" + handlerType + ".schema.json")
}
