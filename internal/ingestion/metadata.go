package ingestion

import (
	"encoding/json"
	"fmt"
)

// Metadata records what normalization changed.
type Metadata struct {
	Source       string `json:"source,omitempty"`
	InputBytes   int    `json:"input_bytes"`
	OutputBytes  int    `json:"output_bytes"`
	Lines        int    `json:"lines"`
	StrippedBOM  bool   `json:"stripped_bom,omitempty"`
	RemovedNULs  int    `json:"removed_nuls,omitempty"`
	CRLFLines    int    `json:"crlf_lines,omitempty"`
	RepairedUTF8 bool   `json:"repaired_utf8,omitempty"`
}

// Changed reports whether normalization altered anything beyond trailing whitespace.
func (m *Metadata) Changed() bool {
	return m.StrippedBOM || m.RemovedNULs > 0 || m.CRLFLines > 0 || m.RepairedUTF8
}

// ToJSON marshals Metadata to indented JSON.
func (m *Metadata) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return data, nil
}
