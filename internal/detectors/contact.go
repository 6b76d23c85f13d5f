package detectors

import (
	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// Contact reports missing or malformed contact details.
type Contact struct{}

func (d *Contact) Name() string { return "contact" }

func (d *Contact) Detect(text string, _ *types.DocumentStructure) []types.Issue {
	_, issues := extract.ExtractContact(text)
	return tag(d.Name(), issues)
}
