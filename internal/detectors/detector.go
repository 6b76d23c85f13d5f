// Package detectors holds the independent issue detectors run against every document.
//
// A detector reads the text and its immutable DocumentStructure and returns raw issues.
// Detectors share no mutable state, so the orchestrator may run them in any order or in
// parallel. Severity, weight and display fields are left for catalog enrichment.
package detectors

import (
	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// maxIssuesPerCode caps per-occurrence issues of a single code from one detector.
const maxIssuesPerCode = 10

// Detector finds one family of issues.
type Detector interface {
	Name() string
	Detect(text string, st *types.DocumentStructure) []types.Issue
}

// Defaults returns the standard detector set in a fixed order. ref resolves "Present"
// end dates for the date-aware detectors.
func Defaults(ref dates.YearMonth) []Detector {
	return []Detector{
		&Contact{},
		NewLanguage(),
		&Format{},
		&Polish{},
		&Standards{},
		NewKeywords(),
		&Sections{},
		NewSkills(),
		NewLength(ref),
		NewAbbreviation(),
		NewCareer(ref),
	}
}

// tag stamps the producing detector on each issue.
func tag(source string, issues []types.Issue) []types.Issue {
	for i := range issues {
		issues[i].Source = source
	}
	return issues
}
