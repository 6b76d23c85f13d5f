// Package types provides type definitions for structured data used throughout the resume-analyzer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Severity ranks how much an issue matters.
type Severity string

// Severity levels, most to least urgent.
const (
	SeverityCritical  Severity = "critical"
	SeverityImportant Severity = "important"
	SeverityConsider  Severity = "consider"
	SeverityPolish    Severity = "polish"
)

// Rank orders severities for sorting; lower is more urgent. Unknown values sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityImportant:
		return 1
	case SeverityConsider:
		return 2
	case SeverityPolish:
		return 3
	default:
		return 4
	}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s.Rank() < 4
}

// Issue is a single detected problem with a document.
//
// Detectors fill IssueCode, Message, Location, Current and the remediation fields.
// Severity, Weight, DisplayName and Category are assigned during catalog enrichment.
type Issue struct {
	IssueCode   string   `json:"issue_code"`
	Severity    Severity `json:"severity"`
	Weight      int      `json:"weight"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`

	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
	// Current is empty or a verbatim substring of the analyzed text.
	Current         string `json:"current,omitempty"`
	IsHighlightable bool   `json:"is_highlightable"`
	LineNumber      *int   `json:"line_number,omitempty"`

	Suggestion  string         `json:"suggestion,omitempty"`
	FixGuidance string         `json:"fix_guidance,omitempty"`
	CanAutoFix  bool           `json:"can_auto_fix"`
	AutoFixData map[string]any `json:"auto_fix_data,omitempty"`

	// Source names the detector or rule that produced the issue.
	Source string `json:"source"`
}

// NewIssue starts an issue for the given code.
func NewIssue(code, message string) Issue {
	return Issue{IssueCode: code, Message: message}
}

// At sets the human-readable location.
func (i Issue) At(location string) Issue {
	i.Location = location
	return i
}

// OnLine records a zero-based line index, stored one-based.
func (i Issue) OnLine(idx int) Issue {
	n := idx + 1
	i.LineNumber = &n
	return i
}

// Quote sets the snippet to highlight. Validation happens centrally during analysis.
func (i Issue) Quote(current string) Issue {
	i.Current = current
	return i
}

// Suggest sets the remediation suggestion.
func (i Issue) Suggest(suggestion string) Issue {
	i.Suggestion = suggestion
	return i
}

// AutoFix marks the issue as automatically fixable with the given data.
func (i Issue) AutoFix(data map[string]any) Issue {
	i.CanAutoFix = true
	i.AutoFixData = data
	return i
}

// Detail attaches supporting data without marking the issue fixable.
func (i Issue) Detail(data map[string]any) Issue {
	i.AutoFixData = data
	return i
}

// From sets the producing detector or rule.
func (i Issue) From(source string) Issue {
	i.Source = source
	return i
}
