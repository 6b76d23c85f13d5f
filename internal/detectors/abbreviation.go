package detectors

import (
	"fmt"
	"regexp"

	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// AbbreviationPair is a short form and its spelled-out expansion.
type AbbreviationPair struct {
	Short    string
	Expanded string
}

// DefaultAbbreviations lists the pairs checked for mixed usage.
var DefaultAbbreviations = []AbbreviationPair{
	{"ML", "Machine Learning"},
	{"AI", "Artificial Intelligence"},
	{"NLP", "Natural Language Processing"},
	{"UI", "User Interface"},
	{"UX", "User Experience"},
	{"QA", "Quality Assurance"},
	{"SEO", "Search Engine Optimization"},
	{"CRM", "Customer Relationship Management"},
	{"ERP", "Enterprise Resource Planning"},
	{"KPI", "Key Performance Indicator"},
	{"API", "Application Programming Interface"},
	{"AWS", "Amazon Web Services"},
	{"GCP", "Google Cloud Platform"},
	{"K8s", "Kubernetes"},
	{"JS", "JavaScript"},
	{"OOP", "Object-Oriented Programming"},
	{"SaaS", "Software as a Service"},
	{"ROI", "Return on Investment"},
}

type abbreviationMatcher struct {
	pair     AbbreviationPair
	short    *regexp.Regexp
	expanded *regexp.Regexp
	defined  *regexp.Regexp
}

// Abbreviation flags terms written both abbreviated and spelled out. A pair introduced once
// as "Expansion (ABBR)" is a definition and is left alone.
type Abbreviation struct {
	matchers []abbreviationMatcher
}

// NewAbbreviation returns the detector over DefaultAbbreviations.
func NewAbbreviation() *Abbreviation {
	return NewAbbreviationWith(DefaultAbbreviations)
}

// NewAbbreviationWith returns the detector over the given pairs.
func NewAbbreviationWith(pairs []AbbreviationPair) *Abbreviation {
	d := &Abbreviation{}
	for _, p := range pairs {
		short := regexp.QuoteMeta(p.Short)
		expanded := regexp.QuoteMeta(p.Expanded)
		d.matchers = append(d.matchers, abbreviationMatcher{
			pair:     p,
			short:    regexp.MustCompile(`\b` + short + `s?\b`),
			expanded: regexp.MustCompile(`(?i)\b` + expanded + `s?\b`),
			defined:  regexp.MustCompile(`(?i)\b` + expanded + `s?\s*\(\s*` + short + `s?\s*\)`),
		})
	}
	return d
}

func (d *Abbreviation) Name() string { return "abbreviation" }

func (d *Abbreviation) Detect(text string, st *types.DocumentStructure) []types.Issue {
	lines := textspan.Lines(text)
	var issues []types.Issue
	for _, m := range d.matchers {
		if m.defined.MatchString(text) {
			continue
		}
		shorts := findMatches(lines, m.short, nil)
		longs := findMatches(lines, m.expanded, nil)
		if len(shorts) == 0 || len(longs) == 0 {
			continue
		}
		// the minority form is flagged; a tie favours the abbreviation
		minority, original, replacement := longs, m.pair.Expanded, m.pair.Short
		if len(shorts) < len(longs) {
			minority, original, replacement = shorts, m.pair.Short, m.pair.Expanded
		}
		first := minority[0]
		issues = append(issues, types.NewIssue("INCONSISTENT_ABBREVIATION",
			fmt.Sprintf("Both %q and %q are used; pick one form", m.pair.Short, m.pair.Expanded)).
			At(locate(st, first.line)).OnLine(first.line).
			Quote(first.text).
			Suggest(fmt.Sprintf("Use %q throughout, or spell it out once as \"%s (%s)\"", replacement, m.pair.Expanded, m.pair.Short)).
			AutoFix(map[string]any{"original": original, "replacement": replacement, "occurrences": len(minority)}))
	}
	return tag(d.Name(), issues)
}
