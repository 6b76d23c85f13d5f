// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-analyzer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of issues listed per severity
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// pad right-fills s with spaces to width runes. fmt's width counts bytes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// PrintStructure outputs the detected sections and document counts.
func (p *Printer) PrintStructure(sum types.StructureSummary) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Words: %d   Lines: %d   Bullets: %d\n", sum.WordCount, sum.LineCount, sum.BulletCount)
	fmt.Fprintf(&sb, "Jobs: %d   Education: %d   Skill groups: %d\n", sum.JobCount, sum.EducationCount, sum.SkillCategoryCount)
	sb.WriteString("\n")

	if len(sum.Sections) == 0 {
		sb.WriteString("No sections detected\n")
	}
	for _, s := range sum.Sections {
		fmt.Fprintf(&sb, "%-15s lines %d-%d  %.2f %s\n", s.Type, s.StartLine+1, s.EndLine+1, s.Confidence, s.Method)
	}

	p.printBox("DOCUMENT STRUCTURE", sb.String())
}

// PrintScore outputs the total, grade and per-category points.
func (p *Printer) PrintScore(score types.Score) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Score: %d (%s)\n", score.Total, score.Grade)
	if score.AfterFix != nil && score.AfterFix.Gain > 0 {
		fmt.Fprintf(&sb, "After auto-fixes: ~%d (+%d, estimate)\n", score.AfterFix.Total, score.AfterFix.Gain)
	}
	sb.WriteString("\n")

	for _, c := range score.Categories {
		fmt.Fprintf(&sb, "%-24s %5.1f / %4.1f\n", c.Name, c.Points, c.MaxPoints)
	}

	p.printBox("SCORE", sb.String())
}

// PrintIssues outputs issues grouped by severity, most urgent first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintIssues(issues []types.Issue) {
	if len(issues) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("✅ NO ISSUES FOUND", boxWidth-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	groups := make(map[types.Severity][]types.Issue)
	for _, is := range issues {
		groups[is.Severity] = append(groups[is.Severity], is)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d issues:\n", len(issues))
	for _, sev := range []types.Severity{
		types.SeverityCritical, types.SeverityImportant, types.SeverityConsider, types.SeverityPolish,
	} {
		group := groups[sev]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s (%d)\n", strings.ToUpper(string(sev)), len(group))
		count := min(len(group), maxItemsToShow)
		for _, is := range group[:count] {
			name := is.DisplayName
			if name == "" {
				name = is.IssueCode
			}
			fmt.Fprintf(&sb, "⚠ %s\n", name)
			if is.Location != "" {
				fmt.Fprintf(&sb, "  %s\n", is.Location)
			}
			if is.Current != "" {
				fmt.Fprintf(&sb, "  %q\n", is.Current)
			}
		}
		if len(group) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(group)-maxItemsToShow)
		}
	}

	p.printBox("ISSUES", sb.String())
}
