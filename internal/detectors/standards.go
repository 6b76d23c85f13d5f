package detectors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// maxPersonalInfoIssues caps personal-information findings.
const maxPersonalInfoIssues = 5

var (
	personalInfoPattern = regexp.MustCompile(`(?i)\b(?:date of birth|d\.o\.b|dob|born on|marital status|social security number|ssn|passport (?:no|number))\b|\bage:\s*\d{2}\b|\b\d{2}\s+years old\b|\b(?:nationality|religion|gender|sex)\s*:`)
	photoPattern        = regexp.MustCompile(`(?i)\b(?:photo|photograph|headshot|picture)\s*(?:attached|enclosed|:)|\[(?:photo|image|picture)\]`)
	referencesPattern   = regexp.MustCompile(`(?i)references?\s+(?:are\s+)?(?:available|provided|furnished)\s+(?:up)?on\s+request`)
	salaryWordPattern   = regexp.MustCompile(`(?i)\b(?:(?:current|expected|desired)\s+)?(?:salary|compensation|ctc)(?:\s+(?:requirements?|expectations?))?\b`)
	salaryValuePattern  = regexp.MustCompile(`^\s*(?:[:\-–]\s*|is\s+|of\s+)?(?:[$€£₹]\s?)?\d`)
	objectivePattern    = regexp.MustCompile(`(?i)\b(?:seeking|looking for)\s+(?:an?\s+)?(?:challenging\s+|entry-level\s+|rewarding\s+)?(?:position|role|opportunity)\b`)
	objectiveHeader     = regexp.MustCompile(`(?i)^\s*(?:career\s+|professional\s+)?objective\b`)
)

// Standards flags content that professional résumés leave out.
type Standards struct{}

func (d *Standards) Name() string { return "standards" }

func (d *Standards) Detect(text string, st *types.DocumentStructure) []types.Issue {
	lines := textspan.Lines(text)
	var issues []types.Issue

	for _, m := range findMatches(lines, personalInfoPattern, nil) {
		if len(issues) == maxPersonalInfoIssues {
			break
		}
		issues = append(issues, types.NewIssue("PERSONAL_INFO",
			fmt.Sprintf("Personal information (%s) does not belong on a résumé", strings.ToLower(m.text))).
			At(locate(st, m.line)).OnLine(m.line).Quote(snippet(lines[m.line])).
			Suggest("Remove personal details such as age, birth date or marital status").
			AutoFix(map[string]any{"action": "remove_line", "line": m.line + 1}))
	}

	if ms := findMatches(lines, photoPattern, nil); len(ms) > 0 {
		issues = append(issues, types.NewIssue("PHOTO_REFERENCE", "Résumé references a photo").
			At(locate(st, ms[0].line)).OnLine(ms[0].line).Quote(ms[0].text).
			Suggest("Leave photos off unless the job market explicitly expects one"))
	}

	if ms := findMatches(lines, referencesPattern, nil); len(ms) > 0 {
		issues = append(issues, types.NewIssue("REFERENCES_AVAILABLE", "\"References available upon request\" wastes space").
			At(locate(st, ms[0].line)).OnLine(ms[0].line).Quote(ms[0].text).
			Suggest("Remove the line; employers assume references are available").
			AutoFix(map[string]any{"action": "remove_line", "line": ms[0].line + 1}))
	}

	for i, line := range lines {
		loc := salaryWordPattern.FindStringIndex(line)
		if loc == nil || !salaryValuePattern.MatchString(line[loc[1]:]) {
			continue
		}
		issues = append(issues, types.NewIssue("SALARY_INFO", "Salary details appear on the résumé").
			At(locate(st, i)).OnLine(i).Quote(snippet(line)).
			Suggest("Discuss compensation during interviews, not on the résumé").
			AutoFix(map[string]any{"action": "remove_line", "line": i + 1}))
		break
	}

	if is, ok := d.objective(lines, st); ok {
		issues = append(issues, is)
	}
	return tag(d.Name(), issues)
}

// objective flags an objective statement: an Objective header or "seeking a position" phrasing.
func (d *Standards) objective(lines []string, st *types.DocumentStructure) (types.Issue, bool) {
	build := func(line int, quote string) types.Issue {
		return types.NewIssue("OBJECTIVE_STATEMENT", "Objective statements are outdated").
			At(locate(st, line)).OnLine(line).Quote(quote).
			Suggest("Replace the objective with a summary of the value you bring")
	}
	for i, line := range lines {
		if m := objectiveHeader.FindString(textspan.StripMarkers(line)); m != "" {
			return build(i, strings.TrimSpace(m)), true
		}
	}
	if ms := findMatches(lines, objectivePattern, nil); len(ms) > 0 {
		return build(ms[0].line, ms[0].text), true
	}
	return types.Issue{}, false
}
