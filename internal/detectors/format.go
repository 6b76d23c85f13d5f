package detectors

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

const (
	// minTableLines is how many column-like lines suggest a table or multi-column layout.
	minTableLines = 3
	// shortLineRatio is the share of very short lines typical of column extraction.
	shortLineRatio = 0.7
	// minLinesForShortRatio is the document size needed before shortLineRatio applies.
	minLinesForShortRatio = 25
	// capsWordLimit is how many shouted words outside headers are tolerated.
	capsWordLimit = 10
	// minCapsWordLen skips acronyms like AWS or SQL.
	minCapsWordLen = 5
)

var (
	columnGap   = regexp.MustCompile(`\S\s{4,}\S`)
	capsWord    = regexp.MustCompile(`\b[A-Z][A-Z'-]+\b`)
	tableMarker = regexp.MustCompile(`\[/?(?:TABLE|ROW|CELL)\]`)
)

// Format flags inconsistent dates and bullets, table layouts and excessive capitals.
//
// Table detection is a heuristic over tab, pipe and wide-gap density plus the share of very
// short lines. It does not parse layout.
type Format struct{}

func (d *Format) Name() string { return "format" }

func (d *Format) Detect(text string, st *types.DocumentStructure) []types.Issue {
	lines := textspan.Lines(text)
	var issues []types.Issue
	issues = append(issues, d.dateFormats(lines, st)...)
	issues = append(issues, d.bulletStyles(lines, st)...)
	issues = append(issues, d.tables(text, lines, st)...)
	issues = append(issues, d.caps(lines, st)...)
	return tag(d.Name(), issues)
}

type familyHit struct {
	line  int
	token string
}

// dateFormats fires when two or more written date families co-occur. Year-only tokens and
// "May", which reads as both full and abbreviated, never count.
func (d *Format) dateFormats(lines []string, st *types.DocumentStructure) []types.Issue {
	hits := make(map[string][]familyHit)
	var order []string
	for i, line := range lines {
		for _, m := range dates.RangePattern.FindAllStringSubmatch(line, -1) {
			for _, tok := range m[1:3] {
				if _, ok := dates.ParseToken(tok); !ok {
					continue
				}
				fam := dates.Family(tok)
				if fam == dates.FamilyYearOnly || strings.HasPrefix(strings.ToLower(tok), "may") {
					continue
				}
				if len(hits[fam]) == 0 {
					order = append(order, fam)
				}
				hits[fam] = append(hits[fam], familyHit{line: i, token: tok})
			}
		}
	}
	if len(order) < 2 {
		return nil
	}

	dominant := order[0]
	for _, fam := range order[1:] {
		if len(hits[fam]) > len(hits[dominant]) {
			dominant = fam
		}
	}
	var minority familyHit
	for _, fam := range order {
		if fam != dominant {
			minority = hits[fam][0]
			break
		}
	}
	return []types.Issue{types.NewIssue("INCONSISTENT_DATE_FORMAT",
		fmt.Sprintf("Dates use %d different formats", len(order))).
		At(locate(st, minority.line)).OnLine(minority.line).Quote(minority.token).
		Suggest("Use one date format throughout, e.g. \"Jan 2020 - Mar 2022\"").
		AutoFix(map[string]any{"formats": order, "dominant": dominant})}
}

// bulletStyles fires when bullets use two or more glyph families. Converter markers are
// ignored because they do not reflect what the author typed.
func (d *Format) bulletStyles(lines []string, st *types.DocumentStructure) []types.Issue {
	counts := make(map[string]int)
	first := make(map[string]int)
	var order []string
	for i, line := range lines {
		g := extract.BulletGlyph(line)
		if g == extract.GlyphNone || g == extract.GlyphMarker || !extract.IsBullet(line) {
			continue
		}
		if counts[g] == 0 {
			order = append(order, g)
			first[g] = i
		}
		counts[g]++
	}
	if len(order) < 2 {
		return nil
	}
	dominant := order[0]
	for _, g := range order[1:] {
		if counts[g] > counts[dominant] {
			dominant = g
		}
	}
	minority := order[0]
	if minority == dominant {
		minority = order[1]
	}
	line := first[minority]
	return []types.Issue{types.NewIssue("INCONSISTENT_BULLET_STYLE",
		fmt.Sprintf("Bullets use %d different symbols", len(order))).
		At(locate(st, line)).OnLine(line).Quote(snippet(lines[line])).
		Suggest("Use a single bullet symbol throughout").
		AutoFix(map[string]any{"styles": order, "dominant": dominant})}
}

func (d *Format) tables(text string, lines []string, st *types.DocumentStructure) []types.Issue {
	skipContact := inSection(st, types.SectionContact)
	tableLines, nonBlank, short := 0, 0, 0
	firstTable := -1
	for i, line := range lines {
		if textspan.IsBlank(line) {
			continue
		}
		nonBlank++
		if textspan.WordCount(line) <= 3 {
			short++
		}
		if skipContact(i) {
			continue
		}
		// right-aligned dates are a common single-column layout
		gap := columnGap.MatchString(strings.TrimSpace(line)) && !dates.HasRange(line)
		if strings.Count(line, "\t") >= 2 || strings.Count(line, "|") >= 3 || gap {
			tableLines++
			if firstTable < 0 {
				firstTable = i
			}
		}
	}

	reason := ""
	switch {
	case tableMarker.MatchString(text):
		reason = "table markup"
	case tableLines >= minTableLines:
		reason = fmt.Sprintf("%d column-aligned lines", tableLines)
	case nonBlank >= minLinesForShortRatio && float64(short)/float64(nonBlank) > shortLineRatio:
		reason = "mostly fragmentary lines"
	default:
		return nil
	}

	is := types.NewIssue("TABLE_OR_COLUMNS", "Layout looks like a table or multiple columns ("+reason+")").
		Suggest("Use a single-column layout; applicant tracking systems often scramble tables and columns")
	if firstTable >= 0 {
		is = is.At(locate(st, firstTable)).OnLine(firstTable)
	} else {
		is = is.At("Document")
	}
	return []types.Issue{is}
}

// caps counts shouted words outside header lines.
func (d *Format) caps(lines []string, st *types.DocumentStructure) []types.Issue {
	headerLines := make(map[int]bool)
	for _, s := range st.Sections {
		if s.HeaderText == "" {
			continue
		}
		// standalone headers sit above the content, inline ones share its first line
		for _, i := range []int{s.StartLine - 1, s.StartLine} {
			if i >= 0 && i < len(lines) && strings.TrimSpace(lines[i]) == s.HeaderText {
				headerLines[i] = true
				break
			}
		}
	}
	count := 0
	firstLine, firstWord := -1, ""
	for i, line := range lines {
		if headerLines[i] || isAllCapsLine(line) {
			continue
		}
		for _, w := range capsWord.FindAllString(line, -1) {
			if len(w) < minCapsWordLen {
				continue
			}
			count++
			if firstLine < 0 {
				firstLine, firstWord = i, w
			}
		}
	}
	if count <= capsWordLimit {
		return nil
	}
	return []types.Issue{types.NewIssue("EXCESSIVE_CAPS",
		fmt.Sprintf("%d words are written in all capitals", count)).
		At(locate(st, firstLine)).OnLine(firstLine).Quote(firstWord).
		Suggest("Reserve capitals for headers and acronyms")}
}

// isAllCapsLine reports whether a short line is a styled heading such as a name or title.
func isAllCapsLine(line string) bool {
	s := strings.TrimSpace(textspan.StripMarkers(line))
	if s == "" || textspan.WordCount(s) > 4 {
		return false
	}
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
	}
	return true
}
