package detectors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

var (
	letterWord        = regexp.MustCompile(`[A-Za-z]+`)
	doubledPunct      = regexp.MustCompile(`[A-Za-z0-9)]+[,;:!?.]{2,}`)
	missingSpaceComma = regexp.MustCompile(`[A-Za-z]{2,}[,;][A-Za-z]{2,}`)
	missingSpaceStop  = regexp.MustCompile(`[a-z]{3,}\.[A-Z][a-z]+`)
	urlLike           = regexp.MustCompile(`(?i)https?://|www\.|@|\.(?:com|org|net|io|dev)\b`)
)

// intentionalRepeats are doubled words that read correctly.
var intentionalRepeats = toSet("that", "had", "bye", "so", "very", "is")

// Polish flags typographic slips: doubled words, doubled punctuation and missing spaces.
type Polish struct{}

func (d *Polish) Name() string { return "polish" }

func (d *Polish) Detect(text string, st *types.DocumentStructure) []types.Issue {
	lines := textspan.Lines(text)
	var issues []types.Issue
	issues = append(issues, d.repeatedWords(lines, st)...)
	issues = append(issues, d.doubledPunctuation(lines, st)...)
	issues = append(issues, d.missingSpaces(lines, st)...)
	return tag(d.Name(), issues)
}

func (d *Polish) repeatedWords(lines []string, st *types.DocumentStructure) []types.Issue {
	var issues []types.Issue
	for i, line := range lines {
		locs := letterWord.FindAllStringIndex(line, -1)
		for k := 1; k < len(locs) && len(issues) < maxIssuesPerCode; k++ {
			prev, cur := line[locs[k-1][0]:locs[k-1][1]], line[locs[k][0]:locs[k][1]]
			if !strings.EqualFold(prev, cur) || len(cur) < 2 || intentionalRepeats[strings.ToLower(cur)] {
				continue
			}
			if strings.TrimSpace(line[locs[k-1][1]:locs[k][0]]) != "" {
				continue
			}
			phrase := line[locs[k-1][0]:locs[k][1]]
			issues = append(issues, types.NewIssue("REPEATED_WORD", fmt.Sprintf("%q is repeated", prev)).
				At(locate(st, i)).OnLine(i).Quote(phrase).
				Suggest("Remove the duplicated word").
				AutoFix(map[string]any{"original": phrase, "replacement": prev}))
		}
	}
	return issues
}

// doubledPunctuation flags runs like ",," or "!!". Ellipses are intentional.
func (d *Polish) doubledPunctuation(lines []string, st *types.DocumentStructure) []types.Issue {
	var issues []types.Issue
	for i, line := range lines {
		if urlLike.MatchString(line) {
			continue
		}
		for _, m := range doubledPunct.FindAllString(line, -1) {
			run := strings.TrimLeft(m, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789)")
			// ellipses and "Inc.," style abbreviations are intentional
			if strings.Trim(run, ".") == "" && len(run) >= 3 || run == ".," || run == ".;" || run == ".:" {
				continue
			}
			if len(issues) == maxIssuesPerCode {
				return issues
			}
			word := strings.TrimSuffix(m, run)
			issues = append(issues, types.NewIssue("DOUBLED_PUNCTUATION", fmt.Sprintf("Doubled punctuation %q", run)).
				At(locate(st, i)).OnLine(i).Quote(m).
				Suggest("Use a single punctuation mark").
				AutoFix(map[string]any{"original": m, "replacement": word + run[:1]}))
		}
	}
	return issues
}

func (d *Polish) missingSpaces(lines []string, st *types.DocumentStructure) []types.Issue {
	var issues []types.Issue
	skipContact := inSection(st, types.SectionContact)
	for i, line := range lines {
		if skipContact(i) || urlLike.MatchString(line) {
			continue
		}
		for _, re := range []*regexp.Regexp{missingSpaceComma, missingSpaceStop} {
			for _, m := range re.FindAllString(line, -1) {
				if len(issues) == maxIssuesPerCode {
					return issues
				}
				idx := strings.IndexAny(m, ",;.")
				fixed := m[:idx+1] + " " + m[idx+1:]
				issues = append(issues, types.NewIssue("MISSING_SPACE_AFTER_PUNCTUATION",
					fmt.Sprintf("Missing space after %q", m[idx:idx+1])).
					At(locate(st, i)).OnLine(i).Quote(m).
					Suggest("Add a space after the punctuation mark").
					AutoFix(map[string]any{"original": m, "replacement": fixed}))
			}
		}
	}
	return issues
}
