package detectors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

var softSkills = toSet(
	"communication", "teamwork", "leadership", "problem solving", "problem-solving",
	"time management", "critical thinking", "adaptability", "collaboration", "creativity",
	"attention to detail", "work ethic", "interpersonal skills", "organization",
	"organizational skills", "multitasking", "self-motivated", "flexibility",
	"customer service", "decision making", "negotiation", "presentation skills",
	"conflict resolution", "emotional intelligence", "public speaking", "mentoring",
	"team player", "hard working", "hardworking", "fast learner", "detail oriented",
	"detail-oriented",
)

var skillListSeparator = regexp.MustCompile(`\s*[,;|•·]\s*`)

// Skills checks the size, balance and uniqueness of the listed skills.
type Skills struct {
	// MaxSkills is the count above which the list reads as keyword stuffing.
	MaxSkills int
	// MinSkills is the fewest skills an existing Skills section should list.
	MinSkills int
	// MinForSoftCheck is the list size needed before a soft-skills-only list is reported.
	MinForSoftCheck int
}

// NewSkills returns the skills detector with its standard thresholds.
func NewSkills() *Skills {
	return &Skills{MaxSkills: 40, MinSkills: 5, MinForSoftCheck: 3}
}

// listedSkill is one skill with the line it was listed on.
type listedSkill struct {
	name string
	line int
}

func (d *Skills) Name() string { return "skills" }

func (d *Skills) Detect(text string, st *types.DocumentStructure) []types.Issue {
	sec := st.Section(types.SectionSkills)
	if sec == nil {
		return nil
	}
	skills := listedSkills(text, st, sec)
	label := SectionLabel(types.SectionSkills)

	var issues []types.Issue
	switch {
	case len(skills) > d.MaxSkills:
		issues = append(issues, types.NewIssue("SKILLS_TOO_MANY",
			fmt.Sprintf("%d skills listed; long lists dilute the strongest ones", len(skills))).
			At(label).OnLine(sec.StartLine).
			Suggest(fmt.Sprintf("Trim the list to your %d most relevant skills", d.MaxSkills)).
			Detail(map[string]any{"count": len(skills)}))
	case len(skills) < d.MinSkills:
		issues = append(issues, types.NewIssue("SKILLS_TOO_FEW",
			fmt.Sprintf("Only %d skills listed", len(skills))).
			At(label).OnLine(sec.StartLine).
			Suggest("List the tools, technologies and methods you use regularly").
			Detail(map[string]any{"count": len(skills)}))
	}

	if len(skills) >= d.MinForSoftCheck {
		soft := 0
		for _, s := range skills {
			if softSkills[strings.ToLower(s.name)] {
				soft++
			}
		}
		if soft == len(skills) {
			issues = append(issues, types.NewIssue("SKILLS_SOFT_ONLY",
				"Skills section lists only soft skills").
				At(label).OnLine(sec.StartLine).
				Suggest("Add concrete hard skills; show soft skills through achievements instead"))
		}
	}

	seen := make(map[string]bool, len(skills))
	dups := 0
	for _, s := range skills {
		key := strings.ToLower(s.name)
		if !seen[key] {
			seen[key] = true
			continue
		}
		if dups == maxIssuesPerCode {
			break
		}
		dups++
		issues = append(issues, types.NewIssue("SKILLS_DUPLICATE",
			fmt.Sprintf("%q is listed more than once", s.name)).
			At(locate(st, s.line)).OnLine(s.line).
			Quote(s.name).
			Suggest("Remove the repeated entry").
			AutoFix(map[string]any{"action": "remove_duplicate", "skill": s.name}))
	}
	return tag(d.Name(), issues)
}

// listedSkills returns skills from the parsed categories, or splits the raw section lines when
// no categories were recognized.
func listedSkills(text string, st *types.DocumentStructure, sec *types.Section) []listedSkill {
	var out []listedSkill
	if len(st.SkillCategories) > 0 {
		for _, cat := range st.SkillCategories {
			for _, s := range cat.Skills {
				out = append(out, listedSkill{name: s, line: skillLine(text, cat.Span, s)})
			}
		}
		return out
	}
	lines := textspan.Lines(text)
	for i := sec.StartLine; i <= sec.EndLine && i < len(lines); i++ {
		line := textspan.StripMarkers(lines[i])
		if strings.EqualFold(strings.TrimSpace(line), sec.HeaderText) {
			continue
		}
		if _, rest, ok := strings.Cut(line, ":"); ok {
			line = rest
		}
		for _, s := range skillListSeparator.Split(extract.StripGlyph(line), -1) {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, listedSkill{name: s, line: i})
			}
		}
	}
	return out
}

// skillLine finds the line inside span listing skill, defaulting to the span start.
func skillLine(text string, span types.LineSpan, skill string) int {
	lines := textspan.Lines(text)
	for i := span.Start; i <= span.End && i < len(lines); i++ {
		if strings.Contains(lines[i], skill) {
			return i
		}
	}
	return span.Start
}
