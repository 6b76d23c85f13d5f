package detectors

import (
	"github.com/jonathan/resume-analyzer/internal/types"
)

// Sections flags missing core sections and out-of-order sections. Order checks are pure
// line-index comparisons.
type Sections struct{}

func (d *Sections) Name() string { return "structure" }

func (d *Sections) Detect(_ string, st *types.DocumentStructure) []types.Issue {
	var issues []types.Issue

	required := []struct {
		typ     types.SectionType
		code    string
		suggest string
	}{
		{types.SectionExperience, "MISSING_EXPERIENCE", "Add an Experience section with your roles, dates and achievements"},
		{types.SectionEducation, "MISSING_EDUCATION", "Add an Education section, even if brief"},
		{types.SectionSkills, "MISSING_SKILLS", "Add a Skills section listing your key tools and technologies"},
		{types.SectionSummary, "MISSING_SUMMARY", "Open with a two or three sentence professional summary"},
	}
	for _, r := range required {
		if !st.Has(r.typ) {
			issues = append(issues, types.NewIssue(r.code, "No "+SectionLabel(r.typ)+" section found").
				At("Document").Suggest(r.suggest))
		}
	}

	exp := st.Section(types.SectionExperience)
	edu := st.Section(types.SectionEducation)
	skills := st.Section(types.SectionSkills)

	if exp != nil && edu != nil && edu.StartLine < exp.StartLine {
		issues = append(issues, types.NewIssue("SECTION_ORDER_EDUCATION_FIRST",
			"Education appears before Experience").
			At(SectionLabel(types.SectionEducation)).OnLine(edu.StartLine).
			Suggest("Move Experience above Education unless you are a recent graduate").
			AutoFix(map[string]any{"move": "education", "after": "experience"}))
	}
	if skills != nil && (exp != nil || edu != nil) && after(skills, exp) && after(skills, edu) {
		issues = append(issues, types.NewIssue("SECTION_ORDER_SKILLS_LATE",
			"Skills appear after Experience and Education").
			At(SectionLabel(types.SectionSkills)).OnLine(skills.StartLine).
			Suggest("Place Skills near the top so keyword scanners and recruiters see them early").
			AutoFix(map[string]any{"move": "skills", "before": "experience"}))
	}
	return tag(d.Name(), issues)
}

// after reports whether a starts below b; a missing b never constrains.
func after(a, b *types.Section) bool {
	return b == nil || a.StartLine > b.StartLine
}
