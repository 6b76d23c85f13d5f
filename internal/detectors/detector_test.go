package detectors

import (
	"strings"
	"testing"

	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refMonth = dates.YearMonth{Year: 2024, Month: 6}

func codes(issues []types.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.IssueCode)
	}
	return out
}

func findIssue(t *testing.T, issues []types.Issue, code string) types.Issue {
	t.Helper()
	for _, is := range issues {
		if is.IssueCode == code {
			return is
		}
	}
	require.Failf(t, "issue not found", "code %s in %v", code, codes(issues))
	return types.Issue{}
}

func lines(ls ...string) string { return strings.Join(ls, "\n") }

func TestDefaults_NamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range Defaults(refMonth) {
		assert.False(t, seen[d.Name()], "duplicate detector %s", d.Name())
		seen[d.Name()] = true
	}
	assert.Len(t, seen, 11)
}

func TestDefaults_EmptyStructure(t *testing.T) {
	st := &types.DocumentStructure{}
	for _, d := range Defaults(refMonth) {
		assert.NotPanics(t, func() { d.Detect("", st) }, d.Name())
	}
}

func TestTag_SetsSource(t *testing.T) {
	issues := (&Polish{}).Detect("Built the the platform", &types.DocumentStructure{})
	require.NotEmpty(t, issues)
	for _, is := range issues {
		assert.Equal(t, "polish", is.Source)
	}
}

func TestLanguage_WeakPhrase(t *testing.T) {
	text := "Responsible for managing the release calendar"
	issues := NewLanguage().Detect(text, &types.DocumentStructure{})

	is := findIssue(t, issues, "WEAK_PHRASE")
	assert.Equal(t, "Responsible for", is.Current)
	assert.True(t, is.CanAutoFix)
	assert.Equal(t, "Led", is.AutoFixData["replacement"])
	require.NotNil(t, is.LineNumber)
	assert.Equal(t, 1, *is.LineNumber)
	assert.Equal(t, "Line 1", is.Location)
}

func TestLanguage_Pronouns(t *testing.T) {
	text := lines(
		"I led the team",
		"I built the billing service",
		"My work improved sales",
		"We shipped on time",
	)
	issues := NewLanguage().Detect(text, &types.DocumentStructure{})
	assert.Equal(t, []string{"FIRST_PERSON_PRONOUNS"}, codes(issues))
	assert.Equal(t, "I led", issues[0].Current)
	assert.Equal(t, 4, issues[0].AutoFixData["count"])
	assert.False(t, issues[0].CanAutoFix)
}

func TestLanguage_PronounsBelowLimit(t *testing.T) {
	text := lines("I led the team", "Built the billing service")
	assert.Empty(t, NewLanguage().Detect(text, &types.DocumentStructure{}))
}

func TestLanguage_RepeatedVerb(t *testing.T) {
	text := lines(
		"- Led the migration to Kubernetes",
		"- Led hiring for the platform team",
		"- Led the incident review process",
		"- Reduced costs by 20%",
	)
	st := &types.DocumentStructure{Jobs: []types.JobEntry{{Bullets: extract.Bullets(strings.Split(text, "\n"), 0)}}}
	issues := NewLanguage().Detect(text, st)
	is := findIssue(t, issues, "REPEATED_ACTION_VERB")
	assert.Equal(t, "Led", is.Current)
	assert.Equal(t, 1, *is.LineNumber)
}

func TestLanguage_AggregateLimits(t *testing.T) {
	passive := []string{
		"Reports were generated weekly",
		"Budgets were approved quarterly",
		"Releases were tested nightly",
		"Defects were fixed promptly",
		"Servers were patched monthly",
	}
	tests := []struct {
		name  string
		text  string
		code  string
		fires bool
	}{
		{"three vague words", "Shipped various features for several teams using multiple tools", "VAGUE_LANGUAGE", false},
		{"four vague words", "Shipped various features for several teams using multiple tools across numerous regions", "VAGUE_LANGUAGE", true},
		{"five buzzwords", "Dynamic, passionate, motivated, proactive and innovative engineer", "BUZZWORD_OVERUSE", false},
		{"six buzzwords", "Seasoned, dynamic, passionate, motivated, proactive and innovative engineer", "BUZZWORD_OVERUSE", true},
		{"five passive constructions", lines(passive...), "PASSIVE_VOICE", false},
		{"six passive constructions", lines(append(passive, "Audits were completed yearly")...), "PASSIVE_VOICE", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := NewLanguage().Detect(tt.text, &types.DocumentStructure{})
			if !tt.fires {
				assert.NotContains(t, codes(issues), tt.code)
				return
			}
			is := findIssue(t, issues, tt.code)
			assert.Equal(t, 1, *is.LineNumber)
			assert.NotEmpty(t, is.Current)
		})
	}
}

func TestFormat_InconsistentDates(t *testing.T) {
	text := lines(
		"Engineer, Acme  Jan 2020 - Mar 2022",
		"Analyst, Beta  03/2018 - 12/2019",
	)
	issues := (&Format{}).Detect(text, &types.DocumentStructure{})
	is := findIssue(t, issues, "INCONSISTENT_DATE_FORMAT")
	assert.Equal(t, "03/2018", is.Current)
	assert.Equal(t, 2, *is.LineNumber)
	assert.Equal(t, dates.FamilyAbbrMonth, is.AutoFixData["dominant"])
}

func TestFormat_YearOnlyAndMayIgnored(t *testing.T) {
	text := lines(
		"Engineer, Acme  Jan 2020 - Mar 2022",
		"Analyst, Beta  2016 - 2019",
		"Intern, Gamma  May 2015 - Aug 2015",
	)
	issues := (&Format{}).Detect(text, &types.DocumentStructure{})
	assert.NotContains(t, codes(issues), "INCONSISTENT_DATE_FORMAT")
}

func TestFormat_BulletStyles(t *testing.T) {
	text := lines("• Built the API", "• Led the team", "- Shipped the app")
	issues := (&Format{}).Detect(text, &types.DocumentStructure{})
	is := findIssue(t, issues, "INCONSISTENT_BULLET_STYLE")
	assert.Equal(t, "- Shipped the app", is.Current)
}

func TestFormat_TableMarkup(t *testing.T) {
	issues := (&Format{}).Detect("[TABLE][ROW][CELL]Skills[/CELL][/ROW][/TABLE]", &types.DocumentStructure{})
	is := findIssue(t, issues, "TABLE_OR_COLUMNS")
	assert.Equal(t, "Document", is.Location)
}

func TestFormat_ColumnLayouts(t *testing.T) {
	repeat := func(line string, n int) string {
		ls := make([]string, n)
		for i := range ls {
			ls[i] = line
		}
		return lines(ls...)
	}
	tests := []struct {
		name     string
		text     string
		fires    bool
		location string
	}{
		{"three pipe rows", repeat("Go | Python | SQL | Docker", 3), true, "Line 1"},
		{"two pipe rows", repeat("Go | Python | SQL | Docker", 2), false, ""},
		{"three tabbed rows", repeat("Go\tPython\tSQL", 3), true, "Line 1"},
		{"three wide gaps", repeat("Python          Go          SQL", 3), true, "Line 1"},
		{"right-aligned dates", repeat("Engineer, Acme          Jan 2020 - Mar 2022", 3), false, ""},
		{"twenty-six fragments", repeat("Kubernetes", 26), true, "Document"},
		{"twenty-four fragments", repeat("Kubernetes", 24), false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := (&Format{}).Detect(tt.text, &types.DocumentStructure{})
			if !tt.fires {
				assert.NotContains(t, codes(issues), "TABLE_OR_COLUMNS")
				return
			}
			is := findIssue(t, issues, "TABLE_OR_COLUMNS")
			assert.Equal(t, tt.location, is.Location)
		})
	}
}

func TestFormat_CapsSkipsHeaderLine(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		section types.Section
		fires   bool
	}{
		{
			name: "inline header exempts only itself",
			text: lines(
				"LEADERSHIP EXCELLENCE DELIVERING RESULTS ACROSS GLOBAL TEAMS EVERY QUARTER",
				"Skills: Go, SQL",
				"Shipped MASSIVE IMPACT daily",
			),
			section: types.Section{Type: types.SectionSkills, HeaderText: "Skills: Go, SQL", StartLine: 1, EndLine: 2},
			fires:   true,
		},
		{
			name: "standalone header above content",
			text: lines(
				"PROFESSIONAL EXPERIENCE WITH GLOBAL TEAMS",
				"Delivered RESULTS ACROSS EVERY MARKET for MAJOR CLIENTS WORLDWIDE",
			),
			section: types.Section{Type: types.SectionExperience, HeaderText: "PROFESSIONAL EXPERIENCE WITH GLOBAL TEAMS", StartLine: 1, EndLine: 1},
			fires:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &types.DocumentStructure{Sections: []types.Section{tt.section}}
			issues := (&Format{}).Detect(tt.text, st)
			if !tt.fires {
				assert.NotContains(t, codes(issues), "EXCESSIVE_CAPS")
				return
			}
			is := findIssue(t, issues, "EXCESSIVE_CAPS")
			assert.Equal(t, "LEADERSHIP", is.Current)
			assert.Equal(t, 1, *is.LineNumber)
		})
	}
}

func TestPolish(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		code    string
		current string
	}{
		{"repeated word", "Built the the platform", "REPEATED_WORD", "the the"},
		{"doubled comma", "Shipped features,, fast", "DOUBLED_PUNCTUATION", "features,,"},
		{"missing space", "Managed budgets,hired staff", "MISSING_SPACE_AFTER_PUNCTUATION", "budgets,hired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := (&Polish{}).Detect(tt.text, &types.DocumentStructure{})
			require.Len(t, issues, 1)
			assert.Equal(t, tt.code, issues[0].IssueCode)
			assert.Equal(t, tt.current, issues[0].Current)
		})
	}
}

func TestPolish_IntentionalPunctuation(t *testing.T) {
	text := lines("Wait for it...", "Acme Inc., Boston", "Visit www.example.com")
	assert.Empty(t, (&Polish{}).Detect(text, &types.DocumentStructure{}))
}

func TestStandards(t *testing.T) {
	text := lines(
		"Date of Birth: 01/02/1990",
		"Seeking a challenging position in finance",
		"Designed compensation models for 200 clients",
		"Expected salary: $120,000",
		"References available upon request",
	)
	issues := (&Standards{}).Detect(text, &types.DocumentStructure{})
	assert.Equal(t, []string{"PERSONAL_INFO", "REFERENCES_AVAILABLE", "SALARY_INFO", "OBJECTIVE_STATEMENT"}, codes(issues))

	salary := findIssue(t, issues, "SALARY_INFO")
	assert.Equal(t, 4, *salary.LineNumber)
	objective := findIssue(t, issues, "OBJECTIVE_STATEMENT")
	assert.Equal(t, "Seeking a challenging position", objective.Current)
}

func TestKeywords_MissingQuantification(t *testing.T) {
	text := lines(
		"- Built the reporting service",
		"- Improved onboarding docs",
		"- Mentored new hires",
		"- Cut build time by 30%",
	)
	st := &types.DocumentStructure{Jobs: []types.JobEntry{{Bullets: extract.Bullets(strings.Split(text, "\n"), 0)}}}
	issues := NewKeywords().Detect(text, st)
	is := findIssue(t, issues, "MISSING_QUANTIFICATION")
	assert.Equal(t, "Built the reporting service", is.Current)
	assert.Equal(t, []int{1, 2, 3}, is.AutoFixData["lines"])
	assert.NotContains(t, codes(issues), "LOW_KEYWORD_DENSITY", "short documents are not judged on density")
}

func TestKeywords_Hits(t *testing.T) {
	d := NewKeywords()
	st := &types.DocumentStructure{SkillCategories: []types.SkillCategory{{Skills: []string{"Terraform", "Go"}}}}
	occ, distinct := d.KeywordHits("Built services in Python and PostgreSQL on AWS", st)
	assert.Equal(t, 5, occ, "three lexicon hits plus two listed skills")
	assert.Equal(t, 5, distinct)
}

func TestSections_MissingAndOrder(t *testing.T) {
	st := &types.DocumentStructure{
		HasExperience: true, HasEducation: true, HasSkills: true,
		Sections: []types.Section{
			{Type: types.SectionEducation, StartLine: 2, EndLine: 3},
			{Type: types.SectionExperience, StartLine: 5, EndLine: 7},
			{Type: types.SectionSkills, StartLine: 9, EndLine: 10},
		},
	}
	issues := (&Sections{}).Detect("", st)
	assert.Equal(t, []string{"MISSING_SUMMARY", "SECTION_ORDER_EDUCATION_FIRST", "SECTION_ORDER_SKILLS_LATE"}, codes(issues))
	for _, is := range issues {
		assert.Equal(t, "structure", is.Source)
	}
}

func TestSections_Complete(t *testing.T) {
	st := &types.DocumentStructure{
		HasSummary: true, HasExperience: true, HasEducation: true, HasSkills: true,
		Sections: []types.Section{
			{Type: types.SectionSummary, StartLine: 1, EndLine: 1},
			{Type: types.SectionSkills, StartLine: 3, EndLine: 4},
			{Type: types.SectionExperience, StartLine: 6, EndLine: 9},
			{Type: types.SectionEducation, StartLine: 11, EndLine: 12},
		},
	}
	assert.Empty(t, (&Sections{}).Detect("", st))
}

func TestSkills_FewAndDuplicate(t *testing.T) {
	text := lines("SKILLS", "Languages: Go, Python, go")
	st := &types.DocumentStructure{
		HasSkills: true,
		Sections:  []types.Section{{Type: types.SectionSkills, HeaderText: "SKILLS", StartLine: 1, EndLine: 1}},
		SkillCategories: []types.SkillCategory{
			{Name: "Languages", Skills: []string{"Go", "Python", "go"}, Span: types.LineSpan{Start: 1, End: 1}},
		},
	}
	issues := NewSkills().Detect(text, st)
	assert.Equal(t, []string{"SKILLS_TOO_FEW", "SKILLS_DUPLICATE"}, codes(issues))
	assert.Equal(t, "go", issues[1].Current)
}

func TestSkills_SoftOnlyFromRawLines(t *testing.T) {
	text := lines("SKILLS", "Communication, Leadership, Teamwork, Problem Solving, Time Management")
	st := &types.DocumentStructure{
		HasSkills: true,
		Sections:  []types.Section{{Type: types.SectionSkills, HeaderText: "SKILLS", StartLine: 1, EndLine: 1}},
	}
	issues := NewSkills().Detect(text, st)
	assert.Equal(t, []string{"SKILLS_SOFT_ONLY"}, codes(issues))
}

func TestSkills_NoSection(t *testing.T) {
	assert.Empty(t, NewSkills().Detect("Go, Python", &types.DocumentStructure{}))
}

func TestLength_ShortDocument(t *testing.T) {
	bullet := "- Built " + strings.Repeat("scalable ", 38) + "systems"
	text := lines("Engineer, Acme, 2020 - 2022", bullet)
	st := &types.DocumentStructure{Jobs: []types.JobEntry{{
		HeaderLine: 0,
		Header:     "Engineer, Acme, 2020 - 2022",
		DateText:   "2020 - 2022",
		Span:       types.LineSpan{Start: 0, End: 1},
		Bullets:    []types.Bullet{extract.AnalyzeBullet(bullet, 1)},
	}}}
	issues := NewLength(refMonth).Detect(text, st)
	assert.Equal(t, []string{"RESUME_TOO_SHORT", "JOB_TOO_FEW_BULLETS", "BULLET_TOO_LONG"}, codes(issues))
	assert.Equal(t, "Engineer, Acme, 2020 - 2022", findIssue(t, issues, "JOB_TOO_FEW_BULLETS").Current)
}

func TestLength_LongDocumentRelaxesForSeniority(t *testing.T) {
	body := strings.Repeat("word ", 1000)
	junior := lines("Engineer, Acme, 2020 - 2022", body)
	senior := lines("Engineer, Acme, 2008 - 2022", body)
	entry := types.JobEntry{Span: types.LineSpan{Start: 0, End: 1}, Description: body}

	jr := NewLength(refMonth).Detect(junior, &types.DocumentStructure{Jobs: []types.JobEntry{entry}})
	assert.Contains(t, codes(jr), "RESUME_TOO_LONG")

	sr := NewLength(refMonth).Detect(senior, &types.DocumentStructure{Jobs: []types.JobEntry{entry}})
	assert.NotContains(t, codes(sr), "RESUME_TOO_LONG")
}

func TestAbbreviation_FlagsMinorityForm(t *testing.T) {
	text := lines("Built ML models", "Deployed ML pipelines", "Led the Machine Learning guild")
	issues := NewAbbreviation().Detect(text, &types.DocumentStructure{})
	require.Len(t, issues, 1)
	is := issues[0]
	assert.Equal(t, "INCONSISTENT_ABBREVIATION", is.IssueCode)
	assert.Equal(t, "Machine Learning", is.Current)
	assert.Equal(t, 3, *is.LineNumber)
	assert.Equal(t, "ML", is.AutoFixData["replacement"])
	assert.Equal(t, 1, is.AutoFixData["occurrences"])
}

func TestAbbreviation_TieFlagsExpansion(t *testing.T) {
	text := lines("Ran workloads on AWS", "Migrated to Amazon Web Services")
	issues := NewAbbreviation().Detect(text, &types.DocumentStructure{})
	require.Len(t, issues, 1)
	assert.Equal(t, "Amazon Web Services", issues[0].Current)
}

func TestAbbreviation_DefinitionIsNotInconsistent(t *testing.T) {
	text := lines("Machine Learning (ML) engineer", "Shipped ML features")
	assert.Empty(t, NewAbbreviation().Detect(text, &types.DocumentStructure{}))
}

func careerDoc(ls ...string) (string, *types.DocumentStructure) {
	st := &types.DocumentStructure{}
	for i, l := range ls {
		st.Jobs = append(st.Jobs, types.JobEntry{
			HeaderLine: i,
			Header:     l,
			DateText:   dates.RangePattern.FindString(l),
			Span:       types.LineSpan{Start: i, End: i},
		})
	}
	return lines(ls...), st
}

func TestCareer_NoDatesNoIssues(t *testing.T) {
	text := lines("Engineer at Acme", "- Built things")
	st := &types.DocumentStructure{Jobs: []types.JobEntry{{Header: "Engineer at Acme", Span: types.LineSpan{Start: 0, End: 1}}}}
	assert.Empty(t, NewCareer(refMonth).Detect(text, st))
}

func TestCareer_GapSeverityEscalates(t *testing.T) {
	text, st := careerDoc(
		"Engineer, Acme, Nov 2022 - Present",
		"Engineer, Beta, Jan 2021 - Jun 2022",
		"Engineer, Gamma, Jan 2019 - Jun 2020",
		"Engineer, Delta, Jan 2012 - Jan 2015",
	)
	issues := NewCareer(refMonth).Detect(text, st)
	assert.Equal(t, []string{"EMPLOYMENT_GAP_LONG", "EMPLOYMENT_GAP_EXTENDED", "EMPLOYMENT_GAP"}, codes(issues))
	assert.Equal(t, "Jan 2019 - Jun 2020", issues[0].Current)
	assert.Equal(t, 3, *issues[0].LineNumber)
	assert.Equal(t, 48, issues[0].AutoFixData["months"])
}

func TestCareer_JobHopping(t *testing.T) {
	text, st := careerDoc(
		"Developer, A, Jan 2020 - Jun 2020",
		"Developer, B, Jul 2020 - Dec 2020",
		"Developer, C, Jan 2021 - Sep 2021",
		"Developer, D, Oct 2021 - Present",
	)
	issues := NewCareer(refMonth).Detect(text, st)
	assert.Equal(t, []string{"JOB_HOPPING"}, codes(issues))
	assert.Equal(t, "Jan 2020 - Jun 2020", issues[0].Current)

	text, st = careerDoc(
		"Developer, A, Jan 2020 - Jun 2020",
		"Developer, B, Jul 2020 - Dec 2020",
		"Developer, D, Jan 2021 - Present",
	)
	assert.Equal(t, []string{"JOB_HOPPING_MINOR"}, codes(NewCareer(refMonth).Detect(text, st)))
}
