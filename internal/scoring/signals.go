package scoring

import (
	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/detectors"
	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// polishCodes are the typography issues counted into polish_issue_count.
var polishCodes = map[string]bool{
	"REPEATED_WORD":                   true,
	"DOUBLED_PUNCTUATION":             true,
	"MISSING_SPACE_AFTER_PUNCTUATION": true,
	"EXCESSIVE_CAPS":                  true,
}

// ExtractFeatures condenses a document, its structure and its enriched issues into the
// feature record. ref resolves "Present" end dates.
func ExtractFeatures(text string, st *types.DocumentStructure, issues []types.Issue, ref dates.YearMonth) Features {
	if st == nil {
		st = &types.DocumentStructure{}
	}
	codes := make(map[string]int, len(issues))
	for _, is := range issues {
		codes[is.IssueCode]++
	}
	has := func(code string) bool { return codes[code] > 0 }

	stats := extract.Stats(st.AllBullets())
	f := Features{
		BulletCount:           stats.Total,
		QuantifiedBulletCount: stats.Quantified,
		StrongVerbBulletCount: stats.StrongVerb,
		HasSummary:            st.HasSummary,
		SummaryWordCount:      textspan.WordCount(st.SectionText(types.SectionSummary)),
		JobCount:              len(st.Jobs),
		WordCount:             textspan.WordCount(text),

		DateFormatConsistent:  !has("INCONSISTENT_DATE_FORMAT"),
		BulletStyleConsistent: !has("INCONSISTENT_BULLET_STYLE"),
		HasTables:             has("TABLE_OR_COLUMNS"),

		HasExperience: st.HasExperience,
		HasEducation:  st.HasEducation,
		HasSkills:     st.HasSkills,

		HasPersonalInfo:     has("PERSONAL_INFO"),
		HasPhoto:            has("PHOTO_REFERENCE"),
		HasReferencesLine:   has("REFERENCES_AVAILABLE"),
		HasSalary:           has("SALARY_INFO"),
		HasObjective:        has("OBJECTIVE_STATEMENT"),
		UnprofessionalEmail: has("UNPROFESSIONAL_EMAIL"),
	}
	if f.JobCount > 0 {
		jobBullets := 0
		for _, j := range st.Jobs {
			jobBullets += len(j.Bullets)
		}
		f.AvgBulletsPerJob = float64(jobBullets) / float64(f.JobCount)
	}
	for code, n := range codes {
		if polishCodes[code] {
			f.PolishIssueCount += n
		}
	}

	lc := detectors.NewLanguage().Counts(text, st)
	f.WeakPhraseCount = lc.WeakPhrases
	f.VagueWordCount = lc.Vague
	f.BuzzwordCount = lc.Buzzwords
	f.PronounCount = lc.Pronouns
	f.PassiveCount = lc.Passive

	contact, _ := extract.ExtractContact(text)
	f.HasEmail = contact.Email != "" && contact.EmailValid
	f.HasPhone = contact.Phone != "" && contact.PhoneValid
	f.HasLinkedIn = contact.LinkedIn != ""

	for _, sc := range st.SkillCategories {
		f.SkillCount += len(sc.Skills)
	}

	career := detectors.NewCareer(ref)
	jobs := extract.ParseJobs(text, st, ref)
	for _, g := range extract.EmploymentGaps(jobs) {
		f.EmploymentGapCount++
		if g.Months > career.LongGapMonths {
			f.HasLongGap = true
		}
	}
	f.ShortTenureCount = len(extract.ShortTenures(jobs))
	return f
}
