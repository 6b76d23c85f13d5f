package detectors

import (
	"fmt"

	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// Length checks document, section and bullet lengths. Several limits relax with seniority,
// measured as years of dated experience.
type Length struct {
	MaxWords         int
	MaxWordsSenior   int
	SeniorYears      float64
	MinWords         int
	MaxSummaryWords  int
	MinSummaryWords  int
	MaxJobBullets    int
	MaxJobBulletsMid int
	MidYears         float64
	MinJobBullets    int
	MinJobProseWords int
	MaxBulletWords   int
	MaxEduWords      int
	MaxEduWordsEarly int
	EarlyYears       float64

	ref dates.YearMonth
}

// NewLength returns the length detector with its standard limits. ref resolves "Present".
func NewLength(ref dates.YearMonth) *Length {
	return &Length{
		MaxWords:         800,
		MaxWordsSenior:   1200,
		SeniorYears:      10,
		MinWords:         200,
		MaxSummaryWords:  100,
		MinSummaryWords:  20,
		MaxJobBullets:    6,
		MaxJobBulletsMid: 8,
		MidYears:         5,
		MinJobBullets:    2,
		MinJobProseWords: 15,
		MaxBulletWords:   35,
		MaxEduWords:      150,
		MaxEduWordsEarly: 250,
		EarlyYears:       3,
		ref:              ref,
	}
}

func (d *Length) Name() string { return "length" }

func (d *Length) Detect(text string, st *types.DocumentStructure) []types.Issue {
	years := extract.YearsOfExperience(extract.ParseJobs(text, st, d.ref))
	words := textspan.WordCount(text)

	var issues []types.Issue

	maxWords := d.MaxWords
	if years >= d.SeniorYears {
		maxWords = d.MaxWordsSenior
	}
	switch {
	case words > maxWords:
		issues = append(issues, types.NewIssue("RESUME_TOO_LONG",
			fmt.Sprintf("Document is %d words; aim for at most %d", words, maxWords)).
			At("Document").
			Suggest("Cut older roles to one or two lines and drop bullets that repeat the same skill").
			Detail(map[string]any{"words": words, "limit": maxWords, "years": years}))
	case words < d.MinWords:
		issues = append(issues, types.NewIssue("RESUME_TOO_SHORT",
			fmt.Sprintf("Document is only %d words", words)).
			At("Document").
			Suggest("Describe your responsibilities and results for each role in more detail").
			Detail(map[string]any{"words": words, "limit": d.MinWords}))
	}

	if sec := st.Section(types.SectionSummary); sec != nil {
		n := textspan.WordCount(sec.Content)
		label := SectionLabel(types.SectionSummary)
		switch {
		case n > d.MaxSummaryWords:
			issues = append(issues, types.NewIssue("SUMMARY_TOO_LONG",
				fmt.Sprintf("Summary is %d words", n)).
				At(label).OnLine(sec.StartLine).
				Suggest("Keep the summary to three or four sentences"))
		case n < d.MinSummaryWords:
			issues = append(issues, types.NewIssue("SUMMARY_TOO_SHORT",
				fmt.Sprintf("Summary is only %d words", n)).
				At(label).OnLine(sec.StartLine).
				Suggest("State your focus, years of experience and a signature achievement"))
		}
	}

	maxBullets := d.MaxJobBullets
	if years >= d.MidYears {
		maxBullets = d.MaxJobBulletsMid
	}
	for _, job := range st.Jobs {
		loc := locate(st, job.HeaderLine)
		quote := snippet(textspan.StripMarkers(job.Header))
		switch {
		case len(job.Bullets) > maxBullets:
			issues = append(issues, types.NewIssue("JOB_TOO_MANY_BULLETS",
				fmt.Sprintf("%d bullets under one role; aim for at most %d", len(job.Bullets), maxBullets)).
				At(loc).OnLine(job.HeaderLine).Quote(quote).
				Suggest("Keep the strongest, most quantified bullets"))
		case len(job.Bullets) < d.MinJobBullets && textspan.WordCount(job.Description) < d.MinJobProseWords:
			issues = append(issues, types.NewIssue("JOB_TOO_FEW_BULLETS",
				"Role has little or no description").
				At(loc).OnLine(job.HeaderLine).Quote(quote).
				Suggest("Add two to four bullets describing what you achieved"))
		}
	}

	long := 0
	for _, b := range st.AllBullets() {
		if b.WordCount <= d.MaxBulletWords {
			continue
		}
		if long == maxIssuesPerCode {
			break
		}
		long++
		issues = append(issues, types.NewIssue("BULLET_TOO_LONG",
			fmt.Sprintf("Bullet is %d words", b.WordCount)).
			At(locate(st, b.LineNumber)).OnLine(b.LineNumber).
			Quote(snippet(extract.StripGlyph(b.Text))).
			Suggest("Split it or trim it to one line: action, scope, result"))
	}

	if sec := st.Section(types.SectionEducation); sec != nil {
		limit := d.MaxEduWords
		if years < d.EarlyYears {
			limit = d.MaxEduWordsEarly
		}
		if n := textspan.WordCount(sec.Content); n > limit {
			issues = append(issues, types.NewIssue("EDUCATION_TOO_LONG",
				fmt.Sprintf("Education section is %d words", n)).
				At(SectionLabel(types.SectionEducation)).OnLine(sec.StartLine).
				Suggest("List degree, school and year; move coursework detail out unless you are early career"))
		}
	}
	return tag(d.Name(), issues)
}
