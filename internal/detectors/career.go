package detectors

import (
	"fmt"

	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// Career flags employment gaps and frequent job changes. Documents without parseable job
// dates produce no career issues.
type Career struct {
	// ExtendedGapMonths and LongGapMonths escalate a reported gap.
	ExtendedGapMonths int
	LongGapMonths     int
	// HoppingCount short tenures make JOB_HOPPING; HoppingMinorCount make JOB_HOPPING_MINOR.
	HoppingCount      int
	HoppingMinorCount int

	ref dates.YearMonth
}

// NewCareer returns the career detector. ref resolves "Present" end dates.
func NewCareer(ref dates.YearMonth) *Career {
	return &Career{
		ExtendedGapMonths: 6,
		LongGapMonths:     12,
		HoppingCount:      3,
		HoppingMinorCount: 2,
		ref:               ref,
	}
}

func (d *Career) Name() string { return "career" }

func (d *Career) Detect(text string, st *types.DocumentStructure) []types.Issue {
	jobs := extract.ParseJobs(text, st, d.ref)
	if len(jobs) == 0 {
		return nil
	}
	var issues []types.Issue
	for _, g := range extract.EmploymentGaps(jobs) {
		code := "EMPLOYMENT_GAP"
		switch {
		case g.Months > d.LongGapMonths:
			code = "EMPLOYMENT_GAP_LONG"
		case g.Months > d.ExtendedGapMonths:
			code = "EMPLOYMENT_GAP_EXTENDED"
		}
		issues = append(issues, types.NewIssue(code,
			fmt.Sprintf("%d-month gap between %s and %s", g.Months, jobLabel(g.After), jobLabel(g.Before))).
			At(locate(st, g.Before.Span.Start)).OnLine(g.Before.Span.Start).
			Quote(g.Before.Range.Text).
			Suggest("Briefly explain the gap: study, caregiving, freelance work or a sabbatical").
			Detail(map[string]any{"months": g.Months}))
	}

	short := extract.ShortTenures(jobs)
	var code string
	switch {
	case len(short) >= d.HoppingCount:
		code = "JOB_HOPPING"
	case len(short) == d.HoppingMinorCount:
		code = "JOB_HOPPING_MINOR"
	}
	if code != "" {
		first := short[0]
		issues = append(issues, types.NewIssue(code,
			fmt.Sprintf("%d roles lasted less than a year", len(short))).
			At(locate(st, first.Span.Start)).OnLine(first.Span.Start).
			Quote(first.Range.Text).
			Suggest("Group contract roles together or note why short stints ended").
			Detail(map[string]any{"short_tenures": len(short)}))
	}
	return tag(d.Name(), issues)
}

func jobLabel(j extract.Job) string {
	switch {
	case j.Company != "":
		return j.Company
	case j.Title != "":
		return j.Title
	}
	return j.Range.Text
}
