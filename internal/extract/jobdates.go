package extract

import (
	"sort"

	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

const (
	// gapThresholdMonths is the inter-job gap above which a gap is reported.
	gapThresholdMonths = 3
	// shortTenureMonths is the tenure below which a finished job counts toward job hopping.
	shortTenureMonths = 12
	// dateSearchLines bounds how far into a job entry a date range is searched for.
	dateSearchLines = 3
)

// Job is a job entry with a parsed date range.
type Job struct {
	Index   int            `json:"index"`
	Header  string         `json:"header"`
	Title   string         `json:"title,omitempty"`
	Company string         `json:"company,omitempty"`
	Range   dates.Range    `json:"range"`
	Span    types.LineSpan `json:"span"`
}

// Months returns the job's tenure in calendar months.
func (j Job) Months() int {
	return j.Range.Months()
}

// Gap is a period without employment between two jobs.
type Gap struct {
	After  Job `json:"after"`
	Before Job `json:"before"`
	Months int `json:"months"`
}

// ParseJobs parses date ranges for the job entries of st. Entries without a recognizable
// range are omitted. Present-synonym end dates resolve to ref.
func ParseJobs(text string, st *types.DocumentStructure, ref dates.YearMonth) []Job {
	if st == nil || len(st.Jobs) == 0 {
		return nil
	}
	lines := textspan.Lines(text)
	var jobs []Job
	for i, entry := range st.Jobs {
		r, ok := dates.ParseRange(entry.DateText, ref)
		if !ok {
			end := min(entry.Span.Start+dateSearchLines, entry.Span.End+1, len(lines))
			for l := max(entry.Span.Start, 0); l < end && !ok; l++ {
				r, ok = dates.ParseRange(lines[l], ref)
			}
		}
		if !ok {
			continue
		}
		jobs = append(jobs, Job{
			Index:   i,
			Header:  entry.Header,
			Title:   entry.Title,
			Company: entry.Company,
			Range:   r,
			Span:    entry.Span,
		})
	}
	return jobs
}

// sortedByStart returns a copy of jobs ordered by start month, ties broken by entry index.
func sortedByStart(jobs []Job) []Job {
	out := append([]Job(nil), jobs...)
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Range.Start.Index() != out[b].Range.Start.Index() {
			return out[a].Range.Start.Before(out[b].Range.Start)
		}
		return out[a].Index < out[b].Index
	})
	return out
}

// EmploymentGaps sorts jobs by start date and returns every gap longer than three months.
// Overlapping jobs extend the covered period, so concurrent roles never produce gaps.
func EmploymentGaps(jobs []Job) []Gap {
	if len(jobs) < 2 {
		return nil
	}
	sorted := sortedByStart(jobs)
	var gaps []Gap
	covered := sorted[0]
	for _, next := range sorted[1:] {
		months := dates.MonthsBetween(covered.Range.End, next.Range.Start)
		if months > gapThresholdMonths {
			gaps = append(gaps, Gap{After: covered, Before: next, Months: months})
		}
		if covered.Range.End.Before(next.Range.End) {
			covered = next
		}
	}
	return gaps
}

// ShortTenures returns the finished jobs that lasted under twelve months.
func ShortTenures(jobs []Job) []Job {
	var out []Job
	for _, j := range jobs {
		if !j.Range.IsCurrent && j.Months() < shortTenureMonths {
			out = append(out, j)
		}
	}
	return out
}

// YearsOfExperience returns the union of job ranges in years.
func YearsOfExperience(jobs []Job) float64 {
	if len(jobs) == 0 {
		return 0
	}
	sorted := sortedByStart(jobs)
	total := 0
	curStart, curEnd := sorted[0].Range.Start, sorted[0].Range.End
	for _, j := range sorted[1:] {
		if j.Range.Start.Index() <= curEnd.Index() {
			if curEnd.Before(j.Range.End) {
				curEnd = j.Range.End
			}
			continue
		}
		total += dates.MonthsBetween(curStart, curEnd)
		curStart, curEnd = j.Range.Start, j.Range.End
	}
	total += dates.MonthsBetween(curStart, curEnd)
	return float64(total) / 12
}
