// Package dates parses the month/year date ranges that appear in résumé job and education entries.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthNames = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

const token = `(?:(?:` + monthNames + `)\.?,?\s+(?:19|20)\d{2}|\d{1,2}/(?:19|20)\d{2}|\d{1,2}-(?:19|20)\d{2}|(?:19|20)\d{2})`

const presentWords = `present|current|now|today|ongoing|date`

const separator = `\s*(?:-|–|—|to|until|through|till)\s*`

var (
	// RangePattern matches "(Month? Year) separator (Month? Year | present)".
	RangePattern = regexp.MustCompile(`(?i)\b(` + token + `)` + separator + `(` + token + `|` + presentWords + `)\b`)

	// TokenPattern matches a single date token.
	TokenPattern = regexp.MustCompile(`(?i)\b` + token + `\b`)

	monthYear   = regexp.MustCompile(`(?i)^(` + monthNames + `)\.?,?\s+(\d{4})$`)
	numericDate = regexp.MustCompile(`^(\d{1,2})[/-](\d{4})$`)
	yearOnly    = regexp.MustCompile(`^(\d{4})$`)
	presentRe   = regexp.MustCompile(`(?i)^(?:` + presentWords + `)$`)

	fullMonth = regexp.MustCompile(`(?i)^(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	abbrMonth = regexp.MustCompile(`(?i)^(?:` + monthNames + `)\.?\s`)
)

// YearMonth is a calendar month.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Index returns a monotonically increasing month index suitable for subtraction.
func (ym YearMonth) Index() int {
	return ym.Year*12 + ym.Month - 1
}

// IsZero reports whether the value is unset.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	return ym.Index() < other.Index()
}

// FromTime converts a time to its calendar month.
func FromTime(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// Range is a parsed date range.
type Range struct {
	Text      string    `json:"text"`
	Start     YearMonth `json:"start"`
	End       YearMonth `json:"end"`
	IsCurrent bool      `json:"is_current"`
	// YearOnly is set when neither endpoint carried a month.
	YearOnly bool `json:"year_only"`
}

// Months returns the tenure of the range in whole calendar months.
func (r Range) Months() int {
	return MonthsBetween(r.Start, r.End)
}

// MonthsBetween computes the calendar-month distance from start to end, never negative.
func MonthsBetween(start, end YearMonth) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	d := end.Index() - start.Index()
	if d < 0 {
		return 0
	}
	return d
}

// MonthsBetweenTimes is the day-count fallback used when only timestamps are available:
// it divides elapsed days by the mean month length.
func MonthsBetweenTimes(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24 / 30.44)
}

var monthIndex = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseToken parses a single date token. Year-only tokens resolve to January.
func ParseToken(s string) (YearMonth, bool) {
	s = strings.TrimSpace(s)
	if m := monthYear.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[2])
		key := strings.ToLower(m[1])
		if len(key) > 3 {
			key = key[:3]
		}
		return YearMonth{Year: year, Month: monthIndex[key]}, true
	}
	if m := numericDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return YearMonth{}, false
		}
		return YearMonth{Year: year, Month: month}, true
	}
	if m := yearOnly.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return YearMonth{Year: year, Month: 1}, true
	}
	return YearMonth{}, false
}

// ParseRange finds and parses the first date range in s. A present-synonym end resolves to ref.
func ParseRange(s string, ref YearMonth) (Range, bool) {
	m := RangePattern.FindStringSubmatch(s)
	if m == nil {
		return Range{}, false
	}
	start, ok := ParseToken(m[1])
	if !ok {
		return Range{}, false
	}
	r := Range{Text: m[0], Start: start}
	if presentRe.MatchString(strings.TrimSpace(m[2])) {
		r.End = ref
		r.IsCurrent = true
	} else {
		end, ok := ParseToken(m[2])
		if !ok {
			return Range{}, false
		}
		r.End = end
	}
	r.YearOnly = yearOnly.MatchString(strings.TrimSpace(m[1])) &&
		(r.IsCurrent || yearOnly.MatchString(strings.TrimSpace(m[2])))
	if r.End.Before(r.Start) {
		return Range{}, false
	}
	return r, true
}

// HasRange reports whether s contains a recognizable date range.
func HasRange(s string) bool {
	return RangePattern.MatchString(s)
}

// Format families used for consistency checks.
const (
	FamilyFullMonth = "month_full"
	FamilyAbbrMonth = "month_abbreviated"
	FamilyNumSlash  = "numeric_slash"
	FamilyNumDash   = "numeric_dash"
	FamilyYearOnly  = "year_only"
)

// Family classifies a single date token by its written format.
func Family(tok string) string {
	tok = strings.TrimSpace(tok)
	switch {
	case fullMonth.MatchString(tok):
		return FamilyFullMonth
	case abbrMonth.MatchString(tok):
		return FamilyAbbrMonth
	case strings.Contains(tok, "/"):
		return FamilyNumSlash
	case strings.Contains(tok, "-"):
		return FamilyNumDash
	default:
		return FamilyYearOnly
	}
}
