// Package textspan provides line and character indexing helpers shared by every extractor.
package textspan

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// markerPattern matches structural markers injected by upstream document converters,
// e.g. [H1], [H2], [BULLET], [/B].
var markerPattern = regexp.MustCompile(`\[/?(?:H[1-6]|BULLET|LI|B|I|U|TABLE|ROW|CELL|HR|BR|PAGE)\]`)

var wordPattern = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9'’+#./-]*`)

// Lines splits text into lines on "\n". A trailing "\r" is trimmed from each line so that
// every returned line remains a verbatim substring of the source text.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Offsets returns the byte offset at which each line starts.
func Offsets(text string) []int {
	if text == "" {
		return nil
	}
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// Slice returns the contiguous region of text covering lines [start, end] inclusive.
// Out-of-range bounds are clamped; an empty string is returned for an empty range.
func Slice(text string, offsets []int, start, end int) string {
	if len(offsets) == 0 || start > end {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if end >= len(offsets) {
		end = len(offsets) - 1
	}
	if start > end {
		return ""
	}
	from := offsets[start]
	to := len(text)
	if end+1 < len(offsets) {
		to = offsets[end+1] - 1 // exclude the newline
	}
	if to < from {
		return ""
	}
	return strings.TrimSuffix(text[from:to], "\r")
}

// LineAt returns the zero-based line index containing byte offset pos.
func LineAt(offsets []int, pos int) int {
	lo, hi := 0, len(offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if offsets[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// FindLine returns the index of the first line (at or after from) containing needle,
// or -1. Matching is case-insensitive.
func FindLine(lines []string, needle string, from int) int {
	if needle == "" {
		return -1
	}
	n := strings.ToLower(needle)
	for i := max(from, 0); i < len(lines); i++ {
		if strings.Contains(strings.ToLower(lines[i]), n) {
			return i
		}
	}
	return -1
}

// Contains reports whether snippet occurs verbatim in text.
func Contains(text, snippet string) bool {
	return snippet != "" && strings.Contains(text, snippet)
}

// Verbatim locates s in text ignoring case and returns the exact source spelling,
// so that callers holding a normalized form can still produce a highlightable snippet.
func Verbatim(text, s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if strings.Contains(text, s) {
		return s, true
	}
	idx := strings.Index(strings.ToLower(text), strings.ToLower(s))
	if idx < 0 || len(strings.ToLower(text)) != len(text) {
		return "", false
	}
	return text[idx : idx+len(s)], true
}

// StripMarkers removes converter markers like [H1] or [BULLET] from a line.
func StripMarkers(line string) string {
	if !strings.Contains(line, "[") {
		return line
	}
	return strings.TrimSpace(markerPattern.ReplaceAllString(line, " "))
}

// HasMarker reports whether the line carries the given marker, e.g. "BULLET".
func HasMarker(line, marker string) bool {
	return strings.Contains(line, "["+marker+"]")
}

// Normalize lowercases a line, strips markers and collapses punctuation used around
// headers ("EXPERIENCE:", "— Skills —") so it can be compared against a lexicon.
func Normalize(line string) string {
	line = strings.ToLower(StripMarkers(line))
	line = strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return strings.Join(strings.Fields(line), " ")
}

// Words returns the word tokens of s.
func Words(s string) []string {
	return wordPattern.FindAllString(StripMarkers(s), -1)
}

// WordCount counts word tokens in s.
func WordCount(s string) int {
	return len(Words(s))
}

// IsBlank reports whether a line is empty after stripping markers.
func IsBlank(line string) bool {
	return strings.TrimSpace(StripMarkers(line)) == ""
}

// Truncate shortens s to limit runes, appending an ellipsis when truncated.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// LineRef renders a human-readable one-based line reference.
func LineRef(idx int) string {
	return "Line " + strconv.Itoa(idx+1)
}
