package detectors

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// maxSnippetRunes bounds quoted line prefixes.
const maxSnippetRunes = 80

// SectionLabel returns the display name of a section type.
func SectionLabel(t types.SectionType) string {
	return t.Label()
}

// match is one regex hit on a single line.
type match struct {
	line int
	text string
}

// phrasePattern compiles a case-insensitive, word-bounded alternation of phrases.
func phrasePattern(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	// longer phrases first so "helped with" wins over "helped"
	sort.SliceStable(quoted, func(a, b int) bool { return len(quoted[a]) > len(quoted[b]) })
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// findMatches returns every match of re, line by line, with the verbatim matched text.
func findMatches(lines []string, re *regexp.Regexp, skip func(int) bool) []match {
	var out []match
	for i, line := range lines {
		if skip != nil && skip(i) {
			continue
		}
		for _, m := range re.FindAllString(line, -1) {
			out = append(out, match{line: i, text: m})
		}
	}
	return out
}

// locate renders a line reference qualified by the section holding the line.
func locate(st *types.DocumentStructure, idx int) string {
	if sec := st.SectionAt(idx); sec != nil {
		return SectionLabel(sec.Type) + ", " + textspan.LineRef(idx)
	}
	return textspan.LineRef(idx)
}

// inSection returns a predicate reporting whether a line falls in a section of type t.
func inSection(st *types.DocumentStructure, t types.SectionType) func(int) bool {
	return func(idx int) bool {
		sec := st.SectionAt(idx)
		return sec != nil && sec.Type == t
	}
}

// snippet returns a prefix of the trimmed line, bounded to maxSnippetRunes, that remains a
// verbatim substring of the line.
func snippet(line string) string {
	s := strings.TrimSpace(line)
	runes := []rune(s)
	if len(runes) <= maxSnippetRunes {
		return s
	}
	return strings.TrimSpace(string(runes[:maxSnippetRunes]))
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
