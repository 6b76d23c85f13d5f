package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// minHighlightRunes is the shortest snippet worth highlighting.
const minHighlightRunes = 3

// nonSnippet matches summaries that look like quotes but are not document text.
var nonSnippet = regexp.MustCompile(`(?i)^(?:\d+\s+(?:words?|lines?|bullets?|characters?|chars?|pages?)|lines?\s+\d+(?:\s*[-,–]\s*\d+)*)$`)

// ValidateSnippet returns current trimmed of ellipses when it is a verbatim part of text,
// and "" otherwise.
func ValidateSnippet(text, current string) string {
	s := trimEllipses(current)
	if s == "" || nonSnippet.MatchString(s) {
		return ""
	}
	if !strings.Contains(text, s) {
		return ""
	}
	return s
}

func trimEllipses(s string) string {
	s = strings.TrimSpace(s)
	for {
		before := s
		s = strings.TrimSuffix(s, "...")
		s = strings.TrimSuffix(s, "…")
		s = strings.TrimPrefix(s, "...")
		s = strings.TrimPrefix(s, "…")
		s = strings.TrimSpace(s)
		if s == before {
			return s
		}
	}
}

// ValidateSnippets applies ValidateSnippet to every issue and sets IsHighlightable. It is
// the only place the highlight flag is decided.
func ValidateSnippets(text string, issues []types.Issue) []types.Issue {
	for i := range issues {
		issues[i].Current = ValidateSnippet(text, issues[i].Current)
		issues[i].IsHighlightable = utf8.RuneCountInString(issues[i].Current) >= minHighlightRunes
	}
	return issues
}

type dedupeKey struct {
	code     string
	location string
	current  string
}

// dedupe drops later issues that repeat the code, location and snippet of an earlier one.
func dedupe(issues []types.Issue) []types.Issue {
	seen := make(map[dedupeKey]bool, len(issues))
	out := issues[:0]
	for _, is := range issues {
		k := dedupeKey{is.IssueCode, is.Location, is.Current}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, is)
	}
	return out
}
