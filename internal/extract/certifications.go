package extract

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

var certificationPattern = regexp.MustCompile(`(?i)\b(?:certified|certification|certificate|pmp|cissp|cisa|cism|cpa|cfa|ccna|ccnp|cka|ckad|comptia|itil|six sigma|scrum master|csm|psm|aws solutions architect|azure (?:administrator|developer|fundamentals)|gcp professional|oscp|ceh|rhce|rhcsa|licensed)\b`)

// Certifications lists certification lines. When a Certifications section exists every
// non-blank line in it counts; otherwise lines anywhere matching a known credential do.
func Certifications(text string, st *types.DocumentStructure) []string {
	var out []string
	if sec := st.Section(types.SectionCertifications); sec != nil {
		for _, line := range textspan.Lines(sec.Content) {
			if c := StripGlyph(line); c != "" && !strings.HasSuffix(c, ":") {
				out = append(out, c)
			}
		}
		return out
	}
	for _, line := range textspan.Lines(text) {
		if certificationPattern.MatchString(line) {
			out = append(out, StripGlyph(line))
		}
	}
	return out
}

// CountCertifications returns the number of certification lines.
func CountCertifications(text string, st *types.DocumentStructure) int {
	return len(Certifications(text, st))
}
