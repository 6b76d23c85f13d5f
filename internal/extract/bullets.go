// Package extract provides field extractors that pull typed facts out of résumé text.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// minVerbBulletChars is the content length above which a line starting with a strong verb
// counts as a bullet even without a glyph.
const minVerbBulletChars = 10

// Bullet glyph families used for consistency checks.
const (
	GlyphRound    = "round"
	GlyphSquare   = "square"
	GlyphDash     = "dash"
	GlyphAsterisk = "asterisk"
	GlyphArrow    = "arrow"
	GlyphCheck    = "check"
	GlyphNumber   = "number"
	GlyphMarker   = "marker"
	GlyphNone     = ""
)

var glyphFamilies = map[rune]string{
	'•': GlyphRound, '●': GlyphRound, '◦': GlyphRound, '○': GlyphRound, '·': GlyphRound,
	'▪': GlyphSquare, '■': GlyphSquare, '□': GlyphSquare, '◆': GlyphSquare, '♦': GlyphSquare,
	'-': GlyphDash, '–': GlyphDash, '—': GlyphDash,
	'*': GlyphAsterisk,
	'►': GlyphArrow, '▶': GlyphArrow, '➢': GlyphArrow, '➤': GlyphArrow, '→': GlyphArrow, '>': GlyphArrow,
	'✓': GlyphCheck, '✔': GlyphCheck,
}

var numberedPattern = regexp.MustCompile(`^\d{1,2}[.)]\s+`)

// strongVerbStems are prefixes of action verbs; matching on stems covers tense variants.
var strongVerbStems = []string{
	"accelerat", "achiev", "acquir", "administer", "advis", "analyz", "architect", "assembl",
	"audit", "author", "automat", "boost", "build", "captur", "champion", "coach",
	"collaborat", "conceiv", "conduct", "consolidat", "construct", "coordinat", "creat",
	"cultivat", "debug", "decreas", "defin", "deliver", "deploy", "design", "develop",
	"devis", "direct", "doubl", "drive", "earn", "eliminat", "enabl", "engineer",
	"enhanc", "establish", "evaluat", "execut", "expand", "expedit", "facilitat", "forecast",
	"generat", "guid", "identif", "implement", "improv", "increas", "initiat", "innovat",
	"instal", "institut", "integrat", "introduc", "invent", "launch", "lead", "maximiz",
	"mentor", "migrat", "minimiz", "moderniz", "monitor", "negotiat", "optimiz", "orchestrat",
	"organiz", "overhaul", "oversee", "partner", "pioneer", "plann", "produc", "programm",
	"propos", "publish", "rais", "recruit", "redesign", "reduc", "refactor", "reengineer",
	"resolv", "restructur", "revamp", "scal", "simplif", "spearhead", "standardiz",
	"streamlin", "strengthen", "supervis", "surpass", "train", "transform", "tripl",
	"troubleshoot", "upgrad",
}

// strongVerbWords are irregular or short verbs matched as whole words.
var strongVerbWords = map[string]bool{
	"built": true, "cut": true, "drove": true, "founded": true, "grew": true, "headed": true,
	"led": true, "oversaw": true, "ran": true, "rebuilt": true, "saved": true, "secured": true,
	"shipped": true, "sold": true, "tested": true, "won": true, "wrote": true, "planned": true,
}

// TitleKeywords are job-title nouns. Several share a stem with an action verb
// ("Developer" vs "developed"), so a first word that is a title never counts as a verb.
var TitleKeywords = []string{
	"engineer", "developer", "manager", "analyst", "director", "consultant", "designer",
	"architect", "specialist", "coordinator", "intern", "lead", "scientist", "administrator",
	"associate", "officer", "assistant", "technician", "representative", "executive", "head",
	"president", "vp", "supervisor", "accountant", "programmer", "researcher", "teacher",
	"nurse", "founder", "co-founder", "owner", "contractor", "freelancer", "advisor",
	"mentor", "trainer", "producer", "recruiter", "planner", "partner", "principal",
	"strategist", "editor", "writer", "instructor", "professor", "cto", "ceo", "cfo", "coo",
}

var titleKeywordSet = func() map[string]bool {
	m := make(map[string]bool, len(TitleKeywords))
	for _, k := range TitleKeywords {
		m[k] = true
		m[k+"s"] = true
	}
	return m
}()

// IsTitleKeyword reports whether word (any case) is a job-title noun.
func IsTitleKeyword(word string) bool {
	return titleKeywordSet[strings.ToLower(strings.Trim(word, ".,;:()"))]
}

var metricPatterns = map[string]*regexp.Regexp{
	"percentage": regexp.MustCompile(`\d+(?:\.\d+)?\s?%|\d+(?:\.\d+)?\s+percent\b`),
	"currency":   regexp.MustCompile(`(?i)[$€£¥]\s?\d[\d,.]*\s?(?:k|m|mm|b|bn|million|billion|thousand)?\b|\b\d[\d,.]*\s?(?:usd|eur|gbp|dollars)\b`),
	"team_size":  regexp.MustCompile(`(?i)\b(?:team|group|staff|department)\s+of\s+\d+|\b\d+\s*(?:\+\s*)?(?:engineers|developers|people|employees|reports|members|direct reports|staff)\b`),
	"multiplier": regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?x\b|\b(?:doubled|tripled|quadrupled|halved)\b`),
	"ranked":     regexp.MustCompile(`(?i)#\s?\d+\b|\btop\s+\d+%?|\b\d+(?:st|nd|rd|th)\s+(?:place|out of)\b`),
	"quantity":   regexp.MustCompile(`(?i)\b\d[\d,.]*\s?(?:k|m|b|\+)?\s+(?:users|customers|clients|requests|transactions|projects|applications|servers|services|hours|days|weeks|months|records|downloads|sales|leads|accounts|countries|markets|stores|sites|tickets|features|products|partners|students|patients)\b`),
	"time_saved": regexp.MustCompile(`(?i)\b(?:from|by)\s+\d[\d,.]*\s?(?:ms|s|sec|seconds|minutes|min|hours|hrs|days|weeks)\b`),
}

// metricKindOrder fixes iteration order over metricPatterns.
var metricKindOrder = []string{"percentage", "currency", "team_size", "multiplier", "ranked", "quantity", "time_saved"}

// BulletGlyph returns the glyph family that starts the line, or GlyphNone.
func BulletGlyph(line string) string {
	trimmed := strings.TrimSpace(line)
	if textspan.HasMarker(trimmed, "BULLET") || textspan.HasMarker(trimmed, "LI") {
		return GlyphMarker
	}
	if trimmed == "" {
		return GlyphNone
	}
	r, size := utf8.DecodeRuneInString(trimmed)
	if family, ok := glyphFamilies[r]; ok {
		rest := trimmed[size:]
		// "-2019" or "--" are not bullets; a glyph must be followed by whitespace or text
		if rest == "" || (r == '-' && unicode.IsDigit(firstRune(rest))) {
			return GlyphNone
		}
		return family
	}
	if numberedPattern.MatchString(trimmed) {
		return GlyphNumber
	}
	return GlyphNone
}

// StripGlyph removes a leading bullet glyph and converter markers.
func StripGlyph(line string) string {
	s := strings.TrimSpace(textspan.StripMarkers(line))
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if _, ok := glyphFamilies[r]; ok {
		return strings.TrimSpace(s[size:])
	}
	if loc := numberedPattern.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// IsBullet reports whether a line is a bullet: it starts with a glyph, or it starts
// with a strong verb and carries more than minVerbBulletChars of content.
func IsBullet(line string) bool {
	if BulletGlyph(line) != GlyphNone {
		return StripGlyph(line) != ""
	}
	content := strings.TrimSpace(textspan.StripMarkers(line))
	if len(content) <= minVerbBulletChars || strings.HasSuffix(content, ":") || dates.HasRange(content) {
		return false
	}
	return StartsWithStrongVerb(content)
}

// StartsWithStrongVerb checks whether the first word is a recognized action verb.
func StartsWithStrongVerb(text string) bool {
	words := strings.Fields(StripGlyph(text))
	if len(words) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimRight(words[0], ".,!?;:"))
	if first == "" || !unicode.IsLetter(firstRune(first)) || IsTitleKeyword(first) {
		return false
	}
	if strongVerbWords[first] {
		return true
	}
	for _, stem := range strongVerbStems {
		if strings.HasPrefix(first, stem) {
			return true
		}
	}
	return false
}

// FirstWord returns the lowercased first word of a bullet with glyphs removed.
func FirstWord(text string) string {
	words := strings.Fields(StripGlyph(text))
	if len(words) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimRight(words[0], ".,!?;:"))
}

// MetricKinds lists the kinds of metric found in text, in a fixed order.
func MetricKinds(text string) []string {
	var kinds []string
	for _, kind := range metricKindOrder {
		if metricPatterns[kind].MatchString(text) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// HasMetric reports whether text contains at least one quantified result.
func HasMetric(text string) bool {
	return len(MetricKinds(text)) > 0
}

// AnalyzeBullet builds a Bullet for the line at lineIdx.
func AnalyzeBullet(line string, lineIdx int) types.Bullet {
	content := StripGlyph(line)
	return types.Bullet{
		Text:                 strings.TrimSpace(line),
		LineNumber:           lineIdx,
		Glyph:                BulletGlyph(line),
		WordCount:            textspan.WordCount(content),
		HasMetric:            HasMetric(content),
		StartsWithStrongVerb: StartsWithStrongVerb(content),
	}
}

// Bullets extracts the bullets from lines, where lines[0] sits at line index startLine.
func Bullets(lines []string, startLine int) []types.Bullet {
	var out []types.Bullet
	for i, line := range lines {
		if IsBullet(line) {
			out = append(out, AnalyzeBullet(line, startLine+i))
		}
	}
	return out
}

// BulletStats aggregates bullet-level signals.
type BulletStats struct {
	Total      int `json:"total"`
	Quantified int `json:"quantified"`
	StrongVerb int `json:"strong_verb"`
	TotalWords int `json:"total_words"`
}

// Stats summarizes a bullet list.
func Stats(bullets []types.Bullet) BulletStats {
	s := BulletStats{Total: len(bullets)}
	for _, b := range bullets {
		if b.HasMetric {
			s.Quantified++
		}
		if b.StartsWithStrongVerb {
			s.StrongVerb++
		}
		s.TotalWords += b.WordCount
	}
	return s
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
