package detectors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// weakPhrases maps passive or weak phrasings to a stronger replacement.
var weakPhrases = map[string]string{
	"responsible for":  "Led",
	"helped":           "Supported",
	"helped with":      "Supported",
	"assisted with":    "Supported",
	"assisted in":      "Supported",
	"worked on":        "Built",
	"duties included":  "Delivered",
	"tasked with":      "Owned",
	"involved in":      "Contributed to",
	"participated in":  "Contributed to",
	"in charge of":     "Directed",
	"was part of":      "Collaborated on",
	"dealt with":       "Resolved",
	"handled":          "Managed",
	"took care of":     "Managed",
	"was involved in":  "Contributed to",
}

var vagueWords = []string{
	"various", "several", "numerous", "multiple", "stuff", "things", "etc", "a lot of",
	"lots of", "great", "nice", "successfully", "effectively", "efficiently", "significant",
	"substantial",
}

var buzzwords = []string{
	"synergy", "synergies", "team player", "go-getter", "think outside the box", "results-driven",
	"results-oriented", "detail-oriented", "self-starter", "dynamic", "hardworking",
	"hard-working", "passionate", "motivated", "proactive", "rockstar", "ninja", "guru",
	"best of breed", "thought leader", "value add", "leverage", "leveraged", "strategic thinker",
	"game changer", "game-changer", "seasoned", "track record", "out-of-the-box", "world-class",
	"cutting-edge", "visionary", "disruptive", "innovative",
}

var (
	pronounPattern    = regexp.MustCompile(`\b(?:I|[Mm]e|[Mm]y|[Mm]ine|[Mm]yself|[Ww]e|[Oo]ur|[Oo]urs)\b(?:\s+[A-Za-z'-]+)?`)
	passivePattern    = regexp.MustCompile(`(?i)\b(?:was|were|been|being|is|are)\s+(?:[a-z]+ly\s+)?[a-z]+(?:ed|en)\b`)
	weakPhrasePattern = phrasePattern(mapKeys(weakPhrases))
	vaguePattern      = phrasePattern(vagueWords)
	buzzwordPattern   = phrasePattern(buzzwords)
)

// Language flags weak, vague, buzzword-heavy, first-person and passive writing.
type Language struct {
	// VagueLimit is the vague-word count above which an issue fires.
	VagueLimit int
	// BuzzwordLimit is the buzzword count above which an issue fires.
	BuzzwordLimit int
	// PronounLimit is the first-person pronoun count above which an issue fires.
	PronounLimit int
	// PronounInstances caps the instances listed on the pronoun issue.
	PronounInstances int
	// PassiveLimit is the passive-construction count above which an issue fires.
	PassiveLimit int
	// RepeatedVerbLimit is how many bullets may open with the same verb.
	RepeatedVerbLimit int
	// WeakStartRatio is the strong-verb bullet ratio under which openers are flagged.
	WeakStartRatio float64
	// MinBulletsForRatio is the bullet count needed before WeakStartRatio applies.
	MinBulletsForRatio int
}

// NewLanguage returns the language detector with its standard thresholds.
func NewLanguage() *Language {
	return &Language{
		VagueLimit:         3,
		BuzzwordLimit:      5,
		PronounLimit:       3,
		PronounInstances:   5,
		PassiveLimit:       5,
		RepeatedVerbLimit:  2,
		WeakStartRatio:     0.5,
		MinBulletsForRatio: 4,
	}
}

func (d *Language) Name() string { return "language" }

func (d *Language) Detect(text string, st *types.DocumentStructure) []types.Issue {
	lines := textspan.Lines(text)
	skipContact := inSection(st, types.SectionContact)

	var issues []types.Issue
	issues = append(issues, d.weakPhrases(lines, st, skipContact)...)
	issues = append(issues, d.bulk(lines, st, skipContact)...)
	issues = append(issues, d.pronouns(lines, st, skipContact)...)
	issues = append(issues, d.repeatedVerbs(st)...)
	issues = append(issues, d.weakStarts(st)...)
	return tag(d.Name(), issues)
}

func (d *Language) weakPhrases(lines []string, st *types.DocumentStructure, skip func(int) bool) []types.Issue {
	var issues []types.Issue
	for _, m := range findMatches(lines, weakPhrasePattern, skip) {
		if len(issues) == maxIssuesPerCode {
			break
		}
		replacement := weakPhrases[strings.ToLower(m.text)]
		issues = append(issues, types.NewIssue("WEAK_PHRASE", fmt.Sprintf("%q is weak phrasing", m.text)).
			At(locate(st, m.line)).OnLine(m.line).Quote(m.text).
			Suggest(fmt.Sprintf("Replace %q with a strong action verb such as %q", m.text, replacement)).
			AutoFix(map[string]any{"original": m.text, "replacement": replacement}))
	}
	return issues
}

// bulk reports vague words, buzzwords and passive voice as single aggregated issues.
func (d *Language) bulk(lines []string, st *types.DocumentStructure, skip func(int) bool) []types.Issue {
	var issues []types.Issue
	checks := []struct {
		code    string
		re      *regexp.Regexp
		limit   int
		message string
		suggest string
	}{
		{"VAGUE_LANGUAGE", vaguePattern, d.VagueLimit, "%d vague words weaken your claims", "Replace vague words with specific numbers, names and outcomes"},
		{"BUZZWORD_OVERUSE", buzzwordPattern, d.BuzzwordLimit, "%d buzzwords detected", "Show the quality with evidence instead of describing it with buzzwords"},
		{"PASSIVE_VOICE", passivePattern, d.PassiveLimit, "%d passive constructions detected", "Rewrite in active voice, starting with the action you took"},
	}
	for _, c := range checks {
		ms := findMatches(lines, c.re, skip)
		if len(ms) <= c.limit {
			continue
		}
		found := make([]string, 0, maxIssuesPerCode)
		for _, m := range ms[:min(len(ms), maxIssuesPerCode)] {
			found = append(found, m.text)
		}
		issues = append(issues, types.NewIssue(c.code, fmt.Sprintf(c.message, len(ms))).
			At(locate(st, ms[0].line)).OnLine(ms[0].line).Quote(ms[0].text).
			Suggest(c.suggest).
			Detail(map[string]any{"count": len(ms), "instances": found}))
	}
	return issues
}

func (d *Language) pronouns(lines []string, st *types.DocumentStructure, skip func(int) bool) []types.Issue {
	ms := findMatches(lines, pronounPattern, skip)
	if len(ms) <= d.PronounLimit {
		return nil
	}
	instances := make([]string, 0, d.PronounInstances)
	for _, m := range ms[:min(len(ms), d.PronounInstances)] {
		instances = append(instances, m.text)
	}
	return []types.Issue{types.NewIssue("FIRST_PERSON_PRONOUNS",
		fmt.Sprintf("First-person pronouns used %d times", len(ms))).
		At(locate(st, ms[0].line)).OnLine(ms[0].line).Quote(ms[0].text).
		Suggest("Drop pronouns; résumé bullets are implicitly first person").
		Detail(map[string]any{"count": len(ms), "instances": instances})}
}

// repeatedVerbs flags action verbs that open more than RepeatedVerbLimit bullets.
func (d *Language) repeatedVerbs(st *types.DocumentStructure) []types.Issue {
	counts := make(map[string]int)
	first := make(map[string]types.Bullet)
	for _, b := range st.AllBullets() {
		if !b.StartsWithStrongVerb {
			continue
		}
		w := extract.FirstWord(b.Text)
		if counts[w] == 0 {
			first[w] = b
		}
		counts[w]++
	}
	var issues []types.Issue
	for _, w := range sortedKeys(counts) {
		if counts[w] <= d.RepeatedVerbLimit {
			continue
		}
		b := first[w]
		verbatim := strings.Fields(extract.StripGlyph(b.Text))[0]
		verbatim = strings.TrimRight(verbatim, ".,!?;:")
		issues = append(issues, types.NewIssue("REPEATED_ACTION_VERB",
			fmt.Sprintf("%q opens %d bullets", verbatim, counts[w])).
			At(locate(st, b.LineNumber)).OnLine(b.LineNumber).Quote(verbatim).
			Suggest("Vary your action verbs to show a range of contributions"))
	}
	return issues
}

// weakStarts flags a bullet list where too few bullets open with a strong action verb.
func (d *Language) weakStarts(st *types.DocumentStructure) []types.Issue {
	bullets := st.AllBullets()
	if len(bullets) < d.MinBulletsForRatio {
		return nil
	}
	stats := extract.Stats(bullets)
	ratio := float64(stats.StrongVerb) / float64(stats.Total)
	if ratio >= d.WeakStartRatio {
		return nil
	}
	var lines []int
	var firstWeak *types.Bullet
	for i := range bullets {
		if !bullets[i].StartsWithStrongVerb {
			lines = append(lines, bullets[i].LineNumber+1)
			if firstWeak == nil {
				firstWeak = &bullets[i]
			}
		}
	}
	return []types.Issue{types.NewIssue("WEAK_BULLET_START",
		fmt.Sprintf("Only %d of %d bullets start with a strong action verb", stats.StrongVerb, stats.Total)).
		At(locate(st, firstWeak.LineNumber)).OnLine(firstWeak.LineNumber).
		Quote(snippet(extract.StripGlyph(firstWeak.Text))).
		Suggest("Open each bullet with an action verb such as Built, Led or Reduced").
		Detail(map[string]any{"lines": lines})}
}

func mapKeys(m map[string]string) []string {
	return sortedKeys(m)
}

// LanguageCounts are raw occurrence counts behind the language issues, before any limit.
type LanguageCounts struct {
	WeakPhrases int
	Vague       int
	Buzzwords   int
	Pronouns    int
	Passive     int
}

// Counts tallies weak phrases, vague words, buzzwords, pronouns and passive constructions
// outside the contact block.
func (d *Language) Counts(text string, st *types.DocumentStructure) LanguageCounts {
	lines := textspan.Lines(text)
	skip := inSection(st, types.SectionContact)
	return LanguageCounts{
		WeakPhrases: len(findMatches(lines, weakPhrasePattern, skip)),
		Vague:       len(findMatches(lines, vaguePattern, skip)),
		Buzzwords:   len(findMatches(lines, buzzwordPattern, skip)),
		Pronouns:    len(findMatches(lines, pronounPattern, skip)),
		Passive:     len(findMatches(lines, passivePattern, skip)),
	}
}
