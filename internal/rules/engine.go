// Package rules implements the data-driven detection path: declarative rules, each evaluated
// by one of a closed set of handler strategies, served from a versioned snapshot cache.
package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// maxQuoteRunes bounds quoted line snippets.
const maxQuoteRunes = 80

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)*%?`)

// Engine evaluates the rules of a cache snapshot against documents.
type Engine struct {
	cache  *Cache
	logger *zap.Logger
}

// NewEngine creates an engine reading rules from cache.
func NewEngine(cache *Cache, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cache: cache, logger: logger}
}

// Version returns the version token of the current rule snapshot.
func (e *Engine) Version() int64 {
	return e.cache.Version()
}

// Evaluate runs every enabled rule of the current snapshot in load order and returns the
// issues together with the snapshot version they came from.
func (e *Engine) Evaluate(text string, st *types.DocumentStructure) ([]types.Issue, int64) {
	snap := e.cache.Snapshot()
	return e.EvaluateSnapshot(snap, text, st), snap.Version
}

// EvaluateSnapshot runs the rules of snap. A rule that panics is logged and contributes nothing.
func (e *Engine) EvaluateSnapshot(snap *Snapshot, text string, st *types.DocumentStructure) []types.Issue {
	if st == nil {
		st = &types.DocumentStructure{}
	}
	doc := newDocument(text, st)
	var issues []types.Issue
	for _, cr := range snap.rules {
		if !cr.rule.IsEnabled() {
			continue
		}
		if is, ok := e.evaluateRule(cr, doc); ok {
			issues = append(issues, is)
		}
	}
	return issues
}

func (e *Engine) evaluateRule(cr compiledRule, doc *document) (is types.Issue, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule evaluation panicked",
				zap.String("issue_code", cr.rule.IssueCode),
				zap.String("handler_type", string(cr.rule.HandlerType)),
				zap.Any("panic", r))
			is, ok = types.Issue{}, false
		}
	}()
	f := match(cr.matcher, doc)
	if !f.fired {
		return types.Issue{}, false
	}
	return buildIssue(cr.rule, f, doc), true
}

// finding is the outcome of one matcher.
type finding struct {
	fired bool
	count int
	// line is the document line of quote, or -1.
	line  int
	quote string
	// section is the resolved target, "" for the whole document.
	section types.SectionType
}

func noFinding() finding { return finding{line: -1} }

// document caches per-document derived data shared by all rules.
type document struct {
	text  string
	lines []string
	st    *types.DocumentStructure
}

func newDocument(text string, st *types.DocumentStructure) *document {
	return &document{text: text, lines: textspan.Lines(text), st: st}
}

// target is the text a rule inspects and the document line its first line sits on.
type target struct {
	section   types.SectionType
	text      string
	firstLine int
}

func (t target) lines() []string {
	if t.text == "" {
		return nil
	}
	return textspan.Lines(t.text)
}

// resolve maps a section name to its text. "all" or "" is the whole document; an unknown or
// absent section resolves to empty text.
func (d *document) resolve(name string) target {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == SectionAll {
		return target{text: d.text}
	}
	t := types.SectionType(name)
	sec := d.st.Section(t)
	if sec == nil || strings.TrimSpace(sec.Content) == "" {
		return target{section: t}
	}
	return target{section: t, text: sec.Content, firstLine: sec.StartLine}
}

// match dispatches to the handler variant. The switch is exhaustive over types.HandlerTypes.
func match(m matcher, doc *document) finding {
	switch m.kind {
	case types.HandlerRegex:
		return matchRegex(m.regex, doc)
	case types.HandlerWordList:
		return matchWordList(m.wordList, doc)
	case types.HandlerPresence, types.HandlerAbsence:
		return matchPresence(m.presence, doc)
	case types.HandlerCount:
		return matchCount(m.count, doc)
	case types.HandlerLength:
		return matchLength(m.length, doc)
	case types.HandlerConsistency:
		return matchConsistency(m.consistency, doc)
	case types.HandlerSectionRequired:
		return matchRequired(m.required, doc)
	case types.HandlerComposite:
		return matchComposite(m.composite, doc)
	}
	panic(fmt.Sprintf("unhandled handler type %q", m.kind))
}

// hit is a single match with its document line.
type hit struct {
	line int
	text string
}

func findAll(t target, re *regexp.Regexp, group int) []hit {
	var out []hit
	for i, line := range t.lines() {
		for _, m := range re.FindAllStringSubmatch(line, -1) {
			out = append(out, hit{line: t.firstLine + i, text: m[group]})
		}
	}
	return out
}

func withHits(f finding, hits []hit) finding {
	f.count = len(hits)
	if len(hits) > 0 {
		f.line, f.quote = hits[0].line, hits[0].text
	}
	return f
}

func matchRegex(m *regexMatcher, doc *document) finding {
	t := doc.resolve(m.section)
	hits := findAll(t, m.re, 0)
	f := withHits(finding{section: t.section, line: -1}, hits)
	n := len(hits)
	f.fired = m.min != nil && n >= *m.min || m.max != nil && n > *m.max
	return f
}

func matchWordList(m *wordListMatcher, doc *document) finding {
	t := doc.resolve(m.section)
	hits := findAll(t, m.re, 1)
	f := withHits(finding{section: t.section, line: -1}, hits)
	f.fired = len(hits) >= m.min
	return f
}

func matchPresence(m *presenceMatcher, doc *document) finding {
	t := doc.resolve(m.section)
	f := finding{section: t.section, line: -1}
	for _, re := range m.patterns {
		if hits := findAll(t, re, 0); len(hits) > 0 {
			f = withHits(f, hits)
			break
		}
	}
	found := f.count > 0
	f.fired = m.issueWhen == IssueWhenMissing && !found || m.issueWhen == IssueWhenFound && found
	if !found {
		f.quote = ""
	}
	return f
}

func matchCount(m *countMatcher, doc *document) finding {
	t := doc.resolve(m.section)
	n := 0
	switch m.item {
	case ItemBullets:
		for _, line := range t.lines() {
			if extract.IsBullet(line) {
				n++
			}
		}
	case ItemWords:
		n = textspan.WordCount(t.text)
	case ItemLines:
		for _, line := range t.lines() {
			if !textspan.IsBlank(line) {
				n++
			}
		}
	case ItemCertifications:
		n = extract.CountCertifications(doc.text, doc.st)
	case ItemNumbers:
		n = len(numberPattern.FindAllString(t.text, -1))
	}
	below := m.min != nil && n < *m.min
	above := m.max != nil && n > *m.max
	f := finding{section: t.section, line: -1, count: n}
	switch m.mode {
	case ModeBelow:
		f.fired = below
	case ModeAbove:
		f.fired = above
	case ModeOutsideRange:
		f.fired = below || above
	}
	return f
}

func measure(s, unit string) int {
	switch unit {
	case UnitCharacters:
		return utf8.RuneCountInString(strings.TrimSpace(s))
	case UnitLines:
		n := 0
		for _, line := range textspan.Lines(s) {
			if !textspan.IsBlank(line) {
				n++
			}
		}
		return n
	default:
		return textspan.WordCount(s)
	}
}

func (m *lengthMatcher) outside(n int) bool {
	return m.min != nil && n < *m.min || m.max != nil && n > *m.max
}

func matchLength(m *lengthMatcher, doc *document) finding {
	t := doc.resolve(m.section)
	f := finding{section: t.section, line: -1}
	if m.scope == ScopeSection {
		f.count = measure(t.text, m.unit)
		f.fired = m.outside(f.count)
		return f
	}
	for i, line := range t.lines() {
		if textspan.IsBlank(line) || m.scope == ScopeBullet && !extract.IsBullet(line) {
			continue
		}
		content := line
		if m.scope == ScopeBullet {
			content = extract.StripGlyph(line)
		}
		if !m.outside(measure(content, m.unit)) {
			continue
		}
		if f.count == 0 {
			f.line = t.firstLine + i
			f.quote = textspan.Truncate(strings.TrimSpace(line), maxQuoteRunes)
		}
		f.count++
	}
	f.fired = f.count > 0
	return f
}

func matchConsistency(m *consistencyMatcher, doc *document) finding {
	t := doc.resolve(m.section)
	f := finding{section: t.section, line: -1}
	var present []int
	hitsByVariant := make([][]hit, len(m.variants))
	for i, v := range m.variants {
		hitsByVariant[i] = findAll(t, v.re, 0)
		if len(hitsByVariant[i]) > 0 {
			present = append(present, i)
		}
	}
	f.count = len(present)
	if len(present) < m.min {
		return f
	}
	dominant := present[0]
	for _, i := range present[1:] {
		if len(hitsByVariant[i]) > len(hitsByVariant[dominant]) {
			dominant = i
		}
	}
	for _, i := range present {
		if i != dominant {
			h := hitsByVariant[i][0]
			f.line, f.quote = h.line, h.text
			break
		}
	}
	f.fired = true
	return f
}

func matchRequired(m *requiredMatcher, doc *document) finding {
	f := finding{section: m.section, line: -1}
	if doc.st.Has(m.section) {
		return f
	}
	for _, re := range m.fallback {
		if re.MatchString(doc.text) {
			return f
		}
	}
	f.fired = true
	return f
}

func matchComposite(m *compositeMatcher, doc *document) finding {
	f := noFinding()
	fired := 0
	for _, child := range m.children {
		cf := match(child, doc)
		if !cf.fired {
			if m.all {
				return noFinding()
			}
			continue
		}
		fired++
		if f.quote == "" && cf.quote != "" {
			f.line, f.quote, f.section = cf.line, cf.quote, cf.section
		}
	}
	f.count = fired
	f.fired = fired > 0
	return f
}

func buildIssue(rule types.DetectionRule, f finding, doc *document) types.Issue {
	msg := rule.Message
	if msg == "" {
		msg = fmt.Sprintf("Rule %s matched", rule.IssueCode)
	}
	msg = strings.ReplaceAll(msg, "{count}", strconv.Itoa(f.count))

	is := types.NewIssue(rule.IssueCode, msg).
		Suggest(rule.Suggestion).
		From("rule:" + rule.IssueCode).
		Detail(map[string]any{"handler_type": string(rule.HandlerType), "count": f.count})
	switch {
	case f.line >= 0:
		is = is.At(locate(doc.st, f.line)).OnLine(f.line)
	case f.section != "":
		is = is.At(f.section.Label())
	default:
		is = is.At("Document")
	}
	if f.quote != "" {
		is = is.Quote(f.quote)
	}
	is.CanAutoFix = rule.CanAutoFix
	return is
}

func locate(st *types.DocumentStructure, line int) string {
	if sec := st.SectionAt(line); sec != nil {
		return sec.Type.Label() + ", " + textspan.LineRef(line)
	}
	return textspan.LineRef(line)
}
