// Package structure turns raw résumé text into a DocumentStructure of non-overlapping,
// line-ordered sections plus job, education and skill-category sub-blocks.
//
// Extraction runs four ordered passes: contact, header, implicit job entries and
// assignment, followed by a date-range fallback when no experience block was found.
package structure

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

const (
	// contactScanLines bounds the contact pass.
	contactScanLines = 12
	// maxContactLineChars ends the contact pass on an overly long line.
	maxContactLineChars = 200
	// maxPipeLineChars is the longest pipe-delimited line still treated as contact data.
	maxPipeLineChars = 120
	// maxLooseStartChars bounds a job-entry start line without its own date.
	maxLooseStartChars = 100
	// jobLookahead is how many following lines may carry the date of a loose job start.
	jobLookahead = 5

	confidenceContact     = 0.9
	confidenceContactWeak = 0.6
	confidencePattern     = 0.6
	confidenceFallback    = 0.4
)

// header is a recognized top-level section header.
type header struct {
	line       int
	typ        types.SectionType
	text       string
	confidence float64
	// inline headers carry content on the same line, e.g. "Skills: Go, SQL".
	inline bool
}

// contentStart returns the first content line of the section the header opens.
func (h header) contentStart() int {
	if h.inline {
		return h.line
	}
	return h.line + 1
}

type parser struct {
	text    string
	lines   []string
	offsets []int
}

// Extract parses text into a DocumentStructure. It never fails: ambiguous input yields fewer
// or lower-confidence sections, and an empty document yields an empty structure.
func Extract(text string) (st *types.DocumentStructure) {
	lines := textspan.Lines(text)
	st = &types.DocumentStructure{LineCount: len(lines)}
	if strings.TrimSpace(text) == "" {
		return st
	}
	defer func() {
		if r := recover(); r != nil {
			st = &types.DocumentStructure{LineCount: len(lines)}
		}
	}()

	p := &parser{text: text, lines: lines, offsets: textspan.Offsets(text)}
	return p.run()
}

func (p *parser) run() *types.DocumentStructure {
	st := &types.DocumentStructure{LineCount: len(p.lines)}

	contactEnd := p.contactPass()
	headers := p.headerPass(contactEnd + 1)

	var sections []types.Section
	if contactEnd >= 0 {
		sections = append(sections, p.contactSection(contactEnd))
	}

	// implicit job entries only matter when no Experience header exists
	var patternStarts []int
	expHeader := findHeader(headers, types.SectionExperience)
	if expHeader == nil {
		patternStarts = p.jobStarts(contactEnd+1, len(p.lines)-1, p.excludedRanges(headers))
	}

	boundaries := make([]int, 0, len(headers)+1)
	for _, h := range headers {
		boundaries = append(boundaries, h.line)
	}
	if len(patternStarts) > 0 {
		// pattern experience runs until the first header after its first job start
		end := nextBoundary(boundaries, patternStarts[0], len(p.lines))
		patternStarts = within(patternStarts, patternStarts[0], end-1)
		boundaries = append(boundaries, patternStarts[0])
		sort.Ints(boundaries)
	}

	for _, h := range headers {
		end := p.trimEnd(h.contentStart(), nextBoundary(boundaries, h.line, len(p.lines))-1)
		sections = append(sections, p.section(h.typ, h.text, h.contentStart(), end, h.confidence, types.MethodHeader))
	}
	if len(patternStarts) > 0 {
		start := patternStarts[0]
		end := p.trimEnd(start, nextBoundary(boundaries, start, len(p.lines))-1)
		sections = append(sections, p.section(types.SectionExperience, "", start, end, confidencePattern, types.MethodPattern))
	}
	sortSections(sections)

	p.pullBackSummary(sections, headers)

	if !hasType(sections, types.SectionExperience) {
		if sec, ok := p.fallbackExperience(sections, headers); ok {
			sections = append(sections, sec)
			sortSections(sections)
		}
	}

	st.Sections = sections
	for _, s := range sections {
		switch s.Type {
		case types.SectionContact:
			st.HasContact = true
		case types.SectionSummary:
			st.HasSummary = true
		case types.SectionExperience:
			st.HasExperience = true
		case types.SectionEducation:
			st.HasEducation = true
		case types.SectionSkills:
			st.HasSkills = true
		case types.SectionCertifications:
			st.HasCertifications = true
		}
	}

	p.buildSubBlocks(st)
	return st
}

// contactPass scans the top of the document and returns the last line of the contact block,
// or -1 when the document opens with a section header.
func (p *parser) contactPass() int {
	first := -1
	for i, line := range p.lines {
		if !textspan.IsBlank(line) {
			first = i
			break
		}
	}
	if first < 0 {
		return -1
	}
	if _, ok := p.matchHeader(first); ok {
		return -1
	}

	end := first
	limit := min(contactScanLines, len(p.lines))
	for i := first + 1; i < limit; i++ {
		line := p.lines[i]
		if textspan.IsBlank(line) {
			continue
		}
		if len(line) > maxContactLineChars {
			break
		}
		if _, ok := p.matchHeader(i); ok {
			break
		}
		if extract.IsContactLine(line) || (strings.Contains(line, "|") && len(line) <= maxPipeLineChars) {
			end = i
			continue
		}
		if p.isJobStart(i) {
			break
		}
	}
	return end
}

func (p *parser) contactSection(end int) types.Section {
	confidence := confidenceContactWeak
	for _, line := range p.lines[:end+1] {
		if extract.IsContactLine(line) {
			confidence = confidenceContact
			break
		}
	}
	return p.section(types.SectionContact, "", 0, end, confidence, types.MethodPattern)
}

// headerPass collects the first header of each section type at or after from.
func (p *parser) headerPass(from int) []header {
	var headers []header
	seen := make(map[types.SectionType]bool)
	for i := max(from, 0); i < len(p.lines); i++ {
		h, ok := p.matchHeader(i)
		if !ok || seen[h.typ] {
			continue
		}
		seen[h.typ] = true
		headers = append(headers, h)
	}
	return headers
}

// matchHeader tests line i against the header lexicons. Sub-category labels, bullets,
// sentences and long lines are never headers.
func (p *parser) matchHeader(i int) (header, bool) {
	raw := p.lines[i]
	s := strings.TrimSpace(textspan.StripMarkers(raw))
	if s == "" || extract.BulletGlyph(raw) != extract.GlyphNone {
		return header{}, false
	}

	label, inline := s, false
	if idx := strings.Index(s, ":"); idx > 0 && strings.TrimSpace(s[idx+1:]) != "" {
		label, inline = s[:idx], true
	}
	if strings.HasSuffix(label, ".") || dates.HasRange(label) {
		return header{}, false
	}
	norm := textspan.Normalize(label)
	if norm == "" || len(strings.Fields(norm)) > maxHeaderWords || len(label) > maxHeaderChars {
		return header{}, false
	}
	if subCategoryLexicon[norm] {
		return header{}, false
	}

	typ, confidence, ok := matchLexicon(norm, !inline)
	if !ok {
		return header{}, false
	}
	if isStyledHeader(raw, label) {
		confidence = min(confidence+confidenceStyled, 1.0)
	}
	return header{line: i, typ: typ, text: strings.TrimSpace(raw), confidence: confidence, inline: inline}, true
}

// isStyledHeader reports whether a header carries a converter heading marker or is upper-case.
func isStyledHeader(raw, label string) bool {
	for _, m := range []string{"H1", "H2", "H3", "H4", "H5", "H6", "B"} {
		if textspan.HasMarker(raw, m) {
			return true
		}
	}
	hasLetter := false
	for _, r := range label {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// isJobStart applies the job-entry heuristic to line i: a date range together with a company
// or title, or a short capitalized line whose date follows within the next few lines.
func (p *parser) isJobStart(i int) bool {
	_, ok := p.jobStartAt(i)
	return ok
}

// jobStartAt reports whether line i starts a job entry and, if so, the line carrying its date.
func (p *parser) jobStartAt(i int) (int, bool) {
	line := strings.TrimSpace(textspan.StripMarkers(p.lines[i]))
	if line == "" || extract.IsBullet(p.lines[i]) {
		return 0, false
	}
	if dates.HasRange(line) {
		if HasCompany(line) || HasTitle(line) {
			return i, true
		}
		return 0, false
	}
	if len(line) >= maxLooseStartChars || strings.HasSuffix(line, ".") || !unicode.IsUpper(firstLetter(line)) {
		return 0, false
	}
	if _, isHeader := p.matchHeader(i); isHeader || IsSubCategory(strings.TrimSuffix(line, ":")) {
		return 0, false
	}
	// a keyword-free line yields to a following title or company line
	named := HasTitle(line) || HasCompany(line)
	for j := i + 1; j <= i+jobLookahead && j < len(p.lines); j++ {
		next := p.lines[j]
		if textspan.IsBlank(next) {
			continue
		}
		if extract.IsBullet(next) {
			return 0, false
		}
		if _, isHeader := p.matchHeader(j); isHeader {
			return 0, false
		}
		if dates.HasRange(next) {
			return j, true
		}
		if !named && (HasTitle(next) || HasCompany(next)) {
			return 0, false
		}
	}
	return 0, false
}

// jobStarts returns job-entry start lines in [from, to], skipping excluded ranges. After a
// loose start the scan resumes below its date line.
func (p *parser) jobStarts(from, to int, excluded []types.LineSpan) []int {
	var starts []int
	for i := max(from, 0); i <= to && i < len(p.lines); i++ {
		if inAny(excluded, i) {
			continue
		}
		dateLine, ok := p.jobStartAt(i)
		if !ok {
			continue
		}
		starts = append(starts, i)
		if dateLine > i {
			i = dateLine
		}
	}
	return starts
}

// excludedRanges covers the header ranges of sections that never hold job entries.
func (p *parser) excludedRanges(headers []header) []types.LineSpan {
	var out []types.LineSpan
	for idx, h := range headers {
		switch h.typ {
		case types.SectionEducation, types.SectionSkills, types.SectionCertifications, types.SectionContact:
		default:
			continue
		}
		end := len(p.lines) - 1
		if idx+1 < len(headers) {
			end = headers[idx+1].line - 1
		}
		out = append(out, types.LineSpan{Start: h.line, End: end})
	}
	return out
}

// pullBackSummary keeps Summary from swallowing job entries that follow it without a blank
// line or header. When Experience directly follows Summary its start widens to the first job.
func (p *parser) pullBackSummary(sections []types.Section, headers []header) {
	sumIdx := sectionIndex(sections, types.SectionSummary)
	if sumIdx < 0 {
		return
	}
	sum := &sections[sumIdx]
	starts := p.jobStarts(sum.StartLine, sum.EndLine, nil)
	if len(starts) == 0 {
		return
	}
	first := starts[0]
	*sum = p.section(sum.Type, sum.HeaderText, sum.StartLine, p.trimEnd(sum.StartLine, first-1), sum.Confidence, sum.Method)

	expIdx := sectionIndex(sections, types.SectionExperience)
	if expIdx < 0 || !followsSummary(headers, types.SectionExperience) {
		return
	}
	exp := &sections[expIdx]
	*exp = p.section(exp.Type, exp.HeaderText, first, exp.EndLine, exp.Confidence, exp.Method)
}

// followsSummary reports whether the header of type t is the one right after the Summary header.
func followsSummary(headers []header, t types.SectionType) bool {
	for i, h := range headers {
		if h.typ == types.SectionSummary {
			return i+1 < len(headers) && headers[i+1].typ == t
		}
	}
	return false
}

// fallbackExperience looks for employment dates on lines no section claims.
func (p *parser) fallbackExperience(sections []types.Section, headers []header) (types.Section, bool) {
	covered := make([]types.LineSpan, 0, len(sections)+len(headers))
	for _, s := range sections {
		if s.EndLine >= s.StartLine {
			covered = append(covered, s.Span())
		}
	}
	for _, h := range headers {
		covered = append(covered, types.LineSpan{Start: h.line, End: h.line})
	}
	start := -1
	for i, line := range p.lines {
		if !inAny(covered, i) && dates.HasRange(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return types.Section{}, false
	}
	end := start
	for i := start + 1; i < len(p.lines) && !inAny(covered, i); i++ {
		end = i
	}
	end = p.trimEnd(start, end)
	return p.section(types.SectionExperience, "", start, end, confidenceFallback, types.MethodFallback), true
}

func (p *parser) section(t types.SectionType, headerText string, start, end int, confidence float64, method types.DetectionMethod) types.Section {
	content := ""
	if end >= start {
		content = textspan.Slice(p.text, p.offsets, start, end)
	}
	return types.Section{
		Type:       t,
		HeaderText: headerText,
		Content:    content,
		StartLine:  start,
		EndLine:    end,
		Confidence: confidence,
		Method:     method,
	}
}

// trimEnd moves end back over trailing blank lines, never before start-1.
func (p *parser) trimEnd(start, end int) int {
	for end >= start && end < len(p.lines) && textspan.IsBlank(p.lines[end]) {
		end--
	}
	return end
}

// nextBoundary returns the first boundary strictly after line, or fallback.
func nextBoundary(boundaries []int, line, fallback int) int {
	for _, b := range boundaries {
		if b > line {
			return b
		}
	}
	return fallback
}

func within(lines []int, from, to int) []int {
	var out []int
	for _, l := range lines {
		if l >= from && l <= to {
			out = append(out, l)
		}
	}
	return out
}

func inAny(spans []types.LineSpan, line int) bool {
	for _, s := range spans {
		if s.Contains(line) {
			return true
		}
	}
	return false
}

func findHeader(headers []header, t types.SectionType) *header {
	for i := range headers {
		if headers[i].typ == t {
			return &headers[i]
		}
	}
	return nil
}

func sectionIndex(sections []types.Section, t types.SectionType) int {
	for i, s := range sections {
		if s.Type == t {
			return i
		}
	}
	return -1
}

func hasType(sections []types.Section, t types.SectionType) bool {
	return sectionIndex(sections, t) >= 0
}

func sortSections(sections []types.Section) {
	sort.SliceStable(sections, func(a, b int) bool {
		return sections[a].StartLine < sections[b].StartLine
	})
}

func firstLetter(s string) rune {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return r
		}
		if !unicode.IsPunct(r) && !unicode.IsSpace(r) {
			return r
		}
	}
	return 0
}
