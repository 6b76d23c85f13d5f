package structure

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

const (
	// headerDateLines is how many lines of a job entry may carry its date range.
	headerDateLines = 3
	// maxCompanyLineChars bounds an undated second header line treated as the company.
	maxCompanyLineChars = 60
	// maxBareSkillChars bounds a separator-free line in Skills treated as one skill.
	maxBareSkillChars = 40
)

var (
	headerSeparator    = regexp.MustCompile(`\s+[|@•·]\s+|\s+[-–—]\s+|,\s+|\s+at\s+|\t+`)
	institutionPattern = regexp.MustCompile(`(?i)\b(?:university|college|institute|school|academy|polytechnic|conservatory|universit[äé])\b`)
	skillSeparator     = regexp.MustCompile(`\s*[,;|•·]\s*`)
)

// degreeTokens are degree words matched after removing dots. Two-letter forms that collide
// with US state codes are listed in dottedDegreeTokens and only count when written with dots.
var (
	degreeTokens = toSet(
		"bs", "ba", "bsc", "ms", "msc", "mba", "phd", "bachelor", "bachelors", "bachelor's",
		"master", "masters", "master's", "doctorate", "associate", "associates", "associate's",
		"diploma", "beng", "meng", "btech", "mtech", "bba", "aas", "ged", "degree", "llb", "llm",
	)
	dottedDegreeTokens = toSet("ma", "md", "jd", "ed")
)

func (p *parser) buildSubBlocks(st *types.DocumentStructure) {
	if exp := st.Section(types.SectionExperience); exp != nil && exp.EndLine >= exp.StartLine {
		starts := p.entryStarts(exp.StartLine, exp.EndLine)
		st.Jobs = p.buildJobs(exp.StartLine, exp.EndLine, starts)
		if exp.Method != types.MethodHeader {
			for _, j := range st.Jobs {
				st.JobEntries = append(st.JobEntries, j.Span)
			}
		}
	}
	if edu := st.Section(types.SectionEducation); edu != nil && edu.EndLine >= edu.StartLine {
		st.Education = p.buildEducation(edu.StartLine, edu.EndLine)
	}
	if sk := st.Section(types.SectionSkills); sk != nil && sk.EndLine >= sk.StartLine {
		st.SkillCategories = p.buildSkillCategories(sk.StartLine, sk.EndLine)
	}
}

// entryStarts finds job-entry starts inside an Experience range: the job-entry heuristic,
// plus short capitalized lines that follow a run of bullets.
func (p *parser) entryStarts(from, to int) []int {
	var starts []int
	afterBullets := false
	for i := from; i <= to; i++ {
		line := p.lines[i]
		if textspan.IsBlank(line) {
			continue
		}
		if extract.IsBullet(line) {
			afterBullets = true
			continue
		}
		if _, isHeader := p.matchHeader(i); isHeader {
			afterBullets = false
			continue
		}
		if dateLine, ok := p.jobStartAt(i); ok {
			starts = append(starts, i)
			afterBullets = false
			if dateLine > i && dateLine <= to {
				i = dateLine
			}
			continue
		}
		if afterBullets && p.looksLikeEntryHeader(line) {
			starts = append(starts, i)
		}
		afterBullets = false
	}
	return starts
}

func (p *parser) looksLikeEntryHeader(line string) bool {
	s := strings.TrimSpace(textspan.StripMarkers(line))
	return len(s) < maxLooseStartChars && !strings.HasSuffix(s, ".") && unicode.IsUpper(firstLetter(s))
}

// buildJobs splits [from, to] at the given starts. Lines before the first start belong to the
// first job, so every bullet attaches to the nearest preceding entry.
func (p *parser) buildJobs(from, to int, starts []int) []types.JobEntry {
	first := p.firstContentLine(from, to)
	if first < 0 {
		return nil
	}
	if len(starts) == 0 {
		starts = []int{first}
	}

	jobs := make([]types.JobEntry, 0, len(starts))
	for k, start := range starts {
		end := to
		if k+1 < len(starts) {
			end = starts[k+1] - 1
		}
		jobs = append(jobs, p.buildJob(start, p.trimEnd(start, end)))
	}

	if first < starts[0] {
		lead := p.buildJob(first, starts[0]-1)
		job := &jobs[0]
		job.Span.Start = first
		job.Bullets = append(lead.Bullets, job.Bullets...)
		var desc []string
		for i := first; i < starts[0]; i++ {
			if !textspan.IsBlank(p.lines[i]) && !extract.IsBullet(p.lines[i]) {
				desc = append(desc, strings.TrimSpace(textspan.StripMarkers(p.lines[i])))
			}
		}
		if job.Description != "" {
			desc = append(desc, job.Description)
		}
		job.Description = strings.Join(desc, " ")
	}
	return jobs
}

func (p *parser) buildJob(start, end int) types.JobEntry {
	headerLine := strings.TrimSpace(textspan.StripMarkers(p.lines[start]))
	job := types.JobEntry{
		HeaderLine: start,
		Header:     headerLine,
		Span:       types.LineSpan{Start: start, End: end},
	}

	headerEnd := start
	for i := start; i <= end && i < start+headerDateLines; i++ {
		if m := dates.RangePattern.FindString(p.lines[i]); m != "" {
			job.DateText = m
			headerEnd = i
			break
		}
	}

	parts := headerParts(headerLine)
	if headerEnd == start && start+1 <= end {
		next := strings.TrimSpace(textspan.StripMarkers(p.lines[start+1]))
		if next != "" && !extract.IsBullet(p.lines[start+1]) && len(next) <= maxCompanyLineChars && !strings.HasSuffix(next, ".") {
			headerEnd = start + 1
		}
	}
	for i := start + 1; i <= headerEnd; i++ {
		parts = append(parts, headerParts(strings.TrimSpace(textspan.StripMarkers(p.lines[i])))...)
	}
	job.Title, job.Company = titleAndCompany(parts)

	var desc []string
	for i := start; i <= end; i++ {
		line := p.lines[i]
		switch {
		case extract.IsBullet(line):
			job.Bullets = append(job.Bullets, extract.AnalyzeBullet(line, i))
		case i > headerEnd && !textspan.IsBlank(line) && !p.isHeaderLine(i):
			desc = append(desc, strings.TrimSpace(textspan.StripMarkers(line)))
		}
	}
	job.Description = strings.Join(desc, " ")
	return job
}

// headerParts splits an entry header on common separators after removing its date range.
func headerParts(line string) []string {
	if m := dates.RangePattern.FindString(line); m != "" {
		line = strings.Replace(line, m, " ", 1)
	}
	var parts []string
	for _, part := range headerSeparator.Split(line, -1) {
		part = strings.Trim(part, " \t|,()–—-")
		if part == "" || dates.TokenPattern.FindString(part) == part {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// titleAndCompany picks the part holding a title keyword as the title and the first part
// naming a company (or else the first remaining part) as the company.
func titleAndCompany(parts []string) (title, company string) {
	for _, part := range parts {
		if title == "" && HasTitle(part) && !HasCompany(part) {
			title = part
		}
	}
	for _, part := range parts {
		if part != title && HasCompany(part) {
			company = part
			break
		}
	}
	if company == "" {
		for _, part := range parts {
			if part != title {
				company = part
				break
			}
		}
	}
	if title == "" && company != "" {
		for _, part := range parts {
			if part != company {
				title = part
				break
			}
		}
	}
	return title, company
}

func (p *parser) isHeaderLine(i int) bool {
	_, ok := p.matchHeader(i)
	return ok
}

func (p *parser) firstContentLine(from, to int) int {
	for i := from; i <= to && i < len(p.lines); i++ {
		if !textspan.IsBlank(p.lines[i]) {
			return i
		}
	}
	return -1
}

// buildEducation groups Education lines into entries. A new entry starts after a blank line
// or bullets, or when a second institution or degree line appears.
func (p *parser) buildEducation(from, to int) []types.EducationEntry {
	var (
		entries []types.EducationEntry
		cur     *types.EducationEntry
		desc    []string
		broken  = true
	)
	flush := func() {
		if cur != nil {
			cur.Description = strings.Join(desc, " ")
			entries = append(entries, *cur)
		}
		cur, desc = nil, nil
	}

	for i := from; i <= to; i++ {
		line := p.lines[i]
		if textspan.IsBlank(line) {
			broken = true
			continue
		}
		if extract.IsBullet(line) {
			if cur == nil {
				cur = &types.EducationEntry{Span: types.LineSpan{Start: i, End: i}}
			}
			cur.Bullets = append(cur.Bullets, extract.AnalyzeBullet(line, i))
			cur.Span.End = i
			broken = true
			continue
		}

		text := strings.TrimSpace(textspan.StripMarkers(line))
		inst, deg := institutionPattern.MatchString(text), hasDegree(text)
		if cur == nil || broken && (inst || deg) || inst && cur.Institution != "" || deg && cur.Degree != "" {
			flush()
			cur = &types.EducationEntry{Span: types.LineSpan{Start: i, End: i}}
		}
		broken = false
		cur.Span.End = i

		if cur.DateText == "" {
			if m := dates.RangePattern.FindString(text); m != "" {
				cur.DateText = m
			} else if m := dates.TokenPattern.FindString(text); m != "" {
				cur.DateText = m
			}
		}
		switch {
		case inst && deg:
			for _, part := range headerParts(text) {
				if cur.Institution == "" && institutionPattern.MatchString(part) {
					cur.Institution = part
				} else if cur.Degree == "" && hasDegree(part) {
					cur.Degree = part
				}
			}
		case inst && cur.Institution == "":
			cur.Institution = partMatching(text, institutionPattern.MatchString)
		case deg && cur.Degree == "":
			cur.Degree = partMatching(text, hasDegree)
		default:
			desc = append(desc, text)
		}
	}
	flush()
	return entries
}

// partMatching returns the first separator-delimited part of text satisfying match.
func partMatching(text string, match func(string) bool) string {
	for _, part := range headerParts(text) {
		if match(part) {
			return part
		}
	}
	return text
}

func hasDegree(text string) bool {
	for _, raw := range strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '(' || r == ')' || r == '/'
	}) {
		tok := strings.ToLower(strings.ReplaceAll(raw, ".", ""))
		if degreeTokens[tok] {
			return true
		}
		if dottedDegreeTokens[tok] && strings.Contains(raw, ".") {
			return true
		}
	}
	return false
}

// buildSkillCategories parses "Name: a, b, c" lines, label-only lines followed by item lines,
// and unlabelled item lines. Item lines continue the current category.
func (p *parser) buildSkillCategories(from, to int) []types.SkillCategory {
	var (
		cats []types.SkillCategory
		cur  *types.SkillCategory
	)
	flush := func() {
		if cur != nil {
			cats = append(cats, *cur)
		}
		cur = nil
	}

	for i := from; i <= to; i++ {
		text := extract.StripGlyph(p.lines[i])
		if text == "" {
			continue
		}
		label, items, labelled := splitLabel(text)
		if labelled {
			flush()
			name := label
			if isSkillsHeader(textspan.Normalize(label)) {
				name = ""
			}
			cur = &types.SkillCategory{Name: name, Span: types.LineSpan{Start: i, End: i}}
			cur.Skills = append(cur.Skills, splitSkills(items)...)
			continue
		}
		if cur == nil {
			cur = &types.SkillCategory{Span: types.LineSpan{Start: i, End: i}}
		}
		cur.Skills = append(cur.Skills, splitSkills(text)...)
		cur.Span.End = i
	}
	flush()
	return cats
}

// splitLabel splits "Label: items" and "Label:" lines.
func splitLabel(text string) (label, items string, ok bool) {
	idx := strings.Index(text, ":")
	if idx <= 0 {
		return "", "", false
	}
	label = strings.TrimSpace(text[:idx])
	if len(strings.Fields(label)) > maxHeaderWords || skillSeparator.MatchString(label) {
		return "", "", false
	}
	return label, strings.TrimSpace(text[idx+1:]), true
}

func splitSkills(items string) []string {
	if items == "" {
		return nil
	}
	var out []string
	pieces := skillSeparator.Split(items, -1)
	if len(pieces) == 1 && len(items) > maxBareSkillChars {
		return nil
	}
	for _, piece := range pieces {
		piece = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(piece), "."))
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}
