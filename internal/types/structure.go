package types

// SectionType identifies a top-level résumé block.
type SectionType string

// Known section types.
const (
	SectionContact        SectionType = "contact"
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionCertifications SectionType = "certifications"
)

// AllSectionTypes lists section types in canonical résumé order.
var AllSectionTypes = []SectionType{
	SectionContact,
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionCertifications,
}

var sectionLabels = map[SectionType]string{
	SectionContact:        "Contact",
	SectionSummary:        "Summary",
	SectionExperience:     "Experience",
	SectionEducation:      "Education",
	SectionSkills:         "Skills",
	SectionCertifications: "Certifications",
}

// Label returns the display name of the section type.
func (t SectionType) Label() string {
	if l, ok := sectionLabels[t]; ok {
		return l
	}
	return string(t)
}

// Valid reports whether t is a known section type.
func (t SectionType) Valid() bool {
	_, ok := sectionLabels[t]
	return ok
}

// DetectionMethod records how a section boundary was found.
type DetectionMethod string

// Detection methods, from most to least reliable.
const (
	MethodHeader   DetectionMethod = "header"
	MethodPattern  DetectionMethod = "pattern"
	MethodFallback DetectionMethod = "fallback"
)

// LineSpan is an inclusive zero-based line range.
type LineSpan struct {
	Start int `json:"start_line"`
	End   int `json:"end_line"`
}

// Len returns the number of lines covered.
func (s LineSpan) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start + 1
}

// Contains reports whether line falls inside the span.
func (s LineSpan) Contains(line int) bool {
	return line >= s.Start && line <= s.End
}

// Overlaps reports whether two spans share any line.
func (s LineSpan) Overlaps(o LineSpan) bool {
	return s.Len() > 0 && o.Len() > 0 && s.Start <= o.End && o.Start <= s.End
}

// Section is one top-level block of the document.
type Section struct {
	Type       SectionType     `json:"type"`
	HeaderText string          `json:"header_text,omitempty"`
	Content    string          `json:"content"`
	StartLine  int             `json:"start_line"`
	EndLine    int             `json:"end_line"`
	Confidence float64         `json:"confidence"`
	Method     DetectionMethod `json:"detection_method"`
}

// Span returns the section's line range.
func (s Section) Span() LineSpan {
	return LineSpan{Start: s.StartLine, End: s.EndLine}
}

// Bullet is one achievement line.
type Bullet struct {
	Text                 string `json:"text"`
	LineNumber           int    `json:"line_number"`
	Glyph                string `json:"glyph,omitempty"`
	WordCount            int    `json:"word_count"`
	HasMetric            bool   `json:"has_metric"`
	StartsWithStrongVerb bool   `json:"starts_with_strong_verb"`
}

// JobEntry is one employment record inside Experience.
type JobEntry struct {
	HeaderLine int      `json:"header_line"`
	Header     string   `json:"header"`
	Title      string   `json:"title,omitempty"`
	Company    string   `json:"company,omitempty"`
	DateText   string   `json:"date_text,omitempty"`
	Span       LineSpan `json:"span"`
	Bullets    []Bullet `json:"bullets"`
	// Description holds the non-bullet prose lines of the entry.
	Description string `json:"description,omitempty"`
}

// EducationEntry is one degree or school record inside Education.
type EducationEntry struct {
	Institution string   `json:"institution,omitempty"`
	Degree      string   `json:"degree,omitempty"`
	DateText    string   `json:"date_text,omitempty"`
	Span        LineSpan `json:"span"`
	Bullets     []Bullet `json:"bullets"`
	Description string   `json:"description,omitempty"`
}

// SkillCategory is a labelled group inside Skills, e.g. "Programming Languages: Go, Python".
type SkillCategory struct {
	Name   string   `json:"name,omitempty"`
	Skills []string `json:"skills"`
	Span   LineSpan `json:"span"`
}

// DocumentStructure is the parsed layout of a résumé. It is not modified after extraction.
type DocumentStructure struct {
	Sections []Section `json:"sections"`

	HasContact        bool `json:"has_contact"`
	HasSummary        bool `json:"has_summary"`
	HasExperience     bool `json:"has_experience"`
	HasEducation      bool `json:"has_education"`
	HasSkills         bool `json:"has_skills"`
	HasCertifications bool `json:"has_certifications"`

	// JobEntries are experience sub-blocks found without an explicit header.
	JobEntries []LineSpan `json:"job_entries,omitempty"`

	Jobs            []JobEntry       `json:"jobs,omitempty"`
	Education       []EducationEntry `json:"education,omitempty"`
	SkillCategories []SkillCategory  `json:"skill_categories,omitempty"`

	LineCount int `json:"line_count"`
}

// Section returns the first section of the given type, or nil.
func (d *DocumentStructure) Section(t SectionType) *Section {
	if d == nil {
		return nil
	}
	for i := range d.Sections {
		if d.Sections[i].Type == t {
			return &d.Sections[i]
		}
	}
	return nil
}

// SectionText returns the content of the named section, or "" when absent.
func (d *DocumentStructure) SectionText(t SectionType) string {
	if s := d.Section(t); s != nil {
		return s.Content
	}
	return ""
}

// Has reports whether the document contains the given section type.
func (d *DocumentStructure) Has(t SectionType) bool {
	if d == nil {
		return false
	}
	switch t {
	case SectionContact:
		return d.HasContact
	case SectionSummary:
		return d.HasSummary
	case SectionExperience:
		return d.HasExperience
	case SectionEducation:
		return d.HasEducation
	case SectionSkills:
		return d.HasSkills
	case SectionCertifications:
		return d.HasCertifications
	}
	return false
}

// SectionAt returns the section containing the given line, or nil.
func (d *DocumentStructure) SectionAt(line int) *Section {
	if d == nil {
		return nil
	}
	for i := range d.Sections {
		if d.Sections[i].Span().Contains(line) {
			return &d.Sections[i]
		}
	}
	return nil
}

// AllBullets returns job bullets followed by education bullets.
func (d *DocumentStructure) AllBullets() []Bullet {
	if d == nil {
		return nil
	}
	var out []Bullet
	for _, j := range d.Jobs {
		out = append(out, j.Bullets...)
	}
	for _, e := range d.Education {
		out = append(out, e.Bullets...)
	}
	return out
}
