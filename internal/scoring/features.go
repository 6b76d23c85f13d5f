package scoring

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/jonathan/resume-analyzer/internal/schemas"
)

// Features is the flat signal record the calculator scores. It may come from the built-in
// extractors or from an external extractor; the calculator does not care which.
type Features struct {
	BulletCount           int     `json:"bullet_count"`
	QuantifiedBulletCount int     `json:"quantified_bullet_count"`
	StrongVerbBulletCount int     `json:"strong_verb_bullet_count"`
	HasSummary            bool    `json:"has_summary"`
	SummaryWordCount      int     `json:"summary_word_count"`
	JobCount              int     `json:"job_count"`
	AvgBulletsPerJob      float64 `json:"avg_bullets_per_job"`
	WordCount             int     `json:"word_count"`

	WeakPhraseCount int `json:"weak_phrase_count"`
	VagueWordCount  int `json:"vague_word_count"`
	BuzzwordCount   int `json:"buzzword_count"`
	PronounCount    int `json:"pronoun_count"`
	PassiveCount    int `json:"passive_count"`

	DateFormatConsistent  bool `json:"date_format_consistent"`
	BulletStyleConsistent bool `json:"bullet_style_consistent"`
	HasTables             bool `json:"has_tables"`
	PolishIssueCount      int  `json:"polish_issue_count"`

	HasEmail      bool `json:"has_email"`
	HasPhone      bool `json:"has_phone"`
	HasLinkedIn   bool `json:"has_linkedin"`
	HasExperience bool `json:"has_experience"`
	HasEducation  bool `json:"has_education"`
	HasSkills     bool `json:"has_skills"`
	SkillCount    int  `json:"skill_count"`

	HasPersonalInfo     bool `json:"has_personal_info"`
	HasPhoto            bool `json:"has_photo"`
	HasReferencesLine   bool `json:"has_references_line"`
	HasSalary           bool `json:"has_salary"`
	HasObjective        bool `json:"has_objective"`
	UnprofessionalEmail bool `json:"unprofessional_email"`

	EmploymentGapCount int  `json:"employment_gap_count"`
	HasLongGap         bool `json:"has_long_gap"`
	ShortTenureCount   int  `json:"short_tenure_count"`
}

// FeaturesFromMap normalizes a loosely typed feature map, such as parsed model output, into
// Features. Strings like "true" or "3" are coerced; unknown keys are ignored; missing keys
// stay zero. The normalized record must satisfy the feature schema.
func FeaturesFromMap(raw map[string]any) (Features, error) {
	var f Features
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &f,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Features{}, fmt.Errorf("failed to create feature decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Features{}, fmt.Errorf("failed to decode features: %w", err)
	}
	m, err := f.Map()
	if err != nil {
		return Features{}, err
	}
	if err := schemas.ValidateFeatures(m); err != nil {
		return Features{}, fmt.Errorf("invalid features: %w", err)
	}
	return f, nil
}

// Map returns the features keyed by their documented names.
func (f Features) Map() (map[string]any, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal features: %w", err)
	}
	return m, nil
}

func ratio(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total)
}
