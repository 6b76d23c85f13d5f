package types

// SectionDigest describes one extracted section without its content.
type SectionDigest struct {
	Type       SectionType     `json:"type"`
	StartLine  int             `json:"start_line"`
	EndLine    int             `json:"end_line"`
	Confidence float64         `json:"confidence"`
	Method     DetectionMethod `json:"detection_method"`
}

// StructureSummary is the serializable digest of a DocumentStructure.
type StructureSummary struct {
	Sections           []SectionDigest `json:"sections"`
	HasContact         bool            `json:"has_contact"`
	HasSummary         bool            `json:"has_summary"`
	HasExperience      bool            `json:"has_experience"`
	HasEducation       bool            `json:"has_education"`
	HasSkills          bool            `json:"has_skills"`
	HasCertifications  bool            `json:"has_certifications"`
	JobCount           int             `json:"job_count"`
	EducationCount     int             `json:"education_count"`
	SkillCategoryCount int             `json:"skill_category_count"`
	BulletCount        int             `json:"bullet_count"`
	WordCount          int             `json:"word_count"`
	LineCount          int             `json:"line_count"`
}

// CategoryScore is the points earned in one scoring category.
type CategoryScore struct {
	Name      string             `json:"name"`
	Points    float64            `json:"points"`
	MaxPoints float64            `json:"max_points"`
	Details   map[string]float64 `json:"details,omitempty"`
}

// ScoreProjection estimates the score after auto-fixable issues are resolved.
// It is an estimate derived from the before-score, not a re-analysis.
type ScoreProjection struct {
	Total       int                `json:"total"`
	Gain        int                `json:"gain"`
	Recoverable map[string]float64 `json:"recoverable"`
	IsEstimate  bool               `json:"is_estimate"`
}

// Score is the deterministic quality score of a document.
type Score struct {
	Total      int                `json:"total"`
	Breakdown  map[string]float64 `json:"breakdown"`
	Categories []CategoryScore    `json:"categories"`
	Grade      string             `json:"grade"`
	AfterFix   *ScoreProjection   `json:"after_fix,omitempty"`
}

// AnalysisResult is the output contract consumed by rendering and persistence layers.
type AnalysisResult struct {
	Issues           []Issue          `json:"issues"`
	StructureSummary StructureSummary `json:"structure_summary"`
	Score            Score            `json:"score"`
	// RulesVersion identifies the rule snapshot used; 0 means built-in defaults only.
	RulesVersion int64 `json:"rules_version"`
}
