package types

// HandlerType selects the matching strategy a rule is evaluated with.
type HandlerType string

// Handler types. The set is closed; the rule engine switches over it exhaustively.
const (
	HandlerRegex           HandlerType = "regex"
	HandlerWordList        HandlerType = "word_list"
	HandlerPresence        HandlerType = "presence"
	HandlerAbsence         HandlerType = "absence"
	HandlerCount           HandlerType = "count"
	HandlerLength          HandlerType = "length"
	HandlerConsistency     HandlerType = "consistency"
	HandlerSectionRequired HandlerType = "section_required"
	HandlerComposite       HandlerType = "composite"
)

// HandlerTypes lists every handler type.
var HandlerTypes = []HandlerType{
	HandlerRegex,
	HandlerWordList,
	HandlerPresence,
	HandlerAbsence,
	HandlerCount,
	HandlerLength,
	HandlerConsistency,
	HandlerSectionRequired,
	HandlerComposite,
}

// Valid reports whether h is a known handler type.
func (h HandlerType) Valid() bool {
	for _, known := range HandlerTypes {
		if h == known {
			return true
		}
	}
	return false
}

// DetectionRule is a declarative, data-stored detection definition.
type DetectionRule struct {
	IssueCode       string         `json:"issue_code" yaml:"issue_code" mapstructure:"issue_code"`
	HandlerType     HandlerType    `json:"handler_type" yaml:"handler_type" mapstructure:"handler_type"`
	DetectionConfig map[string]any `json:"detection_config" yaml:"detection_config" mapstructure:"detection_config"`
	Severity        Severity       `json:"severity,omitempty" yaml:"severity,omitempty" mapstructure:"severity"`
	Weight          int            `json:"weight,omitempty" yaml:"weight,omitempty" mapstructure:"weight"`
	Message         string         `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
	Suggestion      string         `json:"suggestion,omitempty" yaml:"suggestion,omitempty" mapstructure:"suggestion"`
	CanAutoFix      bool           `json:"can_auto_fix,omitempty" yaml:"can_auto_fix,omitempty" mapstructure:"can_auto_fix"`
	Enabled         *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty" mapstructure:"enabled"`
}

// IsEnabled reports whether the rule should be evaluated. Rules are enabled unless set otherwise.
func (r DetectionRule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// CatalogEntry is the canonical metadata for one issue code.
type CatalogEntry struct {
	IssueCode   string   `json:"issue_code" yaml:"issue_code"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Weight      int      `json:"weight" yaml:"weight"`
	Category    string   `json:"category" yaml:"category"`
	Subcategory string   `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	FixGuidance string   `json:"fix_guidance,omitempty" yaml:"fix_guidance,omitempty"`
	CanAutoFix  bool     `json:"can_auto_fix" yaml:"can_auto_fix"`
}
