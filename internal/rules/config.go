package rules

import (
	"github.com/mitchellh/mapstructure"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// SectionAll targets the whole document.
const SectionAll = "all"

// Values of PresenceConfig.IssueWhen.
const (
	IssueWhenMissing = "missing"
	IssueWhenFound   = "found"
)

// Values of WordListConfig.Anchor.
const (
	AnchorLineStart = "line_start"
	AnchorLineEnd   = "line_end"
)

// Values of CountConfig.Item.
const (
	ItemBullets        = "bullets"
	ItemWords          = "words"
	ItemLines          = "lines"
	ItemCertifications = "certifications"
	ItemNumbers        = "numbers"
)

// Values of CountConfig.Mode.
const (
	ModeBelow        = "below"
	ModeAbove        = "above"
	ModeOutsideRange = "outside_range"
)

// Values of LengthConfig.Unit and LengthConfig.Scope.
const (
	UnitWords      = "words"
	UnitCharacters = "characters"
	UnitLines      = "lines"

	ScopeSection = "section"
	ScopeLine    = "line"
	ScopeBullet  = "bullet"
)

// Values of CompositeConfig.Operator.
const (
	OperatorAll = "all_match"
	OperatorAny = "any_match"
)

// RegexConfig fires when the pattern matches at least MinMatches times, or more than
// MaxMatches times. With neither bound set a single match fires.
type RegexConfig struct {
	Pattern       string `mapstructure:"pattern"`
	Section       string `mapstructure:"section"`
	MinMatches    *int   `mapstructure:"min_matches"`
	MaxMatches    *int   `mapstructure:"max_matches"`
	CaseSensitive bool   `mapstructure:"case_sensitive"`
}

// WordListConfig fires when words from the list occur at least MinMatches times in total.
type WordListConfig struct {
	Words         []string `mapstructure:"words"`
	Section       string   `mapstructure:"section"`
	MinMatches    int      `mapstructure:"min_matches"`
	Anchor        string   `mapstructure:"anchor"`
	CaseSensitive bool     `mapstructure:"case_sensitive"`
}

// PresenceConfig drives both presence and absence rules. IssueWhen defaults to "missing"
// for presence and "found" for absence.
type PresenceConfig struct {
	Patterns      []string `mapstructure:"patterns"`
	Section       string   `mapstructure:"section"`
	IssueWhen     string   `mapstructure:"issue_when"`
	CaseSensitive bool     `mapstructure:"case_sensitive"`
}

// CountConfig counts items in the target and compares against the bounds.
type CountConfig struct {
	Item     string `mapstructure:"item"`
	Section  string `mapstructure:"section"`
	MinCount *int   `mapstructure:"min_count"`
	MaxCount *int   `mapstructure:"max_count"`
	Mode     string `mapstructure:"mode"`
}

// LengthConfig measures the whole target, or each line or bullet in it.
type LengthConfig struct {
	Unit    string `mapstructure:"unit"`
	Scope   string `mapstructure:"scope"`
	Section string `mapstructure:"section"`
	Min     *int   `mapstructure:"min"`
	Max     *int   `mapstructure:"max"`
}

// Variant is one way of writing the same thing.
type Variant struct {
	Name    string `mapstructure:"name"`
	Pattern string `mapstructure:"pattern"`
}

// ConsistencyConfig fires when at least MinVariants of the variants appear in the target.
type ConsistencyConfig struct {
	Variants      []Variant `mapstructure:"variants"`
	Section       string    `mapstructure:"section"`
	MinVariants   int       `mapstructure:"min_variants"`
	CaseSensitive bool      `mapstructure:"case_sensitive"`
}

// SectionRequiredConfig fires when the section is absent from the structure and none of the
// fallback patterns match the document.
type SectionRequiredConfig struct {
	Section          string   `mapstructure:"section"`
	FallbackPatterns []string `mapstructure:"fallback_patterns"`
}

// SubRule is a nested rule of a composite. It carries only a handler type and its config.
type SubRule struct {
	HandlerType     types.HandlerType `mapstructure:"handler_type"`
	DetectionConfig map[string]any    `mapstructure:"detection_config"`
}

// CompositeConfig combines the outcomes of its sub-rules.
type CompositeConfig struct {
	Operator string    `mapstructure:"operator"`
	Rules    []SubRule `mapstructure:"rules"`
}

// decodeConfig decodes an opaque detection_config map into a typed config. Numbers arriving
// as float64 from JSON stores decode into int fields; unknown keys are rejected.
func decodeConfig(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
