package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/prompts"
	"github.com/jonathan/resume-analyzer/internal/scoring"
)

const promptFile = "features.json"

// MaxInputRunes caps the document text sent to the model.
const MaxInputRunes = 24000

// featureHints describes each feature to the model. Fields without a hint are still listed.
var featureHints = map[string]string{
	"bullet_count":             "number of bullet points in the whole document",
	"quantified_bullet_count":  "bullets containing a number, percentage or currency amount",
	"strong_verb_bullet_count": "bullets that open with a strong action verb",
	"summary_word_count":       "words in the summary or profile section, 0 if none",
	"avg_bullets_per_job":      "bullets divided by number of jobs",
	"weak_phrase_count":        `occurrences of weak phrasing such as "responsible for" or "helped with"`,
	"vague_word_count":         `vague words such as "various", "many", "etc"`,
	"buzzword_count":           `cliches such as "synergy", "go-getter", "results-driven"`,
	"pronoun_count":            "first person pronouns (I, me, my) outside the contact block",
	"passive_count":            "passive voice constructions",
	"date_format_consistent":   "true when every date uses the same format",
	"bullet_style_consistent":  "true when every bullet uses the same marker",
	"has_tables":               "true when the layout uses tables or columns",
	"polish_issue_count":       "doubled words, doubled punctuation, missing spaces after punctuation, excessive caps",
	"skill_count":              "number of distinct skills listed",
	"has_personal_info":        "age, date of birth, marital status or similar",
	"has_references_line":      `a line such as "references available upon request"`,
	"unprofessional_email":     "email address that looks casual or jokey",
	"employment_gap_count":     "gaps of six months or more between consecutive jobs",
	"has_long_gap":             "true when any gap is longer than two years",
	"short_tenure_count":       "jobs held for less than one year",
}

// FeatureExtractor derives scoring features from document text with a model.
type FeatureExtractor struct {
	client Client
	tier   ModelTier
	logger *zap.Logger
}

// NewFeatureExtractor creates an extractor using client.
func NewFeatureExtractor(client Client, logger *zap.Logger) *FeatureExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeatureExtractor{client: client, tier: TierStandard, logger: logger}
}

// Extract asks the model for the feature record of text and normalizes the reply. A reply
// that does not parse or validate is sent back once with the error for correction.
func (e *FeatureExtractor) Extract(ctx context.Context, text string) (scoring.Features, error) {
	if e.client == nil {
		return scoring.Features{}, errors.New("no model client configured")
	}
	prompt := BuildFeaturePrompt(text)
	reply, err := e.client.GenerateJSON(ctx, prompt, e.tier)
	if err != nil {
		return scoring.Features{}, fmt.Errorf("failed to extract features: %w", err)
	}

	f, err := decodeFeatures(reply)
	if err != nil {
		e.logger.Debug("feature reply rejected, retrying", zap.Error(err))
		retry := prompt + "\n" + prompts.Render(prompts.MustGet(promptFile, "repair-features"),
			map[string]string{"Error": err.Error()})
		reply, err = e.client.GenerateJSON(ctx, retry, e.tier)
		if err != nil {
			return scoring.Features{}, fmt.Errorf("failed to extract features: %w", err)
		}
		if f, err = decodeFeatures(reply); err != nil {
			return scoring.Features{}, err
		}
	}
	e.logger.Debug("model features extracted",
		zap.Int("bullet_count", f.BulletCount),
		zap.Int("job_count", f.JobCount))
	return f, nil
}

func decodeFeatures(reply string) (scoring.Features, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(CleanJSONBlock(reply)), &raw); err != nil {
		return scoring.Features{}, fmt.Errorf("failed to parse feature response: %w", err)
	}
	return scoring.FeaturesFromMap(raw)
}

// BuildFeaturePrompt renders the extraction prompt for text.
func BuildFeaturePrompt(text string) string {
	var fields strings.Builder
	names := featureNames()
	for i, f := range names {
		fmt.Fprintf(&fields, "  %q: %s", f.name, f.kind)
		if hint := featureHints[f.name]; hint != "" {
			fmt.Fprintf(&fields, " // %s", hint)
		}
		if i < len(names)-1 {
			fields.WriteString(",")
		}
		fields.WriteString("\n")
	}

	return prompts.Render(prompts.MustGet(promptFile, "extract-features"), map[string]string{
		"Fields":   fields.String(),
		"Document": truncateRunes(text, MaxInputRunes),
	})
}

type featureName struct {
	name string
	kind string
}

// featureNames lists the json names of scoring.Features in declaration order.
func featureNames() []featureName {
	t := reflect.TypeOf(scoring.Features{})
	out := make([]featureName, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		kind := "integer"
		switch field.Type.Kind() {
		case reflect.Bool:
			kind = "boolean"
		case reflect.Float32, reflect.Float64:
			kind = "number"
		}
		out = append(out, featureName{name: name, kind: kind})
	}
	return out
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
