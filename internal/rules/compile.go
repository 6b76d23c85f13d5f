package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/schemas"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// maxCompositeDepth bounds composite nesting; the outermost composite is depth 1.
const maxCompositeDepth = 4

// matcher is one compiled handler variant. Exactly one variant field is set, selected by kind.
type matcher struct {
	kind types.HandlerType

	regex       *regexMatcher
	wordList    *wordListMatcher
	presence    *presenceMatcher
	count       *countMatcher
	length      *lengthMatcher
	consistency *consistencyMatcher
	required    *requiredMatcher
	composite   *compositeMatcher
}

type regexMatcher struct {
	section string
	re      *regexp.Regexp
	min     *int
	max     *int
}

type wordListMatcher struct {
	section string
	re      *regexp.Regexp
	min     int
}

type presenceMatcher struct {
	section   string
	patterns  []*regexp.Regexp
	issueWhen string
}

type countMatcher struct {
	section string
	item    string
	min     *int
	max     *int
	mode    string
}

type lengthMatcher struct {
	section string
	unit    string
	scope   string
	min     *int
	max     *int
}

type namedPattern struct {
	name string
	re   *regexp.Regexp
}

type consistencyMatcher struct {
	section  string
	variants []namedPattern
	min      int
}

type requiredMatcher struct {
	section  types.SectionType
	fallback []*regexp.Regexp
}

type compositeMatcher struct {
	all      bool
	children []matcher
}

// compiledRule pairs a loaded rule with its compiled matcher.
type compiledRule struct {
	rule    types.DetectionRule
	matcher matcher
}

// compile validates and compiles a single rule.
func compile(rule types.DetectionRule) (compiledRule, error) {
	if strings.TrimSpace(rule.IssueCode) == "" {
		return compiledRule{}, &ConfigError{HandlerType: rule.HandlerType, Reason: "missing issue_code"}
	}
	m, err := compileMatcher(rule.HandlerType, rule.DetectionConfig, 1)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			ce.IssueCode = rule.IssueCode
			return compiledRule{}, ce
		}
		return compiledRule{}, &ConfigError{IssueCode: rule.IssueCode, HandlerType: rule.HandlerType, Reason: "compile failed", Cause: err}
	}
	return compiledRule{rule: rule, matcher: m}, nil
}

func compileMatcher(kind types.HandlerType, raw map[string]any, depth int) (matcher, error) {
	if !kind.Valid() {
		return matcher{}, &ConfigError{HandlerType: kind, Reason: "unknown handler type"}
	}
	if err := schemas.ValidateDetectionConfig(string(kind), raw); err != nil {
		return matcher{}, &ConfigError{HandlerType: kind, Reason: "detection_config does not match schema", Cause: err}
	}
	fail := func(reason string, cause error) (matcher, error) {
		return matcher{}, &ConfigError{HandlerType: kind, Reason: reason, Cause: cause}
	}

	m := matcher{kind: kind}
	switch kind {
	case types.HandlerRegex:
		var cfg RegexConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return fail("decode", err)
		}
		re, err := compilePattern(cfg.Pattern, cfg.CaseSensitive)
		if err != nil {
			return fail("bad pattern", err)
		}
		if cfg.MinMatches == nil && cfg.MaxMatches == nil {
			one := 1
			cfg.MinMatches = &one
		}
		m.regex = &regexMatcher{section: cfg.Section, re: re, min: cfg.MinMatches, max: cfg.MaxMatches}

	case types.HandlerWordList:
		var cfg WordListConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return fail("decode", err)
		}
		re, err := wordListPattern(cfg.Words, cfg.Anchor, cfg.CaseSensitive)
		if err != nil {
			return fail("bad word list", err)
		}
		m.wordList = &wordListMatcher{section: cfg.Section, re: re, min: max(cfg.MinMatches, 1)}

	case types.HandlerPresence, types.HandlerAbsence:
		var cfg PresenceConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return fail("decode", err)
		}
		pm := &presenceMatcher{section: cfg.Section, issueWhen: cfg.IssueWhen}
		if pm.issueWhen == "" {
			pm.issueWhen = IssueWhenMissing
			if kind == types.HandlerAbsence {
				pm.issueWhen = IssueWhenFound
			}
		}
		for _, p := range cfg.Patterns {
			re, err := compilePattern(p, cfg.CaseSensitive)
			if err != nil {
				return fail("bad pattern", err)
			}
			pm.patterns = append(pm.patterns, re)
		}
		m.presence = pm

	case types.HandlerCount:
		var cfg CountConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return fail("decode", err)
		}
		mode := cfg.Mode
		if mode == "" {
			switch {
			case cfg.MinCount != nil && cfg.MaxCount != nil:
				mode = ModeOutsideRange
			case cfg.MinCount != nil:
				mode = ModeBelow
			default:
				mode = ModeAbove
			}
		}
		if (mode == ModeBelow || mode == ModeOutsideRange) && cfg.MinCount == nil ||
			(mode == ModeAbove || mode == ModeOutsideRange) && cfg.MaxCount == nil {
			return fail(fmt.Sprintf("mode %s needs its bound", mode), nil)
		}
		m.count = &countMatcher{section: cfg.Section, item: cfg.Item, min: cfg.MinCount, max: cfg.MaxCount, mode: mode}

	case types.HandlerLength:
		var cfg LengthConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return fail("decode", err)
		}
		lm := &lengthMatcher{section: cfg.Section, unit: cfg.Unit, scope: cfg.Scope, min: cfg.Min, max: cfg.Max}
		if lm.unit == "" {
			lm.unit = UnitWords
		}
		if lm.scope == "" {
			lm.scope = ScopeSection
		}
		if lm.scope != ScopeSection && lm.unit == UnitLines {
			return fail("unit lines only applies to section scope", nil)
		}
		m.length = lm

	case types.HandlerConsistency:
		var cfg ConsistencyConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return fail("decode", err)
		}
		cm := &consistencyMatcher{section: cfg.Section, min: max(cfg.MinVariants, 2)}
		for _, v := range cfg.Variants {
			re, err := compilePattern(v.Pattern, cfg.CaseSensitive)
			if err != nil {
				return fail("bad pattern for variant "+v.Name, err)
			}
			cm.variants = append(cm.variants, namedPattern{name: v.Name, re: re})
		}
		m.consistency = cm

	case types.HandlerSectionRequired:
		var cfg SectionRequiredConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return fail("decode", err)
		}
		rm := &requiredMatcher{section: types.SectionType(cfg.Section)}
		for _, p := range cfg.FallbackPatterns {
			re, err := compilePattern(p, false)
			if err != nil {
				return fail("bad fallback pattern", err)
			}
			rm.fallback = append(rm.fallback, re)
		}
		m.required = rm

	case types.HandlerComposite:
		if depth > maxCompositeDepth {
			return fail(fmt.Sprintf("composite nesting deeper than %d", maxCompositeDepth), nil)
		}
		var cfg CompositeConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return fail("decode", err)
		}
		cm := &compositeMatcher{all: cfg.Operator == OperatorAll}
		for i, sub := range cfg.Rules {
			child, err := compileMatcher(sub.HandlerType, sub.DetectionConfig, depth+1)
			if err != nil {
				return fail(fmt.Sprintf("sub-rule %d", i), err)
			}
			cm.children = append(cm.children, child)
		}
		m.composite = cm
	}
	return m, nil
}

func compilePattern(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// wordListPattern builds one alternation over the words, longest first. The word itself is
// capture group 1 so anchored matches can still quote just the word.
func wordListPattern(words []string, anchor string, caseSensitive bool) (*regexp.Regexp, error) {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	if len(quoted) == 0 {
		return nil, errors.New("no words")
	}
	sort.SliceStable(quoted, func(a, b int) bool { return len(quoted[a]) > len(quoted[b]) })
	alt := `(` + strings.Join(quoted, "|") + `)`
	var pattern string
	switch anchor {
	case AnchorLineStart:
		pattern = `^\s*(?:[-•*▪◦]\s*)?` + alt + `\b`
	case AnchorLineEnd:
		pattern = `\b` + alt + `[.!?]?\s*$`
	default:
		pattern = `\b` + alt + `\b`
	}
	return compilePattern(pattern, caseSensitive)
}
