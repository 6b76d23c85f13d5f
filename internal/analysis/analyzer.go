// Package analysis runs the full résumé analysis: structure extraction, every detector, the
// rule engine, snippet validation, catalog enrichment and scoring.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-analyzer/internal/catalog"
	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/detectors"
	"github.com/jonathan/resume-analyzer/internal/rules"
	"github.com/jonathan/resume-analyzer/internal/scoring"
	"github.com/jonathan/resume-analyzer/internal/structure"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// FeatureExtractor produces scoring features from text, e.g. an external model.
type FeatureExtractor interface {
	Extract(ctx context.Context, text string) (scoring.Features, error)
}

// Options configures an Analyzer. Zero values select the built-in defaults.
type Options struct {
	Catalog    *catalog.Catalog
	Calculator *scoring.Calculator
	// Rules enables the data-driven rule engine when set.
	Rules *rules.Engine
	// Detectors replaces the standard detector set.
	Detectors []detectors.Detector
	// Features replaces built-in signal extraction for scoring. On error the built-in
	// extraction is used.
	Features FeatureExtractor
	Logger   *zap.Logger
	// Now resolves "Present" in date ranges. Defaults to time.Now.
	Now func() time.Time
}

// Report is an analysis result together with the intermediate data it was derived from.
type Report struct {
	types.AnalysisResult
	Structure *types.DocumentStructure `json:"-"`
	Features  scoring.Features         `json:"-"`
	// FeatureSource is "builtin" or "external".
	FeatureSource string `json:"-"`
}

// Analyzer analyzes documents. It is safe for concurrent use.
type Analyzer struct {
	catalog    *catalog.Catalog
	calculator *scoring.Calculator
	rules      *rules.Engine
	features   FeatureExtractor
	logger     *zap.Logger
	now        func() time.Time

	custom []detectors.Detector

	mu        sync.Mutex
	ref       dates.YearMonth
	detectors []detectors.Detector
}

// New creates an analyzer.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		catalog:    opts.Catalog,
		calculator: opts.Calculator,
		rules:      opts.Rules,
		features:   opts.Features,
		logger:     opts.Logger,
		now:        opts.Now,
		custom:     opts.Detectors,
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.catalog == nil {
		a.catalog = catalog.New(nil, a.logger)
	}
	if a.calculator == nil {
		a.calculator = scoring.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Calculator returns the scoring calculator in use.
func (a *Analyzer) Calculator() *scoring.Calculator {
	return a.calculator
}

// detectorsFor returns the detector set for the reference month, rebuilding the standard
// set when the month changes.
func (a *Analyzer) detectorsFor(ref dates.YearMonth) []detectors.Detector {
	if a.custom != nil {
		return a.custom
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detectors == nil || a.ref != ref {
		a.detectors = detectors.Defaults(ref)
		a.ref = ref
	}
	return a.detectors
}

// Analyze analyzes text. The only error returned is ctx's; detector and rule failures are
// logged and contribute nothing.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref := dates.FromTime(a.now())

	if strings.TrimSpace(text) == "" {
		st := structure.Extract(text)
		return &Report{
			AnalysisResult: types.AnalysisResult{
				Issues:           []types.Issue{},
				StructureSummary: Summarize(text, st),
				Score:            a.emptyScore(),
				RulesVersion:     a.rulesVersion(),
			},
			Structure:     st,
			FeatureSource: "builtin",
		}, nil
	}

	st := structure.Extract(text)
	issues, err := a.detect(ctx, text, st, ref)
	if err != nil {
		return nil, err
	}

	version := a.rulesVersion()
	if a.rules != nil {
		var ruleIssues []types.Issue
		ruleIssues, version = a.rules.Evaluate(text, st)
		issues = append(issues, ruleIssues...)
	}

	issues = ValidateSnippets(text, issues)
	// enrichment resolves legacy codes, so repeats are only comparable afterwards
	issues = dedupe(a.catalog.EnrichAll(issues))
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity.Rank() < issues[j].Severity.Rank()
	})

	features, source := a.extractFeatures(ctx, text, st, issues, ref)
	score := a.calculator.Score(features)
	score.AfterFix = a.calculator.Project(score, issues)

	a.logger.Debug("analysis complete",
		zap.Int("issues", len(issues)),
		zap.Int("score", score.Total),
		zap.Int64("rules_version", version))

	return &Report{
		AnalysisResult: types.AnalysisResult{
			Issues:           issues,
			StructureSummary: Summarize(text, st),
			Score:            score,
			RulesVersion:     version,
		},
		Structure:     st,
		Features:      features,
		FeatureSource: source,
	}, nil
}

// detect runs every detector concurrently. Results land in per-detector slots and are
// concatenated in detector order.
func (a *Analyzer) detect(ctx context.Context, text string, st *types.DocumentStructure, ref dates.YearMonth) ([]types.Issue, error) {
	dets := a.detectorsFor(ref)
	slots := make([][]types.Issue, len(dets))

	g, gCtx := errgroup.WithContext(ctx)
	for i, d := range dets {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			slots[i] = a.runDetector(d, text, st)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	issues := []types.Issue{}
	for _, s := range slots {
		issues = append(issues, s...)
	}
	return issues, nil
}

func (a *Analyzer) runDetector(d detectors.Detector, text string, st *types.DocumentStructure) (issues []types.Issue) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("detector failed",
				zap.String("detector", d.Name()),
				zap.Error(fmt.Errorf("panic: %v", r)))
			issues = nil
		}
	}()
	return d.Detect(text, st)
}

func (a *Analyzer) extractFeatures(ctx context.Context, text string, st *types.DocumentStructure, issues []types.Issue, ref dates.YearMonth) (scoring.Features, string) {
	if a.features != nil {
		f, err := a.features.Extract(ctx, text)
		if err == nil {
			return f, "external"
		}
		a.logger.Warn("external feature extraction failed, using built-in signals", zap.Error(err))
	}
	return scoring.ExtractFeatures(text, st, issues, ref), "builtin"
}

func (a *Analyzer) rulesVersion() int64 {
	if a.rules == nil {
		return rules.DefaultsVersion
	}
	return a.rules.Version()
}

// emptyScore is the score of a document with no content.
func (a *Analyzer) emptyScore() types.Score {
	s := types.Score{
		Total:      scoring.MinScore,
		Grade:      scoring.Grade(scoring.MinScore),
		Breakdown:  make(map[string]float64, len(scoring.CategoryOrder)),
		Categories: make([]types.CategoryScore, 0, len(scoring.CategoryOrder)),
	}
	for _, name := range scoring.CategoryOrder {
		s.Breakdown[name] = 0
		s.Categories = append(s.Categories, types.CategoryScore{Name: name, MaxPoints: a.calculator.MaxPoints(name)})
	}
	return s
}
