// Package scoring turns a flat feature record into a bounded, explainable quality score.
//
// Every sub-score is a step lookup against fixed breakpoints rather than a continuous
// formula, so small changes to a document move the score in predictable increments.
package scoring

import (
	"fmt"
	"math"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// Score bounds. 100 is unreachable.
const (
	MinScore = 10
	MaxScore = 95
)

// Category names, shared with catalog categories.
const (
	CategoryContent      = "Content Quality"
	CategoryLanguage     = "Language & Clarity"
	CategoryFormatting   = "Formatting"
	CategoryCompleteness = "Completeness"
	CategoryStandards    = "Professional Standards"
	CategoryRedFlags     = "Red Flags"
)

// CategoryOrder is the fixed order categories are reported in.
var CategoryOrder = []string{
	CategoryContent,
	CategoryLanguage,
	CategoryFormatting,
	CategoryCompleteness,
	CategoryStandards,
	CategoryRedFlags,
}

// DefaultWeights are the maximum points per category.
var DefaultWeights = map[string]float64{
	CategoryContent:      40,
	CategoryLanguage:     18,
	CategoryFormatting:   18,
	CategoryCompleteness: 12,
	CategoryStandards:    8,
	CategoryRedFlags:     4,
}

// Grade thresholds, checked top down.
var gradeLadder = []struct {
	min   int
	grade string
}{
	{85, "excellent"},
	{70, "good"},
	{55, "fair"},
	{40, "needs_work"},
	{0, "poor"},
}

// WeightError reports category weights that do not sum to 100.
type WeightError struct {
	Sum     float64
	Missing []string
}

func (e *WeightError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("category weights missing for %v", e.Missing)
	}
	return fmt.Sprintf("category weights sum to %.2f, want 100", e.Sum)
}

// component is one weighted signal inside a category; value returns a fraction in [0,1].
type component struct {
	name   string
	weight float64
	value  func(Features) float64
}

// Calculator scores features with a fixed set of category weights.
type Calculator struct {
	weights map[string]float64
}

// NewCalculator checks that weights cover every category and sum to exactly 100.
func NewCalculator(weights map[string]float64) (*Calculator, error) {
	sum := 0.0
	var missing []string
	for _, name := range CategoryOrder {
		w, ok := weights[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		sum += w
	}
	if len(missing) > 0 {
		return nil, &WeightError{Missing: missing}
	}
	if math.Abs(sum-100) > 1e-9 {
		return nil, &WeightError{Sum: sum}
	}
	cp := make(map[string]float64, len(weights))
	for k, v := range weights {
		cp[k] = v
	}
	return &Calculator{weights: cp}, nil
}

// Default returns a calculator using DefaultWeights.
func Default() *Calculator {
	c, err := NewCalculator(DefaultWeights)
	if err != nil {
		panic(err)
	}
	return c
}

// MaxPoints returns the weight of a category.
func (c *Calculator) MaxPoints(category string) float64 {
	return c.weights[category]
}

// Score computes the total, per-category breakdown and grade for f.
func (c *Calculator) Score(f Features) types.Score {
	s := types.Score{
		Breakdown:  make(map[string]float64, len(CategoryOrder)),
		Categories: make([]types.CategoryScore, 0, len(CategoryOrder)),
	}
	sum := 0.0
	for _, name := range CategoryOrder {
		cs := c.category(name, f)
		s.Breakdown[name] = cs.Points
		s.Categories = append(s.Categories, cs)
		sum += cs.Points
	}
	s.Total = Clamp(sum)
	s.Grade = Grade(s.Total)
	return s
}

func (c *Calculator) category(name string, f Features) types.CategoryScore {
	maxPts := c.weights[name]
	comps := components[name]
	total := 0.0
	for _, comp := range comps {
		total += comp.weight
	}
	cs := types.CategoryScore{Name: name, MaxPoints: maxPts, Details: make(map[string]float64, len(comps))}
	for _, comp := range comps {
		pts := maxPts * comp.weight / total * clamp01(comp.value(f))
		cs.Details[comp.name] = round2(pts)
		cs.Points += pts
	}
	cs.Points = round2(cs.Points)
	return cs
}

// Clamp rounds a raw point sum and bounds it to [MinScore, MaxScore].
func Clamp(points float64) int {
	n := int(math.Round(points))
	return min(max(n, MinScore), MaxScore)
}

// Grade maps a total to its grade.
func Grade(total int) string {
	for _, g := range gradeLadder {
		if total >= g.min {
			return g.grade
		}
	}
	return "poor"
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
