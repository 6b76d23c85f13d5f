package scoring

import "github.com/jonathan/resume-analyzer/internal/types"

// FixabilityRates is the assumed share of lost points an auto-fix recovers per category.
var FixabilityRates = map[string]float64{
	CategoryContent:      0.5,
	CategoryLanguage:     0.8,
	CategoryFormatting:   0.9,
	CategoryCompleteness: 0.6,
	CategoryStandards:    0.9,
	CategoryRedFlags:     0.2,
}

// Project estimates the score after every auto-fixable issue is applied. Per category the
// recoverable points are
//
//	points_lost * fixability_rate * auto_fixable_issues / issues_in_category
//
// added to the before-score and clamped again. The result is an estimate, not a re-score.
func (c *Calculator) Project(s types.Score, issues []types.Issue) *types.ScoreProjection {
	total := make(map[string]int)
	fixable := make(map[string]int)
	for _, is := range issues {
		total[is.Category]++
		if is.CanAutoFix {
			fixable[is.Category]++
		}
	}

	p := &types.ScoreProjection{Recoverable: make(map[string]float64), IsEstimate: true}
	raw := 0.0
	gain := 0.0
	for _, cs := range s.Categories {
		raw += cs.Points
		if total[cs.Name] == 0 || fixable[cs.Name] == 0 {
			continue
		}
		lost := cs.MaxPoints - cs.Points
		if lost <= 0 {
			continue
		}
		r := lost * FixabilityRates[cs.Name] * float64(fixable[cs.Name]) / float64(total[cs.Name])
		p.Recoverable[cs.Name] = round2(r)
		gain += r
	}
	p.Total = max(Clamp(raw+gain), s.Total)
	p.Gain = p.Total - s.Total
	return p
}
