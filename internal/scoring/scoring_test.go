package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/dates"
	"github.com/jonathan/resume-analyzer/internal/structure"
	"github.com/jonathan/resume-analyzer/internal/types"
)

func perfect() Features {
	return Features{
		BulletCount: 10, QuantifiedBulletCount: 9, StrongVerbBulletCount: 10,
		HasSummary: true, SummaryWordCount: 50, JobCount: 3, AvgBulletsPerJob: 4, WordCount: 600,
		DateFormatConsistent: true, BulletStyleConsistent: true,
		HasEmail: true, HasPhone: true, HasLinkedIn: true,
		HasExperience: true, HasEducation: true, HasSkills: true, SkillCount: 12,
	}
}

func categoryByName(s types.Score, name string) types.CategoryScore {
	for _, c := range s.Categories {
		if c.Name == name {
			return c
		}
	}
	return types.CategoryScore{}
}

func TestDefaultWeights_SumTo100(t *testing.T) {
	sum := 0.0
	for _, name := range CategoryOrder {
		sum += DefaultWeights[name]
	}
	assert.InDelta(t, 100, sum, 1e-9)
	assert.Len(t, DefaultWeights, len(CategoryOrder))
}

func TestNewCalculator_RejectsBadWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights map[string]float64
	}{
		{"sum over", map[string]float64{
			CategoryContent: 41, CategoryLanguage: 18, CategoryFormatting: 18,
			CategoryCompleteness: 12, CategoryStandards: 8, CategoryRedFlags: 4,
		}},
		{"missing category", map[string]float64{
			CategoryContent: 44, CategoryLanguage: 18, CategoryFormatting: 18,
			CategoryCompleteness: 12, CategoryStandards: 8,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCalculator(tt.weights)
			var we *WeightError
			require.True(t, errors.As(err, &we))
		})
	}
}

func TestScore_QuantificationFullAtEightyPercent(t *testing.T) {
	f := Features{BulletCount: 10, QuantifiedBulletCount: 8}
	s := Default().Score(f)
	content := categoryByName(s, CategoryContent)
	assert.InDelta(t, 20, content.Details["quantification"], 1e-9)

	f.QuantifiedBulletCount = 7
	s = Default().Score(f)
	assert.InDelta(t, 16, categoryByName(s, CategoryContent).Details["quantification"], 1e-9)
}

func TestScore_Bounds(t *testing.T) {
	c := Default()
	tests := []struct {
		name string
		f    Features
	}{
		{"zero", Features{}},
		{"perfect", perfect()},
		{"worst", Features{
			BulletCount: 20, WeakPhraseCount: 40, VagueWordCount: 30, BuzzwordCount: 30,
			PronounCount: 50, PassiveCount: 50, HasTables: true, PolishIssueCount: 99,
			HasPersonalInfo: true, HasPhoto: true, HasReferencesLine: true, HasSalary: true,
			HasObjective: true, UnprofessionalEmail: true,
			EmploymentGapCount: 9, HasLongGap: true, ShortTenureCount: 7,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := c.Score(tt.f)
			assert.GreaterOrEqual(t, s.Total, MinScore)
			assert.LessOrEqual(t, s.Total, MaxScore)
			for name, pts := range s.Breakdown {
				assert.GreaterOrEqual(t, pts, 0.0, name)
				assert.LessOrEqual(t, pts, DefaultWeights[name], name)
			}
		})
	}
}

func TestScore_PerfectCapsAt95(t *testing.T) {
	s := Default().Score(perfect())
	assert.Equal(t, MaxScore, s.Total)
	assert.Equal(t, "excellent", s.Grade)
	assert.InDelta(t, 40, s.Breakdown[CategoryContent], 1e-9)
}

func TestScore_WorstClampsToFloor(t *testing.T) {
	s := Default().Score(Features{
		HasTables: true, PolishIssueCount: 50, WeakPhraseCount: 50, VagueWordCount: 50,
		PronounCount: 50, PassiveCount: 50,
		HasPersonalInfo: true, HasPhoto: true, HasReferencesLine: true, HasSalary: true,
		HasObjective: true, UnprofessionalEmail: true,
		EmploymentGapCount: 3, HasLongGap: true, ShortTenureCount: 4,
	})
	assert.InDelta(t, 0, s.Breakdown[CategoryRedFlags], 1e-9)
	assert.InDelta(t, 0, s.Breakdown[CategoryStandards], 1e-9)
	assert.Equal(t, MinScore, s.Total)
	assert.Equal(t, "poor", s.Grade)
}

func TestScore_RedFlagsPenalty(t *testing.T) {
	c := Default()
	tests := []struct {
		name string
		f    Features
		want float64
	}{
		{"clean", Features{}, 4},
		{"one gap", Features{EmploymentGapCount: 1}, 3},
		{"long gap", Features{EmploymentGapCount: 1, HasLongGap: true}, 2},
		{"minor hopping", Features{ShortTenureCount: 2}, 3},
		{"hopping", Features{ShortTenureCount: 3}, 2},
		{"floor", Features{EmploymentGapCount: 5, HasLongGap: true, ShortTenureCount: 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, c.Score(tt.f).Breakdown[CategoryRedFlags], 1e-9)
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	c := Default()
	f := perfect()
	f.QuantifiedBulletCount = 5
	f.PronounCount = 4
	first := c.Score(f)
	for range 10 {
		assert.Equal(t, first, c.Score(f))
	}
}

func TestGrade_Ladder(t *testing.T) {
	tests := []struct {
		total int
		want  string
	}{
		{95, "excellent"}, {85, "excellent"}, {84, "good"}, {70, "good"},
		{69, "fair"}, {55, "fair"}, {54, "needs_work"}, {40, "needs_work"},
		{39, "poor"}, {10, "poor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.total), "total %d", tt.total)
	}
}

func TestProject_EstimatesRecoverablePoints(t *testing.T) {
	c := Default()
	f := perfect()
	f.DateFormatConsistent = false
	f.BulletStyleConsistent = false
	before := c.Score(f)
	formatting := categoryByName(before, CategoryFormatting)
	require.InDelta(t, 9, formatting.Points, 1e-9)

	issues := []types.Issue{
		{IssueCode: "INCONSISTENT_DATE_FORMAT", Category: CategoryFormatting, CanAutoFix: true},
		{IssueCode: "INCONSISTENT_BULLET_STYLE", Category: CategoryFormatting, CanAutoFix: true},
		{IssueCode: "TABLE_OR_COLUMNS", Category: CategoryFormatting},
		{IssueCode: "FOO", Category: "Other", CanAutoFix: true},
	}
	p := c.Project(before, issues)
	require.NotNil(t, p)
	assert.True(t, p.IsEstimate)
	// 9 lost * 0.9 * 2/3
	assert.InDelta(t, 5.4, p.Recoverable[CategoryFormatting], 1e-9)
	assert.NotContains(t, p.Recoverable, "Other")
	assert.GreaterOrEqual(t, p.Total, before.Total)
	assert.LessOrEqual(t, p.Total, MaxScore)
	assert.Equal(t, p.Total-before.Total, p.Gain)
}

func TestProject_NoFixableIssues(t *testing.T) {
	c := Default()
	before := c.Score(Features{})
	p := c.Project(before, []types.Issue{{IssueCode: "MISSING_EMAIL", Category: CategoryCompleteness}})
	assert.Equal(t, before.Total, p.Total)
	assert.Zero(t, p.Gain)
	assert.Empty(t, p.Recoverable)
}

func TestFeaturesFromMap_Normalizes(t *testing.T) {
	f, err := FeaturesFromMap(map[string]any{
		"bullet_count":            "10",
		"quantified_bullet_count": float64(8),
		"has_summary":             "true",
		"has_email":               1,
		"avg_bullets_per_job":     "2.5",
		"model_confidence":        0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, f.BulletCount)
	assert.Equal(t, 8, f.QuantifiedBulletCount)
	assert.True(t, f.HasSummary)
	assert.True(t, f.HasEmail)
	assert.InDelta(t, 2.5, f.AvgBulletsPerJob, 1e-9)
	assert.False(t, f.HasPhone)
}

func TestFeaturesFromMap_RejectsNegativeCounts(t *testing.T) {
	_, err := FeaturesFromMap(map[string]any{"bullet_count": -3})
	assert.Error(t, err)
}

func TestFeaturesFromMap_SameScoreAsStruct(t *testing.T) {
	want := perfect()
	m, err := want.Map()
	require.NoError(t, err)
	got, err := FeaturesFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, Default().Score(want), Default().Score(got))
}

const sampleResume = `Jane Doe
jane.doe@example.com | (555) 123-4567 | linkedin.com/in/janedoe

SUMMARY
Backend engineer with 8 years building payment systems.

EXPERIENCE
Senior Engineer, Acme Corp  Jan 2021 - Present
• Reduced latency by 40% across 12 services
• Led a team of 5 engineers
Engineer | Beta Inc | Jun 2018 - Dec 2020
• Built the billing pipeline

EDUCATION
B.S. Computer Science, State University  2014 - 2018

SKILLS
Programming Languages: Go, Python, SQL
Frameworks:
React, gRPC`

func TestExtractFeatures_FromDocument(t *testing.T) {
	st := structure.Extract(sampleResume)
	issues := []types.Issue{
		{IssueCode: "DOUBLED_PUNCTUATION"},
		{IssueCode: "REPEATED_WORD"},
		{IssueCode: "SALARY_INFO"},
	}
	f := ExtractFeatures(sampleResume, st, issues, dates.YearMonth{Year: 2024, Month: 6})

	assert.Equal(t, 3, f.BulletCount)
	assert.Equal(t, 2, f.QuantifiedBulletCount)
	assert.Equal(t, 2, f.JobCount)
	assert.InDelta(t, 1.5, f.AvgBulletsPerJob, 1e-9)
	assert.True(t, f.HasSummary)
	assert.Equal(t, 8, f.SummaryWordCount)
	assert.True(t, f.HasEmail)
	assert.True(t, f.HasPhone)
	assert.True(t, f.HasLinkedIn)
	assert.True(t, f.HasExperience)
	assert.True(t, f.HasEducation)
	assert.True(t, f.HasSkills)
	assert.Equal(t, 5, f.SkillCount)
	assert.Equal(t, 2, f.PolishIssueCount)
	assert.True(t, f.HasSalary)
	assert.False(t, f.HasPhoto)
	assert.True(t, f.DateFormatConsistent)
	assert.Zero(t, f.EmploymentGapCount)
	assert.Zero(t, f.ShortTenureCount)
	assert.Zero(t, f.PronounCount)
}

func TestExtractFeatures_EmptyDocument(t *testing.T) {
	f := ExtractFeatures("", nil, nil, dates.YearMonth{Year: 2024, Month: 1})
	assert.Equal(t, Features{DateFormatConsistent: true, BulletStyleConsistent: true}, f)
	s := Default().Score(f)
	assert.GreaterOrEqual(t, s.Total, MinScore)
}
