package scoring

// step is one breakpoint: a signal at or past bound earns frac of the component.
type step struct {
	bound float64
	frac  float64
}

// atLeast returns the fraction of the first step whose bound v reaches. Steps run from the
// highest bound down.
func atLeast(v float64, steps ...step) float64 {
	for _, s := range steps {
		if v >= s.bound {
			return s.frac
		}
	}
	return 0
}

// atMost returns the fraction of the first step whose bound v stays within. Steps run from
// the lowest bound up; past the last bound the component earns floor.
func atMost(v float64, floor float64, steps ...step) float64 {
	for _, s := range steps {
		if v <= s.bound {
			return s.frac
		}
	}
	return floor
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// components lists each category's signals. Component weights are relative within the
// category; Content Quality uses its default point split directly.
var components = map[string][]component{
	CategoryContent: {
		{"quantification", 20, func(f Features) float64 {
			return atLeast(ratio(f.QuantifiedBulletCount, f.BulletCount),
				step{0.8, 1}, step{0.6, 0.8}, step{0.4, 0.6}, step{0.2, 0.4}, step{0.01, 0.2})
		}},
		{"action_verbs", 8, func(f Features) float64 {
			return atLeast(ratio(f.StrongVerbBulletCount, f.BulletCount),
				step{0.8, 1}, step{0.6, 0.75}, step{0.4, 0.5}, step{0.2, 0.25})
		}},
		{"narrative", 6, func(f Features) float64 {
			switch {
			case !f.HasSummary:
				return 0
			case f.SummaryWordCount >= 30 && f.SummaryWordCount <= 120:
				return 1
			case f.SummaryWordCount >= 15:
				return 0.6
			}
			return 0.3
		}},
		{"depth", 6, func(f Features) float64 {
			if f.JobCount == 0 {
				return 0
			}
			return atLeast(f.AvgBulletsPerJob, step{3, 1}, step{2, 0.6}, step{1, 0.3})
		}},
	},
	CategoryLanguage: {
		{"weak_phrases", 6, func(f Features) float64 {
			return atMost(float64(f.WeakPhraseCount), 0.1, step{1, 1}, step{3, 0.7}, step{6, 0.4})
		}},
		{"vague_and_buzzwords", 4, func(f Features) float64 {
			return atMost(float64(f.VagueWordCount+f.BuzzwordCount), 0, step{3, 1}, step{6, 0.6}, step{10, 0.3})
		}},
		{"pronouns", 4, func(f Features) float64 {
			return atMost(float64(f.PronounCount), 0.2, step{1, 1}, step{3, 0.6})
		}},
		{"passive_voice", 4, func(f Features) float64 {
			return atMost(float64(f.PassiveCount), 0.2, step{2, 1}, step{5, 0.6})
		}},
	},
	CategoryFormatting: {
		{"date_format", 5, func(f Features) float64 { return flag(f.DateFormatConsistent) }},
		{"bullet_style", 4, func(f Features) float64 { return flag(f.BulletStyleConsistent) }},
		{"ats_layout", 5, func(f Features) float64 { return flag(!f.HasTables) }},
		{"polish", 4, func(f Features) float64 {
			return atMost(float64(f.PolishIssueCount), 0, step{0, 1}, step{2, 0.75}, step{5, 0.5}, step{10, 0.25})
		}},
	},
	CategoryCompleteness: {
		{"email", 2, func(f Features) float64 { return flag(f.HasEmail) }},
		{"phone", 2, func(f Features) float64 { return flag(f.HasPhone) }},
		{"linkedin", 1, func(f Features) float64 { return flag(f.HasLinkedIn) }},
		{"experience", 3, func(f Features) float64 { return flag(f.HasExperience) }},
		{"education", 2, func(f Features) float64 { return flag(f.HasEducation) }},
		{"skills", 2, func(f Features) float64 {
			if !f.HasSkills {
				return 0
			}
			return atLeast(float64(f.SkillCount), step{5, 1}, step{1, 0.5}, step{0, 0.25})
		}},
	},
	CategoryStandards: {
		{"conventions", 1, func(f Features) float64 {
			penalty := 2*flag(f.HasPersonalInfo) +
				1.5*flag(f.HasPhoto) +
				0.5*flag(f.HasReferencesLine) +
				1.5*flag(f.HasSalary) +
				1*flag(f.HasObjective) +
				1.5*flag(f.UnprofessionalEmail)
			return 1 - penalty/8
		}},
	},
	CategoryRedFlags: {
		{"career_history", 1, func(f Features) float64 {
			penalty := float64(min(f.EmploymentGapCount, 2)) + flag(f.HasLongGap)
			switch {
			case f.ShortTenureCount >= 3:
				penalty += 2
			case f.ShortTenureCount == 2:
				penalty++
			}
			return 1 - penalty/4
		}},
	},
}
