package analysis

import (
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// Summarize digests a structure into its serializable summary.
func Summarize(text string, st *types.DocumentStructure) types.StructureSummary {
	sum := types.StructureSummary{
		Sections:  make([]types.SectionDigest, 0, len(st.Sections)),
		WordCount: textspan.WordCount(text),
		LineCount: st.LineCount,
	}
	for _, s := range st.Sections {
		sum.Sections = append(sum.Sections, types.SectionDigest{
			Type:       s.Type,
			StartLine:  s.StartLine,
			EndLine:    s.EndLine,
			Confidence: s.Confidence,
			Method:     s.Method,
		})
	}
	sum.HasContact = st.HasContact
	sum.HasSummary = st.HasSummary
	sum.HasExperience = st.HasExperience
	sum.HasEducation = st.HasEducation
	sum.HasSkills = st.HasSkills
	sum.HasCertifications = st.HasCertifications
	sum.JobCount = len(st.Jobs)
	sum.EducationCount = len(st.Education)
	sum.SkillCategoryCount = len(st.SkillCategories)
	sum.BulletCount = len(st.AllBullets())
	return sum
}
