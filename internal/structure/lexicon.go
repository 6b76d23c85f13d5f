package structure

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// headerLexicon lists the normalized header spellings recognized for each section type.
var headerLexicon = map[types.SectionType][]string{
	types.SectionContact: {
		"contact", "contact information", "contact info", "contact details", "personal details",
	},
	types.SectionSummary: {
		"summary", "professional summary", "career summary", "executive summary", "profile",
		"professional profile", "career profile", "about me", "about", "objective",
		"career objective", "professional objective", "overview", "personal statement",
		"summary of qualifications", "qualifications summary", "highlights of qualifications",
	},
	types.SectionExperience: {
		"experience", "work experience", "professional experience", "relevant experience",
		"employment", "employment history", "work history", "career history",
		"professional background", "professional history", "positions held", "experiences",
	},
	types.SectionEducation: {
		"education", "academic background", "educational background", "education and training",
		"education & training", "academic qualifications", "academics", "academic history",
	},
	types.SectionSkills: {
		"skills", "technical skills", "core competencies", "competencies", "key skills",
		"skills and abilities", "skills & abilities", "technologies", "tech stack",
		"areas of expertise", "expertise", "proficiencies", "tools and technologies",
		"tools & technologies", "skills summary", "technical proficiencies", "core skills",
	},
	types.SectionCertifications: {
		"certifications", "certification", "certificates", "licenses",
		"licenses and certifications", "licenses & certifications", "certifications and licenses",
		"certifications & licenses", "professional certifications", "credentials",
		"accreditations",
	},
}

// subCategoryLexicon holds labels that look like headers but organize content inside a
// section. A line matching one of these never opens a top-level section.
var subCategoryLexicon = toSet(
	"programming languages", "languages", "spoken languages", "frameworks", "libraries",
	"frameworks and libraries", "frameworks & libraries", "languages and frameworks",
	"languages & frameworks", "tools", "developer tools", "databases", "cloud", "cloud platforms",
	"platforms", "operating systems", "methodologies", "devops", "frontend", "backend",
	"testing", "soft skills", "hard skills", "other", "key achievements", "achievements",
	"selected achievements", "accomplishments", "key accomplishments", "responsibilities",
	"key responsibilities", "highlights", "key highlights", "key projects", "technologies used",
	"tech", "coursework", "relevant coursework", "honors", "awards", "activities", "interests",
)

// maxPrefixExtraWords bounds how many words may follow a lexicon entry in a prefix match.
const maxPrefixExtraWords = 3

const (
	maxHeaderWords = 5
	maxHeaderChars = 50

	confidenceExact  = 0.95
	confidencePrefix = 0.8
	confidenceStyled = 0.05
)

var knownCompanies = []string{
	"google", "alphabet", "microsoft", "amazon", "aws", "apple", "meta", "facebook", "netflix",
	"ibm", "oracle", "intel", "nvidia", "amd", "salesforce", "adobe", "uber", "lyft", "airbnb",
	"stripe", "shopify", "twitter", "linkedin", "spotify", "dropbox", "slack", "atlassian",
	"cisco", "vmware", "sap", "tesla", "spacex", "paypal", "square", "block", "coinbase",
	"deloitte", "accenture", "mckinsey", "kpmg", "pwc", "ernst & young", "bain", "bcg",
	"goldman sachs", "jpmorgan", "j.p. morgan", "morgan stanley", "bank of america", "citi",
	"wells fargo", "walmart", "target", "costco", "boeing", "lockheed martin", "samsung",
	"sony", "siemens", "bloomberg", "capital one", "intuit", "workday", "snowflake",
	"datadog", "mongodb", "twilio", "github", "gitlab", "hubspot", "zendesk", "yahoo",
}

var corporateSuffix = regexp.MustCompile(`(?i)\b(?:inc|llc|l\.l\.c|ltd|limited|corp|corporation|co|company|gmbh|ag|plc|group|holdings|technologies|technology|solutions|labs|systems|software|partners|consulting|agency|studios|ventures|bank|capital)\b\.?`)

var companyPattern = func() *regexp.Regexp {
	quoted := make([]string, len(knownCompanies))
	for i, c := range knownCompanies {
		quoted[i] = regexp.QuoteMeta(c)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}()

var titlePattern = func() *regexp.Regexp {
	quoted := make([]string, len(extract.TitleKeywords))
	for i, k := range extract.TitleKeywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)s?\b`)
}()

// HasCompany reports whether line names a known company or carries a corporate suffix.
func HasCompany(line string) bool {
	return companyPattern.MatchString(line) || corporateSuffix.MatchString(line)
}

// HasTitle reports whether line contains a job-title keyword.
func HasTitle(line string) bool {
	return titlePattern.MatchString(line)
}

// IsSubCategory reports whether a label is a within-section sub-category like "Programming Languages".
func IsSubCategory(label string) bool {
	return subCategoryLexicon[textspan.Normalize(label)]
}

// isSkillsHeader reports whether a normalized label is itself a Skills header spelling.
func isSkillsHeader(norm string) bool {
	for _, h := range headerLexicon[types.SectionSkills] {
		if h == norm {
			return true
		}
	}
	return false
}

// matchLexicon finds the section type for a normalized label: exact matches across all types
// first, then prefix matches with at most maxPrefixExtraWords trailing words.
func matchLexicon(norm string, allowPrefix bool) (types.SectionType, float64, bool) {
	for _, t := range types.AllSectionTypes {
		for _, h := range headerLexicon[t] {
			if norm == h {
				return t, confidenceExact, true
			}
		}
	}
	if !allowPrefix {
		return "", 0, false
	}
	for _, t := range types.AllSectionTypes {
		for _, h := range headerLexicon[t] {
			if !strings.HasPrefix(norm, h+" ") {
				continue
			}
			if extra := len(strings.Fields(norm[len(h):])); extra <= maxPrefixExtraWords {
				return t, confidencePrefix, true
			}
		}
	}
	return "", 0, false
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
