package detectors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/extract"
	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// HardSkills is the built-in lexicon of technical and domain keywords recognized in any
// section. Skills listed in the document's Skills section are added per document.
var HardSkills = []string{
	"golang", "python", "java", "javascript", "typescript", "c++", "c#", "ruby", "rust",
	"kotlin", "swift", "scala", "php", "sql", "nosql", "html", "css", "react", "angular", "vue",
	"node.js", "django", "flask", "spring boot", "rails", ".net", "graphql", "rest api", "grpc",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "ansible", "jenkins", "ci/cd",
	"git", "linux", "postgresql", "postgres", "mysql", "mongodb", "redis", "kafka", "rabbitmq",
	"elasticsearch", "spark", "hadoop", "airflow", "snowflake", "tableau", "power bi", "ms excel",
	"pandas", "numpy", "tensorflow", "pytorch", "machine learning", "deep learning", "nlp",
	"data analysis", "statistics", "etl", "microservices", "agile", "scrum", "kanban", "jira",
	"salesforce", "hubspot", "seo", "sem", "crm", "erp", "sap", "figma", "sketch", "photoshop",
	"illustrator", "quickbooks", "gaap", "budgeting", "forecasting", "six sigma", "lean manufacturing",
	"project management", "product management", "a/b testing", "google analytics",
	"matlab", "autocad", "solidworks", "hipaa", "gdpr", "sox", "penetration testing", "siem",
}

// Keywords flags keyword-thin documents and bullets without measurable results.
type Keywords struct {
	// MinWords is the document size needed before keyword density is judged.
	MinWords int
	// MinDistinct is the fewest distinct keywords an adequate document carries.
	MinDistinct int
	// MinDensity is the fewest keyword occurrences per document word.
	MinDensity float64
	// MinBullets is the bullet count needed before quantification is judged.
	MinBullets int
	// MinQuantifiedRatio is the share of bullets expected to carry a metric.
	MinQuantifiedRatio float64

	pattern *regexp.Regexp
}

// NewKeywords returns the keyword detector with its standard thresholds.
func NewKeywords() *Keywords {
	return &Keywords{
		MinWords:           150,
		MinDistinct:        5,
		MinDensity:         0.015,
		MinBullets:         3,
		MinQuantifiedRatio: 0.3,
		pattern:            keywordPattern(HardSkills),
	}
}

func keywordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	// keywords may start or end with symbols (".net", "c++"), so bound on non-word runes
	return regexp.MustCompile(`(?i)(?:^|[^\w.+#/])(` + strings.Join(quoted, "|") + `)(?:$|[^\w+#/])`)
}

func (d *Keywords) Name() string { return "keywords" }

func (d *Keywords) Detect(text string, st *types.DocumentStructure) []types.Issue {
	var issues []types.Issue
	if is, ok := d.density(text, st); ok {
		issues = append(issues, is)
	}
	if is, ok := d.quantification(st); ok {
		issues = append(issues, is)
	}
	return tag(d.Name(), issues)
}

// KeywordHits returns keyword occurrences and distinct keywords found in text, counting the
// built-in lexicon plus every skill listed in the Skills section.
func (d *Keywords) KeywordHits(text string, st *types.DocumentStructure) (occurrences, distinct int) {
	seen := make(map[string]bool)
	for _, line := range textspan.Lines(text) {
		for _, m := range d.pattern.FindAllStringSubmatch(line, -1) {
			seen[strings.ToLower(m[1])] = true
			occurrences++
		}
	}
	for _, cat := range st.SkillCategories {
		for _, s := range cat.Skills {
			key := strings.ToLower(s)
			if !seen[key] {
				seen[key] = true
				occurrences++
			}
		}
	}
	return occurrences, len(seen)
}

func (d *Keywords) density(text string, st *types.DocumentStructure) (types.Issue, bool) {
	words := textspan.WordCount(text)
	if words < d.MinWords {
		return types.Issue{}, false
	}
	occurrences, distinct := d.KeywordHits(text, st)
	density := float64(occurrences) / float64(words)
	if distinct >= d.MinDistinct && density >= d.MinDensity {
		return types.Issue{}, false
	}
	return types.NewIssue("LOW_KEYWORD_DENSITY",
		fmt.Sprintf("Only %d distinct skills or tools mentioned across %d words", distinct, words)).
		At("Document").
		Suggest("Name the concrete tools, technologies and methods you used in each role").
		Detail(map[string]any{"distinct_keywords": distinct, "density": density}), true
}

func (d *Keywords) quantification(st *types.DocumentStructure) (types.Issue, bool) {
	bullets := st.AllBullets()
	if len(bullets) < d.MinBullets {
		return types.Issue{}, false
	}
	stats := extract.Stats(bullets)
	ratio := float64(stats.Quantified) / float64(stats.Total)
	if ratio >= d.MinQuantifiedRatio {
		return types.Issue{}, false
	}
	var lines []int
	var first *types.Bullet
	for i := range bullets {
		if bullets[i].HasMetric {
			continue
		}
		if first == nil {
			first = &bullets[i]
		}
		if len(lines) < maxIssuesPerCode {
			lines = append(lines, bullets[i].LineNumber+1)
		}
	}
	return types.NewIssue("MISSING_QUANTIFICATION",
		fmt.Sprintf("Only %d of %d bullets include a measurable result", stats.Quantified, stats.Total)).
		At(locate(st, first.LineNumber)).OnLine(first.LineNumber).
		Quote(snippet(extract.StripGlyph(first.Text))).
		Suggest("Add numbers: percentages, money, time saved, team size or volume").
		Detail(map[string]any{"lines": lines, "ratio": ratio}), true
}
