package extract

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/textspan"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// Patterns shared with the section extractor's contact pass.
var (
	EmailPattern    = regexp.MustCompile(`[^\s@|,;:<>()\[\]"']+@[^\s@|,;:<>()\[\]"']+`)
	PhonePattern    = regexp.MustCompile(`(?:\+\d{1,3}[\s.-]?)?(?:\(\d{2,4}\)|\d{2,4})[\s.-]?\d{3,4}[\s.-]?\d{3,4}`)
	LinkedInPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_%-]+/?`)
	GitHubPattern   = regexp.MustCompile(`(?i)(?:https?://)?github\.com/[A-Za-z0-9_-]+/?`)
	WebsitePattern  = regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?[a-z0-9-]+\.(?:dev|io|me|com|net|org|page|site)(?:/[^\s]*)?\b`)

	linkedInWord = regexp.MustCompile(`(?i)\blinked\s?in\b`)
	digitRun     = regexp.MustCompile(`\d{3,}`)
	// localToken splits an address local part into letter runs and digit runs.
	localToken   = regexp.MustCompile(`\p{L}+|\p{N}+`)
)

// minEmbeddedWordLen is the length from which a blacklisted word is matched inside a longer token.
const minEmbeddedWordLen = 6

var unprofessionalWords = []string{
	"sexy", "hot", "babe", "baby", "cute", "party", "lover", "princess", "angel", "kitty",
	"dude", "gamer", "ninja", "rockstar", "stud", "hottie", "diva", "bunny", "cutie",
	"killer", "devil", "crazy", "lazy", "drunk", "weed", "420", "69",
}

// Contact holds the contact facts found in a document.
type Contact struct {
	Email             string `json:"email,omitempty"`
	EmailValid        bool   `json:"email_valid"`
	EmailProfessional bool   `json:"email_professional"`
	Phone             string `json:"phone,omitempty"`
	PhoneValid        bool   `json:"phone_valid"`
	LinkedIn          string `json:"linkedin,omitempty"`
	LinkedInMentioned bool   `json:"linkedin_mentioned"`
	GitHub            string `json:"github,omitempty"`
	Website           string `json:"website,omitempty"`
	EmailLine         int    `json:"email_line"`
	PhoneLine         int    `json:"phone_line"`
}

// IsContactLine reports whether a line carries an email, phone, LinkedIn or GitHub reference.
func IsContactLine(line string) bool {
	if LinkedInPattern.MatchString(line) || GitHubPattern.MatchString(line) {
		return true
	}
	if m := EmailPattern.FindString(line); m != "" && strings.Contains(m, ".") {
		return true
	}
	if m := PhonePattern.FindString(line); m != "" && PhoneDigits(m) >= 7 {
		return true
	}
	return linkedInWord.MatchString(line) && len(line) < 80
}

// PhoneDigits counts the digits in a phone candidate.
func PhoneDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// ValidEmail checks an email address structurally: a 1-64 character local part,
// a dotted domain, and no leading, trailing or doubled dots in either part.
func ValidEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at != strings.Index(email, "@") {
		return false
	}
	local, domain := email[:at], email[at+1:]
	if len(local) == 0 || len(local) > 64 {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	tld := domain[strings.LastIndex(domain, ".")+1:]
	return len(tld) >= 2
}

// ValidPhone reports whether a phone number has 7-15 digits once formatting is removed.
func ValidPhone(phone string) bool {
	n := PhoneDigits(phone)
	return n >= 7 && n <= 15
}

// ProfessionalEmail applies the unprofessional-address heuristic: a blacklisted word in the
// local part, or a run of three or more digits that is not a plausible birth year.
func ProfessionalEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 0 {
		return true
	}
	local := strings.ToLower(email[:at])
	tokens := make(map[string]bool)
	for _, tok := range localToken.FindAllString(local, -1) {
		tokens[tok] = true
	}
	for _, w := range unprofessionalWords {
		// short words only count as whole tokens so "photo" or "glover" stay clean
		if tokens[w] || (len(w) >= minEmbeddedWordLen && strings.Contains(local, w)) {
			return false
		}
	}
	for _, run := range digitRun.FindAllString(local, -1) {
		if !plausibleBirthYear(run) {
			return false
		}
	}
	return true
}

func plausibleBirthYear(run string) bool {
	if len(run) != 4 {
		return false
	}
	year := 0
	for _, r := range run {
		year = year*10 + int(r-'0')
	}
	return year >= 1950 && year <= 2010
}

// ExtractContact finds contact facts in text and reports contact issues.
func ExtractContact(text string) (Contact, []types.Issue) {
	c := Contact{EmailLine: -1, PhoneLine: -1}
	lines := textspan.Lines(text)

	for i, line := range lines {
		if c.Email == "" {
			if m := EmailPattern.FindString(line); m != "" {
				c.Email, c.EmailLine = strings.TrimRight(m, ".,;"), i
			}
		}
		if c.Phone == "" {
			for _, m := range PhonePattern.FindAllString(line, -1) {
				if PhoneDigits(m) >= 7 {
					c.Phone, c.PhoneLine = strings.TrimSpace(m), i
					break
				}
			}
		}
		if c.LinkedIn == "" {
			c.LinkedIn = LinkedInPattern.FindString(line)
		}
		if c.GitHub == "" {
			c.GitHub = GitHubPattern.FindString(line)
		}
		if !c.LinkedInMentioned && linkedInWord.MatchString(line) {
			c.LinkedInMentioned = true
		}
	}
	if c.Email != "" {
		c.EmailValid = ValidEmail(c.Email)
		c.EmailProfessional = ProfessionalEmail(c.Email)
	}
	if c.Phone != "" {
		c.PhoneValid = ValidPhone(c.Phone)
	}
	for _, line := range lines {
		if w := WebsitePattern.FindString(line); w != "" && !strings.Contains(w, "@") &&
			!strings.Contains(strings.ToLower(w), "linkedin") && !strings.Contains(strings.ToLower(w), "github") &&
			!strings.Contains(c.Email, w) {
			c.Website = w
			break
		}
	}

	return c, contactIssues(c)
}

func contactIssues(c Contact) []types.Issue {
	var issues []types.Issue
	const loc = "Contact"
	switch {
	case c.Email == "":
		issues = append(issues, types.NewIssue("MISSING_EMAIL", "No email address found").At(loc).
			Suggest("Add a professional email address to your header"))
	case !c.EmailValid:
		issues = append(issues, types.NewIssue("INVALID_EMAIL", "Email address appears malformed").
			At(loc).OnLine(c.EmailLine).Quote(c.Email).
			Suggest("Check the email address for typos, stray dots or a missing domain"))
	case !c.EmailProfessional:
		issues = append(issues, types.NewIssue("UNPROFESSIONAL_EMAIL", "Email address may read as unprofessional").
			At(loc).OnLine(c.EmailLine).Quote(c.Email).
			Suggest("Use a simple firstname.lastname address"))
	}

	switch {
	case c.Phone == "":
		issues = append(issues, types.NewIssue("MISSING_PHONE", "No phone number found").At(loc).
			Suggest("Add a phone number so recruiters can reach you"))
	case !c.PhoneValid:
		issues = append(issues, types.NewIssue("INVALID_PHONE", "Phone number has an unusual number of digits").
			At(loc).OnLine(c.PhoneLine).Quote(c.Phone).
			Suggest("Use a full phone number including area code"))
	}

	if c.LinkedIn == "" {
		if c.LinkedInMentioned {
			issues = append(issues, types.NewIssue("LINKEDIN_NO_URL", "LinkedIn is mentioned but no profile URL is given").
				At(loc).Suggest("Include the full linkedin.com/in/ URL"))
		} else {
			issues = append(issues, types.NewIssue("MISSING_LINKEDIN", "No LinkedIn profile found").
				At(loc).Suggest("Add your LinkedIn profile URL"))
		}
	}
	return issues
}
