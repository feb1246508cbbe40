package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Per-issue penalties subtracted from a perfect format score.
const (
	contactPenalty    = 10
	sectionPenalty    = 15
	contentPenalty    = 8
	formattingPenalty = 5
	lengthPenalty     = 12

	minWords = 200
	maxWords = 1000
)

var (
	emailPattern  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\(\+\d{1,3}\)\s\d{2}\s\d{7}`),
		regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\+?\d{1,3}[-.\s]?\d{3,4}[-.\s]?\d{3,4}[-.\s]?\d{3,4}`),
		regexp.MustCompile(`\+\d{1,9}\s\d{9}`),
	}
	linkedInPattern = regexp.MustCompile(`linkedin\.com/(in|pub)/[\w-]+|www\.linkedin\.com`)
	datePatterns    = []*regexp.Regexp{
		regexp.MustCompile(`\b(19|20)\d{2}\b`),
		regexp.MustCompile(`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(19|20)\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}/\d{4}\b`),
	}
	firstPersonPattern = regexp.MustCompile(`\bi\b`)
	sentencePattern    = regexp.MustCompile(`[.!?]+`)
	punctuationPattern = regexp.MustCompile(`!{2,}|\?{2,}|\.{3,}`)
)

var sections = []struct {
	name     string
	keywords []string
}{
	{"Experience", []string{"experience", "employment"}},
	{"Education", []string{"education", "academic background", "qualifications"}},
	{"Skills", []string{"skills", "competencies", "technologies"}},
}

var actionVerbs = []string{
	"achieved", "developed", "implemented", "managed", "created", "improved",
	"increased", "reduced", "led", "coordinated", "designed", "built",
	"established", "streamlined", "optimized", "delivered",
}

// FormatReport is the outcome of the resume format checks.
type FormatReport struct {
	Score  int
	Issues []string
}

// CheckFormat runs the contact, section, content, formatting and length
// checks and deducts a fixed penalty per issue.
func CheckFormat(text string) FormatReport {
	lower := strings.ToLower(text)
	score := 100
	issues := []string{}

	add := func(found []string, penalty int) {
		issues = append(issues, found...)
		score -= len(found) * penalty
	}
	add(checkContact(text, lower), contactPenalty)
	add(checkSections(lower), sectionPenalty)
	add(checkContent(lower), contentPenalty)
	add(checkFormatting(text, lower), formattingPenalty)
	add(checkLength(text), lengthPenalty)

	if score < 0 {
		score = 0
	}
	return FormatReport{Score: score, Issues: issues}
}

func checkContact(text, lower string) []string {
	var issues []string
	if !emailPattern.MatchString(text) {
		issues = append(issues, "Missing email address")
	}
	phone := false
	for _, p := range phonePatterns {
		if p.MatchString(text) {
			phone = true
			break
		}
	}
	if !phone {
		issues = append(issues, "Missing or improperly formatted phone number")
	}
	if !linkedInPattern.MatchString(lower) {
		issues = append(issues, "Consider adding LinkedIn profile")
	}
	return issues
}

func checkSections(lower string) []string {
	var issues []string
	for _, sec := range sections {
		if !containsAny(lower, sec.keywords) {
			issues = append(issues, fmt.Sprintf("Missing %s section", sec.name))
		}
	}
	if !containsAny(lower, []string{"summary", "objective", "profile", "about"}) {
		issues = append(issues, "Consider adding a professional summary or objective")
	}
	return issues
}

func checkContent(lower string) []string {
	var issues []string
	dated := false
	for _, p := range datePatterns {
		if p.MatchString(lower) {
			dated = true
			break
		}
	}
	if !dated {
		issues = append(issues, "Missing employment dates - add start and end dates for positions")
	}
	verbs := 0
	for _, v := range actionVerbs {
		if strings.Contains(lower, v) {
			verbs++
		}
	}
	if verbs < 3 {
		issues = append(issues, "Use more action verbs to describe accomplishments")
	}
	return issues
}

func checkFormatting(text, lower string) []string {
	var issues []string
	sentences := len(sentencePattern.FindAllString(text, -1))
	if sentences > 0 && float64(len(firstPersonPattern.FindAllString(lower, -1)))/float64(sentences) > 0.1 {
		issues = append(issues, "Avoid first-person pronouns (I, me, my) - use active voice instead")
	}

	lines := strings.Split(text, "\n")
	lowerStarts := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 3 && unicode.IsLower([]rune(line)[0]) {
			lowerStarts++
		}
	}
	if float64(lowerStarts) > float64(len(lines))*0.2 {
		issues = append(issues, "Inconsistent capitalization - ensure proper sentence case")
	}

	if punctuationPattern.MatchString(text) {
		issues = append(issues, "Remove excessive punctuation marks")
	}
	return issues
}

func checkLength(text string) []string {
	var issues []string
	words := len(strings.Fields(text))
	switch {
	case words < minWords:
		issues = append(issues, "Resume appears too short - add more detail about your experience")
	case words > maxWords:
		issues = append(issues, "Resume may be too long - consider condensing to 1-2 pages")
	}

	lines := strings.Split(text, "\n")
	long, empty := 0, 0
	for _, line := range lines {
		if len(line) > 100 {
			long++
		}
		if strings.TrimSpace(line) == "" {
			empty++
		}
	}
	if float64(long) > float64(len(lines))*0.3 {
		issues = append(issues, "Some lines are too long - break into shorter, readable chunks")
	}
	if float64(empty) > float64(len(lines))*0.4 {
		issues = append(issues, "Too many empty lines - optimize spacing for better readability")
	}
	return issues
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// issueSuggestions maps an issue prefix to the advice shown for it.
var issueSuggestions = []struct {
	prefix     string
	suggestion string
}{
	{"Missing email address", "Add a professional email address at the top of your resume"},
	{"Missing or improperly formatted phone number", "Include a phone number with country code, for example (+94) 784567890"},
	{"Consider adding LinkedIn profile", "Add your LinkedIn profile URL to increase professional visibility"},
	{"Missing Experience section", "Add a Work Experience section with your employment history"},
	{"Missing Education section", "Include an Education section with your academic qualifications"},
	{"Missing Skills section", "Add a Skills section highlighting your technical and professional abilities"},
	{"Consider adding a professional summary", "Add a 2-3 line professional summary at the top of your resume"},
	{"Missing employment dates", "Include start and end dates for all positions (MM/YYYY format)"},
	{"Use more action verbs", "Start bullet points with strong action verbs (achieved, developed, managed)"},
	{"Avoid first-person pronouns", "Remove 'I', 'me', 'my' and use action-oriented language instead"},
	{"Inconsistent capitalization", "Ensure consistent capitalization throughout your resume"},
	{"Remove excessive punctuation", "Use standard punctuation and avoid repeated exclamation marks"},
	{"Resume appears too short", "Expand on your experience with more detailed descriptions"},
	{"Resume may be too long", "Condense content to focus on the most relevant and impactful information"},
	{"Some lines are too long", "Break long paragraphs into shorter, scannable bullet points"},
	{"Too many empty lines", "Optimize spacing for a clean, professional appearance"},
}

// Suggestions maps format issues to advice and appends content suggestions
// for missing keywords.
func Suggestions(issues, missing []string) []string {
	out := []string{}
	for _, issue := range issues {
		suggestion := "Address format issue: " + issue
		for _, s := range issueSuggestions {
			if strings.HasPrefix(issue, s.prefix) {
				suggestion = s.suggestion
				break
			}
		}
		out = append(out, suggestion)
	}
	if len(missing) > 0 {
		top := missing
		if len(top) > 5 {
			top = top[:5]
		}
		out = append(out,
			"Consider adding these relevant skills: "+strings.Join(top, ", "),
			"Highlight projects or experience related to the missing skills",
			"Use specific examples that demonstrate your expertise in key areas",
		)
	}
	return out
}
