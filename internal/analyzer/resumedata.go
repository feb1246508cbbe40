package analyzer

import (
	"regexp"
	"strings"
)

// ResumeData is the structured profile pulled out of the resume text.
type ResumeData struct {
	PersonalInfo   PersonalInfo      `json:"personalInfo"`
	Education      []EducationEntry  `json:"education"`
	Experience     []ExperienceEntry `json:"experience"`
	Skills         []string          `json:"skills"`
	Certifications []string          `json:"certifications"`
}

type PersonalInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type EducationEntry struct {
	Degree      string `json:"degree,omitempty"`
	Institution string `json:"institution,omitempty"`
	Year        string `json:"year,omitempty"`
}

type ExperienceEntry struct {
	Title string `json:"title,omitempty"`
	Date  string `json:"date,omitempty"`
}

var (
	sectionBreak = regexp.MustCompile(`\n[ \t]*\n`)
	yearPattern  = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	degreePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:bachelor|master|phd|doctorate|bsc|msc|b\.s\.|m\.s\.|b\.a\.|m\.a\.)[\w .']*`),
		regexp.MustCompile(`(?i)\b(?:diploma|certificate)\b[\w ]*`),
	}
	institutionPattern = regexp.MustCompile(`(?i)[\w ]*\b(?:university|college|institute|school)\b[\w ]*`)

	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:(?:senior|junior|lead|principal)\s+)?(?:software|web|data|system|project|fullstack|frontend|backend|wordpress)\s+(?:developer|engineer|manager|analyst)\b`),
		regexp.MustCompile(`(?i)\b(?:(?:senior|junior|lead|principal)\s+)?(?:developer|engineer|manager|analyst|consultant|specialist|director)\b`),
	}
	monthYearPattern = regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(?:19|20)\d{2}\b`)

	certPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:aws|azure|google cloud|gcp)\s*(?:certified|certification)[\w ]*`),
		regexp.MustCompile(`(?i)\b(?:pmp|cissp|comptia|cisco|microsoft)\b[\w ]*`),
		regexp.MustCompile(`(?i)\bcertified\s+\w+\s+(?:professional|associate|expert)\b`),
	}
	nameRejectPattern = regexp.MustCompile(`@|\.com|phone|email|\d`)
)

// knownSkills maps the lowercase form searched in the skills section to its display name.
var knownSkills = []struct{ match, display string }{
	{"python", "Python"}, {"java", "Java"}, {"javascript", "JavaScript"}, {"typescript", "TypeScript"},
	{"react", "React"}, {"react-native", "React Native"}, {"node.js", "Node.js"}, {"nodejs", "Node.js"},
	{"express", "Express"}, {"next.js", "Next.js"}, {"vue", "Vue"}, {"angular", "Angular"},
	{"django", "Django"}, {"flask", "Flask"}, {"spring boot", "Spring Boot"}, {".net", ".NET"},
	{"go", "Go"}, {"golang", "Go"}, {"php", "PHP"}, {"c++", "C++"}, {"c#", "C#"}, {"kotlin", "Kotlin"},
	{"flutter", "Flutter"}, {"sql", "SQL"}, {"mysql", "MySQL"}, {"postgresql", "PostgreSQL"},
	{"mongodb", "MongoDB"}, {"redis", "Redis"}, {"elasticsearch", "Elasticsearch"},
	{"aws", "AWS"}, {"azure", "Azure"}, {"gcp", "GCP"}, {"docker", "Docker"}, {"kubernetes", "Kubernetes"},
	{"git", "Git"}, {"linux", "Linux"}, {"html", "HTML"}, {"css", "CSS"}, {"selenium", "Selenium"},
	{"agile", "Agile"}, {"scrum", "Scrum"}, {"rest api", "REST API"}, {"graphql", "GraphQL"},
	{"tensorflow", "TensorFlow"}, {"pytorch", "PyTorch"}, {"pandas", "Pandas"}, {"numpy", "NumPy"},
	{"power bi", "Power BI"}, {"powerbi", "Power BI"}, {"machine learning", "Machine Learning"},
	{"data science", "Data Science"}, {"wordpress", "WordPress"},
}

// ExtractResumeData pulls contact details and the education, experience, skills
// and certification sections out of resume text. Missing sections yield empty lists.
func ExtractResumeData(text string) ResumeData {
	return ResumeData{
		PersonalInfo:   extractPersonalInfo(text),
		Education:      extractEducation(text),
		Experience:     extractExperience(text),
		Skills:         extractSkills(text),
		Certifications: extractCertifications(text),
	}
}

func extractPersonalInfo(text string) PersonalInfo {
	var info PersonalInfo
	info.Email = emailPattern.FindString(text)
	for _, p := range phonePatterns {
		if m := p.FindString(text); m != "" {
			info.Phone = strings.TrimSpace(m)
			break
		}
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) <= 5 || len(strings.Fields(line)) > 4 {
			continue
		}
		if nameRejectPattern.MatchString(strings.ToLower(line)) {
			continue
		}
		info.Name = line
		break
	}
	return info
}

func extractEducation(text string) []EducationEntry {
	out := []EducationEntry{}
	section := sectionContent(text, "education", "academic background")
	if section == "" {
		return out
	}
	years := yearPattern.FindAllString(section, -1)
	institution := strings.TrimSpace(institutionPattern.FindString(section))
	if len(years) == 0 && institution == "" {
		return out
	}
	entry := EducationEntry{Institution: institution}
	for _, p := range degreePatterns {
		if m := strings.TrimSpace(p.FindString(section)); m != "" {
			entry.Degree = m
			break
		}
	}
	if len(years) > 0 {
		entry.Year = years[len(years)-1]
	}
	return append(out, entry)
}

func extractExperience(text string) []ExperienceEntry {
	out := []ExperienceEntry{}
	section := sectionContent(text, "work experience", "experience", "employment")
	if section == "" {
		return out
	}
	var title string
	for _, p := range titlePatterns {
		if m := p.FindString(section); m != "" {
			title = strings.TrimSpace(m)
			break
		}
	}
	dates := monthYearPattern.FindAllString(section, -1)
	if len(dates) == 0 {
		dates = yearPattern.FindAllString(section, -1)
	}
	if title == "" && len(dates) == 0 {
		return out
	}
	entry := ExperienceEntry{Title: title}
	switch {
	case len(dates) >= 2:
		entry.Date = dates[0] + " - " + dates[len(dates)-1]
	case len(dates) == 1:
		entry.Date = dates[0]
	}
	return append(out, entry)
}

func extractSkills(text string) []string {
	out := []string{}
	section := sectionContent(text, "technical skills", "skills", "competencies")
	if section == "" {
		return out
	}
	seen := make(map[string]bool)
	for _, skill := range knownSkills {
		if seen[skill.display] || !containsTerm(section, skill.match) {
			continue
		}
		seen[skill.display] = true
		out = append(out, skill.display)
	}
	return out
}

func extractCertifications(text string) []string {
	out := []string{}
	section := sectionContent(text, "certifications", "certificates")
	if section == "" {
		return out
	}
	seen := make(map[string]bool)
	for _, p := range certPatterns {
		for _, m := range p.FindAllString(section, -1) {
			m = strings.TrimSpace(m)
			if m == "" || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// sectionContent returns the lowercased text following the first heading
// keyword found, up to the next blank line.
func sectionContent(text string, headings ...string) string {
	lower := strings.ToLower(text)
	for _, heading := range headings {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(heading) + `[:\s]+`)
		loc := re.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		rest := lower[loc[1]:]
		if br := sectionBreak.FindStringIndex(rest); br != nil {
			rest = rest[:br[0]]
		}
		if rest = strings.TrimSpace(rest); rest != "" {
			return rest
		}
	}
	return ""
}

// containsTerm reports whether term occurs in s without being part of a longer word.
func containsTerm(s, term string) bool {
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], term)
		if i < 0 {
			return false
		}
		start, end := from+i, from+i+len(term)
		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '+' || b == '#' || b == '-'
}
