package analyzer

import (
	"regexp"
	"sort"
	"strings"
)

const maxMissingKeywords = 10

var tokenPattern = regexp.MustCompile(`[a-z0-9][a-z0-9+#./-]*`)

// shortTerms are technology names kept despite being shorter than three runes
// or containing digits.
var shortTerms = map[string]bool{
	"go": true, "c": true, "c#": true, "c++": true, "r": true, "ai": true, "ml": true,
	"qa": true, "ui": true, "ux": true, "js": true, "ts": true, "ci": true, "cd": true,
	"k8s": true, "s3": true, "ec2": true, "html5": true, "css3": true, "es6": true,
}

var stopWords = toSet(`a about above after again against all also am an and any are as at be because been
before being below between both but by can could did do does doing down during each etc few for from
further had has have having he her here hers herself him himself his how i if in into is it its itself
just me more most my myself no nor not now of off on once only or other our ours ourselves out over own
same she should so some such than that the their theirs them themselves then there these they this
those through to too under until up very was we were what when where which while who whom why will
with would you your yours yourself yourselves us per via within across must may might shall using use
used including include includes like well able looking join our new one two three years year plus
experience management project system data developer engineer team lead master university college
features exam examination certification certifications solution role work responsibilities skills
stand knowledgeable expertise familiarity ability strong proven excellent knowledge understanding
institute end unit tests test service services environment environments candidate candidates
requirements required preferred responsible opportunity company position job`)

func toSet(words string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		out[w] = true
	}
	return out
}

// Tokenize splits text into lowercased keyword candidates with their counts.
func Tokenize(text string) map[string]int {
	counts := make(map[string]int)
	for _, raw := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		tok := strings.TrimRight(raw, ".-/")
		if tok == "" || stopWords[tok] {
			continue
		}
		if !shortTerms[tok] {
			if len([]rune(tok)) < 3 || strings.ContainsAny(tok, "0123456789") {
				continue
			}
		}
		counts[tok]++
	}
	return counts
}

// KeywordMatch is the keyword comparison between a resume and a job description.
type KeywordMatch struct {
	Matched      []Keyword
	Missing      []string
	JDKeywords   int
	ContentScore float64
}

// Keyword is a job description keyword found in the resume.
type Keyword struct {
	Word    string `json:"word"`
	Count   int    `json:"count"`
	Matches bool   `json:"matches"`
}

// MatchKeywords compares job description keywords against the resume. The
// content score is the share of job description keywords present, out of 100.
func MatchKeywords(resumeText, jobDescription string) KeywordMatch {
	resume := Tokenize(resumeText)
	jd := Tokenize(jobDescription)
	if len(jd) == 0 || len(resume) == 0 {
		return KeywordMatch{Matched: []Keyword{}, Missing: []string{}, JDKeywords: len(jd)}
	}

	matched := []Keyword{}
	var missing []string
	for word := range jd {
		if n, ok := resume[word]; ok {
			matched = append(matched, Keyword{Word: word, Count: n, Matches: true})
		} else {
			missing = append(missing, word)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Count != matched[j].Count {
			return matched[i].Count > matched[j].Count
		}
		return matched[i].Word < matched[j].Word
	})
	sort.Slice(missing, func(i, j int) bool {
		if jd[missing[i]] != jd[missing[j]] {
			return jd[missing[i]] > jd[missing[j]]
		}
		return missing[i] < missing[j]
	})
	if len(missing) > maxMissingKeywords {
		missing = missing[:maxMissingKeywords]
	}
	if missing == nil {
		missing = []string{}
	}

	return KeywordMatch{
		Matched:      matched,
		Missing:      missing,
		JDKeywords:   len(jd),
		ContentScore: float64(len(matched)) / float64(len(jd)) * 100,
	}
}
