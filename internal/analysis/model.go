package analysis

import "math"

// FallbackFeedback is stored when the provider could not produce an analysis.
const FallbackFeedback = "Analysis completed with basic scoring"

// Keyword is a job-description term found in the resume.
type Keyword struct {
	Word    string `json:"word"`
	Count   int    `json:"count"`
	Matches bool   `json:"matches"`
}

// Analysis is the structured part of a provider result. All slices are
// non-nil after Normalize so they serialize as [] rather than null.
type Analysis struct {
	Keywords        []Keyword `json:"keywords"`
	MissingKeywords []string  `json:"missingKeywords"`
	FormatIssues    []string  `json:"formatIssues"`
	Suggestions     []string  `json:"suggestions"`
}

// Normalize replaces nil containers with empty ones.
func (a Analysis) Normalize() Analysis {
	if a.Keywords == nil {
		a.Keywords = []Keyword{}
	}
	if a.MissingKeywords == nil {
		a.MissingKeywords = []string{}
	}
	if a.FormatIssues == nil {
		a.FormatIssues = []string{}
	}
	if a.Suggestions == nil {
		a.Suggestions = []string{}
	}
	return a
}

// Document is the resume handed to the provider.
type Document struct {
	Bytes       []byte
	FileName    string
	ContentType string
}

// Result is what the gateway returns for every call, successful or not.
type Result struct {
	Analysis   Analysis
	MatchScore int
	Feedback   string
	// Fallback marks a result produced locally because the provider failed.
	Fallback       bool
	FallbackReason string
}

// FallbackResult is the deterministic result used when the provider fails.
func FallbackResult(reason string) Result {
	return Result{
		Analysis:       Analysis{}.Normalize(),
		MatchScore:     0,
		Feedback:       FallbackFeedback,
		Fallback:       true,
		FallbackReason: reason,
	}
}

// ClampScore rounds a provider score and clamps it to [0, 100].
func ClampScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	rounded := math.Round(score)
	switch {
	case rounded < 0:
		return 0
	case rounded > 100:
		return 100
	default:
		return int(rounded)
	}
}
