package analyzer

import (
	"context"
	"fmt"
	"math"
	"strings"

	"resume-match/internal/shared/telemetry"
)

const (
	contentWeight = 0.7
	formatWeight  = 0.3
)

// Structured is the structured part of the provider response.
type Structured struct {
	Keywords        []Keyword `json:"keywords"`
	MissingKeywords []string  `json:"missingKeywords"`
	FormatIssues    []string  `json:"formatIssues"`
	Suggestions     []string  `json:"suggestions"`
}

// Details carries the intermediate scores behind MatchScore.
type Details struct {
	ContentMatchScore    float64 `json:"contentMatchScore"`
	FormatScore          int     `json:"formatScore"`
	TotalFormatIssues    int     `json:"totalFormatIssues"`
	JDKeywordsCount      int     `json:"jdKeywordsCount"`
	MatchedKeywordsCount int     `json:"matchedKeywordsCount"`
}

// Report is the provider response body.
type Report struct {
	Structured Structured `json:"structured"`
	MatchScore float64    `json:"matchScore"`
	Feedback   string     `json:"feedback"`
	ResumeData ResumeData `json:"resumeData"`
	Details    Details    `json:"analysisDetails"`
}

// Engine scores resume text against a job description.
type Engine struct {
	// Writer optionally rewrites the rule-based feedback.
	Writer FeedbackWriter
}

// Analyze builds the full report. Writer failures keep the rule-based feedback.
func (e *Engine) Analyze(ctx context.Context, resumeText, jobDescription string) Report {
	km := MatchKeywords(resumeText, jobDescription)
	format := CheckFormat(resumeText)

	overall := km.ContentScore*contentWeight + float64(format.Score)*formatWeight
	overall = math.Round(math.Max(0, math.Min(100, overall))*100) / 100

	summary := FeedbackInput{
		Score:        overall,
		Matched:      km.Matched,
		Missing:      km.Missing,
		FormatIssues: format.Issues,
	}
	feedback := RuleFeedback(summary)
	if e != nil && e.Writer != nil {
		rewritten, err := e.Writer.Rewrite(ctx, summary, feedback)
		switch {
		case err != nil:
			telemetry.Warn("analyzer.feedback_rewrite_failed", map[string]any{"error": err})
		case strings.TrimSpace(rewritten) != "":
			feedback = strings.TrimSpace(rewritten)
		}
	}

	return Report{
		Structured: Structured{
			Keywords:        km.Matched,
			MissingKeywords: km.Missing,
			FormatIssues:    format.Issues,
			Suggestions:     Suggestions(format.Issues, km.Missing),
		},
		MatchScore: overall,
		Feedback:   feedback,
		ResumeData: ExtractResumeData(resumeText),
		Details: Details{
			ContentMatchScore:    math.Round(km.ContentScore*100) / 100,
			FormatScore:          format.Score,
			TotalFormatIssues:    len(format.Issues),
			JDKeywordsCount:      km.JDKeywords,
			MatchedKeywordsCount: len(km.Matched),
		},
	}
}

// FeedbackInput is what feedback is written from.
type FeedbackInput struct {
	Score        float64
	Matched      []Keyword
	Missing      []string
	FormatIssues []string
}

// RuleFeedback writes the score band sentence followed by the match, missing
// keyword and format issue counts.
func RuleFeedback(in FeedbackInput) string {
	var parts []string
	switch {
	case in.Score >= 80:
		parts = append(parts, "Excellent match! Your resume aligns well with the job requirements.")
	case in.Score >= 60:
		parts = append(parts, "Good match with room for improvement in key areas.")
	case in.Score >= 40:
		parts = append(parts, "Moderate match. Consider highlighting more relevant experience.")
	default:
		parts = append(parts, "Low match. Significant improvements needed to align with job requirements.")
	}
	if len(in.Matched) > 0 {
		parts = append(parts, fmt.Sprintf("Found %d matching skills/keywords.", len(in.Matched)))
	}
	if len(in.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("Consider adding %d key skills mentioned in the job description.", len(in.Missing)))
	}
	if len(in.FormatIssues) > 0 {
		parts = append(parts, fmt.Sprintf("Address %d formatting issues for better presentation.", len(in.FormatIssues)))
	}
	return strings.Join(parts, " ")
}
