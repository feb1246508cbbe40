package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// FeedbackWriter rewrites rule-based feedback into a friendlier paragraph.
type FeedbackWriter interface {
	Rewrite(ctx context.Context, in FeedbackInput, draft string) (string, error)
}

// contentGenerator is the subset of the genai models service used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiWriter asks Gemini to rewrite the feedback paragraph.
type GeminiWriter struct {
	models contentGenerator
	model  string
}

// NewGeminiWriter creates a writer backed by the Gemini API.
func NewGeminiWriter(ctx context.Context, apiKey, model string) (*GeminiWriter, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	return &GeminiWriter{models: client.Models, model: model}, nil
}

// Rewrite returns Gemini's version of draft. The caller keeps draft on error.
func (w *GeminiWriter) Rewrite(ctx context.Context, in FeedbackInput, draft string) (string, error) {
	if w == nil || w.models == nil {
		return "", errors.New("gemini writer is not initialized")
	}
	resp, err := w.models.GenerateContent(ctx, w.model, genai.Text(feedbackPrompt(in, draft)), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString(" ")
			}
			builder.WriteString(strings.TrimSpace(part.Text))
		}
	}
	out := strings.TrimSpace(builder.String())
	if out == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return out, nil
}

func feedbackPrompt(in FeedbackInput, draft string) string {
	matched := make([]string, 0, len(in.Matched))
	for _, k := range in.Matched {
		matched = append(matched, k.Word)
	}
	var b strings.Builder
	b.WriteString("You review resumes against job descriptions. Rewrite the feedback below as one short, ")
	b.WriteString("encouraging paragraph of at most four sentences. Keep every number unchanged and do not invent facts.\n\n")
	fmt.Fprintf(&b, "Match score: %.2f/100\n", in.Score)
	fmt.Fprintf(&b, "Matched keywords: %s\n", strings.Join(matched, ", "))
	fmt.Fprintf(&b, "Missing keywords: %s\n", strings.Join(in.Missing, ", "))
	fmt.Fprintf(&b, "Format issues: %s\n\n", strings.Join(in.FormatIssues, "; "))
	fmt.Fprintf(&b, "Feedback:\n%s\n", draft)
	return b.String()
}
