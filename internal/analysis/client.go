package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"resume-match/internal/shared/metrics"
	"resume-match/internal/shared/telemetry"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 5 << 20
)

// Analyzer turns a resume and job description into a Result. Implementations
// never fail: provider problems surface as a fallback Result.
type Analyzer interface {
	Analyze(ctx context.Context, doc Document, jobDescription string) Result
}

// Options configures the provider client.
type Options struct {
	URL     string
	Timeout time.Duration

	// Client credentials for providers behind an OAuth2 token endpoint.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Client calls the analysis provider over multipart HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds a provider client. When TokenURL is set, requests carry a
// bearer token obtained with the client credentials grant.
func NewClient(opts Options) (*Client, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		return nil, fmt.Errorf("ANALYZER_URL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	if strings.TrimSpace(opts.TokenURL) != "" {
		if opts.ClientID == "" || opts.ClientSecret == "" {
			return nil, fmt.Errorf("ANALYZER_CLIENT_ID and ANALYZER_CLIENT_SECRET are required with ANALYZER_TOKEN_URL")
		}
		cc := &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			Scopes:       opts.Scopes,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
		httpClient = cc.Client(tokenCtx)
		httpClient.Timeout = timeout
	}

	return &Client{url: url, httpClient: httpClient}, nil
}

type providerResponse struct {
	Structured *struct {
		Keywords        []Keyword `json:"keywords"`
		MissingKeywords []string  `json:"missingKeywords"`
		FormatIssues    []string  `json:"formatIssues"`
		Suggestions     []string  `json:"suggestions"`
	} `json:"structured"`
	MatchScore *float64 `json:"matchScore"`
	Feedback   string   `json:"feedback"`
}

// Analyze sends one request to the provider. There is no retry.
func (c *Client) Analyze(ctx context.Context, doc Document, jobDescription string) Result {
	start := time.Now()
	result, err := c.call(ctx, doc, jobDescription)
	metrics.ObserveProviderDuration(time.Since(start))
	if err != nil {
		telemetry.Warn("analysis.fallback", map[string]any{
			"reason":      err.Error(),
			"file_name":   doc.FileName,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return FallbackResult(err.Error())
	}
	return result
}

func (c *Client) call(ctx context.Context, doc Document, jobDescription string) (Result, error) {
	body, contentType, err := encodeMultipart(doc, jobDescription)
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return Result{}, fmt.Errorf("provider timeout: %w", err)
		}
		return Result{}, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Result{}, fmt.Errorf("read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("provider status %d", resp.StatusCode)
	}

	var parsed providerResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, fmt.Errorf("provider response parse: %w", err)
	}
	return parsed.toResult(), nil
}

func (p providerResponse) toResult() Result {
	var a Analysis
	if p.Structured != nil {
		a = Analysis{
			Keywords:        p.Structured.Keywords,
			MissingKeywords: p.Structured.MissingKeywords,
			FormatIssues:    p.Structured.FormatIssues,
			Suggestions:     p.Structured.Suggestions,
		}
	}
	score := 0
	if p.MatchScore != nil {
		score = ClampScore(*p.MatchScore)
	}
	return Result{
		Analysis:   a.Normalize(),
		MatchScore: score,
		Feedback:   p.Feedback,
	}
}

func encodeMultipart(doc Document, jobDescription string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename=%q`, doc.FileName))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Bytes); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("jobDescription", jobDescription); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var _ Analyzer = (*Client)(nil)
