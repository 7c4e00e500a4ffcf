package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

const (
	// baseURL carries the API version; the client only appends the
	// models/...:generateContent path.
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 90 * time.Second
)

// geminiClient implements Generator against the Gemini generateContent API
type geminiClient struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewGeminiClient creates a Generator backed by the Gemini REST API. Empty
// model and baseURL and a non-positive timeout fall back to service defaults.
func NewGeminiClient(apiKey, model, baseURL string, timeout time.Duration) Generator {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL = normalizeBaseURL(baseURL)
	return &geminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// Generate sends a prompt to the model and returns its text response
func (c *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperrors.New(apperrors.CodeValidation, "prompt is required")
	}
	if c.apiKey == "" {
		return "", apperrors.New(apperrors.CodeValidation, "text generation API key is not configured")
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		// Deterministic-leaning output; downstream parsers expect stable JSON.
		GenerationConfig: geminiGenConfig{Temperature: 0.2},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to marshal generation request")
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to build generation request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", apperrors.Wrap(err, apperrors.CodeExternal, fmt.Sprintf("text generation timeout after %s (model=%s)", c.timeout, c.model))
		}
		return "", apperrors.Wrap(err, apperrors.CodeExternal, "text generation request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", apperrors.Newf(apperrors.CodeExternal, "text generation API status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return "", apperrors.Newf(apperrors.CodeExternal, "text generation API status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), c.apiKey), 400))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternal, "failed to decode generation response")
	}
	if len(out.Candidates) == 0 {
		return "", apperrors.Newf(apperrors.CodeExternal, "model %s returned no candidates", c.model)
	}

	var b strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", apperrors.Newf(apperrors.CodeExternal, "model %s returned an empty response", c.model)
	}
	return text, nil
}

// endpoint builds the generateContent URL. The base URL already names the
// API version, so only the model path is appended.
func (c *geminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

var apiKeyFieldRE = regexp.MustCompile(`(?i)(key\s*[:=]\s*)([^\s&"',;]+)`)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
