// Package gemini answers free-text member questions with Google's Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/maypok86/otter/v2"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash-lite"

// ErrUnanswerable is returned when the model declines the question.
var ErrUnanswerable = errors.New("question cannot be answered")

// Response represents the structured Gemini answer.
type Response struct {
	Answer     string `json:"answer"`
	Answerable bool   `json:"answerable"`
}

// Client represents a Gemini API client.
type Client struct {
	generator  Generator
	answers    *otter.Cache[string, string]
	logger     *slog.Logger
	apiKey     string
	model      string
	gcpProject string
	attempts   uint
	delay      time.Duration
	mu         sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithGenerator replaces the SDK-backed generator.
func WithGenerator(g Generator) Option {
	return func(c *Client) { c.generator = g }
}

// WithRetry bounds attempts per question and sets the initial backoff.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.delay = delay
	}
}

// NewClient creates a new Gemini API client. With no API key the client
// authenticates to Vertex AI with Application Default Credentials.
func NewClient(apiKey, model, gcpProject string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		apiKey:     apiKey,
		model:      strings.TrimPrefix(model, "models/"),
		gcpProject: gcpProject,
		logger:     logger,
		attempts:   4,
		delay:      100 * time.Millisecond,
		answers: otter.Must(&otter.Options[string, string]{
			MaximumSize:      256,
			ExpiryCalculator: otter.ExpiryWriting[string, string](24 * time.Hour),
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Answer asks the model to answer question in the club's help desk voice.
// It returns ErrUnanswerable when the model declines.
func (c *Client) Answer(ctx context.Context, question string) (string, error) {
	key := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	if key == "" {
		return "", ErrUnanswerable
	}
	if cached, ok := c.answers.GetIfPresent(key); ok {
		c.logger.Debug("gemini cache hit", "question", key)
		return cached, nil
	}

	gen, err := c.client(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: fmt.Sprintf(FAQPrompt(), question)}},
		},
	}
	resp, err := c.generate(ctx, gen, contents, c.generateConfig())
	if err != nil {
		return "", err
	}

	answer, err := c.parse(resp)
	if err != nil {
		return "", err
	}
	c.answers.Set(key, answer)
	return answer, nil
}

// client returns the generator, creating the SDK client on first use.
func (c *Client) client(ctx context.Context) (Generator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generator != nil {
		return c.generator, nil
	}

	var config *genai.ClientConfig
	if c.apiKey != "" {
		config = &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  c.apiKey,
		}
		c.logger.Info("using gemini API with API key")
	} else {
		projectID := c.projectID()
		if projectID == "" {
			return nil, errors.New("gemini: no API key or GCP project configured")
		}
		config = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  projectID,
			Location: "us-central1",
		}
		c.logger.Info("using vertex AI with application default credentials", "project", projectID, "location", "us-central1")
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.generator = client.Models
	return c.generator, nil
}

func (c *Client) projectID() string {
	if c.gcpProject != "" {
		return c.gcpProject
	}
	if projectID := os.Getenv("GCP_PROJECT"); projectID != "" {
		return projectID
	}
	return os.Getenv("GOOGLE_CLOUD_PROJECT")
}

func (*Client) generateConfig() *genai.GenerateContentConfig {
	temperature := float32(0.2)
	return &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  512,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"answer": {
					Type:        genai.TypeString,
					Description: "A short, friendly answer to the member's question, or empty when not answerable",
				},
				"answerable": {
					Type:        genai.TypeBoolean,
					Description: "Whether the question is about the gym and can be answered from the known answers",
				},
			},
			PropertyOrdering: []string{"answerable", "answer"},
			Required:         []string{"answerable", "answer"},
		},
	}
}

func (c *Client) generate(ctx context.Context, gen Generator, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	err := retry.Do(
		func() error {
			var err error
			resp, err = gen.GenerateContent(ctx, c.model, contents, config)
			return err
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isTransientError),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying gemini API call", "attempt", n+1, "error", err)
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return resp, nil
}

// isTransientError determines if an error should trigger a retry.
func isTransientError(err error) bool {
	errStr := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"rate limit", "quota", "timeout", "deadline", "unavailable",
		"internal server error", "502", "503", "504",
	} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

func (c *Client) parse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("empty response from Gemini API")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content in Gemini response")
	}
	text := candidate.Content.Parts[0].Text
	if text == "" {
		return "", errors.New("empty text in Gemini response")
	}
	c.logger.Debug("raw gemini response", "response_text", text)

	var out Response
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		jsonText, extractErr := extractJSON(text)
		if extractErr != nil {
			return "", fmt.Errorf("failed to parse Gemini JSON response: %w", err)
		}
		if err := json.Unmarshal([]byte(jsonText), &out); err != nil {
			return "", fmt.Errorf("failed to parse Gemini JSON response: %w", err)
		}
	}

	answer := strings.Join(strings.Fields(out.Answer), " ")
	if !out.Answerable || answer == "" {
		return "", ErrUnanswerable
	}
	return answer, nil
}

// extractJSON pulls a JSON object out of a response wrapped in prose or fences.
func extractJSON(text string) (string, error) {
	if isValidJSON(text) {
		return text, nil
	}
	for _, fence := range []string{"```json", "```"} {
		if start := strings.Index(text, fence); start != -1 {
			start += len(fence)
			if end := strings.Index(text[start:], "```"); end != -1 {
				if s := strings.TrimSpace(text[start : start+end]); isValidJSON(s) {
					return s, nil
				}
			}
		}
	}
	if start := strings.Index(text, "{"); start != -1 {
		if end := strings.LastIndex(text, "}"); end > start {
			if s := strings.TrimSpace(text[start : end+1]); isValidJSON(s) {
				return s, nil
			}
		}
	}
	return "", errors.New("no valid JSON found in response")
}

func isValidJSON(s string) bool {
	var js map[string]any
	return json.Unmarshal([]byte(s), &js) == nil
}
