package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

const (
	defaultBatchSize = 32
	defaultTimeout   = 15 * time.Second
)

// Client talks to an external ML service for sentiment, normalization and
// seq2seq generation.
type Client struct {
	endpoint  string
	apiKey    string
	batchSize int
	http      *http.Client
}

var _ ports.Classifier = (*Client)(nil)
var _ ports.Normalizer = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithBatchSize bounds how many texts go into one /classify call.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		apiKey:    apiKey,
		batchSize: defaultBatchSize,
		http:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify labels texts in batches. Raw labels are collapsed into the
// closed sentiment domain.
func (c *Client) Classify(ctx context.Context, texts []string) ([]domain.SentimentLabel, error) {
	labels := make([]domain.SentimentLabel, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		batch := texts[start:end]

		var resp struct {
			Labels []string `json:"labels"`
		}
		if err := c.post(ctx, "classifier", "/classify", map[string]any{"texts": batch}, &resp); err != nil {
			return nil, err
		}
		if len(resp.Labels) != len(batch) {
			return nil, ports.NewCollaboratorError("classifier", ports.FailureMalformed,
				fmt.Errorf("got %d labels for %d texts", len(resp.Labels), len(batch)))
		}
		for _, raw := range resp.Labels {
			label, _ := domain.ParseLabel(raw)
			labels = append(labels, label)
		}
	}
	return labels, nil
}

// Normalize asks the service to clean a single comment.
func (c *Client) Normalize(ctx context.Context, text string) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "normalizer", "/normalize", map[string]any{"text": text}, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Generate runs the seq2seq model on prompt.
func (c *Client) Generate(ctx context.Context, prompt string, maxLength int) (string, error) {
	payload := map[string]any{
		"prompt":     prompt,
		"max_length": maxLength,
	}

	var resp struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := c.post(ctx, "seq2seq", "/generate", payload, &resp); err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.GeneratedText)
	if text == "" {
		return "", ports.NewCollaboratorError("seq2seq", ports.FailureMalformed, fmt.Errorf("empty generated_text"))
	}
	return text, nil
}

func (c *Client) post(ctx context.Context, collaborator, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ports.NewCollaboratorError(collaborator, ports.KindForTransportError(err), fmt.Errorf("do request: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return ports.NewCollaboratorError(collaborator, ports.KindForStatus(resp.StatusCode),
			fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet))))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return ports.NewCollaboratorError(collaborator, ports.FailureMalformed, fmt.Errorf("decode response: %w", err))
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
