package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
)

// Client talks to an external text-classification service.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
}

var _ ports.Classifier = (*Client)(nil)

// NewClient creates a reusable HTTP client. requestsPerSecond <= 0 disables throttling.
func NewClient(endpoint, apiKey string, requestsPerSecond float64) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
		limiter:  rate.NewLimiter(limit, 1),
	}
}

type classifyResponse struct {
	Label      string  `json:"label"`
	Prediction *int    `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error"`
}

// Classify posts the article text and decodes the predicted label.
// The service may answer with a label string or a 1/0 prediction.
func (c *Client) Classify(ctx context.Context, text string) (domain.Classification, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Classification{}, fmt.Errorf("rate limit: %w", err)
	}

	var resp classifyResponse
	if err := c.post(ctx, "/classify", map[string]any{"text": text}, &resp); err != nil {
		return domain.Classification{}, err
	}
	if resp.Error != "" {
		return domain.Classification{}, fmt.Errorf("classifier error: %s", resp.Error)
	}

	label, err := parseLabel(resp)
	if err != nil {
		return domain.Classification{}, err
	}
	return domain.Classification{Label: label, Confidence: resp.Confidence}, nil
}

func parseLabel(resp classifyResponse) (domain.Label, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Label)) {
	case "credible", "reliable", "real":
		return domain.LabelCredible, nil
	case "unreliable", "fake":
		return domain.LabelUnreliable, nil
	}
	if resp.Prediction != nil {
		if *resp.Prediction == 1 {
			return domain.LabelCredible, nil
		}
		return domain.LabelUnreliable, nil
	}
	return "", fmt.Errorf("unknown label %q", resp.Label)
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
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
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
