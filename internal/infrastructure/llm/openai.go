package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
)

const maxPromptRunes = 6000

// Classifier asks an OpenAI-compatible chat model to label article text.
type Classifier struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

var _ ports.Classifier = (*Classifier)(nil)

// NewClassifier builds a client from configuration.
func NewClassifier(cfg config.OpenAIConfig) *Classifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Classifier{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
	}
}

type verdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify sends the text as a user message and parses the JSON verdict.
func (c *Classifier) Classify(ctx context.Context, text string) (domain.Classification, error) {
	if c == nil || c.client == nil {
		return domain.Classification{}, fmt.Errorf("openai classifier is nil")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: safePrompt(c.systemPrompt)},
			{Role: openai.ChatMessageRoleUser, Content: truncate(text, maxPromptRunes)},
		},
	})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Classification{}, fmt.Errorf("chat completion returned no choices")
	}

	return parseVerdict(resp.Choices[0].Message.Content)
}

func parseVerdict(content string) (domain.Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var v verdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &v); err != nil {
		return domain.Classification{}, fmt.Errorf("decode verdict: %w", err)
	}

	var label domain.Label
	switch strings.ToLower(strings.TrimSpace(v.Label)) {
	case "credible":
		label = domain.LabelCredible
	case "unreliable":
		label = domain.LabelUnreliable
	default:
		return domain.Classification{}, fmt.Errorf("unknown label %q", v.Label)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return domain.Classification{}, fmt.Errorf("confidence %.3f out of range", v.Confidence)
	}

	return domain.Classification{Label: label, Confidence: v.Confidence}, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return `You rate news article credibility. Reply only with JSON: {"label":"credible"|"unreliable","confidence":<0..1>}.`
	}
	return prompt
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
