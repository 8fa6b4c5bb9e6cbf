package enhance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	defaultOpenAITimeout   = 20 * time.Second
	defaultOpenAIMaxTokens = 200

	systemPrompt = "You polish resume summaries for a personal portfolio site. " +
		"Rewrite the summary in at most three sentences, first person omitted, " +
		"keeping every fact and inventing nothing. Reply with the summary text only."
)

// OpenAIConfig configures the OpenAI-backed enhancer.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAI rewrites summaries with a chat completion.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI constructs an OpenAI enhancer.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required for the openai enhancer")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("LLM_MODEL is required for the openai enhancer")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultOpenAITimeout
	}
	client := openai.NewClient(opts...)
	return &OpenAI{client: &client, model: cfg.Model, timeout: timeout}, nil
}

// Enhance asks the model for a polished summary and prefixes it with Marker.
func (o *OpenAI) Enhance(ctx context.Context, summary string) (string, error) {
	input := strings.TrimSpace(summary)
	if input == "" {
		input = DefaultSummary
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(input),
		},
		MaxTokens: openai.Int(defaultOpenAIMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai enhance: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai enhance: empty choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("openai enhance: empty content")
	}
	return Marker + text, nil
}

var _ Enhancer = (*OpenAI)(nil)
