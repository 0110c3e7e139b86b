// Package llm wraps the OpenAI-compatible chat completions API. The base URL
// is configurable so the server can talk to OpenRouter or any compatible
// gateway.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mindtype-app/mindtype-server/internal/config"
	"github.com/mindtype-app/mindtype-server/internal/metrics"
)

// Token caps per call site. Group turns are kept short on purpose.
const (
	SoloMaxTokens       = 300
	GroupMaxTokens      = 200
	ExtractionMaxTokens = 256
)

// Message is one turn of conversation context passed to the model.
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// Completer produces one chat completion. Satisfied by Client; fakes
// implement it in tests.
type Completer interface {
	Complete(ctx context.Context, op string, messages []Message, maxTokens int) (string, error)
}

// Client calls the chat completions endpoint with a fixed model.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
}

// New builds a client from config. The API key is required; BaseURL defaults
// to OpenRouter upstream of here.
func New(cfg config.LLMConfig) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		api:     openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Complete sends the messages and returns the first choice's text. op labels
// the latency metric ("solo", "group", "extraction").
func (c *Client) Complete(ctx context.Context, op string, messages []Message, maxTokens int) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model:               c.model,
		Messages:            toParams(messages),
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}

	timer := prometheus.NewTimer(metrics.LLMRequestDuration.WithLabelValues(op))
	resp, err := c.api.Chat.Completions.New(ctx, params)
	timer.ObserveDuration()
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion (%s): empty choices", op)
	}
	return resp.Choices[0].Message.Content, nil
}

func toParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
