package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/bvm-labs/catalogchat/internal/domain"
	"github.com/bvm-labs/catalogchat/internal/domain/product"
	"github.com/bvm-labs/catalogchat/internal/metrics"
)

// Collaborator roles for metrics and error wrapping.
const (
	roleInterpret = "interpret"
	roleSummarize = "summarize"
)

// Client is the language model collaborator behind an OpenAI-compatible API.
// It covers both roles the chat flow needs: turning free text into a
// structured intent, and summarizing one chunk of product records.
type Client struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the language model settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewClient creates a language model client.
func NewClient(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Interpret runs one single-shot completion over the user's message and
// returns the raw model output. Callers must validate it before use.
func (c *Client) Interpret(ctx context.Context, systemPrompt, userText string) (string, error) {
	out, err := c.complete(ctx, roleInterpret, systemPrompt, userText)
	if err != nil {
		return "", fmt.Errorf("interpret: %w", err)
	}
	return out, nil
}

// Summarize produces prose for one chunk of product records.
func (c *Client) Summarize(ctx context.Context, instruction string, chunk product.Chunk) (string, error) {
	payload, err := json.Marshal(chunk.Records)
	if err != nil {
		return "", fmt.Errorf("marshal chunk %d: %w", chunk.Index, err)
	}
	out, err := c.complete(ctx, roleSummarize, instruction, string(payload))
	if err != nil {
		return "", fmt.Errorf("summarize chunk %d: %w", chunk.Index, err)
	}
	return out, nil
}

// complete performs one chat completion call with transport-level metrics.
func (c *Client) complete(ctx context.Context, role, systemPrompt, userText string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	wrap := domain.ErrSummarizerError
	if role == roleInterpret {
		wrap = domain.ErrInterpreterError
	}

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.model, role, "error").Inc()
		return "", parseAPIError(err, wrap)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(c.model, role, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", wrap)
	}

	metrics.LLMRequestsTotal.WithLabelValues(c.model, role, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(c.model, role).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(c.model, role, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(c.model, role, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message.Content, nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with the role's domain sentinel.
func parseAPIError(err error, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("model API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("model API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("model request failed: %v: %w", err, wrap)
}
