package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/stock-scout/internal/config"
)

// AnthropicClient implements Completer using the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	logger    *logrus.Logger
}

// NewAnthropicClient creates a new Anthropic completion client
func NewAnthropicClient(cfg *config.LLMConfig, logger *logrus.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required (set via STOCK_SCOUT_LLM_API_KEY or llm.api_key in config)")
	}

	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	return &AnthropicClient{
		client:    client,
		model:     model,
		maxTokens: int64(maxTokens),
		timeout:   cfg.Timeout(),
		logger:    logger,
	}, nil
}

// Complete sends a single-turn message and returns the concatenated
// text blocks of the response.
func (c *AnthropicClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	start := time.Now()
	resp, err := c.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated")
	}

	c.logger.WithFields(logrus.Fields{
		"model":       c.model,
		"duration_ms": time.Since(start).Milliseconds(),
		"length":      response.Len(),
	}).Debug("Completion generated")

	return response.String(), nil
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}

// HealthCheck exercises the API with a minimal probe.
func (c *AnthropicClient) HealthCheck(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	response, err := c.Complete(probeCtx, "", "ping")
	if err != nil {
		return fmt.Errorf("anthropic health check failed: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return fmt.Errorf("anthropic health check returned empty response")
	}

	return nil
}
