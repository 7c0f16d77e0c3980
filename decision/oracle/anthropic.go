package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when AnthropicConfig.Model is unset.
const DefaultAnthropicModel = "claude-haiku-4-5-20251001"

// AnthropicConfig configures an Anthropic-backed oracle.
type AnthropicConfig struct {
	// APIKey authenticates requests.
	// Required.
	APIKey string

	// Model selects the completion model.
	// Default: DefaultAnthropicModel.
	Model string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// MaxTokens bounds the reply length.
	// Default: DefaultMaxTokens.
	MaxTokens int64
}

// applyDefaults sets default values for unset optional fields.
func (c *AnthropicConfig) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultAnthropicModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
}

// Anthropic is a decision oracle backed by the Anthropic Messages API.
type Anthropic struct {
	client *anthropic.Client
	config AnthropicConfig
}

// NewAnthropic creates an Anthropic oracle with the given configuration.
func NewAnthropic(config AnthropicConfig) (*Anthropic, error) {
	if config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	config.applyDefaults()

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	client := anthropic.NewClient(opts...)
	return &Anthropic{client: &client, config: config}, nil
}

// Complete sends one message request and returns the concatenated text
// blocks of the reply.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.config.Model),
		MaxTokens: a.config.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic complete: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("anthropic complete: no text in response")
	}
	return strings.Join(parts, "\n"), nil
}
