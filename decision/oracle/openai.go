package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Defaults for OpenAI completion requests.
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.1
)

// ErrAPIKeyRequired is returned when a client is built without an API key.
var ErrAPIKeyRequired = errors.New("oracle: API key is required")

const systemPrompt = "You are a router that picks the best tool for a user's request. " +
	"You reply with a single JSON object and nothing else."

// OpenAIConfig configures an OpenAI-backed oracle.
type OpenAIConfig struct {
	// APIKey authenticates requests.
	// Required.
	APIKey string

	// Model selects the completion model.
	// Default: DefaultOpenAIModel.
	Model string

	// BaseURL overrides the API endpoint, for proxies and compatible
	// services.
	BaseURL string

	// MaxTokens bounds the reply length.
	// Default: DefaultMaxTokens.
	MaxTokens int64

	// Temperature controls sampling.
	// Default: DefaultTemperature.
	Temperature float64
}

// applyDefaults sets default values for unset optional fields.
func (c *OpenAIConfig) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultOpenAIModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
}

// OpenAI is a decision oracle backed by OpenAI chat completions.
type OpenAI struct {
	client *openai.Client
	config OpenAIConfig
}

// NewOpenAI creates an OpenAI oracle with the given configuration.
func NewOpenAI(config OpenAIConfig) (*OpenAI, error) {
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

	client := openai.NewClient(opts...)
	return &OpenAI{client: &client, config: config}, nil
}

// Complete sends one chat completion request and returns the reply text.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(o.config.MaxTokens),
		Temperature: openai.Float(o.config.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai complete: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai complete: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
