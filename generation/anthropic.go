package generation

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/telemetry"
)

// AnthropicClient adapts the Anthropic Messages API to ModelClient. It
// backs the deep slot; Claude has no OpenAI-style function-calling round
// in this engine, so SupportsFunctions is false.
type AnthropicClient struct {
	client sdk.Client
	// MaxTokens is required by the Messages API on every call; this value
	// is sent whenever a call passes zero or a negative maxTokens.
	defaultMaxTokens int64
}

// NewAnthropicClient builds a client from an API key.
func NewAnthropicClient(apiKey string, defaultMaxTokens int64, opts ...option.RequestOption) *AnthropicClient {
	allOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(telemetry.NewHTTPClient()),
	}, opts...)
	if defaultMaxTokens <= 0 {
		defaultMaxTokens = 4096
	}
	return &AnthropicClient{client: sdk.NewClient(allOpts...), defaultMaxTokens: defaultMaxTokens}
}

func (c *AnthropicClient) buildParams(modelName string, messages []Message, temperature float32, maxTokens int) sdk.MessageNewParams {
	var system []sdk.TextBlockParam
	conversation := make([]sdk.MessageParam, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, sdk.TextBlockParam{Text: m.Content})
		case "assistant":
			conversation = append(conversation, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			conversation = append(conversation, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		}
	}

	tokens := int64(maxTokens)
	if tokens <= 0 {
		tokens = c.defaultMaxTokens
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(modelName),
		Messages:  conversation,
		MaxTokens: tokens,
	}
	if len(system) > 0 {
		params.System = system
	}
	if temperature > 0 {
		params.Temperature = sdk.Float(float64(temperature))
	}
	return params
}

func (c *AnthropicClient) Generate(ctx context.Context, modelName string, messages []Message, temperature float32, maxTokens int) (string, error) {
	params := c.buildParams(modelName, messages, temperature, maxTokens)
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages.new: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

func (c *AnthropicClient) SupportsFunctions() bool { return false }

func (c *AnthropicClient) GenerateWithFunctions(ctx context.Context, modelName string, messages []Message, temperature float32, maxTokens int, functions []FunctionSpec, handlers map[string]FunctionHandler) (string, string, error) {
	text, err := c.Generate(ctx, modelName, messages, temperature, maxTokens)
	return text, "", err
}
