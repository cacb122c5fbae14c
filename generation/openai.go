package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/telemetry"
)

// OpenAIClient adapts the OpenAI chat-completions API to ModelClient. It
// backs the default and fast slots and is the only client family that
// supports the one-shot function-calling round.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient builds a client from an API key and optional request
// options (base URL override, organization header, etc.).
func NewOpenAIClient(apiKey string, opts ...option.RequestOption) *OpenAIClient {
	allOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(telemetry.NewHTTPClient()),
	}, opts...)
	return &OpenAIClient{client: openai.NewClient(allOpts...)}
}

func (c *OpenAIClient) buildMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		case "tool":
			// tool messages are appended separately by GenerateWithFunctions,
			// which has the tool_call_id; a bare "tool" role here has none.
			out = append(out, openai.UserMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func (c *OpenAIClient) Generate(ctx context.Context, modelName string, messages []Message, temperature float32, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       modelName,
		Messages:    c.buildMessages(messages),
		Temperature: openai.Float(float64(temperature)),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) SupportsFunctions() bool { return true }

func (c *OpenAIClient) GenerateWithFunctions(ctx context.Context, modelName string, messages []Message, temperature float32, maxTokens int, functions []FunctionSpec, handlers map[string]FunctionHandler) (string, string, error) {
	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(functions))
	for _, f := range functions {
		tools = append(tools, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        f.Name,
					Description: openai.String(f.Description),
					Parameters:  f.Parameters,
				},
			},
		})
	}

	msgs := c.buildMessages(messages)
	params := openai.ChatCompletionNewParams{
		Model:       modelName,
		Messages:    msgs,
		Temperature: openai.Float(float64(temperature)),
		Tools:       tools,
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", "", nil
	}

	choice := resp.Choices[0]
	toolCalls := choice.Message.ToolCalls
	if len(toolCalls) == 0 {
		return choice.Message.Content, "", nil
	}

	// At most one tool round: dispatch the first requested call only.
	call := toolCalls[0]
	handler, ok := handlers[call.Function.Name]
	if !ok {
		return "", "", fmt.Errorf("openai: no handler registered for function %q", call.Function.Name)
	}
	result, err := handler(ctx, call.Function.Arguments)
	if err != nil {
		return "", "", fmt.Errorf("openai: function %q failed: %w", call.Function.Name, err)
	}

	followUp := append(msgs, openai.AssistantMessage(choice.Message.Content), openai.ToolMessage(result, call.ID))
	followUpResp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       modelName,
		Messages:    followUp,
		Temperature: openai.Float(float64(temperature)),
	})
	if err != nil {
		return "", "", fmt.Errorf("openai follow-up completion: %w", err)
	}
	if len(followUpResp.Choices) == 0 {
		return "", call.Function.Name, errors.New("openai: empty follow-up completion")
	}
	return followUpResp.Choices[0].Message.Content, call.Function.Name, nil
}
