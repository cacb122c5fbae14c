package generation

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockClient adapts the AWS Bedrock Converse API to ModelClient. It
// backs the fallback slot, so the engine only reaches it once every other
// configured provider has failed or emptied.
type BedrockClient struct {
	runtime *bedrockruntime.Client
}

// NewBedrockClient wraps an already-configured Bedrock runtime client
// (region/credentials resolved by the caller via aws-sdk-go-v2 config).
func NewBedrockClient(runtime *bedrockruntime.Client) *BedrockClient {
	return &BedrockClient{runtime: runtime}
}

func (c *BedrockClient) buildMessages(messages []Message) ([]brtypes.SystemContentBlock, []brtypes.Message) {
	var system []brtypes.SystemContentBlock
	var conversation []brtypes.Message

	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, &brtypes.SystemContentBlockMemberText{Value: m.Content})
		case "assistant":
			conversation = append(conversation, brtypes.Message{
				Role:    brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: m.Content}},
			})
		default:
			conversation = append(conversation, brtypes.Message{
				Role:    brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: m.Content}},
			})
		}
	}
	return system, conversation
}

func (c *BedrockClient) Generate(ctx context.Context, modelName string, messages []Message, temperature float32, maxTokens int) (string, error) {
	system, conversation := c.buildMessages(messages)

	cfg := &brtypes.InferenceConfiguration{}
	if temperature > 0 {
		cfg.Temperature = aws.Float32(temperature)
	}
	if maxTokens > 0 {
		cfg.MaxTokens = aws.Int32(int32(maxTokens))
	}

	out, err := c.runtime.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         aws.String(modelName),
		Messages:        conversation,
		System:          system,
		InferenceConfig: cfg,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock converse: %w", err)
	}

	output, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", nil
	}
	var text string
	for _, block := range output.Value.Content {
		if textBlock, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text += textBlock.Value
		}
	}
	return text, nil
}

func (c *BedrockClient) SupportsFunctions() bool { return false }

func (c *BedrockClient) GenerateWithFunctions(ctx context.Context, modelName string, messages []Message, temperature float32, maxTokens int, functions []FunctionSpec, handlers map[string]FunctionHandler) (string, string, error) {
	text, err := c.Generate(ctx, modelName, messages, temperature, maxTokens)
	return text, "", err
}
