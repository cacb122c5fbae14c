package retrieval

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
)

// NewOpenAIEmbedding adapts the OpenAI embeddings API to EmbeddingFunc.
// model is the Settings.EmbeddingModel value (e.g. text-embedding-3-small).
// Wrap the result in an EmbeddingCache for repeated-query workloads.
func NewOpenAIEmbedding(client openai.Client, model string) EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Model: model,
			Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		})
		if err != nil {
			return nil, core.NewFrameworkError("retrieval.OpenAIEmbedding", "retrieval", err)
		}
		if len(resp.Data) == 0 {
			return nil, core.NewFrameworkError("retrieval.OpenAIEmbedding", "retrieval", fmt.Errorf("no embedding returned for model %s", model))
		}
		vec := make([]float32, len(resp.Data[0].Embedding))
		for i, v := range resp.Data[0].Embedding {
			vec[i] = float32(v)
		}
		return vec, nil
	}
}
