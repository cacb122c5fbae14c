package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// CrossEncoderReranker scores a (query, document) pair in [0,1]; higher
// means more relevant. No cross-encoder model existed in the retrieved
// pack, so the one concrete implementation below composes over an
// existing domain dependency (the Generation Engine's fast model) rather
// than a dedicated reranking library.
type CrossEncoderReranker interface {
	Score(ctx context.Context, query, content string) (float64, error)
}

// generationClient is the narrow seam rerank.go needs from the Generation
// Engine; satisfied by *generation.Engine without an import cycle (retrieval
// does not depend on generation's package, generation's caller wires this).
type generationClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GenerationReranker implements CrossEncoderReranker by asking the fast
// model to grade relevance on a 0-10 scale and normalizing to [0,1].
type GenerationReranker struct {
	Client generationClient
}

// NewGenerationReranker builds a reranker backed by the given fast-model
// client.
func NewGenerationReranker(client generationClient) *GenerationReranker {
	return &GenerationReranker{Client: client}
}

func (r *GenerationReranker) Score(ctx context.Context, query, content string) (float64, error) {
	prompt := fmt.Sprintf(
		"Rate how relevant this document is to the query on a scale of 0 to 10. Reply with only the number.\nQuery: %s\nDocument: %s",
		query, truncateForPrompt(content, 2000),
	)
	out, err := r.Client.GenerateText(ctx, prompt)
	if err != nil {
		return 0, fmt.Errorf("generation reranker: %w", err)
	}
	n, ok := parseLeadingNumber(out)
	if !ok {
		return 0, fmt.Errorf("generation reranker: no numeric score in %q", out)
	}
	if n < 0 {
		n = 0
	}
	if n > 10 {
		n = 10
	}
	return n / 10, nil
}

func truncateForPrompt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func parseLeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// topQueryTokens returns the distinct tokens of the first n expanded
// queries, used for the rerank boost below.
func topQueryTokens(queries []string, n int) map[string]bool {
	if n > len(queries) {
		n = len(queries)
	}
	tokens := map[string]bool{}
	for _, q := range queries[:n] {
		for _, t := range tokenize(q) {
			tokens[t] = true
		}
	}
	return tokens
}

// Rerank scores and filters docs per the retrieval contract: if a
// reranker is available and len(docs) > topK, score each (query,
// content) pair; final_score = mean(base_score, rerank_score); apply a
// +0.05 boost if any of the top-3 expanded-query tokens appears in the
// doc content; filter by minScore; keep the top topK by final score.
func Rerank(ctx context.Context, reranker CrossEncoderReranker, query string, expandedQueries []string, docs []RetrievedDocument, topK int, minScore float64) ([]RetrievedDocument, error) {
	if reranker == nil || len(docs) <= topK {
		return capTopK(docs, topK), nil
	}

	boostTokens := topQueryTokens(expandedQueries, 3)

	type scored struct {
		doc   RetrievedDocument
		final float64
	}
	out := make([]scored, 0, len(docs))
	for _, d := range docs {
		rerankScore, err := reranker.Score(ctx, query, d.Content)
		if err != nil {
			// a failed rerank call degrades this doc to its base score rather
			// than dropping it
			out = append(out, scored{doc: d, final: d.Score})
			continue
		}
		final := (d.Score + rerankScore) / 2
		if hasAnyToken(d.Content, boostTokens) {
			final += 0.05
		}
		if final > 1 {
			final = 1
		}
		out = append(out, scored{doc: d, final: final})
	}

	out = lo.Filter(out, func(s scored, _ int) bool { return s.final >= minScore })
	sort.Slice(out, func(i, j int) bool { return out[i].final > out[j].final })

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}

	final := make([]RetrievedDocument, len(out))
	for i, s := range out {
		s.doc.Score = s.final
		final[i] = s.doc
	}
	return final, nil
}

func hasAnyToken(content string, tokens map[string]bool) bool {
	for _, t := range tokenize(content) {
		if tokens[t] {
			return true
		}
	}
	return false
}

func capTopK(docs []RetrievedDocument, topK int) []RetrievedDocument {
	sorted := make([]RetrievedDocument, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if topK > 0 && len(sorted) > topK {
		sorted = sorted[:topK]
	}
	return sorted
}
