package retrieval

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// HybridSearch fuses a VectorBackend and a KeywordIndex over the same
// corpus. Each per-doc-id score is vector_score*VectorWeight +
// keyword_score*KeywordWeight (defaults 0.7/0.3); vector-only or
// keyword-only hits keep their single contribution.
type HybridSearch struct {
	Vector        VectorBackend
	Keyword       *KeywordIndex
	VectorWeight  float64
	KeywordWeight float64
}

// NewHybridSearch builds a fuser with the given fusion weights.
func NewHybridSearch(vector VectorBackend, keyword *KeywordIndex, vectorWeight, keywordWeight float64) *HybridSearch {
	if vectorWeight == 0 && keywordWeight == 0 {
		vectorWeight, keywordWeight = 0.7, 0.3
	}
	return &HybridSearch{Vector: vector, Keyword: keyword, VectorWeight: vectorWeight, KeywordWeight: keywordWeight}
}

// Search runs the vector and keyword searches concurrently for one query
// and merges by doc id: first occurrence wins, in task-start order (vector
// branch first, then keyword). Fused scores are computed for every doc so
// the rerank stage has a base_score to work from, but ordering here is
// insertion order, not score — final score-descending order is the
// rerank stage's job. Neither branch's failure cancels the other; a
// failed branch simply contributes no documents.
func (h *HybridSearch) Search(ctx context.Context, query string, topK int, namespace string, filter map[string]any) ([]RetrievedDocument, error) {
	var (
		vectorDocs  []RetrievedDocument
		keywordDocs []RetrievedDocument
		vectorErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := h.Vector.Query(gctx, query, topK, namespace, filter)
		if err != nil {
			vectorErr = fmt.Errorf("hybrid: vector search: %w", err)
			return nil
		}
		vectorDocs = docs
		return nil
	})
	g.Go(func() error {
		keywordDocs = h.Keyword.Search(query, topK)
		return nil
	})
	_ = g.Wait() // branches never return a non-nil error; errors are captured above

	merged := mergeByID(vectorDocs, keywordDocs, h.VectorWeight, h.KeywordWeight)
	if len(merged) == 0 && vectorErr != nil {
		return nil, vectorErr
	}
	return merged, nil
}

// MultiQuery runs Search for each expanded query concurrently and unions
// the results, first occurrence by doc id wins, preserving task-start
// order across queries.
func (h *HybridSearch) MultiQuery(ctx context.Context, queries []string, topK int, namespace string, filter map[string]any) ([]RetrievedDocument, error) {
	results := make([][]RetrievedDocument, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			docs, err := h.Search(gctx, q, topK, namespace, filter)
			if err != nil {
				return nil // per-branch failure contributes nothing, never cancels siblings
			}
			results[i] = docs
			return nil
		})
	}
	_ = g.Wait()

	seen := map[string]bool{}
	var union []RetrievedDocument
	for _, docs := range results {
		for _, d := range docs {
			if seen[d.ID] {
				continue
			}
			seen[d.ID] = true
			union = append(union, d)
		}
	}
	return union, nil
}

type mergedAcc struct {
	doc        RetrievedDocument
	vectorHit  bool
	keywordHit bool
	vScore     float64
	kScore     float64
	order      int
}

func mergeByID(vectorDocs, keywordDocs []RetrievedDocument, vectorWeight, keywordWeight float64) []RetrievedDocument {
	byID := map[string]*mergedAcc{}
	order := 0
	for _, d := range vectorDocs {
		a, ok := byID[d.ID]
		if !ok {
			a = &mergedAcc{doc: d, order: order}
			order++
			byID[d.ID] = a
		}
		a.vectorHit = true
		a.vScore = d.Score
	}
	for _, d := range keywordDocs {
		a, ok := byID[d.ID]
		if !ok {
			a = &mergedAcc{doc: d, order: order}
			order++
			byID[d.ID] = a
		}
		a.keywordHit = true
		a.kScore = d.Score
	}

	accs := make([]*mergedAcc, 0, len(byID))
	for _, a := range byID {
		switch {
		case a.vectorHit && a.keywordHit:
			a.doc.Score = a.vScore*vectorWeight + a.kScore*keywordWeight
			a.doc.SearchType = SearchHybrid
		case a.vectorHit:
			a.doc.Score = a.vScore * vectorWeight
		case a.keywordHit:
			a.doc.Score = a.kScore * keywordWeight
		}
		accs = append(accs, a)
	}

	sort.Slice(accs, func(i, j int) bool { return accs[i].order < accs[j].order })

	out := make([]RetrievedDocument, len(accs))
	for i, a := range accs {
		out[i] = a.doc
	}
	return out
}
