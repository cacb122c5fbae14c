package retrieval

import (
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// KeywordIndex is a normalized term-count index over lowercased content. It
// backs the "keyword" half of hybrid search and is the in-memory
// counterpart to MemoryBackend's vector half.
type KeywordIndex struct {
	mu   sync.RWMutex
	docs map[string]keywordEntry
}

type keywordEntry struct {
	doc    RetrievedDocument
	terms  map[string]int
	length int
}

// NewKeywordIndex builds an empty keyword index.
func NewKeywordIndex() *KeywordIndex {
	return &KeywordIndex{docs: make(map[string]keywordEntry)}
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
	})
	return lo.Filter(fields, func(t string, _ int) bool { return t != "" })
}

// Upsert indexes or re-indexes a document's content.
func (k *KeywordIndex) Upsert(docs []RetrievedDocument) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, doc := range docs {
		terms := map[string]int{}
		tokens := tokenize(doc.Content)
		for _, t := range tokens {
			terms[t]++
		}
		k.docs[doc.ID] = keywordEntry{doc: doc, terms: terms, length: len(tokens)}
	}
}

// Delete removes documents by id.
func (k *KeywordIndex) Delete(ids []string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, id := range ids {
		delete(k.docs, id)
	}
}

// Search scores every indexed document against the query's token set by
// normalized term count (matched term occurrences / document length),
// returning the top_k in descending score order.
func (k *KeywordIndex) Search(query string, topK int) []RetrievedDocument {
	queryTerms := lo.Uniq(tokenize(query))
	if len(queryTerms) == 0 {
		return nil
	}

	k.mu.RLock()
	scored := make([]RetrievedDocument, 0, len(k.docs))
	for _, entry := range k.docs {
		if entry.length == 0 {
			continue
		}
		var matches int
		for _, t := range queryTerms {
			matches += entry.terms[t]
		}
		if matches == 0 {
			continue
		}
		score := float64(matches) / float64(entry.length)
		if score > 1 {
			score = 1
		}
		d := entry.doc
		d.Score = score
		d.SearchType = SearchKeyword
		scored = append(scored, d)
	}
	k.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
