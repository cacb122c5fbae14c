package rag

import "github.com/rayvoidx/creator-onboarding-agent-sub000/retrieval"

// EvalResult is a document-id-set overlap score against an expected answer
// set — a precision/recall-style check a separate retrieval-quality eval
// script could call, without this package owning a CLI (CLI scripts are
// out of scope).
type EvalResult struct {
	Precision float64
	Recall    float64
	F1        float64
}

// EvaluateRetrieval scores retrieved documents against the expected
// relevant document ids for one query.
func EvaluateRetrieval(retrieved []retrieval.RetrievedDocument, expectedIDs []string) EvalResult {
	if len(retrieved) == 0 || len(expectedIDs) == 0 {
		return EvalResult{}
	}

	expected := make(map[string]bool, len(expectedIDs))
	for _, id := range expectedIDs {
		expected[id] = true
	}

	hits := 0
	for _, d := range retrieved {
		if expected[d.ID] {
			hits++
		}
	}

	precision := float64(hits) / float64(len(retrieved))
	recall := float64(hits) / float64(len(expectedIDs))
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return EvalResult{Precision: precision, Recall: recall, F1: f1}
}
