// Package retrieve selects the evidence set for a question: one embedding,
// one or two hybrid index queries, then merge, dedupe and budget-bound
// truncation.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"legalrag/model"
	"legalrag/store"
	"legalrag/types"
)

// ErrUnavailable marks index or embedding failures. The orchestrator must
// never answer without evidence, so this aborts the request.
var ErrUnavailable = errors.New("retrieval unavailable")

type Retriever struct {
	embedder    model.Embedder
	index       store.Indexer
	fallbackMin int
	tokenBudget int
	count       TokenCounter
}

func New(embedder model.Embedder, index store.Indexer, fallbackMin, tokenBudget int, count TokenCounter) *Retriever {
	if count == nil {
		count = WordCounter
	}
	return &Retriever{
		embedder:    embedder,
		index:       index,
		fallbackMin: fallbackMin,
		tokenBudget: tokenBudget,
		count:       count,
	}
}

// Retrieve returns at most k chunks within the token budget, preferring
// jurisdiction-matched hits. With an empty jurisdiction set the query runs
// unrestricted.
func (r *Retriever) Retrieve(ctx context.Context, question string, jurisdictions []string, k int) (types.EvidenceSet, error) {
	var evidence types.EvidenceSet

	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return evidence, fmt.Errorf("%w: embedding: %v", ErrUnavailable, err)
	}

	hits, err := r.index.Query(ctx, vec, question, jurisdictions, k)
	if err != nil {
		return evidence, fmt.Errorf("%w: index query: %v", ErrUnavailable, err)
	}

	// Too few jurisdiction-matched hits: widen to an unrestricted query and
	// merge, keeping matched chunks ranked first. A failed widening query is
	// not fatal while the restricted hits are in hand.
	if len(jurisdictions) > 0 && len(hits) < r.fallbackMin {
		log.Printf("[RETRIEVER] only %d hits for %v (min %d), widening search", len(hits), jurisdictions, r.fallbackMin)
		extra, err := r.index.Query(ctx, vec, question, nil, k)
		if err != nil {
			if len(hits) == 0 {
				return evidence, fmt.Errorf("%w: fallback query: %v", ErrUnavailable, err)
			}
			log.Printf("[RETRIEVER] fallback query failed, keeping %d restricted hits: %v", len(hits), err)
		} else {
			hits = append(hits, extra...)
		}
	}

	for _, c := range hits {
		evidence.Add(c)
	}

	matched := make(map[string]struct{}, len(jurisdictions))
	for _, code := range jurisdictions {
		matched[code] = struct{}{}
	}
	sort.SliceStable(evidence.Chunks, func(i, j int) bool {
		_, mi := matched[evidence.Chunks[i].Jurisdiction]
		_, mj := matched[evidence.Chunks[j].Jurisdiction]
		if mi != mj {
			return mi
		}
		return evidence.Chunks[i].Score > evidence.Chunks[j].Score
	})

	evidence.Chunks = r.truncate(evidence.Chunks, k)
	return evidence, nil
}

// truncate cuts the ranked chunks at k results or the token budget,
// whichever binds first.
func (r *Retriever) truncate(chunks []types.Chunk, k int) []types.Chunk {
	if len(chunks) > k {
		chunks = chunks[:k]
	}
	if r.tokenBudget <= 0 {
		return chunks
	}
	total := 0
	for i, c := range chunks {
		total += r.count(c.Content)
		if total > r.tokenBudget {
			log.Printf("[RETRIEVER] token budget %d reached, keeping %d of %d chunks", r.tokenBudget, i, len(chunks))
			return chunks[:i]
		}
	}
	return chunks
}
