// Package compose builds the grounded drafting prompt and produces the draft
// answer.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"legalrag/model"
	"legalrag/retrieve"
	"legalrag/types"
)

// ErrFailed marks completion failure after retries are exhausted. A partial
// or garbled draft is never returned.
var ErrFailed = errors.New("composition failed")

const drafterSystemPrompt = `You are an expert legal research assistant. Answer the question using ONLY the passages provided in the context. Every factual statement must end with at least one citation in the exact form given with each passage, e.g. (KL CH §3).

Rules:
- Never state a fact that is not explicitly supported by a cited passage.
- If the context does not cover the asked jurisdiction or question, say so plainly instead of guessing; negative claims ("no permit required") need a passage that states the absence, otherwise write "The supplied sources do not address this" without a citation.
- Keep numeric thresholds, time periods, amounts and categorical qualifiers verbatim, units included.
- Write two sections: "TL;DR Summary" (bullet list, each bullet cited) and "Detailed Explanation" (prose, every sentence cited). No other headings, no tables.`

type Composer struct {
	completer  model.Completer
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
	count      retrieve.TokenCounter
}

func New(completer model.Completer, maxRetries int, retryDelay, timeout time.Duration, count retrieve.TokenCounter) *Composer {
	if count == nil {
		count = retrieve.WordCounter
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Composer{
		completer:  completer,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		timeout:    timeout,
		count:      count,
	}
}

// Compose drafts an answer grounded in the evidence set. Temperature is
// fixed at 0 so identical (question, evidence) pairs reproduce the same
// draft, which also makes the retries idempotent.
func (c *Composer) Compose(ctx context.Context, question string, evidence types.EvidenceSet) (string, error) {
	prompt := BuildPrompt(question, evidence)
	log.Printf("[COMPOSER] prompt size: %d tokens, %d evidence chunks", c.count(prompt), len(evidence.Chunks))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(model.Backoff(c.retryDelay, attempt)):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrFailed, ctx.Err())
			}
		}

		// Per-call deadline: a hung completion burns one attempt, not the
		// whole request budget.
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		draft, err := c.completer.Complete(callCtx, drafterSystemPrompt, prompt, 0)
		cancel()
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			log.Printf("[COMPOSER] attempt %d failed: %v", attempt+1, err)
			continue
		}
		return strings.TrimSpace(draft), nil
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrFailed, c.maxRetries+1, lastErr)
}

// BuildPrompt lays out each evidence chunk under its citation marker,
// separated the way the drafter prompt expects.
func BuildPrompt(question string, evidence types.EvidenceSet) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	for i, chunk := range evidence.Chunks {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		sb.WriteString(fmt.Sprintf("[cite as: %s]\n", Citation(chunk)))
		sb.WriteString(chunk.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\nAnswer:")
	return sb.String()
}

// Citation is the stable per-chunk citation marker referencing the source
// document and position.
func Citation(c types.Chunk) string {
	return fmt.Sprintf("(KL %s §%d)", c.Jurisdiction, c.Position)
}
