// Package grade runs the optional second pass: score the draft against the
// evidence and produce a minimally-edited revision.
package grade

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"legalrag/compose"
	"legalrag/model"
	"legalrag/types"
)

const graderSystemPrompt = `You are a grading and refinement agent for legal answers. You receive CONTEXT (cited evidence passages), a QUESTION and a DRAFT_ANSWER.

Step 1 — grade. Extract the salient facts from the CONTEXT, then compute:
- missing_facts: salient facts absent from the draft (array of strings)
- unsupported_claims: draft claims with no supporting passage (array of strings)
- precision: supported claims / total claims in the draft
- recall: salient facts present in the draft / total salient facts
- f1: harmonic mean of precision and recall
- coverage_by_jurisdiction: for each jurisdiction code appearing in the CONTEXT citations, the fraction of that jurisdiction's evidence reflected in the draft (object mapping code to number)

Step 2 — refine. Rewrite the draft into refined_answer: integrate every missing fact with its citation, remove or qualify every unsupported claim, and keep already well-grounded passages verbatim. Make the smallest edit that fixes the flaws; do not restructure or rephrase correct text.

Output a single JSON object with exactly two keys: "evaluation" (precision, recall, f1, missing_facts, unsupported_claims, coverage_by_jurisdiction) and "refined_answer" (the final user-facing text only). No markdown fences, no commentary.`

// Result is the grader's output pair.
type Result struct {
	RefinedAnswer string           `json:"refined_answer"`
	Evaluation    types.Evaluation `json:"evaluation"`
}

type Grader struct {
	completer model.Completer
	timeout   time.Duration
}

func New(completer model.Completer, timeout time.Duration) *Grader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Grader{completer: completer, timeout: timeout}
}

// Grade evaluates the draft against the evidence. It is best-effort and never
// retried: any failure is reported to the caller, which degrades to the
// ungraded draft instead of paying for another completion.
func (g *Grader) Grade(ctx context.Context, question, draft string, evidence types.EvidenceSet) (*Result, error) {
	user := fmt.Sprintf("CONTEXT:\n%s\n\nQUESTION: %s\n\nDRAFT_ANSWER:\n%s",
		contextBlock(evidence), question, draft)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.completer.Complete(callCtx, graderSystemPrompt, user, 0)
	if err != nil {
		return nil, fmt.Errorf("grading call: %w", err)
	}

	var res Result
	if err := json.Unmarshal([]byte(stripFences(raw)), &res); err != nil {
		return nil, fmt.Errorf("grading output was not valid JSON: %w", err)
	}
	if strings.TrimSpace(res.RefinedAnswer) == "" {
		return nil, fmt.Errorf("grading output missing refined_answer")
	}

	if res.Evaluation.CoverageByJurisdiction == nil {
		res.Evaluation.CoverageByJurisdiction = map[string]float64{}
	}
	// Trust the arithmetic over the model.
	res.Evaluation.F1 = F1(res.Evaluation.Precision, res.Evaluation.Recall)

	return &res, nil
}

func contextBlock(evidence types.EvidenceSet) string {
	var sb strings.Builder
	for i, chunk := range evidence.Chunks {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		sb.WriteString(fmt.Sprintf("[%s]\n", compose.Citation(chunk)))
		sb.WriteString(chunk.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// F1 is the harmonic mean of precision and recall.
func F1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// stripFences removes a wrapping markdown code fence, which chat models add
// even when told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
