package grade

import (
	"context"
	"errors"
	"testing"
	"time"

	"legalrag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply string
	err   error
	calls int
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestF1Math(t *testing.T) {
	// 3 draft claims, 2 supported; 4 salient facts, 2 present.
	precision := 2.0 / 3.0
	recall := 2.0 / 4.0

	f1 := F1(precision, recall)
	assert.InDelta(t, 2*precision*recall/(precision+recall), f1, 1e-12)
	assert.InDelta(t, 0.5714285714, f1, 1e-9)

	assert.Zero(t, F1(0, 0))
}

func TestGradeParsesEvaluation(t *testing.T) {
	stub := &stubCompleter{reply: "```json\n" + `{
		"evaluation": {
			"precision": 0.6666666667,
			"recall": 0.5,
			"f1": 0.99,
			"missing_facts": ["permit regime applies", "penalty up to CHF 500"],
			"unsupported_claims": ["knives are always legal"],
			"coverage_by_jurisdiction": {"CH": 0.5}
		},
		"refined_answer": "Revised answer (KL CH §1)."
	}` + "\n```"}

	var ev types.EvidenceSet
	ev.Add(types.NewChunk("CH", "CH", 1, "", "30 days notice required"))

	res, err := New(stub, time.Second).Grade(context.Background(), "q", "draft", ev)
	require.NoError(t, err)

	assert.Equal(t, "Revised answer (KL CH §1).", res.RefinedAnswer)
	assert.Len(t, res.Evaluation.MissingFacts, 2)
	assert.Len(t, res.Evaluation.UnsupportedClaims, 1)
	assert.InDelta(t, 2.0/3.0, res.Evaluation.Precision, 1e-9)
	assert.InDelta(t, 0.5, res.Evaluation.Recall, 1e-9)
	// F1 is recomputed from precision and recall, not trusted from the model.
	assert.InDelta(t, F1(2.0/3.0, 0.5), res.Evaluation.F1, 1e-9)
	assert.Equal(t, 0.5, res.Evaluation.CoverageByJurisdiction["CH"])
}

func TestGradeFailsOnCompletionError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("service down")}

	_, err := New(stub, time.Second).Grade(context.Background(), "q", "draft", types.EvidenceSet{})
	require.Error(t, err)
	assert.Equal(t, 1, stub.calls, "grading is never retried")
}

func TestGradeFailsOnInvalidJSON(t *testing.T) {
	stub := &stubCompleter{reply: "sorry, I cannot comply"}

	_, err := New(stub, time.Second).Grade(context.Background(), "q", "draft", types.EvidenceSet{})
	require.Error(t, err)
}

func TestGradeFailsOnEmptyRefinedAnswer(t *testing.T) {
	stub := &stubCompleter{reply: `{"evaluation": {"precision": 1, "recall": 1}, "refined_answer": ""}`}

	_, err := New(stub, time.Second).Grade(context.Background(), "q", "draft", types.EvidenceSet{})
	require.Error(t, err)
}

type deadlineCompleter struct {
	hadDeadline bool
	deadline    time.Time
}

func (s *deadlineCompleter) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	s.deadline, s.hadDeadline = ctx.Deadline()
	return `{"evaluation": {"precision": 1, "recall": 1}, "refined_answer": "ok"}`, nil
}

func TestGradeBoundsTheCompletionCall(t *testing.T) {
	stub := &deadlineCompleter{}

	_, err := New(stub, 5*time.Second).Grade(context.Background(), "q", "draft", types.EvidenceSet{})
	require.NoError(t, err)

	require.True(t, stub.hadDeadline, "grading call must carry a per-call deadline")
	assert.WithinDuration(t, time.Now().Add(5*time.Second), stub.deadline, time.Second)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
