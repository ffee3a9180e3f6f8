package compose

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"legalrag/retrieve"
	"legalrag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter deterministically folds its inputs into the reply, so equal
// (question, evidence) pairs at temperature 0 produce equal drafts.
type stubCompleter struct {
	calls    int
	failures int
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	s.calls++
	if s.calls <= s.failures {
		return "", errors.New("completion timeout")
	}
	return fmt.Sprintf("draft(t=%.1f): %s", temperature, user), nil
}

func evidenceCH() types.EvidenceSet {
	var ev types.EvidenceSet
	c := types.NewChunk("CH", "CH", 1, "", "30 days notice required")
	ev.Add(c)
	return ev
}

func TestComposeDeterministic(t *testing.T) {
	question := "What is the notice period for termination in CH?"

	a, err := New(&stubCompleter{}, 3, time.Millisecond, time.Second, retrieve.WordCounter).
		Compose(context.Background(), question, evidenceCH())
	require.NoError(t, err)

	b, err := New(&stubCompleter{}, 3, time.Millisecond, time.Second, retrieve.WordCounter).
		Compose(context.Background(), question, evidenceCH())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPromptCarriesCitationMarkers(t *testing.T) {
	var ev types.EvidenceSet
	ev.Add(types.NewChunk("CH", "CH", 1, "", "30 days notice required"))
	ev.Add(types.NewChunk("FR", "FR", 4, "", "60 days notice"))

	prompt := BuildPrompt("notice period?", ev)
	assert.Contains(t, prompt, "(KL CH §1)")
	assert.Contains(t, prompt, "(KL FR §4)")
	assert.Contains(t, prompt, "30 days notice required")
	assert.Contains(t, prompt, "Question: notice period?")
}

func TestComposeRetriesThenSucceeds(t *testing.T) {
	stub := &stubCompleter{failures: 2}
	c := New(stub, 3, time.Millisecond, time.Second, retrieve.WordCounter)

	draft, err := c.Compose(context.Background(), "q", evidenceCH())
	require.NoError(t, err)
	assert.NotEmpty(t, draft)
	assert.Equal(t, 3, stub.calls)
}

func TestComposeExhaustionFails(t *testing.T) {
	stub := &stubCompleter{failures: 100}
	c := New(stub, 2, time.Millisecond, time.Second, retrieve.WordCounter)

	_, err := c.Compose(context.Background(), "q", evidenceCH())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailed)
	assert.Equal(t, 3, stub.calls, "maxRetries=2 means three attempts")
}

// deadlineCompleter records whether each call carried its own deadline.
type deadlineCompleter struct {
	hadDeadline bool
	deadline    time.Time
}

func (s *deadlineCompleter) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	s.deadline, s.hadDeadline = ctx.Deadline()
	return "draft", nil
}

func TestComposeBoundsEachCompletionCall(t *testing.T) {
	stub := &deadlineCompleter{}
	c := New(stub, 0, time.Millisecond, 5*time.Second, retrieve.WordCounter)

	_, err := c.Compose(context.Background(), "q", evidenceCH())
	require.NoError(t, err)

	require.True(t, stub.hadDeadline, "completion call must carry a per-call deadline")
	assert.WithinDuration(t, time.Now().Add(5*time.Second), stub.deadline, time.Second)
}

func TestComposeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubCompleter{failures: 100}
	c := New(stub, 3, time.Second, time.Second, retrieve.WordCounter)

	_, err := c.Compose(ctx, "q", evidenceCH())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailed)
	assert.LessOrEqual(t, stub.calls, 1, "no retries after cancellation")
}
