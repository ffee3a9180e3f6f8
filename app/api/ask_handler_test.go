package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"legalrag/compose"
	"legalrag/detect"
	"legalrag/grade"
	"legalrag/retrieve"
	"legalrag/types"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	chunks            []types.Chunk
	queries           int
	jurisdictionCalls int
	failQuery         bool
}

func (f *fakeIndex) Query(ctx context.Context, vec []float32, keywords string, jurisdictions []string, k int) ([]types.Chunk, error) {
	f.queries++
	if f.failQuery {
		return nil, errors.New("connection refused")
	}
	var out []types.Chunk
	for _, c := range f.chunks {
		if len(jurisdictions) == 0 {
			out = append(out, c)
			continue
		}
		for _, j := range jurisdictions {
			if c.Jurisdiction == j {
				out = append(out, c)
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (f *fakeIndex) Upsert(ctx context.Context, c types.Chunk) error { return nil }

func (f *fakeIndex) DeleteByDocID(ctx context.Context, docID string) (int64, error) {
	var kept []types.Chunk
	var removed int64
	for _, c := range f.chunks {
		if c.DocID == docID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	f.chunks = kept
	return removed, nil
}

func (f *fakeIndex) Jurisdictions(ctx context.Context) ([]string, error) {
	f.jurisdictionCalls++
	seen := map[string]struct{}{}
	var codes []string
	for _, c := range f.chunks {
		if _, ok := seen[c.Jurisdiction]; !ok {
			seen[c.Jurisdiction] = struct{}{}
			codes = append(codes, c.Jurisdiction)
		}
	}
	return codes, nil
}

// echoCompleter folds the user prompt into the reply, so the draft carries
// exactly the evidence and citation markers that were prompted.
type echoCompleter struct {
	calls int
	fail  bool
}

func (s *echoCompleter) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	s.calls++
	if s.fail {
		return "", errors.New("completion timeout")
	}
	return "Based on the provided context: " + user, nil
}

type fixedCompleter struct {
	calls int
	reply string
	fail  bool
}

func (s *fixedCompleter) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	s.calls++
	if s.fail {
		return "", errors.New("grader down")
	}
	return s.reply, nil
}

type fixture struct {
	app      *fiber.App
	embedder *fakeEmbedder
	index    *fakeIndex
	drafter  *echoCompleter
	grader   *fixedCompleter
}

func newFixture(index *fakeIndex) *fixture {
	f := &fixture{
		embedder: &fakeEmbedder{},
		index:    index,
		drafter:  &echoCompleter{},
		grader:   &fixedCompleter{reply: "{}"},
	}

	retriever := retrieve.New(f.embedder, f.index, 1, 0, retrieve.WordCounter)
	composer := compose.New(f.drafter, 1, time.Millisecond, time.Second, retrieve.WordCounter)
	grader := grade.New(f.grader, time.Second)
	handler := NewAskHandler(detect.NewAliasDetector(), retriever, composer, grader, f.index, 5, 5*time.Second)
	files := NewFileHandler(f.index, "")

	f.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	f.app.Get("/api/v1/ask", handler.HandleAsk)
	f.app.Post("/api/v1/ask", handler.HandleAsk)
	f.app.Delete("/api/v1/documents/:code", files.HandleDelete)
	return f
}

func chunk(jurisdiction, content string, position int, score float64) types.Chunk {
	c := types.NewChunk(jurisdiction, jurisdiction, position, "", content)
	c.Score = score
	return c
}

func noticeIndex() *fakeIndex {
	return &fakeIndex{chunks: []types.Chunk{
		chunk("CH", "30 days notice required", 1, 0.9),
		chunk("FR", "60 days notice", 1, 0.95),
	}}
}

func TestLivenessSkipsCollaborators(t *testing.T) {
	f := newFixture(noticeIndex())

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ask?ping=1", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))

	assert.Zero(t, f.embedder.calls)
	assert.Zero(t, f.index.queries)
	assert.Zero(t, f.index.jurisdictionCalls)
	assert.Zero(t, f.drafter.calls)
	assert.Zero(t, f.grader.calls)
}

func TestMissingQuestionRejected(t *testing.T) {
	f := newFixture(noticeIndex())

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ask", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "malformed_input")
	assert.Zero(t, f.index.jurisdictionCalls, "rejected before any collaborator call")
}

func TestWhitespaceQuestionRejected(t *testing.T) {
	f := newFixture(noticeIndex())

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ask?question=%20%20%20", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "malformed_input")
}

func TestRetrievalOutageReturns503(t *testing.T) {
	index := noticeIndex()
	index.failQuery = true
	f := newFixture(index)

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ask?question=notice+period+in+CH", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "retrieval_unavailable")
	assert.Zero(t, f.drafter.calls, "no answer is composed without evidence")
}

func TestCompositionOutageReturns502(t *testing.T) {
	f := newFixture(noticeIndex())
	f.drafter.fail = true

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ask?question=notice+period+in+CH", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "composition_failed")
}

func TestAskScopedToDetectedJurisdiction(t *testing.T) {
	f := newFixture(noticeIndex())

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet,
		"/api/v1/ask?question=What+is+the+notice+period+for+termination+in+CH%3F", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out types.AskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	assert.Equal(t, []string{"CH"}, out.CountryDetection.ISOCodes)
	assert.Contains(t, out.CountryHeader, "(CH)")
	assert.Contains(t, out.CountryHeader, "✅")

	assert.Contains(t, out.DraftAnswer, "30 days notice required")
	assert.Contains(t, out.DraftAnswer, "(KL CH §1)")
	assert.NotContains(t, out.DraftAnswer, "60 days", "FR evidence must not leak into a CH-scoped answer")

	assert.Equal(t, out.DraftAnswer, out.RefinedAnswer, "no grading requested")
	assert.Nil(t, out.Evaluation)
}

func TestEmptyEvidenceGetsNoDocumentsMessage(t *testing.T) {
	// Even the widened fallback query has nothing to offer here.
	f := newFixture(&fakeIndex{})

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ask?question=rules+in+IT%3F", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out types.AskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	assert.Contains(t, out.DraftAnswer, "No documents found for the specified countries: IT")
	assert.Zero(t, f.drafter.calls)
}

func TestGradingRefinesTheDraft(t *testing.T) {
	f := newFixture(noticeIndex())
	f.grader.reply = `{
		"evaluation": {"precision": 1, "recall": 0.5, "missing_facts": ["exception for fixed-term contracts"]},
		"refined_answer": "The notice period is 30 days (KL CH §1), except for fixed-term contracts."
	}`

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet,
		"/api/v1/ask?question=notice+period+in+CH%3F&grade=true", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out types.AskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	assert.Equal(t, 1, f.grader.calls)
	require.NotNil(t, out.Evaluation)
	assert.InDelta(t, 1.0, out.Evaluation.Precision, 1e-9)
	assert.InDelta(t, 0.5, out.Evaluation.Recall, 1e-9)
	assert.InDelta(t, grade.F1(1.0, 0.5), out.Evaluation.F1, 1e-9)
	assert.Contains(t, out.RefinedAnswer, "fixed-term contracts")
	assert.NotEqual(t, out.DraftAnswer, out.RefinedAnswer)
}

func TestGradingFailureDegradesToDraft(t *testing.T) {
	f := newFixture(noticeIndex())
	f.grader.fail = true

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet,
		"/api/v1/ask?question=notice+period+in+CH%3F&grade=true", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out types.AskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	assert.Equal(t, 1, f.grader.calls, "grading is attempted once, never retried")
	assert.Equal(t, out.DraftAnswer, out.RefinedAnswer)
	assert.Nil(t, out.Evaluation)
	assert.NotEmpty(t, out.DraftAnswer)
}

func TestDeleteRemovesDocumentChunks(t *testing.T) {
	f := newFixture(noticeIndex())

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/v1/documents/CH", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"deleted"`)

	require.Len(t, f.index.chunks, 1)
	assert.Equal(t, "FR", f.index.chunks[0].DocID, "only the CH document is removed")
}

func TestDeleteUnknownDocumentReturns404(t *testing.T) {
	f := newFixture(noticeIndex())

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/v1/documents/IT", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "not found")
	assert.Len(t, f.index.chunks, 2, "nothing is removed")
}

func TestPostBodyAccepted(t *testing.T) {
	f := newFixture(noticeIndex())

	payload := `{"question": "notice period in CH?"}`
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/ask", strings.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
