package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertRoundTrip(t *testing.T, draft, refined string) {
	t.Helper()
	segs := Render(draft, refined)
	assert.Equal(t, draft, Old(segs), "old side must reconstruct the draft")
	assert.Equal(t, refined, New(segs), "new side must reconstruct the refined text")
}

func TestPlainTextRoundTrip(t *testing.T) {
	assertRoundTrip(t,
		"The notice period is 30 days in Switzerland.",
		"The notice period is 30 days in Switzerland, and 60 days in France.")
}

func TestMarkupRoundTrip(t *testing.T) {
	assertRoundTrip(t,
		"<p>The notice period is <strong>30 days</strong>.</p>",
		"<p>The notice period is <strong>30 days</strong> for employees.</p><p>Employers differ.</p>")
}

func TestIdenticalInputs(t *testing.T) {
	segs := Render("same text", "same text")
	require.Len(t, segs, 1)
	assert.Equal(t, Unchanged, segs[0].Op)
}

func TestEmptyInputs(t *testing.T) {
	assertRoundTrip(t, "", "new content")
	assertRoundTrip(t, "old content", "")
	assertRoundTrip(t, "", "")
}

func TestTagsNeverSplit(t *testing.T) {
	draft := `<p class="x">old text here</p>`
	refined := `<p class="y">new text here</p>`

	for _, seg := range Render(draft, refined) {
		opens := strings.Count(seg.Text, "<")
		closes := strings.Count(seg.Text, ">")
		assert.Equal(t, opens, closes, "segment %q splits a tag", seg.Text)
	}
	assertRoundTrip(t, draft, refined)
}

func TestRenderHTMLMarksEdits(t *testing.T) {
	out := RenderHTML(
		"The period is thirty days.",
		"The period is two months.")

	assert.Contains(t, out, "<ins>")
	assert.Contains(t, out, "<del>")
	assert.Contains(t, out, "months")
}

func TestSanitizationStripsScript(t *testing.T) {
	out := RenderHTML(
		"safe text",
		`safe text<script>alert("xss")</script> more`)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "alert(")
}

func TestSanitizationStripsEventHandlers(t *testing.T) {
	out := RenderHTML(
		`<p>before</p>`,
		`<p onclick="steal()">before</p><img src=x onerror="steal()">`)

	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "onerror")
	assert.NotContains(t, out, "<img")
}

func TestSanitizeAllowList(t *testing.T) {
	in := `<ins>added</ins><del>gone</del><mark>hot</mark><iframe src="evil"></iframe><a href="x">link</a>`
	out := Sanitize(in)

	assert.Contains(t, out, "<ins>added</ins>")
	assert.Contains(t, out, "<del>gone</del>")
	assert.Contains(t, out, "<mark>hot</mark>")
	assert.NotContains(t, out, "iframe")
	assert.NotContains(t, out, "<a ")
}

func TestHighlightFallback(t *testing.T) {
	// Identical atom sets in different order can yield a deletion-only or
	// degenerate structural diff; the highlighter still flags the change.
	draft := "<p>Alpha beta. Gamma delta.</p>"
	refined := "<p>Alpha beta. Gamma epsilon.</p>"

	out := RenderHTML(draft, refined)
	assert.True(t,
		strings.Contains(out, "<ins>") || strings.Contains(out, "<mark>"),
		"changed input must carry a visible marker, got %q", out)
}

func TestHighlightMarksNewSentences(t *testing.T) {
	out := highlight(
		"The period is 30 days.",
		"The period is 30 days. A permit is required.")

	assert.Contains(t, out, "<mark>")
	assert.Contains(t, out, "A permit is required.")
	assert.NotContains(t, strings.Split(out, "<mark>")[0], "permit")
}
