package diff

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the fixed allow-list for rendered diff output. The diff wraps
// model-generated and user-adjacent text, so everything outside the edit
// markers and basic text formatting is stripped. Script injection through a
// crafted draft or refined answer must be impossible.
var policy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("ins", "del", "mark")
	p.AllowElements("p", "br", "ul", "ol", "li", "strong", "em", "b", "i",
		"h1", "h2", "h3", "h4", "blockquote", "code", "pre")
	p.AllowAttrs("class").OnElements("ins", "del", "mark")
	return p
}()

// Sanitize strips everything outside the rendering allow-list.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// RenderHTML produces the sanitized display markup for a draft/refined pair.
// Insertions render as <ins>, deletions as <del>. If the structural diff
// degenerates (changed inputs but no insertion markers), the pattern
// highlighter flags likely-changed phrases with <mark> instead.
func RenderHTML(draft, refined string) string {
	segs := Render(draft, refined)

	if draft != refined && !hasInsertions(segs) {
		return Sanitize(highlight(draft, refined))
	}

	var sb strings.Builder
	for _, seg := range segs {
		switch seg.Op {
		case Inserted:
			sb.WriteString("<ins>")
			sb.WriteString(seg.Text)
			sb.WriteString("</ins>")
		case Deleted:
			sb.WriteString("<del>")
			sb.WriteString(seg.Text)
			sb.WriteString("</del>")
		default:
			sb.WriteString(seg.Text)
		}
	}
	return Sanitize(sb.String())
}

func hasInsertions(segs []Segment) bool {
	for _, s := range segs {
		if s.Op == Inserted {
			return true
		}
	}
	return false
}

var sentenceRe = regexp.MustCompile(`[^.!?\n]+[.!?]?\s*`)

// highlight is the last-resort strategy: mark refined sentences that do not
// appear in the draft.
func highlight(draft, refined string) string {
	normalizedDraft := normalizeSpace(draft)

	var sb strings.Builder
	for _, sentence := range sentenceRe.FindAllString(refined, -1) {
		trimmed := normalizeSpace(sentence)
		if trimmed != "" && !strings.Contains(normalizedDraft, trimmed) {
			sb.WriteString("<mark>")
			sb.WriteString(sentence)
			sb.WriteString("</mark>")
			continue
		}
		sb.WriteString(sentence)
	}
	return sb.String()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
