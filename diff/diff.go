// Package diff renders the structural difference between the draft and
// refined answers. The primary strategy is markup-aware: tags are atomic and
// never split across an edit boundary. Inputs without markup take a plain
// text diff; a degenerate structural result falls back to a phrase
// highlighter.
package diff

import (
	"io"
	"regexp"
	"strings"

	diffmatchpatch "github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/net/html"
)

type Op int

const (
	Unchanged Op = iota
	Inserted
	Deleted
)

// Segment carries the literal text of one diff region. Concatenating the
// Unchanged+Deleted segments reproduces the old text exactly; the
// Unchanged+Inserted segments reproduce the new text exactly.
type Segment struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Opposing inputs above this many atoms make the quadratic alignment too
// expensive; such pairs take the plain text path instead.
const maxAtoms = 4000

// Render diffs draft against refined, structurally when either side carries
// markup.
func Render(draft, refined string) []Segment {
	if hasMarkup(draft) || hasMarkup(refined) {
		a := atomize(draft)
		b := atomize(refined)
		if len(a) <= maxAtoms && len(b) <= maxAtoms {
			return alignAtoms(a, b)
		}
	}
	return textDiff(draft, refined)
}

// textDiff is the markup-unaware fallback, built on diff-match-patch.
func textDiff(draft, refined string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(draft, refined, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	segs := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			segs = append(segs, Segment{Op: Unchanged, Text: d.Text})
		case diffmatchpatch.DiffInsert:
			segs = append(segs, Segment{Op: Inserted, Text: d.Text})
		case diffmatchpatch.DiffDelete:
			segs = append(segs, Segment{Op: Deleted, Text: d.Text})
		}
	}
	return segs
}

var tagRe = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

func hasMarkup(s string) bool {
	return tagRe.MatchString(s)
}

// wordRe splits text into words with their trailing whitespace attached, so
// that concatenating atoms reproduces the input byte for byte.
var wordRe = regexp.MustCompile(`\S+\s*|\s+`)

// atomize breaks markup into atoms: each tag (or comment/doctype) is one
// atom, text between tags splits into word atoms. Raw token bytes are used
// throughout, so the atom sequence concatenates back to the input exactly.
func atomize(s string) []string {
	var atoms []string
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				return atoms
			}
			// Unparseable markup: treat the remainder as plain text words.
			raw := string(z.Raw())
			if raw != "" {
				atoms = append(atoms, wordRe.FindAllString(raw, -1)...)
			}
			return atoms
		}
		raw := string(z.Raw())
		if tt == html.TextToken {
			atoms = append(atoms, wordRe.FindAllString(raw, -1)...)
		} else {
			atoms = append(atoms, raw)
		}
	}
}

// alignAtoms runs a longest-common-subsequence alignment over the atom
// sequences and folds the edit script into merged segments.
func alignAtoms(a, b []string) []Segment {
	n, m := len(a), len(b)
	// lcs[i][j] = LCS length of a[i:], b[j:]
	lcs := make([][]int32, n+1)
	for i := range lcs {
		lcs[i] = make([]int32, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var segs []Segment
	appendSeg := func(op Op, text string) {
		if text == "" {
			return
		}
		if len(segs) > 0 && segs[len(segs)-1].Op == op {
			segs[len(segs)-1].Text += text
			return
		}
		segs = append(segs, Segment{Op: op, Text: text})
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			appendSeg(Unchanged, a[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			appendSeg(Deleted, a[i])
			i++
		default:
			appendSeg(Inserted, b[j])
			j++
		}
	}
	for ; i < n; i++ {
		appendSeg(Deleted, a[i])
	}
	for ; j < m; j++ {
		appendSeg(Inserted, b[j])
	}
	return segs
}

// Old reconstructs the draft side of a segment sequence.
func Old(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		if s.Op != Inserted {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

// New reconstructs the refined side of a segment sequence.
func New(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		if s.Op != Deleted {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}
