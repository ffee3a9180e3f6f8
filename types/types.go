package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// chunkNamespace seeds content-derived chunk ids. Identical normalized
// content always maps to the same id, so re-ingesting a document is an
// idempotent upsert rather than a duplicate insert.
var chunkNamespace = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")

// Chunk is the smallest retrievable unit: a span of document text plus its
// embedding and jurisdiction tag.
type Chunk struct {
	ID           uuid.UUID
	DocID        string // source document identity, a two-letter jurisdiction code for this corpus
	Jurisdiction string // ISO 3166-1 alpha-2
	Position     int
	Section      string
	Content      string
	ContentHash  string
	Embedding    []float32
	Score        float64 // relevance of this chunk for the current query
}

// NormalizeContent collapses whitespace runs to single spaces and trims.
func NormalizeContent(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ChunkID derives a stable id from normalized chunk content.
func ChunkID(content string) uuid.UUID {
	return uuid.NewSHA1(chunkNamespace, []byte(NormalizeContent(content)))
}

// HashContent returns the hex content hash stored alongside a chunk for
// overwrite detection.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(NormalizeContent(content)))
	return hex.EncodeToString(sum[:])
}

// NewChunk builds a chunk with its derived id and content hash filled in.
func NewChunk(docID, jurisdiction string, position int, section, content string) Chunk {
	return Chunk{
		ID:           ChunkID(content),
		DocID:        docID,
		Jurisdiction: jurisdiction,
		Position:     position,
		Section:      section,
		Content:      content,
		ContentHash:  HashContent(content),
	}
}

// EvidenceSet is the ordered, deduplicated set of chunks selected for one
// question. It lives for a single request.
type EvidenceSet struct {
	Chunks []Chunk
}

// Add inserts a chunk unless one with the same id is already present; on a
// duplicate the higher-scoring occurrence wins in place.
func (e *EvidenceSet) Add(c Chunk) {
	for i := range e.Chunks {
		if e.Chunks[i].ID == c.ID {
			if c.Score > e.Chunks[i].Score {
				e.Chunks[i].Score = c.Score
			}
			return
		}
	}
	e.Chunks = append(e.Chunks, c)
}

// Jurisdictions returns the distinct jurisdiction codes present, in
// first-seen order.
func (e *EvidenceSet) Jurisdictions() []string {
	seen := make(map[string]struct{}, len(e.Chunks))
	var codes []string
	for _, c := range e.Chunks {
		if _, ok := seen[c.Jurisdiction]; !ok {
			seen[c.Jurisdiction] = struct{}{}
			codes = append(codes, c.Jurisdiction)
		}
	}
	return codes
}

func (e *EvidenceSet) Empty() bool {
	return len(e.Chunks) == 0
}

// CountryDetection is the per-request result of jurisdiction detection.
type CountryDetection struct {
	ISOCodes  []string `json:"iso_codes"`
	Available []string `json:"available"`
	Summary   string   `json:"summary"`
}

// Evaluation holds the grader's coverage metrics for a draft answer.
type Evaluation struct {
	Precision              float64            `json:"precision"`
	Recall                 float64            `json:"recall"`
	F1                     float64            `json:"f1"`
	MissingFacts           []string           `json:"missing_facts"`
	UnsupportedClaims      []string           `json:"unsupported_claims"`
	CoverageByJurisdiction map[string]float64 `json:"coverage_by_jurisdiction"`
}

// Document groups the chunks produced from one uploaded source file.
type Document struct {
	DocID        string // two-letter jurisdiction code taken from the filename
	Jurisdiction string
	Title        string
	SourcePath   string
	Chunks       []Chunk
	UpdatedAt    time.Time
}
