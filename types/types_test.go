package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkIDIdempotent(t *testing.T) {
	a := ChunkID("30 days notice required")
	b := ChunkID("30 days notice required")
	require.Equal(t, a, b)

	// Whitespace variations normalize to the same id.
	c := ChunkID("  30 days\nnotice\trequired ")
	assert.Equal(t, a, c)

	d := ChunkID("60 days notice")
	assert.NotEqual(t, a, d)
}

func TestNewChunkDerivesIDAndHash(t *testing.T) {
	one := NewChunk("CH", "CH", 0, "", "30 days notice required")
	two := NewChunk("CH", "CH", 3, "termination", "30 days notice required")

	assert.Equal(t, one.ID, two.ID)
	assert.Equal(t, one.ContentHash, two.ContentHash)
	assert.NotEmpty(t, one.ContentHash)
}

func TestEvidenceSetDedupesByID(t *testing.T) {
	var ev EvidenceSet

	low := NewChunk("CH", "CH", 0, "", "30 days notice required")
	low.Score = 0.4
	high := NewChunk("CH", "CH", 0, "", "30 days notice required")
	high.Score = 0.9
	other := NewChunk("FR", "FR", 0, "", "60 days notice")
	other.Score = 0.5

	ev.Add(low)
	ev.Add(high)
	ev.Add(other)

	require.Len(t, ev.Chunks, 2)
	assert.Equal(t, 0.9, ev.Chunks[0].Score, "higher-scoring duplicate wins")
	assert.Equal(t, []string{"CH", "FR"}, ev.Jurisdictions())
}

func TestEvidenceSetEmpty(t *testing.T) {
	var ev EvidenceSet
	assert.True(t, ev.Empty())
	ev.Add(NewChunk("CH", "CH", 0, "", "text"))
	assert.False(t, ev.Empty())
}
