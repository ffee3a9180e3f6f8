package store

// Index field identifiers. The loader's upsert side and the query side must
// agree on these exactly, so both build their SQL from this one block.
const (
	TableChunks = "chunks"

	FieldID           = "id"
	FieldDocID        = "doc_id"
	FieldJurisdiction = "jurisdiction"
	FieldPosition     = "position"
	FieldSection      = "section"
	FieldContent      = "content"
	FieldContentHash  = "content_hash"
	FieldEmbedding    = "embedding"
	FieldTSV          = "tsv"
)
