package store

import (
	"context"
	"fmt"
	"log"

	"legalrag/types"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Indexer is the hybrid (vector + keyword) index contract shared by the ask
// path and the ingestion pipeline.
type Indexer interface {
	Query(ctx context.Context, vec []float32, keywords string, jurisdictions []string, k int) ([]types.Chunk, error)
	Upsert(ctx context.Context, c types.Chunk) error
	DeleteByDocID(ctx context.Context, docID string) (int64, error)
	Jurisdictions(ctx context.Context) ([]string, error)
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

// Query runs a hybrid search: cosine similarity on the embedding blended with
// keyword rank over the generated tsvector column. When jurisdictions is
// non-empty the search is restricted to matching chunks.
func (p *PostgresStore) Query(ctx context.Context, vec []float32, keywords string, jurisdictions []string, k int) ([]types.Chunk, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	where := fmt.Sprintf("%s IS NOT NULL", FieldEmbedding)
	args := []any{pgvector.NewVector(vec), keywords}
	if len(jurisdictions) > 0 {
		args = append(args, jurisdictions)
		where += fmt.Sprintf(" AND %s = ANY($3)", FieldJurisdiction)
	}
	args = append(args, k)

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s,
		       (1 - (%s <=> $1)) * 0.7
		       + COALESCE(ts_rank(%s, websearch_to_tsquery('simple', $2)), 0) * 0.3 AS score
		FROM %s
		WHERE %s
		ORDER BY score DESC
		LIMIT $%d
	`,
		FieldID, FieldDocID, FieldJurisdiction, FieldPosition, FieldSection, FieldContent, FieldContentHash,
		FieldEmbedding,
		FieldTSV,
		TableChunks,
		where,
		len(args),
	)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []types.Chunk
	for rows.Next() {
		var chunk types.Chunk
		if err := rows.Scan(
			&chunk.ID,
			&chunk.DocID,
			&chunk.Jurisdiction,
			&chunk.Position,
			&chunk.Section,
			&chunk.Content,
			&chunk.ContentHash,
			&chunk.Score,
		); err != nil {
			return nil, err
		}
		log.Printf("[SEARCH] hit %s %s pos=%d score=%.4f", chunk.Jurisdiction, chunk.ID, chunk.Position, chunk.Score)
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// Upsert writes a chunk by its content-derived id. Re-ingesting identical
// content hits the conflict path and leaves index cardinality unchanged.
func (p *PostgresStore) Upsert(ctx context.Context, c types.Chunk) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s
	`,
		TableChunks,
		FieldID, FieldDocID, FieldJurisdiction, FieldPosition, FieldSection, FieldContent, FieldContentHash, FieldEmbedding,
		FieldID,
		FieldDocID, FieldDocID,
		FieldJurisdiction, FieldJurisdiction,
		FieldPosition, FieldPosition,
		FieldSection, FieldSection,
		FieldContent, FieldContent,
		FieldContentHash, FieldContentHash,
		FieldEmbedding, FieldEmbedding,
	)

	_, err := p.pool.Exec(ctx, query,
		c.ID, c.DocID, c.Jurisdiction, c.Position, c.Section, c.Content, c.ContentHash, pgvector.NewVector(c.Embedding),
	)
	return err
}

// DeleteByDocID removes every chunk of a source document, used both for
// re-ingest overwrite and the deletion trigger. Returns the number of chunks
// removed so callers can tell an unknown document apart from an empty one.
func (p *PostgresStore) DeleteByDocID(ctx context.Context, docID string) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = $1", TableChunks, FieldDocID), docID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Jurisdictions lists the distinct jurisdiction codes present in the index.
func (p *PostgresStore) Jurisdictions(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx,
		fmt.Sprintf("SELECT DISTINCT %s FROM %s ORDER BY %s", FieldJurisdiction, TableChunks, FieldJurisdiction))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (p *PostgresStore) createIndexTables(ctx context.Context, dimensions int) error {
	query := fmt.Sprintf(`
    CREATE EXTENSION IF NOT EXISTS vector;

    CREATE TABLE IF NOT EXISTS %[1]s (
        %[2]s UUID PRIMARY KEY,
        %[3]s TEXT NOT NULL,
        %[4]s CHAR(2) NOT NULL,
        %[5]s INT NOT NULL,
        %[6]s TEXT NOT NULL DEFAULT '',
        %[7]s TEXT NOT NULL,
        %[8]s TEXT NOT NULL,
        %[9]s vector(%[10]d),
        %[11]s tsvector GENERATED ALWAYS AS (to_tsvector('simple', %[7]s)) STORED
    );

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON %[1]s USING ivfflat (%[9]s vector_cosine_ops)
	WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_chunks_tsv ON %[1]s USING gin (%[11]s);
	CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON %[1]s(%[3]s);
	CREATE INDEX IF NOT EXISTS idx_chunks_jurisdiction ON %[1]s(%[4]s);
    `,
		TableChunks,
		FieldID,
		FieldDocID,
		FieldJurisdiction,
		FieldPosition,
		FieldSection,
		FieldContent,
		FieldContentHash,
		FieldEmbedding,
		dimensions,
		FieldTSV,
	)
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context, dimensions int) error {
	return p.createIndexTables(ctx, dimensions)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
