package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pkdindustries/scry/internal/core"
)

// PGRetriever stores embedded chunks in a pgvector table and ranks by cosine
// distance on the server
type PGRetriever struct {
	pool     *pgxpool.Pool
	embedder Embedder
	dim      int
}

// NewPGRetriever connects to postgres and ensures the documents table exists.
// The vector dimension is learned from the embedder with a probe call.
func NewPGRetriever(ctx context.Context, url string, embedder Embedder) (*PGRetriever, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	probe, err := embedder.Embed(ctx, []string{"dimension probe"})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("probe embedding dimension: %w", err)
	}
	dim := len(probe[0])

	r := &PGRetriever{pool: pool, embedder: embedder, dim: dim}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

var _ core.Retriever = (*PGRetriever)(nil)

func (r *PGRetriever) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding VECTOR(%d) NOT NULL
		)`, r.dim),
	}
	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure documents schema: %w", err)
		}
	}
	return nil
}

func (r *PGRetriever) Close() {
	r.pool.Close()
}

// Add embeds and inserts documents
func (r *PGRetriever) Add(ctx context.Context, docs []core.Document) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	for i, d := range docs {
		metadata, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		_, err = r.pool.Exec(ctx,
			`INSERT INTO documents (id, content, metadata, embedding) VALUES ($1, $2, $3, $4::vector)`,
			uuid.New(), d.Content, metadata, vectorLiteral(vectors[i]))
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
	}
	return nil
}

func (r *PGRetriever) Retrieve(ctx context.Context, query string, k int) ([]core.Document, error) {
	if k <= 0 {
		return nil, nil
	}
	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT content, metadata FROM documents ORDER BY embedding <=> $1::vector LIMIT $2`,
		vectorLiteral(vectors[0]), k)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		var content string
		var raw []byte
		if err := rows.Scan(&content, &raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		metadata := make(map[string]string)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		docs = append(docs, core.Document{Content: content, Metadata: metadata})
	}
	return docs, rows.Err()
}

// IngestDir loads and inserts every .txt and .md file under dir
func (r *PGRetriever) IngestDir(ctx context.Context, dir string) (int, error) {
	docs, err := LoadDir(dir)
	if err != nil {
		return 0, err
	}
	if err := r.Add(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// vectorLiteral renders a vector in pgvector's text format
func vectorLiteral(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
