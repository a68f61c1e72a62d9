// Package retriever provides semantic document search over an embedded
// corpus. Two backends exist: an in-memory cosine store and a pgvector table.
package retriever

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"pkdindustries/scry/internal/core"
)

const maxChunkSize = 1200

type scoredDoc struct {
	doc    core.Document
	vector []float32
	score  float64
}

// MemoryRetriever keeps embedded chunks in process memory
type MemoryRetriever struct {
	mu       sync.RWMutex
	embedder Embedder
	docs     []scoredDoc
}

func NewMemoryRetriever(embedder Embedder) *MemoryRetriever {
	return &MemoryRetriever{embedder: embedder}
}

var _ core.Retriever = (*MemoryRetriever)(nil)

// Add embeds and stores documents
func (r *MemoryRetriever) Add(ctx context.Context, docs []core.Document) error {
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

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range docs {
		r.docs = append(r.docs, scoredDoc{doc: d, vector: vectors[i]})
	}
	return nil
}

func (r *MemoryRetriever) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

func (r *MemoryRetriever) Retrieve(ctx context.Context, query string, k int) ([]core.Document, error) {
	if k <= 0 {
		return nil, nil
	}
	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := vectors[0]

	r.mu.RLock()
	scored := make([]scoredDoc, len(r.docs))
	copy(scored, r.docs)
	r.mu.RUnlock()

	for i := range scored {
		scored[i].score = cosineSimilarity(queryVec, scored[i].vector)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if k > len(scored) {
		k = len(scored)
	}
	results := make([]core.Document, k)
	for i := 0; i < k; i++ {
		results[i] = scored[i].doc
	}
	return results, nil
}

// IngestDir loads every .txt and .md file under dir, chunks it, and adds the
// chunks. Returns the number of chunks ingested.
func (r *MemoryRetriever) IngestDir(ctx context.Context, dir string) (int, error) {
	docs, err := LoadDir(dir)
	if err != nil {
		return 0, err
	}
	if err := r.Add(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// LoadDir reads .txt and .md files under dir into chunked documents tagged
// with their source filename
func LoadDir(dir string) ([]core.Document, error) {
	var docs []core.Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		source := filepath.Base(path)
		for _, chunk := range ChunkText(string(data)) {
			docs = append(docs, core.Document{
				Content:  chunk,
				Metadata: map[string]string{"source": source},
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load documents from %s: %w", dir, err)
	}
	return docs, nil
}

// ChunkText splits text on blank lines and merges adjacent paragraphs until a
// chunk approaches maxChunkSize. Oversized single paragraphs pass through
// whole.
func ChunkText(text string) []string {
	paragraphs := strings.Split(text, "\n\n")
	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(p) > maxChunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
