package retriever

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Embedder turns text into vectors. All texts in one call share a model and
// therefore a dimension.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint. Ollama and
// most local inference servers speak this shape too.
type OpenAIEmbedder struct {
	client *resty.Client
	url    string
	model  string
}

func NewOpenAIEmbedder(url, apiKey, model string, timeout time.Duration) *OpenAIEmbedder {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &OpenAIEmbedder{client: client, url: url, model: model}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var decoded embeddingResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(embeddingRequest{Model: e.model, Input: texts}).
		SetResult(&decoded).
		SetError(&decoded).
		Post(e.url)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.IsError() {
		if decoded.Error != nil {
			return nil, fmt.Errorf("embedding request failed: %s", decoded.Error.Message)
		}
		return nil, fmt.Errorf("embedding request failed: status %d", resp.StatusCode())
	}
	if len(decoded.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(decoded.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range decoded.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// HashEmbedder is a deterministic, offline embedder. Tokens hash into a fixed
// number of buckets and the vector is L2-normalized, so identical texts always
// map to identical unit vectors. Useful for tests and for running without an
// embedding endpoint.
type HashEmbedder struct {
	Dim int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 256
	}
	return &HashEmbedder{Dim: dim}
}

func (e *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embedOne(text)
	}
	return vectors, nil
}

func (e *HashEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.Dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()[]")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(e.Dim)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
