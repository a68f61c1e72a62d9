package testing

import (
	"context"
	"time"

	"pkdindustries/scry/internal/config"
	"pkdindustries/scry/internal/core"
	"pkdindustries/scry/internal/store"
	"pkdindustries/scry/internal/tool"
)

// MockRetriever implements core.Retriever with fixed documents
type MockRetriever struct {
	Docs []core.Document
	Err  error
	// Queries records what was searched, for assertions
	Queries []string
}

var _ core.Retriever = (*MockRetriever)(nil)

func (m *MockRetriever) Retrieve(_ context.Context, query string, k int) ([]core.Document, error) {
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	if k > len(m.Docs) {
		k = len(m.Docs)
	}
	return m.Docs[:k], nil
}

// NewMockSystem builds a System with a memory store, an empty tool registry,
// an empty retriever, and the given scripted model
func NewMockSystem(mockLLM *MockLLM) *core.SystemImpl {
	return &core.SystemImpl{
		Tools:     tool.NewRegistry(),
		Store:     store.NewMemoryStore(),
		Retriever: &MockRetriever{},
		Client:    mockLLM,
	}
}

// DefaultTestConfig returns a Configuration with the policy defaults tests
// rely on
func DefaultTestConfig() *config.Configuration {
	return &config.Configuration{
		Assistant: &config.AssistantConfig{
			Prompt:            "you are a test assistant.",
			MaxToolIterations: 3,
			ArtifactDir:       "",
		},
		Model: &config.ModelConfig{
			Model:       "openai/gpt-4o-mini",
			MaxTokens:   512,
			Temperature: 0.7,
			TopP:        1.0,
		},
		API: &config.APIConfig{
			Timeout: time.Minute,
		},
		Store: &config.StoreConfig{
			Backend: "memory",
		},
		Search: &config.SearchConfig{
			MaxResults:     5,
			WebSourceLimit: 3,
		},
	}
}
