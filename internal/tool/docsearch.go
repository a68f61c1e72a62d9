package tool

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// DocHit is one retrieved chunk surfaced to the model
type DocHit struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Source   string            `json:"source"`
}

// DocSearchResult is the payload of a search_documents call
type DocSearchResult struct {
	Results    []DocHit `json:"results"`
	Sources    []string `json:"sources"`
	TotalFound int      `json:"total_found"`
	Query      string   `json:"query"`
}

// DocSearchTool searches the vectorized document database. The retriever
// handle arrives through the tool context, never through the schema.
type DocSearchTool struct {
	maxResults int
}

// NewDocSearchTool builds the tool with the configured result cap. The cap is
// the model-visible default; the model may still override it per call.
func NewDocSearchTool(maxResults int) *DocSearchTool {
	return &DocSearchTool{maxResults: maxResults}
}

func (t *DocSearchTool) defaultResults() int {
	if t.maxResults > 0 {
		return t.maxResults
	}
	return 5
}

func (t *DocSearchTool) GetName() string {
	return "search_documents"
}

func (t *DocSearchTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "search_documents",
		Description: "Search through the document database for relevant information about ML/AI topics",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "The search query to find relevant document chunks",
			},
			"num_results": {
				Type:        "integer",
				Description: "Number of relevant chunks to retrieve (default: 5)",
			},
		},
		Required: []string{"query"},
	}
}

func (t *DocSearchTool) GetDefaults() map[string]any {
	return map[string]any{"num_results": t.defaultResults()}
}

func (t *DocSearchTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	tc, err := toolContext(ctx)
	if err != nil {
		return nil, err
	}
	if tc.Retriever == nil {
		return nil, fmt.Errorf("retriever instance is required")
	}

	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	numResults := intArg(args, "num_results", t.defaultResults())

	docs, err := tc.Retriever.Retrieve(ctx, query, numResults)
	if err != nil {
		return nil, err
	}

	result := DocSearchResult{
		Results: make([]DocHit, 0, len(docs)),
		Sources: []string{},
		Query:   query,
	}
	seen := make(map[string]bool)
	for _, doc := range docs {
		source := doc.Source()
		if source == "" {
			source = "Unknown"
		}
		result.Results = append(result.Results, DocHit{
			Content:  doc.Content,
			Metadata: doc.Metadata,
			Source:   source,
		})
		if s := doc.Source(); s != "" && !seen[s] {
			seen[s] = true
			result.Sources = append(result.Sources, s)
		}
	}
	result.TotalFound = len(result.Results)

	return result, nil
}
