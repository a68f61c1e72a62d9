package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

// ReportTool synthesizes a markdown research report from earlier search
// payloads. Inputs arrive as the loose objects the model echoes back from
// prior tool results, so parsing is tolerant of missing fields.
type ReportTool struct{}

func (t *ReportTool) GetName() string {
	return "synthesize_research_report"
}

func (t *ReportTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "synthesize_research_report",
		Description: "Create a comprehensive report from document and web search results",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"document_results": {
				Type:        "object",
				Description: "Results from document search",
			},
			"web_results": {
				Type:        "object",
				Description: "Results from web search",
			},
			"comparison_data": {
				Type:        "object",
				Description: "Optional comparison analysis data",
			},
		},
		Required: []string{"document_results", "web_results"},
	}
}

func (t *ReportTool) GetDefaults() map[string]any {
	return nil
}

func (t *ReportTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	docResults, _ := args["document_results"].(map[string]any)
	webResults, _ := args["web_results"].(map[string]any)
	comparison, _ := args["comparison_data"].(map[string]any)

	var sections []string
	sections = append(sections,
		"# Comprehensive Research Report",
		fmt.Sprintf("*Generated on %s*\n", time.Now().Format("2006-01-02 15:04:05")),
	)

	docHits := resultList(docResults)
	if len(docHits) > 0 {
		sections = append(sections,
			"## Document Database Findings",
			fmt.Sprintf("Found %d relevant documents.", len(docHits)),
		)
		for i, hit := range docHits[:min(3, len(docHits))] {
			content, _ := hit["content"].(string)
			source, _ := hit["source"].(string)
			if len(content) > 200 {
				content = content[:200] + "..."
			}
			sections = append(sections, fmt.Sprintf("**%d. %s**", i+1, source), content, "")
		}
	}

	webHits := resultList(webResults)
	if len(webHits) > 0 {
		sections = append(sections,
			"## Current Web Information",
			fmt.Sprintf("Found %d current sources.", len(webHits)),
		)
		for i, hit := range webHits[:min(3, len(webHits))] {
			title, _ := hit["title"].(string)
			snippet, _ := hit["snippet"].(string)
			url, _ := hit["url"].(string)
			sections = append(sections,
				fmt.Sprintf("**%d. %s**", i+1, title),
				snippet,
				fmt.Sprintf("*Source: %s*", url),
				"",
			)
		}
	}

	if analysis, ok := comparison["analysis"].(string); ok && analysis != "" {
		sections = append(sections, "## Performance Analysis", analysis)
	}

	seen := make(map[string]bool)
	var allSources []string
	if docResults != nil {
		if raw, ok := docResults["sources"].([]any); ok {
			for _, s := range raw {
				if source, ok := s.(string); ok && !seen[source] {
					seen[source] = true
					allSources = append(allSources, source)
				}
			}
		}
	}
	for _, hit := range webHits {
		if url, ok := hit["url"].(string); ok && url != "" && !seen[url] {
			seen[url] = true
			allSources = append(allSources, url)
		}
	}
	if len(allSources) > 0 {
		sort.Strings(allSources)
		sections = append(sections, "## Sources")
		for _, source := range allSources {
			sections = append(sections, fmt.Sprintf("- %s", source))
		}
	}

	return strings.Join(sections, "\n"), nil
}

func resultList(payload map[string]any) []map[string]any {
	if payload == nil {
		return nil
	}
	raw, ok := payload["results"].([]any)
	if !ok {
		return nil
	}
	hits := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if hit, ok := item.(map[string]any); ok {
			hits = append(hits, hit)
		}
	}
	return hits
}
