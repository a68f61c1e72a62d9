package tool

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/jsonschema-go/jsonschema"
)

const duckduckgoURL = "https://html.duckduckgo.com/html/"

// WebHit is one web search result
type WebHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// WebSearchResult is the payload of a search_web call
type WebSearchResult struct {
	Results    []WebHit `json:"results"`
	TotalFound int      `json:"total_found"`
	Query      string   `json:"query"`
	SearchType string   `json:"search_type"`
}

// DuckDuckGo's HTML endpoint needs no API key; results are scraped from the
// result anchor/snippet markup.
var (
	resultPattern  = regexp.MustCompile(`(?s)<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.*?)</a>`)
	snippetPattern = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.*?)</a>`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// WebSearchTool searches the web through DuckDuckGo
type WebSearchTool struct {
	client     *resty.Client
	maxResults int
}

func NewWebSearchTool(timeout time.Duration, maxResults int) *WebSearchTool {
	return &WebSearchTool{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "scry/1.0"),
		maxResults: maxResults,
	}
}

func (t *WebSearchTool) defaultResults() int {
	if t.maxResults > 0 {
		return t.maxResults
	}
	return 5
}

func (t *WebSearchTool) GetName() string {
	return "search_web"
}

func (t *WebSearchTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "search_web",
		Description: "Search the web for current information about AI/ML topics, latest research, benchmarks",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "The search query for current information",
			},
			"num_results": {
				Type:        "integer",
				Description: "Number of search results to return (default: 5)",
			},
		},
		Required: []string{"query"},
	}
}

func (t *WebSearchTool) GetDefaults() map[string]any {
	return map[string]any{"num_results": t.defaultResults()}
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	numResults := intArg(args, "num_results", t.defaultResults())

	resp, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"q": query}).
		Post(duckduckgoURL)
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("web search failed: status %d", resp.StatusCode())
	}

	hits := parseSearchResults(resp.String(), numResults)
	return WebSearchResult{
		Results:    hits,
		TotalFound: len(hits),
		Query:      query,
		SearchType: "web",
	}, nil
}

func parseSearchResults(body string, limit int) []WebHit {
	anchors := resultPattern.FindAllStringSubmatch(body, -1)
	snippets := snippetPattern.FindAllStringSubmatch(body, -1)

	hits := make([]WebHit, 0, limit)
	for i, anchor := range anchors {
		if len(hits) >= limit {
			break
		}
		hit := WebHit{
			Title:  cleanHTML(anchor[2]),
			URL:    resolveResultURL(anchor[1]),
			Source: "Web Search",
		}
		if hit.URL == "" {
			continue
		}
		if i < len(snippets) {
			hit.Snippet = cleanHTML(snippets[i][1])
		}
		hits = append(hits, hit)
	}
	return hits
}

// resolveResultURL unwraps DuckDuckGo's redirect links (//duckduckgo.com/l/?uddg=...)
func resolveResultURL(href string) string {
	href = html.UnescapeString(href)
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		return "https:" + href
	}
	return href
}

func cleanHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}
