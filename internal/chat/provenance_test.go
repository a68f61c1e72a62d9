package chat

import (
	"context"
	"strings"
	"testing"

	"pkdindustries/scry/internal/core"
	"pkdindustries/scry/internal/tool"
)

func chartResult(t *testing.T, title string) *tool.ChartResult {
	t.Helper()
	out, err := (&tool.ChartTool{}).Execute(context.Background(), map[string]any{
		"title": title,
		"metrics_data": []any{
			map[string]any{"name": "A", "metrics": map[string]any{"accuracy": 90.0}},
			map[string]any{"name": "B", "metrics": map[string]any{"accuracy": 95.0}},
		},
	})
	if err != nil {
		t.Fatalf("chart fixture: %v", err)
	}
	return out.(*tool.ChartResult)
}

func docResult(sources ...string) core.ToolResult {
	return core.ToolSuccess(tool.DocSearchResult{Sources: sources})
}

func webResult(urls ...string) core.ToolResult {
	hits := make([]tool.WebHit, len(urls))
	for i, u := range urls {
		hits[i] = tool.WebHit{URL: u}
	}
	return core.ToolSuccess(tool.WebSearchResult{Results: hits})
}

func TestRenderEmpty(t *testing.T) {
	a := NewAggregator(3)
	if got := a.Render(); got != "" {
		t.Errorf("empty aggregator rendered %q", got)
	}
}

func TestRenderToolsFirstSeenOrder(t *testing.T) {
	a := NewAggregator(3)
	a.Record("search_web", webResult("https://a.example.com"))
	a.Record("search_documents", docResult("x.md"))
	a.Record("search_web", webResult("https://b.example.com"))

	out := a.Render()
	web := strings.Index(out, "Web Search")
	doc := strings.Index(out, "Document Search")
	if web == -1 || doc == -1 || web > doc {
		t.Errorf("tool order wrong in %q", out)
	}
	if strings.Count(out, "Web Search") != 1 {
		t.Errorf("duplicate display name in %q", out)
	}
}

func TestRenderSortsDocumentSources(t *testing.T) {
	a := NewAggregator(3)
	a.Record("search_documents", docResult("zebra.md", "alpha.md"))
	a.Record("search_documents", docResult("middle.md", "alpha.md"))

	out := a.Render()
	ia := strings.Index(out, "Source: alpha.md")
	im := strings.Index(out, "Source: middle.md")
	iz := strings.Index(out, "Source: zebra.md")
	if ia == -1 || im == -1 || iz == -1 {
		t.Fatalf("missing sources in %q", out)
	}
	if !(ia < im && im < iz) {
		t.Errorf("sources not sorted in %q", out)
	}
	if strings.Count(out, "alpha.md") != 1 {
		t.Errorf("duplicate source in %q", out)
	}
}

func TestWebSourceCap(t *testing.T) {
	a := NewAggregator(3)
	a.Record("search_web", webResult(
		"https://1.example.com",
		"https://2.example.com",
		"https://1.example.com", // dup, ignored
		"https://3.example.com",
		"https://4.example.com", // over cap
	))
	a.Record("search_web", webResult("https://5.example.com"))

	out := a.Render()
	for _, want := range []string{"https://1.example.com", "https://2.example.com", "https://3.example.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %q", want, out)
		}
	}
	for _, over := range []string{"https://4.example.com", "https://5.example.com"} {
		if strings.Contains(out, over) {
			t.Errorf("cap exceeded, found %s", over)
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	a := NewAggregator(3)
	a.Record("search_documents", docResult("a.md", "b.md"))
	a.Record("search_web", webResult("https://x.example.com"))

	first := a.Render()
	second := a.Render()
	if first != second {
		t.Errorf("render not idempotent:\n%q\n%q", first, second)
	}
}

func TestFailedEnvelopeContributesNoSources(t *testing.T) {
	a := NewAggregator(3)
	a.Record("search_documents", core.ToolFailure("retriever down"))

	out := a.Render()
	if !strings.Contains(out, "Document Search") {
		t.Errorf("failed tool should still be listed: %q", out)
	}
	if strings.Contains(out, "Sources:") {
		t.Errorf("failed tool should add no sources: %q", out)
	}
}

func TestChartArtifactsInCallOrder(t *testing.T) {
	a := NewAggregator(3)
	a.Record("create_performance_comparison", core.ToolSuccess(tool.ComparisonResult{
		HasChart:  true,
		ChartData: chartResult(t, "first"),
	}))
	a.Record("create_performance_chart", core.ToolSuccess(chartResult(t, "second")))

	artifacts := a.Artifacts()
	if len(artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(artifacts))
	}
	if artifacts[0].Title != "first" || artifacts[1].Title != "second" {
		t.Errorf("artifact order = %q, %q", artifacts[0].Title, artifacts[1].Title)
	}
	if len(artifacts[0].PNG) == 0 {
		t.Error("artifact missing image bytes")
	}
}
