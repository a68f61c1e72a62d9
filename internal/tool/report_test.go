package tool

import (
	"context"
	"strings"
	"testing"
)

func TestReportExecute(t *testing.T) {
	tool := &ReportTool{}
	out, err := tool.Execute(context.Background(), map[string]any{
		"document_results": map[string]any{
			"results": []any{
				map[string]any{"content": strings.Repeat("deep learning ", 30), "source": "ml_guide.md"},
			},
			"sources": []any{"ml_guide.md", "ml_guide.md", "notes.txt"},
		},
		"web_results": map[string]any{
			"results": []any{
				map[string]any{"title": "LSTM explained", "snippet": "a recurrent cell", "url": "https://example.org/lstm"},
			},
		},
		"comparison_data": map[string]any{
			"analysis": "A performs better in accuracy",
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	report, ok := out.(string)
	if !ok {
		t.Fatalf("result type %T", out)
	}

	for _, section := range []string{
		"# Comprehensive Research Report",
		"## Document Database Findings",
		"## Current Web Information",
		"## Performance Analysis",
		"## Sources",
	} {
		if !strings.Contains(report, section) {
			t.Errorf("report missing %q", section)
		}
	}
	if !strings.Contains(report, "LSTM explained") {
		t.Error("report missing web result title")
	}
	if strings.Count(report, "- ml_guide.md") != 1 {
		t.Error("sources should be deduplicated")
	}
	// Long document content is previewed, not dumped
	if !strings.Contains(report, "...") {
		t.Error("expected truncated document preview")
	}
}

func TestReportMissingRequired(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&ReportTool{}); err != nil {
		t.Fatal(err)
	}
	res := r.Dispatch(context.Background(), "synthesize_research_report", map[string]any{
		"document_results": map[string]any{},
	})
	if res.Success {
		t.Fatal("expected validation failure")
	}
	if res.Error != "missing parameter web_results" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestReportEmptyPayloads(t *testing.T) {
	tool := &ReportTool{}
	out, err := tool.Execute(context.Background(), map[string]any{
		"document_results": map[string]any{},
		"web_results":      map[string]any{},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	report := out.(string)
	if strings.Contains(report, "## Sources") {
		t.Error("no sources section expected for empty inputs")
	}
}
