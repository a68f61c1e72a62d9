package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"pkdindustries/scry/internal/chart"
	"pkdindustries/scry/internal/core"
)

// ComparisonResult is the payload of a create_performance_comparison call
type ComparisonResult struct {
	Analysis        string       `json:"analysis"`
	Title           string       `json:"title"`
	MetricsCompared int          `json:"metrics_compared"`
	Data1Name       string       `json:"data1_name"`
	Data2Name       string       `json:"data2_name"`
	ChartData       *ChartResult `json:"chart_data,omitempty"`
	HasChart        bool         `json:"has_chart"`
}

// CompareTool analyzes two metric sets over their common metrics and renders
// a comparison chart
type CompareTool struct{}

func (t *CompareTool) GetName() string {
	return "create_performance_comparison"
}

func (t *CompareTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "create_performance_comparison",
		Description: "Create a visual performance comparison chart between two technologies when meaningful quantitative metrics are available.",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"data1": {
				Type:        "object",
				Description: "First dataset with metrics and name",
			},
			"data2": {
				Type:        "object",
				Description: "Second dataset with metrics and name",
			},
			"title": {
				Type:        "string",
				Description: "Chart title",
			},
		},
		Required: []string{"data1", "data2"},
	}
}

func (t *CompareTool) GetDefaults() map[string]any {
	return map[string]any{"title": "Performance Comparison"}
}

func (t *CompareTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	name1, metrics1 := namedMetrics(args["data1"], "Method 1")
	name2, metrics2 := namedMetrics(args["data2"], "Method 2")
	title, _ := args["title"].(string)

	var common []string
	for m := range metrics1 {
		if _, ok := metrics2[m]; ok {
			common = append(common, m)
		}
	}
	if len(common) == 0 {
		return nil, fmt.Errorf("no common metrics found for comparison")
	}
	sort.Strings(common)

	analysis := make([]string, 0, len(common))
	values1 := make([]float64, len(common))
	values2 := make([]float64, len(common))
	for i, m := range common {
		v1, v2 := metrics1[m], metrics2[m]
		values1[i], values2[i] = v1, v2
		switch {
		case v1 > v2:
			analysis = append(analysis, fmt.Sprintf("%s performs better in %s", name1, m))
		case v2 > v1:
			analysis = append(analysis, fmt.Sprintf("%s performs better in %s", name2, m))
		default:
			analysis = append(analysis, fmt.Sprintf("Similar performance in %s", m))
		}
	}

	result := ComparisonResult{
		Analysis:        strings.Join(analysis, " | "),
		Title:           title,
		MetricsCompared: len(common),
		Data1Name:       name1,
		Data2Name:       name2,
	}

	// A chart failure degrades to a text-only comparison
	chartResult, err := newChartResult(title, common, []chart.Series{
		{Name: name1, Values: values1},
		{Name: name2, Values: values2},
	})
	if err != nil {
		core.GetLogger().Warnw("Comparison chart creation failed", "error", err)
	} else {
		result.ChartData = chartResult
		result.HasChart = true
	}

	return result, nil
}
