package tool

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"pkdindustries/scry/internal/chart"
	"pkdindustries/scry/internal/core"
)

// ChartResult carries a rendered chart. The base64 form is what the model and
// persisted transcript see; the raw bytes feed the provenance artifact.
type ChartResult struct {
	Title            string   `json:"title"`
	ChartBase64      string   `json:"chart_base64"`
	MetricsIncluded  []string `json:"metrics_included,omitempty"`
	DatasetsCompared int      `json:"datasets_compared,omitempty"`

	png []byte
}

// Artifact returns the chart as a provenance artifact
func (c *ChartResult) Artifact() core.Artifact {
	return core.Artifact{Title: c.Title, PNG: c.png}
}

func newChartResult(title string, categories []string, series []chart.Series) (*ChartResult, error) {
	png, err := chart.RenderGroupedBars(title, categories, series)
	if err != nil {
		return nil, err
	}
	return &ChartResult{
		Title:            title,
		ChartBase64:      base64.StdEncoding.EncodeToString(png),
		MetricsIncluded:  categories,
		DatasetsCompared: len(series),
		png:              png,
	}, nil
}

// namedMetrics decodes a {"name": ..., "metrics": {...}} object argument
func namedMetrics(v any, fallbackName string) (string, map[string]float64) {
	name := fallbackName
	metrics := make(map[string]float64)

	obj, ok := v.(map[string]any)
	if !ok {
		return name, metrics
	}
	if n, ok := obj["name"].(string); ok && n != "" {
		name = n
	}
	if m, ok := obj["metrics"].(map[string]any); ok {
		for k, raw := range m {
			if f, ok := raw.(float64); ok {
				metrics[k] = f
			}
		}
	}
	return name, metrics
}

// ChartTool renders a standalone grouped bar chart from two or more datasets
type ChartTool struct{}

func (t *ChartTool) GetName() string {
	return "create_performance_chart"
}

func (t *ChartTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "create_performance_chart",
		Description: "Create visual charts for performance comparisons when structured metrics data would benefit from visualization.",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"metrics_data": {
				Type:        "array",
				Description: "List of datasets with name and metrics for comparison",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"name":    {Type: "string"},
						"metrics": {Type: "object"},
					},
				},
			},
			"title": {
				Type:        "string",
				Description: "Chart title",
			},
		},
		Required: []string{"metrics_data"},
	}
}

func (t *ChartTool) GetDefaults() map[string]any {
	return map[string]any{"title": "Performance Chart"}
}

func (t *ChartTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	raw, ok := args["metrics_data"].([]any)
	if !ok || len(raw) < 2 {
		return nil, fmt.Errorf("need at least 2 datasets to create comparison chart")
	}
	title, _ := args["title"].(string)

	type dataset struct {
		name    string
		metrics map[string]float64
	}
	datasets := make([]dataset, 0, len(raw))
	allMetrics := make(map[string]bool)
	for i, item := range raw {
		name, metrics := namedMetrics(item, fmt.Sprintf("Method %d", i+1))
		datasets = append(datasets, dataset{name: name, metrics: metrics})
		for m := range metrics {
			allMetrics[m] = true
		}
	}
	if len(allMetrics) == 0 {
		return nil, fmt.Errorf("no metrics found in provided data")
	}

	categories := make([]string, 0, len(allMetrics))
	for m := range allMetrics {
		categories = append(categories, m)
	}
	sort.Strings(categories)

	series := make([]chart.Series, len(datasets))
	for i, d := range datasets {
		values := make([]float64, len(categories))
		for j, m := range categories {
			values[j] = d.metrics[m] // missing metrics chart as zero
		}
		series[i] = chart.Series{Name: d.name, Values: values}
	}

	result, err := newChartResult(title, categories, series)
	if err != nil {
		return nil, fmt.Errorf("chart creation failed: %w", err)
	}
	return result, nil
}
