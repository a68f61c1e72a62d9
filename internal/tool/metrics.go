package tool

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// metricPatterns match quantitative performance mentions in prose.
// Each pattern captures the first numeric value after the keyword.
var metricPatterns = map[string]*regexp.Regexp{
	"accuracy":       regexp.MustCompile(`accuracy[:\s]*([0-9]+\.?[0-9]*)%?`),
	"speed":          regexp.MustCompile(`speed[:\s]*([0-9]+\.?[0-9]*)`),
	"memory":         regexp.MustCompile(`memory[:\s]*([0-9]+\.?[0-9]*)`),
	"parameters":     regexp.MustCompile(`parameters?[:\s]*([0-9]+\.?[0-9]*)[MBK]?`),
	"training_time":  regexp.MustCompile(`training[:\s]*([0-9]+\.?[0-9]*)`),
	"inference_time": regexp.MustCompile(`inference[:\s]*([0-9]+\.?[0-9]*)`),
}

// MetricsResult is the payload of an extract_performance_metrics call
type MetricsResult struct {
	Name             string             `json:"name"`
	Metrics          map[string]float64 `json:"metrics"`
	SourceTextLength int                `json:"source_text_length"`
	MetricsFound     int                `json:"metrics_found"`
}

// MetricsTool extracts numeric performance figures from text
type MetricsTool struct{}

func (t *MetricsTool) GetName() string {
	return "extract_performance_metrics"
}

func (t *MetricsTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "extract_performance_metrics",
		Description: "Extract numerical performance metrics (accuracy, speed, memory, etc.) from text when quantitative data is available for analysis.",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"text": {
				Type:        "string",
				Description: "Text containing performance information",
			},
			"technology": {
				Type:        "string",
				Description: "Name of the technology being analyzed",
			},
		},
		Required: []string{"text", "technology"},
	}
}

func (t *MetricsTool) GetDefaults() map[string]any {
	return nil
}

func (t *MetricsTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	text, err := stringArg(args, "text")
	if err != nil {
		return nil, err
	}
	technology, err := stringArg(args, "technology")
	if err != nil {
		return nil, err
	}

	return ExtractMetrics(text, technology), nil
}

// ExtractMetrics runs the pattern set over the text. Only the first match per
// metric counts.
func ExtractMetrics(text, technology string) MetricsResult {
	metrics := make(map[string]float64)
	lower := strings.ToLower(text)

	for name, pattern := range metricPatterns {
		match := pattern.FindStringSubmatch(lower)
		if match == nil {
			continue
		}
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			metrics[name] = v
		}
	}

	return MetricsResult{
		Name:             technology,
		Metrics:          metrics,
		SourceTextLength: len(text),
		MetricsFound:     len(metrics),
	}
}
