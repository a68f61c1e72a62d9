package chat

import (
	"sort"
	"strings"

	"pkdindustries/scry/internal/core"
	"pkdindustries/scry/internal/tool"
)

// Aggregator collects the citations and artifacts produced by one turn's tool
// calls and renders them as a trailing summary. It is turn-scoped and owned by
// a single orchestrator invocation.
type Aggregator struct {
	webLimit int

	toolsUsed  []string // display names, first-seen order
	toolSeen   map[string]bool
	docSources map[string]bool
	webSources []string // first-seen order, capped at webLimit
	webSeen    map[string]bool
	artifacts  []core.Artifact
}

func NewAggregator(webLimit int) *Aggregator {
	return &Aggregator{
		webLimit:   webLimit,
		toolSeen:   make(map[string]bool),
		docSources: make(map[string]bool),
		webSeen:    make(map[string]bool),
	}
}

// Record accumulates one executed tool call's envelope, in execution order.
// Failed envelopes still count the tool as used but contribute no sources.
func (a *Aggregator) Record(toolName string, res core.ToolResult) {
	if !a.toolSeen[toolName] {
		a.toolSeen[toolName] = true
		a.toolsUsed = append(a.toolsUsed, tool.DisplayName(toolName))
	}
	if !res.Success {
		return
	}

	switch data := res.Data.(type) {
	case tool.DocSearchResult:
		for _, s := range data.Sources {
			a.docSources[s] = true
		}
	case tool.WebSearchResult:
		for _, hit := range data.Results {
			a.addWebSource(hit.URL)
		}
	case tool.ComparisonResult:
		if data.HasChart && data.ChartData != nil {
			a.artifacts = append(a.artifacts, data.ChartData.Artifact())
		}
	case *tool.ChartResult:
		if data != nil {
			a.artifacts = append(a.artifacts, data.Artifact())
		}
	case tool.AssetComparisonResult:
		if data.HasChart && data.ChartData != nil {
			a.artifacts = append(a.artifacts, data.ChartData.Artifact())
		}
	}
}

func (a *Aggregator) addWebSource(url string) {
	if url == "" || a.webSeen[url] {
		return
	}
	if len(a.webSources) >= a.webLimit {
		return
	}
	a.webSeen[url] = true
	a.webSources = append(a.webSources, url)
}

// Artifacts returns generated images in the order their producing calls ran
func (a *Aggregator) Artifacts() []core.Artifact {
	return a.artifacts
}

// Render produces the provenance block: tools used in first-seen order,
// document sources sorted, web sources capped in first-seen order. With
// nothing recorded it returns an empty string. Rendering does not mutate the
// aggregator, so repeated calls yield identical text.
func (a *Aggregator) Render() string {
	if len(a.toolsUsed) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Tools used: ")
	b.WriteString(strings.Join(a.toolsUsed, ", "))

	if len(a.docSources) > 0 {
		sources := make([]string, 0, len(a.docSources))
		for s := range a.docSources {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		b.WriteString("\n\nSources:")
		for _, s := range sources {
			b.WriteString("\nSource: ")
			b.WriteString(s)
		}
	}

	if len(a.webSources) > 0 {
		b.WriteString("\n\nWeb Sources:")
		for _, url := range a.webSources {
			b.WriteString("\n- ")
			b.WriteString(url)
		}
	}

	for _, artifact := range a.artifacts {
		b.WriteString("\n[chart: ")
		b.WriteString(artifact.Title)
		b.WriteString("]")
	}

	return b.String()
}
