package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/alexschlessinger/pollytool/tools"
	"github.com/google/jsonschema-go/jsonschema"

	"pkdindustries/scry/internal/core"
)

// Tool is a named, schema-described operation the model may request.
// Execute receives validated arguments (defaults applied) and returns the
// payload for the success envelope. Errors never cross the registry boundary
// raw; Dispatch converts them to failure envelopes.
type Tool interface {
	GetName() string
	GetSchema() *jsonschema.Schema
	GetDefaults() map[string]any
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// DuplicateToolError is returned when a name is registered twice
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool already registered: %s", e.Name)
}

// Registry maps tool names to their schema and handler. It is populated at
// process init and read-only afterwards, so concurrent turns may dispatch
// through it without locking.
type Registry struct {
	byName map[string]Tool
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Tool),
	}
}

// Register adds a tool at init time
func (r *Registry) Register(t Tool) error {
	name := t.GetName()
	if _, exists := r.byName[name]; exists {
		return &DuplicateToolError{Name: name}
	}
	r.byName[name] = t
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns registered tool names in registration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// All returns the registered tools adapted for transmission to the model
func (r *Registry) All() []tools.Tool {
	adapted := make([]tools.Tool, 0, len(r.order))
	for _, name := range r.order {
		adapted = append(adapted, &pollyTool{registry: r, tool: r.byName[name]})
	}
	return adapted
}

// Dispatch validates arguments and executes the named tool. All failure modes
// (unknown tool, bad arguments, tool error, tool panic) come back as failure
// envelopes so the caller never sees a raw error from a tool body.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (res core.ToolResult) {
	t, ok := r.byName[name]
	if !ok {
		return core.ToolFailure("unknown tool: %s", name)
	}

	validated, err := ValidateArgs(t.GetSchema(), t.GetDefaults(), args)
	if err != nil {
		return core.ToolFailure("%v", err)
	}

	logger := core.WithTool(core.GetLogger(), name, validated)

	defer func() {
		if p := recover(); p != nil {
			logger.Errorf("Tool panicked: %v", p)
			res = core.ToolFailure("tool %s panicked: %v", name, p)
		}
	}()

	startTime := time.Now()
	logger.Info("Executing tool")
	data, err := t.Execute(ctx, validated)
	duration := time.Since(startTime)

	if err != nil {
		logger.With(
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		).Error("Tool execution failed")
		return core.ToolFailure("%v", err)
	}

	logger.With(
		"duration_ms", duration.Milliseconds(),
	).Info("Tool execution completed")
	return core.ToolSuccess(data)
}

// Verify Registry satisfies the dispatcher capability
var _ core.ToolDispatcher = (*Registry)(nil)

// pollyTool adapts a registered tool to the pollytool interface so its schema
// travels to the model unchanged. Execution still funnels through Dispatch,
// keeping validation and envelope semantics in one place.
type pollyTool struct {
	registry *Registry
	tool     Tool
}

func (p *pollyTool) GetName() string               { return p.tool.GetName() }
func (p *pollyTool) GetSchema() *jsonschema.Schema { return p.tool.GetSchema() }
func (p *pollyTool) GetType() string               { return "native" }
func (p *pollyTool) GetSource() string             { return "builtin" }

func (p *pollyTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	return p.registry.Dispatch(ctx, p.tool.GetName(), args).Content(), nil
}

var _ tools.Tool = (*pollyTool)(nil)

var displayNames = map[string]string{
	"search_documents":              "Document Search",
	"search_web":                    "Web Search",
	"extract_performance_metrics":   "Performance Analysis",
	"create_performance_comparison": "Performance Comparison",
	"create_performance_chart":      "Chart Generation",
	"synthesize_research_report":    "Report Synthesis",
	"get_financial_data":            "Financial Data",
	"compare_financial_assets":      "Asset Comparison",
}

// DisplayName returns the human-readable name for a tool
func DisplayName(name string) string {
	if display, ok := displayNames[name]; ok {
		return display
	}
	return name
}

// toolContext fetches the injected capabilities and checks for cancellation
func toolContext(ctx context.Context) (*core.ToolContext, error) {
	tc, err := core.GetToolContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tc, nil
}

// PrimaryArg returns a short description of a call's most telling argument,
// used in progress lines
func PrimaryArg(args map[string]any) string {
	for _, key := range []string{"query", "topic", "symbol", "title", "items", "symbols", "text"} {
		v, ok := args[key]
		if !ok {
			continue
		}
		s := fmt.Sprintf("%v", v)
		if len(s) > 60 {
			s = s[:60] + "..."
		}
		return s
	}
	return ""
}
