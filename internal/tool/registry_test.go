package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
)

// stubTool is a configurable tool for registry tests
type stubTool struct {
	name     string
	schema   *jsonschema.Schema
	defaults map[string]any
	execute  func(ctx context.Context, args map[string]any) (any, error)
	calls    int
}

func (s *stubTool) GetName() string               { return s.name }
func (s *stubTool) GetSchema() *jsonschema.Schema { return s.schema }
func (s *stubTool) GetDefaults() map[string]any   { return s.defaults }

func (s *stubTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	s.calls++
	if s.execute != nil {
		return s.execute(ctx, args)
	}
	return "ok", nil
}

func newStub(name string) *stubTool {
	return &stubTool{
		name: name,
		schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query":       {Type: "string"},
				"num_results": {Type: "integer"},
			},
			Required: []string{"query"},
		},
		defaults: map[string]any{"num_results": 5},
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newStub("echo")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	err := r.Register(newStub("echo"))
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	var dup *DuplicateToolError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateToolError, got %T", err)
	}
	if dup.Name != "echo" {
		t.Errorf("duplicate error names %q, want echo", dup.Name)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r := NewRegistry()
	res := r.Dispatch(context.Background(), "nope", map[string]any{})
	if res.Success {
		t.Fatal("unknown tool should fail")
	}
	if !strings.Contains(res.Error, "unknown tool") {
		t.Errorf("error = %q, want mention of unknown tool", res.Error)
	}
	if res.Data != nil {
		t.Error("failure envelope must not carry data")
	}
}

func TestDispatchMissingRequired(t *testing.T) {
	r := NewRegistry()
	stub := newStub("echo")
	if err := r.Register(stub); err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(context.Background(), "echo", map[string]any{"num_results": 3.0})
	if res.Success {
		t.Fatal("missing required parameter should fail")
	}
	if res.Error != "missing parameter query" {
		t.Errorf("error = %q, want %q", res.Error, "missing parameter query")
	}
	if stub.calls != 0 {
		t.Error("tool body must not run on validation failure")
	}
}

func TestDispatchInvalidType(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newStub("echo")); err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(context.Background(), "echo", map[string]any{"query": 42.0})
	if res.Success {
		t.Fatal("wrong argument type should fail")
	}
	if res.Error != "invalid type for query" {
		t.Errorf("error = %q, want %q", res.Error, "invalid type for query")
	}
}

func TestDispatchAppliesDefaultsAndDropsUnknown(t *testing.T) {
	r := NewRegistry()
	var got map[string]any
	stub := newStub("echo")
	stub.execute = func(_ context.Context, args map[string]any) (any, error) {
		got = args
		return "ok", nil
	}
	if err := r.Register(stub); err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(context.Background(), "echo", map[string]any{
		"query":      "lstm",
		"mystery":    true,
		"extraneous": "ignored",
	})
	if !res.Success {
		t.Fatalf("dispatch failed: %s", res.Error)
	}
	if got["query"] != "lstm" {
		t.Errorf("query = %v", got["query"])
	}
	if got["num_results"] != 5 {
		t.Errorf("default num_results = %v, want 5", got["num_results"])
	}
	if _, ok := got["mystery"]; ok {
		t.Error("unknown parameter should be dropped")
	}
}

func TestDispatchToolError(t *testing.T) {
	r := NewRegistry()
	stub := newStub("flaky")
	stub.execute = func(context.Context, map[string]any) (any, error) {
		return nil, fmt.Errorf("endpoint unreachable")
	}
	if err := r.Register(stub); err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(context.Background(), "flaky", map[string]any{"query": "x"})
	if res.Success {
		t.Fatal("tool error should produce failure envelope")
	}
	if res.Error != "endpoint unreachable" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestDispatchContainsPanic(t *testing.T) {
	r := NewRegistry()
	stub := newStub("boom")
	stub.execute = func(context.Context, map[string]any) (any, error) {
		panic("tool exploded")
	}
	if err := r.Register(stub); err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(context.Background(), "boom", map[string]any{"query": "x"})
	if res.Success {
		t.Fatal("panic should produce failure envelope")
	}
	if !strings.Contains(res.Error, "tool exploded") {
		t.Errorf("error = %q, want panic message", res.Error)
	}
}

func TestEnvelopeExclusivity(t *testing.T) {
	r := NewRegistry()
	stub := newStub("echo")
	if err := r.Register(stub); err != nil {
		t.Fatal(err)
	}

	ok := r.Dispatch(context.Background(), "echo", map[string]any{"query": "x"})
	if !ok.Success || ok.Data == nil || ok.Error != "" {
		t.Errorf("success envelope = %+v, want data only", ok)
	}

	bad := r.Dispatch(context.Background(), "echo", map[string]any{})
	if bad.Success || bad.Data != nil || bad.Error == "" {
		t.Errorf("failure envelope = %+v, want error only", bad)
	}
}

func TestEnvelopeContentJSON(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newStub("echo")); err != nil {
		t.Fatal(err)
	}

	content := r.Dispatch(context.Background(), "echo", map[string]any{"query": "x"}).Content()
	if !strings.Contains(content, `"success":true`) {
		t.Errorf("content = %s", content)
	}

	content = r.Dispatch(context.Background(), "missing", nil).Content()
	if !strings.Contains(content, `"success":false`) || !strings.Contains(content, `"error"`) {
		t.Errorf("content = %s", content)
	}
}

func TestRegistryOrderAndAdapter(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"alpha", "beta", "gamma"} {
		if err := r.Register(newStub(name)); err != nil {
			t.Fatal(err)
		}
	}

	names := r.Names()
	if len(names) != 3 || names[0] != "alpha" || names[2] != "gamma" {
		t.Errorf("names = %v, want registration order", names)
	}

	adapted := r.All()
	if len(adapted) != 3 {
		t.Fatalf("All returned %d tools", len(adapted))
	}
	if adapted[1].GetName() != "beta" {
		t.Errorf("adapted[1] = %s", adapted[1].GetName())
	}

	// The adapter funnels execution through Dispatch, so validation applies
	out, err := adapted[0].Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("adapter must not surface errors: %v", err)
	}
	if !strings.Contains(out, `"success":false`) {
		t.Errorf("adapter output = %s, want failure envelope", out)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("search_documents"); got != "Document Search" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := DisplayName("unmapped_tool"); got != "unmapped_tool" {
		t.Errorf("DisplayName fallback = %q", got)
	}
}

func TestPrimaryArg(t *testing.T) {
	if got := PrimaryArg(map[string]any{"query": "transformers"}); got != "transformers" {
		t.Errorf("PrimaryArg = %q", got)
	}
	long := strings.Repeat("x", 80)
	if got := PrimaryArg(map[string]any{"query": long}); len(got) != 63 || !strings.HasSuffix(got, "...") {
		t.Errorf("PrimaryArg truncation = %q", got)
	}
	if got := PrimaryArg(map[string]any{"other": 1}); got != "" {
		t.Errorf("PrimaryArg with no known keys = %q", got)
	}
}
