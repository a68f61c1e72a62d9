package core

import (
	"context"
	"fmt"
)

// ToolContext carries capabilities that tools may use but that are never part
// of the model-visible parameter schema, such as the retriever handle.
type ToolContext struct {
	Retriever Retriever
}

type contextKey string

const kToolContextKey contextKey = "tool_context"

// InjectToolContext stores the tool context for tools to retrieve.
// This must be used (rather than direct context.WithValue) to ensure
// the correct key type is used.
func InjectToolContext(ctx context.Context, tc *ToolContext) context.Context {
	return context.WithValue(ctx, kToolContextKey, tc)
}

func GetToolContext(ctx context.Context) (*ToolContext, error) {
	if tc, ok := ctx.Value(kToolContextKey).(*ToolContext); ok {
		return tc, nil
	}
	return nil, fmt.Errorf("no tool context available")
}
