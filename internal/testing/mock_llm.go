// Package testing provides shared mocks for exercising the orchestrator,
// console, and tool layers without a live model or network.
package testing

import (
	"context"
	"fmt"

	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/messages"

	"pkdindustries/scry/internal/core"
)

// ScriptStep is one scripted model response. Invoke and InvokeStream consume
// steps in order.
type ScriptStep struct {
	Response messages.ChatMessage
	Err      error
	// Tokens overrides how InvokeStream fragments the content; when nil the
	// whole content arrives as one token
	Tokens []string
}

// TextStep scripts a direct answer with no tool calls
func TextStep(content string) ScriptStep {
	return ScriptStep{
		Response: messages.ChatMessage{
			Role:    messages.MessageRoleAssistant,
			Content: content,
		},
	}
}

// StreamedStep scripts a direct answer delivered token by token
func StreamedStep(tokens ...string) ScriptStep {
	content := ""
	for _, t := range tokens {
		content += t
	}
	step := TextStep(content)
	step.Tokens = tokens
	return step
}

// ToolCallStep scripts a response requesting the given tool calls
func ToolCallStep(calls ...messages.ChatMessageToolCall) ScriptStep {
	return ScriptStep{
		Response: messages.ChatMessage{
			Role:      messages.MessageRoleAssistant,
			ToolCalls: calls,
		},
	}
}

// ErrorStep scripts a model invocation failure
func ErrorStep(err error) ScriptStep {
	return ScriptStep{Err: err}
}

// Call constructs a tool call request with JSON arguments
func Call(id, name, arguments string) messages.ChatMessageToolCall {
	return messages.ChatMessageToolCall{ID: id, Name: name, Arguments: arguments}
}

// MockLLM implements core.LLM from a fixed script. Every request is recorded
// so tests can assert on invocation counts and payloads.
type MockLLM struct {
	Steps    []ScriptStep
	Requests []*llm.CompletionRequest

	next int
}

var _ core.LLM = (*MockLLM)(nil)

func NewMockLLM(steps ...ScriptStep) *MockLLM {
	return &MockLLM{Steps: steps}
}

func (m *MockLLM) take(req *llm.CompletionRequest) (ScriptStep, error) {
	m.Requests = append(m.Requests, req)
	if m.next >= len(m.Steps) {
		return ScriptStep{}, fmt.Errorf("mock llm script exhausted after %d calls", m.next)
	}
	step := m.Steps[m.next]
	m.next++
	return step, step.Err
}

// CallCount reports how many times the model was invoked
func (m *MockLLM) CallCount() int {
	return len(m.Requests)
}

func (m *MockLLM) Invoke(_ context.Context, req *llm.CompletionRequest) (messages.ChatMessage, error) {
	step, err := m.take(req)
	if err != nil {
		return messages.ChatMessage{}, err
	}
	return step.Response, nil
}

func (m *MockLLM) InvokeStream(_ context.Context, req *llm.CompletionRequest, onToken func(string)) (messages.ChatMessage, error) {
	step, err := m.take(req)
	if err != nil {
		return messages.ChatMessage{}, err
	}
	if onToken != nil {
		if step.Tokens != nil {
			for _, t := range step.Tokens {
				onToken(t)
			}
		} else if step.Response.Content != "" {
			onToken(step.Response.Content)
		}
	}
	return step.Response, nil
}
