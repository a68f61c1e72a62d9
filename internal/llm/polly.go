// Package llm adapts pollytool's multi-provider client to the orchestrator's
// model-invocation interface.
package llm

import (
	"context"
	"fmt"

	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/messages"

	"pkdindustries/scry/internal/config"
	"pkdindustries/scry/internal/core"
)

// PollyClient wraps pollytool's MultiPass. One client serves all configured
// providers; the model string's prefix selects among them per request.
type PollyClient struct {
	client          *llm.MultiPass
	streamProcessor *messages.StreamProcessor
}

func NewPollyClient(api config.APIConfig) *PollyClient {
	apiKeys := map[string]string{
		"openai":    api.OpenAIKey,
		"anthropic": api.AnthropicKey,
		"gemini":    api.GeminiKey,
		"ollama":    api.OllamaKey,
	}

	return &PollyClient{
		client:          llm.NewMultiPass(apiKeys),
		streamProcessor: messages.NewStreamProcessor(),
	}
}

var _ core.LLM = (*PollyClient)(nil)

// Invoke performs one completion and returns the assembled message
func (p *PollyClient) Invoke(ctx context.Context, req *llm.CompletionRequest) (messages.ChatMessage, error) {
	return p.complete(ctx, req, nil)
}

// InvokeStream performs one completion, forwarding content fragments to
// onToken as they arrive
func (p *PollyClient) InvokeStream(ctx context.Context, req *llm.CompletionRequest, onToken func(string)) (messages.ChatMessage, error) {
	return p.complete(ctx, req, onToken)
}

func (p *PollyClient) complete(ctx context.Context, req *llm.CompletionRequest, onToken func(string)) (messages.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return messages.ChatMessage{}, err
	}

	collector := &collectorProcessor{onToken: onToken}
	eventChan := p.client.ChatCompletionStream(ctx, req, p.streamProcessor)
	response := messages.ProcessEventStream(ctx, eventChan, collector)

	if collector.err != nil {
		return messages.ChatMessage{}, fmt.Errorf("model invocation failed: %w", collector.err)
	}
	if err := ctx.Err(); err != nil {
		return messages.ChatMessage{}, err
	}
	if response.Role == "" && response.Content == "" && len(response.ToolCalls) == 0 {
		return messages.ChatMessage{}, fmt.Errorf("model invocation produced no response")
	}
	return response, nil
}

// collectorProcessor drains a completion event stream, forwarding content
// tokens and capturing the first error
type collectorProcessor struct {
	messages.BaseEventProcessor
	onToken func(string)
	err     error
}

var _ messages.EventProcessor = (*collectorProcessor)(nil)

func (c *collectorProcessor) OnReasoning(string, int) {}

func (c *collectorProcessor) OnContent(token string, _ bool) {
	if c.onToken != nil && token != "" {
		c.onToken(token)
	}
}

func (c *collectorProcessor) OnToolCall(messages.ChatMessageToolCall) {}

func (c *collectorProcessor) OnComplete(*messages.ChatMessage) {}

func (c *collectorProcessor) OnError(err error) {
	if c.err == nil {
		c.err = err
	}
}
