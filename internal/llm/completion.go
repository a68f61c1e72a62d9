package llm

import (
	"strings"

	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/messages"
	"github.com/alexschlessinger/pollytool/tools"

	"pkdindustries/scry/internal/config"
)

type CompletionRequest = llm.CompletionRequest

// NewCompletionRequest builds a request from configuration, a message history,
// and the tools the model may call. Pass nil tools for a final streaming
// answer with tool calling disabled.
func NewCompletionRequest(cfg *config.Configuration, history []messages.ChatMessage, toolset []tools.Tool) *CompletionRequest {
	req := &CompletionRequest{
		BaseURL:     cfg.API.OpenAIURL,
		Timeout:     cfg.API.Timeout,
		Model:       cfg.Model.Model,
		MaxTokens:   cfg.Model.MaxTokens,
		Messages:    history,
		Temperature: cfg.Model.Temperature,
		Tools:       toolset,
	}

	if strings.HasPrefix(cfg.Model.Model, "ollama/") && cfg.API.OllamaURL != "" {
		req.BaseURL = cfg.API.OllamaURL
	}

	if cfg.Model.Thinking {
		req.ThinkingEffort = "medium"
	}

	return req
}
