package core

import (
	"context"

	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/messages"
	"github.com/alexschlessinger/pollytool/tools"
)

// LLM is the model-invocation capability. Invoke performs one structured
// completion (the model may answer directly or request tool calls).
// InvokeStream performs a streaming completion, calling onToken for each
// content fragment in arrival order, and returns the assembled message.
type LLM interface {
	Invoke(ctx context.Context, req *llm.CompletionRequest) (messages.ChatMessage, error)
	InvokeStream(ctx context.Context, req *llm.CompletionRequest, onToken func(string)) (messages.ChatMessage, error)
}

// ToolDispatcher validates and executes single tool calls. Dispatch never
// returns a raw error from a tool body; every outcome is an envelope.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, name string, args map[string]any) ToolResult
	All() []tools.Tool
	Names() []string
}

// Retriever is the vector similarity search capability
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Document, error)
}

// ChatStore is the conversation persistence capability
type ChatStore interface {
	Create(ctx context.Context, title string) (Conversation, error)
	Append(ctx context.Context, conversationID, role, content string) error
	List(ctx context.Context) ([]Conversation, error)
	Rename(ctx context.Context, conversationID, title string) error
	Messages(ctx context.Context, conversationID string) ([]StoredMessage, error)
}

type System interface {
	GetToolRegistry() ToolDispatcher
	GetChatStore() ChatStore
	GetRetriever() Retriever
	GetLLM() LLM
}

type SystemImpl struct {
	Tools     ToolDispatcher
	Store     ChatStore
	Retriever Retriever
	Client    LLM
}

func (s *SystemImpl) GetToolRegistry() ToolDispatcher {
	return s.Tools
}

func (s *SystemImpl) GetChatStore() ChatStore {
	return s.Store
}

func (s *SystemImpl) GetRetriever() Retriever {
	return s.Retriever
}

func (s *SystemImpl) GetLLM() LLM {
	return s.Client
}
