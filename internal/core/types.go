package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// ToolResult is the uniform envelope every tool dispatch produces.
// Exactly one of Data/Error is populated.
type ToolResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ToolSuccess wraps a tool's payload in a success envelope
func ToolSuccess(data any) ToolResult {
	return ToolResult{Success: true, Data: data}
}

// ToolFailure wraps an error message in a failure envelope
func ToolFailure(format string, args ...any) ToolResult {
	return ToolResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Content serializes the envelope for use as a tool-role message body.
// Serialization failures degrade to a failure envelope rather than error out,
// so the model always receives well-formed JSON.
func (r ToolResult) Content() string {
	b, err := json.Marshal(r)
	if err != nil {
		b, _ = json.Marshal(ToolFailure("unserializable tool result: %v", err))
	}
	return string(b)
}

// Document is a retrieved chunk with its source metadata
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Source returns the citation path for the document, if any
func (d Document) Source() string {
	return d.Metadata["source"]
}

// Conversation is a persisted chat thread
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// StoredMessage is one persisted message within a conversation
type StoredMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Artifact is a generated image (chart) attributable to one tool call
type Artifact struct {
	Title string
	PNG   []byte
}
