// Package chat contains the function-calling orchestrator: the state machine
// that drives a model's tool-call loop over one user turn and the turn-scoped
// state it owns.
package chat

import (
	"errors"
	"fmt"

	"github.com/alexschlessinger/pollytool/messages"

	"pkdindustries/scry/internal/core"
)

// ErrUnknownToolCallID reports a tool result whose id no preceding assistant
// message in this turn emitted
var ErrUnknownToolCallID = errors.New("unknown tool call id")

// ConversationState is the message sequence for one turn. It is built from
// persisted history plus the new user message, mutated as the tool loop
// progresses, and discarded when the turn completes. One turn owns it
// exclusively, so there is no locking.
type ConversationState struct {
	ConversationID string
	IterationCount int

	history []messages.ChatMessage
	// ids emitted by assistant tool-call messages this turn, not yet resolved
	pendingCalls map[string]bool
}

// NewConversationState seeds a turn with the system prompt and prior messages
func NewConversationState(conversationID, systemPrompt string, prior []core.StoredMessage) *ConversationState {
	s := &ConversationState{
		ConversationID: conversationID,
		pendingCalls:   make(map[string]bool),
	}
	if systemPrompt != "" {
		s.history = append(s.history, messages.ChatMessage{
			Role:    messages.MessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, m := range prior {
		role := messages.MessageRoleUser
		if m.Role != "user" {
			role = messages.MessageRoleAssistant
		}
		s.history = append(s.history, messages.ChatMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	return s
}

// AppendUser adds the turn's user message
func (s *ConversationState) AppendUser(content string) {
	s.history = append(s.history, messages.ChatMessage{
		Role:    messages.MessageRoleUser,
		Content: content,
	})
}

// AppendToolCall adds an assistant message carrying one tool-call request and
// registers its id for referential integrity checks
func (s *ConversationState) AppendToolCall(call messages.ChatMessageToolCall) {
	s.history = append(s.history, messages.ChatMessage{
		Role:      messages.MessageRoleAssistant,
		ToolCalls: []messages.ChatMessageToolCall{call},
	})
	s.pendingCalls[call.ID] = true
}

// AppendToolResult adds a tool-role message answering a previously appended
// tool call. Results for ids this turn never emitted are rejected.
func (s *ConversationState) AppendToolResult(toolCallID string, res core.ToolResult) error {
	if !s.pendingCalls[toolCallID] {
		return fmt.Errorf("%w: %s", ErrUnknownToolCallID, toolCallID)
	}
	delete(s.pendingCalls, toolCallID)
	s.history = append(s.history, messages.ChatMessage{
		Role:       messages.MessageRoleTool,
		Content:    res.Content(),
		ToolCallID: toolCallID,
	})
	return nil
}

// AppendAssistant adds a plain assistant message
func (s *ConversationState) AppendAssistant(content string) {
	s.history = append(s.history, messages.ChatMessage{
		Role:    messages.MessageRoleAssistant,
		Content: content,
	})
}

// History returns the messages to send to the model
func (s *ConversationState) History() []messages.ChatMessage {
	out := make([]messages.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of messages in the turn state
func (s *ConversationState) Len() int {
	return len(s.history)
}
