package chat

import (
	"errors"
	"testing"

	"github.com/alexschlessinger/pollytool/messages"

	"pkdindustries/scry/internal/core"
)

func TestConversationStateSeeding(t *testing.T) {
	prior := []core.StoredMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
	}
	s := NewConversationState("c1", "be helpful", prior)
	s.AppendUser("what is an lstm?")

	h := s.History()
	if len(h) != 4 {
		t.Fatalf("history length = %d, want 4", len(h))
	}
	if h[0].Role != messages.MessageRoleSystem || h[0].Content != "be helpful" {
		t.Errorf("system message = %+v", h[0])
	}
	if h[1].Role != messages.MessageRoleUser || h[2].Role != messages.MessageRoleAssistant {
		t.Errorf("prior roles = %s, %s", h[1].Role, h[2].Role)
	}
	if h[3].Content != "what is an lstm?" {
		t.Errorf("user turn = %+v", h[3])
	}
}

func TestConversationStateNoPrompt(t *testing.T) {
	s := NewConversationState("c1", "", nil)
	if s.Len() != 0 {
		t.Errorf("empty prompt should add no system message, len = %d", s.Len())
	}
}

func TestToolCallReferentialIntegrity(t *testing.T) {
	s := NewConversationState("c1", "p", nil)
	s.AppendUser("compare lstm and transformer")

	call := messages.ChatMessageToolCall{ID: "call_1", Name: "search_documents", Arguments: `{"query":"lstm"}`}
	s.AppendToolCall(call)

	if err := s.AppendToolResult("call_1", core.ToolSuccess("data")); err != nil {
		t.Fatalf("known id rejected: %v", err)
	}

	// A second result for the same id is also unknown; ids resolve once
	err := s.AppendToolResult("call_1", core.ToolSuccess("again"))
	if !errors.Is(err, ErrUnknownToolCallID) {
		t.Errorf("reused id error = %v", err)
	}

	err = s.AppendToolResult("call_99", core.ToolFailure("x"))
	if !errors.Is(err, ErrUnknownToolCallID) {
		t.Errorf("unknown id error = %v", err)
	}
}

func TestToolExchangeGrowsHistoryInPairs(t *testing.T) {
	s := NewConversationState("c1", "p", nil)
	s.AppendUser("q")
	before := s.Len()

	// Three executed calls add an assistant tool-call message and a tool
	// result each
	for i, id := range []string{"a", "b", "c"} {
		call := messages.ChatMessageToolCall{ID: id, Name: "search_documents"}
		s.AppendToolCall(call)
		if err := s.AppendToolResult(id, core.ToolSuccess(i)); err != nil {
			t.Fatal(err)
		}
	}

	if got := s.Len() - before; got != 6 {
		t.Errorf("history grew by %d, want 6", got)
	}

	h := s.History()
	last := h[len(h)-1]
	if last.Role != messages.MessageRoleTool || last.ToolCallID != "c" {
		t.Errorf("last message = %+v", last)
	}
}

func TestRejectedResultNotAppended(t *testing.T) {
	s := NewConversationState("c1", "p", nil)
	s.AppendUser("q")
	before := s.Len()

	if err := s.AppendToolResult("ghost", core.ToolSuccess("x")); err == nil {
		t.Fatal("expected rejection")
	}
	if s.Len() != before {
		t.Error("rejected result must not grow history")
	}
}
