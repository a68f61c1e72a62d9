package console_test

import (
	"context"
	"strings"
	"testing"

	"pkdindustries/scry/internal/console"
	mocks "pkdindustries/scry/internal/testing"
	"pkdindustries/scry/internal/tool"
)

func TestNewChatResetsSession(t *testing.T) {
	ctx := mocks.NewMockContext()
	ctx.GetSession().ConversationID = "old-conv"

	(&console.NewChatCommand{}).Execute(ctx)

	if ctx.GetSession().ConversationID != "" {
		t.Errorf("conversation id = %q, want cleared", ctx.GetSession().ConversationID)
	}
	if !ctx.HasReply("new conversation") {
		t.Errorf("replies = %v", ctx.Replies)
	}
}

func TestChatsListsWithActiveMarker(t *testing.T) {
	ctx := mocks.NewMockContext()
	store := ctx.GetSystem().GetChatStore()
	conv, err := store.Create(context.Background(), "What is an LSTM")
	if err != nil {
		t.Fatal(err)
	}
	ctx.GetSession().ConversationID = conv.ID

	(&console.ChatsCommand{}).Execute(ctx)

	if ctx.ReplyCount() != 1 {
		t.Fatalf("replies = %v", ctx.Replies)
	}
	line := ctx.LastReply()
	if !strings.HasPrefix(line, "* ") || !strings.Contains(line, conv.ID) || !strings.Contains(line, "What is an LSTM") {
		t.Errorf("listing = %q", line)
	}
}

func TestChatsEmpty(t *testing.T) {
	ctx := mocks.NewMockContext()
	(&console.ChatsCommand{}).Execute(ctx)
	if !ctx.HasReply("No conversations yet") {
		t.Errorf("replies = %v", ctx.Replies)
	}
}

func TestLoadSwitchesConversation(t *testing.T) {
	ctx := mocks.NewMockContext()
	store := ctx.GetSystem().GetChatStore()
	conv, _ := store.Create(context.Background(), "t")
	store.Append(context.Background(), conv.ID, "user", "hello")
	store.Append(context.Background(), conv.ID, "assistant", "hi there")

	ctx.WithCommand("/load", conv.ID)
	(&console.LoadCommand{}).Execute(ctx)

	if ctx.GetSession().ConversationID != conv.ID {
		t.Errorf("session conversation = %q", ctx.GetSession().ConversationID)
	}
	if !ctx.HasReply("2 messages") {
		t.Errorf("replies = %v", ctx.Replies)
	}
	if !ctx.HasReply("[user] hello") || !ctx.HasReply("[assistant] hi there") {
		t.Errorf("transcript replay missing: %v", ctx.Replies)
	}
}

func TestLoadUnknownConversation(t *testing.T) {
	ctx := mocks.NewMockContext().WithCommand("/load", "ghost")
	(&console.LoadCommand{}).Execute(ctx)

	if ctx.GetSession().ConversationID != "" {
		t.Error("session switched to an unknown conversation")
	}
	if !ctx.HasReply("Failed to load") {
		t.Errorf("replies = %v", ctx.Replies)
	}
}

func TestRenameActiveConversation(t *testing.T) {
	ctx := mocks.NewMockContext()
	store := ctx.GetSystem().GetChatStore()
	conv, _ := store.Create(context.Background(), "New Chat")
	ctx.GetSession().ConversationID = conv.ID
	ctx.WithCommand("/rename", "LSTM", "research")

	(&console.RenameCommand{}).Execute(ctx)

	if !ctx.HasReply("Renamed to: LSTM research") {
		t.Errorf("replies = %v", ctx.Replies)
	}
	convs, _ := store.List(context.Background())
	if convs[0].Title != "LSTM research" {
		t.Errorf("title = %q", convs[0].Title)
	}
}

func TestRenameWithoutActiveConversation(t *testing.T) {
	ctx := mocks.NewMockContext().WithCommand("/rename", "title")
	(&console.RenameCommand{}).Execute(ctx)
	if !ctx.HasReply("No active conversation") {
		t.Errorf("replies = %v", ctx.Replies)
	}
}

func TestToolsListsRegisteredNames(t *testing.T) {
	sys := mocks.NewMockSystem(mocks.NewMockLLM())
	reg := tool.NewRegistry()
	for _, tl := range []tool.Tool{&tool.DocSearchTool{}, &tool.MetricsTool{}} {
		if err := reg.Register(tl); err != nil {
			t.Fatal(err)
		}
	}
	sys.Tools = reg

	ctx := mocks.NewMockContext().WithSystem(sys)
	(&console.ToolsCommand{}).Execute(ctx)

	if !ctx.HasReply("search_documents") || !ctx.HasReply("extract_performance_metrics") {
		t.Errorf("replies = %v", ctx.Replies)
	}
}

func TestSetAndGetRoundTrip(t *testing.T) {
	ctx := mocks.NewMockContext().WithCommand("/set", "maxtooliterations", "5")
	(&console.SetCommand{}).Execute(ctx)
	if !ctx.HasReply("maxtooliterations set to: 5") {
		t.Errorf("replies = %v", ctx.Replies)
	}
	if ctx.GetConfig().Assistant.MaxToolIterations != 5 {
		t.Errorf("config = %d", ctx.GetConfig().Assistant.MaxToolIterations)
	}

	ctx.WithCommand("/get", "maxtooliterations")
	(&console.GetCommand{}).Execute(ctx)
	if !strings.Contains(ctx.LastReply(), "maxtooliterations: 5") {
		t.Errorf("get reply = %q", ctx.LastReply())
	}
}

func TestSetUnknownKey(t *testing.T) {
	ctx := mocks.NewMockContext().WithCommand("/set", "nonsense", "1")
	(&console.SetCommand{}).Execute(ctx)
	if !ctx.HasReply(`Unknown key "nonsense"`) {
		t.Errorf("replies = %v", ctx.Replies)
	}
}

func TestSetRejectsBadValue(t *testing.T) {
	ctx := mocks.NewMockContext().WithCommand("/set", "temperature", "warm")
	before := ctx.GetConfig().Model.Temperature
	(&console.SetCommand{}).Execute(ctx)
	if !ctx.HasReply("invalid value for temperature") {
		t.Errorf("replies = %v", ctx.Replies)
	}
	if ctx.GetConfig().Model.Temperature != before {
		t.Error("bad value mutated config")
	}
}

func TestGetMasksAPIKeys(t *testing.T) {
	ctx := mocks.NewMockContext()
	ctx.GetConfig().API.OpenAIKey = "sk-verysecretkey"
	ctx.WithCommand("/get", "openaikey")
	(&console.GetCommand{}).Execute(ctx)

	reply := ctx.LastReply()
	if strings.Contains(reply, "verysecretkey") {
		t.Errorf("key leaked: %q", reply)
	}
	if !strings.Contains(reply, "sk-v") {
		t.Errorf("masked prefix missing: %q", reply)
	}
}

func TestHelpListsCommands(t *testing.T) {
	registry := console.NewRegistry()
	registry.Register(&console.NewChatCommand{})
	registry.Register(&console.ToolsCommand{})
	help := console.NewHelpCommand(registry)
	registry.Register(help)

	ctx := mocks.NewMockContext()
	help.Execute(ctx)

	reply := ctx.LastReply()
	for _, want := range []string{"/new", "/tools", "/help", "/quit"} {
		if !strings.Contains(reply, want) {
			t.Errorf("help missing %s: %q", want, reply)
		}
	}
}

func TestRegistryDispatch(t *testing.T) {
	registry := console.NewRegistry()
	registry.Register(&console.NewChatCommand{})

	ctx := mocks.NewMockContext().WithCommand("/new")
	if !registry.Dispatch(ctx) {
		t.Fatal("dispatch failed for registered command")
	}

	// Unknown command with no default registered
	ctx = mocks.NewMockContext().WithCommand("/bogus")
	if registry.Dispatch(ctx) {
		t.Error("dispatch claimed to handle an unknown command")
	}
}

func TestVersionCommand(t *testing.T) {
	ctx := mocks.NewMockContext()
	(&console.VersionCommand{Version: "0.9.0"}).Execute(ctx)
	if ctx.LastReply() != "scry 0.9.0" {
		t.Errorf("reply = %q", ctx.LastReply())
	}
}
