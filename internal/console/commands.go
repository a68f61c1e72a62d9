package console

import (
	"fmt"
	"sort"
	"strings"
)

// NewChatCommand handles /new: start a fresh conversation
type NewChatCommand struct{}

func (c *NewChatCommand) Name() string { return "/new" }

func (c *NewChatCommand) Execute(ctx ConsoleContextInterface) {
	ctx.GetSession().ConversationID = ""
	ctx.Reply("Started a new conversation.")
}

// ChatsCommand handles /chats: list stored conversations
type ChatsCommand struct{}

func (c *ChatsCommand) Name() string { return "/chats" }

func (c *ChatsCommand) Execute(ctx ConsoleContextInterface) {
	convs, err := ctx.GetSystem().GetChatStore().List(ctx)
	if err != nil {
		ctx.Reply(fmt.Sprintf("Failed to list conversations: %v", err))
		return
	}
	if len(convs) == 0 {
		ctx.Reply("No conversations yet.")
		return
	}
	active := ctx.GetSession().ConversationID
	for _, conv := range convs {
		marker := "  "
		if conv.ID == active {
			marker = "* "
		}
		ctx.Reply(fmt.Sprintf("%s%s  %s  (%s)", marker, conv.ID, conv.Title, conv.CreatedAt.Format("2006-01-02 15:04")))
	}
}

// LoadCommand handles /load <id>: switch to a stored conversation
type LoadCommand struct{}

func (c *LoadCommand) Name() string { return "/load" }

func (c *LoadCommand) Execute(ctx ConsoleContextInterface) {
	args := ctx.GetArgs()
	if len(args) != 1 {
		ctx.Reply("Usage: /load <conversation-id>")
		return
	}
	id := args[0]

	msgs, err := ctx.GetSystem().GetChatStore().Messages(ctx, id)
	if err != nil {
		ctx.Reply(fmt.Sprintf("Failed to load conversation: %v", err))
		return
	}
	ctx.GetSession().ConversationID = id
	ctx.Reply(fmt.Sprintf("Loaded conversation %s (%d messages).", id, len(msgs)))
	for _, m := range msgs {
		ctx.Reply(fmt.Sprintf("[%s] %s", m.Role, m.Content))
	}
}

// RenameCommand handles /rename <title>: retitle the active conversation
type RenameCommand struct{}

func (c *RenameCommand) Name() string { return "/rename" }

func (c *RenameCommand) Execute(ctx ConsoleContextInterface) {
	title := ctx.GetMessage()
	if title == "" {
		ctx.Reply("Usage: /rename <title>")
		return
	}
	id := ctx.GetSession().ConversationID
	if id == "" {
		ctx.Reply("No active conversation to rename.")
		return
	}
	if err := ctx.GetSystem().GetChatStore().Rename(ctx, id, title); err != nil {
		ctx.Reply(fmt.Sprintf("Failed to rename conversation: %v", err))
		return
	}
	ctx.Reply("Renamed to: " + title)
}

// ToolsCommand handles /tools: list registered tools
type ToolsCommand struct{}

func (c *ToolsCommand) Name() string { return "/tools" }

func (c *ToolsCommand) Execute(ctx ConsoleContextInterface) {
	names := ctx.GetSystem().GetToolRegistry().Names()
	if len(names) == 0 {
		ctx.Reply("No tools loaded")
		return
	}
	ctx.Reply("Tools: " + strings.Join(names, ", "))
}

// ConfigCommand handles /config: print the running configuration
type ConfigCommand struct{}

func (c *ConfigCommand) Name() string { return "/config" }

func (c *ConfigCommand) Execute(ctx ConsoleContextInterface) {
	ctx.GetConfig().PrintConfig()
}

// HelpCommand handles /help
type HelpCommand struct {
	registry *Registry
}

// NewHelpCommand creates a help command that can list registered commands
func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{registry: registry}
}

func (c *HelpCommand) Name() string { return "/help" }

func (c *HelpCommand) Execute(ctx ConsoleContextInterface) {
	var names []string
	for _, cmd := range c.registry.All() {
		if name := cmd.Name(); name != "" {
			names = append(names, name)
		}
	}
	names = append(names, "/quit")
	sort.Strings(names)
	ctx.Reply("Supported commands: " + strings.Join(names, ", "))
}

// VersionCommand handles /version
type VersionCommand struct {
	Version string
}

func (c *VersionCommand) Name() string { return "/version" }

func (c *VersionCommand) Execute(ctx ConsoleContextInterface) {
	ctx.Reply("scry " + c.Version)
}
