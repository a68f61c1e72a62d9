package console

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"pkdindustries/scry/internal/chat"
	"pkdindustries/scry/internal/config"
	"pkdindustries/scry/internal/core"
)

// Run starts the REPL: read a line, dispatch it, repeat until /quit or EOF.
// Each line gets its own request-scoped context with the configured timeout.
func Run(ctx context.Context, cfg *config.Configuration, system core.System, version string) error {
	logger := core.GetLogger()

	registry := NewRegistry()
	registry.Register(&NewChatCommand{})
	registry.Register(&ChatsCommand{})
	registry.Register(&LoadCommand{})
	registry.Register(&RenameCommand{})
	registry.Register(&ToolsCommand{})
	registry.Register(&ConfigCommand{})
	registry.Register(&SetCommand{})
	registry.Register(&GetCommand{})
	registry.Register(&VersionCommand{Version: version})
	registry.Register(NewHelpCommand(registry))
	registry.Register(NewTurnCommand(chat.NewOrchestrator(cfg, system)))

	session := &Session{}
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Println("Type a question, or /help for commands.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		lineCtx, cancel := NewConsoleContext(ctx, cfg, system, session, line)
		registry.Dispatch(lineCtx)
		cancel()

		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warnw("Input read failed", "error", err)
		return err
	}
	return nil
}
