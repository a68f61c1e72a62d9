package console

import (
	"fmt"
	"os"

	"pkdindustries/scry/internal/chat"
)

// TurnCommand is the default command: any line that is not a slash command
// runs as a user turn through the orchestrator.
type TurnCommand struct {
	orchestrator *chat.Orchestrator
}

func NewTurnCommand(orchestrator *chat.Orchestrator) *TurnCommand {
	return &TurnCommand{orchestrator: orchestrator}
}

func (c *TurnCommand) Name() string { return "" }

func (c *TurnCommand) Execute(ctx ConsoleContextInterface) {
	msg := ctx.GetMessage()
	if msg == "" {
		return
	}
	session := ctx.GetSession()

	result, err := c.orchestrator.ProcessTurn(ctx, session.ConversationID, msg, printEvent)
	fmt.Println()
	if err != nil {
		ctx.GetLogger().Warnw("Turn failed", "error", err)
	}
	if result.ConversationID != "" {
		session.ConversationID = result.ConversationID
	}
}

// printEvent renders one turn output event to the terminal as it arrives
func printEvent(e chat.Event) {
	switch e.Kind {
	case chat.EventEcho:
		fmt.Println(e.Text)
		fmt.Println()
	case chat.EventProgress:
		fmt.Println("→ " + e.Text)
	case chat.EventToken:
		// Tokens stream inline without buffering
		fmt.Print(e.Text)
		os.Stdout.Sync()
	case chat.EventProvenance:
		fmt.Println()
		fmt.Println()
		fmt.Println(e.Text)
	case chat.EventArtifact:
		fmt.Println(e.Text)
	case chat.EventError:
		fmt.Println()
		fmt.Println(e.Text)
	}
}
