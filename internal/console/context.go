// Package console is the REPL frontend: it reads lines, routes slash commands
// through a command registry, and sends everything else to the orchestrator as
// a user turn.
package console

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pkdindustries/scry/internal/config"
	"pkdindustries/scry/internal/core"
)

// Session is the REPL's cross-turn state: which conversation input goes to
type Session struct {
	ConversationID string
}

// ConsoleContextInterface provides everything a command needs to execute
type ConsoleContextInterface interface {
	context.Context

	GetCommand() string
	GetArgs() []string
	GetMessage() string

	Reply(string)

	GetSession() *Session
	GetConfig() *config.Configuration
	GetSystem() core.System
	GetLogger() *zap.SugaredLogger
}

type ConsoleContext struct {
	context.Context
	Config  *config.Configuration
	Sys     core.System
	Session *Session

	line      string
	command   string
	args      []string
	logger    *zap.SugaredLogger
	requestID string
}

var _ ConsoleContextInterface = (*ConsoleContext)(nil)

// NewConsoleContext wraps one input line with request-scoped logging and the
// per-request timeout
func NewConsoleContext(parent context.Context, cfg *config.Configuration, system core.System, session *Session, line string) (ConsoleContextInterface, context.CancelFunc) {
	timedctx, cancel := context.WithTimeout(parent, cfg.API.Timeout)

	requestID := generateRequestID()
	ctx := &ConsoleContext{
		Context:   timedctx,
		Config:    cfg,
		Sys:       system,
		Session:   session,
		line:      line,
		requestID: requestID,
		logger: zap.S().With(
			"request_id", requestID,
		),
	}

	fields := strings.Fields(line)
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		ctx.command = fields[0]
		ctx.args = fields[1:]
	} else {
		ctx.args = fields
	}

	return ctx, cancel
}

func generateRequestID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)
}

// GetCommand returns the slash command for this line, or "" for a chat turn
func (c *ConsoleContext) GetCommand() string {
	return c.command
}

func (c *ConsoleContext) GetArgs() []string {
	return c.args
}

// GetMessage returns the input line with any slash command stripped
func (c *ConsoleContext) GetMessage() string {
	if c.command == "" {
		return strings.TrimSpace(c.line)
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(c.line), c.command))
}

func (c *ConsoleContext) Reply(text string) {
	fmt.Println(text)
}

func (c *ConsoleContext) GetSession() *Session {
	return c.Session
}

func (c *ConsoleContext) GetConfig() *config.Configuration {
	return c.Config
}

func (c *ConsoleContext) GetSystem() core.System {
	return c.Sys
}

func (c *ConsoleContext) GetLogger() *zap.SugaredLogger {
	return c.logger
}
