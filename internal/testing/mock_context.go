package testing

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"pkdindustries/scry/internal/config"
	"pkdindustries/scry/internal/console"
	"pkdindustries/scry/internal/core"
)

// MockConsoleContext implements console.ConsoleContextInterface for testing
type MockConsoleContext struct {
	context.Context

	Command string
	Args    []string
	Message string

	// Recorded calls (for assertions)
	Replies []string

	session *console.Session
	cfg     *config.Configuration
	sys     core.System
	logger  *zap.SugaredLogger
}

var _ console.ConsoleContextInterface = (*MockConsoleContext)(nil)

// NewMockContext creates a MockConsoleContext with sensible defaults
func NewMockContext() *MockConsoleContext {
	return &MockConsoleContext{
		Context: context.Background(),
		Args:    []string{},
		Replies: []string{},
		session: &console.Session{},
		cfg:     DefaultTestConfig(),
		sys:     NewMockSystem(NewMockLLM()),
		logger:  zap.NewNop().Sugar(),
	}
}

// Builder methods for fluent test setup

func (m *MockConsoleContext) WithContext(ctx context.Context) *MockConsoleContext {
	m.Context = ctx
	return m
}

func (m *MockConsoleContext) WithCommand(command string, args ...string) *MockConsoleContext {
	m.Command = command
	m.Args = args
	m.Message = strings.Join(args, " ")
	return m
}

func (m *MockConsoleContext) WithMessage(msg string) *MockConsoleContext {
	m.Message = msg
	m.Args = strings.Fields(msg)
	return m
}

func (m *MockConsoleContext) WithSystem(sys core.System) *MockConsoleContext {
	m.sys = sys
	return m
}

func (m *MockConsoleContext) WithConfig(cfg *config.Configuration) *MockConsoleContext {
	m.cfg = cfg
	return m
}

func (m *MockConsoleContext) WithSession(session *console.Session) *MockConsoleContext {
	m.session = session
	return m
}

// Interface implementation

func (m *MockConsoleContext) GetCommand() string { return m.Command }

func (m *MockConsoleContext) GetArgs() []string { return m.Args }

func (m *MockConsoleContext) GetMessage() string { return m.Message }

func (m *MockConsoleContext) Reply(text string) { m.Replies = append(m.Replies, text) }

func (m *MockConsoleContext) GetSession() *console.Session { return m.session }

func (m *MockConsoleContext) GetConfig() *config.Configuration { return m.cfg }

func (m *MockConsoleContext) GetSystem() core.System { return m.sys }

func (m *MockConsoleContext) GetLogger() *zap.SugaredLogger { return m.logger }

// Assertion helpers

// HasReply reports whether any reply contains the substring
func (m *MockConsoleContext) HasReply(substr string) bool {
	for _, r := range m.Replies {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}

// LastReply returns the most recent reply, or "" if none
func (m *MockConsoleContext) LastReply() string {
	if len(m.Replies) == 0 {
		return ""
	}
	return m.Replies[len(m.Replies)-1]
}

// ReplyCount returns the number of replies recorded
func (m *MockConsoleContext) ReplyCount() int {
	return len(m.Replies)
}
