package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alexschlessinger/pollytool/messages"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pkdindustries/scry/internal/config"
	"pkdindustries/scry/internal/core"
	"pkdindustries/scry/internal/llm"
	"pkdindustries/scry/internal/tool"
)

// EventKind classifies a turn output event
type EventKind int

const (
	// EventEcho replays the user's message at the top of the turn
	EventEcho EventKind = iota
	// EventProgress announces a tool call before it runs
	EventProgress
	// EventToken is one fragment of the final answer, in generation order
	EventToken
	// EventProvenance is the trailing summary of sources and tools
	EventProvenance
	// EventArtifact is the path of a chart written to disk
	EventArtifact
	// EventError is a user-visible turn failure
	EventError
)

// Event is one fragment of a turn's output stream. Events for one turn are
// strictly ordered: echo, progress markers, answer tokens, provenance.
type Event struct {
	Kind EventKind
	Text string
}

// TurnResult summarizes a completed turn
type TurnResult struct {
	ConversationID string
	Answer         string
	ArtifactPaths  []string
}

var titleWords = regexp.MustCompile(`\w+`)

// deriveTitle builds a conversation title from the first words of a message
func deriveTitle(msg string) string {
	words := titleWords.FindAllString(msg, 4)
	return strings.Join(words, " ")
}

// Orchestrator drives the model's function-calling loop for one user turn:
// invoke the model, execute any requested tools, feed results back, and stream
// the final answer once the model stops asking for tools or the iteration
// bound forces it to.
type Orchestrator struct {
	cfg *config.Configuration
	sys core.System
}

func NewOrchestrator(cfg *config.Configuration, sys core.System) *Orchestrator {
	return &Orchestrator{cfg: cfg, sys: sys}
}

// ProcessTurn runs one user message to completion, emitting output events in
// order. The returned answer is always non-empty, "Error: <msg>" on failure,
// and has been persisted best-effort either way.
//
// Turns on the same conversation are serialized by a per-conversation lock;
// turns on different conversations run independently.
func (o *Orchestrator) ProcessTurn(ctx context.Context, conversationID, userMsg string, emit func(Event)) (TurnResult, error) {
	store := o.sys.GetChatStore()
	logger := core.GetLogger()

	if conversationID == "" {
		conv, err := store.Create(ctx, "New Chat")
		if err != nil {
			// Best-effort persistence; the turn still runs unpersisted
			logger.Warnw("Conversation create failed", "error", err)
		} else {
			conversationID = conv.ID
		}
	}
	logger = core.WithConversation(logger, conversationID)
	defer core.LogDuration(logger, "process_turn", time.Now())

	if conversationID != "" {
		lock := core.GetRequestLock(conversationID)
		if !lock.LockWithContext(ctx) {
			return TurnResult{ConversationID: conversationID}, ctx.Err()
		}
		defer lock.Unlock()
	}

	var prior []core.StoredMessage
	if conversationID != "" {
		var err error
		prior, err = store.Messages(ctx, conversationID)
		if err != nil {
			logger.Warnw("History load failed", "error", err)
		}
	}
	firstTurn := len(prior) == 0

	state := NewConversationState(conversationID, o.cfg.Assistant.Prompt, prior)
	state.AppendUser(userMsg)

	emit(Event{Kind: EventEcho, Text: "You: " + userMsg})

	o.persist(ctx, logger, conversationID, "user", userMsg)
	if firstTurn && conversationID != "" {
		if title := deriveTitle(userMsg); title != "" {
			if err := store.Rename(ctx, conversationID, title); err != nil {
				logger.Warnw("Title update failed", "error", err)
			}
		}
	}

	toolCtx := core.InjectToolContext(ctx, &core.ToolContext{Retriever: o.sys.GetRetriever()})
	provenance := NewAggregator(o.cfg.Search.WebSourceLimit)

	answer, err := o.runToolLoop(toolCtx, logger, state, provenance, emit)
	if err != nil {
		answer = "Error: " + err.Error()
		emit(Event{Kind: EventError, Text: answer})
		o.persist(ctx, logger, conversationID, "assistant", answer)
		return TurnResult{ConversationID: conversationID, Answer: answer}, err
	}

	persisted := answer
	if block := provenance.Render(); block != "" {
		emit(Event{Kind: EventProvenance, Text: block})
		persisted = answer + "\n\n" + block
	}
	o.persist(ctx, logger, conversationID, "assistant", persisted)

	paths := o.saveArtifacts(logger, provenance.Artifacts(), emit)

	return TurnResult{
		ConversationID: conversationID,
		Answer:         answer,
		ArtifactPaths:  paths,
	}, nil
}

// runToolLoop performs the bounded request/tool-call/result cycle and returns
// the final answer text. The first model round is mandatory; at most
// MaxToolIterations additional rounds follow. If the last permitted response
// still requests tools, that request is discarded without dispatch and the
// final answer is produced from what was gathered. That is a designed policy
// outcome, not an error.
func (o *Orchestrator) runToolLoop(ctx context.Context, logger *zap.SugaredLogger, state *ConversationState, provenance *Aggregator, emit func(Event)) (string, error) {
	client := o.sys.GetLLM()
	registry := o.sys.GetToolRegistry()
	toolset := registry.All()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	response, err := client.Invoke(ctx, llm.NewCompletionRequest(o.cfg, state.History(), toolset))
	if err != nil {
		return "", err
	}

	if len(response.ToolCalls) == 0 && response.Content != "" {
		// Direct answer, no extra call needed
		emit(Event{Kind: EventToken, Text: response.Content})
		state.AppendAssistant(response.Content)
		return response.Content, nil
	}

	maxIterations := o.cfg.Assistant.MaxToolIterations
	if len(response.ToolCalls) > 0 {
		o.executeBatch(ctx, state, provenance, response.ToolCalls, emit)

		for i := 1; i <= maxIterations; i++ {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			response, err = client.Invoke(ctx, llm.NewCompletionRequest(o.cfg, state.History(), toolset))
			if err != nil {
				return "", err
			}
			if len(response.ToolCalls) == 0 {
				if response.Content != "" {
					emit(Event{Kind: EventToken, Text: response.Content})
					state.AppendAssistant(response.Content)
					return response.Content, nil
				}
				break
			}
			if i == maxIterations {
				logger.Infow("Iteration bound reached, discarding tool request",
					"requested", len(response.ToolCalls), "bound", maxIterations)
				break
			}
			o.executeBatch(ctx, state, provenance, response.ToolCalls, emit)
			state.IterationCount = i
		}
	}

	// Streaming final answer with tool calling disabled
	if err := ctx.Err(); err != nil {
		return "", err
	}
	final, err := client.InvokeStream(ctx, llm.NewCompletionRequest(o.cfg, state.History(), nil), func(token string) {
		emit(Event{Kind: EventToken, Text: token})
	})
	if err != nil {
		return "", err
	}
	state.AppendAssistant(final.Content)
	return final.Content, nil
}

// executeBatch dispatches one model response's tool calls strictly in the
// order the model listed them. Later calls may depend on earlier results being
// in context, so there is no parallelism here.
func (o *Orchestrator) executeBatch(ctx context.Context, state *ConversationState, provenance *Aggregator, calls []messages.ChatMessageToolCall, emit func(Event)) {
	registry := o.sys.GetToolRegistry()
	for _, call := range calls {
		if ctx.Err() != nil {
			return
		}

		var args map[string]any
		var parseErr error
		if call.Arguments != "" {
			parseErr = json.Unmarshal([]byte(call.Arguments), &args)
		}

		progress := "calling " + tool.DisplayName(call.Name)
		if arg := tool.PrimaryArg(args); arg != "" {
			progress += ": " + arg
		}
		emit(Event{Kind: EventProgress, Text: progress})

		state.AppendToolCall(call)
		var res core.ToolResult
		if parseErr != nil {
			res = core.ToolFailure("invalid tool arguments: %v", parseErr)
		} else {
			res = registry.Dispatch(ctx, call.Name, args)
		}
		if err := state.AppendToolResult(call.ID, res); err != nil {
			core.GetLogger().Warnw("Dropping tool result", "error", err)
			continue
		}
		provenance.Record(call.Name, res)
	}
}

// persist appends a message best-effort; failures are logged, never fatal
func (o *Orchestrator) persist(ctx context.Context, logger *zap.SugaredLogger, conversationID, role, content string) {
	if conversationID == "" {
		return
	}
	if err := o.sys.GetChatStore().Append(ctx, conversationID, role, content); err != nil {
		logger.Warnw("Message persistence failed", "role", role, "error", err)
	}
}

// saveArtifacts writes chart PNGs to the artifact directory and emits their
// paths
func (o *Orchestrator) saveArtifacts(logger *zap.SugaredLogger, artifacts []core.Artifact, emit func(Event)) []string {
	if len(artifacts) == 0 {
		return nil
	}
	dir := o.cfg.Assistant.ArtifactDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warnw("Artifact directory creation failed", "dir", dir, "error", err)
		return nil
	}

	var paths []string
	for _, artifact := range artifacts {
		path := filepath.Join(dir, uuid.NewString()+".png")
		if err := os.WriteFile(path, artifact.PNG, 0o644); err != nil {
			logger.Warnw("Artifact write failed", "path", path, "error", err)
			continue
		}
		emit(Event{Kind: EventArtifact, Text: fmt.Sprintf("[chart saved: %s (%s)]", path, artifact.Title)})
		paths = append(paths, path)
	}
	return paths
}
