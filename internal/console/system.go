package console

import (
	"context"
	"fmt"
	"os"

	"pkdindustries/scry/internal/config"
	"pkdindustries/scry/internal/core"
	"pkdindustries/scry/internal/llm"
	"pkdindustries/scry/internal/retriever"
	"pkdindustries/scry/internal/store"
	"pkdindustries/scry/internal/tool"
)

// NewSystem wires the capabilities the orchestrator depends on: the tool
// registry, the conversation store, the retriever, and the model client.
func NewSystem(ctx context.Context, cfg *config.Configuration) (core.System, error) {
	logger := core.GetLogger()

	registry := tool.NewRegistry()
	builtins := []tool.Tool{
		tool.NewDocSearchTool(cfg.Search.MaxResults),
		tool.NewWebSearchTool(cfg.API.Timeout, cfg.Search.MaxResults),
		&tool.MetricsTool{},
		&tool.CompareTool{},
		&tool.ChartTool{},
		&tool.ReportTool{},
		tool.NewFinanceTool(cfg.API.Timeout),
		tool.NewAssetCompareTool(cfg.API.Timeout),
	}
	for _, t := range builtins {
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("register tool: %w", err)
		}
	}

	var chatStore core.ChatStore
	switch cfg.Store.Backend {
	case "postgres":
		if cfg.Store.PostgresURL == "" {
			return nil, fmt.Errorf("postgres store requires a postgres url")
		}
		pg, err := store.NewPGStore(ctx, cfg.Store.PostgresURL)
		if err != nil {
			return nil, err
		}
		chatStore = pg
	case "memory", "":
		chatStore = store.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	var embedder retriever.Embedder
	if cfg.API.OpenAIKey != "" {
		embedder = retriever.NewOpenAIEmbedder(cfg.API.EmbeddingURL, cfg.API.OpenAIKey, cfg.API.EmbeddingModel, cfg.API.Timeout)
	} else {
		// No embedding credentials; deterministic offline embedder
		logger.Infow("Using hash embedder", "reason", "no embedding credentials")
		embedder = retriever.NewHashEmbedder(256)
	}

	var docRetriever core.Retriever
	if cfg.Store.Backend == "postgres" {
		pgr, err := retriever.NewPGRetriever(ctx, cfg.Store.PostgresURL, embedder)
		if err != nil {
			return nil, err
		}
		docRetriever = pgr
	} else {
		mem := retriever.NewMemoryRetriever(embedder)
		if dir := cfg.Search.DocsDir; dir != "" {
			if _, err := os.Stat(dir); err == nil {
				n, err := mem.IngestDir(ctx, dir)
				if err != nil {
					logger.Warnw("Document ingestion failed", "dir", dir, "error", err)
				} else {
					logger.Infow("Documents indexed", "dir", dir, "chunks", n)
				}
			}
		}
		docRetriever = mem
	}

	return &core.SystemImpl{
		Tools:     registry,
		Store:     chatStore,
		Retriever: docRetriever,
		Client:    llm.NewPollyClient(*cfg.API),
	}, nil
}
