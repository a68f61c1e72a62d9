package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Configuration struct {
	Assistant *AssistantConfig
	Model     *ModelConfig
	API       *APIConfig
	Store     *StoreConfig
	Search    *SearchConfig
}

type AssistantConfig struct {
	Verbose bool
	Prompt  string
	// MaxToolIterations caps the number of additional model round trips after
	// the first; when the model still requests tools past the cap, the request
	// is discarded and the final answer is produced from what was gathered.
	MaxToolIterations int
	ArtifactDir       string
}

type ModelConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
	Thinking    bool
}

type APIConfig struct {
	Timeout        time.Duration
	OpenAIKey      string
	OpenAIURL      string
	AnthropicKey   string
	GeminiKey      string
	OllamaURL      string
	OllamaKey      string
	EmbeddingURL   string
	EmbeddingModel string
}

type StoreConfig struct {
	Backend     string // "memory" or "postgres"
	PostgresURL string
}

type SearchConfig struct {
	// MaxResults is the default k for document and web search tools,
	// overridable per call through the tool's max_results parameter
	MaxResults int
	// WebSourceLimit caps the web URLs listed in the provenance block
	WebSourceLimit int
	DocsDir        string
}

// YamlSource implements cli.ValueSource for a map loaded from YAML
type YamlSource struct {
	data map[string]any
	key  string
}

func (y *YamlSource) Lookup() (string, bool) {
	if v, ok := y.data[y.key]; ok {
		// Handle slices by joining with comma
		if slice, ok := v.([]any); ok {
			var strs []string
			for _, item := range slice {
				strs = append(strs, fmt.Sprintf("%v", item))
			}
			return strings.Join(strs, ","), true
		}
		return fmt.Sprintf("%v", v), true
	}
	return "", false
}

func (y *YamlSource) String() string   { return "yaml" }
func (y *YamlSource) GoString() string { return "yaml" }

func GetFlags() []cli.Flag {
	// Pre-parse config path
	configPath := getConfigPath()
	var configData map[string]any
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			_ = yaml.Unmarshal(data, &configData)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: failed to read config file %s: %v\n", configPath, err)
		}
	}

	// Helper to create sources: EnvVar > YAML > Default
	src := func(key string, env ...string) cli.ValueSourceChain {
		chain := cli.ValueSourceChain{}
		for _, e := range env {
			chain.Chain = append(chain.Chain, cli.EnvVar(e))
		}
		if configData != nil {
			chain.Chain = append(chain.Chain, &YamlSource{data: configData, key: key})
		}
		return chain
	}

	return []cli.Flag{
		// Config file
		&cli.StringFlag{Name: "config", Aliases: []string{"b"}, Usage: "use the named configuration file", Sources: cli.EnvVars("SCRY_CONFIG")},

		// Assistant behavior
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "enable verbose logging of turns and configuration", Sources: src("verbose", "SCRY_VERBOSE")},
		&cli.StringFlag{Name: "prompt", Value: "you are a research assistant. cite your sources. use the available tools when they help answer the question.", Usage: "initial system prompt", Sources: src("prompt", "SCRY_PROMPT")},
		&cli.IntFlag{Name: "maxtooliterations", Value: 3, Usage: "maximum additional tool rounds after the first model response", Sources: src("maxtooliterations", "SCRY_MAXTOOLITERATIONS")},
		&cli.StringFlag{Name: "artifactdir", Value: "artifacts", Usage: "directory where generated charts are written", Sources: src("artifactdir", "SCRY_ARTIFACTDIR")},

		// API Configuration
		&cli.StringFlag{Name: "openaikey", Usage: "OpenAI API key", Sources: src("openaikey", "SCRY_OPENAIKEY")},
		&cli.StringFlag{Name: "openaiurl", Usage: "OpenAI API URL (for custom endpoints)", Sources: src("openaiurl", "SCRY_OPENAIURL")},
		&cli.StringFlag{Name: "anthropickey", Usage: "Anthropic API key", Sources: src("anthropickey", "SCRY_ANTHROPICKEY")},
		&cli.StringFlag{Name: "geminikey", Usage: "Google Gemini API key", Sources: src("geminikey", "SCRY_GEMINIKEY")},
		&cli.StringFlag{Name: "ollamaurl", Value: "http://localhost:11434", Usage: "Ollama API URL", Sources: src("ollamaurl", "SCRY_OLLAMAURL")},
		&cli.StringFlag{Name: "ollamakey", Usage: "Ollama API key (Bearer token for authentication)", Sources: src("ollamakey", "SCRY_OLLAMAKEY")},
		&cli.StringFlag{Name: "embeddingurl", Value: "https://api.openai.com/v1/embeddings", Usage: "embedding endpoint (OpenAI-compatible)", Sources: src("embeddingurl", "SCRY_EMBEDDINGURL")},
		&cli.StringFlag{Name: "embeddingmodel", Value: "text-embedding-3-small", Usage: "embedding model name", Sources: src("embeddingmodel", "SCRY_EMBEDDINGMODEL")},
		&cli.IntFlag{Name: "maxtokens", Value: 4096, Usage: "maximum number of tokens to generate", Sources: src("maxtokens", "SCRY_MAXTOKENS")},
		&cli.StringFlag{Name: "model", Value: "openai/gpt-4o-mini", Usage: "model to be used for responses", Sources: src("model", "SCRY_MODEL")},
		&cli.DurationFlag{Name: "apitimeout", Aliases: []string{"t"}, Value: time.Minute * 5, Usage: "timeout for each completion request", Sources: src("apitimeout", "SCRY_APITIMEOUT")},
		&cli.FloatFlag{Name: "temperature", Value: 0.7, Usage: "temperature for the completion", Sources: src("temperature", "SCRY_TEMPERATURE")},
		&cli.FloatFlag{Name: "top_p", Value: 1.0, Usage: "top P value for the completion", Sources: src("top_p", "SCRY_TOP_P")},
		&cli.BoolFlag{Name: "thinking", Usage: "enable thinking/reasoning for models that support it", Sources: src("thinking", "SCRY_THINKING")},

		// Persistence
		&cli.StringFlag{Name: "store", Value: "memory", Usage: "conversation store backend (memory or postgres)", Sources: src("store", "SCRY_STORE")},
		&cli.StringFlag{Name: "postgresurl", Usage: "postgres connection string for the conversation store and pgvector retriever", Sources: src("postgresurl", "SCRY_POSTGRESURL")},

		// Retrieval and search
		&cli.IntFlag{Name: "maxresults", Aliases: []string{"k"}, Value: 5, Usage: "default result count for document and web search", Sources: src("maxresults", "SCRY_MAXRESULTS")},
		&cli.IntFlag{Name: "websourcelimit", Value: 3, Usage: "maximum web URLs listed in the provenance block", Sources: src("websourcelimit", "SCRY_WEBSOURCELIMIT")},
		&cli.StringFlag{Name: "docsdir", Value: "docs", Usage: "directory of documents to index at startup", Sources: src("docsdir", "SCRY_DOCSDIR")},
	}
}

func getConfigPath() string {
	// Check env first
	if v := os.Getenv("SCRY_CONFIG"); v != "" {
		return v
	}
	// Check args
	for i, arg := range os.Args {
		if arg == "--config" || arg == "-b" {
			if i+1 < len(os.Args) {
				return os.Args[i+1]
			}
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

func maskKey(key string) string {
	if len(key) > 3 {
		return strings.Repeat("*", len(key)-3) + key[len(key)-3:]
	}
	return key
}

func (c *Configuration) PrintConfig() {
	fmt.Printf("verbose: %t\n", c.Assistant.Verbose)
	fmt.Printf("maxtooliterations: %d\n", c.Assistant.MaxToolIterations)
	fmt.Printf("artifactdir: %s\n", c.Assistant.ArtifactDir)
	fmt.Printf("model: %s\n", c.Model.Model)
	fmt.Printf("maxtokens: %d\n", c.Model.MaxTokens)
	fmt.Printf("temperature: %f\n", c.Model.Temperature)
	fmt.Printf("topp: %f\n", c.Model.TopP)
	fmt.Printf("thinking: %t\n", c.Model.Thinking)
	fmt.Printf("apitimeout: %s\n", c.API.Timeout)
	fmt.Printf("openaikey: %s\n", maskKey(c.API.OpenAIKey))
	fmt.Printf("anthropickey: %s\n", maskKey(c.API.AnthropicKey))
	fmt.Printf("geminikey: %s\n", maskKey(c.API.GeminiKey))
	fmt.Printf("openaiurl: %s\n", c.API.OpenAIURL)
	fmt.Printf("ollamaurl: %s\n", c.API.OllamaURL)
	fmt.Printf("embeddingurl: %s\n", c.API.EmbeddingURL)
	fmt.Printf("embeddingmodel: %s\n", c.API.EmbeddingModel)
	fmt.Printf("store: %s\n", c.Store.Backend)
	fmt.Printf("maxresults: %d\n", c.Search.MaxResults)
	fmt.Printf("websourcelimit: %d\n", c.Search.WebSourceLimit)
	fmt.Printf("docsdir: %s\n", c.Search.DocsDir)
	fmt.Printf("prompt: %s\n", c.Assistant.Prompt)
}

func NewConfiguration(c *cli.Command) *Configuration {
	if c.IsSet("config") {
		zap.S().Infow("Using config file", "path", c.String("config"))
	}

	config := &Configuration{
		Assistant: &AssistantConfig{
			Verbose:           c.Bool("verbose"),
			Prompt:            c.String("prompt"),
			MaxToolIterations: c.Int("maxtooliterations"),
			ArtifactDir:       c.String("artifactdir"),
		},
		Model: &ModelConfig{
			Model:       c.String("model"),
			MaxTokens:   c.Int("maxtokens"),
			Temperature: float32(c.Float("temperature")),
			TopP:        float32(c.Float("top_p")),
			Thinking:    c.Bool("thinking"),
		},
		API: &APIConfig{
			Timeout:        c.Duration("apitimeout"),
			OpenAIKey:      c.String("openaikey"),
			OpenAIURL:      c.String("openaiurl"),
			AnthropicKey:   c.String("anthropickey"),
			GeminiKey:      c.String("geminikey"),
			OllamaURL:      c.String("ollamaurl"),
			OllamaKey:      c.String("ollamakey"),
			EmbeddingURL:   c.String("embeddingurl"),
			EmbeddingModel: c.String("embeddingmodel"),
		},
		Store: &StoreConfig{
			Backend:     c.String("store"),
			PostgresURL: c.String("postgresurl"),
		},
		Search: &SearchConfig{
			MaxResults:     c.Int("maxresults"),
			WebSourceLimit: c.Int("websourcelimit"),
			DocsDir:        c.String("docsdir"),
		},
	}

	return config
}
