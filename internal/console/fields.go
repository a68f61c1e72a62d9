package console

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"pkdindustries/scry/internal/config"
)

// configField defines how to get and set a configuration value
type configField struct {
	setter func(*config.Configuration, string) error
	getter func(*config.Configuration) string
}

// configFields maps parameter names to their handlers
var configFields = map[string]configField{
	"prompt": {
		setter: func(c *config.Configuration, v string) error { c.Assistant.Prompt = v; return nil },
		getter: func(c *config.Configuration) string { return c.Assistant.Prompt },
	},
	"model": {
		setter: func(c *config.Configuration, v string) error { c.Model.Model = v; return nil },
		getter: func(c *config.Configuration) string { return c.Model.Model },
	},
	"maxtokens": {
		setter: func(c *config.Configuration, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for maxtokens. Please provide a valid integer")
			}
			c.Model.MaxTokens = n
			return nil
		},
		getter: func(c *config.Configuration) string { return fmt.Sprintf("%d", c.Model.MaxTokens) },
	},
	"temperature": {
		setter: func(c *config.Configuration, v string) error {
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return fmt.Errorf("invalid value for temperature. Please provide a valid float")
			}
			c.Model.Temperature = float32(f)
			return nil
		},
		getter: func(c *config.Configuration) string { return fmt.Sprintf("%f", c.Model.Temperature) },
	},
	"top_p": {
		setter: func(c *config.Configuration, v string) error {
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return fmt.Errorf("invalid value for top_p. Please provide a valid float")
			}
			if f < 0 || f > 1 {
				return fmt.Errorf("invalid value for top_p. Please provide a float between 0 and 1")
			}
			c.Model.TopP = float32(f)
			return nil
		},
		getter: func(c *config.Configuration) string { return fmt.Sprintf("%f", c.Model.TopP) },
	},
	"thinking": {
		setter: func(c *config.Configuration, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for thinking. Please provide 'true' or 'false'")
			}
			c.Model.Thinking = b
			return nil
		},
		getter: func(c *config.Configuration) string { return fmt.Sprintf("%t", c.Model.Thinking) },
	},
	"apitimeout": {
		setter: func(c *config.Configuration, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for apitimeout. Please provide a valid duration (e.g. 30s, 5m)")
			}
			c.API.Timeout = d
			return nil
		},
		getter: func(c *config.Configuration) string { return c.API.Timeout.String() },
	},
	"maxtooliterations": {
		setter: func(c *config.Configuration, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for maxtooliterations. Please provide a valid integer")
			}
			c.Assistant.MaxToolIterations = n
			return nil
		},
		getter: func(c *config.Configuration) string { return fmt.Sprintf("%d", c.Assistant.MaxToolIterations) },
	},
	"maxresults": {
		setter: func(c *config.Configuration, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for maxresults. Please provide a valid integer")
			}
			c.Search.MaxResults = n
			return nil
		},
		getter: func(c *config.Configuration) string { return fmt.Sprintf("%d", c.Search.MaxResults) },
	},
	"websourcelimit": {
		setter: func(c *config.Configuration, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for websourcelimit. Please provide a valid integer")
			}
			c.Search.WebSourceLimit = n
			return nil
		},
		getter: func(c *config.Configuration) string { return fmt.Sprintf("%d", c.Search.WebSourceLimit) },
	},
	"openaiurl": {
		setter: func(c *config.Configuration, v string) error { c.API.OpenAIURL = v; return nil },
		getter: func(c *config.Configuration) string { return c.API.OpenAIURL },
	},
	"ollamaurl": {
		setter: func(c *config.Configuration, v string) error { c.API.OllamaURL = v; return nil },
		getter: func(c *config.Configuration) string { return c.API.OllamaURL },
	},
	"openaikey": {
		setter: func(c *config.Configuration, v string) error { c.API.OpenAIKey = v; return nil },
		getter: func(c *config.Configuration) string { return maskAPIKey(c.API.OpenAIKey) },
	},
	"anthropickey": {
		setter: func(c *config.Configuration, v string) error { c.API.AnthropicKey = v; return nil },
		getter: func(c *config.Configuration) string { return maskAPIKey(c.API.AnthropicKey) },
	},
	"geminikey": {
		setter: func(c *config.Configuration, v string) error { c.API.GeminiKey = v; return nil },
		getter: func(c *config.Configuration) string { return maskAPIKey(c.API.GeminiKey) },
	},
}

// sortedKeys returns all available config keys in stable order
func sortedKeys() []string {
	keys := make([]string, 0, len(configFields))
	for k := range configFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// maskAPIKey returns a masked version of an API key showing only first 4 chars
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}

// SetCommand handles /set <key> <value>
type SetCommand struct{}

func (c *SetCommand) Name() string { return "/set" }

func (c *SetCommand) Execute(ctx ConsoleContextInterface) {
	args := ctx.GetArgs()
	if len(args) < 2 {
		ctx.Reply(fmt.Sprintf("Usage: /set <key> <value>. Available keys: %s", strings.Join(sortedKeys(), ", ")))
		return
	}
	key := args[0]
	value := strings.Join(args[1:], " ")

	field, ok := configFields[key]
	if !ok {
		ctx.Reply(fmt.Sprintf("Unknown key %q. Available keys: %s", key, strings.Join(sortedKeys(), ", ")))
		return
	}
	if err := field.setter(ctx.GetConfig(), value); err != nil {
		ctx.Reply(err.Error())
		return
	}
	ctx.Reply(fmt.Sprintf("%s set to: %s", key, field.getter(ctx.GetConfig())))
}

// GetCommand handles /get <key>
type GetCommand struct{}

func (c *GetCommand) Name() string { return "/get" }

func (c *GetCommand) Execute(ctx ConsoleContextInterface) {
	args := ctx.GetArgs()
	if len(args) != 1 {
		ctx.Reply(fmt.Sprintf("Usage: /get <key>. Available keys: %s", strings.Join(sortedKeys(), ", ")))
		return
	}
	field, ok := configFields[args[0]]
	if !ok {
		ctx.Reply(fmt.Sprintf("Unknown key %q. Available keys: %s", args[0], strings.Join(sortedKeys(), ", ")))
		return
	}
	ctx.Reply(fmt.Sprintf("%s: %s", args[0], field.getter(ctx.GetConfig())))
}
