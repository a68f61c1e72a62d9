package tool

import (
	"fmt"
	"math"

	"github.com/google/jsonschema-go/jsonschema"
)

// ValidateArgs checks a call's arguments against the tool schema and returns
// the validated set. Required parameters must be present, provided values must
// match the declared type, unknown parameters are dropped rather than
// rejected, and defaults fill in omitted optional parameters.
func ValidateArgs(schema *jsonschema.Schema, defaults map[string]any, args map[string]any) (map[string]any, error) {
	validated := make(map[string]any, len(args))

	if schema == nil {
		for k, v := range args {
			validated[k] = v
		}
		return validated, nil
	}

	for _, name := range schema.Required {
		if _, ok := args[name]; !ok {
			return nil, fmt.Errorf("missing parameter %s", name)
		}
	}

	for name, prop := range schema.Properties {
		v, ok := args[name]
		if !ok {
			continue
		}
		if !typeMatches(prop.Type, v) {
			return nil, fmt.Errorf("invalid type for %s", name)
		}
		validated[name] = v
	}

	for name, dv := range defaults {
		if _, ok := validated[name]; !ok {
			validated[name] = dv
		}
	}

	return validated, nil
}

// typeMatches checks a decoded JSON value against a schema type name.
// Decoded JSON numbers arrive as float64, so "integer" accepts whole floats.
func typeMatches(schemaType string, v any) bool {
	switch schemaType {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "integer":
		switch n := v.(type) {
		case float64:
			return n == math.Trunc(n)
		case int, int64:
			return true
		}
		return false
	case "number":
		switch v.(type) {
		case float64, int, int64:
			return true
		}
		return false
	case "array":
		switch v.(type) {
		case []any, []string, []float64:
			return true
		}
		return false
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "":
		return true
	}
	return true
}

// stringArg extracts a string argument
func stringArg(args map[string]any, name string) (string, error) {
	s, ok := args[name].(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return s, nil
}

// intArg extracts an integer argument, tolerating JSON float decoding
func intArg(args map[string]any, name string, fallback int) int {
	switch n := args[name].(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return fallback
}

// stringSliceArg extracts a non-empty string array argument
func stringSliceArg(args map[string]any, name string) ([]string, error) {
	switch raw := args[name].(type) {
	case []string:
		if len(raw) == 0 {
			return nil, fmt.Errorf("%s must be a non-empty array", name)
		}
		return raw, nil
	case []any:
		if len(raw) == 0 {
			return nil, fmt.Errorf("%s must be a non-empty array", name)
		}
		out := make([]string, len(raw))
		for i, item := range raw {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("all %s entries must be strings", name)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s must be a non-empty array", name)
}
