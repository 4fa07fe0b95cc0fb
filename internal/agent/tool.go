package agent

import (
	"context"
	"fmt"

	"wordforge/internal/llm"
)

// Tool is one callable capability exposed to the model: a name, a JSON
// schema for its arguments, and a handler. Handlers return a payload that
// is serialized into the ToolResult; a handler error becomes an error
// payload the model can read, never a thrown failure.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     func(ctx context.Context, args map[string]any) (any, error)
}

// Spec returns the tool's schema declaration for model binding.
func (t *Tool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// validateArgs checks the arguments object against the tool's declared
// schema: required keys must be present and property types must match.
func validateArgs(tool *Tool, args map[string]any) error {
	required, _ := tool.Parameters["required"].([]string)
	if required == nil {
		if raw, ok := tool.Parameters["required"].([]any); ok {
			for _, name := range raw {
				if s, ok := name.(string); ok {
					required = append(required, s)
				}
			}
		}
	}
	for _, name := range required {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing required argument %q", name)
		}
	}

	properties, _ := tool.Parameters["properties"].(map[string]any)
	for name, value := range args {
		schema, ok := properties[name].(map[string]any)
		if !ok {
			return fmt.Errorf("unexpected argument %q", name)
		}
		declared, _ := schema["type"].(string)
		if err := checkType(name, declared, value); err != nil {
			return err
		}
	}
	return nil
}

// checkType verifies a decoded JSON value against a declared schema type.
func checkType(name, declared string, value any) error {
	switch declared {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("argument %q must be a string", name)
		}
	case "integer", "number":
		// JSON numbers decode as float64.
		num, ok := value.(float64)
		if !ok {
			return fmt.Errorf("argument %q must be a number", name)
		}
		if declared == "integer" && num != float64(int64(num)) {
			return fmt.Errorf("argument %q must be an integer", name)
		}
	case "array":
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("argument %q must be an array", name)
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("argument %q must be an object", name)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("argument %q must be a boolean", name)
		}
	case "":
		// No declared type, accept anything.
	default:
		return fmt.Errorf("argument %q has unsupported schema type %q", name, declared)
	}
	return nil
}
