package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// TypedTool is a Tool whose input schema is derived from the In struct.
// Field names come from json tags, descriptions from jsonschema tags, and
// fields tagged omitempty are optional.
type TypedTool[In any] struct {
	def      Definition
	resolved *jsonschema.Resolved
	handler  func(ctx context.Context, in In) (any, error)
}

// NewTypedTool creates a TypedTool with the given name and description.
func NewTypedTool[In any](name, description string, annotations *Annotations, handler func(ctx context.Context, in In) (any, error)) (*TypedTool[In], error) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return nil, fmt.Errorf("tool %s: infer input schema: %w", name, err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("tool %s: resolve input schema: %w", name, err)
	}

	return &TypedTool[In]{
		def: Definition{
			Name:        name,
			Description: description,
			InputSchema: schema,
			Annotations: annotations,
		},
		resolved: resolved,
		handler:  handler,
	}, nil
}

// Definition returns the tool definition in MCP format.
func (t *TypedTool[In]) Definition() Definition {
	return t.def
}

// Call validates args against the input schema, decodes them and runs the handler.
func (t *TypedTool[In]) Call(ctx context.Context, args json.RawMessage) (any, error) {
	if trimmed := bytes.TrimSpace(args); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		args = json.RawMessage("{}")
	}

	var instance any
	if err := json.Unmarshal(args, &instance); err != nil {
		return nil, &Error{Code: CodeInvalidArguments, Message: fmt.Sprintf("invalid arguments for %s: %v", t.def.Name, err)}
	}
	if err := t.resolved.Validate(instance); err != nil {
		return nil, &Error{Code: CodeInvalidArguments, Message: fmt.Sprintf("invalid arguments for %s: %v", t.def.Name, err)}
	}

	var in In
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, &Error{Code: CodeInvalidArguments, Message: fmt.Sprintf("invalid arguments for %s: %v", t.def.Name, err)}
	}

	return t.handler(ctx, in)
}
