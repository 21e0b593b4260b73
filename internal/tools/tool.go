package tools

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Tool is the interface that all tools must implement.
type Tool interface {
	// Definition describes the tool for discovery (tools/list).
	Definition() Definition

	// Call executes the tool with JSON-encoded arguments. The result must be
	// JSON-serializable.
	Call(ctx context.Context, args json.RawMessage) (any, error)
}

// Definition is the MCP description of a tool.
type Definition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
	Annotations *Annotations       `json:"annotations,omitempty"`
}

// Annotations are behavioural hints for MCP clients.
type Annotations struct {
	Title           string `json:"title,omitempty"`
	ReadOnlyHint    bool   `json:"readOnlyHint,omitempty"`
	DestructiveHint *bool  `json:"destructiveHint,omitempty"`
	IdempotentHint  bool   `json:"idempotentHint,omitempty"`
	OpenWorldHint   *bool  `json:"openWorldHint,omitempty"`
}
