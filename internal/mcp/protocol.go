package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"kommunicate-mcp-go/internal/tools"
)

// LatestProtocolVersion is returned when the client asks for a version we
// do not know.
const LatestProtocolVersion = "2025-06-18"

var supportedProtocolVersions = map[string]bool{
	"2025-06-18": true,
	"2025-03-26": true,
	"2024-11-05": true,
}

// negotiateVersion echoes the client's version when supported.
func negotiateVersion(requested string) string {
	if supportedProtocolVersions[requested] {
		return requested
	}
	return LatestProtocolVersion
}

// ToolCatalog lists and runs tools. *tools.Registry and
// *telemetry.ToolRegistryWrapper satisfy it.
type ToolCatalog interface {
	Definitions() []tools.Definition
	Call(ctx context.Context, name string, args json.RawMessage) (any, error)
}

// ServerInfo identifies this server during initialize.
type ServerInfo struct {
	Name         string
	Version      string
	Instructions string
}

type implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
	ClientInfo      implementation `json:"clientInfo"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      implementation `json:"serverInfo"`
	Instructions    string         `json:"instructions,omitempty"`
}

type listToolsResult struct {
	Tools []tools.Definition `json:"tools"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callToolResult struct {
	Content           []content `json:"content"`
	StructuredContent any       `json:"structuredContent,omitempty"`
	IsError           bool      `json:"isError,omitempty"`
}

// renderToolOutput turns a tool result into its text form and, when the
// result is a JSON object, its structured form.
func renderToolOutput(result any) (string, any, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", nil, fmt.Errorf("encode tool result: %w", err)
	}

	var structured map[string]any
	if err := json.Unmarshal(data, &structured); err != nil || structured == nil {
		return string(data), nil, nil
	}
	return string(data), structured, nil
}

func newCallToolResult(result any, callErr error) (*callToolResult, error) {
	if callErr != nil {
		return &callToolResult{
			Content: []content{{Type: "text", Text: callErr.Error()}},
			IsError: true,
		}, nil
	}

	text, structured, err := renderToolOutput(result)
	if err != nil {
		return nil, err
	}
	res := &callToolResult{Content: []content{{Type: "text", Text: text}}}
	if structured != nil {
		res.StructuredContent = structured
	}
	return res, nil
}
