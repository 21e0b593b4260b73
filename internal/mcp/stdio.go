package mcp

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"kommunicate-mcp-go/internal/tools"
)

// NewSDKServer exposes every tool in the catalog through the MCP Go SDK.
// Argument validation stays with the catalog so both transports reject the
// same inputs.
func NewSDKServer(catalog ToolCatalog, info ServerInfo, logger zerolog.Logger) *sdk.Server {
	logger = logger.With().Str("component", "mcp_stdio").Logger()

	server := sdk.NewServer(&sdk.Implementation{
		Name:    info.Name,
		Version: info.Version,
	}, &sdk.ServerOptions{
		Instructions: info.Instructions,
	})

	for _, def := range catalog.Definitions() {
		server.AddTool(sdkTool(def), sdkHandler(catalog, def.Name, logger))
	}
	return server
}

func sdkTool(def tools.Definition) *sdk.Tool {
	tool := &sdk.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: def.InputSchema,
	}
	if a := def.Annotations; a != nil {
		tool.Annotations = &sdk.ToolAnnotations{
			Title:           a.Title,
			ReadOnlyHint:    a.ReadOnlyHint,
			DestructiveHint: a.DestructiveHint,
			IdempotentHint:  a.IdempotentHint,
			OpenWorldHint:   a.OpenWorldHint,
		}
	}
	return tool
}

func sdkHandler(catalog ToolCatalog, name string, logger zerolog.Logger) sdk.ToolHandler {
	return func(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
		result, err := catalog.Call(ctx, name, req.Params.Arguments)

		var toolErr *tools.Error
		if errors.As(err, &toolErr) {
			return nil, fmt.Errorf("%s: %s", toolErr.Code, toolErr.Message)
		}
		if err != nil {
			logger.Debug().Err(err).Str("tool", name).Msg("Tool execution failed")
			return &sdk.CallToolResult{
				Content: []sdk.Content{&sdk.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}

		text, structured, err := renderToolOutput(result)
		if err != nil {
			return nil, err
		}
		res := &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: text}},
		}
		if structured != nil {
			res.StructuredContent = structured
		}
		return res, nil
	}
}

// ServeStdio serves the catalog over stdin/stdout until ctx is done or the
// client disconnects.
func ServeStdio(ctx context.Context, catalog ToolCatalog, info ServerInfo, logger zerolog.Logger) error {
	server := NewSDKServer(catalog, info, logger)
	logger.Info().
		Int("tools", len(catalog.Definitions())).
		Msg("Serving MCP over stdio")
	return server.Run(ctx, &sdk.StdioTransport{})
}
