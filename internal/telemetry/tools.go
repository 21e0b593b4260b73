package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"kommunicate-mcp-go/internal/tools"
)

// ToolRegistryWrapper wraps a tool registry to add telemetry
type ToolRegistryWrapper struct {
	*tools.Registry
	metrics *Metrics
	logger  zerolog.Logger
}

// NewToolRegistryWrapper creates a new telemetry-aware tool registry wrapper
func NewToolRegistryWrapper(registry *tools.Registry, metrics *Metrics, logger zerolog.Logger) *ToolRegistryWrapper {
	return &ToolRegistryWrapper{
		Registry: registry,
		metrics:  metrics,
		logger:   logger.With().Str("component", "tools").Logger(),
	}
}

// Call wraps the registry Call with metrics and a log line per execution
func (w *ToolRegistryWrapper) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	start := time.Now()

	result, err := w.Registry.Call(ctx, name, args)

	duration := time.Since(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	w.metrics.RecordToolExecution(name, status, duration)

	event := w.logger.Info()
	if err != nil {
		event = w.logger.Warn().Err(err)
	}
	event.
		Str("tool", name).
		Str("status", status).
		Dur("duration", duration).
		Msg("Tool executed")

	return result, err
}
