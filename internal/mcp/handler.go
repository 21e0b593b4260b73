package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"kommunicate-mcp-go/internal/jsonrpc"
	"kommunicate-mcp-go/internal/session"
	"kommunicate-mcp-go/internal/tools"
)

const maxBodyBytes = 4 << 20

// HandlerConfig configures the HTTP transport.
type HandlerConfig struct {
	Info ServerInfo
	// RequireSession rejects requests other than initialize that do not
	// carry a valid Mcp-Session-Id.
	RequireSession bool
}

// Handler serves MCP JSON-RPC over HTTP POST with JSON responses.
type Handler struct {
	catalog  ToolCatalog
	sessions session.Manager
	config   HandlerConfig
	logger   zerolog.Logger
}

// NewHandler creates a new MCP HTTP handler.
func NewHandler(catalog ToolCatalog, sessions session.Manager, config HandlerConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		catalog:  catalog,
		sessions: sessions,
		config:   config,
		logger:   logger.With().Str("component", "mcp_handler").Logger(),
	}
}

// ServeHTTP dispatches on the HTTP method.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		// No server-initiated stream is offered.
		w.Header().Set("Allow", "POST, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeRPC(w, r, http.StatusRequestEntityTooLarge,
			jsonrpc.NewErrorResponse(nil, jsonrpc.NewError(jsonrpc.InvalidRequest, "Request body too large", nil)))
		return
	}

	msg, err := jsonrpc.ParseMessage(body)
	if err != nil {
		var rpcErr *jsonrpc.Error
		if !errors.As(err, &rpcErr) {
			rpcErr = jsonrpc.NewError(jsonrpc.ParseError, err.Error(), nil)
		}
		h.logger.Debug().Err(err).Msg("Rejected malformed JSON-RPC message")
		h.writeRPC(w, r, http.StatusBadRequest, jsonrpc.NewErrorResponse(nil, rpcErr))
		return
	}

	req, isRequest := msg.(*jsonrpc.Request)
	if isRequest && req.Method == "initialize" {
		h.handleInitialize(w, r, req)
		return
	}

	sess, status, rpcErr := h.resolveSession(r)
	if rpcErr != nil {
		var id any
		if isRequest {
			id = req.ID
		}
		h.writeRPC(w, r, status, jsonrpc.NewErrorResponse(id, rpcErr))
		return
	}

	ctx := r.Context()
	if sess != nil {
		ctx = session.WithSession(ctx, sess)
		w.Header().Set(session.HeaderName, sess.ID)
	}

	if !isRequest {
		// Notifications and client responses need no reply.
		if n, ok := msg.(*jsonrpc.Notification); ok {
			h.logger.Debug().Str("method", n.Method).Msg("Notification received")
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	h.writeRPC(w, r, http.StatusOK, h.dispatch(ctx, req))
}

// resolveSession validates the Mcp-Session-Id header. The returned status is
// only meaningful when an error is returned.
func (h *Handler) resolveSession(r *http.Request) (*session.Session, int, *jsonrpc.Error) {
	sessionID := r.Header.Get(session.HeaderName)
	if sessionID == "" {
		if h.config.RequireSession {
			return nil, http.StatusBadRequest, jsonrpc.NewError(jsonrpc.InvalidRequest, "Missing session ID header", map[string]any{
				"required_header": session.HeaderName,
			})
		}
		return nil, 0, nil
	}

	sess, err := h.sessions.ValidateSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("session_id", sessionID).
			Msg("Session validation failed")
		status := http.StatusNotFound
		if session.ErrorCode(err) == session.ErrSessionInvalid {
			status = http.StatusBadRequest
		}
		return nil, status, jsonrpc.NewError(jsonrpc.InvalidRequest, err.Error(), map[string]any{
			"error_code": session.ErrorCode(err),
		})
	}

	if err := h.sessions.RefreshSession(r.Context(), sessionID); err != nil {
		// Refresh failure does not block the request.
		h.logger.Warn().
			Err(err).
			Str("session_id", sessionID).
			Msg("Failed to refresh session")
	}

	return sess, 0, nil
}

func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request, req *jsonrpc.Request) {
	var params initializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			h.writeRPC(w, r, http.StatusOK, jsonrpc.NewErrorResponse(req.ID,
				jsonrpc.NewError(jsonrpc.InvalidParams, "Invalid initialize params", err.Error())))
			return
		}
	}

	version := negotiateVersion(params.ProtocolVersion)
	sess, err := h.sessions.CreateSession(r.Context(), session.ClientInfo{
		RemoteAddr:      r.RemoteAddr,
		UserAgent:       r.UserAgent(),
		Name:            params.ClientInfo.Name,
		Version:         params.ClientInfo.Version,
		ProtocolVersion: version,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create session")
		h.writeRPC(w, r, http.StatusInternalServerError, jsonrpc.NewErrorResponse(req.ID,
			jsonrpc.NewError(jsonrpc.InternalError, "Failed to create session", nil)))
		return
	}

	w.Header().Set(session.HeaderName, sess.ID)
	h.writeRPC(w, r, http.StatusOK, jsonrpc.NewResult(req.ID, initializeResult{
		ProtocolVersion: version,
		Capabilities: map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		ServerInfo: implementation{
			Name:    h.config.Info.Name,
			Version: h.config.Info.Version,
		},
		Instructions: h.config.Info.Instructions,
	}))
}

func (h *Handler) dispatch(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	switch req.Method {
	case "ping":
		return jsonrpc.NewResult(req.ID, map[string]any{})

	case "tools/list":
		return jsonrpc.NewResult(req.ID, listToolsResult{Tools: h.catalog.Definitions()})

	case "tools/call":
		return h.callTool(ctx, req)

	default:
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewError(jsonrpc.MethodNotFound, "Method not found", req.Method))
	}
}

func (h *Handler) callTool(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewError(jsonrpc.InvalidParams, "Invalid tools/call params", nil))
	}

	result, err := h.catalog.Call(ctx, params.Name, params.Arguments)

	// Lookup and argument problems are protocol errors; anything else is a
	// failed execution the model should see.
	var toolErr *tools.Error
	if errors.As(err, &toolErr) {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewError(jsonrpc.InvalidParams, toolErr.Message, map[string]any{
			"code": toolErr.Code,
			"tool": params.Name,
		}))
	}

	res, encodeErr := newCallToolResult(result, err)
	if encodeErr != nil {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewError(jsonrpc.InternalError, encodeErr.Error(), nil))
	}
	return jsonrpc.NewResult(req.ID, res)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(session.HeaderName)
	if sessionID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]any{"error": "Missing session ID header"})
		return
	}

	if err := h.sessions.DeleteSession(r.Context(), sessionID); err != nil {
		status := http.StatusInternalServerError
		if session.ErrorCode(err) == session.ErrSessionNotFound {
			status = http.StatusNotFound
		}
		render.Status(r, status)
		render.JSON(w, r, map[string]any{
			"error":      err.Error(),
			"error_code": session.ErrorCode(err),
		})
		return
	}

	render.NoContent(w, r)
}

func (h *Handler) writeRPC(w http.ResponseWriter, r *http.Request, status int, resp *jsonrpc.Response) {
	render.Status(r, status)
	render.JSON(w, r, resp)
}
