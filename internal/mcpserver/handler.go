package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"codegraph/internal/logging"
	"codegraph/internal/tools"
	"codegraph/internal/types"
)

// ServerInfo identifies codegraphd in the initialize handshake.
var ServerInfo = ClientInfo{Name: "codegraphd", Version: "0.1.0"}

// ProgressSink receives a notification while a tools/call is in flight.
// Transports supply one bound to their own delivery mechanism (an SSE
// session's event buffer, or a stdio notification line); nil means no one
// asked for progress.
type ProgressSink func(Notification)

// Handler dispatches JSON-RPC requests against a tool registry (§4.8). It is
// transport-agnostic: STDIO, HTTP, and SSE all route every request through
// Handle, and differ only in how they frame bytes and deliver progress.
type Handler struct {
	Registry *tools.Registry

	// Cancel, if set, is invoked for "notifications/cancelled" — transports
	// that track in-flight requests (HTTP/SSE sessions) wire this to their
	// own cancellation map; STDIO, which has no such map, leaves it nil.
	Cancel func(requestID string, reason string)
}

func NewHandler(reg *tools.Registry) *Handler {
	return &Handler{Registry: reg}
}

// Handle dispatches one JSON-RPC request. For notifications (no ID), the
// returned Response is a zero value the caller must not write.
func (h *Handler) Handle(ctx context.Context, req Request, sink ProgressSink) Response {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req)
	case "notifications/initialized":
		return Response{}
	case "notifications/cancelled":
		h.handleCancelled(req)
		return Response{}
	case "tools/list":
		return h.handleListTools(req)
	case "tools/call":
		return h.handleCallTool(ctx, req, sink)
	case "ping":
		return resultResponse(req.ID, map[string]any{})
	default:
		return errorResponse(req.ID, CodeMethodNotFound, "unknown method: "+req.Method)
	}
}

func (h *Handler) handleInitialize(req Request) Response {
	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ServerCapabilities{Tools: map[string]any{"listChanged": false}},
		ServerInfo:      ServerInfo,
	}
	return resultResponse(req.ID, result)
}

func (h *Handler) handleCancelled(req Request) {
	if h.Cancel == nil {
		return
	}
	var params CancelledParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		logging.MCPDebug("malformed notifications/cancelled params: %v", err)
		return
	}
	h.Cancel(fmt.Sprintf("%v", params.RequestID), params.Reason)
}

func (h *Handler) handleListTools(req Request) Response {
	all := h.Registry.All()
	descriptors := make([]ToolDescriptor, 0, len(all))
	for _, t := range all {
		schema, err := json.Marshal(t.Schema)
		if err != nil {
			logging.MCPDebug("skipping tool %s from tools/list: schema marshal failed: %v", t.Name, err)
			continue
		}
		descriptors = append(descriptors, ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}
	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].Name < descriptors[j].Name })
	return resultResponse(req.ID, ListToolsResult{Tools: descriptors})
}

func (h *Handler) handleCallTool(ctx context.Context, req Request, sink ProgressSink) Response {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, "invalid tools/call params: "+err.Error())
	}
	if params.Name == "" {
		return errorResponse(req.ID, CodeInvalidParams, "tool name is required")
	}

	token := progressToken(params)
	if sink != nil && token != nil {
		sink(progressNotification(token, 0, 1))
	}

	result, err := h.Registry.Execute(ctx, params.Name, params.Arguments)
	if err != nil && result == nil {
		// The tool wasn't found; no partial result to return.
		return errorResponse(req.ID, kindToRPCCode(types.KindOf(err)), err.Error())
	}

	if sink != nil && token != nil {
		sink(progressNotification(token, 1, 1))
	}

	callResult := CallToolResult{
		Content: []ContentBlock{{Type: "text", Text: result.Result}},
		IsError: err != nil,
	}
	return resultResponse(req.ID, callResult)
}

func progressToken(params CallToolParams) any {
	if params.Meta == nil {
		return nil
	}
	return params.Meta.ProgressToken
}

func progressNotification(token any, progress, total float64) Notification {
	payload, _ := json.Marshal(ProgressParams{ProgressToken: token, Progress: progress, Total: total})
	return Notification{JSONRPC: "2.0", Method: "notifications/progress", Params: payload}
}

func resultResponse(id json.RawMessage, result any) Response {
	payload, err := json.Marshal(result)
	if err != nil {
		return errorResponse(id, CodeInternalError, "failed to marshal result: "+err.Error())
	}
	return Response{JSONRPC: "2.0", ID: id, Result: payload}
}

func errorResponse(id json.RawMessage, code int, message string) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
}

// kindToRPCCode maps the closed error taxonomy (§7) to the server-defined
// JSON-RPC code range, so a peer can distinguish failure classes without
// parsing the message text.
func kindToRPCCode(kind types.ErrorKind) int {
	switch kind {
	case types.KindInvalidArgument:
		return CodeInvalidParams
	case types.KindNotFound:
		return CodeNotFound
	case types.KindStorageError:
		return CodeStorage
	case types.KindVectorError:
		return CodeVectorErr
	case types.KindCacheError:
		return CodeCacheErr
	case types.KindLLMError:
		return CodeLLMError
	case types.KindToolError:
		return CodeToolError
	case types.KindTimeout:
		return CodeTimeout
	case types.KindCancelled:
		return CodeCancelled
	default:
		return CodeInternalError
	}
}
