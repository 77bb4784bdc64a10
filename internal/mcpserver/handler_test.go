package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"codegraph/internal/tools"
	"codegraph/internal/types"
)

func registryWithEchoTool(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	err := reg.Register(&tools.Tool{
		Name:        "echo",
		Description: "echoes its message argument",
		Category:    tools.CategoryGeneral,
		Schema:      tools.ToolSchema{Required: []string{"message"}},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			msg, _ := args["message"].(string)
			return msg, nil
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	err = reg.Register(&tools.Tool{
		Name:     "boom",
		Category: tools.CategoryGeneral,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "", types.New(types.KindToolError, "boom")
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg
}

func rawID(n int) json.RawMessage { return json.RawMessage([]byte(`"` + string(rune('0'+n)) + `"`)) }

func TestHandleInitialize(t *testing.T) {
	h := NewHandler(registryWithEchoTool(t))
	resp := h.Handle(context.Background(), Request{ID: rawID(1), Method: "initialize"}, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.ServerInfo.Name != "codegraphd" {
		t.Fatalf("expected server name codegraphd, got %q", result.ServerInfo.Name)
	}
}

func TestHandleListToolsSortedByName(t *testing.T) {
	h := NewHandler(registryWithEchoTool(t))
	resp := h.Handle(context.Background(), Request{ID: rawID(1), Method: "tools/list"}, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	var result ListToolsResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(result.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(result.Tools))
	}
	if result.Tools[0].Name != "boom" || result.Tools[1].Name != "echo" {
		t.Fatalf("expected alphabetical order, got %+v", result.Tools)
	}
}

func TestHandleCallToolSuccess(t *testing.T) {
	h := NewHandler(registryWithEchoTool(t))
	params, _ := json.Marshal(CallToolParams{Name: "echo", Arguments: map[string]any{"message": "hi"}})
	resp := h.Handle(context.Background(), Request{ID: rawID(1), Method: "tools/call", Params: params}, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	var result CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.IsError {
		t.Fatal("expected IsError false")
	}
	if len(result.Content) != 1 || result.Content[0].Text != "hi" {
		t.Fatalf("unexpected content: %+v", result.Content)
	}
}

func TestHandleCallToolMissingRequiredArg(t *testing.T) {
	h := NewHandler(registryWithEchoTool(t))
	params, _ := json.Marshal(CallToolParams{Name: "echo", Arguments: map[string]any{}})
	resp := h.Handle(context.Background(), Request{ID: rawID(1), Method: "tools/call", Params: params}, nil)
	if resp.Error != nil {
		t.Fatalf("a schema validation failure still carries a ToolResult, not an RPC error: %+v", resp.Error)
	}
	var result CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError true for a missing required argument")
	}
}

func TestHandleCallToolUnknownTool(t *testing.T) {
	h := NewHandler(registryWithEchoTool(t))
	params, _ := json.Marshal(CallToolParams{Name: "does-not-exist"})
	resp := h.Handle(context.Background(), Request{ID: rawID(1), Method: "tools/call", Params: params}, nil)
	if resp.Error == nil {
		t.Fatal("expected an error for an unregistered tool")
	}
}

func TestHandleCallToolPropagatesToolError(t *testing.T) {
	h := NewHandler(registryWithEchoTool(t))
	params, _ := json.Marshal(CallToolParams{Name: "boom", Arguments: map[string]any{}})
	resp := h.Handle(context.Background(), Request{ID: rawID(1), Method: "tools/call", Params: params}, nil)
	if resp.Error != nil {
		t.Fatalf("a tool-level failure should still return a result, not an RPC error: %+v", resp.Error)
	}
	var result CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError true for a failed tool execution")
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	h := NewHandler(registryWithEchoTool(t))
	resp := h.Handle(context.Background(), Request{ID: rawID(1), Method: "nonsense"}, nil)
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Fatalf("expected CodeMethodNotFound, got %+v", resp.Error)
	}
}

func TestHandleNotificationReturnsZeroResponse(t *testing.T) {
	h := NewHandler(registryWithEchoTool(t))
	resp := h.Handle(context.Background(), Request{Method: "notifications/initialized"}, nil)
	if resp.Result != nil || resp.Error != nil {
		t.Fatalf("expected a zero-value response for a notification, got %+v", resp)
	}
}

func TestHandleCancelledInvokesCancel(t *testing.T) {
	h := NewHandler(registryWithEchoTool(t))
	var gotID, gotReason string
	h.Cancel = func(requestID, reason string) { gotID, gotReason = requestID, reason }

	params, _ := json.Marshal(CancelledParams{RequestID: "42", Reason: "client gave up"})
	h.Handle(context.Background(), Request{Method: "notifications/cancelled", Params: params}, nil)

	if gotID != "42" {
		t.Fatalf("expected request id 42, got %q", gotID)
	}
	if gotReason != "client gave up" {
		t.Fatalf("expected reason to be forwarded, got %q", gotReason)
	}
}

func TestHandleCallToolDeliversProgress(t *testing.T) {
	h := NewHandler(registryWithEchoTool(t))
	params, _ := json.Marshal(CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"message": "hi"},
		Meta:      &CallMeta{ProgressToken: "tok"},
	})

	var notifications []Notification
	sink := func(n Notification) { notifications = append(notifications, n) }

	h.Handle(context.Background(), Request{ID: rawID(1), Method: "tools/call", Params: params}, sink)

	if len(notifications) != 2 {
		t.Fatalf("expected a start and end progress notification, got %d", len(notifications))
	}
	for _, n := range notifications {
		if n.Method != "notifications/progress" {
			t.Fatalf("unexpected notification method: %q", n.Method)
		}
	}
}
