package mcpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"codegraph/internal/tools"
)

func TestStdioServeEchoesOneResponsePerRequestLine(t *testing.T) {
	reg := tools.NewRegistry()
	handler := NewHandler(reg)

	in := strings.NewReader(
		`{"jsonrpc":"2.0","id":"1","method":"initialize"}` + "\n" +
			`{"jsonrpc":"2.0","id":"2","method":"ping"}` + "\n",
	)
	var out bytes.Buffer
	server := NewStdioServer(handler, in, &out)

	if err := server.Serve(context.Background()); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	scanner := bufio.NewScanner(&out)
	var responses []Response
	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response line: %v", err)
		}
		responses = append(responses, resp)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 response lines, got %d", len(responses))
	}
	if string(responses[0].ID) != `"1"` || string(responses[1].ID) != `"2"` {
		t.Fatalf("expected ids 1 then 2, got %q then %q", responses[0].ID, responses[1].ID)
	}
}

func TestStdioServeSkipsNotifications(t *testing.T) {
	reg := tools.NewRegistry()
	handler := NewHandler(reg)

	in := strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
	var out bytes.Buffer
	server := NewStdioServer(handler, in, &out)

	if err := server.Serve(context.Background()); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no response line for a notification, got %q", out.String())
	}
}

func TestStdioServeReportsParseErrorForInvalidJSON(t *testing.T) {
	reg := tools.NewRegistry()
	handler := NewHandler(reg)

	in := strings.NewReader("not json\n")
	var out bytes.Buffer
	server := NewStdioServer(handler, in, &out)

	if err := server.Serve(context.Background()); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != CodeParseError {
		t.Fatalf("expected a CodeParseError response, got %+v", resp)
	}
}
