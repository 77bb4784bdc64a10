package mcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"codegraph/internal/logging"
)

// defaultScanBufferSize is the initial bufio.Scanner buffer; tool arguments
// (file contents, search queries) can exceed the default 64KiB token limit.
const defaultScanBufferSize = 1 << 20

// StdioServer serves JSON-RPC requests read one line at a time from in and
// writes one response line per request to out (§4.8: STDIO framing carries
// no session state — every line is a complete, independent exchange).
type StdioServer struct {
	handler *Handler
	in      io.Reader
	out     io.Writer

	writeMu sync.Mutex
}

func NewStdioServer(handler *Handler, in io.Reader, out io.Writer) *StdioServer {
	return &StdioServer{handler: handler, in: in, out: out}
}

// Serve reads requests until ctx is cancelled or in is exhausted. Each
// request is dispatched and answered synchronously, in order, matching
// STDIO's single-peer, no-concurrency-guarantee framing.
func (s *StdioServer) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), defaultScanBufferSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(errorResponse(nil, CodeParseError, "invalid JSON: "+err.Error()))
			continue
		}

		sink := func(n Notification) { s.writeNotification(n) }
		resp := s.handler.Handle(ctx, req, sink)

		if req.IsNotification() {
			continue
		}
		s.writeResponse(resp)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stdio scan: %w", err)
	}
	return nil
}

func (s *StdioServer) writeResponse(resp Response) {
	s.writeLine(resp)
}

func (s *StdioServer) writeNotification(n Notification) {
	s.writeLine(n)
}

func (s *StdioServer) writeLine(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		logging.MCPDebug("stdio: failed to marshal outgoing message: %v", err)
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(append(payload, '\n')); err != nil {
		logging.MCPDebug("stdio: write failed: %v", err)
	}
}
