package mcpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// writeSSEEvent frames one Server-Sent Event per the text/event-stream wire
// format and flushes immediately so the peer sees it without buffering
// delay. id is the event's replay cursor (Last-Event-Id); name distinguishes
// "message" (a JSON-RPC Response) from "progress" (a Notification).
func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, id uint64, name string, data []byte) {
	fmt.Fprintf(w, "id: %d\n", id)
	fmt.Fprintf(w, "event: %s\n", name)
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// writeSSEComment sends a comment line, used as a keep-alive heartbeat that
// most SSE clients ignore but that prevents idle-timing-out proxies from
// closing the connection.
func writeSSEComment(w http.ResponseWriter, flusher http.Flusher, comment string) {
	fmt.Fprintf(w, ": %s\n\n", comment)
	flusher.Flush()
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// eventPayload marshals a JSON-RPC Response or Notification for an SSE
// "data:" field, which must be a single line of content per the spec (the
// trailing blank line is handled by writeSSEEvent, not here).
func eventPayload(v any) ([]byte, error) {
	return json.Marshal(v)
}
