package agent

import (
	"encoding/json"

	"codegraph/internal/types"
)

// envelope is the structured-output shape the system prompt requires of the
// LLM each Thinking turn: either a proposed tool call, or a final answer
// (done=true). Mirrors the teacher's Piggyback envelope shape (a single
// JSON object the model must emit, validated with encoding/json rather than
// a third-party schema validator — the teacher doesn't use one either).
type envelope struct {
	Thought string          `json:"thought"`
	Done    bool            `json:"done"`
	Answer  string          `json:"answer,omitempty"`
	Tool    *toolCallFields `json:"tool_call,omitempty"`
}

type toolCallFields struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// parseEnvelope extracts the first top-level JSON object from raw model
// output and decodes it as an envelope. Real model output is frequently
// wrapped in prose or a markdown fence, so a bare json.Unmarshal on the
// whole string is too brittle — findJSONObjects scans byte-by-byte the way
// the teacher's articulation package does for its own control-packet
// extraction.
func parseEnvelope(raw string) (envelope, error) {
	candidates := findJSONObjects(raw)
	if len(candidates) == 0 {
		return envelope{}, types.New(types.KindLLMError, "no JSON object found in model response")
	}

	// The model is asked for exactly one object; if it emitted more than
	// one top-level object, the last is the most likely to be the final
	// structured answer (any reasoning preamble tends to come first).
	var env envelope
	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		if err := json.Unmarshal([]byte(candidates[i]), &env); err == nil {
			return env, nil
		} else {
			lastErr = err
		}
	}
	return envelope{}, types.Wrap(types.KindLLMError, "model response was not a valid envelope", lastErr)
}

// findJSONObjects scans s for top-level {...} spans, tracking string and
// escape state so braces inside string literals don't confuse depth
// counting (same state machine as the teacher's findJSONCandidates).
func findJSONObjects(s string) []string {
	var candidates []string
	var depth int
	start := -1
	var inString, escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}
		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}
		if b == '"' {
			inString = true
			continue
		}
		if b == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if b == '}' {
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return candidates
}
