package config

import "time"

// Timeouts centralizes the three-layer timeout ladder from §5: per-tool-call,
// per-agentic-request (by tier), and per-LLM-call. Grounded on the teacher's
// internal/config/llm_timeouts.go "single struct of named durations with a
// Default constructor" shape.
type Timeouts struct {
	// PerToolCall bounds a single graph-analysis tool dispatch (30s default).
	PerToolCall time.Duration `json:"per_tool_call"`

	// PerLLMCall bounds a single chat() round trip (configurable, 120s default).
	PerLLMCall time.Duration `json:"per_llm_call"`

	// PerAgenticRequest is keyed by Tier: 60s-600s depending on tier.
	PerAgenticRequest map[Tier]time.Duration `json:"per_agentic_request"`

	// RetryBackoffBase/Max govern the LLM transport retry policy (§4.6:
	// retried up to 2 times with exponential backoff).
	RetryBackoffBase time.Duration `json:"retry_backoff_base"`
	RetryBackoffMax  time.Duration `json:"retry_backoff_max"`
	MaxLLMRetries    int           `json:"max_llm_retries"`
}

// DefaultTimeouts returns the timeout ladder described in §5.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		PerToolCall: 30 * time.Second,
		PerLLMCall:  120 * time.Second,
		PerAgenticRequest: map[Tier]time.Duration{
			TierSmall:   60 * time.Second,
			TierMedium:  180 * time.Second,
			TierLarge:   360 * time.Second,
			TierMassive: 600 * time.Second,
		},
		RetryBackoffBase: 1 * time.Second,
		RetryBackoffMax:  10 * time.Second,
		MaxLLMRetries:    2,
	}
}

// RequestTimeout returns the per-agentic-request timeout for t, falling
// back to the Large tier's timeout if t is unrecognized.
func (to Timeouts) RequestTimeout(t Tier) time.Duration {
	if d, ok := to.PerAgenticRequest[t]; ok {
		return d
	}
	return to.PerAgenticRequest[TierLarge]
}
