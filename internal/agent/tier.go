// Package agent drives the ReAct tool-using reasoning loop (§4.6): a
// single-goroutine finite state machine that sends the conversation to an
// LLM, validates and dispatches any proposed tool call against the tool
// registry, and records reasoning steps until a final answer, a step
// budget, a timeout, a cancellation, or a terminal error.
package agent

import (
	"codegraph/internal/config"
	"codegraph/internal/logging"
)

// resolveArchitecture folds the documented LATS no-op into ReAct: "lats" is
// an accepted config value (config.Validate permits it) but has no
// implementation here, so it runs the ReAct loop with a logged warning
// rather than failing the request.
func resolveArchitecture(architecture string) string {
	switch architecture {
	case "", "react":
		return "react"
	case "lats":
		logging.AgentWarn("agent_architecture=lats requested but not implemented; falling back to react")
		return "react"
	default:
		return "react"
	}
}

// settingsFor resolves the TierSettings a request runs under, given the
// driving LLM's context window size and the configured table/override.
func settingsFor(tiers config.TierTable, contextWindowTokens, stepBudgetOverride int) (config.Tier, config.TierSettings) {
	t := config.TierOf(contextWindowTokens)
	return t, tiers.Settings(t, stepBudgetOverride)
}
