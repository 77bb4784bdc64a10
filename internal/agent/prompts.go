package agent

import (
	"fmt"
	"strings"

	"codegraph/internal/config"
	"codegraph/internal/tools"
)

// envelopeInstructions is appended to every system prompt regardless of
// tier, so every prompt variant ends on the same structured-output contract
// the parser expects back.
const envelopeInstructions = `
Respond with exactly one JSON object and nothing else (no markdown fence, no commentary outside it):

{"thought": "<your reasoning for this step>", "done": false, "tool_call": {"name": "<tool name>", "arguments": {...}}}

or, once you have enough information to answer:

{"thought": "<your reasoning>", "done": true, "answer": "<final answer text>"}

Only call one tool per turn. Only use tool names from the list below with arguments matching their schema.`

// buildSystemPrompt renders the tier-appropriate system prompt variant
// (§4.6: "more verbose for larger C") with the catalog of tools the
// analysisType tag allows, following the teacher's prompt_assembler.go
// practice of building the system prompt as persona + available-tools
// catalog + output-contract, concatenated in that order.
func buildSystemPrompt(settings config.TierSettings, analysisType string, toolset []*tools.Tool) string {
	var b strings.Builder

	switch settings.SystemPromptName {
	case "concise":
		b.WriteString("You are a code-intelligence assistant. Answer the user's question about the codebase using the tools below. Be economical with tool calls.\n")
	case "standard":
		b.WriteString("You are a code-intelligence assistant with access to a graph-analysis surface over a parsed codebase. Reason step by step, using tools to gather evidence before answering. State your thought before each action.\n")
	default: // "verbose"
		b.WriteString("You are a code-intelligence assistant with access to a graph-analysis surface over a parsed codebase. " +
			"Work through the question methodically: form a hypothesis, gather evidence with the tools below, " +
			"reconsider the hypothesis in light of what you observe, and only answer once you are confident the " +
			"evidence supports it. Explain your reasoning at each step before acting.\n")
	}

	fmt.Fprintf(&b, "\nAnalysis type: %s\n", analysisType)
	b.WriteString("\n## Available tools\n\n")
	if len(toolset) == 0 {
		b.WriteString("(none)\n")
	}
	for _, t := range toolset {
		fmt.Fprintf(&b, "**%s**: %s\n", t.Name, t.Description)
		if len(t.Schema.Required) > 0 {
			fmt.Fprintf(&b, "  Required: %s\n", strings.Join(t.Schema.Required, ", "))
		}
		for name, prop := range t.Schema.Properties {
			line := fmt.Sprintf("  - %s (%s): %s", name, prop.Type, prop.Description)
			if prop.Minimum != nil || prop.Maximum != nil {
				line += fmt.Sprintf(" [range %v-%v]", rangeBound(prop.Minimum), rangeBound(prop.Maximum))
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString(envelopeInstructions)
	return b.String()
}

func rangeBound(v *float64) string {
	if v == nil {
		return "*"
	}
	return fmt.Sprintf("%v", *v)
}
