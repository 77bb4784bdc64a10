package agent

import (
	"context"
	"encoding/json"
	"time"

	"codegraph/internal/tools"
	"codegraph/internal/types"
)

// analysisKinds is the ordered list of agentic_<kind> tags §4.8 defines,
// each driving a distinct system-prompt/toolset combination via
// internal/tools' FilterByAnalysisType.
var analysisKinds = []string{
	"code_search",
	"dependency_analysis",
	"call_chain_analysis",
	"architecture_analysis",
	"api_surface_analysis",
	"context_builder",
	"semantic_question",
}

// EntrypointResult is the JSON document §4.8 promises callers of an
// agentic_<kind> tool.
type EntrypointResult struct {
	FinalAnswer       string `json:"final_answer"`
	TotalSteps        int    `json:"total_steps"`
	DurationMs        int64  `json:"duration_ms"`
	Completed         bool   `json:"completed"`
	TerminationReason string `json:"termination_reason"`
	TerminationDetail string `json:"termination_detail,omitempty"`
	Steps             []Step `json:"steps"`
}

// RegisterEntrypoints registers the seven agentic_<kind> tools (§4.8) in reg,
// each wrapping a.Run with its own analysis-type tag. contextWindowTokens is
// the driving LLM's declared context window, fixed at server startup (it is
// not a per-call argument — one CodeGraph deployment drives one LLM).
// progress, if non-nil, is threaded through to every invocation so the MCP
// transport layer can relay per-step progress notifications regardless of
// which agentic tool is in flight.
func RegisterEntrypoints(reg *tools.Registry, a *Agent, contextWindowTokens int, progress ProgressFunc) error {
	for _, kind := range analysisKinds {
		kind := kind
		tool := &tools.Tool{
			Name:        "agentic_" + kind,
			Description: entrypointDescription(kind),
			Category:    tools.CategoryAgentic,
			Schema: tools.ToolSchema{
				Required: []string{"query"},
				Properties: map[string]tools.Property{
					"query": {Type: "string", Description: "natural language question to answer about the indexed codebase"},
				},
			},
			Execute: func(ctx context.Context, args map[string]any) (string, error) {
				query, _ := args["query"].(string)
				if query == "" {
					return "", types.New(types.KindInvalidArgument, "query must be a non-empty string")
				}

				start := time.Now()
				result, runErr := a.Run(ctx, query, kind, contextWindowTokens, progress)
				if result == nil {
					return "", runErr
				}

				out := EntrypointResult{
					FinalAnswer:       result.Answer,
					TotalSteps:        len(result.Steps),
					DurationMs:        time.Since(start).Milliseconds(),
					Completed:         result.FinalState == StateFinal,
					TerminationReason: string(result.FinalState),
					TerminationDetail: result.Reason,
					Steps:             result.Steps,
				}
				payload, marshalErr := json.Marshal(out)
				if marshalErr != nil {
					return "", types.Wrap(types.KindInternal, "failed to marshal agentic result", marshalErr)
				}

				// A non-Final terminal state is still a successful tool
				// invocation from the MCP caller's perspective (§4.8's
				// result shape reports `completed: false` rather than
				// surfacing a transport error) unless Run itself failed.
				if runErr != nil && result.FinalState != StateMaxSteps {
					return string(payload), runErr
				}
				return string(payload), nil
			},
		}
		if err := reg.Register(tool); err != nil {
			return types.Wrap(types.KindInternal, "failed to register "+tool.Name, err)
		}
	}
	return nil
}

func entrypointDescription(kind string) string {
	switch kind {
	case "code_search":
		return "Find code matching a natural-language description using semantic search plus node lookups."
	case "dependency_analysis":
		return "Answer questions about what a code entity depends on or is depended on by, traversing the dependency graph."
	case "call_chain_analysis":
		return "Trace call chains between two code entities, or explain how control flow reaches a given function."
	case "architecture_analysis":
		return "Reason about module boundaries, coupling, and instability using the graph-analysis surface."
	case "api_surface_analysis":
		return "Describe the public API surface of a module or package, combining graph structure with semantic search."
	case "context_builder":
		return "Assemble a focused bundle of relevant code entities and relationships to answer an open-ended question."
	case "semantic_question":
		return "Answer a free-form question about the codebase using semantic search as the primary evidence source."
	default:
		return "Agentic reasoning tool over the indexed codebase."
	}
}
