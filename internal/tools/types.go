// Package tools is CodeGraph's tool registry (§4.7): each tool is
// registered with a name, description, an enumerated argument schema with
// per-field constraints, and a dispatcher that validates, invokes the
// graph-analysis surface (or vector store, or graph store), and serializes
// the result. The schema is the single source of truth consumed both by
// the agentic orchestrator's validator and by the MCP server's
// tool-listing surface.
package tools

import (
	"context"
)

// Category classifies a tool for the agentic orchestrator's per-kind tool
// filtering (§4.6: each agentic_<kind> tool "selects a different
// analysis-type tag that drives the system prompt" — and, via this
// category, which tools that tag's ReAct loop may call).
type Category string

const (
	// CategoryGraphAnalysis covers the direct §4.5 graph-analysis
	// operations (transitive_dependencies, detect_cycles, etc.).
	CategoryGraphAnalysis Category = "graph_analysis"

	// CategoryVectorSearch covers semantic/embedding-similarity search.
	CategoryVectorSearch Category = "vector_search"

	// CategoryNodeAccess covers raw node/edge reads outside the analysis
	// surface (e.g. fetching a node's source span).
	CategoryNodeAccess Category = "node_access"

	// CategoryGeneral is for tools usable regardless of analysis-type tag.
	CategoryGeneral Category = "general"

	// CategoryAgentic marks the seven top-level agentic_<kind> entry
	// points (§4.8). They are registered in the same registry so the MCP
	// tool-listing surface enumerates them alongside the direct tools,
	// but they are never returned by FilterByAnalysisType — an agentic
	// loop must not be able to dispatch another agentic loop as one of
	// its own tool calls.
	CategoryAgentic Category = "agentic"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Default     any      `json:"default,omitempty"`
	Enum        []any    `json:"enum,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	// Items describes array element schema (required for type="array")
	Items *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// ToolSchema defines the JSON schema for tool arguments. Argument schemas
// are the single source of truth (§4.7), consumed both by the agentic
// orchestrator's validator and by the MCP server's tool-listing surface.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution. Returns the result
// string (typically a serialized JSON document per §4.5) and any error.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool defines one registered graph-analysis/vector-search/node-access
// operation exposed both as a direct MCP tool and as a tool the agentic
// orchestrator may call.
type Tool struct {
	// Name is the unique identifier for the tool, e.g. "transitive_dependencies".
	Name string

	// Description explains what the tool does. Used for LLM tool calling
	// and MCP tool-listing.
	Description string

	// Category classifies the tool for analysis-type-tag filtering.
	Category Category

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema ToolSchema

	// Priority is used when multiple tools match (higher preferred, default 50).
	Priority int
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// WithPriority returns a copy of the tool with the given priority.
func (t *Tool) WithPriority(priority int) *Tool {
	c := *t
	c.Priority = priority
	return &c
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Result is the string output from the tool (JSON document per §4.5).
	Result string

	// Error is set if the tool failed.
	Error error

	// DurationMs is how long execution took.
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}
