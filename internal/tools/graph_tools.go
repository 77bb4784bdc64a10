package tools

import (
	"context"
	"encoding/json"

	"codegraph/internal/analysis"
)

// RegisterGraphTools registers one tool per §4.5 graph-analysis operation
// against az, serializing each result to JSON the way §4.5 specifies
// ("returns a JSON document").
func RegisterGraphTools(reg *Registry, az *analysis.Analyzer) error {
	for _, tool := range graphTools(az) {
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func graphTools(az *analysis.Analyzer) []*Tool {
	return []*Tool{
		transitiveDependenciesTool(az),
		reverseDependenciesTool(az),
		traceCallChainTool(az),
		detectCyclesTool(az),
		couplingMetricsTool(az),
		hubNodesTool(az),
	}
}

func transitiveDependenciesTool(az *analysis.Analyzer) *Tool {
	return &Tool{
		Name:        "transitive_dependencies",
		Description: "Returns nodes reachable from a node along edges of one kind, up to a depth bound, as a tree keyed by depth.",
		Category:    CategoryGraphAnalysis,
		Schema: ToolSchema{
			Required: []string{"node", "edge_kind"},
			Properties: map[string]Property{
				"node":      {Type: "string", Description: "NodeId to start from"},
				"edge_kind": {Type: "string", Description: "Edge kind to traverse"},
				"depth":     {Type: "integer", Description: "Traversal depth", Default: 3, Minimum: minPtr(1), Maximum: maxPtr(10)},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			node, err := argNodeID(args, "node")
			if err != nil {
				return "", err
			}
			edgeKind, err := argEdgeKind(args, "edge_kind")
			if err != nil {
				return "", err
			}
			depth := argIntDefault(args, "depth", 3)

			result, err := az.TransitiveDependencies(ctx, node, edgeKind, depth)
			if err != nil {
				return "", err
			}
			return marshalResult(result)
		},
	}
}

func reverseDependenciesTool(az *analysis.Analyzer) *Tool {
	return &Tool{
		Name:        "reverse_dependencies",
		Description: "Returns nodes that transitively depend on a node along edges of one kind, up to a depth bound.",
		Category:    CategoryGraphAnalysis,
		Schema: ToolSchema{
			Required: []string{"node", "edge_kind"},
			Properties: map[string]Property{
				"node":      {Type: "string", Description: "NodeId to start from"},
				"edge_kind": {Type: "string", Description: "Edge kind to traverse"},
				"depth":     {Type: "integer", Description: "Traversal depth", Default: 3, Minimum: minPtr(1), Maximum: maxPtr(10)},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			node, err := argNodeID(args, "node")
			if err != nil {
				return "", err
			}
			edgeKind, err := argEdgeKind(args, "edge_kind")
			if err != nil {
				return "", err
			}
			depth := argIntDefault(args, "depth", 3)

			result, err := az.ReverseDependencies(ctx, node, edgeKind, depth)
			if err != nil {
				return "", err
			}
			return marshalResult(result)
		},
	}
}

func traceCallChainTool(az *analysis.Analyzer) *Tool {
	return &Tool{
		Name:        "trace_call_chain",
		Description: "Forward-traverses Calls edges from a start node, optionally permitting single-hop References detours, returning terminated call chains.",
		Category:    CategoryGraphAnalysis,
		Schema: ToolSchema{
			Required: []string{"start_node"},
			Properties: map[string]Property{
				"start_node":       {Type: "string", Description: "NodeId to start from"},
				"max_depth":        {Type: "integer", Description: "Maximum chain length", Default: 5, Minimum: minPtr(1), Maximum: maxPtr(10)},
				"include_indirect": {Type: "boolean", Description: "Permit References-edge detours", Default: false},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			start, err := argNodeID(args, "start_node")
			if err != nil {
				return "", err
			}
			maxDepth := argIntDefault(args, "max_depth", 5)
			includeIndirect := argBoolDefault(args, "include_indirect", false)

			result, err := az.TraceCallChain(ctx, start, maxDepth, includeIndirect)
			if err != nil {
				return "", err
			}
			return marshalResult(result)
		},
	}
}

func detectCyclesTool(az *analysis.Analyzer) *Tool {
	return &Tool{
		Name:        "detect_cycles",
		Description: "Runs Tarjan's strongly-connected-components over the subgraph induced by one edge kind, returning cycles bounded by a max length.",
		Category:    CategoryGraphAnalysis,
		Schema: ToolSchema{
			Required: []string{"edge_kind"},
			Properties: map[string]Property{
				"edge_kind":        {Type: "string", Description: "Edge kind to analyze"},
				"max_cycle_length": {Type: "integer", Description: "Maximum cycle size to report", Default: 10, Minimum: minPtr(2), Maximum: maxPtr(20)},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			edgeKind, err := argEdgeKind(args, "edge_kind")
			if err != nil {
				return "", err
			}
			maxLen := argIntDefault(args, "max_cycle_length", 10)

			result, err := az.DetectCycles(ctx, edgeKind, maxLen)
			if err != nil {
				return "", err
			}
			return marshalResult(result)
		},
	}
}

func couplingMetricsTool(az *analysis.Analyzer) *Tool {
	return &Tool{
		Name:        "coupling_metrics",
		Description: "Computes afferent/efferent coupling and instability for a node over one edge kind.",
		Category:    CategoryGraphAnalysis,
		Schema: ToolSchema{
			Required: []string{"node", "edge_kind"},
			Properties: map[string]Property{
				"node":      {Type: "string", Description: "NodeId to analyze"},
				"edge_kind": {Type: "string", Description: "Edge kind to analyze"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			node, err := argNodeID(args, "node")
			if err != nil {
				return "", err
			}
			edgeKind, err := argEdgeKind(args, "edge_kind")
			if err != nil {
				return "", err
			}

			result, err := az.CouplingMetrics(ctx, node, edgeKind)
			if err != nil {
				return "", err
			}
			return marshalResult(result)
		},
	}
}

func hubNodesTool(az *analysis.Analyzer) *Tool {
	return &Tool{
		Name:        "hub_nodes",
		Description: "Returns the top nodes by total degree in one edge kind, filtered by a minimum connection count.",
		Category:    CategoryGraphAnalysis,
		Schema: ToolSchema{
			Required: []string{"edge_kind"},
			Properties: map[string]Property{
				"edge_kind":       {Type: "string", Description: "Edge kind to analyze"},
				"min_connections": {Type: "integer", Description: "Minimum total degree", Default: 1, Minimum: minPtr(0)},
				"limit":           {Type: "integer", Description: "Maximum nodes to return", Default: 10, Minimum: minPtr(1)},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			edgeKind, err := argEdgeKind(args, "edge_kind")
			if err != nil {
				return "", err
			}
			minConn := argIntDefault(args, "min_connections", 1)
			limit := argIntDefault(args, "limit", 10)

			result, err := az.HubNodes(ctx, edgeKind, minConn, limit)
			if err != nil {
				return "", err
			}
			return marshalResult(result)
		},
	}
}

func marshalResult(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
