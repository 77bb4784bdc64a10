// Package analysis implements the graph-analysis surface (§4.5): read-only
// traversals and metrics over the node/edge graph graphstore persists.
// Every operation here is exposed both as a direct MCP tool and as a tool
// the agentic orchestrator may call, grounded on the teacher's
// internal/world.GraphQuery pattern of a single typed query surface sitting
// in front of the graph, generalized from its one QueryGraph(string, map)
// entry point into one Go method per operation.
package analysis

import (
	"context"

	"codegraph/internal/graphstore"
	"codegraph/internal/types"
)

// GraphReader is the subset of graphstore.Store this package depends on,
// narrowed to read paths so tests can substitute a fake.
type GraphReader interface {
	GetNode(id types.NodeID) (types.Node, error)
	Neighbors(node types.NodeID, kindFilter types.EdgeKind, direction graphstore.Direction) ([]types.Edge, error)
	EdgesOfKind(kind types.EdgeKind) ([]types.Edge, error)
}

// DefaultWorkBudget bounds how many nodes a single traversal will visit
// before returning a partial, truncated result (§4.5: "Partial traversal
// truncated by a per-call work budget returns a partial result with a
// truncated: true flag and the boundary node set").
const DefaultWorkBudget = 50_000

// Analyzer runs graph-analysis operations against a GraphReader.
type Analyzer struct {
	graph      GraphReader
	workBudget int
}

// New constructs an Analyzer. workBudget <= 0 uses DefaultWorkBudget.
func New(graph GraphReader, workBudget int) *Analyzer {
	if workBudget <= 0 {
		workBudget = DefaultWorkBudget
	}
	return &Analyzer{graph: graph, workBudget: workBudget}
}

func validateDepth(depth int) error {
	if depth < 1 || depth > 10 {
		return types.Newf(types.KindInvalidArgument, "depth %d out of range [1,10]", depth)
	}
	return nil
}

func validateEdgeKind(kind types.EdgeKind) error {
	switch kind {
	case types.EdgeCalls, types.EdgeImports, types.EdgeDefines, types.EdgeContains,
		types.EdgeImplements, types.EdgeExtends, types.EdgeReferences, types.EdgeOther:
		return nil
	default:
		return types.Newf(types.KindInvalidArgument, "unknown edge kind %q", kind)
	}
}

func (a *Analyzer) checkNodeExists(ctx context.Context, node types.NodeID) error {
	if err := ctx.Err(); err != nil {
		return types.Wrap(types.KindCancelled, "analysis cancelled", err)
	}
	if _, err := a.graph.GetNode(node); err != nil {
		if types.Is(err, types.KindNotFound) {
			return types.Newf(types.KindNotFound, "node %s not found", node)
		}
		return err
	}
	return nil
}
