package analysis

import (
	"context"
	"sort"

	"codegraph/internal/graphstore"
	"codegraph/internal/types"
)

// CouplingMetrics is coupling_metrics' output (§4.5): afferent coupling
// (distinct inbound sources), efferent coupling (distinct outbound
// targets), and instability Ce/(Ca+Ce).
type CouplingMetrics struct {
	Node        types.NodeID `json:"node"`
	Afferent    int          `json:"afferent"`
	Efferent    int          `json:"efferent"`
	Instability float64      `json:"instability"`
}

// CouplingMetrics computes Ca/Ce/instability for node over edgeKind.
func (a *Analyzer) CouplingMetrics(ctx context.Context, node types.NodeID, edgeKind types.EdgeKind) (*CouplingMetrics, error) {
	if err := validateEdgeKind(edgeKind); err != nil {
		return nil, err
	}
	if err := a.checkNodeExists(ctx, node); err != nil {
		return nil, err
	}

	inbound, err := a.graph.Neighbors(node, edgeKind, graphstore.DirIn)
	if err != nil {
		return nil, err
	}
	outbound, err := a.graph.Neighbors(node, edgeKind, graphstore.DirOut)
	if err != nil {
		return nil, err
	}

	ca := distinctSources(inbound)
	ce := distinctTargets(outbound)

	instability := 0.0
	if ca+ce > 0 {
		instability = float64(ce) / float64(ca+ce)
	}

	return &CouplingMetrics{Node: node, Afferent: ca, Efferent: ce, Instability: instability}, nil
}

func distinctSources(edges []types.Edge) int {
	seen := make(map[types.NodeID]bool)
	for _, e := range edges {
		seen[e.Source] = true
	}
	return len(seen)
}

func distinctTargets(edges []types.Edge) int {
	seen := make(map[types.NodeID]bool)
	for _, e := range edges {
		seen[e.Target] = true
	}
	return len(seen)
}

// HubNode is one entry in hub_nodes' output.
type HubNode struct {
	Node   types.NodeID `json:"node"`
	Degree int          `json:"degree"`
}

// HubNodesResult is hub_nodes' output.
type HubNodesResult struct {
	Nodes []HubNode `json:"nodes"`
}

// HubNodes returns the top-limit nodes by total degree in edgeKind, filtered
// to total degree >= minConnections, tie-broken by NodeId ascending (§4.5).
func (a *Analyzer) HubNodes(ctx context.Context, edgeKind types.EdgeKind, minConnections, limit int) (*HubNodesResult, error) {
	if err := validateEdgeKind(edgeKind); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, types.Newf(types.KindInvalidArgument, "limit must be positive, got %d", limit)
	}
	if err := ctx.Err(); err != nil {
		return nil, types.Wrap(types.KindCancelled, "analysis cancelled", err)
	}

	edges, err := a.graph.EdgesOfKind(edgeKind)
	if err != nil {
		return nil, err
	}

	degree := make(map[types.NodeID]int)
	for _, e := range edges {
		degree[e.Source]++
		degree[e.Target]++
	}

	hubs := make([]HubNode, 0, len(degree))
	for n, d := range degree {
		if d >= minConnections {
			hubs = append(hubs, HubNode{Node: n, Degree: d})
		}
	}

	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].Degree != hubs[j].Degree {
			return hubs[i].Degree > hubs[j].Degree
		}
		return hubs[i].Node.String() < hubs[j].Node.String()
	})
	if len(hubs) > limit {
		hubs = hubs[:limit]
	}

	return &HubNodesResult{Nodes: hubs}, nil
}
