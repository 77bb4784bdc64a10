package analysis

import (
	"context"
	"sort"

	"codegraph/internal/types"
)

// Cycle is one strongly-connected component with size in [2, max_cycle_length].
type Cycle struct {
	Nodes []types.NodeID `json:"nodes"`
}

// CycleResult is detect_cycles' output, order-stable by each cycle's
// smallest NodeId (§4.5).
type CycleResult struct {
	Cycles []Cycle `json:"cycles"`
}

// DetectCycles runs Tarjan's strongly-connected-components algorithm over
// the subgraph induced by edgeKind, returning every SCC whose size falls in
// [2, maxCycleLength].
func (a *Analyzer) DetectCycles(ctx context.Context, edgeKind types.EdgeKind, maxCycleLength int) (*CycleResult, error) {
	if err := validateEdgeKind(edgeKind); err != nil {
		return nil, err
	}
	if maxCycleLength < 2 || maxCycleLength > 20 {
		return nil, types.Newf(types.KindInvalidArgument, "max_cycle_length %d out of range [2,20]", maxCycleLength)
	}
	if err := ctx.Err(); err != nil {
		return nil, types.Wrap(types.KindCancelled, "analysis cancelled", err)
	}

	edges, err := a.graph.EdgesOfKind(edgeKind)
	if err != nil {
		return nil, err
	}

	adj := make(map[types.NodeID][]types.NodeID)
	nodeSet := make(map[types.NodeID]bool)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		nodeSet[e.Source] = true
		nodeSet[e.Target] = true
	}

	t := &tarjan{adj: adj, indices: make(map[types.NodeID]int), lowlink: make(map[types.NodeID]int), onStack: make(map[types.NodeID]bool)}
	nodes := make([]types.NodeID, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].String() < nodes[j].String() })

	for _, n := range nodes {
		if _, seen := t.indices[n]; !seen {
			t.strongConnect(n)
		}
	}

	var cycles []Cycle
	for _, scc := range t.sccs {
		if len(scc) >= 2 && len(scc) <= maxCycleLength {
			sort.Slice(scc, func(i, j int) bool { return scc[i].String() < scc[j].String() })
			cycles = append(cycles, Cycle{Nodes: scc})
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Nodes[0].String() < cycles[j].Nodes[0].String() })

	return &CycleResult{Cycles: cycles}, nil
}

// tarjan is a standard iterative-free (recursive) Tarjan SCC implementation
// over an in-memory adjacency map built from one edge kind's subgraph.
type tarjan struct {
	adj     map[types.NodeID][]types.NodeID
	indices map[types.NodeID]int
	lowlink map[types.NodeID]int
	onStack map[types.NodeID]bool
	stack   []types.NodeID
	index   int
	sccs    [][]types.NodeID
}

func (t *tarjan) strongConnect(v types.NodeID) {
	t.indices[v] = t.index
	t.lowlink[v] = t.index
	t.index++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.adj[v] {
		if _, seen := t.indices[w]; !seen {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.indices[w] < t.lowlink[v] {
				t.lowlink[v] = t.indices[w]
			}
		}
	}

	if t.lowlink[v] == t.indices[v] {
		var scc []types.NodeID
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
