package analysis

import (
	"context"
	"testing"

	"codegraph/internal/graphstore"
	"codegraph/internal/types"
)

func node(name string) types.NodeID {
	return types.NewNodeID(name+".go", types.KindFunction, 0, 10)
}

// fakeGraph is a fully in-memory GraphReader for exercising analysis
// operations without a real graphstore.Store.
type fakeGraph struct {
	nodes map[types.NodeID]types.Node
	edges []types.Edge
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{nodes: make(map[types.NodeID]types.Node)}
}

func (f *fakeGraph) addNode(id types.NodeID, name string) {
	f.nodes[id] = types.Node{ID: id, Name: name, Kind: types.KindFunction}
}

func (f *fakeGraph) addEdge(src, dst types.NodeID, kind types.EdgeKind, confidence float64) {
	f.edges = append(f.edges, types.Edge{Source: src, Target: dst, Kind: kind, Confidence: confidence})
}

func (f *fakeGraph) GetNode(id types.NodeID) (types.Node, error) {
	n, ok := f.nodes[id]
	if !ok {
		return types.Node{}, types.ErrNotFound
	}
	return n, nil
}

func (f *fakeGraph) Neighbors(n types.NodeID, kindFilter types.EdgeKind, direction graphstore.Direction) ([]types.Edge, error) {
	var out []types.Edge
	for _, e := range f.edges {
		if kindFilter != "" && e.Kind != kindFilter {
			continue
		}
		switch direction {
		case graphstore.DirOut:
			if e.Source == n {
				out = append(out, e)
			}
		case graphstore.DirIn:
			if e.Target == n {
				out = append(out, e)
			}
		default:
			if e.Source == n || e.Target == n {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeGraph) EdgesOfKind(kind types.EdgeKind) ([]types.Edge, error) {
	var out []types.Edge
	for _, e := range f.edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestTransitiveDependenciesBFS(t *testing.T) {
	g := newFakeGraph()
	a, b, c := node("a"), node("b"), node("c")
	g.addNode(a, "a")
	g.addNode(b, "b")
	g.addNode(c, "c")
	g.addEdge(a, b, types.EdgeCalls, 1.0)
	g.addEdge(b, c, types.EdgeCalls, 1.0)

	az := New(g, 0)
	result, err := az.TransitiveDependencies(context.Background(), a, types.EdgeCalls, 2)
	if err != nil {
		t.Fatalf("TransitiveDependencies: %v", err)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(result.Entries), result.Entries)
	}
	if result.Entries[0].Node != a || result.Entries[0].Depth != 0 {
		t.Fatalf("expected the start node at depth 0 first, got %+v", result.Entries[0])
	}
	if result.Entries[1].Node != b || result.Entries[1].Depth != 1 {
		t.Fatalf("expected b at depth 1 second, got %+v", result.Entries[1])
	}
	if result.Entries[2].Node != c || result.Entries[2].Depth != 2 {
		t.Fatalf("expected c at depth 2 third, got %+v", result.Entries[2])
	}
}

func TestTransitiveDependenciesPrunesCycles(t *testing.T) {
	g := newFakeGraph()
	a, b := node("a"), node("b")
	g.addNode(a, "a")
	g.addNode(b, "b")
	g.addEdge(a, b, types.EdgeCalls, 1.0)
	g.addEdge(b, a, types.EdgeCalls, 1.0)

	az := New(g, 0)
	result, err := az.TransitiveDependencies(context.Background(), a, types.EdgeCalls, 5)
	if err != nil {
		t.Fatalf("TransitiveDependencies: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected the start node plus cycle pruned to 2 entries, got %d", len(result.Entries))
	}
}

func TestTransitiveDependenciesFlagsLowConfidence(t *testing.T) {
	g := newFakeGraph()
	a, b := node("a"), node("b")
	g.addNode(a, "a")
	g.addNode(b, "b")
	g.addEdge(a, b, types.EdgeCalls, 0.4)

	az := New(g, 0)
	result, err := az.TransitiveDependencies(context.Background(), a, types.EdgeCalls, 1)
	if err != nil {
		t.Fatalf("TransitiveDependencies: %v", err)
	}
	if !result.Entries[1].LowConfidence {
		t.Fatal("expected low-confidence edge to be flagged, not blocked")
	}
}

func TestTransitiveDependenciesInvalidDepth(t *testing.T) {
	g := newFakeGraph()
	a := node("a")
	g.addNode(a, "a")
	az := New(g, 0)
	_, err := az.TransitiveDependencies(context.Background(), a, types.EdgeCalls, 11)
	if !types.Is(err, types.KindInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestTransitiveDependenciesMissingNode(t *testing.T) {
	g := newFakeGraph()
	az := New(g, 0)
	_, err := az.TransitiveDependencies(context.Background(), node("ghost"), types.EdgeCalls, 1)
	if !types.Is(err, types.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestReverseDependencies(t *testing.T) {
	g := newFakeGraph()
	a, b := node("a"), node("b")
	g.addNode(a, "a")
	g.addNode(b, "b")
	g.addEdge(a, b, types.EdgeImports, 1.0)

	az := New(g, 0)
	result, err := az.ReverseDependencies(context.Background(), b, types.EdgeImports, 2)
	if err != nil {
		t.Fatalf("ReverseDependencies: %v", err)
	}
	if len(result.Entries) != 2 || result.Entries[0].Node != b || result.Entries[1].Node != a {
		t.Fatalf("expected the start node b then its reverse dependency a, got %+v", result.Entries)
	}
}

func TestTraceCallChainTerminatesAtLeaf(t *testing.T) {
	g := newFakeGraph()
	a, b, c := node("a"), node("b"), node("c")
	g.addNode(a, "a")
	g.addNode(b, "b")
	g.addNode(c, "c")
	g.addEdge(a, b, types.EdgeCalls, 1.0)
	g.addEdge(b, c, types.EdgeCalls, 1.0)

	az := New(g, 0)
	result, err := az.TraceCallChain(context.Background(), a, 5, false)
	if err != nil {
		t.Fatalf("TraceCallChain: %v", err)
	}
	if len(result.Chains) != 1 {
		t.Fatalf("expected 1 chain, got %d", len(result.Chains))
	}
	want := []types.NodeID{a, b, c}
	got := result.Chains[0].Nodes
	if len(got) != len(want) {
		t.Fatalf("expected chain %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected chain %v, got %v", want, got)
		}
	}
}

func TestTraceCallChainIncludesIndirectViaReferences(t *testing.T) {
	g := newFakeGraph()
	a, b := node("a"), node("b")
	g.addNode(a, "a")
	g.addNode(b, "b")
	g.addEdge(a, b, types.EdgeReferences, 1.0)

	az := New(g, 0)
	without, err := az.TraceCallChain(context.Background(), a, 5, false)
	if err != nil {
		t.Fatalf("TraceCallChain: %v", err)
	}
	if len(without.Chains[0].Nodes) != 1 {
		t.Fatalf("expected no traversal without includeIndirect, got %+v", without.Chains)
	}

	with, err := az.TraceCallChain(context.Background(), a, 5, true)
	if err != nil {
		t.Fatalf("TraceCallChain: %v", err)
	}
	if len(with.Chains[0].Nodes) != 2 {
		t.Fatalf("expected indirect traversal via References, got %+v", with.Chains)
	}
}

func TestDetectCyclesFindsSCC(t *testing.T) {
	g := newFakeGraph()
	a, b, c, d := node("a"), node("b"), node("c"), node("d")
	for _, n := range []types.NodeID{a, b, c, d} {
		g.addNode(n, n.String())
	}
	g.addEdge(a, b, types.EdgeCalls, 1.0)
	g.addEdge(b, c, types.EdgeCalls, 1.0)
	g.addEdge(c, a, types.EdgeCalls, 1.0)
	g.addEdge(c, d, types.EdgeCalls, 1.0)

	az := New(g, 0)
	result, err := az.DetectCycles(context.Background(), types.EdgeCalls, 10)
	if err != nil {
		t.Fatalf("DetectCycles: %v", err)
	}
	if len(result.Cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d: %+v", len(result.Cycles), result.Cycles)
	}
	if len(result.Cycles[0].Nodes) != 3 {
		t.Fatalf("expected cycle of size 3, got %d", len(result.Cycles[0].Nodes))
	}
}

func TestDetectCyclesRejectsOutOfRangeLength(t *testing.T) {
	g := newFakeGraph()
	az := New(g, 0)
	_, err := az.DetectCycles(context.Background(), types.EdgeCalls, 1)
	if !types.Is(err, types.KindInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestCouplingMetrics(t *testing.T) {
	g := newFakeGraph()
	a, b, c := node("a"), node("b"), node("c")
	g.addNode(a, "a")
	g.addNode(b, "b")
	g.addNode(c, "c")
	g.addEdge(b, a, types.EdgeImports, 1.0) // inbound to a
	g.addEdge(a, c, types.EdgeImports, 1.0) // outbound from a

	az := New(g, 0)
	metrics, err := az.CouplingMetrics(context.Background(), a, types.EdgeImports)
	if err != nil {
		t.Fatalf("CouplingMetrics: %v", err)
	}
	if metrics.Afferent != 1 || metrics.Efferent != 1 {
		t.Fatalf("expected Ca=1 Ce=1, got %+v", metrics)
	}
	if metrics.Instability != 0.5 {
		t.Fatalf("expected instability 0.5, got %f", metrics.Instability)
	}
}

func TestCouplingMetricsZeroDegreeIsZeroInstability(t *testing.T) {
	g := newFakeGraph()
	a := node("a")
	g.addNode(a, "a")

	az := New(g, 0)
	metrics, err := az.CouplingMetrics(context.Background(), a, types.EdgeImports)
	if err != nil {
		t.Fatalf("CouplingMetrics: %v", err)
	}
	if metrics.Instability != 0 {
		t.Fatalf("expected instability 0 for isolated node, got %f", metrics.Instability)
	}
}

func TestHubNodesTopLimitAndThreshold(t *testing.T) {
	g := newFakeGraph()
	a, b, c, d := node("a"), node("b"), node("c"), node("d")
	g.addNode(a, "a")
	g.addNode(b, "b")
	g.addNode(c, "c")
	g.addNode(d, "d")
	g.addEdge(a, c, types.EdgeCalls, 1.0)
	g.addEdge(b, c, types.EdgeCalls, 1.0)
	g.addEdge(d, c, types.EdgeCalls, 1.0)

	az := New(g, 0)
	result, err := az.HubNodes(context.Background(), types.EdgeCalls, 2, 1)
	if err != nil {
		t.Fatalf("HubNodes: %v", err)
	}
	if len(result.Nodes) != 1 {
		t.Fatalf("expected 1 hub within limit, got %d", len(result.Nodes))
	}
	if result.Nodes[0].Node != c {
		t.Fatalf("expected c (degree 3) as top hub, got %+v", result.Nodes[0])
	}
}
