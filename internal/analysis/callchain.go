package analysis

import (
	"context"
	"sort"

	"codegraph/internal/graphstore"
	"codegraph/internal/types"
)

// CallChain is one terminated sequence of nodes from trace_call_chain's
// forward traversal (§4.5).
type CallChain struct {
	Nodes []types.NodeID `json:"nodes"`
}

// CallChainResult is trace_call_chain's output.
type CallChainResult struct {
	Chains    []CallChain `json:"chains"`
	Truncated bool        `json:"truncated,omitempty"`
}

// TraceCallChain forward-traverses Calls edges from startNode, terminating
// each chain at a leaf, a revisit, or maxDepth. When includeIndirect is
// true, a single hop through a References edge is also permitted at each
// step, matching §4.5's "single-hop chains through intermediary References
// edges are permitted".
func (a *Analyzer) TraceCallChain(ctx context.Context, startNode types.NodeID, maxDepth int, includeIndirect bool) (*CallChainResult, error) {
	if err := validateDepth(maxDepth); err != nil {
		return nil, err
	}
	if err := a.checkNodeExists(ctx, startNode); err != nil {
		return nil, err
	}

	visited := map[types.NodeID]bool{}
	truncated := false
	var chains []CallChain

	var walk func(path []types.NodeID, visitedHere map[types.NodeID]bool)
	walk = func(path []types.NodeID, visitedHere map[types.NodeID]bool) {
		if len(visited) >= a.workBudget {
			truncated = true
			chains = append(chains, CallChain{Nodes: append([]types.NodeID(nil), path...)})
			return
		}

		cur := path[len(path)-1]
		hops := len(path) - 1
		if hops >= maxDepth {
			chains = append(chains, CallChain{Nodes: append([]types.NodeID(nil), path...)})
			return
		}

		next := a.callChainSuccessors(cur, includeIndirect)
		if len(next) == 0 {
			chains = append(chains, CallChain{Nodes: append([]types.NodeID(nil), path...)})
			return
		}

		extended := false
		for _, n := range next {
			if visitedHere[n.target] {
				chains = append(chains, CallChain{Nodes: append(append([]types.NodeID(nil), path...), n.target)})
				continue
			}
			extended = true
			visitedHere[n.target] = true
			visited[n.target] = true
			walk(append(path, n.target), visitedHere)
			delete(visitedHere, n.target)
		}
		if !extended {
			chains = append(chains, CallChain{Nodes: append([]types.NodeID(nil), path...)})
		}
	}

	walk([]types.NodeID{startNode}, map[types.NodeID]bool{startNode: true})

	return &CallChainResult{Chains: chains, Truncated: truncated}, nil
}

type successor struct {
	target     types.NodeID
	confidence float64
	name       string
}

// callChainSuccessors returns cur's next hops, tie-broken by confidence
// descending then target name (§4.5).
func (a *Analyzer) callChainSuccessors(cur types.NodeID, includeIndirect bool) []successor {
	var out []successor

	calls, err := a.graph.Neighbors(cur, types.EdgeCalls, graphstore.DirOut)
	if err == nil {
		for _, e := range calls {
			out = append(out, successor{target: e.Target, confidence: e.Confidence, name: a.nodeName(e.Target)})
		}
	}

	if includeIndirect {
		refs, err := a.graph.Neighbors(cur, types.EdgeReferences, graphstore.DirOut)
		if err == nil {
			for _, e := range refs {
				out = append(out, successor{target: e.Target, confidence: e.Confidence, name: a.nodeName(e.Target)})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].confidence != out[j].confidence {
			return out[i].confidence > out[j].confidence
		}
		return out[i].name < out[j].name
	})
	return out
}

func (a *Analyzer) nodeName(id types.NodeID) string {
	n, err := a.graph.GetNode(id)
	if err != nil {
		return id.String()
	}
	return n.Name
}
