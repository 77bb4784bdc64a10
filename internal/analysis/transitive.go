package analysis

import (
	"context"
	"sort"

	"codegraph/internal/graphstore"
	"codegraph/internal/types"
)

// DependencyEntry is one node reached during a transitive/reverse
// dependency traversal.
type DependencyEntry struct {
	Node          types.NodeID `json:"node"`
	Depth         int          `json:"depth"`
	LowConfidence bool         `json:"low_confidence,omitempty"`
}

// DependencyResult is transitive_dependencies/reverse_dependencies' output,
// ordered by depth then NodeId. Entries includes the start node itself at
// depth 0, so the result reads as a tree keyed by depth.
type DependencyResult struct {
	Root      types.NodeID      `json:"root"`
	Entries   []DependencyEntry `json:"entries"`
	Truncated bool              `json:"truncated,omitempty"`
	Boundary  []types.NodeID    `json:"boundary,omitempty"`
}

// TransitiveDependencies returns nodes reachable from node along edgeKind
// edges up to depth hops, forward direction.
func (a *Analyzer) TransitiveDependencies(ctx context.Context, node types.NodeID, edgeKind types.EdgeKind, depth int) (*DependencyResult, error) {
	return a.bfsDependencies(ctx, node, edgeKind, depth, graphstore.DirOut)
}

// ReverseDependencies is TransitiveDependencies over the reverse-edge index
// (§4.5: "Same as above over the reverse-edge index").
func (a *Analyzer) ReverseDependencies(ctx context.Context, node types.NodeID, edgeKind types.EdgeKind, depth int) (*DependencyResult, error) {
	return a.bfsDependencies(ctx, node, edgeKind, depth, graphstore.DirIn)
}

func (a *Analyzer) bfsDependencies(ctx context.Context, node types.NodeID, edgeKind types.EdgeKind, depth int, direction graphstore.Direction) (*DependencyResult, error) {
	if err := validateDepth(depth); err != nil {
		return nil, err
	}
	if err := validateEdgeKind(edgeKind); err != nil {
		return nil, err
	}
	if err := a.checkNodeExists(ctx, node); err != nil {
		return nil, err
	}

	type frontierItem struct {
		id    types.NodeID
		depth int
	}

	visited := map[types.NodeID]bool{node: true}
	lowConf := make(map[types.NodeID]bool)
	queue := []frontierItem{{id: node, depth: 0}}
	entries := []DependencyEntry{{Node: node, Depth: 0}}
	visitedCount := 0
	truncated := false
	var boundary []types.NodeID

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= depth {
			continue
		}
		if visitedCount >= a.workBudget {
			truncated = true
			boundary = append(boundary, cur.id)
			continue
		}

		edges, err := a.graph.Neighbors(cur.id, edgeKind, direction)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			next := e.Target
			if direction == graphstore.DirIn {
				next = e.Source
			}
			if visited[next] {
				continue // cycle pruned at first revisit
			}
			visited[next] = true
			visitedCount++
			if e.Unreliable() {
				lowConf[next] = true
			}
			entries = append(entries, DependencyEntry{Node: next, Depth: cur.depth + 1, LowConfidence: e.Unreliable()})
			queue = append(queue, frontierItem{id: next, depth: cur.depth + 1})
		}

		if err := ctx.Err(); err != nil {
			truncated = true
			break
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Depth != entries[j].Depth {
			return entries[i].Depth < entries[j].Depth
		}
		return entries[i].Node.String() < entries[j].Node.String()
	})

	return &DependencyResult{Root: node, Entries: entries, Truncated: truncated, Boundary: boundary}, nil
}
