package vectorstore

import (
	"sort"
	"sync"

	"codegraph/internal/types"
)

// graphIndex is a navigable small-world graph over vectors: each node keeps
// up to M neighbor edges chosen greedily during insertion, and search walks
// the graph from an entry point toward the query, keeping an
// efConstruction-sized candidate frontier (§4.3's "hierarchical small-world
// graph with out-degree M and candidate-list size e", collapsed to a
// single layer — new code, the teacher has no ANN graph implementation).
type graphIndex struct {
	mu        sync.RWMutex
	vectors   map[types.NodeID][]float32
	edges     map[types.NodeID][]types.NodeID
	entry     types.NodeID
	hasEntry  bool
	m         int
	ef        int
}

func (g *graphIndex) insert(id types.NodeID, v []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.vectors == nil {
		g.vectors = make(map[types.NodeID][]float32)
		g.edges = make(map[types.NodeID][]types.NodeID)
	}
	if g.m == 0 {
		g.m = 16
	}
	if g.ef == 0 {
		g.ef = 64
	}

	g.vectors[id] = v
	if !g.hasEntry {
		g.entry = id
		g.hasEntry = true
		g.edges[id] = nil
		return
	}

	neighbors := g.searchLayerLocked(v, g.ef, nil)
	if len(neighbors) > g.m {
		neighbors = neighbors[:g.m]
	}
	var linked []types.NodeID
	for _, n := range neighbors {
		linked = append(linked, n.NodeID)
		g.edges[n.NodeID] = appendBounded(g.edges[n.NodeID], id, g.m)
	}
	g.edges[id] = linked
}

func appendBounded(list []types.NodeID, id types.NodeID, max int) []types.NodeID {
	list = append(list, id)
	if len(list) > max {
		list = list[len(list)-max:]
	}
	return list
}

func (g *graphIndex) remove(id types.NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.vectors, id)
	for _, n := range g.edges[id] {
		g.edges[n] = removeID(g.edges[n], id)
	}
	delete(g.edges, id)

	if g.hasEntry && g.entry == id {
		g.hasEntry = false
		for other := range g.vectors {
			g.entry = other
			g.hasEntry = true
			break
		}
	}
}

func removeID(list []types.NodeID, id types.NodeID) []types.NodeID {
	for i, v := range list {
		if v == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (g *graphIndex) search(query []float32, k int, filter func(types.NodeID) bool) []Match {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ef := g.ef
	if ef < k {
		ef = k
	}
	matches := g.searchLayerLocked(query, ef, filter)
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// searchLayerLocked performs a best-first walk from the entry point,
// expanding each visited node's neighbors, until the frontier is exhausted
// or 4*ef candidates have been collected. Callers must hold at least a read
// lock.
func (g *graphIndex) searchLayerLocked(query []float32, ef int, filter func(types.NodeID) bool) []Match {
	if !g.hasEntry {
		return nil
	}

	visited := map[types.NodeID]bool{g.entry: true}
	frontier := []Match{{NodeID: g.entry, Similarity: float64(cosineSimilarity(query, g.vectors[g.entry]))}}
	best := append([]Match(nil), frontier...)

	for len(frontier) > 0 {
		sort.Slice(frontier, func(i, j int) bool { return frontier[i].Similarity > frontier[j].Similarity })
		current := frontier[0]
		frontier = frontier[1:]

		for _, neighbor := range g.edges[current.NodeID] {
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			m := Match{NodeID: neighbor, Similarity: float64(cosineSimilarity(query, g.vectors[neighbor]))}
			frontier = append(frontier, m)
			best = append(best, m)
		}
		if len(best) >= ef*4 {
			break // bound the walk; large graphs shouldn't visit everything
		}
	}

	sort.Slice(best, func(i, j int) bool { return best[i].Similarity > best[j].Similarity })

	if filter == nil {
		if len(best) > ef {
			best = best[:ef]
		}
		return best
	}
	filtered := best[:0]
	for _, m := range best {
		if filter(m.NodeID) {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) > ef {
		filtered = filtered[:ef]
	}
	return filtered
}

func (g *graphIndex) rebuild(entries []entry, params Params) {
	g.mu.Lock()
	g.vectors = make(map[types.NodeID][]float32, len(entries))
	g.edges = make(map[types.NodeID][]types.NodeID, len(entries))
	g.hasEntry = false
	g.m = params.M
	g.ef = params.EfConstruction
	g.mu.Unlock()

	for _, en := range entries {
		g.insert(en.id, en.vector)
	}
}
