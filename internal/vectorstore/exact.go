package vectorstore

import (
	"sort"
	"sync"

	"codegraph/internal/types"
)

// exactIndex is brute-force cosine search, always 100% recall, used for
// N < 50K per §4.3.
type exactIndex struct {
	mu      sync.RWMutex
	vectors map[types.NodeID][]float32
}

func (e *exactIndex) insert(id types.NodeID, v []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.vectors == nil {
		e.vectors = make(map[types.NodeID][]float32)
	}
	e.vectors[id] = v
}

func (e *exactIndex) remove(id types.NodeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.vectors, id)
}

func (e *exactIndex) search(query []float32, k int, filter func(types.NodeID) bool) []Match {
	e.mu.RLock()
	defer e.mu.RUnlock()

	matches := make([]Match, 0, len(e.vectors))
	for id, v := range e.vectors {
		if !filter(id) {
			continue
		}
		matches = append(matches, Match{NodeID: id, Similarity: float64(cosineSimilarity(query, v))})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

func (e *exactIndex) rebuild(entries []entry, _ Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vectors = make(map[types.NodeID][]float32, len(entries))
	for _, en := range entries {
		e.vectors[en.id] = en.vector
	}
}
