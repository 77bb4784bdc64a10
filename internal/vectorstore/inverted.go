package vectorstore

import (
	"sort"
	"sync"

	"codegraph/internal/types"
)

// invertedIndex partitions vectors into NumLists centroid-assigned buckets
// and probes the Probes nearest centroids per query (§4.3 "Inverted list").
// Centroids are computed by a fixed-iteration Lloyd's-algorithm pass at
// rebuild time; this is new code (the teacher has no IVF implementation),
// written in the teacher's plain-struct-plus-mutex style.
type invertedIndex struct {
	mu        sync.RWMutex
	centroids [][]float32
	lists     [][]entry // lists[i] holds vectors assigned to centroids[i]
	probes    int
}

func (iv *invertedIndex) insert(id types.NodeID, v []float32) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if len(iv.centroids) == 0 {
		// No trained centroids yet (first insert before any rebuild): start
		// a single list so search still works until the next rebuild.
		iv.centroids = [][]float32{v}
		iv.lists = [][]entry{{{id: id, vector: v}}}
		return
	}

	list := iv.nearestCentroidLocked(v)
	iv.removeFromListsLocked(id)
	iv.lists[list] = append(iv.lists[list], entry{id: id, vector: v})
}

func (iv *invertedIndex) remove(id types.NodeID) {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	iv.removeFromListsLocked(id)
}

func (iv *invertedIndex) removeFromListsLocked(id types.NodeID) {
	for li, list := range iv.lists {
		for i, en := range list {
			if en.id == id {
				iv.lists[li] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

func (iv *invertedIndex) nearestCentroidLocked(v []float32) int {
	best, bestSim := 0, float32(-2)
	for i, c := range iv.centroids {
		sim := cosineSimilarity(v, c)
		if sim > bestSim {
			best, bestSim = i, sim
		}
	}
	return best
}

func (iv *invertedIndex) search(query []float32, k int, filter func(types.NodeID) bool) []Match {
	iv.mu.RLock()
	defer iv.mu.RUnlock()

	probes := iv.probes
	if probes <= 0 || probes > len(iv.centroids) {
		probes = len(iv.centroids)
	}

	type centroidDist struct {
		idx int
		sim float32
	}
	cds := make([]centroidDist, len(iv.centroids))
	for i, c := range iv.centroids {
		cds[i] = centroidDist{idx: i, sim: cosineSimilarity(query, c)}
	}
	sort.Slice(cds, func(i, j int) bool { return cds[i].sim > cds[j].sim })
	if len(cds) > probes {
		cds = cds[:probes]
	}

	var matches []Match
	for _, cd := range cds {
		for _, en := range iv.lists[cd.idx] {
			if !filter(en.id) {
				continue
			}
			matches = append(matches, Match{NodeID: en.id, Similarity: float64(cosineSimilarity(query, en.vector))})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// rebuild retrains centroids with a fixed-iteration Lloyd's algorithm pass
// over entries and reassigns every vector to its nearest centroid.
func (iv *invertedIndex) rebuild(entries []entry, params Params) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	iv.probes = params.Probes

	numLists := params.NumLists
	if numLists > len(entries) {
		numLists = len(entries)
	}
	if numLists <= 0 {
		iv.centroids = nil
		iv.lists = nil
		return
	}

	centroids := make([][]float32, numLists)
	for i := 0; i < numLists; i++ {
		centroids[i] = append([]float32(nil), entries[i*len(entries)/numLists].vector...)
	}

	const iterations = 5
	assignment := make([]int, len(entries))
	for iter := 0; iter < iterations; iter++ {
		for i, en := range entries {
			best, bestSim := 0, float32(-2)
			for ci, c := range centroids {
				sim := cosineSimilarity(en.vector, c)
				if sim > bestSim {
					best, bestSim = ci, sim
				}
			}
			assignment[i] = best
		}

		sums := make([][]float64, numLists)
		counts := make([]int, numLists)
		dim := len(entries[0].vector)
		for i := range sums {
			sums[i] = make([]float64, dim)
		}
		for i, en := range entries {
			c := assignment[i]
			counts[c]++
			for d, val := range en.vector {
				sums[c][d] += float64(val)
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			newCentroid := make([]float32, dim)
			for d := range newCentroid {
				newCentroid[d] = float32(sums[c][d] / float64(counts[c]))
			}
			centroids[c] = normalize(newCentroid)
		}
	}

	lists := make([][]entry, numLists)
	for i, en := range entries {
		c := assignment[i]
		lists[c] = append(lists[c], en)
	}

	iv.centroids = centroids
	iv.lists = lists
}
