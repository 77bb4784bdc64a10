package vectorstore

import (
	"codegraph/internal/logging"
	"codegraph/internal/types"
)

// NodeExistenceChecker is the minimal surface Reconcile needs from the
// graph store: whether a NodeId still has a live (non-tombstoned) node.
type NodeExistenceChecker interface {
	GetNode(id types.NodeID) (types.Node, error)
}

// Reconcile scans every persisted vector entry and drops any whose NodeId
// is absent from graph, implementing §4.3's crash-recovery invariant
// ("a background reconciliation pass scans vector entries and drops any
// whose NodeId is absent"). It returns the number of entries dropped.
func (s *Store) Reconcile(graph NodeExistenceChecker) (int, error) {
	s.mu.RLock()
	entries, err := s.loadAll()
	s.mu.RUnlock()
	if err != nil {
		return 0, err
	}

	var orphans []types.NodeID
	for _, en := range entries {
		if _, err := graph.GetNode(en.id); types.Is(err, types.KindNotFound) {
			orphans = append(orphans, en.id)
		}
	}

	for _, id := range orphans {
		if err := s.Delete(id); err != nil {
			logging.Get(logging.CategoryVectorStore).Warn("reconcile: failed to drop orphaned vector %s: %v", id, err)
		}
	}
	if len(orphans) > 0 {
		logging.Get(logging.CategoryVectorStore).Info("reconcile: dropped %d orphaned vector entries", len(orphans))
	}
	return len(orphans), nil
}
