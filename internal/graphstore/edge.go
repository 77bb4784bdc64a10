package graphstore

import (
	"encoding/json"

	"codegraph/internal/types"
)

// PutEdge inserts e, or idempotently updates metadata/confidence if
// (source, target, kind) already exists (§4.2: "idempotent (same source,
// target, kind is a no-op beyond metadata update)"). The edges_out/edges_in
// pair is one physical row here (the edges table's (source,kind,target)
// primary key is scanned from both ends via idx_edges_out/idx_edges_in),
// so there is no dual-write to keep consistent — that invariant is implicit
// in the schema rather than requiring two transactional writes the way
// spec.md's literal KV layout would.
func (s *Store) PutEdge(e types.Edge) error {
	s.mu.Lock()
	err := s.putEdgeLocked(s.db, e)
	s.mu.Unlock()
	if err == nil {
		s.notifyWrite(e.Source)
		s.notifyWrite(e.Target)
	}
	return err
}

func (s *Store) putEdgeLocked(exec execer, e types.Edge) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return types.Wrap(types.KindStorageError, "marshal edge metadata", err)
	}
	_, err = exec.Exec(`
		INSERT INTO edges (source, target, kind, confidence, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source, kind, target) DO UPDATE SET
			confidence=excluded.confidence, metadata=excluded.metadata
	`, e.Source.String(), e.Target.String(), string(e.Kind), e.Confidence, string(meta))
	if err != nil {
		return types.Wrap(types.KindStorageError, "put edge", err)
	}
	return nil
}

// Neighbors returns the edges touching node in direction, optionally
// filtered to a single kind. kindFilter == "" matches every kind.
func (s *Store) Neighbors(node types.NodeID, kindFilter types.EdgeKind, direction Direction) ([]types.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.neighborsLocked(s.db, node, kindFilter, direction)
}

func (s *Store) neighborsLocked(q querier, node types.NodeID, kindFilter types.EdgeKind, direction Direction) ([]types.Edge, error) {
	var query string
	args := []interface{}{node.String()}

	switch direction {
	case DirOut:
		query = `SELECT source, target, kind, confidence, metadata FROM edges WHERE source = ?`
	case DirIn:
		query = `SELECT source, target, kind, confidence, metadata FROM edges WHERE target = ?`
	default: // Both
		query = `SELECT source, target, kind, confidence, metadata FROM edges WHERE source = ? OR target = ?`
		args = append(args, node.String())
	}
	if kindFilter != "" {
		query += ` AND kind = ?`
		args = append(args, string(kindFilter))
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, types.Wrap(types.KindStorageError, "query neighbors", err)
	}
	defer rows.Close()

	var edges []types.Edge
	for rows.Next() {
		var srcStr, dstStr, kind, metaJSON string
		var confidence float64
		if err := rows.Scan(&srcStr, &dstStr, &kind, &confidence, &metaJSON); err != nil {
			continue
		}
		src, err1 := types.ParseNodeID(srcStr)
		dst, err2 := types.ParseNodeID(dstStr)
		if err1 != nil || err2 != nil {
			continue
		}
		e := types.Edge{Source: src, Target: dst, Kind: types.EdgeKind(kind), Confidence: confidence}
		if metaJSON != "" {
			_ = json.Unmarshal([]byte(metaJSON), &e.Metadata)
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// EdgesOfKind returns every edge of kind in the store, for callers (e.g.
// analysis's cycle detection and hub-node ranking) that need the whole
// induced subgraph rather than one node's neighborhood.
func (s *Store) EdgesOfKind(kind types.EdgeKind) ([]types.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT source, target, kind, confidence, metadata FROM edges WHERE kind = ?`, string(kind))
	if err != nil {
		return nil, types.Wrap(types.KindStorageError, "query edges of kind", err)
	}
	defer rows.Close()

	var edges []types.Edge
	for rows.Next() {
		var srcStr, dstStr, k, metaJSON string
		var confidence float64
		if err := rows.Scan(&srcStr, &dstStr, &k, &confidence, &metaJSON); err != nil {
			continue
		}
		src, err1 := types.ParseNodeID(srcStr)
		dst, err2 := types.ParseNodeID(dstStr)
		if err1 != nil || err2 != nil {
			continue
		}
		e := types.Edge{Source: src, Target: dst, Kind: types.EdgeKind(k), Confidence: confidence}
		if metaJSON != "" {
			_ = json.Unmarshal([]byte(metaJSON), &e.Metadata)
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// DeleteSubtree removes node, its outbound and inbound edges, and
// (if cascade) recursively removes every node reachable by Contains edges
// from node (§4.2: "removes node, outbound edges, inbound edges whose
// source is also being deleted transitively if cascade requested").
func (s *Store) DeleteSubtree(node types.NodeID, cascade bool) error {
	return s.Transaction(func(tx *Tx) error {
		ids := []types.NodeID{node}
		if cascade {
			descendants, err := tx.collectContainsDescendants(node)
			if err != nil {
				return err
			}
			ids = append(ids, descendants...)
		}
		for _, id := range ids {
			if _, err := tx.sqlTx.Exec(`DELETE FROM edges WHERE source = ? OR target = ?`, id.String(), id.String()); err != nil {
				return types.Wrap(types.KindStorageError, "delete edges for subtree", err)
			}
			if _, err := tx.sqlTx.Exec(`DELETE FROM nodes WHERE id = ?`, id.String()); err != nil {
				return types.Wrap(types.KindStorageError, "delete node for subtree", err)
			}
		}
		return nil
	})
}

// collectContainsDescendants walks Contains edges from root to find every
// transitively-contained node, BFS, cycle-safe via a visited set.
func (tx *Tx) collectContainsDescendants(root types.NodeID) ([]types.NodeID, error) {
	visited := map[types.NodeID]bool{root: true}
	queue := []types.NodeID{root}
	var out []types.NodeID

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		edges, err := tx.store.neighborsLocked(tx.sqlTx, cur, types.EdgeContains, DirOut)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if visited[e.Target] {
				continue
			}
			visited[e.Target] = true
			out = append(out, e.Target)
			queue = append(queue, e.Target)
		}
	}
	return out, nil
}
