package graphstore

import (
	"database/sql"

	"codegraph/internal/logging"
	"codegraph/internal/types"
)

// Tx is a consistent-snapshot handle passed to a Transaction closure
// (§4.2: "closure sees a consistent snapshot; writes are atomic on commit;
// failure aborts all writes").
type Tx struct {
	store   *Store
	sqlTx   *sql.Tx
	written []types.NodeID
}

// PutNode writes a node within the transaction.
func (tx *Tx) PutNode(n types.Node) error {
	if err := tx.store.putNodeLocked(tx.sqlTx, n); err != nil {
		return err
	}
	tx.written = append(tx.written, n.ID)
	return nil
}

// PutEdge writes an edge within the transaction.
func (tx *Tx) PutEdge(e types.Edge) error {
	if err := tx.store.putEdgeLocked(tx.sqlTx, e); err != nil {
		return err
	}
	tx.written = append(tx.written, e.Source, e.Target)
	return nil
}

// GetNode reads a node within the transaction's snapshot.
func (tx *Tx) GetNode(id types.NodeID) (types.Node, error) { return tx.store.getNodeLocked(tx.sqlTx, id) }

// Neighbors reads edges within the transaction's snapshot.
func (tx *Tx) Neighbors(node types.NodeID, kindFilter types.EdgeKind, direction Direction) ([]types.Edge, error) {
	return tx.store.neighborsLocked(tx.sqlTx, node, kindFilter, direction)
}

// Transaction runs fn against a single SQL transaction holding the store's
// write lock for the duration, matching §4.2's single-writer contract. fn
// returning an error rolls back every write it made.
func (s *Store) Transaction(fn func(*Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.Begin()
	if err != nil {
		return types.Wrap(types.KindStorageError, "begin transaction", err)
	}

	tx := &Tx{store: s, sqlTx: sqlTx}
	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			logging.Get(logging.CategoryGraphStore).Error("rollback failed: %v", rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return types.Wrap(types.KindStorageError, "commit transaction", err)
	}
	for _, id := range tx.written {
		s.notifyWrite(id)
	}
	return nil
}
