package graphstore

import (
	"database/sql"
	"encoding/json"

	"codegraph/internal/types"
)

// PutNode inserts or overwrites n by NodeId, preserving the original
// CreatedAt on overwrite (§4.2: "overwrites by NodeId, preserving creation
// time").
func (s *Store) PutNode(n types.Node) error {
	s.mu.Lock()
	err := s.putNodeLocked(s.db, n)
	s.mu.Unlock()
	if err == nil {
		s.notifyWrite(n.ID)
	}
	return err
}

func (s *Store) putNodeLocked(exec execer, n types.Node) error {
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return types.Wrap(types.KindStorageError, "marshal node metadata", err)
	}

	var parent *string
	if n.Parent != nil {
		p := n.Parent.String()
		parent = &p
	}

	createdAt := n.CreatedAt
	if createdAt == 0 {
		createdAt = nowNanos()
	}
	lastSeenAt := n.LastSeenAt
	if lastSeenAt == 0 {
		lastSeenAt = createdAt
	}

	// Preserve an existing row's created_at on overwrite.
	var existingCreatedAt int64
	row := exec.QueryRow(`SELECT created_at FROM nodes WHERE id = ?`, n.ID.String())
	if err := row.Scan(&existingCreatedAt); err == nil {
		createdAt = existingCreatedAt
	} else if err != sql.ErrNoRows {
		return types.Wrap(types.KindStorageError, "read existing node for overwrite", err)
	}

	_, err = exec.Exec(`
		INSERT INTO nodes (id, kind, name, language, file, start_byte, end_byte, start_line, end_line, parent, metadata, created_at, last_seen_at, tombstoned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			kind=excluded.kind, name=excluded.name, language=excluded.language,
			file=excluded.file, start_byte=excluded.start_byte, end_byte=excluded.end_byte,
			start_line=excluded.start_line, end_line=excluded.end_line, parent=excluded.parent,
			metadata=excluded.metadata, last_seen_at=excluded.last_seen_at, tombstoned=0
	`,
		n.ID.String(), string(n.Kind), n.Name, n.Language, n.Location.File,
		n.Location.StartByte, n.Location.EndByte, n.Location.StartLine, n.Location.EndLine,
		parent, string(meta), createdAt, lastSeenAt,
	)
	if err != nil {
		return types.Wrap(types.KindStorageError, "put node", err)
	}
	return nil
}

// PutNodes writes a batch of nodes in one transaction (§4.2 batched writes).
func (s *Store) PutNodes(nodes []types.Node) error {
	return s.Transaction(func(tx *Tx) error {
		for _, n := range nodes {
			if err := tx.PutNode(n); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetNode returns the node for id, or types.ErrNotFound if absent or
// tombstoned.
func (s *Store) GetNode(id types.NodeID) (types.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getNodeLocked(s.db, id)
}

func (s *Store) getNodeLocked(q querier, id types.NodeID) (types.Node, error) {
	row := q.QueryRow(`
		SELECT id, kind, name, language, file, start_byte, end_byte, start_line, end_line, parent, metadata, created_at, last_seen_at, tombstoned
		FROM nodes WHERE id = ? AND tombstoned = 0
	`, id.String())

	var (
		idStr, kind, name, language, file, metaJSON string
		startByte, endByte, startLine, endLine       int
		parent                                       sql.NullString
		createdAt, lastSeenAt                        int64
		tombstoned                                   int
	)
	err := row.Scan(&idStr, &kind, &name, &language, &file, &startByte, &endByte, &startLine, &endLine, &parent, &metaJSON, &createdAt, &lastSeenAt, &tombstoned)
	if err == sql.ErrNoRows {
		return types.Node{}, types.Newf(types.KindNotFound, "node %s not found", id)
	}
	if err != nil {
		return types.Node{}, types.Wrap(types.KindStorageError, "scan node", err)
	}

	n := types.Node{
		ID:       id,
		Kind:     types.NodeKind(kind),
		Name:     name,
		Language: language,
		Location: types.Location{
			File: file, StartByte: startByte, EndByte: endByte, StartLine: startLine, EndLine: endLine,
		},
		CreatedAt:  createdAt,
		LastSeenAt: lastSeenAt,
		Tombstoned: tombstoned != 0,
	}
	if parent.Valid {
		pid, perr := types.ParseNodeID(parent.String)
		if perr == nil {
			n.Parent = &pid
		}
	}
	if metaJSON != "" {
		_ = json.Unmarshal([]byte(metaJSON), &n.Metadata)
	}
	return n, nil
}

// FindByName resolves symbols through the idx/name/ namespace equivalent
// (language, name) -> NodeId index (§4.2 storage layout).
func (s *Store) FindByName(language, name string) ([]types.NodeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id FROM nodes WHERE language = ? AND name = ? AND tombstoned = 0`, language, name)
	if err != nil {
		return nil, types.Wrap(types.KindStorageError, "find by name", err)
	}
	defer rows.Close()

	var ids []types.NodeID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			continue
		}
		id, err := types.ParseNodeID(idStr)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// execer is the subset of *sql.DB / *sql.Tx used for writes.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// querier is the subset of *sql.DB / *sql.Tx used for reads.
type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}
