// Package vectorstore is CodeGraph's ANN index over NodeId-keyed vectors
// (§4.3). Storage persistence is grounded on the teacher's
// internal/store/vector_store.go (SQLite-backed vector table, sqlite-vec
// extension detection, backfill-on-migrate discipline); the Inverted and
// Graph index variants are new code the teacher has no equivalent of,
// built in its idiom (plain structs, explicit mutexes, no generics beyond
// what internal/parallel already introduces).
package vectorstore

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codegraph/internal/logging"
	"codegraph/internal/types"

	_ "github.com/mattn/go-sqlite3"
)

// Variant selects the ANN algorithm backing a Store, chosen at construction
// per §4.3 ("three operating modes selected at construction").
type Variant string

const (
	VariantExact    Variant = "exact"
	VariantInverted Variant = "inverted"
	VariantGraph    Variant = "graph"
)

// Params tunes the Inverted and Graph variants; zero value picks the
// defaults noted per-field.
type Params struct {
	// Inverted-list: NumLists centroids, Probes lists searched per query.
	NumLists int
	Probes   int

	// Graph-based (HNSW-style): M = out-degree per node, EfConstruction =
	// candidate list size used during insertion and search.
	M              int
	EfConstruction int
}

func (p Params) withDefaults() Params {
	if p.NumLists <= 0 {
		p.NumLists = 100
	}
	if p.Probes <= 0 {
		p.Probes = 8
	}
	if p.M <= 0 {
		p.M = 16
	}
	if p.EfConstruction <= 0 {
		p.EfConstruction = 64
	}
	return p
}

// index is the algorithm-specific search surface every Variant implements.
// Store owns persistence (the SQLite-backed entries table); index owns
// in-memory structure over the same vectors.
type index interface {
	insert(id types.NodeID, v []float32)
	remove(id types.NodeID)
	search(query []float32, k int, filter func(types.NodeID) bool) []Match
	rebuild(entries []entry, params Params)
}

// entry is one stored vector, used to rebuild an in-memory index from the
// persisted table.
type entry struct {
	id     types.NodeID
	vector []float32
}

// Match is one search result.
type Match struct {
	NodeID     types.NodeID
	Similarity float64
}

// Stats reports index size and health per §4.3's stats() contract.
type Stats struct {
	Count          int
	Dimension      int
	Bytes          int64
	LastRebuild    time.Time
	Variant        Variant
}

// Store is a vector store handle: one SQLite database holding the
// persisted (NodeId, vector, fingerprint) entries, plus an in-memory index
// of the configured Variant rebuilt from that table at Open.
type Store struct {
	mu         sync.RWMutex
	db         *sql.DB
	dimension  int
	variant    Variant
	params     Params
	idx        index
	lastBuild  time.Time
}

// Open opens (creating if absent) the vector store database at path,
// configures it for dimension-width vectors, and rebuilds the chosen
// Variant's in-memory index from whatever is persisted.
func Open(path string, dimension int, variant Variant, params Params) (*Store, error) {
	if dimension <= 0 {
		return nil, types.New(types.KindInvalidArgument, "vector dimension must be > 0")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, types.Wrap(types.KindVectorError, "create vector store directory", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, types.Wrap(types.KindVectorError, "open vector store database", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logging.Get(logging.CategoryVectorStore).Warn("pragma %q failed: %v", pragma, err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS vector_entries (
			node_id TEXT PRIMARY KEY,
			embedding BLOB NOT NULL,
			fingerprint TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, types.Wrap(types.KindVectorError, "create vector store schema", err)
	}

	s := &Store{db: db, dimension: dimension, variant: variant, params: params.withDefaults()}
	s.idx = newIndex(variant)

	entries, err := s.loadAll()
	if err != nil {
		db.Close()
		return nil, err
	}
	s.idx.rebuild(entries, s.params)
	s.lastBuild = time.Now()

	detectVecExtension(db)

	return s, nil
}

func newIndex(variant Variant) index {
	switch variant {
	case VariantInverted:
		return &invertedIndex{}
	case VariantGraph:
		return &graphIndex{}
	default:
		return &exactIndex{}
	}
}

func (s *Store) loadAll() ([]entry, error) {
	rows, err := s.db.Query(`SELECT node_id, embedding FROM vector_entries`)
	if err != nil {
		return nil, types.Wrap(types.KindVectorError, "load vector entries", err)
	}
	defer rows.Close()

	var out []entry
	for rows.Next() {
		var idStr string
		var blob []byte
		if err := rows.Scan(&idStr, &blob); err != nil {
			continue
		}
		id, err := types.ParseNodeID(idStr)
		if err != nil {
			continue
		}
		out = append(out, entry{id: id, vector: decodeVector(blob)})
	}
	return out, nil
}

// Put inserts or overwrites the vector for id. v is normalized in place
// (§4.3: "the store normalizes on insert"). Node writes must precede
// vector writes at the caller level (§4.3 Consistency with graph store);
// the vector store itself does not validate NodeId existence.
func (s *Store) Put(id types.NodeID, v []float32, fingerprint string) error {
	if len(v) != s.dimension {
		return types.Newf(types.KindVectorError, "dimension mismatch: store=%d got=%d", s.dimension, len(v))
	}
	normalized := normalize(append([]float32(nil), v...))

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO vector_entries (node_id, embedding, fingerprint) VALUES (?, ?, ?)
		ON CONFLICT(node_id) DO UPDATE SET embedding=excluded.embedding, fingerprint=excluded.fingerprint
	`, id.String(), encodeVector(normalized), fingerprint)
	if err != nil {
		return types.Wrap(types.KindVectorError, "put vector", err)
	}

	s.idx.insert(id, normalized)
	return nil
}

// Delete removes id's vector, if present. Deletes must precede the
// corresponding node delete at the caller level (§4.3 Consistency).
func (s *Store) Delete(id types.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM vector_entries WHERE node_id = ?`, id.String()); err != nil {
		return types.Wrap(types.KindVectorError, "delete vector", err)
	}
	s.idx.remove(id)
	return nil
}

// Search returns the k nearest neighbors to query (by cosine similarity),
// decreasing similarity, restricted to NodeIds for which filter returns
// true (a nil filter matches everything).
func (s *Store) Search(query []float32, k int, filter func(types.NodeID) bool) ([]Match, error) {
	if len(query) != s.dimension {
		return nil, types.Newf(types.KindVectorError, "dimension mismatch: store=%d got=%d", s.dimension, len(query))
	}
	if k == 0 {
		return []Match{}, nil
	}
	if k < 0 {
		return nil, types.New(types.KindInvalidArgument, "k must be >= 0")
	}
	if filter == nil {
		filter = func(types.NodeID) bool { return true }
	}
	normalized := normalize(append([]float32(nil), query...))

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.search(normalized, k, filter), nil
}

// Rebuild recomputes the in-memory index from the persisted table using
// new parameters, swapping it in atomically on completion (§4.3: "offline;
// index is swapped atomically on completion").
func (s *Store) Rebuild(params Params) error {
	entries, err := func() ([]entry, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.loadAll()
	}()
	if err != nil {
		return err
	}

	newIdx := newIndex(s.variant)
	newIdx.rebuild(entries, params.withDefaults())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = newIdx
	s.params = params.withDefaults()
	s.lastBuild = time.Now()
	return nil
}

// Stats reports current index size and health.
func (s *Store) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	var totalBytes int64
	if err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(LENGTH(embedding)), 0) FROM vector_entries`).Scan(&count, &totalBytes); err != nil {
		return Stats{}, types.Wrap(types.KindVectorError, "query vector store stats", err)
	}

	return Stats{
		Count:       count,
		Dimension:   s.dimension,
		Bytes:       totalBytes,
		LastRebuild: s.lastBuild,
		Variant:     s.variant,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
