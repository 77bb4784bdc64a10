package vectorstore

import (
	"database/sql"

	"codegraph/internal/logging"
)

// detectVecExtension probes whether a sqlite-vec-compatible vec0 virtual
// table is usable on db, grounded on the teacher's
// LocalStore.detectVecExtension (local_core.go): attempt to create a throwaway
// vec0 table, or log a warning and carry on. With the sqlite_vec+cgo build
// tag this succeeds against the real extension (init_vec.go's vec.Auto());
// otherwise the probe fails on this mattn/go-sqlite3 connection, since
// vec_compat.go registers its vec0 module with modernc.org/sqlite only.
// Either way this store's own exact/inverted/graph
// indexes are what actually serve search() — the probe only determines
// whether a future SQL-level vec0 query path is available to callers that
// want to issue raw vector_distance_cos queries directly.
func detectVecExtension(db *sql.DB) bool {
	if db == nil {
		return false
	}
	if _, err := db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS vec_probe USING vec0(embedding float[4])"); err == nil {
		_, _ = db.Exec("DROP TABLE IF EXISTS vec_probe")
		return true
	}
	logging.Get(logging.CategoryVectorStore).Warn("sqlite-vec vec0 virtual table unavailable; continuing with in-process ANN index only")
	return false
}
