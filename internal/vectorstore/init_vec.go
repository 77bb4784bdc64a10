//go:build sqlite_vec && cgo

package vectorstore

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// Auto-loadable sqlite-vec extension registration for mattn/go-sqlite3,
	// grounded on the teacher's internal/store/init_vec.go.
	vec.Auto()
}
