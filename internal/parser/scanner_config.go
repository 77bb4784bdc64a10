package parser

import (
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// ScanOptions controls the parsing pipeline's performance and scope (§4.1:
// "bucketing, worker pool, AST walk ... include_comments / max_file_bytes /
// follow_symlinks option handling").
type ScanOptions struct {
	// MaxConcurrency bounds the worker pool's goroutine count.
	MaxConcurrency int
	// IgnorePatterns skips matching paths/dirs, relative to the scan root.
	// Supports plain directory names ("node_modules") and glob patterns
	// ("vendor/*").
	IgnorePatterns []string
	// MaxFileBytes skips parsing (but not bucketing) files larger than this.
	MaxFileBytes int64
	// IncludeComments is carried in the options but no parser reads it;
	// comment nodes are never emitted, whatever its value.
	IncludeComments bool
	// FollowSymlinks admits symlink entries met during the walk: when false
	// they are skipped, when true they are bucketed by extension like
	// regular files. The walk never descends into a symlinked directory.
	FollowSymlinks bool
}

// DefaultScanOptions returns sane defaults for a repository-sized scan.
func DefaultScanOptions() ScanOptions {
	workers := runtime.NumCPU()
	if workers > 20 {
		workers = 20
	}
	if workers < 4 {
		workers = 4
	}
	if env := os.Getenv("CODEGRAPH_SCAN_WORKERS"); env != "" {
		if v, err := strconv.Atoi(env); err == nil && v > 0 {
			workers = v
		}
	}

	maxBytes := int64(2 * 1024 * 1024)
	if env := os.Getenv("CODEGRAPH_SCAN_MAX_FILE_BYTES"); env != "" {
		if v, err := strconv.ParseInt(env, 10, 64); err == nil && v > 0 {
			maxBytes = v
		}
	}

	return ScanOptions{
		MaxConcurrency: workers,
		IgnorePatterns: []string{
			".git", ".codegraph", "node_modules", "vendor", "dist", "build",
			".next", "target", "bin", "obj", ".terraform", ".venv", ".cache",
		},
		MaxFileBytes:    maxBytes,
		IncludeComments: false,
		FollowSymlinks:  false,
	}
}

func normalizePattern(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimSuffix(p, "/")
	p = strings.TrimSuffix(p, "\\")
	return filepath.ToSlash(p)
}

// isIgnoredRel reports whether a scan-root-relative path should be skipped.
func isIgnoredRel(rel, name string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, raw := range patterns {
		p := normalizePattern(raw)
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[]") {
			if ok, _ := path.Match(p, rel); ok {
				return true
			}
			if strings.HasSuffix(p, "/*") {
				prefix := strings.TrimSuffix(p, "/*")
				if strings.HasPrefix(rel, prefix+"/") {
					return true
				}
			}
			continue
		}
		if name == p {
			return true
		}
		if strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}
