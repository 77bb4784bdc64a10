package parser

import (
	"os"
	"path/filepath"
	"sort"

	"codegraph/internal/logging"
)

// Bucket groups files by extension so the pipeline can dispatch each file
// to the LanguageParser that claims its extension.
type Bucket struct {
	Extension string
	Files     []string
}

// ScanWorkspace walks root and buckets every regular file by extension,
// skipping anything matched by opts.IgnorePatterns. Directories are walked
// in lexical order so bucket contents (and therefore pipeline output
// ordering, before the resolution pass) are deterministic across runs.
func ScanWorkspace(root string, opts ScanOptions) ([]Bucket, error) {
	byExt := make(map[string][]string)

	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			logging.ParserWarn("scan: walk error at %s: %v", p, err)
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			rel = p
		}
		name := info.Name()

		if info.IsDir() {
			if rel != "." && isIgnoredRel(rel, name, opts.IgnorePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 && !opts.FollowSymlinks {
			return nil
		}
		if isIgnoredRel(rel, name, opts.IgnorePatterns) {
			return nil
		}

		ext := filepath.Ext(name)
		if ext == "" {
			return nil
		}
		byExt[ext] = append(byExt[ext], filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	buckets := make([]Bucket, 0, len(byExt))
	for ext, files := range byExt {
		sort.Strings(files)
		buckets = append(buckets, Bucket{Extension: ext, Files: files})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Extension < buckets[j].Extension })

	logging.ParserDebug("scan: %s bucketed into %d extensions", root, len(buckets))
	return buckets, nil
}
