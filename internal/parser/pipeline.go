package parser

import (
	"context"
	"os"
	"path/filepath"

	"codegraph/internal/graphstore"
	"codegraph/internal/logging"
	"codegraph/internal/parallel"
	"codegraph/internal/types"
)

// Registry resolves a LanguageParser by file extension.
type Registry struct {
	byExt map[string]LanguageParser
}

// NewRegistry builds the default registry: GoParser plus the tree-sitter
// grammars in grammarSpecs, keyed by every extension each one claims.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]LanguageParser)}
	r.register(NewGoParser())
	for _, p := range newTreeSitterParsers() {
		r.register(p)
	}
	return r
}

func (r *Registry) register(p LanguageParser) {
	for _, ext := range p.SupportedExtensions() {
		r.byExt[ext] = p
	}
}

func (r *Registry) forExt(ext string) (LanguageParser, bool) {
	p, ok := r.byExt[ext]
	return p, ok
}

// RunStats summarizes one Pipeline.Run invocation.
type RunStats struct {
	FilesScanned  int
	FilesSkipped  int
	FilesParsed   int
	NodesWritten  int
	EdgesResolved int
	EdgesDropped  int
	ParseErrors   int
}

// Pipeline ties bucketing (scanner.go), per-language dispatch (Registry), an
// incremental file cache, and the cross-file pending-edge resolution pass
// into one indexing run over a workspace root.
type Pipeline struct {
	Store    *graphstore.Store
	Registry *Registry
	Cache    *FileCache
	Options  ScanOptions
}

// NewPipeline wires a pipeline around an already-open graph store. cache may
// be nil to disable incremental skipping (every file is re-parsed).
func NewPipeline(store *graphstore.Store, cache *FileCache, opts ScanOptions) *Pipeline {
	return &Pipeline{Store: store, Registry: NewRegistry(), Cache: cache, Options: opts}
}

// job is one file dispatched to its language's extractor.
type job struct {
	relPath string
	parser  LanguageParser
}

// jobOutcome is what running one job produced, collected by parallel.RunCollect
// so one file's failure never discards its siblings' results (§4.1 Failure
// semantics: a single file's parse error is logged and skipped).
type jobOutcome struct {
	relPath string
	skipped bool
	result  ParseResult
}

// Run scans root, parses every file the registry has a LanguageParser for,
// writes all emitted nodes and directly-resolved edges, then runs the
// pending-edge resolution pass against the store's (language, name) index.
func (p *Pipeline) Run(ctx context.Context, root string) (RunStats, error) {
	buckets, err := ScanWorkspace(root, p.Options)
	if err != nil {
		return RunStats{}, types.Wrap(types.KindInternal, "scan workspace", err)
	}

	var jobs []job
	for _, bucket := range buckets {
		languageParser, ok := p.Registry.forExt(bucket.Extension)
		if !ok {
			continue
		}
		for _, relPath := range bucket.Files {
			jobs = append(jobs, job{relPath: relPath, parser: languageParser})
		}
	}

	pool := parallel.NewPool(p.Options.MaxConcurrency)
	outcomes := parallel.RunCollect(ctx, pool, jobs, func(_ context.Context, j job) (jobOutcome, error) {
		result, skipped, err := p.parseOne(root, j.relPath, j.parser)
		return jobOutcome{relPath: j.relPath, skipped: skipped, result: result}, err
	})

	var stats RunStats
	var allPending []PendingEdge

	for _, outcome := range outcomes {
		stats.FilesScanned++
		if outcome.Err != nil {
			logging.ParserWarn("pipeline: %s: %v", outcome.Value.relPath, outcome.Err)
			continue
		}
		if outcome.Value.skipped {
			stats.FilesSkipped++
			continue
		}

		result := outcome.Value.result
		stats.FilesParsed++
		stats.ParseErrors += len(result.Errors)

		if err := p.Store.PutNodes(result.Nodes); err != nil {
			return stats, types.Wrap(types.KindStorageError, "write nodes for "+outcome.Value.relPath, err)
		}
		for _, e := range result.Edges {
			if err := p.Store.PutEdge(e); err != nil {
				return stats, types.Wrap(types.KindStorageError, "write edge for "+outcome.Value.relPath, err)
			}
		}
		stats.NodesWritten += len(result.Nodes)
		allPending = append(allPending, result.Pending...)
	}

	resolved, dropped, err := p.resolvePending(allPending)
	if err != nil {
		return stats, err
	}
	stats.EdgesResolved = resolved
	stats.EdgesDropped = dropped

	if p.Cache != nil {
		if err := p.Cache.Save(); err != nil {
			logging.ParserWarn("pipeline: failed to save file cache: %v", err)
		}
	}

	logging.ParserDebug("pipeline: %s scanned=%d parsed=%d skipped=%d nodes=%d edges_resolved=%d edges_dropped=%d",
		root, stats.FilesScanned, stats.FilesParsed, stats.FilesSkipped, stats.NodesWritten, stats.EdgesResolved, stats.EdgesDropped)
	return stats, nil
}

func (p *Pipeline) parseOne(root, relPath string, languageParser LanguageParser) (ParseResult, bool, error) {
	absPath := filepath.Join(root, relPath)
	info, err := os.Stat(absPath)
	if err != nil {
		return ParseResult{}, false, err
	}
	if p.Options.MaxFileBytes > 0 && info.Size() > p.Options.MaxFileBytes {
		return ParseResult{}, true, nil
	}
	if p.Cache != nil && p.Cache.Unchanged(relPath, info) {
		return ParseResult{}, true, nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return ParseResult{}, false, err
	}

	result, err := languageParser.Parse(relPath, content)
	if err != nil {
		return ParseResult{}, false, err
	}

	if p.Cache != nil {
		p.Cache.Touch(relPath, info)
	}
	return result, false, nil
}

// resolvePending matches each PendingEdge.TargetName against the store's
// (language, name) index built from every node written so far in this run
// (and any prior run). A match becomes a lower-confidence Edge — §3
// Invariants ties edge confidence below 1.0 to similarity/name resolution
// rather than direct syntactic observation — anything unmatched is dropped.
const pendingEdgeConfidence = 0.55

func (p *Pipeline) resolvePending(pending []PendingEdge) (resolved, dropped int, err error) {
	for _, pe := range pending {
		ids, lookupErr := p.Store.FindByName(pe.Language, pe.TargetName)
		if lookupErr != nil {
			return resolved, dropped, types.Wrap(types.KindStorageError, "resolve pending edge "+pe.TargetName, lookupErr)
		}
		if len(ids) == 0 {
			dropped++
			continue
		}
		for _, target := range ids {
			edge := types.Edge{
				Source:     pe.From,
				Target:     target,
				Kind:       pe.Kind,
				Confidence: pendingEdgeConfidence,
				Metadata:   map[string]string{"resolution": "name-match"},
			}
			if err := p.Store.PutEdge(edge); err != nil {
				return resolved, dropped, types.Wrap(types.KindStorageError, "write resolved edge", err)
			}
			resolved++
		}
	}
	return resolved, dropped, nil
}
