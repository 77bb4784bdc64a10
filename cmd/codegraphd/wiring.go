package main

import (
	"context"
	"path/filepath"

	"codegraph/internal/agent"
	"codegraph/internal/analysis"
	"codegraph/internal/cache"
	"codegraph/internal/config"
	"codegraph/internal/graphstore"
	"codegraph/internal/llm"
	"codegraph/internal/tools"
	"codegraph/internal/types"
	"codegraph/internal/vectorstore"
)

// deps bundles every long-lived dependency cmd_serve.go and cmd_index.go
// need, assembled once by buildDependencies and closed by deps.Close.
type deps struct {
	cfg     *config.Config
	graph   *graphstore.Store
	vectors *vectorstore.Store
	cache   *cache.Cache
	watcher *cache.PrefixWatcher
	embedder llm.Embedder
	registry *tools.Registry
	agent    *agent.Agent
}

func (d *deps) Close() {
	if d.vectors != nil {
		_ = d.vectors.Close()
	}
	if d.graph != nil {
		d.graph.StopCompaction()
		_ = d.graph.Close()
	}
}

// buildDependencies loads config, opens the graph and vector stores, wires
// the cache's write-invalidation sweep to the graph store, builds the
// embedder and chat provider, registers every direct tool plus the get_node
// cache wrap, and constructs the Agent that drives them — the single
// assembly point every entry command (serve, index) shares. The seven
// agentic_<kind> entrypoints are registered by runServe, not here.
func buildDependencies(ctx context.Context) (*deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}

	graph, err := graphstore.Open(filepath.Join(cfg.GraphDir(), "graph.db"))
	if err != nil {
		return nil, err
	}
	graph.StartCompaction(cfg.Timeouts.PerToolCall * 10)

	vectors, err := vectorstore.Open(
		filepath.Join(cfg.VectorsDir(), "vectors.db"),
		cfg.VectorDimension,
		vectorstore.VariantGraph,
		vectorstore.Params{},
	)
	if err != nil {
		graph.StopCompaction()
		_ = graph.Close()
		return nil, err
	}

	memCache := cache.New(cfg.Cache.MaxEntriesPerKind)
	watcher := cache.NewPrefixWatcher(memCache)
	graph.SetWriteListener(func(id types.NodeID) { watcher.OnNodeWrite(id.String()) })

	embedder, err := llm.NewEmbedder(ctx, cfg.Embedding, cfg.VectorDimension)
	if err != nil {
		return nil, err
	}

	registry := tools.NewRegistry()
	analyzer := analysis.New(graph, analysis.DefaultWorkBudget)
	if err := tools.RegisterGraphTools(registry, analyzer); err != nil {
		return nil, err
	}
	if err := tools.RegisterNodeTools(registry, graph); err != nil {
		return nil, err
	}
	if err := tools.RegisterVectorTools(registry, vectors, embedder); err != nil {
		return nil, err
	}
	wireNodeCache(registry, memCache, watcher)

	chatProvider, err := llm.NewChatProvider(cfg.LLM, cfg.Timeouts)
	if err != nil {
		return nil, err
	}
	retryingChat := llm.NewRetryingChatProvider(chatProvider, cfg.Timeouts.MaxLLMRetries, cfg.Timeouts.RetryBackoffBase, cfg.Timeouts.RetryBackoffMax)

	a := agent.New(agent.Config{
		Chat:               retryingChat,
		Registry:           registry,
		Tiers:              cfg.Tiers,
		Timeouts:           cfg.Timeouts,
		Architecture:       cfg.AgentArchitecture,
		StepBudgetOverride: cfg.StepBudgetOverride,
	})

	return &deps{
		cfg:      cfg,
		graph:    graph,
		vectors:  vectors,
		cache:    memCache,
		watcher:  watcher,
		embedder: embedder,
		registry: registry,
		agent:    a,
	}, nil
}

// wireNodeCache wraps get_node's Execute with the cache's raw-node kind
// (§4.4), memoizing reads behind a fingerprint of the lookup arguments and
// registering the returned node's own id as a watch prefix so a later write
// to that node sweeps the cached read out. internal/tools itself stays free
// of a cache import (it's unit-tested against a bare *graphstore.Store), so
// the wrap happens here at assembly time instead.
func wireNodeCache(registry *tools.Registry, memCache *cache.Cache, watcher *cache.PrefixWatcher) {
	tool := registry.Get("get_node")
	if tool == nil {
		return
	}
	inner := tool.Execute
	tool.Execute = func(ctx context.Context, args map[string]any) (string, error) {
		key := cache.Fingerprint("get_node", args)
		value, err := memCache.GetOrComputeTagged(key, cache.KindRawNode, cache.DefaultTTLs[cache.KindRawNode], nodeTags(args), func() ([]byte, error) {
			result, err := inner(ctx, args)
			return []byte(result), err
		})
		if err != nil {
			return "", err
		}
		if node, _ := args["node"].(string); node != "" {
			watcher.Register(node)
		}
		return string(value), nil
	}
}

func nodeTags(args map[string]any) []string {
	if node, ok := args["node"].(string); ok && node != "" {
		return []string{node}
	}
	return nil
}
