// Command ragcored wires the hybrid query execution core into a runnable
// process: it loads configuration, connects every collaborator (vector
// store, cache, MCP multiplexer, generation provider, episodic memory), and
// then reads queries one per line from stdin, printing each RoutedUpdate as
// it arrives. spec.md's Out of Scope list excludes HTTP/WebSocket framing —
// this is the plain entrypoint a collaborator service fronts with its own
// transport, the way codeready-toolchain-tarsy's cmd/tarsy wires its own
// services before handing them to gin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ragcore-ai/engine/internal/agent"
	"github.com/ragcore-ai/engine/internal/assess"
	"github.com/ragcore-ai/engine/internal/cache"
	"github.com/ragcore-ai/engine/internal/config"
	"github.com/ragcore-ai/engine/internal/episode"
	"github.com/ragcore-ai/engine/internal/generation"
	"github.com/ragcore-ai/engine/internal/mcp"
	"github.com/ragcore-ai/engine/internal/monitor"
	"github.com/ragcore-ai/engine/internal/retrieval"
	"github.com/ragcore-ai/engine/internal/router"
	"github.com/ragcore-ai/engine/internal/strategy"
	"github.com/ragcore-ai/engine/internal/vectorstore"
	concurrency "github.com/ragcore-ai/engine/pkg/sync"
)

func main() {
	configPath := flag.String("config", os.Getenv("RAGCORE_CONFIG"), "path to a YAML config file (optional, defaults apply)")
	queryFlag := flag.String("query", "", "run a single query and exit instead of reading stdin")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ragcored: load config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := wire(ctx, cfg, logger)
	if err != nil {
		logger.Error("wiring failed", "error", err)
		os.Exit(1)
	}
	defer d.Close()

	if *queryFlag != "" {
		runQuery(ctx, d, logger, *queryFlag)
		return
	}

	runREPL(ctx, d, logger)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// deps holds every long-lived collaborator the router needs, so main can
// close them in reverse dependency order on shutdown.
type deps struct {
	router        *router.Router
	monitor       *monitor.Monitor
	mcp           *mcp.Client
	store         vectorstore.Store
	cache         *cache.Cache
	redis         *redis.Client
	episodes      *episode.QdrantStore
	expansionPool *ants.Pool
}

func (d *deps) Close() {
	if d.mcp != nil {
		_ = d.mcp.Close()
	}
	if d.store != nil {
		_ = d.store.Close()
	}
	if d.episodes != nil {
		_ = d.episodes.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.expansionPool != nil {
		d.expansionPool.Release()
	}
}

// wire builds every component in dependency order: connection pool and
// embedder first (nothing downstream works without them), then the vector
// store, cache, and MCP multiplexer, then the specialist retrievers that
// depend on all three, then the agentic engine, and finally the router and
// performance monitor that sit on top of everything else.
func wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*deps, error) {
	embedder, err := generation.NewOpenAIEmbedder(&generation.OpenAIConfig{
		APIKey:         os.Getenv(cfg.OpenAIAPIKeyEnv),
		EmbeddingModel: cfg.OpenAIEmbeddingModel,
		EmbeddingDim:   cfg.EmbeddingDim,
	})
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	model, err := newGenerationModel(cfg)
	if err != nil {
		return nil, fmt.Errorf("generation model: %w", err)
	}

	store, err := newVectorStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ch, err := cache.New(cache.Config{
		Redis: redisClient,
		L1TTL: time.Duration(cfg.L1TTLSeconds) * time.Second,
		L2TTL: time.Duration(cfg.L2TTLSeconds) * time.Second,
		DependsOn: cache.DependencyGraph{
			"retrieval": {"strategy"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	client := mcp.New(cfg.MCPServers)
	serverNames := make([]string, 0, len(cfg.MCPServers))
	for name := range cfg.MCPServers {
		serverNames = append(serverNames, name)
	}
	client.Connect(ctx, serverNames)
	for name, reason := range client.FailedServers() {
		logger.Warn("mcp server failed to connect", "server", name, "reason", reason)
	}

	var antsPool *ants.Pool
	var expansionPool concurrency.Pool
	var expander retrieval.QueryExpander
	if cfg.EnableQueryExpansion {
		antsPool, err = ants.NewPool(cfg.QueryExpansionPoolSize)
		if err != nil {
			return nil, fmt.Errorf("query expansion pool: %w", err)
		}
		expansionPool = concurrency.PoolOfAnts(antsPool)
		expander, err = retrieval.NewMultiQueryExpander(retrieval.MultiQueryExpanderConfig{
			Model:           model,
			NumberOfQueries: cfg.QueryExpansionCount,
		})
		if err != nil {
			return nil, fmt.Errorf("query expander: %w", err)
		}
	}

	retrievers, err := buildRetrievers(cfg, store, embedder, client, expander, expansionPool)
	if err != nil {
		return nil, fmt.Errorf("retrievers: %w", err)
	}
	for name, r := range retrievers {
		retrievers[name] = retrieval.NewCachingRetriever(r, ch)
	}

	analyzer, err := retrieval.NewAnalyzer(cfg.TokenEncoding)
	if err != nil {
		return nil, fmt.Errorf("query analyzer: %w", err)
	}

	rewriter, err := retrieval.NewRewriteQueryTransformer(retrieval.RewriteQueryTransformerConfig{Model: model})
	if err != nil {
		return nil, fmt.Errorf("rewriter: %w", err)
	}

	evaluator, err := assess.NewModelEvaluator(model)
	if err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}

	var episodes episode.Store
	var episodeStoreHandle *episode.QdrantStore
	episodeStore, err := episode.NewQdrantStore(ctx, episode.QdrantConfig{
		Address:    cfg.QdrantAddr,
		Collection: cfg.EpisodeCollection,
		Dim:        cfg.EmbeddingDim,
		Threshold:  float32(cfg.EpisodeSimilarityThreshold),
	})
	if err != nil {
		logger.Warn("episodic memory unavailable, continuing without warm-start", "error", err)
	} else {
		episodes = episodeStore
		episodeStoreHandle = episodeStore
	}

	engine, err := agent.NewEngine(agent.EngineConfig{
		Retrievers:                    retrievers,
		Rewriter:                      rewriter,
		Evaluator:                     evaluator,
		Model:                         model,
		Embedder:                      embedder,
		Episodes:                      episodes,
		Analyzer:                      analyzer,
		ObservationRelevanceThreshold: cfg.ObservationRelevanceThreshold,
		CorrectiveConfidenceBoost:     cfg.CorrectiveConfidenceBoost,
	})
	if err != nil {
		return nil, fmt.Errorf("agentic engine: %w", err)
	}

	direct, err := router.NewDirectRunner(retrievers["vector"], model, evaluator)
	if err != nil {
		return nil, fmt.Errorf("speculative runner: %w", err)
	}

	mon, err := monitor.New(monitor.Config{
		AlertErrorRate: cfg.AlertErrorRate,
		AlertP95MS:     cfg.AlertP95MS,
	})
	if err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}

	r, err := router.NewRouter(router.Config{
		Speculative:               direct,
		Agentic:                   engine,
		Recorder:                  mon,
		DefaultSpeculativeTimeout: cfg.SpeculativeTimeout(),
		DefaultAgenticTimeout:     cfg.AgenticTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	return &deps{router: r, monitor: mon, mcp: client, store: store, cache: ch, redis: redisClient, episodes: episodeStoreHandle, expansionPool: antsPool}, nil
}

func newGenerationModel(cfg *config.Config) (generation.Model, error) {
	switch cfg.GenerationProvider {
	case "anthropic":
		return generation.NewAnthropicModel(&generation.AnthropicConfig{
			APIKey: os.Getenv(cfg.AnthropicAPIKeyEnv),
			Model:  cfg.GenerationModel,
		})
	default:
		return generation.NewOpenAIModel(&generation.OpenAIConfig{
			APIKey: os.Getenv(cfg.OpenAIAPIKeyEnv),
			Model:  cfg.GenerationModel,
		})
	}
}

// newVectorStore opens a pooled Store against whichever backend
// cfg.VectorBackend names. The factory closure is what NewPooledStore calls
// each time it needs a fresh handle, so reconnects after an idle reap reuse
// the exact same construction path as the initial dial.
func newVectorStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	var factory func(context.Context) (vectorstore.Store, error)
	switch cfg.VectorBackend {
	case "qdrant":
		factory = func(ctx context.Context) (vectorstore.Store, error) {
			return vectorstore.NewQdrantStore(ctx, vectorstore.QdrantConfig{
				Address:         cfg.QdrantAddr,
				Collection:      cfg.VectorCollection,
				Dim:             cfg.EmbeddingDim,
				Metric:          vectorstore.Metric(cfg.VectorMetric),
				CorpusSize:      cfg.CorpusSize,
				KoreanOptimized: cfg.EnableKoreanOptimization,
			})
		}
	default:
		factory = func(ctx context.Context) (vectorstore.Store, error) {
			return vectorstore.NewMilvusStore(ctx, vectorstore.MilvusConfig{
				Address:         cfg.MilvusAddr,
				Collection:      cfg.VectorCollection,
				Dim:             cfg.EmbeddingDim,
				Metric:          vectorstore.Metric(cfg.VectorMetric),
				CorpusSize:      cfg.CorpusSize,
				KoreanOptimized: cfg.EnableKoreanOptimization,
			})
		}
	}

	idleTTL := time.Duration(cfg.VectorPoolIdleTTLSeconds) * time.Second
	return vectorstore.NewPooledStore(ctx, cfg.VectorPoolSize, idleTTL, factory)
}

// buildRetrievers always wires the vector retriever (required by
// agent.NewEngine) and adds web/local retrievers only when their MCP server
// is configured, per §4.4's "each specialist degrades independently". expander
// and pool are non-nil only when cfg.EnableQueryExpansion turns on the vector
// retriever's paraphrase-fan-out search path.
func buildRetrievers(cfg *config.Config, store vectorstore.Store, embedder generation.Embedder, client *mcp.Client, expander retrieval.QueryExpander, pool concurrency.Pool) (map[string]retrieval.Retriever, error) {
	vector, err := retrieval.NewVectorRetriever(retrieval.VectorRetrieverConfig{
		Store:    store,
		Embedder: embedder,
		Expander: expander,
		Pool:     pool,
	})
	if err != nil {
		return nil, err
	}

	retrievers := map[string]retrieval.Retriever{"vector": vector}

	if cfg.WebMCPServer != "" {
		web, err := retrieval.NewWebRetriever(retrieval.WebRetrieverConfig{
			Caller: client,
			Server: cfg.WebMCPServer,
		})
		if err != nil {
			return nil, err
		}
		retrievers["web"] = web
	}

	if cfg.LocalMCPServer != "" {
		local, err := retrieval.NewLocalRetriever(retrieval.LocalRetrieverConfig{
			Caller: client,
			Server: cfg.LocalMCPServer,
		})
		if err != nil {
			return nil, err
		}
		retrievers["local"] = local
	}

	return retrievers, nil
}

func runQuery(ctx context.Context, d *deps, logger *slog.Logger, text string) {
	q := retrieval.Query{Text: text, Mode: retrieval.ModeBalanced}
	updates, err := d.router.Route(ctx, q, q.Mode, strategy.Parameters{TopK: 5, MaxIterations: 3}, 0, 0)
	if err != nil {
		logger.Error("route", "error", err)
		os.Exit(1)
	}
	printUpdates(updates)
}

func runREPL(ctx context.Context, d *deps, logger *slog.Logger) {
	fmt.Fprintln(os.Stderr, "ragcored: reading queries from stdin, one per line (Ctrl-D to exit)")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		q := retrieval.Query{Text: text, Mode: retrieval.ModeBalanced}
		updates, err := d.router.Route(ctx, q, q.Mode, strategy.Parameters{TopK: 5, MaxIterations: 3}, 0, 0)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return
			}
			logger.Error("route", "error", err)
			continue
		}
		printUpdates(updates)
	}
}

func printUpdates(updates <-chan router.RoutedUpdate) {
	for u := range updates {
		switch u.Status {
		case router.StatusError:
			fmt.Printf("[%s/error] %v\n", u.Path, u.Err)
		default:
			fmt.Printf("[%s/%s] (confidence %.2f) %s\n", u.Path, u.Status, u.Result.Confidence, u.Result.Answer)
			for _, src := range u.Result.Sources {
				fmt.Printf("  source: %s (score %.3f)\n", src.DocumentName, src.Score)
			}
		}
	}
}
