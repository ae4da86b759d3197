package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/wsdlab/internal/config"
	"github.com/kailas-cloud/wsdlab/internal/db"
	dbRedis "github.com/kailas-cloud/wsdlab/internal/db/redis"
	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/embedding"
	"github.com/kailas-cloud/wsdlab/internal/lexical/sqlite"
	"github.com/kailas-cloud/wsdlab/internal/lexical/yamllex"
	logpkg "github.com/kailas-cloud/wsdlab/internal/logger"
	"github.com/kailas-cloud/wsdlab/internal/metrics"
	"github.com/kailas-cloud/wsdlab/internal/repository/corpus"
	"github.com/kailas-cloud/wsdlab/internal/repository/dataset"
	"github.com/kailas-cloud/wsdlab/internal/repository/embcache"
	"github.com/kailas-cloud/wsdlab/internal/repository/pagecache"
	"github.com/kailas-cloud/wsdlab/internal/repository/runs"
	"github.com/kailas-cloud/wsdlab/internal/repository/simcache"
	"github.com/kailas-cloud/wsdlab/internal/textnorm"
	chiTransport "github.com/kailas-cloud/wsdlab/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/wsdlab/internal/transport/openai"
	"github.com/kailas-cloud/wsdlab/internal/transport/oracle"
	"github.com/kailas-cloud/wsdlab/internal/transport/wikipedia"
	batchuc "github.com/kailas-cloud/wsdlab/internal/usecase/batch"
	evaluationuc "github.com/kailas-cloud/wsdlab/internal/usecase/evaluation"
	healthuc "github.com/kailas-cloud/wsdlab/internal/usecase/health"
	leskuc "github.com/kailas-cloud/wsdlab/internal/usecase/lesk"
	"github.com/kailas-cloud/wsdlab/internal/version"
)

// oracleScorer is what both evaluation and health need from the oracle.
type oracleScorer interface {
	Similarity(ctx context.Context, a, b string) (float64, bool)
	HealthCheck(ctx context.Context) oracle.Status
}

// lexicon is a lexical source that can report its own health.
type lexicon interface {
	leskuc.LexicalSource
	HealthCheck(ctx context.Context) error
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, version.Version)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting wsdlab API server",
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("lexical_driver", cfg.Lexical.Driver),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	// Register external call metrics explicitly (no init())
	metrics.RegisterExternalMetrics()

	ctx := context.Background()

	// Optional KV cache; every cache decorator is skipped when it is absent.
	store := openCache(ctx, cfg.Cache, logger)
	if store != nil {
		defer store.Close()
	}

	norm := textnorm.New(textnorm.ResolveStopwords(cfg.Text.StopwordsPath, logger), textnorm.DefaultSplitters()...)

	// Pass nil interface (not typed nil pointer!) when lexical mode is off.
	var lex lexicon
	if cfg.Lexical.Path != "" {
		l, closeFn, err := openLexicon(ctx, cfg.Lexical)
		if err != nil {
			logger.Fatal("Failed to open lexicon", zap.String("path", cfg.Lexical.Path), zap.Error(err))
		}
		defer closeFn()
		lex = l
		logger.Info("Lexicon opened", zap.String("driver", cfg.Lexical.Driver), zap.String("path", cfg.Lexical.Path))
	} else {
		logger.Warn("Lexical mode disabled: lexical.path is empty")
	}

	wiki := wikipedia.NewClient(wikipedia.Config{
		BaseURL:           cfg.Wikipedia.BaseURL,
		Language:          cfg.Wikipedia.Language,
		Timeout:           config.Seconds(cfg.Wikipedia.TimeoutSec),
		SummarySentences:  cfg.Wikipedia.SummarySentences,
		RequestsPerSecond: cfg.Wikipedia.RequestsPerSecond,
		UserAgent:         userAgent(cfg.Wikipedia.UserAgent),
		Logger:            logger,
	})
	var encyclopedia leskuc.Encyclopedia = wiki
	if store != nil {
		encyclopedia = pagecache.New(wiki, store, config.Seconds(cfg.Wikipedia.CacheTTLSec), metrics.CacheCounter("wikipedia"), logger)
	}

	leskSvc := leskuc.New(norm, lex, encyclopedia, leskuc.Options{
		MaxCandidates:   cfg.Wikipedia.MaxCandidates,
		URLResolveLimit: cfg.Wikipedia.URLResolveLimit,
		Concurrency:     cfg.Wikipedia.Concurrency,
	}, logger)

	orc, err := buildOracle(cfg.Oracle, store, logger)
	if err != nil {
		logger.Fatal("Failed to build oracle", zap.Error(err))
	}

	sources, apiSource, err := buildEmbeddings(cfg, store, logger)
	if err != nil {
		logger.Fatal("Failed to load embeddings", zap.Error(err))
	}

	datasets := dataset.New(cfg.Data.DatasetsDir, logger)
	runRepo := runs.New(cfg.Data.RunsDir, logger)
	corpusRepo := corpus.New(cfg.Data.CorpusDir)

	var evalOracle evaluationuc.Oracle
	var healthOracle healthuc.OracleChecker
	if orc != nil {
		evalOracle = orc
		healthOracle = orc
	}
	evalSvc := evaluationuc.New(datasets, evalOracle, sources, runRepo, cfg.Oracle.Concurrency, logger)
	batchSvc := batchuc.New(corpusRepo, leskSvc, norm, runRepo, logger).WithMaxLimit(cfg.Batch.MaxLimit)

	healthSvc := healthuc.New(healthOracle).
		Register("wikipedia", wiki).
		Register("datasets", healthuc.CheckFunc(func(context.Context) error { return datasets.Available() })).
		Register("corpus", healthuc.CheckFunc(func(context.Context) error { return corpusRepo.Available() })).
		Register("runs", healthuc.CheckFunc(func(context.Context) error { return runRepo.Available() }))
	if lex != nil {
		healthSvc.Register("lexical", lex)
	}
	if apiSource != nil {
		healthSvc.Register("embedding_api", apiSource)
	}
	if store != nil {
		healthSvc.Register("cache", healthuc.CheckFunc(store.Ping))
	}
	logger.Info("Health checks registered", zap.Strings("components", healthSvc.Components()))

	server := chiTransport.NewServer(leskSvc, evalSvc, batchSvc, runRepo, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(corsMiddleware(cfg.HTTP.CORSOrigins))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  config.Seconds(cfg.HTTP.ReadTimeoutSec),
		WriteTimeout: config.Seconds(cfg.HTTP.WriteTimeoutSec),
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openCache connects to Redis/Valkey. A missing or unreachable cache is
// logged and disables caching rather than failing startup.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) db.Store {
	if len(cfg.Addrs) == 0 {
		logger.Info("Cache disabled: cache.addrs is empty")
		return nil
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Addrs,
		Password:   cfg.Password,
		ClientName: "wsdlab",
	})
	if err != nil {
		logger.Warn("Cache disabled: failed to create store", zap.Error(err))
		return nil
	}
	if err := store.WaitForReady(ctx, config.Seconds(cfg.ReadinessTimeout)); err != nil {
		logger.Warn("Cache disabled: store not ready", zap.Error(err))
		store.Close()
		return nil
	}
	logger.Info("Connected to cache")
	return store
}

// openLexicon opens the configured dictionary backend.
func openLexicon(ctx context.Context, cfg config.LexicalConfig) (lexicon, func(), error) {
	switch cfg.Driver {
	case config.LexicalYAML:
		lx, err := yamllex.Load(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return lx, func() {}, nil
	default:
		st, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqliteLexicon{st}, func() { _ = st.Close() }, nil
	}
}

// sqliteLexicon reports sqlite connectivity as lexicon health.
type sqliteLexicon struct {
	*sqlite.Store
}

func (l sqliteLexicon) HealthCheck(ctx context.Context) error {
	return l.Ping(ctx)
}

// buildOracle assembles the strategy chain: endpoints in order, then the
// command. Returns nil when nothing is configured.
func buildOracle(cfg config.OracleConfig, store db.Store, logger *zap.Logger) (oracleScorer, error) {
	timeout := config.Seconds(cfg.TimeoutSec)
	strategies := make([]oracle.Strategy, 0, len(cfg.Endpoints)+1)
	client := &http.Client{}
	for _, ep := range cfg.Endpoints {
		strategies = append(strategies, oracle.NewHTTPEndpoint(ep, timeout, client))
	}
	if cfg.Command != "" {
		cmd, err := oracle.NewCommand(cfg.Command, timeout)
		if err != nil {
			return nil, fmt.Errorf("oracle command: %w", err)
		}
		strategies = append(strategies, cmd)
	}
	if len(strategies) == 0 {
		logger.Warn("Oracle disabled: no endpoints or command configured")
		return nil, nil
	}

	chain := oracle.NewChain(logger, strategies...)
	logger.Info("Oracle configured", zap.Int("strategies", chain.Len()))
	if store == nil {
		return chain, nil
	}
	return simcache.New(chain, store, config.Seconds(cfg.CacheTTLSec), metrics.CacheCounter("oracle"), logger), nil
}

// buildEmbeddings loads vector files in parallel and appends the API-backed
// source when configured. Sources are ordered by label, API source last.
func buildEmbeddings(
	cfg config.Config, store db.Store, logger *zap.Logger,
) ([]evaluationuc.EmbeddingSource, *embedding.APISource, error) {
	labels := make([]string, 0, len(cfg.Embeddings))
	for label := range cfg.Embeddings {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	loaded := make([]*embedding.Vectors, len(labels))
	var g errgroup.Group
	for i, label := range labels {
		ec := cfg.Embeddings[label]
		g.Go(func() error {
			format, err := embedding.ParseFormat(ec.Format)
			if err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}
			start := time.Now()
			v, err := embedding.LoadFile(label, ec.Path, format)
			if err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}
			logger.Info("Embeddings loaded",
				zap.String("label", label),
				zap.Int("words", v.Len()),
				zap.Int("dim", v.Dim()),
				zap.Duration("took", time.Since(start)),
			)
			loaded[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sources := make([]evaluationuc.EmbeddingSource, 0, len(loaded)+1)
	for _, v := range loaded {
		sources = append(sources, v)
	}

	if cfg.OpenAI.APIKey == "" {
		return sources, nil, nil
	}
	api := embedding.NewAPISource(cfg.OpenAI.Label, buildEmbedder(cfg.OpenAI, store, logger), logger)
	logger.Info("Embedding API configured",
		zap.String("label", cfg.OpenAI.Label),
		zap.String("model", cfg.OpenAI.Model),
	)
	return append(sources, api), api, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached.
func buildEmbedder(cfg config.OpenAIConfig, store db.Store, logger *zap.Logger) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Label,
		Logger:     logger,
	})
	if store == nil {
		return base
	}
	return embcache.New(base, store, cfg.Model, config.Seconds(cfg.CacheTTLSec), metrics.CacheCounter("embedding"), logger)
}

func userAgent(configured string) string {
	if configured != "" {
		return configured
	}
	return version.UserAgent()
}
