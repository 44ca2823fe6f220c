// Package main runs the pipeline continuously, one batch per interval,
// with a Prometheus /metrics endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mining-intel/internal/config"
	"mining-intel/internal/correlation"
	"mining-intel/internal/fetch"
	"mining-intel/internal/observability"
	"mining-intel/internal/orchestrator"
	"mining-intel/internal/pricedata"
	"mining-intel/internal/scoring"
	"mining-intel/internal/storage"
	"mining-intel/internal/storage/clickhouse"
	"mining-intel/internal/storage/memory"
	"mining-intel/internal/storage/migrations"
	"mining-intel/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	interval := flag.Duration("interval", 5*time.Minute, "Delay between pipeline batches")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
	go func() {
		logger.Printf("Metrics listening on %s", cfg.Metrics.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("Metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}()

	var (
		eventStore storage.EventStore
		corrStore  storage.CorrelationStore
		priceStore storage.PriceSeriesStore
	)
	if cfg.Postgres.DSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "Error running postgres migrations: %v\n", err)
			os.Exit(1)
		}
		eventStore = postgres.NewEventStore(pool)
		corrStore = postgres.NewCorrelationStore(pool)
	} else {
		eventStore = memory.NewEventStore()
		corrStore = memory.NewCorrelationStore()
	}

	if cfg.ClickHouse.DSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to clickhouse: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		priceStore = clickhouse.NewPriceSeriesStore(conn)
	} else {
		priceStore = memory.NewPriceSeriesStore()
	}

	var provider pricedata.Provider
	if cfg.PriceAPI.BaseURL != "" {
		remote := pricedata.NewHTTPProvider(cfg.PriceAPI.BaseURL, cfg.PriceAPI.APIKey,
			pricedata.WithRateLimit(cfg.PriceAPI.RateLimit))
		provider = pricedata.NewCachingProvider(priceStore, remote, logger)
	} else {
		provider = pricedata.NewStoreProvider(priceStore)
	}

	for i := range cfg.Sources {
		if cfg.Sources[i].MaxRetries == 0 {
			cfg.Sources[i].MaxRetries = cfg.Fetch.MaxRetries
		}
	}

	tasks, err := fetch.BuildTasks(ctx, cfg.Sources, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building sources: %v\n", err)
		os.Exit(1)
	}

	scoringParams := scoring.DefaultParams()
	scoringParams.CriticalThreshold = cfg.Scoring.CriticalThreshold
	scoringParams.HighThreshold = cfg.Scoring.HighThreshold
	scoringParams.MediumThreshold = cfg.Scoring.MediumThreshold

	orch := orchestrator.New(orchestrator.Options{
		Fetcher: fetch.NewOrchestrator(fetch.Options{
			MaxConcurrency: cfg.Fetch.MaxConcurrency,
			BackoffBase:    cfg.Fetch.BackoffBase,
			MaxBackoff:     cfg.Fetch.MaxBackoff,
			Logger:         logger,
		}),
		Analyzer: correlation.NewAnalyzer(provider, correlation.Options{
			PriorityThreshold: cfg.Correlation.PriorityThreshold,
			BeforeWindow:      cfg.Correlation.BeforeWindow,
			AfterWindow:       cfg.Correlation.AfterWindow,
			MaxLookups:        cfg.Correlation.MaxLookups,
			Logger:            logger,
		}),
		Classifier:       scoring.NewClassifier(scoring.DefaultTables(), scoringParams),
		EventStore:       eventStore,
		CorrelationStore: corrStore,
		TopK:             cfg.TopK,
		Verbose:          *verbose,
		Logger:           logger,
	})

	logger.Printf("Monitor started: %d sources, interval %v", len(tasks), *interval)
	runBatch(ctx, orch, tasks, cfg.Fetch.GlobalTimeout, logger)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Printf("Monitor stopped")
			return
		case <-ticker.C:
			runBatch(ctx, orch, tasks, cfg.Fetch.GlobalTimeout, logger)
		}
	}
}

func runBatch(ctx context.Context, orch *orchestrator.Orchestrator, tasks []fetch.Task, timeout time.Duration, logger *log.Logger) {
	batchCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := time.Now()
	result, err := orch.Run(batchCtx, tasks)
	elapsed := time.Since(started).Seconds()
	if err != nil {
		observability.RecordPipelineRun("batch", "error", elapsed)
		logger.Printf("Batch failed: %v", err)
		return
	}

	status := "ok"
	if result.Incomplete {
		status = "incomplete"
		observability.DefaultMetrics.IncompleteBatches.Inc()
	}
	observability.RecordPipelineRun("batch", status, elapsed)
	observability.DefaultMetrics.EventsNormalized.Add(float64(result.Normalized))
	observability.DefaultMetrics.CandidatesDropped.Add(float64(result.Dropped))
	observability.DefaultMetrics.EventsDeduplicated.Add(float64(result.Collapsed + result.KnownDupes))
	observability.DefaultMetrics.LastSuccessfulBatch.Set(float64(time.Now().Unix()))
	for _, f := range result.SourceFailures {
		observability.RecordSourceFailure(f.SourceID)
	}
	for _, s := range result.TopEvents {
		if s.Correlation != nil {
			observability.RecordCorrelation(string(s.Correlation.CorrelationStrength), s.Correlation.OverallImpactScore)
		}
	}

	logger.Printf("Batch done in %.1fs: %d fetched, %d normalized, %d correlated, %d errors",
		elapsed, result.Fetched, result.Normalized, result.Correlated, len(result.Errors))
}
