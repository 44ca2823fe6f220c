// Package main runs one intelligence pipeline batch:
// fetch → normalize → dedup → score → correlate → aggregate → report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mining-intel/internal/config"
	"mining-intel/internal/correlation"
	"mining-intel/internal/fetch"
	"mining-intel/internal/orchestrator"
	"mining-intel/internal/pricedata"
	"mining-intel/internal/reporting"
	"mining-intel/internal/scoring"
	"mining-intel/internal/storage"
	"mining-intel/internal/storage/clickhouse"
	"mining-intel/internal/storage/memory"
	"mining-intel/internal/storage/migrations"
	"mining-intel/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	outputPath := flag.String("output", "", "Write the markdown brief to this file instead of stdout")
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

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling batch...\n", sig)
		cancel()
	}()

	// Stores: postgres/clickhouse when configured, memory otherwise.
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

	// Price provider: remote API with a fill-through cache when configured,
	// store-only otherwise.
	var provider pricedata.Provider
	if cfg.PriceAPI.BaseURL != "" {
		remote := pricedata.NewHTTPProvider(cfg.PriceAPI.BaseURL, cfg.PriceAPI.APIKey,
			pricedata.WithRateLimit(cfg.PriceAPI.RateLimit))
		provider = pricedata.NewCachingProvider(priceStore, remote, logger)
	} else {
		provider = pricedata.NewStoreProvider(priceStore)
	}

	// Per-source retry limits fall back to the global fetch setting.
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
	classifier := scoring.NewClassifier(scoring.DefaultTables(), scoringParams)

	analyzer := correlation.NewAnalyzer(provider, correlation.Options{
		PriorityThreshold: cfg.Correlation.PriorityThreshold,
		BeforeWindow:      cfg.Correlation.BeforeWindow,
		AfterWindow:       cfg.Correlation.AfterWindow,
		MaxLookups:        cfg.Correlation.MaxLookups,
		Logger:            logger,
	})

	orch := orchestrator.New(orchestrator.Options{
		Fetcher: fetch.NewOrchestrator(fetch.Options{
			MaxConcurrency: cfg.Fetch.MaxConcurrency,
			BackoffBase:    cfg.Fetch.BackoffBase,
			MaxBackoff:     cfg.Fetch.MaxBackoff,
			Logger:         logger,
		}),
		Analyzer:         analyzer,
		Classifier:       classifier,
		EventStore:       eventStore,
		CorrelationStore: corrStore,
		TopK:             cfg.TopK,
		Verbose:          *verbose,
		Logger:           logger,
	})

	batchCtx := ctx
	if cfg.Fetch.GlobalTimeout > 0 {
		var batchCancel context.CancelFunc
		batchCtx, batchCancel = context.WithTimeout(ctx, cfg.Fetch.GlobalTimeout)
		defer batchCancel()
	}

	result, err := orch.Run(batchCtx, tasks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Batch completed: %d fetched, %d normalized, %d correlated, %d errors\n",
		result.Fetched, result.Normalized, result.Correlated, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "  - %s\n", e)
	}

	report := reporting.FromRunResult(result, time.Now())
	rendered := reporting.RenderMarkdown(report)

	if *outputPath != "" {
		if err := os.WriteFile(*outputPath, []byte(rendered), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputPath)
	} else {
		fmt.Print(rendered)
	}
}
