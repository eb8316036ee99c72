package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"portfolio-backtest-lab/internal/backtest"
	"portfolio-backtest-lab/internal/csvdata"
	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/reporting"
	"portfolio-backtest-lab/internal/storage"
	"portfolio-backtest-lab/internal/storage/memory"
	pgstore "portfolio-backtest-lab/internal/storage/postgres"
	"portfolio-backtest-lab/internal/strategy"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to JSON backtest config (required unless --list)")
	dataDir := flag.String("data-dir", "", "Directory of <SYMBOL>.csv price files (date,close)")
	outDir := flag.String("out", "report", "Output directory for report files")
	withChart := flag.Bool("chart", true, "Render the equity curve PNG")

	// Stored-run listing
	listRuns := flag.Bool("list", false, "List stored run records instead of generating a report")
	strategyFilter := flag.String("strategy-id", "", "Filter stored runs by strategy ID")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for stored runs")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if *listRuns {
		if *postgresDSN == "" {
			logger.Fatal("--postgres-dsn is required with --list")
		}
		if err := printStoredRuns(ctx, *postgresDSN, *strategyFilter); err != nil {
			logger.Fatalf("list runs: %v", err)
		}
		return
	}

	if *configPath == "" {
		logger.Fatal("--config is required")
	}
	if *dataDir == "" {
		logger.Fatal("--data-dir is required")
	}

	data, err := os.ReadFile(*configPath)
	if err != nil {
		logger.Fatalf("read config file: %v", err)
	}
	var cfg domain.BacktestConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		logger.Fatalf("parse config file: %v", err)
	}

	strat, err := strategy.FromConfig(cfg.Strategy)
	if err != nil {
		logger.Fatalf("build strategy: %v", err)
	}

	priceBarStore, err := loadDataDir(ctx, *dataDir, &cfg)
	if err != nil {
		logger.Fatalf("load price data: %v", err)
	}

	runner := backtest.NewRunner(backtest.RunnerOptions{
		PriceBarStore: priceBarStore,
		Logf:          logger.Printf,
	})

	logger.Printf("Running backtest: strategy=%s frequency=%s", strat.ID(), cfg.Frequency)
	result, err := runner.Run(ctx, cfg)
	if err != nil {
		logger.Fatalf("backtest failed: %v", err)
	}

	report := reporting.NewReport(strat.ID(), cfg, result)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatalf("create output dir: %v", err)
	}

	files := map[string]string{
		"report.md":  reporting.RenderMarkdown(report),
		"equity.csv": reporting.RenderEquityCSV(report),
		"assets.csv": reporting.RenderAssetCSV(report),
	}
	for name, content := range files {
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			logger.Fatalf("write %s: %v", path, err)
		}
		logger.Printf("Wrote %s", path)
	}

	if *withChart {
		png, err := reporting.RenderEquityChart(report)
		if err != nil {
			logger.Fatalf("render chart: %v", err)
		}
		path := filepath.Join(*outDir, "equity.png")
		if err := os.WriteFile(path, png, 0o644); err != nil {
			logger.Fatalf("write %s: %v", path, err)
		}
		logger.Printf("Wrote %s", path)
	}
}

// loadDataDir reads per-symbol CSVs into an in-memory price bar store.
func loadDataDir(ctx context.Context, dir string, cfg *domain.BacktestConfig) (storage.PriceBarStore, error) {
	symbols := domain.HoldingSymbols(cfg.Holdings)
	if cfg.BenchmarkSymbol != "" {
		found := false
		for _, sym := range symbols {
			if sym == cfg.BenchmarkSymbol {
				found = true
				break
			}
		}
		if !found {
			symbols = append(symbols, cfg.BenchmarkSymbol)
		}
	}

	series, err := csvdata.LoadDir(dir, symbols)
	if err != nil {
		return nil, err
	}

	store := memory.NewPriceBarStore()
	for _, s := range series {
		if err := store.InsertBulk(ctx, csvdata.ToBars(s)); err != nil {
			return nil, fmt.Errorf("load %s: %w", s.Symbol, err)
		}
	}
	return store, nil
}

// printStoredRuns lists run records from PostgreSQL.
func printStoredRuns(ctx context.Context, dsn, strategyID string) error {
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	store := pgstore.NewBacktestStore(pool)
	var records []*domain.BacktestRecord
	if strategyID != "" {
		records, err = store.GetByStrategy(ctx, strategyID)
	} else {
		records, err = store.GetAll(ctx)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}

	fmt.Printf("%-16s  %-28s  %-10s  %-10s  %12s  %8s\n",
		"ID", "STRATEGY", "START", "END", "FINAL VALUE", "RETURN")
	for _, r := range records {
		fmt.Printf("%-16s  %-28s  %-10s  %-10s  %12.2f  %7.2f%%\n",
			r.ID[:16], r.StrategyID,
			r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"),
			r.FinalValue, r.Metrics.TotalReturn*100)
	}
	return nil
}
