package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"portfolio-backtest-lab/internal/csvdata"
	"portfolio-backtest-lab/internal/storage"
	chstore "portfolio-backtest-lab/internal/storage/clickhouse"
	"portfolio-backtest-lab/internal/storage/migrations"
)

func main() {
	// Parse flags
	dataDir := flag.String("data-dir", "", "Directory of <SYMBOL>.csv price files (required)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (required)")
	migrate := flag.Bool("migrate", true, "Apply migrations before loading")
	skipDuplicates := flag.Bool("skip-duplicates", false, "Skip symbols whose bars are already stored")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[ingest] ", log.LstdFlags)

	if *dataDir == "" {
		logger.Fatal("--data-dir is required")
	}
	if *clickhouseDSN == "" {
		logger.Fatal("--clickhouse-dsn is required")
	}

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

	var (
		conn *chstore.Conn
		err  error
	)
	if *migrate {
		conn, err = migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
	} else {
		conn, err = chstore.NewConn(ctx, *clickhouseDSN)
	}
	if err != nil {
		logger.Fatalf("connect to clickhouse: %v", err)
	}
	defer conn.Close()

	store := chstore.NewPriceBarStore(conn)

	paths, err := filepath.Glob(filepath.Join(*dataDir, "*.csv"))
	if err != nil {
		logger.Fatalf("scan data dir: %v", err)
	}
	if len(paths) == 0 {
		logger.Fatalf("no csv files in %s", *dataDir)
	}

	loaded := 0
	for _, path := range paths {
		symbol := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), ".csv"))
		series, err := csvdata.LoadSeries(symbol, path)
		if err != nil {
			logger.Fatalf("load %s: %v", path, err)
		}

		err = store.InsertBulk(ctx, csvdata.ToBars(series))
		if err != nil {
			if *skipDuplicates && errors.Is(err, storage.ErrDuplicateKey) {
				logger.Printf("Skipping %s: already stored", symbol)
				continue
			}
			logger.Fatalf("insert %s: %v", symbol, err)
		}

		logger.Printf("Loaded %s: %d bars (%s to %s)", symbol, len(series.Points),
			series.Points[0].Date.Format("2006-01-02"),
			series.Points[len(series.Points)-1].Date.Format("2006-01-02"))
		loaded++
	}

	logger.Printf("Done: %d symbols loaded", loaded)
}
