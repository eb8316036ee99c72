package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"portfolio-backtest-lab/internal/backtest"
	"portfolio-backtest-lab/internal/csvdata"
	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/storage"
	chstore "portfolio-backtest-lab/internal/storage/clickhouse"
	"portfolio-backtest-lab/internal/storage/memory"
	"portfolio-backtest-lab/internal/storage/migrations"
	pgstore "portfolio-backtest-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to JSON backtest config (overrides individual flags)")
	symbolsFlag := flag.String("symbols", "", "Portfolio as SYMBOL:WEIGHT pairs, e.g. SPY:0.6,AGG:0.4 (equal weights when omitted: SPY,AGG)")
	strategyType := flag.String("strategy", string(domain.StrategyTypeBuyAndHold), "Strategy: buy_and_hold, momentum, relative_strength, mean_reversion, risk_parity, tactical_allocation, rotation")
	paramsJSON := flag.String("params", "", "Strategy parameters as inline JSON, e.g. {\"lookback_period\":90,\"top_n\":2}")
	frequency := flag.String("frequency", string(domain.FrequencyMonthly), "Rebalancing: daily, weekly, monthly, quarterly, yearly, none")
	initialCapital := flag.Float64("initial-capital", 10000, "Initial capital")
	startDate := flag.String("start", "", "Start date (2006-01-02), defaults to earliest stored bar")
	endDate := flag.String("end", "", "End date (2006-01-02), defaults to latest stored bar")
	benchmark := flag.String("benchmark", "", "Benchmark symbol for relative statistics")

	// Data source
	dataDir := flag.String("data-dir", "", "Directory of <SYMBOL>.csv price files (date,close); loaded into memory storage")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for price bars")

	// Persistence
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for run records")
	persistResult := flag.Bool("persist", false, "Persist run record to PostgreSQL")
	migrate := flag.Bool("migrate", false, "Apply migrations before running")

	// Output
	outputJSON := flag.Bool("json", false, "Output full result as JSON")
	equityCSV := flag.String("equity-csv", "", "Write the day-by-day equity series to this CSV file")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Build configuration
	cfg, err := buildConfig(*configPath, *symbolsFlag, *strategyType, *paramsJSON,
		*frequency, *initialCapital, *startDate, *endDate, *benchmark)
	if err != nil {
		logger.Fatalf("build config: %v", err)
	}

	// Create price bar store
	var priceBarStore storage.PriceBarStore
	switch {
	case *dataDir != "":
		priceBarStore, err = loadDataDir(ctx, *dataDir, cfg)
		if err != nil {
			logger.Fatalf("load price data: %v", err)
		}
	case *clickhouseDSN != "":
		var conn *chstore.Conn
		if *migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		} else {
			conn, err = chstore.NewConn(ctx, *clickhouseDSN)
		}
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		priceBarStore = chstore.NewPriceBarStore(conn)
	default:
		logger.Fatal("either --data-dir or --clickhouse-dsn is required")
	}

	// Create backtest store
	var backtestStore storage.BacktestStore
	if *persistResult {
		if *postgresDSN == "" {
			logger.Fatal("--postgres-dsn is required with --persist")
		}
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		if *migrate {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				logger.Fatalf("apply postgres migrations: %v", err)
			}
		}
		backtestStore = pgstore.NewBacktestStore(pool)
	}

	runner := backtest.NewRunner(backtest.RunnerOptions{
		PriceBarStore: priceBarStore,
		BacktestStore: backtestStore,
		Logf:          logger.Printf,
	})

	logger.Printf("Running backtest: strategy=%s symbols=%s frequency=%s",
		cfg.Strategy.Type, strings.Join(domain.HoldingSymbols(cfg.Holdings), ","), cfg.Frequency)

	result, err := runner.Run(ctx, *cfg)
	if err != nil {
		logger.Fatalf("backtest failed: %v", err)
	}

	if *equityCSV != "" {
		if err := writeEquityCSV(*equityCSV, cfg, result); err != nil {
			logger.Fatalf("write equity csv: %v", err)
		}
		logger.Printf("Equity series written to %s", *equityCSV)
	}

	// Output result
	if *outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	} else {
		printResult(cfg, result)
	}
}

// buildConfig assembles a BacktestConfig from a JSON file or from flags.
func buildConfig(configPath, symbolsFlag, strategyType, paramsJSON,
	frequency string, initialCapital float64, startDate, endDate, benchmark string,
) (*domain.BacktestConfig, error) {
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		var cfg domain.BacktestConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		return &cfg, nil
	}

	if symbolsFlag == "" {
		return nil, fmt.Errorf("--symbols is required without --config")
	}
	holdings, err := parseHoldings(symbolsFlag)
	if err != nil {
		return nil, err
	}

	strategyConfig := domain.StrategyConfig{}
	if paramsJSON != "" {
		if err := json.Unmarshal([]byte(paramsJSON), &strategyConfig); err != nil {
			return nil, fmt.Errorf("parse --params: %w", err)
		}
	}
	strategyConfig.Type = strategyType

	cfg := &domain.BacktestConfig{
		Holdings:        holdings,
		Strategy:        strategyConfig,
		InitialCapital:  initialCapital,
		Frequency:       domain.RebalanceFrequency(frequency),
		BenchmarkSymbol: benchmark,
	}

	if startDate != "" {
		cfg.StartDate, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, fmt.Errorf("parse --start: %w", err)
		}
	}
	if endDate != "" {
		cfg.EndDate, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, fmt.Errorf("parse --end: %w", err)
		}
	}

	return cfg, nil
}

// parseHoldings parses SYMBOL:WEIGHT pairs. Omitting every weight assigns
// equal weights; mixing weighted and unweighted entries is an error.
func parseHoldings(s string) ([]domain.Holding, error) {
	parts := strings.Split(s, ",")
	holdings := make([]domain.Holding, 0, len(parts))
	weighted := 0
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		symbol, weightStr, found := strings.Cut(part, ":")
		h := domain.Holding{Symbol: strings.ToUpper(strings.TrimSpace(symbol))}
		if found {
			w, err := strconv.ParseFloat(strings.TrimSpace(weightStr), 64)
			if err != nil {
				return nil, fmt.Errorf("parse weight for %s: %w", h.Symbol, err)
			}
			h.Allocation = w
			weighted++
		}
		holdings = append(holdings, h)
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("no symbols in %q", s)
	}
	if weighted == 0 {
		for i := range holdings {
			holdings[i].Allocation = 1.0 / float64(len(holdings))
		}
	} else if weighted != len(holdings) {
		return nil, fmt.Errorf("either all symbols carry weights or none do")
	}
	return holdings, nil
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

func writeEquityCSV(path string, cfg *domain.BacktestConfig, result *domain.BacktestResult) error {
	var sb strings.Builder
	symbols := domain.HoldingSymbols(cfg.Holdings)
	sb.WriteString("date,portfolio_value,daily_return,drawdown")
	for _, sym := range symbols {
		sb.WriteString(",weight_" + sym)
	}
	sb.WriteString("\n")
	for i, date := range result.Dates {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.8f,%.8f",
			date.Format("2006-01-02"), result.PortfolioValues[i], result.Returns[i], result.Drawdown[i]))
		for _, sym := range symbols {
			sb.WriteString(fmt.Sprintf(",%.6f", result.Weights[sym][i]))
		}
		sb.WriteString("\n")
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// printResult outputs a human-readable summary.
func printResult(cfg *domain.BacktestConfig, result *domain.BacktestResult) {
	m := result.Metrics
	n := len(result.Dates)

	fmt.Println()
	fmt.Println("=== Backtest Result ===")
	fmt.Printf("Strategy:           %s\n", cfg.Strategy.Type)
	fmt.Printf("Symbols:            %s\n", strings.Join(domain.HoldingSymbols(cfg.Holdings), ", "))
	fmt.Printf("Rebalancing:        %s (%d rebalances)\n", cfg.Frequency, len(result.RebalanceDates))
	fmt.Printf("Period:             %s to %s (%d trading dates)\n",
		result.Dates[0].Format("2006-01-02"), result.Dates[n-1].Format("2006-01-02"), n)
	fmt.Printf("Initial Capital:    %.2f\n", cfg.InitialCapital)
	fmt.Printf("Final Value:        %.2f\n", result.PortfolioValues[n-1])
	fmt.Println()

	fmt.Println("Performance:")
	fmt.Printf("  Total Return:     %.2f%%\n", m.TotalReturn*100)
	fmt.Printf("  Annualized:       %.2f%%\n", m.AnnualizedReturn*100)
	fmt.Printf("  Volatility:       %.2f%%\n", m.Volatility*100)
	fmt.Printf("  Sharpe Ratio:     %.4f\n", m.SharpeRatio)
	fmt.Printf("  Sortino Ratio:    %.4f\n", m.SortinoRatio)
	fmt.Printf("  Calmar Ratio:     %.4f\n", m.CalmarRatio)
	fmt.Printf("  Max Drawdown:     %.2f%% (%d days)\n", m.MaxDrawdown*100, m.MaxDrawdownDuration)
	fmt.Printf("  VaR 95%%:          %.4f\n", m.VaR95)
	fmt.Printf("  CVaR 95%%:         %.4f\n", m.CVaR95)
	fmt.Printf("  Win Rate:         %.2f%%\n", m.WinRate*100)
	fmt.Printf("  Profit Factor:    %.4f\n", m.ProfitFactor)

	if b := result.Benchmark; b != nil {
		fmt.Println()
		fmt.Printf("Benchmark (%s):\n", b.Symbol)
		fmt.Printf("  Total Return:     %.2f%%\n", b.TotalReturn*100)
		fmt.Printf("  Beta:             %.4f\n", b.Beta)
		fmt.Printf("  Alpha:            %.4f\n", b.Alpha)
		fmt.Printf("  Correlation:      %.4f\n", b.Correlation)
		fmt.Printf("  Tracking Error:   %.4f\n", b.TrackingError)
		fmt.Printf("  Info Ratio:       %.4f\n", b.InformationRatio)
		fmt.Printf("  Up/Down Capture:  %.4f / %.4f\n", b.UpCapture, b.DownCapture)
	}

	if len(result.AssetPerformance) > 0 {
		fmt.Println()
		fmt.Println("Assets:")
		for _, a := range result.AssetPerformance {
			fmt.Printf("  %-8s return=%7.2f%%  vol=%6.2f%%  sharpe=%7.4f  avg_weight=%5.1f%%  contribution~=%6.2f%%\n",
				a.Symbol, a.TotalReturn*100, a.Volatility*100, a.SharpeRatio,
				a.AverageWeight*100, a.ContributionEstimate*100)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Println()
		fmt.Println("Warnings:")
		for _, w := range result.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}
