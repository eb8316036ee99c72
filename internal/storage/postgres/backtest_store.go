package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/storage"
)

// BacktestStore implements storage.BacktestStore using PostgreSQL.
// Metrics are stored as a JSONB blob; the flat columns carry the identity
// and configuration echo that queries filter on.
type BacktestStore struct {
	pool *Pool
}

// NewBacktestStore creates a new BacktestStore.
func NewBacktestStore(pool *Pool) *BacktestStore {
	return &BacktestStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BacktestStore = (*BacktestStore)(nil)

// Insert adds a new run record. Returns ErrDuplicateKey if the run ID exists.
func (s *BacktestStore) Insert(ctx context.Context, r *domain.BacktestRecord) error {
	if r == nil || r.ID == "" || r.StrategyID == "" {
		return storage.ErrInvalidInput
	}

	metricsJSON, err := json.Marshal(r.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	query := `
		INSERT INTO backtests (
			id, strategy_id, symbols,
			start_date, end_date, initial_capital, frequency,
			final_value, metrics, created_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10
		)
	`

	_, err = s.pool.Exec(ctx, query,
		r.ID, r.StrategyID, r.Symbols,
		r.StartDate, r.EndDate, r.InitialCapital, string(r.Frequency),
		r.FinalValue, metricsJSON, r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert backtest record: %w", err)
	}
	return nil
}

// GetByID retrieves a run record by its ID. Returns ErrNotFound if not exists.
func (s *BacktestStore) GetByID(ctx context.Context, id string) (*domain.BacktestRecord, error) {
	query := `
		SELECT
			id, strategy_id, symbols,
			start_date, end_date, initial_capital, frequency,
			final_value, metrics, created_at
		FROM backtests
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	r, err := scanBacktestRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get backtest record by id: %w", err)
	}
	return r, nil
}

// GetByStrategy retrieves all run records for a strategy, ordered by created_at ASC.
func (s *BacktestStore) GetByStrategy(ctx context.Context, strategyID string) ([]*domain.BacktestRecord, error) {
	query := `
		SELECT
			id, strategy_id, symbols,
			start_date, end_date, initial_capital, frequency,
			final_value, metrics, created_at
		FROM backtests
		WHERE strategy_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, strategyID)
	if err != nil {
		return nil, fmt.Errorf("get backtest records by strategy: %w", err)
	}
	defer rows.Close()

	return scanBacktestRecords(rows)
}

// GetAll retrieves all run records, ordered by created_at ASC.
func (s *BacktestStore) GetAll(ctx context.Context) ([]*domain.BacktestRecord, error) {
	query := `
		SELECT
			id, strategy_id, symbols,
			start_date, end_date, initial_capital, frequency,
			final_value, metrics, created_at
		FROM backtests
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all backtest records: %w", err)
	}
	defer rows.Close()

	return scanBacktestRecords(rows)
}

// scanBacktestRecord scans a single row into a BacktestRecord.
func scanBacktestRecord(row pgx.Row) (*domain.BacktestRecord, error) {
	var (
		r           domain.BacktestRecord
		frequency   string
		metricsJSON []byte
	)

	err := row.Scan(
		&r.ID, &r.StrategyID, &r.Symbols,
		&r.StartDate, &r.EndDate, &r.InitialCapital, &frequency,
		&r.FinalValue, &metricsJSON, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Frequency = domain.RebalanceFrequency(frequency)
	if err := json.Unmarshal(metricsJSON, &r.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}

	return &r, nil
}

// scanBacktestRecords scans multiple rows into a slice of BacktestRecord.
func scanBacktestRecords(rows pgx.Rows) ([]*domain.BacktestRecord, error) {
	var records []*domain.BacktestRecord

	for rows.Next() {
		r, err := scanBacktestRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backtest record row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backtest record rows: %w", err)
	}

	return records, nil
}
