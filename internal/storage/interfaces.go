package storage

import (
	"context"
	"time"

	"portfolio-backtest-lab/internal/domain"
)

// BacktestStore provides access to completed backtest run records.
type BacktestStore interface {
	// Insert adds a new run record. Returns ErrDuplicateKey if the run ID exists.
	Insert(ctx context.Context, r *domain.BacktestRecord) error

	// GetByID retrieves a run record by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.BacktestRecord, error)

	// GetByStrategy retrieves all run records for a strategy, ordered by created_at ASC.
	GetByStrategy(ctx context.Context, strategyID string) ([]*domain.BacktestRecord, error)

	// GetAll retrieves all run records, ordered by created_at ASC.
	GetAll(ctx context.Context) ([]*domain.BacktestRecord, error)
}

// PriceBarStore provides access to daily closing price bars.
type PriceBarStore interface {
	// InsertBulk adds multiple bars. Fails the entire batch on duplicate (symbol, date).
	InsertBulk(ctx context.Context, bars []*domain.PriceBar) error

	// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.PriceBar, error)

	// GetByDateRange retrieves bars for a symbol within [start, end] (inclusive), ordered by date ASC.
	GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.PriceBar, error)

	// Symbols retrieves the distinct symbols present in the store, sorted ASC.
	Symbols(ctx context.Context) ([]string, error)
}
