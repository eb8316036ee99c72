package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/storage"
)

func testBar(symbol string, day int, close float64) *domain.PriceBar {
	return &domain.PriceBar{
		Symbol: symbol,
		Date:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Close:  close,
	}
}

func TestPriceBarStore_InsertBulkAndGetBySymbol(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceBarStore(conn)

	err := store.InsertBulk(ctx, []*domain.PriceBar{
		testBar("SPY", 3, 402),
		testBar("SPY", 2, 400),
		testBar("AGG", 2, 98),
	})
	require.NoError(t, err)

	bars, err := store.GetBySymbol(ctx, "SPY")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	// Date ascending.
	assert.True(t, bars[0].Date.Before(bars[1].Date))
	assert.InDelta(t, 400, bars[0].Close, 1e-9)
	assert.InDelta(t, 402, bars[1].Close, 1e-9)
	assert.Equal(t, "SPY", bars[0].Symbol)
}

func TestPriceBarStore_DuplicateRejected(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceBarStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.PriceBar{testBar("SPY", 2, 400)}))

	err := store.InsertBulk(ctx, []*domain.PriceBar{testBar("SPY", 2, 401)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	err = store.InsertBulk(ctx, []*domain.PriceBar{
		testBar("SPY", 3, 402),
		testBar("SPY", 3, 403),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPriceBarStore_GetByDateRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceBarStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.PriceBar{
		testBar("SPY", 2, 400),
		testBar("SPY", 3, 401),
		testBar("SPY", 4, 402),
		testBar("SPY", 5, 403),
	}))

	bars, err := store.GetByDateRange(ctx, "SPY",
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.InDelta(t, 401, bars[0].Close, 1e-9)
	assert.InDelta(t, 402, bars[1].Close, 1e-9)
}

func TestPriceBarStore_Symbols(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceBarStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.PriceBar{
		testBar("SPY", 2, 400),
		testBar("AGG", 2, 98),
		testBar("QQQ", 2, 350),
	}))

	symbols, err := store.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AGG", "QQQ", "SPY"}, symbols)
}

func TestPriceBarStore_EmptyBatchIsNoop(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceBarStore(conn)
	require.NoError(t, store.InsertBulk(context.Background(), nil))
}
