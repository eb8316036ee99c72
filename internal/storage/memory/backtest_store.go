package memory

import (
	"context"
	"sort"
	"sync"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/storage"
)

// BacktestStore is an in-memory implementation of storage.BacktestStore.
type BacktestStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BacktestRecord // keyed by run ID
}

// NewBacktestStore creates a new in-memory backtest store.
func NewBacktestStore() *BacktestStore {
	return &BacktestStore{
		data: make(map[string]*domain.BacktestRecord),
	}
}

// Insert adds a new run record. Returns ErrDuplicateKey if the run ID exists.
func (s *BacktestStore) Insert(_ context.Context, r *domain.BacktestRecord) error {
	if r == nil || r.ID == "" || r.StrategyID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	recordCopy := copyRecord(r)
	s.data[r.ID] = recordCopy
	return nil
}

// GetByID retrieves a run record by its ID. Returns ErrNotFound if not exists.
func (s *BacktestStore) GetByID(_ context.Context, id string) (*domain.BacktestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRecord(r), nil
}

// GetByStrategy retrieves all run records for a strategy, ordered by created_at ASC.
func (s *BacktestStore) GetByStrategy(_ context.Context, strategyID string) ([]*domain.BacktestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BacktestRecord
	for _, r := range s.data {
		if r.StrategyID == strategyID {
			result = append(result, copyRecord(r))
		}
	}

	sortByCreatedAt(result)
	return result, nil
}

// GetAll retrieves all run records, ordered by created_at ASC.
func (s *BacktestStore) GetAll(_ context.Context) ([]*domain.BacktestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BacktestRecord, 0, len(s.data))
	for _, r := range s.data {
		result = append(result, copyRecord(r))
	}

	sortByCreatedAt(result)
	return result, nil
}

// copyRecord deep-copies a record so callers cannot mutate stored state.
func copyRecord(r *domain.BacktestRecord) *domain.BacktestRecord {
	recordCopy := *r
	recordCopy.Symbols = append([]string(nil), r.Symbols...)
	recordCopy.Metrics.Clamped = append([]string(nil), r.Metrics.Clamped...)
	return &recordCopy
}

func sortByCreatedAt(records []*domain.BacktestRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}

var _ storage.BacktestStore = (*BacktestStore)(nil)
