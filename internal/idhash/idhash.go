// Package idhash computes deterministic identifiers for backtest runs.
// The same configuration always produces the same run ID, so re-running
// a stored configuration collides instead of silently duplicating.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ComputeRunID computes a deterministic run ID using SHA256.
// Formula: SHA256(strategy_id|symbols,...|start|end|frequency|initial_capital)
// Returns hex-encoded hash (64 characters). Symbols are joined in the
// caller's order; callers wanting order-insensitive IDs sort first.
func ComputeRunID(
	strategyID string,
	symbols []string,
	start, end time.Time,
	frequency string,
	initialCapital float64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%.8f",
		strategyID,
		strings.Join(symbols, ","),
		start.UTC().Format("2006-01-02"),
		end.UTC().Format("2006-01-02"),
		frequency,
		initialCapital,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
