package api

import (
	"context"

	"github.com/wealthrate/wealthrate-analytics/history"
	"github.com/wealthrate/wealthrate-analytics/storage"
)

// HistoryLoader defines the read side of a history store
type HistoryLoader interface {
	Load() *history.Document
	IsInterfaceNil() bool
}

// RunLogReader defines the read side of the update run log
type RunLogReader interface {
	LatestRuns(ctx context.Context, limit int) ([]storage.RunRecord, error)
	IsInterfaceNil() bool
}
