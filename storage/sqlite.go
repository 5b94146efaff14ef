package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("storage")

const retentionCheckInterval = time.Hour

// run outcome values persisted in the run log
const (
	RunStatusOK      = "ok"
	RunStatusPartial = "partial"
	RunStatusFailed  = "failed"
)

// RunRecord describes one completed (or aborted) update run
type RunRecord struct {
	ID             int64  `json:"id"`
	StartedAt      int64  `json:"startedAt"`
	DurationMillis int64  `json:"durationMillis"`
	ItemsCount     int    `json:"itemsCount"`
	FixesCount     int    `json:"fixesCount"`
	Status         string `json:"status"`
}

// sqliteRunLog is the sqlite implementation for the update run log
type sqliteRunLog struct {
	db               *sql.DB
	retentionSeconds int
	cancelFunc       context.CancelFunc
	wg               sync.WaitGroup
}

// NewSQLiteRunLog creates the database and schema, and starts the retention cleaner
func NewSQLiteRunLog(dbPath string, retentionSeconds int) (*sqliteRunLog, error) {
	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create the database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = createSchema(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &sqliteRunLog{
		db:               db,
		retentionSeconds: retentionSeconds,
		cancelFunc:       cancel,
	}

	s.startRetentionCleaner(ctx)

	return s, nil
}

func prepareDirectories(dbPath string) error {
	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at   INTEGER NOT NULL,
		duration_ms  INTEGER NOT NULL,
		items_count  INTEGER NOT NULL DEFAULT 0,
		fixes_count  INTEGER NOT NULL DEFAULT 0,
		status       TEXT    NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (s *sqliteRunLog) startRetentionCleaner(ctx context.Context) {
	if s.retentionSeconds <= 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(retentionCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				err := s.cleanRetainedRuns(ctx)
				if err != nil {
					log.Warn("run log retention cleanup failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *sqliteRunLog) cleanRetainedRuns(ctx context.Context) error {
	cutoff := time.Now().Unix() - int64(s.retentionSeconds)
	_, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff)
	return err
}

// SaveRun inserts one run record
func (s *sqliteRunLog) SaveRun(ctx context.Context, record RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (started_at, duration_ms, items_count, fixes_count, status)
		VALUES (?, ?, ?, ?, ?)
	`, record.StartedAt, record.DurationMillis, record.ItemsCount, record.FixesCount, record.Status)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}

	return nil
}

// LatestRuns returns up to 'limit' run records, newest first
func (s *sqliteRunLog) LatestRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, items_count, fixes_count, status
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		err = rows.Scan(&record.ID, &record.StartedAt, &record.DurationMillis,
			&record.ItemsCount, &record.FixesCount, &record.Status)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

// Close stops the retention cleaner and closes the database
func (s *sqliteRunLog) Close() error {
	s.cancelFunc()
	s.wg.Wait()

	return s.db.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sqliteRunLog) IsInterfaceNil() bool {
	return s == nil
}
