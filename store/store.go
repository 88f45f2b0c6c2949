// Package store provides a SQLite-backed archive of acquisition runs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/4x0/hioctl/acquire"
)

// Run is one archived acquisition run.
type Run struct {
	ID          uuid.UUID
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      string
	Reason      string
	SampleCount int
}

// Store provides access to the run archive database.
type Store struct {
	db *sql.DB
}

// Open creates a Store at dbPath and runs migrations. The parent directory
// is created if missing.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()

		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		completed_at DATETIME,
		status TEXT NOT NULL DEFAULT 'running',
		reason TEXT,
		sample_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		ts DATETIME NOT NULL,
		voltage REAL NOT NULL,
		temperature REAL,
		io_state INTEGER,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_samples_run_id ON samples(run_id);
	`

	_, err := s.db.Exec(schema)

	return err
}

// CreateRun inserts a run record in the running state.
func (s *Store) CreateRun(id uuid.UUID, startedAt time.Time) (*Run, error) {
	run := &Run{
		ID:        id,
		StartedAt: startedAt.UTC(),
		Status:    "running",
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, status) VALUES (?, ?, ?)`,
		run.ID.String(), run.StartedAt, run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert run: %w", err)
	}

	return run, nil
}

// FinishRun records a run's outcome. Status is "completed" or "aborted";
// reason carries the abort cause, empty on success.
func (s *Store) FinishRun(id uuid.UUID, status, reason string, sampleCount int) error {
	_, err := s.db.Exec(
		`UPDATE runs SET completed_at = ?, status = ?, reason = ?, sample_count = ? WHERE id = ?`,
		time.Now().UTC(), status, reason, sampleCount, id.String(),
	)
	if err != nil {
		return fmt.Errorf("store: update run: %w", err)
	}

	return nil
}

// AppendSamples archives a run's samples in one transaction.
func (s *Store) AppendSamples(runID uuid.UUID, startSeq int, samples []acquire.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO samples (run_id, seq, ts, voltage, temperature, io_state) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, sample := range samples {
		var temp sql.NullFloat64
		if sample.Temperature != nil {
			temp = sql.NullFloat64{Float64: *sample.Temperature, Valid: true}
		}
		var io sql.NullInt64
		if sample.IOPattern != nil {
			io = sql.NullInt64{Int64: int64(*sample.IOPattern), Valid: true}
		}

		if _, err := stmt.Exec(runID.String(), startSeq+i, sample.Time.UTC(), sample.Voltage, temp, io); err != nil {
			return fmt.Errorf("store: insert sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID, nil when absent.
func (s *Store) GetRun(id uuid.UUID) (*Run, error) {
	run := &Run{}
	var rawID string
	var completedAt sql.NullTime
	var reason sql.NullString

	err := s.db.QueryRow(
		`SELECT id, started_at, completed_at, status, reason, sample_count FROM runs WHERE id = ?`,
		id.String(),
	).Scan(&rawID, &run.StartedAt, &completedAt, &run.Status, &reason, &run.SampleCount)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: query run: %w", err)
	}

	run.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("store: parse run id: %w", err)
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if reason.Valid {
		run.Reason = reason.String
	}

	return run, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, completed_at, status, reason, sample_count FROM runs ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var rawID string
		var completedAt sql.NullTime
		var reason sql.NullString

		if err := rows.Scan(&rawID, &run.StartedAt, &completedAt, &run.Status, &reason, &run.SampleCount); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}

		run.ID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("store: parse run id: %w", err)
		}
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		if reason.Valid {
			run.Reason = reason.String
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetSamples returns a run's samples in sequence order.
func (s *Store) GetSamples(runID uuid.UUID) ([]acquire.Sample, error) {
	rows, err := s.db.Query(
		`SELECT ts, voltage, temperature, io_state FROM samples WHERE run_id = ? ORDER BY seq`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("store: query samples: %w", err)
	}
	defer rows.Close()

	var samples []acquire.Sample
	for rows.Next() {
		var sample acquire.Sample
		var temp sql.NullFloat64
		var io sql.NullInt64

		if err := rows.Scan(&sample.Time, &sample.Voltage, &temp, &io); err != nil {
			return nil, fmt.Errorf("store: scan sample: %w", err)
		}

		if temp.Valid {
			v := temp.Float64
			sample.Temperature = &v
		}
		if io.Valid {
			v := int(io.Int64)
			sample.IOPattern = &v
		}
		samples = append(samples, sample)
	}

	return samples, rows.Err()
}
