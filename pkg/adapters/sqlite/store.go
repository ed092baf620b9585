package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/welllit/pkg/domain"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultPath is used when no database path is configured.
var DefaultPath = filepath.Join(".welllit", "records.db")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	dest_plate TEXT NOT NULL,
	started_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS transfer_records (
	run_id TEXT NOT NULL REFERENCES runs(id),
	seq INTEGER NOT NULL,
	transfer_id TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	source_plate TEXT NOT NULL,
	source_well TEXT NOT NULL,
	dest_plate TEXT NOT NULL,
	dest_well TEXT NOT NULL,
	status TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);`

// Store implements ports.RecordStore on a SQLite database.
// Each write replaces a run's rows inside one transaction.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create record tables: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// WriteRecords replaces the stored rows of the run.
func (s *Store) WriteRecords(ctx context.Context, run domain.Run, records []domain.Record) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs(id,source,dest_plate,started_at) VALUES(?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET source=excluded.source, dest_plate=excluded.dest_plate, started_at=excluded.started_at`,
		run.ID, run.Source, run.DestPlate, run.StartedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transfer_records WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transfer_records(run_id,seq,transfer_id,timestamp,source_plate,source_well,dest_plate,dest_well,status)
		 VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.TransferID, r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.SourcePlate, r.SourceWell, r.DestPlate, r.DestWell, string(r.Status)); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReadRecords returns the stored rows of a run in sequence order.
func (s *Store) ReadRecords(ctx context.Context, runID string) ([]domain.Record, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("lookup run: %w", err)
	}
	if exists == 0 {
		return nil, domain.ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT transfer_id,timestamp,source_plate,source_well,dest_plate,dest_well,status
		 FROM transfer_records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []domain.Record{}
	for rows.Next() {
		var (
			r      domain.Record
			ts     string
			status string
		)
		if err := rows.Scan(&r.TransferID, &ts, &r.SourcePlate, &r.SourceWell, &r.DestPlate, &r.DestWell, &status); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("decode timestamp %q: %w", ts, err)
		}
		r.Status = domain.Status(status)
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListRuns returns every stored run ID, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
