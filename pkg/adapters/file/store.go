package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/welllit/pkg/domain"
)

// DefaultDir is used when no records directory is configured.
var DefaultDir = filepath.Join(".welllit", "records")

// Header is the first line of every record log file.
var Header = []string{"Timestamp", "Source plate", "Source well", "Destination plate", "Destination well", "Status"}

// TimestampLayout formats record timestamps.
const TimestampLayout = time.RFC3339Nano

const ext = ".csv"

// Store implements ports.RecordStore as one CSV file per run.
// Every write replaces the file atomically (temp file + rename), so a crash
// mid-write leaves the previous complete log in place.
type Store struct {
	BasePath string
}

// NewStore creates a Store rooted at basePath, or DefaultDir when empty.
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultDir
	}
	return &Store{BasePath: basePath}
}

// Path returns the record log file of a run.
func (s *Store) Path(runID string) string {
	return filepath.Join(s.BasePath, runID+ext)
}

// WriteRecords writes the complete log of the run.
func (s *Store) WriteRecords(ctx context.Context, run domain.Run, records []domain.Record) error {
	if run.ID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure records directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, "."+run.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp record file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp record file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(run.ID)); err != nil {
		return fmt.Errorf("failed to replace record file: %w", err)
	}
	return nil
}

func encode(f *os.File, records []domain.Record) error {
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Timestamp.UTC().Format(TimestampLayout),
			r.SourcePlate,
			r.SourceWell,
			r.DestPlate,
			r.DestWell,
			string(r.Status),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

// ReadRecords parses the record log of a run.
func (s *Store) ReadRecords(ctx context.Context, runID string) ([]domain.Record, error) {
	if runID == "" {
		return nil, fmt.Errorf("run ID cannot be empty")
	}

	f, err := os.Open(s.Path(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse record file: %w", err)
	}

	records := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		ts, err := time.Parse(TimestampLayout, row[0])
		if err != nil {
			return nil, fmt.Errorf("record %d: bad timestamp %q: %w", i, row[0], err)
		}
		records = append(records, domain.Record{
			Timestamp:   ts,
			SourcePlate: row[1],
			SourceWell:  row[2],
			DestPlate:   row[3],
			DestWell:    row[4],
			Status:      domain.Status(row[5]),
		})
	}
	return records, nil
}

// ListRuns returns the run IDs that have a record file.
func (s *Store) ListRuns(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list record files: %w", err)
	}

	var runs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, ".") {
			continue
		}
		runs = append(runs, strings.TrimSuffix(name, ext))
	}
	return runs, nil
}
