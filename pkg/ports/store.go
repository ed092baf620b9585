package ports

import (
	"context"

	"github.com/aretw0/welllit/pkg/domain"
)

// RecordWriter defines the interface for persisting the transfer record log.
// Each call carries the complete log of the run (every resolved transfer in
// sequence order) and replaces whatever was stored for it before, so repeated
// writes are idempotent.
type RecordWriter interface {
	WriteRecords(ctx context.Context, run domain.Run, records []domain.Record) error
}

// RecordReader reads record logs back.
type RecordReader interface {
	// ReadRecords returns the stored log of a run.
	// Returns domain.ErrRunNotFound if nothing was written for it.
	ReadRecords(ctx context.Context, runID string) ([]domain.Record, error)

	// ListRuns returns the IDs of every stored run.
	ListRuns(ctx context.Context) ([]string, error)
}

// RecordStore is a sink that can also be read back.
type RecordStore interface {
	RecordWriter
	RecordReader
}
