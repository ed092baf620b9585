package ports

import (
	"context"

	"github.com/aretw0/welllit/pkg/domain"
)

// TableReader defines the ingestion side of a protocol load.
// Implementations only parse; validation belongs to the protocol builder.
type TableReader interface {
	ReadTable(ctx context.Context) (domain.Table, error)
}

// TableReaderFunc adapts a function into a TableReader.
type TableReaderFunc func(ctx context.Context) (domain.Table, error)

// ReadTable calls f(ctx).
func (f TableReaderFunc) ReadTable(ctx context.Context) (domain.Table, error) {
	return f(ctx)
}
