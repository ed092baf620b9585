package memory

import (
	"context"

	"github.com/aretw0/welllit/pkg/domain"
)

// Loader implements ports.TableReader over rows already held in memory.
type Loader struct {
	table domain.Table
}

// NewLoader creates a Loader for the given destination plate and rows.
func NewLoader(destPlate string, rows ...domain.Row) *Loader {
	return &Loader{
		table: domain.Table{
			Source:    "memory",
			DestPlate: destPlate,
			Rows:      rows,
		},
	}
}

// NewFromTable wraps an existing table.
func NewFromTable(table domain.Table) *Loader {
	return &Loader{table: table}
}

// ReadTable returns a copy of the table.
func (l *Loader) ReadTable(ctx context.Context) (domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return domain.Table{}, err
	}
	t := l.table
	t.Rows = append([]domain.Row(nil), l.table.Rows...)
	return t, nil
}
