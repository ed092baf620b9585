package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/welllit/internal/config"
	"github.com/aretw0/welllit/internal/logging"
	"github.com/aretw0/welllit/internal/presentation/tui"
	"github.com/aretw0/welllit/pkg/adapters/csv"
	"github.com/aretw0/welllit/pkg/domain"
)

// ErrInvalidTable is returned by Validate when the table would not load.
var ErrInvalidTable = errors.New("invalid transfer table")

// Validate reads and builds a table without starting a run, printing every
// violation found.
func Validate(ctx context.Context, configPath, path string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	builder, err := createBuilder(cfg, logging.NewNop())
	if err != nil {
		return err
	}

	table, err := csv.NewReader(path).ReadTable(ctx)
	if err != nil {
		return err
	}

	printer := tui.NewPrinter(out, false)
	p, err := builder.Build(table.Rows, table.DestPlate)
	if err != nil {
		var buildErr *domain.BuildError
		if !errors.As(err, &buildErr) && !errors.Is(err, domain.ErrEmptyTable) {
			return err
		}
		res := domain.Reject(domain.ReasonInvalidTable, "%s: %v", path, err)
		if buildErr != nil {
			res = domain.Reject(domain.ReasonInvalidTable, "%s: %d problem(s)", path, len(buildErr.Violations))
			res.Violations = buildErr.Violations
		}
		printer.Result(res)
		return ErrInvalidTable
	}

	printer.Result(domain.Success("%s: %d transfers from %d plates into %s", path, p.NumTransfers(), p.NumPlates(), p.DestPlate()))
	for _, g := range p.Plates() {
		printer.Println(fmt.Sprintf("  %s: %d transfers", g.Name, len(g.TransferIDs)))
	}
	return nil
}
