package protocol

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/welllit/internal/logging"
	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/wells"
	"github.com/google/uuid"
)

// RowOffset converts a zero-based data row index into the row number operators
// see: 1-based, after the destination-plate line and the header line.
const RowOffset = 2

// Builder validates tabular rows and produces an initialized Protocol.
type Builder struct {
	sourceDensity wells.Density
	destDensity   wells.Density
	newID         func() string
	now           func() time.Time
	logger        *slog.Logger
}

// Option configures the Builder.
type Option func(*Builder)

// WithDensities sets the plate densities used to validate source and destination wells.
func WithDensities(source, dest wells.Density) Option {
	return func(b *Builder) {
		b.sourceDensity = source
		b.destDensity = dest
	}
}

// WithIDGenerator replaces the UUID generator used for transfer IDs.
func WithIDGenerator(fn func() string) Option {
	return func(b *Builder) {
		b.newID = fn
	}
}

// WithClock sets the time source for status timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithLogger configures a logger for the builder and the protocols it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder for 96-well plates unless configured otherwise.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		sourceDensity: wells.Density96,
		destDensity:   wells.Density96,
		newID:         uuid.NewString,
		now:           time.Now,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type entry struct {
	row       domain.Row
	line      int
	sourceKey string
	sourceErr error
	destErr   error
}

// Build groups and validates rows, returning either a Protocol cursored at the
// first transfer of the first plate, or a *domain.BuildError listing every
// violation found. No protocol is constructed when any violation exists.
func (b *Builder) Build(rows []domain.Row, destPlate string) (*Protocol, error) {
	if len(rows) == 0 {
		return nil, domain.ErrEmptyTable
	}

	var violations []domain.Violation

	dest := strings.TrimSpace(destPlate)
	if dest == "" {
		violations = append(violations, domain.Violation{Kind: domain.ViolationDestPlate})
	}

	// 1. Group by plate, keeping first-seen order
	var order []string
	groups := make(map[string][]*entry)
	for i, r := range rows {
		name := strings.TrimSpace(r.PlateName)
		e := &entry{line: i + RowOffset}
		e.row.PlateName = name
		e.row.SourceWell, e.sourceErr = wells.Validate(r.SourceWell, b.sourceDensity)
		e.row.DestWell, e.destErr = wells.Validate(r.DestWell, b.destDensity)

		e.sourceKey = e.row.SourceWell
		if e.sourceErr != nil {
			e.sourceKey = strings.ToUpper(strings.TrimSpace(r.SourceWell))
			e.row.SourceWell = r.SourceWell
		}
		if e.destErr != nil {
			e.row.DestWell = r.DestWell
		}

		// Unnamed rows belong to no plate but their wells are still reported.
		if name == "" {
			violations = append(violations, domain.Violation{
				Kind: domain.ViolationPlateName,
				Rows: []int{e.line},
			})
			violations = append(violations, e.wellViolations()...)
			continue
		}
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], e)
	}

	// 2. Duplicates and label checks, per plate
	for _, name := range order {
		entries := groups[name]
		violations = append(violations, duplicateSources(name, entries)...)
		for _, e := range entries {
			violations = append(violations, e.wellViolations()...)
		}
	}

	if len(violations) > 0 {
		b.logger.Debug("table rejected", "violations", len(violations))
		return nil, &domain.BuildError{Violations: violations}
	}

	// 3. Commit
	p := newProtocol(dest, b.now, b.logger)
	for _, name := range order {
		group := domain.PlateGroup{Name: name}
		for _, e := range groups[name] {
			id := b.newID()
			if _, dup := p.transfers[id]; dup || id == "" {
				return nil, fmt.Errorf("id generator returned unusable id %q", id)
			}
			p.transfers[id] = &domain.Transfer{
				ID:          id,
				SourcePlate: name,
				SourceWell:  e.row.SourceWell,
				DestPlate:   dest,
				DestWell:    e.row.DestWell,
				Status:      domain.StatusUncompleted,
			}
			p.plateOf[id] = len(p.plates)
			group.TransferIDs = append(group.TransferIDs, id)
		}
		p.addPlate(group)
	}

	b.logger.Debug("protocol built", "plates", p.NumPlates(), "transfers", p.NumTransfers(), "dest_plate", dest)
	return p, nil
}

func (e *entry) wellViolations() []domain.Violation {
	var out []domain.Violation
	if e.sourceErr != nil {
		out = append(out, domain.Violation{
			Kind:   domain.ViolationSourceWell,
			Plate:  e.row.PlateName,
			Well:   e.row.SourceWell,
			Rows:   []int{e.line},
			Reason: reasonOf(e.sourceErr),
		})
	}
	if e.destErr != nil {
		out = append(out, domain.Violation{
			Kind:   domain.ViolationDestWell,
			Plate:  e.row.PlateName,
			Well:   e.row.DestWell,
			Rows:   []int{e.line},
			Reason: reasonOf(e.destErr),
		})
	}
	return out
}

// duplicateSources reports every source well used more than once in a plate,
// in order of first use.
func duplicateSources(plate string, entries []*entry) []domain.Violation {
	lines := make(map[string][]int)
	var wellsInOrder []string
	for _, e := range entries {
		if e.sourceKey == "" {
			continue
		}
		if _, seen := lines[e.sourceKey]; !seen {
			wellsInOrder = append(wellsInOrder, e.sourceKey)
		}
		lines[e.sourceKey] = append(lines[e.sourceKey], e.line)
	}

	var out []domain.Violation
	for _, well := range wellsInOrder {
		if len(lines[well]) < 2 {
			continue
		}
		out = append(out, domain.Violation{
			Kind:  domain.ViolationDuplicateSource,
			Plate: plate,
			Well:  well,
			Rows:  lines[well],
		})
	}
	return out
}

func reasonOf(err error) string {
	if we, ok := err.(*wells.Error); ok {
		return we.Reason
	}
	return err.Error()
}
