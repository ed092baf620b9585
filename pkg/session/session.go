package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/welllit/internal/logging"
	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/ports"
	"github.com/aretw0/welllit/pkg/protocol"
)

// commandLoad labels rejected loads in events.
const commandLoad domain.Command = "load"

// Session is the façade operators and front-ends talk to.
type Session struct {
	mu sync.Mutex

	builder *protocol.Builder
	writers []ports.RecordWriter
	hooks   domain.Hooks
	logger  *slog.Logger
	now     func() time.Time

	proto *protocol.Protocol
	table domain.Table
	run   domain.Run

	// base ID of the latest run and how many loads have shared it
	runBase string
	runSeq  int
}

// Option configures the Session.
type Option func(*Session)

// WithBuilder replaces the default protocol builder (96-well plates).
func WithBuilder(b *protocol.Builder) Option {
	return func(s *Session) {
		s.builder = b
	}
}

// WithWriters adds record log sinks. Every sink receives the full log after each mutation.
func WithWriters(writers ...ports.RecordWriter) Option {
	return func(s *Session) {
		s.writers = append(s.writers, writers...)
	}
}

// WithHooks adds lifecycle callbacks. Repeated calls chain.
func WithHooks(h domain.Hooks) Option {
	return func(s *Session) {
		s.hooks = domain.MergeHooks(s.hooks, h)
	}
}

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock sets the time source used for run IDs and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates an empty Session.
func New(opts ...Option) *Session {
	s := &Session{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		s.builder = protocol.NewBuilder(protocol.WithLogger(s.logger))
	}
	return s
}

// pending collects hook calls made under the lock so they run after it is released.
type pending []func()

func (p *pending) add(fn func()) { *p = append(*p, fn) }

func (p pending) fire() {
	for _, fn := range p {
		fn()
	}
}

func (s *Session) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: s.now(), Type: t, RunID: s.run.ID}
}

func (s *Session) rejected(ctx context.Context, events *pending, cmd domain.Command, res domain.Result) {
	s.logger.Debug("command rejected", "command", cmd, "reason", res.Reason)
	if s.hooks.OnRejected == nil {
		return
	}
	ev := &domain.RejectEvent{EventBase: s.base(domain.EventRejected), Command: cmd, Reason: res.Reason}
	events.add(func() { s.hooks.OnRejected(ctx, ev) })
}

func noProtocol() domain.Result {
	return domain.Reject(domain.ReasonNoProtocol, "No transfer protocol loaded. Load a CSV file to begin")
}

// nextRun names a new run, suffixing the ID when it would collide with the
// previous one so its record log is never overwritten.
func (s *Session) nextRun(table domain.Table) domain.Run {
	run := domain.NewRun(table, s.now())
	if run.ID != s.runBase {
		s.runBase, s.runSeq = run.ID, 1
		return run
	}
	s.runSeq++
	return run.Nth(s.runSeq)
}

// Load builds a protocol from the table. A failed build is reported as a
// rejection carrying every violation and leaves the current protocol in
// place; a successful one replaces it and starts a new run.
func (s *Session) Load(ctx context.Context, table domain.Table) (domain.Result, error) {
	var events pending
	defer func() { events.fire() }()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.builder.Build(table.Rows, table.DestPlate)
	if err != nil {
		var buildErr *domain.BuildError
		switch {
		case errors.As(err, &buildErr):
			res := domain.Reject(domain.ReasonInvalidTable, "%s", buildErr.Error())
			res.Count = len(buildErr.Violations)
			res.Violations = buildErr.Violations
			s.rejected(ctx, &events, commandLoad, res)
			return res, nil
		case errors.Is(err, domain.ErrEmptyTable):
			res := domain.Reject(domain.ReasonInvalidTable, "Transfer table %s has no transfers", table.Source)
			s.rejected(ctx, &events, commandLoad, res)
			return res, nil
		default:
			return domain.Result{}, fmt.Errorf("failed to build protocol: %w", err)
		}
	}

	s.proto = p
	s.table = table
	s.run = s.nextRun(table)
	s.logger.Info("protocol loaded",
		"run_id", s.run.ID,
		"plates", p.NumPlates(),
		"transfers", p.NumTransfers(),
	)

	if s.hooks.OnProtocolLoaded != nil {
		ev := &domain.ProtocolEvent{EventBase: s.base(domain.EventProtocolLoaded), Plates: p.NumPlates(), Transfers: p.NumTransfers()}
		events.add(func() { s.hooks.OnProtocolLoaded(ctx, ev) })
	}

	res := domain.Confirm(domain.ReasonPlateLoaded,
		"Loaded %d transfers from %d plates into %s. Please load plate %s to begin",
		p.NumTransfers(), p.NumPlates(), p.DestPlate(), p.Snapshot().PlateName)
	res.Count = p.NumTransfers()
	return res, s.persist(ctx)
}

// LoadFrom reads a table through the reader and loads it.
func (s *Session) LoadFrom(ctx context.Context, reader ports.TableReader) (domain.Result, error) {
	table, err := reader.ReadTable(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyTable) {
			return domain.Reject(domain.ReasonInvalidTable, "%v", err), nil
		}
		return domain.Result{}, fmt.Errorf("failed to read table: %w", err)
	}
	return s.Load(ctx, table)
}

// Complete marks the current transfer completed.
func (s *Session) Complete(ctx context.Context) (domain.Result, error) {
	return s.apply(ctx, domain.CommandComplete, (*protocol.Protocol).Complete)
}

// Skip marks the current transfer skipped.
func (s *Session) Skip(ctx context.Context) (domain.Result, error) {
	return s.apply(ctx, domain.CommandSkip, (*protocol.Protocol).Skip)
}

// Failed marks the current transfer failed.
func (s *Session) Failed(ctx context.Context) (domain.Result, error) {
	return s.apply(ctx, domain.CommandFailed, (*protocol.Protocol).Failed)
}

// Undo reverts the last forward step.
func (s *Session) Undo(ctx context.Context) (domain.Result, error) {
	return s.apply(ctx, domain.CommandUndo, (*protocol.Protocol).Undo)
}

// NextPlate asks to leave the current plate.
func (s *Session) NextPlate(ctx context.Context) (domain.Result, error) {
	return s.apply(ctx, domain.CommandNextPlate, (*protocol.Protocol).NextPlate)
}

// NextPlateConfirm commits the move to the next plate.
func (s *Session) NextPlateConfirm(ctx context.Context) (domain.Result, error) {
	return s.apply(ctx, domain.CommandNextPlateConfirm, (*protocol.Protocol).NextPlateConfirm)
}

// NextPlateOverride skips what is left of the plate and moves on.
func (s *Session) NextPlateOverride(ctx context.Context) (domain.Result, error) {
	return s.apply(ctx, domain.CommandNextPlateOverride, (*protocol.Protocol).NextPlateOverride)
}

func (s *Session) apply(ctx context.Context, cmd domain.Command, op func(*protocol.Protocol) domain.Result) (domain.Result, error) {
	var events pending
	defer func() { events.fire() }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proto == nil {
		res := noProtocol()
		s.rejected(ctx, &events, cmd, res)
		return res, nil
	}

	p := s.proto
	before := p.Snapshot()
	wasFinished := p.Finished()

	res := op(p)
	if res.IsRejected() {
		s.rejected(ctx, &events, cmd, res)
		return res, nil
	}
	s.logger.Debug("command applied", "command", cmd, "kind", res.Kind, "changed", res.ChangedIDs())

	s.transferEvents(ctx, &events, cmd, res)
	s.plateEvents(ctx, &events, before, wasFinished, res)

	if !res.Mutated() {
		return res, nil
	}
	return res, s.persist(ctx)
}

func (s *Session) transferEvents(ctx context.Context, events *pending, cmd domain.Command, res domain.Result) {
	hook := s.hooks.OnTransferUpdated
	typ := domain.EventTransferUpdated
	if cmd == domain.CommandUndo {
		hook, typ = s.hooks.OnTransferReset, domain.EventTransferReset
	}
	if hook == nil {
		return
	}
	for _, t := range res.Changed {
		ev := &domain.TransferEvent{EventBase: s.base(typ), Transfer: t}
		events.add(func() { hook(ctx, ev) })
	}
}

func (s *Session) plateEvents(ctx context.Context, events *pending, before domain.Snapshot, wasFinished bool, res domain.Result) {
	p := s.proto
	after := p.Snapshot()
	finished := p.Finished() && !wasFinished
	if after.PlateIndex == before.PlateIndex && !finished {
		return
	}

	next := ""
	if !finished {
		next = after.PlateName
	}
	s.logger.Info("plate advanced", "run_id", s.run.ID, "plate", before.PlateName, "next", next, "skipped", res.Count)

	if s.hooks.OnPlateAdvanced != nil {
		ev := &domain.PlateEvent{EventBase: s.base(domain.EventPlateAdvanced), Plate: before.PlateName, Next: next, Skipped: res.Count}
		events.add(func() { s.hooks.OnPlateAdvanced(ctx, ev) })
	}
	if finished {
		s.logger.Info("protocol complete", "run_id", s.run.ID, "records", len(p.Records()))
		if s.hooks.OnProtocolComplete != nil {
			ev := &domain.ProtocolEvent{EventBase: s.base(domain.EventProtocolComplete), Plates: p.NumPlates(), Transfers: p.NumTransfers()}
			events.add(func() { s.hooks.OnProtocolComplete(ctx, ev) })
		}
	}
}

// persist writes the record log to every sink. Failures do not undo the
// operation; they are joined and returned next to its result.
func (s *Session) persist(ctx context.Context) error {
	if len(s.writers) == 0 {
		return nil
	}
	records := s.proto.Records()
	var errs []error
	for _, w := range s.writers {
		if err := w.WriteRecords(ctx, s.run, records); err != nil {
			s.logger.Warn("record write failed", "run_id", s.run.ID, "err", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to write transfer records: %w", errors.Join(errs...))
	}
	return nil
}

// Abort discards the protocol, its table and its run. The record log already
// written stays with the sinks.
func (s *Session) Abort(ctx context.Context) (domain.Result, error) {
	var events pending
	defer func() { events.fire() }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proto == nil {
		res := noProtocol()
		s.rejected(ctx, &events, domain.CommandAbort, res)
		return res, nil
	}

	if s.hooks.OnProtocolAborted != nil {
		ev := &domain.ProtocolEvent{EventBase: s.base(domain.EventProtocolAborted), Plates: s.proto.NumPlates(), Transfers: s.proto.NumTransfers()}
		events.add(func() { s.hooks.OnProtocolAborted(ctx, ev) })
	}
	s.logger.Info("protocol aborted", "run_id", s.run.ID)
	s.clear()
	return domain.Success("Transfer protocol aborted. Load a CSV file to begin"), nil
}

// Reset discards any active protocol without reporting.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

func (s *Session) clear() {
	s.proto = nil
	s.table = domain.Table{}
	s.run = domain.Run{}
}
