package protocol

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/welllit/pkg/domain"
)

// Protocol is the transfer-sequencing state machine.
//
// The cursor is (plate, transfer) into the plate groups; the global sequence is
// the concatenation of the groups and is never stored separately. Per-plate
// uncompleted counters are updated on every write so plate completion is O(1).
//
// Protocol is not safe for concurrent use; the session serializes access.
type Protocol struct {
	destPlate string

	plates    []domain.PlateGroup
	offsets   []int // global sequence index of each plate's first transfer
	remaining []int // uncompleted transfers per plate
	total     int

	transfers map[string]*domain.Transfer
	plateOf   map[string]int

	plateIdx    int
	transferIdx int
	canUndo     bool
	finished    bool

	now    func() time.Time
	logger *slog.Logger
}

func newProtocol(destPlate string, now func() time.Time, logger *slog.Logger) *Protocol {
	return &Protocol{
		destPlate: destPlate,
		transfers: make(map[string]*domain.Transfer),
		plateOf:   make(map[string]int),
		now:       now,
		logger:    logger,
	}
}

func (p *Protocol) addPlate(g domain.PlateGroup) {
	p.plates = append(p.plates, g)
	p.offsets = append(p.offsets, p.total)
	p.remaining = append(p.remaining, len(g.TransferIDs))
	p.total += len(g.TransferIDs)
}

func (p *Protocol) current() *domain.Transfer {
	return p.transfers[p.plates[p.plateIdx].TransferIDs[p.transferIdx]]
}

func (p *Protocol) plateName() string {
	return p.plates[p.plateIdx].Name
}

// write sets a transfer's status and keeps the plate counters in sync.
func (p *Protocol) write(t *domain.Transfer, status domain.Status) {
	plate := p.plateOf[t.ID]
	switch {
	case !t.Status.Resolved() && status.Resolved():
		p.remaining[plate]--
	case t.Status.Resolved() && !status.Resolved():
		p.remaining[plate]++
	}

	t.Status = status
	if status.Resolved() {
		ts := p.now()
		t.Timestamp = &ts
	} else {
		t.Timestamp = nil
	}
	p.logger.Debug("transfer status written", "transfer", t.ShortID(), "plate", t.SourcePlate, "status", status)
}

// CanUpdate succeeds iff the current transfer is still uncompleted.
// Otherwise the rejection tells whether the transfer, its plate, or the whole
// protocol is already resolved.
func (p *Protocol) CanUpdate() domain.Result {
	cur := p.current()
	if !cur.Status.Resolved() {
		return domain.Success("Transfer %s can be updated", cur.ShortID())
	}

	msg := fmt.Sprintf("Cannot update transfer: %s Status is already marked as %s.", cur.ShortID(), cur.Status)
	if p.ProtocolComplete() {
		return domain.Reject(domain.ReasonProtocolResolved, "%s Transfer protocol complete.", msg)
	}
	if p.PlateComplete() {
		return domain.Reject(domain.ReasonPlateResolved, "%s Plate %s is complete, press next plate to continue.", msg, p.plateName())
	}
	return domain.Reject(domain.ReasonTransferResolved, "%s", msg)
}

// Complete marks the current transfer completed and steps forward.
func (p *Protocol) Complete() domain.Result {
	return p.update(domain.StatusCompleted)
}

// Skip marks the current transfer skipped and steps forward.
func (p *Protocol) Skip() domain.Result {
	return p.update(domain.StatusSkipped)
}

// Failed marks the current transfer failed and steps forward.
func (p *Protocol) Failed() domain.Result {
	return p.update(domain.StatusFailed)
}

func (p *Protocol) update(status domain.Status) domain.Result {
	if res := p.CanUpdate(); !res.IsSuccess() {
		return res
	}

	cur := p.current()
	p.write(cur, status)
	res := p.step(cur)
	res.Changed = []domain.Transfer{copyOf(cur)}
	return res
}

// step runs after a forward status write. A completed plate never advances
// silently: the caller receives a confirmation request and the cursor stays.
func (p *Protocol) step(written *domain.Transfer) domain.Result {
	p.canUndo = true
	head := fmt.Sprintf("Transfer %s marked %s.", written.ShortID(), written.Status)

	if p.PlateComplete() {
		if p.ProtocolComplete() {
			return domain.Confirm(domain.ReasonProtocolComplete, "%s Transfer protocol is complete.", head)
		}
		return domain.Confirm(domain.ReasonPlateComplete, "%s Plate %s completed, press next plate to continue.", head, p.plateName())
	}

	p.transferIdx++
	return domain.Success("%s", head)
}

// Undo reverts the single most recent forward step. It never crosses a plate
// transition and cannot be repeated.
func (p *Protocol) Undo() domain.Result {
	if !p.canUndo {
		return domain.Reject(domain.ReasonUndoUnavailable, "Cannot undo previous operation")
	}

	if !p.PlateComplete() {
		p.transferIdx--
	}
	cur := p.current()
	p.write(cur, domain.StatusUncompleted)
	p.canUndo = false

	res := domain.Success("Transfer marked incomplete: %s", cur.ShortID())
	res.Changed = []domain.Transfer{copyOf(cur)}
	return res
}

// NextPlate asks to leave the current plate. A resolved plate yields a
// confirmation request; an unresolved one is rejected with the number of
// transfers left, pointing at NextPlateOverride.
func (p *Protocol) NextPlate() domain.Result {
	if p.finished {
		return domain.Reject(domain.ReasonProtocolResolved, "Transfer protocol complete")
	}

	if p.PlateComplete() {
		if p.isLastPlate() {
			return domain.Confirm(domain.ReasonFinishProtocol, "Plate %s is complete. Finish the transfer protocol?", p.plateName())
		}
		return domain.Confirm(domain.ReasonAdvancePlate, "Plate %s is complete. Proceed to plate %s?", p.plateName(), p.plates[p.plateIdx+1].Name)
	}

	return p.rejectIncomplete()
}

// NextPlateConfirm commits the move to the next plate, or finishes the
// protocol when the current plate is the last one.
func (p *Protocol) NextPlateConfirm() domain.Result {
	if p.finished {
		return domain.Reject(domain.ReasonProtocolResolved, "Transfer protocol complete")
	}
	if !p.PlateComplete() {
		return p.rejectIncomplete()
	}
	return p.advance()
}

// NextPlateOverride skips every uncompleted transfer left in the current plate
// and then advances exactly like NextPlateConfirm.
func (p *Protocol) NextPlateOverride() domain.Result {
	if p.finished {
		return domain.Reject(domain.ReasonProtocolResolved, "Transfer protocol complete")
	}

	plate := p.plateName()
	var changed []domain.Transfer
	for _, id := range p.plates[p.plateIdx].TransferIDs {
		t := p.transfers[id]
		if t.Status.Resolved() {
			continue
		}
		p.write(t, domain.StatusSkipped)
		changed = append(changed, copyOf(t))
	}

	res := p.advance()
	res.Message = fmt.Sprintf("Remaining %d transfers in plate %s skipped. %s", len(changed), plate, res.Message)
	res.Count = len(changed)
	res.Changed = changed
	return res
}

func (p *Protocol) advance() domain.Result {
	p.canUndo = false
	if p.isLastPlate() {
		p.finished = true
		p.logger.Debug("protocol finished", "plates", len(p.plates))
		return domain.Success("Transfer protocol complete")
	}

	p.plateIdx++
	p.transferIdx = 0
	p.logger.Debug("plate advanced", "plate", p.plateName(), "index", p.plateIdx)
	return domain.Success("Please load plate %s", p.plateName())
}

func (p *Protocol) rejectIncomplete() domain.Result {
	n := p.remaining[p.plateIdx]
	res := domain.Reject(domain.ReasonPlateIncomplete,
		"Warning: Plate %s not yet complete. Use override to skip %d remaining transfers.", p.plateName(), n)
	res.Count = n
	return res
}

func (p *Protocol) isLastPlate() bool {
	return p.plateIdx == len(p.plates)-1
}

// PlateComplete reports whether no transfer of the current plate is uncompleted.
func (p *Protocol) PlateComplete() bool {
	return p.remaining[p.plateIdx] == 0
}

// ProtocolComplete reports whether the current plate and every later plate are complete.
func (p *Protocol) ProtocolComplete() bool {
	for i := p.plateIdx; i < len(p.plates); i++ {
		if p.remaining[i] > 0 {
			return false
		}
	}
	return true
}

// State derives the cursor state.
func (p *Protocol) State() domain.State {
	switch {
	case p.ProtocolComplete():
		return domain.StateProtocolComplete
	case p.PlateComplete():
		return domain.StatePlateComplete
	default:
		return domain.StateActive
	}
}

// Finished reports whether the last plate transition has been committed.
func (p *Protocol) Finished() bool {
	return p.finished
}

// CanUndo reports whether the last forward step can be reverted.
func (p *Protocol) CanUndo() bool {
	return p.canUndo
}
