package protocol

import "github.com/aretw0/welllit/pkg/domain"

// copyOf detaches a transfer from protocol-owned memory.
func copyOf(t *domain.Transfer) domain.Transfer {
	c := *t
	if t.Timestamp != nil {
		ts := *t.Timestamp
		c.Timestamp = &ts
	}
	return c
}

// Snapshot returns the cursor view.
func (p *Protocol) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		State:          p.State(),
		PlateIndex:     p.plateIdx,
		TransferIndex:  p.transferIdx,
		SequenceIndex:  p.offsets[p.plateIdx] + p.transferIdx,
		PlateName:      p.plateName(),
		DestPlate:      p.destPlate,
		Current:        copyOf(p.current()),
		CanUndo:        p.canUndo,
		PlateRemaining: p.remaining[p.plateIdx],
		NumPlates:      len(p.plates),
		NumTransfers:   p.total,
	}
}

// Current returns a copy of the transfer under the cursor.
func (p *Protocol) Current() domain.Transfer {
	return copyOf(p.current())
}

// Plates returns the plate membership map in first-appearance order.
func (p *Protocol) Plates() []domain.PlateGroup {
	out := make([]domain.PlateGroup, len(p.plates))
	for i, g := range p.plates {
		out[i] = domain.PlateGroup{
			Name:        g.Name,
			TransferIDs: append([]string(nil), g.TransferIDs...),
		}
	}
	return out
}

// Sequence returns the global processing order of transfer IDs.
func (p *Protocol) Sequence() []string {
	seq := make([]string, 0, p.total)
	for _, g := range p.plates {
		seq = append(seq, g.TransferIDs...)
	}
	return seq
}

// Transfers returns copies of every transfer in sequence order.
func (p *Protocol) Transfers() []domain.Transfer {
	out := make([]domain.Transfer, 0, p.total)
	for _, id := range p.Sequence() {
		out = append(out, copyOf(p.transfers[id]))
	}
	return out
}

// Transfer looks up a single transfer by ID.
func (p *Protocol) Transfer(id string) (domain.Transfer, bool) {
	t, ok := p.transfers[id]
	if !ok {
		return domain.Transfer{}, false
	}
	return copyOf(t), true
}

// Partitions recomputes the four status sets by scanning the sequence.
func (p *Protocol) Partitions() domain.Partitions {
	var parts domain.Partitions
	for _, id := range p.Sequence() {
		switch p.transfers[id].Status {
		case domain.StatusCompleted:
			parts.Completed = append(parts.Completed, id)
		case domain.StatusSkipped:
			parts.Skipped = append(parts.Skipped, id)
		case domain.StatusFailed:
			parts.Failed = append(parts.Failed, id)
		default:
			parts.Uncompleted = append(parts.Uncompleted, id)
		}
	}
	return parts
}

// Records returns the record log rows: every resolved transfer in sequence order.
func (p *Protocol) Records() []domain.Record {
	var out []domain.Record
	for _, id := range p.Sequence() {
		t := p.transfers[id]
		if t.Status.Resolved() {
			out = append(out, t.Record())
		}
	}
	return out
}

// PlateRemaining returns the uncompleted count of the named plate.
func (p *Protocol) PlateRemaining(name string) (int, bool) {
	for i, g := range p.plates {
		if g.Name == name {
			return p.remaining[i], true
		}
	}
	return 0, false
}

func (p *Protocol) NumPlates() int    { return len(p.plates) }
func (p *Protocol) NumTransfers() int { return p.total }
func (p *Protocol) DestPlate() string { return p.destPlate }
