package domain

import "time"

// Status is the recorded outcome of a single transfer.
type Status string

const (
	StatusUncompleted Status = "uncompleted" // Awaiting an operator decision
	StatusCompleted   Status = "completed"   // Liquid moved
	StatusSkipped     Status = "skipped"     // Deliberately not performed
	StatusFailed      Status = "failed"      // Attempted but unsuccessful
)

// Statuses lists every status in partition order.
var Statuses = []Status{StatusCompleted, StatusUncompleted, StatusSkipped, StatusFailed}

// Resolved reports whether the status records an operator decision.
func (s Status) Resolved() bool {
	return s != StatusUncompleted
}

// Transfer is one planned movement from a source well to a destination well.
// Identity and well fields never change after the protocol is built.
type Transfer struct {
	ID          string     `json:"id"`
	SourcePlate string     `json:"source_plate"`
	SourceWell  string     `json:"source_well"`
	DestPlate   string     `json:"dest_plate"`
	DestWell    string     `json:"dest_well"`
	Status      Status     `json:"status"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// ShortID returns the first eight characters of the ID, used in operator messages.
func (t Transfer) ShortID() string {
	if len(t.ID) <= 8 {
		return t.ID
	}
	return t.ID[:8]
}

// Record converts the transfer into a record log row.
func (t Transfer) Record() Record {
	r := Record{
		TransferID:  t.ID,
		SourcePlate: t.SourcePlate,
		SourceWell:  t.SourceWell,
		DestPlate:   t.DestPlate,
		DestWell:    t.DestWell,
		Status:      t.Status,
	}
	if t.Timestamp != nil {
		r.Timestamp = *t.Timestamp
	}
	return r
}

// Record is one row of the transfer record log.
type Record struct {
	TransferID  string    `json:"transfer_id"`
	Timestamp   time.Time `json:"timestamp"`
	SourcePlate string    `json:"source_plate"`
	SourceWell  string    `json:"source_well"`
	DestPlate   string    `json:"dest_plate"`
	DestWell    string    `json:"dest_well"`
	Status      Status    `json:"status"`
}

// PlateGroup holds the transfer IDs of one source plate in row order.
type PlateGroup struct {
	Name        string   `json:"name"`
	TransferIDs []string `json:"transfer_ids"`
}

// Partitions splits transfer IDs by status. The four sets are disjoint and each
// keeps global sequence order.
type Partitions struct {
	Completed   []string `json:"completed"`
	Uncompleted []string `json:"uncompleted"`
	Skipped     []string `json:"skipped"`
	Failed      []string `json:"failed"`
}

// Get returns the partition for a status.
func (p Partitions) Get(s Status) []string {
	switch s {
	case StatusCompleted:
		return p.Completed
	case StatusSkipped:
		return p.Skipped
	case StatusFailed:
		return p.Failed
	default:
		return p.Uncompleted
	}
}

// Len returns the total number of IDs across all partitions.
func (p Partitions) Len() int {
	return len(p.Completed) + len(p.Uncompleted) + len(p.Skipped) + len(p.Failed)
}
