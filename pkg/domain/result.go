package domain

import "fmt"

// Kind discriminates the outcome of an operation.
type Kind string

const (
	KindSuccess  Kind = "success"
	KindRejected Kind = "rejected"
	KindConfirm  Kind = "confirmation_requested"
)

// Reason names why an operation was rejected or what a confirmation is about.
type Reason string

// Rejection reasons.
const (
	ReasonTransferResolved Reason = "transfer_resolved"
	ReasonPlateResolved    Reason = "plate_resolved"
	ReasonProtocolResolved Reason = "protocol_resolved"
	ReasonUndoUnavailable  Reason = "undo_unavailable"
	ReasonPlateIncomplete  Reason = "plate_incomplete"
	ReasonNoProtocol       Reason = "no_protocol"
	ReasonInvalidTable     Reason = "invalid_table"
	ReasonUnknownCommand   Reason = "unknown_command"
)

// Confirmation prompts.
const (
	ReasonPlateComplete    Reason = "plate_complete"
	ReasonProtocolComplete Reason = "protocol_complete"
	ReasonAdvancePlate     Reason = "advance_plate"
	ReasonFinishProtocol   Reason = "finish_protocol"
	ReasonPlateLoaded      Reason = "plate_loaded"
)

// Result is the value every protocol and session operation returns.
// Callers branch on Kind instead of inspecting error types.
type Result struct {
	Kind    Kind   `json:"kind"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message"`

	// Count carries the number of transfers an operation is about
	// (remaining in a plate, or force-skipped by an override).
	Count int `json:"count,omitempty"`

	// Changed holds copies of the transfers written by the operation.
	Changed []Transfer `json:"changed,omitempty"`

	// Violations is set when a table failed to build.
	Violations []Violation `json:"violations,omitempty"`
}

// Success builds a successful result.
func Success(format string, args ...any) Result {
	return Result{Kind: KindSuccess, Message: fmt.Sprintf(format, args...)}
}

// Reject builds a rejection.
func Reject(reason Reason, format string, args ...any) Result {
	return Result{Kind: KindRejected, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Confirm builds a confirmation request.
func Confirm(reason Reason, format string, args ...any) Result {
	return Result{Kind: KindConfirm, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func (r Result) IsSuccess() bool  { return r.Kind == KindSuccess }
func (r Result) IsRejected() bool { return r.Kind == KindRejected }
func (r Result) IsConfirm() bool  { return r.Kind == KindConfirm }

// Mutated reports whether the operation wrote any transfer.
func (r Result) Mutated() bool {
	return len(r.Changed) > 0
}

// ChangedIDs lists the IDs of the transfers the operation wrote.
func (r Result) ChangedIDs() []string {
	ids := make([]string, len(r.Changed))
	for i, t := range r.Changed {
		ids[i] = t.ID
	}
	return ids
}

func (r Result) String() string {
	if r.Reason != "" {
		return fmt.Sprintf("%s(%s): %s", r.Kind, r.Reason, r.Message)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}
