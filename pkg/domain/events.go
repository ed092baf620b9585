package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventProtocolLoaded   EventType = "protocol_loaded"
	EventTransferUpdated  EventType = "transfer_updated"
	EventTransferReset    EventType = "transfer_reset"
	EventPlateAdvanced    EventType = "plate_advanced"
	EventProtocolComplete EventType = "protocol_complete"
	EventProtocolAborted  EventType = "protocol_aborted"
	EventRejected         EventType = "rejected"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// ProtocolEvent reports a protocol-wide change (load, completion, abort).
type ProtocolEvent struct {
	EventBase
	Plates    int `json:"plates"`
	Transfers int `json:"transfers"`
}

// TransferEvent reports a status write or an undo.
type TransferEvent struct {
	EventBase
	Transfer Transfer `json:"transfer"`
}

// PlateEvent reports the cursor leaving a plate.
type PlateEvent struct {
	EventBase
	Plate   string `json:"plate"`
	Next    string `json:"next,omitempty"`
	Skipped int    `json:"skipped"`
}

// RejectEvent reports a rejected command or load.
type RejectEvent struct {
	EventBase
	Command Command `json:"command"`
	Reason  Reason  `json:"reason"`
}

// Hooks defines callbacks for session observability.
// Any field may be nil.
type Hooks struct {
	OnProtocolLoaded   func(context.Context, *ProtocolEvent)
	OnTransferUpdated  func(context.Context, *TransferEvent)
	OnTransferReset    func(context.Context, *TransferEvent)
	OnPlateAdvanced    func(context.Context, *PlateEvent)
	OnProtocolComplete func(context.Context, *ProtocolEvent)
	OnProtocolAborted  func(context.Context, *ProtocolEvent)
	OnRejected         func(context.Context, *RejectEvent)
}

// MergeHooks chains several hook sets so each callback fires in order.
func MergeHooks(sets ...Hooks) Hooks {
	var out Hooks
	for _, h := range sets {
		out.OnProtocolLoaded = chain(out.OnProtocolLoaded, h.OnProtocolLoaded)
		out.OnTransferUpdated = chain(out.OnTransferUpdated, h.OnTransferUpdated)
		out.OnTransferReset = chain(out.OnTransferReset, h.OnTransferReset)
		out.OnPlateAdvanced = chain(out.OnPlateAdvanced, h.OnPlateAdvanced)
		out.OnProtocolComplete = chain(out.OnProtocolComplete, h.OnProtocolComplete)
		out.OnProtocolAborted = chain(out.OnProtocolAborted, h.OnProtocolAborted)
		out.OnRejected = chain(out.OnRejected, h.OnRejected)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
