package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/welllit/pkg/domain"
)

// LogHooks writes one structured line per lifecycle event.
// Status writes log at Info so the audit sink keeps a full trail.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnProtocolLoaded: func(ctx context.Context, e *domain.ProtocolEvent) {
			logger.InfoContext(ctx, "protocol_loaded", "run_id", e.RunID, "plates", e.Plates, "transfers", e.Transfers)
		},
		OnTransferUpdated: func(ctx context.Context, e *domain.TransferEvent) {
			logger.InfoContext(ctx, "transfer_updated",
				"run_id", e.RunID,
				"transfer", e.Transfer.ID,
				"source_plate", e.Transfer.SourcePlate,
				"source_well", e.Transfer.SourceWell,
				"dest_well", e.Transfer.DestWell,
				"status", e.Transfer.Status,
			)
		},
		OnTransferReset: func(ctx context.Context, e *domain.TransferEvent) {
			logger.InfoContext(ctx, "transfer_reset", "run_id", e.RunID, "transfer", e.Transfer.ID)
		},
		OnPlateAdvanced: func(ctx context.Context, e *domain.PlateEvent) {
			logger.InfoContext(ctx, "plate_advanced", "run_id", e.RunID, "plate", e.Plate, "next", e.Next, "skipped", e.Skipped)
		},
		OnProtocolComplete: func(ctx context.Context, e *domain.ProtocolEvent) {
			logger.InfoContext(ctx, "protocol_complete", "run_id", e.RunID, "transfers", e.Transfers)
		},
		OnProtocolAborted: func(ctx context.Context, e *domain.ProtocolEvent) {
			logger.WarnContext(ctx, "protocol_aborted", "run_id", e.RunID)
		},
		OnRejected: func(ctx context.Context, e *domain.RejectEvent) {
			logger.DebugContext(ctx, "command_rejected", "run_id", e.RunID, "command", e.Command, "reason", e.Reason)
		},
	}
}
