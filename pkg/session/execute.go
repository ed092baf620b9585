package session

import (
	"context"

	"github.com/aretw0/welllit/pkg/domain"
)

// Execute routes an operator command by name. Aliases accepted by
// domain.ParseCommand work too; anything else is rejected.
func (s *Session) Execute(ctx context.Context, cmd domain.Command) (domain.Result, error) {
	parsed, ok := domain.ParseCommand(string(cmd))
	if !ok {
		res := domain.Reject(domain.ReasonUnknownCommand, "Unknown command %q", string(cmd))
		if s.hooks.OnRejected != nil {
			s.hooks.OnRejected(ctx, &domain.RejectEvent{
				EventBase: domain.EventBase{Timestamp: s.now(), Type: domain.EventRejected, RunID: s.Run().ID},
				Command:   cmd,
				Reason:    res.Reason,
			})
		}
		return res, nil
	}

	switch parsed {
	case domain.CommandComplete:
		return s.Complete(ctx)
	case domain.CommandSkip:
		return s.Skip(ctx)
	case domain.CommandFailed:
		return s.Failed(ctx)
	case domain.CommandUndo:
		return s.Undo(ctx)
	case domain.CommandNextPlate:
		return s.NextPlate(ctx)
	case domain.CommandNextPlateConfirm:
		return s.NextPlateConfirm(ctx)
	case domain.CommandNextPlateOverride:
		return s.NextPlateOverride(ctx)
	default:
		return s.Abort(ctx)
	}
}
