package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sec int) domain.EventBase {
	return domain.EventBase{Timestamp: time.Date(2026, 1, 1, 0, 0, sec, 0, time.UTC), RunID: "r1"}
}

func replay(h domain.Hooks) {
	ctx := context.Background()
	h.OnProtocolLoaded(ctx, &domain.ProtocolEvent{EventBase: at(0), Plates: 2, Transfers: 3})
	h.OnTransferUpdated(ctx, &domain.TransferEvent{EventBase: at(5), Transfer: domain.Transfer{ID: "t1", Status: domain.StatusCompleted}})
	h.OnTransferReset(ctx, &domain.TransferEvent{EventBase: at(6), Transfer: domain.Transfer{ID: "t1"}})
	h.OnTransferUpdated(ctx, &domain.TransferEvent{EventBase: at(8), Transfer: domain.Transfer{ID: "t1", Status: domain.StatusSkipped}})
	h.OnTransferUpdated(ctx, &domain.TransferEvent{EventBase: at(8), Transfer: domain.Transfer{ID: "t2", Status: domain.StatusSkipped}})
	h.OnPlateAdvanced(ctx, &domain.PlateEvent{EventBase: at(9), Plate: "P1", Next: "P2", Skipped: 2})
	h.OnRejected(ctx, &domain.RejectEvent{EventBase: at(10), Command: domain.CommandUndo, Reason: domain.ReasonUndoUnavailable})
	h.OnProtocolComplete(ctx, &domain.ProtocolEvent{EventBase: at(11), Transfers: 3})
}

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	replay(m.Hooks())

	expected := `
# HELP welllit_protocols_loaded_total Transfer protocols loaded successfully.
# TYPE welllit_protocols_loaded_total counter
welllit_protocols_loaded_total 1
# HELP welllit_transfers_total Transfer status writes by resulting status.
# TYPE welllit_transfers_total counter
welllit_transfers_total{status="completed"} 1
welllit_transfers_total{status="skipped"} 2
# HELP welllit_transfer_resets_total Transfers returned to uncompleted by undo.
# TYPE welllit_transfer_resets_total counter
welllit_transfer_resets_total 1
# HELP welllit_transfers_overridden_total Transfers skipped by a next plate override.
# TYPE welllit_transfers_overridden_total counter
welllit_transfers_overridden_total 2
# HELP welllit_rejections_total Rejected operator commands by reason.
# TYPE welllit_rejections_total counter
welllit_rejections_total{reason="undo_unavailable"} 1
# HELP welllit_transfers_pending Uncompleted transfers in the active protocol.
# TYPE welllit_transfers_pending gauge
welllit_transfers_pending 1
`
	err := testutil.GatherAndCompare(m.Registry, strings.NewReader(expected),
		"welllit_protocols_loaded_total",
		"welllit_transfers_total",
		"welllit_transfer_resets_total",
		"welllit_transfers_overridden_total",
		"welllit_rejections_total",
		"welllit_transfers_pending",
	)
	require.NoError(t, err)

	mfs, err := m.Registry.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range mfs {
		if mf.GetName() != "welllit_transfer_step_seconds" {
			continue
		}
		found = true
		h := mf.GetMetric()[0].GetHistogram()
		assert.Equal(t, uint64(2), h.GetSampleCount(), "simultaneous writes are not a step")
		assert.Equal(t, 8.0, h.GetSampleSum())
	}
	assert.True(t, found)
}

func TestMetrics_AbortClearsPending(t *testing.T) {
	m := observability.NewMetrics()
	h := m.Hooks()
	ctx := context.Background()

	h.OnProtocolLoaded(ctx, &domain.ProtocolEvent{EventBase: at(0), Transfers: 5})
	h.OnProtocolAborted(ctx, &domain.ProtocolEvent{EventBase: at(1)})

	expected := `
# HELP welllit_protocols_aborted_total Transfer protocols discarded by abort.
# TYPE welllit_protocols_aborted_total counter
welllit_protocols_aborted_total 1
# HELP welllit_transfers_pending Uncompleted transfers in the active protocol.
# TYPE welllit_transfers_pending gauge
welllit_transfers_pending 0
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected),
		"welllit_protocols_aborted_total", "welllit_transfers_pending"))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	hooks := domain.MergeHooks(observability.LogHooks(logger), observability.NewMetrics().Hooks())
	replay(hooks)
	hooks.OnProtocolAborted(context.Background(), &domain.ProtocolEvent{EventBase: at(12)})

	out := buf.String()
	for _, msg := range []string{"protocol_loaded", "transfer_updated", "transfer_reset", "plate_advanced", "command_rejected", "protocol_complete", "protocol_aborted"} {
		assert.Contains(t, out, "msg="+msg)
	}
	assert.Contains(t, out, "status=skipped")
	assert.Contains(t, out, "run_id=r1")
}

func TestMetrics_ObserveHTTP(t *testing.T) {
	m := observability.NewMetrics()
	m.ObserveHTTP("POST", "/commands/{command}", 200, 10*time.Millisecond)
	m.ObserveHTTP("POST", "/commands/{command}", 409, 5*time.Millisecond)

	expected := `
# HELP welllit_http_requests_total HTTP requests by method, route and status code.
# TYPE welllit_http_requests_total counter
welllit_http_requests_total{code="200",method="POST",route="/commands/{command}"} 1
welllit_http_requests_total{code="409",method="POST",route="/commands/{command}"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "welllit_http_requests_total"))
	n, err := testutil.GatherAndCount(m.Registry, "welllit_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
