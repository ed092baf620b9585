package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	mcpadapter "github.com/aretw0/welllit/pkg/adapters/mcp"
	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/protocol"
	"github.com/aretw0/welllit/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const benchCSV = "DEST\nPlateName,SourceWell,DestWell\nP1,A1,A1\nP2,B1,B1\n"

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type toolResult struct {
	IsError bool `json:"isError"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StructuredContent json.RawMessage `json:"structuredContent"`
}

type harness struct {
	t      *testing.T
	server *mcpadapter.Server
	id     int
}

func newHarness(t *testing.T) *harness {
	n := 0
	clock := func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	builder := protocol.NewBuilder(
		protocol.WithIDGenerator(func() string { n++; return fmt.Sprintf("t%d", n) }),
		protocol.WithClock(clock),
	)
	sess := session.New(session.WithBuilder(builder), session.WithClock(clock))
	h := &harness{t: t, server: mcpadapter.NewServer(sess, mcpadapter.WithVersion("test"))}
	h.rpc("initialize", map[string]any{
		"protocolVersion": "2025-03-26",
		"clientInfo":      map[string]any{"name": "test", "version": "1"},
		"capabilities":    map[string]any{},
	})
	return h
}

func (h *harness) rpc(method string, params any) rpcResponse {
	h.t.Helper()
	h.id++
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      h.id,
		"method":  method,
		"params":  params,
	})
	require.NoError(h.t, err)

	out := h.server.Handle(context.Background(), msg)
	raw, err := json.Marshal(out)
	require.NoError(h.t, err)

	var resp rpcResponse
	require.NoError(h.t, json.Unmarshal(raw, &resp))
	return resp
}

func (h *harness) call(tool string, args map[string]any) toolResult {
	h.t.Helper()
	resp := h.rpc("tools/call", map[string]any{"name": tool, "arguments": args})
	require.Nil(h.t, resp.Error)

	var res toolResult
	require.NoError(h.t, json.Unmarshal(resp.Result, &res))
	return res
}

func (h *harness) command(tool string, args map[string]any) mcpadapter.ToolResponse {
	h.t.Helper()
	res := h.call(tool, args)
	require.False(h.t, res.IsError, "%+v", res.Content)

	var out mcpadapter.ToolResponse
	require.NoError(h.t, json.Unmarshal(res.StructuredContent, &out))
	return out
}

func TestListTools(t *testing.T) {
	h := newHarness(t)
	resp := h.rpc("tools/list", map[string]any{})
	require.Nil(t, resp.Error)

	var list struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &list))

	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"load_table", "run_command", "get_status", "get_records"}, names)
}

func TestLoadAndRunCommands(t *testing.T) {
	h := newHarness(t)

	out := h.command("run_command", map[string]any{"command": "complete"})
	assert.Equal(t, domain.ReasonNoProtocol, out.Result.Reason)
	assert.Nil(t, out.Snapshot)

	out = h.command("load_table", map[string]any{"csv": benchCSV, "name": "bench.csv"})
	assert.Equal(t, domain.ReasonPlateLoaded, out.Result.Reason)
	require.NotNil(t, out.Snapshot)
	assert.Equal(t, "P1", out.Snapshot.PlateName)

	out = h.command("run_command", map[string]any{"command": "complete"})
	assert.Equal(t, domain.ReasonPlateComplete, out.Result.Reason)

	out = h.command("run_command", map[string]any{"command": "complete"})
	assert.Equal(t, domain.ReasonPlateResolved, out.Result.Reason)

	out = h.command("run_command", map[string]any{"command": "confirm"})
	assert.True(t, out.Result.IsSuccess())
	assert.Equal(t, "P2", out.Snapshot.PlateName)

	res := h.call("get_status", map[string]any{})
	var status mcpadapter.StatusResponse
	require.NoError(t, json.Unmarshal(res.StructuredContent, &status))
	assert.True(t, status.Active)
	assert.Equal(t, 1, status.Completed)
	assert.Equal(t, 1, status.Uncompleted)
	assert.Len(t, status.Plates, 2)
	assert.Equal(t, "bench_transfer_record_2026_05_01_12_00_00", status.Run.ID)

	res = h.call("get_records", map[string]any{})
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	var body struct {
		Records []domain.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &body))
	require.Len(t, body.Records, 1)
	assert.Equal(t, "A1", body.Records[0].SourceWell)
}

func TestLoadFromPath(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "plates.csv")
	require.NoError(t, os.WriteFile(path, []byte(benchCSV), 0o600))

	out := h.command("load_table", map[string]any{"path": path})
	assert.Equal(t, domain.ReasonPlateLoaded, out.Result.Reason)
	assert.Equal(t, 2, out.Result.Count)
}

func TestLoadErrors(t *testing.T) {
	h := newHarness(t)

	res := h.call("load_table", map[string]any{})
	assert.True(t, res.IsError)

	res = h.call("load_table", map[string]any{"path": filepath.Join(t.TempDir(), "missing.csv")})
	assert.True(t, res.IsError)

	out := h.command("load_table", map[string]any{"csv": "DEST\nPlateName,SourceWell,DestWell\nP1,Z9,A1\n"})
	assert.Equal(t, domain.ReasonInvalidTable, out.Result.Reason)
	assert.NotEmpty(t, out.Result.Violations)

	res = h.call("get_records", map[string]any{})
	assert.True(t, res.IsError)
}

func TestReadResources(t *testing.T) {
	h := newHarness(t)
	h.command("load_table", map[string]any{"csv": benchCSV, "name": "bench.csv"})

	resp := h.rpc("resources/read", map[string]any{"uri": mcpadapter.SnapshotURI})
	require.Nil(t, resp.Error)

	var read struct {
		Contents []struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"contents"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &read))
	require.Len(t, read.Contents, 1)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(read.Contents[0].Text), &snap))
	assert.Equal(t, "DEST", snap.DestPlate)
	assert.Equal(t, 2, snap.NumTransfers)

	resp = h.rpc("resources/read", map[string]any{"uri": mcpadapter.RecordsURI})
	require.Nil(t, resp.Error)
}

func TestReadSnapshot_NoProtocol(t *testing.T) {
	h := newHarness(t)

	resp := h.rpc("resources/read", map[string]any{"uri": mcpadapter.SnapshotURI})
	require.NotNil(t, resp.Error)
	assert.Equal(t, domain.ErrNoProtocol.Error(), resp.Error.Message)

	res := h.call("get_records", map[string]any{})
	assert.True(t, res.IsError)
}
