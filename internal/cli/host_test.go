package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostOptions(t *testing.T) Options {
	return Options{RecordsDir: t.TempDir(), Stderr: &bytes.Buffer{}}
}

func TestServeMCP_Stdio(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","clientInfo":{"name":"test","version":"1"},"capabilities":{}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{}}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	err := ServeMCP(MCPOptions{
		Options: hostOptions(t),
		In:      strings.NewReader(input),
		Out:     &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, `"welllit-mcp"`)
	assert.Contains(t, text, `"run_command"`)
	assert.Contains(t, text, `"load_table"`)
}

func TestServeMCP_UnknownTransport(t *testing.T) {
	err := ServeMCP(MCPOptions{Options: hostOptions(t), Transport: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown transport")
}

func TestServe_ListenError(t *testing.T) {
	err := Serve(ServeOptions{Options: hostOptions(t), Addr: "127.0.0.1:-1"})
	assert.ErrorContains(t, err, "server error")
}

func TestServe_PreloadError(t *testing.T) {
	err := Serve(ServeOptions{Options: hostOptions(t), Addr: "127.0.0.1:0", File: "/does/not/exist.csv"})
	assert.Error(t, err)
}
