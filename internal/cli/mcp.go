package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/welllit"
	"github.com/aretw0/welllit/pkg/adapters/mcp"
)

// MCPOptions configure the MCP host.
type MCPOptions struct {
	Options

	// Transport is "stdio" or "sse".
	Transport string
	// Addr and BaseURL apply to the SSE transport.
	Addr    string
	BaseURL string

	In  io.Reader
	Out io.Writer
}

// ServeMCP hosts a session as an MCP server. Logs always go to stderr or
// the configured audit file so stdout stays clean for JSON-RPC.
func ServeMCP(opts MCPOptions) error {
	st, err := NewStack(opts.Options)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := mcp.NewServer(st.Session,
		mcp.WithVersion(welllit.Version),
		mcp.WithLogger(st.Logger),
	)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	switch opts.Transport {
	case "", "stdio":
		in, out := opts.In, opts.Out
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		st.Logger.Info("starting MCP server", "transport", "stdio")
		return srv.ServeStdio(sigCtx, in, out)
	case "sse":
		addr := opts.Addr
		if addr == "" {
			addr = st.Config.HTTP.Addr
		}
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost" + addr
		}
		return srv.ServeSSE(sigCtx, addr, baseURL)
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", opts.Transport)
	}
}
