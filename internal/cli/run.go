package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/welllit/internal/presentation/tui"
)

// RunOptions configure the interactive console.
type RunOptions struct {
	Options

	// File is loaded before the first prompt when set.
	File string

	In  io.Reader
	Out io.Writer
}

// Run hosts a session behind the interactive console until the operator
// quits, input ends or a signal arrives.
func Run(opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	interactive := opts.In == os.Stdin && opts.Out == os.Stdout && tui.IsInteractive(os.Stdin) && tui.IsInteractive(os.Stdout)

	st, err := NewStack(opts.Options)
	if err != nil {
		return err
	}
	defer st.Close()

	printer := tui.NewPrinter(opts.Out, interactive)
	if interactive {
		printer.Banner()
		printer.Println("Type 'help' for commands.")
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	console := NewConsole(st.Session, printer, opts.In)
	if opts.File != "" {
		console.Load(sigCtx, opts.File)
	}

	err = console.Run(sigCtx)
	if errors.Is(err, context.Canceled) && sigCtx.Signal() != nil {
		st.Logger.Info("console interrupted", "signal", sigCtx.Signal().String())
		printer.Println()
		return nil
	}
	if err != nil {
		return fmt.Errorf("console failed: %w", err)
	}
	if run := st.Session.Run(); run.ID != "" {
		st.Logger.Info("record log", "path", st.Records.Path(run.ID))
	}
	return nil
}
