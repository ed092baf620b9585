package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/welllit"
	"github.com/aretw0/welllit/pkg/adapters/csv"
	httpadapter "github.com/aretw0/welllit/pkg/adapters/http"
)

// ServeOptions configure the HTTP host.
type ServeOptions struct {
	Options

	// Addr overrides http.addr from the config file.
	Addr string
	// File is loaded before the listener starts when set.
	File string
}

const shutdownTimeout = 5 * time.Second

// Serve hosts a session behind the HTTP API until a signal arrives.
func Serve(opts ServeOptions) error {
	streams := httpadapter.NewStreamManager(nil)
	opts.Hooks = append(opts.Hooks, streams.Hooks())

	st, err := NewStack(opts.Options)
	if err != nil {
		return err
	}
	defer st.Close()

	addr := st.Config.HTTP.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	if opts.File != "" {
		res, err := st.Session.LoadFrom(sigCtx, csv.NewReader(opts.File))
		if err != nil && res.Kind == "" {
			return err
		}
		st.Logger.Info("preloaded table", "file", opts.File, "result", res.String())
	}

	handler := httpadapter.NewHandler(st.Session,
		httpadapter.WithStreams(streams),
		httpadapter.WithMetrics(st.Metrics),
		httpadapter.WithVersion(welllit.Version),
		httpadapter.WithLogger(st.Logger),
	)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		st.Logger.Info("HTTP server listening", "address", addr, "records", st.Config.RecordsDir)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-sigCtx.Done():
		st.Logger.Info("shutting down HTTP server", "signal", fmt.Sprint(sigCtx.Signal()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			st.Logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		return nil
	}
}
