package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/hsn/pkg/adapters/http"
	"github.com/aretw0/hsn/pkg/watch"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// ServeOptions configures RunServe.
type ServeOptions struct {
	Port  int
	Watch bool
	// Ready, when set, receives the bound address once the listener is up.
	Ready func(addr string)
}

// RunServe starts the HTTP API and, when requested, the table watcher. It
// blocks until ctx is cancelled or one of them fails.
func RunServe(ctx context.Context, app *App, opts ServeOptions) error {
	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithStreams(app.Streams),
		httpAdapter.WithLogger(app.Logger),
	}
	if app.Metrics != nil {
		handlerOpts = append(handlerOpts, httpAdapter.WithMetricsHandler(app.Metrics.Handler()))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           httpAdapter.NewHandler(app.Assistant, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info("Starting HSN server", "addr", srv.Addr, "data", app.Assistant.DataPath())
		if opts.Ready != nil {
			opts.Ready(srv.Addr)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		app.Logger.Info("HSN server stopped gracefully")
		return nil
	})

	if opts.Watch {
		w, err := NewTableWatcher(app)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	return g.Wait()
}

// NewTableWatcher watches the configured data file and reloads the table on change.
func NewTableWatcher(app *App) (*watch.Watcher, error) {
	path := app.Assistant.DataPath()
	if path == "" {
		return nil, errors.New("watch requires a data file")
	}
	w, err := watch.New(path, app.Assistant.Reload, watch.WithLogger(app.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	app.Logger.Info("Watching reference table", "path", w.Path())
	return w, nil
}
