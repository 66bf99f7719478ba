package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/hsn/pkg/adapters/mcp"
	"github.com/aretw0/hsn/pkg/config"
	"golang.org/x/sync/errgroup"
)

// MCPOptions configures RunMCP.
type MCPOptions struct {
	Transport string
	Port      int
	Watch     bool
}

// RunMCP exposes the assistant as an MCP server.
func RunMCP(ctx context.Context, app *App, opts MCPOptions) error {
	srv := mcp.NewServer(app.Assistant, mcp.WithLogger(app.Logger))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Watch {
		w, err := NewTableWatcher(app)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	switch opts.Transport {
	case config.TransportStdio, "":
		// Logs go to Stderr; Stdout carries JSON-RPC.
		app.Logger.Info("Starting HSN MCP Server (Stdio)...")
		g.Go(func() error {
			return srv.ServeStdio()
		})
	case config.TransportSSE:
		app.Logger.Info("Starting HSN MCP Server (SSE)", "port", opts.Port)
		g.Go(func() error {
			err := srv.ServeSSE(gctx, opts.Port)
			// Ignore server closed error if it was caused by context cancellation
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}

	return g.Wait()
}
