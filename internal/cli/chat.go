package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/hsn"
	"github.com/aretw0/hsn/internal/presentation/tui"
	"golang.org/x/term"
)

// ChatOptions configures RunChat.
type ChatOptions struct {
	SessionID string
	// Headless disables the banner and markdown rendering. It is forced when
	// stdout is not a terminal.
	Headless bool
	Width    int
	Input    io.Reader
	Output   io.Writer
}

// RunChat runs the interactive assistant until EOF, "exit" or a signal.
func RunChat(sigCtx *SignalContext, app *App, opts ChatOptions) error {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if f, ok := opts.Output.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		opts.Headless = true
	}

	a := app.Assistant
	if opts.SessionID == "" {
		opts.SessionID = a.NewSessionID()
	}

	r := hsn.NewRunner()
	r.Input = NewInterruptibleReader(opts.Input, sigCtx.Done())
	r.Output = opts.Output
	r.Headless = opts.Headless

	if !opts.Headless {
		tui.PrintBanner(opts.Output, hsn.Version)
		r.Renderer = tui.NewRenderer(opts.Width)
		printSystemMessage(opts.Output, "%s ready with %d codes from '%s'.", a.Persona().Name, a.Table().Len(), a.Table().Source())
		printSystemMessage(opts.Output, "Session '%s' active. Type 'exit' to quit.", opts.SessionID)
	}
	app.Logger.Info("Chat session started", "session_id", opts.SessionID)

	err := r.Run(sigCtx, a, opts.SessionID)
	if sigCtx.Err() != nil && err == nil {
		err = sigCtx.Err()
	}
	if isInterrupted(err) && sigCtx.Signal() != nil && !opts.Headless {
		fmt.Fprintln(opts.Output)
		printSystemMessage(opts.Output, "Interrupted. Session '%s' kept.", opts.SessionID)
	}
	return HandleExecutionError(err)
}
