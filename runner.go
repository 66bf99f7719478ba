package hsn

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Runner drives a chat loop over arbitrary IO. This allows for easy testing
// and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer transforms markdown before it is written, e.g. to ANSI.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run reads one message per line until EOF, "exit" or "quit", or until ctx is
// cancelled between messages. Per-message failures (oversized or malformed
// input) are reported and the loop continues.
func (r *Runner) Run(ctx context.Context, a *Assistant, sessionID string) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	if sessionID == "" {
		sessionID = a.NewSessionID()
	}
	if _, err := a.Sessions().LoadOrCreate(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	lines := bufio.NewScanner(r.Input)
	lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		if !lines.Scan() {
			if err := lines.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			return nil
		}

		input := strings.TrimSpace(lines.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Fprintln(r.Output, "Thanks for using the HSN assistant. Bye!")
			return nil
		}

		reply, err := a.Assist(ctx, sessionID, input)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintf(r.Output, "❌ %v\n", err)
			continue
		}
		r.print(reply.Markdown())
	}
}

func (r *Runner) print(md string) {
	out := md
	if r.Renderer != nil {
		if rendered, err := r.Renderer(md); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(out))
}
