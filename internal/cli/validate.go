package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/hsn/internal/presentation/graph"
	"github.com/aretw0/hsn/internal/presentation/tui"
	"github.com/aretw0/hsn/pkg/domain"
)

// Output formats shared by validate and inspect.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatMermaid  = "mermaid"
)

// RunValidate checks codes directly against the table (no guardrails) and
// writes the results. The returned bool reports whether every code was valid.
func RunValidate(ctx context.Context, app *App, codes []string, format string, w io.Writer) (bool, error) {
	results := app.Assistant.Validate(ctx, domain.Strings(codes...))

	allValid := len(results) > 0
	for _, r := range results {
		allValid = allValid && r.Valid
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return allValid, enc.Encode(results)
	case FormatMermaid:
		prefix := commonChapter(codes)
		_, err := io.WriteString(w, graph.GenerateMermaid(app.Assistant.Table(), prefix, graph.OverlayFromResults(results)))
		return allValid, err
	case FormatMarkdown, "":
		_, err := io.WriteString(w, tui.ResultsMarkdown(results))
		return allValid, err
	default:
		return false, fmt.Errorf("unknown format %q", format)
	}
}

// RunInspect describes the loaded table. With a prefix, mermaid output is
// limited to that branch.
func RunInspect(app *App, format, prefix string, w io.Writer) error {
	table := app.Assistant.Table()
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(table.Stats())
	case FormatMermaid:
		_, err := io.WriteString(w, graph.GenerateMermaid(table, prefix, nil))
		return err
	case FormatMarkdown, "":
		_, err := io.WriteString(w, tui.StatsMarkdown(table.Stats()))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// commonChapter returns the chapter shared by all codes, or "" when they span
// several chapters.
func commonChapter(codes []string) string {
	chapter := ""
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if len(c) < 2 {
			return ""
		}
		if chapter == "" {
			chapter = c[:2]
		} else if chapter != c[:2] {
			return ""
		}
	}
	return chapter
}
