package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the HSN banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Teal to green, one step per line
	lines := []struct {
		text  string
		color string
	}{
		{"  _   _  ____   _   _ ", "#22d3ee"},
		{" | | | |/ ___| | \\ | |", "#2dd4bf"},
		{" | |_| |\\___ \\ |  \\| |", "#34d399"},
		{" |  _  | ___) || |\\  |", "#4ade80"},
		{" |_| |_||____/ |_| \\_|", "#a3e635"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String(" code assistant "+version).Faint())
	fmt.Fprintln(w)
}
