package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/hsn/pkg/domain"
)

// ResultsMarkdown renders validation results as a markdown table.
func ResultsMarkdown(results []domain.Result) string {
	var b strings.Builder
	b.WriteString("| Input | Valid | Reason | Details |\n|---|---|---|---|\n")
	for _, r := range results {
		valid := "❌"
		if r.Valid {
			valid = "✅"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", escape(r.Input), valid, r.Reason, escape(details(r)))
	}
	return b.String()
}

func details(r domain.Result) string {
	if r.Valid {
		return r.Description
	}
	return r.Message
}

// StatsMarkdown renders a table summary.
func StatsMarkdown(s domain.TableStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## HSN master data\n\n")
	fmt.Fprintf(&b, "- **Source:** `%s`\n", s.Source)
	fmt.Fprintf(&b, "- **Codes:** %d\n", s.Total)
	if !s.LoadedAt.IsZero() {
		fmt.Fprintf(&b, "- **Loaded:** %s\n", s.LoadedAt.Format("2006-01-02 15:04:05"))
	}
	b.WriteString("\n| Level | Digits | Codes |\n|---|---|---|\n")

	levels := make([]int, 0, len(s.ByLevel))
	for n := range s.ByLevel {
		levels = append(levels, n)
	}
	sort.Ints(levels)
	for _, n := range levels {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", levelName(n), n, s.ByLevel[n])
	}
	if len(s.Chapters) > 0 {
		fmt.Fprintf(&b, "\n**Chapters:** %s\n", strings.Join(s.Chapters, ", "))
	}
	return b.String()
}

func levelName(digits int) string {
	switch digits {
	case 2:
		return "Chapter"
	case 4:
		return "Heading"
	case 6:
		return "Subheading"
	case 8:
		return "Tariff item"
	default:
		return "Other"
	}
}

func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ", "`", "'").Replace(s)
}
