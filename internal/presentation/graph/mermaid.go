package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/hsn/pkg/domain"
)

// Overlay marks codes on the chart, typically taken from validation results.
type Overlay struct {
	Valid   []string
	Parents []string
}

// OverlayFromResults highlights valid codes and the parents that rescued
// NOT_FOUND_BUT_PARENT_EXISTS results.
func OverlayFromResults(results []domain.Result) *Overlay {
	o := &Overlay{}
	for _, r := range results {
		switch {
		case r.Valid:
			o.Valid = append(o.Valid, strings.TrimSpace(r.Input))
		case r.Reason == domain.ReasonNotFoundButParentExists:
			o.Parents = append(o.Parents, r.ParentCode)
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the codes under prefix
// (all codes when prefix is empty). Shapes follow the hierarchy level:
// - Chapter: ((Circle))
// - Heading: [Rectangle]
// - Subheading: ([Stadium])
// - Tariff item: [/Parallelogram/]
// Each code links to its nearest existing ancestor; a dotted arrow marks a
// skipped level.
func GenerateMermaid(table *domain.Table, prefix string, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, code := range table.Codes() {
		if !strings.HasPrefix(code, prefix) {
			continue
		}
		desc, _ := table.Lookup(code)

		opener, closer := "[", "]"
		switch len(code) {
		case 2:
			opener, closer = "((", "))"
		case 6:
			opener, closer = "([", "])"
		case 8:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    c%s%s\"%s<br/>%s\"%s\n", code, opener, code, label(desc), closer)

		if parent, skipped := ancestor(table, code); parent != "" && strings.HasPrefix(parent, prefix) {
			arrow := "-->"
			if skipped {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    c%s %s c%s\n", parent, arrow, code)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef valid fill:#dcfce7,stroke:#15803d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef parent fill:#fef9c3,stroke:#ca8a04,stroke-width:2px,color:#000;\n")
		writeClass(&sb, table, prefix, overlay.Valid, "valid")
		writeClass(&sb, table, prefix, overlay.Parents, "parent")
	}

	return sb.String()
}

// ancestor finds the closest shorter code present in the table.
func ancestor(table *domain.Table, code string) (string, bool) {
	skipped := false
	for n := len(code) - 2; n >= 2; n -= 2 {
		if _, ok := table.Lookup(code[:n]); ok {
			return code[:n], skipped
		}
		skipped = true
	}
	return "", false
}

func writeClass(sb *strings.Builder, table *domain.Table, prefix string, codes []string, class string) {
	seen := make(map[string]bool)
	for _, c := range codes {
		if seen[c] || !strings.HasPrefix(c, prefix) {
			continue
		}
		if _, ok := table.Lookup(c); !ok {
			continue
		}
		seen[c] = true
		fmt.Fprintf(sb, "    class c%s %s;\n", c, class)
	}
}

func label(desc string) string {
	desc = strings.ReplaceAll(desc, "\"", "'")
	if r := []rune(desc); len(r) > 40 {
		desc = string(r[:37]) + "..."
	}
	return desc
}
