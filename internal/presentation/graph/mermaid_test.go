package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/hsn/internal/presentation/graph"
	"github.com/aretw0/hsn/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func sampleTable() *domain.Table {
	return domain.NewTable("test", map[string]string{
		"01":       "Live animals",
		"0101":     "Live horses, asses, mules and hinnies",
		"010121":   "Pure-bred breeding animals",
		"84":       "Nuclear reactors, boilers, machinery and mechanical appliances",
		"84713000": "Portable \"laptop\" computers",
	})
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		prefix      string
		contains    []string
		notContains []string
	}{
		{
			name:   "Level Shapes",
			prefix: "",
			contains: []string{
				"c01((\"01<br/>Live animals\"))",
				"c0101[\"0101<br/>Live horses, asses, mules and hinnies\"]",
				"c010121([\"010121<br/>Pure-bred breeding animals\"])",
				"c84713000[/\"84713000<br/>Portable 'laptop' computers\"/]",
			},
		},
		{
			name:   "Direct and Skipped Links",
			prefix: "",
			contains: []string{
				"c01 --> c0101",
				"c0101 --> c010121",
				"c84 -.-> c84713000",
			},
		},
		{
			name:        "Prefix Filter",
			prefix:      "84",
			contains:    []string{"c84((", "c84 -.-> c84713000"},
			notContains: []string{"c01(("},
		},
		{
			name:     "Long Labels Truncated",
			prefix:   "84",
			contains: []string{"Nuclear reactors, boilers, machinery ..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(sampleTable(), tt.prefix, nil)
			assert.True(t, strings.HasPrefix(out, "graph TD\n"))
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
			for _, c := range tt.notContains {
				assert.NotContains(t, out, c)
			}
			assert.NotContains(t, out, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	results := []domain.Result{
		domain.ValidResult("0101", "Live horses"),
		domain.ParentCategoryResult("010199", "0101", "Live horses"),
		domain.ParentChapterResult("8401", "84", "Machinery"),
		domain.NotFoundResult("99"),
	}

	overlay := graph.OverlayFromResults(results)
	assert.Equal(t, []string{"0101"}, overlay.Valid)
	assert.Equal(t, []string{"0101", "84"}, overlay.Parents)

	out := graph.GenerateMermaid(sampleTable(), "", overlay)
	assert.Contains(t, out, "classDef valid")
	assert.Contains(t, out, "class c0101 valid;")
	assert.Contains(t, out, "class c0101 parent;")
	assert.Contains(t, out, "class c84 parent;")
	assert.Equal(t, 1, strings.Count(out, "class c0101 parent;"))
}
