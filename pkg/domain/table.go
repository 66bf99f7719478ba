package domain

import (
	"sort"
	"strings"
	"time"
)

// Table is the in-memory HSN reference table.
// It is immutable once built and safe for concurrent readers without locking.
// A nil *Table behaves like an empty table.
type Table struct {
	entries  map[string]string
	source   string
	loadedAt time.Time
}

// TableStats summarises a table by hierarchy level.
type TableStats struct {
	Source   string      `json:"source"`
	Total    int         `json:"total"`
	ByLevel  map[int]int `json:"by_level"`
	Chapters []string    `json:"chapters"`
	LoadedAt time.Time   `json:"loaded_at"`
}

// NewTable builds a table from raw code/description pairs using the same
// normalisation as the loaders. Keys are added in sorted order, so when two
// keys trim to the same code the one sorting last wins on every call.
func NewTable(source string, entries map[string]string) *Table {
	keys := make([]string, 0, len(entries))
	for code := range entries {
		keys = append(keys, code)
	}
	sort.Strings(keys)

	b := NewTableBuilder()
	for _, code := range keys {
		b.Add(code, entries[code])
	}
	return b.Build(source)
}

// EmptyTable returns a table with no entries, as produced by a failed load.
func EmptyTable(source string) *Table {
	return &Table{entries: map[string]string{}, source: source, loadedAt: time.Now()}
}

// Lookup returns the description stored for an exact code.
func (t *Table) Lookup(code string) (string, bool) {
	if t == nil {
		return "", false
	}
	desc, ok := t.entries[code]
	return desc, ok
}

// Len returns the number of codes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Empty reports whether the table holds no codes.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Source returns the path or label the table was loaded from.
func (t *Table) Source() string {
	if t == nil {
		return ""
	}
	return t.source
}

// LoadedAt returns the build time.
func (t *Table) LoadedAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.loadedAt
}

// Codes returns every code in ascending order.
func (t *Table) Codes() []string {
	if t == nil {
		return nil
	}
	codes := make([]string, 0, len(t.entries))
	for c := range t.entries {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Stats counts codes per hierarchy level.
func (t *Table) Stats() TableStats {
	st := TableStats{
		Source:   t.Source(),
		Total:    t.Len(),
		ByLevel:  make(map[int]int),
		Chapters: []string{},
		LoadedAt: t.LoadedAt(),
	}
	for _, c := range t.Codes() {
		st.ByLevel[len(c)]++
		if len(c) == 2 {
			st.Chapters = append(st.Chapters, c)
		}
	}
	return st
}

// TableBuilder accumulates rows before freezing them into a Table.
type TableBuilder struct {
	entries map[string]string
	dropped int
	skipped int
}

// NewTableBuilder returns an empty builder.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{entries: make(map[string]string)}
}

// Add records a row. Codes are trimmed; blank codes are dropped and codes
// that are not all decimal digits are skipped. A repeated code overwrites the
// earlier description. It reports whether the row was kept.
func (b *TableBuilder) Add(code, description string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		b.dropped++
		return false
	}
	if !IsDigits(code) {
		b.skipped++
		return false
	}
	b.entries[code] = description
	return true
}

// Dropped returns the number of rows without a code.
func (b *TableBuilder) Dropped() int { return b.dropped }

// Skipped returns the number of rows whose code was not numeric.
func (b *TableBuilder) Skipped() int { return b.skipped }

// Build freezes the accumulated rows. The builder must not be reused.
func (b *TableBuilder) Build(source string) *Table {
	t := &Table{entries: b.entries, source: source, loadedAt: time.Now()}
	b.entries = nil
	return t
}

// IsDigits reports whether s is non-empty and made of ASCII decimal digits only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
