package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/hsn/internal/logging"
	"github.com/aretw0/hsn/pkg/domain"
)

const (
	DefaultCodeColumn        = "HSNCode"
	DefaultDescriptionColumn = "Description"
	DefaultSQLiteTable       = "hsn"
)

type config struct {
	codeColumn string
	descColumn string
	sheet      string
	sqlTable   string
	logger     *slog.Logger
}

// Option configures a load.
type Option func(*config)

// WithColumns overrides the header names of the code and description columns.
func WithColumns(code, description string) Option {
	return func(c *config) {
		if code != "" {
			c.codeColumn = code
		}
		if description != "" {
			c.descColumn = description
		}
	}
}

// WithSheet selects a workbook sheet by name.
func WithSheet(name string) Option {
	return func(c *config) {
		c.sheet = name
	}
}

// WithSQLiteTable selects the table read from SQLite files.
func WithSQLiteTable(name string) Option {
	return func(c *config) {
		if name != "" {
			c.sqlTable = name
		}
	}
}

// WithLogger sets the logger used for the load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		codeColumn: DefaultCodeColumn,
		descColumn: DefaultDescriptionColumn,
		sqlTable:   DefaultSQLiteTable,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the reference table at path. On any failure it logs the cause
// and returns an empty table.
func Load(ctx context.Context, path string, opts ...Option) *domain.Table {
	cfg := newConfig(opts)
	table, err := load(ctx, path, cfg)
	if err != nil {
		cfg.logger.Error("HSN master data not loaded; validation will be unavailable",
			"path", path,
			"err", err,
		)
		return domain.EmptyTable(path)
	}
	return table
}

// LoadFile reads the reference table at path and reports failures.
func LoadFile(ctx context.Context, path string, opts ...Option) (*domain.Table, error) {
	return load(ctx, path, newConfig(opts))
}

// Supported reports whether the extension of path has a reader.
func Supported(path string) bool {
	_, ok := readers[strings.ToLower(filepath.Ext(path))]
	return ok
}

type readerFunc func(ctx context.Context, path string, cfg *config, b *domain.TableBuilder) error

var readers = map[string]readerFunc{
	".xlsx":    readXLSX,
	".xlsm":    readXLSX,
	".csv":     readCSV,
	".tsv":     readCSV,
	".db":      readSQLite,
	".sqlite":  readSQLite,
	".sqlite3": readSQLite,
}

func load(ctx context.Context, path string, cfg *config) (*domain.Table, error) {
	start := time.Now()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("HSN master file not found at %q: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	read, ok := readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}

	b := domain.NewTableBuilder()
	if err := read(ctx, path, cfg, b); err != nil {
		return nil, err
	}
	table := b.Build(path)

	cfg.logger.Info("Loaded HSN codes into memory",
		"path", path,
		"codes", table.Len(),
		"dropped", b.Dropped(),
		"skipped", b.Skipped(),
		"duration", time.Since(start),
	)
	return table, nil
}

// columnIndex locates the code and description columns in a header row.
func columnIndex(header []string, cfg *config) (code, desc int, err error) {
	code, desc = -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case cfg.codeColumn:
			code = i
		case cfg.descColumn:
			desc = i
		}
	}
	if code < 0 || desc < 0 {
		return -1, -1, fmt.Errorf("%w: file must contain %q and %q columns",
			domain.ErrMissingColumns, cfg.codeColumn, cfg.descColumn)
	}
	return code, desc, nil
}

// cell returns row[i] or "" when the row is shorter.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
