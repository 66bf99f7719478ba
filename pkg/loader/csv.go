package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/hsn/pkg/domain"
)

func readCSV(ctx context.Context, path string, cfg *config, b *domain.TableBuilder) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: file is empty", domain.ErrMissingColumns)
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	codeIdx, descIdx, err := columnIndex(header, cfg)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to parse row: %w", err)
		}
		b.Add(cell(row, codeIdx), cell(row, descIdx))
	}
}
